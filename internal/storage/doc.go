// Package storage provides JSON-based persistence for the scrape run history.
//
// The storage package keeps one file, runs.json, recording the latest run of
// every driver and its latest successful run: when it finished, how many
// documents it read or skipped, and how many rows its workbook gained. The
// default storage location is ~/.local/share/gaming-revenue/.
package storage

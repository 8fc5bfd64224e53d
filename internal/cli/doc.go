// Package cli implements the command-line interface for gaming-revenue.
//
// The cli package provides the Cobra-based CLI: scrape runs jurisdiction
// drivers and merges their records into the output workbooks, list prints the
// driver catalogue, links previews link discovery on a listing page, and show
// prints a workbook filtered by provider, sub-category and month. It wires the
// config, logger, fetch, browser, workbook and runner packages together.
package cli

// Package record defines the normalized revenue row shared by every
// jurisdiction, the per-workbook Schema that decides its columns and sort
// order, and the date helpers used to pin rows to a reporting month.
package record

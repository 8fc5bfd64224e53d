// Package jurisdiction holds one driver per output workbook. Each driver knows
// where a state regulator publishes its reports and how that agency lays the
// figures out, and turns every document into normalized records.
//
// Parsing is kept in plain functions over already-read tables, PDF pages or
// lines so that layouts can be tested without the network.
package jurisdiction

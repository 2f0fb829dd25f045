// Package exporter persists tabular results as CSV.
//
// Writes go through a temporary file in the target directory followed by a
// rename, so a crash or error mid-write never leaves a truncated file behind.
// The canonical dataset cache and the forecast artifact are both written this
// way.
package exporter

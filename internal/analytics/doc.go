// Package analytics derives KPIs, calendar time series, dimensional rollups
// and prior-period comparisons from filtered views of the canonical table.
//
// Every function is pure: the same view and parameters always produce the
// same result, and missing numeric values count as zero.
package analytics

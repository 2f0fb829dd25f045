// Package http implements the read-only HTTP boundary of the analytics
// engine. Handlers are thin: they decode and validate query parameters,
// call services.AnalyticsService, and render JSON. Errors of every kind go
// through errors.ErrorHandler and leave as RFC 7807 problem details.
//
// Routes, mounted by internal/app:
//
//	GET /api/filters      countries, statuses and date span of the dataset
//	GET /api/kpis         metric bundle, compare=true adds prior-period deltas
//	GET /api/timeseries   bucketed series (bucket=day|week|month|quarter|year)
//	GET /api/rollup       grouped metrics (dimension, sort, limit)
//	GET /api/comparison   current and prior-period bundles side by side
//	GET /api/forecast     persisted forecast artifact, refresh=true re-reads it
//	GET /healthz          health status
//	GET /metrics          Prometheus exposition
//
// Filter parameters shared by the analytics routes are start and end
// (YYYY-MM-DD, inclusive) and the repeatable country and status. A list
// parameter given with no value, as in "country=", selects no rows, which is
// different from leaving it out. A filter that matches nothing is a 200 with
// zero values and "empty": true.
package http

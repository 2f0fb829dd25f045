// Package services implements the presentation boundary of the analytics
// engine. HTTP handlers call services; services call the analytics core and
// the forecast store, and never the other way round.
//
// # Architecture
//
// Services follow these principles:
//
//  1. Dependencies are injected as interfaces (TableSource, ArtifactSource)
//  2. Every method takes a context for cancellation and trace propagation
//  3. Derived results are memoized in an explicit, process-scoped cache
//
// # Available Services
//
//   - AnalyticsService: canonical data access, KPIs, time series, rollups,
//     prior-period comparison, filter options and forecast reads
//   - HealthService: liveness plus dataset and cache status
//
// # Caching
//
// AnalyticsService keys every cached result by the fingerprint of the
// filtered view and the call parameters:
//
//	key := cache.NewKey("timeseries", view.Fingerprint(), bucket)
//	result, err := cache.Do(ctx, s.cache, key, s.ttl, compute)
//
// A forced reload of the canonical table that changes its fingerprint purges
// the cache. The forecast artifact is cached under a fixed key and re-read
// from disk only when a caller forces a refresh; no request ever trains a
// model.
//
// # Error Handling
//
// Services return *errors.AppError values from the layers below unchanged so
// handlers can map their kind to a problem details response. An empty
// filtered view is not an error: results carry zero values and Empty=true.
package services

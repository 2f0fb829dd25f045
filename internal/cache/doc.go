// Package cache provides the process-scoped result cache used to memoize
// KPI, time series, rollup and forecast reads.
//
// A Cache is constructed once and handed to the services that use it. Keys
// combine an operation name with the fingerprint of the view being read, so a
// reloaded dataset never serves stale results.
package cache

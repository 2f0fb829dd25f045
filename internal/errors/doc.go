// Package errors defines the error taxonomy shared by the analytics engine
// and its HTTP boundary.
//
// Domain code returns *AppError values typed as VALIDATION, COMPUTATION or
// ARTIFACT_STALE_OR_MISSING (plus a few storage and parsing kinds). The engine
// never retries; the ErrorHandler turns these into RFC 7807 problem details so
// a client can tell "no data matches" (a normal 200) from a real failure, and
// a missing forecast artifact from a generic server error.
package errors

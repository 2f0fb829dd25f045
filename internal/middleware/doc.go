// Package middleware provides the HTTP middleware chain of the analytics API:
// request IDs, structured request logging, panic recovery, rate limiting,
// request deadlines, CORS and security headers, OpenTelemetry instrumentation
// and struct-tag validation of decoded query parameters.
//
// Recommended order:
//
//	r.Use(middleware.RequestID)
//	r.Use(middleware.RealIP)
//	r.Use(otelMiddleware.Handler)
//	r.Use(middleware.StructuredLogger(logger))
//	r.Use(middleware.Recoverer(logger, errorHandler))
//	r.Use(rateLimiter.Handler)
//	r.Use(middleware.Timeout(timeout))
package middleware

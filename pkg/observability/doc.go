// Package observability provides the ambient concerns shared by the Vantage
// client toolkit: a structured JSON logger with context propagation, the
// Prometheus metrics the HTTP client layer and service caches emit, and a
// graceful-shutdown helper for the long-lived binaries.
package observability

// Package controller contains HTTP middlewares and helper handlers used by the API server.
//
// Provided middlewares:
//   - WithCORS: Adds CORS headers for the configured origins and handles OPTIONS preflight.
//   - WithLogger: Attaches a request-scoped logger and request ID to the context and logs access info.
//   - HTTPMetrics.Wrap: Observes request latency per route in a Prometheus histogram.
//
// Provided helpers:
//   - PprofMux: Returns a ServeMux exposing net/http/pprof handlers under PprofPrefix.
package controller

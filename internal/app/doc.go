// Package app assembles the attendance analytics service: configuration,
// structured logging, OpenTelemetry providers, the service layer, and the
// chi router with its middleware chain.
//
// The wiring order matters: request ID and real IP first so every later
// middleware logs with trace context, then OTel instrumentation, then
// logging and recovery, then the policy middlewares (security headers, CORS,
// rate limiting). API routes mount under /api with a shared request timeout;
// /metrics sits outside the API group so scrapes skip the JSON content type
// and timeout handling.
package app

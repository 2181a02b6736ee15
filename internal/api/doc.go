// Package api implements the HTTP server for Gray Bridge.
//
// This package provides:
//   - The action dispatcher: a single POST endpoint that parses an
//     action envelope, authorizes the caller, and routes to the
//     variable and device operations
//   - REST endpoints for managing the device registry and reading the
//     audit trail and write history
//   - A broker-side write channel (graybridge/variable/+/set) and a
//     periodic device sampler feeding the MQTT and InfluxDB side
//     channels
//   - Middleware stack (request ID, logging, recovery, CORS)
//   - TLS support for production deployments
//
// # Architecture
//
// The dispatcher is stateless and request-scoped. Every inbound action
// request flows through token and method checks before any routing
// happens, and every failure is rendered into the uniform response
// envelope; the HTTP status always agrees with error.code in the body.
//
// # Security
//
// Callers authenticate with a shared token, presented either as an
// Authorization bearer header or a ?token= query parameter. Comparison
// is constant-time. An empty configured token denies all requests
// unless anonymous access is explicitly enabled.
//
// # Graceful Degradation
//
// MQTT and InfluxDB are optional. Without them writes still work;
// only the announce and history side channels go quiet.
package api

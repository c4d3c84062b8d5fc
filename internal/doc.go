// Package internal holds code private to goNebula.
//
// # Sub-packages
//
//   - audit: async event dispatch (Dispatcher and Sink implementations)
//   - dispatch: maps a transport outcome to the pipeline's reaction
//   - flows: login, logout, session-expiry, profile and register orchestration
//   - logging: zap logger construction with optional rotating file output
//   - metrics: lock-free counters and latency buckets
//   - mockbackend: an in-process Nebula backend for tests and cmd/nebula-mockd
//
// Nothing here is part of the public goNebula API.
package internal

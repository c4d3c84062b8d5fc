// Package goNebula is the client core shared by the Nebula admin console and
// the Nebula storefront: a credential store, a request pipeline that unwraps
// the backend's {code, message, data} envelope, the session lifecycle and
// role-gated navigation.
//
// A [Client] is built once through [Builder.Build] and is safe for concurrent
// use afterwards.
//
// # Architecture boundaries
//
// goNebula is the public surface. It exposes [Client], [Builder], [Config] and
// value types (Session, MetricsSnapshot, RequestError). The subpackages carry
// the reusable parts:
//
//   - credential: token and profile persistence (memory, file, Redis)
//   - envelope: response envelope decoding
//   - route: route tables, role filtering and menus
//   - navigation: the navigation guard and an in-process router
//   - permission: role bitmasks
//
// Flow orchestration, response classification, audit dispatch and counters
// live under internal/.
//
// # Failure handling
//
// Every rejected request produces exactly one user notification (through the
// configured [Notifier]) and one [*RequestError]. An HTTP 401 outside the login
// route clears the session and redirects to the login route once, no matter
// how many requests fail concurrently.
package goNebula

// Package credential holds the process-wide session token and user profile
// and persists them to a durable key-value [Backend].
//
// # Hydration
//
// A [Store] reads its backend lazily, exactly once, on the first call to
// [Store.Get]. Malformed stored data or an unavailable backend degrades to an
// anonymous [Session]; it never surfaces as an error to request callers.
//
// # Architecture boundaries
//
// This package owns the [Session] model and the [Store]. It does NOT talk to
// the remote backend, decide when a session has expired, or redirect; those
// belong to the session lifecycle controller in goNebula.
//
// # What this package must NOT do
//
//   - Import goNebula, navigation, or route (no upward imports).
//   - Verify token signatures (the token is opaque to the client).
//   - Expire sessions on a timer.
package credential

// Package navigation enforces per-route access before a navigation is
// committed and provides an in-memory [Router] implementing [Navigator].
//
// The [Guard] sets the page title from route metadata and bounces anonymous
// users away from routes that require authentication, preserving the
// original target as a query parameter on the login route.
//
// # What this package must NOT do
//
//   - Clear credentials or call the backend.
//   - Filter routes by role (see route.Assembler).
package navigation

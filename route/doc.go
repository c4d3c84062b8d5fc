// Package route models static route trees and assembles the subset a user
// may navigate.
//
// # Filtering
//
// [Assembler.Filter] is a pure transform: it never mutates its source tree
// and always returns freshly allocated nodes, so the same tree can be
// re-filtered after a re-login with a different role set. Role intersection
// uses [permission.Mask64].
//
// # Architecture boundaries
//
// This package owns route data, YAML loading, filtering, menu building and
// path matching. It does NOT decide whether a navigation is allowed; that is
// the navigation guard's job.
//
// # What this package must NOT do
//
//   - Import goNebula, navigation, or credential.
//   - Cache filtered trees between calls.
package route

// Package permission provides the role registry and 64-bit role mask used by
// the route assembler to intersect a user's roles with a route's required
// roles.
//
// # Bit assignment
//
// Bits are assigned by [Registry.Ensure] in first-seen order and are stable
// for the lifetime of the registry. A registry holds at most [MaxRoles] names.
//
// # Architecture boundaries
//
// This package is a pure in-memory data structure with no I/O.
//
// # What this package must NOT do
//
//   - Access storage or the network.
//   - Import goNebula, route, or credential.
//   - Dynamically widen masks past 64 bits.
package permission

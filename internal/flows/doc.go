// Package flows contains pure-function orchestrators for every session
// lifecycle operation of the client.
//
// Each flow function (RunLogin, RunLogout, RunSessionExpired, etc.) accepts a
// typed dependency struct and returns results without side-effects beyond
// those dependencies. This keeps the Client type thin and lets every
// transition be tested with fake stores and navigators.
//
// # Architecture boundaries
//
// Flow functions coordinate the credential store, the backend call function,
// the navigator, audit, and metrics. They do NOT own any of these resources;
// ownership stays with the Client.
//
// # What this package must NOT do
//
//   - Hold mutable state between calls.
//   - Import goNebula (to avoid import cycles).
//   - Perform I/O directly; all I/O is mediated through dependency interfaces.
package flows

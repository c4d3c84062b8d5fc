// Package envelope interprets backend response bodies against the uniform
// {code, message|msg, data} contract.
//
// # Contract
//
// A JSON body whose numeric "code" equals [SuccessCode] is a success and its
// "data" member is the payload. Any other code is a business failure carrying
// the first non-empty synonym from [MessageFields], or [DefaultFailureMessage].
// Binary bodies bypass interpretation and are returned verbatim.
//
// # Architecture boundaries
//
// This package is pure: it owns body interpretation only. It does NOT look at
// HTTP status codes, notify users, or touch credentials; those decisions live
// in the request pipeline and its dispatch table.
//
// # What this package must NOT do
//
//   - Perform I/O.
//   - Import goNebula or any sibling package.
//   - Scatter synonym lookups outside [Message].
package envelope

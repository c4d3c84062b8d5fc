// Package metrics keeps the client's request and session counters.
//
// Each counter sits in its own cache-line-padded slot and is bumped with
// sync/atomic, so concurrent Execute calls never contend on a lock. Request
// latency lands in 8 fixed buckets from 5ms up to an overflow bucket.
//
// Snapshot copies everything out for the exporters under metrics/export.
// Nothing here performs I/O or keeps global state.
package metrics

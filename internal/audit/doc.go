// Package audit delivers session events (login, logout, expiry, forbidden
// calls) to a Sink off the request path.
//
// A [Dispatcher] owns one worker goroutine and a buffered channel. With
// DropIfFull set, a full buffer drops the event and counts it; otherwise Emit
// waits for room or for the caller's context. Close drains what is buffered.
// A panicking sink is logged and the worker keeps running.
//
// Sinks shipped here: ChannelSink for tests, JSONWriterSink for JSON lines and
// ZapSink for structured logs. Which events exist is decided by the caller.
package audit

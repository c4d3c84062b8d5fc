// Package otel binds goNebula client metrics to OpenTelemetry.
//
// [NewOTelExporter] registers an Int64ObservableCounter per client counter
// and an Int64ObservableGauge per latency bucket. One callback reads
// [goNebula.Client.MetricsSnapshot] on each collection cycle.
//
// # What this package must NOT do
//
//   - Own the MeterProvider. Callers supply the Meter.
//   - Mutate client state.
package otel

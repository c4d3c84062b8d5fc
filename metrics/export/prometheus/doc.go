// Package prometheus exposes goNebula client metrics to Prometheus.
//
// [PrometheusExporter] is a prometheus.Collector that reads
// [goNebula.Client.MetricsSnapshot] at scrape time. Counter names are
// gonebula_*_total; the latency histogram is gonebula_request_latency_seconds.
//
// # What this package must NOT do
//
//   - Register in the global Prometheus registry. Callers register the
//     collector or mount Handler.
//   - Mutate client state.
package prometheus

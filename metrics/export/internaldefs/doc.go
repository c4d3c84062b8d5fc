// Package internaldefs holds the metric names, help strings and bucket
// bounds shared by the goNebula exporters, so that Prometheus and OTel
// scrape the same series.
//
// # What this package must NOT do
//
//   - Import any exporter package.
//   - Perform I/O.
package internaldefs

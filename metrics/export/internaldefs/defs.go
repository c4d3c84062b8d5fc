package internaldefs

import (
	goNebula "github.com/MrEthical07/goNebula"
)

// CounterDef names one client counter for exporters.
type CounterDef struct {
	ID   goNebula.MetricID
	Name string
	Help string
}

// HistogramDef names one client histogram for exporters.
type HistogramDef struct {
	ID   goNebula.MetricID
	Name string
	Help string
}

// AuditDroppedName is the counter exported for audit backpressure drops.
const AuditDroppedName = "gonebula_audit_dropped_total"

// AuditDroppedHelp describes AuditDroppedName.
const AuditDroppedHelp = "Dropped audit events due to dispatcher backpressure."

// CounterDefs lists every exported counter in a stable order.
var CounterDefs = []CounterDef{
	{ID: goNebula.MetricRequestSuccess, Name: "gonebula_request_success_total", Help: "Requests resolved with a success envelope or a binary body."},
	{ID: goNebula.MetricBusinessFailure, Name: "gonebula_business_failure_total", Help: "Responses whose envelope code was not the success code."},
	{ID: goNebula.MetricSessionExpired, Name: "gonebula_session_expired_total", Help: "Sessions cleared after the backend reported them expired."},
	{ID: goNebula.MetricForbidden, Name: "gonebula_forbidden_total", Help: "HTTP 403 responses."},
	{ID: goNebula.MetricNotFound, Name: "gonebula_not_found_total", Help: "HTTP 404 responses."},
	{ID: goNebula.MetricHTTPFailure, Name: "gonebula_http_failure_total", Help: "Other non-2xx HTTP responses."},
	{ID: goNebula.MetricNetworkFailure, Name: "gonebula_network_failure_total", Help: "Requests that received no response."},
	{ID: goNebula.MetricLoginSuccess, Name: "gonebula_login_success_total", Help: "Successful logins."},
	{ID: goNebula.MetricLoginFailure, Name: "gonebula_login_failure_total", Help: "Failed logins."},
	{ID: goNebula.MetricLogout, Name: "gonebula_logout_total", Help: "Logouts of a signed-in session."},
	{ID: goNebula.MetricProfileRefreshFailure, Name: "gonebula_profile_refresh_failure_total", Help: "Profile refreshes that failed and were ignored."},
	{ID: goNebula.MetricNavigationBlocked, Name: "gonebula_navigation_blocked_total", Help: "Navigations redirected to the login route."},
}

// HistogramDefs lists every exported histogram.
var HistogramDefs = []HistogramDef{
	{ID: goNebula.MetricRequestLatency, Name: "gonebula_request_latency_seconds", Help: "Backend request latency."},
}

// HistogramUpperBounds are the finite bucket bounds in seconds. The last
// snapshot bucket is the +Inf overflow.
var HistogramUpperBounds = []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5}

// HistogramBoundSuffix names each bucket, +Inf included, for exporters that
// flatten buckets into individual instruments.
var HistogramBoundSuffix = []string{
	"0_005",
	"0_01",
	"0_025",
	"0_05",
	"0_1",
	"0_25",
	"0_5",
	"inf",
}

// NormalizeBuckets pads or truncates raw to the fixed bucket count.
func NormalizeBuckets(raw []uint64) [8]uint64 {
	var out [8]uint64
	for i := 0; i < len(out) && i < len(raw); i++ {
		out[i] = raw[i]
	}
	return out
}

// CumulativeBuckets turns per-bucket counts into running totals.
func CumulativeBuckets(raw [8]uint64) [8]uint64 {
	var out [8]uint64
	var running uint64
	for i := 0; i < len(raw); i++ {
		running += raw[i]
		out[i] = running
	}
	return out
}

package goNebula

import (
	internalmetrics "github.com/MrEthical07/goNebula/internal/metrics"
)

// MetricID identifies one client counter.
type MetricID = internalmetrics.MetricID

const (
	// MetricRequestSuccess counts resolved requests, binary downloads included.
	MetricRequestSuccess = internalmetrics.MetricRequestSuccess
	// MetricBusinessFailure counts non-success envelope codes.
	MetricBusinessFailure = internalmetrics.MetricBusinessFailure
	// MetricSessionExpired counts expired sessions cleared after a 401.
	MetricSessionExpired = internalmetrics.MetricSessionExpired
	// MetricForbidden counts HTTP 403 responses.
	MetricForbidden = internalmetrics.MetricForbidden
	// MetricNotFound counts HTTP 404 responses.
	MetricNotFound = internalmetrics.MetricNotFound
	// MetricHTTPFailure counts other non-2xx responses.
	MetricHTTPFailure = internalmetrics.MetricHTTPFailure
	// MetricNetworkFailure counts requests that got no response.
	MetricNetworkFailure = internalmetrics.MetricNetworkFailure
	// MetricLoginSuccess counts logins that stored a session.
	MetricLoginSuccess = internalmetrics.MetricLoginSuccess
	// MetricLoginFailure counts rejected or failed logins.
	MetricLoginFailure = internalmetrics.MetricLoginFailure
	// MetricLogout counts logouts of an authenticated session.
	MetricLogout = internalmetrics.MetricLogout
	// MetricProfileRefreshFailure counts swallowed profile refresh errors.
	MetricProfileRefreshFailure = internalmetrics.MetricProfileRefreshFailure
	// MetricNavigationBlocked counts guard redirects to the login route.
	MetricNavigationBlocked = internalmetrics.MetricNavigationBlocked
	// MetricRequestLatency is the request latency histogram.
	MetricRequestLatency = internalmetrics.MetricRequestLatency
)

// Metrics holds the client's lock-free counters.
type Metrics = internalmetrics.Metrics

// MetricsSnapshot is a point-in-time copy of all metric values.
type MetricsSnapshot = internalmetrics.Snapshot

// NewMetrics returns a counter set. A disabled set ignores every Inc and
// Observe.
func NewMetrics(cfg MetricsConfig) *Metrics {
	return internalmetrics.New(internalmetrics.Config{
		Enabled:                 cfg.Enabled,
		EnableLatencyHistograms: cfg.EnableLatencyHistograms,
	})
}

package goNebula

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"
)

func TestEnvelopeSuccessResolvesWithoutNotification(t *testing.T) {
	ct := newClientTest(t, clientTestOptions{})
	ct.login(t, "admin", "admin123")

	type profile struct {
		Username string   `json:"username"`
		Roles    []string `json:"roles"`
	}
	got, err := Call[profile](context.Background(), ct.client, Request{Method: http.MethodGet, Path: "/member/info"})
	require.NoError(t, err)
	assert.Equal(t, "admin", got.Username)
	assert.Equal(t, []string{"ADMIN"}, got.Roles)
	assert.Empty(t, ct.notes.All())
	assert.Equal(t, uint64(2), ct.client.MetricsSnapshot().Counters[MetricRequestSuccess])
}

func TestBusinessFailureMessage(t *testing.T) {
	tests := []struct {
		name    string
		useMsg  bool
		path    string
		query   url.Values
		wantMsg string
		wantCod int
	}{
		{"message field", false, "/debug/business", url.Values{"code": {"601"}, "message": {"Out of stock"}}, "Out of stock", 601},
		{"msg field", true, "/debug/business", url.Values{"code": {"602"}, "message": {"Coupon expired"}}, "Coupon expired", 602},
		{"no message", false, "/debug/business", url.Values{"code": {"500"}}, "system busy", 500},
		{"not json", false, "/debug/plain", nil, "system busy", 0},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			ct := newClientTest(t, clientTestOptions{useMsg: tc.useMsg})

			_, err := ct.client.Get(context.Background(), tc.path, tc.query)
			require.ErrorIs(t, err, ErrBusiness)

			re, ok := AsRequestError(err)
			require.True(t, ok)
			assert.Equal(t, KindBusiness, re.Kind)
			assert.Equal(t, tc.wantCod, re.Code)
			assert.Equal(t, tc.wantMsg, re.Message)
			assert.Equal(t, []Notification{{Level: "error", Message: tc.wantMsg}}, ct.notes.All())
		})
	}
}

func TestHTTPStatusDispatch(t *testing.T) {
	tests := []struct {
		name     string
		path     string
		query    url.Values
		sentinel error
		kind     ErrorKind
		wantMsg  string
		metric   MetricID
	}{
		{"forbidden", "/admin/system/invite-code", nil, ErrForbidden, KindForbidden, "You do not have permission to perform this action", MetricForbidden},
		{"not found", "/no/such/thing", nil, ErrNotFound, KindNotFound, "The requested resource was not found", MetricNotFound},
		{"server message", "/debug/status/502", nil, ErrHTTPStatus, KindHTTP, "debug status 502", MetricHTTPFailure},
		{"server without body", "/debug/status/500", url.Values{"empty": {"1"}}, ErrHTTPStatus, KindHTTP, "Server error", MetricHTTPFailure},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			ct := newClientTest(t, clientTestOptions{})
			ct.login(t, "merchant", "merchant123")

			_, err := ct.client.Get(context.Background(), tc.path, tc.query)
			require.ErrorIs(t, err, tc.sentinel)
			re, _ := AsRequestError(err)
			assert.Equal(t, tc.kind, re.Kind)
			assert.Equal(t, []Notification{{Level: "error", Message: tc.wantMsg}}, ct.notes.All())
			assert.Equal(t, uint64(1), ct.client.MetricsSnapshot().Counters[tc.metric])
			assert.True(t, ct.client.IsAuthenticated(context.Background()), "session must survive %s", tc.name)
		})
	}
}

func TestForbiddenIsAudited(t *testing.T) {
	ct := newClientTest(t, clientTestOptions{})
	ct.login(t, "merchant", "merchant123")

	_, err := ct.client.Get(context.Background(), "/admin/system/invite-code", nil)
	require.ErrorIs(t, err, ErrForbidden)

	var types []string
	for _, e := range ct.drainAudit() {
		types = append(types, e.EventType)
		if e.EventType == auditEventForbidden {
			assert.Equal(t, "merchant", e.Username)
			assert.Equal(t, http.StatusForbidden, e.Status)
			assert.NotEmpty(t, e.RequestID)
		}
	}
	assert.Equal(t, []string{auditEventLoginSuccess, auditEventForbidden}, types)
}

func TestNetworkFailures(t *testing.T) {
	t.Run("timeout", func(t *testing.T) {
		cfg := AdminConfig()
		cfg.Transport.Timeout = 50 * time.Millisecond
		ct := newClientTest(t, clientTestOptions{config: cfg})

		_, err := ct.client.Get(context.Background(), "/debug/slow", url.Values{"ms": {"2000"}})
		require.ErrorIs(t, err, ErrNetwork)
		re, _ := AsRequestError(err)
		assert.Equal(t, 0, re.Status)
		assert.Error(t, re.Err)
		assert.Equal(t, "Network error. Please check your connection.", ct.notes.All()[0].Message)
	})

	t.Run("cancelled context", func(t *testing.T) {
		ct := newClientTest(t, clientTestOptions{})
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		_, err := ct.client.Get(ctx, "/portal/notice/list", nil)
		require.ErrorIs(t, err, ErrNetwork)
		assert.True(t, errors.Is(err, context.Canceled))
	})

	t.Run("server gone", func(t *testing.T) {
		ct := newClientTest(t, clientTestOptions{})
		ct.server.Close()

		_, err := ct.client.Get(context.Background(), "/portal/notice/list", nil)
		require.ErrorIs(t, err, ErrNetwork)
		assert.Equal(t, uint64(1), ct.client.MetricsSnapshot().Counters[MetricNetworkFailure])
	})
}

func TestProgressBalancedUnderConcurrency(t *testing.T) {
	ct := newClientTest(t, clientTestOptions{})
	ct.login(t, "admin", "admin123")

	paths := []string{
		"/member/info",
		"/debug/status/500",
		"/portal/notice/list",
		"/no/such/thing",
		"/debug/business?code=601&message=Out+of+stock",
	}

	var g errgroup.Group
	for i := 0; i < 40; i++ {
		p := paths[i%len(paths)]
		g.Go(func() error {
			_, _ = ct.client.Get(context.Background(), p, nil)
			return nil
		})
	}
	require.NoError(t, g.Wait())

	assert.Equal(t, int64(0), ct.progress.InFlight())
	assert.Equal(t, uint64(41), ct.progress.Started())
	assert.Equal(t, ct.progress.Started(), ct.progress.Finished())
	assert.Equal(t, uint64(8), ct.client.MetricsSnapshot().Counters[MetricBusinessFailure])
}

func TestProgressBalancedOnFailureBranches(t *testing.T) {
	ct := newClientTest(t, clientTestOptions{})
	ctx := context.Background()

	_, err := ct.client.Get(ctx, "/debug/business?code=601&message=Out+of+stock", nil)
	require.ErrorIs(t, err, ErrBusiness)
	assert.Equal(t, int64(0), ct.progress.InFlight())

	short, cancel := context.WithTimeout(ctx, 20*time.Millisecond)
	defer cancel()
	_, err = ct.client.Get(short, "/debug/slow?ms=2000", nil)
	require.ErrorIs(t, err, ErrNetwork)
	assert.Equal(t, int64(0), ct.progress.InFlight())

	ct.server.Close()
	_, err = ct.client.Get(ctx, "/portal/notice/list", nil)
	require.ErrorIs(t, err, ErrNetwork)

	assert.Equal(t, int64(0), ct.progress.InFlight())
	assert.Equal(t, uint64(3), ct.progress.Started())
	assert.Equal(t, uint64(3), ct.progress.Finished())
}

func TestBearerHeaderFollowsSession(t *testing.T) {
	ct := newClientTest(t, clientTestOptions{})
	ctx := context.Background()

	_, err := ct.client.Get(ctx, "/portal/notice/list", nil)
	require.NoError(t, err)
	assert.Empty(t, ct.headers.last("/api/portal/notice/list").Get("Authorization"))

	res, err := ct.client.Login(ctx, LoginRequest{Username: "admin", Password: "admin123"})
	require.NoError(t, err)
	assert.Equal(t, "application/json;charset=utf-8", ct.headers.last("/api/auth/login").Get("Content-Type"))

	_, err = ct.client.Get(WithRequestID(ctx, "req-42"), "/portal/notice/list", nil)
	require.NoError(t, err)
	h := ct.headers.last("/api/portal/notice/list")
	assert.Equal(t, "Bearer "+res.Token, h.Get("Authorization"))
	assert.Equal(t, "req-42", h.Get("X-Request-ID"))

	require.NoError(t, ct.client.Logout(ctx))
	_, err = ct.client.Get(ctx, "/portal/notice/list", nil)
	require.NoError(t, err)
	h = ct.headers.last("/api/portal/notice/list")
	assert.Empty(t, h.Get("Authorization"))
	assert.NotEmpty(t, h.Get("X-Request-ID"))
}

func TestDownloadReturnsRawBody(t *testing.T) {
	ct := newClientTest(t, clientTestOptions{})
	ct.login(t, "admin", "admin123")

	data, err := ct.client.Download(context.Background(), "/admin/system/log/export", nil)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(data), "id,username,role\n"))
	assert.Empty(t, ct.notes.All())
}

func TestExecuteRejectsRelativePath(t *testing.T) {
	ct := newClientTest(t, clientTestOptions{})
	_, err := ct.client.Execute(context.Background(), Request{Path: "member/info"})
	require.ErrorIs(t, err, ErrInvalidRequest)
	assert.Equal(t, uint64(0), ct.progress.Started())
}

func TestCallDecodeFailure(t *testing.T) {
	ct := newClientTest(t, clientTestOptions{})
	_, err := Call[[]int](context.Background(), ct.client, Request{Path: "/portal/notice/list"})
	require.ErrorIs(t, err, ErrDecodePayload)
}

func TestLatencyHistogram(t *testing.T) {
	ct := newClientTest(t, clientTestOptions{builder: func(b *Builder) {
		b.WithLatencyHistograms(true)
	}})

	for i := 0; i < 3; i++ {
		_, err := ct.client.Get(context.Background(), "/portal/notice/list", nil)
		require.NoError(t, err)
	}

	var total uint64
	for _, n := range ct.client.MetricsSnapshot().Histograms[MetricRequestLatency] {
		total += n
	}
	assert.Equal(t, uint64(3), total)
}

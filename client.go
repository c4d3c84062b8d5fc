package goNebula

import (
	"context"
	"net/http"
	"sync"

	"github.com/MrEthical07/goNebula/credential"
	internalaudit "github.com/MrEthical07/goNebula/internal/audit"
	internalflows "github.com/MrEthical07/goNebula/internal/flows"
	"github.com/MrEthical07/goNebula/route"
	"go.uber.org/zap"
)

// Client is the single entry point for backend calls and session lifecycle.
//
// A Client is safe for concurrent use. Build one with New().Build().
type Client struct {
	config    Config
	http      *http.Client
	baseURL   string
	store     *credential.Store
	logger    *zap.Logger
	notifier  Notifier
	progress  Progress
	metrics   *Metrics
	audit     *internalaudit.Dispatcher
	assembler *route.Assembler
	flows     internalflows.Service

	navMu sync.RWMutex
	nav   Navigator

	// expiryMu serializes 401 handling so rapid failures redirect once.
	expiryMu sync.Mutex
}

// Close stops the audit dispatcher after draining buffered events.
func (c *Client) Close() {
	if c == nil {
		return
	}
	if c.audit != nil {
		c.audit.Close()
	}
}

// Config returns the effective configuration.
func (c *Client) Config() Config {
	return cloneConfig(c.config)
}

// Store exposes the credential store the client reads its token from.
func (c *Client) Store() *credential.Store {
	return c.store
}

// AuditDropped reports how many audit events were discarded on a full buffer.
func (c *Client) AuditDropped() uint64 {
	if c == nil || c.audit == nil {
		return 0
	}
	return c.audit.Dropped()
}

// MetricsSnapshot returns a point-in-time copy of the client counters. It is
// empty when metrics are disabled.
func (c *Client) MetricsSnapshot() MetricsSnapshot {
	if c == nil || c.metrics == nil {
		return MetricsSnapshot{
			Counters:   map[MetricID]uint64{},
			Histograms: map[MetricID][]uint64{},
		}
	}
	return c.metrics.Snapshot()
}

func (c *Client) metricInc(id MetricID) {
	if c == nil || c.metrics == nil {
		return
	}
	c.metrics.Inc(id)
}

// AttachNavigator sets the navigator used by logout and session expiry.
// A nil navigator makes the client headless: sessions are cleared without
// redirecting.
func (c *Client) AttachNavigator(nav Navigator) {
	c.navMu.Lock()
	c.nav = nav
	c.navMu.Unlock()
}

// Navigator returns the attached navigator, or nil.
func (c *Client) Navigator() Navigator {
	c.navMu.RLock()
	defer c.navMu.RUnlock()
	return c.nav
}

// Session returns a copy of the current session.
func (c *Client) Session(ctx context.Context) Session {
	return c.store.Get(ctx)
}

// IsAuthenticated reports whether a token is held. It makes Client a
// navigation.Authenticator.
func (c *Client) IsAuthenticated(ctx context.Context) bool {
	return c.store.Get(ctx).IsAuthenticated()
}

// State returns the lifecycle state of the session.
func (c *Client) State(ctx context.Context) State {
	if c.IsAuthenticated(ctx) {
		return StateAuthenticated
	}
	return StateAnonymous
}

// Roles returns the role set of the signed-in user.
func (c *Client) Roles(ctx context.Context) []string {
	return c.store.Get(ctx).Roles()
}

func (c *Client) flowCall(ctx context.Context, method, path string, body any) ([]byte, error) {
	return c.Execute(ctx, Request{Method: method, Path: path, Body: body, Kind: ResponseJSON})
}

func (c *Client) flowWarn(msg string, kv ...any) {
	c.logger.Sugar().Warnw(msg, kv...)
}

func (c *Client) flowMetric(id int) {
	c.metricInc(MetricID(id))
}

func (c *Client) flowDeps() internalflows.Deps {
	logout := internalflows.LogoutDeps{
		Store:         c.store,
		Navigator:     c.Navigator,
		LoginPath:     c.config.Navigation.LoginPath,
		RedirectParam: c.config.Navigation.RedirectParam,
		MetricInc:     c.flowMetric,
		EmitAudit:     c.auditFlowEvent,
		Metrics: internalflows.LogoutMetrics{
			Logout: int(MetricLogout),
		},
		Events: internalflows.LogoutEvents{
			Logout: auditEventLogout,
		},
	}

	return internalflows.Deps{
		Login: internalflows.LoginDeps{
			Call:      c.flowCall,
			Store:     c.store,
			Endpoint:  c.config.Endpoints.Login,
			MetricInc: c.flowMetric,
			EmitAudit: c.auditFlowEvent,
			Warn:      c.flowWarn,
			Metrics: internalflows.LoginMetrics{
				LoginSuccess: int(MetricLoginSuccess),
				LoginFailure: int(MetricLoginFailure),
			},
			Events: internalflows.LoginEvents{
				LoginSuccess: auditEventLoginSuccess,
				LoginFailure: auditEventLoginFailure,
			},
			Errors: internalflows.LoginErrors{
				NotReady:             ErrClientNotReady,
				InvalidRequest:       ErrInvalidRequest,
				InvalidLoginResponse: ErrInvalidLoginResponse,
			},
		},
		Logout: logout,
		Expiry: internalflows.ExpiryDeps{
			Logout:    logout,
			Warning:   c.notifier.Warning,
			Message:   c.config.Messages.SessionExpired,
			MetricInc: c.flowMetric,
			EmitAudit: c.auditFlowEvent,
			Metrics: internalflows.ExpiryMetrics{
				SessionExpired: int(MetricSessionExpired),
			},
			Events: internalflows.ExpiryEvents{
				SessionExpired: auditEventSessionExpired,
			},
		},
		Profile: internalflows.ProfileDeps{
			Call:      c.flowCall,
			Store:     c.store,
			Endpoint:  c.config.Endpoints.Profile,
			MetricInc: c.flowMetric,
			Metrics: internalflows.ProfileMetrics{
				ProfileRefreshFailure: int(MetricProfileRefreshFailure),
			},
		},
		Register: internalflows.RegisterDeps{
			Call:       c.flowCall,
			PathPrefix: c.config.Endpoints.RegisterPrefix,
			Errors: internalflows.RegisterErrors{
				NotReady:       ErrClientNotReady,
				InvalidRequest: ErrInvalidRequest,
			},
		},
	}
}

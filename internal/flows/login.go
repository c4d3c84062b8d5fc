package flows

import (
	"context"
	"net/http"
	"strings"

	"github.com/MrEthical07/goNebula/envelope"
)

// LoginRequest is the flow-local login input.
type LoginRequest struct {
	Username  string `json:"username"`
	Password  string `json:"password"`
	LoginType string `json:"loginType"`
}

// LoginResult is the flow-local login response shape.
type LoginResult struct {
	Token   string
	Profile map[string]any
}

type loginPayload struct {
	Token string         `json:"token"`
	User  map[string]any `json:"user"`
}

// LoginMetrics carries metric IDs needed by the login flow.
type LoginMetrics struct {
	LoginSuccess int
	LoginFailure int
}

// LoginEvents carries audit event names used by the login flow.
type LoginEvents struct {
	LoginSuccess string
	LoginFailure string
}

// LoginErrors carries host-level sentinel errors used by the login flow.
type LoginErrors struct {
	NotReady             error
	InvalidRequest       error
	InvalidLoginResponse error
}

// LoginDeps captures login dependencies.
type LoginDeps struct {
	Call     CallFunc
	Store    SessionStore
	Endpoint string

	MetricInc func(int)
	EmitAudit AuditFunc
	Warn      func(string, ...any)

	Metrics LoginMetrics
	Events  LoginEvents
	Errors  LoginErrors
}

// RunLogin posts credentials and, on success, stores the issued token and
// profile. Backend failures are returned untouched and leave the store as
// it was.
func RunLogin(ctx context.Context, req LoginRequest, deps LoginDeps) (*LoginResult, error) {
	if deps.MetricInc == nil {
		deps.MetricInc = noopMetric
	}
	if deps.EmitAudit == nil {
		deps.EmitAudit = noopAudit
	}
	if deps.Warn == nil {
		deps.Warn = noopWarn
	}
	if deps.Call == nil || deps.Store == nil || deps.Endpoint == "" {
		return nil, deps.Errors.NotReady
	}

	if strings.TrimSpace(req.Username) == "" || req.Password == "" {
		deps.MetricInc(deps.Metrics.LoginFailure)
		deps.EmitAudit(ctx, deps.Events.LoginFailure, false, req.Username, deps.Errors.InvalidRequest, func() map[string]string {
			return map[string]string{"reason": "missing_credentials"}
		})
		return nil, deps.Errors.InvalidRequest
	}

	payload, err := deps.Call(ctx, http.MethodPost, deps.Endpoint, req)
	if err != nil {
		deps.MetricInc(deps.Metrics.LoginFailure)
		deps.EmitAudit(ctx, deps.Events.LoginFailure, false, req.Username, err, func() map[string]string {
			return map[string]string{"login_type": req.LoginType}
		})
		return nil, err
	}

	out, err := envelope.Decode[loginPayload](payload)
	if err != nil || out.Token == "" {
		deps.MetricInc(deps.Metrics.LoginFailure)
		deps.EmitAudit(ctx, deps.Events.LoginFailure, false, req.Username, deps.Errors.InvalidLoginResponse, func() map[string]string {
			return map[string]string{"reason": "invalid_response"}
		})
		return nil, deps.Errors.InvalidLoginResponse
	}

	if err := deps.Store.Set(ctx, out.Token, out.User); err != nil {
		// The in-memory session is already replaced; only durability is lost.
		deps.Warn("login credentials not persisted", "error", err)
	}

	deps.MetricInc(deps.Metrics.LoginSuccess)
	deps.EmitAudit(ctx, deps.Events.LoginSuccess, true, req.Username, nil, func() map[string]string {
		return map[string]string{"login_type": req.LoginType}
	})

	return &LoginResult{Token: out.Token, Profile: out.User}, nil
}

package flows

import (
	"context"
	"fmt"

	"github.com/MrEthical07/goNebula/navigation"
)

// ExpiryMetrics carries metric IDs needed by the session-expired flow.
type ExpiryMetrics struct {
	SessionExpired int
}

// ExpiryEvents carries audit event names used by the session-expired flow.
type ExpiryEvents struct {
	SessionExpired string
}

// ExpiryDeps captures session-expired dependencies. Callers must serialize
// RunSessionExpired so that concurrent 401s produce at most one redirect.
type ExpiryDeps struct {
	Logout  LogoutDeps
	Warning func(string)
	Message string

	MetricInc func(int)
	EmitAudit AuditFunc

	Metrics ExpiryMetrics
	Events  ExpiryEvents
}

// ExpiryResult reports what the session-expired flow did. Skipped is true
// when the user was already on the login route, or when a headless client
// was already anonymous.
type ExpiryResult struct {
	Skipped bool
	Logout  LogoutResult
}

// RunSessionExpired reacts to a 401. On the login route it does nothing, so
// a failing sign-in form never loops. Elsewhere it warns, logs out and sends
// the user to the login route even when the session was already anonymous.
func RunSessionExpired(ctx context.Context, deps ExpiryDeps) (ExpiryResult, error) {
	if deps.MetricInc == nil {
		deps.MetricInc = noopMetric
	}
	if deps.EmitAudit == nil {
		deps.EmitAudit = noopAudit
	}

	prev := deps.Logout.Store.Get(ctx)
	nav := currentNavigator(deps.Logout.Navigator)
	if nav == nil && !prev.IsAuthenticated() {
		return ExpiryResult{Skipped: true}, nil
	}
	if nav != nil && nav.Current().Path == deps.Logout.LoginPath {
		return ExpiryResult{Skipped: true}, nil
	}

	if deps.Warning != nil && deps.Message != "" {
		deps.Warning(deps.Message)
	}
	deps.MetricInc(deps.Metrics.SessionExpired)
	deps.EmitAudit(ctx, deps.Events.SessionExpired, false, prev.Username(), nil, nil)

	res, err := RunLogout(ctx, deps.Logout)
	if res.Redirected || nav == nil {
		return ExpiryResult{Logout: res}, err
	}

	cur := nav.Current()
	if cur.Path == deps.Logout.LoginPath {
		return ExpiryResult{Logout: res}, err
	}
	res.Target = navigation.LoginRedirect(deps.Logout.LoginPath, deps.Logout.RedirectParam, cur.FullPath)
	if perr := nav.Push(ctx, res.Target); perr != nil {
		if err != nil {
			return ExpiryResult{Logout: res}, fmt.Errorf("%w (redirect: %v)", err, perr)
		}
		return ExpiryResult{Logout: res}, perr
	}
	res.Redirected = true
	return ExpiryResult{Logout: res}, err
}

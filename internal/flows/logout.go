package flows

import (
	"context"
	"fmt"

	"github.com/MrEthical07/goNebula/navigation"
)

// LogoutMetrics carries metric IDs needed by the logout flow.
type LogoutMetrics struct {
	Logout int
}

// LogoutEvents carries audit event names used by the logout flow.
type LogoutEvents struct {
	Logout string
}

// LogoutDeps captures logout dependencies. Navigator may be nil for headless
// clients.
type LogoutDeps struct {
	Store         SessionStore
	Navigator     func() navigation.Navigator
	LoginPath     string
	RedirectParam string

	MetricInc func(int)
	EmitAudit AuditFunc

	Metrics LogoutMetrics
	Events  LogoutEvents
}

// LogoutResult reports what a logout did.
type LogoutResult struct {
	WasAuthenticated bool
	Redirected       bool
	Target           string
}

// RunLogout clears the session and, when a signed-in user was not already on
// the login route, redirects there with the current location preserved.
// Repeated calls are harmless: an anonymous session is never redirected.
func RunLogout(ctx context.Context, deps LogoutDeps) (LogoutResult, error) {
	if deps.MetricInc == nil {
		deps.MetricInc = noopMetric
	}
	if deps.EmitAudit == nil {
		deps.EmitAudit = noopAudit
	}

	prev := deps.Store.Get(ctx)
	res := LogoutResult{WasAuthenticated: prev.IsAuthenticated()}

	clearErr := deps.Store.Clear(ctx)
	if !res.WasAuthenticated {
		return res, clearErr
	}

	deps.MetricInc(deps.Metrics.Logout)
	deps.EmitAudit(ctx, deps.Events.Logout, true, prev.Username(), clearErr, nil)

	nav := currentNavigator(deps.Navigator)
	if nav == nil {
		return res, clearErr
	}
	cur := nav.Current()
	if cur.Path == deps.LoginPath {
		return res, clearErr
	}

	res.Target = navigation.LoginRedirect(deps.LoginPath, deps.RedirectParam, cur.FullPath)
	if err := nav.Push(ctx, res.Target); err != nil {
		if clearErr != nil {
			return res, fmt.Errorf("%w (redirect: %v)", clearErr, err)
		}
		return res, err
	}
	res.Redirected = true
	return res, clearErr
}

func currentNavigator(fn func() navigation.Navigator) navigation.Navigator {
	if fn == nil {
		return nil
	}
	return fn()
}

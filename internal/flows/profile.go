package flows

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/MrEthical07/goNebula/envelope"
)

// ProfileMetrics carries metric IDs needed by the profile refresh flow.
type ProfileMetrics struct {
	ProfileRefreshFailure int
}

// ProfileDeps captures profile refresh dependencies.
type ProfileDeps struct {
	Call     CallFunc
	Store    SessionStore
	Endpoint string

	MetricInc func(int)
	Metrics   ProfileMetrics
}

// RunRefreshProfile fetches the signed-in user's profile and stores it.
// Anonymous sessions are left alone. The returned error is informational;
// callers are expected to log it rather than surface it.
func RunRefreshProfile(ctx context.Context, deps ProfileDeps) (bool, error) {
	if deps.MetricInc == nil {
		deps.MetricInc = noopMetric
	}
	if deps.Call == nil || deps.Store == nil {
		return false, nil
	}
	if !deps.Store.Get(ctx).IsAuthenticated() {
		return false, nil
	}

	payload, err := deps.Call(ctx, http.MethodGet, deps.Endpoint, nil)
	if err != nil {
		deps.MetricInc(deps.Metrics.ProfileRefreshFailure)
		return false, err
	}

	profile, err := envelope.Decode[map[string]any](payload)
	if err != nil {
		deps.MetricInc(deps.Metrics.ProfileRefreshFailure)
		return false, fmt.Errorf("profile: %w", err)
	}
	if profile == nil {
		deps.MetricInc(deps.Metrics.ProfileRefreshFailure)
		return false, errors.New("profile: empty payload")
	}
	if err := deps.Store.SetProfile(ctx, profile); err != nil {
		return true, err
	}
	return true, nil
}

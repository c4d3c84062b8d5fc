package flows

import (
	"context"
)

// Service is the centralized flow runner built once by the root client.
type Service struct {
	deps Deps
}

// New returns a flow service with immutable dependency wiring.
func New(deps Deps) Service {
	return Service{deps: deps}
}

// Initialized reports whether the service has been wired with flow deps.
func (s Service) Initialized() bool {
	return s.deps.Login.Call != nil && s.deps.Logout.Store != nil
}

func (s Service) Login(ctx context.Context, req LoginRequest) (*LoginResult, error) {
	return RunLogin(ctx, req, s.deps.Login)
}

func (s Service) Logout(ctx context.Context) (LogoutResult, error) {
	return RunLogout(ctx, s.deps.Logout)
}

func (s Service) SessionExpired(ctx context.Context) (ExpiryResult, error) {
	return RunSessionExpired(ctx, s.deps.Expiry)
}

func (s Service) RefreshProfile(ctx context.Context) (bool, error) {
	return RunRefreshProfile(ctx, s.deps.Profile)
}

func (s Service) Register(ctx context.Context, kind string, req RegisterRequest) (map[string]any, error) {
	return RunRegister(ctx, kind, req, s.deps.Register)
}

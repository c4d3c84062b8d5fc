package flows

import (
	"context"

	"github.com/MrEthical07/goNebula/credential"
)

// CallFunc performs one enveloped backend call and returns the resolved
// payload. Errors are returned exactly as the request pipeline produced them.
type CallFunc func(ctx context.Context, method, path string, body any) ([]byte, error)

// SessionStore is the subset of credential.Store the flows drive.
type SessionStore interface {
	Get(ctx context.Context) credential.Session
	Set(ctx context.Context, token string, profile map[string]any) error
	SetProfile(ctx context.Context, profile map[string]any) error
	Clear(ctx context.Context) error
}

// AuditFunc emits one audit event. metadata is evaluated lazily.
type AuditFunc func(ctx context.Context, event string, success bool, username string, err error, metadata func() map[string]string)

// Deps groups flow dependency sets. The root client builds this once and
// delegates session operations to the matching flow.
type Deps struct {
	Login    LoginDeps
	Logout   LogoutDeps
	Expiry   ExpiryDeps
	Profile  ProfileDeps
	Register RegisterDeps
}

func noopMetric(int) {}

func noopAudit(context.Context, string, bool, string, error, func() map[string]string) {}

func noopWarn(string, ...any) {}

package credential

import (
	"context"
	"errors"
)

// ErrBackendUnavailable is returned when a durable backend cannot be reached.
var ErrBackendUnavailable = errors.New("credential backend unavailable")

// Backend is the durable string key-value store behind a [Store].
// Get reports found=false for absent keys; Delete ignores absent keys.
type Backend interface {
	Get(ctx context.Context, key string) (value string, found bool, err error)
	Set(ctx context.Context, key, value string) error
	Delete(ctx context.Context, keys ...string) error
}

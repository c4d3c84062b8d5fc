package credential

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"go.uber.org/zap"
)

// Default durable keys.
const (
	DefaultTokenKey   = "token"
	DefaultProfileKey = "user"
)

// ErrNilBackend is returned by NewStore when no backend is supplied.
var ErrNilBackend = errors.New("credential backend is nil")

// Options configures a Store.
type Options struct {
	TokenKey   string
	ProfileKey string
	Logger     *zap.Logger
}

// Store is the single process-wide holder of the current session.
// It is safe for concurrent use; concurrent writers are last-write-wins.
type Store struct {
	backend    Backend
	tokenKey   string
	profileKey string
	logger     *zap.Logger

	mu       sync.RWMutex
	hydrated bool
	current  Session
}

// NewStore returns a Store over backend. The backend is not read until the
// first Get.
func NewStore(backend Backend, opts Options) (*Store, error) {
	if backend == nil {
		return nil, ErrNilBackend
	}
	if opts.TokenKey == "" {
		opts.TokenKey = DefaultTokenKey
	}
	if opts.ProfileKey == "" {
		opts.ProfileKey = DefaultProfileKey
	}
	if opts.TokenKey == opts.ProfileKey {
		return nil, fmt.Errorf("credential: token and profile keys must differ (%q)", opts.TokenKey)
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	return &Store{
		backend:    backend,
		tokenKey:   opts.TokenKey,
		profileKey: opts.ProfileKey,
		logger:     opts.Logger,
	}, nil
}

// Get returns a copy of the current session, hydrating from the backend on
// first use.
func (s *Store) Get(ctx context.Context) Session {
	s.mu.RLock()
	if s.hydrated {
		out := s.current.Clone()
		s.mu.RUnlock()
		return out
	}
	s.mu.RUnlock()

	s.mu.Lock()
	defer s.mu.Unlock()
	s.hydrateLocked(ctx)
	return s.current.Clone()
}

// Token returns the current token or "".
func (s *Store) Token(ctx context.Context) string {
	return s.Get(ctx).Token
}

// Set replaces the session and persists both keys. The in-memory session is
// replaced even when persistence fails.
func (s *Store) Set(ctx context.Context, token string, profile map[string]any) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.hydrated = true
	s.current = Session{Token: token, Profile: cloneProfile(profile)}

	if token == "" {
		return s.deleteLocked(ctx)
	}
	if err := s.backend.Set(ctx, s.tokenKey, token); err != nil {
		return err
	}
	return s.persistProfileLocked(ctx, profile)
}

// SetProfile replaces the profile of the current session, keeping the token.
func (s *Store) SetProfile(ctx context.Context, profile map[string]any) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.hydrateLocked(ctx)
	if !s.current.IsAuthenticated() {
		return nil
	}
	s.current.Profile = cloneProfile(profile)
	return s.persistProfileLocked(ctx, profile)
}

// Clear resets to the anonymous session and deletes both keys.
func (s *Store) Clear(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.hydrated = true
	s.current = Anonymous()
	return s.deleteLocked(ctx)
}

func (s *Store) deleteLocked(ctx context.Context) error {
	return s.backend.Delete(ctx, s.tokenKey, s.profileKey)
}

func (s *Store) persistProfileLocked(ctx context.Context, profile map[string]any) error {
	if profile == nil {
		return s.backend.Delete(ctx, s.profileKey)
	}
	raw, err := json.Marshal(profile)
	if err != nil {
		return fmt.Errorf("credential: encode profile: %w", err)
	}
	return s.backend.Set(ctx, s.profileKey, string(raw))
}

func (s *Store) hydrateLocked(ctx context.Context) {
	if s.hydrated {
		return
	}
	s.hydrated = true
	s.current = s.load(ctx)
}

func (s *Store) load(ctx context.Context) Session {
	token, found, err := s.backend.Get(ctx, s.tokenKey)
	if err != nil {
		s.logger.Warn("credential hydrate failed", zap.String("key", s.tokenKey), zap.Error(err))
		return Anonymous()
	}
	if !found || token == "" {
		return Anonymous()
	}

	raw, found, err := s.backend.Get(ctx, s.profileKey)
	if err != nil {
		s.logger.Warn("credential hydrate failed", zap.String("key", s.profileKey), zap.Error(err))
		return Anonymous()
	}
	if !found || raw == "" {
		return Session{Token: token}
	}

	var profile map[string]any
	if err := json.Unmarshal([]byte(raw), &profile); err != nil {
		s.logger.Warn("stored profile is malformed", zap.String("key", s.profileKey), zap.Error(err))
		return Anonymous()
	}
	return Session{Token: token, Profile: profile}
}

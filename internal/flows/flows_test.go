package flows

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrEthical07/goNebula/credential"
	"github.com/MrEthical07/goNebula/navigation"
)

var (
	errNotReady       = errors.New("not ready")
	errInvalidRequest = errors.New("invalid request")
	errBadResponse    = errors.New("bad login response")
)

type fakeNavigator struct {
	mu     sync.Mutex
	cur    navigation.Location
	pushes []string
	move   bool
}

func (n *fakeNavigator) Current() navigation.Location {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.cur
}

func (n *fakeNavigator) Push(_ context.Context, target string) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.pushes = append(n.pushes, target)
	if n.move {
		n.cur = navigation.Location{Path: "/login", FullPath: target}
	}
	return nil
}

type callRecord struct {
	method, path string
	body         any
}

type fakeBackend struct {
	mu       sync.Mutex
	calls    []callRecord
	response func(method, path string) ([]byte, error)
}

func (b *fakeBackend) call(_ context.Context, method, path string, body any) ([]byte, error) {
	b.mu.Lock()
	b.calls = append(b.calls, callRecord{method, path, body})
	b.mu.Unlock()
	return b.response(method, path)
}

func newStore(t *testing.T) *credential.Store {
	t.Helper()
	s, err := credential.NewStore(credential.NewMemoryBackend(), credential.Options{})
	require.NoError(t, err)
	return s
}

func logoutDeps(store SessionStore, nav navigation.Navigator) LogoutDeps {
	return LogoutDeps{
		Store:         store,
		Navigator:     func() navigation.Navigator { return nav },
		LoginPath:     "/login",
		RedirectParam: "redirect",
	}
}

func TestRunLoginStoresCredentials(t *testing.T) {
	ctx := context.Background()
	store := newStore(t)
	backend := &fakeBackend{response: func(string, string) ([]byte, error) {
		return json.Marshal(map[string]any{"token": "tok-1", "user": map[string]any{"username": "alice", "role": "ADMIN"}})
	}}

	var events []string
	res, err := RunLogin(ctx, LoginRequest{Username: "alice", Password: "pw", LoginType: "admin"}, LoginDeps{
		Call:     backend.call,
		Store:    store,
		Endpoint: "/auth/login",
		EmitAudit: func(_ context.Context, event string, _ bool, _ string, _ error, _ func() map[string]string) {
			events = append(events, event)
		},
		Events: LoginEvents{LoginSuccess: "login_success", LoginFailure: "login_failure"},
		Errors: LoginErrors{NotReady: errNotReady, InvalidRequest: errInvalidRequest, InvalidLoginResponse: errBadResponse},
	})
	require.NoError(t, err)
	assert.Equal(t, "tok-1", res.Token)

	sess := store.Get(ctx)
	assert.Equal(t, "tok-1", sess.Token)
	assert.Equal(t, []string{"ADMIN"}, sess.Roles())
	assert.Equal(t, []string{"login_success"}, events)

	require.Len(t, backend.calls, 1)
	assert.Equal(t, http.MethodPost, backend.calls[0].method)
	assert.Equal(t, "admin", backend.calls[0].body.(LoginRequest).LoginType)
}

func TestRunLoginFailures(t *testing.T) {
	callErr := errors.New("wrong password")

	tests := []struct {
		name    string
		req     LoginRequest
		resp    func(string, string) ([]byte, error)
		wantErr error
	}{
		{
			name:    "missing password",
			req:     LoginRequest{Username: "alice"},
			wantErr: errInvalidRequest,
		},
		{
			name:    "backend rejection propagates",
			req:     LoginRequest{Username: "alice", Password: "bad"},
			resp:    func(string, string) ([]byte, error) { return nil, callErr },
			wantErr: callErr,
		},
		{
			name:    "empty token",
			req:     LoginRequest{Username: "alice", Password: "pw"},
			resp:    func(string, string) ([]byte, error) { return []byte(`{"token":""}`), nil },
			wantErr: errBadResponse,
		},
		{
			name:    "payload not an object",
			req:     LoginRequest{Username: "alice", Password: "pw"},
			resp:    func(string, string) ([]byte, error) { return []byte(`"tok"`), nil },
			wantErr: errBadResponse,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := newStore(t)
			failures := 0
			backend := &fakeBackend{response: tt.resp}
			_, err := RunLogin(context.Background(), tt.req, LoginDeps{
				Call:      backend.call,
				Store:     store,
				Endpoint:  "/auth/login",
				MetricInc: func(id int) { failures += id },
				Metrics:   LoginMetrics{LoginSuccess: 100, LoginFailure: 1},
				Errors:    LoginErrors{NotReady: errNotReady, InvalidRequest: errInvalidRequest, InvalidLoginResponse: errBadResponse},
			})
			require.ErrorIs(t, err, tt.wantErr)
			assert.Equal(t, 1, failures)
			assert.False(t, store.Get(context.Background()).IsAuthenticated())
		})
	}
}

func TestRunLoginNotReady(t *testing.T) {
	_, err := RunLogin(context.Background(), LoginRequest{}, LoginDeps{Errors: LoginErrors{NotReady: errNotReady}})
	require.ErrorIs(t, err, errNotReady)
}

func TestRunLogoutIsIdempotent(t *testing.T) {
	ctx := context.Background()
	store := newStore(t)
	require.NoError(t, store.Set(ctx, "tok", map[string]any{"username": "a"}))
	nav := &fakeNavigator{cur: navigation.Location{Path: "/orders", FullPath: "/orders?page=2"}}

	first, err := RunLogout(ctx, logoutDeps(store, nav))
	require.NoError(t, err)
	second, err := RunLogout(ctx, logoutDeps(store, nav))
	require.NoError(t, err)

	assert.True(t, first.Redirected)
	assert.False(t, second.Redirected)
	assert.Equal(t, []string{"/login?redirect=/orders%3Fpage%3D2"}, nav.pushes)
	assert.False(t, store.Get(ctx).IsAuthenticated())
}

func TestRunLogoutOnLoginPage(t *testing.T) {
	ctx := context.Background()
	store := newStore(t)
	require.NoError(t, store.Set(ctx, "tok", nil))
	nav := &fakeNavigator{cur: navigation.Location{Path: "/login", FullPath: "/login"}}

	res, err := RunLogout(ctx, logoutDeps(store, nav))
	require.NoError(t, err)
	assert.False(t, res.Redirected)
	assert.Empty(t, nav.pushes)
	assert.False(t, store.Get(ctx).IsAuthenticated())
}

func TestRunLogoutHeadless(t *testing.T) {
	ctx := context.Background()
	store := newStore(t)
	require.NoError(t, store.Set(ctx, "tok", nil))

	res, err := RunLogout(ctx, LogoutDeps{Store: store, LoginPath: "/login"})
	require.NoError(t, err)
	assert.True(t, res.WasAuthenticated)
	assert.False(t, res.Redirected)
}

func TestRunSessionExpiredOnLoginPageDoesNothing(t *testing.T) {
	ctx := context.Background()
	store := newStore(t)
	require.NoError(t, store.Set(ctx, "tok", nil))
	nav := &fakeNavigator{cur: navigation.Location{Path: "/login", FullPath: "/login"}}
	var warnings []string

	deps := ExpiryDeps{
		Logout:  logoutDeps(store, nav),
		Warning: func(m string) { warnings = append(warnings, m) },
		Message: "Your session has expired. Please sign in again.",
	}
	for i := 0; i < 2; i++ {
		res, err := RunSessionExpired(ctx, deps)
		require.NoError(t, err)
		assert.True(t, res.Skipped)
	}

	assert.Empty(t, nav.pushes)
	assert.Empty(t, warnings)
	assert.True(t, store.Get(ctx).IsAuthenticated(), "session must be left alone on the login page")
}

func TestRunSessionExpiredRedirectsOnce(t *testing.T) {
	ctx := context.Background()
	store := newStore(t)
	require.NoError(t, store.Set(ctx, "tok", nil))
	nav := &fakeNavigator{cur: navigation.Location{Path: "/cart", FullPath: "/cart"}, move: true}
	var warnings []string

	deps := ExpiryDeps{
		Logout:  logoutDeps(store, nav),
		Warning: func(m string) { warnings = append(warnings, m) },
		Message: "expired",
	}
	first, err := RunSessionExpired(ctx, deps)
	require.NoError(t, err)
	second, err := RunSessionExpired(ctx, deps)
	require.NoError(t, err)

	assert.True(t, first.Logout.Redirected)
	assert.True(t, second.Skipped)
	assert.Equal(t, []string{"/login?redirect=/cart"}, nav.pushes)
	assert.Equal(t, []string{"expired"}, warnings)
}

func TestRunSessionExpiredAnonymousStillRedirects(t *testing.T) {
	ctx := context.Background()
	store := newStore(t)
	nav := &fakeNavigator{cur: navigation.Location{Path: "/", FullPath: "/"}, move: true}
	var warnings []string

	deps := ExpiryDeps{
		Logout:  logoutDeps(store, nav),
		Warning: func(m string) { warnings = append(warnings, m) },
		Message: "expired",
	}
	res, err := RunSessionExpired(ctx, deps)
	require.NoError(t, err)

	assert.False(t, res.Logout.WasAuthenticated)
	assert.True(t, res.Logout.Redirected)
	assert.Equal(t, "/login?redirect=/", res.Logout.Target)
	assert.Equal(t, []string{"/login?redirect=/"}, nav.pushes)
	assert.Equal(t, []string{"expired"}, warnings)

	again, err := RunSessionExpired(ctx, deps)
	require.NoError(t, err)
	assert.True(t, again.Skipped)
	assert.Len(t, nav.pushes, 1)
}

func TestRunSessionExpiredHeadless(t *testing.T) {
	ctx := context.Background()
	store := newStore(t)
	require.NoError(t, store.Set(ctx, "tok", nil))
	var warnings []string
	var expired int

	deps := ExpiryDeps{
		Logout:    LogoutDeps{Store: store, LoginPath: "/login"},
		Warning:   func(m string) { warnings = append(warnings, m) },
		Message:   "expired",
		MetricInc: func(int) { expired++ },
	}
	for i := 0; i < 3; i++ {
		_, err := RunSessionExpired(ctx, deps)
		require.NoError(t, err)
	}

	assert.False(t, store.Get(ctx).IsAuthenticated())
	assert.Equal(t, []string{"expired"}, warnings)
	assert.Equal(t, 1, expired)
}

func TestRunRefreshProfile(t *testing.T) {
	ctx := context.Background()
	store := newStore(t)
	backend := &fakeBackend{response: func(string, string) ([]byte, error) {
		return []byte(`{"username":"alice","nickname":"Ali"}`), nil
	}}
	deps := ProfileDeps{Call: backend.call, Store: store, Endpoint: "/member/info"}

	updated, err := RunRefreshProfile(ctx, deps)
	require.NoError(t, err)
	assert.False(t, updated)
	assert.Empty(t, backend.calls, "anonymous sessions must not call the backend")

	require.NoError(t, store.Set(ctx, "tok", nil))
	updated, err = RunRefreshProfile(ctx, deps)
	require.NoError(t, err)
	assert.True(t, updated)
	assert.Equal(t, "alice", store.Get(ctx).Username())
	assert.Equal(t, "tok", store.Get(ctx).Token)

	failing := &fakeBackend{response: func(string, string) ([]byte, error) { return nil, errors.New("boom") }}
	deps.Call = failing.call
	updated, err = RunRefreshProfile(ctx, deps)
	require.Error(t, err)
	assert.False(t, updated)
	assert.Equal(t, "alice", store.Get(ctx).Username(), "failed refresh keeps the old profile")
}

func TestRunRegister(t *testing.T) {
	backend := &fakeBackend{response: func(_, path string) ([]byte, error) {
		return []byte(`{"username":"m1","role":"MERCHANT"}`), nil
	}}
	deps := RegisterDeps{
		Call:       backend.call,
		PathPrefix: "/auth/register",
		Errors:     RegisterErrors{NotReady: errNotReady, InvalidRequest: errInvalidRequest},
	}

	out, err := RunRegister(context.Background(), RegisterMerchant, RegisterRequest{Username: "m1", Password: "pw"}, deps)
	require.NoError(t, err)
	assert.Equal(t, "MERCHANT", out["role"])
	assert.Equal(t, "/auth/register/merchant", backend.calls[0].path)

	_, err = RunRegister(context.Background(), "root", RegisterRequest{Username: "x", Password: "y"}, deps)
	require.ErrorIs(t, err, errInvalidRequest)
}

// Package mockbackend is an in-process stand-in for the Nebula REST backend.
//
// It speaks the same envelope and status conventions as the real service:
// business results are HTTP 200 with {"code","message"|"msg","data"}, a
// missing or stale bearer token is HTTP 401, and role violations are HTTP
// 403. It backs the end-to-end tests and cmd/nebula-mockd.
package mockbackend

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/MrEthical07/goNebula/envelope"
	"github.com/golang-jwt/jwt/v5"
	"github.com/gorilla/mux"
	"go.uber.org/zap"
)

// Roles known to the backend.
const (
	RoleAdmin    = "ADMIN"
	RoleMerchant = "MERCHANT"
	RoleUser     = "USER"
)

// User is a stored account.
type User struct {
	ID       int64  `json:"id"`
	Username string `json:"username"`
	Password string `json:"-"`
	Nickname string `json:"nickname,omitempty"`
	Email    string `json:"email,omitempty"`
	Phone    string `json:"phone,omitempty"`
	Role     string `json:"role"`
}

func (u User) profile() map[string]any {
	return map[string]any{
		"id":       u.ID,
		"username": u.Username,
		"nickname": u.Nickname,
		"email":    u.Email,
		"phone":    u.Phone,
		"role":     u.Role,
		"roles":    []string{u.Role},
	}
}

// DefaultUsers returns the seeded development accounts.
func DefaultUsers() []User {
	return []User{
		{Username: "admin", Password: "admin123", Nickname: "Administrator", Role: RoleAdmin},
		{Username: "merchant", Password: "merchant123", Nickname: "Nebula Shop", Role: RoleMerchant},
		{Username: "alice", Password: "alice123", Nickname: "Alice", Role: RoleUser},
	}
}

// Options configures a Server.
type Options struct {
	Secret     []byte
	InviteCode string
	TokenTTL   time.Duration
	// UseMsg selects the "msg" message field instead of "message".
	UseMsg bool
	Users  []User
	Logger *zap.Logger
}

type claims struct {
	Role       string `json:"role"`
	Generation int    `json:"gen"`
	jwt.RegisteredClaims
}

// Server is the mock backend. It is safe for concurrent use.
type Server struct {
	secret     []byte
	inviteCode string
	ttl        time.Duration
	useMsg     bool
	logger     *zap.Logger
	router     *mux.Router

	mu         sync.RWMutex
	users      map[string]*User
	nextID     int64
	generation int
	notices    []map[string]any
	carts      map[string][]map[string]any
}

// New returns a server seeded with opts.Users, or DefaultUsers when empty.
func New(opts Options) *Server {
	if len(opts.Secret) == 0 {
		opts.Secret = []byte("nebula-dev-secret")
	}
	if opts.InviteCode == "" {
		opts.InviteCode = "NEBULA-INVITE"
	}
	if opts.TokenTTL <= 0 {
		opts.TokenTTL = 2 * time.Hour
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	if len(opts.Users) == 0 {
		opts.Users = DefaultUsers()
	}

	s := &Server{
		secret:     opts.Secret,
		inviteCode: opts.InviteCode,
		ttl:        opts.TokenTTL,
		useMsg:     opts.UseMsg,
		logger:     opts.Logger,
		users:      make(map[string]*User, len(opts.Users)),
		carts:      make(map[string][]map[string]any),
		notices: []map[string]any{
			{"id": 1, "title": "Welcome to Nebula", "content": "Spring sale starts Monday."},
			{"id": 2, "title": "Shipping update", "content": "Free shipping over 99."},
		},
	}
	for _, u := range opts.Users {
		u := u
		s.nextID++
		u.ID = s.nextID
		s.users[u.Username] = &u
	}
	s.router = s.routes()
	return s
}

// Handler returns the HTTP handler serving the /api tree.
func (s *Server) Handler() http.Handler {
	return s.router
}

// InviteCode returns the code admin registration requires.
func (s *Server) InviteCode() string {
	return s.inviteCode
}

// ExpireAll invalidates every token issued so far.
func (s *Server) ExpireAll() {
	s.mu.Lock()
	s.generation++
	s.mu.Unlock()
}

// Issue mints a token for an existing user.
func (s *Server) Issue(username string) (string, error) {
	s.mu.RLock()
	u, ok := s.users[username]
	gen := s.generation
	s.mu.RUnlock()
	if !ok {
		return "", fmt.Errorf("unknown user %q", username)
	}
	return s.sign(*u, gen)
}

func (s *Server) sign(u User, gen int) (string, error) {
	now := time.Now()
	c := claims{
		Role:       u.Role,
		Generation: gen,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   u.Username,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, c).SignedString(s.secret)
}

var errUnauthorized = errors.New("unauthorized")

func (s *Server) authenticate(r *http.Request) (User, error) {
	header := r.Header.Get("Authorization")
	raw, ok := strings.CutPrefix(header, "Bearer ")
	if !ok || raw == "" {
		return User{}, errUnauthorized
	}

	var c claims
	parsed, err := jwt.ParseWithClaims(raw, &c, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return s.secret, nil
	})
	if err != nil || !parsed.Valid {
		return User{}, errUnauthorized
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	if c.Generation != s.generation {
		return User{}, errUnauthorized
	}
	u, ok := s.users[c.Subject]
	if !ok {
		return User{}, errUnauthorized
	}
	return *u, nil
}

func (s *Server) writeEnvelope(w http.ResponseWriter, status int, env envelope.Envelope) {
	w.Header().Set("Content-Type", "application/json;charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(env); err != nil {
		s.logger.Warn("write response failed", zap.Error(err))
	}
}

func (s *Server) ok(w http.ResponseWriter, data any) {
	s.writeEnvelope(w, http.StatusOK, envelope.Success(data))
}

// fail writes a business failure: HTTP 200 with a non-200 code.
func (s *Server) fail(w http.ResponseWriter, code int, msg string) {
	s.writeEnvelope(w, http.StatusOK, envelope.Fail(code, msg, s.useMsg))
}

// reject writes a transport-level failure with a matching status.
func (s *Server) reject(w http.ResponseWriter, status int, msg string) {
	s.writeEnvelope(w, status, envelope.Fail(status, msg, s.useMsg))
}

func (s *Server) snapshotUsers() []User {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]User, 0, len(s.users))
	for _, u := range s.users {
		out = append(out, *u)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

package navigation

import (
	"context"
	"net/url"
	"strings"

	"go.uber.org/zap"

	"github.com/MrEthical07/goNebula/route"
)

// Defaults used when GuardConfig fields are empty.
const (
	DefaultLoginPath     = "/login"
	DefaultRedirectParam = "redirect"
	DefaultSignInMessage = "Please sign in first"
)

// Attempt is one navigation attempt presented to the guard.
type Attempt struct {
	Path     string
	FullPath string
	Meta     route.Meta
}

// Decision is the guard's verdict. When Allow is false, Redirect holds the
// location to navigate to instead. Title is always set.
type Decision struct {
	Allow    bool
	Redirect string
	Title    string
}

// Authenticator reports whether the current session is signed in.
type Authenticator interface {
	IsAuthenticated(ctx context.Context) bool
}

// AuthenticatorFunc adapts a function to Authenticator.
type AuthenticatorFunc func(ctx context.Context) bool

func (f AuthenticatorFunc) IsAuthenticated(ctx context.Context) bool { return f(ctx) }

// Warner shows a non-fatal warning to the user.
type Warner interface {
	Warning(msg string)
}

// GuardConfig configures a Guard. A non-empty TitleSuffix renders titles
// as "<title> - <suffix>".
type GuardConfig struct {
	LoginPath     string
	RedirectParam string
	DefaultTitle  string
	TitleSuffix   string
	SignInMessage string
}

func (c GuardConfig) withDefaults() GuardConfig {
	if c.LoginPath == "" {
		c.LoginPath = DefaultLoginPath
	}
	if c.RedirectParam == "" {
		c.RedirectParam = DefaultRedirectParam
	}
	if c.SignInMessage == "" {
		c.SignInMessage = DefaultSignInMessage
	}
	return c
}

// GuardOption customizes a Guard.
type GuardOption func(*Guard)

// WithGuardLogger sets the guard's logger.
func WithGuardLogger(l *zap.Logger) GuardOption {
	return func(g *Guard) {
		if l != nil {
			g.logger = l
		}
	}
}

// WithBlockedHook registers fn to run whenever an attempt is refused.
func WithBlockedHook(fn func(Attempt)) GuardOption {
	return func(g *Guard) {
		g.onBlocked = fn
	}
}

// Guard runs once per navigation attempt before it is committed.
type Guard struct {
	cfg       GuardConfig
	auth      Authenticator
	warn      Warner
	logger    *zap.Logger
	onBlocked func(Attempt)
}

// NewGuard returns a guard. warn may be nil.
func NewGuard(cfg GuardConfig, auth Authenticator, warn Warner, opts ...GuardOption) *Guard {
	g := &Guard{
		cfg:    cfg.withDefaults(),
		auth:   auth,
		warn:   warn,
		logger: zap.NewNop(),
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Config returns the effective configuration.
func (g *Guard) Config() GuardConfig {
	return g.cfg
}

// Before decides whether a may proceed.
func (g *Guard) Before(ctx context.Context, a Attempt) Decision {
	d := Decision{Allow: true, Title: g.Title(a.Meta)}

	if !a.Meta.RequiresAuth {
		return d
	}
	if g.auth != nil && g.auth.IsAuthenticated(ctx) {
		return d
	}

	full := a.FullPath
	if full == "" {
		full = a.Path
	}
	if g.warn != nil {
		g.warn.Warning(g.cfg.SignInMessage)
	}
	g.logger.Debug("navigation blocked", zap.String("path", a.Path))
	if g.onBlocked != nil {
		g.onBlocked(a)
	}
	d.Allow = false
	d.Redirect = LoginRedirect(g.cfg.LoginPath, g.cfg.RedirectParam, full)
	return d
}

// Title renders the page title for meta.
func (g *Guard) Title(meta route.Meta) string {
	if meta.Title == "" {
		return g.cfg.DefaultTitle
	}
	if g.cfg.TitleSuffix == "" {
		return meta.Title
	}
	return meta.Title + " - " + g.cfg.TitleSuffix
}

// LoginRedirect builds "<login>?<param>=<escaped fullPath>". Slashes stay
// readable, matching browser router query encoding.
func LoginRedirect(login, param, fullPath string) string {
	if fullPath == "" {
		return login
	}
	escaped := strings.ReplaceAll(url.QueryEscape(fullPath), "%2F", "/")
	return login + "?" + param + "=" + escaped
}

package goNebula

import (
	"errors"
	"net/url"
	"strings"
	"time"

	"github.com/MrEthical07/goNebula/credential"
	"github.com/MrEthical07/goNebula/internal/dispatch"
	"github.com/MrEthical07/goNebula/navigation"
)

// Frontend selects which of the two consoles a client acts as.
type Frontend string

const (
	// FrontendAdmin is the merchant/admin console. It signs in with
	// loginType "admin" and mounts role-gated routes.
	FrontendAdmin Frontend = "admin"
	// FrontendStore is the customer storefront.
	FrontendStore Frontend = "store"
)

// Config defines a public type used by goNebula APIs.
//
// Config instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type Config struct {
	Frontend   Frontend
	Transport  TransportConfig
	Session    SessionConfig
	Navigation NavigationConfig
	Messages   MessagesConfig
	Endpoints  EndpointsConfig
	Audit      AuditConfig
	Metrics    MetricsConfig
}

/*
====================================
TRANSPORT CONFIG
====================================
*/

// TransportConfig controls how requests reach the backend. Every request
// path is joined under BaseURL + APIPrefix.
type TransportConfig struct {
	BaseURL   string
	APIPrefix string
	Timeout   time.Duration
	UserAgent string
}

/*
====================================
SESSION CONFIG
====================================
*/

// SessionConfig names the durable keys of the credential store.
type SessionConfig struct {
	TokenKey    string
	ProfileKey  string
	RedisPrefix string
}

/*
====================================
NAVIGATION CONFIG
====================================
*/

// NavigationConfig defines a public type used by goNebula APIs.
//
// NavigationConfig instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type NavigationConfig struct {
	LoginPath     string
	RedirectParam string
	DefaultTitle  string
	TitleSuffix   string
	NotFoundPath  string
	SignInMessage string
}

// MessagesConfig holds the user-facing texts attached to rejected requests.
type MessagesConfig struct {
	Busy           string
	SessionExpired string
	Forbidden      string
	NotFound       string
	Server         string
	Network        string
}

// EndpointsConfig holds backend paths relative to the API prefix.
type EndpointsConfig struct {
	Login          string
	Profile        string
	RegisterPrefix string
}

/*
====================================
OBSERVABILITY CONFIG
====================================
*/

// AuditConfig defines a public type used by goNebula APIs.
//
// AuditConfig instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type AuditConfig struct {
	Enabled    bool
	BufferSize int
	DropIfFull bool
}

// MetricsConfig defines a public type used by goNebula APIs.
//
// MetricsConfig instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type MetricsConfig struct {
	Enabled                 bool
	EnableLatencyHistograms bool
}

// DefaultConfig returns the admin console configuration.
func DefaultConfig() Config {
	return AdminConfig()
}

// AdminConfig returns defaults for the merchant/admin console.
func AdminConfig() Config {
	cfg := baseConfig()
	cfg.Frontend = FrontendAdmin
	cfg.Navigation.DefaultTitle = "Nebula Admin"
	cfg.Navigation.TitleSuffix = "Nebula Admin"
	return cfg
}

// StoreConfig returns defaults for the customer storefront.
func StoreConfig() Config {
	cfg := baseConfig()
	cfg.Frontend = FrontendStore
	cfg.Navigation.DefaultTitle = "Nebula Store"
	cfg.Navigation.TitleSuffix = "Nebula Store"
	return cfg
}

func baseConfig() Config {
	msgs := dispatch.DefaultMessages()
	return Config{
		Transport: TransportConfig{
			BaseURL:   "http://localhost:8080",
			APIPrefix: "/api",
			Timeout:   10 * time.Second,
			UserAgent: "goNebula",
		},
		Session: SessionConfig{
			TokenKey:    credential.DefaultTokenKey,
			ProfileKey:  credential.DefaultProfileKey,
			RedisPrefix: "nebula",
		},
		Navigation: NavigationConfig{
			LoginPath:     navigation.DefaultLoginPath,
			RedirectParam: navigation.DefaultRedirectParam,
			NotFoundPath:  "/404",
			SignInMessage: navigation.DefaultSignInMessage,
		},
		Messages: MessagesConfig{
			Busy:           msgs.Busy,
			SessionExpired: msgs.SessionExpired,
			Forbidden:      msgs.Forbidden,
			NotFound:       msgs.NotFound,
			Server:         msgs.Server,
			Network:        msgs.Network,
		},
		Endpoints: EndpointsConfig{
			Login:          "/auth/login",
			Profile:        "/member/info",
			RegisterPrefix: "/auth/register",
		},
		Audit: AuditConfig{
			Enabled:    false,
			BufferSize: 256,
			DropIfFull: true,
		},
		Metrics: MetricsConfig{
			Enabled:                 false,
			EnableLatencyHistograms: false,
		},
	}
}

func cloneConfig(cfg Config) Config {
	return cfg
}

func (c Config) dispatchMessages() dispatch.Messages {
	return dispatch.Messages{
		Busy:           c.Messages.Busy,
		SessionExpired: c.Messages.SessionExpired,
		Forbidden:      c.Messages.Forbidden,
		NotFound:       c.Messages.NotFound,
		Server:         c.Messages.Server,
		Network:        c.Messages.Network,
	}
}

// loginType is the value the backend expects in the loginType field.
func (c Config) loginType() string {
	return string(c.Frontend)
}

// Validate reports the first configuration problem found.
func (c *Config) Validate() error {
	switch c.Frontend {
	case FrontendAdmin, FrontendStore:
	default:
		return errors.New("Frontend must be 'admin' or 'store'")
	}

	// Transport
	if strings.TrimSpace(c.Transport.BaseURL) == "" {
		return errors.New("Transport BaseURL must be set")
	}
	u, err := url.Parse(c.Transport.BaseURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return errors.New("Transport BaseURL must be an absolute URL")
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return errors.New("Transport BaseURL scheme must be http or https")
	}
	if c.Transport.APIPrefix != "" && !strings.HasPrefix(c.Transport.APIPrefix, "/") {
		return errors.New("Transport APIPrefix must start with '/'")
	}
	if c.Transport.Timeout <= 0 {
		return errors.New("Transport Timeout must be > 0")
	}

	// Session
	if c.Session.TokenKey == "" || c.Session.ProfileKey == "" {
		return errors.New("Session TokenKey and ProfileKey must be set")
	}
	if c.Session.TokenKey == c.Session.ProfileKey {
		return errors.New("Session TokenKey and ProfileKey must differ")
	}

	// Navigation
	if !strings.HasPrefix(c.Navigation.LoginPath, "/") {
		return errors.New("Navigation LoginPath must be an absolute path")
	}
	if c.Navigation.RedirectParam == "" {
		return errors.New("Navigation RedirectParam must be set")
	}
	if c.Navigation.NotFoundPath != "" && !strings.HasPrefix(c.Navigation.NotFoundPath, "/") {
		return errors.New("Navigation NotFoundPath must be an absolute path")
	}

	// Endpoints
	if !strings.HasPrefix(c.Endpoints.Login, "/") {
		return errors.New("Endpoints Login must start with '/'")
	}
	if !strings.HasPrefix(c.Endpoints.Profile, "/") {
		return errors.New("Endpoints Profile must start with '/'")
	}
	if !strings.HasPrefix(c.Endpoints.RegisterPrefix, "/") {
		return errors.New("Endpoints RegisterPrefix must start with '/'")
	}

	// Audit
	if c.Audit.Enabled && c.Audit.BufferSize <= 0 {
		return errors.New("Audit BufferSize must be > 0 when audit is enabled")
	}

	// Metrics
	if c.Metrics.EnableLatencyHistograms && !c.Metrics.Enabled {
		return errors.New("Metrics EnableLatencyHistograms requires Metrics Enabled")
	}

	return nil
}

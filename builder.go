package goNebula

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/MrEthical07/goNebula/credential"
	internalflows "github.com/MrEthical07/goNebula/internal/flows"
	"github.com/MrEthical07/goNebula/route"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// Builder defines a public type used by goNebula APIs.
//
// Builder instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type Builder struct {
	config Config

	httpClient *http.Client
	backend    credential.Backend
	redis      redis.UniversalClient
	store      *credential.Store

	navigator Navigator
	notifier  Notifier
	progress  Progress
	logger    *zap.Logger
	auditSink AuditSink
	routes    []route.Node

	built bool
}

// New returns a builder seeded with the admin console defaults.
func New() *Builder {
	return &Builder{
		config: DefaultConfig(),
	}
}

// WithConfig replaces the whole configuration.
func (b *Builder) WithConfig(cfg Config) *Builder {
	b.config = cloneConfig(cfg)
	return b
}

// WithBaseURL overrides Transport.BaseURL.
func (b *Builder) WithBaseURL(baseURL string) *Builder {
	b.config.Transport.BaseURL = baseURL
	return b
}

// WithHTTPClient sets the transport. A zero Timeout is replaced by the
// configured transport timeout; the caller's client is not modified.
func (b *Builder) WithHTTPClient(c *http.Client) *Builder {
	b.httpClient = c
	return b
}

// WithBackend sets the durable backend of the credential store.
func (b *Builder) WithBackend(backend credential.Backend) *Builder {
	b.backend = backend
	return b
}

// WithRedis persists credentials in Redis under Session.RedisPrefix.
// WithBackend takes precedence.
func (b *Builder) WithRedis(client redis.UniversalClient) *Builder {
	b.redis = client
	return b
}

// WithStore shares an existing credential store. It takes precedence over
// WithBackend and WithRedis.
func (b *Builder) WithStore(store *credential.Store) *Builder {
	b.store = store
	return b
}

// WithNavigator describes the withnavigator operation and its observable behavior.
//
// WithNavigator does not mutate shared global state.
func (b *Builder) WithNavigator(nav Navigator) *Builder {
	b.navigator = nav
	return b
}

func (b *Builder) WithNotifier(n Notifier) *Builder {
	b.notifier = n
	return b
}

func (b *Builder) WithProgress(p Progress) *Builder {
	b.progress = p
	return b
}

func (b *Builder) WithLogger(l *zap.Logger) *Builder {
	b.logger = l
	return b
}

// WithAuditSink sets where audit events are delivered.
//
// Events reach the sink only when Audit.Enabled is set.
func (b *Builder) WithAuditSink(sink AuditSink) *Builder {
	b.auditSink = sink
	return b
}

// WithRoutes sets the static route table filtered by AccessibleRoutes.
func (b *Builder) WithRoutes(tree []route.Node) *Builder {
	b.routes = route.CloneTree(tree)
	return b
}

// WithMetricsEnabled toggles the counter set.
func (b *Builder) WithMetricsEnabled(enabled bool) *Builder {
	b.config.Metrics.Enabled = enabled
	return b
}

// WithLatencyHistograms toggles request latency buckets. Build rejects it
// without WithMetricsEnabled.
func (b *Builder) WithLatencyHistograms(enabled bool) *Builder {
	b.config.Metrics.EnableLatencyHistograms = enabled
	return b
}

// Build validates the configuration and returns a ready client. A builder
// can be used once.
func (b *Builder) Build() (*Client, error) {
	if b.built {
		return nil, ErrBuilderUsed
	}

	cfg := cloneConfig(b.config)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	logger := b.logger
	if logger == nil {
		logger = zap.NewNop()
	}
	logger = logger.With(zap.String("frontend", string(cfg.Frontend)))

	// -------- CREDENTIAL STORE --------
	store := b.store
	if store == nil {
		backend := b.backend
		switch {
		case backend != nil:
		case b.redis != nil:
			backend = credential.NewRedisBackend(b.redis, cfg.Session.RedisPrefix)
		default:
			backend = credential.NewMemoryBackend()
		}

		var err error
		store, err = credential.NewStore(backend, credential.Options{
			TokenKey:   cfg.Session.TokenKey,
			ProfileKey: cfg.Session.ProfileKey,
			Logger:     logger.Named("credential"),
		})
		if err != nil {
			return nil, err
		}
	}

	// -------- ROUTES --------
	var assembler *route.Assembler
	if len(b.routes) > 0 {
		if err := route.Validate(b.routes); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidRequest, err)
		}
		var err error
		assembler, err = route.NewAssembler(b.routes)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidRequest, err)
		}
	}

	// -------- TRANSPORT --------
	httpClient := &http.Client{Timeout: cfg.Transport.Timeout}
	if b.httpClient != nil {
		copied := *b.httpClient
		if copied.Timeout <= 0 {
			copied.Timeout = cfg.Transport.Timeout
		}
		httpClient = &copied
	}

	c := &Client{
		config:    cfg,
		http:      httpClient,
		baseURL:   strings.TrimRight(cfg.Transport.BaseURL, "/") + strings.TrimRight(cfg.Transport.APIPrefix, "/"),
		store:     store,
		logger:    logger,
		notifier:  b.notifier,
		progress:  b.progress,
		metrics:   NewMetrics(cfg.Metrics),
		assembler: assembler,
		nav:       b.navigator,
	}
	if c.notifier == nil {
		c.notifier = NoopNotifier{}
	}
	if c.progress == nil {
		c.progress = NoopProgress{}
	}
	c.audit = newAuditDispatcher(cfg.Audit, cfg.Frontend, b.auditSink, logger.Named("audit"))
	c.flows = internalflows.New(c.flowDeps())

	if !c.flows.Initialized() {
		c.Close()
		return nil, errors.New("flow wiring incomplete")
	}

	b.built = true

	return c, nil
}

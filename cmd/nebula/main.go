// Command nebula drives the Nebula admin console and storefront backends from
// the terminal: sign in, call endpoints, inspect the role-gated menu and walk
// routes through the navigation guard.
package main

import (
	"bytes"
	"embed"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/prometheus/common/expfmt"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	goNebula "github.com/MrEthical07/goNebula"
	"github.com/MrEthical07/goNebula/credential"
	"github.com/MrEthical07/goNebula/internal/logging"
	promexport "github.com/MrEthical07/goNebula/metrics/export/prometheus"
	"github.com/MrEthical07/goNebula/route"
)

//go:embed routes/*.yaml
var routeTables embed.FS

// app holds the state shared by every subcommand for one invocation.
type app struct {
	settings settings
	logger   *zap.Logger
	client   *goNebula.Client
	redis    *redis.Client
	audit    *os.File
	notes    *colorNotifier
}

func newRootCmd(a *app) *cobra.Command {
	s := a.settings

	root := &cobra.Command{
		Use:   "nebula",
		Short: "Nebula console client",
		Long: `nebula talks to a Nebula backend the way the admin console and the
storefront do. The session is kept on disk (or in Redis) between runs.

Use --frontend store to act as a storefront customer.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.open(cmd.ErrOrStderr())
		},
	}

	flags := root.PersistentFlags()
	flags.StringVar(&a.settings.Frontend, "frontend", s.Frontend, "frontend to act as: admin or store")
	flags.StringVar(&a.settings.BaseURL, "base-url", s.BaseURL, "backend origin")
	flags.StringVar(&a.settings.APIPrefix, "api-prefix", s.APIPrefix, "path prefix of every API call")
	flags.DurationVar(&a.settings.Timeout, "timeout", s.Timeout, "per-request timeout")
	flags.StringVar(&a.settings.SessionFile, "session-file", s.SessionFile, "session file (default ~/.nebula/session.json)")
	flags.StringVar(&a.settings.RedisURL, "redis-url", s.RedisURL, "keep the session in Redis instead of a file")
	flags.StringVar(&a.settings.RoutesFile, "routes", s.RoutesFile, "route table YAML (default: built-in table for the frontend)")
	flags.StringVar(&a.settings.LogLevel, "log-level", s.LogLevel, "debug, info, warn or error")
	flags.StringVar(&a.settings.LogFile, "log-file", s.LogFile, "also write JSON logs to this rotating file")
	flags.StringVar(&a.settings.AuditFile, "audit-log", s.AuditFile, "append audit events as JSON lines to this file")
	flags.BoolVar(&a.settings.Metrics, "metrics", s.Metrics, "print client metrics in Prometheus text format on exit")

	root.AddCommand(
		newLoginCmd(a),
		newLogoutCmd(a),
		newWhoamiCmd(a),
		newGetCmd(a),
		newPostCmd(a),
		newDownloadCmd(a),
		newMenuCmd(a),
		newNavigateCmd(a),
		newRegisterCmd(a),
	)
	return root
}

func (a *app) open(stderr io.Writer) error {
	logger, err := logging.New(logging.Options{Level: a.settings.LogLevel, FilePath: a.settings.LogFile})
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	a.logger = logger.Named("nebula")

	cfg := goNebula.AdminConfig()
	if a.settings.Frontend == string(goNebula.FrontendStore) {
		cfg = goNebula.StoreConfig()
	} else if a.settings.Frontend != string(goNebula.FrontendAdmin) {
		return fmt.Errorf("unknown frontend %q", a.settings.Frontend)
	}
	cfg.Transport.BaseURL = a.settings.BaseURL
	cfg.Transport.APIPrefix = a.settings.APIPrefix
	cfg.Transport.Timeout = a.settings.Timeout
	cfg.Transport.UserAgent = "nebula-cli"
	cfg.Metrics.Enabled = a.settings.Metrics
	cfg.Metrics.EnableLatencyHistograms = a.settings.Metrics
	cfg.Audit.Enabled = true

	tree, err := a.loadRoutes()
	if err != nil {
		return err
	}

	a.notes = newColorNotifier(stderr)
	b := goNebula.New().
		WithConfig(cfg).
		WithLogger(a.logger).
		WithNotifier(a.notes).
		WithRoutes(tree)

	if a.settings.AuditFile != "" {
		f, err := os.OpenFile(a.settings.AuditFile, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o600)
		if err != nil {
			return fmt.Errorf("open audit log: %w", err)
		}
		a.audit = f
		b.WithAuditSink(goNebula.NewJSONWriterSink(f))
	} else {
		b.WithAuditSink(goNebula.NewZapSink(a.logger))
	}

	switch {
	case a.settings.RedisURL != "":
		opts, err := redis.ParseURL(a.settings.RedisURL)
		if err != nil {
			return fmt.Errorf("parse redis url: %w", err)
		}
		a.redis = redis.NewClient(opts)
		b.WithRedis(a.redis)
	default:
		path := a.settings.SessionFile
		if path == "" {
			path, err = credential.DefaultSessionPath()
			if err != nil {
				return fmt.Errorf("resolve session file: %w", err)
			}
		}
		b.WithBackend(credential.NewFileBackend(path))
	}

	client, err := b.Build()
	if err != nil {
		return fmt.Errorf("build client: %w", err)
	}
	a.client = client
	return nil
}

func (a *app) loadRoutes() ([]route.Node, error) {
	if a.settings.RoutesFile != "" {
		f, err := os.Open(a.settings.RoutesFile)
		if err != nil {
			return nil, fmt.Errorf("open routes: %w", err)
		}
		defer f.Close()
		return route.Load(f)
	}
	data, err := routeTables.ReadFile("routes/" + a.settings.Frontend + ".yaml")
	if err != nil {
		return nil, fmt.Errorf("built-in routes: %w", err)
	}
	return route.Load(bytes.NewReader(data))
}

func (a *app) close(stderr io.Writer) error {
	if a.client != nil {
		if a.settings.Metrics {
			if err := writeMetrics(stderr, a.client); err != nil {
				a.logger.Warn("metrics export failed", zap.Error(err))
			}
		}
		a.client.Close()
	}
	if a.audit != nil {
		_ = a.audit.Close()
	}
	if a.redis != nil {
		_ = a.redis.Close()
	}
	if a.logger != nil {
		_ = a.logger.Sync()
	}
	return nil
}

func writeMetrics(w io.Writer, client *goNebula.Client) error {
	families, err := promexport.NewPrometheusExporter(client).Registry().Gather()
	if err != nil {
		return err
	}
	for _, mf := range families {
		if _, err := expfmt.MetricFamilyToText(w, mf); err != nil {
			return err
		}
	}
	return nil
}

// run executes one CLI invocation and always releases the client, even when
// the command failed.
func run(s settings, args []string, stdout, stderr io.Writer) error {
	a := &app{settings: s}
	root := newRootCmd(a)
	root.SetArgs(args)
	root.SetOut(stdout)
	root.SetErr(stderr)

	err := root.Execute()
	if cerr := a.close(stderr); err == nil {
		err = cerr
	}
	return err
}

func main() {
	start := time.Now()
	if err := run(loadSettings(), os.Args[1:], os.Stdout, os.Stderr); err != nil {
		fmt.Fprintf(os.Stderr, "nebula: %v (after %s)\n", err, time.Since(start).Round(time.Millisecond))
		os.Exit(1)
	}
}

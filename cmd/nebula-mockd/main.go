// Command nebula-mockd serves the mock Nebula backend for local development
// against cmd/nebula or a browser frontend.
package main

import (
	"context"
	"errors"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/MrEthical07/goNebula/internal/logging"
	"github.com/MrEthical07/goNebula/internal/mockbackend"
)

type config struct {
	Addr       string
	Secret     string
	InviteCode string
	TokenTTL   time.Duration
	UseMsg     bool
	LogLevel   string
	LogFile    string
}

func loadConfig() config {
	_ = godotenv.Load()

	cfg := config{
		Addr:       getEnv("MOCKD_ADDR", ":8080"),
		Secret:     getEnv("MOCKD_SECRET", ""),
		InviteCode: getEnv("MOCKD_INVITE_CODE", "NEBULA-INVITE"),
		TokenTTL:   2 * time.Hour,
		UseMsg:     getEnv("MOCKD_USE_MSG", "false") == "true",
		LogLevel:   getEnv("MOCKD_LOG_LEVEL", "info"),
		LogFile:    getEnv("MOCKD_LOG_FILE", ""),
	}
	if mins, err := strconv.Atoi(getEnv("MOCKD_TOKEN_TTL_MINUTES", "")); err == nil && mins > 0 {
		cfg.TokenTTL = time.Duration(mins) * time.Minute
	}

	flag.StringVar(&cfg.Addr, "addr", cfg.Addr, "listen address")
	flag.StringVar(&cfg.InviteCode, "invite-code", cfg.InviteCode, "admin registration invite code")
	flag.DurationVar(&cfg.TokenTTL, "token-ttl", cfg.TokenTTL, "issued token lifetime")
	flag.BoolVar(&cfg.UseMsg, "use-msg", cfg.UseMsg, `put messages in "msg" as the storefront backend does`)
	flag.StringVar(&cfg.LogLevel, "log-level", cfg.LogLevel, "log level")
	flag.StringVar(&cfg.LogFile, "log-file", cfg.LogFile, "rotating JSON log file")
	flag.Parse()
	return cfg
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

func main() {
	cfg := loadConfig()

	logger, err := logging.New(logging.Options{Level: cfg.LogLevel, FilePath: cfg.LogFile})
	if err != nil {
		panic(err)
	}
	defer func() { _ = logger.Sync() }()

	backend := mockbackend.New(mockbackend.Options{
		Secret:     []byte(cfg.Secret),
		InviteCode: cfg.InviteCode,
		TokenTTL:   cfg.TokenTTL,
		UseMsg:     cfg.UseMsg,
		Logger:     logger.Named("mockd"),
	})

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           backend.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		logger.Info("mock backend listening",
			zap.String("addr", cfg.Addr),
			zap.Bool("use_msg", cfg.UseMsg),
			zap.Duration("token_ttl", cfg.TokenTTL),
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("listen failed", zap.Error(err))
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("shutdown failed", zap.Error(err))
	}
}

package main

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// settings is the CLI configuration. Flags override the environment, which
// overrides the defaults below.
type settings struct {
	Frontend    string
	BaseURL     string
	APIPrefix   string
	Timeout     time.Duration
	SessionFile string
	RedisURL    string
	RoutesFile  string
	LogLevel    string
	LogFile     string
	AuditFile   string
	Metrics     bool
}

// loadSettings reads .env when present and falls back to the process
// environment.
func loadSettings() settings {
	_ = godotenv.Load()

	return settings{
		Frontend:    getEnv("NEBULA_FRONTEND", "admin"),
		BaseURL:     getEnv("NEBULA_BASE_URL", "http://localhost:8080"),
		APIPrefix:   getEnv("NEBULA_API_PREFIX", "/api"),
		Timeout:     getEnvAsDuration("NEBULA_TIMEOUT", 10*time.Second),
		SessionFile: getEnv("NEBULA_SESSION_FILE", ""),
		RedisURL:    getEnv("NEBULA_REDIS_URL", ""),
		RoutesFile:  getEnv("NEBULA_ROUTES", ""),
		LogLevel:    getEnv("NEBULA_LOG_LEVEL", "warn"),
		LogFile:     getEnv("NEBULA_LOG_FILE", ""),
		AuditFile:   getEnv("NEBULA_AUDIT_LOG", ""),
		Metrics:     getEnvAsBool("NEBULA_METRICS", false),
	}
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

func getEnvAsBool(key string, fallback bool) bool {
	if v, err := strconv.ParseBool(getEnv(key, "")); err == nil {
		return v
	}
	return fallback
}

func getEnvAsDuration(key string, fallback time.Duration) time.Duration {
	if v, err := time.ParseDuration(getEnv(key, "")); err == nil {
		return v
	}
	return fallback
}

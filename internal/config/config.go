package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	defaultOrigin  = "http://localhost:3000"
	apiBasePath    = "/api"
	defaultTimeout = 30 * time.Second
)

// Config is the full client configuration
type Config struct {
	Service ServiceConfig
	API     APIConfig
	Session SessionConfig
	Events  EventsConfig
}

// ServiceConfig identifies this process in logs
type ServiceConfig struct {
	Name        string
	Version     string
	Environment string
	LogLevel    string
}

// APIConfig points at the ERP backend
type APIConfig struct {
	// BaseURL is the backend origin with the /api prefix applied.
	BaseURL     string
	Timeout     time.Duration
	RefreshPath string
}

// SessionConfig selects where the auth token is persisted
type SessionConfig struct {
	// Store is "memory", a SQLite path (optionally sqlite://), or a postgres:// DSN.
	Store string
}

// EventsConfig enables mirroring client events to NATS
type EventsConfig struct {
	NATSURL       string
	SubjectPrefix string
}

// Load reads configuration from the environment. A .env file in the working
// directory is loaded first when present; real environment variables win.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("failed to load .env: %w", err)
	}

	timeout, err := getEnvDuration("ERP_API_TIMEOUT", defaultTimeout)
	if err != nil {
		return nil, err
	}

	origin := getEnv("ERP_API_URL", getEnv("VITE_API_URL", defaultOrigin))

	cfg := &Config{
		Service: ServiceConfig{
			Name:        getEnv("SERVICE_NAME", "erpctl"),
			Version:     getEnv("SERVICE_VERSION", "dev"),
			Environment: getEnv("ENVIRONMENT", "development"),
			LogLevel:    getEnv("LOG_LEVEL", "info"),
		},
		API: APIConfig{
			BaseURL:     BaseURL(origin),
			Timeout:     timeout,
			RefreshPath: getEnv("ERP_REFRESH_PATH", "/auth/refresh"),
		},
		Session: SessionConfig{
			Store: getEnv("ERP_SESSION_STORE", defaultSessionStore()),
		},
		Events: EventsConfig{
			NATSURL:       os.Getenv("NATS_URL"),
			SubjectPrefix: getEnv("NATS_SUBJECT_PREFIX", "erp.client"),
		},
	}

	return cfg, nil
}

// BaseURL applies the /api prefix to a backend origin. An origin that already
// ends in /api is left alone.
func BaseURL(origin string) string {
	origin = strings.TrimRight(strings.TrimSpace(origin), "/")
	if origin == "" {
		origin = defaultOrigin
	}
	if strings.HasSuffix(origin, apiBasePath) {
		return origin
	}
	return origin + apiBasePath
}

func defaultSessionStore() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "memory"
	}
	return "sqlite://" + dir + "/erpctl/session.db"
}

// getEnv gets an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvDuration accepts Go durations ("45s") or plain seconds ("45")
func getEnvDuration(key string, defaultValue time.Duration) (time.Duration, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	if secs, err := strconv.Atoi(value); err == nil {
		return time.Duration(secs) * time.Second, nil
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", key, value, err)
	}
	return d, nil
}

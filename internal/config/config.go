// ABOUTME: Configuration loader for the operations console
// ABOUTME: Loads settings from .env, environment variables and defaults

package config

import (
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	// DefaultAPIURL matches the API server's development listener.
	DefaultAPIURL = "http://localhost:8000"

	// DefaultCallbackAddr is the origin the API server redirects browsers to
	// after Google consent.
	DefaultCallbackAddr = "127.0.0.1:5173"

	appDirName = "airport-ops"
)

// Store backends accepted by AIRPORT_OPS_STORE.
const (
	StoreFile   = "file"
	StoreSQLite = "sqlite"
	StoreMemory = "memory"
)

type Config struct {
	// API
	APIBaseURL     string
	RequestTimeout time.Duration // default per-request deadline (60s)
	IngestTimeout  time.Duration // deadline for ingestion triggers (3m)
	AllProxy       string        // optional ssh+socks5:// tunnel for API traffic

	// Session
	StoreBackend string // file, sqlite, memory (default: file)
	ConfigDir    string // holds credentials and debug.log
	CallbackAddr string // loopback listener for OAuth redirects

	// Logging
	LogLevel  string
	LogFormat string
}

// Load reads .env (if present) and the environment, applying defaults.
func Load() (*Config, error) {
	if err := loadDotEnv(".env"); err != nil {
		return nil, err
	}

	apiURL := getEnv("AIRPORT_OPS_API_URL", getEnv("VITE_API_BASE_URL", DefaultAPIURL))

	cfg := &Config{
		APIBaseURL:     NormalizeBaseURL(apiURL),
		RequestTimeout: getEnvDuration("AIRPORT_OPS_TIMEOUT", 60*time.Second),
		IngestTimeout:  getEnvDuration("AIRPORT_OPS_INGEST_TIMEOUT", 3*time.Minute),
		AllProxy:       os.Getenv("AIRPORT_OPS_ALL_PROXY"),

		StoreBackend: strings.ToLower(getEnv("AIRPORT_OPS_STORE", StoreFile)),
		ConfigDir:    getEnv("AIRPORT_OPS_CONFIG_DIR", DefaultConfigDir()),
		CallbackAddr: getEnv("AIRPORT_OPS_CALLBACK_ADDR", DefaultCallbackAddr),

		LogLevel:  getEnv("LOG_LEVEL", "info"),
		LogFormat: getEnv("LOG_FORMAT", "console"),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks values that cannot be defaulted sensibly.
func (c *Config) Validate() error {
	u, err := url.Parse(c.APIBaseURL)
	if err != nil || u.Host == "" {
		return fmt.Errorf("invalid API base URL %q", c.APIBaseURL)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("API base URL must be http or https, got %q", u.Scheme)
	}

	switch c.StoreBackend {
	case StoreFile, StoreSQLite, StoreMemory:
	default:
		return fmt.Errorf("AIRPORT_OPS_STORE must be one of file, sqlite, memory, got %q", c.StoreBackend)
	}

	for _, d := range []struct {
		name  string
		value time.Duration
	}{
		{"AIRPORT_OPS_TIMEOUT", c.RequestTimeout},
		{"AIRPORT_OPS_INGEST_TIMEOUT", c.IngestTimeout},
	} {
		if d.value <= 0 {
			return fmt.Errorf("%s must be positive, got %s", d.name, d.value)
		}
	}

	if c.StoreBackend != StoreMemory && c.ConfigDir == "" {
		return errors.New("no config directory available; set AIRPORT_OPS_CONFIG_DIR")
	}
	return nil
}

// DefaultConfigDir returns the default config directory following XDG conventions
func DefaultConfigDir() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, appDirName)
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".config", appDirName)
}

// NormalizeBaseURL adds a scheme when missing and drops trailing slashes so
// paths can be appended directly.
func NormalizeBaseURL(raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return raw
	}
	if !strings.Contains(raw, "://") {
		raw = "https://" + raw
	}
	return strings.TrimRight(raw, "/")
}

// loadDotEnv loads key=value pairs without overriding variables already set.
func loadDotEnv(path string) error {
	err := godotenv.Load(path)
	if err == nil || errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	return fmt.Errorf("load %s: %w", path, err)
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

// getEnvDuration accepts Go durations ("90s") or bare seconds ("90").
func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	if d, err := time.ParseDuration(value); err == nil {
		return d
	}
	if secs := getEnvInt(key, -1); secs >= 0 {
		return time.Duration(secs) * time.Second
	}
	return defaultValue
}

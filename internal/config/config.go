package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/fastygo/todoclient/pkg/httpcontext"
)

// DefaultAPIURL is used when no base URL override is supplied.
const DefaultAPIURL = "http://localhost:8080"

const (
	SessionBackendBolt  = "bolt"
	SessionBackendRedis = "redis"
)

// Config aggregates all runtime settings required by the client.
type Config struct {
	AppName string
	API     APIConfig
	Session SessionConfig
	Redis   RedisConfig
	Refresh RefreshConfig
	Context ContextConfig
	Logger  LoggerConfig
	Sandbox SandboxConfig
}

type APIConfig struct {
	BaseURL        string
	RequestTimeout time.Duration
}

type SessionConfig struct {
	Backend string
	Path    string
}

type RedisConfig struct {
	URL      string
	Password string
	DB       int
}

type RefreshConfig struct {
	Interval        time.Duration
	MonitorInterval time.Duration
}

type ContextConfig struct {
	ShutdownTimeout time.Duration
}

type LoggerConfig struct {
	Level    string
	Encoding string
}

type SandboxConfig struct {
	Addr      string
	JWTSecret string
	TokenTTL  time.Duration
}

// Load reads configuration from environment variables (optionally .env)
// and applies defaults so the client works against a local API out of the box.
func Load() (*Config, error) {
	_ = godotenv.Load(".env")

	cfg := &Config{
		AppName: getString("APP_NAME", "todoctl"),
		API: APIConfig{
			BaseURL:        NormalizeBaseURL(getString("TODO_API_URL", os.Getenv("VITE_API_URL"))),
			RequestTimeout: httpcontext.DefaultTimeout,
		},
		Session: SessionConfig{
			Backend: strings.ToLower(getString("TODO_SESSION_BACKEND", SessionBackendBolt)),
			Path:    getString("TODO_SESSION_PATH", defaultSessionPath()),
		},
		Redis: RedisConfig{
			URL:      getString("TODO_REDIS_URL", "redis://localhost:6379"),
			Password: os.Getenv("TODO_REDIS_PASSWORD"),
			DB:       getInt("TODO_REDIS_DB", 0),
		},
		Refresh: RefreshConfig{
			Interval:        getDuration("TODO_REFRESH_INTERVAL", 30*time.Second),
			MonitorInterval: getDuration("TODO_MONITOR_INTERVAL", 10*time.Second),
		},
		Context: ContextConfig{
			ShutdownTimeout: getDuration("TODO_SHUTDOWN_TIMEOUT", 15*time.Second),
		},
		Logger: LoggerConfig{
			Level:    getString("LOG_LEVEL", "warn"),
			Encoding: getString("LOG_ENCODING", "console"),
		},
		Sandbox: SandboxConfig{
			Addr:      getString("SANDBOX_ADDR", ":8080"),
			JWTSecret: getString("SANDBOX_JWT_SECRET", "sandbox-secret"),
			TokenTTL:  getDuration("SANDBOX_TOKEN_TTL", 24*time.Hour),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate rejects settings the client cannot run with.
func (c *Config) Validate() error {
	switch c.Session.Backend {
	case SessionBackendBolt, SessionBackendRedis:
	default:
		return fmt.Errorf("unsupported session backend %q", c.Session.Backend)
	}
	if !strings.HasPrefix(c.API.BaseURL, "http://") && !strings.HasPrefix(c.API.BaseURL, "https://") {
		return fmt.Errorf("api url %q must start with http:// or https://", c.API.BaseURL)
	}
	return nil
}

// NormalizeBaseURL trims whitespace, a trailing slash and a trailing /api/todos
// so that endpoint paths can be appended verbatim. Empty input yields the default.
func NormalizeBaseURL(raw string) string {
	url := strings.TrimSpace(raw)
	if url == "" {
		return DefaultAPIURL
	}
	url = strings.TrimRight(url, "/")
	url = strings.TrimSuffix(url, "/api/todos")
	return strings.TrimRight(url, "/")
}

func defaultSessionPath() string {
	dir, err := os.UserConfigDir()
	if err != nil || dir == "" {
		dir = "."
	}
	return filepath.Join(dir, "todoctl", "session.db")
}

func getString(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func getInt(key string, fallback int) int {
	if val := os.Getenv(key); val != "" {
		if parsed, err := strconv.Atoi(val); err == nil {
			return parsed
		}
	}
	return fallback
}

func getDuration(key string, fallback time.Duration) time.Duration {
	if val := os.Getenv(key); val != "" {
		if parsed, err := time.ParseDuration(val); err == nil {
			return parsed
		}
		if seconds, err := strconv.Atoi(val); err == nil {
			return time.Duration(seconds) * time.Second
		}
	}
	return fallback
}

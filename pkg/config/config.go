package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/lumenchat/canopy/pkg/observability"
)

// Config holds all application configuration
type Config struct {
	// Server configuration
	Server ServerConfig

	// Database configuration
	Database DatabaseConfig

	// Redis configuration (cross-instance cache invalidation)
	Redis RedisConfig

	// Resolver cache configuration
	Cache CacheConfig

	// Legacy on-disk tenant config files
	Legacy LegacyConfig

	// Session authentication
	Auth AuthConfig

	// SSO identity providers
	SSO SSOConfig

	// Tenant webhook delivery
	Webhook WebhookConfig

	// Observability configuration
	Observability ObservabilityConfig
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Host            string
	Port            string
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	IdleTimeout     time.Duration
	ShutdownTimeout time.Duration

	// Health/metrics server (separate port for k8s probes)
	HealthPort string
}

// DatabaseConfig holds relational store settings
type DatabaseConfig struct {
	// Type selects the store backend: postgres, sqlite, or memory
	Type string

	PostgresURL      string
	PostgresMaxConns int

	SQLitePath string
}

// RedisConfig holds invalidation bus settings; an empty Addr disables the bus
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// CacheConfig holds resolver cache settings
type CacheConfig struct {
	// TTL of zero disables expiry
	TTL  time.Duration
	Size int
}

// LegacyConfig holds the legacy tenant config directory settings
type LegacyConfig struct {
	// Dir is the directory of per-tenant .conf files; empty disables watching
	Dir   string
	Watch bool
}

// AuthConfig holds session token settings
type AuthConfig struct {
	JWTSecret string
	TokenTTL  time.Duration
}

// SSOConfig holds deployment-level identity provider credentials. A provider
// with an empty client ID is not registered. Per-tenant access is still gated
// by the tenant's allowed_oauth list.
type SSOConfig struct {
	// BaseURL is the externally visible address of this service, used to
	// derive callback URLs
	BaseURL       string
	AutoProvision bool

	GoogleClientID     string
	GoogleClientSecret string

	GitHubClientID     string
	GitHubClientSecret string
}

// WebhookConfig holds tenant webhook delivery settings. An empty signing
// secret sends deliveries unsigned.
type WebhookConfig struct {
	SigningSecret string
}

// ObservabilityConfig holds observability settings
type ObservabilityConfig struct {
	LogLevel       observability.LogLevel
	MetricsEnabled bool
}

// LoadConfig loads configuration from environment variables
func LoadConfig() (*Config, error) {
	cfg := &Config{
		Server: ServerConfig{
			Host:            getEnv("CANOPY_HOST", "0.0.0.0"),
			Port:            getEnv("CANOPY_PORT", "8080"),
			ReadTimeout:     getEnvDuration("CANOPY_READ_TIMEOUT", 15*time.Second),
			WriteTimeout:    getEnvDuration("CANOPY_WRITE_TIMEOUT", 15*time.Second),
			IdleTimeout:     getEnvDuration("CANOPY_IDLE_TIMEOUT", 60*time.Second),
			ShutdownTimeout: getEnvDuration("CANOPY_SHUTDOWN_TIMEOUT", 30*time.Second),
			HealthPort:      getEnv("CANOPY_HEALTH_PORT", "9090"),
		},
		Database: DatabaseConfig{
			Type:             getEnv("CANOPY_DB_TYPE", "postgres"),
			PostgresURL:      getEnv("CANOPY_POSTGRES_URL", ""),
			PostgresMaxConns: getEnvInt("CANOPY_POSTGRES_MAX_CONNS", 25),
			SQLitePath:       getEnv("CANOPY_SQLITE_PATH", "canopy.db"),
		},
		Redis: RedisConfig{
			Addr:     getEnv("CANOPY_REDIS_ADDR", ""),
			Password: getEnv("CANOPY_REDIS_PASSWORD", ""),
			DB:       getEnvInt("CANOPY_REDIS_DB", 0),
		},
		Cache: CacheConfig{
			TTL:  getEnvDuration("CANOPY_CACHE_TTL", 5*time.Minute),
			Size: getEnvInt("CANOPY_CACHE_SIZE", 1024),
		},
		Legacy: LegacyConfig{
			Dir:   getEnv("CANOPY_LEGACY_CONFIG_DIR", ""),
			Watch: getEnvBool("CANOPY_LEGACY_CONFIG_WATCH", true),
		},
		Auth: AuthConfig{
			JWTSecret: getEnv("CANOPY_JWT_SECRET", ""),
			TokenTTL:  getEnvDuration("CANOPY_TOKEN_TTL", 24*time.Hour),
		},
		SSO: SSOConfig{
			BaseURL:            getEnv("CANOPY_SSO_BASE_URL", ""),
			AutoProvision:      getEnvBool("CANOPY_SSO_AUTO_PROVISION", true),
			GoogleClientID:     getEnv("CANOPY_SSO_GOOGLE_CLIENT_ID", ""),
			GoogleClientSecret: getEnv("CANOPY_SSO_GOOGLE_CLIENT_SECRET", ""),
			GitHubClientID:     getEnv("CANOPY_SSO_GITHUB_CLIENT_ID", ""),
			GitHubClientSecret: getEnv("CANOPY_SSO_GITHUB_CLIENT_SECRET", ""),
		},
		Webhook: WebhookConfig{
			SigningSecret: getEnv("CANOPY_WEBHOOK_SECRET", ""),
		},
		Observability: ObservabilityConfig{
			LogLevel:       parseLogLevel(getEnv("CANOPY_LOG_LEVEL", "info")),
			MetricsEnabled: getEnvBool("CANOPY_METRICS_ENABLED", true),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if c.Server.Port == "" {
		return fmt.Errorf("server port is required")
	}
	if c.Server.HealthPort == "" {
		return fmt.Errorf("health port is required")
	}
	if c.Server.Port == c.Server.HealthPort {
		return fmt.Errorf("server port and health port must be different")
	}

	switch c.Database.Type {
	case "postgres":
		if c.Database.PostgresURL == "" {
			return fmt.Errorf("postgres URL is required for postgres database")
		}
	case "sqlite":
		if c.Database.SQLitePath == "" {
			return fmt.Errorf("sqlite path is required for sqlite database")
		}
	case "memory":
		// no settings
	default:
		return fmt.Errorf("invalid database type: %s (must be postgres, sqlite, or memory)", c.Database.Type)
	}

	if c.Cache.Size <= 0 {
		return fmt.Errorf("cache size must be positive")
	}
	if c.Cache.TTL < 0 {
		return fmt.Errorf("cache TTL must not be negative")
	}

	if c.Auth.JWTSecret == "" {
		return fmt.Errorf("JWT secret is required")
	}
	if c.Auth.TokenTTL <= 0 {
		return fmt.Errorf("token TTL must be positive")
	}

	ssoEnabled := c.SSO.GoogleClientID != "" || c.SSO.GitHubClientID != ""
	if ssoEnabled && c.SSO.BaseURL == "" {
		return fmt.Errorf("SSO base URL is required when an identity provider is configured")
	}

	return nil
}

// parseLogLevel parses a log level string
func parseLogLevel(level string) observability.LogLevel {
	switch strings.ToLower(level) {
	case "debug":
		return observability.DebugLevel
	case "info":
		return observability.InfoLevel
	case "warn", "warning":
		return observability.WarnLevel
	case "error":
		return observability.ErrorLevel
	default:
		return observability.InfoLevel
	}
}

// getEnv returns an environment variable value or a default
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvBool returns a boolean environment variable or a default
func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		return strings.ToLower(value) == "true" || value == "1"
	}
	return defaultValue
}

// getEnvInt returns an integer environment variable or a default
func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

// getEnvDuration returns a duration environment variable or a default
func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}

// Package config provides application configuration management from environment variables.
//
// # Overview
//
// This package loads and validates configuration from environment variables with
// sensible defaults for all settings.
//
// # Configuration Structure
//
// Server settings:
//
//	CANOPY_HOST="0.0.0.0"
//	CANOPY_PORT="8080"
//	CANOPY_HEALTH_PORT="9090"
//	CANOPY_READ_TIMEOUT="15s"
//	CANOPY_WRITE_TIMEOUT="15s"
//
// Database settings:
//
//	CANOPY_DB_TYPE="postgres"  # postgres, sqlite, memory
//	CANOPY_POSTGRES_URL="postgres://localhost/canopy"
//	CANOPY_POSTGRES_MAX_CONNS="25"
//	CANOPY_SQLITE_PATH="canopy.db"
//
// Cache and invalidation settings:
//
//	CANOPY_CACHE_TTL="5m"      # 0 disables expiry
//	CANOPY_CACHE_SIZE="1024"
//	CANOPY_REDIS_ADDR="localhost:6379"  # empty disables the invalidation bus
//	CANOPY_REDIS_DB="0"
//
// Legacy tenant config files:
//
//	CANOPY_LEGACY_CONFIG_DIR="/etc/canopy/tenants"
//	CANOPY_LEGACY_CONFIG_WATCH="true"
//
// Session settings:
//
//	CANOPY_JWT_SECRET="..."
//	CANOPY_TOKEN_TTL="24h"
//
// Observability settings:
//
//	CANOPY_LOG_LEVEL="info"  # debug, info, warn, error
//	CANOPY_METRICS_ENABLED="true"
//
// # Usage Example
//
// Load configuration:
//
//	cfg, err := config.LoadConfig()
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	fmt.Printf("Server: %s:%s\n", cfg.Server.Host, cfg.Server.Port)
//	fmt.Printf("Database: %s\n", cfg.Database.Type)
//	fmt.Printf("Log level: %s\n", cfg.Observability.LogLevel)
//
// # Related Packages
//
//   - pkg/tenant: Uses database configuration
//   - pkg/tenantconf: Uses cache and redis configuration
//   - pkg/observability: Uses observability configuration
package config

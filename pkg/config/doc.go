// Package config provides client configuration from environment variables
// with an optional YAML file overlay.
//
// # Configuration Structure
//
// Gateway settings:
//
//	VANTAGE_GATEWAY_URL="http://localhost:8000"
//	VANTAGE_GATEWAY_TIMEOUT="30s"
//
// Storage settings:
//
//	VANTAGE_STORAGE_TYPE="file"  # file, redis
//	VANTAGE_STATE_DIR="~/.vantage"
//	VANTAGE_REDIS_URL="redis://localhost:6379"
//	VANTAGE_REDIS_KEY_PREFIX="vantage"
//
// Module settings:
//
//	VANTAGE_MODULE_REFRESH_SCHEDULE="*/15 * * * *"
//
// Observability settings:
//
//	VANTAGE_LOG_LEVEL="info"  # debug, info, warn, error
//	VANTAGE_METRICS_ENABLED="true"
//	VANTAGE_TRACING_ENABLED="false"
//
// When VANTAGE_CONFIG_FILE names a YAML file, it is loaded first and
// environment variables override its values.
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
//	adapter, err := cfg.OpenStorage()
//
// # Related Packages
//
//   - pkg/storage: Uses storage configuration
//   - pkg/observability: Uses observability configuration
package config

package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/vantagecrm/vantage-go/pkg/modules"
	"github.com/vantagecrm/vantage-go/pkg/observability"
	"github.com/vantagecrm/vantage-go/pkg/storage"
	"github.com/vantagecrm/vantage-go/pkg/transport"
)

// Config holds all client configuration.
type Config struct {
	// Gateway configuration
	Gateway GatewayConfig `yaml:"gateway"`

	// Storage configuration
	Storage StorageConfig `yaml:"storage"`

	// Modules configuration
	Modules ModulesConfig `yaml:"modules"`

	// Observability configuration
	Observability ObservabilityConfig `yaml:"observability"`
}

// GatewayConfig holds API gateway connection settings.
type GatewayConfig struct {
	BaseURL string        `yaml:"baseUrl"`
	Timeout time.Duration `yaml:"timeout"`
}

// StorageConfig selects and configures the persisted credential store.
type StorageConfig struct {
	// Type is "file" or "redis".
	Type string `yaml:"type"`

	// StateDir holds the file adapter's state file.
	StateDir string `yaml:"stateDir"`

	RedisURL        string `yaml:"redisUrl"`
	RedisPassword   string `yaml:"redisPassword"`
	RedisDB         int    `yaml:"redisDb"`
	RedisMaxRetries int    `yaml:"redisMaxRetries"`
	RedisPoolSize   int    `yaml:"redisPoolSize"`
	RedisKeyPrefix  string `yaml:"redisKeyPrefix"`
}

// ModulesConfig holds module-refresh settings for long-lived processes.
type ModulesConfig struct {
	RefreshSchedule string `yaml:"refreshSchedule"`
}

// ObservabilityConfig holds logging, metrics and tracing settings.
type ObservabilityConfig struct {
	LogLevel       observability.LogLevel `yaml:"-"`
	LogLevelName   string                 `yaml:"logLevel"`
	MetricsEnabled bool                   `yaml:"metricsEnabled"`
	TracingEnabled bool                   `yaml:"tracingEnabled"`
}

// LoadConfig loads configuration from environment variables. When
// VANTAGE_CONFIG_FILE names a YAML file, its values are loaded first and
// environment variables override them.
func LoadConfig() (*Config, error) {
	cfg := defaults()

	if path := getEnv("VANTAGE_CONFIG_FILE", ""); path != "" {
		if err := cfg.loadFile(path); err != nil {
			return nil, err
		}
	}
	cfg.loadEnv()
	cfg.Observability.LogLevel = parseLogLevel(cfg.Observability.LogLevelName)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}
	return cfg, nil
}

func defaults() *Config {
	stateDir := ".vantage"
	if home, err := os.UserHomeDir(); err == nil {
		stateDir = home + "/.vantage"
	}
	return &Config{
		Gateway: GatewayConfig{
			BaseURL: transport.DefaultBaseURL,
			Timeout: 30 * time.Second,
		},
		Storage: StorageConfig{
			Type:     "file",
			StateDir: stateDir,
		},
		Modules: ModulesConfig{
			RefreshSchedule: modules.DefaultRefreshSchedule,
		},
		Observability: ObservabilityConfig{
			LogLevelName:   "info",
			MetricsEnabled: true,
		},
	}
}

// loadFile overlays values from a YAML config file.
func (c *Config) loadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("failed to parse config file %s: %w", path, err)
	}
	return nil
}

// loadEnv overlays values from VANTAGE_* environment variables.
func (c *Config) loadEnv() {
	c.Gateway.BaseURL = getEnv("VANTAGE_GATEWAY_URL", c.Gateway.BaseURL)
	c.Gateway.Timeout = getEnvDuration("VANTAGE_GATEWAY_TIMEOUT", c.Gateway.Timeout)

	c.Storage.Type = getEnv("VANTAGE_STORAGE_TYPE", c.Storage.Type)
	c.Storage.StateDir = getEnv("VANTAGE_STATE_DIR", c.Storage.StateDir)
	c.Storage.RedisURL = getEnv("VANTAGE_REDIS_URL", c.Storage.RedisURL)
	c.Storage.RedisPassword = getEnv("VANTAGE_REDIS_PASSWORD", c.Storage.RedisPassword)
	c.Storage.RedisDB = getEnvInt("VANTAGE_REDIS_DB", c.Storage.RedisDB)
	c.Storage.RedisMaxRetries = getEnvInt("VANTAGE_REDIS_MAX_RETRIES", c.Storage.RedisMaxRetries)
	c.Storage.RedisPoolSize = getEnvInt("VANTAGE_REDIS_POOL_SIZE", c.Storage.RedisPoolSize)
	c.Storage.RedisKeyPrefix = getEnv("VANTAGE_REDIS_KEY_PREFIX", c.Storage.RedisKeyPrefix)

	c.Modules.RefreshSchedule = getEnv("VANTAGE_MODULE_REFRESH_SCHEDULE", c.Modules.RefreshSchedule)

	c.Observability.LogLevelName = getEnv("VANTAGE_LOG_LEVEL", c.Observability.LogLevelName)
	c.Observability.MetricsEnabled = getEnvBool("VANTAGE_METRICS_ENABLED", c.Observability.MetricsEnabled)
	c.Observability.TracingEnabled = getEnvBool("VANTAGE_TRACING_ENABLED", c.Observability.TracingEnabled)
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if c.Gateway.BaseURL == "" {
		return fmt.Errorf("gateway base URL is required")
	}
	if !strings.HasPrefix(c.Gateway.BaseURL, "http://") && !strings.HasPrefix(c.Gateway.BaseURL, "https://") {
		return fmt.Errorf("gateway base URL must be http or https: %s", c.Gateway.BaseURL)
	}

	switch c.Storage.Type {
	case "file":
		if c.Storage.StateDir == "" {
			return fmt.Errorf("state directory is required for file storage")
		}
	case "redis":
		if c.Storage.RedisURL == "" {
			return fmt.Errorf("redis URL is required for redis storage")
		}
	default:
		return fmt.Errorf("invalid storage type: %s (must be file or redis)", c.Storage.Type)
	}

	return nil
}

// OpenStorage builds the configured storage adapter.
func (c *Config) OpenStorage() (storage.Adapter, error) {
	switch c.Storage.Type {
	case "file":
		return storage.NewFile(c.Storage.StateDir + "/state.json")
	case "redis":
		return storage.NewRedis(storage.RedisConfig{
			URL:        c.Storage.RedisURL,
			Password:   c.Storage.RedisPassword,
			DB:         c.Storage.RedisDB,
			MaxRetries: c.Storage.RedisMaxRetries,
			PoolSize:   c.Storage.RedisPoolSize,
			KeyPrefix:  c.Storage.RedisKeyPrefix,
		})
	default:
		return nil, fmt.Errorf("invalid storage type: %s", c.Storage.Type)
	}
}

// parseLogLevel parses a log level string.
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

// getEnv returns an environment variable value or a default.
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvBool returns a boolean environment variable or a default.
func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		return strings.ToLower(value) == "true" || value == "1"
	}
	return defaultValue
}

// getEnvInt returns an integer environment variable or a default.
func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

// getEnvDuration returns a duration environment variable or a default.
func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}

package config

import (
	"os"
	"strconv"
	"time"

	"github.com/zuzivian/sgraphs/internal/errors"
)

// Config represents the complete application configuration
type Config struct {
	Server    ServerConfig
	OpenData  OpenDataConfig
	Database  DatabaseConfig
	Profiling ProfilingConfig
}

// ServerConfig holds web server settings
type ServerConfig struct {
	Port    string
	GinMode string
}

// OpenDataConfig holds upstream catalog API settings
type OpenDataConfig struct {
	BaseURL       string
	Timeout       time.Duration
	PageSize      int
	MaxRecords    int
	MaxConcurrent int
	RetryAttempts int
}

// DatabaseConfig holds optional catalog cache settings.
// The cache is disabled when URL is empty.
type DatabaseConfig struct {
	URL     string
	Enabled bool
}

// ProfilingConfig holds the debug/pprof listener settings
type ProfilingConfig struct {
	Port    string
	Enabled bool
}

// Load reads configuration from environment variables and validates it
func Load() (*Config, error) {
	config := &Config{
		Server:    loadServerConfig(),
		OpenData:  loadOpenDataConfig(),
		Database:  loadDatabaseConfig(),
		Profiling: loadProfilingConfig(),
	}

	if err := validateConfig(config); err != nil {
		return nil, errors.Wrap(err, "configuration validation failed")
	}
	return config, nil
}

func loadServerConfig() ServerConfig {
	return ServerConfig{
		Port:    getEnvOrDefault("PORT", "8080"),
		GinMode: getEnvOrDefault("GIN_MODE", "debug"),
	}
}

func loadOpenDataConfig() OpenDataConfig {
	return OpenDataConfig{
		BaseURL:       getEnvOrDefault("OPENDATA_BASE_URL", "https://data.gov.sg"),
		Timeout:       getEnvDurationOrDefault("OPENDATA_TIMEOUT", 30*time.Second),
		PageSize:      getEnvIntOrDefault("OPENDATA_PAGE_SIZE", 1000),
		MaxRecords:    getEnvIntOrDefault("OPENDATA_MAX_RECORDS", 20000),
		MaxConcurrent: getEnvIntOrDefault("OPENDATA_MAX_CONCURRENT", 4),
		RetryAttempts: getEnvIntOrDefault("OPENDATA_RETRY_ATTEMPTS", 3),
	}
}

func loadDatabaseConfig() DatabaseConfig {
	url := os.Getenv("DATABASE_URL")
	return DatabaseConfig{
		URL:     url,
		Enabled: url != "",
	}
}

func loadProfilingConfig() ProfilingConfig {
	return ProfilingConfig{
		Port:    getEnvOrDefault("PPROF_PORT", "6060"),
		Enabled: getEnvBoolOrDefault("PPROF_ENABLED", false),
	}
}

func validateConfig(config *Config) error {
	if config.Server.Port == "" {
		return errors.ConfigInvalid("server port is required")
	}
	if config.OpenData.BaseURL == "" {
		return errors.ConfigInvalid("open data base URL is required")
	}
	if config.OpenData.PageSize <= 0 {
		return errors.ConfigInvalid("open data page size must be positive")
	}
	if config.OpenData.MaxRecords <= 0 {
		return errors.ConfigInvalid("open data record cap must be positive")
	}
	return nil
}

// Helper functions for environment variable parsing
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvIntOrDefault(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvBoolOrDefault(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}

func getEnvDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}

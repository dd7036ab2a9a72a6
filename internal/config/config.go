package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds all configuration for the application
type Config struct {
	// Corpus and outputs
	RootDir      string `yaml:"root_dir"`      // Directory tree holding the run logs
	OutputPath   string `yaml:"output_path"`   // Summary CSV written by parse, read by plot/stats
	LogExtension string `yaml:"log_extension"` // Matched case-insensitively
	LinePlotPath string `yaml:"line_plot_path"`
	HeatmapPath  string `yaml:"heatmap_path"`
	Filter       string `yaml:"filter"` // Row filter expression for plot/stats

	// Parsed-record cache (bbolt). Empty disables it.
	CachePath string `yaml:"cache_path"`

	// Observability
	LogLevel         string  `yaml:"log_level"`
	LogFile          string  `yaml:"log_file"`
	LogFileMaxSizeMB int     `yaml:"log_file_max_size_mb"`
	LogFileBackups   int     `yaml:"log_file_backups"`
	LogFileMaxAge    int     `yaml:"log_file_max_age_days"`
	TracingEnabled   bool    `yaml:"tracing_enabled"`
	TracingEndpoint  string  `yaml:"tracing_endpoint"`
	TracingProtocol  string  `yaml:"tracing_protocol"`     // grpc or http
	TracingSample    float64 `yaml:"tracing_sample_ratio"` // Fraction of runs traced

	// ClickHouse export
	ClickHouseEnabled  bool   `yaml:"clickhouse_enabled"`
	ClickHouseHost     string `yaml:"clickhouse_host"`
	ClickHousePort     int    `yaml:"clickhouse_port"`
	ClickHouseDB       string `yaml:"clickhouse_db"`
	ClickHouseUser     string `yaml:"clickhouse_user"`
	ClickHousePassword string `yaml:"clickhouse_password"`

	// Retry for ClickHouse operations
	RetryMaxAttempts  int           `yaml:"retry_max_attempts"`
	RetryInitialDelay time.Duration `yaml:"retry_initial_delay"`
	RetryMaxDelay     time.Duration `yaml:"retry_max_delay"`
}

// Load loads configuration from environment variables and overlays the YAML
// file at path (or CONFIG_FILE when path is empty). Validation is left to the
// caller so that command-line flags can be applied first.
func Load(path string) (*Config, error) {
	cfg := &Config{
		RootDir:      getEnv("ROOT_DIR", "logs"),
		OutputPath:   getEnv("OUTPUT_PATH", "results/summary.csv"),
		LogExtension: getEnv("LOG_EXTENSION", ".txt"),
		LinePlotPath: getEnv("LINE_PLOT_PATH", "results/duration_by_batch_size.png"),
		HeatmapPath:  getEnv("HEATMAP_PATH", "results/duration_heatmap.png"),
		Filter:       getEnv("FILTER", ""),

		CachePath: getEnv("CACHE_PATH", ""),

		LogLevel:         getEnv("LOG_LEVEL", "info"),
		LogFile:          getEnv("LOG_FILE", ""),
		LogFileMaxSizeMB: getEnvInt("LOG_FILE_MAX_SIZE_MB", 10),
		LogFileBackups:   getEnvInt("LOG_FILE_BACKUPS", 3),
		LogFileMaxAge:    getEnvInt("LOG_FILE_MAX_AGE_DAYS", 7),
		TracingEnabled:   getEnvBool("TRACING_ENABLED", false),
		TracingEndpoint:  getEnv("TRACING_ENDPOINT", "localhost:4317"),
		TracingProtocol:  getEnv("TRACING_PROTOCOL", "grpc"),
		TracingSample:    getEnvFloat("TRACING_SAMPLE_RATIO", 1.0),

		ClickHouseEnabled:  getEnvBool("CLICKHOUSE_ENABLED", false),
		ClickHouseHost:     getEnv("CLICKHOUSE_HOST", "localhost"),
		ClickHousePort:     getEnvInt("CLICKHOUSE_PORT", 9000),
		ClickHouseDB:       getEnv("CLICKHOUSE_DB", "default"),
		ClickHouseUser:     getEnv("CLICKHOUSE_USER", "default"),
		ClickHousePassword: getEnv("CLICKHOUSE_PASSWORD", ""),

		RetryMaxAttempts:  getEnvInt("RETRY_MAX_ATTEMPTS", 3),
		RetryInitialDelay: getEnvDuration("RETRY_INITIAL_DELAY", 200*time.Millisecond),
		RetryMaxDelay:     getEnvDuration("RETRY_MAX_DELAY", 5*time.Second),
	}

	if path == "" {
		path = os.Getenv("CONFIG_FILE")
	}
	if path != "" {
		if err := cfg.overlayFile(path); err != nil {
			return nil, err
		}
	}

	return cfg, nil
}

// overlayFile replaces the fields present in the YAML file
func (c *Config) overlayFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("failed to parse config file %s: %w", path, err)
	}
	return nil
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if c.OutputPath == "" {
		return fmt.Errorf("OUTPUT_PATH is required")
	}
	if !strings.HasPrefix(c.LogExtension, ".") || len(c.LogExtension) < 2 {
		return fmt.Errorf("LOG_EXTENSION must start with a dot, got %q", c.LogExtension)
	}
	switch strings.ToLower(c.LogLevel) {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("LOG_LEVEL must be one of debug, info, warn, error, got %q", c.LogLevel)
	}
	if c.TracingEnabled {
		if c.TracingEndpoint == "" {
			return fmt.Errorf("TRACING_ENDPOINT is required when tracing is enabled")
		}
		if c.TracingProtocol != "grpc" && c.TracingProtocol != "http" {
			return fmt.Errorf("TRACING_PROTOCOL must be grpc or http, got %q", c.TracingProtocol)
		}
		if c.TracingSample < 0 || c.TracingSample > 1 {
			return fmt.Errorf("TRACING_SAMPLE_RATIO must be between 0 and 1, got %v", c.TracingSample)
		}
	}
	if c.ClickHouseEnabled {
		if c.ClickHouseHost == "" {
			return fmt.Errorf("CLICKHOUSE_HOST is required")
		}
		if c.ClickHousePort <= 0 || c.ClickHousePort > 65535 {
			return fmt.Errorf("CLICKHOUSE_PORT must be between 1 and 65535")
		}
		if c.ClickHouseDB == "" {
			return fmt.Errorf("CLICKHOUSE_DB is required")
		}
	}
	if c.RetryMaxAttempts < 1 {
		return fmt.Errorf("RETRY_MAX_ATTEMPTS must be at least 1")
	}

	return nil
}

// ValidateRootDir checks that the corpus root exists and is a directory
func (c *Config) ValidateRootDir() error {
	if c.RootDir == "" {
		return fmt.Errorf("ROOT_DIR is required")
	}
	info, err := os.Stat(c.RootDir)
	if errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("ROOT_DIR %s does not exist", c.RootDir)
	}
	if err != nil {
		return fmt.Errorf("ROOT_DIR %s is not accessible: %w", c.RootDir, err)
	}
	if !info.IsDir() {
		return fmt.Errorf("ROOT_DIR %s is not a directory", c.RootDir)
	}
	return nil
}

// getEnv gets an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvInt gets an integer environment variable or returns a default value
func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

// getEnvBool gets a boolean environment variable or returns a default value
func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}

// getEnvFloat gets a float environment variable or returns a default value
func getEnvFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if f, err := strconv.ParseFloat(value, 64); err == nil {
			return f
		}
	}
	return defaultValue
}

// getEnvDuration gets a duration environment variable ("500ms", "2s") or returns a default value
func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}

package config

import (
	"fmt"
	"os"
	"time"

	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v2"
)

// Config represents the complete application configuration.
type Config struct {
	Server    ServerConfig    `yaml:"server" envconfig:"SERVER"`
	Logging   LoggingConfig   `yaml:"logging" envconfig:"LOGGING"`
	Paths     PathsConfig     `yaml:"paths" envconfig:"PATHS"`
	Analytics AnalyticsConfig `yaml:"analytics" envconfig:"ANALYTICS"`
}

// ServerConfig contains HTTP server configuration. Defaults come from
// Default(), not from envconfig tags: a default tag would be re-applied on
// every envconfig.Process call and clobber values set only in the file.
type ServerConfig struct {
	Port            int           `yaml:"port" envconfig:"PORT"`
	ReadTimeout     time.Duration `yaml:"read_timeout" envconfig:"READ_TIMEOUT"`
	WriteTimeout    time.Duration `yaml:"write_timeout" envconfig:"WRITE_TIMEOUT"`
	IdleTimeout     time.Duration `yaml:"idle_timeout" envconfig:"IDLE_TIMEOUT"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" envconfig:"SHUTDOWN_TIMEOUT"`
	RateLimitRPS    float64       `yaml:"rate_limit_rps" envconfig:"RATE_LIMIT_RPS"`
	RateLimitBurst  int           `yaml:"rate_limit_burst" envconfig:"RATE_LIMIT_BURST"`
}

// LoggingConfig contains logging configuration.
type LoggingConfig struct {
	Level    string `yaml:"level" envconfig:"LEVEL"`
	Output   string `yaml:"output" envconfig:"OUTPUT"`
	FilePath string `yaml:"file_path" envconfig:"FILE_PATH"`
}

// PathsConfig contains file system paths configuration.
type PathsConfig struct {
	DataDir    string `yaml:"data_dir" envconfig:"DATA_DIR"`
	ReportsDir string `yaml:"reports_dir" envconfig:"REPORTS_DIR"`
	LogsDir    string `yaml:"logs_dir" envconfig:"LOGS_DIR"`
}

// AnalyticsConfig contains report engine parameters.
type AnalyticsConfig struct {
	CompareCategory string `yaml:"compare_category" envconfig:"COMPARE_CATEGORY"`
	TopN            int    `yaml:"top_n" envconfig:"TOP_N"`
	BottomN         int    `yaml:"bottom_n" envconfig:"BOTTOM_N"`
	NullPolicy      string `yaml:"null_policy" envconfig:"NULL_POLICY"`
}

// Load loads configuration in three layers: Default() seeds every field,
// an optional YAML config file overrides the defaults, and environment
// variables override both. envconfig only touches fields whose variable is
// actually set, so file values survive env processing.
func Load() (*Config, error) {
	cfg := Default()

	if path := configFilePath(); path != "" {
		fileCfg, err := loadFromFile(path)
		if err != nil {
			return nil, fmt.Errorf("load config file %s: %w", path, err)
		}
		*cfg = *fileCfg
	}

	if err := envconfig.Process("STAYPULSE", cfg); err != nil {
		return nil, fmt.Errorf("load config from env: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}
	return cfg, nil
}

// loadFromFile loads configuration from a YAML file.
func loadFromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// configFilePath returns the first config file found in the common
// locations, or empty when only environment variables apply.
func configFilePath() string {
	locations := []string{
		"config.yaml",
		"configs/config.yaml",
	}
	for _, location := range locations {
		if _, err := os.Stat(location); err == nil {
			return location
		}
	}
	return ""
}

// validate checks the configuration for obviously broken values.
func (c *Config) validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", c.Server.Port)
	}
	if c.Server.ReadTimeout <= 0 || c.Server.WriteTimeout <= 0 {
		return fmt.Errorf("server timeouts must be positive")
	}
	if c.Analytics.TopN <= 0 || c.Analytics.BottomN <= 0 {
		return fmt.Errorf("ranking cutoffs must be positive")
	}
	switch c.Analytics.NullPolicy {
	case "zero_fill", "unknown_label", "propagate_null":
	default:
		return fmt.Errorf("unknown null policy: %q", c.Analytics.NullPolicy)
	}
	if c.Paths.DataDir == "" || c.Paths.ReportsDir == "" {
		return fmt.Errorf("data and reports directories must be set")
	}
	return nil
}

// EnsureDirectories creates the configured directories when absent.
func (c *Config) EnsureDirectories() error {
	for _, dir := range []string{c.Paths.DataDir, c.Paths.ReportsDir, c.Paths.LogsDir} {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("create directory %s: %w", dir, err)
		}
	}
	return nil
}

// Default returns the default configuration.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Port:            8080,
			ReadTimeout:     15 * time.Second,
			WriteTimeout:    15 * time.Second,
			IdleTimeout:     60 * time.Second,
			ShutdownTimeout: 30 * time.Second,
			RateLimitRPS:    50,
			RateLimitBurst:  25,
		},
		Logging: LoggingConfig{
			Level:    "info",
			Output:   "stdout",
			FilePath: "logs/staypulse.log",
		},
		Paths: PathsConfig{
			DataDir:    "data",
			ReportsDir: "data/reports",
			LogsDir:    "logs",
		},
		Analytics: AnalyticsConfig{
			CompareCategory: "Entire home/apt",
			TopN:            3,
			BottomN:         2,
			NullPolicy:      "zero_fill",
		},
	}
}

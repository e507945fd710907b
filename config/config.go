/*
Package config loads service configuration.

SOURCES (later wins):
  1. Defaults (setDefaults)
  2. Optional YAML file: --config path, else ./config/config.yaml or ./config.yaml
  3. Environment: DEAL_ENGINE_<SECTION>_<KEY>, plus the short names
     PORT, HOST, DB_PATH, LOG_LEVEL, LOG_FORMAT and
     DEFAULT_COMMISSION_MULTIPLIER

EXAMPLE (config.yaml):
  server:
    port: 8080
  database:
    path: ./data/deals.db
  pricing:
    default_commission_multiplier: 1.1
    preview_concurrency: 8
    lunar_labels: true
  logging:
    level: debug
    format: console
*/
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds the application configuration.
type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Database DatabaseConfig `mapstructure:"database"`
	Pricing  PricingConfig  `mapstructure:"pricing"`
	Logging  LoggingConfig  `mapstructure:"logging"`
}

// ServerConfig holds HTTP server configuration.
type ServerConfig struct {
	Port            int           `mapstructure:"port"`
	Host            string        `mapstructure:"host"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
	IdleTimeout     time.Duration `mapstructure:"idle_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
	AllowedOrigins  []string      `mapstructure:"allowed_origins"`
}

// DatabaseConfig holds the SQLite location. ":memory:" keeps nothing on disk.
type DatabaseConfig struct {
	Path string `mapstructure:"path"`
}

// PricingConfig holds engine settings.
type PricingConfig struct {
	// DefaultCommissionMultiplier is the platform-wide setting, e.g. 1.1 for 10%.
	DefaultCommissionMultiplier float64 `mapstructure:"default_commission_multiplier"`
	PreviewConcurrency          int     `mapstructure:"preview_concurrency"`
	// LunarLabels turns computed Hijri labels on or off.
	LunarLabels bool `mapstructure:"lunar_labels"`
}

// LoggingConfig holds logging configuration.
type LoggingConfig struct {
	Level   string `mapstructure:"level"`
	Format  string `mapstructure:"format"`
	NoColor bool   `mapstructure:"no_color"`
}

// Addr returns the listen address.
func (s ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// Load loads the configuration from file and environment variables.
// A missing config file is not an error when configPath is empty.
func Load(configPath string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath("./config")
		v.AddConfigPath(".")
	}

	v.SetEnvPrefix("DEAL_ENGINE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	bindEnvVars(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if configPath != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate rejects settings the service cannot run with.
func (c *Config) Validate() error {
	if c.Server.Port < 0 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port out of range: %d", c.Server.Port)
	}
	if c.Database.Path == "" {
		return errors.New("database.path must not be empty")
	}
	if c.Pricing.PreviewConcurrency < 1 {
		return fmt.Errorf("pricing.preview_concurrency must be at least 1, got %d", c.Pricing.PreviewConcurrency)
	}
	return nil
}

// bindEnvVars binds the short environment names.
func bindEnvVars(v *viper.Viper) {
	v.BindEnv("server.port", "DEAL_ENGINE_SERVER_PORT", "PORT")
	v.BindEnv("server.host", "DEAL_ENGINE_SERVER_HOST", "HOST")
	v.BindEnv("database.path", "DEAL_ENGINE_DATABASE_PATH", "DB_PATH")
	v.BindEnv("logging.level", "DEAL_ENGINE_LOGGING_LEVEL", "LOG_LEVEL")
	v.BindEnv("logging.format", "DEAL_ENGINE_LOGGING_FORMAT", "LOG_FORMAT")
	v.BindEnv("pricing.default_commission_multiplier",
		"DEAL_ENGINE_PRICING_DEFAULT_COMMISSION_MULTIPLIER", "DEFAULT_COMMISSION_MULTIPLIER")
}

// setDefaults sets default configuration values.
func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.host", "")
	v.SetDefault("server.read_timeout", 15*time.Second)
	v.SetDefault("server.write_timeout", 15*time.Second)
	v.SetDefault("server.idle_timeout", 60*time.Second)
	v.SetDefault("server.shutdown_timeout", 30*time.Second)
	v.SetDefault("server.allowed_origins", []string{"http://localhost:*", "http://127.0.0.1:*"})

	v.SetDefault("database.path", "deals.db")

	v.SetDefault("pricing.default_commission_multiplier", 1.1)
	v.SetDefault("pricing.preview_concurrency", 8)
	v.SetDefault("pricing.lunar_labels", true)

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "console")
	v.SetDefault("logging.no_color", false)
}

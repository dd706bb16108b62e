package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// EnvPrefix namespaces environment overrides: ARCADE_PLUGINS_DIR and so on.
const EnvPrefix = "ARCADE"

type Config struct {
	Environment string `mapstructure:"ENVIRONMENT"`

	// Plugins
	PluginsDir string `mapstructure:"PLUGINS_DIR"`

	// Database
	DatabaseURL string `mapstructure:"DATABASE_URL"`
	Timezone    string `mapstructure:"TIMEZONE"`
	RankingSize int    `mapstructure:"RANKING_SIZE"`

	// Server
	Port            int           `mapstructure:"PORT"`
	ShutdownTimeout time.Duration `mapstructure:"SHUTDOWN_TIMEOUT"`

	// JWT
	JWTSecret     string        `mapstructure:"JWT_SECRET"`
	JWTExpiration time.Duration `mapstructure:"JWT_EXPIRATION"`

	// AWS
	AWSRegion    string `mapstructure:"AWS_REGION"`
	ExportBucket string `mapstructure:"EXPORT_BUCKET"`

	// Logging
	LogLevel string `mapstructure:"LOG_LEVEL"`
	LogJSON  bool   `mapstructure:"LOG_JSON"`
}

// Load reads config.yaml from path (or from . and ./config when path is
// empty), then applies ARCADE_* environment overrides.
func Load(path string) (*Config, error) {
	v := viper.New()
	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./config")
	}

	// Environment variables take precedence
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Every key needs a default so AutomaticEnv can see it during Unmarshal
	v.SetDefault("ENVIRONMENT", "development")
	v.SetDefault("PLUGINS_DIR", "plugins")
	v.SetDefault("DATABASE_URL", "arcade.db")
	v.SetDefault("TIMEZONE", "Local")
	v.SetDefault("RANKING_SIZE", 3)
	v.SetDefault("PORT", 8080)
	v.SetDefault("SHUTDOWN_TIMEOUT", time.Second*30)
	v.SetDefault("JWT_SECRET", "")
	v.SetDefault("JWT_EXPIRATION", time.Hour*24)
	v.SetDefault("AWS_REGION", "us-east-1")
	v.SetDefault("EXPORT_BUCKET", "")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_JSON", false)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
		// Config file not found is OK, defaults and env vars cover everything
	}

	config := &Config{}
	if err := v.Unmarshal(config); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}
	return config, nil
}

// Validate checks the values every command needs.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.PluginsDir) == "" {
		return fmt.Errorf("PLUGINS_DIR is required")
	}
	if strings.TrimSpace(c.DatabaseURL) == "" {
		return fmt.Errorf("DATABASE_URL is required")
	}
	if c.RankingSize <= 0 {
		return fmt.Errorf("RANKING_SIZE must be positive, got %d", c.RankingSize)
	}
	if _, err := c.Location(); err != nil {
		return err
	}
	return nil
}

// RequireJWT checks the settings the HTTP API and token command depend on.
func (c *Config) RequireJWT() error {
	if c.JWTSecret == "" {
		return fmt.Errorf("JWT_SECRET is required")
	}
	if c.JWTExpiration <= 0 {
		return fmt.Errorf("JWT_EXPIRATION must be positive")
	}
	return nil
}

// Location resolves TIMEZONE.
func (c *Config) Location() (*time.Location, error) {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return nil, fmt.Errorf("invalid TIMEZONE %q: %w", c.Timezone, err)
	}
	return loc, nil
}

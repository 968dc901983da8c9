// Package config provides Viper-based hierarchical configuration management
package config

import (
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/spf13/viper"
)

// Config represents the complete application configuration
type Config struct {
	Log struct {
		Level  string `mapstructure:"level" yaml:"level"`
		Format string `mapstructure:"format" yaml:"format"`
	} `mapstructure:"log" yaml:"log"`

	Catalog struct {
		CardsFile     string `mapstructure:"cards_file" yaml:"cards_file"`
		MerchantsFile string `mapstructure:"merchants_file" yaml:"merchants_file"`
	} `mapstructure:"catalog" yaml:"catalog"`

	Ledger struct {
		Backend   string `mapstructure:"backend" yaml:"backend"`
		RedisAddr string `mapstructure:"redis_addr" yaml:"redis_addr"`
	} `mapstructure:"ledger" yaml:"ledger"`

	Server struct {
		ListenAddr string `mapstructure:"listen_addr" yaml:"listen_addr"`
	} `mapstructure:"server" yaml:"server"`

	Recommend struct {
		TopN int `mapstructure:"top_n" yaml:"top_n"`
	} `mapstructure:"recommend" yaml:"recommend"`
}

// InitializeConfig initializes Viper configuration with hierarchical loading:
// defaults, then an optional config.yaml, then CARDREC_* environment
// variables.
func InitializeConfig() (*Config, error) {
	v := viper.New()

	setDefaults(v)

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath("$HOME/.config/cardrec")
	v.AddConfigPath(".cardrec")
	v.AddConfigPath(".")

	v.SetEnvPrefix("CARDREC")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			// Continue with defaults and env vars; a broken config file is
			// reported but not fatal.
			fmt.Printf("Warning: error reading config file %s: %v\n", v.ConfigFileUsed(), err)
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := validateConfig(&config); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &config, nil
}

// setDefaults sets default configuration values
func setDefaults(v *viper.Viper) {
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")

	v.SetDefault("catalog.cards_file", "cards.yaml")
	v.SetDefault("catalog.merchants_file", "merchant-categories.yaml")

	v.SetDefault("ledger.backend", "memory")
	v.SetDefault("ledger.redis_addr", "localhost:6379")

	v.SetDefault("server.listen_addr", ":8080")

	v.SetDefault("recommend.top_n", 3)
}

// validateConfig validates the configuration values
func validateConfig(config *Config) error {
	if _, err := logrus.ParseLevel(config.Log.Level); err != nil {
		return fmt.Errorf("invalid log level: %s", config.Log.Level)
	}

	if config.Log.Format != "text" && config.Log.Format != "json" {
		return fmt.Errorf("invalid log format: %s (must be 'text' or 'json')", config.Log.Format)
	}

	switch config.Ledger.Backend {
	case "memory", "redis":
	default:
		return fmt.Errorf("invalid ledger backend: %s (must be 'memory' or 'redis')", config.Ledger.Backend)
	}
	if config.Ledger.Backend == "redis" && config.Ledger.RedisAddr == "" {
		return fmt.Errorf("ledger.redis_addr required when ledger backend is 'redis'")
	}

	if config.Recommend.TopN < 1 {
		return fmt.Errorf("recommend.top_n must be at least 1, got: %d", config.Recommend.TopN)
	}

	return nil
}

// ConfigureLoggingFromConfig configures logging based on the Config struct
func ConfigureLoggingFromConfig(config *Config) *logrus.Logger {
	logger := logrus.New()

	logLevel, err := logrus.ParseLevel(strings.ToLower(config.Log.Level))
	if err != nil {
		logger.Warnf("Invalid log level '%s', using 'info'", config.Log.Level)
		logLevel = logrus.InfoLevel
	}
	logger.SetLevel(logLevel)

	if strings.ToLower(config.Log.Format) == "json" {
		logger.SetFormatter(&logrus.JSONFormatter{})
	} else {
		logger.SetFormatter(&logrus.TextFormatter{
			FullTimestamp: true,
		})
	}

	return logger
}

package config

import (
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInitializeConfigDefaults(t *testing.T) {
	t.Setenv("HOME", t.TempDir())

	config, err := InitializeConfig()
	require.NoError(t, err)

	assert.Equal(t, "info", config.Log.Level)
	assert.Equal(t, "text", config.Log.Format)
	assert.Equal(t, "cards.yaml", config.Catalog.CardsFile)
	assert.Equal(t, "merchant-categories.yaml", config.Catalog.MerchantsFile)
	assert.Equal(t, "memory", config.Ledger.Backend)
	assert.Equal(t, "localhost:6379", config.Ledger.RedisAddr)
	assert.Equal(t, ":8080", config.Server.ListenAddr)
	assert.Equal(t, 3, config.Recommend.TopN)
}

func TestInitializeConfigEnvOverride(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	t.Setenv("CARDREC_LOG_LEVEL", "debug")
	t.Setenv("CARDREC_LEDGER_BACKEND", "redis")
	t.Setenv("CARDREC_LEDGER_REDIS_ADDR", "redis.internal:6379")

	config, err := InitializeConfig()
	require.NoError(t, err)

	assert.Equal(t, "debug", config.Log.Level)
	assert.Equal(t, "redis", config.Ledger.Backend)
	assert.Equal(t, "redis.internal:6379", config.Ledger.RedisAddr)
}

func TestInitializeConfigInvalidLevel(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	t.Setenv("CARDREC_LOG_LEVEL", "verbose")

	_, err := InitializeConfig()
	assert.Error(t, err)
}

func TestValidateConfig(t *testing.T) {
	valid := func() *Config {
		var c Config
		c.Log.Level = "info"
		c.Log.Format = "text"
		c.Ledger.Backend = "memory"
		c.Recommend.TopN = 3
		return &c
	}

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"valid", func(*Config) {}, ""},
		{"bad log level", func(c *Config) { c.Log.Level = "loud" }, "invalid log level"},
		{"bad log format", func(c *Config) { c.Log.Format = "xml" }, "invalid log format"},
		{"bad ledger backend", func(c *Config) { c.Ledger.Backend = "postgres" }, "invalid ledger backend"},
		{"redis without addr", func(c *Config) { c.Ledger.Backend = "redis"; c.Ledger.RedisAddr = "" }, "redis_addr required"},
		{"top_n too small", func(c *Config) { c.Recommend.TopN = 0 }, "top_n must be at least 1"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			config := valid()
			tt.mutate(config)
			err := validateConfig(config)
			if tt.wantErr == "" {
				assert.NoError(t, err)
			} else {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
			}
		})
	}
}

func TestConfigureLoggingFromConfig(t *testing.T) {
	var c Config
	c.Log.Level = "debug"
	c.Log.Format = "json"

	logger := ConfigureLoggingFromConfig(&c)
	assert.Equal(t, logrus.DebugLevel, logger.GetLevel())
	assert.IsType(t, &logrus.JSONFormatter{}, logger.Formatter)

	c.Log.Level = "nonsense"
	c.Log.Format = "text"
	logger = ConfigureLoggingFromConfig(&c)
	assert.Equal(t, logrus.InfoLevel, logger.GetLevel())
	assert.IsType(t, &logrus.TextFormatter{}, logger.Formatter)
}

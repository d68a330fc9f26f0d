package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testConfig struct {
	Port     int           `env:"TEST_CFG_PORT" envDefault:"8080"`
	LogLevel string        `env:"TEST_CFG_LOG_LEVEL" envDefault:"info"`
	CountTTL time.Duration `env:"TEST_CFG_COUNT_TTL" envDefault:"6h"`
	Origins  []string      `env:"TEST_CFG_ORIGINS" envDefault:"*" envSeparator:","`
	SchemaOn bool          `env:"TEST_CFG_SCHEMA" envDefault:"false"`
}

func TestLoad_Defaults(t *testing.T) {
	var cfg testConfig
	require.NoError(t, Load(&cfg))

	assert.Equal(t, 8080, cfg.Port)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, 6*time.Hour, cfg.CountTTL)
	assert.Equal(t, []string{"*"}, cfg.Origins)
	assert.False(t, cfg.SchemaOn)
}

func TestLoad_FromEnvVars(t *testing.T) {
	t.Setenv("TEST_CFG_PORT", "9090")
	t.Setenv("TEST_CFG_COUNT_TTL", "30m")
	t.Setenv("TEST_CFG_ORIGINS", "https://shop.example,https://www.shop.example")
	t.Setenv("TEST_CFG_SCHEMA", "true")

	var cfg testConfig
	require.NoError(t, Load(&cfg))

	assert.Equal(t, 9090, cfg.Port)
	assert.Equal(t, 30*time.Minute, cfg.CountTTL)
	assert.Equal(t, []string{"https://shop.example", "https://www.shop.example"}, cfg.Origins)
	assert.True(t, cfg.SchemaOn)
}

type requiredConfig struct {
	Secret string `env:"TEST_CFG_SECRET,required"`
}

func TestLoad_RequiredFieldMissing(t *testing.T) {
	var cfg requiredConfig
	err := Load(&cfg)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "parse config")
}

func TestLoad_InvalidType(t *testing.T) {
	t.Setenv("TEST_CFG_PORT", "not-a-number")

	var cfg testConfig
	err := Load(&cfg)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "parse config")
}

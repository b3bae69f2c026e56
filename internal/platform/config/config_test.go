package config

import (
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig_DefaultsAndFlags(t *testing.T) {
	viper.Reset()
	t.Setenv("TIMEZONE", "UTC")
	t.Setenv("SWEEP_WORKERS", "8")

	cfg, err := LoadConfig([]string{"--store", "memory", "--port", "9090", "--scheduler=false"})
	require.NoError(t, err)

	assert.Equal(t, StoreDriverMemory, cfg.StoreDriver)
	assert.Equal(t, "9090", cfg.Port)
	assert.False(t, cfg.Scheduler.Enabled)
	assert.Equal(t, 8, cfg.Scheduler.Workers)
	assert.Equal(t, time.Minute, cfg.Scheduler.SweepInterval)
	assert.Equal(t, 10*time.Minute, cfg.Engine.RetryDelay)
	assert.Equal(t, 3, cfg.Engine.MaxRetries)
	assert.Equal(t, "09:30", cfg.Engine.DefaultRunTime.String())
	assert.Equal(t, time.UTC, cfg.Engine.Location)
}

func TestLoadConfig_RejectsUnknownStore(t *testing.T) {
	viper.Reset()
	t.Setenv("TIMEZONE", "UTC")

	_, err := LoadConfig([]string{"--store", "sqlite"})
	assert.Error(t, err)
}

func TestLoadConfig_RejectsBadRunTime(t *testing.T) {
	viper.Reset()
	t.Setenv("TIMEZONE", "UTC")
	t.Setenv("DEFAULT_RUN_TIME", "9h30")

	_, err := LoadConfig(nil)
	assert.Error(t, err)
}

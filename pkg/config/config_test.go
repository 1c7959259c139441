package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, "development", cfg.Env)
	assert.False(t, cfg.Database.Enabled())
	assert.Equal(t, "https://query1.finance.yahoo.com", cfg.MarketData.BaseURL)
	assert.Equal(t, "2010-01-01", cfg.MarketData.HistoricalStart)
	assert.Equal(t, 8, cfg.Pipeline.Workers)
	assert.Equal(t, 200, cfg.Pipeline.Estimators)
	assert.Equal(t, int64(42), cfg.Pipeline.Seed)
	assert.Equal(t, 2*time.Hour, cfg.Pipeline.Deadline)
	assert.Equal(t, "0 0 2 * * *", cfg.Pipeline.RetrainSchedule)
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv("PORT", "9999")
	t.Setenv("DATABASE_URL", "postgres://localhost/mscal")
	t.Setenv("PIPELINE_WORKERS", "3")
	t.Setenv("MARKET_DATA_RPS", "2.5")
	t.Setenv("METRICS_ENABLED", "false")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "9999", cfg.Port)
	assert.True(t, cfg.Database.Enabled())
	assert.Equal(t, 3, cfg.Pipeline.Workers)
	assert.Equal(t, 2.5, cfg.MarketData.RequestsPerSec)
	assert.False(t, cfg.MetricsEnabled)
}

func TestLoadRejectsInvalidEnv(t *testing.T) {
	t.Setenv("ENV", "qa")

	_, err := Load()
	assert.Error(t, err)
}

func TestLoadRejectsInvalidHistoricalStart(t *testing.T) {
	t.Setenv("HISTORICAL_START", "01/01/2010")

	_, err := Load()
	assert.Error(t, err)
}

func TestLoadRejectsZeroWorkers(t *testing.T) {
	t.Setenv("PIPELINE_WORKERS", "0")

	_, err := Load()
	assert.Error(t, err)
}

func TestHistoricalStartDate(t *testing.T) {
	t.Setenv("HISTORICAL_START", "2015-06-01")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, time.Date(2015, 6, 1, 0, 0, 0, 0, time.UTC), cfg.HistoricalStartDate())
}

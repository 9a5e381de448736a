package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoad_MissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.NoError(t, err)

	assert.Equal(t, DefaultSymbols, cfg.Forecast.Symbols)
	assert.Equal(t, 730, cfg.Forecast.HorizonDays)
	assert.Equal(t, 50, cfg.Forecast.MinPoints)
	assert.True(t, cfg.Forecast.YearlySeasonality)
	assert.True(t, cfg.Forecast.DailySeasonality)
	assert.Equal(t, "sp500_stocks/sp500_stocks.csv", cfg.Dataset.Path)
	assert.NoError(t, cfg.Validate())
}

func TestLoad_FileOverridesDefaults(t *testing.T) {
	path := writeConfig(t, `
dataset:
  path: data/prices.xlsx
  sheet: Prices
forecast:
  symbols: [NVDA, AMD]
  horizon_days: 365
  daily_seasonality: false
run:
  fail_fast: true
  workers: 4
`)
	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "data/prices.xlsx", cfg.Dataset.Path)
	assert.Equal(t, "Prices", cfg.Dataset.Sheet)
	assert.Equal(t, []string{"NVDA", "AMD"}, cfg.Forecast.Symbols)
	assert.Equal(t, 365, cfg.Forecast.HorizonDays)
	assert.False(t, cfg.Forecast.DailySeasonality)
	assert.True(t, cfg.Forecast.YearlySeasonality, "keys absent from the file keep their default")
	assert.True(t, cfg.Run.FailFast)
	assert.Equal(t, 4, cfg.Run.Workers)
	assert.NoError(t, cfg.Validate())
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	path := writeConfig(t, "forecast:\n  horizon_days: 365\n")
	t.Setenv("FORECAST_FORECAST_HORIZON_DAYS", "90")
	t.Setenv("FORECAST_FORECAST_SYMBOLS", "IBM,ORCL")
	t.Setenv("FORECAST_DATASET_PATH", "/tmp/x.csv")
	t.Setenv("FORECAST_RUN_FAIL_FAST", "true")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 90, cfg.Forecast.HorizonDays)
	assert.Equal(t, []string{"IBM", "ORCL"}, cfg.Forecast.Symbols)
	assert.Equal(t, "/tmp/x.csv", cfg.Dataset.Path)
	assert.True(t, cfg.Run.FailFast)
}

func TestLoad_BadYAML(t *testing.T) {
	path := writeConfig(t, "forecast: [unclosed")
	_, err := Load(path)
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"no symbols", func(c *Config) { c.Forecast.Symbols = nil }},
		{"blank symbol", func(c *Config) { c.Forecast.Symbols = []string{"AAPL", ""} }},
		{"zero horizon", func(c *Config) { c.Forecast.HorizonDays = 0 }},
		{"min points too low", func(c *Config) { c.Forecast.MinPoints = 1 }},
		{"interval width 1", func(c *Config) { c.Forecast.IntervalWidth = 1 }},
		{"zero workers", func(c *Config) { c.Run.Workers = 0 }},
		{"unknown format", func(c *Config) { c.Dataset.Format = "parquet" }},
		{"unknown log level", func(c *Config) { c.Logging.Level = "verbose" }},
		{"empty dataset path", func(c *Config) { c.Dataset.Path = "" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}

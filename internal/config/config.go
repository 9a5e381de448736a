package config

import (
	"fmt"
	"os"

	"github.com/go-playground/validator/v10"
	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v3"
)

// EnvPrefix is the prefix of every environment override, e.g. FORECAST_DATASET_PATH.
const EnvPrefix = "FORECAST"

// DefaultSymbols is the ticker list used when none is configured.
var DefaultSymbols = []string{"AAPL", "MSFT", "AMZN", "TSLA", "GOOG", "META"}

// Config holds all application configuration.
type Config struct {
	Dataset  DatasetConfig  `yaml:"dataset"`
	Forecast ForecastConfig `yaml:"forecast"`
	Run      RunConfig      `yaml:"run"`
	Output   OutputConfig   `yaml:"output"`
	Database DatabaseConfig `yaml:"database"`
	Metrics  MetricsConfig  `yaml:"metrics"`
	Schedule ScheduleConfig `yaml:"schedule"`
	Logging  LoggingConfig  `yaml:"logging"`
}

// DatasetConfig locates the historical price table.
type DatasetConfig struct {
	Path   string `yaml:"path" validate:"required"`
	Format string `yaml:"format" validate:"omitempty,oneof=csv xlsx"`
	Sheet  string `yaml:"sheet"`
}

// ForecastConfig drives symbol selection and the forecast engine.
type ForecastConfig struct {
	Symbols               []string `yaml:"symbols" validate:"required,min=1,dive,required"`
	HorizonDays           int      `yaml:"horizon_days" split_words:"true" validate:"min=1"`
	MinPoints             int      `yaml:"min_points" split_words:"true" validate:"min=2"`
	YearlySeasonality     bool     `yaml:"yearly_seasonality" split_words:"true"`
	DailySeasonality      bool     `yaml:"daily_seasonality" split_words:"true"`
	Changepoints          int      `yaml:"changepoints" validate:"min=0"`
	ChangepointRange      float64  `yaml:"changepoint_range" split_words:"true" validate:"gt=0,lte=1"`
	ChangepointPriorScale float64  `yaml:"changepoint_prior_scale" split_words:"true" validate:"gt=0"`
	SeasonalityPriorScale float64  `yaml:"seasonality_prior_scale" split_words:"true" validate:"gt=0"`
	IntervalWidth         float64  `yaml:"interval_width" split_words:"true" validate:"gt=0,lt=1"`
	UncertaintySamples    int      `yaml:"uncertainty_samples" split_words:"true" validate:"min=0"`
	Seed                  uint64   `yaml:"seed"`
}

// RunConfig controls how the orchestrator treats failures and parallelism.
type RunConfig struct {
	FailFast bool `yaml:"fail_fast" split_words:"true"`
	Workers  int  `yaml:"workers" validate:"min=1,max=64"`
}

// OutputConfig controls where and how charts are written.
type OutputConfig struct {
	Dir          string  `yaml:"dir" validate:"required"`
	WidthInches  float64 `yaml:"width_inches" split_words:"true" validate:"gt=0"`
	HeightInches float64 `yaml:"height_inches" split_words:"true" validate:"gt=0"`
}

// DatabaseConfig enables the sqlite run recorder when SQLitePath is set.
type DatabaseConfig struct {
	SQLitePath string `yaml:"sqlite_path" envconfig:"SQLITE_PATH"`
}

// MetricsConfig enables the Prometheus textfile when Textfile is set.
type MetricsConfig struct {
	Textfile string `yaml:"textfile"`
}

// ScheduleConfig is used by the schedule command only.
type ScheduleConfig struct {
	Cron string `yaml:"cron"`
}

// LoggingConfig holds logging configuration.
type LoggingConfig struct {
	Level  string `yaml:"level" validate:"oneof=debug info warn error"`
	Format string `yaml:"format" validate:"oneof=text json"`
}

// Default returns the configuration used when nothing overrides it.
func Default() *Config {
	return &Config{
		Dataset: DatasetConfig{
			Path: "sp500_stocks/sp500_stocks.csv",
		},
		Forecast: ForecastConfig{
			Symbols:               append([]string(nil), DefaultSymbols...),
			HorizonDays:           730,
			MinPoints:             50,
			YearlySeasonality:     true,
			DailySeasonality:      true,
			Changepoints:          25,
			ChangepointRange:      0.8,
			ChangepointPriorScale: 0.05,
			SeasonalityPriorScale: 10,
			IntervalWidth:         0.8,
			UncertaintySamples:    1000,
			Seed:                  42,
		},
		Run: RunConfig{
			Workers: 1,
		},
		Output: OutputConfig{
			Dir:          ".",
			WidthInches:  10,
			HeightInches: 6,
		},
		Schedule: ScheduleConfig{
			Cron: "0 0 6 * * 1-5",
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
		},
	}
}

// Load reads config from a YAML file on top of the defaults, then applies
// environment variable overrides. A missing file is not an error.
func Load(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("read config: %w", err)
	}
	if len(data) > 0 {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := envconfig.Process(EnvPrefix, cfg); err != nil {
		return nil, fmt.Errorf("env overrides: %w", err)
	}
	return cfg, nil
}

// Validate checks field constraints declared on the struct tags.
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("config validation: %w", err)
	}
	return nil
}

package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/google/subcommands"

	"MarketForecast/internal/config"
	"MarketForecast/internal/dataset"
	"MarketForecast/internal/forecast"
	"MarketForecast/internal/logger"
	"MarketForecast/internal/metrics"
	"MarketForecast/internal/pipeline"
	"MarketForecast/internal/recorder"
	"MarketForecast/internal/report"
)

var commands = []subcommands.Command{
	&runCmd{},
	&scheduleCmd{},
	&inspectCmd{},
}

const defaultConfigPath = "configs/config.yaml"

// common holds the flags shared by every command.
type common struct {
	configPath string
	symbols    string
}

func (c *common) setFlags(f *flag.FlagSet) {
	p := defaultConfigPath
	if v := os.Getenv("CONFIG_PATH"); v != "" {
		p = v
	}
	f.StringVar(&c.configPath, "config", p, "path to the YAML config (env CONFIG_PATH)")
	f.StringVar(&c.symbols, "symbols", "", "comma-separated tickers, overrides the config")
}

// load reads and validates the config and configures logging.
func (c *common) load() (*config.Config, error) {
	cfg, err := config.Load(c.configPath)
	if err != nil {
		return nil, err
	}
	if c.symbols != "" {
		cfg.Forecast.Symbols = splitSymbols(c.symbols)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	logger.Init(cfg.Logging.Level, cfg.Logging.Format)
	return cfg, nil
}

func splitSymbols(s string) []string {
	var out []string
	for _, sym := range strings.Split(s, ",") {
		if sym = strings.ToUpper(strings.TrimSpace(sym)); sym != "" {
			out = append(out, sym)
		}
	}
	return out
}

func engineOptions(cfg *config.Config) forecast.Options {
	opts := forecast.DefaultOptions()
	f := cfg.Forecast
	opts.YearlySeasonality = f.YearlySeasonality
	opts.DailySeasonality = f.DailySeasonality
	opts.Changepoints = f.Changepoints
	opts.ChangepointRange = f.ChangepointRange
	opts.ChangepointPriorScale = f.ChangepointPriorScale
	opts.SeasonalityPriorScale = f.SeasonalityPriorScale
	opts.IntervalWidth = f.IntervalWidth
	opts.UncertaintySamples = f.UncertaintySamples
	opts.Seed = f.Seed
	return opts
}

func pipelineOptions(cfg *config.Config) pipeline.Options {
	return pipeline.Options{
		Symbols:     cfg.Forecast.Symbols,
		HorizonDays: cfg.Forecast.HorizonDays,
		MinPoints:   cfg.Forecast.MinPoints,
		FailFast:    cfg.Run.FailFast,
		Workers:     cfg.Run.Workers,
		Dataset:     cfg.Dataset.Path,
	}
}

// openRecorder falls back to the no-op recorder when sqlite is unset or fails to open.
func openRecorder(cfg *config.Config) recorder.Recorder {
	if cfg.Database.SQLitePath == "" {
		return recorder.NewNoopRecorder()
	}
	sr, err := recorder.NewSQLiteRecorder(cfg.Database.SQLitePath)
	if err != nil {
		logger.Warn("init sqlite recorder failed, using noop: %v", err)
		return recorder.NewNoopRecorder()
	}
	return sr
}

// runOnce loads the dataset and forecasts every configured symbol.
func runOnce(ctx context.Context, cfg *config.Config, renderer report.Renderer, rec recorder.Recorder, m *metrics.Metrics) error {
	table, err := dataset.Load(cfg.Dataset.Path, cfg.Dataset.Format, cfg.Dataset.Sheet)
	if err != nil {
		return err
	}
	p := pipeline.New(pipelineOptions(cfg), forecast.NewEngine(engineOptions(cfg)), renderer, rec, m)
	runErr := p.Run(ctx, table)

	if cfg.Metrics.Textfile != "" {
		if err := m.WriteTextfile(cfg.Metrics.Textfile); err != nil {
			logger.Error("%v", err)
		}
	}
	return runErr
}

// exitStatus reports err on one line and maps it to an exit status.
func exitStatus(err error) subcommands.ExitStatus {
	if err == nil {
		return subcommands.ExitSuccess
	}
	if errors.Is(err, dataset.ErrDatasetNotFound) {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}
	logger.Error("%v", err)
	return subcommands.ExitFailure
}

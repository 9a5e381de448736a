package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/google/subcommands"

	"MarketForecast/internal/metrics"
	"MarketForecast/internal/report"
)

type runCmd struct {
	common
	dryRun bool
	outDir string
}

func (*runCmd) Name() string     { return "run" }
func (*runCmd) Synopsis() string { return "forecast every configured symbol once" }
func (*runCmd) Usage() string {
	return `forecast run [-config <path>] [-symbols AAPL,MSFT] [-out <dir>] [-dry-run]

  Loads the dataset, fits a model per symbol and writes
  {SYMBOL}_forecast.png and {SYMBOL}_forecast_components.png.
`
}

func (c *runCmd) SetFlags(f *flag.FlagSet) {
	c.common.setFlags(f)
	f.StringVar(&c.outDir, "out", "", "output directory, overrides the config")
	f.BoolVar(&c.dryRun, "dry-run", false, "fit and log without writing images")
}

func (c *runCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	cfg, err := c.load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitUsageError
	}
	if c.outDir != "" {
		cfg.Output.Dir = c.outDir
	}

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	rec := openRecorder(cfg)
	defer rec.Close()

	var renderer report.Renderer = report.NewPlotRenderer(cfg.Output.Dir, cfg.Output.WidthInches, cfg.Output.HeightInches)
	if c.dryRun {
		renderer = report.NewNoopRenderer()
	}
	return exitStatus(runOnce(ctx, cfg, renderer, rec, metrics.New(nil)))
}

package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/google/subcommands"

	"MarketForecast/internal/config"
	"MarketForecast/internal/logger"
	"MarketForecast/internal/metrics"
	"MarketForecast/internal/recorder"
	"MarketForecast/internal/report"
	"MarketForecast/internal/scheduler"
)

type scheduleCmd struct {
	common
	cron string
	now  bool
}

func (*scheduleCmd) Name() string     { return "schedule" }
func (*scheduleCmd) Synopsis() string { return "re-run the forecast on a cron schedule" }
func (*scheduleCmd) Usage() string {
	return `forecast schedule [-config <path>] [-cron "0 0 6 * * 1-5"] [-now]

  Reloads the dataset and forecasts every symbol on each trigger until
  interrupted. Cron specs carry a leading seconds field.
`
}

func (c *scheduleCmd) SetFlags(f *flag.FlagSet) {
	c.common.setFlags(f)
	f.StringVar(&c.cron, "cron", "", "cron spec, overrides the config")
	f.BoolVar(&c.now, "now", false, "run once immediately before waiting for the schedule")
}

func (c *scheduleCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	cfg, err := c.load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitUsageError
	}
	if c.cron != "" {
		cfg.Schedule.Cron = c.cron
	}
	if cfg.Schedule.Cron == "" {
		fmt.Fprintln(os.Stderr, "Error: schedule.cron is not set")
		return subcommands.ExitUsageError
	}

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	rec := openRecorder(cfg)
	defer rec.Close()

	sched := scheduler.NewScheduler(ctx, task(cfg, rec))
	if err := sched.Register(cfg.Schedule.Cron); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitUsageError
	}
	sched.Start()

	if c.now {
		go sched.RunNow()
	}

	logger.Info("forecast scheduler is running. Press Ctrl+C to stop.")
	<-ctx.Done()
	logger.Info("shutdown signal received, stopping...")
	sched.Stop()
	return subcommands.ExitSuccess
}

// task builds the per-trigger pass. Metrics accumulate across passes so the
// textfile reflects the scheduler's lifetime.
func task(cfg *config.Config, rec recorder.Recorder) scheduler.Task {
	m := metrics.New(nil)
	renderer := report.NewPlotRenderer(cfg.Output.Dir, cfg.Output.WidthInches, cfg.Output.HeightInches)
	return func(ctx context.Context) error {
		return runOnce(ctx, cfg, renderer, rec, m)
	}
}

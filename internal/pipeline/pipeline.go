package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"MarketForecast/internal/calculator"
	"MarketForecast/internal/forecast"
	"MarketForecast/internal/logger"
	"MarketForecast/internal/metrics"
	"MarketForecast/internal/model"
	"MarketForecast/internal/recorder"
	"MarketForecast/internal/report"
	"MarketForecast/internal/series"
)

// tailRows is how many forecast rows are logged per symbol.
const tailRows = 5

// Forecaster fits a series and projects it horizonDays past its last point.
type Forecaster interface {
	Forecast(s model.NormalizedSeries, horizonDays int) (*model.Forecast, *forecast.Model, error)
}

// Options configures one run over the symbol list.
type Options struct {
	Symbols     []string
	HorizonDays int
	MinPoints   int
	FailFast    bool
	Workers     int
	Dataset     string // recorded with the run
}

// Pipeline runs select, normalize, fit and render for each configured symbol.
type Pipeline struct {
	opts     Options
	engine   Forecaster
	renderer report.Renderer
	recorder recorder.Recorder
	metrics  *metrics.Metrics
}

// New wires a pipeline. A nil recorder or metrics falls back to a no-op
// recorder and a private registry.
func New(opts Options, engine Forecaster, renderer report.Renderer, rec recorder.Recorder, m *metrics.Metrics) *Pipeline {
	if rec == nil {
		rec = recorder.NewNoopRecorder()
	}
	if m == nil {
		m = metrics.New(nil)
	}
	if opts.Workers < 1 {
		opts.Workers = 1
	}
	return &Pipeline{opts: opts, engine: engine, renderer: renderer, recorder: rec, metrics: m}
}

// Run processes every configured symbol against table. Per-symbol failures
// are logged and recorded; Run returns an error only when FailFast is set and
// a symbol fails, or when ctx is cancelled between symbols.
func (p *Pipeline) Run(ctx context.Context, table *model.PriceTable) error {
	runID := uuid.NewString()
	started := time.Now()
	logger.Info("run %s: %d symbols, horizon %d days", runID, len(p.opts.Symbols), p.opts.HorizonDays)

	var err error
	if p.opts.Workers == 1 {
		err = p.runSequential(ctx, runID, table)
	} else {
		err = p.runConcurrent(ctx, runID, table)
	}

	evt := &recorder.RunEvent{
		RunID:      runID,
		StartedAt:  started,
		FinishedAt: time.Now(),
		Dataset:    p.opts.Dataset,
		Symbols:    len(p.opts.Symbols),
	}
	if err != nil {
		evt.Err = err.Error()
	}
	if rerr := p.recorder.RecordRun(evt); rerr != nil {
		logger.Error("record run %s: %v", runID, rerr)
	}
	logger.Info("run %s finished in %s", runID, time.Since(started).Round(time.Millisecond))
	return err
}

func (p *Pipeline) runSequential(ctx context.Context, runID string, table *model.PriceTable) error {
	for _, symbol := range p.opts.Symbols {
		if err := ctx.Err(); err != nil {
			return fmt.Errorf("run interrupted before %s: %w", symbol, err)
		}
		if err := p.step(runID, symbol, table); err != nil {
			return err
		}
	}
	return nil
}

func (p *Pipeline) runConcurrent(ctx context.Context, runID string, table *model.PriceTable) error {
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(p.opts.Workers)
	for _, symbol := range p.opts.Symbols {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return fmt.Errorf("run interrupted before %s: %w", symbol, err)
			}
			return p.step(runID, symbol, table)
		})
	}
	return g.Wait()
}

// step processes and records one symbol. It returns an error only when the
// symbol failed and FailFast is set.
func (p *Pipeline) step(runID, symbol string, table *model.PriceTable) error {
	outcome, err := p.processSymbol(symbol, table)
	p.metrics.Observe(outcome)
	if rerr := p.recorder.RecordSymbol(&recorder.SymbolEvent{RunID: runID, Outcome: outcome}); rerr != nil {
		logger.Error("record %s: %v", symbol, rerr)
	}
	if err != nil {
		logger.Error("%v", err)
		if p.opts.FailFast {
			return err
		}
	}
	return nil
}

func (p *Pipeline) processSymbol(symbol string, table *model.PriceTable) (*model.SymbolOutcome, error) {
	out := &model.SymbolOutcome{Symbol: symbol}

	selected := series.Select(table, symbol)
	out.Rows = len(selected.Records)
	if selected.Empty() {
		logger.Warn("No data for symbol %s, skipping", symbol)
		out.Status, out.Reason = model.StatusSkippedEmpty, "no rows"
		return out, nil
	}

	normalized, err := series.Normalize(selected)
	if err != nil {
		return failed(out, fmt.Errorf("normalize %s: %w", symbol, err))
	}
	out.Points = normalized.Len()
	if normalized.Len() < p.opts.MinPoints {
		logger.Warn("Not enough data for symbol %s (%d points, need %d), skipping",
			symbol, normalized.Len(), p.opts.MinPoints)
		out.Status = model.StatusSkippedShort
		out.Reason = fmt.Sprintf("%d points < %d", normalized.Len(), p.opts.MinPoints)
		return out, nil
	}

	stats := calculator.Summarize(normalized)
	out.Stats = &stats
	logger.Info("%s", report.FormatStats(symbol, stats))

	start := time.Now()
	fc, m, err := p.engine.Forecast(normalized, p.opts.HorizonDays)
	out.FitDuration = time.Since(start)
	if err != nil {
		return failed(out, fmt.Errorf("forecast %s: %w", symbol, err))
	}
	logger.Info("%s: forecast tail (fit %s)\n%s", symbol,
		out.FitDuration.Round(time.Millisecond), report.FormatTail(fc, tailRows))

	images, err := p.renderer.Render(symbol, fc, m)
	if err != nil {
		return failed(out, fmt.Errorf("render %s: %w", symbol, err))
	}
	out.Images = images
	out.Status = model.StatusForecast
	return out, nil
}

func failed(out *model.SymbolOutcome, err error) (*model.SymbolOutcome, error) {
	out.Status = model.StatusFailed
	out.Reason = err.Error()
	return out, err
}

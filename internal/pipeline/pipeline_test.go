package pipeline

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"MarketForecast/internal/forecast"
	"MarketForecast/internal/metrics"
	"MarketForecast/internal/model"
	"MarketForecast/internal/recorder"
	"MarketForecast/internal/report"
)

var base = time.Date(2021, 1, 4, 0, 0, 0, 0, time.UTC)

func rows(symbol string, n int) []model.PriceRecord {
	recs := make([]model.PriceRecord, n)
	for i := range recs {
		recs[i] = model.PriceRecord{
			Symbol: symbol,
			Date:   base.AddDate(0, 0, i).Format("2006-01-02"),
			Close:  100 + float64(i%30),
		}
	}
	return recs
}

func table(records ...[]model.PriceRecord) *model.PriceTable {
	t := &model.PriceTable{Columns: []string{"Date", "Symbol", "Close"}}
	for _, r := range records {
		t.Records = append(t.Records, r...)
	}
	return t
}

type fakeEngine struct {
	mu    sync.Mutex
	calls map[string]int // symbol -> points
	fail  map[string]error
}

func (f *fakeEngine) Forecast(s model.NormalizedSeries, horizon int) (*model.Forecast, *forecast.Model, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.calls == nil {
		f.calls = map[string]int{}
	}
	f.calls[s.Symbol] = s.Len()
	if err := f.fail[s.Symbol]; err != nil {
		return nil, nil, err
	}
	fc := &model.Forecast{Symbol: s.Symbol, HistoryLen: s.Len()}
	for i := 0; i < s.Len()+horizon; i++ {
		fc.Points = append(fc.Points, model.ForecastPoint{Time: base.AddDate(0, 0, i), Yhat: 1, Lower: 0, Upper: 2})
	}
	return fc, nil, nil
}

type fakeRenderer struct {
	mu      sync.Mutex
	symbols []string
	fail    error
}

func (f *fakeRenderer) Render(symbol string, _ *model.Forecast, _ *forecast.Model) ([]string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.symbols = append(f.symbols, symbol)
	if f.fail != nil {
		return nil, f.fail
	}
	return []string{report.ForecastFile(symbol), report.ComponentsFile(symbol)}, nil
}

type fakeRecorder struct {
	mu       sync.Mutex
	runs     []*recorder.RunEvent
	outcomes map[string]*model.SymbolOutcome
}

func (f *fakeRecorder) RecordRun(evt *recorder.RunEvent) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.runs = append(f.runs, evt)
	return nil
}

func (f *fakeRecorder) RecordSymbol(evt *recorder.SymbolEvent) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.outcomes == nil {
		f.outcomes = map[string]*model.SymbolOutcome{}
	}
	f.outcomes[evt.Outcome.Symbol] = evt.Outcome
	return nil
}

func (f *fakeRecorder) Close() error { return nil }

func options(symbols ...string) Options {
	return Options{Symbols: symbols, HorizonDays: 30, MinPoints: 50, Workers: 1, Dataset: "test.csv"}
}

func TestRun_SkipsShortAndAbsentSymbols(t *testing.T) {
	eng, ren, rec := &fakeEngine{}, &fakeRenderer{}, &fakeRecorder{}
	m := metrics.New(nil)
	p := New(options("AAPL", "ZZZZ", "MSFT"), eng, ren, rec, m)

	require.NoError(t, p.Run(context.Background(), table(rows("AAPL", 300), rows("ZZZZ", 10))))

	assert.Equal(t, map[string]int{"AAPL": 300}, eng.calls, "engine only sees symbols with enough data")
	assert.Equal(t, []string{"AAPL"}, ren.symbols)

	require.Len(t, rec.outcomes, 3)
	aapl := rec.outcomes["AAPL"]
	assert.Equal(t, model.StatusForecast, aapl.Status)
	assert.Equal(t, 300, aapl.Points)
	require.NotNil(t, aapl.Stats)
	assert.Equal(t, 300, aapl.Stats.Rows)
	assert.Equal(t, []string{"AAPL_forecast.png", "AAPL_forecast_components.png"}, aapl.Images)

	assert.Equal(t, model.StatusSkippedShort, rec.outcomes["ZZZZ"].Status)
	assert.Equal(t, 10, rec.outcomes["ZZZZ"].Points)
	assert.Equal(t, model.StatusSkippedEmpty, rec.outcomes["MSFT"].Status)
	assert.Zero(t, rec.outcomes["MSFT"].Rows)

	require.Len(t, rec.runs, 1)
	assert.NotEmpty(t, rec.runs[0].RunID)
	assert.Equal(t, "test.csv", rec.runs[0].Dataset)
	assert.Equal(t, 3, rec.runs[0].Symbols)
	assert.Empty(t, rec.runs[0].Err)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.SymbolsTotal.WithLabelValues("forecast")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.SymbolsTotal.WithLabelValues("skipped_short")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.SymbolsTotal.WithLabelValues("skipped_empty")))
}

func TestRun_HeadersOnlyTable(t *testing.T) {
	eng, ren, rec := &fakeEngine{}, &fakeRenderer{}, &fakeRecorder{}
	p := New(options("AAPL", "MSFT", "AMZN", "TSLA", "GOOG", "META"), eng, ren, rec, nil)

	require.NoError(t, p.Run(context.Background(), table()))
	assert.Empty(t, eng.calls)
	assert.Empty(t, ren.symbols)
	require.Len(t, rec.outcomes, 6)
	for sym, o := range rec.outcomes {
		assert.Equal(t, model.StatusSkippedEmpty, o.Status, sym)
	}
}

func TestRun_FailuresIsolatedByDefault(t *testing.T) {
	eng := &fakeEngine{fail: map[string]error{"AAPL": forecast.ErrFitDiverged}}
	rec := &fakeRecorder{}
	p := New(options("AAPL", "MSFT"), eng, &fakeRenderer{}, rec, nil)

	require.NoError(t, p.Run(context.Background(), table(rows("AAPL", 100), rows("MSFT", 100))))
	assert.Equal(t, model.StatusFailed, rec.outcomes["AAPL"].Status)
	assert.Contains(t, rec.outcomes["AAPL"].Reason, "model fit diverged")
	assert.Equal(t, model.StatusForecast, rec.outcomes["MSFT"].Status)
}

func TestRun_FailFast(t *testing.T) {
	eng := &fakeEngine{fail: map[string]error{"AAPL": forecast.ErrFitDiverged}}
	rec := &fakeRecorder{}
	opts := options("AAPL", "MSFT")
	opts.FailFast = true
	p := New(opts, eng, &fakeRenderer{}, rec, nil)

	err := p.Run(context.Background(), table(rows("AAPL", 100), rows("MSFT", 100)))
	require.ErrorIs(t, err, forecast.ErrFitDiverged)
	assert.NotContains(t, eng.calls, "MSFT", "run stops at the first failure")
	require.Len(t, rec.runs, 1)
	assert.Contains(t, rec.runs[0].Err, "forecast AAPL")
}

func TestRun_RenderFailure(t *testing.T) {
	rec := &fakeRecorder{}
	ren := &fakeRenderer{fail: errors.New("disk full")}
	p := New(options("AAPL"), &fakeEngine{}, ren, rec, nil)

	require.NoError(t, p.Run(context.Background(), table(rows("AAPL", 60))))
	assert.Equal(t, model.StatusFailed, rec.outcomes["AAPL"].Status)
	assert.Contains(t, rec.outcomes["AAPL"].Reason, "disk full")
}

func TestRun_NormalizeFailure(t *testing.T) {
	bad := rows("AAPL", 60)
	bad[7].Date = "yesterday"
	rec := &fakeRecorder{}
	eng := &fakeEngine{}
	p := New(options("AAPL"), eng, &fakeRenderer{}, rec, nil)

	require.NoError(t, p.Run(context.Background(), table(bad)))
	assert.Equal(t, model.StatusFailed, rec.outcomes["AAPL"].Status)
	assert.Empty(t, eng.calls)
}

func TestRun_Concurrent(t *testing.T) {
	symbols := []string{"AAPL", "MSFT", "AMZN", "TSLA", "GOOG", "META"}
	var data [][]model.PriceRecord
	for _, s := range symbols {
		data = append(data, rows(s, 80))
	}
	eng, ren, rec := &fakeEngine{}, &fakeRenderer{}, &fakeRecorder{}
	opts := options(symbols...)
	opts.Workers = 3
	p := New(opts, eng, ren, rec, nil)

	require.NoError(t, p.Run(context.Background(), table(data...)))
	assert.Len(t, eng.calls, 6)
	sort.Strings(ren.symbols)
	want := append([]string(nil), symbols...)
	sort.Strings(want)
	assert.Equal(t, want, ren.symbols)
}

func TestRun_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	eng := &fakeEngine{}
	p := New(options("AAPL"), eng, &fakeRenderer{}, nil, nil)

	err := p.Run(ctx, table(rows("AAPL", 100)))
	assert.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, eng.calls)
}

func TestRun_EndToEnd(t *testing.T) {
	dir := t.TempDir()
	opts := forecast.DefaultOptions()
	opts.UncertaintySamples = 50
	p := New(options("AAPL", "ZZZZ"), forecast.NewEngine(opts), report.NewPlotRenderer(dir, 6, 4), nil, nil)

	require.NoError(t, p.Run(context.Background(), table(rows("AAPL", 300), rows("ZZZZ", 10))))

	for _, name := range []string{"AAPL_forecast.png", "AAPL_forecast_components.png"} {
		_, err := os.Stat(filepath.Join(dir, name))
		assert.NoError(t, err, name)
	}
	for _, name := range []string{"ZZZZ_forecast.png", "ZZZZ_forecast_components.png"} {
		_, err := os.Stat(filepath.Join(dir, name))
		assert.True(t, os.IsNotExist(err), name)
	}
}

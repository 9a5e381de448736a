package forecast

import (
	"fmt"
	"time"

	"MarketForecast/internal/model"
)

// Engine fits a fresh model per call. It holds no per-symbol state and is
// safe for concurrent use.
type Engine struct {
	opts Options
}

func NewEngine(opts Options) *Engine {
	return &Engine{opts: opts}
}

// Forecast fits series and predicts over its history plus horizonDays daily
// steps past the last observation. The returned forecast has
// series.Len()+horizonDays points in ascending time order.
func (e *Engine) Forecast(series model.NormalizedSeries, horizonDays int) (*model.Forecast, *Model, error) {
	if horizonDays < 1 {
		return nil, nil, fmt.Errorf("%w: got %d", ErrBadHorizon, horizonDays)
	}
	m, err := Fit(series, e.opts)
	if err != nil {
		return nil, nil, fmt.Errorf("fit %s: %w", series.Symbol, err)
	}

	times := make([]time.Time, 0, series.Len()+horizonDays)
	times = append(times, series.Times()...)
	times = append(times, m.FutureTimes(horizonDays)...)

	return &model.Forecast{
		Symbol:     series.Symbol,
		HistoryLen: series.Len(),
		Points:     m.Predict(times),
	}, m, nil
}

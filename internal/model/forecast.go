package model

import "time"

// ForecastPoint is one row of forecast output, historical or future.
type ForecastPoint struct {
	Time       time.Time
	Yhat       float64
	Lower      float64
	Upper      float64
	Trend      float64
	TrendLower float64
	TrendUpper float64
	Yearly     float64
	Daily      float64
}

// Forecast covers the training span followed by the projection horizon.
type Forecast struct {
	Symbol     string
	HistoryLen int
	Points     []ForecastPoint
}

// History returns the points fitted on training timestamps.
func (f *Forecast) History() []ForecastPoint {
	if f.HistoryLen >= len(f.Points) {
		return f.Points
	}
	return f.Points[:f.HistoryLen]
}

// Future returns the points past the last training timestamp.
func (f *Forecast) Future() []ForecastPoint {
	if f.HistoryLen >= len(f.Points) {
		return nil
	}
	return f.Points[f.HistoryLen:]
}

// Tail returns the last n points.
func (f *Forecast) Tail(n int) []ForecastPoint {
	if n >= len(f.Points) {
		return f.Points
	}
	return f.Points[len(f.Points)-n:]
}

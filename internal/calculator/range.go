package calculator

import (
	"errors"
	"math"

	"MarketForecast/internal/model"
)

// TradingDaysPerYear is the look-back used for 52-week statistics.
const TradingDaysPerYear = 252

// CalculateRange scans the most recent window points and returns the high and low.
func CalculateRange(points []model.Point, window int) (high, low float64, err error) {
	if len(points) == 0 {
		return 0, 0, errors.New("no points provided")
	}
	if window <= 0 {
		return 0, 0, errors.New("window must be positive")
	}
	start := len(points) - window
	if start < 0 {
		start = 0
	}
	high = math.Inf(-1)
	low = math.Inf(1)
	for _, p := range points[start:] {
		high = math.Max(high, p.Value)
		low = math.Min(low, p.Value)
	}
	return high, low, nil
}

// Calculate52WeekRange returns the high and low over the last 252 points.
func Calculate52WeekRange(points []model.Point) (high, low float64, err error) {
	return CalculateRange(points, TradingDaysPerYear)
}

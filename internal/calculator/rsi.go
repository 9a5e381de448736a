package calculator

import (
	"errors"
	"math"
	"time"

	"MarketForecast/internal/model"
)

// MaxSessionGap is the longest calendar gap between two closes that still
// counts as consecutive sessions. Longer gaps restart the smoothing.
const MaxSessionGap = 7 * 24 * time.Hour

// wilder accumulates Wilder-smoothed average gains and losses. The first
// period changes seed a simple mean; later changes are smoothed.
type wilder struct {
	period     float64
	seen       int
	gain, loss float64
}

func (w *wilder) add(change float64) {
	up, down := math.Max(change, 0), math.Max(-change, 0)
	if w.seen < int(w.period) {
		w.gain += up / w.period
		w.loss += down / w.period
		w.seen++
		return
	}
	w.gain = (w.gain*(w.period-1) + up) / w.period
	w.loss = (w.loss*(w.period-1) + down) / w.period
}

func (w *wilder) ready() bool { return w.seen >= int(w.period) }

func (w *wilder) index() float64 {
	if w.loss == 0 {
		return 100
	}
	return 100 - 100/(1+w.gain/w.loss)
}

// CalculateRSI returns the Wilder RSI of the closes after the last gap longer
// than MaxSessionGap. It is 50 while fewer than period changes are available.
// Undated points (zero times) never gap.
func CalculateRSI(points []model.Point, period int) (float64, error) {
	if period <= 0 {
		return 0, errors.New("period must be positive")
	}
	w := wilder{period: float64(period)}
	for i := 1; i < len(points); i++ {
		if points[i].Time.Sub(points[i-1].Time) > MaxSessionGap {
			w = wilder{period: float64(period)}
			continue
		}
		w.add(points[i].Value - points[i-1].Value)
	}
	if !w.ready() {
		return 50, nil
	}
	return w.index(), nil
}

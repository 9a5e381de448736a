package forecast

import "errors"

// DefaultHorizonDays is the projection length used when the caller sets none.
const DefaultHorizonDays = 730

var (
	ErrUndated     = errors.New("series has no timestamps")
	ErrDegenerate  = errors.New("series needs at least two distinct timestamps")
	ErrNonFinite   = errors.New("series contains non-finite values")
	ErrFitDiverged = errors.New("model fit diverged")
	ErrBadHorizon  = errors.New("horizon must be at least one day")
)

// Options configures the model. The zero value is not useful; start from
// DefaultOptions.
type Options struct {
	YearlySeasonality bool
	YearlyOrder       int
	DailySeasonality  bool
	DailyOrder        int

	Changepoints          int
	ChangepointRange      float64
	ChangepointPriorScale float64
	SeasonalityPriorScale float64

	IntervalWidth      float64
	UncertaintySamples int
	Seed               uint64
}

// DefaultOptions enables yearly and daily seasonality with 25 changepoints
// over the first 80% of the history and an 80% interval.
func DefaultOptions() Options {
	return Options{
		YearlySeasonality:     true,
		YearlyOrder:           10,
		DailySeasonality:      true,
		DailyOrder:            4,
		Changepoints:          25,
		ChangepointRange:      0.8,
		ChangepointPriorScale: 0.05,
		SeasonalityPriorScale: 10,
		IntervalWidth:         0.8,
		UncertaintySamples:    1000,
		Seed:                  42,
	}
}

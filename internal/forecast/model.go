package forecast

import (
	"errors"
	"fmt"
	"math"
	"time"

	"gonum.org/v1/gonum/mat"

	"MarketForecast/internal/logger"
	"MarketForecast/internal/model"
)

const (
	secondsPerDay = 86400.0

	// Penalty floors keep XᵀX+Λ positive definite. The trend base is
	// nearly free so a constant level never leaks into other columns.
	trendFloor   = 1e-9
	penaltyFloor = 1e-6

	// rowFloor bounds the changepoint and seasonal penalties relative to
	// the row count. Without it a noiseless history drives them to
	// penaltyFloor and Fourier columns collinear with the trend extrapolate
	// freely.
	rowFloor = 1e-4
)

// seasonality is one Fourier block of the design matrix.
type seasonality struct {
	name   string
	period float64 // days
	order  int
	offset int // first column
}

// Model is the fitted state for one symbol. It is not safe for concurrent use.
type Model struct {
	opts    Options
	history model.NormalizedSeries

	start  time.Time
	tScale float64 // seconds spanned by the history
	yScale float64

	changepoints []float64 // scaled time
	seasonal     []seasonality
	means        []float64 // training mean of each column, used to center seasonal features
	beta         []float64
	sigma        float64 // residual standard deviation, scaled units
}

// Fit estimates the model on the given series.
func Fit(s model.NormalizedSeries, opts Options) (*Model, error) {
	if !s.Dated {
		return nil, ErrUndated
	}
	n := s.Len()
	if n < 2 || !s.Points[n-1].Time.After(s.Points[0].Time) {
		return nil, ErrDegenerate
	}
	yMax := 0.0
	for _, p := range s.Points {
		if math.IsNaN(p.Value) || math.IsInf(p.Value, 0) {
			return nil, ErrNonFinite
		}
		yMax = math.Max(yMax, math.Abs(p.Value))
	}
	if yMax == 0 {
		yMax = 1
	}

	m := &Model{
		opts:    opts,
		history: s,
		start:   s.Points[0].Time,
		tScale:  s.Points[n-1].Time.Sub(s.Points[0].Time).Seconds(),
		yScale:  yMax,
	}
	m.placeChangepoints()
	p := m.layout()

	x := mat.NewDense(n, p, nil)
	y := mat.NewVecDense(n, nil)
	row := make([]float64, p)
	for i, pt := range s.Points {
		m.rawRow(pt.Time, row)
		x.SetRow(i, row)
		y.SetVec(i, pt.Value/m.yScale)
	}
	m.centerSeasonal(x)

	floor := math.Max(penaltyFloor, rowFloor*float64(n))
	lambda := make([]float64, p)
	for j := range lambda {
		lambda[j] = floor
	}
	lambda[0], lambda[1] = trendFloor, trendFloor

	beta, err := solve(x, y, lambda)
	if err != nil {
		return nil, err
	}
	variance := residualVariance(x, y, beta)

	for j := 2; j < p; j++ {
		scale := opts.SeasonalityPriorScale
		if j < 2+len(m.changepoints) {
			scale = opts.ChangepointPriorScale
		}
		lambda[j] = math.Max(variance/(scale*scale), floor)
	}
	if m.beta, err = solve(x, y, lambda); err != nil {
		return nil, err
	}
	m.sigma = math.Sqrt(residualVariance(x, y, m.beta))

	logger.Debug("%s: fitted %d points, %d changepoints, %d columns, sigma=%.4g",
		s.Symbol, n, len(m.changepoints), p, m.sigma*m.yScale)
	return m, nil
}

// placeChangepoints spreads changepoints over the first ChangepointRange of
// the history rows, skipping the first row.
func (m *Model) placeChangepoints() {
	n := m.history.Len()
	histSize := int(math.Floor(float64(n) * m.opts.ChangepointRange))
	count := m.opts.Changepoints
	if count > histSize-1 {
		count = histSize - 1
	}
	if count <= 0 {
		return
	}
	m.changepoints = make([]float64, 0, count)
	for i := 1; i <= count; i++ {
		idx := int(math.Round(float64(i) * float64(histSize-1) / float64(count)))
		m.changepoints = append(m.changepoints, m.scaleTime(m.history.Points[idx].Time))
	}
}

// layout assigns seasonal blocks their columns and returns the column count.
func (m *Model) layout() int {
	p := 2 + len(m.changepoints)
	add := func(name string, enabled bool, period float64, order int) {
		if !enabled || order <= 0 {
			return
		}
		m.seasonal = append(m.seasonal, seasonality{name: name, period: period, order: order, offset: p})
		p += 2 * order
	}
	add("yearly", m.opts.YearlySeasonality, 365.25, m.opts.YearlyOrder)
	add("daily", m.opts.DailySeasonality, 1, m.opts.DailyOrder)
	return p
}

func (m *Model) scaleTime(t time.Time) float64 {
	return t.Sub(m.start).Seconds() / m.tScale
}

// rawRow fills row with the uncentered features for t.
func (m *Model) rawRow(t time.Time, row []float64) {
	ts := m.scaleTime(t)
	row[0] = 1
	row[1] = ts
	for j, cp := range m.changepoints {
		row[2+j] = math.Max(ts-cp, 0)
	}
	days := float64(t.Unix()) / secondsPerDay
	for _, s := range m.seasonal {
		for k := 1; k <= s.order; k++ {
			x := 2 * math.Pi * float64(k) * days / s.period
			row[s.offset+2*(k-1)] = math.Sin(x)
			row[s.offset+2*(k-1)+1] = math.Cos(x)
		}
	}
}

// centerSeasonal subtracts each seasonal column's training mean from x and
// remembers it for prediction.
func (m *Model) centerSeasonal(x *mat.Dense) {
	n, p := x.Dims()
	m.means = make([]float64, p)
	for _, s := range m.seasonal {
		for c := s.offset; c < s.offset+2*s.order; c++ {
			sum := 0.0
			for i := 0; i < n; i++ {
				sum += x.At(i, c)
			}
			mean := sum / float64(n)
			m.means[c] = mean
			for i := 0; i < n; i++ {
				x.Set(i, c, x.At(i, c)-mean)
			}
		}
	}
}

// solve returns the minimizer of |Xb - y|² + Σ λ_j b_j².
func solve(x *mat.Dense, y *mat.VecDense, lambda []float64) ([]float64, error) {
	var xtx mat.SymDense
	xtx.SymOuterK(1, x.T())
	for j, l := range lambda {
		xtx.SetSym(j, j, xtx.At(j, j)+l)
	}

	var chol mat.Cholesky
	if ok := chol.Factorize(&xtx); !ok {
		return nil, fmt.Errorf("%w: normal matrix is not positive definite", ErrFitDiverged)
	}
	var xty, b mat.VecDense
	xty.MulVec(x.T(), y)
	if err := chol.SolveVecTo(&b, &xty); err != nil {
		var cond mat.Condition
		if !errors.As(err, &cond) {
			return nil, fmt.Errorf("%w: %v", ErrFitDiverged, err)
		}
		logger.Debug("ill-conditioned normal matrix: %v", err)
	}

	beta := mat.Col(nil, 0, &b)
	for _, v := range beta {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return nil, fmt.Errorf("%w: non-finite coefficient", ErrFitDiverged)
		}
	}
	return beta, nil
}

func residualVariance(x *mat.Dense, y *mat.VecDense, beta []float64) float64 {
	var fitted mat.VecDense
	fitted.MulVec(x, mat.NewVecDense(len(beta), beta))
	n := y.Len()
	ss := 0.0
	for i := 0; i < n; i++ {
		r := y.AtVec(i) - fitted.AtVec(i)
		ss += r * r
	}
	return ss / float64(n)
}

// History returns the training series.
func (m *Model) History() model.NormalizedSeries { return m.history }

// Components lists the enabled seasonal components in column order.
func (m *Model) Components() []string {
	names := make([]string, len(m.seasonal))
	for i, s := range m.seasonal {
		names[i] = s.name
	}
	return names
}

// Sigma returns the residual standard deviation in price units.
func (m *Model) Sigma() float64 { return m.sigma * m.yScale }

// FutureTimes returns horizonDays timestamps at daily spacing after the last
// training timestamp.
func (m *Model) FutureTimes(horizonDays int) []time.Time {
	last := m.history.Points[m.history.Len()-1].Time
	times := make([]time.Time, horizonDays)
	for k := range times {
		times[k] = last.AddDate(0, 0, k+1)
	}
	return times
}

package forecast

import (
	"math"
	"math/rand/v2"
	"sort"
	"time"

	"gonum.org/v1/gonum/stat"

	"MarketForecast/internal/model"
)

// components holds the deterministic parts of a prediction in scaled units.
// seasonal is indexed like Model.seasonal so sums run in a fixed order.
type components struct {
	trend    float64
	seasonal []float64
}

func (m *Model) evaluate(t time.Time, row []float64) components {
	m.rawRow(t, row)
	c := components{trend: m.beta[0] + m.beta[1]*row[1], seasonal: make([]float64, len(m.seasonal))}
	for j := range m.changepoints {
		c.trend += m.beta[2+j] * row[2+j]
	}
	for k, s := range m.seasonal {
		v := 0.0
		for col := s.offset; col < s.offset+2*s.order; col++ {
			v += m.beta[col] * (row[col] - m.means[col])
		}
		c.seasonal[k] = v
	}
	return c
}

func (c components) seasonalSum() float64 {
	v := 0.0
	for _, s := range c.seasonal {
		v += s
	}
	return v
}

func (c components) total() float64 { return c.trend + c.seasonalSum() }

// seasonalValue returns the named component, or 0 when it is disabled.
func (m *Model) seasonalValue(c components, name string) float64 {
	for k, s := range m.seasonal {
		if s.name == name {
			return c.seasonal[k]
		}
	}
	return 0
}

// Predict returns point estimates, components and uncertainty bounds for
// each of times, which must be in ascending order.
func (m *Model) Predict(times []time.Time) []model.ForecastPoint {
	row := make([]float64, len(m.means))
	out := make([]model.ForecastPoint, len(times))
	base := make([]components, len(times))
	for i, t := range times {
		c := m.evaluate(t, row)
		base[i] = c
		out[i] = model.ForecastPoint{
			Time:   t,
			Yhat:   c.total() * m.yScale,
			Trend:  c.trend * m.yScale,
			Yearly: m.seasonalValue(c, "yearly") * m.yScale,
			Daily:  m.seasonalValue(c, "daily") * m.yScale,
		}
	}
	m.intervals(times, base, out)
	return out
}

// intervals fills Lower/Upper and TrendLower/TrendUpper from simulated samples.
func (m *Model) intervals(times []time.Time, base []components, out []model.ForecastPoint) {
	samples := m.opts.UncertaintySamples
	if samples <= 0 {
		for i := range out {
			out[i].Lower, out[i].Upper = out[i].Yhat, out[i].Yhat
			out[i].TrendLower, out[i].TrendUpper = out[i].Trend, out[i].Trend
		}
		return
	}

	ts := make([]float64, len(times))
	tEnd := 1.0
	for i, t := range times {
		ts[i] = m.scaleTime(t)
		tEnd = math.Max(tEnd, ts[i])
	}

	rate := float64(len(m.changepoints))
	deltaScale := 1e-8
	for j := range m.changepoints {
		deltaScale += math.Abs(m.beta[2+j]) / rate
	}

	rng := rand.New(rand.NewPCG(m.opts.Seed, uint64(len(times))))
	ySamples := make([][]float64, len(times))
	trendSamples := make([][]float64, len(times))
	for i := range times {
		ySamples[i] = make([]float64, samples)
		trendSamples[i] = make([]float64, samples)
	}

	var cps, deltas []float64
	for s := 0; s < samples; s++ {
		cps, deltas = cps[:0], deltas[:0]
		if rate > 0 {
			// Poisson process on (1, tEnd]: exponential gaps at the
			// historical changepoint rate.
			for at := 1 + rng.ExpFloat64()/rate; at < tEnd; at += rng.ExpFloat64() / rate {
				cps = append(cps, at)
				deltas = append(deltas, deltaScale*(rng.ExpFloat64()-rng.ExpFloat64()))
			}
		}
		for i := range times {
			trend := base[i].trend
			for j, cp := range cps {
				if ts[i] > cp {
					trend += deltas[j] * (ts[i] - cp)
				}
			}
			seasonal := base[i].seasonalSum()
			trendSamples[i][s] = trend
			ySamples[i][s] = trend + seasonal + m.sigma*rng.NormFloat64()
		}
	}

	lo := (1 - m.opts.IntervalWidth) / 2
	hi := 1 - lo
	for i := range out {
		sort.Float64s(ySamples[i])
		sort.Float64s(trendSamples[i])
		out[i].Lower = math.Min(stat.Quantile(lo, stat.Empirical, ySamples[i], nil)*m.yScale, out[i].Yhat)
		out[i].Upper = math.Max(stat.Quantile(hi, stat.Empirical, ySamples[i], nil)*m.yScale, out[i].Yhat)
		out[i].TrendLower = math.Min(stat.Quantile(lo, stat.Empirical, trendSamples[i], nil)*m.yScale, out[i].Trend)
		out[i].TrendUpper = math.Max(stat.Quantile(hi, stat.Empirical, trendSamples[i], nil)*m.yScale, out[i].Trend)
	}
}

// profileEpoch anchors seasonal profiles; any date works since the
// components are periodic.
var profileEpoch = time.Date(2017, 1, 1, 0, 0, 0, 0, time.UTC)

// SeasonalProfile evaluates one seasonal component over a single period at n
// evenly spaced instants, in price units. Unknown names yield nil.
func (m *Model) SeasonalProfile(name string, n int) []model.Point {
	var period float64
	for _, s := range m.seasonal {
		if s.name == name {
			period = s.period
		}
	}
	if period == 0 || n <= 0 {
		return nil
	}
	row := make([]float64, len(m.means))
	step := time.Duration(period * secondsPerDay / float64(n) * float64(time.Second))
	out := make([]model.Point, n)
	for i := range out {
		t := profileEpoch.Add(time.Duration(i) * step)
		out[i] = model.Point{Time: t, Value: m.seasonalValue(m.evaluate(t, row), name) * m.yScale}
	}
	return out
}

package metrics

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"MarketForecast/internal/model"
)

// Metrics holds the Prometheus collectors for forecast runs.
type Metrics struct {
	reg *prometheus.Registry

	SymbolsTotal   *prometheus.CounterVec
	FitDuration    prometheus.Histogram
	TrainingPoints *prometheus.GaugeVec
}

// fitBuckets span sub-second fits on short series up to large uncertainty runs.
var fitBuckets = []float64{.05, .1, .25, .5, 1, 2.5, 5, 10, 30, 60}

// New registers all collectors on reg. A nil reg gets a private registry so
// repeated runs in one process never collide on the default one.
func New(reg *prometheus.Registry) *Metrics {
	if reg == nil {
		reg = prometheus.NewRegistry()
	}
	factory := promauto.With(reg)

	return &Metrics{
		reg: reg,
		SymbolsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "market_forecast",
				Name:      "symbols_total",
				Help:      "Symbols processed, by terminal status",
			},
			[]string{"status"},
		),
		FitDuration: factory.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: "market_forecast",
				Name:      "fit_duration_seconds",
				Help:      "Time spent fitting and predicting one symbol",
				Buckets:   fitBuckets,
			},
		),
		TrainingPoints: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: "market_forecast",
				Name:      "training_points",
				Help:      "Normalized points in the latest training series",
			},
			[]string{"symbol"},
		),
	}
}

// Observe records one symbol outcome.
func (m *Metrics) Observe(o *model.SymbolOutcome) {
	m.SymbolsTotal.WithLabelValues(string(o.Status)).Inc()
	if o.Points > 0 {
		m.TrainingPoints.WithLabelValues(o.Symbol).Set(float64(o.Points))
	}
	if o.Status == model.StatusForecast {
		m.FitDuration.Observe(o.FitDuration.Seconds())
	}
}

// Registry exposes the underlying registry for gathering.
func (m *Metrics) Registry() *prometheus.Registry { return m.reg }

// WriteTextfile writes the current values in the node-exporter textfile
// format. The write is atomic.
func (m *Metrics) WriteTextfile(path string) error {
	if err := prometheus.WriteToTextfile(path, m.reg); err != nil {
		return fmt.Errorf("write metrics textfile: %w", err)
	}
	return nil
}

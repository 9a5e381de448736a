package model

import (
	"math"
	"strings"
	"time"
)

// PriceRecord is one row of the historical price table.
// An empty Date or a NaN Close marks the field as missing.
type PriceRecord struct {
	Symbol string
	Date   string
	Close  float64
}

// HasClose reports whether the Close field carries a value.
func (r PriceRecord) HasClose() bool { return !math.IsNaN(r.Close) }

// PriceTable holds the full dataset as loaded from disk.
type PriceTable struct {
	Columns []string
	Records []PriceRecord
}

// HasColumn reports whether the source schema carried the named column.
func (t *PriceTable) HasColumn(name string) bool {
	for _, c := range t.Columns {
		if strings.EqualFold(strings.TrimSpace(c), name) {
			return true
		}
	}
	return false
}

// Len returns the number of records.
func (t *PriceTable) Len() int { return len(t.Records) }

// SymbolSeries is a private copy of the rows for one symbol, in recorded order.
type SymbolSeries struct {
	Symbol  string
	HasDate bool
	Records []PriceRecord
}

// Empty reports whether no rows matched the symbol.
func (s SymbolSeries) Empty() bool { return len(s.Records) == 0 }

// Point is a single (timestamp, value) observation.
type Point struct {
	Time  time.Time
	Value float64
}

// NormalizedSeries is the canonical two-column series handed to the engine.
type NormalizedSeries struct {
	Symbol string
	Dated  bool // false when the source had no date column
	Points []Point
}

// Len returns the number of points.
func (s NormalizedSeries) Len() int { return len(s.Points) }

// Values returns the point values in order.
func (s NormalizedSeries) Values() []float64 {
	v := make([]float64, len(s.Points))
	for i, p := range s.Points {
		v[i] = p.Value
	}
	return v
}

// Times returns the point timestamps in order.
func (s NormalizedSeries) Times() []time.Time {
	t := make([]time.Time, len(s.Points))
	for i, p := range s.Points {
		t[i] = p.Time
	}
	return t
}

package series

import (
	"errors"
	"fmt"
	"sort"
	"time"

	"MarketForecast/internal/model"
)

// ErrBadTimestamp is returned when a date cell cannot be parsed.
var ErrBadTimestamp = errors.New("unparseable timestamp")

var dateLayouts = []string{
	"2006-01-02",
	"2006-01-02 15:04:05",
	time.RFC3339,
	"2006/01/02",
	"01/02/2006",
}

// ParseDate parses a date cell using the layouts seen in price exports.
func ParseDate(s string) (time.Time, error) {
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("%w: %q", ErrBadTimestamp, s)
}

// ForwardFill returns a copy of records where each missing Date or Close takes
// the value of the nearest preceding row that has one, in recorded order.
func ForwardFill(records []model.PriceRecord) []model.PriceRecord {
	out := make([]model.PriceRecord, len(records))
	var lastDate string
	lastClose, haveClose := 0.0, false
	for i, r := range records {
		if r.Date == "" {
			r.Date = lastDate
		} else {
			lastDate = r.Date
		}
		if r.HasClose() {
			lastClose, haveClose = r.Close, true
		} else if haveClose {
			r.Close = lastClose
		}
		out[i] = r
	}
	return out
}

// Normalize forward-fills, parses, sorts and projects a symbol's rows to
// (time, value) points. Filling happens before sorting so gaps take the
// as-recorded predecessor. Rows still missing a field after filling are
// dropped, and duplicate timestamps keep the last recorded row.
//
// Without a date column the series keeps raw order with zero times and
// Dated=false; the engine rejects such a series.
func Normalize(s model.SymbolSeries) (model.NormalizedSeries, error) {
	filled := ForwardFill(s.Records)
	out := model.NormalizedSeries{Symbol: s.Symbol, Dated: s.HasDate}

	if !s.HasDate {
		for _, r := range filled {
			if r.HasClose() {
				out.Points = append(out.Points, model.Point{Value: r.Close})
			}
		}
		return out, nil
	}

	points := make([]model.Point, 0, len(filled))
	for i, r := range filled {
		if r.Date == "" || !r.HasClose() {
			continue
		}
		t, err := ParseDate(r.Date)
		if err != nil {
			return out, fmt.Errorf("%s row %d: %w", s.Symbol, i, err)
		}
		points = append(points, model.Point{Time: t, Value: r.Close})
	}

	sort.SliceStable(points, func(i, j int) bool { return points[i].Time.Before(points[j].Time) })

	deduped := points[:0]
	for _, p := range points {
		if n := len(deduped); n > 0 && deduped[n-1].Time.Equal(p.Time) {
			deduped[n-1] = p
			continue
		}
		deduped = append(deduped, p)
	}
	out.Points = deduped
	return out, nil
}

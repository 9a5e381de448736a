package report

import (
	"fmt"
	"math"
	"strings"

	"github.com/shopspring/decimal"

	"MarketForecast/internal/model"
)

// FormatTail renders the last n forecast rows as a fixed-width table.
func FormatTail(fc *model.Forecast, n int) string {
	var b strings.Builder
	b.WriteString(fmt.Sprintf("%-10s %12s %12s %12s\n", "date", "yhat", "lower", "upper"))
	if fc == nil || n <= 0 {
		return b.String()
	}
	for _, fp := range fc.Tail(n) {
		b.WriteString(fmt.Sprintf("%-10s %12s %12s %12s\n",
			fp.Time.Format("2006-01-02"), money(fp.Yhat), money(fp.Lower), money(fp.Upper)))
	}
	return b.String()
}

// FormatStats renders the pre-fit summary of a series on one line.
func FormatStats(symbol string, s model.SeriesStats) string {
	return fmt.Sprintf("%s: %d points %s..%s last=%s sma200=%s 52w=[%s, %s] rsi14=%s",
		symbol, s.Rows, s.First.Format("2006-01-02"), s.Last.Format("2006-01-02"),
		money(s.LastClose), money(s.SMA200), money(s.Low52w), money(s.High52w),
		fixed(s.RSI14, 1))
}

func money(v float64) string { return fixed(v, 2) }

// fixed rounds half away from zero. decimal cannot hold NaN or Inf.
func fixed(v float64, places int32) string {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return fmt.Sprint(v)
	}
	return decimal.NewFromFloat(v).StringFixed(places)
}

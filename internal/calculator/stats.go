package calculator

import (
	"MarketForecast/internal/logger"
	"MarketForecast/internal/model"
)

// Summarize computes the descriptive statistics logged before a fit.
// Indicators that lack data fall back to the last close.
func Summarize(s model.NormalizedSeries) model.SeriesStats {
	st := model.SeriesStats{Rows: s.Len()}
	if s.Len() == 0 {
		return st
	}
	st.First = s.Points[0].Time
	st.Last = s.Points[s.Len()-1].Time
	st.LastClose = s.Points[s.Len()-1].Value

	if ma, err := CalculateMA200(s.Points); err != nil {
		logger.Debug("%s: MA200 unavailable: %v", s.Symbol, err)
		st.SMA200 = st.LastClose
	} else {
		st.SMA200 = ma
	}

	if h, l, err := Calculate52WeekRange(s.Points); err != nil {
		st.High52w, st.Low52w = st.LastClose, st.LastClose
	} else {
		st.High52w, st.Low52w = h, l
	}

	if rsi, err := CalculateRSI(s.Points, 14); err != nil {
		st.RSI14 = 50
	} else {
		st.RSI14 = rsi
	}
	return st
}

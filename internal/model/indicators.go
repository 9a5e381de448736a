package model

import "time"

// SeriesStats summarizes a normalized series before it is fitted.
type SeriesStats struct {
	Rows      int
	First     time.Time
	Last      time.Time
	LastClose float64
	SMA200    float64
	High52w   float64
	Low52w    float64
	RSI14     float64
}

package model

import "time"

// SymbolStatus is the terminal state of one symbol within a run.
type SymbolStatus string

const (
	StatusForecast     SymbolStatus = "forecast"
	StatusSkippedEmpty SymbolStatus = "skipped_empty"
	StatusSkippedShort SymbolStatus = "skipped_short"
	StatusFailed       SymbolStatus = "failed"
)

// SymbolOutcome describes what happened to one symbol.
type SymbolOutcome struct {
	Symbol      string
	Status      SymbolStatus
	Reason      string
	Rows        int
	Points      int
	Stats       *SeriesStats
	Images      []string
	FitDuration time.Duration
}

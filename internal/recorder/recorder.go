package recorder

import (
	"time"

	"MarketForecast/internal/model"
)

// RunEvent describes one pass over the configured symbols.
type RunEvent struct {
	RunID      string
	StartedAt  time.Time
	FinishedAt time.Time
	Dataset    string
	Symbols    int
	Err        string // empty on success
}

// SymbolEvent records the outcome of one symbol within a run.
type SymbolEvent struct {
	RunID   string
	Outcome *model.SymbolOutcome
}

// Recorder persists run history for later analysis.
type Recorder interface {
	RecordRun(evt *RunEvent) error
	RecordSymbol(evt *SymbolEvent) error
	Close() error
}

package recorder

import (
	"database/sql"
	"fmt"
	"strings"
	"sync"
	"time"

	_ "modernc.org/sqlite"

	"MarketForecast/internal/logger"
)

// SQLiteRecorder persists run history to a SQLite database.
type SQLiteRecorder struct {
	db *sql.DB
	mu sync.Mutex
}

// NewSQLiteRecorder opens (or creates) the SQLite database and runs migrations.
func NewSQLiteRecorder(dbPath string) (*SQLiteRecorder, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	// One connection: writes are serialized anyway and ":memory:" is per connection.
	db.SetMaxOpenConns(1)

	// WAL lets dashboards read while a run writes.
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("set WAL mode: %w", err)
	}

	r := &SQLiteRecorder{db: db}
	if err := r.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	logger.Info("sqlite recorder opened: %s", dbPath)
	return r, nil
}

func (r *SQLiteRecorder) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS runs (
			id          INTEGER PRIMARY KEY AUTOINCREMENT,
			run_id      TEXT NOT NULL UNIQUE,
			started_at  INTEGER NOT NULL,
			finished_at INTEGER NOT NULL,
			dataset     TEXT,
			symbols     INTEGER,
			error       TEXT
		)`,
		`CREATE INDEX IF NOT EXISTS idx_runs_started ON runs(started_at)`,

		`CREATE TABLE IF NOT EXISTS symbol_outcomes (
			id           INTEGER PRIMARY KEY AUTOINCREMENT,
			run_id       TEXT NOT NULL,
			timestamp    INTEGER NOT NULL,
			symbol       TEXT NOT NULL,
			status       TEXT NOT NULL,
			reason       TEXT,
			rows         INTEGER,
			points       INTEGER,
			first_date   TEXT,
			last_date    TEXT,
			last_close   REAL,
			sma200       REAL,
			high_52w     REAL,
			low_52w      REAL,
			rsi14        REAL,
			fit_ms       INTEGER,
			images       TEXT
		)`,
		`CREATE INDEX IF NOT EXISTS idx_outcomes_run ON symbol_outcomes(run_id)`,
		`CREATE INDEX IF NOT EXISTS idx_outcomes_symbol ON symbol_outcomes(symbol, timestamp)`,
	}

	for _, s := range stmts {
		if _, err := r.db.Exec(s); err != nil {
			return fmt.Errorf("exec %q: %w", s[:40], err)
		}
	}
	return nil
}

func (r *SQLiteRecorder) RecordRun(evt *RunEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	_, err := r.db.Exec(`INSERT INTO runs
		(run_id, started_at, finished_at, dataset, symbols, error)
		VALUES (?,?,?,?,?,?)`,
		evt.RunID, evt.StartedAt.Unix(), evt.FinishedAt.Unix(),
		evt.Dataset, evt.Symbols, evt.Err,
	)
	return err
}

func (r *SQLiteRecorder) RecordSymbol(evt *SymbolEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	o := evt.Outcome
	var first, last sql.NullString
	var lastClose, sma, high, low, rsi sql.NullFloat64
	if st := o.Stats; st != nil {
		first = sql.NullString{String: st.First.Format(time.DateOnly), Valid: true}
		last = sql.NullString{String: st.Last.Format(time.DateOnly), Valid: true}
		lastClose = sql.NullFloat64{Float64: st.LastClose, Valid: true}
		sma = sql.NullFloat64{Float64: st.SMA200, Valid: true}
		high = sql.NullFloat64{Float64: st.High52w, Valid: true}
		low = sql.NullFloat64{Float64: st.Low52w, Valid: true}
		rsi = sql.NullFloat64{Float64: st.RSI14, Valid: true}
	}

	_, err := r.db.Exec(`INSERT INTO symbol_outcomes
		(run_id, timestamp, symbol, status, reason, rows, points,
		 first_date, last_date, last_close, sma200, high_52w, low_52w, rsi14,
		 fit_ms, images)
		VALUES (?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?)`,
		evt.RunID, time.Now().Unix(), o.Symbol, string(o.Status), o.Reason, o.Rows, o.Points,
		first, last, lastClose, sma, high, low, rsi,
		o.FitDuration.Milliseconds(), strings.Join(o.Images, ","),
	)
	return err
}

func (r *SQLiteRecorder) Close() error {
	logger.Info("closing sqlite recorder")
	return r.db.Close()
}

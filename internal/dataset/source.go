// Package dataset loads the historical price table from a tabular store on disk.
package dataset

import (
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/dustin/go-humanize"

	"MarketForecast/internal/logger"
	"MarketForecast/internal/model"
)

var (
	// ErrDatasetNotFound is returned when the dataset path does not exist.
	ErrDatasetNotFound = errors.New("dataset not found")
	// ErrMissingColumn is returned when a required column is absent from the header.
	ErrMissingColumn = errors.New("missing required column")
	// ErrNoHeader is returned for a store without even a header row.
	ErrNoHeader = errors.New("no header row")
)

// Column names recognized in the header, compared case-insensitively.
const (
	ColumnSymbol = "Symbol"
	ColumnDate   = "Date"
	ColumnClose  = "Close"
)

// Source defines the interface for reading a price table.
type Source interface {
	Load() (*model.PriceTable, error)
	Name() string
}

// MockSource returns a fixed table, for development and testing.
type MockSource struct {
	Table *model.PriceTable
	Err   error
}

func (m *MockSource) Name() string { return "mock" }

func (m *MockSource) Load() (*model.PriceTable, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	if m.Table == nil {
		return &model.PriceTable{Columns: []string{ColumnSymbol, ColumnDate, ColumnClose}}, nil
	}
	return m.Table, nil
}

// NewSource picks a Source for path. format may be "csv", "xlsx" or empty to
// infer from the file extension.
func NewSource(path, format, sheet string) (Source, error) {
	if format == "" {
		switch strings.ToLower(filepath.Ext(path)) {
		case ".xlsx", ".xlsm":
			format = "xlsx"
		default:
			format = "csv"
		}
	}
	switch format {
	case "csv":
		return &CSVSource{Path: path}, nil
	case "xlsx":
		return &XLSXSource{Path: path, Sheet: sheet}, nil
	default:
		return nil, fmt.Errorf("unsupported dataset format %q", format)
	}
}

// Load opens the dataset at path and logs a summary of its shape.
// A missing path yields an error wrapping ErrDatasetNotFound.
func Load(path, format, sheet string) (*model.PriceTable, error) {
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrDatasetNotFound, path)
		}
		return nil, fmt.Errorf("stat dataset: %w", err)
	}
	src, err := NewSource(path, format, sheet)
	if err != nil {
		return nil, err
	}
	logger.Info("loading dataset from %s (%s)", path, src.Name())
	table, err := src.Load()
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", path, err)
	}
	LogSummary(table)
	return table, nil
}

// LogSummary prints the table shape and its first rows.
func LogSummary(table *model.PriceTable) {
	logger.Info("dataset shape: %s rows x %d columns (%s)",
		humanize.Comma(int64(table.Len())), len(table.Columns), strings.Join(table.Columns, ", "))
	for i := 0; i < len(table.Records) && i < 3; i++ {
		r := table.Records[i]
		logger.Info("  %-6s %-10s %s", r.Symbol, r.Date, formatClose(r.Close))
	}
}

func formatClose(v float64) string {
	if math.IsNaN(v) {
		return "NaN"
	}
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// columnIndex maps the required and optional columns to header positions.
type columnIndex struct {
	symbol, date, close int
}

func indexHeader(header []string) (columnIndex, error) {
	idx := columnIndex{symbol: -1, date: -1, close: -1}
	for i, h := range header {
		switch {
		case strings.EqualFold(h, ColumnSymbol):
			idx.symbol = i
		case strings.EqualFold(h, ColumnDate):
			idx.date = i
		case strings.EqualFold(h, ColumnClose):
			idx.close = i
		}
	}
	if idx.symbol < 0 {
		return idx, fmt.Errorf("%w: %s", ErrMissingColumn, ColumnSymbol)
	}
	if idx.close < 0 {
		return idx, fmt.Errorf("%w: %s", ErrMissingColumn, ColumnClose)
	}
	return idx, nil
}

func cleanHeader(header []string) []string {
	cols := make([]string, len(header))
	for i, h := range header {
		cols[i] = strings.TrimSpace(strings.TrimPrefix(h, "\ufeff"))
	}
	return cols
}

func cell(row []string, i int) string {
	if i < 0 || i >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[i])
}

// parseRecord converts one data row. Empty or unparseable Close becomes NaN.
func (idx columnIndex) parseRecord(row []string) model.PriceRecord {
	rec := model.PriceRecord{
		Symbol: cell(row, idx.symbol),
		Date:   cell(row, idx.date),
		Close:  math.NaN(),
	}
	if s := strings.ReplaceAll(cell(row, idx.close), ",", ""); s != "" {
		if v, err := strconv.ParseFloat(s, 64); err == nil {
			rec.Close = v
		}
	}
	return rec
}

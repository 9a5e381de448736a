package dataset

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"

	"MarketForecast/internal/model"
)

// CSVSource reads a comma-separated file with a header row.
type CSVSource struct {
	Path string
}

func (s *CSVSource) Name() string { return "csv" }

func (s *CSVSource) Load() (*model.PriceTable, error) {
	f, err := os.Open(s.Path)
	if err != nil {
		return nil, fmt.Errorf("open csv: %w", err)
	}
	defer f.Close()
	return ReadCSV(f)
}

// ReadCSV parses a price table from r.
func ReadCSV(r io.Reader) (*model.PriceTable, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.ReuseRecord = true

	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return nil, ErrNoHeader
	}
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}
	header = cleanHeader(header)
	idx, err := indexHeader(header)
	if err != nil {
		return nil, err
	}

	table := &model.PriceTable{Columns: header}
	for {
		row, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read row %d: %w", len(table.Records)+2, err)
		}
		table.Records = append(table.Records, idx.parseRecord(row))
	}
	return table, nil
}

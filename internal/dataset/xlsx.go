package dataset

import (
	"fmt"

	"github.com/xuri/excelize/v2"

	"MarketForecast/internal/model"
)

// XLSXSource reads a worksheet whose first row is the header.
// An empty Sheet selects the first sheet of the workbook.
type XLSXSource struct {
	Path  string
	Sheet string
}

func (s *XLSXSource) Name() string { return "xlsx" }

func (s *XLSXSource) Load() (*model.PriceTable, error) {
	f, err := excelize.OpenFile(s.Path)
	if err != nil {
		return nil, fmt.Errorf("open xlsx: %w", err)
	}
	defer f.Close()

	sheet := s.Sheet
	if sheet == "" {
		sheets := f.GetSheetList()
		if len(sheets) == 0 {
			return nil, ErrNoHeader
		}
		sheet = sheets[0]
	}

	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("read sheet %q: %w", sheet, err)
	}
	if len(rows) == 0 {
		return nil, ErrNoHeader
	}

	header := cleanHeader(rows[0])
	idx, err := indexHeader(header)
	if err != nil {
		return nil, err
	}
	table := &model.PriceTable{Columns: header, Records: make([]model.PriceRecord, 0, len(rows)-1)}
	for _, row := range rows[1:] {
		table.Records = append(table.Records, idx.parseRecord(row))
	}
	return table, nil
}

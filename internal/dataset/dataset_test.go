package dataset

import (
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

const sampleCSV = `Date,Symbol,Adj Close,Close,High,Low,Open,Volume
2010-01-04,MMM,44.01,69.41,69.77,69.12,69.47,3640265
2010-01-05,MMM,43.80,,69.45,68.80,69.23,3405012
2010-01-04,AAPL,6.45,7.64,7.66,7.58,7.62,493729600
`

func TestReadCSV(t *testing.T) {
	table, err := ReadCSV(strings.NewReader(sampleCSV))
	require.NoError(t, err)

	assert.Len(t, table.Columns, 8)
	assert.True(t, table.HasColumn("date"))
	require.Equal(t, 3, table.Len())

	assert.Equal(t, "MMM", table.Records[0].Symbol)
	assert.Equal(t, "2010-01-04", table.Records[0].Date)
	assert.InDelta(t, 69.41, table.Records[0].Close, 1e-9)
	assert.True(t, math.IsNaN(table.Records[1].Close), "empty Close is missing")
	assert.Equal(t, "AAPL", table.Records[2].Symbol)
}

func TestReadCSV_HeadersOnly(t *testing.T) {
	table, err := ReadCSV(strings.NewReader("Date,Symbol,Close\n"))
	require.NoError(t, err)
	assert.Equal(t, 0, table.Len())
}

func TestReadCSV_Errors(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  error
	}{
		{"empty file", "", ErrNoHeader},
		{"no close column", "Date,Symbol,Open\n2020-01-01,AAPL,1\n", ErrMissingColumn},
		{"no symbol column", "Date,Close\n2020-01-01,1\n", ErrMissingColumn},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ReadCSV(strings.NewReader(tt.input))
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestReadCSV_NoDateColumn(t *testing.T) {
	table, err := ReadCSV(strings.NewReader("Symbol,Close\nAAPL,1.5\nAAPL,1.6\n"))
	require.NoError(t, err)
	assert.False(t, table.HasColumn(ColumnDate))
	assert.Equal(t, "", table.Records[0].Date)
}

func TestLoad_NotFound(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sp500_stocks", "sp500_stocks.csv")
	_, err := Load(path, "", "")
	require.ErrorIs(t, err, ErrDatasetNotFound)
	assert.Contains(t, err.Error(), path)
}

func TestLoad_CSVFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "prices.csv")
	require.NoError(t, os.WriteFile(path, []byte(sampleCSV), 0o644))

	table, err := Load(path, "", "")
	require.NoError(t, err)
	assert.Equal(t, 3, table.Len())
}

func TestLoad_XLSXFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "prices.xlsx")

	f := excelize.NewFile()
	require.NoError(t, f.SetSheetRow("Sheet1", "A1", &[]interface{}{"Symbol", "Date", "Close"}))
	require.NoError(t, f.SetSheetRow("Sheet1", "A2", &[]interface{}{"AAPL", "2020-01-02", 75.09}))
	require.NoError(t, f.SetSheetRow("Sheet1", "A3", &[]interface{}{"AAPL", "2020-01-03", ""}))
	require.NoError(t, f.SaveAs(path))
	require.NoError(t, f.Close())

	table, err := Load(path, "", "")
	require.NoError(t, err)
	require.Equal(t, 2, table.Len())
	assert.Equal(t, "AAPL", table.Records[0].Symbol)
	assert.InDelta(t, 75.09, table.Records[0].Close, 1e-9)
	assert.True(t, math.IsNaN(table.Records[1].Close))
}

func TestNewSource(t *testing.T) {
	src, err := NewSource("a/b.xlsx", "", "")
	require.NoError(t, err)
	assert.Equal(t, "xlsx", src.Name())

	src, err = NewSource("a/b.csv", "", "")
	require.NoError(t, err)
	assert.Equal(t, "csv", src.Name())

	src, err = NewSource("a/b.dat", "xlsx", "Prices")
	require.NoError(t, err)
	assert.Equal(t, "Prices", src.(*XLSXSource).Sheet)

	_, err = NewSource("a/b.csv", "parquet", "")
	assert.Error(t, err)
}

func TestMockSource(t *testing.T) {
	m := &MockSource{}
	table, err := m.Load()
	require.NoError(t, err)
	assert.Equal(t, 0, table.Len())
	assert.True(t, table.HasColumn("Close"))
}

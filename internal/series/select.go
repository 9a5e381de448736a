// Package series turns raw price rows into the canonical series the forecast
// engine trains on.
package series

import (
	"MarketForecast/internal/dataset"
	"MarketForecast/internal/logger"
	"MarketForecast/internal/model"
)

// Select returns a copy of the rows whose symbol equals symbol, in table order.
// No match yields an empty series, not an error.
func Select(table *model.PriceTable, symbol string) model.SymbolSeries {
	s := model.SymbolSeries{Symbol: symbol, HasDate: table.HasColumn(dataset.ColumnDate)}
	for _, r := range table.Records {
		if r.Symbol == symbol {
			s.Records = append(s.Records, r)
		}
	}
	if s.Empty() {
		logger.Debug("%s: no rows in table", symbol)
	} else {
		logger.Info("%s: %d rows found", symbol, len(s.Records))
	}
	return s
}

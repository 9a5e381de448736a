package report

import (
	"MarketForecast/internal/forecast"
	"MarketForecast/internal/model"
)

// Renderer turns one symbol's forecast into image files and returns their paths.
type Renderer interface {
	Render(symbol string, fc *model.Forecast, m *forecast.Model) ([]string, error)
}

// NoopRenderer writes nothing. Used for dry runs.
type NoopRenderer struct{}

func NewNoopRenderer() *NoopRenderer { return &NoopRenderer{} }

func (n *NoopRenderer) Render(_ string, _ *model.Forecast, _ *forecast.Model) ([]string, error) {
	return nil, nil
}

// ForecastFile and ComponentsFile name the images written for a symbol.
func ForecastFile(symbol string) string   { return symbol + "_forecast.png" }
func ComponentsFile(symbol string) string { return symbol + "_forecast_components.png" }

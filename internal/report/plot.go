package report

import (
	"errors"
	"fmt"
	"image/color"
	"os"
	"path/filepath"
	"time"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
	"gonum.org/v1/plot/vg/vgimg"

	"MarketForecast/internal/forecast"
	"MarketForecast/internal/logger"
	"MarketForecast/internal/model"
)

var (
	observedColor = color.RGBA{A: 255}
	predictColor  = color.RGBA{R: 0x00, G: 0x72, B: 0xb2, A: 255}
	bandColor     = color.RGBA{R: 0x00, G: 0x72, B: 0xb2, A: 0x40}
)

// PlotRenderer draws PNG charts with gonum/plot.
type PlotRenderer struct {
	Dir    string
	Width  vg.Length
	Height vg.Length
}

// NewPlotRenderer writes into dir using a canvas of the given size in inches.
func NewPlotRenderer(dir string, widthInches, heightInches float64) *PlotRenderer {
	if dir == "" {
		dir = "."
	}
	return &PlotRenderer{
		Dir:    dir,
		Width:  vg.Length(widthInches) * vg.Inch,
		Height: vg.Length(heightInches) * vg.Inch,
	}
}

func (r *PlotRenderer) Render(symbol string, fc *model.Forecast, m *forecast.Model) ([]string, error) {
	if fc == nil || m == nil {
		return nil, errors.New("render: forecast and model are required")
	}
	if err := os.MkdirAll(r.Dir, 0o755); err != nil {
		return nil, fmt.Errorf("create output dir: %w", err)
	}

	forecastPath := filepath.Join(r.Dir, ForecastFile(symbol))
	if err := r.renderForecast(symbol, fc, m, forecastPath); err != nil {
		return nil, fmt.Errorf("render %s: %w", forecastPath, err)
	}
	logger.Info("%s: saved forecast chart to %s", symbol, forecastPath)

	componentsPath := filepath.Join(r.Dir, ComponentsFile(symbol))
	if err := r.renderComponents(symbol, fc, m, componentsPath); err != nil {
		return nil, fmt.Errorf("render %s: %w", componentsPath, err)
	}
	logger.Info("%s: saved components chart to %s", symbol, componentsPath)

	return []string{forecastPath, componentsPath}, nil
}

func (r *PlotRenderer) renderForecast(symbol string, fc *model.Forecast, m *forecast.Model, path string) error {
	p := plot.New()
	p.Title.Text = fmt.Sprintf("%s price forecast (%d days)", symbol, len(fc.Future()))
	p.X.Label.Text = "Date"
	p.Y.Label.Text = "Close"
	p.X.Tick.Marker = plot.TimeTicks{Format: "2006-01"}
	p.Add(plotter.NewGrid())

	band, err := bandPolygon(fc.Points, func(fp model.ForecastPoint) (float64, float64) { return fp.Lower, fp.Upper })
	if err != nil {
		return err
	}
	line, err := forecastLine(fc.Points, func(fp model.ForecastPoint) float64 { return fp.Yhat })
	if err != nil {
		return err
	}

	hist := m.History()
	observed := make(plotter.XYs, hist.Len())
	for i, pt := range hist.Points {
		observed[i].X = unix(pt.Time)
		observed[i].Y = pt.Value
	}
	scatter, err := plotter.NewScatter(observed)
	if err != nil {
		return fmt.Errorf("observed points: %w", err)
	}
	scatter.GlyphStyle.Color = observedColor
	scatter.GlyphStyle.Radius = vg.Points(1)

	p.Add(band, line, scatter)
	p.Legend.Add("observed", scatter)
	p.Legend.Add("forecast", line)
	p.Legend.Add("interval", band)
	p.Legend.Top = true
	p.Legend.Left = true

	return p.Save(r.Width, r.Height, path)
}

func (r *PlotRenderer) renderComponents(symbol string, fc *model.Forecast, m *forecast.Model, path string) error {
	names := m.Components()
	plots := make([][]*plot.Plot, 1+len(names))

	trend := plot.New()
	trend.Title.Text = symbol + " forecast components"
	trend.Y.Label.Text = "trend"
	trend.X.Tick.Marker = plot.TimeTicks{Format: "2006-01"}
	band, err := bandPolygon(fc.Points, func(fp model.ForecastPoint) (float64, float64) { return fp.TrendLower, fp.TrendUpper })
	if err != nil {
		return err
	}
	line, err := forecastLine(fc.Points, func(fp model.ForecastPoint) float64 { return fp.Trend })
	if err != nil {
		return err
	}
	trend.Add(plotter.NewGrid(), band, line)
	plots[0] = []*plot.Plot{trend}

	for i, name := range names {
		p, err := profilePlot(m, name)
		if err != nil {
			return err
		}
		plots[i+1] = []*plot.Plot{p}
	}

	img := vgimg.New(r.Width, r.Height*vg.Length(len(plots))/2)
	dc := draw.New(img)
	tiles := draw.Tiles{
		Rows:      len(plots),
		Cols:      1,
		PadX:      vg.Millimeter,
		PadY:      vg.Millimeter * 4,
		PadTop:    vg.Millimeter * 2,
		PadBottom: vg.Millimeter * 2,
		PadLeft:   vg.Millimeter * 2,
		PadRight:  vg.Millimeter * 2,
	}
	canvases := plot.Align(plots, tiles, dc)
	for j := range plots {
		plots[j][0].Draw(canvases[j][0])
	}

	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if _, err := (vgimg.PngCanvas{Canvas: img}).WriteTo(f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// profilePlot draws one period of a seasonal component.
func profilePlot(m *forecast.Model, name string) (*plot.Plot, error) {
	samples, format := 365, "Jan"
	if name == "daily" {
		samples, format = 96, "15:04"
	}
	profile := m.SeasonalProfile(name, samples)
	xys := make(plotter.XYs, len(profile))
	for i, pt := range profile {
		xys[i].X = unix(pt.Time)
		xys[i].Y = pt.Value
	}
	line, err := plotter.NewLine(xys)
	if err != nil {
		return nil, fmt.Errorf("%s profile: %w", name, err)
	}
	line.LineStyle.Color = predictColor
	line.LineStyle.Width = vg.Points(1.5)

	p := plot.New()
	p.Y.Label.Text = name
	p.X.Tick.Marker = plot.TimeTicks{Format: format}
	p.Add(plotter.NewGrid(), line)
	return p, nil
}

func forecastLine(points []model.ForecastPoint, value func(model.ForecastPoint) float64) (*plotter.Line, error) {
	xys := make(plotter.XYs, len(points))
	for i, fp := range points {
		xys[i].X = unix(fp.Time)
		xys[i].Y = value(fp)
	}
	line, err := plotter.NewLine(xys)
	if err != nil {
		return nil, fmt.Errorf("forecast line: %w", err)
	}
	line.LineStyle.Color = predictColor
	line.LineStyle.Width = vg.Points(1.5)
	return line, nil
}

// bandPolygon traces the upper bound forward and the lower bound back.
func bandPolygon(points []model.ForecastPoint, bounds func(model.ForecastPoint) (float64, float64)) (*plotter.Polygon, error) {
	n := len(points)
	xys := make(plotter.XYs, 2*n)
	for i, fp := range points {
		lo, hi := bounds(fp)
		xys[i] = plotter.XY{X: unix(fp.Time), Y: hi}
		xys[2*n-1-i] = plotter.XY{X: unix(fp.Time), Y: lo}
	}
	poly, err := plotter.NewPolygon(xys)
	if err != nil {
		return nil, fmt.Errorf("uncertainty band: %w", err)
	}
	poly.Color = bandColor
	poly.LineStyle.Width = 0
	return poly, nil
}

func unix(t time.Time) float64 { return float64(t.Unix()) }

package planner

import (
	"bytes"
	"context"
	"fmt"

	"github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"

	"github.com/bobmcallan/hearth/internal/models"
)

const chartsSubdir = "charts"

// RenderChart returns the fan chart PNG for a report, rendering and caching it
// under the report's run ID on first use.
func (s *Service) RenderChart(_ context.Context, report *models.ForecastReport) ([]byte, error) {
	if report == nil || len(report.Bands) < 2 {
		return nil, fmt.Errorf("%w: report has no simulation to chart", ErrInvalidRequest)
	}

	key := report.RunID + ".png"
	if s.blobs != nil && report.RunID != "" {
		if png, err := s.blobs.ReadRaw(chartsSubdir, key); err == nil {
			return png, nil
		}
	}

	opts := FanChartOptions{
		TradingDaysPerYear: s.config.Simulation.TradingDaysPerYear,
		Scale:              1.0,
		Title:              "Growth of $1",
	}
	if report.Outcome != nil && report.Outcome.CurrentHoldingsValue.IsPositive() {
		opts.Scale = report.Outcome.CurrentHoldingsValue.InexactFloat64()
		opts.Money = true
		opts.Title = "Projected Investment Value"
		// Investment value that, with accumulated savings, reaches the target price
		needed := report.Request.TargetPrice.Sub(report.Outcome.AccumulatedSavings)
		if needed.IsPositive() {
			opts.Threshold = needed.InexactFloat64()
		}
	}

	png, err := RenderFanChart(report.Bands, opts)
	if err != nil {
		return nil, err
	}

	if s.blobs != nil && report.RunID != "" {
		if err := s.blobs.WriteRaw(chartsSubdir, key, png); err != nil {
			s.logger.Warn().Str("run_id", report.RunID).Err(err).Msg("Failed to cache chart")
		}
	}
	return png, nil
}

// FanChartOptions controls RenderFanChart.
type FanChartOptions struct {
	TradingDaysPerYear int
	Scale              float64 // multiplies every band value
	Threshold          float64 // > 0 draws a dashed target line
	Money              bool    // dollar axis labels instead of multiples
	Title              string
}

// RenderFanChart renders percentile bands as a PNG line chart with years on the x axis.
func RenderFanChart(bands []models.PercentileBand, opts FanChartOptions) ([]byte, error) {
	if len(bands) < 2 {
		return nil, fmt.Errorf("need at least 2 bands, got %d", len(bands))
	}
	tradingDaysPerYear := opts.TradingDaysPerYear
	if tradingDaysPerYear < 1 {
		tradingDaysPerYear = 252
	}
	scale := opts.Scale
	if scale == 0 {
		scale = 1
	}

	x := make([]float64, len(bands))
	p5 := make([]float64, len(bands))
	p25 := make([]float64, len(bands))
	p50 := make([]float64, len(bands))
	p75 := make([]float64, len(bands))
	p95 := make([]float64, len(bands))
	for i, b := range bands {
		x[i] = float64(b.Day) / float64(tradingDaysPerYear)
		p5[i] = b.P5 * scale
		p25[i] = b.P25 * scale
		p50[i] = b.P50 * scale
		p75[i] = b.P75 * scale
		p95[i] = b.P95 * scale
	}

	outer := drawing.ColorFromHex("93c5fd") // blue-300
	inner := drawing.ColorFromHex("3b82f6") // blue-500

	series := []chart.Series{
		chart.ContinuousSeries{Name: "5th pct", Style: chart.Style{StrokeColor: outer, StrokeWidth: 1.5}, XValues: x, YValues: p5},
		chart.ContinuousSeries{Name: "25th pct", Style: chart.Style{StrokeColor: inner, StrokeWidth: 1.5}, XValues: x, YValues: p25},
		chart.ContinuousSeries{Name: "Median", Style: chart.Style{StrokeColor: drawing.ColorFromHex("1e3a8a"), StrokeWidth: 2.5}, XValues: x, YValues: p50},
		chart.ContinuousSeries{Name: "75th pct", Style: chart.Style{StrokeColor: inner, StrokeWidth: 1.5}, XValues: x, YValues: p75},
		chart.ContinuousSeries{Name: "95th pct", Style: chart.Style{StrokeColor: outer, StrokeWidth: 1.5}, XValues: x, YValues: p95},
	}
	if opts.Threshold > 0 {
		series = append(series, chart.ContinuousSeries{
			Name: "Needed",
			Style: chart.Style{
				StrokeColor:     drawing.ColorFromHex("dc2626"), // red-600
				StrokeWidth:     1.5,
				StrokeDashArray: []float64{5.0, 3.0},
			},
			XValues: []float64{x[0], x[len(x)-1]},
			YValues: []float64{opts.Threshold, opts.Threshold},
		})
	}

	graph := chart.Chart{
		Title:  opts.Title,
		Width:  900,
		Height: 400,
		Background: chart.Style{
			Padding: chart.Box{Top: 40, Left: 10, Right: 20, Bottom: 10},
		},
		XAxis: chart.XAxis{
			Name: "Years",
			ValueFormatter: func(v interface{}) string {
				if f, ok := v.(float64); ok {
					return fmt.Sprintf("%.0f", f)
				}
				return ""
			},
		},
		YAxis: chart.YAxis{
			ValueFormatter: func(v interface{}) string {
				f, ok := v.(float64)
				if !ok {
					return ""
				}
				if opts.Money {
					return fmt.Sprintf("$%.0fk", f/1000)
				}
				return fmt.Sprintf("%.2fx", f)
			},
		},
		Series: series,
	}
	graph.Elements = []chart.Renderable{chart.Legend(&graph)}

	var buf bytes.Buffer
	if err := graph.Render(chart.PNG, &buf); err != nil {
		return nil, fmt.Errorf("failed to render chart: %w", err)
	}
	return buf.Bytes(), nil
}

package http

import (
	"bytes"
	"fmt"
	"math"

	chart "github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"

	"go-pdm-fleet-dashboard/internal/fleet"
)

type trendChartOptions struct {
	Width        int
	Height       int
	ShowRMS      bool
	ShowKurt     bool
	Smooth       bool
	SmoothWindow int
}

// renderTrendChart draws the degradation trend for one asset: fault energy as
// the base series, optional smoothed/RMS/Kurtosis overlays and an optional
// dashed vertical marker at the asset's failure day.
func renderTrendChart(series fleet.AssetSeries, opts trendChartOptions) ([]byte, error) {
	days, energy := pointValues(series, func(p fleet.HistoryRow) *float64 { return p.FaultEnergy })
	if len(days) < 2 {
		return nil, fmt.Errorf("asset %s: not enough plottable history points", series.AssetID)
	}

	minY, maxY := bounds(energy)
	chartSeries := []chart.Series{
		chart.ContinuousSeries{
			Name:    "Fault_Energy",
			XValues: days,
			YValues: energy,
			Style:   chart.Style{StrokeColor: drawing.ColorFromHex("0e5d8f"), StrokeWidth: 2},
		},
	}

	if opts.Smooth {
		if smoothed := series.SmoothedFaultEnergy(opts.SmoothWindow); smoothed != nil {
			xs, ys := smoothedValues(series, smoothed)
			if len(xs) >= 2 {
				lo, hi := bounds(ys)
				minY, maxY = math.Min(minY, lo), math.Max(maxY, hi)
				chartSeries = append(chartSeries, chart.ContinuousSeries{
					Name:    fmt.Sprintf("Fault_Energy (%d-day avg)", opts.SmoothWindow),
					XValues: xs,
					YValues: ys,
					Style:   chart.Style{StrokeColor: drawing.ColorFromHex("cb4b16"), StrokeWidth: 2},
				})
			}
		}
	}

	if opts.ShowRMS {
		xs, ys := pointValues(series, func(p fleet.HistoryRow) *float64 { return p.RMS })
		if len(xs) >= 2 {
			lo, hi := bounds(ys)
			minY, maxY = math.Min(minY, lo), math.Max(maxY, hi)
			chartSeries = append(chartSeries, chart.ContinuousSeries{
				Name:    "RMS",
				XValues: xs,
				YValues: ys,
				Style:   chart.Style{StrokeColor: drawing.ColorFromHex("2aa198"), StrokeWidth: 1.5},
			})
		}
	}

	if opts.ShowKurt {
		xs, ys := pointValues(series, func(p fleet.HistoryRow) *float64 { return p.Kurtosis })
		if len(xs) >= 2 {
			lo, hi := bounds(ys)
			minY, maxY = math.Min(minY, lo), math.Max(maxY, hi)
			chartSeries = append(chartSeries, chart.ContinuousSeries{
				Name:    "Kurtosis",
				XValues: xs,
				YValues: ys,
				Style:   chart.Style{StrokeColor: drawing.ColorFromHex("6c71c4"), StrokeWidth: 1.5},
			})
		}
	}

	if series.FailureDay != nil {
		fd := *series.FailureDay
		chartSeries = append(chartSeries,
			chart.ContinuousSeries{
				Name:    "failure_day",
				XValues: []float64{fd, fd},
				YValues: []float64{minY, maxY},
				Style: chart.Style{
					StrokeColor:     drawing.ColorFromHex("a94442"),
					StrokeWidth:     1.5,
					StrokeDashArray: []float64{4, 3},
				},
			},
			chart.AnnotationSeries{
				Annotations: []chart.Value2{
					{XValue: fd, YValue: maxY, Label: "failure_day"},
				},
				Style: chart.Style{StrokeColor: drawing.ColorFromHex("a94442")},
			},
		)
	}

	graph := chart.Chart{
		Width:  opts.Width,
		Height: opts.Height,
		XAxis:  chart.XAxis{Name: "Day"},
		YAxis:  chart.YAxis{Name: "Signal / Feature Value"},
		Series: chartSeries,
	}
	graph.Elements = []chart.Renderable{chart.Legend(&graph)}

	var buf bytes.Buffer
	if err := graph.Render(chart.PNG, &buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// pointValues extracts a plottable (day, value) slice pair, skipping points
// where the column is missing or non-numeric.
func pointValues(series fleet.AssetSeries, pick func(fleet.HistoryRow) *float64) ([]float64, []float64) {
	xs := make([]float64, 0, len(series.Points))
	ys := make([]float64, 0, len(series.Points))
	for _, p := range series.Points {
		v := pick(p)
		if v == nil || math.IsNaN(*v) {
			continue
		}
		xs = append(xs, p.Day)
		ys = append(ys, *v)
	}
	return xs, ys
}

func smoothedValues(series fleet.AssetSeries, smoothed []*float64) ([]float64, []float64) {
	xs := make([]float64, 0, len(smoothed))
	ys := make([]float64, 0, len(smoothed))
	for i, v := range smoothed {
		if v == nil {
			continue
		}
		xs = append(xs, series.Points[i].Day)
		ys = append(ys, *v)
	}
	return xs, ys
}

func bounds(ys []float64) (float64, float64) {
	if len(ys) == 0 {
		return 0, 1
	}
	lo, hi := ys[0], ys[0]
	for _, v := range ys {
		lo = math.Min(lo, v)
		hi = math.Max(hi, v)
	}
	if hi == lo {
		hi = lo + 1
	}
	return lo, hi
}

package chart

import (
	"bytes"
	"errors"
	"fmt"
	"math"
	"strings"

	gochart "github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"
)

// ErrNothingToDraw is returned when rendering a chart without data.
var ErrNothingToDraw = errors.New("chart has no data")

const (
	barWidth   = 36
	barSpacing = 12
)

func colorOf(hex string) drawing.Color {
	return drawing.ColorFromHex(strings.TrimPrefix(hex, "#"))
}

// pointStyle draws markers only; the stroke is fully transparent.
func pointStyle(col drawing.Color) gochart.Style {
	return gochart.Style{
		StrokeWidth: 1,
		StrokeColor: drawing.Color{R: 255, G: 255, B: 255, A: 0},
		DotWidth:    4,
		DotColor:    col,
	}
}

// SVG draws the bars as a go-chart bar chart. go-chart only lays bars out
// vertically, so labels run along the x axis whatever Horizontal says.
// Undefined values draw as zero-height bars.
func (c *BarChart) SVG() ([]byte, error) {
	if c.Empty() {
		return nil, ErrNothingToDraw
	}
	bars := make([]gochart.Value, len(c.Bars))
	lo, hi := 0.0, 0.0
	for i, b := range c.Bars {
		v := 0.0
		if b.Value.Valid {
			v = b.Value.Float64
		}
		lo, hi = math.Min(lo, v), math.Max(hi, v)
		col := colorOf(b.Color)
		bars[i] = gochart.Value{
			Label: b.Label,
			Value: v,
			Style: gochart.Style{FillColor: col, StrokeColor: col, StrokeWidth: 1},
		}
	}
	if hi == lo {
		hi = lo + 1
	}
	bc := gochart.BarChart{
		Title:      c.Title,
		Width:      160 + len(bars)*(barWidth+barSpacing),
		Height:     480,
		BarWidth:   barWidth,
		BarSpacing: barSpacing,
		Background: gochart.Style{Padding: gochart.Box{Top: 48, Left: 16, Right: 16, Bottom: 24}},
		XAxis:      gochart.Style{TextRotationDegrees: 45},
		YAxis: gochart.YAxis{
			Name:  c.XAxis,
			Range: &gochart.ContinuousRange{Min: lo, Max: hi + (hi-lo)*0.05},
		},
		Bars: bars,
	}
	var buf bytes.Buffer
	if err := bc.Render(gochart.SVG, &buf); err != nil {
		return nil, fmt.Errorf("render %q: %w", c.Title, err)
	}
	return buf.Bytes(), nil
}

// SVG draws a vertical box-and-whisker plot from line series: the IQR box,
// the median, whiskers with caps and outliers as dots.
func (b *BoxPlot) SVG() ([]byte, error) {
	if b.Empty() {
		return nil, ErrNothingToDraw
	}
	q1, q3, med := b.Q1.Float64, b.Q3.Float64, b.Median.Float64
	wl, wh := q1, q3
	if b.WhiskerLow.Valid {
		wl = b.WhiskerLow.Float64
	}
	if b.WhiskerHigh.Valid {
		wh = b.WhiskerHigh.Float64
	}
	lo, hi := b.Min.Float64, b.Max.Float64
	pad := (hi - lo) * 0.1
	if pad == 0 {
		pad = 1
	}

	boxCol := colorOf(defaultColors[0])
	line := gochart.Style{StrokeColor: boxCol, StrokeWidth: 2}
	seg := func(name string, x0, y0, x1, y1 float64) gochart.Series {
		return gochart.ContinuousSeries{Name: name, XValues: []float64{x0, x1}, YValues: []float64{y0, y1}, Style: line}
	}
	series := []gochart.Series{
		gochart.ContinuousSeries{
			Name:    "IQR",
			XValues: []float64{0.7, 1.3, 1.3, 0.7, 0.7},
			YValues: []float64{q1, q1, q3, q3, q1},
			Style:   line,
		},
		seg("median", 0.7, med, 1.3, med),
		seg("lower whisker", 1, wl, 1, q1),
		seg("upper whisker", 1, q3, 1, wh),
		seg("lower cap", 0.85, wl, 1.15, wl),
		seg("upper cap", 0.85, wh, 1.15, wh),
	}
	if len(b.Outliers) > 0 {
		xs := make([]float64, len(b.Outliers))
		for i := range xs {
			xs[i] = 1
		}
		series = append(series, gochart.ContinuousSeries{
			Name:    "outliers",
			XValues: xs,
			YValues: append([]float64(nil), b.Outliers...),
			Style:   pointStyle(colorOf(defaultColors[3])),
		})
	}

	ch := gochart.Chart{
		Title:      b.Title,
		Width:      420,
		Height:     480,
		Background: gochart.Style{Padding: gochart.Box{Top: 48, Left: 16, Right: 16, Bottom: 16}},
		XAxis: gochart.XAxis{
			Range: &gochart.ContinuousRange{Min: 0, Max: 2},
			Ticks: []gochart.Tick{{Value: 0}, {Value: 1, Label: fmt.Sprintf("n=%d", b.Count)}, {Value: 2}},
		},
		YAxis: gochart.YAxis{
			Name:  b.Label,
			Range: &gochart.ContinuousRange{Min: lo - pad, Max: hi + pad},
		},
		Series: series,
	}
	var buf bytes.Buffer
	if err := ch.Render(gochart.SVG, &buf); err != nil {
		return nil, fmt.Errorf("render %q: %w", b.Title, err)
	}
	return buf.Bytes(), nil
}

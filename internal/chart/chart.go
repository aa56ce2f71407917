// Package chart turns derived broker tables into chart descriptions and
// renders them as SVG with go-chart.
package chart

import (
	"fmt"
	"math"
	"sort"

	"github.com/KaramelBytes/brokerdash-cli/internal/dataset"
)

// Default color palette for chart series.
var defaultColors = []string{
	"#4F46E5", "#10B981", "#F59E0B", "#EF4444", "#8B5CF6",
	"#06B6D4", "#EC4899", "#84CC16", "#F97316", "#6366F1",
}

// Bar is one labelled bar.
type Bar struct {
	Label string            `json:"label"`
	Value dataset.NullFloat `json:"value"`
	Color string            `json:"color"`
}

// BarChart is a single-series bar chart.
type BarChart struct {
	Title      string `json:"title"`
	XAxis      string `json:"x_axis"`
	YAxis      string `json:"y_axis"`
	Horizontal bool   `json:"horizontal"`
	Bars       []Bar  `json:"bars"`
}

// Empty reports whether there is nothing to draw.
func (c *BarChart) Empty() bool { return c == nil || len(c.Bars) == 0 }

// BuildBarChart lays out one bar per point. Undefined values keep their
// label and draw as zero.
func BuildBarChart(title, xAxis, yAxis string, horizontal bool, labels []string, values []dataset.NullFloat) *BarChart {
	c := &BarChart{Title: title, XAxis: xAxis, YAxis: yAxis, Horizontal: horizontal}
	for i, l := range labels {
		b := Bar{Label: l, Color: defaultColors[0]}
		if i < len(values) {
			b.Value = values[i]
		}
		c.Bars = append(c.Bars, b)
	}
	return c
}

// BoxPlot summarizes a distribution with Tukey whiskers (1.5×IQR).
type BoxPlot struct {
	Title       string            `json:"title"`
	Label       string            `json:"label"`
	Count       int               `json:"count"`
	Min         dataset.NullFloat `json:"min"`
	Q1          dataset.NullFloat `json:"q1"`
	Median      dataset.NullFloat `json:"median"`
	Q3          dataset.NullFloat `json:"q3"`
	Max         dataset.NullFloat `json:"max"`
	Mean        dataset.NullFloat `json:"mean"`
	WhiskerLow  dataset.NullFloat `json:"whisker_low"`
	WhiskerHigh dataset.NullFloat `json:"whisker_high"`
	Outliers    []float64         `json:"outliers"`
}

// Empty reports whether the sample had no values.
func (b *BoxPlot) Empty() bool { return b == nil || b.Count == 0 }

// BuildBoxPlot computes quartiles by linear interpolation. An empty sample
// yields a plot with every statistic undefined.
func BuildBoxPlot(title, label string, sample []float64) *BoxPlot {
	b := &BoxPlot{Title: title, Label: label, Count: len(sample), Outliers: []float64{}}
	if len(sample) == 0 {
		return b
	}
	s := make([]float64, len(sample))
	copy(s, sample)
	sort.Float64s(s)
	q1 := dataset.Quantile(s, 0.25)
	q3 := dataset.Quantile(s, 0.75)
	iqr := q3 - q1
	lo, hi := q1-1.5*iqr, q3+1.5*iqr

	b.Min = dataset.Some(s[0])
	b.Max = dataset.Some(s[len(s)-1])
	b.Q1 = dataset.Some(q1)
	b.Q3 = dataset.Some(q3)
	b.Median = dataset.Some(dataset.Quantile(s, 0.5))
	b.Mean = dataset.Mean(s)
	wl, wh := math.Inf(1), math.Inf(-1)
	for _, v := range s {
		if v < lo || v > hi {
			b.Outliers = append(b.Outliers, v)
			continue
		}
		wl = math.Min(wl, v)
		wh = math.Max(wh, v)
	}
	b.WhiskerLow = dataset.Some(wl)
	b.WhiskerHigh = dataset.Some(wh)
	return b
}

// HeatCell is one correlation cell.
type HeatCell struct {
	Value dataset.NullFloat `json:"value"`
	Text  string            `json:"text"`
	Color string            `json:"color"`
}

// Heatmap is a square grid of annotated, colored cells.
type Heatmap struct {
	Title   string       `json:"title"`
	Columns []string     `json:"columns"`
	Cells   [][]HeatCell `json:"cells"`
}

// Empty reports whether there are no numeric columns to show.
func (h *Heatmap) Empty() bool { return h == nil || len(h.Columns) == 0 }

// neutral marks undefined cells.
const neutral = "#BDBDBD"

// BuildHeatmap colors each correlation on a cool-warm scale: blue at -1,
// light gray at 0, red at +1.
func BuildHeatmap(title string, m *dataset.CorrMatrix) *Heatmap {
	h := &Heatmap{Title: title}
	if m == nil {
		return h
	}
	h.Columns = append([]string(nil), m.Columns...)
	h.Cells = make([][]HeatCell, len(m.Values))
	for i, row := range m.Values {
		h.Cells[i] = make([]HeatCell, len(row))
		for j, v := range row {
			cell := HeatCell{Value: v, Text: v.Format(2), Color: neutral}
			if v.Valid {
				cell.Color = CoolWarm(v.Float64)
			}
			h.Cells[i][j] = cell
		}
	}
	return h
}

// CoolWarm maps r in [-1,1] to a hex color.
func CoolWarm(r float64) string {
	r = math.Max(-1, math.Min(1, r))
	type rgb struct{ r, g, b float64 }
	cold := rgb{59, 76, 192}
	mid := rgb{221, 221, 221}
	warm := rgb{180, 4, 38}
	from, to, w := mid, warm, r
	if r < 0 {
		from, to, w = mid, cold, -r
	}
	mix := func(a, b float64) int { return int(math.Round(a + (b-a)*w)) }
	return fmt.Sprintf("#%02X%02X%02X", mix(from.r, to.r), mix(from.g, to.g), mix(from.b, to.b))
}

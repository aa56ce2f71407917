package chart

import (
	"testing"

	"github.com/KaramelBytes/brokerdash-cli/internal/dataset"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBarChartSVG(t *testing.T) {
	c := BuildBarChart("Avg Resolution Time by Broker", "Avg Resolution Time (hrs)", "Broker", true,
		[]string{"Acme", "Birch", "Cobalt"},
		[]dataset.NullFloat{dataset.Some(4), dataset.Some(1.5), {}})
	out, err := c.SVG()
	require.NoError(t, err)
	svg := string(out)
	assert.Contains(t, svg, "<svg")
	assert.Contains(t, svg, "Acme")
	assert.Contains(t, svg, "Cobalt")

	t.Run("all undefined", func(t *testing.T) {
		c := BuildBarChart("t", "x", "y", true, []string{"A"}, []dataset.NullFloat{{}})
		out, err := c.SVG()
		require.NoError(t, err)
		assert.Contains(t, string(out), "<svg")
	})

	t.Run("empty", func(t *testing.T) {
		_, err := BuildBarChart("t", "x", "y", true, nil, nil).SVG()
		assert.ErrorIs(t, err, ErrNothingToDraw)
		var nilChart *BarChart
		_, err = nilChart.SVG()
		assert.ErrorIs(t, err, ErrNothingToDraw)
	})
}

func TestBoxPlotSVG(t *testing.T) {
	b := BuildBoxPlot("Order Success Rate Distribution", "Order Success Rate (%)", []float64{60, 80, 70, 65, 75, 5})
	out, err := b.SVG()
	require.NoError(t, err)
	assert.Contains(t, string(out), "<svg")
	assert.Contains(t, string(out), "n=6")

	t.Run("single value", func(t *testing.T) {
		out, err := BuildBoxPlot("t", "l", []float64{70}).SVG()
		require.NoError(t, err)
		assert.Contains(t, string(out), "<svg")
	})

	t.Run("empty", func(t *testing.T) {
		_, err := BuildBoxPlot("t", "l", nil).SVG()
		assert.ErrorIs(t, err, ErrNothingToDraw)
	})
}

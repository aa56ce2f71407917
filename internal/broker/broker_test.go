package broker

import (
	"fmt"
	"strings"
	"testing"

	"github.com/KaramelBytes/brokerdash-cli/internal/dataset"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const scenarioCSV = "name,tickets,order_success_rate,avg_resolution_time\n" +
	"A,10,40,2\n" +
	"A,12,60,4\n" +
	"B,7,80,1\n" +
	"C,3,30,5\n"

func parse(t *testing.T, s string) *dataset.Table {
	t.Helper()
	tbl, err := dataset.Parse([]byte(s), dataset.DefaultParseOptions())
	require.NoError(t, err)
	return tbl
}

func names(aggs []Aggregate) []string {
	out := make([]string, len(aggs))
	for i, a := range aggs {
		out[i] = a.Name
	}
	return out
}

func TestScenarioThreshold50(t *testing.T) {
	raw := parse(t, scenarioCSV)
	filtered, err := Filter(raw, 50)
	require.NoError(t, err)

	require.Equal(t, 2, filtered.Len())
	assert.Equal(t, 1, filtered.SourceIndex(0), "A's first row excluded")
	assert.Equal(t, 2, filtered.SourceIndex(1))
	assert.Equal(t, 4, raw.Len())

	aggs, err := AggregateByBroker(filtered)
	require.NoError(t, err)
	require.Len(t, aggs, 2)
	byName := map[string]Aggregate{}
	for _, a := range aggs {
		byName[a.Name] = a
	}
	assert.Equal(t, dataset.Some(60), byName["A"].SuccessRate)
	assert.Equal(t, dataset.Some(4), byName["A"].ResolutionTime)
	assert.Equal(t, dataset.Some(80), byName["B"].SuccessRate)
	assert.Equal(t, dataset.Some(1), byName["B"].ResolutionTime)
	assert.NotContains(t, byName, "C")

	worst, ok := Worst(aggs)
	require.True(t, ok)
	assert.Equal(t, "A", worst.Name)
	assert.Equal(t, 4.0, worst.ResolutionTime.Float64)

	eff := TopByEfficiency(aggs, 5)
	assert.Equal(t, []string{"B", "A"}, names(eff))
	assert.Equal(t, dataset.Some(80), eff[0].Efficiency)
	assert.Equal(t, dataset.Some(15), eff[1].Efficiency)

	sum, err := Summarize(filtered)
	require.NoError(t, err)
	assert.Equal(t, Summary{Rows: 2, BrokerCount: 2, TicketSum: 19, AvgSuccessRate: dataset.Some(70)}, sum)
}

func TestEmptyFilteredTable(t *testing.T) {
	raw := parse(t, scenarioCSV)
	filtered, err := Filter(raw, 100)
	require.NoError(t, err)
	require.Equal(t, 0, filtered.Len())

	aggs, err := AggregateByBroker(filtered)
	require.NoError(t, err)
	assert.Empty(t, aggs)
	assert.Empty(t, TopByResolutionTime(aggs, 20))
	assert.Empty(t, TopBySuccessRate(aggs, 5, true))
	assert.Empty(t, TopBySuccessRate(aggs, 5, false))
	assert.Empty(t, TopByEfficiency(aggs, 5))
	_, ok := Worst(aggs)
	assert.False(t, ok)

	sum, err := Summarize(filtered)
	require.NoError(t, err)
	assert.Equal(t, 0, sum.BrokerCount)
	assert.Equal(t, 0.0, sum.TicketSum)
	assert.False(t, sum.AvgSuccessRate.Valid)
}

func TestFilterMonotonic(t *testing.T) {
	raw := parse(t, "name,tickets,order_success_rate,avg_resolution_time\n"+
		"A,1,0,1\nB,1,10,1\nC,1,49.9,1\nD,1,50,1\nE,1,,1\nF,1,high,1\nG,1,100,1\nH,1,75%,1\n")
	prev := map[int]bool{}
	for i := 0; i < raw.Len(); i++ {
		prev[i] = true
	}
	for th := 0; th <= 100; th++ {
		f, err := Filter(raw, th)
		require.NoError(t, err)
		cur := map[int]bool{}
		for i := 0; i < f.Len(); i++ {
			src := f.SourceIndex(i)
			assert.True(t, prev[src], "threshold %d kept row %d dropped earlier", th, src)
			cur[src] = true
		}
		prev = cur
	}

	f, _ := Filter(raw, 50)
	var kept []string
	for i := 0; i < f.Len(); i++ {
		kept = append(kept, f.Cell(i, 0))
	}
	assert.Equal(t, []string{"D", "G", "H"}, kept, "inclusive bound, missing and text rates excluded")
}

func TestAggregateOneRowPerName(t *testing.T) {
	raw := parse(t, "name,tickets,order_success_rate,avg_resolution_time\n"+
		"b,1,90,3\nB,1,70,1\nb,1,80,5\n B,1,60,2\n,1,99,9\n")
	aggs, err := AggregateByBroker(raw)
	require.NoError(t, err)
	assert.Equal(t, []string{"b", "B", " B"}, names(aggs), "exact match, no trimming or case folding")
	assert.Equal(t, dataset.Some(85), aggs[0].SuccessRate)
	assert.Equal(t, dataset.Some(4), aggs[0].ResolutionTime)
	assert.Equal(t, 2, aggs[0].Rows)
}

func TestAggregateUndefinedResolution(t *testing.T) {
	raw := parse(t, "name,tickets,order_success_rate,avg_resolution_time\n"+
		"A,1,90,\nB,1,70,0\nC,1,50,2\n")
	aggs, err := AggregateByBroker(raw)
	require.NoError(t, err)
	require.Len(t, aggs, 3)
	assert.False(t, aggs[0].ResolutionTime.Valid)
	assert.False(t, aggs[0].Efficiency.Valid)
	assert.Equal(t, dataset.Some(0), aggs[1].ResolutionTime)
	assert.False(t, aggs[1].Efficiency.Valid, "zero denominator is undefined, not +Inf")

	eff := TopByEfficiency(aggs, 5)
	assert.Equal(t, []string{"C", "A", "B"}, names(eff), "undefined scores rank last, stable")
	assert.Len(t, TopByEfficiency(aggs, 1), 1)

	top := TopByResolutionTime(aggs, 3)
	assert.Equal(t, []string{"C", "B", "A"}, names(top))
	worst, ok := Worst(aggs)
	require.True(t, ok)
	assert.Equal(t, "C", worst.Name)
}

func TestTopByResolutionTime(t *testing.T) {
	var b strings.Builder
	b.WriteString("name,tickets,order_success_rate,avg_resolution_time\n")
	for i := 0; i < 30; i++ {
		fmt.Fprintf(&b, "broker%02d,1,%d,%d\n", i, 50+i, i%7)
	}
	aggs, err := AggregateByBroker(parse(t, b.String()))
	require.NoError(t, err)
	require.Len(t, aggs, 30)

	top := TopByResolutionTime(aggs, 20)
	require.Len(t, top, 20)
	for i := 1; i < len(top); i++ {
		assert.GreaterOrEqual(t, top[i-1].ResolutionTime.Float64, top[i].ResolutionTime.Float64)
	}
	// ties keep input order
	assert.Equal(t, []string{"broker06", "broker13", "broker20", "broker27"}, names(top[:4]))

	src := map[string]Aggregate{}
	for _, a := range aggs {
		src[a.Name] = a
	}
	for _, a := range top {
		assert.Equal(t, src[a.Name], a, "values unchanged")
	}
	assert.Len(t, TopByResolutionTime(aggs[:3], 20), 3, "no padding")
	assert.Equal(t, "broker00", aggs[0].Name, "input not reordered")
}

func TestTopBySuccessRate(t *testing.T) {
	raw := parse(t, "name,tickets,order_success_rate,avg_resolution_time\n"+
		"A,1,50,1\nB,1,90,1\nC,1,70,1\nD,1,90,1\nE,1,10,1\nF,1,60,1\nG,1,80,1\n")
	aggs, err := AggregateByBroker(raw)
	require.NoError(t, err)
	assert.Equal(t, []string{"B", "D", "G", "C", "F"}, names(TopBySuccessRate(aggs, 5, true)))
	assert.Equal(t, []string{"E", "A", "F", "C", "G"}, names(TopBySuccessRate(aggs, 5, false)))
}

func TestMissingColumns(t *testing.T) {
	raw := parse(t, "name,tickets\nA,1\n")
	err := Validate(raw)
	var mc *MissingColumnError
	require.ErrorAs(t, err, &mc)
	assert.Equal(t, []string{ColSuccessRate, ColResolutionTime}, mc.Missing)
	assert.Contains(t, err.Error(), "order_success_rate, avg_resolution_time")

	_, err = Filter(raw, 50)
	assert.ErrorAs(t, err, &mc)
	_, err = Summarize(raw)
	assert.ErrorAs(t, err, &mc)
}

func TestThresholdRange(t *testing.T) {
	assert.NoError(t, ValidateThreshold(0))
	assert.NoError(t, ValidateThreshold(100))
	assert.ErrorIs(t, ValidateThreshold(101), ErrThresholdRange)
	assert.ErrorIs(t, ValidateThreshold(-1), ErrThresholdRange)
	assert.Equal(t, 100, ClampThreshold(150))
	assert.Equal(t, 0, ClampThreshold(-3))
	assert.Equal(t, 42, ClampThreshold(42))
}

func TestSummaryTicketsMissingAsZero(t *testing.T) {
	raw := parse(t, "name,tickets,order_success_rate,avg_resolution_time\nA,,60,1\nA,5,80,1\nB,x,70,2\n")
	sum, err := Summarize(raw)
	require.NoError(t, err)
	assert.Equal(t, 5.0, sum.TicketSum)
	assert.Equal(t, 2, sum.BrokerCount)
	assert.Equal(t, dataset.Some(70), sum.AvgSuccessRate)

	rates, err := SuccessRates(raw)
	require.NoError(t, err)
	assert.Equal(t, []float64{60, 80, 70}, rates)
}

func TestMissingNamesSkipped(t *testing.T) {
	raw := parse(t, "name,tickets,order_success_rate,avg_resolution_time\n"+
		"NA,1,90,3\nNone,1,80,2\nnull,1,70,2\nN/A,1,60,1\nA,2,75,4\n NA,1,65,1\n")
	aggs, err := AggregateByBroker(raw)
	require.NoError(t, err)
	assert.Equal(t, []string{"A", " NA"}, names(aggs), "markers match exactly, padded names are real")

	sum, err := Summarize(raw)
	require.NoError(t, err)
	assert.Equal(t, 2, sum.BrokerCount)
	assert.Equal(t, 6, sum.Rows)
	assert.Equal(t, 7.0, sum.TicketSum, "rows with a missing name still count")
	assert.InDelta(t, 440.0/6, sum.AvgSuccessRate.Float64, 1e-9)
}

// Package report runs the broker pipeline once for a table and threshold and
// collects every derived view the presentation layer shows.
package report

import (
	"fmt"

	"github.com/KaramelBytes/brokerdash-cli/internal/broker"
	"github.com/KaramelBytes/brokerdash-cli/internal/chart"
	"github.com/KaramelBytes/brokerdash-cli/internal/dataset"
	"github.com/KaramelBytes/brokerdash-cli/internal/utils"
)

// Options controls the size of each ranked view.
type Options struct {
	TopResolution int
	TopSuccess    int
	TopEfficiency int
	PreviewRows   int
}

// DefaultOptions mirrors the dashboard's standard layout.
func DefaultOptions() Options {
	return Options{
		TopResolution: 20,
		TopSuccess:    5,
		TopEfficiency: 5,
		PreviewRows:   5,
	}
}

// Preview is the head of the filtered table.
type Preview struct {
	Columns []string   `json:"columns"`
	Rows    [][]string `json:"rows"`
}

// Report is every view derived from one (table, threshold) pair.
type Report struct {
	Name            string              `json:"name"`
	Threshold       int                 `json:"min_success_rate"`
	RawRows         int                 `json:"raw_rows"`
	NoData          bool                `json:"no_data"`
	Summary         broker.Summary      `json:"summary"`
	Preview         Preview             `json:"preview"`
	Aggregates      []broker.Aggregate  `json:"aggregates"`
	TopResolution   []broker.Aggregate  `json:"top_resolution_time"`
	TopSuccess      []broker.Aggregate  `json:"top_success_rate"`
	BottomSuccess   []broker.Aggregate  `json:"bottom_success_rate"`
	TopEfficiency   []broker.Aggregate  `json:"top_efficiency"`
	Worst           *broker.Aggregate   `json:"worst_broker"`
	Distribution    *chart.BoxPlot      `json:"success_rate_distribution"`
	Corr            *dataset.CorrMatrix `json:"correlation"`
	StrongestPairs  []dataset.PairCorr  `json:"strongest_pairs"`
	ResolutionChart *chart.BarChart     `json:"resolution_chart"`
	Heatmap         *chart.Heatmap      `json:"heatmap"`

	filtered *dataset.Table
}

// Build validates the required columns, applies the threshold and derives
// every view. Zero surviving rows is not an error: views come back empty and
// NoData is set.
func Build(name string, raw *dataset.Table, threshold int, opt Options) (*Report, error) {
	if err := broker.Validate(raw); err != nil {
		return nil, err
	}
	if err := broker.ValidateThreshold(threshold); err != nil {
		return nil, err
	}
	filtered, err := broker.Filter(raw, threshold)
	if err != nil {
		return nil, fmt.Errorf("filter: %w", err)
	}
	aggs, err := broker.AggregateByBroker(filtered)
	if err != nil {
		return nil, fmt.Errorf("aggregate: %w", err)
	}
	sum, err := broker.Summarize(filtered)
	if err != nil {
		return nil, fmt.Errorf("summarize: %w", err)
	}
	rates, err := broker.SuccessRates(filtered)
	if err != nil {
		return nil, fmt.Errorf("success rates: %w", err)
	}

	r := &Report{
		Name:          name,
		Threshold:     threshold,
		RawRows:       raw.Len(),
		NoData:        filtered.Len() == 0,
		Summary:       sum,
		Aggregates:    aggs,
		TopResolution: broker.TopByResolutionTime(aggs, opt.TopResolution),
		TopSuccess:    broker.TopBySuccessRate(aggs, opt.TopSuccess, true),
		BottomSuccess: broker.TopBySuccessRate(aggs, opt.TopSuccess, false),
		TopEfficiency: broker.TopByEfficiency(aggs, opt.TopEfficiency),
		Distribution:  chart.BuildBoxPlot("Order Success Rate Distribution", "Order Success Rate (%)", rates),
		Corr:          dataset.Correlation(filtered),
		filtered:      filtered,
	}
	r.StrongestPairs = r.Corr.TopPairs(3)
	if w, ok := broker.Worst(aggs); ok {
		r.Worst = &w
	}

	head := filtered.Head(opt.PreviewRows)
	r.Preview = Preview{Columns: head.Columns(), Rows: make([][]string, head.Len())}
	for i := 0; i < head.Len(); i++ {
		r.Preview.Rows[i] = head.Row(i)
	}

	labels := make([]string, len(r.TopResolution))
	values := make([]dataset.NullFloat, len(r.TopResolution))
	for i, a := range r.TopResolution {
		labels[i] = a.Name
		values[i] = a.ResolutionTime
	}
	r.ResolutionChart = chart.BuildBarChart("Avg Resolution Time by Broker", "Avg Resolution Time (hrs)", "Broker", true, labels, values)
	r.Heatmap = chart.BuildHeatmap("Correlation Heatmap", r.Corr)
	return r, nil
}

// ExportCSV serializes the filtered table for download.
func (r *Report) ExportCSV() ([]byte, error) {
	return dataset.ExportCSV(r.filtered)
}

// JSON renders the report with undefined numbers as null.
func (r *Report) JSON() ([]byte, error) {
	return utils.PrettyJSON(r)
}

// WorstWarning is the resolution-time warning, or "" when there is no worst broker.
func (r *Report) WorstWarning() string {
	if r.Worst == nil {
		return ""
	}
	return fmt.Sprintf("%s has the highest avg resolution time: %s hrs", r.Worst.Name, r.Worst.ResolutionTime.Format(2))
}

package report

import (
	"fmt"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/KaramelBytes/brokerdash-cli/internal/broker"
	"github.com/KaramelBytes/brokerdash-cli/internal/dataset"
)

const noData = "(no data)\n"

// Markdown renders a compact report with one section per dashboard tab.
func (r *Report) Markdown() string {
	var b strings.Builder
	b.WriteString("[BROKER PERFORMANCE REPORT]\n")
	if r.Name != "" {
		b.WriteString(fmt.Sprintf("File: %s\n", r.Name))
	}
	b.WriteString(fmt.Sprintf("Minimum success rate: %d%%\n", r.Threshold))
	b.WriteString(fmt.Sprintf("Rows: %d of %d\n", r.Summary.Rows, r.RawRows))

	b.WriteString("\n[SUMMARY]\n")
	b.WriteString(fmt.Sprintf("- Total Brokers: %d\n", r.Summary.BrokerCount))
	b.WriteString(fmt.Sprintf("- Total Tickets: %s\n", formatCount(r.Summary.TicketSum)))
	avg := "n/a"
	if r.Summary.AvgSuccessRate.Valid {
		avg = r.Summary.AvgSuccessRate.Format(1) + "%"
	}
	b.WriteString(fmt.Sprintf("- Average Success Rate: %s\n", avg))

	b.WriteString("\n[DATA PREVIEW]\n")
	if len(r.Preview.Rows) == 0 {
		b.WriteString(noData)
	} else {
		writeTable(&b, r.Preview.Columns, r.Preview.Rows)
	}

	b.WriteString("\n[AVG RESOLUTION TIME BY BROKER]\n")
	writeAggregates(&b, r.TopResolution, false)

	b.WriteString("\n[ORDER SUCCESS RATE DISTRIBUTION]\n")
	if d := r.Distribution; d.Empty() {
		b.WriteString(noData)
	} else {
		b.WriteString(fmt.Sprintf("- n=%d, min %s, q1 %s, median %s, q3 %s, max %s, mean %s\n",
			d.Count, d.Min.Format(2), d.Q1.Format(2), d.Median.Format(2), d.Q3.Format(2), d.Max.Format(2), d.Mean.Format(2)))
		if len(d.Outliers) > 0 {
			parts := make([]string, len(d.Outliers))
			for i, o := range d.Outliers {
				parts[i] = strconv.FormatFloat(o, 'g', -1, 64)
			}
			b.WriteString(fmt.Sprintf("- outliers: %s\n", strings.Join(parts, ", ")))
		}
	}

	b.WriteString("\n[CORRELATIONS]\n")
	if r.Corr == nil || len(r.Corr.Columns) == 0 || r.NoData {
		b.WriteString(noData)
	} else {
		header := append([]string{""}, r.Corr.Columns...)
		rows := make([][]string, len(r.Corr.Columns))
		for i, name := range r.Corr.Columns {
			rows[i] = append(rows[i], name)
			for _, v := range r.Corr.Values[i] {
				rows[i] = append(rows[i], v.Format(2))
			}
		}
		writeTable(&b, header, rows)
		for _, pc := range r.StrongestPairs {
			if pc.R.Valid {
				b.WriteString(fmt.Sprintf("- %s ~ %s: r=%s\n", pc.A, pc.B, pc.R.Format(2)))
			}
		}
	}

	b.WriteString("\n[TOP 5 BY SUCCESS RATE]\n")
	writeAggregates(&b, r.TopSuccess, false)
	b.WriteString("\n[BOTTOM 5 BY SUCCESS RATE]\n")
	writeAggregates(&b, r.BottomSuccess, false)
	b.WriteString("\n[CUSTOM EFFICIENCY SCORE]\n")
	writeAggregates(&b, r.TopEfficiency, true)

	if w := r.WorstWarning(); w != "" {
		b.WriteString("\n[NOTES]\n")
		b.WriteString("- ⚠ ")
		b.WriteString(w)
		b.WriteString("\n")
	}
	return b.String()
}

func writeAggregates(b *strings.Builder, aggs []broker.Aggregate, withScore bool) {
	if len(aggs) == 0 {
		b.WriteString(noData)
		return
	}
	header := []string{broker.ColName, broker.ColResolutionTime, broker.ColSuccessRate}
	if withScore {
		header = append(header, "efficiency_score")
	}
	rows := make([][]string, len(aggs))
	for i, a := range aggs {
		rows[i] = []string{a.Name, a.ResolutionTime.Format(2), a.SuccessRate.Format(2)}
		if withScore {
			rows[i] = append(rows[i], a.Efficiency.Format(2))
		}
	}
	writeTable(b, header, rows)
}

func writeTable(b *strings.Builder, header []string, rows [][]string) {
	b.WriteString("| ")
	for i, h := range header {
		if i > 0 {
			b.WriteString(" | ")
		}
		b.WriteString(safeVal(h))
	}
	b.WriteString(" |\n| ")
	for i := range header {
		if i > 0 {
			b.WriteString(" | ")
		}
		b.WriteString("---")
	}
	b.WriteString(" |\n")
	for _, row := range rows {
		b.WriteString("| ")
		for i := range header {
			if i > 0 {
				b.WriteString(" | ")
			}
			val := ""
			if i < len(row) {
				val = row[i]
			}
			b.WriteString(safeVal(truncate(val, 80)))
		}
		b.WriteString(" |\n")
	}
}

// truncate shortens s to at most n runes, ending in "..." when cut.
func truncate(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	r := []rune(s)
	return string(r[:n-3]) + "..."
}

func formatCount(x float64) string {
	return dataset.Some(x).Format(-1)
}

func safeVal(s string) string { return strings.ReplaceAll(strings.ReplaceAll(s, "\n", " "), "|", "/") }

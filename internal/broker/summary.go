package broker

import "github.com/KaramelBytes/brokerdash-cli/internal/dataset"

// Summary holds headline figures over the filtered rows.
type Summary struct {
	Rows           int               `json:"rows"`
	BrokerCount    int               `json:"broker_count"`
	TicketSum      float64           `json:"ticket_sum"`
	AvgSuccessRate dataset.NullFloat `json:"avg_success_rate"`
}

// Summarize counts distinct non-empty broker names, sums tickets (missing
// counts as zero) and averages the success rate over the rows themselves,
// not over per-broker means.
func Summarize(t *dataset.Table) (Summary, error) {
	c, err := lookup(t)
	if err != nil {
		return Summary{}, err
	}
	s := Summary{Rows: t.Len()}
	names := map[string]struct{}{}
	rates := make([]float64, 0, t.Len())
	for i := 0; i < t.Len(); i++ {
		if name := t.Cell(i, c.name); !dataset.IsMissing(name) {
			names[name] = struct{}{}
		}
		if x, ok := t.Float(i, c.tickets); ok {
			s.TicketSum += x
		}
		if x, ok := t.Float(i, c.rate); ok {
			rates = append(rates, x)
		}
	}
	s.BrokerCount = len(names)
	s.AvgSuccessRate = dataset.Mean(rates)
	return s, nil
}

// SuccessRates collects the numeric success rates of every row, in order.
func SuccessRates(t *dataset.Table) ([]float64, error) {
	c, err := lookup(t)
	if err != nil {
		return nil, err
	}
	return t.Floats(c.rate), nil
}

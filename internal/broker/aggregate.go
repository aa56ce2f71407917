package broker

import (
	"sort"

	"github.com/KaramelBytes/brokerdash-cli/internal/dataset"
)

// Aggregate is one broker's means over its rows in the filtered table.
type Aggregate struct {
	Name           string            `json:"name"`
	Rows           int               `json:"rows"`
	ResolutionTime dataset.NullFloat `json:"avg_resolution_time"`
	SuccessRate    dataset.NullFloat `json:"order_success_rate"`
	Efficiency     dataset.NullFloat `json:"efficiency_score"`
}

// EfficiencyScore is success rate divided by resolution time; undefined
// when either mean is undefined or the resolution time is zero.
func EfficiencyScore(successRate, resolutionTime dataset.NullFloat) dataset.NullFloat {
	if !successRate.Valid || !resolutionTime.Valid || resolutionTime.Float64 == 0 {
		return dataset.NullFloat{}
	}
	return dataset.Some(successRate.Float64 / resolutionTime.Float64)
}

// AggregateByBroker groups rows by exact name and averages resolution time
// and success rate per group. Groups appear in order of first appearance;
// rows with an empty name are not grouped.
func AggregateByBroker(t *dataset.Table) ([]Aggregate, error) {
	c, err := lookup(t)
	if err != nil {
		return nil, err
	}
	type gAcc struct {
		rows       int
		resolution []float64
		rate       []float64
	}
	var order []string
	groups := map[string]*gAcc{}
	for i := 0; i < t.Len(); i++ {
		name := t.Cell(i, c.name)
		if dataset.IsMissing(name) {
			continue
		}
		ga := groups[name]
		if ga == nil {
			ga = &gAcc{}
			groups[name] = ga
			order = append(order, name)
		}
		ga.rows++
		if x, ok := t.Float(i, c.resolution); ok {
			ga.resolution = append(ga.resolution, x)
		}
		if x, ok := t.Float(i, c.rate); ok {
			ga.rate = append(ga.rate, x)
		}
	}
	out := make([]Aggregate, 0, len(order))
	for _, name := range order {
		ga := groups[name]
		a := Aggregate{
			Name:           name,
			Rows:           ga.rows,
			ResolutionTime: dataset.Mean(ga.resolution),
			SuccessRate:    dataset.Mean(ga.rate),
		}
		a.Efficiency = EfficiencyScore(a.SuccessRate, a.ResolutionTime)
		out = append(out, a)
	}
	return out, nil
}

// rankBy stable-sorts a copy of aggs by key and returns the first n.
// Undefined keys sort after every defined key in both directions.
func rankBy(aggs []Aggregate, n int, descending bool, key func(Aggregate) dataset.NullFloat) []Aggregate {
	out := make([]Aggregate, len(aggs))
	copy(out, aggs)
	sort.SliceStable(out, func(i, j int) bool {
		a, b := key(out[i]), key(out[j])
		if a.Valid != b.Valid {
			return a.Valid
		}
		if descending {
			return a.Float64 > b.Float64
		}
		return a.Float64 < b.Float64
	})
	if n < 0 {
		n = 0
	}
	if len(out) > n {
		out = out[:n]
	}
	return out
}

// TopByResolutionTime returns up to n brokers with the longest mean
// resolution time, longest first.
func TopByResolutionTime(aggs []Aggregate, n int) []Aggregate {
	return rankBy(aggs, n, true, func(a Aggregate) dataset.NullFloat { return a.ResolutionTime })
}

// TopBySuccessRate returns up to n brokers ordered by mean success rate,
// highest first when descending, lowest first otherwise.
func TopBySuccessRate(aggs []Aggregate, n int, descending bool) []Aggregate {
	return rankBy(aggs, n, descending, func(a Aggregate) dataset.NullFloat { return a.SuccessRate })
}

// TopByEfficiency returns up to n brokers by efficiency score, highest
// first. Brokers with an undefined score rank after all defined scores.
func TopByEfficiency(aggs []Aggregate, n int) []Aggregate {
	return rankBy(aggs, n, true, func(a Aggregate) dataset.NullFloat { return a.Efficiency })
}

// Worst returns the broker with the longest mean resolution time. The
// first broker wins ties. ok is false when no broker has a defined time.
func Worst(aggs []Aggregate) (Aggregate, bool) {
	top := TopByResolutionTime(aggs, 1)
	if len(top) == 0 || !top[0].ResolutionTime.Valid {
		return Aggregate{}, false
	}
	return top[0], true
}

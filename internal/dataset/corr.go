package dataset

import (
	"math"
	"sort"
)

// CorrMatrix holds a symmetric Pearson correlation matrix across numeric columns.
type CorrMatrix struct {
	Columns []string      `json:"columns"`
	Values  [][]NullFloat `json:"values"` // row-major, Values[i][j]
}

// PairCorr is a simple correlation pair summary.
type PairCorr struct {
	A string    `json:"a"`
	B string    `json:"b"`
	R NullFloat `json:"r"`
}

// Correlation computes pairwise-complete Pearson correlations for every pair
// of numeric columns. Pairs with fewer than two shared rows, or with zero
// variance on either side, are undefined. The diagonal is 1 for columns with
// non-zero variance.
func Correlation(t *Table) *CorrMatrix {
	var cols []int
	for j := range t.header {
		if t.numeric[j] {
			cols = append(cols, j)
		}
	}
	names := make([]string, len(cols))
	vals := make([][]float64, len(cols))
	present := make([][]bool, len(cols))
	for a, j := range cols {
		names[a] = t.header[j]
		vals[a] = make([]float64, len(t.rows))
		present[a] = make([]bool, len(t.rows))
		for i := range t.rows {
			vals[a][i], present[a][i] = t.Float(i, j)
		}
	}
	n := len(cols)
	mat := make([][]NullFloat, n)
	for a := range mat {
		mat[a] = make([]NullFloat, n)
	}
	for a := 0; a < n; a++ {
		for b := a; b < n; b++ {
			r := pearson(vals[a], vals[b], present[a], present[b])
			if a == b && r.Valid {
				r = Some(1)
			}
			mat[a][b] = r
			mat[b][a] = r
		}
	}
	return &CorrMatrix{Columns: names, Values: mat}
}

func pearson(x, y []float64, px, py []bool) NullFloat {
	var n, sumX, sumY float64
	constX, constY := true, true
	first := -1
	for i := range x {
		if px[i] && py[i] {
			if first < 0 {
				first = i
			}
			constX = constX && x[i] == x[first]
			constY = constY && y[i] == y[first]
			n++
			sumX += x[i]
			sumY += y[i]
		}
	}
	// Compare raw values: rounding in the mean would otherwise leave a
	// tiny non-zero variance for constant columns.
	if n < 2 || constX || constY {
		return NullFloat{}
	}
	mx, my := sumX/n, sumY/n
	var sxy, sxx, syy float64
	for i := range x {
		if px[i] && py[i] {
			dx := x[i] - mx
			dy := y[i] - my
			sxy += dx * dy
			sxx += dx * dx
			syy += dy * dy
		}
	}
	if sxx == 0 || syy == 0 {
		return NullFloat{}
	}
	r := sxy / math.Sqrt(sxx*syy)
	if r > 1 {
		r = 1
	} else if r < -1 {
		r = -1
	}
	return Some(r)
}

// TopPairs lists off-diagonal pairs ordered by |r|, undefined pairs last.
func (m *CorrMatrix) TopPairs(limit int) []PairCorr {
	var pairs []PairCorr
	n := len(m.Columns)
	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			pairs = append(pairs, PairCorr{A: m.Columns[i], B: m.Columns[j], R: m.Values[i][j]})
		}
	}
	sort.SliceStable(pairs, func(i, j int) bool {
		if pairs[i].R.Valid != pairs[j].R.Valid {
			return pairs[i].R.Valid
		}
		return math.Abs(pairs[i].R.Float64) > math.Abs(pairs[j].R.Float64)
	})
	if limit > 0 && len(pairs) > limit {
		pairs = pairs[:limit]
	}
	return pairs
}

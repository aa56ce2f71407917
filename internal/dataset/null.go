package dataset

import (
	"encoding/json"
	"math"
	"strconv"
)

// NullFloat is a number that may be undefined, such as a mean over zero
// rows or a ratio with a zero denominator.
type NullFloat struct {
	Float64 float64
	Valid   bool
}

// Some wraps x, treating NaN and ±Inf as undefined.
func Some(x float64) NullFloat {
	if math.IsNaN(x) || math.IsInf(x, 0) {
		return NullFloat{}
	}
	return NullFloat{Float64: x, Valid: true}
}

// Format renders the value with the given precision, or "n/a".
func (n NullFloat) Format(prec int) string {
	if !n.Valid {
		return "n/a"
	}
	return strconv.FormatFloat(n.Float64, 'f', prec, 64)
}

func (n NullFloat) String() string {
	if !n.Valid {
		return "n/a"
	}
	return strconv.FormatFloat(n.Float64, 'g', -1, 64)
}

// MarshalJSON encodes undefined values as null.
func (n NullFloat) MarshalJSON() ([]byte, error) {
	if !n.Valid {
		return []byte("null"), nil
	}
	return json.Marshal(n.Float64)
}

// Mean is the arithmetic mean, undefined for an empty slice.
func Mean(vals []float64) NullFloat {
	if len(vals) == 0 {
		return NullFloat{}
	}
	var sum float64
	for _, v := range vals {
		sum += v
	}
	return Some(sum / float64(len(vals)))
}

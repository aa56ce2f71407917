// Package broker holds the broker-performance pipeline: column validation,
// the success-rate threshold, per-broker means, rankings and summary figures.
// Every function is a pure computation over its table arguments.
package broker

import (
	"errors"
	"fmt"
	"strings"

	"github.com/KaramelBytes/brokerdash-cli/internal/dataset"
)

// Required column names.
const (
	ColName           = "name"
	ColTickets        = "tickets"
	ColSuccessRate    = "order_success_rate"
	ColResolutionTime = "avg_resolution_time"
)

// RequiredColumns lists the columns every upload must carry.
var RequiredColumns = []string{ColName, ColTickets, ColSuccessRate, ColResolutionTime}

// DefaultThreshold is the minimum success rate applied when none is chosen.
const DefaultThreshold = 50

// ErrThresholdRange is returned for thresholds outside [0,100].
var ErrThresholdRange = errors.New("minimum success rate must be between 0 and 100")

// MissingColumnError lists required columns absent from an upload.
type MissingColumnError struct {
	Missing []string
}

func (e *MissingColumnError) Error() string {
	return fmt.Sprintf("missing required column(s): %s", strings.Join(e.Missing, ", "))
}

// Validate checks that every required column is present.
func Validate(t *dataset.Table) error {
	var missing []string
	for _, c := range RequiredColumns {
		if _, ok := t.Index(c); !ok {
			missing = append(missing, c)
		}
	}
	if len(missing) > 0 {
		return &MissingColumnError{Missing: missing}
	}
	return nil
}

// ValidateThreshold rejects values outside [0,100].
func ValidateThreshold(threshold int) error {
	if threshold < 0 || threshold > 100 {
		return fmt.Errorf("%w: got %d", ErrThresholdRange, threshold)
	}
	return nil
}

// ClampThreshold forces a threshold into [0,100].
func ClampThreshold(threshold int) int {
	return max(0, min(threshold, 100))
}

type columns struct {
	name, tickets, rate, resolution int
}

func lookup(t *dataset.Table) (columns, error) {
	if err := Validate(t); err != nil {
		return columns{}, err
	}
	var c columns
	c.name, _ = t.Index(ColName)
	c.tickets, _ = t.Index(ColTickets)
	c.rate, _ = t.Index(ColSuccessRate)
	c.resolution, _ = t.Index(ColResolutionTime)
	return c, nil
}

// Filter keeps rows whose success rate is at least threshold. Rows with a
// missing or non-numeric rate are dropped. The input table is not modified.
func Filter(t *dataset.Table, threshold int) (*dataset.Table, error) {
	c, err := lookup(t)
	if err != nil {
		return nil, err
	}
	limit := float64(threshold)
	return t.Where(func(row int) bool {
		x, ok := t.Float(row, c.rate)
		return ok && x >= limit
	}), nil
}

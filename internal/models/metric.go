package models

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
)

// Metric is a computed scalar that may be undefined, e.g. when the slice of
// data it is computed over is empty or a rate has a zero denominator.
// The zero value is Undefined.
type Metric struct {
	Value float64
	Valid bool
}

// Undefined is the metric produced by a degenerate computation.
var Undefined = Metric{}

// Defined wraps v as a valid metric.
func Defined(v float64) Metric {
	return Metric{Value: v, Valid: true}
}

// Get returns the value and whether it is defined.
func (m Metric) Get() (float64, bool) {
	return m.Value, m.Valid
}

// Map applies f to a defined metric and passes Undefined through.
func (m Metric) Map(f func(float64) float64) Metric {
	if !m.Valid {
		return Undefined
	}
	return Defined(f(m.Value))
}

func (m Metric) String() string {
	if !m.Valid {
		return "n/a"
	}
	return strconv.FormatFloat(m.Value, 'f', 4, 64)
}

// MarshalJSON encodes an undefined metric as null.
func (m Metric) MarshalJSON() ([]byte, error) {
	if !m.Valid {
		return []byte("null"), nil
	}
	return json.Marshal(m.Value)
}

// UnmarshalJSON accepts a number or null.
func (m *Metric) UnmarshalJSON(data []byte) error {
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		*m = Undefined
		return nil
	}
	var v float64
	if err := json.Unmarshal(data, &v); err != nil {
		return fmt.Errorf("metric: %w", err)
	}
	*m = Defined(v)
	return nil
}

// Values returns the defined values of ms, dropping undefined entries.
func Values(ms []Metric) []float64 {
	out := make([]float64, 0, len(ms))
	for _, m := range ms {
		if m.Valid {
			out = append(out, m.Value)
		}
	}
	return out
}

// AllDefined reports whether every metric in ms is defined.
func AllDefined(ms []Metric) bool {
	for _, m := range ms {
		if !m.Valid {
			return false
		}
	}
	return true
}

// MissingPolicy declares how an aggregation treats undefined inputs.
type MissingPolicy string

const (
	// MissingPropagate makes the aggregate undefined if any input is.
	MissingPropagate MissingPolicy = "propagate"
	// MissingSkip drops undefined inputs before aggregating.
	MissingSkip MissingPolicy = "skip"
)

// ParseMissingPolicy converts a config string into a MissingPolicy.
// An empty string selects MissingPropagate.
func ParseMissingPolicy(s string) (MissingPolicy, error) {
	switch MissingPolicy(s) {
	case "", MissingPropagate:
		return MissingPropagate, nil
	case MissingSkip:
		return MissingSkip, nil
	default:
		return "", fmt.Errorf("unknown missing-value policy %q: must be %s or %s", s, MissingPropagate, MissingSkip)
	}
}

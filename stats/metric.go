package stats

import (
	"errors"
	"fmt"
	"strings"

	"github.com/Noofbiz/pushWorld/history"
)

var (
	// ErrUnsupportedMetric is returned for a metric kind outside the known set.
	ErrUnsupportedMetric = errors.New("unsupported metric")

	// ErrMissingReference is returned when a distance metric is requested
	// without a reference vector.
	ErrMissingReference = errors.New("missing reference value for distance metric")

	// ErrDimensionMismatch is returned when an extracted vector and the
	// reference vector have different lengths.
	ErrDimensionMismatch = errors.New("reference dimension mismatch")
)

// Metric selects the record field that is aggregated and the transform
// applied to it.
type Metric int

const (
	// Regret is the running best objective value, optionally minus a known
	// optimum.
	Regret Metric = iota + 1

	// DistanceToOptimum is the distance between the best input found so far
	// and the known optimal input.
	DistanceToOptimum

	// DistanceToOptimumEndPosition is the distance between the end position
	// of the pushed object and the optimal end position.
	DistanceToOptimumEndPosition
)

var metricNames = map[Metric]string{
	Regret:                       "Regret",
	DistanceToOptimum:            "Distance to optimum",
	DistanceToOptimumEndPosition: "Distance to opt. end position",
}

var metricKeys = map[string]Metric{
	"regret":                  Regret,
	"dist_to_opt":             DistanceToOptimum,
	"distance_to_optimum":     DistanceToOptimum,
	"dist_to_opt_end_pos":     DistanceToOptimumEndPosition,
	"distance_to_opt_end_pos": DistanceToOptimumEndPosition,
}

func (m Metric) String() string {
	if name, ok := metricNames[m]; ok {
		return name
	}
	return fmt.Sprintf("Metric(%d)", int(m))
}

// Valid reports whether m is one of the known metrics.
func (m Metric) Valid() bool {
	_, ok := metricNames[m]
	return ok
}

// IsDistance reports whether m compares vectors against a reference.
func (m Metric) IsDistance() bool {
	return m == DistanceToOptimum || m == DistanceToOptimumEndPosition
}

// ParseMetric maps a configuration key (e.g. "regret", "dist_to_opt") to a
// Metric.
func ParseMetric(key string) (Metric, error) {
	if m, ok := metricKeys[strings.ToLower(strings.TrimSpace(key))]; ok {
		return m, nil
	}
	return 0, fmt.Errorf("%w: %q", ErrUnsupportedMetric, key)
}

// extract returns the record field selected by m as a vector. A nil result
// means the record carries no value for m.
func (m Metric) extract(r history.Record) Cell {
	switch m {
	case Regret:
		return Cell{r.BestValue}
	case DistanceToOptimum:
		return cloneCell(r.BestInput)
	case DistanceToOptimumEndPosition:
		return cloneCell(r.EndPosition)
	}
	return nil
}

func cloneCell(v []float64) Cell {
	if len(v) == 0 {
		return nil
	}
	return append(Cell(nil), v...)
}

package stats

import (
	"fmt"
	"math"
	"sort"

	"github.com/gomlx/gomlx/pkg/core/tensors"

	"github.com/Noofbiz/pushWorld/history"
)

// Cell is the value of one trial at one step. Scalars are stored as vectors
// of length one; a nil Cell is a missing value.
type Cell []float64

// Table is a step-aligned view of a group of trials: one column per trial,
// one row per step of the union of all steps observed in the group.
//
// Every transform returns a new Table and leaves the receiver untouched.
type Table struct {
	// Steps is sorted ascending and has no duplicates.
	Steps []int

	// Trials holds the column names, in column order.
	Trials []string

	// Columns[c][s] is the value of trial c at Steps[s].
	Columns [][]Cell
}

// Align builds the table of the field selected by metric for trials. When a
// trial records the same step more than once the last record wins. Columns
// follow the order of trials.
func Align(trials []*history.Trial, metric Metric) *Table {
	seen := make(map[int]struct{})
	perTrial := make([]map[int]Cell, len(trials))
	names := make([]string, len(trials))

	for i, t := range trials {
		names[i] = t.Name
		values := make(map[int]Cell, len(t.Records))
		for _, r := range t.Records {
			values[r.Step] = metric.extract(r)
			seen[r.Step] = struct{}{}
		}
		perTrial[i] = values
	}

	steps := make([]int, 0, len(seen))
	for s := range seen {
		steps = append(steps, s)
	}
	sort.Ints(steps)

	cols := make([][]Cell, len(trials))
	for i, values := range perTrial {
		col := make([]Cell, len(steps))
		for si, s := range steps {
			col[si] = values[s]
		}
		cols[i] = col
	}

	return &Table{Steps: steps, Trials: names, Columns: cols}
}

// Len returns the number of steps.
func (t *Table) Len() int { return len(t.Steps) }

func (t *Table) mapColumns(fn func(col []Cell) ([]Cell, error)) (*Table, error) {
	out := &Table{
		Steps:   append([]int(nil), t.Steps...),
		Trials:  append([]string(nil), t.Trials...),
		Columns: make([][]Cell, len(t.Columns)),
	}
	for i, col := range t.Columns {
		c, err := fn(col)
		if err != nil {
			return nil, fmt.Errorf("trial %s: %w", t.Trials[i], err)
		}
		out.Columns[i] = c
	}
	return out, nil
}

// ForwardFill replaces every missing value with the last present value of
// the same column. Values before a column's first observation stay missing.
func (t *Table) ForwardFill() *Table {
	out, _ := t.mapColumns(func(col []Cell) ([]Cell, error) {
		filled := make([]Cell, len(col))
		var last Cell
		for i, c := range col {
			if c != nil {
				last = c
			}
			filled[i] = last
		}
		return filled, nil
	})
	return out
}

// CumMin replaces every scalar value with the minimum of its column up to
// and including that step. Missing and NaN values are left as they are and
// do not take part in the running minimum.
func (t *Table) CumMin() *Table {
	out, _ := t.mapColumns(func(col []Cell) ([]Cell, error) {
		res := make([]Cell, len(col))
		best := math.Inf(1)
		for i, c := range col {
			if c == nil || math.IsNaN(c[0]) {
				res[i] = c
				continue
			}
			best = math.Min(best, c[0])
			res[i] = Cell{best}
		}
		return res, nil
	})
	return out
}

// Subtract removes v from every present scalar value.
func (t *Table) Subtract(v float64) *Table {
	out, _ := t.mapColumns(func(col []Cell) ([]Cell, error) {
		res := make([]Cell, len(col))
		for i, c := range col {
			if c != nil {
				res[i] = Cell{c[0] - v}
			}
		}
		return res, nil
	})
	return out
}

// Distance replaces every present vector with its Euclidean distance to ref.
func (t *Table) Distance(ref []float64) (*Table, error) {
	return t.mapColumns(func(col []Cell) ([]Cell, error) {
		res := make([]Cell, len(col))
		for i, c := range col {
			if c == nil {
				continue
			}
			if len(c) != len(ref) {
				return nil, fmt.Errorf("%w: value has %d dims, reference has %d", ErrDimensionMismatch, len(c), len(ref))
			}
			sum := 0.0
			for j := range c {
				d := c[j] - ref[j]
				sum += d * d
			}
			res[i] = Cell{math.Sqrt(sum)}
		}
		return res, nil
	})
}

// StepStat is the cross-trial summary of one step.
type StepStat struct {
	Step int

	// Mean and Std are NaN when Count is zero. Std is the sample standard
	// deviation and is NaN when Count is one.
	Mean  float64
	Std   float64
	Count int
}

// Defined reports whether at least one trial contributed to the step.
func (s StepStat) Defined() bool { return s.Count > 0 }

// Reduce computes, for every step, the mean and sample standard deviation of
// the present scalar values across columns. The values are read back from
// the table's [steps, trials] tensor with missing entries masked as NaN.
func (t *Table) Reduce() []StepStat {
	return ReduceTensor(t.Steps, t.Tensor())
}

// ReduceTensor reduces a [steps, trials] float64 tensor along the trial axis,
// ignoring NaN entries. Row s of values belongs to steps[s]. A nil tensor
// yields undefined statistics for every step.
func ReduceTensor(steps []int, values *tensors.Tensor) []StepStat {
	var rows [][]float64
	if values != nil {
		rows, _ = values.Value().([][]float64)
	}

	out := make([]StepStat, len(steps))
	for si, step := range steps {
		var row []float64
		if si < len(rows) {
			row = rows[si]
		}
		out[si] = reduceRow(step, row)
	}
	return out
}

func reduceRow(step int, row []float64) StepStat {
	st := StepStat{Step: step, Mean: math.NaN(), Std: math.NaN()}
	var sum float64
	for _, v := range row {
		if math.IsNaN(v) {
			continue
		}
		sum += v
		st.Count++
	}
	if st.Count == 0 {
		return st
	}
	st.Mean = sum / float64(st.Count)
	if st.Count > 1 {
		var sq float64
		for _, v := range row {
			if math.IsNaN(v) {
				continue
			}
			d := v - st.Mean
			sq += d * d
		}
		st.Std = math.Sqrt(sq / float64(st.Count-1))
	}
	return st
}

// Scalars returns the table as a [steps][trials] matrix of the first
// component of every cell, with NaN for missing values.
func (t *Table) Scalars() [][]float64 {
	m := make([][]float64, len(t.Steps))
	for si := range t.Steps {
		row := make([]float64, len(t.Columns))
		for ci, col := range t.Columns {
			if c := col[si]; c != nil {
				row[ci] = c[0]
			} else {
				row[ci] = math.NaN()
			}
		}
		m[si] = row
	}
	return m
}

// Tensor converts the scalar table to a gomlx tensor of shape
// [steps, trials]. Missing values are NaN. An empty table has no tensor
// and returns nil.
func (t *Table) Tensor() *tensors.Tensor {
	if len(t.Steps) == 0 || len(t.Columns) == 0 {
		return nil
	}
	return tensors.FromAnyValue(t.Scalars())
}

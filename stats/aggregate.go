package stats

import (
	"encoding/csv"
	"fmt"
	"io"
	"sort"
	"strconv"

	"github.com/gomlx/gomlx/pkg/core/tensors"

	"github.com/Noofbiz/pushWorld/history"
)

// Options carries the optional inputs of a metric.
type Options struct {
	// Reference is the optimum the distance metrics are measured against.
	// Required for DistanceToOptimum and DistanceToOptimumEndPosition.
	Reference []float64

	// Baseline, when set, is subtracted from every regret value.
	Baseline *float64
}

// Result is the aggregated curve of one model.
type Result struct {
	Model  string
	Metric Metric
	Trials int
	Steps  []StepStat

	// Values is the transformed [steps, trials] matrix the statistics were
	// reduced from, NaN where a trial has no value yet. Nil for an empty
	// group.
	Values *tensors.Tensor
}

// check validates metric and opts before any work is done.
func check(metric Metric, opts Options) error {
	if !metric.Valid() {
		return fmt.Errorf("%w: %v", ErrUnsupportedMetric, metric)
	}
	if metric.IsDistance() && len(opts.Reference) == 0 {
		return fmt.Errorf("%w: %v", ErrMissingReference, metric)
	}
	return nil
}

// Transform runs the per-trial part of the pipeline: align on the union of
// steps, forward-fill, then either the cumulative minimum (Regret) or the
// distance to opts.Reference (distance metrics). The result is a scalar
// table ready for Reduce.
func Transform(trials []*history.Trial, metric Metric, opts Options) (*Table, error) {
	if err := check(metric, opts); err != nil {
		return nil, err
	}

	table := Align(trials, metric).ForwardFill()
	switch metric {
	case Regret:
		table = table.CumMin()
		if opts.Baseline != nil {
			table = table.Subtract(*opts.Baseline)
		}
		return table, nil
	case DistanceToOptimum, DistanceToOptimumEndPosition:
		return table.Distance(opts.Reference)
	}
	return nil, fmt.Errorf("%w: %v", ErrUnsupportedMetric, metric)
}

// Aggregate computes, for every model of trialsByModel, the per-step mean
// and standard deviation of metric across the model's trials. A model
// without trials yields a Result with no steps.
//
// Aggregate is a pure function of its inputs.
func Aggregate(trialsByModel map[string][]*history.Trial, metric Metric, opts Options) (map[string]*Result, error) {
	if err := check(metric, opts); err != nil {
		return nil, err
	}

	out := make(map[string]*Result, len(trialsByModel))
	for model, trials := range trialsByModel {
		res := &Result{Model: model, Metric: metric, Trials: len(trials)}
		out[model] = res
		if len(trials) == 0 {
			continue
		}
		table, err := Transform(trials, metric, opts)
		if err != nil {
			return nil, fmt.Errorf("model %s: %w", model, err)
		}
		res.Values = table.Tensor()
		res.Steps = ReduceTensor(table.Steps, res.Values)
	}
	return out, nil
}

// Models returns the model names of results sorted alphabetically.
func Models(results map[string]*Result) []string {
	names := make([]string, 0, len(results))
	for name := range results {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// WriteCSV writes results in long format:
//
//	metric,model,step,mean,std,count
//
// Models are written in alphabetical order. Undefined values are written
// as NaN.
func WriteCSV(w io.Writer, results ...map[string]*Result) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"metric", "model", "step", "mean", "std", "count"}); err != nil {
		return err
	}
	for _, byModel := range results {
		for _, model := range Models(byModel) {
			r := byModel[model]
			for _, s := range r.Steps {
				row := []string{
					r.Metric.String(),
					model,
					strconv.Itoa(s.Step),
					strconv.FormatFloat(s.Mean, 'f', 6, 64),
					strconv.FormatFloat(s.Std, 'f', 6, 64),
					strconv.Itoa(s.Count),
				}
				if err := cw.Write(row); err != nil {
					return err
				}
			}
		}
	}
	cw.Flush()
	return cw.Error()
}

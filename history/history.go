package history

import (
	"fmt"
	"sort"
	"strings"
)

// This package holds the optimization histories produced by the push-world
// experiments and the helpers to load, merge and group them.
//
// Layout and intended usage:
//
// History
//   - Maps a trial name (e.g. "GP", "GP_0209090046") to a Trial
//   - Is loaded from one or more ".hist" artifacts (gob) or imported from CSV
//   - Is read-only once loaded; grouping and statistics derive new values
//
// Record
//   - One optimization step of a trial. The fields are addressed by name:
//     the step index, the outcome (input) vector evaluated at that step, the
//     best input found so far, the best objective value so far and the end
//     position of the pushed object.

// Record is one step of an optimization trial.
type Record struct {
	Step        int
	Outcome     []float64
	BestInput   []float64
	BestValue   float64
	EndPosition []float64
}

// Trial is the full step history of one optimization run.
type Trial struct {
	// Name is the unique key of the trial inside a History.
	Name string

	// Model is the model name the trial was attributed to by GroupByModel.
	// Empty until grouped.
	Model string

	// Suffix is the run suffix of the artifact the trial was loaded from.
	Suffix string

	Records []Record
}

// Sort orders the records by step, keeping the input order of records
// that share a step.
func (t *Trial) Sort() {
	sort.SliceStable(t.Records, func(i, j int) bool {
		return t.Records[i].Step < t.Records[j].Step
	})
}

// Last returns the last record of the trial.
func (t *Trial) Last() (Record, bool) {
	if t == nil || len(t.Records) == 0 {
		return Record{}, false
	}
	return t.Records[len(t.Records)-1], true
}

// History maps trial names to trials.
type History map[string]*Trial

// Names returns the trial names sorted alphabetically.
func (h History) Names() []string {
	names := make([]string, 0, len(h))
	for name := range h {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Merge adds copies of the trials of other into h; other is left untouched.
// A trial whose name is already taken is renamed "<name>_<suffix>" where
// suffix is the run suffix of other's artifact. If that name is taken too,
// a counter is appended ("<name>_<suffix>_2", "_3", ...), so no trial is
// ever overwritten.
func (h History) Merge(other History, suffix string) {
	for _, name := range other.Names() {
		t := *other[name]
		key := name
		if _, exists := h[key]; exists {
			key = name + "_" + suffix
			for n := 2; ; n++ {
				if _, exists := h[key]; !exists {
					break
				}
				key = fmt.Sprintf("%s_%s_%d", name, suffix, n)
			}
		}
		t.Name = key
		if t.Suffix == "" {
			t.Suffix = suffix
		}
		h[key] = &t
	}
}

// RunSuffix derives the run suffix from an artifact path: the base name
// without the ".hist" or ".csv" extension, last "-" separated token.
//
//	E-TripleGoalsP3-GMMInputDistribution-0209090046.hist -> 0209090046
func RunSuffix(path string) string {
	base := path
	if i := strings.LastIndexAny(base, `/\`); i >= 0 {
		base = base[i+1:]
	}
	base = strings.TrimSuffix(base, ".csv")
	base = strings.Split(base, ".hist")[0]
	parts := strings.Split(base, "-")
	return parts[len(parts)-1]
}

// modelSeparators are the characters allowed between a model name and the
// rest of a trial name.
const modelSeparators = "_-#. "

// GroupByModel attributes every trial of h to the longest model name that
// appears in the trial name as a whole token, bounded on both sides by a
// separator or the ends of the name ("GP", "M-GP" and "GP_0209" all belong
// to GP, "uGP" does not). Trials matching no model are ignored. Every model in models is present in
// the returned map, possibly with an empty slice. Trials are ordered by name.
func GroupByModel(h History, models []string) map[string][]*Trial {
	groups := make(map[string][]*Trial, len(models))
	for _, m := range models {
		groups[m] = []*Trial{}
	}

	for _, name := range h.Names() {
		best := ""
		for _, m := range models {
			if !matchesModel(name, m) {
				continue
			}
			if len(m) > len(best) {
				best = m
			}
		}
		if best == "" {
			continue
		}
		t := h[name]
		t.Model = best
		groups[best] = append(groups[best], t)
	}
	return groups
}

func matchesModel(trialName, model string) bool {
	if model == "" {
		return false
	}
	for from := 0; from+len(model) <= len(trialName); {
		i := strings.Index(trialName[from:], model)
		if i < 0 {
			return false
		}
		start := from + i
		end := start + len(model)
		if isModelBoundary(trialName, start-1) && isModelBoundary(trialName, end) {
			return true
		}
		from = start + 1
	}
	return false
}

// isModelBoundary reports whether position i of name lies outside the name
// or holds a separator.
func isModelBoundary(name string, i int) bool {
	if i < 0 || i >= len(name) {
		return true
	}
	return strings.IndexByte(modelSeparators, name[i]) >= 0
}

// FinalOutcomes returns the outcome vector of the last record of each trial,
// skipping trials without records.
func FinalOutcomes(trials []*Trial) [][]float64 {
	out := make([][]float64, 0, len(trials))
	for _, t := range trials {
		last, ok := t.Last()
		if !ok || len(last.Outcome) == 0 {
			continue
		}
		out = append(out, last.Outcome)
	}
	return out
}

package history

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
)

// CSV import
//
// Histories can be exported from the optimizer as a long-format CSV with one
// row per step:
//
//	trial,step,best_value,outcome,best_input,end_position
//	GP,0,5.0,0.1;0.2;17,0.1;0.2;17,1.5;-2.0
//
// Vector cells are ";" separated. best_input and end_position may be empty.

var csvColumns = []string{"trial", "step", "best_value", "outcome", "best_input", "end_position"}

// LoadCSV imports a long-format CSV history. Rows are grouped by the trial
// column; records of every trial are sorted by step.
func LoadCSV(path string) (History, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open CSV %s: %w", path, err)
	}
	defer file.Close()

	reader := csv.NewReader(file)
	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("failed to read header: %w", err)
	}

	colIndex := make(map[string]int)
	for i, col := range header {
		colIndex[strings.TrimSpace(strings.ToLower(col))] = i
	}
	for _, col := range csvColumns[:4] {
		if _, ok := colIndex[col]; !ok {
			return nil, fmt.Errorf("required column %q not found in CSV", col)
		}
	}

	suffix := RunSuffix(path)
	h := make(History)
	row := 0
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read row %d: %w", row, err)
		}
		row++

		name := strings.TrimSpace(record[colIndex["trial"]])
		if name == "" {
			return nil, fmt.Errorf("row %d: empty trial name", row)
		}
		rec, err := parseRecord(record, colIndex)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", row, err)
		}

		t, ok := h[name]
		if !ok {
			t = &Trial{Name: name, Suffix: suffix}
			h[name] = t
		}
		t.Records = append(t.Records, rec)
	}

	for _, t := range h {
		t.Sort()
	}
	return h, nil
}

func parseRecord(record []string, colIndex map[string]int) (Record, error) {
	var rec Record

	step, err := strconv.Atoi(strings.TrimSpace(record[colIndex["step"]]))
	if err != nil {
		return rec, fmt.Errorf("failed to parse step: %w", err)
	}
	rec.Step = step

	best, err := strconv.ParseFloat(strings.TrimSpace(record[colIndex["best_value"]]), 64)
	if err != nil {
		return rec, fmt.Errorf("failed to parse best_value: %w", err)
	}
	rec.BestValue = best

	if rec.Outcome, err = parseVector(record[colIndex["outcome"]]); err != nil {
		return rec, fmt.Errorf("failed to parse outcome: %w", err)
	}
	if idx, ok := colIndex["best_input"]; ok && idx < len(record) {
		if rec.BestInput, err = parseVector(record[idx]); err != nil {
			return rec, fmt.Errorf("failed to parse best_input: %w", err)
		}
	}
	if idx, ok := colIndex["end_position"]; ok && idx < len(record) {
		if rec.EndPosition, err = parseVector(record[idx]); err != nil {
			return rec, fmt.Errorf("failed to parse end_position: %w", err)
		}
	}
	return rec, nil
}

// parseVector parses a ";" separated list of floats. An empty cell yields a
// nil vector.
func parseVector(s string) ([]float64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}
	parts := strings.Split(s, ";")
	v := make([]float64, len(parts))
	for i, p := range parts {
		f, err := strconv.ParseFloat(strings.TrimSpace(p), 64)
		if err != nil {
			return nil, err
		}
		v[i] = f
	}
	return v, nil
}

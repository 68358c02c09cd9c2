package history

import (
	"io"
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/sirupsen/logrus"
)

func quietLogger() logrus.FieldLogger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}

// writeCSV writes a CSV file with the given header and rows to path.
func writeCSV(t *testing.T, path, header string, rows []string) {
	t.Helper()
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("failed to create csv %s: %v", path, err)
	}
	defer f.Close()

	if _, err := f.WriteString(header + "\n"); err != nil {
		t.Fatalf("failed to write header: %v", err)
	}
	for _, r := range rows {
		if _, err := f.WriteString(r + "\n"); err != nil {
			t.Fatalf("failed to write row: %v", err)
		}
	}
}

func TestRunSuffix(t *testing.T) {
	cases := map[string]string{
		"E-TripleGoalsP3-GMMInputDistribution-0209090046/E-TripleGoalsP3-GMMInputDistribution-0209090046.hist": "0209090046",
		"run.hist":      "run",
		"a-b-c":         "c",
		`dir\x-42.hist`: "42",
	}
	for in, want := range cases {
		if got := RunSuffix(in); got != want {
			t.Errorf("RunSuffix(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestMergeRenamesCollisions(t *testing.T) {
	h := History{"GP": {Name: "GP"}}
	other := History{
		"GP":   {Name: "GP"},
		"ERBF": {Name: "ERBF"},
	}
	h.Merge(other, "0209")

	want := []string{"ERBF", "GP", "GP_0209"}
	if got := h.Names(); !reflect.DeepEqual(got, want) {
		t.Fatalf("names after merge: got %v want %v", got, want)
	}
	if h["GP_0209"].Name != "GP_0209" {
		t.Fatalf("renamed trial keeps old name %q", h["GP_0209"].Name)
	}
	if h["GP_0209"].Suffix != "0209" {
		t.Fatalf("expected suffix 0209, got %q", h["GP_0209"].Suffix)
	}
}

func TestMergeNeverOverwrites(t *testing.T) {
	h := History{
		"GP":      {Name: "GP", Records: []Record{{BestValue: 1}}},
		"GP_0209": {Name: "GP_0209", Records: []Record{{BestValue: 2}}},
	}
	incoming := &Trial{Name: "GP", Records: []Record{{BestValue: 3}}}
	h.Merge(History{"GP": incoming}, "0209")

	want := []string{"GP", "GP_0209", "GP_0209_2"}
	if got := h.Names(); !reflect.DeepEqual(got, want) {
		t.Fatalf("names after merge: got %v want %v", got, want)
	}
	if h["GP_0209"].Records[0].BestValue != 2 || h["GP_0209_2"].Records[0].BestValue != 3 {
		t.Fatalf("existing trial overwritten: GP_0209=%v GP_0209_2=%v", h["GP_0209"].Records, h["GP_0209_2"].Records)
	}
	if h["GP_0209_2"].Name != "GP_0209_2" {
		t.Fatalf("merged trial has name %q", h["GP_0209_2"].Name)
	}
	if incoming.Name != "GP" || incoming.Suffix != "" {
		t.Fatalf("Merge modified the source trial: %+v", incoming)
	}
}

func TestGroupByModelTokenAnywhere(t *testing.T) {
	h := History{
		"M-GP":           {Name: "M-GP"},
		"M-uGP":          {Name: "M-uGP"},
		"M-ERBF_0209":    {Name: "M-ERBF_0209"},
		"M-MMDGP-raw":    {Name: "M-MMDGP-raw"},
		"GP-M":           {Name: "GP-M"},
		"M-GPX":          {Name: "M-GPX"},
		"xGP-uGP#3":      {Name: "xGP-uGP#3"},
		"unrelated-name": {Name: "unrelated-name"},
	}
	groups := GroupByModel(h, []string{"GP", "uGP", "ERBF", "MMDGP-raw"})

	want := map[string][]string{
		"GP":        {"GP-M", "M-GP"},
		"uGP":       {"M-uGP", "xGP-uGP#3"},
		"ERBF":      {"M-ERBF_0209"},
		"MMDGP-raw": {"M-MMDGP-raw"},
	}
	for model, names := range want {
		got := make([]string, len(groups[model]))
		for i, tr := range groups[model] {
			got[i] = tr.Name
		}
		if !reflect.DeepEqual(got, names) {
			t.Errorf("%s group: got %v want %v", model, got, names)
		}
	}
}

func TestGroupByModelLongestMatch(t *testing.T) {
	h := History{
		"GP":                 {Name: "GP"},
		"GP_0209":            {Name: "GP_0209"},
		"uGP_1":              {Name: "uGP_1"},
		"MMDGP-nystrom":      {Name: "MMDGP-nystrom"},
		"MMDGP-nystrom_0209": {Name: "MMDGP-nystrom_0209"},
		"MMDGP-raw":          {Name: "MMDGP-raw"},
		"GPX":                {Name: "GPX"},
	}
	groups := GroupByModel(h, []string{"GP", "uGP", "MMDGP", "MMDGP-nystrom", "skl"})

	names := func(ts []*Trial) []string {
		out := make([]string, len(ts))
		for i, t := range ts {
			out[i] = t.Name
		}
		return out
	}

	if got := names(groups["GP"]); !reflect.DeepEqual(got, []string{"GP", "GP_0209"}) {
		t.Errorf("GP group: %v", got)
	}
	if got := names(groups["uGP"]); !reflect.DeepEqual(got, []string{"uGP_1"}) {
		t.Errorf("uGP group: %v", got)
	}
	if got := names(groups["MMDGP"]); !reflect.DeepEqual(got, []string{"MMDGP-raw"}) {
		t.Errorf("MMDGP group: %v", got)
	}
	if got := names(groups["MMDGP-nystrom"]); !reflect.DeepEqual(got, []string{"MMDGP-nystrom", "MMDGP-nystrom_0209"}) {
		t.Errorf("MMDGP-nystrom group: %v", got)
	}
	if g, ok := groups["skl"]; !ok || len(g) != 0 {
		t.Errorf("expected empty skl group, got %v (present=%v)", g, ok)
	}
	if h["GP_0209"].Model != "GP" {
		t.Errorf("expected model GP on GP_0209, got %q", h["GP_0209"].Model)
	}
}

func TestSaveLoadArtifact(t *testing.T) {
	tmp := t.TempDir()
	path := filepath.Join(tmp, "E-Push-0101.hist")

	h := History{
		"GP": {Name: "GP", Records: []Record{
			{Step: 2, BestValue: 3, Outcome: []float64{1, 2, 20}},
			{Step: 0, BestValue: 5, Outcome: []float64{-1, 1, 18}},
		}},
	}
	if err := Save(path, h); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	got, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	trial, ok := got["GP"]
	if !ok {
		t.Fatalf("trial GP missing after load: %v", got.Names())
	}
	if trial.Suffix != "0101" {
		t.Errorf("expected suffix 0101, got %q", trial.Suffix)
	}
	if len(trial.Records) != 2 || trial.Records[0].Step != 0 || trial.Records[1].Step != 2 {
		t.Fatalf("records not sorted by step: %+v", trial.Records)
	}
	last, _ := trial.Last()
	if !reflect.DeepEqual(last.Outcome, []float64{1, 2, 20}) {
		t.Errorf("unexpected last outcome %v", last.Outcome)
	}

	// no temp files left behind
	entries, err := os.ReadDir(tmp)
	if err != nil {
		t.Fatalf("ReadDir: %v", err)
	}
	if len(entries) != 1 {
		t.Errorf("expected only the artifact in %s, found %d entries", tmp, len(entries))
	}
}

func TestLoadCSV(t *testing.T) {
	tmp := t.TempDir()
	path := filepath.Join(tmp, "runs-7.csv")
	writeCSV(t, path, "Trial,Step,Best_Value,Outcome,Best_Input,End_Position", []string{
		"GP,2,3.0,1;2;20,1;2;20,3;3",
		"GP,0,5.0,-1;1;18,-1;1;18,",
		"ERBF,1,4.0,1;-1;25,,2;-2",
	})

	h, err := LoadCSV(path)
	if err != nil {
		t.Fatalf("LoadCSV failed: %v", err)
	}
	if got := h.Names(); !reflect.DeepEqual(got, []string{"ERBF", "GP"}) {
		t.Fatalf("unexpected trials %v", got)
	}
	gp := h["GP"]
	if gp.Records[0].Step != 0 || gp.Records[0].BestValue != 5 {
		t.Errorf("unexpected first GP record %+v", gp.Records[0])
	}
	if gp.Records[0].EndPosition != nil {
		t.Errorf("expected nil end position for empty cell, got %v", gp.Records[0].EndPosition)
	}
	if !reflect.DeepEqual(gp.Records[1].EndPosition, []float64{3, 3}) {
		t.Errorf("unexpected end position %v", gp.Records[1].EndPosition)
	}
	if h["ERBF"].Records[0].BestInput != nil {
		t.Errorf("expected nil best input, got %v", h["ERBF"].Records[0].BestInput)
	}
	if gp.Suffix != "7" {
		t.Errorf("expected suffix 7, got %q", gp.Suffix)
	}
}

func TestLoadCSVMissingColumn(t *testing.T) {
	tmp := t.TempDir()
	path := filepath.Join(tmp, "bad.csv")
	writeCSV(t, path, "trial,step,outcome", []string{"GP,0,1;2;3"})

	if _, err := LoadCSV(path); err == nil {
		t.Fatalf("expected error when best_value column is missing")
	}
}

func TestLoadAllMergesInOrder(t *testing.T) {
	tmp := t.TempDir()
	first := filepath.Join(tmp, "E-a-0001.hist")
	second := filepath.Join(tmp, "E-a-0002.hist")

	if err := Save(first, History{"GP": {Records: []Record{{Step: 0, BestValue: 1}}}}); err != nil {
		t.Fatalf("Save first: %v", err)
	}
	if err := Save(second, History{"GP": {Records: []Record{{Step: 0, BestValue: 2}}}}); err != nil {
		t.Fatalf("Save second: %v", err)
	}

	h, err := LoadAll([]string{first, second}, quietLogger())
	if err != nil {
		t.Fatalf("LoadAll failed: %v", err)
	}
	if got := h.Names(); !reflect.DeepEqual(got, []string{"GP", "GP_0002"}) {
		t.Fatalf("unexpected names %v", got)
	}
	if h["GP"].Records[0].BestValue != 1 || h["GP_0002"].Records[0].BestValue != 2 {
		t.Fatalf("merge order not preserved: GP=%v GP_0002=%v", h["GP"].Records, h["GP_0002"].Records)
	}
}

func TestLoadAllMissingFile(t *testing.T) {
	if _, err := LoadAll([]string{filepath.Join(t.TempDir(), "nope.hist")}, quietLogger()); err == nil {
		t.Fatalf("expected error for missing artifact")
	}
}

func TestFinalOutcomes(t *testing.T) {
	trials := []*Trial{
		{Name: "a", Records: []Record{{Step: 0, Outcome: []float64{0, 0, 1}}, {Step: 1, Outcome: []float64{1, 1, 2}}}},
		{Name: "empty"},
	}
	got := FinalOutcomes(trials)
	if !reflect.DeepEqual(got, [][]float64{{1, 1, 2}}) {
		t.Fatalf("unexpected final outcomes %v", got)
	}
}

func TestDiscover(t *testing.T) {
	dir := t.TempDir()
	if _, err := Discover(dir); err == nil {
		t.Fatal("expected error for empty directory")
	}
	for _, name := range []string{"b-0002.csv", "a-0001.csv"} {
		if err := os.WriteFile(filepath.Join(dir, name), []byte("trial,step,best_value,outcome\n"), 0644); err != nil {
			t.Fatal(err)
		}
	}
	got, err := Discover(dir)
	if err != nil || len(got) != 2 || filepath.Base(got[0]) != "a-0001.csv" {
		t.Fatalf("unexpected csv discovery %v (%v)", got, err)
	}
	if err := Save(filepath.Join(dir, "run-0003.hist"), History{}); err != nil {
		t.Fatal(err)
	}
	got, err = Discover(dir)
	if err != nil || len(got) != 1 || filepath.Base(got[0]) != "run-0003.hist" {
		t.Fatalf("expected hist artifacts to win, got %v (%v)", got, err)
	}
}

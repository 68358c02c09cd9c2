package render

import (
	"math"
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"gonum.org/v1/plot/plotter"

	"github.com/Noofbiz/pushWorld/landscape"
	"github.com/Noofbiz/pushWorld/quadrant"
	"github.com/Noofbiz/pushWorld/stats"
)

func requireFile(t *testing.T, path string) {
	t.Helper()
	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("expected %s to exist: %v", path, err)
	}
	if info.Size() == 0 {
		t.Fatalf("expected %s to be non-empty", path)
	}
}

func testStyles() Styles {
	return NewStyles([]string{"GP", "uGP", "ERBF"}, map[string]int{"GP": 10, "uGP": 50, "ERBF": 30})
}

func TestStylesOrdered(t *testing.T) {
	s := testStyles()
	got := s.Ordered([]string{"uGP", "unknown", "GP", "ERBF"})
	want := []string{"unknown", "GP", "ERBF", "uGP"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
	if s.Get("GP").Color == s.Get("uGP").Color {
		t.Error("expected distinct colours per model")
	}
}

func TestFiniteXYs(t *testing.T) {
	in := plotter.XYs{{X: 0, Y: 1}, {X: 1, Y: math.NaN()}, {X: math.Inf(1), Y: 0}, {X: 2, Y: 3}}
	got := finiteXYs(in)
	if len(got) != 2 || got[1].X != 2 {
		t.Fatalf("unexpected points %v", got)
	}
}

func TestRegretFigure(t *testing.T) {
	results := map[string]*stats.Result{
		"GP": {Model: "GP", Metric: stats.Regret, Trials: 2, Steps: []stats.StepStat{
			{Step: 0, Mean: 5, Std: math.NaN(), Count: 1},
			{Step: 1, Mean: 4.5, Std: 0.7071, Count: 2},
			{Step: 2, Mean: 3.5, Std: 0.7071, Count: 2},
		}},
		"uGP": {Model: "uGP", Metric: stats.Regret},
	}
	path := filepath.Join(t.TempDir(), "nested", "push_world_result.png")
	err := RegretFigure(path, []MetricPanel{{Metric: stats.Regret, Results: results}}, testStyles())
	if err != nil {
		t.Fatalf("RegretFigure failed: %v", err)
	}
	requireFile(t, path)

	if err := RegretFigure(path, nil, testStyles()); err == nil {
		t.Error("expected error without panels")
	}
}

func TestQuadrantFigure(t *testing.T) {
	points := []quadrant.Point{
		{X: 1, Y: 1, Orientation: 20},
		{X: -1, Y: 2, Orientation: 10},
		{X: -2, Y: -2, Orientation: 40},
		{X: 3, Y: -1, Orientation: 25},
	}
	groups := []QuadrantGroup{
		{Model: "GP", Summary: quadrant.Partition(points, quadrant.All...)},
		{Model: "uGP", Summary: quadrant.Partition(nil, quadrant.All...)},
	}
	path := filepath.Join(t.TempDir(), "push_world_quadrants.png")
	opts := QuadrantOptions{Jitter: 0.2, ColorMin: 15, ColorMax: 30, Seed: 1}
	if err := QuadrantFigure(path, groups, opts); err != nil {
		t.Fatalf("QuadrantFigure failed: %v", err)
	}
	requireFile(t, path)
}

func TestOrientationColorsClamp(t *testing.T) {
	c := newOrientationColors(15, 30)
	if c.At(-100) != c.At(15) || c.At(100) != c.At(30) {
		t.Error("expected out of range orientations to clamp")
	}
}

func TestLandscapeFigure(t *testing.T) {
	mesh := landscape.Mesh{XMin: -6, XMax: 6, YMin: -6, YMax: 6, Step: 0.5, Goals: [][2]float64{{3, 3}, {3, -3}}}
	grid, err := mesh.Sample()
	if err != nil {
		t.Fatalf("Sample failed: %v", err)
	}
	overlays := []Overlay{
		{Name: "GP", Points: plotter.XYs{{X: 2.9, Y: -3.1}, {X: 7, Y: 0}}},
		{Name: "uGP", Points: plotter.XYs{{X: math.NaN(), Y: 0}}},
	}
	path := filepath.Join(t.TempDir(), "push_world_landscape.png")
	if err := LandscapeFigure(path, "landscape", grid, 10, overlays, testStyles()); err != nil {
		t.Fatalf("LandscapeFigure failed: %v", err)
	}
	requireFile(t, path)

	if err := LandscapeFigure(path, "", nil, 10, nil, testStyles()); err == nil {
		t.Error("expected error for nil grid")
	}
}

func TestOrientationScatterKeepsColoursAligned(t *testing.T) {
	colors := newOrientationColors(15, 30)
	xys := plotter.XYs{{X: math.NaN(), Y: 1}, {X: 1, Y: 1}, {X: 2, Y: math.Inf(1)}, {X: 3, Y: 3}}
	orientations := []float64{15, 20, 25, 30}

	sc, err := orientationScatter(xys, orientations, colors)
	if err != nil {
		t.Fatalf("orientationScatter failed: %v", err)
	}
	if len(sc.XYs) != 2 {
		t.Fatalf("expected 2 finite points, got %d", len(sc.XYs))
	}
	if got := sc.GlyphStyleFunc(0).Color; got != colors.At(20) {
		t.Errorf("point 0 coloured %v, want orientation 20 colour %v", got, colors.At(20))
	}
	if got := sc.GlyphStyleFunc(1).Color; got != colors.At(30) {
		t.Errorf("point 1 coloured %v, want orientation 30 colour %v", got, colors.At(30))
	}
}

func TestLandscapeAxesPinnedToMesh(t *testing.T) {
	mesh := landscape.Mesh{XMin: -6, XMax: 6, YMin: -6, YMax: 6, Step: 0.5, Goals: [][2]float64{{3, 3}}}
	grid, err := mesh.Sample()
	if err != nil {
		t.Fatalf("Sample failed: %v", err)
	}
	overlays := []Overlay{{Name: "GP", Points: plotter.XYs{{X: 10, Y: -9}, {X: 0, Y: 0}}}}
	p, err := landscapePlot("", grid, 5, overlays, testStyles())
	if err != nil {
		t.Fatalf("landscapePlot failed: %v", err)
	}
	if p.X.Min != -6 || p.X.Max != 6 || p.Y.Min != -6 || p.Y.Max != 6 {
		t.Fatalf("axes not pinned to mesh: x=[%v,%v] y=[%v,%v]", p.X.Min, p.X.Max, p.Y.Min, p.Y.Max)
	}
}

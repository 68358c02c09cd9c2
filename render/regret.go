package render

import (
	"fmt"
	"math"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"

	"github.com/Noofbiz/pushWorld/stats"
)

// MetricPanel is one row of the regret figure: the aggregated results of a
// metric for every model.
type MetricPanel struct {
	Metric  stats.Metric
	Results map[string]*stats.Result
}

// RegretFigure writes one row per panel with two columns, the per-step mean
// (left) and standard deviation (right) of each model. Models are drawn in
// ascending z-order; steps without a defined value are skipped.
func RegretFigure(path string, panels []MetricPanel, styles Styles) error {
	if len(panels) == 0 {
		return fmt.Errorf("no metric panels")
	}

	plots := make([][]*plot.Plot, len(panels))
	for i, panel := range panels {
		mean, std, err := regretRow(panel, styles)
		if err != nil {
			return fmt.Errorf("%v: %w", panel.Metric, err)
		}
		plots[i] = []*plot.Plot{mean, std}
	}
	return saveTiles(path, plots, 4*vg.Inch, 3*vg.Inch)
}

func regretRow(panel MetricPanel, styles Styles) (*plot.Plot, *plot.Plot, error) {
	mean := plot.New()
	std := plot.New()
	mean.X.Label.Text = "step"
	std.X.Label.Text = "step"
	mean.Y.Label.Text = panel.Metric.String() + "(mean)"
	std.Y.Label.Text = panel.Metric.String() + "(std)"
	mean.Legend.Top = true
	std.Legend.Top = true

	maxStep := 0.0
	for _, model := range styles.Ordered(stats.Models(panel.Results)) {
		res := panel.Results[model]
		if len(res.Steps) == 0 {
			continue
		}
		meanXY := make(plotter.XYs, 0, len(res.Steps))
		stdXY := make(plotter.XYs, 0, len(res.Steps))
		for _, s := range res.Steps {
			x := float64(s.Step)
			meanXY = append(meanXY, plotter.XY{X: x, Y: s.Mean})
			stdXY = append(stdXY, plotter.XY{X: x, Y: s.Std})
			maxStep = math.Max(maxStep, x)
		}

		st := styles.Get(model)
		for _, target := range []struct {
			p   *plot.Plot
			xys plotter.XYs
		}{{mean, finiteXYs(meanXY)}, {std, finiteXYs(stdXY)}} {
			if len(target.xys) == 0 {
				continue
			}
			line, err := plotter.NewLine(target.xys)
			if err != nil {
				return nil, nil, err
			}
			line.Color = st.Color
			line.Dashes = st.Dashes
			line.Width = st.Width
			target.p.Add(line)
			target.p.Legend.Add(model, line)
		}
	}

	if maxStep > 0 {
		mean.X.Min, mean.X.Max = 0, maxStep
		std.X.Min, std.X.Max = 0, maxStep
	}
	return mean, std, nil
}

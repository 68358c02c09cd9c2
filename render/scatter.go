package render

import (
	"fmt"
	"image/color"
	"math"
	"math/rand"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/palette"
	"gonum.org/v1/plot/palette/moreland"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"

	"github.com/Noofbiz/pushWorld/quadrant"
)

// QuadrantGroup is the quadrant partition of one model's final outcomes.
type QuadrantGroup struct {
	Model   string
	Summary quadrant.Summary
}

// QuadrantOptions tunes the quadrant scatter.
type QuadrantOptions struct {
	// Jitter is the half-width of the uniform noise added to x and y so
	// overlapping outcomes stay visible.
	Jitter float64

	// ColorMin and ColorMax bound the orientation colour scale.
	ColorMin, ColorMax float64

	// Limit is the half-width of the square viewport.
	Limit float64

	Seed int64
}

// orientationColors maps orientation values to colours, clamping to the
// configured range.
type orientationColors struct {
	cm palette.ColorMap
}

func newOrientationColors(lo, hi float64) orientationColors {
	cm := moreland.SmoothBlueRed()
	if hi <= lo {
		hi = lo + 1
	}
	cm.SetMin(lo)
	cm.SetMax(hi)
	return orientationColors{cm: cm}
}

func (o orientationColors) At(v float64) color.Color {
	v = math.Max(o.cm.Min(), math.Min(o.cm.Max(), v))
	c, err := o.cm.At(v)
	if err != nil {
		return color.Black
	}
	return c
}

// QuadrantFigure writes one panel per group with the final robot positions
// of every reported quadrant, coloured by orientation and titled with the
// quadrant description.
func QuadrantFigure(path string, groups []QuadrantGroup, opts QuadrantOptions) error {
	if len(groups) == 0 {
		return fmt.Errorf("no quadrant groups")
	}
	if opts.Limit <= 0 {
		opts.Limit = 5.5
	}
	rng := rand.New(rand.NewSource(opts.Seed))
	colors := newOrientationColors(opts.ColorMin, opts.ColorMax)

	row := make([]*plot.Plot, len(groups))
	for i, g := range groups {
		p := plot.New()
		p.Title.Text = g.Summary.Describe(g.Model)
		p.X.Min, p.X.Max = -opts.Limit, opts.Limit
		p.Y.Min, p.Y.Max = -opts.Limit, opts.Limit
		if err := axisLines(p, -opts.Limit, opts.Limit); err != nil {
			return err
		}

		for _, b := range g.Summary.Buckets {
			if b.Count == 0 {
				continue
			}
			xys := make(plotter.XYs, len(b.Points))
			orientations := make([]float64, len(b.Points))
			for j, pt := range b.Points {
				xys[j] = plotter.XY{
					X: pt.X + (rng.Float64()*2-1)*opts.Jitter,
					Y: pt.Y + (rng.Float64()*2-1)*opts.Jitter,
				}
				orientations[j] = pt.Orientation
			}
			sc, err := orientationScatter(xys, orientations, colors)
			if err != nil {
				return fmt.Errorf("%s %v: %w", g.Model, b.Quadrant, err)
			}
			p.Add(sc)
		}

		for _, q := range quadrant.All {
			x, y := quadrantLabelAt(q, opts.Limit)
			labels, err := plotter.NewLabels(plotter.XYLabels{
				XYs:    []plotter.XY{{X: x, Y: y}},
				Labels: []string{q.String()},
			})
			if err != nil {
				return err
			}
			p.Add(labels)
		}
		row[i] = p
	}
	return saveTiles(path, [][]*plot.Plot{row}, 4*vg.Inch, 4*vg.Inch)
}

// orientationScatter builds a scatter of xys where point j is coloured by
// orientations[j]. Non-finite points are dropped together with their
// orientation.
func orientationScatter(xys plotter.XYs, orientations []float64, colors orientationColors) (*plotter.Scatter, error) {
	kept := make(plotter.XYs, 0, len(xys))
	fills := make([]color.Color, 0, len(xys))
	for j, pt := range xys {
		if !finite(pt) {
			continue
		}
		kept = append(kept, pt)
		fills = append(fills, colors.At(orientations[j]))
	}
	sc, err := plotter.NewScatter(kept)
	if err != nil {
		return nil, err
	}
	sc.GlyphStyleFunc = func(j int) draw.GlyphStyle {
		return draw.GlyphStyle{
			Color:  fills[j],
			Radius: vg.Points(3),
			Shape:  draw.CircleGlyph{},
		}
	}
	return sc, nil
}

func quadrantLabelAt(q quadrant.Quadrant, limit float64) (float64, float64) {
	off := limit * 0.6
	switch q {
	case quadrant.Q1:
		return off, off
	case quadrant.Q2:
		return -off, off
	case quadrant.Q3:
		return -off, -off
	}
	return off, -off
}

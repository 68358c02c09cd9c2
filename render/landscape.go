package render

import (
	"fmt"
	"image/color"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/palette"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/plotutil"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"

	"github.com/Noofbiz/pushWorld/landscape"
)

// Overlay is a named set of (x, y) points drawn over the landscape.
type Overlay struct {
	Name   string
	Points plotter.XYs
}

// LandscapeFigure draws the sampled landscape as a heat map with contour
// lines and the overlays scattered on top, one colour per overlay. The axes
// are pinned to the mesh range so figures of different models line up;
// overlay points outside it are clipped.
func LandscapeFigure(path string, title string, grid *landscape.Grid, levels int, overlays []Overlay, styles Styles) error {
	p, err := landscapePlot(title, grid, levels, overlays, styles)
	if err != nil {
		return err
	}
	return saveTiles(path, [][]*plot.Plot{{p}}, 6*vg.Inch, 6*vg.Inch)
}

func landscapePlot(title string, grid *landscape.Grid, levels int, overlays []Overlay, styles Styles) (*plot.Plot, error) {
	if grid == nil {
		return nil, fmt.Errorf("nil landscape grid")
	}
	cols, rows := grid.Dims()
	if cols == 0 || rows == 0 {
		return nil, fmt.Errorf("empty landscape grid")
	}

	p := plot.New()
	p.Title.Text = title
	p.X.Label.Text = "x"
	p.Y.Label.Text = "y"

	heat := plotter.NewHeatMap(grid, palette.Heat(32, 1))
	p.Add(heat)

	if levels > 0 {
		contour := plotter.NewContour(grid, grid.Levels(levels), palette.Heat(levels, 1))
		contour.LineStyles = []draw.LineStyle{{
			Color: color.Gray{Y: 60},
			Width: vg.Points(0.5),
		}}
		p.Add(contour)
	}

	for i, o := range overlays {
		pts := finiteXYs(o.Points)
		if len(pts) == 0 {
			continue
		}
		sc, err := plotter.NewScatter(pts)
		if err != nil {
			return nil, fmt.Errorf("overlay %s: %w", o.Name, err)
		}
		st := styles.Get(o.Name)
		sc.GlyphStyle.Color = st.Color
		sc.GlyphStyle.Radius = vg.Points(2)
		sc.GlyphStyle.Shape = plotutil.Shape(i)
		p.Add(sc)
		p.Legend.Add(o.Name, sc)
	}

	p.X.Min, p.X.Max, p.Y.Min, p.Y.Max = grid.Bounds()
	return p, nil
}

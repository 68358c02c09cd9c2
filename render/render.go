package render

import (
	"fmt"
	"image/color"
	"math"
	"os"
	"path/filepath"
	"sort"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/plotutil"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
	"gonum.org/v1/plot/vg/vgimg"
)

// Style is the visual identity of a model across all figures.
type Style struct {
	Color  color.Color
	Dashes []vg.Length
	Width  vg.Length

	// ZOrder controls drawing order: higher values are drawn later (on top).
	ZOrder int
}

// Styles maps model names to their style.
type Styles map[string]Style

// NewStyles assigns colours and dash patterns by position in models, starting
// at the second entry of the plotutil palettes, with the given z-orders.
func NewStyles(models []string, zorders map[string]int) Styles {
	s := make(Styles, len(models))
	for i, m := range models {
		s[m] = Style{
			Color:  plotutil.Color(i + 1),
			Dashes: plotutil.Dashes(i + 1),
			Width:  vg.Points(1.5),
			ZOrder: zorders[m],
		}
	}
	return s
}

// Get returns the style of model, falling back to a grey solid line.
func (s Styles) Get(model string) Style {
	if st, ok := s[model]; ok {
		return st
	}
	return Style{Color: color.RGBA{R: 120, G: 120, B: 120, A: 255}, Width: vg.Points(1)}
}

// Ordered sorts names by ascending z-order, then by name.
func (s Styles) Ordered(names []string) []string {
	out := append([]string(nil), names...)
	sort.SliceStable(out, func(i, j int) bool {
		zi, zj := s.Get(out[i]).ZOrder, s.Get(out[j]).ZOrder
		if zi != zj {
			return zi < zj
		}
		return out[i] < out[j]
	})
	return out
}

// finiteXYs drops points with a NaN or infinite coordinate; gonum plotters
// reject them.
func finiteXYs(xys plotter.XYs) plotter.XYs {
	out := make(plotter.XYs, 0, len(xys))
	for _, p := range xys {
		if finite(p) {
			out = append(out, p)
		}
	}
	return out
}

func finite(p plotter.XY) bool {
	return !math.IsNaN(p.X) && !math.IsNaN(p.Y) && !math.IsInf(p.X, 0) && !math.IsInf(p.Y, 0)
}

// axisLines adds dashed grey lines through the origin.
func axisLines(p *plot.Plot, lo, hi float64) error {
	for _, pts := range []plotter.XYs{
		{{X: 0, Y: lo}, {X: 0, Y: hi}},
		{{X: lo, Y: 0}, {X: hi, Y: 0}},
	} {
		l, err := plotter.NewLine(pts)
		if err != nil {
			return err
		}
		l.Color = color.RGBA{R: 128, G: 128, B: 128, A: 128}
		l.Width = vg.Points(1)
		l.Dashes = []vg.Length{vg.Points(4), vg.Points(2)}
		p.Add(l)
	}
	return nil
}

// saveTiles aligns plots on a rows x cols grid and writes them as a single
// PNG. Nil entries leave an empty tile.
func saveTiles(path string, plots [][]*plot.Plot, tileW, tileH vg.Length) error {
	rows := len(plots)
	if rows == 0 {
		return fmt.Errorf("no plots to save")
	}
	cols := len(plots[0])

	img := vgimg.New(tileW*vg.Length(cols), tileH*vg.Length(rows))
	dc := draw.New(img)
	tiles := draw.Tiles{
		Rows: rows,
		Cols: cols,
		PadX: vg.Millimeter,
		PadY: vg.Millimeter,
	}
	canvases := plot.Align(plots, tiles, dc)
	for r := range plots {
		for c := range plots[r] {
			if plots[r][c] != nil {
				plots[r][c].Draw(canvases[r][c])
			}
		}
	}

	if err := ensureDir(filepath.Dir(path)); err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer f.Close()
	png := vgimg.PngCanvas{Canvas: img}
	if _, err := png.WriteTo(f); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return f.Close()
}

func ensureDir(path string) error {
	if path == "" || path == "." {
		return nil
	}
	return os.MkdirAll(path, 0755)
}

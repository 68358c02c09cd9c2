package landscape

import (
	"fmt"
	"math"
)

// Mesh describes the rectangular area sampled for the push-world landscape
// and the goal positions the objective is measured against.
type Mesh struct {
	XMin, XMax float64
	YMin, YMax float64
	Step       float64
	Goals      [][2]float64
}

// Distance returns the Euclidean distance from (x, y) to the nearest goal.
func Distance(goals [][2]float64, x, y float64) float64 {
	best := math.Inf(1)
	for _, g := range goals {
		best = math.Min(best, math.Hypot(x-g[0], y-g[1]))
	}
	return best
}

// Grid is the sampled landscape. It implements gonum's plotter.GridXYZ.
type Grid struct {
	mesh   Mesh
	xs, ys []float64
	// z[r][c] is the value at (xs[c], ys[r])
	z [][]float64
}

// axis mirrors numpy.arange: start, start+step, ... strictly below stop.
func axis(start, stop, step float64) []float64 {
	n := int(math.Ceil((stop-start)/step - 1e-9))
	out := make([]float64, 0, n)
	for i := 0; i < n; i++ {
		out = append(out, start+float64(i)*step)
	}
	return out
}

// Sample evaluates the distance to the nearest goal on every mesh point.
func (m Mesh) Sample() (*Grid, error) {
	if m.Step <= 0 {
		return nil, fmt.Errorf("mesh step must be > 0, got %v", m.Step)
	}
	if m.XMax <= m.XMin || m.YMax <= m.YMin {
		return nil, fmt.Errorf("empty mesh range x=[%v,%v) y=[%v,%v)", m.XMin, m.XMax, m.YMin, m.YMax)
	}
	if len(m.Goals) == 0 {
		return nil, fmt.Errorf("mesh needs at least one goal")
	}

	g := &Grid{
		mesh: m,
		xs:   axis(m.XMin, m.XMax, m.Step),
		ys:   axis(m.YMin, m.YMax, m.Step),
	}
	g.z = make([][]float64, len(g.ys))
	for r, y := range g.ys {
		row := make([]float64, len(g.xs))
		for c, x := range g.xs {
			row[c] = Distance(m.Goals, x, y)
		}
		g.z[r] = row
	}
	return g, nil
}

// Dims returns the number of columns and rows of the grid.
func (g *Grid) Dims() (c, r int) { return len(g.xs), len(g.ys) }

// Z returns the landscape value at column c, row r.
func (g *Grid) Z(c, r int) float64 { return g.z[r][c] }

// X returns the x coordinate of column c.
func (g *Grid) X(c int) float64 { return g.xs[c] }

// Y returns the y coordinate of row r.
func (g *Grid) Y(r int) float64 { return g.ys[r] }

// Bounds returns the range of the sampled mesh.
func (g *Grid) Bounds() (xmin, xmax, ymin, ymax float64) {
	return g.mesh.XMin, g.mesh.XMax, g.mesh.YMin, g.mesh.YMax
}

// Range returns the smallest and largest values of the grid.
func (g *Grid) Range() (lo, hi float64) {
	lo, hi = math.Inf(1), math.Inf(-1)
	for _, row := range g.z {
		for _, v := range row {
			lo = math.Min(lo, v)
			hi = math.Max(hi, v)
		}
	}
	return lo, hi
}

// Levels returns n contour levels evenly spaced strictly inside the grid's
// value range.
func (g *Grid) Levels(n int) []float64 {
	if n <= 0 {
		return nil
	}
	lo, hi := g.Range()
	step := (hi - lo) / float64(n+1)
	levels := make([]float64, n)
	for i := range levels {
		levels[i] = lo + float64(i+1)*step
	}
	return levels
}

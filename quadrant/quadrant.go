package quadrant

import (
	"fmt"
	"math"
	"strings"
)

// Quadrant is a sign-based region of the (x, y) plane.
type Quadrant int

const (
	Q1 Quadrant = iota + 1 // x>0, y>0
	Q2                     // x<0, y>0
	Q3                     // x<0, y<0
	Q4                     // x>0, y<0
)

// All lists the four quadrants in their conventional order.
var All = []Quadrant{Q1, Q2, Q3, Q4}

func (q Quadrant) String() string {
	if q >= Q1 && q <= Q4 {
		return fmt.Sprintf("Q%d", int(q))
	}
	return fmt.Sprintf("Quadrant(%d)", int(q))
}

// ParseQuadrant accepts "Q1".."Q4" (case-insensitive).
func ParseQuadrant(s string) (Quadrant, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "Q1":
		return Q1, nil
	case "Q2":
		return Q2, nil
	case "Q3":
		return Q3, nil
	case "Q4":
		return Q4, nil
	}
	return 0, fmt.Errorf("unknown quadrant %q", s)
}

// Contains reports whether (x, y) lies strictly inside q. Points on an axis
// belong to no quadrant.
func (q Quadrant) Contains(x, y float64) bool {
	switch q {
	case Q1:
		return x > 0 && y > 0
	case Q2:
		return x < 0 && y > 0
	case Q3:
		return x < 0 && y < 0
	case Q4:
		return x > 0 && y < 0
	}
	return false
}

// Point is the final outcome of a trial: robot position, push orientation
// and an optional extra scalar (e.g. push duration).
type Point struct {
	X, Y        float64
	Orientation float64
	Extra       float64
	HasExtra    bool
}

// PointFromOutcome builds a Point from an outcome vector laid out as
// [x, y, orientation, extra...]. ok is false when v has fewer than three
// components.
func PointFromOutcome(v []float64) (p Point, ok bool) {
	if len(v) < 3 {
		return Point{}, false
	}
	p = Point{X: v[0], Y: v[1], Orientation: v[2]}
	if len(v) > 3 {
		p.Extra = v[3]
		p.HasExtra = true
	}
	return p, true
}

// Moments is a mean and sample standard deviation. Both are NaN for an
// empty sample, Std is NaN for a single value.
type Moments struct {
	Mean float64
	Std  float64
}

func moments(xs []float64) Moments {
	m := Moments{Mean: math.NaN(), Std: math.NaN()}
	if len(xs) == 0 {
		return m
	}
	sum := 0.0
	for _, x := range xs {
		sum += x
	}
	m.Mean = sum / float64(len(xs))
	if len(xs) > 1 {
		sq := 0.0
		for _, x := range xs {
			d := x - m.Mean
			sq += d * d
		}
		m.Std = math.Sqrt(sq / float64(len(xs)-1))
	}
	return m
}

// Bucket summarizes the points of one quadrant.
type Bucket struct {
	Quadrant Quadrant
	Points   []Point
	Count    int

	// Percent is Count relative to the group total, 0 when the total is 0.
	Percent float64

	Orientation Moments

	// Extra is only meaningful when HasExtra is set.
	Extra    Moments
	HasExtra bool
}

// Summary is the partition of a group of points.
type Summary struct {
	Total   int
	Buckets []Bucket
}

// Partition counts points into the requested quadrants, in the given order.
// With no quadrants all four are used. Percentages are relative to the total
// number of points, including those on an axis or in a quadrant that was
// not requested.
func Partition(points []Point, quadrants ...Quadrant) Summary {
	if len(quadrants) == 0 {
		quadrants = All
	}
	s := Summary{Total: len(points), Buckets: make([]Bucket, 0, len(quadrants))}

	for _, q := range quadrants {
		b := Bucket{Quadrant: q}
		var orient, extra []float64
		for _, p := range points {
			if !q.Contains(p.X, p.Y) {
				continue
			}
			b.Points = append(b.Points, p)
			orient = append(orient, p.Orientation)
			if p.HasExtra {
				extra = append(extra, p.Extra)
				b.HasExtra = true
			}
		}
		b.Count = len(b.Points)
		if s.Total > 0 {
			b.Percent = float64(b.Count) * 100.0 / float64(s.Total)
		}
		b.Orientation = moments(orient)
		if b.HasExtra {
			b.Extra = moments(extra)
		}
		s.Buckets = append(s.Buckets, b)
	}
	return s
}

// Bucket returns the bucket of q, if it was requested.
func (s Summary) Bucket(q Quadrant) (Bucket, bool) {
	for _, b := range s.Buckets {
		if b.Quadrant == q {
			return b, true
		}
	}
	return Bucket{}, false
}

// Describe renders the summary the way it is shown as a figure title:
//
//	GP, total=5
//	 [Q1] count:2(40.00%), rt=20.00+-1.41
func (s Summary) Describe(model string) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "%s, total=%d", model, s.Total)
	for _, b := range s.Buckets {
		fmt.Fprintf(&sb, "\n [%s] count:%d(%.2f%%), rt=%.2f+-%.2f",
			b.Quadrant, b.Count, b.Percent, b.Orientation.Mean, b.Orientation.Std)
		if b.HasExtra {
			fmt.Fprintf(&sb, ", ra=%.3f+-%.3f", b.Extra.Mean, b.Extra.Std)
		}
	}
	return sb.String()
}

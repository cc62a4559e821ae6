package geometry

import (
	"fmt"
	"math"
)

// Point is an immutable planar coordinate in meters.
type Point struct {
	X float64 `json:"x" yaml:"x"`
	Y float64 `json:"y" yaml:"y"`
}

// Pt is shorthand for Point{X: x, Y: y}.
func Pt(x, y float64) Point {
	return Point{X: x, Y: y}
}

// Distance returns the Euclidean distance between p and q.
func (p Point) Distance(q Point) float64 {
	return math.Hypot(p.X-q.X, p.Y-q.Y)
}

// String implements fmt.Stringer.
func (p Point) String() string {
	return fmt.Sprintf("(%g, %g)", p.X, p.Y)
}

// Lerp returns the point at parameter t on the segment from a to b.
// t = 0 yields a and t = 1 yields b.
func Lerp(a, b Point, t float64) Point {
	return Point{
		X: b.X*t + a.X*(1-t),
		Y: b.Y*t + a.Y*(1-t),
	}
}

// Reversed returns a reversed copy of pts.
func Reversed(pts []Point) []Point {
	out := make([]Point, len(pts))
	for i, p := range pts {
		out[len(pts)-1-i] = p
	}
	return out
}

// Pose is a robot position with heading (radians).
type Pose struct {
	X     float64 `json:"x" yaml:"x"`
	Y     float64 `json:"y" yaml:"y"`
	Theta float64 `json:"theta" yaml:"theta"`
}

// Point drops the heading.
func (p Pose) Point() Point {
	return Point{X: p.X, Y: p.Y}
}

// Region is a disc used as an arrival target.
type Region struct {
	Center Point   `json:"center" yaml:"center"`
	Radius float64 `json:"radius" yaml:"radius"`
}

// Contains reports whether p lies strictly inside the region.
func (r Region) Contains(p Point) bool {
	return r.Center.Distance(p) < r.Radius
}

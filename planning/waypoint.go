package planning

import (
	"errors"
	"fmt"

	"github.com/zero-day-ai/navplan/geometry"
	"github.com/zero-day-ai/navplan/passage"
)

// WaypointKind discriminates the Waypoint variants.
type WaypointKind int

const (
	// RegionStop requires the robot to enter a disc.
	RegionStop WaypointKind = iota
	// SubPath is a corridor traversed vertex by vertex.
	SubPath
	// Intersection is a named junction of the collapsed graph.
	Intersection
	// Passage is a labelled corridor between two intersections.
	Passage
)

// String implements fmt.Stringer.
func (k WaypointKind) String() string {
	switch k {
	case RegionStop:
		return "region"
	case SubPath:
		return "subpath"
	case Intersection:
		return "intersection"
	case Passage:
		return "passage"
	default:
		return fmt.Sprintf("WaypointKind(%d)", int(k))
	}
}

// ErrEmptyWaypoint is returned when a path-carrying waypoint is built
// without points.
var ErrEmptyWaypoint = errors.New("waypoint path is empty")

// Waypoint is one element of a Plan. Only the accessors for its Kind carry
// meaning; the others return zero values.
type Waypoint struct {
	kind        WaypointKind
	region      geometry.Region
	points      []geometry.Point
	centroid    geometry.Point
	label       int
	grid        []passage.Cell
	orientation passage.Orientation

	// seq is the position in the built plan, -1 for ad-hoc detours.
	seq int
}

// NewRegionStop returns a RegionStop waypoint.
func NewRegionStop(center geometry.Point, radius float64) Waypoint {
	return Waypoint{
		kind:   RegionStop,
		region: geometry.Region{Center: center, Radius: radius},
		seq:    -1,
	}
}

// NewSubPath returns a SubPath waypoint over a copy of points.
func NewSubPath(points []geometry.Point) (Waypoint, error) {
	if len(points) == 0 {
		return Waypoint{}, ErrEmptyWaypoint
	}
	return Waypoint{kind: SubPath, points: clonePoints(points), seq: -1}, nil
}

// NewIntersection returns an Intersection waypoint. The connecting path is
// empty until a through-sequence is spliced onto it.
func NewIntersection(label int, centroid geometry.Point, grid []passage.Cell) Waypoint {
	return Waypoint{
		kind:     Intersection,
		label:    label,
		centroid: centroid,
		grid:     grid,
		seq:      -1,
	}
}

// NewPassage returns a Passage waypoint over a copy of points.
func NewPassage(label int, points []geometry.Point, centroid geometry.Point, orientation passage.Orientation, grid []passage.Cell) (Waypoint, error) {
	if len(points) == 0 {
		return Waypoint{}, fmt.Errorf("passage %d: %w", label, ErrEmptyWaypoint)
	}
	return Waypoint{
		kind:        Passage,
		points:      clonePoints(points),
		label:       label,
		centroid:    centroid,
		orientation: orientation,
		grid:        grid,
		seq:         -1,
	}, nil
}

// Kind returns the variant.
func (w Waypoint) Kind() WaypointKind { return w.kind }

// Region returns the disc of a RegionStop.
func (w Waypoint) Region() geometry.Region { return w.region }

// Points returns a copy of the path of a SubPath or Passage, or the
// connecting path of an Intersection.
func (w Waypoint) Points() []geometry.Point { return clonePoints(w.points) }

// Centroid returns the averaged position of an Intersection or Passage.
func (w Waypoint) Centroid() geometry.Point { return w.centroid }

// Label returns the intersection or passage label.
func (w Waypoint) Label() int { return w.label }

// Grid returns the map cells of an Intersection or Passage.
func (w Waypoint) Grid() []passage.Cell {
	if w.grid == nil {
		return nil
	}
	out := make([]passage.Cell, len(w.grid))
	copy(out, w.grid)
	return out
}

// Orientation returns the orientation of a Passage.
func (w Waypoint) Orientation() passage.Orientation { return w.orientation }

// Seq returns the position of the waypoint in the built plan, or -1 for an
// ad-hoc detour.
func (w Waypoint) Seq() int { return w.seq }

// IsAdhoc reports whether the waypoint was inserted after the plan was built.
func (w Waypoint) IsAdhoc() bool { return w.seq < 0 }

// Target is the point a robot steers toward to make progress on w.
func (w Waypoint) Target() geometry.Point {
	switch w.kind {
	case RegionStop:
		return w.region.Center
	case Intersection:
		return w.centroid
	default:
		return w.points[len(w.points)-1]
	}
}

// hasPath reports whether progress on w is measured along its points.
func (w Waypoint) hasPath() bool {
	return w.kind == SubPath || w.kind == Passage
}

// flatten appends the points a caller would draw for w.
func (w Waypoint) flatten(dst []geometry.Point) []geometry.Point {
	switch w.kind {
	case RegionStop:
		return append(dst, w.region.Center)
	case Intersection:
		return append(dst, w.centroid)
	default:
		return append(dst, w.points...)
	}
}

// String implements fmt.Stringer.
func (w Waypoint) String() string {
	switch w.kind {
	case RegionStop:
		return fmt.Sprintf("region%s r=%g", w.region.Center, w.region.Radius)
	case Intersection:
		return fmt.Sprintf("intersection#%d%s", w.label, w.centroid)
	case Passage:
		return fmt.Sprintf("passage#%d[%d pts, %s]", w.label, len(w.points), w.orientation)
	default:
		return fmt.Sprintf("subpath[%d pts]", len(w.points))
	}
}

func clonePoints(pts []geometry.Point) []geometry.Point {
	if pts == nil {
		return nil
	}
	out := make([]geometry.Point, len(pts))
	copy(out, pts)
	return out
}

package geometry

import "math"

// DefaultMaxRange is the longest distance, in meters, at which a laser
// snapshot can confirm line of sight.
const DefaultMaxRange = 20.0

// Visibility answers line-of-sight queries against one sensor snapshot.
type Visibility interface {
	// PointVisible reports whether the straight line from observer to
	// target is unobstructed.
	PointVisible(observer, target Point) bool
}

// VisibilityFunc adapts an ordinary function to the Visibility interface.
type VisibilityFunc func(observer, target Point) bool

// PointVisible calls f(observer, target).
func (f VisibilityFunc) PointVisible(observer, target Point) bool {
	return f(observer, target)
}

// ClearView is a Visibility that never reports an obstruction.
var ClearView Visibility = VisibilityFunc(func(Point, Point) bool { return true })

// LaserScan is a planar range scan expressed relative to the robot heading.
type LaserScan struct {
	AngleMin       float64   `json:"angle_min" yaml:"angle_min"`
	AngleIncrement float64   `json:"angle_increment" yaml:"angle_increment"`
	RangeMax       float64   `json:"range_max" yaml:"range_max"`
	Ranges         []float64 `json:"ranges" yaml:"ranges"`
}

// Endpoints converts the scan into map-frame obstacle endpoints as seen from
// pose. Readings that are NaN, infinite or beyond RangeMax are clamped to
// RangeMax when it is set.
func (s LaserScan) Endpoints(pose Pose) []Point {
	out := make([]Point, 0, len(s.Ranges))
	angle := pose.Theta + s.AngleMin
	for _, r := range s.Ranges {
		if math.IsNaN(r) || math.IsInf(r, 0) || (s.RangeMax > 0 && r > s.RangeMax) {
			r = s.RangeMax
		}
		out = append(out, Point{
			X: pose.X + r*math.Cos(angle),
			Y: pose.Y + r*math.Sin(angle),
		})
		angle += s.AngleIncrement
	}
	return out
}

// Snapshot is a set of laser endpoints captured at one position.
// It is immutable once created.
type Snapshot struct {
	origin    Point
	endpoints []Point
	maxRange  float64
}

// NewSnapshot copies endpoints into a new snapshot taken at origin.
// A non-positive maxRange selects DefaultMaxRange.
func NewSnapshot(origin Point, endpoints []Point, maxRange float64) *Snapshot {
	if maxRange <= 0 {
		maxRange = DefaultMaxRange
	}
	cp := make([]Point, len(endpoints))
	copy(cp, endpoints)
	return &Snapshot{origin: origin, endpoints: cp, maxRange: maxRange}
}

// Origin returns the position the snapshot was taken from.
func (s *Snapshot) Origin() Point {
	return s.origin
}

// Endpoints returns a copy of the laser endpoints.
func (s *Snapshot) Endpoints() []Point {
	cp := make([]Point, len(s.endpoints))
	copy(cp, s.endpoints)
	return cp
}

// PointVisible finds the laser beam closest in bearing to target and reports
// whether target lies in front of that beam's endpoint and within range.
func (s *Snapshot) PointVisible(observer, target Point) bool {
	d := observer.Distance(target)
	if d > s.maxRange {
		return false
	}
	if d == 0 {
		return true
	}
	if len(s.endpoints) == 0 {
		return false
	}

	bearing := math.Atan2(target.Y-observer.Y, target.X-observer.X)
	best := -1
	bestDiff := math.Inf(1)
	for i, e := range s.endpoints {
		diff := math.Abs(angleDiff(math.Atan2(e.Y-observer.Y, e.X-observer.X), bearing))
		if diff < bestDiff {
			bestDiff = diff
			best = i
		}
	}

	return observer.Distance(s.endpoints[best]) > d
}

// angleDiff returns a-b normalized to [-pi, pi].
func angleDiff(a, b float64) float64 {
	d := math.Mod(a-b, 2*math.Pi)
	if d > math.Pi {
		d -= 2 * math.Pi
	} else if d < -math.Pi {
		d += 2 * math.Pi
	}
	return d
}

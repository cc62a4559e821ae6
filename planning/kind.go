package planning

import (
	"fmt"
	"strings"
)

// PlanKind selects the plan representation produced by the Builder.
type PlanKind int

const (
	// Flat plans hold one single-point waypoint per graph node.
	Flat PlanKind = iota
	// Skeleton plans alternate regions and corridor sub-paths.
	Skeleton
	// HallwaySkeleton plans add intersections and passages from the
	// collapsed graph.
	HallwaySkeleton
)

// String implements fmt.Stringer. The names match planner names.
func (k PlanKind) String() string {
	switch k {
	case Flat:
		return "flat"
	case Skeleton:
		return "skeleton"
	case HallwaySkeleton:
		return "hallwayskel"
	default:
		return fmt.Sprintf("PlanKind(%d)", int(k))
	}
}

// ParsePlanKind maps a planner name to a PlanKind. Any name other than
// "skeleton" or "hallwayskel" is a flat planner.
func ParsePlanKind(name string) PlanKind {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "skeleton":
		return Skeleton
	case "hallwayskel", "hallway_skeleton", "hallwayskeleton":
		return HallwaySkeleton
	default:
		return Flat
	}
}

// MarshalText implements encoding.TextMarshaler.
func (k PlanKind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (k *PlanKind) UnmarshalText(text []byte) error {
	*k = ParsePlanKind(string(text))
	return nil
}

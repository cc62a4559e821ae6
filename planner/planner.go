// Package planner defines the path planner consumed by tasks and a scripted
// implementation for tests and simulations.
//
// Planners work in centimeters. Callers convert positions at this boundary;
// graphs returned by a planner already report node coordinates in meters.
package planner

import (
	"github.com/zero-day-ai/navplan/geometry"
	"github.com/zero-day-ai/navplan/navgraph"
	"github.com/zero-day-ai/navplan/planning"
)

// Planner turns a source and target into graph index paths.
type Planner interface {
	// Name identifies the planner, e.g. "skeleton" or "hallwayskel".
	Name() string

	// Kind is the plan representation built from this planner's output.
	Kind() planning.PlanKind

	// Graph is the graph the index paths refer to.
	Graph() navgraph.Graph

	// SetSource and SetTarget take centimeters.
	SetSource(x, y float64)
	SetTarget(x, y float64)

	// ComputePath runs the search and reports whether a path was found.
	ComputePath() bool

	// IndexPaths returns the computed paths, best first.
	IndexPaths() [][]int

	// PathCost returns the cost of the best path.
	PathCost() float64

	// ResetPath discards the computed paths.
	ResetPath()
}

// OriginalGraphPlanner is implemented by planners that also search the
// original fine-grained graph.
type OriginalGraphPlanner interface {
	Planner

	// OriginalGraph is the fine-grained graph.
	OriginalGraph() navgraph.Graph

	// OriginalPaths returns the prologue and epilogue index paths that lead
	// onto and off the collapsed-graph path.
	OriginalPaths() (prologue, epilogue []int)

	// OriginalPathCost returns the cost of the last original-graph search.
	OriginalPathCost() float64

	// ComputeOriginalPath searches the original graph directly.
	ComputeOriginalPath() bool

	// OriginalPath returns the result of ComputeOriginalPath.
	OriginalPath() []int

	// ResetOriginalPath discards original-graph results.
	ResetOriginalPath()

	// OriginalCostOf measures an index path of Graph in the original graph.
	OriginalCostOf(indices []int) float64

	// CostOf measures an index path of OriginalGraph in Graph.
	CostOf(indices []int) float64
}

// ToPlanner converts meters to planner centimeters.
func ToPlanner(p geometry.Point) (x, y float64) {
	return p.X * navgraph.CentimetersPerMeter, p.Y * navgraph.CentimetersPerMeter
}

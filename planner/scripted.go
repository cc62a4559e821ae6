package planner

import (
	"sync"

	"github.com/zero-day-ai/navplan/geometry"
	"github.com/zero-day-ai/navplan/navgraph"
	"github.com/zero-day-ai/navplan/planning"
)

// CostFunc measures an index path.
type CostFunc func(indices []int) float64

// Scripted replays preconfigured paths. It records the source and target it
// was given so callers can check unit conversion.
type Scripted struct {
	mu sync.Mutex

	name  string
	kind  planning.PlanKind
	graph navgraph.Graph
	paths [][]int
	cost  float64

	original     navgraph.Graph
	prologue     []int
	epilogue     []int
	originalCost float64
	route        []int
	routeCost    float64
	originalOf   CostFunc
	costOf       CostFunc

	source   geometry.Point
	target   geometry.Point
	computed bool
	routed   bool
	calls    int
}

var _ OriginalGraphPlanner = (*Scripted)(nil)

// ScriptedOption configures a Scripted planner.
type ScriptedOption func(*Scripted)

// WithPaths sets the index paths returned by ComputePath and their cost.
func WithPaths(cost float64, paths ...[]int) ScriptedOption {
	return func(s *Scripted) {
		s.paths = paths
		s.cost = cost
	}
}

// WithOriginalGraph sets the fine-grained graph together with the prologue
// and epilogue paths and their combined cost.
func WithOriginalGraph(g navgraph.Graph, prologue, epilogue []int, cost float64) ScriptedOption {
	return func(s *Scripted) {
		s.original = g
		s.prologue = prologue
		s.epilogue = epilogue
		s.originalCost = cost
	}
}

// WithOriginalRoute sets the path returned by ComputeOriginalPath.
func WithOriginalRoute(cost float64, route []int) ScriptedOption {
	return func(s *Scripted) {
		s.route = route
		s.routeCost = cost
	}
}

// WithCostFuncs sets the cross-graph cost estimators.
func WithCostFuncs(originalOf, costOf CostFunc) ScriptedOption {
	return func(s *Scripted) {
		s.originalOf = originalOf
		s.costOf = costOf
	}
}

// WithName overrides the planner name. By default it is kind.String().
func WithName(name string) ScriptedOption {
	return func(s *Scripted) {
		s.name = name
	}
}

// NewScripted returns a Scripted planner for kind over g.
func NewScripted(kind planning.PlanKind, g navgraph.Graph, opts ...ScriptedOption) *Scripted {
	s := &Scripted{
		name:  kind.String(),
		kind:  kind,
		graph: g,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Scripted) Name() string                  { return s.name }
func (s *Scripted) Kind() planning.PlanKind       { return s.kind }
func (s *Scripted) Graph() navgraph.Graph         { return s.graph }
func (s *Scripted) OriginalGraph() navgraph.Graph { return s.original }

func (s *Scripted) SetSource(x, y float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.source = geometry.Pt(x, y)
}

func (s *Scripted) SetTarget(x, y float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.target = geometry.Pt(x, y)
}

// Source returns the last source, in centimeters.
func (s *Scripted) Source() geometry.Point {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.source
}

// Target returns the last target, in centimeters.
func (s *Scripted) Target() geometry.Point {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.target
}

// Calls returns how many times ComputePath ran.
func (s *Scripted) Calls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls
}

func (s *Scripted) ComputePath() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls++
	s.computed = len(s.paths) > 0 && len(s.paths[0]) > 0
	return s.computed
}

func (s *Scripted) IndexPaths() [][]int {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.computed {
		return nil
	}
	out := make([][]int, len(s.paths))
	for i, p := range s.paths {
		out[i] = append([]int(nil), p...)
	}
	return out
}

func (s *Scripted) PathCost() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.computed {
		return 0
	}
	return s.cost
}

func (s *Scripted) ResetPath() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.computed = false
}

func (s *Scripted) OriginalPaths() (prologue, epilogue []int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.computed {
		return nil, nil
	}
	return append([]int(nil), s.prologue...), append([]int(nil), s.epilogue...)
}

func (s *Scripted) OriginalPathCost() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	switch {
	case s.routed:
		return s.routeCost
	case s.computed:
		return s.originalCost
	default:
		return 0
	}
}

func (s *Scripted) ComputeOriginalPath() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.routed = len(s.route) > 0
	return s.routed
}

func (s *Scripted) OriginalPath() []int {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.routed {
		return nil
	}
	return append([]int(nil), s.route...)
}

func (s *Scripted) ResetOriginalPath() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.routed = false
}

func (s *Scripted) OriginalCostOf(indices []int) float64 {
	if s.originalOf == nil {
		return 0
	}
	return s.originalOf(indices)
}

func (s *Scripted) CostOf(indices []int) float64 {
	if s.costOf == nil {
		return 0
	}
	return s.costOf(indices)
}

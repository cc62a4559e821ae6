// Package task implements the per-goal navigation task: one target, the
// current plan toward it and the decision and sensor logs gathered on the
// way.
package task

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/zero-day-ai/navplan/geometry"
	"github.com/zero-day-ai/navplan/naverr"
	"github.com/zero-day-ai/navplan/planner"
	"github.com/zero-day-ai/navplan/planning"
)

// CompletionRadius is the distance to the target, in meters, at which a task
// is complete.
const CompletionRadius = 1.0

// Observation is one entry of the sensor log.
type Observation struct {
	Pose     geometry.Pose
	Snapshot *geometry.Snapshot
	At       time.Time
}

// RouteCost is the cost of the original-graph reference route.
type RouteCost struct {
	// InOriginalGraph is the route cost in the graph it was searched on.
	InOriginalGraph float64
	// InUsedGraph is the same route measured in the planner's main graph.
	InUsedGraph float64
}

// Task owns a target and the plan toward it. It is driven from a single
// control loop and is not safe for concurrent use.
type Task struct {
	id        string
	target    geometry.Point
	createdAt time.Time

	builder *planning.Builder
	engine  *planning.Engine
	logger  *slog.Logger
	clock   func() time.Time

	plan        *planning.Plan
	plannerName string
	indexPaths  [][]int
	lastRequest planning.BuildRequest

	decisionCount int
	decisions     []Action
	observations  []Observation

	originalRoute []geometry.Point
	originalCost  RouteCost

	grid *PositionGrid
}

// Option configures a Task.
type Option func(*Task)

// WithLogger sets the logger. Defaults to slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(t *Task) {
		t.logger = logger
	}
}

// WithClock overrides the time source used to stamp observations.
func WithClock(clock func() time.Time) Option {
	return func(t *Task) {
		t.clock = clock
	}
}

// WithGridSize sets the side of the plan-position grid.
func WithGridSize(size int) Option {
	return func(t *Task) {
		t.grid = NewPositionGrid(size)
	}
}

// WithID overrides the generated task id.
func WithID(id string) Option {
	return func(t *Task) {
		t.id = id
	}
}

// New creates a task for target. builder and engine are shared across tasks.
func New(target geometry.Point, builder *planning.Builder, engine *planning.Engine, opts ...Option) *Task {
	t := &Task{
		id:          uuid.New().String(),
		target:      target,
		builder:     builder,
		engine:      engine,
		clock:       time.Now,
		plannerName: "none",
	}
	for _, opt := range opts {
		opt(t)
	}
	if t.logger == nil {
		t.logger = slog.Default()
	}
	if t.grid == nil {
		t.grid = NewPositionGrid(DefaultGridSize)
	}
	t.createdAt = t.clock()
	t.logger = t.logger.With("task_id", t.id)
	return t
}

// ID returns the task id.
func (t *Task) ID() string { return t.id }

// Target returns the goal coordinate.
func (t *Task) Target() geometry.Point { return t.target }

// CreatedAt returns when the task was created.
func (t *Task) CreatedAt() time.Time { return t.createdAt }

// Plan returns the current plan, or nil.
func (t *Task) Plan() *planning.Plan { return t.plan }

// Progress returns a read-only view of the current plan, or nil.
func (t *Task) Progress() planning.Progress {
	if t.plan == nil {
		return nil
	}
	return t.plan
}

// PlannerName returns the name of the planner that produced the plan.
func (t *Task) PlannerName() string { return t.plannerName }

// AimPoint returns the point to steer toward: the head waypoint's target or
// the task target when no waypoint remains.
func (t *Task) AimPoint() geometry.Point {
	return t.engine.AimPoint(t.plan, t.target)
}

// IsPlanActive reports whether the plan has active waypoints.
func (t *Task) IsPlanActive() bool {
	return t.plan != nil && t.plan.IsActive()
}

// IsPlanComplete reports whether every built waypoint has been retired. It is
// true while no plan exists.
func (t *Task) IsPlanComplete() bool {
	return t.plan == nil || t.plan.IsComplete()
}

// IsTaskComplete reports whether pos is within CompletionRadius of the target.
func (t *Task) IsTaskComplete(pos geometry.Point) bool {
	return t.target.Distance(pos) < CompletionRadius
}

// DistanceToTarget returns the straight-line distance from pos to the target.
func (t *Task) DistanceToTarget(pos geometry.Point) float64 {
	return t.target.Distance(pos)
}

// RecordDecision appends a to the decision log and returns the new decision
// count.
func (t *Task) RecordDecision(a Action) int {
	t.decisionCount++
	t.decisions = append(t.decisions, a)
	return t.decisionCount
}

// DecisionCount returns the number of recorded decisions.
func (t *Task) DecisionCount() int { return t.decisionCount }

// Decisions returns a copy of the decision log.
func (t *Task) Decisions() []Action {
	out := make([]Action, len(t.decisions))
	copy(out, t.decisions)
	return out
}

// RecordObservation appends the pose and snapshot to the sensor log.
func (t *Task) RecordObservation(pose geometry.Pose, snap *geometry.Snapshot) {
	t.observations = append(t.observations, Observation{Pose: pose, Snapshot: snap, At: t.clock()})
}

// Observations returns a copy of the sensor log.
func (t *Task) Observations() []Observation {
	out := make([]Observation, len(t.observations))
	copy(out, t.observations)
	return out
}

// Poses returns the poses of the sensor log in order.
func (t *Task) Poses() []geometry.Pose {
	out := make([]geometry.Pose, len(t.observations))
	for i, o := range t.observations {
		out[i] = o.Pose
	}
	return out
}

// IndexPaths returns every index path of the last planner run, best first.
func (t *Task) IndexPaths() [][]int {
	out := make([][]int, len(t.indexPaths))
	for i, p := range t.indexPaths {
		out[i] = append([]int(nil), p...)
	}
	return out
}

// Waypoints returns the flattened active plan.
func (t *Task) Waypoints() []geometry.Point {
	if t.plan == nil {
		return nil
	}
	return t.plan.Points()
}

// GeneratePlan asks p for a route from pose to the target and replaces the
// plan with one built from it, then advances the new plan once from pose.
//
// When p finds no path the plan is cleared and an error matching
// naverr.ErrEmptyPath is returned. When the build fails the previous plan is
// kept and the error matches naverr.ErrPlanBuild.
func (t *Task) GeneratePlan(ctx context.Context, pose geometry.Pose, vis geometry.Visibility, p planner.Planner) error {
	p.SetSource(planner.ToPlanner(pose.Point()))
	p.SetTarget(planner.ToPlanner(t.target))

	found := p.ComputePath()
	paths := p.IndexPaths()

	req := planning.BuildRequest{
		Kind:     p.Kind(),
		Graph:    p.Graph(),
		PathCost: p.PathCost(),
	}
	if len(paths) > 0 {
		req.Path = paths[0]
	}
	if op, ok := p.(planner.OriginalGraphPlanner); ok {
		switch req.Kind {
		case planning.HallwaySkeleton:
			req.OriginalGraph = op.OriginalGraph()
			req.Prologue, req.Epilogue = op.OriginalPaths()
			req.OriginalPathCost = op.OriginalPathCost()
			op.ResetOriginalPath()
		case planning.Flat:
			req.OriginalGraphCost = op.OriginalCostOf(req.Path)
		}
	}
	p.ResetPath()

	if !found || (len(req.Path) == 0 && len(req.Prologue) == 0 && len(req.Epilogue) == 0) {
		t.plan = nil
		t.indexPaths = nil
		t.logger.Info("planner returned no path", "planner", p.Name())
		return naverr.NewEmptyPathError("Task.GeneratePlan").
			WithContext(map[string]any{"planner": p.Name(), "task_id": t.id})
	}

	if err := t.install(ctx, req, pose, vis, p.Name()); err != nil {
		return err
	}
	t.indexPaths = paths
	return nil
}

// GeneratePlanFromIndices rebuilds the plan from an explicit index path in
// p's graph, for example one of IndexPaths. Hallway plans reuse the
// prologue and epilogue of the last generated plan.
func (t *Task) GeneratePlanFromIndices(ctx context.Context, pose geometry.Pose, vis geometry.Visibility, p planner.Planner, indices []int) error {
	req := planning.BuildRequest{
		Kind:     p.Kind(),
		Graph:    p.Graph(),
		Path:     append([]int(nil), indices...),
		PathCost: p.PathCost(),
	}
	switch req.Kind {
	case planning.HallwaySkeleton:
		req.OriginalGraph = t.lastRequest.OriginalGraph
		req.Prologue = t.lastRequest.Prologue
		req.Epilogue = t.lastRequest.Epilogue
		req.OriginalPathCost = t.lastRequest.OriginalPathCost
	case planning.Flat:
		if op, ok := p.(planner.OriginalGraphPlanner); ok {
			req.OriginalGraphCost = op.OriginalCostOf(indices)
		}
	}
	return t.install(ctx, req, pose, vis, p.Name())
}

func (t *Task) install(ctx context.Context, req planning.BuildRequest, pose geometry.Pose, vis geometry.Visibility, name string) error {
	plan, err := t.builder.Build(ctx, req)
	if err != nil {
		t.logger.Warn("keeping previous plan", "planner", name, "error", err)
		return err
	}

	t.plan = plan
	t.plannerName = name
	t.lastRequest = req
	t.engine.Advance(ctx, plan, pose.Point(), vis)

	t.logger.Info("plan generated",
		"planner", name,
		"kind", req.Kind.String(),
		"waypoints", plan.Len(),
		"cost_used", plan.CostInUsedGraph())
	return nil
}

// GenerateOriginalWaypoints searches the original graph for a reference
// route from pose to the target and stores it with its costs.
func (t *Task) GenerateOriginalWaypoints(ctx context.Context, pose geometry.Pose, p planner.OriginalGraphPlanner) error {
	t.originalRoute = nil
	t.originalCost = RouteCost{}

	p.SetSource(planner.ToPlanner(pose.Point()))
	p.SetTarget(planner.ToPlanner(t.target))
	defer p.ResetOriginalPath()

	if !p.ComputeOriginalPath() {
		return naverr.NewEmptyPathError("Task.GenerateOriginalWaypoints")
	}
	route := p.OriginalPath()
	if len(route) == 0 {
		return naverr.NewEmptyPathError("Task.GenerateOriginalWaypoints")
	}

	g := p.OriginalGraph()
	if g == nil {
		return naverr.NewPlanBuildError("Task.GenerateOriginalWaypoints", naverr.ErrNotFound)
	}
	points := make([]geometry.Point, 0, len(route))
	for _, idx := range route {
		node, err := g.Node(idx)
		if err != nil {
			return naverr.NewPlanBuildError("Task.GenerateOriginalWaypoints", err)
		}
		points = append(points, node.Point())
	}

	t.originalRoute = points
	t.originalCost = RouteCost{
		InOriginalGraph: p.OriginalPathCost(),
		InUsedGraph:     p.CostOf(route),
	}
	t.logger.Debug("original route generated", "points", len(points), "cost", t.originalCost.InOriginalGraph)
	return nil
}

// OriginalWaypoints returns the reference route.
func (t *Task) OriginalWaypoints() []geometry.Point {
	out := make([]geometry.Point, len(t.originalRoute))
	copy(out, t.originalRoute)
	return out
}

// OriginalRouteCost returns the costs of the reference route.
func (t *Task) OriginalRouteCost() RouteCost { return t.originalCost }

// IsAnyWaypointComplete reports whether any active waypoint is reached.
func (t *Task) IsAnyWaypointComplete(pos geometry.Point, vis geometry.Visibility) bool {
	return t.engine.PeekComplete(t.plan, pos, vis)
}

// AdvancePlan advances the plan from pos and returns the number of retired
// waypoints.
func (t *Task) AdvancePlan(ctx context.Context, pos geometry.Point, vis geometry.Visibility) int {
	return t.engine.Advance(ctx, t.plan, pos, vis)
}

// InsertWaypoint prepends a detour around point unless it is already on the
// plan and force is false. A task without a plan gets an empty flat plan to
// hold the detour.
func (t *Task) InsertWaypoint(point geometry.Point, force bool) bool {
	if t.plan == nil {
		t.plan = planning.NewPlan(planning.Flat, nil, 0, 0)
	}
	return t.engine.InsertAdhoc(t.plan, point, force)
}

// ClearPlan drops the plan and the reference route.
func (t *Task) ClearPlan() {
	t.plan = nil
	t.indexPaths = nil
	t.originalRoute = nil
}

// MarkPlanPosition marks the plan-position grid around (x, y).
func (t *Task) MarkPlanPosition(x, y float64) { t.grid.Mark(x, y) }

// MarkPlanPoints marks every point of the active plan.
func (t *Task) MarkPlanPoints() {
	for _, p := range t.Waypoints() {
		t.grid.Mark(p.X, p.Y)
	}
}

// PlanPositionVisited reports whether (x, y) falls on a marked cell.
func (t *Task) PlanPositionVisited(x, y float64) bool { return t.grid.Visited(x, y) }

// ResetPlanPositions clears the plan-position grid.
func (t *Task) ResetPlanPositions() { t.grid.Reset() }

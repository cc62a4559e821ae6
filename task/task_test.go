package task

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zero-day-ai/navplan/geometry"
	"github.com/zero-day-ai/navplan/navgraph"
	"github.com/zero-day-ai/navplan/naverr"
	"github.com/zero-day-ai/navplan/planner"
	"github.com/zero-day-ai/navplan/planning"
)

func lineGraph(t *testing.T) *navgraph.Memory {
	t.Helper()
	g, err := navgraph.NewMemoryBuilder().
		AddNode(0, 0, 0, 1, 0).
		AddNode(1, 500, 0, 1, 0).
		AddNode(2, 1000, 0, 1, 0).
		AddNode(3, 500, 500, 1, 0).
		AddEdge(0, 1, 500, []geometry.Point{{X: 0.5, Y: 0}, {X: 2.5, Y: 0}, {X: 4.5, Y: 0}}).
		AddEdge(1, 2, 500, []geometry.Point{{X: 5.5, Y: 0}, {X: 7.5, Y: 0}, {X: 9.5, Y: 0}}).
		AddEdge(0, 3, 700, []geometry.Point{{X: 0.5, Y: 0.5}, {X: 4.5, Y: 4.5}}).
		AddEdge(3, 2, 700, []geometry.Point{{X: 5.5, Y: 4.5}, {X: 9.5, Y: 0.5}}).
		Build()
	require.NoError(t, err)
	return g
}

func newTask(target geometry.Point, opts ...Option) *Task {
	return New(target, planning.NewBuilder(nil), planning.NewEngine(), opts...)
}

func TestNew(t *testing.T) {
	fixed := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	tk := newTask(geometry.Pt(10, 0), WithClock(func() time.Time { return fixed }))

	assert.NotEmpty(t, tk.ID())
	assert.Equal(t, fixed, tk.CreatedAt())
	assert.Equal(t, geometry.Pt(10, 0), tk.Target())
	assert.Equal(t, "none", tk.PlannerName())
	assert.Nil(t, tk.Plan())
	assert.Nil(t, tk.Progress())
	assert.False(t, tk.IsPlanActive())
	assert.True(t, tk.IsPlanComplete(), "no plan counts as complete")
	assert.Equal(t, geometry.Pt(10, 0), tk.AimPoint())

	other := newTask(geometry.Pt(10, 0))
	assert.NotEqual(t, tk.ID(), other.ID())
	assert.Equal(t, "fixed", newTask(geometry.Pt(0, 0), WithID("fixed")).ID())
}

func TestIsTaskComplete(t *testing.T) {
	tk := newTask(geometry.Pt(0, 0))
	assert.True(t, tk.IsTaskComplete(geometry.Pt(0.99, 0)))
	assert.False(t, tk.IsTaskComplete(geometry.Pt(1, 0)))
	assert.InDelta(t, 5.0, tk.DistanceToTarget(geometry.Pt(3, 4)), 1e-9)
}

func TestLogs(t *testing.T) {
	tick := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	tk := newTask(geometry.Pt(0, 0), WithClock(func() time.Time {
		tick = tick.Add(time.Second)
		return tick
	}))

	assert.Equal(t, 1, tk.RecordDecision(Action{Type: Forward, Parameter: 3}))
	assert.Equal(t, 2, tk.RecordDecision(Action{Type: LeftTurn, Parameter: 1}))
	assert.Equal(t, 2, tk.DecisionCount())
	decisions := tk.Decisions()
	assert.Equal(t, []Action{{Type: Forward, Parameter: 3}, {Type: LeftTurn, Parameter: 1}}, decisions)
	decisions[0] = Action{Type: Pause}
	assert.Equal(t, Forward, tk.Decisions()[0].Type)

	snap := geometry.NewSnapshot(geometry.Pt(1, 1), nil, 0)
	tk.RecordObservation(geometry.Pose{X: 1, Y: 1}, snap)
	tk.RecordObservation(geometry.Pose{X: 2, Y: 1, Theta: 0.5}, nil)

	obs := tk.Observations()
	require.Len(t, obs, 2)
	assert.Same(t, snap, obs[0].Snapshot)
	assert.True(t, obs[1].At.After(obs[0].At))
	assert.Equal(t, []geometry.Pose{{X: 1, Y: 1}, {X: 2, Y: 1, Theta: 0.5}}, tk.Poses())
}

func TestGeneratePlan_Skeleton(t *testing.T) {
	g := lineGraph(t)
	p := planner.NewScripted(planning.Skeleton, g, planner.WithPaths(1000, []int{0, 1, 2}, []int{0, 3, 2}))
	tk := newTask(geometry.Pt(10, 0))

	err := tk.GeneratePlan(context.Background(), geometry.Pose{X: 0, Y: 0}, geometry.ClearView, p)
	require.NoError(t, err)

	assert.Equal(t, geometry.Pt(0, 0), p.Source(), "source in centimeters")
	assert.Equal(t, geometry.Pt(1000, 0), p.Target(), "target in centimeters")
	assert.Nil(t, p.IndexPaths(), "planner reset after use")

	require.True(t, tk.IsPlanActive())
	assert.False(t, tk.IsPlanComplete())
	assert.Equal(t, "skeleton", tk.PlannerName())
	assert.Equal(t, [][]int{{0, 1, 2}, {0, 3, 2}}, tk.IndexPaths())
	assert.Equal(t, 1000.0, tk.Plan().CostInUsedGraph())

	// the start region was retired by the advance that follows a build
	assert.Equal(t, 4, tk.Plan().Len())
	assert.Len(t, tk.Plan().Finished(), 1)
	assert.Equal(t, geometry.Pt(4.5, 0), tk.AimPoint())
	assert.Equal(t, 4, tk.Progress().RemainingWaypoints())
}

func TestGeneratePlan_Flat(t *testing.T) {
	g := lineGraph(t)
	p := planner.NewScripted(planning.Flat, g,
		planner.WithName("astar"),
		planner.WithPaths(1000, []int{0, 1, 2}),
		planner.WithCostFuncs(func(ix []int) float64 { return g.PathCost(ix) * 2 }, nil),
	)
	tk := newTask(geometry.Pt(10, 0))

	require.NoError(t, tk.GeneratePlan(context.Background(), geometry.Pose{X: 5, Y: 5}, nil, p))
	assert.Equal(t, geometry.Pt(500, 500), p.Source())
	assert.Equal(t, 2000.0, tk.Plan().CostInOriginalGraph())
	assert.Equal(t, []geometry.Point{{X: 0, Y: 0}, {X: 5, Y: 0}, {X: 10, Y: 0}}, tk.Waypoints())
	assert.Equal(t, geometry.Pt(0, 0), tk.AimPoint())
}

func TestGeneratePlan_EmptyPath(t *testing.T) {
	g := lineGraph(t)
	tk := newTask(geometry.Pt(10, 0))
	good := planner.NewScripted(planning.Skeleton, g, planner.WithPaths(1, []int{0, 1}))
	require.NoError(t, tk.GeneratePlan(context.Background(), geometry.Pose{}, nil, good))
	require.True(t, tk.IsPlanActive())

	empty := planner.NewScripted(planning.Skeleton, g)
	err := tk.GeneratePlan(context.Background(), geometry.Pose{}, nil, empty)
	require.Error(t, err)
	assert.True(t, errors.Is(err, naverr.ErrEmptyPath))
	assert.False(t, tk.IsPlanActive())
	assert.Nil(t, tk.Plan())
	assert.Empty(t, tk.IndexPaths())
	assert.Equal(t, geometry.Pt(10, 0), tk.AimPoint())
}

func TestGeneratePlan_BuildFailureKeepsPlan(t *testing.T) {
	g := lineGraph(t)
	tk := newTask(geometry.Pt(10, 0))
	good := planner.NewScripted(planning.Skeleton, g, planner.WithPaths(1, []int{0, 1}))
	require.NoError(t, tk.GeneratePlan(context.Background(), geometry.Pose{}, nil, good))
	before := tk.Plan()

	// no edge 1-3 in the graph
	bad := planner.NewScripted(planning.Skeleton, g, planner.WithPaths(1, []int{1, 3}))
	err := tk.GeneratePlan(context.Background(), geometry.Pose{}, nil, bad)
	require.Error(t, err)
	assert.ErrorIs(t, err, naverr.ErrPlanBuild)
	assert.Same(t, before, tk.Plan())
}

func TestGeneratePlanFromIndices(t *testing.T) {
	g := lineGraph(t)
	p := planner.NewScripted(planning.Skeleton, g, planner.WithPaths(1000, []int{0, 1, 2}, []int{0, 3, 2}))
	tk := newTask(geometry.Pt(10, 0))
	require.NoError(t, tk.GeneratePlan(context.Background(), geometry.Pose{}, nil, p))

	alt := tk.IndexPaths()[1]
	require.NoError(t, tk.GeneratePlanFromIndices(context.Background(), geometry.Pose{}, nil, p, alt))
	assert.Equal(t, []int{0, 3, 2}, tk.Plan().Indices())
	assert.Equal(t, geometry.Pt(4.5, 4.5), tk.AimPoint())
}

func TestGenerateOriginalWaypoints(t *testing.T) {
	g := lineGraph(t)
	p := planner.NewScripted(planning.HallwaySkeleton, nil,
		planner.WithOriginalGraph(g, nil, nil, 0),
		planner.WithOriginalRoute(1000, []int{0, 1, 2}),
		planner.WithCostFuncs(nil, func(ix []int) float64 { return 12 }),
	)
	tk := newTask(geometry.Pt(10, 0))

	require.NoError(t, tk.GenerateOriginalWaypoints(context.Background(), geometry.Pose{X: 1, Y: 0}, p))
	assert.Equal(t, geometry.Pt(100, 0), p.Source())
	assert.Equal(t, []geometry.Point{{X: 0, Y: 0}, {X: 5, Y: 0}, {X: 10, Y: 0}}, tk.OriginalWaypoints())
	assert.Equal(t, RouteCost{InOriginalGraph: 1000, InUsedGraph: 12}, tk.OriginalRouteCost())
	assert.Nil(t, p.OriginalPath(), "original search reset after use")

	none := planner.NewScripted(planning.HallwaySkeleton, nil, planner.WithOriginalGraph(g, nil, nil, 0))
	err := tk.GenerateOriginalWaypoints(context.Background(), geometry.Pose{}, none)
	assert.ErrorIs(t, err, naverr.ErrEmptyPath)
	assert.Empty(t, tk.OriginalWaypoints())
}

func TestAdvanceAndPeek(t *testing.T) {
	g := lineGraph(t)
	p := planner.NewScripted(planning.Skeleton, g, planner.WithPaths(1000, []int{0, 1, 2}))
	tk := newTask(geometry.Pt(10, 0))
	require.NoError(t, tk.GeneratePlan(context.Background(), geometry.Pose{}, nil, p))

	assert.False(t, tk.IsAnyWaypointComplete(geometry.Pt(2, 2), nil))
	assert.True(t, tk.IsAnyWaypointComplete(geometry.Pt(5, 0), nil))
	assert.Equal(t, 2, tk.AdvancePlan(context.Background(), geometry.Pt(5, 0), nil))
	assert.Equal(t, geometry.Pt(9.5, 0), tk.AimPoint())
}

func TestInsertWaypoint(t *testing.T) {
	tk := newTask(geometry.Pt(10, 0))
	require.True(t, tk.InsertWaypoint(geometry.Pt(3, 3), false))
	assert.True(t, tk.IsPlanActive())
	assert.Equal(t, geometry.Pt(3, 3), tk.AimPoint())
	assert.False(t, tk.InsertWaypoint(geometry.Pt(3, 3), false))
	assert.True(t, tk.InsertWaypoint(geometry.Pt(3, 3), true))
	assert.Equal(t, 2, tk.Plan().Len())

	tk.ClearPlan()
	assert.Nil(t, tk.Plan())
	assert.Nil(t, tk.Waypoints())
}

func TestPlanPositions(t *testing.T) {
	g := lineGraph(t)
	p := planner.NewScripted(planning.Flat, g, planner.WithPaths(1000, []int{1, 2}))
	tk := newTask(geometry.Pt(10, 0))
	require.NoError(t, tk.GeneratePlan(context.Background(), geometry.Pose{}, nil, p))

	tk.MarkPlanPoints()
	assert.True(t, tk.PlanPositionVisited(5, 0))
	assert.True(t, tk.PlanPositionVisited(11, 1))
	assert.False(t, tk.PlanPositionVisited(20, 20))

	tk.MarkPlanPosition(50.5, 50.5)
	assert.True(t, tk.PlanPositionVisited(52, 52))

	tk.ResetPlanPositions()
	assert.False(t, tk.PlanPositionVisited(5, 0))
}

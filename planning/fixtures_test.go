package planning

import (
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/zero-day-ai/navplan/geometry"
	"github.com/zero-day-ai/navplan/navgraph"
	"github.com/zero-day-ai/navplan/passage"
)

// skeletonGraph is an L-shaped route 0 -> 1 -> 2 with the 1-2 edge stored
// in the opposite direction.
func skeletonGraph(t *testing.T) *navgraph.Memory {
	t.Helper()
	g, err := navgraph.NewMemoryBuilder().
		AddNode(0, 0, 0, 1, 0).
		AddNode(1, 500, 0, 1, 0).
		AddNode(2, 500, 500, 1, 0).
		AddEdge(0, 1, 500, []geometry.Point{{X: 0.5, Y: 0}, {X: 2.5, Y: 0}, {X: 4.5, Y: 0}}).
		AddEdge(2, 1, 500, []geometry.Point{{X: 5, Y: 4.5}, {X: 5, Y: 2.5}, {X: 5, Y: 0.5}}).
		Build()
	require.NoError(t, err)
	return g
}

// hallwayFixture is a straight corridor along y = 0: a one-node prologue at
// the origin, intersections 1, 2, 3 at x = 10, 20, 30 joined by passages 4
// and 5, and a two-node epilogue starting at x = 40.
type hallwayFixture struct {
	original  *navgraph.Memory
	collapsed *navgraph.Memory
	store     *passage.Store
}

func newHallwayFixture(t *testing.T) hallwayFixture {
	t.Helper()

	original, err := navgraph.NewMemoryBuilder().
		AddNode(10, 0, 0, 1, 0).
		AddNode(11, 4000, 0, 1, 0).
		AddNode(12, 4000, 500, 1, 0).
		AddEdge(11, 12, 500, []geometry.Point{{X: 40, Y: 0.5}, {X: 40, Y: 4.5}}).
		Build()
	require.NoError(t, err)

	collapsed, err := navgraph.NewMemoryBuilder().
		AddNode(0, 1000, 0, 2, 1).
		AddNode(1, 2000, 0, 2, 2).
		AddNode(2, 3000, 0, 2, 3).
		Build()
	require.NoError(t, err)

	store, err := passage.NewStore(passage.Tables{
		Adjacency: []passage.Adjacency{
			{From: 1, Passage: 4, To: 2, Trail: []geometry.Point{{X: 10, Y: 0}, {X: 15, Y: 0}, {X: 20, Y: 0}}},
			{From: 3, Passage: 5, To: 2, Trail: []geometry.Point{{X: 30, Y: 0}, {X: 25, Y: 0}, {X: 20, Y: 0}}},
		},
		Centroids: [][]int{
			{1000, 0},
			{2000, 0},
			{3000, 0},
			{1500, 0},
			{2500, 0},
		},
		IntersectionGrids: map[int][]passage.Cell{
			2: {{X: 19, Y: 0}, {X: 21, Y: 1}},
		},
		PassageGrids: map[int][]passage.Cell{
			4: {{X: 11, Y: 0}, {X: 19, Y: 1}},
			5: {{X: 21, Y: 0}, {X: 29, Y: 1}},
		},
		Through: []passage.Through{
			{First: 4, Middle: 2, Last: 5, Trail: []geometry.Point{{X: 20, Y: 0}, {X: 20, Y: 1}}},
		},
	})
	require.NoError(t, err)

	return hallwayFixture{original: original, collapsed: collapsed, store: store}
}

func (f hallwayFixture) request() BuildRequest {
	return BuildRequest{
		Kind:             HallwaySkeleton,
		Path:             []int{0, 1, 2},
		Graph:            f.collapsed,
		Prologue:         []int{10},
		Epilogue:         []int{11, 12},
		OriginalGraph:    f.original,
		PathCost:         300,
		OriginalPathCost: 120,
	}
}

// blockTargets is a Visibility that hides the listed points.
func blockTargets(hidden ...geometry.Point) geometry.Visibility {
	return geometry.VisibilityFunc(func(_, target geometry.Point) bool {
		for _, h := range hidden {
			if h == target {
				return false
			}
		}
		return true
	})
}

func mustSubPath(t *testing.T, pts ...geometry.Point) Waypoint {
	t.Helper()
	w, err := NewSubPath(pts)
	require.NoError(t, err)
	return w
}

func seqs(ws []Waypoint) []int {
	out := make([]int, len(ws))
	for i, w := range ws {
		out[i] = w.Seq()
	}
	return out
}

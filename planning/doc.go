// Package planning builds navigation plans and tracks a robot's progress
// along them.
//
// A Plan is an ordered sequence of Waypoints in one of three flavors:
//
//   - Flat: one single-point SubPath per graph node.
//   - Skeleton: RegionStop and SubPath waypoints alternating, one region per
//     node and one corridor per edge.
//   - HallwaySkeleton: RegionStop/SubPath segments over the original graph
//     around a body of Intersection and Passage waypoints taken from the
//     collapsed intersection graph.
//
// # Building
//
// A Builder is bound to a passage.Store once and turns a BuildRequest into a
// Plan:
//
//	b := planning.NewBuilder(store, planning.WithLogger(logger))
//	plan, err := b.Build(ctx, planning.BuildRequest{
//	    Kind:  planning.HallwaySkeleton,
//	    Path:  indices,
//	    Graph: collapsed,
//	    Prologue:      prologue,
//	    Epilogue:      epilogue,
//	    OriginalGraph: fine,
//	})
//	if errors.Is(err, naverr.ErrPlanBuild) {
//	    // keep the previous plan
//	}
//
// # Progression
//
// The Engine consumes (position, visibility) once per control tick:
//
//	if engine.PeekComplete(plan, pos, snapshot) {
//	    engine.Advance(ctx, plan, pos, snapshot)
//	}
//	aim := engine.AimPoint(plan, target)
//
// Advance finds the farthest reached waypoint, moves everything before it to
// the finished history and trims a partially consumed corridor in place. The
// active sequence only ever shrinks from the front and the finished sequence
// only grows, so finished followed by active always reproduces the built
// plan up to prefix-trimming of the head corridor.
//
// Neither Plan nor Engine is safe for concurrent mutation; both are meant to
// be driven from a single control loop.
package planning

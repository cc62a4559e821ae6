// Package geometry provides the planar primitives shared by the navigation
// packages: points, poses, disc regions, laser scans and visibility snapshots.
//
// All coordinates are meters in the map frame. Points compare by exact value,
// so two points built from the same coordinates are equal with ==.
//
// # Visibility
//
// The progression engine only needs a line-of-sight predicate. Anything that
// implements Visibility can be passed to it; Snapshot is the laser-backed
// implementation built from one scan:
//
//	endpoints := scan.Endpoints(pose)
//	snap := geometry.NewSnapshot(pose.Point(), endpoints, 20)
//	if snap.PointVisible(pose.Point(), waypoint) {
//	    // nothing blocks the straight line to waypoint
//	}
package geometry

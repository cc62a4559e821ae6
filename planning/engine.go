package planning

import (
	"context"
	"log/slog"

	"github.com/zero-day-ai/navplan/geometry"
)

// Engine advances plans from (position, visibility) observations. It holds
// no per-plan state, so one Engine can drive any number of plans.
type Engine struct {
	thresholds Thresholds
	logger     *slog.Logger
	tel        *telemetry
}

// NewEngine returns an Engine.
func NewEngine(opts ...Option) *Engine {
	o := newOptions(opts)
	return &Engine{
		thresholds: o.thresholds,
		logger:     o.logger,
		tel:        newTelemetry(o),
	}
}

// Thresholds returns the thresholds in effect.
func (e *Engine) Thresholds() Thresholds {
	return e.thresholds
}

// Advance retires everything up to the farthest reached waypoint and trims
// a partially consumed head corridor. A nil vis grants no line of sight, so
// corridors advance only by proximity to their final vertex. It returns the
// number of waypoints retired.
func (e *Engine) Advance(ctx context.Context, p *Plan, pos geometry.Point, vis geometry.Visibility) int {
	if p == nil || len(p.active) == 0 {
		if p != nil {
			p.refresh()
		}
		return 0
	}

	far, sub := -1, -1
	for i, w := range p.active {
		if ok, s := e.reach(p.kind, w, pos, vis); ok {
			far, sub = i, s
		}
	}
	if far < 0 {
		return 0
	}

	target := p.active[far]
	var retired int
	if !target.hasPath() || sub == len(target.points)-1 {
		retired = far + 1
		p.retire(retired)
	} else {
		retired = far
		p.retire(retired)
		p.trimHead(sub)
	}
	p.refresh()

	e.tel.waypointsRetired(ctx, p.kind, retired)
	e.logger.Debug("plan advanced",
		"kind", p.kind.String(),
		"farthest", far,
		"sub_index", sub,
		"retired", retired,
		"remaining", len(p.active))

	return retired
}

// PeekComplete reports whether any active waypoint is currently reached,
// without changing the plan.
func (e *Engine) PeekComplete(p *Plan, pos geometry.Point, vis geometry.Visibility) bool {
	if p == nil || !p.isActive {
		return false
	}
	for _, w := range p.active {
		if ok, _ := e.reach(p.kind, w, pos, vis); ok {
			return true
		}
	}
	return false
}

// AimPoint returns the steering target for the head waypoint, or target when
// the plan is empty or nil.
func (e *Engine) AimPoint(p *Plan, target geometry.Point) geometry.Point {
	if p == nil || len(p.active) == 0 {
		return target
	}
	return p.active[0].Target()
}

// InsertAdhoc prepends a detour region around point unless the point is
// already on the plan and force is false. It reports whether a region was
// inserted. Detours are not tracked for completion.
func (e *Engine) InsertAdhoc(p *Plan, point geometry.Point, force bool) bool {
	if p == nil {
		return false
	}
	if !force {
		for _, q := range p.Points() {
			if q == point {
				return false
			}
		}
	}
	p.prepend(NewRegionStop(point, e.thresholds.AdhocRadius))
	p.isActive = true
	e.logger.Debug("adhoc waypoint inserted", "point", point.String(), "forced", force)
	return true
}

// reach reports whether w is reached from pos. For corridors the second
// result is the highest consumed vertex index; len(points)-1 means the whole
// corridor is consumed.
func (e *Engine) reach(kind PlanKind, w Waypoint, pos geometry.Point, vis geometry.Visibility) (bool, int) {
	switch w.kind {
	case RegionStop:
		ok := w.region.Contains(pos) && w.region.Center.Distance(pos) < e.thresholds.ArrivalRadius
		return ok, -1
	case Intersection:
		return w.centroid.Distance(pos) < e.thresholds.ArrivalRadius, -1
	}

	radius := e.thresholds.VertexRadius
	if kind == Flat {
		radius = e.thresholds.ArrivalRadius
	}

	pts := w.points
	last := len(pts) - 1
	best := -1
	for k, v := range pts {
		if pos.Distance(v) >= radius {
			continue
		}
		if k == last {
			return true, last
		}
		if vis == nil || !vis.PointVisible(pos, pts[k+1]) {
			continue
		}
		// Line of sight to k+1 consumes k+1 and every further vertex still
		// in view. The final vertex is left for proximity.
		j := k + 1
		for j+1 < last && vis.PointVisible(pos, pts[j+1]) {
			j++
		}
		if j == last {
			j = last - 1
		}
		best = max(best, j)
	}
	return best >= 0, best
}

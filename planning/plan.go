package planning

import "github.com/zero-day-ai/navplan/geometry"

// Plan owns the active and finished waypoint sequences of one route together
// with the secondary tracking set used to report two-tier progress.
//
// Costs are fixed at build time. All mutation goes through the Engine.
type Plan struct {
	kind     PlanKind
	indices  []int
	active   []Waypoint
	finished []Waypoint

	// secondary holds the seq of every built waypoint not yet retired, in
	// build order. Ad-hoc detours never enter it.
	secondary []int

	costUsed     float64
	costOriginal float64

	isActive bool
	complete bool
}

// NewPlan assembles a plan from already-built waypoints. Every waypoint is
// tracked in the secondary set.
func NewPlan(kind PlanKind, waypoints []Waypoint, costUsed, costOriginal float64) *Plan {
	p := &Plan{
		kind:         kind,
		active:       make([]Waypoint, len(waypoints)),
		finished:     make([]Waypoint, 0, len(waypoints)),
		secondary:    make([]int, len(waypoints)),
		costUsed:     costUsed,
		costOriginal: costOriginal,
	}
	for i, w := range waypoints {
		w.points = clonePoints(w.points)
		w.seq = i
		p.active[i] = w
		p.secondary[i] = i
	}
	p.isActive = len(p.active) > 0
	p.complete = len(p.secondary) == 0
	return p
}

// Kind returns the representation the plan was built with.
func (p *Plan) Kind() PlanKind { return p.kind }

// Indices returns the used-graph index path the plan was built from.
func (p *Plan) Indices() []int {
	out := make([]int, len(p.indices))
	copy(out, p.indices)
	return out
}

// Len returns the number of active waypoints.
func (p *Plan) Len() int { return len(p.active) }

// Active returns a copy of the active waypoints.
func (p *Plan) Active() []Waypoint { return cloneWaypoints(p.active) }

// Finished returns a copy of the retired waypoints in retirement order.
func (p *Plan) Finished() []Waypoint { return cloneWaypoints(p.finished) }

// Head returns the first active waypoint.
func (p *Plan) Head() (Waypoint, bool) {
	if len(p.active) == 0 {
		return Waypoint{}, false
	}
	w := p.active[0]
	w.points = clonePoints(w.points)
	return w, true
}

// Points flattens the active waypoints: region centers, path points and
// intersection centroids in order.
func (p *Plan) Points() []geometry.Point {
	out := make([]geometry.Point, 0, len(p.active))
	for _, w := range p.active {
		out = w.flatten(out)
	}
	return out
}

// CostInUsedGraph returns the path cost in the graph the plan was built on.
func (p *Plan) CostInUsedGraph() float64 { return p.costUsed }

// CostInOriginalGraph returns the path cost in the original graph.
func (p *Plan) CostInOriginalGraph() float64 { return p.costOriginal }

// IsActive reports whether any waypoint remains.
func (p *Plan) IsActive() bool { return p.isActive }

// IsComplete reports whether every built waypoint has been retired.
func (p *Plan) IsComplete() bool { return p.complete }

// Pending returns the number of built waypoints not yet retired.
func (p *Plan) Pending() int { return len(p.secondary) }

// retire moves the first n active waypoints to finished.
func (p *Plan) retire(n int) []Waypoint {
	moved := p.active[:n]
	for _, w := range moved {
		p.finished = append(p.finished, w)
		if w.seq >= 0 {
			p.dropSecondary(w.seq)
		}
	}
	p.active = append(p.active[:0:0], p.active[n:]...)
	return moved
}

// trimHead keeps only the points strictly after index j of the head path.
func (p *Plan) trimHead(j int) {
	head := &p.active[0]
	head.points = append([]geometry.Point(nil), head.points[j+1:]...)
}

func (p *Plan) prepend(w Waypoint) {
	p.active = append([]Waypoint{w}, p.active...)
}

func (p *Plan) dropSecondary(seq int) {
	for i, s := range p.secondary {
		if s == seq {
			p.secondary = append(p.secondary[:i], p.secondary[i+1:]...)
			return
		}
	}
}

// refresh recomputes the flags after a mutation.
func (p *Plan) refresh() {
	p.isActive = len(p.active) > 0
	if len(p.secondary) == 0 {
		p.complete = true
	}
}

func cloneWaypoints(ws []Waypoint) []Waypoint {
	out := make([]Waypoint, len(ws))
	for i, w := range ws {
		w.points = clonePoints(w.points)
		out[i] = w
	}
	return out
}

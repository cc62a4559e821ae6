package planning

// Progress provides read-only access to the progression state of a plan.
// Agenda bookkeeping and telemetry receive this instead of the Plan so they
// cannot mutate it.
type Progress interface {
	// Kind returns the plan representation.
	Kind() PlanKind

	// RetiredWaypoints returns how many waypoints have been retired.
	RetiredWaypoints() int

	// RemainingWaypoints returns how many waypoints are still active.
	RemainingWaypoints() int

	// TotalWaypoints returns retired plus remaining.
	TotalWaypoints() int

	// Pending returns the number of built waypoints not yet retired.
	Pending() int

	// IsActive reports whether any waypoint remains.
	IsActive() bool

	// IsComplete reports whether every built waypoint has been retired.
	IsComplete() bool
}

var _ Progress = (*Plan)(nil)

// RetiredWaypoints implements Progress.
func (p *Plan) RetiredWaypoints() int { return len(p.finished) }

// RemainingWaypoints implements Progress.
func (p *Plan) RemainingWaypoints() int { return len(p.active) }

// TotalWaypoints implements Progress.
func (p *Plan) TotalWaypoints() int { return len(p.finished) + len(p.active) }

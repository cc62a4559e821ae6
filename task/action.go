package task

import "fmt"

// ActionType is the kind of motor command chosen by the action policy.
type ActionType int

const (
	Forward ActionType = iota
	LeftTurn
	RightTurn
	Pause
)

// String implements fmt.Stringer.
func (t ActionType) String() string {
	switch t {
	case Forward:
		return "forward"
	case LeftTurn:
		return "left_turn"
	case RightTurn:
		return "right_turn"
	case Pause:
		return "pause"
	default:
		return fmt.Sprintf("ActionType(%d)", int(t))
	}
}

// Movement and rotation magnitudes indexed by Action.Parameter, in meters
// and radians.
var (
	movements = [...]float64{0, 0.2, 0.4, 0.8, 1.6, 3.2}
	rotations = [...]float64{0, 0.25, 0.5, 1, 2}
)

// Action is one recorded decision.
type Action struct {
	Type      ActionType `json:"type" yaml:"type"`
	Parameter int        `json:"parameter" yaml:"parameter"`
}

// String implements fmt.Stringer.
func (a Action) String() string {
	return fmt.Sprintf("%s(%d)", a.Type, a.Parameter)
}

// Magnitude returns the distance of a forward move or the angle of a turn.
// Out-of-range parameters yield 0.
func (a Action) Magnitude() float64 {
	switch a.Type {
	case Forward:
		if a.Parameter >= 0 && a.Parameter < len(movements) {
			return movements[a.Parameter]
		}
	case LeftTurn, RightTurn:
		if a.Parameter >= 0 && a.Parameter < len(rotations) {
			return rotations[a.Parameter]
		}
	}
	return 0
}

// Actions returns the standard action set: forward moves 1-5, turns 1-4 in
// each direction and a pause.
func Actions() []Action {
	out := make([]Action, 0, 14)
	for i := 1; i < len(rotations); i++ {
		out = append(out, Action{Type: LeftTurn, Parameter: i}, Action{Type: RightTurn, Parameter: i})
	}
	for i := 1; i < len(movements); i++ {
		out = append(out, Action{Type: Forward, Parameter: i})
	}
	return append(out, Action{Type: Pause})
}

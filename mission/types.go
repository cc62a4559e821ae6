// Package mission manages the agenda of navigation tasks the robot works
// through: the ordered queue of pending targets, the task currently being
// driven and the position history recorded while driving it.
package mission

// TaskStatus represents where a task is in the agenda.
type TaskStatus string

const (
	// TaskStatusPending indicates the task is queued but not yet active.
	TaskStatusPending TaskStatus = "pending"

	// TaskStatusActive indicates the task is the one being driven.
	TaskStatusActive TaskStatus = "active"

	// TaskStatusFinished indicates the robot reached the task target.
	TaskStatusFinished TaskStatus = "finished"

	// TaskStatusSkipped indicates the task was abandoned.
	TaskStatusSkipped TaskStatus = "skipped"
)

// IsValid checks if the status is a recognized value.
func (s TaskStatus) IsValid() bool {
	switch s {
	case TaskStatusPending, TaskStatusActive, TaskStatusFinished, TaskStatusSkipped:
		return true
	default:
		return false
	}
}

// IsTerminal returns true if the status represents a final state.
func (s TaskStatus) IsTerminal() bool {
	switch s {
	case TaskStatusFinished, TaskStatusSkipped:
		return true
	default:
		return false
	}
}

// Stats aggregates agenda counters.
type Stats struct {
	// Added is the number of tasks ever added.
	Added int `json:"added"`

	// Pending is the number of tasks still on the agenda, the current one
	// included.
	Pending int `json:"pending"`

	// Finished is the number of tasks whose target was reached.
	Finished int `json:"finished"`

	// Skipped is the number of abandoned tasks.
	Skipped int `json:"skipped"`

	// Decisions is the total decision count of retired tasks.
	Decisions int `json:"decisions"`

	// ExportFailures counts retired tasks whose logs could not be journaled.
	ExportFailures int `json:"export_failures"`
}

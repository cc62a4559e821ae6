package journal

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/zero-day-ai/navplan/geometry"
	"github.com/zero-day-ai/navplan/task"
)

// Outcome records why a task left the agenda.
type Outcome string

const (
	// OutcomeFinished indicates the robot reached the task target.
	OutcomeFinished Outcome = "finished"

	// OutcomeSkipped indicates the agenda gave up on the task.
	OutcomeSkipped Outcome = "skipped"
)

// IsValid checks if the outcome is a recognized value.
func (o Outcome) IsValid() bool {
	switch o {
	case OutcomeFinished, OutcomeSkipped:
		return true
	default:
		return false
	}
}

// Entry is the exported log of one retired task.
type Entry struct {
	// ID uniquely identifies the entry. Append assigns one when empty.
	ID string `json:"id"`

	// TaskID is the id of the retired task.
	TaskID string `json:"task_id"`

	// Target is the task goal in meters.
	Target geometry.Point `json:"target"`

	// Outcome is why the task was retired.
	Outcome Outcome `json:"outcome"`

	// Planner is the name of the planner that produced the last plan.
	Planner string `json:"planner,omitempty"`

	// DecisionCount is the value of the task's decision counter.
	DecisionCount int `json:"decision_count"`

	// Decisions is the task's decision log in order.
	Decisions []task.Action `json:"decisions,omitempty"`

	// Poses is the pose half of the task's sensor log.
	Poses []geometry.Pose `json:"poses,omitempty"`

	// CreatedAt is when the task was created.
	CreatedAt time.Time `json:"created_at"`

	// RetiredAt is when the task left the agenda.
	RetiredAt time.Time `json:"retired_at"`
}

// NewEntry snapshots the logs of t. Visibility snapshots are not exported.
func NewEntry(t *task.Task, outcome Outcome, retiredAt time.Time) Entry {
	return Entry{
		ID:            uuid.NewString(),
		TaskID:        t.ID(),
		Target:        t.Target(),
		Outcome:       outcome,
		Planner:       t.PlannerName(),
		DecisionCount: t.DecisionCount(),
		Decisions:     t.Decisions(),
		Poses:         t.Poses(),
		CreatedAt:     t.CreatedAt(),
		RetiredAt:     retiredAt,
	}
}

// Journal is an append-only sink for retired task logs.
type Journal interface {
	// Append stores an entry at the end of the journal.
	Append(ctx context.Context, entry Entry) error

	// Entries returns every stored entry, oldest first.
	Entries(ctx context.Context) ([]Entry, error)

	// Len returns the number of stored entries.
	Len(ctx context.Context) (int, error)

	// Close releases the journal's resources.
	Close() error
}

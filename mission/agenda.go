package mission

import (
	"context"
	"log/slog"
	"slices"
	"time"

	"github.com/zero-day-ai/navplan/geometry"
	"github.com/zero-day-ai/navplan/journal"
	"github.com/zero-day-ai/navplan/planning"
	"github.com/zero-day-ai/navplan/task"
)

// Agenda is the robot's task queue. Tasks are driven in insertion order
// unless the caller activates another one. Not safe for concurrent use.
type Agenda struct {
	builder  *planning.Builder
	engine   *planning.Engine
	journal  journal.Journal
	logger   *slog.Logger
	clock    func() time.Time
	taskOpts []task.Option

	tasks   []*task.Task
	current *task.Task
	status  map[string]TaskStatus
	history []geometry.Pose
	stats   Stats
}

// Option configures an Agenda.
type Option func(*Agenda)

// WithJournal exports the logs of every retired task to j.
func WithJournal(j journal.Journal) Option {
	return func(a *Agenda) {
		a.journal = j
	}
}

// WithLogger sets the logger. Defaults to slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(a *Agenda) {
		a.logger = logger
	}
}

// WithClock overrides the time source.
func WithClock(clock func() time.Time) Option {
	return func(a *Agenda) {
		a.clock = clock
	}
}

// WithTaskOptions appends options applied to every task the agenda creates.
func WithTaskOptions(opts ...task.Option) Option {
	return func(a *Agenda) {
		a.taskOpts = append(a.taskOpts, opts...)
	}
}

// NewAgenda creates an empty agenda. builder and engine are shared by every
// task it creates.
func NewAgenda(builder *planning.Builder, engine *planning.Engine, opts ...Option) *Agenda {
	a := &Agenda{
		builder: builder,
		engine:  engine,
		clock:   time.Now,
		status:  make(map[string]TaskStatus),
	}
	for _, opt := range opts {
		opt(a)
	}
	if a.logger == nil {
		a.logger = slog.Default()
	}
	return a
}

// AddTask queues a new task for target and returns it.
func (a *Agenda) AddTask(target geometry.Point) *task.Task {
	opts := make([]task.Option, 0, len(a.taskOpts)+2)
	opts = append(opts, task.WithLogger(a.logger), task.WithClock(a.clock))
	opts = append(opts, a.taskOpts...)

	t := task.New(target, a.builder, a.engine, opts...)
	a.tasks = append(a.tasks, t)
	a.status[t.ID()] = TaskStatusPending
	a.stats.Added++

	a.logger.Debug("task added", "task_id", t.ID(), "target", target.String())
	return t
}

// Next returns the task at the front of the agenda.
func (a *Agenda) Next() (*task.Task, bool) {
	if len(a.tasks) == 0 {
		return nil, false
	}
	return a.tasks[0], true
}

// Current returns the task being driven, or nil.
func (a *Agenda) Current() *task.Task {
	return a.current
}

// Activate makes t the current task. A previously current task goes back to
// pending. Passing nil clears the current task.
func (a *Agenda) Activate(t *task.Task) {
	if a.current != nil && a.current != t {
		a.status[a.current.ID()] = TaskStatusPending
	}
	a.current = t
	if t == nil {
		return
	}
	a.status[t.ID()] = TaskStatusActive
	a.logger.Info("task activated", "task_id", t.ID(), "target", t.Target().String())
}

// Finish retires the current task as reached. The returned error reports a
// failed journal export only; the task is retired either way.
func (a *Agenda) Finish(ctx context.Context) error {
	return a.retire(ctx, TaskStatusFinished, journal.OutcomeFinished)
}

// Skip retires the current task as abandoned. Errors are as for Finish.
func (a *Agenda) Skip(ctx context.Context) error {
	return a.retire(ctx, TaskStatusSkipped, journal.OutcomeSkipped)
}

func (a *Agenda) retire(ctx context.Context, status TaskStatus, outcome journal.Outcome) error {
	t := a.current
	a.current = nil
	a.ClearPositionHistory()
	if t == nil {
		return nil
	}

	a.tasks = slices.DeleteFunc(a.tasks, func(x *task.Task) bool { return x == t })
	a.status[t.ID()] = status
	a.stats.Decisions += t.DecisionCount()
	switch status {
	case TaskStatusFinished:
		a.stats.Finished++
	case TaskStatusSkipped:
		a.stats.Skipped++
	}

	a.logger.Info("task retired",
		"task_id", t.ID(),
		"status", string(status),
		"decisions", t.DecisionCount(),
	)

	if a.journal == nil {
		return nil
	}
	if err := a.journal.Append(ctx, journal.NewEntry(t, outcome, a.clock())); err != nil {
		a.stats.ExportFailures++
		a.logger.Warn("task export failed", "task_id", t.ID(), "error", err)
		return err
	}
	return nil
}

// IsComplete reports whether the agenda is empty and no task is current.
func (a *Agenda) IsComplete() bool {
	return len(a.tasks) == 0 && a.current == nil
}

// RecordPosition appends pose to the position history unless it equals the
// last recorded pose. It reports whether pose was appended.
func (a *Agenda) RecordPosition(pose geometry.Pose) bool {
	if n := len(a.history); n > 0 && a.history[n-1] == pose {
		return false
	}
	a.history = append(a.history, pose)
	return true
}

// PositionHistory returns a copy of the poses recorded for the current task.
func (a *Agenda) PositionHistory() []geometry.Pose {
	return slices.Clone(a.history)
}

// ClearPositionHistory drops every recorded pose.
func (a *Agenda) ClearPositionHistory() {
	a.history = a.history[:0]
}

// Tasks returns the agenda in order, the current task included.
func (a *Agenda) Tasks() []*task.Task {
	return slices.Clone(a.tasks)
}

// Status returns the status of the task with the given id.
func (a *Agenda) Status(taskID string) (TaskStatus, bool) {
	s, ok := a.status[taskID]
	return s, ok
}

// Stats returns the agenda counters.
func (a *Agenda) Stats() Stats {
	s := a.stats
	s.Pending = len(a.tasks)
	return s
}

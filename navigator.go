package navplan

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/zero-day-ai/navplan/config"
	"github.com/zero-day-ai/navplan/geometry"
	"github.com/zero-day-ai/navplan/health"
	"github.com/zero-day-ai/navplan/journal"
	"github.com/zero-day-ai/navplan/mission"
	"github.com/zero-day-ai/navplan/navgraph"
	"github.com/zero-day-ai/navplan/naverr"
	"github.com/zero-day-ai/navplan/passage"
	"github.com/zero-day-ai/navplan/planner"
	"github.com/zero-day-ai/navplan/planning"
	"github.com/zero-day-ai/navplan/registry"
	"github.com/zero-day-ai/navplan/task"
)

// Environment is the static map data plans are built against.
type Environment struct {
	// Name identifies the environment in the registry.
	Name string

	// Graph is the planner's graph. For hallway plans it is the collapsed
	// intersection graph.
	Graph *navgraph.Memory

	// OriginalGraph is the fine graph hallway prologues and epilogues are
	// expressed in.
	OriginalGraph *navgraph.Memory

	// Store holds the passage tables. Nil when no hallway data is available.
	Store *passage.Store
}

// TickResult reports what one control tick did.
type TickResult struct {
	// Task is the task driven this tick, nil once the mission is complete.
	Task *task.Task

	// Aim is the point to steer toward.
	Aim geometry.Point

	// Retired is the number of waypoints retired this tick.
	Retired int

	// Replanned is set when a new plan was installed.
	Replanned bool

	// NoPath is set when the planner found no route to the target.
	NoPath bool

	// TaskFinished is set when a task target was reached this tick.
	TaskFinished bool

	// MissionComplete is set when no task remains.
	MissionComplete bool
}

// Navigator runs the navigation control cycle over a mission agenda. It is
// driven from a single goroutine, one Tick per control cycle.
type Navigator struct {
	cfg     *config.Config
	logger  *slog.Logger
	env     Environment
	builder *planning.Builder
	engine  *planning.Engine
	agenda  *mission.Agenda
	journal journal.Journal

	registry     *registry.Client
	ownsRegistry bool
	closed       bool
}

// New wires a navigator from its options and configuration.
//
// Example:
//
//	nav, err := navplan.New(
//	    navplan.WithConfigPath("/etc/navplan"),
//	    navplan.WithLogger(logger),
//	)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer nav.Close()
func New(opts ...Option) (*Navigator, error) {
	nc := &navigatorConfig{}
	for _, opt := range opts {
		opt(nc)
	}

	cfg := nc.config
	if cfg == nil {
		if nc.configPath != "" {
			loaded, err := config.Load(nc.configPath)
			if err != nil {
				return nil, fmt.Errorf("failed to load config: %w", err)
			}
			cfg = loaded
		} else {
			cfg = config.Default()
		}
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	logger := nc.logger
	if logger == nil {
		logger = cfg.Logging.NewLogger(os.Stderr)
	}
	clock := nc.clock
	if clock == nil {
		clock = time.Now
	}

	n := &Navigator{
		cfg:      cfg,
		logger:   logger,
		journal:  nc.journal,
		registry: nc.registry,
	}

	if err := n.loadEnvironment(nc); err != nil {
		CloseWithLog(n, logger, "navigator")
		return nil, err
	}

	planOpts := []planning.Option{
		planning.WithLogger(logger),
		planning.WithThresholds(cfg.Thresholds.Thresholds()),
	}
	if nc.tracer != nil {
		planOpts = append(planOpts, planning.WithTracer(nc.tracer))
	}
	if nc.meter != nil {
		planOpts = append(planOpts, planning.WithMeter(nc.meter))
	}
	n.builder = planning.NewBuilder(n.env.Store, planOpts...)
	n.engine = planning.NewEngine(planOpts...)

	if n.journal == nil {
		j, err := openJournal(cfg.Journal)
		if err != nil {
			CloseWithLog(n, logger, "navigator")
			return nil, err
		}
		n.journal = j
	}

	agendaOpts := []mission.Option{
		mission.WithLogger(logger),
		mission.WithClock(clock),
		mission.WithTaskOptions(task.WithGridSize(cfg.Task.GetGridSize())),
	}
	if n.journal != nil {
		agendaOpts = append(agendaOpts, mission.WithJournal(n.journal))
	}
	n.agenda = mission.NewAgenda(n.builder, n.engine, agendaOpts...)

	logger.Info("navigator ready",
		"environment", n.env.Name,
		"hallway", n.env.Store != nil,
		"journal", cfg.Journal.GetBackend(),
	)
	return n, nil
}

// openJournal returns nil for the "none" backend.
func openJournal(cfg *config.JournalConfig) (journal.Journal, error) {
	switch cfg.GetBackend() {
	case config.JournalMemory:
		return journal.NewMemoryJournal(), nil
	case config.JournalRedis:
		return journal.NewRedisJournal(journal.RedisOptions{
			URL:            cfg.GetURL(),
			Key:            cfg.GetKey(),
			ConnectTimeout: cfg.GetConnectTimeout(),
		})
	default:
		return nil, nil
	}
}

// loadEnvironment fills the environment from options, then files, then the
// registry.
func (n *Navigator) loadEnvironment(nc *navigatorConfig) error {
	n.env = Environment{
		Graph:         nc.graph,
		OriginalGraph: nc.originalGraph,
		Store:         nc.store,
	}

	ec := n.cfg.Environment
	if ec == nil {
		return nil
	}
	n.env.Name = ec.Name

	var err error
	if n.env.Graph == nil && ec.GraphFile != "" {
		if n.env.Graph, err = navgraph.Load(n.cfg.ResolvePath(ec.GraphFile)); err != nil {
			return fmt.Errorf("failed to load graph: %w", err)
		}
	}
	if n.env.OriginalGraph == nil && ec.OriginalGraphFile != "" {
		if n.env.OriginalGraph, err = navgraph.Load(n.cfg.ResolvePath(ec.OriginalGraphFile)); err != nil {
			return fmt.Errorf("failed to load original graph: %w", err)
		}
	}
	if n.env.Store == nil && ec.PassagesFile != "" {
		if n.env.Store, err = passage.LoadFile(n.cfg.ResolvePath(ec.PassagesFile)); err != nil {
			return fmt.Errorf("failed to load passage tables: %w", err)
		}
	}

	complete := n.env.Graph != nil && n.env.OriginalGraph != nil && n.env.Store != nil
	if complete || ec.Name == "" || (ec.Registry == nil && n.registry == nil) {
		return nil
	}

	if n.registry == nil {
		client, err := registry.NewClient(registry.Config{
			Endpoints:   ec.Registry.Endpoints,
			Namespace:   ec.Registry.GetNamespace(),
			DialTimeout: ec.Registry.DialTimeout,
		})
		if err != nil {
			return err
		}
		n.registry = client
		n.ownsRegistry = true
	}

	ctx, cancel := context.WithTimeout(context.Background(), ec.Registry.GetDialTimeout())
	defer cancel()
	return n.fetchEnvironment(ctx)
}

// fetchEnvironment reads every document still missing. Documents that were
// never published are skipped.
func (n *Navigator) fetchEnvironment(ctx context.Context) error {
	name := n.env.Name

	if n.env.Store == nil {
		store, err := n.registry.FetchStore(ctx, name)
		if err != nil && !errors.Is(err, naverr.ErrNotFound) {
			return fmt.Errorf("failed to fetch passage tables: %w", err)
		}
		n.env.Store = store
	}
	if n.env.Graph == nil {
		g, err := n.registry.FetchGraph(ctx, name, registry.DocGraph)
		if err != nil && !errors.Is(err, naverr.ErrNotFound) {
			return fmt.Errorf("failed to fetch graph: %w", err)
		}
		n.env.Graph = g
	}
	if n.env.OriginalGraph == nil {
		g, err := n.registry.FetchGraph(ctx, name, registry.DocOriginalGraph)
		if err != nil && !errors.Is(err, naverr.ErrNotFound) {
			return fmt.Errorf("failed to fetch original graph: %w", err)
		}
		n.env.OriginalGraph = g
	}

	n.logger.Debug("environment fetched from registry",
		"environment", name,
		"graph", n.env.Graph != nil,
		"original_graph", n.env.OriginalGraph != nil,
		"passages", n.env.Store != nil,
	)
	return nil
}

// Environment returns the loaded map data.
func (n *Navigator) Environment() Environment { return n.env }

// Engine returns the shared progression engine.
func (n *Navigator) Engine() *planning.Engine { return n.engine }

// Agenda returns the mission agenda.
func (n *Navigator) Agenda() *mission.Agenda { return n.agenda }

// Journal returns the journal retired tasks are exported to, or nil.
func (n *Navigator) Journal() journal.Journal { return n.journal }

// Health checks the loaded environment, the journal and, when one is in
// use, the registry. Environment files named in the configuration are
// checked too, since they are only read once at startup.
func (n *Navigator) Health(ctx context.Context) health.Status {
	checks := []health.Status{n.environmentHealth()}
	if n.journal != nil {
		checks = append(checks, health.JournalCheck(ctx, n.journal))
	}
	if n.registry != nil {
		checks = append(checks, health.RegistryCheck(ctx, n.registry, n.env.Name))
	}
	if ec := n.cfg.Environment; ec != nil {
		for _, f := range []string{ec.GraphFile, ec.OriginalGraphFile, ec.PassagesFile} {
			if f != "" {
				checks = append(checks, health.FileCheck(n.cfg.ResolvePath(f)))
			}
		}
	}
	return health.Combine(checks...)
}

func (n *Navigator) environmentHealth() health.Status {
	switch {
	case n.env.Store == nil:
		return health.Degraded("no passage tables, hallway plans unavailable", nil)
	case n.env.OriginalGraph == nil:
		return health.Degraded("no original graph, hallway plans have no prologue or epilogue", nil)
	default:
		return health.Healthy("hallway environment loaded")
	}
}

// AddTask queues a navigation target.
func (n *Navigator) AddTask(target geometry.Point) *task.Task {
	return n.agenda.AddTask(target)
}

// RecordDecision appends a to the current task's decision log. It returns 0
// when no task is current.
func (n *Navigator) RecordDecision(a task.Action) int {
	t := n.agenda.Current()
	if t == nil {
		return 0
	}
	return t.RecordDecision(a)
}

// Tick runs one control cycle from pose: it records the scan, retires the
// current task once its target is reached, builds a plan when none is
// active, advances the plan and returns the point to steer toward.
//
// A planner that finds no route is reported through TickResult.NoPath and
// the aim point falls back to the task target. A failed build returns an
// error matching ErrPlanBuild; the task keeps its previous plan.
func (n *Navigator) Tick(ctx context.Context, pose geometry.Pose, scan geometry.LaserScan, p planner.Planner) (TickResult, error) {
	var res TickResult
	pos := pose.Point()

	t := n.agenda.Current()
	if t == nil {
		if t = n.activateNext(); t == nil {
			res.MissionComplete = true
			res.Aim = pos
			return res, nil
		}
	}

	n.agenda.RecordPosition(pose)
	if t.IsTaskComplete(pos) {
		if err := n.agenda.Finish(ctx); err != nil {
			n.logger.Warn("task log export failed",
				"task_id", t.ID(),
				"error", err)
		}
		res.TaskFinished = true
		if t = n.activateNext(); t == nil {
			res.MissionComplete = true
			res.Aim = pos
			return res, nil
		}
		n.agenda.RecordPosition(pose)
	}

	snap := geometry.NewSnapshot(pos, scan.Endpoints(pose), scan.RangeMax)
	t.RecordObservation(pose, snap)
	res.Task = t

	if !t.IsPlanActive() {
		if p == nil {
			res.Aim = t.AimPoint()
			return res, naverr.NewValidationError("Navigator.Tick",
				errors.New("a planner is required to build a plan"))
		}
		err := t.GeneratePlan(ctx, pose, snap, p)
		switch {
		case err == nil:
			res.Replanned = true
			t.MarkPlanPoints()
		case errors.Is(err, ErrEmptyPath):
			res.NoPath = true
			n.logger.Warn("no path to target",
				"task_id", t.ID(),
				"target", t.Target().String(),
				"planner", p.Name(),
			)
		default:
			res.Aim = t.AimPoint()
			return res, err
		}
	}

	if t.IsAnyWaypointComplete(pos, snap) {
		res.Retired = t.AdvancePlan(ctx, pos, snap)
	}
	res.Aim = t.AimPoint()
	return res, nil
}

func (n *Navigator) activateNext() *task.Task {
	next, ok := n.agenda.Next()
	if !ok {
		return nil
	}
	n.agenda.Activate(next)
	return next
}

// Close releases the journal and any registry client the navigator dialed.
func (n *Navigator) Close() error {
	if n.closed {
		return nil
	}
	n.closed = true

	var errs []error
	if n.journal != nil {
		if err := n.journal.Close(); err != nil {
			errs = append(errs, fmt.Errorf("failed to close journal: %w", err))
		}
	}
	if n.registry != nil && n.ownsRegistry {
		if err := n.registry.Close(); err != nil {
			errs = append(errs, fmt.Errorf("failed to close registry: %w", err))
		}
	}
	return errors.Join(errs...)
}

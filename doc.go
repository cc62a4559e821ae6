// Package navplan is the navigation-plan core of a mobile robot agent.
//
// Given a target and a route from an external graph planner, navplan keeps
// track of how much of the route has been driven, retires what was reached
// and tells the action policy where to steer next.
//
// # Core Concepts
//
// The module is organized around a few concepts:
//
//   - Waypoint: one step of a plan. A region to stop in, a corridor polyline,
//     an intersection or a passage between intersections.
//   - Plan: the ordered waypoints of one route plus its build-time costs. Plans
//     come in three kinds: Flat, Skeleton and HallwaySkeleton.
//   - Task: one navigation goal with its plan, decision log and sensor log.
//   - Agenda: the queue of tasks the robot works through.
//   - Navigator: the facade running one control tick over the agenda.
//
// # Packages
//
//   - planning: waypoints, plans, the plan builder and the progression engine
//   - task: the task entity and its plan-position grid
//   - mission: the agenda
//   - passage: the write-once passage metadata store used by hallway plans
//   - navgraph: graph accessors and YAML graph files
//   - planner: the planner interface and a scripted planner
//   - journal: export of retired task logs to Redis
//   - registry: environment publication through etcd
//   - config: navplan.yaml loading
//
// # Getting Started
//
//	nav, err := navplan.New(navplan.WithConfigPath("navplan.yaml"))
//	if err != nil {
//		log.Fatal(err)
//	}
//	defer nav.Close()
//
//	nav.AddTask(geometry.Pt(12, 4))
//	for {
//		res, err := nav.Tick(ctx, pose, scan, astar)
//		if err != nil {
//			logger.Warn("tick failed", "error", err)
//		}
//		if res.MissionComplete {
//			break
//		}
//		steer(res.Aim)
//	}
//
// # Error Handling
//
// Errors are *naverr.Error values matched with errors.Is against the
// sentinels re-exported here:
//
//	if errors.Is(err, navplan.ErrPlanBuild) {
//		// the task kept its previous plan
//	}
//
// # Observability
//
// Plan builds emit an OpenTelemetry span (navplan.plan.build) and metrics
// (navplan.plan.built, navplan.waypoints.retired, navplan.plan.length) on
// the global providers unless WithTracer and WithMeter are given. Logging
// goes through log/slog.
//
// # Thread Safety
//
// A Navigator and everything it owns are driven from a single control loop.
// The passage store is read-only after construction and may be shared.
package navplan

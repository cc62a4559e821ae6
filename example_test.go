package navplan_test

import (
	"context"
	"fmt"
	"io"
	"log"
	"log/slog"

	"github.com/zero-day-ai/navplan"
	"github.com/zero-day-ai/navplan/geometry"
	"github.com/zero-day-ai/navplan/navgraph"
	"github.com/zero-day-ai/navplan/planner"
	"github.com/zero-day-ai/navplan/planning"
)

const exampleGraph = `
nodes:
  - {index: 0, x_cm: 0, y_cm: 0, radius: 1}
  - {index: 1, x_cm: 500, y_cm: 0, radius: 1}
  - {index: 2, x_cm: 1000, y_cm: 0, radius: 1}
edges:
  - {from: 0, to: 1, cost: 500, path: [{x: 0.5, y: 0}, {x: 2.5, y: 0}, {x: 4.5, y: 0}]}
  - {from: 1, to: 2, cost: 500, path: [{x: 5.5, y: 0}, {x: 7.5, y: 0}, {x: 9.5, y: 0}]}
`

// ExampleNavigator_Tick drives one task down a straight corridor.
func ExampleNavigator_Tick() {
	g, err := navgraph.Parse([]byte(exampleGraph))
	if err != nil {
		log.Fatal(err)
	}
	astar := planner.NewScripted(planning.Skeleton, g, planner.WithPaths(1000, []int{0, 1, 2}))

	nav, err := navplan.New(navplan.WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))))
	if err != nil {
		log.Fatal(err)
	}
	defer nav.Close()

	nav.AddTask(geometry.Pt(10, 0))

	ctx := context.Background()
	for _, pose := range []geometry.Pose{{X: 0, Y: 0}, {X: 5, Y: 0.2}, {X: 9.5, Y: 0.3}} {
		res, err := nav.Tick(ctx, pose, geometry.LaserScan{}, astar)
		if err != nil {
			log.Fatal(err)
		}
		fmt.Printf("aim=%s retired=%d finished=%t\n", res.Aim, res.Retired, res.TaskFinished)
	}

	// Output:
	// aim=(4.5, 0) retired=0 finished=false
	// aim=(9.5, 0) retired=2 finished=false
	// aim=(9.5, 0.3) retired=0 finished=true
}

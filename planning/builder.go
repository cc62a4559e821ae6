package planning

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/zero-day-ai/navplan/geometry"
	"github.com/zero-day-ai/navplan/navgraph"
	"github.com/zero-day-ai/navplan/naverr"
	"github.com/zero-day-ai/navplan/passage"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// BuildRequest carries the planner output for one Build call.
type BuildRequest struct {
	// Kind selects the plan representation.
	Kind PlanKind

	// Path is the index path in Graph. For hallway plans Graph is the
	// collapsed intersection graph.
	Path  []int
	Graph navgraph.Graph

	// Prologue and Epilogue are index paths in OriginalGraph that lead onto
	// and off the hallway body. Ignored for other kinds.
	Prologue      []int
	Epilogue      []int
	OriginalGraph navgraph.Graph

	// PathCost is the cost of Path in Graph.
	PathCost float64

	// OriginalPathCost is the cost of prologue plus epilogue in OriginalGraph.
	OriginalPathCost float64

	// OriginalGraphCost is the cost of a flat Path measured in the original
	// graph.
	OriginalGraphCost float64
}

// Builder turns planner output into Plans. It is bound to one passage store
// and is safe for concurrent use.
type Builder struct {
	store  *passage.Store
	opts   options
	logger *slog.Logger
	tel    *telemetry
}

// NewBuilder returns a Builder reading hallway metadata from store. store may
// be nil when no hallway plans are built.
func NewBuilder(store *passage.Store, opts ...Option) *Builder {
	o := newOptions(opts)
	return &Builder{
		store:  store,
		opts:   o,
		logger: o.logger,
		tel:    newTelemetry(o),
	}
}

// Build constructs a plan. An empty Path yields an empty plan. Missing graph
// or passage data fails with an error matching naverr.ErrPlanBuild.
func (b *Builder) Build(ctx context.Context, req BuildRequest) (*Plan, error) {
	ctx, span := b.tel.tracer.Start(ctx, "navplan.plan.build",
		trace.WithAttributes(
			attribute.String("plan.kind", req.Kind.String()),
			attribute.Int("plan.path_length", len(req.Path)),
			attribute.Int("plan.prologue_length", len(req.Prologue)),
			attribute.Int("plan.epilogue_length", len(req.Epilogue)),
		),
	)
	defer span.End()

	var (
		waypoints []Waypoint
		used      float64
		original  float64
		err       error
	)

	switch req.Kind {
	case Flat:
		waypoints, err = b.buildFlat(req.Graph, req.Path)
		used, original = req.PathCost, req.OriginalGraphCost
	case Skeleton:
		waypoints, err = b.buildSkeleton(req.Graph, req.Path)
		used = req.PathCost
	case HallwaySkeleton:
		waypoints, err = b.buildHallway(req)
		used = req.PathCost + req.OriginalPathCost
	default:
		err = fmt.Errorf("unknown plan kind %s", req.Kind)
	}

	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "plan build failed")
		b.logger.Warn("plan build failed",
			"kind", req.Kind.String(),
			"path_length", len(req.Path),
			"error", err)
		return nil, naverr.NewPlanBuildError("Builder.Build", err).
			WithContext(map[string]any{"kind": req.Kind.String()})
	}

	plan := NewPlan(req.Kind, waypoints, used, original)
	plan.indices = append([]int(nil), req.Path...)

	span.SetAttributes(
		attribute.Int("plan.waypoints", len(waypoints)),
		attribute.Float64("plan.cost_used", used),
		attribute.Float64("plan.cost_original", original),
	)
	span.SetStatus(codes.Ok, "")
	b.tel.planBuilt(ctx, plan)

	b.logger.Debug("plan built",
		"kind", req.Kind.String(),
		"waypoints", len(waypoints),
		"cost_used", used)

	return plan, nil
}

func (b *Builder) buildFlat(g navgraph.Graph, path []int) ([]Waypoint, error) {
	if len(path) == 0 {
		return nil, nil
	}
	if g == nil {
		return nil, errors.New("no graph for flat plan")
	}
	out := make([]Waypoint, 0, len(path))
	for _, idx := range path {
		node, err := g.Node(idx)
		if err != nil {
			return nil, err
		}
		w, err := NewSubPath([]geometry.Point{node.Point()})
		if err != nil {
			return nil, err
		}
		out = append(out, w)
	}
	return out, nil
}

// buildSkeleton emits a region per node and, between consecutive nodes, the
// edge polyline oriented to start inside the preceding region.
func (b *Builder) buildSkeleton(g navgraph.Graph, path []int) ([]Waypoint, error) {
	if len(path) == 0 {
		return nil, nil
	}
	if g == nil {
		return nil, errors.New("no graph for skeleton segment")
	}
	out := make([]Waypoint, 0, 2*len(path)-1)
	for k, idx := range path {
		node, err := g.Node(idx)
		if err != nil {
			return nil, err
		}
		region := node.Region()
		out = append(out, NewRegionStop(region.Center, region.Radius))

		if k+1 == len(path) {
			break
		}
		edge, err := g.Edge(idx, path[k+1])
		if err != nil {
			return nil, err
		}
		pts := edge.Path
		if len(pts) > 0 && !region.Contains(pts[0]) {
			pts = geometry.Reversed(pts)
		}
		w, err := NewSubPath(pts)
		if err != nil {
			return nil, fmt.Errorf("edge %d-%d: %w", idx, path[k+1], err)
		}
		out = append(out, w)
	}
	return out, nil
}

func (b *Builder) buildHallway(req BuildRequest) ([]Waypoint, error) {
	var out []Waypoint

	if len(req.Prologue) > 0 {
		pro, err := b.buildSkeleton(req.OriginalGraph, req.Prologue)
		if err != nil {
			return nil, fmt.Errorf("prologue: %w", err)
		}
		out = append(out, pro...)

		if len(req.Path) > 0 {
			first, err := b.intersectionCentroid(req.Graph, req.Path[0])
			if err != nil {
				return nil, err
			}
			out = b.bridge(out, out[len(out)-1].Region().Center, first)
		}
	}

	bodyStart := len(out)
	body, err := b.buildBody(req.Graph, req.Path)
	if err != nil {
		return nil, err
	}
	out = append(out, body...)
	b.spliceThrough(out, bodyStart)

	if len(req.Epilogue) > 0 {
		if req.OriginalGraph == nil {
			return nil, errors.New("no original graph for epilogue")
		}
		if len(body) > 0 {
			entry, err := req.OriginalGraph.Node(req.Epilogue[0])
			if err != nil {
				return nil, fmt.Errorf("epilogue: %w", err)
			}
			out = b.bridge(out, out[len(out)-1].Centroid(), entry.Point())
		}
		epi, err := b.buildSkeleton(req.OriginalGraph, req.Epilogue)
		if err != nil {
			return nil, fmt.Errorf("epilogue: %w", err)
		}
		out = append(out, epi...)
	}

	return out, nil
}

// buildBody emits Intersection, Passage, Intersection, ... for the collapsed
// graph path.
func (b *Builder) buildBody(g navgraph.Graph, path []int) ([]Waypoint, error) {
	if len(path) == 0 {
		return nil, nil
	}
	if g == nil {
		return nil, errors.New("no graph for hallway body")
	}
	if b.store == nil {
		return nil, errors.New("no passage store for hallway body")
	}

	out := make([]Waypoint, 0, 2*len(path)-1)
	for k, idx := range path {
		node, err := g.Node(idx)
		if err != nil {
			return nil, err
		}
		from := node.IntersectionID
		centroid, err := b.store.Centroid(from)
		if err != nil {
			return nil, fmt.Errorf("intersection %d: %w", from, err)
		}
		out = append(out, NewIntersection(from, centroid, b.store.IntersectionGrid(from)))

		if k+1 == len(path) {
			break
		}
		next, err := g.Node(path[k+1])
		if err != nil {
			return nil, err
		}
		link, err := b.store.Passage(from, next.IntersectionID)
		if err != nil {
			return nil, err
		}
		pc, err := b.store.Centroid(link.Passage)
		if err != nil {
			return nil, fmt.Errorf("passage %d: %w", link.Passage, err)
		}
		w, err := NewPassage(link.Passage, link.Trail, pc, b.store.Orientation(link.Passage), b.store.PassageGrid(link.Passage))
		if err != nil {
			return nil, err
		}
		out = append(out, w)
	}
	return out, nil
}

// spliceThrough appends registered through-polylines at body offsets 1, 4,
// 7, ... keyed by the labels of the waypoint and the two following it.
func (b *Builder) spliceThrough(out []Waypoint, start int) {
	if b.store == nil {
		return
	}
	for i := start + 1; i+2 < len(out); i += 3 {
		trail, ok := b.store.Through(out[i].label, out[i+1].label, out[i+2].label)
		if !ok {
			continue
		}
		out[i].points = append(out[i].points, trail...)
	}
}

func (b *Builder) intersectionCentroid(g navgraph.Graph, idx int) (geometry.Point, error) {
	if g == nil {
		return geometry.Point{}, errors.New("no graph for hallway body")
	}
	if b.store == nil {
		return geometry.Point{}, errors.New("no passage store for hallway body")
	}
	node, err := g.Node(idx)
	if err != nil {
		return geometry.Point{}, err
	}
	c, err := b.store.Centroid(node.IntersectionID)
	if err != nil {
		return geometry.Point{}, fmt.Errorf("intersection %d: %w", node.IntersectionID, err)
	}
	return c, nil
}

// bridge appends BridgeSteps+1 small regions from a to b when they are
// farther apart than BridgeGap.
func (b *Builder) bridge(out []Waypoint, from, to geometry.Point) []Waypoint {
	t := b.opts.thresholds
	if from.Distance(to) <= t.BridgeGap {
		return out
	}
	for s := 0; s <= t.BridgeSteps; s++ {
		p := geometry.Lerp(from, to, float64(s)/float64(t.BridgeSteps))
		out = append(out, NewRegionStop(p, t.BridgeRadius))
	}
	return out
}

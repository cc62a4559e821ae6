package planning

import (
	"context"
	"fmt"
	"log/slog"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	metricnoop "go.opentelemetry.io/otel/metric/noop"
	"go.opentelemetry.io/otel/trace"
)

const instrumentationName = "github.com/zero-day-ai/navplan/planning"

// telemetry holds the OpenTelemetry instruments shared by Builder and Engine.
type telemetry struct {
	tracer trace.Tracer

	// builtCounter counts successful plan builds per kind.
	builtCounter metric.Int64Counter

	// retiredCounter counts waypoints moved to the finished history.
	retiredCounter metric.Int64Counter

	// lengthHistogram records the number of waypoints in each built plan.
	lengthHistogram metric.Int64Histogram
}

func newTelemetry(o options) *telemetry {
	tracer := o.tracer
	if tracer == nil {
		tracer = otel.Tracer(instrumentationName)
	}
	meter := o.meter
	if meter == nil {
		meter = otel.Meter(instrumentationName)
	}

	t, err := initInstruments(tracer, meter)
	if err != nil {
		o.logger.Warn("failed to create plan metrics, recording disabled", slog.String("error", err.Error()))
		t, _ = initInstruments(tracer, metricnoop.NewMeterProvider().Meter(instrumentationName))
	}
	return t
}

func initInstruments(tracer trace.Tracer, meter metric.Meter) (*telemetry, error) {
	t := &telemetry{tracer: tracer}
	var err error

	t.builtCounter, err = meter.Int64Counter(
		"navplan.plan.built",
		metric.WithDescription("Number of plans built"),
		metric.WithUnit("1"),
	)
	if err != nil {
		return nil, fmt.Errorf("create built counter: %w", err)
	}

	t.retiredCounter, err = meter.Int64Counter(
		"navplan.waypoints.retired",
		metric.WithDescription("Number of waypoints retired by plan progression"),
		metric.WithUnit("1"),
	)
	if err != nil {
		return nil, fmt.Errorf("create retired counter: %w", err)
	}

	t.lengthHistogram, err = meter.Int64Histogram(
		"navplan.plan.length",
		metric.WithDescription("Waypoints per built plan"),
		metric.WithUnit("1"),
	)
	if err != nil {
		return nil, fmt.Errorf("create length histogram: %w", err)
	}

	return t, nil
}

func (t *telemetry) planBuilt(ctx context.Context, p *Plan) {
	opts := metric.WithAttributes(attribute.String("plan.kind", p.kind.String()))
	t.builtCounter.Add(ctx, 1, opts)
	t.lengthHistogram.Record(ctx, int64(len(p.active)), opts)
}

func (t *telemetry) waypointsRetired(ctx context.Context, kind PlanKind, n int) {
	if n == 0 {
		return
	}
	t.retiredCounter.Add(ctx, int64(n), metric.WithAttributes(attribute.String("plan.kind", kind.String())))
}

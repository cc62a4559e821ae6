package planning

import (
	"log/slog"

	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
)

// Thresholds are the distances, in meters, that define "reached".
type Thresholds struct {
	// ArrivalRadius applies to region centers, intersection centroids and the
	// single-point waypoints of flat plans.
	ArrivalRadius float64

	// VertexRadius applies to the vertices of corridors and passages.
	VertexRadius float64

	// BridgeGap is the distance above which hallway segments are joined by
	// interpolated regions.
	BridgeGap float64

	// BridgeRadius is the radius of each interpolated region.
	BridgeRadius float64

	// BridgeSteps is the number of intervals between bridge regions; the
	// bridge holds BridgeSteps+1 regions including both ends.
	BridgeSteps int

	// AdhocRadius is the radius of detours inserted with InsertAdhoc.
	AdhocRadius float64
}

// DefaultThresholds returns the stock thresholds.
func DefaultThresholds() Thresholds {
	return Thresholds{
		ArrivalRadius: 0.75,
		VertexRadius:  0.5,
		BridgeGap:     5,
		BridgeRadius:  0.5,
		BridgeSteps:   10,
		AdhocRadius:   0.5,
	}
}

// withDefaults fills zero fields from DefaultThresholds.
func (t Thresholds) withDefaults() Thresholds {
	d := DefaultThresholds()
	if t.ArrivalRadius <= 0 {
		t.ArrivalRadius = d.ArrivalRadius
	}
	if t.VertexRadius <= 0 {
		t.VertexRadius = d.VertexRadius
	}
	if t.BridgeGap <= 0 {
		t.BridgeGap = d.BridgeGap
	}
	if t.BridgeRadius <= 0 {
		t.BridgeRadius = d.BridgeRadius
	}
	if t.BridgeSteps <= 0 {
		t.BridgeSteps = d.BridgeSteps
	}
	if t.AdhocRadius <= 0 {
		t.AdhocRadius = d.AdhocRadius
	}
	return t
}

type options struct {
	logger     *slog.Logger
	tracer     trace.Tracer
	meter      metric.Meter
	thresholds Thresholds
}

// Option configures a Builder or an Engine.
type Option func(*options)

// WithLogger sets the structured logger. Defaults to slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

// WithTracer sets the tracer used for plan-build spans.
func WithTracer(tracer trace.Tracer) Option {
	return func(o *options) {
		o.tracer = tracer
	}
}

// WithMeter sets the meter used for plan metrics.
func WithMeter(meter metric.Meter) Option {
	return func(o *options) {
		o.meter = meter
	}
}

// WithThresholds overrides the reach thresholds. Zero fields keep their
// defaults.
func WithThresholds(t Thresholds) Option {
	return func(o *options) {
		o.thresholds = t
	}
}

func newOptions(opts []Option) options {
	o := options{thresholds: DefaultThresholds()}
	for _, opt := range opts {
		opt(&o)
	}
	if o.logger == nil {
		o.logger = slog.Default()
	}
	o.thresholds = o.thresholds.withDefaults()
	return o
}

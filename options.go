package navplan

import (
	"log/slog"
	"time"

	"github.com/zero-day-ai/navplan/config"
	"github.com/zero-day-ai/navplan/journal"
	"github.com/zero-day-ai/navplan/navgraph"
	"github.com/zero-day-ai/navplan/passage"
	"github.com/zero-day-ai/navplan/registry"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
)

// Option configures a Navigator.
type Option func(*navigatorConfig)

// navigatorConfig holds configuration for the Navigator instance.
type navigatorConfig struct {
	config     *config.Config
	configPath string
	logger     *slog.Logger
	tracer     trace.Tracer
	meter      metric.Meter
	clock      func() time.Time

	store         *passage.Store
	graph         *navgraph.Memory
	originalGraph *navgraph.Memory
	journal       journal.Journal
	registry      *registry.Client
}

// WithConfig uses an already loaded configuration.
func WithConfig(cfg *config.Config) Option {
	return func(c *navigatorConfig) {
		c.config = cfg
	}
}

// WithConfigPath loads the configuration from a navplan.yaml file or a
// directory containing one. Ignored when WithConfig is given.
func WithConfigPath(path string) Option {
	return func(c *navigatorConfig) {
		c.configPath = path
	}
}

// WithLogger sets a custom logger for the navigator.
// If not provided, one is built from the logging configuration.
func WithLogger(logger *slog.Logger) Option {
	return func(c *navigatorConfig) {
		c.logger = logger
	}
}

// WithTracer sets an OpenTelemetry tracer for plan-build spans.
func WithTracer(tracer trace.Tracer) Option {
	return func(c *navigatorConfig) {
		c.tracer = tracer
	}
}

// WithMeter sets an OpenTelemetry meter for plan metrics.
func WithMeter(meter metric.Meter) Option {
	return func(c *navigatorConfig) {
		c.meter = meter
	}
}

// WithClock overrides the time source stamped on tasks and journal entries.
func WithClock(clock func() time.Time) Option {
	return func(c *navigatorConfig) {
		c.clock = clock
	}
}

// WithStore supplies the passage tables directly, bypassing files and the
// registry.
func WithStore(store *passage.Store) Option {
	return func(c *navigatorConfig) {
		c.store = store
	}
}

// WithGraphs supplies the planner graph and, for hallway plans, the original
// fine graph. Either may be nil.
func WithGraphs(graph, original *navgraph.Memory) Option {
	return func(c *navigatorConfig) {
		c.graph = graph
		c.originalGraph = original
	}
}

// WithJournal overrides the configured journal backend. The navigator
// closes it on Close.
func WithJournal(j journal.Journal) Option {
	return func(c *navigatorConfig) {
		c.journal = j
	}
}

// WithRegistry fetches environment documents through client instead of
// dialing the configured endpoints. The navigator does not close it.
func WithRegistry(client *registry.Client) Option {
	return func(c *navigatorConfig) {
		c.registry = client
	}
}

// Package config provides loading and parsing of navplan.yaml configuration
// files. A configuration selects the reach thresholds, the logger, the
// journal backend and where the environment graphs and passage tables come
// from. Every field is optional; getters return defaults for zero values.
package config

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/zero-day-ai/navplan/naverr"
	"github.com/zero-day-ai/navplan/planning"
	"gopkg.in/yaml.v3"
)

// FileNames are the names Load looks for when given a directory.
var FileNames = []string{"navplan.yaml", "navplan.yml"}

// Config represents a navplan.yaml configuration file.
type Config struct {
	Thresholds  *ThresholdsConfig  `yaml:"thresholds,omitempty"`
	Logging     *LoggingConfig     `yaml:"logging,omitempty"`
	Journal     *JournalConfig     `yaml:"journal,omitempty"`
	Environment *EnvironmentConfig `yaml:"environment,omitempty"`
	Task        *TaskConfig        `yaml:"task,omitempty"`

	// baseDir is the directory of the loaded file; relative paths resolve
	// against it.
	baseDir string
}

// ThresholdsConfig overrides the reach thresholds, in meters.
type ThresholdsConfig struct {
	ArrivalRadius float64 `yaml:"arrival_radius,omitempty"`
	VertexRadius  float64 `yaml:"vertex_radius,omitempty"`
	BridgeGap     float64 `yaml:"bridge_gap,omitempty"`
	BridgeRadius  float64 `yaml:"bridge_radius,omitempty"`
	BridgeSteps   int     `yaml:"bridge_steps,omitempty"`
	AdhocRadius   float64 `yaml:"adhoc_radius,omitempty"`
}

// Thresholds returns the configured thresholds with defaults for unset
// fields.
func (t *ThresholdsConfig) Thresholds() planning.Thresholds {
	out := planning.DefaultThresholds()
	if t == nil {
		return out
	}
	if t.ArrivalRadius > 0 {
		out.ArrivalRadius = t.ArrivalRadius
	}
	if t.VertexRadius > 0 {
		out.VertexRadius = t.VertexRadius
	}
	if t.BridgeGap > 0 {
		out.BridgeGap = t.BridgeGap
	}
	if t.BridgeRadius > 0 {
		out.BridgeRadius = t.BridgeRadius
	}
	if t.BridgeSteps > 0 {
		out.BridgeSteps = t.BridgeSteps
	}
	if t.AdhocRadius > 0 {
		out.AdhocRadius = t.AdhocRadius
	}
	return out
}

// LoggingConfig selects the slog handler.
type LoggingConfig struct {
	// Level is one of debug, info, warn, error.
	// Default: info
	Level string `yaml:"level,omitempty"`

	// Format is "text" or "json".
	// Default: text
	Format string `yaml:"format,omitempty"`
}

// GetLevel parses the level name. Unknown names yield slog.LevelInfo.
func (l *LoggingConfig) GetLevel() slog.Level {
	if l == nil || l.Level == "" {
		return slog.LevelInfo
	}
	var level slog.Level
	if err := level.UnmarshalText([]byte(l.Level)); err != nil {
		return slog.LevelInfo
	}
	return level
}

// GetFormat returns the handler format or the default value.
func (l *LoggingConfig) GetFormat() string {
	if l == nil || l.Format == "" {
		return "text"
	}
	return strings.ToLower(l.Format)
}

// NewLogger builds a logger writing to w.
func (l *LoggingConfig) NewLogger(w io.Writer) *slog.Logger {
	opts := &slog.HandlerOptions{Level: l.GetLevel()}
	if l.GetFormat() == "json" {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}

// Journal backends.
const (
	JournalNone   = "none"
	JournalMemory = "memory"
	JournalRedis  = "redis"
)

// JournalConfig selects where retired task logs are exported.
type JournalConfig struct {
	// Backend is "none", "memory" or "redis".
	// Default: none
	Backend string `yaml:"backend,omitempty"`

	// URL is the Redis connection string.
	// Default: redis://localhost:6379
	URL string `yaml:"url,omitempty"`

	// Key is the Redis list key.
	// Default: navplan:journal
	Key string `yaml:"key,omitempty"`

	// ConnectTimeout is a Go duration string (e.g., "5s").
	// Default: 5s
	ConnectTimeout string `yaml:"connect_timeout,omitempty"`
}

// GetBackend returns the backend or the default value.
func (j *JournalConfig) GetBackend() string {
	if j == nil || j.Backend == "" {
		return JournalNone
	}
	return strings.ToLower(j.Backend)
}

// GetURL returns the Redis URL or the default value.
func (j *JournalConfig) GetURL() string {
	if j == nil || j.URL == "" {
		return "redis://localhost:6379"
	}
	return j.URL
}

// GetKey returns the list key or the default value.
func (j *JournalConfig) GetKey() string {
	if j == nil || j.Key == "" {
		return "navplan:journal"
	}
	return j.Key
}

// GetConnectTimeout parses the connect timeout string and returns a duration.
// Returns the default value if not set or invalid.
func (j *JournalConfig) GetConnectTimeout() time.Duration {
	if j == nil || j.ConnectTimeout == "" {
		return 5 * time.Second
	}
	d, err := time.ParseDuration(j.ConnectTimeout)
	if err != nil {
		return 5 * time.Second
	}
	return d
}

// EnvironmentConfig locates the navigation graphs and passage tables. Files
// take precedence; the registry is consulted for anything not given as a
// file.
type EnvironmentConfig struct {
	// Name identifies the environment in the registry.
	Name string `yaml:"name,omitempty"`

	// GraphFile is the planner's graph (collapsed graph for hallway plans).
	GraphFile string `yaml:"graph_file,omitempty"`

	// OriginalGraphFile is the fine graph used for hallway prologues.
	OriginalGraphFile string `yaml:"original_graph_file,omitempty"`

	// PassagesFile holds the passage tables.
	PassagesFile string `yaml:"passages_file,omitempty"`

	Registry *RegistryConfig `yaml:"registry,omitempty"`
}

// RegistryConfig holds etcd connection settings.
type RegistryConfig struct {
	// Endpoints is the list of etcd endpoints.
	Endpoints []string `yaml:"endpoints,omitempty"`

	// Namespace is the key prefix for environment entries.
	// Default: navplan
	Namespace string `yaml:"namespace,omitempty"`

	// DialTimeout is a Go duration string.
	// Default: 5s
	DialTimeout string `yaml:"dial_timeout,omitempty"`
}

// GetNamespace returns the namespace or the default value.
func (r *RegistryConfig) GetNamespace() string {
	if r == nil || r.Namespace == "" {
		return "navplan"
	}
	return r.Namespace
}

// GetDialTimeout parses the dial timeout string and returns a duration.
// Returns the default value if not set or invalid.
func (r *RegistryConfig) GetDialTimeout() time.Duration {
	if r == nil || r.DialTimeout == "" {
		return 5 * time.Second
	}
	d, err := time.ParseDuration(r.DialTimeout)
	if err != nil {
		return 5 * time.Second
	}
	return d
}

// TaskConfig configures the tasks created by the agenda.
type TaskConfig struct {
	// GridSize is the side of the plan-position grid, in cells.
	// Default: 200
	GridSize int `yaml:"grid_size,omitempty"`
}

// GetGridSize returns the grid size or the default value.
func (t *TaskConfig) GetGridSize() int {
	if t == nil || t.GridSize <= 0 {
		return 200
	}
	return t.GridSize
}

// Default returns a configuration with every field at its default.
func Default() *Config {
	return &Config{}
}

// ResolvePath resolves p against the directory the configuration was loaded
// from. Absolute and empty paths are returned unchanged.
func (c *Config) ResolvePath(p string) string {
	if p == "" || filepath.IsAbs(p) || c.baseDir == "" {
		return p
	}
	return filepath.Join(c.baseDir, p)
}

// Validate checks field values. The returned error matches
// naverr.ErrInvalidConfig.
func (c *Config) Validate() error {
	var errs []error

	if t := c.Thresholds; t != nil {
		for name, v := range map[string]float64{
			"arrival_radius": t.ArrivalRadius,
			"vertex_radius":  t.VertexRadius,
			"bridge_gap":     t.BridgeGap,
			"bridge_radius":  t.BridgeRadius,
			"adhoc_radius":   t.AdhocRadius,
		} {
			if v < 0 {
				errs = append(errs, fmt.Errorf("thresholds.%s must not be negative", name))
			}
		}
		if t.BridgeSteps < 0 {
			errs = append(errs, errors.New("thresholds.bridge_steps must not be negative"))
		}
	}

	if l := c.Logging; l != nil {
		if l.Level != "" {
			var level slog.Level
			if err := level.UnmarshalText([]byte(l.Level)); err != nil {
				errs = append(errs, fmt.Errorf("logging.level %q is not a level", l.Level))
			}
		}
		if f := l.GetFormat(); f != "text" && f != "json" {
			errs = append(errs, fmt.Errorf("logging.format %q must be text or json", l.Format))
		}
	}

	if j := c.Journal; j != nil {
		switch j.GetBackend() {
		case JournalNone, JournalMemory, JournalRedis:
		default:
			errs = append(errs, fmt.Errorf("journal.backend %q is not supported", j.Backend))
		}
		if j.ConnectTimeout != "" {
			if _, err := time.ParseDuration(j.ConnectTimeout); err != nil {
				errs = append(errs, fmt.Errorf("journal.connect_timeout: %w", err))
			}
		}
	}

	if e := c.Environment; e != nil && e.Registry != nil {
		if len(e.Registry.Endpoints) == 0 {
			errs = append(errs, errors.New("environment.registry.endpoints cannot be empty"))
		}
		if e.Name == "" {
			errs = append(errs, errors.New("environment.name is required with a registry"))
		}
		if e.Registry.DialTimeout != "" {
			if _, err := time.ParseDuration(e.Registry.DialTimeout); err != nil {
				errs = append(errs, fmt.Errorf("environment.registry.dial_timeout: %w", err))
			}
		}
	}

	if c.Task != nil && c.Task.GridSize < 0 {
		errs = append(errs, errors.New("task.grid_size must not be negative"))
	}

	if len(errs) == 0 {
		return nil
	}
	return naverr.NewConfigurationError("config.Validate", errors.Join(errs...))
}

// Parse decodes a YAML document.
func Parse(data []byte) (*Config, error) {
	var config Config
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, naverr.NewConfigurationError("config.Parse",
			fmt.Errorf("failed to parse config file: %w", err))
	}
	return &config, nil
}

// Load reads and parses a navplan.yaml file from the given path.
// If the path is a directory, it looks for navplan.yaml or navplan.yml in that directory.
func Load(path string) (*Config, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("failed to stat path: %w", err)
	}

	configPath := path
	if info.IsDir() {
		configPath = ""
		for _, name := range FileNames {
			candidate := filepath.Join(path, name)
			if _, err := os.Stat(candidate); err == nil {
				configPath = candidate
				break
			}
		}
		if configPath == "" {
			return nil, naverr.NewNotFoundError("config.Load",
				fmt.Errorf("no navplan.yaml or navplan.yml found in %s", path))
		}
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	config, err := Parse(data)
	if err != nil {
		return nil, err
	}
	config.baseDir = filepath.Dir(configPath)
	return config, nil
}

// LoadFromDir searches for navplan.yaml starting from the given directory
// and walking up to parent directories until found or root is reached.
func LoadFromDir(dir string) (*Config, error) {
	absDir, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to get absolute path: %w", err)
	}

	for {
		config, err := Load(absDir)
		if err == nil {
			return config, nil
		}
		if !errors.Is(err, naverr.ErrNotFound) {
			return nil, err
		}

		parent := filepath.Dir(absDir)
		if parent == absDir {
			return nil, naverr.NewNotFoundError("config.LoadFromDir",
				fmt.Errorf("no navplan.yaml found in %s or parent directories", dir))
		}
		absDir = parent
	}
}

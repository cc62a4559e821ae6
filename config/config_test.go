package config

import (
	"bytes"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zero-day-ai/navplan/naverr"
	"github.com/zero-day-ai/navplan/planning"
)

const fullConfig = `
thresholds:
  arrival_radius: 1.0
  bridge_steps: 4
logging:
  level: debug
  format: json
journal:
  backend: redis
  url: redis://robot:6379/2
  key: lab:journal
  connect_timeout: 2s
environment:
  name: lab
  graph_file: graphs/skeleton.yaml
  passages_file: /srv/passages.yaml
  registry:
    endpoints: ["etcd-0:2379", "etcd-1:2379"]
    dial_timeout: 1s
task:
  grid_size: 64
`

func writeConfig(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestDefaults(t *testing.T) {
	c := Default()

	assert.Equal(t, planning.DefaultThresholds(), c.Thresholds.Thresholds())
	assert.Equal(t, slog.LevelInfo, c.Logging.GetLevel())
	assert.Equal(t, "text", c.Logging.GetFormat())
	assert.Equal(t, JournalNone, c.Journal.GetBackend())
	assert.Equal(t, "redis://localhost:6379", c.Journal.GetURL())
	assert.Equal(t, "navplan:journal", c.Journal.GetKey())
	assert.Equal(t, 5*time.Second, c.Journal.GetConnectTimeout())
	assert.Equal(t, "navplan", (*RegistryConfig)(nil).GetNamespace())
	assert.Equal(t, 5*time.Second, (*RegistryConfig)(nil).GetDialTimeout())
	assert.Equal(t, 200, c.Task.GetGridSize())
	assert.NoError(t, c.Validate())
}

func TestParseFull(t *testing.T) {
	c, err := Parse([]byte(fullConfig))
	require.NoError(t, err)
	require.NoError(t, c.Validate())

	th := c.Thresholds.Thresholds()
	assert.Equal(t, 1.0, th.ArrivalRadius)
	assert.Equal(t, 4, th.BridgeSteps)
	assert.Equal(t, 0.5, th.VertexRadius)

	assert.Equal(t, slog.LevelDebug, c.Logging.GetLevel())
	assert.Equal(t, "json", c.Logging.GetFormat())
	assert.Equal(t, JournalRedis, c.Journal.GetBackend())
	assert.Equal(t, "redis://robot:6379/2", c.Journal.GetURL())
	assert.Equal(t, "lab:journal", c.Journal.GetKey())
	assert.Equal(t, 2*time.Second, c.Journal.GetConnectTimeout())

	require.NotNil(t, c.Environment)
	assert.Equal(t, "lab", c.Environment.Name)
	assert.Equal(t, []string{"etcd-0:2379", "etcd-1:2379"}, c.Environment.Registry.Endpoints)
	assert.Equal(t, "navplan", c.Environment.Registry.GetNamespace())
	assert.Equal(t, time.Second, c.Environment.Registry.GetDialTimeout())
	assert.Equal(t, 64, c.Task.GetGridSize())
}

func TestParseInvalidYAML(t *testing.T) {
	_, err := Parse([]byte("thresholds: [unterminated"))
	require.Error(t, err)
	assert.ErrorIs(t, err, naverr.ErrInvalidConfig)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		yaml    string
		wantErr string
	}{
		{"negative radius", "thresholds:\n  arrival_radius: -1\n", "thresholds.arrival_radius"},
		{"negative steps", "thresholds:\n  bridge_steps: -2\n", "thresholds.bridge_steps"},
		{"bad level", "logging:\n  level: loud\n", "logging.level"},
		{"bad format", "logging:\n  format: xml\n", "logging.format"},
		{"bad backend", "journal:\n  backend: kafka\n", "journal.backend"},
		{"bad timeout", "journal:\n  connect_timeout: soon\n", "journal.connect_timeout"},
		{"registry without endpoints", "environment:\n  name: lab\n  registry: {}\n", "endpoints cannot be empty"},
		{"registry without name", "environment:\n  registry:\n    endpoints: [a:1]\n", "environment.name"},
		{"negative grid", "task:\n  grid_size: -1\n", "task.grid_size"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, err := Parse([]byte(tt.yaml))
			require.NoError(t, err)

			err = c.Validate()
			require.Error(t, err)
			assert.ErrorIs(t, err, naverr.ErrInvalidConfig)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestLoad(t *testing.T) {
	t.Run("file", func(t *testing.T) {
		dir := t.TempDir()
		path := writeConfig(t, dir, "custom.yaml", fullConfig)

		c, err := Load(path)
		require.NoError(t, err)
		assert.Equal(t, filepath.Join(dir, "graphs/skeleton.yaml"), c.ResolvePath(c.Environment.GraphFile))
		assert.Equal(t, "/srv/passages.yaml", c.ResolvePath(c.Environment.PassagesFile))
		assert.Equal(t, "", c.ResolvePath(""))
	})

	t.Run("directory with yml", func(t *testing.T) {
		dir := t.TempDir()
		writeConfig(t, dir, "navplan.yml", "task:\n  grid_size: 10\n")

		c, err := Load(dir)
		require.NoError(t, err)
		assert.Equal(t, 10, c.Task.GetGridSize())
	})

	t.Run("directory prefers yaml", func(t *testing.T) {
		dir := t.TempDir()
		writeConfig(t, dir, "navplan.yaml", "task:\n  grid_size: 20\n")
		writeConfig(t, dir, "navplan.yml", "task:\n  grid_size: 10\n")

		c, err := Load(dir)
		require.NoError(t, err)
		assert.Equal(t, 20, c.Task.GetGridSize())
	})

	t.Run("empty directory", func(t *testing.T) {
		_, err := Load(t.TempDir())
		require.Error(t, err)
		assert.ErrorIs(t, err, naverr.ErrNotFound)
	})

	t.Run("missing path", func(t *testing.T) {
		_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "failed to stat path")
	})
}

func TestLoadFromDir(t *testing.T) {
	root := t.TempDir()
	writeConfig(t, root, "navplan.yaml", "logging:\n  level: warn\n")
	nested := filepath.Join(root, "a", "b")
	require.NoError(t, os.MkdirAll(nested, 0o755))

	c, err := LoadFromDir(nested)
	require.NoError(t, err)
	assert.Equal(t, slog.LevelWarn, c.Logging.GetLevel())
}

func TestNewLogger(t *testing.T) {
	var buf bytes.Buffer
	l := (&LoggingConfig{Level: "warn", Format: "json"}).NewLogger(&buf)

	l.Info("hidden")
	l.Warn("shown", "task_id", "t1")

	out := buf.String()
	assert.NotContains(t, out, "hidden")
	assert.Contains(t, out, `"msg":"shown"`)
	assert.Contains(t, out, `"task_id":"t1"`)

	buf.Reset()
	(*LoggingConfig)(nil).NewLogger(&buf).Info("plain")
	assert.Contains(t, buf.String(), "msg=plain")
}

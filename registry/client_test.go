package registry

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zero-day-ai/navplan/geometry"
	"github.com/zero-day-ai/navplan/navgraph"
	"github.com/zero-day-ai/navplan/naverr"
	"github.com/zero-day-ai/navplan/passage"
	"go.etcd.io/etcd/api/v3/mvccpb"
	clientv3 "go.etcd.io/etcd/client/v3"
)

// fakeKV is an in-memory KV honouring single-key and range (prefix) ops.
type fakeKV struct {
	mu   sync.Mutex
	data map[string]string
	err  error
}

func newFakeKV() *fakeKV {
	return &fakeKV{data: make(map[string]string)}
}

func (f *fakeKV) inRange(op clientv3.Op, key string) bool {
	start := string(op.KeyBytes())
	end := op.RangeBytes()
	if len(end) == 0 {
		return key == start
	}
	return key >= start && key < string(end)
}

func (f *fakeKV) Put(_ context.Context, key, val string, _ ...clientv3.OpOption) (*clientv3.PutResponse, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	f.data[key] = val
	return &clientv3.PutResponse{}, nil
}

func (f *fakeKV) Get(_ context.Context, key string, opts ...clientv3.OpOption) (*clientv3.GetResponse, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}

	op := clientv3.OpGet(key, opts...)
	keys := make([]string, 0, len(f.data))
	for k := range f.data {
		if f.inRange(op, k) {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)

	resp := &clientv3.GetResponse{Count: int64(len(keys))}
	for _, k := range keys {
		resp.Kvs = append(resp.Kvs, &mvccpb.KeyValue{Key: []byte(k), Value: []byte(f.data[k])})
	}
	return resp, nil
}

func (f *fakeKV) Delete(_ context.Context, key string, opts ...clientv3.OpOption) (*clientv3.DeleteResponse, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}

	op := clientv3.OpDelete(key, opts...)
	var n int64
	for k := range f.data {
		if f.inRange(op, k) {
			delete(f.data, k)
			n++
		}
	}
	return &clientv3.DeleteResponse{Deleted: n}, nil
}

func sampleTables() passage.Tables {
	return passage.Tables{
		Centroids: [][]int{{1000, 0}, {2000, 0}, {1500, 0}},
		Adjacency: []passage.Adjacency{
			{From: 1, Passage: 3, To: 2, Trail: []geometry.Point{{X: 10, Y: 0}, {X: 15, Y: 0}, {X: 20, Y: 0}}},
		},
		PassageGrids: map[int][]passage.Cell{3: {{X: 11, Y: 0}, {X: 19, Y: 0}}},
	}
}

func sampleGraph() navgraph.File {
	return navgraph.File{
		Nodes: []navgraph.NodeSpec{
			{Index: 0, XCm: 0, YCm: 0, Radius: 1},
			{Index: 1, XCm: 500, YCm: 0, Radius: 1},
		},
		Edges: []navgraph.EdgeSpec{
			{From: 0, To: 1, Cost: 500, Path: []geometry.Point{{X: 0, Y: 0}, {X: 5, Y: 0}}},
		},
	}
}

func TestPublishFetchTables(t *testing.T) {
	ctx := context.Background()
	kv := newFakeKV()
	c := NewWithKV(kv, "")
	assert.Equal(t, "navplan", c.Namespace())

	require.NoError(t, c.PublishTables(ctx, "lab", sampleTables()))
	assert.Contains(t, kv.data, "/navplan/environments/lab/passages")
	assert.Contains(t, kv.data["/navplan/environments/lab/passages"], "centroids_cm")

	tables, err := c.FetchTables(ctx, "lab")
	require.NoError(t, err)
	assert.Equal(t, sampleTables().Centroids, tables.Centroids)

	store, err := c.FetchStore(ctx, "lab")
	require.NoError(t, err)
	centroid, err := store.Centroid(2)
	require.NoError(t, err)
	assert.Equal(t, geometry.Pt(20, 0), centroid)
	assert.Equal(t, passage.Horizontal, store.Orientation(3))

	link, err := store.Passage(2, 1)
	require.NoError(t, err)
	assert.True(t, link.Reversed)
}

func TestPublishFetchGraph(t *testing.T) {
	ctx := context.Background()
	c := NewWithKV(newFakeKV(), "robots")

	require.NoError(t, c.PublishGraph(ctx, "lab", DocGraph, sampleGraph()))
	require.NoError(t, c.PublishGraph(ctx, "lab", DocOriginalGraph, sampleGraph()))

	g, err := c.FetchGraph(ctx, "lab", DocOriginalGraph)
	require.NoError(t, err)
	assert.Equal(t, 2, g.Len())

	edge, err := g.Edge(1, 0)
	require.NoError(t, err)
	assert.Equal(t, 500.0, edge.Cost)
}

func TestPublishValidation(t *testing.T) {
	ctx := context.Background()
	c := NewWithKV(newFakeKV(), "")

	err := c.PublishGraph(ctx, "lab", "map", sampleGraph())
	assert.ErrorIs(t, err, &naverr.Error{Kind: naverr.KindValidation})

	bad := sampleGraph()
	bad.Edges[0].To = 7
	err = c.PublishGraph(ctx, "lab", DocGraph, bad)
	require.Error(t, err)

	tables := sampleTables()
	tables.Adjacency[0].Trail = nil
	err = c.PublishTables(ctx, "lab", tables)
	require.Error(t, err)
}

func TestFetchMissing(t *testing.T) {
	ctx := context.Background()
	c := NewWithKV(newFakeKV(), "")

	_, err := c.FetchTables(ctx, "nowhere")
	assert.ErrorIs(t, err, naverr.ErrNotFound)

	_, err = c.FetchGraph(ctx, "nowhere", DocGraph)
	assert.ErrorIs(t, err, naverr.ErrNotFound)
}

func TestFetchMalformed(t *testing.T) {
	kv := newFakeKV()
	kv.data["/navplan/environments/lab/passages"] = "centroids_cm: {{{"
	c := NewWithKV(kv, "")

	_, err := c.FetchTables(context.Background(), "lab")
	assert.ErrorIs(t, err, naverr.ErrStorage)
}

func TestEnvironmentsAndDelete(t *testing.T) {
	ctx := context.Background()
	kv := newFakeKV()
	c := NewWithKV(kv, "")

	require.NoError(t, c.PublishTables(ctx, "west", sampleTables()))
	require.NoError(t, c.PublishGraph(ctx, "west", DocGraph, sampleGraph()))
	require.NoError(t, c.PublishTables(ctx, "east", sampleTables()))
	kv.data["/other/environments/north/passages"] = "x"

	names, err := c.Environments(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"east", "west"}, names)

	require.NoError(t, c.Delete(ctx, "west"))
	names, err = c.Environments(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"east"}, names)

	for k := range kv.data {
		assert.False(t, strings.HasPrefix(k, "/navplan/environments/west/"), k)
	}

	require.NoError(t, c.Delete(ctx, "missing"))
}

func TestStorageErrors(t *testing.T) {
	ctx := context.Background()
	kv := newFakeKV()
	kv.err = errors.New("etcdserver: leader changed")
	c := NewWithKV(kv, "")

	assert.ErrorIs(t, c.PublishTables(ctx, "lab", sampleTables()), naverr.ErrStorage)
	_, err := c.FetchTables(ctx, "lab")
	assert.ErrorIs(t, err, naverr.ErrStorage)
	_, err = c.Environments(ctx)
	assert.ErrorIs(t, err, naverr.ErrStorage)
	assert.ErrorIs(t, c.Delete(ctx, "lab"), naverr.ErrStorage)
}

func TestClose(t *testing.T) {
	ctx := context.Background()
	c := NewWithKV(newFakeKV(), "")

	require.NoError(t, c.Close())
	require.NoError(t, c.Close())

	err := c.PublishTables(ctx, "lab", sampleTables())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "closed")
}

func TestNewClientConfig(t *testing.T) {
	t.Run("empty endpoints", func(t *testing.T) {
		_, err := NewClient(Config{})
		assert.ErrorIs(t, err, naverr.ErrInvalidConfig)
	})

	t.Run("bad dial timeout", func(t *testing.T) {
		_, err := NewClient(Config{Endpoints: []string{"localhost:2379"}, DialTimeout: "soon"})
		assert.ErrorIs(t, err, naverr.ErrInvalidConfig)
	})

	t.Run("incomplete TLS", func(t *testing.T) {
		_, err := NewClient(Config{
			Endpoints: []string{"localhost:2379"},
			TLS:       &TLSConfig{Enabled: true, CertFile: "cert.pem"},
		})
		require.Error(t, err)
		assert.ErrorIs(t, err, naverr.ErrInvalidConfig)
		assert.Contains(t, err.Error(), "TLS key file is required")
		assert.Contains(t, err.Error(), "TLS CA file is required")
	})
}

func TestNewClientFromEnvUnset(t *testing.T) {
	t.Setenv("NAVPLAN_REGISTRY_ENDPOINTS", "")
	c, err := NewClientFromEnv()
	assert.NoError(t, err)
	assert.Nil(t, c)
}

func TestClientTLSMissingFiles(t *testing.T) {
	tests := []struct {
		name string
		cfg  TLSConfig
		want string
	}{
		{
			name: "all missing",
			cfg:  TLSConfig{Enabled: true},
			want: "TLS cert file is required when TLS is enabled\n" +
				"TLS key file is required when TLS is enabled\n" +
				"TLS CA file is required when TLS is enabled",
		},
		{
			name: "key and CA missing",
			cfg:  TLSConfig{Enabled: true, CertFile: "cert.pem"},
			want: "TLS key file is required when TLS is enabled\n" +
				"TLS CA file is required when TLS is enabled",
		},
		{
			name: "only CA missing",
			cfg:  TLSConfig{Enabled: true, CertFile: "cert.pem", KeyFile: "key.pem"},
			want: "TLS CA file is required when TLS is enabled",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for i := 0; i < 10; i++ {
				cfg, err := clientTLS(&tt.cfg)
				require.Error(t, err)
				assert.Nil(t, cfg)
				assert.Equal(t, tt.want, err.Error())
			}
		})
	}
}

func TestClientTLSDisabled(t *testing.T) {
	cfg, err := clientTLS(nil)
	assert.NoError(t, err)
	assert.Nil(t, cfg)

	cfg, err = clientTLS(&TLSConfig{Enabled: false, CertFile: "x"})
	assert.NoError(t, err)
	assert.Nil(t, cfg)
}

var _ KV = (*clientv3.Client)(nil)

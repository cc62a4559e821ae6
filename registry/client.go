package registry

import (
	"context"
	"fmt"
	"os"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/zero-day-ai/navplan/navgraph"
	"github.com/zero-day-ai/navplan/naverr"
	"github.com/zero-day-ai/navplan/passage"
	clientv3 "go.etcd.io/etcd/client/v3"
	"gopkg.in/yaml.v3"
)

// Client publishes and fetches environments. All methods are safe for
// concurrent use.
type Client struct {
	kv        KV
	closer    func() error
	namespace string

	mu     sync.RWMutex
	closed bool
}

// NewClient connects to etcd and verifies connectivity with a read.
func NewClient(cfg Config) (*Client, error) {
	if len(cfg.Endpoints) == 0 {
		return nil, naverr.NewConfigurationError("registry.NewClient",
			fmt.Errorf("registry endpoints cannot be empty"))
	}

	dialTimeout := 5 * time.Second
	if cfg.DialTimeout != "" {
		d, err := time.ParseDuration(cfg.DialTimeout)
		if err != nil {
			return nil, naverr.NewConfigurationError("registry.NewClient",
				fmt.Errorf("invalid dial timeout: %w", err))
		}
		dialTimeout = d
	}

	clientCfg := clientv3.Config{
		Endpoints:   cfg.Endpoints,
		DialTimeout: dialTimeout,
	}

	tlsConfig, err := clientTLS(cfg.TLS)
	if err != nil {
		return nil, naverr.NewConfigurationError("registry.NewClient",
			fmt.Errorf("failed to configure TLS: %w", err))
	}
	clientCfg.TLS = tlsConfig

	cli, err := clientv3.New(clientCfg)
	if err != nil {
		return nil, naverr.NewStorageError("registry.NewClient",
			fmt.Errorf("failed to create etcd client: %w", err))
	}

	ctx, cancel := context.WithTimeout(context.Background(), dialTimeout)
	defer cancel()

	if _, err := cli.Get(ctx, "health-check"); err != nil && err != context.DeadlineExceeded {
		cli.Close()
		return nil, naverr.NewStorageError("registry.NewClient",
			fmt.Errorf("etcd health check failed: %w", err))
	}

	c := NewWithKV(cli, cfg.Namespace)
	c.closer = cli.Close
	return c, nil
}

// NewClientFromEnv creates a client from NAVPLAN_REGISTRY_ENDPOINTS, a
// comma-separated endpoint list. It returns (nil, nil) when the variable is
// unset.
func NewClientFromEnv() (*Client, error) {
	endpoints := os.Getenv("NAVPLAN_REGISTRY_ENDPOINTS")
	if endpoints == "" {
		return nil, nil
	}

	endpointList := strings.Split(endpoints, ",")
	for i, ep := range endpointList {
		endpointList[i] = strings.TrimSpace(ep)
	}

	return NewClient(Config{Endpoints: endpointList})
}

// NewWithKV wraps an existing key-value client. Close does not close kv.
func NewWithKV(kv KV, namespace string) *Client {
	if namespace == "" {
		namespace = "navplan"
	}
	return &Client{kv: kv, namespace: namespace}
}

// Namespace returns the key prefix.
func (c *Client) Namespace() string {
	return c.namespace
}

// PublishTables stores passage tables under name.
func (c *Client) PublishTables(ctx context.Context, name string, tables passage.Tables) error {
	if _, err := passage.NewStore(tables); err != nil {
		return naverr.NewValidationError("Client.PublishTables", err)
	}
	return c.put(ctx, "Client.PublishTables", name, DocPassages, tables)
}

// PublishGraph stores a graph under name. doc is DocGraph or DocOriginalGraph.
func (c *Client) PublishGraph(ctx context.Context, name, doc string, graph navgraph.File) error {
	if doc != DocGraph && doc != DocOriginalGraph {
		return naverr.NewValidationError("Client.PublishGraph",
			fmt.Errorf("unknown graph document %q", doc))
	}
	if _, err := graph.Build(); err != nil {
		return naverr.NewValidationError("Client.PublishGraph", err)
	}
	return c.put(ctx, "Client.PublishGraph", name, doc, graph)
}

// FetchTables reads the passage tables of name.
func (c *Client) FetchTables(ctx context.Context, name string) (passage.Tables, error) {
	var tables passage.Tables
	if err := c.get(ctx, "Client.FetchTables", name, DocPassages, &tables); err != nil {
		return passage.Tables{}, err
	}
	return tables, nil
}

// FetchStore reads the passage tables of name and builds a Store.
func (c *Client) FetchStore(ctx context.Context, name string) (*passage.Store, error) {
	tables, err := c.FetchTables(ctx, name)
	if err != nil {
		return nil, err
	}
	return passage.NewStore(tables)
}

// FetchGraph reads and builds a graph of name.
func (c *Client) FetchGraph(ctx context.Context, name, doc string) (*navgraph.Memory, error) {
	var f navgraph.File
	if err := c.get(ctx, "Client.FetchGraph", name, doc, &f); err != nil {
		return nil, err
	}
	return f.Build()
}

// Environments lists the published environment names, sorted.
func (c *Client) Environments(ctx context.Context) ([]string, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if c.closed {
		return nil, errClosed("Client.Environments")
	}

	prefix := c.environmentsPrefix()
	resp, err := c.kv.Get(ctx, prefix, clientv3.WithPrefix(), clientv3.WithKeysOnly())
	if err != nil {
		return nil, naverr.NewStorageError("Client.Environments",
			fmt.Errorf("failed to list environments: %w", err))
	}

	seen := make(map[string]struct{})
	for _, kv := range resp.Kvs {
		rest := strings.TrimPrefix(string(kv.Key), prefix)
		name, _, ok := strings.Cut(rest, "/")
		if !ok || name == "" {
			continue
		}
		seen[name] = struct{}{}
	}

	names := make([]string, 0, len(seen))
	for name := range seen {
		names = append(names, name)
	}
	sort.Strings(names)
	return names, nil
}

// Delete removes every document of name. Deleting an unknown environment
// is a no-op.
func (c *Client) Delete(ctx context.Context, name string) error {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if c.closed {
		return errClosed("Client.Delete")
	}

	if _, err := c.kv.Delete(ctx, c.environmentsPrefix()+name+"/", clientv3.WithPrefix()); err != nil {
		return naverr.NewStorageError("Client.Delete",
			fmt.Errorf("failed to delete environment %s: %w", name, err))
	}
	return nil
}

// Close releases the etcd connection. Calling it more than once is safe.
func (c *Client) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return nil
	}
	c.closed = true
	if c.closer != nil {
		return c.closer()
	}
	return nil
}

func (c *Client) put(ctx context.Context, op, name, doc string, v any) error {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if c.closed {
		return errClosed(op)
	}

	data, err := yaml.Marshal(v)
	if err != nil {
		return naverr.NewStorageError(op, fmt.Errorf("failed to marshal %s: %w", doc, err))
	}

	key := c.buildKey(name, doc)
	if _, err := c.kv.Put(ctx, key, string(data)); err != nil {
		return naverr.NewStorageError(op, fmt.Errorf("failed to put %s: %w", key, err))
	}
	return nil
}

func (c *Client) get(ctx context.Context, op, name, doc string, v any) error {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if c.closed {
		return errClosed(op)
	}

	key := c.buildKey(name, doc)
	resp, err := c.kv.Get(ctx, key)
	if err != nil {
		return naverr.NewStorageError(op, fmt.Errorf("failed to get %s: %w", key, err))
	}
	if len(resp.Kvs) == 0 {
		return naverr.NewNotFoundError(op, fmt.Errorf("no %s published for environment %s", doc, name))
	}

	if err := yaml.Unmarshal(resp.Kvs[0].Value, v); err != nil {
		return naverr.NewStorageError(op, fmt.Errorf("failed to parse %s: %w", key, err))
	}
	return nil
}

func (c *Client) environmentsPrefix() string {
	return fmt.Sprintf("/%s/environments/", c.namespace)
}

// buildKey constructs the etcd key for an environment document.
//
// Format: /namespace/environments/name/doc
func (c *Client) buildKey(name, doc string) string {
	return c.environmentsPrefix() + name + "/" + doc
}

func errClosed(op string) error {
	return naverr.NewStorageError(op, fmt.Errorf("registry client is closed"))
}

// Package registry publishes and fetches environment metadata through etcd.
//
// Robots sharing a building share its navigation graphs and passage tables.
// Those documents are produced offline, published once under an environment
// name and fetched by every navigator at startup:
//
//	/{namespace}/environments/{name}/graph
//	/{namespace}/environments/{name}/original_graph
//	/{namespace}/environments/{name}/passages
//
// Values are the same YAML documents navgraph.Parse and passage.Parse read
// from disk, so a published environment can be dumped back to files with
// etcdctl.
package registry

import (
	"context"

	clientv3 "go.etcd.io/etcd/client/v3"
)

// Document names under an environment.
const (
	DocGraph         = "graph"
	DocOriginalGraph = "original_graph"
	DocPassages      = "passages"
)

// KV is the subset of the etcd key-value API the registry uses.
// *clientv3.Client satisfies it.
type KV interface {
	Put(ctx context.Context, key, val string, opts ...clientv3.OpOption) (*clientv3.PutResponse, error)
	Get(ctx context.Context, key string, opts ...clientv3.OpOption) (*clientv3.GetResponse, error)
	Delete(ctx context.Context, key string, opts ...clientv3.OpOption) (*clientv3.DeleteResponse, error)
}

// Config holds registry connection configuration.
type Config struct {
	// Endpoints is the list of etcd endpoints
	// Format: ["host1:2379", "host2:2379", "host3:2379"]
	Endpoints []string `json:"endpoints" yaml:"endpoints"`

	// Namespace is the etcd key prefix for all environment entries
	// Default: "navplan"
	Namespace string `json:"namespace" yaml:"namespace"`

	// DialTimeout bounds connection establishment
	// Default: 5s
	DialTimeout string `json:"dial_timeout" yaml:"dial_timeout"`

	// TLS holds TLS configuration for secure etcd communication
	// If nil, TLS is disabled
	TLS *TLSConfig `json:"tls" yaml:"tls"`
}

// TLSConfig holds TLS certificate configuration for secure registry communication.
type TLSConfig struct {
	// Enabled determines whether TLS is active
	// If false, all other fields are ignored
	Enabled bool `json:"enabled" yaml:"enabled"`

	// CertFile is the path to the client certificate file (PEM format)
	CertFile string `json:"cert_file" yaml:"cert_file"`

	// KeyFile is the path to the client private key file (PEM format)
	KeyFile string `json:"key_file" yaml:"key_file"`

	// CAFile is the path to the certificate authority file (PEM format)
	CAFile string `json:"ca_file" yaml:"ca_file"`
}

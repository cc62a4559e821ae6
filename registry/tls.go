package registry

import (
	"crypto/tls"
	"crypto/x509"
	"errors"
	"fmt"
	"os"
)

// clientTLS builds a mutual-TLS client configuration. It returns nil when
// cfg is nil or disabled.
func clientTLS(cfg *TLSConfig) (*tls.Config, error) {
	if cfg == nil || !cfg.Enabled {
		return nil, nil
	}

	var missing []error
	for _, f := range []struct{ name, path string }{
		{"cert", cfg.CertFile},
		{"key", cfg.KeyFile},
		{"CA", cfg.CAFile},
	} {
		if f.path == "" {
			missing = append(missing, fmt.Errorf("TLS %s file is required when TLS is enabled", f.name))
		}
	}
	if len(missing) > 0 {
		return nil, errors.Join(missing...)
	}

	cert, err := tls.LoadX509KeyPair(cfg.CertFile, cfg.KeyFile)
	if err != nil {
		return nil, fmt.Errorf("failed to load client certificate: %w", err)
	}

	caData, err := os.ReadFile(cfg.CAFile)
	if err != nil {
		return nil, fmt.Errorf("failed to read CA certificate: %w", err)
	}

	pool := x509.NewCertPool()
	if !pool.AppendCertsFromPEM(caData) {
		return nil, fmt.Errorf("failed to parse CA certificate %s", cfg.CAFile)
	}

	return &tls.Config{
		Certificates: []tls.Certificate{cert},
		RootCAs:      pool,
		MinVersion:   tls.VersionTLS12,
	}, nil
}

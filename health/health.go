package health

import (
	"context"
	"fmt"
	"os"
)

// Counter is anything that can report how many records it holds. Both
// journal backends satisfy it.
type Counter interface {
	Len(ctx context.Context) (int, error)
}

// Lister lists the environments published to a registry.
type Lister interface {
	Environments(ctx context.Context) ([]string, error)
}

// JournalCheck probes a journal with a length query.
func JournalCheck(ctx context.Context, j Counter) Status {
	if j == nil {
		return Degraded("journal disabled", nil)
	}
	n, err := j.Len(ctx)
	if err != nil {
		return Unhealthy("journal unreachable", map[string]any{"error": err.Error()})
	}
	return Status{
		Status:  StatusHealthy,
		Message: fmt.Sprintf("journal holds %d entries", n),
		Details: map[string]any{"entries": n},
	}
}

// RegistryCheck lists the registry's environments and expects name among
// them. An empty name only checks connectivity.
func RegistryCheck(ctx context.Context, r Lister, name string) Status {
	names, err := r.Environments(ctx)
	if err != nil {
		return Unhealthy("registry unreachable", map[string]any{"error": err.Error()})
	}
	if name == "" {
		return Healthy(fmt.Sprintf("registry lists %d environments", len(names)))
	}
	for _, n := range names {
		if n == name {
			return Healthy(fmt.Sprintf("environment '%s' published", name))
		}
	}
	return Degraded(
		fmt.Sprintf("environment '%s' not published", name),
		map[string]any{"environment": name, "published": names},
	)
}

// FileCheck verifies that an environment file exists and is not a
// directory.
func FileCheck(path string) Status {
	if path == "" {
		return Unhealthy("path cannot be empty", nil)
	}

	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Unhealthy(fmt.Sprintf("file '%s' does not exist", path), map[string]any{"path": path})
		}
		return Unhealthy(
			fmt.Sprintf("failed to stat '%s'", path),
			map[string]any{"path": path, "error": err.Error()},
		)
	}
	if info.IsDir() {
		return Unhealthy(fmt.Sprintf("'%s' is a directory", path), map[string]any{"path": path})
	}

	return Healthy(fmt.Sprintf("file '%s' exists", path))
}

// Combine aggregates checks. The result is unhealthy if any check is,
// otherwise degraded if any check is, otherwise healthy.
func Combine(checks ...Status) Status {
	if len(checks) == 0 {
		return Healthy("no checks provided")
	}

	var unhealthy, degraded []string
	var healthy int

	for _, check := range checks {
		msg := check.Message
		if msg == "" {
			msg = "unnamed check"
		}
		switch check.Status {
		case StatusUnhealthy:
			unhealthy = append(unhealthy, msg)
		case StatusDegraded:
			degraded = append(degraded, msg)
		case StatusHealthy:
			healthy++
		}
	}

	if len(unhealthy) > 0 {
		return Unhealthy(
			fmt.Sprintf("%d check(s) failed", len(unhealthy)),
			map[string]any{
				"total":         len(checks),
				"unhealthy":     len(unhealthy),
				"degraded":      len(degraded),
				"healthy":       healthy,
				"failed_checks": unhealthy,
			},
		)
	}

	if len(degraded) > 0 {
		return Degraded(
			fmt.Sprintf("%d check(s) degraded", len(degraded)),
			map[string]any{
				"total":           len(checks),
				"degraded":        len(degraded),
				"healthy":         healthy,
				"degraded_checks": degraded,
			},
		)
	}

	return Healthy(fmt.Sprintf("all %d check(s) passed", len(checks)))
}

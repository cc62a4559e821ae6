package navplan

import (
	"io"
	"log/slog"

	"github.com/zero-day-ai/navplan/naverr"
)

// Sentinel errors re-exported from naverr so callers of the Navigator can
// match failures without importing it.
var (
	// ErrPlanBuild indicates a plan could not be built. The task keeps its
	// previous plan.
	ErrPlanBuild = naverr.ErrPlanBuild

	// ErrEmptyPath indicates the planner found no route to the target.
	ErrEmptyPath = naverr.ErrEmptyPath

	// ErrNotFound indicates a missing graph node, edge or metadata entry.
	ErrNotFound = naverr.ErrNotFound

	// ErrInvalidConfig indicates the provided configuration is invalid or incomplete.
	ErrInvalidConfig = naverr.ErrInvalidConfig

	// ErrStorage indicates the journal or registry failed.
	ErrStorage = naverr.ErrStorage
)

// Error is the structured error returned by every navplan package.
type Error = naverr.Error

// CloseWithLog attempts to close the provided resource and logs any error
// at warning level. This is intended for use in defer statements to ensure
// cleanup errors are not silently ignored.
//
// The name parameter should describe the resource being closed (e.g.,
// "journal", "registry"). If logger is nil, slog.Default() is used.
//
// Example usage:
//
//	defer navplan.CloseWithLog(nav, logger, "navigator")
func CloseWithLog(closer io.Closer, logger *slog.Logger, name string) {
	if closer == nil {
		return
	}

	if logger == nil {
		logger = slog.Default()
	}

	if err := closer.Close(); err != nil {
		logger.Warn("failed to close resource",
			"resource", name,
			"error", err)
	}
}

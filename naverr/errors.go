// Package naverr defines the error types shared by the navigation packages.
//
// Failures are reported as *Error values that carry the failing operation and
// an error kind. Sentinel errors can be matched with errors.Is:
//
//	plan, err := builder.Build(ctx, req)
//	if errors.Is(err, naverr.ErrPlanBuild) {
//	    // keep the previous plan
//	}
package naverr

import (
	"errors"
	"fmt"
)

// Sentinel errors for common navigation error conditions.
var (
	// ErrPlanBuild indicates that a plan could not be stitched together,
	// typically because a passage adjacency or metadata entry is missing.
	ErrPlanBuild = errors.New("plan build failed")

	// ErrEmptyPath indicates that the planner returned no index path.
	// Callers treat it as "no plan", not as a fatal condition.
	ErrEmptyPath = errors.New("planner returned no path")

	// ErrNotFound indicates that a graph node, edge or metadata entry was not found.
	ErrNotFound = errors.New("not found")

	// ErrInvalidConfig indicates the provided configuration is invalid or incomplete.
	ErrInvalidConfig = errors.New("invalid configuration")

	// ErrStorage indicates that an external store (journal, registry) failed.
	ErrStorage = errors.New("storage operation failed")
)

// Error kinds categorize errors by their type.
const (
	// KindPlanBuild represents errors raised while building a plan.
	KindPlanBuild = "plan_build"

	// KindEmptyPath represents a planner that produced no path.
	KindEmptyPath = "empty_path"

	// KindNotFound represents errors where a resource was not found.
	KindNotFound = "not_found"

	// KindValidation represents errors related to input validation.
	KindValidation = "validation"

	// KindConfiguration represents errors related to configuration.
	KindConfiguration = "configuration"

	// KindStorage represents errors from external stores.
	KindStorage = "storage"
)

// Error is a structured error that wraps an underlying error with the
// operation that failed and the category of failure.
//
// Error supports unwrapping, so errors.Is and errors.As see through it.
type Error struct {
	// Op is the operation that failed (e.g., "Builder.Build", "Task.GeneratePlan").
	Op string

	// Kind categorizes the error (e.g., KindPlanBuild, KindNotFound).
	Kind string

	// Err is the underlying error.
	Err error

	// Context carries optional debugging values such as node indices or ids.
	Context map[string]any
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("navplan: %s: %s", e.Op, e.Kind)
	}

	if len(e.Context) > 0 {
		return fmt.Sprintf("navplan: %s (%s): %v [context: %+v]", e.Op, e.Kind, e.Err, e.Context)
	}

	return fmt.Sprintf("navplan: %s (%s): %v", e.Op, e.Kind, e.Err)
}

// Unwrap returns the underlying error.
func (e *Error) Unwrap() error {
	return e.Err
}

// Is matches another *Error by Kind (and Op when the target sets one), and
// otherwise delegates to the wrapped error.
func (e *Error) Is(target error) bool {
	if target == nil {
		return false
	}

	if t, ok := target.(*Error); ok {
		if t.Kind != "" && e.Kind == t.Kind {
			if t.Op == "" || e.Op == t.Op {
				return true
			}
		}
	}

	return errors.Is(e.Err, target)
}

// WithContext returns a copy of the error with the given values merged into
// its context.
func (e *Error) WithContext(ctx map[string]any) *Error {
	newErr := *e
	merged := make(map[string]any, len(e.Context)+len(ctx))
	for k, v := range e.Context {
		merged[k] = v
	}
	for k, v := range ctx {
		merged[k] = v
	}
	newErr.Context = merged
	return &newErr
}

// NewPlanBuildError creates an Error with KindPlanBuild. The cause is joined
// with ErrPlanBuild so callers can match either.
func NewPlanBuildError(op string, cause error) *Error {
	err := ErrPlanBuild
	if cause != nil {
		err = fmt.Errorf("%w: %w", ErrPlanBuild, cause)
	}
	return &Error{
		Op:   op,
		Kind: KindPlanBuild,
		Err:  err,
	}
}

// NewEmptyPathError creates an Error with KindEmptyPath.
func NewEmptyPathError(op string) *Error {
	return &Error{
		Op:   op,
		Kind: KindEmptyPath,
		Err:  ErrEmptyPath,
	}
}

// NewNotFoundError creates an Error with KindNotFound.
func NewNotFoundError(op string, err error) *Error {
	if err == nil {
		err = ErrNotFound
	} else {
		err = fmt.Errorf("%w: %w", ErrNotFound, err)
	}
	return &Error{
		Op:   op,
		Kind: KindNotFound,
		Err:  err,
	}
}

// NewValidationError creates an Error with KindValidation.
func NewValidationError(op string, err error) *Error {
	return &Error{
		Op:   op,
		Kind: KindValidation,
		Err:  err,
	}
}

// NewConfigurationError creates an Error with KindConfiguration.
func NewConfigurationError(op string, err error) *Error {
	return &Error{
		Op:   op,
		Kind: KindConfiguration,
		Err:  fmt.Errorf("%w: %w", ErrInvalidConfig, err),
	}
}

// NewStorageError creates an Error with KindStorage.
func NewStorageError(op string, err error) *Error {
	return &Error{
		Op:   op,
		Kind: KindStorage,
		Err:  fmt.Errorf("%w: %w", ErrStorage, err),
	}
}

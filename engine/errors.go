package engine

import (
	"errors"
	"fmt"
)

// ErrInvalidResolverReturn indicates a resolver returned neither an
// instruction nor an error. This is a configuration error in the
// caller's handler setup, surfaced rather than silently ignored.
var ErrInvalidResolverReturn = errors.New("engine: resolver did not return a valid instruction")

// ResolverFault wraps an error raised by a resolver during execution.
// The original cause is preserved for diagnostics and reachable through
// errors.Is / errors.As.
type ResolverFault struct {
	// Handler describes the handler whose resolver faulted.
	Handler string

	// Cause is the resolver's error or recovered panic.
	Cause error
}

func (f *ResolverFault) Error() string {
	return fmt.Sprintf("engine: resolver for %s failed: %v", f.Handler, f.Cause)
}

func (f *ResolverFault) Unwrap() error { return f.Cause }

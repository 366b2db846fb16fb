package dynamo

import (
	"errors"
	"fmt"
)

// Domain errors for simulation operations.
var (
	// ErrIndexOutOfRange indicates a body index outside [0, Len).
	ErrIndexOutOfRange = errors.New("dynamo: body index out of range")

	// ErrInvalidConfig indicates a scene configuration that cannot be built.
	ErrInvalidConfig = errors.New("dynamo: invalid configuration")

	// ErrBackendUnavailable indicates the parallel substrate could not be
	// initialized (no device, kernel compile or link failure).
	ErrBackendUnavailable = errors.New("dynamo: compute backend unavailable")

	// ErrUnsupportedForce indicates a force model a backend cannot evaluate.
	ErrUnsupportedForce = errors.New("dynamo: force model not supported by backend")

	// ErrNonFinite indicates a NaN or Inf appeared in body state.
	ErrNonFinite = errors.New("dynamo: non-finite body state (NaN or Inf detected)")

	// ErrTickInProgress indicates a tick was requested while another runs.
	ErrTickInProgress = errors.New("dynamo: tick already in progress")

	// ErrSceneClosed indicates use of a scene after teardown.
	ErrSceneClosed = errors.New("dynamo: scene closed")

	// ErrPopulationMismatch indicates two stores of different sizes.
	ErrPopulationMismatch = errors.New("dynamo: population size mismatch")
)

// TickError wraps a failure with the tick and pass it happened in.
// The tick it reports was abandoned; no pass of it was applied.
type TickError struct {
	Tick    uint64
	Pass    Pass
	Wrapped error
}

func (e *TickError) Error() string {
	return fmt.Sprintf("tick %d (%s pass): %v", e.Tick, e.Pass, e.Wrapped)
}

func (e *TickError) Unwrap() error {
	return e.Wrapped
}

// PassError tags an error with the pass that produced it so the driver can
// report it. Strategies return it from Step.
type PassError struct {
	Pass    Pass
	Wrapped error
}

func (e *PassError) Error() string {
	return fmt.Sprintf("%s pass: %v", e.Pass, e.Wrapped)
}

func (e *PassError) Unwrap() error {
	return e.Wrapped
}

func indexError(i, n int) error {
	return fmt.Errorf("%w: index %d, population %d", ErrIndexOutOfRange, i, n)
}

package field

import "errors"

// Expected, recoverable conditions. Callers distinguish these with errors.Is
// and surface them as notifications, never as crashes.
var (
	// ErrNoFix means no usable position is available: no fix yet, the last
	// fix is stale, or the sensor reported an error.
	ErrNoFix = errors.New("no usable position fix")

	// ErrPromptCancelled means the user dismissed the identity prompt.
	// It is a "do not proceed" signal, not a failure.
	ErrPromptCancelled = errors.New("identity prompt cancelled")

	// ErrNothingToExport means the selected categories contain zero points.
	ErrNothingToExport = errors.New("nothing to export")

	// ErrNothingToClear means the store is already empty.
	ErrNothingToClear = errors.New("nothing to clear")

	// ErrStorage wraps durable-store write failures. When a mutating store
	// operation returns an error wrapping ErrStorage, the in-memory state
	// has been updated but the durable copy has not; the store reports
	// Degraded() until a later write succeeds.
	ErrStorage = errors.New("storage write failed")

	// ErrNotConfirmed means the user declined the confirmation for a
	// destructive operation.
	ErrNotConfirmed = errors.New("operation not confirmed")
)

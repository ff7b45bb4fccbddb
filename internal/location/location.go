// Package location supplies position fixes to the rest of the system. A
// fix source may be a fixed surveyed coordinate, or a file a GPS daemon
// keeps current; either way consumers only ever see the most recent fix,
// and fixes older than the configured window count as "no position".
package location

import "fmt"

// Kind categorizes why no fix is available, mirroring the sensor error
// taxonomy of the platform geolocation APIs.
type Kind int

const (
	KindPermissionDenied Kind = iota + 1
	KindPositionUnavailable
	KindTimeout
	KindUnsupported
)

func (k Kind) String() string {
	switch k {
	case KindPermissionDenied:
		return "permission-denied"
	case KindPositionUnavailable:
		return "position-unavailable"
	case KindTimeout:
		return "timeout"
	case KindUnsupported:
		return "unsupported"
	}
	return "unknown"
}

// Error is a categorized location failure.
type Error struct {
	Kind Kind
	Err  error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("location %s: %v", e.Kind, e.Err)
	}
	return fmt.Sprintf("location %s", e.Kind)
}

func (e *Error) Unwrap() error { return e.Err }

func newError(kind Kind, err error) *Error {
	return &Error{Kind: kind, Err: err}
}

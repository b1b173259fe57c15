package portal

import (
	"errors"
	"fmt"
)

var (
	// ErrMissingLink marks a portal without a partner; render and
	// teleport are no-ops for it.
	ErrMissingLink = errors.New("portal has no linked partner")

	// ErrInvalidGeometry covers non-finite or out-of-range transforms,
	// projections and clip values.
	ErrInvalidGeometry = errors.New("invalid geometry")

	// ErrStaleRenderTarget reports a render target whose size no longer
	// matches the output resolution.
	ErrStaleRenderTarget = errors.New("stale render target")

	ErrDuplicatePortal = errors.New("duplicate portal name")
	ErrUnknownPortal   = errors.New("unknown portal")
)

// ValidationError is returned by ValidateView. It unwraps to
// ErrInvalidGeometry.
type ValidationError struct {
	Field  string
	Value  float32
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s (%g): %s", e.Field, e.Value, e.Reason)
}

func (e *ValidationError) Unwrap() error {
	return ErrInvalidGeometry
}

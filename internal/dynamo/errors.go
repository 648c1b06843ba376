package dynamo

import (
	"errors"
	"fmt"
)

// Domain errors for propagation and artifact handling.
var (
	// ErrConfiguration indicates invalid run parameters (non-positive time
	// step, empty body list, zero total mass). Raised before any I/O.
	ErrConfiguration = errors.New("dynamo: invalid configuration")

	// ErrFormat indicates a file that is not a valid artifact: bad magic,
	// unsupported version, truncated payload or a header that disagrees with
	// the filename.
	ErrFormat = errors.New("dynamo: invalid file format")

	// ErrCacheInconsistency indicates a derived cache whose key disagrees with
	// the request. Existing caches are never repaired automatically.
	ErrCacheInconsistency = errors.New("dynamo: cache inconsistent with request")

	// ErrExists indicates the destination of a write is already present.
	ErrExists = errors.New("dynamo: destination already exists")

	// ErrDimensionMismatch indicates mismatched state/body dimensions.
	ErrDimensionMismatch = errors.New("dynamo: dimension mismatch between state and bodies")
)

// Configurationf returns an error wrapping ErrConfiguration.
func Configurationf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrConfiguration, fmt.Sprintf(format, args...))
}

// Formatf returns an error wrapping ErrFormat.
func Formatf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrFormat, fmt.Sprintf(format, args...))
}

// SimulationError wraps an error with propagation context.
type SimulationError struct {
	Step    int
	Time    float64
	Wrapped error
}

func (e *SimulationError) Error() string {
	return fmt.Sprintf("step %d (t=%.4f): %v", e.Step, e.Time, e.Wrapped)
}

func (e *SimulationError) Unwrap() error {
	return e.Wrapped
}

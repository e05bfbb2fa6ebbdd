package wave

import (
	"errors"
	"fmt"
)

// Domain errors for integrator construction and stepping.
var (
	// ErrIncompatibleMethodAndBoundary indicates the spectral method was
	// requested with a non-periodic boundary policy.
	ErrIncompatibleMethodAndBoundary = errors.New("wave: spectral method requires periodic boundary")

	// ErrIntegratorAlreadyDone indicates a step was requested after the
	// configured step count completed.
	ErrIntegratorAlreadyDone = errors.New("wave: integrator already done")

	// ErrInvalidConfig indicates a run configuration outside valid bounds.
	ErrInvalidConfig = errors.New("wave: invalid configuration")

	// ErrUnstable indicates a step produced NaN or Inf values.
	ErrUnstable = errors.New("wave: simulation unstable (non-finite values)")
)

// StepError wraps an error raised while advancing the field.
type StepError struct {
	Step    int
	Time    float64
	Wrapped error
}

func (e *StepError) Error() string {
	return fmt.Sprintf("step %d (t=%.4f): %v", e.Step, e.Time, e.Wrapped)
}

func (e *StepError) Unwrap() error {
	return e.Wrapped
}

package stepper

import (
	"errors"
	"fmt"
)

var (
	// ErrNilFunc indicates a step was requested without a derivative function.
	ErrNilFunc = errors.New("stepper: nil derivative function")

	// ErrNegativeSteps indicates a solve call with n < 0.
	ErrNegativeSteps = errors.New("stepper: step count must not be negative")

	// ErrUnknownMethod indicates an integration method name that does not parse.
	ErrUnknownMethod = errors.New("stepper: unknown integration method")
)

// StepError carries the position inside a multi-step run at which it stopped.
type StepError struct {
	Step int
	Time float64
	Err  error
}

func (e *StepError) Error() string {
	return fmt.Sprintf("step %d (t=%.4f): %v", e.Step, e.Time, e.Err)
}

func (e *StepError) Unwrap() error {
	return e.Err
}

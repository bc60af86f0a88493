package control

import (
	"errors"
	"fmt"
)

// ErrTuningBounds indicates a tuning parameter outside its domain.
var ErrTuningBounds = errors.New("control: tuning parameter out of bounds")

// ErrUnknownParam indicates a tuning parameter name that does not exist.
var ErrUnknownParam = errors.New("control: unknown tuning parameter")

// TuningError names the offending parameter and value.
type TuningError struct {
	Param string
	Value float64
}

func (e *TuningError) Error() string {
	return fmt.Sprintf("%s: %s=%g", ErrTuningBounds, e.Param, e.Value)
}

func (e *TuningError) Unwrap() error {
	return ErrTuningBounds
}

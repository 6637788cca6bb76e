package distribution

import (
	"errors"
	"fmt"
)

var (
	ErrParameterArity        = errors.New("parameter arity mismatch")
	ErrInvalidParameter      = errors.New("invalid parameter")
	ErrInsufficientData      = errors.New("insufficient data")
	ErrUnsupportedType       = errors.New("unsupported distribution type")
	ErrUndefinedDistribution = errors.New("undefined distribution")
	ErrUnknownKind           = errors.New("unknown distribution kind")
)

// ArityError reports a parameter vector of the wrong length.
type ArityError struct {
	Kind Kind
	Want int
	Got  int
}

func (e *ArityError) Error() string {
	return fmt.Sprintf("%s requires %d parameters, got %d", e.Kind, e.Want, e.Got)
}

func (e *ArityError) Unwrap() error { return ErrParameterArity }

// DataError reports a fit attempted with fewer observations than the family needs.
type DataError struct {
	Kind Kind
	Min  int
	Got  int
}

func (e *DataError) Error() string {
	return fmt.Sprintf("%s requires at least %d observations, got %d", e.Kind, e.Min, e.Got)
}

func (e *DataError) Unwrap() error { return ErrInsufficientData }

func invalid(k Kind, format string, args ...any) error {
	return fmt.Errorf("%w: %s: %s", ErrInvalidParameter, k, fmt.Sprintf(format, args...))
}

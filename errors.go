package unitmath

import (
	"fmt"
)

// TypeError reports an operation that is not applicable to its operands:
// an unsupported function, a missing required unit category, a disallowed
// in-place cast, or a malformed argument kind.
type TypeError struct {
	Op      string
	Message string
}

func (e *TypeError) Error() string {
	return e.Message
}

// UnitsError reports a required unit conversion that has no valid factor
// under the currently enabled equivalencies.
type UnitsError struct {
	Op      string
	Message string
}

func (e *UnitsError) Error() string {
	return e.Message
}

// ValueError reports operand values or shapes the operation cannot accept,
// such as an array exponent over a unit-bearing base.
type ValueError struct {
	Op      string
	Message string
}

func (e *ValueError) Error() string {
	return e.Message
}

// requirement phrases for the fixed "Can only apply ..." template.
const (
	reqDimensionless = "dimensionless quantities"
	reqUnscaled      = "unscaled dimensionless quantities"
	reqAngle         = "quantities with angle units"
)

func errCanOnlyApply(op, requirement string) *TypeError {
	return &TypeError{
		Op:      op,
		Message: fmt.Sprintf("Can only apply '%s' function to %s", op, requirement),
	}
}

func errUnsupported(op string) *TypeError {
	return &TypeError{
		Op:      op,
		Message: fmt.Sprintf("Cannot use function '%s' with quantities", op),
	}
}

func errIncompatible(op string) *UnitsError {
	return &UnitsError{
		Op:      op,
		Message: fmt.Sprintf("Can only apply '%s' function to quantities with compatible dimensions", op),
	}
}

func errAsymmetricDimensionless(op string) *UnitsError {
	return &UnitsError{
		Op: op,
		Message: fmt.Sprintf("Can only apply '%s' function to dimensionless quantities "+
			"when other argument is not a quantity (unless the latter is all zero/infinity/nan)", op),
	}
}

func typeErrorf(op, format string, args ...interface{}) *TypeError {
	return &TypeError{Op: op, Message: fmt.Sprintf(format, args...)}
}

func unitsErrorf(op, format string, args ...interface{}) *UnitsError {
	return &UnitsError{Op: op, Message: fmt.Sprintf(format, args...)}
}

func valueErrorf(op, format string, args ...interface{}) *ValueError {
	return &ValueError{Op: op, Message: fmt.Sprintf(format, args...)}
}

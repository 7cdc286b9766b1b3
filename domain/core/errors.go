package core

import (
	"errors"
	"fmt"
)

// Domain errors - centralized error definitions
var (
	// Input outside its valid mathematical domain. Always carries the
	// offending field name.
	ErrDomain = errors.New("value outside valid domain")

	// Root finding failed to bracket or converge within bounds.
	ErrConvergence = errors.New("solver failed to converge")

	// Non-finite intermediate value during numerical work.
	ErrNumericalInstability = errors.New("numerical instability")

	// Request-shape errors
	ErrUnknownTest      = errors.New("unknown test identifier")
	ErrUnknownMode      = errors.New("unknown solve mode")
	ErrMissingParameter = errors.New("required parameter missing")
)

// DomainError reports an input whose value is outside the valid
// mathematical domain for the selected test family.
type DomainError struct {
	Field  string
	Value  float64
	Reason string
}

func (e *DomainError) Error() string {
	return fmt.Sprintf("%s: %s (%s = %g)", ErrDomain, e.Reason, e.Field, e.Value)
}

func (e *DomainError) Unwrap() error { return ErrDomain }

// NewDomainError constructs a DomainError naming the offending field.
func NewDomainError(field string, value float64, reason string) error {
	return &DomainError{Field: field, Value: value, Reason: reason}
}

// ConvergenceError reports a bounded search that never bracketed a root.
// LastEstimate holds the best value seen so callers can surface it.
type ConvergenceError struct {
	Quantity     string
	LastEstimate float64
	Iterations   int
}

func (e *ConvergenceError) Error() string {
	return fmt.Sprintf("%s: solving for %s, last estimate %g after %d iterations",
		ErrConvergence, e.Quantity, e.LastEstimate, e.Iterations)
}

func (e *ConvergenceError) Unwrap() error { return ErrConvergence }

// NewConvergenceError constructs a ConvergenceError with the last estimate.
func NewConvergenceError(quantity string, lastEstimate float64, iterations int) error {
	return &ConvergenceError{Quantity: quantity, LastEstimate: lastEstimate, Iterations: iterations}
}

// InstabilityError reports an unacceptable rate of non-finite results
// during Monte Carlo evaluation.
type InstabilityError struct {
	FailedDraws int
	TotalDraws  int
}

func (e *InstabilityError) Error() string {
	return fmt.Sprintf("%s: %d of %d draws produced non-finite results",
		ErrNumericalInstability, e.FailedDraws, e.TotalDraws)
}

func (e *InstabilityError) Unwrap() error { return ErrNumericalInstability }

// NewInstabilityError constructs an InstabilityError for a failed Monte Carlo run.
func NewInstabilityError(failed, total int) error {
	return &InstabilityError{FailedDraws: failed, TotalDraws: total}
}

// NewMissingParameterError names a parameter the selected test and mode require.
func NewMissingParameterError(field string) error {
	return fmt.Errorf("%w: %s", ErrMissingParameter, field)
}

// Error checking helpers
func IsDomainError(err error) bool {
	return errors.Is(err, ErrDomain)
}

func IsConvergenceError(err error) bool {
	return errors.Is(err, ErrConvergence)
}

func IsInstabilityError(err error) bool {
	return errors.Is(err, ErrNumericalInstability)
}

func IsInputError(err error) bool {
	return errors.Is(err, ErrUnknownTest) ||
		errors.Is(err, ErrUnknownMode) ||
		errors.Is(err, ErrMissingParameter)
}

package services

import (
	"errors"
	"fmt"
)

// Sentinel failure classes. Callers match with errors.Is and map each class
// to an HTTP status at the controller boundary; none are retried.
var (
	// ErrNotFound covers both a missing row and a row owned by another
	// tenant. Cross-tenant lookups must never silently succeed.
	ErrNotFound = errors.New("not found")

	// ErrInvalidTransition is returned when a terminal execution is
	// resubmitted or an undefined workflow edge is requested.
	ErrInvalidTransition = errors.New("invalid workflow transition")

	// ErrValidation covers bad input: missing evidence on a
	// required-evidence KPI, malformed result values, invalid enum tokens.
	ErrValidation = errors.New("validation failed")

	// ErrPlanAlreadyOpen is the invariant signal raised when an insert
	// would create a second open plan for the same origin.
	ErrPlanAlreadyOpen = errors.New("an open action plan already exists for this origin")
)

func notFoundf(format string, args ...interface{}) error {
	return fmt.Errorf("%s: %w", fmt.Sprintf(format, args...), ErrNotFound)
}

func validationf(format string, args ...interface{}) error {
	return fmt.Errorf("%s: %w", fmt.Sprintf(format, args...), ErrValidation)
}

func invalidTransitionf(format string, args ...interface{}) error {
	return fmt.Errorf("%s: %w", fmt.Sprintf(format, args...), ErrInvalidTransition)
}

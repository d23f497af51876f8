// Package shared contains common domain types, errors, events, and value objects
// that are used across all domain packages. This package has zero external dependencies.
package shared

import (
	"errors"
	"fmt"
)

// Base domain errors that can be used for error checking with errors.Is().
var (
	// Entity errors
	ErrNotFound      = errors.New("entity not found")
	ErrAlreadyExists = errors.New("entity already exists")
	ErrInvalidEntity = errors.New("invalid entity")

	// Validation errors
	ErrValidation      = errors.New("validation error")
	ErrInvalidID       = errors.New("invalid ID")
	ErrInvalidInput    = errors.New("invalid input")
	ErrEmptyValue      = errors.New("value cannot be empty")
	ErrNegativeValue   = errors.New("value cannot be negative")
	ErrValueOutOfRange = errors.New("value out of range")
	ErrInvalidFormat   = errors.New("invalid format")

	// Configuration errors. A configuration error means a rule table or
	// catalog is internally inconsistent; decisions must abort rather than
	// degrade to "always eligible".
	ErrConfiguration = errors.New("configuration error")

	// State errors
	ErrInvalidState = errors.New("invalid state")
	ErrConflict     = errors.New("conflicting state")

	// Store errors
	ErrStoreUnavailable = errors.New("store unavailable")
	ErrTimeout          = errors.New("operation timeout")
)

// DomainError represents a domain-specific error with context.
type DomainError struct {
	Domain  string // e.g., "catalog", "rules", "plan"
	Op      string // Operation that failed, e.g., "Lookup", "Recommend"
	Kind    error  // Base error type for errors.Is() checking
	Message string // Human-readable message
	Err     error  // Underlying error (optional)
}

// Error implements the error interface.
func (e *DomainError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s.%s: %s: %v", e.Domain, e.Op, e.Message, e.Err)
	}
	return fmt.Sprintf("%s.%s: %s", e.Domain, e.Op, e.Message)
}

// Unwrap returns the underlying error for errors.Unwrap().
func (e *DomainError) Unwrap() error {
	if e.Err != nil {
		return e.Err
	}
	return e.Kind
}

// Is implements errors.Is() matching.
func (e *DomainError) Is(target error) bool {
	if e.Kind != nil && errors.Is(e.Kind, target) {
		return true
	}
	if e.Err != nil && errors.Is(e.Err, target) {
		return true
	}
	return false
}

// NewDomainError creates a new domain error.
func NewDomainError(domain, op string, kind error, message string) *DomainError {
	return &DomainError{
		Domain:  domain,
		Op:      op,
		Kind:    kind,
		Message: message,
	}
}

// WrapError wraps an existing error with domain context.
func WrapError(domain, op string, kind error, message string, err error) *DomainError {
	return &DomainError{
		Domain:  domain,
		Op:      op,
		Kind:    kind,
		Message: message,
		Err:     err,
	}
}

// Catalog domain errors
var (
	ErrCourseNotFound   = NewDomainError("catalog", "Lookup", ErrNotFound, "course not found")
	ErrDuplicateCourse  = NewDomainError("catalog", "Build", ErrConfiguration, "two course ids share one course key")
	ErrInvalidCourseKey = NewDomainError("catalog", "Validate", ErrInvalidInput, "invalid course key")
	ErrDanglingPrereq   = NewDomainError("catalog", "Build", ErrInvalidInput, "prerequisite edge points to unknown course")
)

// Rules domain errors
var (
	ErrRuleSetInvalid     = NewDomainError("rules", "Validate", ErrConfiguration, "rule set is inconsistent")
	ErrOverlappingGroups  = NewDomainError("rules", "Validate", ErrConfiguration, "course key appears in more than one equivalence group")
	ErrEmptyGroup         = NewDomainError("rules", "Validate", ErrConfiguration, "rule group must contain at least two course keys")
	ErrSequenceOutOfOrder = NewDomainError("rules", "Validate", ErrConfiguration, "canonical sequence semester indices decrease")
)

// Plan domain errors
var (
	ErrPlanNotFound         = NewDomainError("plan", "Find", ErrNotFound, "degree plan not found")
	ErrPlannedEntryNotFound = NewDomainError("plan", "FindEntry", ErrNotFound, "planned course entry not found")
	ErrAlreadyPlanned       = NewDomainError("plan", "AddCourse", ErrAlreadyExists, "an equivalent course is already completed or planned")
	ErrPrereqNotSatisfied   = NewDomainError("plan", "AddCourse", ErrInvalidState, "prerequisites not satisfied")
	ErrInvalidGrade         = NewDomainError("plan", "RecordGrade", ErrInvalidInput, "grade is not in the allowed vocabulary")
)

// Student / program / schedule domain errors
var (
	ErrStudentNotFound  = NewDomainError("student", "Find", ErrNotFound, "student not found")
	ErrProgramNotFound  = NewDomainError("program", "Find", ErrNotFound, "program not found")
	ErrNoPrimaryMajor   = NewDomainError("program", "FindPrimary", ErrNotFound, "student has no primary program")
	ErrSectionNotFound  = NewDomainError("schedule", "FindSection", ErrNotFound, "section not found")
	ErrScheduleConflict = NewDomainError("schedule", "Enroll", ErrConflict, "section meetings overlap the current schedule")
)

// IsNotFound checks if the error is a "not found" error.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsAlreadyExists checks if the error is an "already exists" error.
func IsAlreadyExists(err error) bool {
	return errors.Is(err, ErrAlreadyExists)
}

// IsValidation checks if the error is a validation error.
func IsValidation(err error) bool {
	return errors.Is(err, ErrValidation) ||
		errors.Is(err, ErrInvalidID) ||
		errors.Is(err, ErrInvalidInput) ||
		errors.Is(err, ErrEmptyValue) ||
		errors.Is(err, ErrNegativeValue) ||
		errors.Is(err, ErrValueOutOfRange) ||
		errors.Is(err, ErrInvalidFormat)
}

// IsConfiguration checks if the error is a rule-table or catalog
// consistency error. These abort the decision instead of degrading.
func IsConfiguration(err error) bool {
	return errors.Is(err, ErrConfiguration)
}

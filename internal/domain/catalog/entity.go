// Package catalog contains the course catalog domain model: course keys,
// course attributes, and declared prerequisite edges. This is core business
// logic - no external dependencies.
package catalog

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/nittany-hub/course-planner/internal/domain/shared"
)

// ══════════════════════════════════════════════════════════════════════════════
// VALUE OBJECTS
// ══════════════════════════════════════════════════════════════════════════════

// CourseKey is the natural identifier of a course: subject code plus catalog
// number (e.g., "CMPSC" "131"). It is independent of the surrogate CourseID
// assigned by the store and is immutable once assigned.
type CourseKey struct {
	Subject       string
	CatalogNumber string
}

// NewCourseKey builds a normalized CourseKey. Subjects are upper-cased and
// both parts are trimmed; catalog numbers keep their suffix letters
// ("100A", "483W").
func NewCourseKey(subject, catalogNumber string) CourseKey {
	return CourseKey{
		Subject:       strings.ToUpper(strings.TrimSpace(subject)),
		CatalogNumber: strings.ToUpper(strings.TrimSpace(catalogNumber)),
	}
}

// IsValid checks that both parts are present.
func (k CourseKey) IsValid() bool {
	return k.Subject != "" && k.CatalogNumber != ""
}

// String returns the display form, e.g. "CMPSC 131".
func (k CourseKey) String() string {
	return k.Subject + " " + k.CatalogNumber
}

var courseCodeRegex = regexp.MustCompile(`^\s*([A-Za-z]{2,6})\s+([0-9]{1,3}[A-Za-z]{0,2})\s*$`)

// ParseCourseKey parses a display form like "CMPSC 131" or "cas 100A".
func ParseCourseKey(code string) (CourseKey, error) {
	m := courseCodeRegex.FindStringSubmatch(code)
	if m == nil {
		return CourseKey{}, shared.WrapError("catalog", "ParseCourseKey",
			shared.ErrInvalidFormat, fmt.Sprintf("cannot parse course code %q", code), nil)
	}
	return NewCourseKey(m[1], m[2]), nil
}

var leadingDigitsRegex = regexp.MustCompile(`\d+`)

// LeadingNumber extracts the numeric part of the catalog number ("483W" -> 483).
// Returns false if the catalog number contains no digits.
func (k CourseKey) LeadingNumber() (int, bool) {
	m := leadingDigitsRegex.FindString(k.CatalogNumber)
	if m == "" {
		return 0, false
	}
	n, err := strconv.Atoi(m)
	if err != nil {
		return 0, false
	}
	return n, true
}

// ══════════════════════════════════════════════════════════════════════════════
// ENTITIES
// ══════════════════════════════════════════════════════════════════════════════

// Course is a catalog entry. One Course exists per distinct CourseKey.
type Course struct {
	ID          shared.CourseID
	Key         CourseKey
	Title       string
	CreditHours shared.CreditHours
}

// Validate checks required fields.
func (c *Course) Validate() error {
	if !c.ID.IsValid() {
		return shared.WrapError("catalog", "Validate", shared.ErrInvalidID,
			"course id must be positive", nil)
	}
	if !c.Key.IsValid() {
		return shared.ErrInvalidCourseKey
	}
	if !c.CreditHours.IsValid() {
		return shared.WrapError("catalog", "Validate", shared.ErrNegativeValue,
			fmt.Sprintf("course %s has negative credit hours", c.Key), nil)
	}
	return nil
}

// PrerequisiteEdge is a directed edge course -> prerequisite course.
// Multiple edges per course are conjunctive unless an alternative group
// collapses some of them into a disjunctive check (see the rules package).
type PrerequisiteEdge struct {
	CourseID       shared.CourseID
	PrereqCourseID shared.CourseID

	// MinGrade raises the bar above "any passing grade" when set.
	// It is parsed and stored but intentionally not consulted by the
	// eligibility check; see the rules package for the rationale.
	MinGrade shared.Grade
}

// Validate checks required fields.
func (e *PrerequisiteEdge) Validate() error {
	if !e.CourseID.IsValid() || !e.PrereqCourseID.IsValid() {
		return shared.WrapError("catalog", "Validate", shared.ErrInvalidID,
			"prerequisite edge must reference two positive course ids", nil)
	}
	if e.MinGrade != "" && !e.MinGrade.IsValid() {
		return shared.WrapError("catalog", "Validate", shared.ErrInvalidInput,
			fmt.Sprintf("prerequisite edge carries unknown min grade %q", e.MinGrade), nil)
	}
	return nil
}

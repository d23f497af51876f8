// Package shared contains common domain types, errors, events, and value objects
// that are used across all domain packages.
package shared

import (
	"fmt"
	"strings"
)

// ═══════════════════════════════════════════════════════════════════════════
// ID Value Objects
// ═══════════════════════════════════════════════════════════════════════════

// StudentID represents a unique student identifier.
type StudentID int64

// IsValid checks if the student ID is valid (positive number).
func (s StudentID) IsValid() bool {
	return s > 0
}

// Int64 returns the underlying int64 value.
func (s StudentID) Int64() int64 {
	return int64(s)
}

// String returns the string representation.
func (s StudentID) String() string {
	return fmt.Sprintf("%d", s)
}

// NewStudentID creates a new StudentID with validation.
func NewStudentID(id int64) (StudentID, error) {
	if id <= 0 {
		return 0, ErrInvalidID
	}
	return StudentID(id), nil
}

// PlanID represents a unique degree plan identifier.
type PlanID int64

// IsValid checks if the plan ID is valid.
func (p PlanID) IsValid() bool {
	return p > 0
}

// Int64 returns the underlying int64 value.
func (p PlanID) Int64() int64 {
	return int64(p)
}

// String returns the string representation.
func (p PlanID) String() string {
	return fmt.Sprintf("%d", p)
}

// CourseID represents a surrogate catalog course identifier.
// The natural identifier is catalog.CourseKey; CourseID exists because
// the store keys its rows by it.
type CourseID int64

// IsValid checks if the course ID is valid.
func (c CourseID) IsValid() bool {
	return c > 0
}

// Int64 returns the underlying int64 value.
func (c CourseID) Int64() int64 {
	return int64(c)
}

// TermID identifies an academic term in the store.
type TermID int64

// IsValid checks if the term ID is valid.
func (t TermID) IsValid() bool {
	return t > 0
}

// SectionID identifies a scheduled section of a course.
type SectionID int64

// IsValid checks if the section ID is valid.
func (s SectionID) IsValid() bool {
	return s > 0
}

// ProgramID identifies a degree program (major, minor, certificate).
type ProgramID int64

// IsValid checks if the program ID is valid.
func (p ProgramID) IsValid() bool {
	return p > 0
}

// ═══════════════════════════════════════════════════════════════════════════
// Grades
// ═══════════════════════════════════════════════════════════════════════════

// Grade represents a letter grade recorded on a transcript.
type Grade string

// The full grade vocabulary the registrar accepts.
const (
	GradeA      Grade = "A"
	GradeAMinus Grade = "A-"
	GradeBPlus  Grade = "B+"
	GradeB      Grade = "B"
	GradeBMinus Grade = "B-"
	GradeCPlus  Grade = "C+"
	GradeC      Grade = "C"
	GradeCMinus Grade = "C-"
	GradeD      Grade = "D"
	GradeF      Grade = "F"
	GradePass   Grade = "P"
	GradeNoPass Grade = "NP"
)

// allowedGrades is the vocabulary accepted when recording a grade.
var allowedGrades = map[Grade]struct{}{
	GradeA: {}, GradeAMinus: {}, GradeBPlus: {}, GradeB: {}, GradeBMinus: {},
	GradeCPlus: {}, GradeC: {}, GradeCMinus: {}, GradeD: {}, GradeF: {},
	GradePass: {}, GradeNoPass: {},
}

// passingGrades is the fixed set of grades that satisfy prerequisites and
// count toward degree progress. C- and below do not pass.
var passingGrades = map[Grade]struct{}{
	GradeA: {}, GradeAMinus: {}, GradeBPlus: {}, GradeB: {}, GradeBMinus: {},
	GradeCPlus: {}, GradeC: {}, GradePass: {},
}

// IsValid checks whether the grade belongs to the accepted vocabulary.
func (g Grade) IsValid() bool {
	_, ok := allowedGrades[g]
	return ok
}

// IsPassing reports whether the grade satisfies prerequisites and counts
// toward earned credits.
func (g Grade) IsPassing() bool {
	_, ok := passingGrades[g]
	return ok
}

// String returns the string representation.
func (g Grade) String() string {
	return string(g)
}

// ParseGrade normalizes and validates a raw grade string.
func ParseGrade(raw string) (Grade, error) {
	g := Grade(strings.ToUpper(strings.TrimSpace(raw)))
	if !g.IsValid() {
		return "", WrapError("shared", "ParseGrade", ErrInvalidInput,
			fmt.Sprintf("unknown grade %q", raw), nil)
	}
	return g, nil
}

// PassingGrades returns the passing grade set as a slice, for store queries.
func PassingGrades() []Grade {
	return []Grade{
		GradeA, GradeAMinus, GradeBPlus, GradeB, GradeBMinus,
		GradeCPlus, GradeC, GradePass,
	}
}

// ═══════════════════════════════════════════════════════════════════════════
// Credits
// ═══════════════════════════════════════════════════════════════════════════

// CreditHours represents course credit hours.
type CreditHours int

// IsValid checks that the credit hours are non-negative.
func (c CreditHours) IsValid() bool {
	return c >= 0
}

// Add sums credit hours.
func (c CreditHours) Add(other CreditHours) CreditHours {
	return c + other
}

// Int returns the underlying int value.
func (c CreditHours) Int() int {
	return int(c)
}

// CreditsPerSemester is the nominal full-time credit load used to derive
// semester standing from accumulated credits.
const CreditsPerSemester = 15

// SemesterStanding estimates how far into the program a student is.
// 1 = first semester. Derived, never stored.
type SemesterStanding int

// StandingFromCredits derives standing from total earned credit hours:
// floor(credits / 15) + 1, floored at 1.
func StandingFromCredits(earned CreditHours) SemesterStanding {
	if earned < 0 {
		earned = 0
	}
	return SemesterStanding(int(earned)/CreditsPerSemester + 1)
}

// MaxSemesterToShow returns the highest canonical semester index a student
// at this standing should be recommended: one semester ahead of nominal
// standing, to support advance planning. Never below 1.
func (s SemesterStanding) MaxSemesterToShow() int {
	max := int(s) + 1
	if max < 1 {
		max = 1
	}
	return max
}

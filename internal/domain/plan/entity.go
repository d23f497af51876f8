// Package plan contains the degree plan domain model: planned course entries,
// completion records derived from enrollment history, and the transcript
// helpers the decision engine consumes.
package plan

import (
	"fmt"
	"time"

	"github.com/nittany-hub/course-planner/internal/domain/catalog"
	"github.com/nittany-hub/course-planner/internal/domain/rules"
	"github.com/nittany-hub/course-planner/internal/domain/shared"
)

// ══════════════════════════════════════════════════════════════════════════════
// ENTITIES
// ══════════════════════════════════════════════════════════════════════════════

// DegreePlan is a student's course plan toward graduation.
type DegreePlan struct {
	ID             shared.PlanID
	StudentID      shared.StudentID
	CatalogYearID  int64
	TargetGradTerm shared.TermID
	CreatedAt      time.Time
}

// Validate checks required fields.
func (p *DegreePlan) Validate() error {
	if !p.ID.IsValid() {
		return shared.WrapError("plan", "Validate", shared.ErrInvalidID,
			"plan id must be positive", nil)
	}
	if !p.StudentID.IsValid() {
		return shared.WrapError("plan", "Validate", shared.ErrInvalidID,
			"plan must belong to a student", nil)
	}
	return nil
}

// PlannedEntry is a course slated for a future term. It references either a
// catalog course directly or a scheduled section (whose course is resolved by
// the store); exactly one of CourseID and SectionID is set.
type PlannedEntry struct {
	ID        int64
	PlanID    shared.PlanID
	TermID    shared.TermID
	CourseID  shared.CourseID  // zero when the entry is tied to a section
	SectionID shared.SectionID // zero when the entry references a course directly

	// Resolved attributes, filled by the store when listing a plan.
	Key         catalog.CourseKey
	Title       string
	CreditHours shared.CreditHours
	TermCode    string
}

// Validate checks the course/section exclusivity rule.
func (e *PlannedEntry) Validate() error {
	if !e.PlanID.IsValid() || !e.TermID.IsValid() {
		return shared.WrapError("plan", "Validate", shared.ErrInvalidID,
			"planned entry must carry plan and term ids", nil)
	}
	if e.CourseID.IsValid() == e.SectionID.IsValid() {
		return shared.WrapError("plan", "Validate", shared.ErrInvalidInput,
			fmt.Sprintf("planned entry %d must reference exactly one of course or section", e.ID), nil)
	}
	return nil
}

// CompletionRecord is one completed (graded) course on a student's
// transcript, derived from enrollment history.
type CompletionRecord struct {
	EnrollmentID int64
	StudentID    shared.StudentID
	CourseID     shared.CourseID
	Key          catalog.CourseKey
	Title        string
	Grade        shared.Grade
	CreditHours  shared.CreditHours
	TermCode     string
}

// IsPassing reports whether the record counts toward prerequisites and
// degree progress.
func (c *CompletionRecord) IsPassing() bool {
	return c.Grade.IsPassing()
}

// ══════════════════════════════════════════════════════════════════════════════
// TRANSCRIPT HELPERS
// ══════════════════════════════════════════════════════════════════════════════

// PassingKeys collects the course keys completed with a passing grade.
func PassingKeys(records []CompletionRecord) rules.KeySet {
	s := make(rules.KeySet)
	for _, r := range records {
		if r.IsPassing() {
			s.Add(r.Key)
		}
	}
	return s
}

// PlannedKeys collects the course keys present in a plan's entries. Entries
// whose course the store could not resolve (manual rows) are skipped.
func PlannedKeys(entries []PlannedEntry) rules.KeySet {
	s := make(rules.KeySet)
	for _, e := range entries {
		if e.Key.IsValid() {
			s.Add(e.Key)
		}
	}
	return s
}

// EarnedCredits sums the credit hours of passing completions.
func EarnedCredits(records []CompletionRecord) shared.CreditHours {
	var total shared.CreditHours
	for _, r := range records {
		if r.IsPassing() {
			total = total.Add(r.CreditHours)
		}
	}
	return total
}

// Package student contains the student domain model. The decision engine
// only needs a student's identity and derived progress; everything else here
// is the registrar record the store keeps.
package student

import (
	"strings"
	"time"

	"github.com/nittany-hub/course-planner/internal/domain/shared"
)

// LoginID is the institutional login ("abc1234") a student signs in with.
type LoginID string

// IsValid checks the login is plausible.
func (l LoginID) IsValid() bool {
	s := string(l)
	return len(s) >= 2 && len(s) <= 30 && !strings.ContainsAny(s, " \t\n\r")
}

// String returns the string representation.
func (l LoginID) String() string {
	return string(l)
}

// Normalize trims and lower-cases the login.
func (l LoginID) Normalize() LoginID {
	return LoginID(strings.ToLower(strings.TrimSpace(string(l))))
}

// Student is a registrar record.
type Student struct {
	ID               shared.StudentID
	LoginID          LoginID
	FirstName        string
	LastName         string
	Email            string
	ExpectedGradTerm shared.TermID
	CatalogYearID    int64
	AdvisorID        int64
	CreatedAt        time.Time
}

// Validate checks required fields.
func (s *Student) Validate() error {
	if !s.ID.IsValid() {
		return shared.WrapError("student", "Validate", shared.ErrInvalidID,
			"student id must be positive", nil)
	}
	if !s.LoginID.IsValid() {
		return shared.WrapError("student", "Validate", shared.ErrInvalidInput,
			"login id is malformed", nil)
	}
	return nil
}

// DisplayName returns "First Last".
func (s *Student) DisplayName() string {
	return strings.TrimSpace(s.FirstName + " " + s.LastName)
}

// Advisor is the assigned academic advisor.
type Advisor struct {
	ID        int64
	FirstName string
	LastName  string
	Email     string
}

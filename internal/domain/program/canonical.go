// Package program contains degree programs and the canonical course sequence:
// the idealized term-by-term ordering used to rank and bound recommendations.
package program

import (
	"fmt"

	"github.com/nittany-hub/course-planner/internal/domain/catalog"
	"github.com/nittany-hub/course-planner/internal/domain/shared"
)

// ══════════════════════════════════════════════════════════════════════════════
// ENTITIES
// ══════════════════════════════════════════════════════════════════════════════

// Type distinguishes program kinds in the store.
type Type string

const (
	TypeMajor       Type = "Major"
	TypeMinor       Type = "Minor"
	TypeCertificate Type = "Certificate"
)

// Program is a degree program a student can be enrolled in.
type Program struct {
	ID            shared.ProgramID
	Name          string
	Type          Type
	CatalogYearID int64
}

// Validate checks required fields.
func (p *Program) Validate() error {
	if !p.ID.IsValid() {
		return shared.WrapError("program", "Validate", shared.ErrInvalidID,
			"program id must be positive", nil)
	}
	if p.Name == "" {
		return shared.WrapError("program", "Validate", shared.ErrEmptyValue,
			"program name is required", nil)
	}
	return nil
}

// ══════════════════════════════════════════════════════════════════════════════
// CANONICAL SEQUENCE
// ══════════════════════════════════════════════════════════════════════════════

// SequenceEntry places one course in the canonical program flow.
type SequenceEntry struct {
	Key catalog.CourseKey

	// Semester is the 1-based semester index the course is nominally
	// taken in (1 = first fall).
	Semester int
}

// CanonicalSequence is the idealized program flow: an ordered list of course
// keys plus a semester index per key. The listed order is authoritative for
// ranking; it is never reordered.
type CanonicalSequence struct {
	entries  []SequenceEntry
	position map[catalog.CourseKey]int
	semester map[catalog.CourseKey]int
}

// NewCanonicalSequence builds and validates a sequence. Semester indices must
// be monotonically non-decreasing in listed order, since the list itself is
// in program order.
func NewCanonicalSequence(entries []SequenceEntry) (*CanonicalSequence, error) {
	cs := &CanonicalSequence{
		entries:  entries,
		position: make(map[catalog.CourseKey]int, len(entries)),
		semester: make(map[catalog.CourseKey]int, len(entries)),
	}
	prev := 0
	for i, e := range entries {
		if !e.Key.IsValid() {
			return nil, shared.WrapError("program", "NewCanonicalSequence", shared.ErrConfiguration,
				fmt.Sprintf("sequence entry %d has an empty course key", i), nil)
		}
		if e.Semester < 1 {
			return nil, shared.WrapError("program", "NewCanonicalSequence", shared.ErrConfiguration,
				fmt.Sprintf("sequence entry %s has semester %d", e.Key, e.Semester), nil)
		}
		if e.Semester < prev {
			return nil, shared.WrapError("program", "NewCanonicalSequence", shared.ErrConfiguration,
				fmt.Sprintf("sequence entry %s (semester %d) listed after semester %d", e.Key, e.Semester, prev), nil)
		}
		if _, dup := cs.position[e.Key]; dup {
			return nil, shared.WrapError("program", "NewCanonicalSequence", shared.ErrConfiguration,
				fmt.Sprintf("course %s listed twice in canonical sequence", e.Key), nil)
		}
		cs.position[e.Key] = i
		cs.semester[e.Key] = e.Semester
		prev = e.Semester
	}
	return cs, nil
}

// Position returns the 0-based list position of key, or false if the course
// is not part of the canonical flow.
func (cs *CanonicalSequence) Position(key catalog.CourseKey) (int, bool) {
	p, ok := cs.position[key]
	return p, ok
}

// Semester returns the declared semester index of key, or false if absent.
func (cs *CanonicalSequence) Semester(key catalog.CourseKey) (int, bool) {
	s, ok := cs.semester[key]
	return s, ok
}

// Len returns the number of sequence entries.
func (cs *CanonicalSequence) Len() int {
	return len(cs.entries)
}

// Entries returns a copy of the ordered entries.
func (cs *CanonicalSequence) Entries() []SequenceEntry {
	out := make([]SequenceEntry, len(cs.entries))
	copy(out, cs.entries)
	return out
}

// ══════════════════════════════════════════════════════════════════════════════
// SEMESTER INFERENCE
// ══════════════════════════════════════════════════════════════════════════════

// InferSemester derives a semester index for a course absent from the
// canonical sequence, from the leading digits of its catalog number:
// below 200 -> 1, below 300 -> 3, below 400 -> 5, otherwise 7. A catalog
// number with no digits maps to 8, which effectively keeps the course out of
// recommendations until the student explicitly reaches it.
//
// Kept as an isolated pure function so it can be tested and swapped without
// touching the ranking logic.
func InferSemester(key catalog.CourseKey) int {
	num, ok := key.LeadingNumber()
	if !ok {
		return 8
	}
	switch {
	case num < 200:
		return 1
	case num < 300:
		return 3
	case num < 400:
		return 5
	default:
		return 7
	}
}

// SemesterFor returns the semester index for key: the canonical sequence's
// declaration when present, the digit heuristic otherwise.
func (cs *CanonicalSequence) SemesterFor(key catalog.CourseKey) int {
	if s, ok := cs.Semester(key); ok {
		return s
	}
	return InferSemester(key)
}

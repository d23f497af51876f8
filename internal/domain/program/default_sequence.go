package program

import (
	"github.com/nittany-hub/course-planner/internal/domain/catalog"
)

// DefaultSequence returns the computer science flowsheet the program shipped
// with before the sequence was promoted to configuration. Kept as the
// fallback when no rules file provides one.
func DefaultSequence() *CanonicalSequence {
	k := catalog.NewCourseKey
	entries := []SequenceEntry{
		// first year fall
		{Key: k("CMPSC", "121"), Semester: 1},
		{Key: k("CMPSC", "131"), Semester: 1},
		{Key: k("MATH", "140"), Semester: 1},
		{Key: k("ENGL", "15"), Semester: 1},
		// first year spring
		{Key: k("CMPSC", "122"), Semester: 2},
		{Key: k("CMPSC", "132"), Semester: 2},
		{Key: k("MATH", "141"), Semester: 2},
		{Key: k("PHYS", "211"), Semester: 2},
		// second year fall
		{Key: k("CMPSC", "221"), Semester: 3},
		{Key: k("MATH", "230"), Semester: 3},
		{Key: k("MATH", "220"), Semester: 3},
		{Key: k("PHYS", "212"), Semester: 3},
		{Key: k("CAS", "100A"), Semester: 3},
		{Key: k("CAS", "100B"), Semester: 3},
		// second year spring
		{Key: k("CMPSC", "360"), Semester: 4},
		{Key: k("CMPEN", "270"), Semester: 4},
		{Key: k("CMPSC", "311"), Semester: 4},
		// third year fall
		{Key: k("CMPSC", "465"), Semester: 5},
		{Key: k("CMPEN", "331"), Semester: 5},
		{Key: k("STAT", "318"), Semester: 5},
		{Key: k("CMPSC", "461"), Semester: 5},
		// third year spring
		{Key: k("CMPSC", "464"), Semester: 6},
		{Key: k("CMPSC", "473"), Semester: 6},
		{Key: k("STAT", "319"), Semester: 6},
		{Key: k("ENGL", "202C"), Semester: 6},
		// fourth year
		{Key: k("CMPSC", "483W"), Semester: 7},
		{Key: k("CMPSC", "431W"), Semester: 7},
	}

	cs, err := NewCanonicalSequence(entries)
	if err != nil {
		// The shipped flowsheet is ordered by construction.
		panic(err)
	}
	return cs
}

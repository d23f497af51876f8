package program

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nittany-hub/course-planner/internal/domain/catalog"
	"github.com/nittany-hub/course-planner/internal/domain/shared"
)

func key(subject, number string) catalog.CourseKey {
	return catalog.NewCourseKey(subject, number)
}

func TestNewCanonicalSequence(t *testing.T) {
	cs, err := NewCanonicalSequence([]SequenceEntry{
		{Key: key("CMPSC", "131"), Semester: 1},
		{Key: key("CMPSC", "132"), Semester: 2},
		{Key: key("CMPSC", "221"), Semester: 3},
	})
	require.NoError(t, err)

	pos, ok := cs.Position(key("CMPSC", "132"))
	require.True(t, ok)
	assert.Equal(t, 1, pos)

	sem, ok := cs.Semester(key("CMPSC", "221"))
	require.True(t, ok)
	assert.Equal(t, 3, sem)

	_, ok = cs.Position(key("ART", "10"))
	assert.False(t, ok)
}

func TestNewCanonicalSequence_RejectsDecreasingSemesters(t *testing.T) {
	_, err := NewCanonicalSequence([]SequenceEntry{
		{Key: key("CMPSC", "132"), Semester: 2},
		{Key: key("CMPSC", "131"), Semester: 1},
	})
	require.Error(t, err)
	assert.True(t, shared.IsConfiguration(err))
}

func TestNewCanonicalSequence_RejectsDuplicates(t *testing.T) {
	_, err := NewCanonicalSequence([]SequenceEntry{
		{Key: key("CMPSC", "131"), Semester: 1},
		{Key: key("CMPSC", "131"), Semester: 2},
	})
	require.Error(t, err)
	assert.True(t, shared.IsConfiguration(err))
}

func TestInferSemester(t *testing.T) {
	tests := []struct {
		key  catalog.CourseKey
		want int
	}{
		{key("ENGL", "15"), 1},
		{key("CMPSC", "131"), 1},
		{key("PHYS", "211"), 3},
		{key("CMPSC", "311"), 5},
		{key("CMPSC", "465"), 7},
		{key("CMPSC", "483W"), 7},
		{key("HONR", "X"), 8}, // no digits: never recommended early
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, InferSemester(tt.key), tt.key.String())
	}
}

func TestSemesterFor_PrefersDeclaredIndex(t *testing.T) {
	cs := DefaultSequence()

	// CAS 100A is a 100-level course the flowsheet places in semester 3;
	// the declaration wins over the digit heuristic.
	assert.Equal(t, 3, cs.SemesterFor(key("CAS", "100A")))

	// Absent courses fall back to the heuristic.
	assert.Equal(t, 5, cs.SemesterFor(key("STAT", "380")))
}

func TestDefaultSequence(t *testing.T) {
	cs := DefaultSequence()
	assert.Equal(t, 27, cs.Len())

	first, ok := cs.Position(key("CMPSC", "121"))
	require.True(t, ok)
	assert.Equal(t, 0, first)

	last, ok := cs.Position(key("CMPSC", "431W"))
	require.True(t, ok)
	assert.Equal(t, cs.Len()-1, last)
}

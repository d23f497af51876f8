package catalog

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nittany-hub/course-planner/internal/domain/shared"
)

func course(id int64, subject, number string) Course {
	return Course{
		ID:          shared.CourseID(id),
		Key:         NewCourseKey(subject, number),
		Title:       subject + " " + number,
		CreditHours: 3,
	}
}

func TestNewIndex_LookupAndPrereqs(t *testing.T) {
	courses := []Course{
		course(1, "CMPSC", "131"),
		course(2, "CMPSC", "132"),
		course(3, "MATH", "140"),
	}
	edges := []PrerequisiteEdge{
		{CourseID: 2, PrereqCourseID: 1},
		{CourseID: 2, PrereqCourseID: 3},
	}

	idx, err := NewIndex(courses, edges)
	require.NoError(t, err)
	assert.Equal(t, 3, idx.Len())

	c, err := idx.Lookup(2)
	require.NoError(t, err)
	assert.Equal(t, NewCourseKey("CMPSC", "132"), c.Key)

	byKey, err := idx.LookupKey(NewCourseKey("math", "140"))
	require.NoError(t, err)
	assert.Equal(t, shared.CourseID(3), byKey.ID)

	prereqs := idx.PrerequisitesOf(2)
	require.Len(t, prereqs, 2)
	// Ordered by prerequisite course id.
	assert.Equal(t, shared.CourseID(1), prereqs[0].PrereqCourseID)
	assert.Equal(t, shared.CourseID(3), prereqs[1].PrereqCourseID)

	assert.Empty(t, idx.PrerequisitesOf(1))
}

func TestNewIndex_UnknownCourse(t *testing.T) {
	idx, err := NewIndex([]Course{course(1, "CMPSC", "131")}, nil)
	require.NoError(t, err)

	_, err = idx.Lookup(99)
	assert.True(t, shared.IsNotFound(err))
}

func TestNewIndex_DuplicateKeyConflict(t *testing.T) {
	courses := []Course{
		course(1, "CMPSC", "131"),
		course(2, "CMPSC", "131"),
	}

	_, err := NewIndex(courses, nil)
	require.Error(t, err)
	assert.True(t, shared.IsConfiguration(err))
}

func TestNewIndex_SameRowTwiceIsFine(t *testing.T) {
	courses := []Course{
		course(1, "CMPSC", "131"),
		course(1, "CMPSC", "131"),
	}

	idx, err := NewIndex(courses, nil)
	require.NoError(t, err)
	assert.Equal(t, 1, idx.Len())
}

func TestNewIndex_DanglingEdgeSkipped(t *testing.T) {
	courses := []Course{course(1, "CMPSC", "131"), course(2, "CMPSC", "132")}
	edges := []PrerequisiteEdge{
		{CourseID: 2, PrereqCourseID: 1},
		{CourseID: 2, PrereqCourseID: 42}, // unknown prerequisite
		{CourseID: 77, PrereqCourseID: 1}, // unknown course
	}

	idx, err := NewIndex(courses, edges)
	require.NoError(t, err)
	assert.Len(t, idx.PrerequisitesOf(2), 1)
	assert.Len(t, idx.SkippedEdges(), 2)
}

func TestParseCourseKey(t *testing.T) {
	tests := []struct {
		in      string
		want    CourseKey
		wantErr bool
	}{
		{in: "CMPSC 131", want: NewCourseKey("CMPSC", "131")},
		{in: "  cas 100a ", want: NewCourseKey("CAS", "100A")},
		{in: "CMPSC 483W", want: NewCourseKey("CMPSC", "483W")},
		{in: "131", wantErr: true},
		{in: "", wantErr: true},
	}
	for _, tt := range tests {
		got, err := ParseCourseKey(tt.in)
		if tt.wantErr {
			assert.Error(t, err, tt.in)
			continue
		}
		require.NoError(t, err, tt.in)
		assert.Equal(t, tt.want, got)
	}
}

func TestCourseKeyLeadingNumber(t *testing.T) {
	n, ok := NewCourseKey("CMPSC", "483W").LeadingNumber()
	require.True(t, ok)
	assert.Equal(t, 483, n)

	_, ok = NewCourseKey("HONR", "X").LeadingNumber()
	assert.False(t, ok)
}

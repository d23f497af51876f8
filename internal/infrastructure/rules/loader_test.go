package rules

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nittany-hub/course-planner/internal/domain/catalog"
	"github.com/nittany-hub/course-planner/internal/domain/shared"
)

const sampleRules = `
equivalences:
  - ["CMPSC 121", "CMPSC 131"]
  - ["CAS 100A", "CAS 100B"]
alternatives:
  - ["MATH 110", "MATH 140"]
sequence:
  - course: "CMPSC 131"
    semester: 1
  - course: "MATH 140"
    semester: 1
  - course: "CMPSC 132"
    semester: 2
`

func TestParse_BuildsTables(t *testing.T) {
	rs, seq, err := Parse([]byte(sampleRules))
	require.NoError(t, err)

	require.Len(t, rs.Equivalences, 2)
	assert.Contains(t, rs.Equivalences[0], catalog.NewCourseKey("CMPSC", "121"))
	require.Len(t, rs.Alternatives, 1)

	sem, ok := seq.Semester(catalog.NewCourseKey("CMPSC", "131"))
	require.True(t, ok)
	assert.Equal(t, 1, sem)
	sem, ok = seq.Semester(catalog.NewCourseKey("CMPSC", "132"))
	require.True(t, ok)
	assert.Equal(t, 2, sem)
}

func TestParse_EmptySequenceFallsBackToDefault(t *testing.T) {
	_, seq, err := Parse([]byte(`equivalences: [["CMPSC 121", "CMPSC 131"]]`))
	require.NoError(t, err)
	require.NotNil(t, seq)

	// The compiled-in flowsheet places CMPSC 131 in the first semester.
	sem, ok := seq.Semester(catalog.NewCourseKey("CMPSC", "131"))
	require.True(t, ok)
	assert.Equal(t, 1, sem)
}

func TestParse_BadYAML(t *testing.T) {
	_, _, err := Parse([]byte("equivalences: ["))
	require.Error(t, err)
	assert.True(t, shared.IsConfiguration(err))
}

func TestParse_MalformedCourseKey(t *testing.T) {
	_, _, err := Parse([]byte(`equivalences: [["CMPSC121", "CMPSC 131"]]`))
	require.Error(t, err)
	assert.True(t, shared.IsConfiguration(err))
}

func TestParse_SingletonGroupRejected(t *testing.T) {
	_, _, err := Parse([]byte(`alternatives: [["MATH 140"]]`))
	require.Error(t, err)
}

func TestLoad_ReadsFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "rules.yaml")
	require.NoError(t, os.WriteFile(path, []byte(sampleRules), 0o644))

	rs, _, err := Load(path)
	require.NoError(t, err)
	assert.Len(t, rs.Equivalences, 2)
}

func TestLoad_MissingFile(t *testing.T) {
	_, _, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.Error(t, err)
	assert.True(t, shared.IsConfiguration(err))
}

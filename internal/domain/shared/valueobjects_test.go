package shared

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGradePassing(t *testing.T) {
	passing := []Grade{GradeA, GradeAMinus, GradeBPlus, GradeB, GradeBMinus, GradeCPlus, GradeC, GradePass}
	for _, g := range passing {
		assert.True(t, g.IsPassing(), g.String())
	}

	// C- and below do not count toward prerequisites or progress.
	notPassing := []Grade{GradeCMinus, GradeD, GradeF, GradeNoPass}
	for _, g := range notPassing {
		assert.True(t, g.IsValid(), g.String())
		assert.False(t, g.IsPassing(), g.String())
	}
}

func TestParseGrade(t *testing.T) {
	g, err := ParseGrade(" b+ ")
	require.NoError(t, err)
	assert.Equal(t, GradeBPlus, g)

	_, err = ParseGrade("E")
	assert.Error(t, err)
	assert.True(t, IsValidation(err))
}

func TestStandingFromCredits(t *testing.T) {
	tests := []struct {
		credits CreditHours
		want    SemesterStanding
	}{
		{0, 1},
		{14, 1},
		{15, 2},
		{29, 2},
		{30, 3},
		{120, 9},
		{-5, 1},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, StandingFromCredits(tt.credits), "credits=%d", tt.credits)
	}
}

func TestMaxSemesterToShow(t *testing.T) {
	assert.Equal(t, 2, StandingFromCredits(0).MaxSemesterToShow())
	assert.Equal(t, 4, StandingFromCredits(30).MaxSemesterToShow())
	assert.Equal(t, 1, SemesterStanding(-3).MaxSemesterToShow())
}

func TestDomainErrorMatching(t *testing.T) {
	err := WrapError("catalog", "Lookup", ErrNotFound, "course id 7", nil)
	assert.True(t, IsNotFound(err))
	assert.False(t, IsConfiguration(err))

	cfg := ErrOverlappingGroups
	assert.True(t, IsConfiguration(cfg))
	assert.Contains(t, cfg.Error(), "rules.Validate")
}

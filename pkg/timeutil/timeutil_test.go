package timeutil

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseClock(t *testing.T) {
	c, err := ParseClock("10:30")
	require.NoError(t, err)
	assert.Equal(t, ClockTime(10*60+30), c)
	assert.Equal(t, "10:30", c.String())

	c, err = ParseClock("09:05:00")
	require.NoError(t, err)
	assert.Equal(t, 9, c.Hour())
	assert.Equal(t, 5, c.Minute())

	for _, bad := range []string{"", "10", "25:00", "10:61", "ten:30"} {
		_, err := ParseClock(bad)
		assert.Error(t, err, bad)
	}
}

func TestOverlaps(t *testing.T) {
	mk := func(s string) ClockTime {
		c, err := ParseClock(s)
		require.NoError(t, err)
		return c
	}

	assert.True(t, Overlaps(mk("10:00"), mk("10:50"), mk("10:30"), mk("11:20")))
	assert.True(t, Overlaps(mk("10:00"), mk("12:00"), mk("10:30"), mk("11:00")))

	// Half-open: touching endpoints do not overlap.
	assert.False(t, Overlaps(mk("09:40"), mk("10:30"), mk("10:30"), mk("11:20")))
	assert.False(t, Overlaps(mk("11:00"), mk("12:00"), mk("09:00"), mk("10:00")))
}

func TestParseDays(t *testing.T) {
	s, err := ParseDays("MWF")
	require.NoError(t, err)
	assert.Equal(t, []Day{Monday, Wednesday, Friday}, s.Sorted())
	assert.Equal(t, "MWF", s.String())

	s, err = ParseDays("tr")
	require.NoError(t, err)
	assert.True(t, s.Contains(Tuesday))
	assert.True(t, s.Contains(Thursday))

	_, err = ParseDays("")
	assert.Error(t, err)
	_, err = ParseDays("MXF")
	assert.Error(t, err)
}

func TestDaySetShared(t *testing.T) {
	a, err := ParseDays("MWF")
	require.NoError(t, err)
	b, err := ParseDays("WF")
	require.NoError(t, err)

	assert.Equal(t, []Day{Wednesday, Friday}, a.Shared(b))

	c, err := ParseDays("TR")
	require.NoError(t, err)
	assert.Empty(t, a.Shared(c))
}

func TestDayString(t *testing.T) {
	assert.Equal(t, "Thu", Thursday.String())
	assert.Equal(t, "R", Thursday.Code())
	assert.Equal(t, "Sun", Sunday.String())
}

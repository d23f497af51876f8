// Package timeutil provides clock-time and meeting-day utilities for the
// course planner. Section meetings are wall-clock intervals on weekdays
// ("MWF 10:10-11:00"), not absolute timestamps, so they get their own small
// arithmetic here. No external dependencies - uses only standard library.
package timeutil

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"
)

// CampusTZ is the campus timezone (US Eastern). Term dates coming from the
// store are interpreted in it.
var CampusTZ = func() *time.Location {
	loc, err := time.LoadLocation("America/New_York")
	if err != nil {
		return time.FixedZone("EST", -5*60*60)
	}
	return loc
}()

// ═══════════════════════════════════════════════════════════════════════════
// Clock time
// ═══════════════════════════════════════════════════════════════════════════

// ClockTime is a wall-clock time of day in minutes since midnight.
type ClockTime int

// IsValid checks the time is within one day.
func (c ClockTime) IsValid() bool {
	return c >= 0 && c < 24*60
}

// Hour returns the hour component (0-23).
func (c ClockTime) Hour() int {
	return int(c) / 60
}

// Minute returns the minute component (0-59).
func (c ClockTime) Minute() int {
	return int(c) % 60
}

// Before reports whether c is strictly before other.
func (c ClockTime) Before(other ClockTime) bool {
	return c < other
}

// String formats the time as "HH:MM".
func (c ClockTime) String() string {
	return fmt.Sprintf("%02d:%02d", c.Hour(), c.Minute())
}

// ParseClock parses "HH:MM" or "HH:MM:SS" (seconds are dropped; meetings are
// minute-granular).
func ParseClock(s string) (ClockTime, error) {
	parts := strings.Split(strings.TrimSpace(s), ":")
	if len(parts) != 2 && len(parts) != 3 {
		return 0, fmt.Errorf("timeutil: cannot parse clock time %q", s)
	}
	h, err := strconv.Atoi(parts[0])
	if err != nil {
		return 0, fmt.Errorf("timeutil: cannot parse clock time %q: %w", s, err)
	}
	m, err := strconv.Atoi(parts[1])
	if err != nil {
		return 0, fmt.Errorf("timeutil: cannot parse clock time %q: %w", s, err)
	}
	c := ClockTime(h*60 + m)
	if h < 0 || h > 23 || m < 0 || m > 59 {
		return 0, fmt.Errorf("timeutil: clock time %q out of range", s)
	}
	return c, nil
}

// Overlaps reports whether the half-open intervals [aStart, aEnd) and
// [bStart, bEnd) intersect. Back-to-back intervals do not overlap.
func Overlaps(aStart, aEnd, bStart, bEnd ClockTime) bool {
	return aStart < bEnd && bStart < aEnd
}

// ═══════════════════════════════════════════════════════════════════════════
// Meeting days
// ═══════════════════════════════════════════════════════════════════════════

// Day is a day of the week a section meets on. Ordered Monday first, the
// way schedules print it.
type Day int

const (
	Monday Day = iota
	Tuesday
	Wednesday
	Thursday
	Friday
	Saturday
	Sunday
)

// dayLetters maps the registrar's single-letter codes. R is Thursday and
// U is Sunday, per the usual convention.
var dayLetters = map[byte]Day{
	'M': Monday,
	'T': Tuesday,
	'W': Wednesday,
	'R': Thursday,
	'F': Friday,
	'S': Saturday,
	'U': Sunday,
}

var dayNames = [...]string{"Mon", "Tue", "Wed", "Thu", "Fri", "Sat", "Sun"}
var dayCodes = [...]string{"M", "T", "W", "R", "F", "S", "U"}

// String returns the three-letter day name.
func (d Day) String() string {
	if d < Monday || d > Sunday {
		return "???"
	}
	return dayNames[d]
}

// Code returns the registrar's single-letter code.
func (d Day) Code() string {
	if d < Monday || d > Sunday {
		return "?"
	}
	return dayCodes[d]
}

// DaySet is a set of meeting days.
type DaySet map[Day]struct{}

// NewDaySet builds a set from days.
func NewDaySet(days ...Day) DaySet {
	s := make(DaySet, len(days))
	for _, d := range days {
		s[d] = struct{}{}
	}
	return s
}

// ParseDays parses a registrar day string like "MWF" or "TR".
func ParseDays(s string) (DaySet, error) {
	s = strings.ToUpper(strings.TrimSpace(s))
	if s == "" {
		return nil, fmt.Errorf("timeutil: empty day string")
	}
	set := make(DaySet, len(s))
	for i := 0; i < len(s); i++ {
		d, ok := dayLetters[s[i]]
		if !ok {
			return nil, fmt.Errorf("timeutil: unknown day letter %q in %q", s[i], s)
		}
		set[d] = struct{}{}
	}
	return set, nil
}

// Contains reports membership.
func (s DaySet) Contains(d Day) bool {
	_, ok := s[d]
	return ok
}

// Shared returns the days present in both sets, Monday first.
func (s DaySet) Shared(other DaySet) []Day {
	var out []Day
	for d := range s {
		if other.Contains(d) {
			out = append(out, d)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// Sorted returns the member days, Monday first.
func (s DaySet) Sorted() []Day {
	out := make([]Day, 0, len(s))
	for d := range s {
		out = append(out, d)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// String prints the registrar form, e.g. "MWF".
func (s DaySet) String() string {
	var b strings.Builder
	for _, d := range s.Sorted() {
		b.WriteString(d.Code())
	}
	return b.String()
}

package schedule

import (
	"sort"

	"github.com/nittany-hub/course-planner/pkg/timeutil"
)

// ══════════════════════════════════════════════════════════════════════════════
// CONFLICT DETECTOR
// ══════════════════════════════════════════════════════════════════════════════

// Conflict is one pairwise meeting overlap on one shared day. Two sections
// meeting on several shared days produce one Conflict per conflicting day.
type Conflict struct {
	Day timeutil.Day
	A   Meeting
	B   Meeting
}

// FindConflicts scans a meeting snapshot for pairwise time overlaps on shared
// days. Two meetings conflict when they belong to different sections, share
// at least one day, and their intervals intersect under half-open semantics:
// a meeting ending exactly as another starts does not conflict.
//
// One conflict is reported per (day, unordered meeting pair), ordered by day,
// then earlier start time, then later start time. Within each pair A is the
// meeting that starts first (section id breaks start ties).
//
// The scan is the naive O(n²) pairwise comparison, which is fine at
// catalog-section scale (hundreds of meetings).
func FindConflicts(meetings []Meeting) []Conflict {
	var out []Conflict
	for i := 0; i < len(meetings); i++ {
		for j := i + 1; j < len(meetings); j++ {
			a, b := meetings[i], meetings[j]
			if a.SectionID == b.SectionID {
				continue
			}
			if !timeutil.Overlaps(a.Start, a.End, b.Start, b.End) {
				continue
			}
			for _, day := range a.Days.Shared(b.Days) {
				first, second := a, b
				if second.Start < first.Start ||
					(second.Start == first.Start && second.SectionID < first.SectionID) {
					first, second = second, first
				}
				out = append(out, Conflict{Day: day, A: first, B: second})
			}
		}
	}

	sort.Slice(out, func(i, j int) bool {
		if out[i].Day != out[j].Day {
			return out[i].Day < out[j].Day
		}
		if out[i].A.Start != out[j].A.Start {
			return out[i].A.Start < out[j].A.Start
		}
		if out[i].B.Start != out[j].B.Start {
			return out[i].B.Start < out[j].B.Start
		}
		// Stable order for identical intervals.
		if out[i].A.SectionID != out[j].A.SectionID {
			return out[i].A.SectionID < out[j].A.SectionID
		}
		return out[i].B.SectionID < out[j].B.SectionID
	})

	return out
}

package catalog

import (
	"fmt"
	"sort"

	"github.com/nittany-hub/course-planner/internal/domain/shared"
)

// ══════════════════════════════════════════════════════════════════════════════
// CATALOG INDEX
// ══════════════════════════════════════════════════════════════════════════════

// Index is an in-memory lookup from course ids and keys to course attributes
// and declared prerequisite edges. It is built once per decision from a store
// snapshot and is read-only afterwards, so it is safe for concurrent use.
type Index struct {
	byID    map[shared.CourseID]*Course
	byKey   map[CourseKey]*Course
	prereqs map[shared.CourseID][]PrerequisiteEdge

	// skipped holds edges dropped during construction because they
	// reference a course absent from the snapshot. Catalog integrity
	// issues are common; they degrade per-edge instead of failing the
	// whole build. Callers are expected to log these.
	skipped []PrerequisiteEdge
}

// NewIndex builds an Index from a snapshot of courses and prerequisite edges.
// Construction fails if two distinct ids map to the same CourseKey; that is a
// catalog consistency error, not a per-row data issue.
func NewIndex(courses []Course, edges []PrerequisiteEdge) (*Index, error) {
	idx := &Index{
		byID:    make(map[shared.CourseID]*Course, len(courses)),
		byKey:   make(map[CourseKey]*Course, len(courses)),
		prereqs: make(map[shared.CourseID][]PrerequisiteEdge),
	}

	for i := range courses {
		c := courses[i]
		if err := c.Validate(); err != nil {
			return nil, err
		}
		if prev, ok := idx.byID[c.ID]; ok && prev.Key != c.Key {
			return nil, shared.WrapError("catalog", "Build", shared.ErrConfiguration,
				fmt.Sprintf("course id %d listed twice with keys %s and %s", c.ID, prev.Key, c.Key), nil)
		}
		if prev, ok := idx.byKey[c.Key]; ok && prev.ID != c.ID {
			return nil, shared.WrapError("catalog", "Build", shared.ErrConfiguration,
				fmt.Sprintf("course key %s claimed by ids %d and %d", c.Key, prev.ID, c.ID), nil)
		}
		idx.byID[c.ID] = &courses[i]
		idx.byKey[c.Key] = &courses[i]
	}

	for _, e := range edges {
		if err := e.Validate(); err != nil {
			return nil, err
		}
		if _, ok := idx.byID[e.CourseID]; !ok {
			idx.skipped = append(idx.skipped, e)
			continue
		}
		if _, ok := idx.byID[e.PrereqCourseID]; !ok {
			idx.skipped = append(idx.skipped, e)
			continue
		}
		idx.prereqs[e.CourseID] = append(idx.prereqs[e.CourseID], e)
	}

	// Deterministic edge order regardless of snapshot row order.
	for id := range idx.prereqs {
		es := idx.prereqs[id]
		sort.Slice(es, func(i, j int) bool {
			return es[i].PrereqCourseID < es[j].PrereqCourseID
		})
	}

	return idx, nil
}

// Lookup returns the course with the given id.
func (idx *Index) Lookup(id shared.CourseID) (*Course, error) {
	c, ok := idx.byID[id]
	if !ok {
		return nil, shared.WrapError("catalog", "Lookup", shared.ErrNotFound,
			fmt.Sprintf("course id %d not in catalog", id), nil)
	}
	return c, nil
}

// LookupKey returns the course with the given key.
func (idx *Index) LookupKey(key CourseKey) (*Course, error) {
	c, ok := idx.byKey[key]
	if !ok {
		return nil, shared.WrapError("catalog", "Lookup", shared.ErrNotFound,
			fmt.Sprintf("course %s not in catalog", key), nil)
	}
	return c, nil
}

// PrerequisitesOf returns the declared prerequisite edges for a course,
// ordered by prerequisite course id. A course with no edges returns nil.
func (idx *Index) PrerequisitesOf(id shared.CourseID) []PrerequisiteEdge {
	return idx.prereqs[id]
}

// KeyOf is a convenience lookup from id to key.
func (idx *Index) KeyOf(id shared.CourseID) (CourseKey, error) {
	c, err := idx.Lookup(id)
	if err != nil {
		return CourseKey{}, err
	}
	return c.Key, nil
}

// Len returns the number of courses in the index.
func (idx *Index) Len() int {
	return len(idx.byID)
}

// SkippedEdges returns the prerequisite edges dropped during construction
// because they referenced courses absent from the snapshot.
func (idx *Index) SkippedEdges() []PrerequisiteEdge {
	return idx.skipped
}

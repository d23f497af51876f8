// Package rules loads the decision rule tables (equivalence groups,
// alternative groups, canonical sequence) from YAML files. The compiled-in
// defaults cover the stock computer science flowsheet; a rules file lets a
// department adjust the tables without a rebuild.
package rules

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/nittany-hub/course-planner/internal/domain/catalog"
	"github.com/nittany-hub/course-planner/internal/domain/program"
	"github.com/nittany-hub/course-planner/internal/domain/rules"
	"github.com/nittany-hub/course-planner/internal/domain/shared"
)

// fileFormat is the YAML shape of a rules file:
//
//	equivalences:
//	  - ["CMPSC 121", "CMPSC 131"]
//	alternatives:
//	  - ["MATH 110", "MATH 140"]
//	sequence:
//	  - course: "CMPSC 131"
//	    semester: 1
type fileFormat struct {
	Equivalences [][]string      `yaml:"equivalences"`
	Alternatives [][]string      `yaml:"alternatives"`
	Sequence     []sequenceEntry `yaml:"sequence"`
}

type sequenceEntry struct {
	Course   string `yaml:"course"`
	Semester int    `yaml:"semester"`
}

// Load reads a rules file and builds the validated rule set and canonical
// sequence. Any malformed course key or inconsistent table is a
// configuration error: the caller must not start serving decisions on it.
func Load(path string) (*rules.RuleSet, *program.CanonicalSequence, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, nil, shared.WrapError("rules", "Load", shared.ErrConfiguration,
			fmt.Sprintf("cannot read rules file %s", path), err)
	}
	return Parse(data)
}

// Parse builds the rule set and sequence from raw YAML.
func Parse(data []byte) (*rules.RuleSet, *program.CanonicalSequence, error) {
	var f fileFormat
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, nil, shared.WrapError("rules", "Parse", shared.ErrConfiguration,
			"rules file is not valid YAML", err)
	}

	rs := &rules.RuleSet{}
	for _, group := range f.Equivalences {
		keys, err := parseKeys(group)
		if err != nil {
			return nil, nil, err
		}
		rs.Equivalences = append(rs.Equivalences, rules.EquivalenceGroup(keys))
	}
	for _, group := range f.Alternatives {
		keys, err := parseKeys(group)
		if err != nil {
			return nil, nil, err
		}
		rs.Alternatives = append(rs.Alternatives, rules.AlternativeGroup(keys))
	}
	if err := rs.Validate(); err != nil {
		return nil, nil, err
	}

	var entries []program.SequenceEntry
	for _, e := range f.Sequence {
		key, err := catalog.ParseCourseKey(e.Course)
		if err != nil {
			return nil, nil, shared.WrapError("rules", "Parse", shared.ErrConfiguration,
				fmt.Sprintf("sequence entry %q is not a course key", e.Course), err)
		}
		entries = append(entries, program.SequenceEntry{Key: key, Semester: e.Semester})
	}

	if len(entries) == 0 {
		return rs, program.DefaultSequence(), nil
	}
	seq, err := program.NewCanonicalSequence(entries)
	if err != nil {
		return nil, nil, err
	}
	return rs, seq, nil
}

func parseKeys(raw []string) ([]catalog.CourseKey, error) {
	if len(raw) < 2 {
		return nil, shared.ErrEmptyGroup
	}
	keys := make([]catalog.CourseKey, 0, len(raw))
	for _, s := range raw {
		key, err := catalog.ParseCourseKey(s)
		if err != nil {
			return nil, shared.WrapError("rules", "Parse", shared.ErrConfiguration,
				fmt.Sprintf("group member %q is not a course key", s), err)
		}
		keys = append(keys, key)
	}
	return keys, nil
}

// Package query contains read operations (CQRS - Queries). Every decision
// here is a pure function of a store snapshot: no writes, no internal state.
package query

import (
	"context"

	"github.com/nittany-hub/course-planner/internal/domain/catalog"
	"github.com/nittany-hub/course-planner/internal/domain/program"
	"github.com/nittany-hub/course-planner/internal/domain/rules"
	"github.com/nittany-hub/course-planner/internal/domain/shared"
	"github.com/nittany-hub/course-planner/pkg/logger"
)

// Environment bundles the read-only decision configuration every query
// handler needs: where to get catalog snapshots, the shared rule tables, and
// the canonical sequence. It is built once at startup and shared by
// reference, so the equivalence and alternative tables cannot drift between
// decision paths.
type Environment struct {
	Snapshot catalog.SnapshotSource
	Rules    *rules.RuleSet
	Sequence *program.CanonicalSequence
	Logger   *logger.Logger
}

// NewEnvironment validates the rule tables once and returns the shared
// environment. An inconsistent rule set is a configuration error: decisions
// must not run against it.
func NewEnvironment(snapshot catalog.SnapshotSource, rs *rules.RuleSet, seq *program.CanonicalSequence, log *logger.Logger) (*Environment, error) {
	if rs == nil {
		rs = rules.DefaultRuleSet()
	}
	if err := rs.Validate(); err != nil {
		return nil, err
	}
	if seq == nil {
		seq = program.DefaultSequence()
	}
	if log == nil {
		log = logger.Default()
	}
	return &Environment{Snapshot: snapshot, Rules: rs, Sequence: seq, Logger: log}, nil
}

// Load reads a consistent catalog snapshot and builds the evaluator over it.
// Edges skipped during index construction are logged here, once per
// decision; they degrade per-edge instead of failing the evaluation.
func (env *Environment) Load(ctx context.Context) (*catalog.Index, *rules.Evaluator, error) {
	courses, edges, err := env.Snapshot.LoadSnapshot(ctx)
	if err != nil {
		return nil, nil, shared.WrapError("query", "LoadSnapshot", shared.ErrStoreUnavailable,
			"cannot load catalog snapshot", err)
	}

	index, err := catalog.NewIndex(courses, edges)
	if err != nil {
		return nil, nil, err
	}

	for _, e := range index.SkippedEdges() {
		env.Logger.Warn("skipping prerequisite edge referencing unknown course",
			logger.CourseID(e.CourseID.Int64()),
			logger.Int64("prereq_course_id", e.PrereqCourseID.Int64()))
	}

	resolver := rules.NewResolver(env.Rules)
	return index, rules.NewEvaluator(index, env.Rules, resolver), nil
}

package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/nittany-hub/course-planner/internal/application/query"
	"github.com/nittany-hub/course-planner/internal/domain/catalog"
	"github.com/nittany-hub/course-planner/internal/domain/shared"
	"github.com/nittany-hub/course-planner/pkg/logger"
)

// ══════════════════════════════════════════════════════════════════════════════
// OFFLINE DECISION COMMANDS
// The same query handlers the API serves, run once against the store and
// printed as JSON. Useful in advising sessions and cron checks without a
// running server.
// ══════════════════════════════════════════════════════════════════════════════

var recommendLimit int

func init() {
	recommendCmd.Flags().IntVar(&recommendLimit, "limit", 0, "cap the recommendation list (default 50)")

	rootCmd.AddCommand(checkCmd)
	rootCmd.AddCommand(recommendCmd)
	rootCmd.AddCommand(conflictsCmd)
}

var checkCmd = &cobra.Command{
	Use:   "check <student-id> <course-code>",
	Short: "Check whether a student may take a course",
	Long: `Check runs the eligibility decision for one student and one course,
e.g.:

  planner check 42 "CMPSC 465"

The verdict, reason code, and any missing prerequisites print as JSON.`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withDecisionEnv(cmd.Context(), func(ctx context.Context, env *query.Environment, stores *storeSet) error {
			studentID, err := parseStudentID(args[0])
			if err != nil {
				return err
			}

			key, err := catalog.ParseCourseKey(args[1])
			if err != nil {
				return err
			}
			course, err := stores.Catalog.GetCourseByKey(ctx, key)
			if err != nil {
				return fmt.Errorf("resolve course %s: %w", key, err)
			}

			q := query.CheckEligibilityQuery{StudentID: studentID, CourseID: course.ID}
			if p, err := stores.Plan.GetPlanForStudent(ctx, studentID); err == nil {
				q.PlanID = p.ID
			}

			handler := query.NewCheckEligibilityHandler(env, stores.Plan)
			result, err := handler.Handle(ctx, q)
			if err != nil {
				return err
			}
			return printJSON(result)
		})
	},
}

var recommendCmd = &cobra.Command{
	Use:   "recommend <student-id>",
	Short: "Recommend next courses for a student",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withDecisionEnv(cmd.Context(), func(ctx context.Context, env *query.Environment, stores *storeSet) error {
			studentID, err := parseStudentID(args[0])
			if err != nil {
				return err
			}

			q := query.RecommendQuery{StudentID: studentID, MaxResults: recommendLimit}
			if p, err := stores.Plan.GetPlanForStudent(ctx, studentID); err == nil {
				q.PlanID = p.ID
			}

			handler := query.NewRecommendHandler(env, stores.Plan, stores.Program, nil)
			result, err := handler.Handle(ctx, q)
			if err != nil {
				return err
			}
			return printJSON(result)
		})
	},
}

var conflictsCmd = &cobra.Command{
	Use:   "conflicts <plan-id>",
	Short: "Find meeting-time conflicts in a plan",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withDecisionEnv(cmd.Context(), func(ctx context.Context, env *query.Environment, stores *storeSet) error {
			id, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil || id <= 0 {
				return fmt.Errorf("invalid plan id %q", args[0])
			}

			handler := query.NewFindConflictsHandler(env, stores.Schedule)
			result, err := handler.Handle(ctx, query.FindConflictsQuery{PlanID: shared.PlanID(id)})
			if err != nil {
				return err
			}
			return printJSON(result)
		})
	},
}

// withDecisionEnv opens the store and rule tables, runs the decision, and
// tears everything down.
func withDecisionEnv(ctx context.Context, fn func(context.Context, *query.Environment, *storeSet) error) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	// Decisions print to stdout; keep log noise out of the JSON.
	log := logger.New(logger.Options{
		Output: os.Stderr,
		Level:  logger.ParseLevel(cfg.Observability.LogLevel),
	})

	stores, err := openStores(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer stores.Close()

	env, err := buildEnvironment(cfg, stores, log)
	if err != nil {
		return err
	}

	return fn(ctx, env, stores)
}

func parseStudentID(s string) (shared.StudentID, error) {
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid student id %q", s)
	}
	return shared.StudentID(id), nil
}

func printJSON(v interface{}) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

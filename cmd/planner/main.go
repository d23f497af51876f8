// Package main is the entry point for the course planner.
//
// The planner answers three questions for a student working toward a
// degree: which courses am I allowed to take, which should I take next,
// and do the meeting times of my chosen sections collide. One binary
// carries the HTTP API, the catalog importer, and offline decision
// commands for advising sessions without a running server.
//
// The architecture follows Clean Architecture and DDD:
// - Domain: eligibility, recommendation, and conflict logic, no external deps
// - Application: use case orchestration (Commands/Queries)
// - Infrastructure: PostgreSQL and embedded SQLite stores, Redis cache, CSV ingest
// - Interface: REST API handlers
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/nittany-hub/course-planner/config"
)

var rootCmd = &cobra.Command{
	Use:   "planner",
	Short: "Degree program course planner",
	Long: `Course planner for degree programs: prerequisite-aware eligibility
checks, ranked course recommendations, and meeting-time conflict detection.

Configuration comes from environment variables (DATABASE_URL, SQLITE_PATH,
HTTP_PORT, RULES_PATH, ...). Without DATABASE_URL the planner runs against
an embedded SQLite file.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

// loadConfig is a tiny indirection so subcommands share one error shape.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	return cfg, nil
}

package main

import (
	"github.com/spf13/cobra"

	"github.com/nittany-hub/course-planner/internal/infrastructure/ingest"
	"github.com/nittany-hub/course-planner/pkg/logger"
)

func init() {
	rootCmd.AddCommand(importCmd)
}

var importCmd = &cobra.Command{
	Use:     "import <dir>",
	Aliases: []string{"import-catalog"},
	Short:   "Import catalog CSV exports into the store",
	Long: `Import reads the catalog export files from a directory and loads them
into the configured store. Recognized files: courses.csv, programs.csv,
major_courses.csv, prereqs.csv, schedule.csv. Missing files are skipped;
the import is idempotent, so re-running it refreshes existing rows.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		log := setupLogger(cfg)

		stores, err := openStores(ctx, cfg, log)
		if err != nil {
			return err
		}
		defer stores.Close()

		importer := ingest.NewImporter(stores.Catalog, stores.Program, stores.Schedule, log)
		summary, err := importer.ImportDir(ctx, args[0])
		if err != nil {
			return err
		}

		log.Info("catalog import finished",
			logger.String("dir", args[0]),
			logger.Int("courses", summary.Courses),
			logger.Int("programs", summary.Programs),
			logger.Int("roster_entries", summary.RosterEntries),
			logger.Int("prereqs", summary.Prereqs),
			logger.Int("sections", summary.Sections),
			logger.Int("skipped_rows", summary.SkippedRows),
		)
		return nil
	},
}

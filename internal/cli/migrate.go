package cli

import (
	"fmt"
	"os"

	"github.com/ppiankov/phonespec/internal/store/postgres"
	"github.com/spf13/cobra"
)

// migrateCmd represents the migrate command
var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Manage the database schema",
}

var migrateUpCmd = &cobra.Command{
	Use:   "up",
	Short: "Apply pending migrations",
	RunE: func(cmd *cobra.Command, args []string) error {
		if cfg.Database.DSN == "" {
			return fmt.Errorf("no database configured: set database.dsn, PHONESPEC_DATABASE_DSN or --dsn")
		}
		results, err := postgres.Migrate(cmd.Context(), cfg.Database.DSN)
		if err != nil {
			return err
		}
		if len(results) == 0 {
			fmt.Fprintf(os.Stderr, "✓ Schema is up to date\n")
			return nil
		}
		for _, r := range results {
			fmt.Fprintf(os.Stderr, "✓ Applied %s (%v)\n", r.Source.Path, r.Duration)
		}
		return nil
	},
}

var migrateStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show applied and pending migrations",
	RunE: func(cmd *cobra.Command, args []string) error {
		if cfg.Database.DSN == "" {
			return fmt.Errorf("no database configured: set database.dsn, PHONESPEC_DATABASE_DSN or --dsn")
		}
		statuses, err := postgres.MigrationStatus(cmd.Context(), cfg.Database.DSN)
		if err != nil {
			return err
		}
		for _, s := range statuses {
			applied := "-"
			if !s.AppliedAt.IsZero() {
				applied = s.AppliedAt.Format("2006-01-02 15:04:05")
			}
			fmt.Printf("%-6d %-10s %-20s %s\n", s.Source.Version, s.State, applied, s.Source.Path)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(migrateCmd)
	migrateCmd.AddCommand(migrateUpCmd)
	migrateCmd.AddCommand(migrateStatusCmd)
}

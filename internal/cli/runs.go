package cli

import (
	"fmt"
	"os"

	"github.com/ppiankov/phonespec/internal/store/checkpoint"
	"github.com/spf13/cobra"
)

// runsCmd represents the runs command
var runsCmd = &cobra.Command{
	Use:   "runs",
	Short: "Inspect ingest checkpoints",
}

var runsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List checkpointed runs",
	RunE: func(cmd *cobra.Command, args []string) error {
		ledger, err := checkpoint.Open(cmd.Context(), cfg.Checkpoint.Path)
		if err != nil {
			return err
		}
		defer func() { _ = ledger.Close() }()

		runs, err := ledger.Runs(cmd.Context())
		if err != nil {
			return err
		}
		if len(runs) == 0 {
			fmt.Fprintf(os.Stderr, "No checkpointed runs in %s\n", cfg.Checkpoint.Path)
			return nil
		}
		for _, r := range runs {
			fmt.Printf("%-38s %5d items  %s\n", r.ID, r.Items, r.UpdatedAt.Format("2006-01-02 15:04:05"))
		}
		return nil
	},
}

var runsForgetCmd = &cobra.Command{
	Use:   "forget <run-id>",
	Short: "Drop the checkpoint of a run",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ledger, err := checkpoint.Open(cmd.Context(), cfg.Checkpoint.Path)
		if err != nil {
			return err
		}
		defer func() { _ = ledger.Close() }()

		n, err := ledger.Forget(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		fmt.Fprintf(os.Stderr, "✓ Forgot %d items of run %s\n", n, args[0])
		return nil
	},
}

func init() {
	rootCmd.AddCommand(runsCmd)
	runsCmd.AddCommand(runsListCmd)
	runsCmd.AddCommand(runsForgetCmd)
}

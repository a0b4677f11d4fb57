package cli

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/ppiankov/phonespec/internal/imageres"
	"github.com/ppiankov/phonespec/internal/metrics"
	"github.com/ppiankov/phonespec/internal/store/postgres"
	"github.com/ppiankov/phonespec/internal/worker"
	"github.com/spf13/cobra"
)

var (
	backfillDryRun      bool
	backfillConcurrency int
)

// imagesCmd represents the images command
var imagesCmd = &cobra.Command{
	Use:   "images",
	Short: "Maintain stored product images",
}

var imagesBackfillCmd = &cobra.Command{
	Use:   "backfill",
	Short: "Upgrade stored images to high-resolution URLs that exist",
	Long: `Backfill walks every stored product whose image is not high resolution,
constructs candidate URLs from the brand folder and slug, checks them with
HEAD requests and stores the first one that exists.

Example:
  phonespec images backfill --dry-run
  phonespec images backfill --concurrency 5`,
	Args: cobra.NoArgs,
	RunE: runBackfill,
}

func init() {
	rootCmd.AddCommand(imagesCmd)
	imagesCmd.AddCommand(imagesBackfillCmd)

	imagesBackfillCmd.Flags().BoolVar(&backfillDryRun, "dry-run", false, "report upgrades without storing them")
	imagesBackfillCmd.Flags().IntVar(&backfillConcurrency, "concurrency", 3, "number of products probed at once")
}

func runBackfill(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	pool, err := openPool(ctx, cfg.Database)
	if err != nil {
		return err
	}
	defer pool.Close()

	banner("Phonespec Image Backfill")
	fmt.Fprintf(os.Stderr, "  Workers:      %d\n", backfillConcurrency)
	fmt.Fprintf(os.Stderr, "  Probe gap:    %v per host\n", cfg.RateLimiting.ProbeInterval)
	if backfillDryRun {
		fmt.Fprintf(os.Stderr, "  Mode:         dry run (nothing is written)\n")
	}
	fmt.Fprintf(os.Stderr, "\n")

	store := postgres.NewWriter(pool, logger)
	prober := imageres.NewProber(
		proxiedClient(cfg.HTTP, cfg.HTTP.Timeout),
		worker.NewLimiter(cfg.RateLimiting.ProbeInterval),
		cfg.HTTP.UserAgent,
		cfg.Images.ProbeConcurrency,
		logger,
	)
	processor := worker.NewBackfillProcessor(store, imageres.NewResolver(cfg.Images), prober,
		backfillConcurrency, cfg.Images.HighResMarker, backfillDryRun, logger)

	summary, err := processor.Process(ctx)
	if err != nil {
		return err
	}

	m := metrics.NewManager(metrics.WithMetricsEnabled(cfg.Metrics.Enabled))
	m.ObserveBackfill(summary.Updated, summary.Skipped, summary.NotFound, summary.Failed)
	if err := m.WriteTextfile(cfg.Metrics.TextfilePath); err != nil {
		logger.Warn("metrics not written", slog.String("error", err.Error()))
	}

	banner("Summary")
	fmt.Fprintf(os.Stderr, "  Checked:      %d\n", summary.Checked)
	fmt.Fprintf(os.Stderr, "  Updated:      %d\n", summary.Updated)
	fmt.Fprintf(os.Stderr, "  Skipped:      %d (already high resolution)\n", summary.Skipped)
	fmt.Fprintf(os.Stderr, "  Not found:    %d\n", summary.NotFound)
	fmt.Fprintf(os.Stderr, "  Failed:       %d\n", summary.Failed)
	fmt.Fprintf(os.Stderr, "\n")
	return nil
}

package cli

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/google/uuid"
	"github.com/ppiankov/phonespec/internal/model"
	"github.com/ppiankov/phonespec/internal/pipeline"
	"github.com/ppiankov/phonespec/internal/report"
	"github.com/ppiankov/phonespec/internal/store/checkpoint"
	"github.com/ppiankov/phonespec/internal/store/postgres"
	"github.com/spf13/cobra"
)

var (
	dryRun  bool
	resume  bool
	runID   string
	gallery bool
)

// ingestCmd represents the ingest command
var ingestCmd = &cobra.Command{
	Use:   "ingest <file>",
	Short: "Scrape, validate and store every product listed in a file",
	Long: `Ingest processes a list of product pages one at a time:
- Fetch each page, pacing requests per host
- Extract specification fields (pattern rules or an LLM backend)
- Normalize units, dates and prices, then validate the record
- Resolve a product image and upsert brand, product and specs

The input is YAML (a list of {url, brand, expected_chipset, gallery_url})
or plain text with one "url | brand | chipset" line per product.

Example:
  phonespec ingest phones.yaml
  phonespec ingest phones.txt --dry-run
  phonespec ingest phones.yaml --run-id nightly --resume`,
	Args: cobra.ExactArgs(1),
	RunE: runIngest,
}

func init() {
	rootCmd.AddCommand(ingestCmd)

	ingestCmd.Flags().BoolVar(&dryRun, "dry-run", false, "validate and report without writing to the database")
	ingestCmd.Flags().BoolVar(&resume, "resume", false, "skip items already completed under --run-id")
	ingestCmd.Flags().StringVar(&runID, "run-id", "", "run identifier for checkpoints (default: random)")
	ingestCmd.Flags().BoolVar(&gallery, "gallery", false, "fetch the picture page of sources that have one")
}

func runIngest(cmd *cobra.Command, args []string) error {
	file := args[0]

	descriptors, err := pipeline.ReadDescriptors(file)
	if err != nil {
		return err
	}
	if len(descriptors) == 0 {
		return fmt.Errorf("no products found in %s", file)
	}

	if runID == "" {
		if resume {
			return fmt.Errorf("--resume requires --run-id")
		}
		runID = uuid.NewString()
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	banner("Phonespec Ingest")
	fmt.Fprintf(os.Stderr, "  Input file:   %s (%d products)\n", file, len(descriptors))
	fmt.Fprintf(os.Stderr, "  Run ID:       %s\n", runID)
	fmt.Fprintf(os.Stderr, "  Strategy:     %s\n", cfg.Extraction.Strategy)
	fmt.Fprintf(os.Stderr, "  Delay:        %v per host\n", cfg.RateLimiting.Delay)
	fmt.Fprintf(os.Stderr, "  Output dir:   %s\n", cfg.Output.Dir)
	if dryRun {
		fmt.Fprintf(os.Stderr, "  Mode:         dry run (nothing is written)\n")
	}
	fmt.Fprintf(os.Stderr, "\n")

	rt, err := newScrapeRuntime(cfg, logger)
	if err != nil {
		return err
	}
	deps := rt.dependencies(logger)

	if !dryRun {
		pool, err := openPool(ctx, cfg.Database)
		if err != nil {
			return err
		}
		defer pool.Close()
		deps.Writer = postgres.NewWriter(pool, logger)
	}

	ledger, err := checkpoint.Open(ctx, cfg.Checkpoint.Path)
	if err != nil {
		return err
	}
	defer func() {
		if err := ledger.Close(); err != nil {
			logger.Warn("close checkpoint", slog.String("error", err.Error()))
		}
	}()
	deps.Ledger = ledger

	orchestrator := pipeline.NewOrchestrator(cfg, deps, pipeline.Options{
		RunID:         runID,
		Resume:        resume,
		DeriveGallery: gallery,
		Progress:      progressLine,
	})

	result, err := orchestrator.Run(ctx, descriptors)
	if err != nil {
		return err
	}

	rep := report.FromRun(result)
	writer := report.NewWriter(cfg.Output.Dir)
	reportPath, err := writer.WriteReport(rep)
	if err != nil {
		return err
	}
	recordPaths, err := writer.WriteRecords(result.Successes())
	if err != nil {
		return err
	}

	rt.metrics.RunFinished(result.FinishedAt)
	if cfg.Metrics.Enabled {
		if err := rt.metrics.WriteTextfile(cfg.Metrics.TextfilePath); err != nil {
			logger.Warn("metrics not written", slog.String("error", err.Error()))
		}
	}

	printSummary(rep)
	fmt.Fprintf(os.Stderr, "  Report:       %s\n", reportPath)
	for _, p := range recordPaths {
		fmt.Fprintf(os.Stderr, "  Records:      %s\n", p)
	}
	fmt.Fprintf(os.Stderr, "\n")

	if result.Cancelled {
		return fmt.Errorf("run interrupted with %d items unprocessed; continue with: phonespec ingest %s --run-id %s --resume",
			result.Unprocessed, file, runID)
	}
	return nil
}

func progressLine(index, total int, out pipeline.ItemOutcome) {
	mark := "✓"
	detail := ""
	switch out.Status {
	case pipeline.StatusInvalid:
		mark = "✗"
		detail = out.Validation.Reason()
	case pipeline.StatusError:
		mark = "!"
		if out.Err != nil {
			detail = out.Err.Error()
		}
	}

	name := out.Descriptor.URL
	if out.Record != nil && out.Record.Name != "" {
		name = out.Record.Name
	}
	if detail != "" {
		fmt.Fprintf(os.Stderr, "  [%d/%d] %s %s: %s\n", index+1, total, mark, name, detail)
		return
	}
	fmt.Fprintf(os.Stderr, "  [%d/%d] %s %s\n", index+1, total, mark, name)
}

func printSummary(rep model.Report) {
	banner("Summary")
	fmt.Fprintf(os.Stderr, "  Total:        %d\n", rep.Summary.Total)
	fmt.Fprintf(os.Stderr, "  Valid:        %d\n", rep.Summary.Valid)
	fmt.Fprintf(os.Stderr, "  Invalid:      %d\n", rep.Summary.Invalid)
	fmt.Fprintf(os.Stderr, "  Errors:       %d\n", rep.Summary.Errors)
	if rep.Skipped > 0 {
		fmt.Fprintf(os.Stderr, "  Skipped:      %d (completed earlier)\n", rep.Skipped)
	}
	fmt.Fprintf(os.Stderr, "\n")
}

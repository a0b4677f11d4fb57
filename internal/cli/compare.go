package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/ppiankov/phonespec/internal/pipeline"
	"github.com/ppiankov/phonespec/internal/report"
	"github.com/ppiankov/phonespec/internal/score"
	"github.com/spf13/cobra"
)

// compareCmd represents the compare command
var compareCmd = &cobra.Command{
	Use:   "compare <file>",
	Short: "Compare two sources over the same products",
	Long: `Compare scrapes every product from its primary URL and its compare_url,
validates both records, and scores the sources by valid records, success
rate, average populated fields and errors. Nothing is written to the database.

Example:
  phonespec compare phones.yaml
  phonespec compare phones.yaml --output-dir ./comparison`,
	Args: cobra.ExactArgs(1),
	RunE: runCompare,
}

func init() {
	rootCmd.AddCommand(compareCmd)
}

func runCompare(cmd *cobra.Command, args []string) error {
	descriptors, err := pipeline.ReadDescriptors(args[0])
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	banner("Phonespec Source Comparison")
	fmt.Fprintf(os.Stderr, "  Input file:   %s (%d products)\n", args[0], len(descriptors))
	fmt.Fprintf(os.Stderr, "  Source gap:   %v\n", cfg.RateLimiting.SourceGap)
	fmt.Fprintf(os.Stderr, "\n")

	rt, err := newScrapeRuntime(cfg, logger)
	if err != nil {
		return err
	}

	products, runErr := pipeline.NewComparer(cfg, rt.dependencies(logger)).Run(ctx, descriptors)
	if runErr != nil && !errors.Is(runErr, context.Canceled) {
		return runErr
	}
	if len(products) == 0 {
		return fmt.Errorf("no products with a compare_url in %s", args[0])
	}

	cmp := score.Compare(products)
	printComparison(cmp)

	path, err := report.NewWriter(cfg.Output.Dir).WriteComparison(cmp)
	if err != nil {
		return err
	}
	fmt.Fprintf(os.Stderr, "  Report:       %s\n\n", path)

	if runErr != nil {
		return fmt.Errorf("comparison interrupted after %d products", len(products))
	}
	return nil
}

func printComparison(cmp score.Comparison) {
	banner("Results")
	for _, s := range cmp.Sources {
		fmt.Fprintf(os.Stderr, "  %-14s valid %d/%d  invalid %d  errors %d  success %.0f%%  avg specs %.1f\n",
			s.Source, s.Valid, s.Total, s.Invalid, s.Errors, s.SuccessRate*100, s.AvgSpecs)
	}

	fmt.Fprintf(os.Stderr, "\n  Winners:\n")
	for _, w := range cmp.Winners {
		fmt.Fprintf(os.Stderr, "    %-14s %s\n", w.Metric, w.Winner)
	}

	fmt.Fprintf(os.Stderr, "\n  %-32s", "Phone")
	for _, s := range cmp.Sources {
		fmt.Fprintf(os.Stderr, " %-26s", s.Source)
	}
	fmt.Fprintf(os.Stderr, "\n  %s\n", strings.Repeat("─", 32+27*len(cmp.Sources)))
	for _, row := range cmp.Rows {
		fmt.Fprintf(os.Stderr, "  %-32s", truncate(row.Phone, 32))
		for _, label := range row.Labels {
			fmt.Fprintf(os.Stderr, " %-26s", label)
		}
		fmt.Fprintf(os.Stderr, "\n")
	}
	fmt.Fprintf(os.Stderr, "\n")
}

func truncate(s string, n int) string {
	if r := []rune(s); len(r) > n {
		return string(r[:n-1]) + "…"
	}
	return s
}

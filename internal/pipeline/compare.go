package pipeline

import (
	"context"
	"log/slog"
	"time"

	"github.com/ppiankov/phonespec/internal/model"
	"github.com/ppiankov/phonespec/internal/score"
)

// Comparer scrapes every product from two sources and scores them side by side.
// Nothing is written to the store.
type Comparer struct {
	o     *Orchestrator
	gap   time.Duration
	sleep func(ctx context.Context, d time.Duration) error
}

// NewComparer creates a Comparer. deps.Writer and deps.Ledger are ignored.
func NewComparer(cfg *model.Config, deps Dependencies) *Comparer {
	deps.Writer = nil
	deps.Ledger = nil
	gap := cfg.RateLimiting.SourceGap
	if gap <= 0 {
		gap = 3 * time.Second
	}
	return &Comparer{
		o:     NewOrchestrator(cfg, deps, Options{}),
		gap:   gap,
		sleep: sleepCtx,
	}
}

// Run compares the primary URL and CompareURL of each descriptor.
// Descriptors without a CompareURL are skipped. Cancellation stops the run between products.
func (c *Comparer) Run(ctx context.Context, descriptors []model.Descriptor) ([]score.Product, error) {
	var products []score.Product

	for i, d := range descriptors {
		if d.CompareURL == "" {
			c.o.logger.Info("no comparison URL, skipping", slog.String("url", d.URL))
			continue
		}

		if err := c.o.waitTurn(ctx, d.URL); err != nil {
			c.o.logger.Warn("comparison cancelled", slog.Int("unprocessed", len(descriptors)-i))
			return products, err
		}

		itemCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 2*c.o.itemTimeout)
		primary := c.o.analyze(itemCtx, d, d.URL, false)
		product := score.Product{Name: productName(d, primary)}
		product.Results = append(product.Results, c.result(primary))

		if err := c.sleep(ctx, c.gap); err == nil {
			err = c.o.waitTurn(itemCtx, d.CompareURL)
			if err == nil {
				product.Results = append(product.Results, c.result(c.o.analyze(itemCtx, d, d.CompareURL, false)))
			}
		}
		cancel()

		products = append(products, product)
		c.o.logger.Info("compared product",
			slog.Int("item", i+1),
			slog.Int("total", len(descriptors)),
			slog.String("phone", product.Name),
			slog.Int("sources", len(product.Results)))

		if ctx.Err() != nil {
			return products, ctx.Err()
		}
	}

	return products, nil
}

func (c *Comparer) result(out ItemOutcome) score.Result {
	r := score.Result{Source: out.Source, Fields: out.Fields}
	if out.Err != nil {
		r.Error = out.Err.Error()
		return r
	}
	if out.Record != nil {
		r.Name = out.Record.Name
		r.Chipset = out.Record.Chipset
	}
	r.Valid = out.Validation.Valid
	r.Reason = out.Validation.Reason()
	return r
}

func productName(d model.Descriptor, primary ItemOutcome) string {
	if primary.Record != nil && primary.Record.Name != "" {
		return primary.Record.Name
	}
	return d.URL
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

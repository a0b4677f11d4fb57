package worker

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/ppiankov/phonespec/internal/model"
)

// ErrNoImage means none of the probed image URLs exists
var ErrNoImage = errors.New("no reachable image")

// ImageStore reads and updates stored product images
type ImageStore interface {
	ProductImages(ctx context.Context) ([]model.ProductImage, error)
	UpdateProductImage(ctx context.Context, productID string, res model.ImageResolution) error
}

// ImageConstructor builds the best-guess image URLs for a product
type ImageConstructor interface {
	Construct(brand, slug string) model.ImageResolution
}

// URLProber returns the first URL that exists
type URLProber interface {
	FirstExisting(ctx context.Context, urls []string) (string, error)
}

// BackfillJob upgrades the stored image of one product
type BackfillJob struct {
	Product     model.ProductImage
	Constructor ImageConstructor
	Prober      URLProber
	Store       ImageStore
	DryRun      bool
}

// Execute probes the constructed URLs and stores the first one that exists
func (j *BackfillJob) Execute(ctx context.Context) Result {
	res := &BackfillResult{Product: j.Product}

	guess := j.Constructor.Construct(j.Product.Brand, j.Product.Slug)
	found, err := j.Prober.FirstExisting(ctx, guess.URLs())
	if err != nil {
		res.Error = fmt.Errorf("probe %s: %w", j.Product.Slug, err)
		return res
	}
	if found == "" {
		res.Error = fmt.Errorf("%s: %w", j.Product.Slug, ErrNoImage)
		return res
	}

	chosen := model.ImageResolution{URL: found, Tier: model.ImageTierHigh}
	if found != guess.URL {
		chosen.Tier = model.ImageTierLow
	} else if guess.FallbackURL != "" {
		chosen.FallbackURL = guess.FallbackURL
	}
	res.Image = chosen

	if found == j.Product.ImageURL || j.DryRun {
		return res
	}

	if err := j.Store.UpdateProductImage(ctx, j.Product.ProductID, chosen); err != nil {
		res.Error = fmt.Errorf("update image %s: %w", j.Product.Slug, err)
		return res
	}
	res.Updated = true
	return res
}

// BackfillResult is the outcome for one product
type BackfillResult struct {
	Product model.ProductImage
	Image   model.ImageResolution
	Updated bool
	Error   error
}

// GetError returns the error from the backfill result
func (r *BackfillResult) GetError() error {
	return r.Error
}

// BackfillSummary counts backfill outcomes
type BackfillSummary struct {
	Checked  int
	Skipped  int // Already on a high-resolution image
	Updated  int
	NotFound int
	Failed   int
	Results  []*BackfillResult
}

// BackfillProcessor upgrades stored product images concurrently.
// Probes go through a shared Limiter inside the prober, so concurrency never
// exceeds the per-host pacing.
type BackfillProcessor struct {
	store         ImageStore
	constructor   ImageConstructor
	prober        URLProber
	concurrency   int
	highResMarker string
	dryRun        bool
	logger        *slog.Logger
}

// NewBackfillProcessor creates a new backfill processor
func NewBackfillProcessor(store ImageStore, constructor ImageConstructor, prober URLProber, concurrency int, highResMarker string, dryRun bool, logger *slog.Logger) *BackfillProcessor {
	if logger == nil {
		logger = slog.Default()
	}
	return &BackfillProcessor{
		store:         store,
		constructor:   constructor,
		prober:        prober,
		concurrency:   concurrency,
		highResMarker: highResMarker,
		dryRun:        dryRun,
		logger:        logger,
	}
}

// Process runs the backfill over every stored product
func (b *BackfillProcessor) Process(ctx context.Context) (*BackfillSummary, error) {
	products, err := b.store.ProductImages(ctx)
	if err != nil {
		return nil, fmt.Errorf("list product images: %w", err)
	}

	summary := &BackfillSummary{}
	var jobs []Job
	for _, p := range products {
		if b.highResMarker != "" && strings.Contains(p.ImageURL, b.highResMarker) {
			summary.Skipped++
			continue
		}
		jobs = append(jobs, &BackfillJob{
			Product:     p,
			Constructor: b.constructor,
			Prober:      b.prober,
			Store:       b.store,
			DryRun:      b.dryRun,
		})
	}

	if len(jobs) == 0 {
		return summary, nil
	}

	pool := NewPool(ctx, b.concurrency)
	for _, r := range pool.Run(jobs) {
		br := r.(*BackfillResult)
		summary.Checked++
		summary.Results = append(summary.Results, br)
		switch {
		case errors.Is(br.Error, ErrNoImage):
			summary.NotFound++
			b.logger.Info("no image found", slog.String("slug", br.Product.Slug))
		case br.Error != nil:
			summary.Failed++
			b.logger.Warn("image backfill failed", slog.String("slug", br.Product.Slug), slog.String("error", br.Error.Error()))
		case br.Updated:
			summary.Updated++
			b.logger.Info("image updated",
				slog.String("slug", br.Product.Slug),
				slog.String("url", br.Image.URL),
				slog.String("tier", string(br.Image.Tier)))
		}
	}

	return summary, ctx.Err()
}

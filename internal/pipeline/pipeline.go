package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/ppiankov/phonespec/internal/extract"
	"github.com/ppiankov/phonespec/internal/imageres"
	"github.com/ppiankov/phonespec/internal/model"
	"github.com/ppiankov/phonespec/internal/normalize"
	"github.com/ppiankov/phonespec/internal/validate"
)

// Item statuses recorded in outcomes, checkpoints and metrics
const (
	StatusValid   = "valid"
	StatusInvalid = "invalid"
	StatusError   = "error"
)

// Pacer enforces the minimum interval between requests to one host
type Pacer interface {
	Wait(ctx context.Context, rawURL string) error
}

// Sources names the source of a page and derives secondary pages
type Sources interface {
	SourceFor(pageURL string) string
	GalleryURL(pageURL string) (string, bool)
}

// RecordWriter persists validated records
type RecordWriter interface {
	Write(ctx context.Context, rec *model.NormalizedRecord, validation model.ValidationResult) (*model.WriteOutcome, error)
}

// Ledger records per-item completion so an interrupted run can resume
type Ledger interface {
	Completed(ctx context.Context, runID string) (map[string]string, error)
	Record(ctx context.Context, runID, source, status string) error
}

// Recorder receives run metrics
type Recorder interface {
	ObserveFetch(source string, d time.Duration, fromCache bool, err error)
	ObserveItem(source, status string, d time.Duration)
}

// Dependencies are the collaborators of an Orchestrator. Writer, Ledger and Metrics are optional.
type Dependencies struct {
	Fetcher   *Fetcher
	Pacer     Pacer
	Extractor extract.Extractor
	Sources   Sources
	Writer    RecordWriter // nil means dry run
	Ledger    Ledger
	Metrics   Recorder
	Logger    *slog.Logger
}

// Options tune a single run
type Options struct {
	RunID         string
	Resume        bool // Skip items the ledger already completed for RunID
	DeriveGallery bool // Fetch the site's picture page when the descriptor has none
	Progress      func(index, total int, outcome ItemOutcome)
}

// ItemOutcome is the result of processing one descriptor
type ItemOutcome struct {
	Descriptor model.Descriptor
	Source     string
	Status     string
	Fields     map[string]string       // Raw extracted fields
	Record     *model.NormalizedRecord // nil when fetch or extraction failed
	Validation model.ValidationResult
	Write      *model.WriteOutcome
	Err        error
	Duration   time.Duration
}

// RunResult partitions the processed items
type RunResult struct {
	RunID       string
	StartedAt   time.Time
	FinishedAt  time.Time
	Outcomes    []ItemOutcome // Input order
	Skipped     int
	Cancelled   bool
	Unprocessed int
}

// Successes returns the records that made it through extraction
func (r *RunResult) Successes() []model.NormalizedRecord {
	var out []model.NormalizedRecord
	for _, o := range r.Outcomes {
		if o.Record != nil {
			out = append(out, *o.Record)
		}
	}
	return out
}

// Failures returns items that failed at fetch, extraction or write
func (r *RunResult) Failures() []ItemOutcome {
	return r.filter(StatusError)
}

// Valid returns items that passed validation and were stored (or would be in a dry run)
func (r *RunResult) Valid() []ItemOutcome {
	return r.filter(StatusValid)
}

// Invalid returns items rejected by validation
func (r *RunResult) Invalid() []ItemOutcome {
	return r.filter(StatusInvalid)
}

func (r *RunResult) filter(status string) []ItemOutcome {
	var out []ItemOutcome
	for _, o := range r.Outcomes {
		if o.Status == status {
			out = append(out, o)
		}
	}
	return out
}

// Orchestrator runs descriptors through fetch, extraction, normalization,
// validation, image resolution and storage, one item at a time
type Orchestrator struct {
	deps        Dependencies
	opts        Options
	schema      model.Schema
	normalizer  *normalize.Normalizer
	validator   *validate.Validator
	resolver    *imageres.Resolver
	itemTimeout time.Duration
	logger      *slog.Logger
	now         func() time.Time
}

// NewOrchestrator wires the processing stages from configuration
func NewOrchestrator(cfg *model.Config, deps Dependencies, opts Options) *Orchestrator {
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}
	itemTimeout := cfg.RateLimiting.ItemTimeout
	if itemTimeout <= 0 {
		itemTimeout = 2 * time.Minute
	}

	return &Orchestrator{
		deps:        deps,
		opts:        opts,
		schema:      model.PhoneSchema,
		normalizer:  normalize.NewNormalizer(cfg.Normalize, model.PhoneSchema),
		validator:   validate.NewValidator(cfg.Validation),
		resolver:    imageres.NewResolver(cfg.Images),
		itemTimeout: itemTimeout,
		logger:      logger,
		now:         time.Now,
	}
}

// Run processes descriptors sequentially in input order. Per-item failures are
// recorded and never stop the run. Cancelling ctx stops the run between items;
// the item in flight finishes on its own deadline.
func (o *Orchestrator) Run(ctx context.Context, descriptors []model.Descriptor) (*RunResult, error) {
	result := &RunResult{RunID: o.opts.RunID, StartedAt: o.now().UTC()}

	done := map[string]string{}
	if o.deps.Ledger != nil && o.opts.Resume {
		var err error
		if done, err = o.deps.Ledger.Completed(ctx, o.opts.RunID); err != nil {
			return nil, fmt.Errorf("load checkpoint: %w", err)
		}
	}

	for i, d := range descriptors {
		if status, ok := done[d.SourceID()]; ok && status != StatusError {
			result.Skipped++
			o.logger.Info("skipping completed item", slog.String("url", d.URL), slog.String("status", status))
			continue
		}

		var outcome ItemOutcome
		if err := o.waitTurn(ctx, d.URL); err != nil {
			if ctx.Err() != nil {
				result.Cancelled = true
				result.Unprocessed = len(descriptors) - i
				o.logger.Warn("run cancelled", slog.Int("unprocessed", result.Unprocessed))
				break
			}
			// The pacer rejected this URL only
			outcome = ItemOutcome{
				Descriptor: d,
				Source:     o.deps.Sources.SourceFor(d.URL),
				Status:     StatusError,
				Err:        &model.FetchError{URL: d.URL, Err: err},
			}
		} else {
			outcome = o.processItem(ctx, d)
		}

		result.Outcomes = append(result.Outcomes, outcome)
		o.finish(ctx, i, len(descriptors), outcome)
	}

	result.FinishedAt = o.now().UTC()
	return result, nil
}

// finish reports one outcome to the log, progress callback, metrics and ledger
func (o *Orchestrator) finish(ctx context.Context, i, total int, outcome ItemOutcome) {
	o.logOutcome(i, total, outcome)
	if o.opts.Progress != nil {
		o.opts.Progress(i, total, outcome)
	}
	if o.deps.Metrics != nil {
		o.deps.Metrics.ObserveItem(outcome.Source, outcome.Status, outcome.Duration)
	}
	if o.deps.Ledger != nil {
		d := outcome.Descriptor
		if err := o.deps.Ledger.Record(context.WithoutCancel(ctx), o.opts.RunID, d.SourceID(), outcome.Status); err != nil {
			o.logger.Warn("checkpoint write failed", slog.String("url", d.URL), slog.String("error", err.Error()))
		}
	}
}

// waitTurn checks for cancellation and paces the next primary fetch
func (o *Orchestrator) waitTurn(ctx context.Context, rawURL string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if o.deps.Pacer == nil || o.deps.Fetcher.Cached(rawURL) {
		return nil
	}
	return o.deps.Pacer.Wait(ctx, rawURL)
}

func (o *Orchestrator) processItem(ctx context.Context, d model.Descriptor) ItemOutcome {
	start := o.now()
	itemCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), o.itemTimeout)
	defer cancel()

	outcome := o.analyze(itemCtx, d, d.URL, true)
	if outcome.Status == StatusValid {
		o.store(itemCtx, &outcome)
	}
	outcome.Duration = o.now().Sub(start)
	return outcome
}

// store resolves the image and writes a valid record
func (o *Orchestrator) store(ctx context.Context, outcome *ItemOutcome) {
	rec := outcome.Record
	rec.Image = o.resolver.Resolve(rec.Brand, rec.Slug, rec.ImageCandidates)

	if o.deps.Writer == nil {
		return
	}
	written, err := o.deps.Writer.Write(ctx, rec, outcome.Validation)
	if err != nil {
		outcome.Status = StatusError
		outcome.Err = err
		return
	}
	outcome.Write = written
}

// analyze fetches, extracts, normalizes and validates one page. The primary
// fetch must already be paced; secondary fetches are paced here.
func (o *Orchestrator) analyze(ctx context.Context, d model.Descriptor, pageURL string, withGallery bool) ItemOutcome {
	source := o.deps.Sources.SourceFor(pageURL)
	outcome := ItemOutcome{Descriptor: d, Source: source, Status: StatusError}

	page, err := o.fetch(ctx, source, pageURL)
	if err != nil {
		outcome.Err = err
		return outcome
	}

	fields, err := o.deps.Extractor.Extract(ctx, extract.Page{
		URL:             pageURL,
		Content:         page.Body,
		ContentType:     page.ContentType,
		Brand:           d.Brand,
		ExpectedChipset: d.ExpectedChipset,
	}, o.schema)
	if err != nil {
		outcome.Err = err
		return outcome
	}

	outcome.Fields = fields
	rec := model.SourceRecord{
		Source:          source,
		URL:             pageURL,
		FetchedAt:       page.FetchedAt,
		Brand:           d.Brand,
		ExpectedChipset: d.ExpectedChipset,
		Fields:          fields,
		ImageCandidates: extract.ImageCandidates(page.Body, page.ContentType, page.FinalURL),
	}

	var warnings []string
	if withGallery {
		if gallery := o.galleryURL(d); gallery != "" {
			images, err := o.secondary(ctx, source, gallery)
			if err != nil {
				warnings = append(warnings, fmt.Sprintf("gallery fetch failed: %v", err))
				o.logger.Warn("secondary fetch failed", slog.String("url", gallery), slog.String("error", err.Error()))
			} else {
				rec.ImageCandidates = mergeCandidates(rec.ImageCandidates, images)
			}
		}
	}

	normalized := o.normalizer.Normalize(rec)
	normalized.Warnings = append(normalized.Warnings, warnings...)
	if normalized.Model == "" || strings.EqualFold(normalized.Model, normalized.Brand) {
		// Without a model the slug collapses to the brand and would merge products
		outcome.Err = &model.ExtractionError{URL: pageURL, Missing: []string{model.FieldPhoneName}}
		return outcome
	}

	outcome.Record = &normalized
	outcome.Validation = o.validator.Validate(normalized.Brand, &normalized)
	outcome.Status = StatusInvalid
	if outcome.Validation.Valid {
		outcome.Status = StatusValid
	}
	return outcome
}

func (o *Orchestrator) fetch(ctx context.Context, source, rawURL string) (*FetchResult, error) {
	start := o.now()
	page, err := o.deps.Fetcher.Fetch(ctx, rawURL)
	if o.deps.Metrics != nil {
		o.deps.Metrics.ObserveFetch(source, o.now().Sub(start), page != nil && page.FromCache, err)
	}
	return page, err
}

func (o *Orchestrator) secondary(ctx context.Context, source, rawURL string) ([]string, error) {
	if o.deps.Pacer != nil && !o.deps.Fetcher.Cached(rawURL) {
		if err := o.deps.Pacer.Wait(ctx, rawURL); err != nil {
			return nil, err
		}
	}
	page, err := o.fetch(ctx, source, rawURL)
	if err != nil {
		return nil, err
	}
	return extract.ImageCandidates(page.Body, page.ContentType, page.FinalURL), nil
}

func (o *Orchestrator) galleryURL(d model.Descriptor) string {
	if d.GalleryURL != "" {
		return d.GalleryURL
	}
	if !o.opts.DeriveGallery {
		return ""
	}
	if u, ok := o.deps.Sources.GalleryURL(d.URL); ok {
		return u
	}
	return ""
}

func (o *Orchestrator) logOutcome(i, total int, out ItemOutcome) {
	attrs := []any{
		slog.Int("item", i+1),
		slog.Int("total", total),
		slog.String("url", out.Descriptor.URL),
		slog.String("status", out.Status),
		slog.Duration("duration", out.Duration),
	}
	switch {
	case out.Err != nil:
		attrs = append(attrs, slog.String("stage", model.StageOf(out.Err)), slog.String("error", out.Err.Error()))
		o.logger.Warn("item failed", attrs...)
	case out.Status == StatusInvalid:
		attrs = append(attrs, slog.String("reason", out.Validation.Reason()))
		o.logger.Info("item invalid", attrs...)
	default:
		o.logger.Info("item processed", attrs...)
	}
}

func mergeCandidates(primary, extra []string) []string {
	seen := make(map[string]struct{}, len(primary)+len(extra))
	out := make([]string, 0, len(primary)+len(extra))
	for _, list := range [][]string{primary, extra} {
		for _, u := range list {
			if _, dup := seen[u]; dup {
				continue
			}
			seen[u] = struct{}{}
			out = append(out, u)
		}
	}
	return out
}

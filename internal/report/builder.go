// Package report builds and writes batch reports
package report

import (
	"time"

	"github.com/ppiankov/phonespec/internal/model"
	"github.com/ppiankov/phonespec/internal/pipeline"
)

// Builder accumulates per-item results into a Report
type Builder struct {
	report model.Report
}

// NewBuilder starts a report for a run
func NewBuilder(runID string, startedAt time.Time) *Builder {
	return &Builder{report: model.Report{
		RunID:        runID,
		StartedAt:    startedAt,
		ValidItems:   []model.ValidItem{},
		InvalidItems: []model.InvalidItem{},
		Errors:       []model.ItemError{},
	}}
}

// AddValid records a record that passed validation
func (b *Builder) AddValid(rec *model.NormalizedRecord, written bool) {
	b.report.ValidItems = append(b.report.ValidItems, model.ValidItem{
		Name:      rec.Name,
		Slug:      rec.Slug,
		Brand:     rec.Brand,
		Source:    rec.Source,
		ImageTier: rec.Image.Tier,
		Written:   written,
		Warnings:  rec.Warnings,
	})
}

// AddInvalid records a record rejected by validation
func (b *Builder) AddInvalid(rec *model.NormalizedRecord, reason string) {
	b.report.InvalidItems = append(b.report.InvalidItems, model.InvalidItem{
		Name:   rec.Name,
		Reason: reason,
		Source: rec.SourceURL,
	})
}

// AddError records a failed item. source is the descriptor URL.
func (b *Builder) AddError(source string, err error) {
	b.report.Errors = append(b.report.Errors, model.ItemError{
		Source:  source,
		Message: err.Error(),
		Stage:   model.StageOf(err),
	})
}

// Build finalizes the counters
func (b *Builder) Build(finishedAt time.Time) model.Report {
	r := b.report
	r.FinishedAt = finishedAt
	r.Summary = model.Summary{
		Valid:   len(r.ValidItems),
		Invalid: len(r.InvalidItems),
		Errors:  len(r.Errors),
	}
	r.Summary.Total = r.Summary.Valid + r.Summary.Invalid + r.Summary.Errors
	return r
}

// FromRun builds the report of an orchestrator run
func FromRun(res *pipeline.RunResult) model.Report {
	b := NewBuilder(res.RunID, res.StartedAt)
	for _, o := range res.Outcomes {
		switch o.Status {
		case pipeline.StatusValid:
			b.AddValid(o.Record, o.Write != nil)
		case pipeline.StatusInvalid:
			b.AddInvalid(o.Record, o.Validation.Reason())
		default:
			b.AddError(o.Descriptor.SourceID(), o.Err)
		}
	}
	r := b.Build(res.FinishedAt)
	r.Cancelled = res.Cancelled
	r.Skipped = res.Skipped
	return r
}

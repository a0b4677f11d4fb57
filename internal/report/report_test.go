package report

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ppiankov/phonespec/internal/model"
	"github.com/ppiankov/phonespec/internal/pipeline"
	"github.com/ppiankov/phonespec/internal/score"
)

func sampleRun() *pipeline.RunResult {
	started := time.Date(2024, time.May, 1, 10, 0, 0, 0, time.UTC)
	valid := &model.NormalizedRecord{Name: "Google Pixel 8", Slug: "google-pixel-8", Brand: "Google", Source: "gsmarena",
		Image: model.ImageResolution{Tier: model.ImageTierHigh}}
	invalid := &model.NormalizedRecord{Name: "Apple iPhone 15", SourceURL: "https://example.com/iphone-15"}
	writeFailed := &model.NormalizedRecord{Name: "Samsung Galaxy S24", Slug: "samsung-galaxy-s24"}

	return &pipeline.RunResult{
		RunID:      "run-1",
		StartedAt:  started,
		FinishedAt: started.Add(time.Minute),
		Skipped:    2,
		Outcomes: []pipeline.ItemOutcome{
			{Descriptor: model.Descriptor{URL: "https://example.com/pixel-8"}, Status: pipeline.StatusValid, Record: valid, Write: &model.WriteOutcome{ProductID: "p1"}},
			{Descriptor: model.Descriptor{URL: "https://example.com/iphone-15"}, Status: pipeline.StatusInvalid, Record: invalid,
				Validation: model.ValidationResult{Outcomes: []model.Outcome{{Rule: model.RuleChipset, Reason: "contains invalid keyword Snapdragon"}}}},
			{Descriptor: model.Descriptor{URL: "https://example.com/missing"}, Status: pipeline.StatusError,
				Err: &model.FetchError{URL: "https://example.com/missing", StatusCode: 404, Err: errors.New("unexpected status: 404 Not Found")}},
			{Descriptor: model.Descriptor{URL: "https://example.com/s24"}, Status: pipeline.StatusError, Record: writeFailed,
				Err: &model.WriteError{Slug: "samsung-galaxy-s24", Brand: "Samsung", Step: model.StepSpec, Err: errors.New("boom")}},
		},
	}
}

func TestFromRun(t *testing.T) {
	r := FromRun(sampleRun())

	assert.Equal(t, model.Summary{Total: 4, Valid: 1, Invalid: 1, Errors: 2}, r.Summary)
	assert.Equal(t, r.Summary.Total, r.Summary.Valid+r.Summary.Invalid+r.Summary.Errors)
	assert.Equal(t, "run-1", r.RunID)
	assert.Equal(t, 2, r.Skipped)

	require.Len(t, r.ValidItems, 1)
	assert.True(t, r.ValidItems[0].Written)
	assert.Equal(t, model.ImageTierHigh, r.ValidItems[0].ImageTier)

	require.Len(t, r.InvalidItems, 1)
	assert.Equal(t, "Apple iPhone 15", r.InvalidItems[0].Name)
	assert.Equal(t, "contains invalid keyword Snapdragon", r.InvalidItems[0].Reason)

	require.Len(t, r.Errors, 2)
	assert.Equal(t, "https://example.com/missing", r.Errors[0].Source)
	assert.Equal(t, model.StageFetch, r.Errors[0].Stage)
	assert.Equal(t, model.StageWrite, r.Errors[1].Stage)
}

func TestBuilder_Empty(t *testing.T) {
	r := NewBuilder("", time.Now()).Build(time.Now())
	assert.Zero(t, r.Summary.Total)

	data, err := json.Marshal(r)
	require.NoError(t, err)

	var shape map[string]any
	require.NoError(t, json.Unmarshal(data, &shape))
	for _, key := range []string{"summary", "validItems", "invalidItems", "errors"} {
		assert.Contains(t, shape, key)
	}
	assert.Equal(t, []any{}, shape["errors"], "empty lists encode as [] not null")
}

func TestWriter_Files(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "out")
	w := NewWriter(dir)
	w.now = func() time.Time { return time.Date(2024, time.May, 1, 10, 30, 15, 0, time.UTC) }

	path, err := w.WriteReport(FromRun(sampleRun()))
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, ValidationReportFile), path)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	var decoded struct {
		Summary struct {
			Total, Valid, Invalid, Errors int
		} `json:"summary"`
		InvalidItems []struct {
			Name   string `json:"name"`
			Reason string `json:"reason"`
		} `json:"invalidItems"`
		Errors []struct {
			Source  string `json:"source"`
			Message string `json:"message"`
		} `json:"errors"`
	}
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, 4, decoded.Summary.Total)
	assert.Equal(t, "Apple iPhone 15", decoded.InvalidItems[0].Name)
	assert.NotEmpty(t, decoded.Errors[0].Message)

	paths, err := w.WriteRecords(sampleRun().Successes())
	require.NoError(t, err)
	require.Len(t, paths, 2)
	assert.Equal(t, filepath.Join(dir, "records-2024-05-01T10-30-15Z.json"), paths[0])
	assert.Equal(t, filepath.Join(dir, LatestRecordsFile), paths[1])

	var records []model.NormalizedRecord
	data, err = os.ReadFile(paths[1])
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal(data, &records))
	assert.Len(t, records, 3)

	cmpPath, err := w.WriteComparison(score.Compare(nil))
	require.NoError(t, err)
	assert.FileExists(t, cmpPath)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	for _, e := range entries {
		assert.NotContains(t, e.Name(), ".tmp", "temp files must not be left behind")
	}
}

package report

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/ppiankov/phonespec/internal/model"
	"github.com/ppiankov/phonespec/internal/score"
)

// Output file names
const (
	ValidationReportFile = "validation-report.json"
	LatestRecordsFile    = "records-latest.json"
	ComparisonReportFile = "source-comparison-report.json"
)

// Writer writes report files into a directory
type Writer struct {
	dir string
	now func() time.Time
}

// NewWriter creates a Writer for dir
func NewWriter(dir string) *Writer {
	return &Writer{dir: dir, now: time.Now}
}

// WriteReport writes validation-report.json
func (w *Writer) WriteReport(r model.Report) (string, error) {
	return w.writeJSON(ValidationReportFile, r)
}

// WriteRecords writes a timestamped snapshot and records-latest.json
func (w *Writer) WriteRecords(records []model.NormalizedRecord) ([]string, error) {
	if records == nil {
		records = []model.NormalizedRecord{}
	}
	stamp := w.now().UTC().Format("2006-01-02T15-04-05Z")

	var paths []string
	for _, name := range []string{"records-" + stamp + ".json", LatestRecordsFile} {
		path, err := w.writeJSON(name, records)
		if err != nil {
			return paths, err
		}
		paths = append(paths, path)
	}
	return paths, nil
}

// WriteComparison writes source-comparison-report.json
func (w *Writer) WriteComparison(cmp score.Comparison) (string, error) {
	return w.writeJSON(ComparisonReportFile, cmp)
}

// writeJSON writes atomically through a temp file in the same directory
func (w *Writer) writeJSON(name string, v any) (string, error) {
	if err := os.MkdirAll(w.dir, 0o755); err != nil {
		return "", fmt.Errorf("create output directory: %w", err)
	}

	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return "", fmt.Errorf("encode %s: %w", name, err)
	}

	path := filepath.Join(w.dir, name)
	tmp, err := os.CreateTemp(w.dir, name+".*.tmp")
	if err != nil {
		return "", fmt.Errorf("create %s: %w", name, err)
	}
	if _, err := tmp.Write(append(data, '\n')); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmp.Name())
		return "", fmt.Errorf("write %s: %w", name, err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmp.Name())
		return "", fmt.Errorf("close %s: %w", name, err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		_ = os.Remove(tmp.Name())
		return "", fmt.Errorf("rename %s: %w", name, err)
	}
	return path, nil
}

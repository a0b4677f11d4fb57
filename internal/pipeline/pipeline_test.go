package pipeline

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/ppiankov/phonespec/internal/cache"
	"github.com/ppiankov/phonespec/internal/extract"
	"github.com/ppiankov/phonespec/internal/model"
	"github.com/ppiankov/phonespec/internal/worker"
)

type fakeExtractor struct {
	fields func(page extract.Page) (extract.FieldMap, error)
}

func (f fakeExtractor) Extract(ctx context.Context, page extract.Page, schema model.Schema) (extract.FieldMap, error) {
	return f.fields(page)
}

func samsungFields(page extract.Page) (extract.FieldMap, error) {
	return extract.FieldMap{
		model.FieldPhoneName:       "Samsung Galaxy S24 Ultra",
		model.FieldChipset:         "Qualcomm SM8650-AC Snapdragon 8 Gen 3 (4 nm)",
		model.FieldDisplaySize:     "6.8 inches, 113.5 cm2",
		model.FieldBatteryCapacity: "5000 mAh",
		model.FieldStatus:          "Available. Released 2024, January 24",
	}, nil
}

type fakeSources struct{}

func (fakeSources) SourceFor(pageURL string) string { return "test" }

func (fakeSources) GalleryURL(pageURL string) (string, bool) {
	return pageURL + "/pictures", true
}

type fakeWriter struct {
	mu      sync.Mutex
	written []string
	err     error
}

func (w *fakeWriter) Write(ctx context.Context, rec *model.NormalizedRecord, v model.ValidationResult) (*model.WriteOutcome, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.err != nil {
		return nil, w.err
	}
	w.written = append(w.written, rec.SourceURL)
	return &model.WriteOutcome{BrandID: "b1", ProductID: "p" + fmt.Sprint(len(w.written)), ProductCreated: true, SpecCreated: true}, nil
}

type countingPacer struct {
	mu    sync.Mutex
	calls []string
}

func (p *countingPacer) Wait(ctx context.Context, rawURL string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.calls = append(p.calls, rawURL)
	return ctx.Err()
}

type memLedger struct {
	done     map[string]string
	recorded map[string]string
}

func (l *memLedger) Completed(ctx context.Context, runID string) (map[string]string, error) {
	return l.done, nil
}

func (l *memLedger) Record(ctx context.Context, runID, source, status string) error {
	if l.recorded == nil {
		l.recorded = map[string]string{}
	}
	l.recorded[source] = status
	return nil
}

// phoneServer serves a tiny page for every path except those listed as failing
func phoneServer(t *testing.T, failing ...string) *httptest.Server {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		for _, f := range failing {
			if r.URL.Path == f {
				w.WriteHeader(http.StatusNotFound)
				return
			}
		}
		w.Header().Set("Content-Type", "text/html")
		if strings.HasSuffix(r.URL.Path, "/pictures") {
			_, _ = fmt.Fprint(w, `<html><body><img src="https://fdn2.gsmarena.com/vv/pics/samsung/samsung-galaxy-s24-ultra-5g-sm-s928-1.jpg"></body></html>`)
			return
		}
		_, _ = fmt.Fprint(w, `<html><body><h1>phone</h1></body></html>`)
	}))
	t.Cleanup(server.Close)
	return server
}

func testDeps(server *httptest.Server) Dependencies {
	return Dependencies{
		Fetcher:   NewFetcher(testHTTPConfig()),
		Extractor: fakeExtractor{fields: samsungFields},
		Sources:   fakeSources{},
	}
}

func descriptors(server *httptest.Server, n int) []model.Descriptor {
	var list []model.Descriptor
	for i := 1; i <= n; i++ {
		list = append(list, model.Descriptor{URL: fmt.Sprintf("%s/%d", server.URL, i), Brand: "Samsung"})
	}
	return list
}

func TestRun_BatchResilience(t *testing.T) {
	server := phoneServer(t, "/3")
	writer := &fakeWriter{}
	deps := testDeps(server)
	deps.Writer = writer

	o := NewOrchestrator(model.DefaultConfig(), deps, Options{RunID: "run-1"})
	result, err := o.Run(context.Background(), descriptors(server, 5))
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	if len(result.Outcomes) != 5 {
		t.Fatalf("Expected 5 outcomes, got %d", len(result.Outcomes))
	}
	if len(result.Valid()) != 4 || len(result.Failures()) != 1 {
		t.Errorf("Expected 4 valid and 1 failure, got %d and %d", len(result.Valid()), len(result.Failures()))
	}

	failed := result.Outcomes[2]
	if failed.Status != StatusError || model.StageOf(failed.Err) != model.StageFetch {
		t.Errorf("Expected item 3 to fail at fetch, got %s / %v", failed.Status, failed.Err)
	}
	var fe *model.FetchError
	if !errors.As(failed.Err, &fe) || fe.StatusCode != http.StatusNotFound {
		t.Errorf("Expected FetchError with 404, got %v", failed.Err)
	}

	if len(writer.written) != 4 {
		t.Errorf("Expected 4 writes, got %d", len(writer.written))
	}
	for i, idx := range []int{0, 1, 3, 4} {
		if writer.written[i] != result.Outcomes[idx].Descriptor.URL {
			t.Errorf("Write %d out of order: %s", i, writer.written[i])
		}
	}
	if result.Outcomes[4].Write == nil || result.Outcomes[4].Record.Slug != "samsung-galaxy-s24-ultra" {
		t.Errorf("Unexpected last outcome: %+v", result.Outcomes[4])
	}
}

func TestRun_InvalidRecordNotWritten(t *testing.T) {
	server := phoneServer(t)
	writer := &fakeWriter{}
	deps := testDeps(server)
	deps.Writer = writer

	list := descriptors(server, 1)
	list[0].Brand = "Apple"

	result, err := NewOrchestrator(model.DefaultConfig(), deps, Options{}).Run(context.Background(), list)
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if len(result.Invalid()) != 1 {
		t.Fatalf("Expected 1 invalid item, got %+v", result.Outcomes)
	}
	if result.Outcomes[0].Validation.Reason() == "" {
		t.Error("Invalid item should carry a reason")
	}
	if len(writer.written) != 0 {
		t.Error("Invalid records must not be written")
	}
}

func TestRun_WriteFailureKeepsGoing(t *testing.T) {
	server := phoneServer(t)
	deps := testDeps(server)
	deps.Writer = &fakeWriter{err: &model.WriteError{Slug: "samsung-galaxy-s24-ultra", Brand: "Samsung", Step: model.StepSpec, RequiresRerun: true, Err: errors.New("boom")}}

	result, err := NewOrchestrator(model.DefaultConfig(), deps, Options{}).Run(context.Background(), descriptors(server, 2))
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if len(result.Failures()) != 2 {
		t.Fatalf("Expected 2 write failures, got %d", len(result.Failures()))
	}
	out := result.Outcomes[0]
	if model.StageOf(out.Err) != model.StageWrite {
		t.Errorf("Expected write stage, got %q", model.StageOf(out.Err))
	}
	if out.Record == nil {
		t.Error("Record should be kept when the write fails")
	}
}

func TestRun_DryRun(t *testing.T) {
	server := phoneServer(t)
	result, err := NewOrchestrator(model.DefaultConfig(), testDeps(server), Options{}).Run(context.Background(), descriptors(server, 1))
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	out := result.Outcomes[0]
	if out.Status != StatusValid || out.Write != nil {
		t.Errorf("Expected valid unwritten outcome, got %+v", out)
	}
	if out.Record.Image.Tier != model.ImageTierConstructed {
		t.Errorf("Expected constructed image without candidates, got %s", out.Record.Image.Tier)
	}
}

func TestRun_CancelBetweenItems(t *testing.T) {
	server := phoneServer(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	opts := Options{Progress: func(index, total int, out ItemOutcome) {
		if index == 0 {
			cancel()
		}
	}}
	result, err := NewOrchestrator(model.DefaultConfig(), testDeps(server), opts).Run(ctx, descriptors(server, 3))
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if !result.Cancelled {
		t.Error("Expected run to be marked cancelled")
	}
	if len(result.Outcomes) != 1 || result.Unprocessed != 2 {
		t.Errorf("Expected 1 processed and 2 unprocessed, got %d and %d", len(result.Outcomes), result.Unprocessed)
	}
	if result.Outcomes[0].Status != StatusValid {
		t.Errorf("Item in flight should finish, got %s", result.Outcomes[0].Status)
	}
}

func TestRun_GalleryFailureAddsWarning(t *testing.T) {
	server := phoneServer(t, "/broken-gallery")
	list := descriptors(server, 1)
	list[0].GalleryURL = server.URL + "/broken-gallery"

	result, err := NewOrchestrator(model.DefaultConfig(), testDeps(server), Options{}).Run(context.Background(), list)
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	out := result.Outcomes[0]
	if out.Status != StatusValid {
		t.Fatalf("Gallery failure must not invalidate the record, got %s", out.Status)
	}
	found := false
	for _, w := range out.Record.Warnings {
		if strings.HasPrefix(w, "gallery fetch failed") {
			found = true
		}
	}
	if !found {
		t.Errorf("Expected gallery warning, got %v", out.Record.Warnings)
	}
}

func TestRun_DerivedGalleryFeedsImage(t *testing.T) {
	server := phoneServer(t)
	pacer := &countingPacer{}
	deps := testDeps(server)
	deps.Pacer = pacer

	result, err := NewOrchestrator(model.DefaultConfig(), deps, Options{DeriveGallery: true}).Run(context.Background(), descriptors(server, 1))
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	img := result.Outcomes[0].Record.Image
	if img.Tier != model.ImageTierHigh {
		t.Errorf("Expected high tier image from gallery, got %+v", img)
	}
	if len(pacer.calls) != 2 {
		t.Errorf("Expected primary and gallery fetch to be paced, got %v", pacer.calls)
	}
}

func TestRun_CachedPagesSkipPacing(t *testing.T) {
	server := phoneServer(t)
	pacer := &countingPacer{}
	pages := cache.NewPageCache(cache.NewMemoryCache(time.Hour, time.Hour), time.Hour)

	deps := testDeps(server)
	deps.Fetcher = NewFetcher(testHTTPConfig(), WithPageCache(pages))
	deps.Pacer = pacer

	o := NewOrchestrator(model.DefaultConfig(), deps, Options{})
	list := descriptors(server, 2)
	if _, err := o.Run(context.Background(), list); err != nil {
		t.Fatalf("First run failed: %v", err)
	}
	if _, err := o.Run(context.Background(), list); err != nil {
		t.Fatalf("Second run failed: %v", err)
	}
	if len(pacer.calls) != 2 {
		t.Errorf("Expected only network fetches to be paced, got %d waits", len(pacer.calls))
	}
}

func TestRun_ResumeSkipsCompleted(t *testing.T) {
	server := phoneServer(t)
	list := descriptors(server, 3)
	ledger := &memLedger{done: map[string]string{
		list[0].URL: StatusValid,
		list[1].URL: StatusError,
	}}
	deps := testDeps(server)
	deps.Ledger = ledger

	result, err := NewOrchestrator(model.DefaultConfig(), deps, Options{RunID: "r", Resume: true}).Run(context.Background(), list)
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if result.Skipped != 1 {
		t.Errorf("Expected 1 skipped item, got %d", result.Skipped)
	}
	if len(result.Outcomes) != 2 {
		t.Errorf("Expected failed and new items to run, got %d outcomes", len(result.Outcomes))
	}
	if ledger.recorded[list[1].URL] != StatusValid || ledger.recorded[list[2].URL] != StatusValid {
		t.Errorf("Unexpected ledger entries: %v", ledger.recorded)
	}
}

func TestRun_ExtractionFailure(t *testing.T) {
	server := phoneServer(t)
	deps := testDeps(server)
	deps.Extractor = fakeExtractor{fields: func(page extract.Page) (extract.FieldMap, error) {
		return nil, &model.ExtractionError{URL: page.URL, Err: extract.ErrNoFields}
	}}

	result, err := NewOrchestrator(model.DefaultConfig(), deps, Options{}).Run(context.Background(), descriptors(server, 1))
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	out := result.Outcomes[0]
	if out.Status != StatusError || model.StageOf(out.Err) != model.StageExtract || out.Record != nil {
		t.Errorf("Expected extraction failure, got %+v", out)
	}
}

func TestRun_RejectedURLDoesNotStopBatch(t *testing.T) {
	server := phoneServer(t)
	writer := &fakeWriter{}
	ledger := &memLedger{}
	deps := testDeps(server)
	deps.Pacer = worker.NewLimiter(time.Millisecond)
	deps.Writer = writer
	deps.Ledger = ledger

	list := append([]model.Descriptor{{URL: server.URL + "/%zz", Brand: "Samsung"}}, descriptors(server, 2)...)

	result, err := NewOrchestrator(model.DefaultConfig(), deps, Options{RunID: "r"}).Run(context.Background(), list)
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if result.Cancelled || result.Unprocessed != 0 {
		t.Fatalf("Run must not be cancelled, got cancelled=%v unprocessed=%d", result.Cancelled, result.Unprocessed)
	}
	if len(result.Outcomes) != 3 {
		t.Fatalf("Expected 3 outcomes, got %d", len(result.Outcomes))
	}

	bad := result.Outcomes[0]
	if bad.Status != StatusError || model.StageOf(bad.Err) != model.StageFetch {
		t.Errorf("Expected fetch failure for malformed URL, got %s / %v", bad.Status, bad.Err)
	}
	if ledger.recorded[list[0].URL] != StatusError {
		t.Errorf("Rejected item should be checkpointed as error, got %q", ledger.recorded[list[0].URL])
	}
	if len(result.Valid()) != 2 || len(writer.written) != 2 {
		t.Errorf("Expected the remaining 2 items to be written, got %d valid, %d writes", len(result.Valid()), len(writer.written))
	}
}

func TestRun_MissingNameNotWritten(t *testing.T) {
	server := phoneServer(t)
	writer := &fakeWriter{}
	deps := testDeps(server)
	deps.Writer = writer
	deps.Extractor = fakeExtractor{fields: func(page extract.Page) (extract.FieldMap, error) {
		fields, _ := samsungFields(page)
		delete(fields, model.FieldPhoneName)
		return fields, nil
	}}

	result, err := NewOrchestrator(model.DefaultConfig(), deps, Options{}).Run(context.Background(), descriptors(server, 2))
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	for i, out := range result.Outcomes {
		if out.Status != StatusError || model.StageOf(out.Err) != model.StageExtract {
			t.Errorf("Item %d: expected extraction failure, got %s / %v", i+1, out.Status, out.Err)
		}
		var ee *model.ExtractionError
		if !errors.As(out.Err, &ee) || len(ee.Missing) != 1 || ee.Missing[0] != model.FieldPhoneName {
			t.Errorf("Item %d: expected missing %s, got %v", i+1, model.FieldPhoneName, out.Err)
		}
		if out.Record != nil {
			t.Errorf("Item %d: nameless record must not be kept", i+1)
		}
	}
	if len(writer.written) != 0 {
		t.Errorf("Nameless records must not be written, got %d writes", len(writer.written))
	}
}

func TestRun_BrandOnlyNameNotWritten(t *testing.T) {
	server := phoneServer(t)
	writer := &fakeWriter{}
	deps := testDeps(server)
	deps.Writer = writer
	deps.Extractor = fakeExtractor{fields: func(page extract.Page) (extract.FieldMap, error) {
		fields, _ := samsungFields(page)
		fields[model.FieldPhoneName] = "Samsung"
		return fields, nil
	}}

	result, err := NewOrchestrator(model.DefaultConfig(), deps, Options{}).Run(context.Background(), descriptors(server, 1))
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if out := result.Outcomes[0]; out.Status != StatusError || model.StageOf(out.Err) != model.StageExtract {
		t.Errorf("Expected extraction failure, got %s / %v", out.Status, out.Err)
	}
	if len(writer.written) != 0 {
		t.Error("Brand-only record must not be written")
	}
}

func TestMergeCandidates(t *testing.T) {
	got := mergeCandidates([]string{"a", "b"}, []string{"b", "c"})
	if strings.Join(got, ",") != "a,b,c" {
		t.Errorf("Unexpected merge: %v", got)
	}
}

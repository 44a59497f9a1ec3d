package dispatch

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"testing"
	"time"

	"colacheck/internal/extract"
	"colacheck/internal/records"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func waitResolved(t *testing.T, d *Dispatcher) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := d.WaitResolved(ctx); err != nil {
		t.Fatalf("WaitResolved: %v", err)
	}
}

func TestDispatcher_ProcessesAllRecords(t *testing.T) {
	store := records.NewStore()
	mock := extract.NewMockExtractor()
	d := New(store, mock, Config{Workers: 3, Logger: testLogger()})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	d.Start(ctx)

	const n = 10
	for i := 0; i < n; i++ {
		rec := records.New(fmt.Sprintf("label-%d.png", i), "image/png", []byte("img"))
		if err := d.Submit(rec); err != nil {
			t.Fatalf("Submit: %v", err)
		}
	}

	waitResolved(t, d)

	if got := mock.RequestCount(); got != n {
		t.Errorf("request count = %d, want %d", got, n)
	}
	for _, rec := range store.Snapshot() {
		if rec.Status != records.StatusExtracted {
			t.Errorf("record %s status = %s, want %s", rec.FileName, rec.Status, records.StatusExtracted)
		}
		if rec.Classification != records.ClassificationLabel {
			t.Errorf("record %s classification = %s", rec.FileName, rec.Classification)
		}
	}
}

func TestDispatcher_WorkerBound(t *testing.T) {
	store := records.NewStore()
	mock := extract.NewMockExtractor()
	mock.Latency = 30 * time.Millisecond

	const workers = 4
	d := New(store, mock, Config{Workers: workers, Logger: testLogger()})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	d.Start(ctx)

	for i := 0; i < 20; i++ {
		rec := records.New(fmt.Sprintf("doc-%d.png", i), "image/png", []byte("img"))
		if err := d.Submit(rec); err != nil {
			t.Fatalf("Submit: %v", err)
		}
	}

	waitResolved(t, d)

	if got := mock.MaxInFlight(); got > workers {
		t.Errorf("max in-flight = %d, exceeds worker bound %d", got, workers)
	}
}

func TestDispatcher_FailureIsolation(t *testing.T) {
	store := records.NewStore()
	mock := extract.NewMockExtractor()
	mock.Results = map[string]*extract.Result{
		"good.png": mock.DefaultResult,
	}
	d := New(store, mock, Config{Workers: 1, Logger: testLogger()})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	d.Start(ctx)

	good := records.New("good.png", "image/png", []byte("img"))
	bad := records.New("bad.png", "image/png", []byte("img"))

	if err := d.Submit(good); err != nil {
		t.Fatalf("Submit: %v", err)
	}
	waitResolved(t, d)

	failStore := records.NewStore()
	failMock := extract.NewMockExtractor()
	failMock.ShouldFail = true
	failMock.FailWith = &extract.ServiceError{Category: extract.ErrorRateLimited, StatusCode: 429, Message: "slow down"}
	fd := New(failStore, failMock, Config{Workers: 1, Logger: testLogger()})
	fd.Start(ctx)

	if err := fd.Submit(bad); err != nil {
		t.Fatalf("Submit: %v", err)
	}
	waitResolved(t, fd)

	gotGood, err := store.Get(good.ID)
	if err != nil {
		t.Fatalf("Get good: %v", err)
	}
	if gotGood.Status != records.StatusExtracted {
		t.Errorf("good status = %s, want %s", gotGood.Status, records.StatusExtracted)
	}

	gotBad, err := failStore.Get(bad.ID)
	if err != nil {
		t.Fatalf("Get bad: %v", err)
	}
	if gotBad.Status != records.StatusFailed {
		t.Errorf("bad status = %s, want %s", gotBad.Status, records.StatusFailed)
	}
	if gotBad.ErrorCategory != string(extract.ErrorRateLimited) {
		t.Errorf("bad error category = %q, want %q", gotBad.ErrorCategory, extract.ErrorRateLimited)
	}
	if gotBad.Error == "" {
		t.Error("bad record should carry an error detail")
	}
}

func TestDispatcher_MixedBatch(t *testing.T) {
	store := records.NewStore()
	mock := extract.NewMockExtractor()
	mock.Results = map[string]*extract.Result{
		"app.pdf": {
			Classification: records.ClassificationApplication,
			Confidence:     0.9,
			Fields:         records.ExtractedFields{BrandName: "Mock Brand"},
		},
		"noise.png": {
			Classification: records.ClassificationUnrecognized,
			Confidence:     0.3,
		},
	}
	d := New(store, mock, Config{Workers: 2, Logger: testLogger()})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	d.Start(ctx)

	recs := []*records.DocumentRecord{
		records.New("label.png", "image/png", []byte("img")),
		records.New("app.pdf", "application/pdf", []byte("pdf")),
		records.New("noise.png", "image/png", []byte("img")),
	}
	for _, rec := range recs {
		if err := d.Submit(rec); err != nil {
			t.Fatalf("Submit: %v", err)
		}
	}

	waitResolved(t, d)

	want := map[string]records.Classification{
		"label.png": records.ClassificationLabel,
		"app.pdf":   records.ClassificationApplication,
		"noise.png": records.ClassificationUnrecognized,
	}
	for _, rec := range store.Snapshot() {
		if rec.Classification != want[rec.FileName] {
			t.Errorf("%s classified as %s, want %s", rec.FileName, rec.Classification, want[rec.FileName])
		}
	}
}

func TestDispatcher_Retry(t *testing.T) {
	store := records.NewStore()
	mock := extract.NewMockExtractor()
	mock.ShouldFail = true
	d := New(store, mock, Config{Workers: 1, Logger: testLogger()})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	d.Start(ctx)

	rec := records.New("flaky.png", "image/png", []byte("img"))
	if err := d.Submit(rec); err != nil {
		t.Fatalf("Submit: %v", err)
	}
	waitResolved(t, d)

	got, err := store.Get(rec.ID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.Status != records.StatusFailed {
		t.Fatalf("status = %s, want %s", got.Status, records.StatusFailed)
	}

	// The service recovers; a manual retry should succeed.
	mock.ShouldFail = false
	if err := d.Retry(rec.ID); err != nil {
		t.Fatalf("Retry: %v", err)
	}
	waitResolved(t, d)

	got, err = store.Get(rec.ID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.Status != records.StatusExtracted {
		t.Errorf("status after retry = %s, want %s", got.Status, records.StatusExtracted)
	}
	if got.Error != "" || got.ErrorCategory != "" {
		t.Errorf("retry should clear error state, got %q/%q", got.ErrorCategory, got.Error)
	}
	if mock.RequestCount() != 2 {
		t.Errorf("request count = %d, want 2", mock.RequestCount())
	}
}

func TestDispatcher_RetryRequiresFailedRecord(t *testing.T) {
	store := records.NewStore()
	mock := extract.NewMockExtractor()
	d := New(store, mock, Config{Workers: 1, Logger: testLogger()})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	d.Start(ctx)

	rec := records.New("ok.png", "image/png", []byte("img"))
	if err := d.Submit(rec); err != nil {
		t.Fatalf("Submit: %v", err)
	}
	waitResolved(t, d)

	if err := d.Retry(rec.ID); err == nil {
		t.Error("Retry on an extracted record should fail")
	}
	if err := d.Retry("no-such-id"); err == nil {
		t.Error("Retry on an unknown id should fail")
	}
}

func TestDispatcher_Timeout(t *testing.T) {
	store := records.NewStore()
	mock := extract.NewMockExtractor()
	mock.Latency = 200 * time.Millisecond

	d := New(store, mock, Config{Workers: 1, Timeout: 20 * time.Millisecond, Logger: testLogger()})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	d.Start(ctx)

	rec := records.New("slow.png", "image/png", []byte("img"))
	if err := d.Submit(rec); err != nil {
		t.Fatalf("Submit: %v", err)
	}
	waitResolved(t, d)

	got, err := store.Get(rec.ID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.Status != records.StatusFailed {
		t.Fatalf("status = %s, want %s", got.Status, records.StatusFailed)
	}
	if got.ErrorCategory != string(extract.ErrorTimeout) {
		t.Errorf("error category = %q, want %q", got.ErrorCategory, extract.ErrorTimeout)
	}
}

func TestDispatcher_SubmitBeforeStart(t *testing.T) {
	store := records.NewStore()
	d := New(store, extract.NewMockExtractor(), Config{Logger: testLogger()})

	rec := records.New("early.png", "image/png", []byte("img"))
	if err := d.Submit(rec); err != ErrNotStarted {
		t.Errorf("Submit before Start = %v, want ErrNotStarted", err)
	}
}

func TestDispatcher_QueueFull(t *testing.T) {
	store := records.NewStore()
	mock := extract.NewMockExtractor()
	mock.Latency = time.Second

	d := New(store, mock, Config{Workers: 1, QueueSize: 1, Logger: testLogger()})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	d.Start(ctx)

	var full bool
	var rejected *records.DocumentRecord
	accepted := 0
	for i := 0; i < 5; i++ {
		rec := records.New(fmt.Sprintf("doc-%d.png", i), "image/png", []byte("img"))
		if err := d.Submit(rec); err == ErrQueueFull {
			full = true
			rejected = rec
			break
		} else if err != nil {
			t.Fatalf("Submit: %v", err)
		}
		accepted++
	}
	if !full {
		t.Fatal("expected ErrQueueFull with a single-slot queue and slow worker")
	}

	// A rejected record must not linger in the store as pending, or the
	// batch would never resolve.
	if _, err := store.Get(rejected.ID); err == nil {
		t.Error("rejected record should be rolled out of the store")
	}
	if store.Len() != accepted {
		t.Errorf("store holds %d records, want %d accepted", store.Len(), accepted)
	}
	waitResolved(t, d)
}

func TestDispatcher_RetryQueueFull(t *testing.T) {
	store := records.NewStore()
	rec := records.New("flaky.png", "image/png", []byte("img"))
	if err := store.Add(rec); err != nil {
		t.Fatalf("Add: %v", err)
	}
	if err := store.MarkInFlight(rec.ID); err != nil {
		t.Fatalf("MarkInFlight: %v", err)
	}
	if err := store.MarkFailed(rec.ID, string(extract.ErrorRateLimited), "slow down"); err != nil {
		t.Fatalf("MarkFailed: %v", err)
	}

	d := New(store, extract.NewMockExtractor(), Config{Workers: 1, QueueSize: 1, Logger: testLogger()})

	// Start with an already-cancelled context: workers exit immediately and
	// never drain the queue, so the single slot stays occupied.
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	d.Start(ctx)
	d.Wait()

	if err := d.Submit(records.New("filler.png", "image/png", []byte("img"))); err != nil {
		t.Fatalf("Submit filler: %v", err)
	}

	if err := d.Retry(rec.ID); err != ErrQueueFull {
		t.Fatalf("Retry with full queue = %v, want ErrQueueFull", err)
	}

	got, err := store.Get(rec.ID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.Status != records.StatusFailed {
		t.Errorf("status after rejected retry = %s, want %s", got.Status, records.StatusFailed)
	}
	if got.ErrorCategory != string(extract.ErrorRateLimited) || got.Error != "slow down" {
		t.Errorf("rejected retry should keep prior error detail, got %q/%q", got.ErrorCategory, got.Error)
	}

	// The record is still failed, so a later retry remains possible.
	if err := d.Retry(rec.ID); err != ErrQueueFull {
		t.Errorf("second retry = %v, want ErrQueueFull again", err)
	}
}

func TestDispatcher_WaitResolvedEmptyStore(t *testing.T) {
	store := records.NewStore()
	d := New(store, extract.NewMockExtractor(), Config{Logger: testLogger()})

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	if err := d.WaitResolved(ctx); err != nil {
		t.Errorf("WaitResolved on empty store = %v, want nil", err)
	}
}

package dispatch

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"colacheck/internal/extract"
	"colacheck/internal/records"
)

const (
	// DefaultWorkers bounds concurrent extraction requests.
	DefaultWorkers = 5

	// DefaultQueueSize is the submission queue capacity.
	DefaultQueueSize = 256
)

// ErrQueueFull is returned by Submit when the queue cannot accept more work.
var ErrQueueFull = errors.New("dispatch queue full")

// ErrNotStarted is returned when work is submitted before Start.
var ErrNotStarted = errors.New("dispatcher not started")

// Config configures a Dispatcher.
type Config struct {
	// Workers is the number of concurrent extraction slots (default 5).
	Workers int

	// QueueSize is the submission queue capacity (default 256).
	QueueSize int

	// Timeout bounds each extraction request. Zero uses extract.DefaultTimeout.
	Timeout time.Duration

	Logger *slog.Logger
}

// Dispatcher feeds pending document records to the extraction service with a
// fixed worker pool. Each record is processed at most once per submission;
// failures are recorded on the store and never retried automatically.
type Dispatcher struct {
	store     *records.Store
	extractor extract.Extractor
	logger    *slog.Logger

	workers   int
	queueSize int
	timeout   time.Duration

	queue chan string

	// notify is nudged after every completed job so waiters can re-check
	// the store without polling.
	notify chan struct{}

	mu      sync.Mutex
	started bool
	wg      sync.WaitGroup
}

// New creates a dispatcher over the given store and extractor.
func New(store *records.Store, extractor extract.Extractor, cfg Config) *Dispatcher {
	workers := cfg.Workers
	if workers <= 0 {
		workers = DefaultWorkers
	}
	queueSize := cfg.QueueSize
	if queueSize <= 0 {
		queueSize = DefaultQueueSize
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = extract.DefaultTimeout
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &Dispatcher{
		store:     store,
		extractor: extractor,
		logger:    logger.With("component", "dispatcher"),
		workers:   workers,
		queueSize: queueSize,
		timeout:   timeout,
		notify:    make(chan struct{}, 1),
	}
}

// Start launches the worker pool. Workers run until ctx is cancelled.
// Calling Start more than once is a no-op.
func (d *Dispatcher) Start(ctx context.Context) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.started {
		return
	}
	d.started = true
	d.queue = make(chan string, d.queueSize)

	d.logger.Info("dispatcher started", "workers", d.workers, "queue_size", d.queueSize)

	for i := 0; i < d.workers; i++ {
		d.wg.Add(1)
		go d.worker(ctx, i)
	}
}

// Wait blocks until all workers have exited after context cancellation.
func (d *Dispatcher) Wait() {
	d.wg.Wait()
}

// Submit adds a record to the store and enqueues it for extraction. On a
// full queue the record is removed again so the store never holds a pending
// record that no worker will ever pick up.
func (d *Dispatcher) Submit(rec *records.DocumentRecord) error {
	d.mu.Lock()
	started := d.started
	d.mu.Unlock()
	if !started {
		return ErrNotStarted
	}

	if err := d.store.Add(rec); err != nil {
		return fmt.Errorf("adding record: %w", err)
	}

	select {
	case d.queue <- rec.ID:
		return nil
	default:
		if rmErr := d.store.Remove(rec.ID); rmErr != nil {
			d.logger.Warn("rolling back unqueued record", "record_id", rec.ID, "error", rmErr)
		}
		return ErrQueueFull
	}
}

// Retry resets a failed record to pending and enqueues it again. On a full
// queue the record is restored to failed with its prior error detail so a
// later Retry still finds a retryable record.
func (d *Dispatcher) Retry(id string) error {
	d.mu.Lock()
	started := d.started
	d.mu.Unlock()
	if !started {
		return ErrNotStarted
	}

	prev, err := d.store.Get(id)
	if err != nil {
		return err
	}
	if err := d.store.Resubmit(id); err != nil {
		return err
	}

	select {
	case d.queue <- id:
		return nil
	default:
		if rbErr := d.store.RestoreFailed(id, prev.ErrorCategory, prev.Error); rbErr != nil {
			d.logger.Warn("restoring unqueued record", "record_id", id, "error", rbErr)
		}
		return ErrQueueFull
	}
}

// Resolved reports whether every record in the store has reached a terminal
// status. An empty store is resolved.
func (d *Dispatcher) Resolved() bool {
	return d.store.Resolved()
}

// QueueDepth returns the number of enqueued ids not yet picked up.
func (d *Dispatcher) QueueDepth() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.queue == nil {
		return 0
	}
	return len(d.queue)
}

// WaitResolved blocks until every record in the store is terminal or the
// context is cancelled.
func (d *Dispatcher) WaitResolved(ctx context.Context) error {
	for {
		if d.store.Resolved() {
			return nil
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-d.notify:
		}
	}
}

func (d *Dispatcher) worker(ctx context.Context, n int) {
	defer d.wg.Done()

	logger := d.logger.With("worker", n)
	logger.Debug("worker started")

	for {
		select {
		case <-ctx.Done():
			logger.Debug("worker stopping")
			return
		case id := <-d.queue:
			d.process(ctx, logger, id)
			d.nudge()
		}
	}
}

// process runs one extraction and records the outcome. A failure is isolated
// to its record; the worker moves on to the next id.
func (d *Dispatcher) process(ctx context.Context, logger *slog.Logger, id string) {
	if err := d.store.MarkInFlight(id); err != nil {
		// The record was resolved or removed between enqueue and pickup.
		logger.Debug("skipping record", "record_id", id, "error", err)
		return
	}

	rec, err := d.store.Get(id)
	if err != nil {
		logger.Warn("record vanished after claim", "record_id", id, "error", err)
		return
	}
	payload, mediaType, err := d.store.Payload(id)
	if err != nil {
		d.fail(logger, id, fmt.Errorf("loading payload: %w", err))
		return
	}

	reqCtx, cancel := context.WithTimeout(ctx, d.timeout)
	defer cancel()

	result, err := d.extractor.Extract(reqCtx, &extract.Request{
		Payload:   payload,
		MediaType: mediaType,
		FileName:  rec.FileName,
		RequestID: rec.ID,
	})
	if err != nil {
		d.fail(logger, id, err)
		return
	}

	if err := d.store.MarkExtracted(id, result.Classification, result.Confidence, result.Fields); err != nil {
		logger.Warn("recording extraction result", "record_id", id, "error", err)
		return
	}
	logger.Info("document extracted",
		"record_id", id,
		"file", rec.FileName,
		"classification", result.Classification,
		"confidence", result.Confidence)
}

func (d *Dispatcher) fail(logger *slog.Logger, id string, err error) {
	category := extract.Categorize(err)
	if markErr := d.store.MarkFailed(id, string(category), err.Error()); markErr != nil {
		logger.Warn("recording extraction failure", "record_id", id, "error", markErr)
		return
	}
	logger.Warn("document extraction failed", "record_id", id, "category", category, "error", err)
}

// nudge wakes a WaitResolved caller if one is parked.
func (d *Dispatcher) nudge() {
	select {
	case d.notify <- struct{}{}:
	default:
	}
}

package extract

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"colacheck/internal/records"
)

const MockName = "mock"

// MockExtractor is an Extractor for testing.
type MockExtractor struct {
	// Configurable behavior
	Latency    time.Duration
	ShouldFail bool
	FailWith   error
	// Results maps file names to canned results. Requests for unknown names
	// fall back to DefaultResult.
	Results       map[string]*Result
	DefaultResult *Result

	// State
	requestCount atomic.Int64
	inFlight     atomic.Int32
	maxInFlight  atomic.Int32

	mu    sync.Mutex
	calls []string
}

// NewMockExtractor creates a mock with a generic label result.
func NewMockExtractor() *MockExtractor {
	return &MockExtractor{
		Latency: 5 * time.Millisecond,
		DefaultResult: &Result{
			Classification: records.ClassificationLabel,
			Confidence:     0.95,
			Fields:         records.ExtractedFields{BrandName: "Mock Brand"},
		},
	}
}

// Name returns the client identifier.
func (m *MockExtractor) Name() string {
	return MockName
}

// HealthCheck always succeeds unless the mock is configured to fail.
func (m *MockExtractor) HealthCheck(ctx context.Context) error {
	if m.ShouldFail {
		return fmt.Errorf("mock extractor configured to fail")
	}
	return nil
}

// Extract returns the canned result for the request's file name, tracking
// concurrency so tests can assert the dispatcher's worker bound.
func (m *MockExtractor) Extract(ctx context.Context, req *Request) (*Result, error) {
	m.requestCount.Add(1)
	cur := m.inFlight.Add(1)
	defer m.inFlight.Add(-1)
	for {
		max := m.maxInFlight.Load()
		if cur <= max || m.maxInFlight.CompareAndSwap(max, cur) {
			break
		}
	}

	m.mu.Lock()
	m.calls = append(m.calls, req.FileName)
	m.mu.Unlock()

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-time.After(m.Latency):
	}

	if m.ShouldFail {
		if m.FailWith != nil {
			return nil, m.FailWith
		}
		return nil, &ServiceError{Category: ErrorOther, Message: "mock extractor configured to fail"}
	}

	if res, ok := m.Results[req.FileName]; ok {
		return res, nil
	}
	return m.DefaultResult, nil
}

// RequestCount returns the number of Extract calls made.
func (m *MockExtractor) RequestCount() int64 {
	return m.requestCount.Load()
}

// MaxInFlight returns the highest concurrent Extract count observed.
func (m *MockExtractor) MaxInFlight() int32 {
	return m.maxInFlight.Load()
}

// Calls returns the file names extracted, in dispatch order.
func (m *MockExtractor) Calls() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]string, len(m.calls))
	copy(out, m.calls)
	return out
}

var _ Extractor = (*MockExtractor)(nil)

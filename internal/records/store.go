package records

import (
	"errors"
	"fmt"
	"sync"
)

// ErrNotFound is returned when a record ID is unknown to the store.
var ErrNotFound = errors.New("record not found")

// ErrInvalidTransition is returned for lifecycle transitions the record's
// current status does not permit.
var ErrInvalidTransition = errors.New("invalid status transition")

// Store is the in-memory record set for one verification session.
// The dispatcher is the only writer of extraction state; the pipeline reads
// snapshots. Nothing is persisted across process restarts.
type Store struct {
	mu      sync.RWMutex
	byID    map[string]*DocumentRecord
	ordered []string
}

// NewStore creates an empty record store.
func NewStore() *Store {
	return &Store{byID: make(map[string]*DocumentRecord)}
}

// Add registers a new record. The record must be pending.
func (s *Store) Add(rec *DocumentRecord) error {
	if rec.Status != StatusPending {
		return fmt.Errorf("%w: new records must be pending, got %s", ErrInvalidTransition, rec.Status)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.byID[rec.ID]; ok {
		return fmt.Errorf("record %s already exists", rec.ID)
	}
	s.byID[rec.ID] = rec
	s.ordered = append(s.ordered, rec.ID)
	return nil
}

// Remove deletes a pending record. The dispatcher uses this to roll back a
// submission whose enqueue failed; in-flight and terminal records stay put.
func (s *Store) Remove(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, ok := s.byID[id]
	if !ok {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	if rec.Status != StatusPending {
		return fmt.Errorf("%w: record %s is %s", ErrInvalidTransition, id, rec.Status)
	}
	delete(s.byID, id)
	for i, rid := range s.ordered {
		if rid == id {
			s.ordered = append(s.ordered[:i], s.ordered[i+1:]...)
			break
		}
	}
	return nil
}

// Get returns a copy of the record with the given ID.
func (s *Store) Get(id string) (DocumentRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rec, ok := s.byID[id]
	if !ok {
		return DocumentRecord{}, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return *rec, nil
}

// Payload returns the raw file content for a record.
func (s *Store) Payload(id string) ([]byte, string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rec, ok := s.byID[id]
	if !ok {
		return nil, "", fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return rec.Payload, rec.MediaType, nil
}

// Snapshot returns copies of all records in submission order.
func (s *Store) Snapshot() []DocumentRecord {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]DocumentRecord, 0, len(s.ordered))
	for _, id := range s.ordered {
		out = append(out, *s.byID[id])
	}
	return out
}

// Len returns the number of records in the store.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.ordered)
}

// Resolved reports whether every record has reached a terminal status.
// An empty store counts as resolved.
func (s *Store) Resolved() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, rec := range s.byID {
		if !rec.Status.Terminal() {
			return false
		}
	}
	return true
}

// MarkInFlight transitions a pending record to in-flight.
func (s *Store) MarkInFlight(id string) error {
	return s.transition(id, StatusPending, func(rec *DocumentRecord) {
		rec.Status = StatusInFlight
	})
}

// MarkExtracted records a successful extraction result and freezes the record.
func (s *Store) MarkExtracted(id string, class Classification, confidence float64, fields ExtractedFields) error {
	return s.transition(id, StatusInFlight, func(rec *DocumentRecord) {
		rec.Status = StatusExtracted
		rec.Classification = class
		rec.Confidence = confidence
		rec.Fields = fields
		rec.Error = ""
		rec.ErrorCategory = ""
	})
}

// MarkFailed records an extraction failure and freezes the record.
func (s *Store) MarkFailed(id, category, detail string) error {
	return s.transition(id, StatusInFlight, func(rec *DocumentRecord) {
		rec.Status = StatusFailed
		rec.ErrorCategory = category
		rec.Error = detail
	})
}

// Resubmit moves a failed record back to pending so it can be queued again.
// Retry is always caller-initiated; the dispatcher never does this on its own.
func (s *Store) Resubmit(id string) error {
	return s.transition(id, StatusFailed, func(rec *DocumentRecord) {
		rec.Status = StatusPending
		rec.Error = ""
		rec.ErrorCategory = ""
	})
}

// RestoreFailed returns a resubmitted (pending) record to failed with its
// prior error detail. Used when the record could not be queued after all.
func (s *Store) RestoreFailed(id, category, detail string) error {
	return s.transition(id, StatusPending, func(rec *DocumentRecord) {
		rec.Status = StatusFailed
		rec.ErrorCategory = category
		rec.Error = detail
	})
}

// Reclassify overrides the classification of an extracted record. Callers
// must regenerate any computed pair set afterwards; results are never patched
// in place.
func (s *Store) Reclassify(id string, class Classification) error {
	return s.transition(id, StatusExtracted, func(rec *DocumentRecord) {
		rec.Classification = class
	})
}

func (s *Store) transition(id string, want Status, apply func(*DocumentRecord)) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, ok := s.byID[id]
	if !ok {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	if rec.Status != want {
		return fmt.Errorf("%w: record %s is %s", ErrInvalidTransition, id, rec.Status)
	}
	apply(rec)
	return nil
}

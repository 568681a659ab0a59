package subscription

import (
	"context"
	"sync"
	"time"
)

// RecordStore persists one subscription record per user.
// The Reconciler is its only writer; the Resolver only reads.
type RecordStore interface {
	// Get returns the record for userID or ErrRecordNotFound.
	Get(ctx context.Context, userID string) (*Record, error)

	// Upsert creates the record or replaces the existing one keyed by UserID.
	// Records without a UserID or CustomerID are rejected.
	// Concurrent upserts for the same user must be serialized by the implementation.
	Upsert(ctx context.Context, rec Record) (*Record, error)

	// DeleteByCustomerID removes every record owned by the billing customer
	// and returns how many were removed.
	DeleteByCustomerID(ctx context.Context, customerID string) (int64, error)
}

type memoryStore struct {
	mu      sync.RWMutex
	records map[string]Record
	now     func() time.Time
}

// NewMemoryStore returns a process-local RecordStore.
// Suitable for tests and single-instance development setups.
func NewMemoryStore() RecordStore {
	return &memoryStore{
		records: make(map[string]Record),
		now:     func() time.Time { return time.Now().UTC() },
	}
}

func (s *memoryStore) Get(_ context.Context, userID string) (*Record, error) {
	if userID == "" {
		return nil, ErrMissingUserID
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	rec, ok := s.records[userID]
	if !ok {
		return nil, ErrRecordNotFound
	}
	return &rec, nil
}

func (s *memoryStore) Upsert(_ context.Context, rec Record) (*Record, error) {
	if rec.UserID == "" {
		return nil, ErrMissingUserID
	}
	if rec.CustomerID == "" {
		return nil, ErrMissingCustomerID
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	if existing, ok := s.records[rec.UserID]; ok {
		rec.CreatedAt = existing.CreatedAt
	} else {
		rec.CreatedAt = now
	}
	rec.UpdatedAt = now
	s.records[rec.UserID] = rec

	return &rec, nil
}

func (s *memoryStore) DeleteByCustomerID(_ context.Context, customerID string) (int64, error) {
	if customerID == "" {
		return 0, ErrMissingCustomerID
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	var deleted int64
	for userID, rec := range s.records {
		if rec.CustomerID == customerID {
			delete(s.records, userID)
			deleted++
		}
	}
	return deleted, nil
}

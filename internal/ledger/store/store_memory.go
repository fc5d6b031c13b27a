package store

import (
	"context"
	"sync"
)

// InMemoryStore keeps the ledger in a mutex-guarded map. It is the default
// backend for development and the workhorse of the unit tests; production
// deployments use the redis or postgres store instead.
type InMemoryStore struct {
	mu      sync.Mutex
	records map[string]Record
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{records: make(map[string]Record)}
}

func (s *InMemoryStore) GetOrCreate(_ context.Context, userID string) (Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ensure(userID), nil
}

func (s *InMemoryStore) Increment(_ context.Context, userID string, delta int64) (Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec := s.ensure(userID)
	rec.Tokens += delta
	s.records[userID] = rec
	return rec, nil
}

func (s *InMemoryStore) Register(_ context.Context, userID string) (Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec := s.ensure(userID)
	rec.Registered = true
	s.records[userID] = rec
	return rec, nil
}

// ensure returns the existing record or creates the zero record. Callers must
// hold the lock.
func (s *InMemoryStore) ensure(userID string) Record {
	if rec, ok := s.records[userID]; ok {
		return rec
	}
	rec := Record{UserID: userID}
	s.records[userID] = rec
	return rec
}

package storage

import (
	"context"
	"sync"

	"github.com/linguahub/client/internal/domain/entities"
)

// SessionStorage provides in-memory session persistence. Used in tests and
// anywhere a throwaway session is acceptable.
type SessionStorage struct {
	mu  sync.RWMutex
	rec entities.SessionRecord
	set bool
}

// NewSessionStorage creates an empty SessionStorage.
func NewSessionStorage() *SessionStorage {
	return &SessionStorage{}
}

// Save stores the record, replacing any previous one.
func (s *SessionStorage) Save(_ context.Context, rec entities.SessionRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rec = rec
	s.set = true
	return nil
}

// Load returns the stored record, reporting ok=false when nothing is stored.
func (s *SessionStorage) Load(_ context.Context) (entities.SessionRecord, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.rec, s.set, nil
}

// Clear removes the stored record.
func (s *SessionStorage) Clear(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rec = entities.SessionRecord{}
	s.set = false
	return nil
}

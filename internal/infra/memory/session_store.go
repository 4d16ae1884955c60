package memory

import (
	"context"
	"sync"
)

// SessionStore is an in-memory implementation of engine.SessionStore.
type SessionStore struct {
	mu       sync.RWMutex
	sessions map[string]string
}

func NewSessionStore() *SessionStore {
	return &SessionStore{sessions: make(map[string]string)}
}

func (s *SessionStore) Get(_ context.Context, userKey string) (string, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	questionID, ok := s.sessions[userKey]
	return questionID, ok, nil
}

func (s *SessionStore) Set(_ context.Context, userKey, questionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[userKey] = questionID
	return nil
}

func (s *SessionStore) Clear(_ context.Context, userKey string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, userKey)
	return nil
}

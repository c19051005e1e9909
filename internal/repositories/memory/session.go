package memory

import (
	"context"
	"sync"
	"time"

	"resorthub/internal/services"
)

type SessionStore struct {
	mu       sync.Mutex
	sessions map[string]services.Session
}

func NewSessionStore() *SessionStore {
	return &SessionStore{sessions: make(map[string]services.Session)}
}

func (m *SessionStore) Save(_ context.Context, session services.Session, _ time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sessions[session.ID] = session
	return nil
}

func (m *SessionStore) Load(_ context.Context, id string) (*services.Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	session, ok := m.sessions[id]
	if !ok {
		return nil, nil
	}
	return &session, nil
}

func (m *SessionStore) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sessions, id)
	return nil
}

func (m *SessionStore) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sessions)
}

package session

import (
	"context"
	"sync"
	"time"

	"github.com/aussiebroadwan/assettrack/internal/auth/domain"
	"github.com/aussiebroadwan/assettrack/internal/auth/store"
)

// MemoryBackend keeps sessions in process memory. Sessions do not survive a
// restart; use it for development and tests.
type MemoryBackend struct {
	mu       sync.Mutex
	sessions map[string]domain.Session
	tickets  map[string]domain.EnrollmentTicket
}

func NewMemoryBackend() *MemoryBackend {
	return &MemoryBackend{
		sessions: make(map[string]domain.Session),
		tickets:  make(map[string]domain.EnrollmentTicket),
	}
}

func (m *MemoryBackend) Create(_ context.Context, s domain.Session) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.sessions[s.ID]; ok {
		return store.ErrAlreadyExists
	}
	m.sessions[s.ID] = s
	return nil
}

func (m *MemoryBackend) Get(_ context.Context, id string) (domain.Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	s, ok := m.sessions[id]
	if !ok {
		return domain.Session{}, store.ErrNotFound
	}
	return s, nil
}

func (m *MemoryBackend) Touch(_ context.Context, id string, lastSeen, expiresAt time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	s, ok := m.sessions[id]
	if !ok {
		return store.ErrNotFound
	}
	s.LastSeenAt = lastSeen
	s.ExpiresAt = expiresAt
	m.sessions[id] = s
	return nil
}

func (m *MemoryBackend) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.sessions, id)
	delete(m.tickets, id)
	return nil
}

func (m *MemoryBackend) PutTicket(_ context.Context, t domain.EnrollmentTicket) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.sessions[t.SessionID]; !ok {
		return store.ErrNotFound
	}
	m.tickets[t.SessionID] = t
	return nil
}

func (m *MemoryBackend) GetTicket(_ context.Context, sessionID string) (domain.EnrollmentTicket, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	t, ok := m.tickets[sessionID]
	if !ok {
		return domain.EnrollmentTicket{}, store.ErrNotFound
	}
	return t, nil
}

func (m *MemoryBackend) DeleteTicket(_ context.Context, sessionID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.tickets, sessionID)
	return nil
}

func (m *MemoryBackend) DeleteExpired(_ context.Context, now time.Time) (int64, int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var sessions, tickets int64
	for id, t := range m.tickets {
		if t.Expired(now) {
			delete(m.tickets, id)
			tickets++
		}
	}
	for id, s := range m.sessions {
		if s.Expired(now) {
			delete(m.sessions, id)
			if _, ok := m.tickets[id]; ok {
				delete(m.tickets, id)
				tickets++
			}
			sessions++
		}
	}
	return sessions, tickets, nil
}

func (m *MemoryBackend) Reset(_ context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	clear(m.sessions)
	clear(m.tickets)
	return nil
}

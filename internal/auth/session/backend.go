package session

import (
	"context"
	"errors"
	"time"

	"github.com/aussiebroadwan/assettrack/internal/auth/domain"
	"github.com/aussiebroadwan/assettrack/internal/auth/store"
)

// Backend persists sessions and their enrollment tickets. Session ids given
// to a Backend are already fingerprints of the cookie value. Lookups of
// absent records return store.ErrNotFound.
type Backend interface {
	Create(ctx context.Context, s domain.Session) error
	Get(ctx context.Context, id string) (domain.Session, error)
	Touch(ctx context.Context, id string, lastSeen, expiresAt time.Time) error

	// Delete removes the session and any ticket bound to it.
	Delete(ctx context.Context, id string) error

	PutTicket(ctx context.Context, t domain.EnrollmentTicket) error
	GetTicket(ctx context.Context, sessionID string) (domain.EnrollmentTicket, error)
	DeleteTicket(ctx context.Context, sessionID string) error

	// DeleteExpired removes expired sessions and tickets.
	DeleteExpired(ctx context.Context, now time.Time) (sessions, tickets int64, err error)

	// Reset drops every session and ticket.
	Reset(ctx context.Context) error
}

// Backend names accepted by NewBackend.
const (
	BackendSQLite = "sqlite"
	BackendMemory = "memory"
)

var ErrUnknownBackend = errors.New("session: unknown backend")

// NewBackend returns the backend named kind. The sqlite backend shares the
// user store's database.
func NewBackend(kind string, st store.Store) (Backend, error) {
	switch kind {
	case "", BackendSQLite:
		return NewStoreBackend(st), nil
	case BackendMemory:
		return NewMemoryBackend(), nil
	default:
		return nil, ErrUnknownBackend
	}
}

// StoreBackend keeps sessions in the sessions and enrollment_tickets tables.
type StoreBackend struct {
	Store store.Store
}

func NewStoreBackend(st store.Store) *StoreBackend {
	return &StoreBackend{Store: st}
}

func (b *StoreBackend) Create(ctx context.Context, s domain.Session) error {
	return b.Store.Sessions().CreateSession(ctx, s)
}

func (b *StoreBackend) Get(ctx context.Context, id string) (domain.Session, error) {
	return b.Store.Sessions().GetSession(ctx, id)
}

func (b *StoreBackend) Touch(ctx context.Context, id string, lastSeen, expiresAt time.Time) error {
	return b.Store.Sessions().TouchSession(ctx, id, lastSeen, expiresAt)
}

// Delete relies on the enrollment_tickets foreign key to drop the ticket.
func (b *StoreBackend) Delete(ctx context.Context, id string) error {
	return b.Store.Sessions().DeleteSession(ctx, id)
}

func (b *StoreBackend) PutTicket(ctx context.Context, t domain.EnrollmentTicket) error {
	return b.Store.EnrollmentTickets().PutTicket(ctx, t)
}

func (b *StoreBackend) GetTicket(ctx context.Context, sessionID string) (domain.EnrollmentTicket, error) {
	return b.Store.EnrollmentTickets().GetTicket(ctx, sessionID)
}

func (b *StoreBackend) DeleteTicket(ctx context.Context, sessionID string) error {
	return b.Store.EnrollmentTickets().DeleteTicket(ctx, sessionID)
}

func (b *StoreBackend) DeleteExpired(ctx context.Context, now time.Time) (int64, int64, error) {
	tickets, err := b.Store.EnrollmentTickets().DeleteExpiredTickets(ctx, now)
	if err != nil {
		return 0, 0, err
	}
	sessions, err := b.Store.Sessions().DeleteExpiredSessions(ctx, now)
	if err != nil {
		return 0, tickets, err
	}
	return sessions, tickets, nil
}

func (b *StoreBackend) Reset(ctx context.Context) error {
	return b.Store.Sessions().DeleteAllSessions(ctx)
}

package store

import (
	"context"
	"errors"
	"time"

	"github.com/aussiebroadwan/assettrack/internal/auth/domain"
)

var (
	ErrNotFound      = errors.New("store: not found")
	ErrAlreadyExists = errors.New("store: already exists")
)

// Store is the root data access interface. Concrete drivers (sqlite) implement
// this. It exposes sub-repositories to keep concerns tidy and testable, and so
// nobody accidentally opens a transaction within a transaction.
type Store interface {
	Users() Users
	Roles() Roles
	Sessions() Sessions
	EnrollmentTickets() EnrollmentTickets

	ApplyMigrations() error

	// Tx starts a read/write transaction and returns a Tx-scoped Store.
	// The caller MUST call Commit() or Rollback() on the returned Tx.
	Tx(ctx context.Context) (Tx, error)

	// WithTx executes fn within a transaction. If fn returns an error the
	// transaction is rolled back, otherwise it is committed. Inside fn only
	// tx may be used; the outer store shares the same connection.
	WithTx(ctx context.Context, fn func(tx Tx) error) error

	// Close releases any underlying resources.
	Close() error

	// Ping verifies the database connection is still alive.
	Ping(ctx context.Context) error
}

// Tx is a transactional store. It embeds the same repos but adds Commit/Rollback.
type Tx interface {
	Store
	Commit() error
	Rollback() error
}

// Users is the user-record store: get, create and update by id.
type Users interface {
	// GetUserByID returns a user by id.
	GetUserByID(ctx context.Context, id string) (domain.User, error)

	// GetUserByUsername is used during login.
	GetUserByUsername(ctx context.Context, username string) (domain.User, error)

	// CreateUser inserts a new user (id is provided by app via ULID).
	// Returns ErrAlreadyExists when the username is taken.
	CreateUser(ctx context.Context, u domain.User) error

	// SetPassword stores a new password hash and the force-change flag.
	SetPassword(ctx context.Context, userID, hash string, forceChange bool) error

	// EnableMFA persists a confirmed TOTP secret and sets mfa_enabled.
	EnableMFA(ctx context.Context, userID, secret string) error

	// DisableMFA clears mfa_enabled and mfa_secret.
	DisableMFA(ctx context.Context, userID string) error

	// IsEmpty returns true if there are no users.
	IsEmpty(ctx context.Context) (bool, error)

	// DeleteAllUsers removes every user; sessions and tickets cascade.
	DeleteAllUsers(ctx context.Context) error
}

type Roles interface {
	// GetRoleByID fetches a role by its ID
	GetRoleByID(ctx context.Context, id string) (domain.Role, error)

	// GetRoleByName fetches a role by its name (for seeding)
	GetRoleByName(ctx context.Context, name string) (domain.Role, error)

	// ListAll returns all roles in the system
	ListAll(ctx context.Context) ([]domain.Role, error)

	// CreateRole inserts a new role (id is ULID)
	CreateRole(ctx context.Context, r domain.Role) error

	// UpdateRole replaces the description and permission matrix of a role
	UpdateRole(ctx context.Context, roleID, description string, perms domain.PermissionMatrix) error

	// IsEmpty returns true if there are no roles
	IsEmpty(ctx context.Context) (bool, error)
}

// Sessions persists server-side sessions. IDs passed here are already
// fingerprints of the cookie session id.
type Sessions interface {
	CreateSession(ctx context.Context, s domain.Session) error
	GetSession(ctx context.Context, id string) (domain.Session, error)

	// TouchSession slides the expiry of a live session.
	TouchSession(ctx context.Context, id string, lastSeen, expiresAt time.Time) error

	DeleteSession(ctx context.Context, id string) error
	DeleteAllSessions(ctx context.Context) error

	// DeleteExpiredSessions is housekeeping; returns the number removed.
	DeleteExpiredSessions(ctx context.Context, now time.Time) (int64, error)
}

// EnrollmentTickets holds pending TOTP secrets, one per session.
type EnrollmentTickets interface {
	// PutTicket creates or replaces the ticket for t.SessionID.
	PutTicket(ctx context.Context, t domain.EnrollmentTicket) error
	GetTicket(ctx context.Context, sessionID string) (domain.EnrollmentTicket, error)
	DeleteTicket(ctx context.Context, sessionID string) error

	// DeleteExpiredTickets is housekeeping; returns the number removed.
	DeleteExpiredTickets(ctx context.Context, now time.Time) (int64, error)
}

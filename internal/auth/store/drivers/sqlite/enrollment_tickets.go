package sqlite

import (
	"context"
	"fmt"
	"time"

	"github.com/aussiebroadwan/assettrack/internal/auth/domain"
)

type ticketsRepo struct {
	db querier
}

// PutTicket replaces any earlier ticket for the session, so calling
// /mfa/setup twice leaves only the newest secret pending.
func (r *ticketsRepo) PutTicket(ctx context.Context, t domain.EnrollmentTicket) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO enrollment_tickets (session_id, user_id, secret, created_at, expires_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(session_id) DO UPDATE SET
			user_id = excluded.user_id,
			secret = excluded.secret,
			created_at = excluded.created_at,
			expires_at = excluded.expires_at`,
		t.SessionID,
		t.UserID,
		t.Secret,
		toMillis(t.CreatedAt),
		toMillis(t.ExpiresAt),
	)
	if err != nil {
		return fmt.Errorf("upsert enrollment ticket: %w", err)
	}
	return nil
}

// GetTicket returns the ticket for a session. Expiry is left to the caller.
func (r *ticketsRepo) GetTicket(ctx context.Context, sessionID string) (domain.EnrollmentTicket, error) {
	var t domain.EnrollmentTicket
	var createdAt, expiresAt int64

	err := r.db.QueryRowContext(ctx, `
		SELECT session_id, user_id, secret, created_at, expires_at
		FROM enrollment_tickets WHERE session_id = ?`, sessionID,
	).Scan(&t.SessionID, &t.UserID, &t.Secret, &createdAt, &expiresAt)
	if err != nil {
		return domain.EnrollmentTicket{}, mapNotFound(err)
	}

	t.CreatedAt = fromMillis(createdAt)
	t.ExpiresAt = fromMillis(expiresAt)
	return t, nil
}

func (r *ticketsRepo) DeleteTicket(ctx context.Context, sessionID string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM enrollment_tickets WHERE session_id = ?`, sessionID)
	return err
}

func (r *ticketsRepo) DeleteExpiredTickets(ctx context.Context, now time.Time) (int64, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM enrollment_tickets WHERE expires_at <= ?`, toMillis(now))
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

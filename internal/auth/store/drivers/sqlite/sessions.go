package sqlite

import (
	"context"
	"fmt"
	"time"

	"github.com/aussiebroadwan/assettrack/internal/auth/domain"
)

type sessionsRepo struct {
	db querier
}

func (r *sessionsRepo) CreateSession(ctx context.Context, s domain.Session) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO sessions (id, user_id, created_at, expires_at, last_seen_at, ip_address, user_agent)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		s.ID,
		s.UserID,
		toMillis(s.CreatedAt),
		toMillis(s.ExpiresAt),
		toMillis(s.LastSeenAt),
		s.IPAddress,
		s.UserAgent,
	)
	if err := mapConstraint(err); err != nil {
		return fmt.Errorf("insert session: %w", err)
	}
	return nil
}

func (r *sessionsRepo) GetSession(ctx context.Context, id string) (domain.Session, error) {
	var s domain.Session
	var createdAt, expiresAt, lastSeen int64

	err := r.db.QueryRowContext(ctx, `
		SELECT id, user_id, created_at, expires_at, last_seen_at, ip_address, user_agent
		FROM sessions WHERE id = ?`, id,
	).Scan(&s.ID, &s.UserID, &createdAt, &expiresAt, &lastSeen, &s.IPAddress, &s.UserAgent)
	if err != nil {
		return domain.Session{}, mapNotFound(err)
	}

	s.CreatedAt = fromMillis(createdAt)
	s.ExpiresAt = fromMillis(expiresAt)
	s.LastSeenAt = fromMillis(lastSeen)
	return s, nil
}

func (r *sessionsRepo) TouchSession(ctx context.Context, id string, lastSeen, expiresAt time.Time) error {
	return requireAffected(r.db.ExecContext(ctx, `
		UPDATE sessions SET last_seen_at = ?, expires_at = ?
		WHERE id = ?`,
		toMillis(lastSeen), toMillis(expiresAt), id,
	))
}

func (r *sessionsRepo) DeleteSession(ctx context.Context, id string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM sessions WHERE id = ?`, id)
	return err
}

func (r *sessionsRepo) DeleteAllSessions(ctx context.Context) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM sessions`)
	return err
}

func (r *sessionsRepo) DeleteExpiredSessions(ctx context.Context, now time.Time) (int64, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM sessions WHERE expires_at <= ?`, toMillis(now))
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/aussiebroadwan/assettrack/internal/auth/domain"
)

type usersRepo struct {
	db querier
}

const userColumns = `id, username, password, first_name, last_name, email, department,
	is_admin, role_id, mfa_enabled, mfa_secret, force_password_change, created_at, updated_at`

// scanUser reads one users row. is_admin is scanned untyped and coerced here,
// the single place the legacy encodings are interpreted.
func scanUser(row interface{ Scan(...any) error }) (domain.User, error) {
	var (
		u         domain.User
		isAdmin   any
		roleID    sql.NullString
		mfaSecret sql.NullString
		createdAt int64
		updatedAt int64
	)

	err := row.Scan(
		&u.ID,
		&u.Username,
		&u.PasswordHash,
		&u.FirstName,
		&u.LastName,
		&u.Email,
		&u.Department,
		&isAdmin,
		&roleID,
		&u.MFAEnabled,
		&mfaSecret,
		&u.ForcePasswordChange,
		&createdAt,
		&updatedAt,
	)
	if err != nil {
		return domain.User{}, mapNotFound(err)
	}

	u.IsAdmin = domain.CoerceAdminFlag(isAdmin)
	u.RoleID = mapNullStringPtr(roleID)
	u.MFASecret = mapNullStringPtr(mfaSecret)
	u.CreatedAt = fromMillis(createdAt)
	u.UpdatedAt = fromMillis(updatedAt)
	return u, nil
}

func (r *usersRepo) GetUserByID(ctx context.Context, id string) (domain.User, error) {
	return scanUser(r.db.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE id = ?`, id))
}

func (r *usersRepo) GetUserByUsername(ctx context.Context, username string) (domain.User, error) {
	return scanUser(r.db.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE username = ?`, username))
}

func (r *usersRepo) CreateUser(ctx context.Context, u domain.User) error {
	now := time.Now()
	if u.CreatedAt.IsZero() {
		u.CreatedAt = now
	}
	if u.UpdatedAt.IsZero() {
		u.UpdatedAt = u.CreatedAt
	}

	_, err := r.db.ExecContext(ctx, `
		INSERT INTO users (`+userColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		u.ID,
		u.Username,
		u.PasswordHash,
		u.FirstName,
		u.LastName,
		u.Email,
		u.Department,
		u.IsAdmin,
		mapOptionalString(u.RoleID),
		u.MFAEnabled,
		mapOptionalString(u.MFASecret),
		u.ForcePasswordChange,
		toMillis(u.CreatedAt),
		toMillis(u.UpdatedAt),
	)
	if err := mapConstraint(err); err != nil {
		return fmt.Errorf("insert user: %w", err)
	}
	return nil
}

func (r *usersRepo) SetPassword(ctx context.Context, userID, hash string, forceChange bool) error {
	return requireAffected(r.db.ExecContext(ctx, `
		UPDATE users SET password = ?, force_password_change = ?, updated_at = ?
		WHERE id = ?`,
		hash, forceChange, toMillis(time.Now()), userID,
	))
}

func (r *usersRepo) EnableMFA(ctx context.Context, userID, secret string) error {
	return requireAffected(r.db.ExecContext(ctx, `
		UPDATE users SET mfa_secret = ?, mfa_enabled = 1, updated_at = ?
		WHERE id = ?`,
		secret, toMillis(time.Now()), userID,
	))
}

func (r *usersRepo) DisableMFA(ctx context.Context, userID string) error {
	return requireAffected(r.db.ExecContext(ctx, `
		UPDATE users SET mfa_secret = NULL, mfa_enabled = 0, updated_at = ?
		WHERE id = ?`,
		toMillis(time.Now()), userID,
	))
}

func (r *usersRepo) IsEmpty(ctx context.Context) (bool, error) {
	var count int64
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM users`).Scan(&count); err != nil {
		return false, err
	}
	return count == 0, nil
}

func (r *usersRepo) DeleteAllUsers(ctx context.Context) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM users`)
	return err
}

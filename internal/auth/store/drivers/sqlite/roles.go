package sqlite

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/aussiebroadwan/assettrack/internal/auth/domain"
)

type rolesRepo struct {
	db querier
}

const roleColumns = `id, name, description, permissions, created_at, updated_at`

func scanRole(row interface{ Scan(...any) error }) (domain.Role, error) {
	var (
		role      domain.Role
		perms     string
		createdAt int64
		updatedAt int64
	)

	if err := row.Scan(&role.ID, &role.Name, &role.Description, &perms, &createdAt, &updatedAt); err != nil {
		return domain.Role{}, mapNotFound(err)
	}

	var m domain.PermissionMatrix
	if err := json.Unmarshal([]byte(perms), &m); err != nil {
		return domain.Role{}, fmt.Errorf("role %s: decode permissions: %w", role.ID, err)
	}

	role.Permissions = m.Normalize()
	role.CreatedAt = fromMillis(createdAt)
	role.UpdatedAt = fromMillis(updatedAt)
	return role, nil
}

func (r *rolesRepo) GetRoleByID(ctx context.Context, id string) (domain.Role, error) {
	return scanRole(r.db.QueryRowContext(ctx,
		`SELECT `+roleColumns+` FROM roles WHERE id = ?`, id))
}

func (r *rolesRepo) GetRoleByName(ctx context.Context, name string) (domain.Role, error) {
	return scanRole(r.db.QueryRowContext(ctx,
		`SELECT `+roleColumns+` FROM roles WHERE name = ?`, name))
}

func (r *rolesRepo) ListAll(ctx context.Context) ([]domain.Role, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT `+roleColumns+` FROM roles ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var roles []domain.Role
	for rows.Next() {
		role, err := scanRole(rows)
		if err != nil {
			return nil, err
		}
		roles = append(roles, role)
	}
	return roles, rows.Err()
}

func (r *rolesRepo) CreateRole(ctx context.Context, role domain.Role) error {
	perms, err := json.Marshal(role.Permissions.Normalize())
	if err != nil {
		return err
	}

	now := time.Now()
	_, err = r.db.ExecContext(ctx, `
		INSERT INTO roles (`+roleColumns+`)
		VALUES (?, ?, ?, ?, ?, ?)`,
		role.ID, role.Name, role.Description, string(perms), toMillis(now), toMillis(now),
	)
	if err := mapConstraint(err); err != nil {
		return fmt.Errorf("insert role: %w", err)
	}
	return nil
}

func (r *rolesRepo) UpdateRole(ctx context.Context, roleID, description string, perms domain.PermissionMatrix) error {
	raw, err := json.Marshal(perms.Normalize())
	if err != nil {
		return err
	}

	return requireAffected(r.db.ExecContext(ctx, `
		UPDATE roles SET description = ?, permissions = ?, updated_at = ?
		WHERE id = ?`,
		description, string(raw), toMillis(time.Now()), roleID,
	))
}

func (r *rolesRepo) IsEmpty(ctx context.Context) (bool, error) {
	var count int64
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM roles`).Scan(&count); err != nil {
		return false, err
	}
	return count == 0, nil
}

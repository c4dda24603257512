package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/aussiebroadwan/assettrack/internal/auth/domain"
	"github.com/aussiebroadwan/assettrack/internal/auth/store"
)

// RoleLookup is the part of the role store the resolver needs.
type RoleLookup interface {
	GetRoleByID(ctx context.Context, id string) (domain.Role, error)
}

// PermissionResolver materialises a user's permission matrix. It is the only
// place that decides the admin bypass; login, MFA verify and every session
// read go through it.
type PermissionResolver struct {
	Roles RoleLookup
}

// Resolve returns the matrix for isAdmin/roleID. Admins always get full
// access whatever their role. A missing or unknown role gets
// domain.DefaultAccess.
func (r *PermissionResolver) Resolve(ctx context.Context, isAdmin bool, roleID *string) (domain.PermissionMatrix, error) {
	if isAdmin {
		return domain.FullAccess(), nil
	}

	if roleID == nil || *roleID == "" {
		return domain.DefaultAccess(), nil
	}

	role, err := r.Roles.GetRoleByID(ctx, *roleID)
	if errors.Is(err, store.ErrNotFound) {
		return domain.DefaultAccess(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("resolve permissions: %w", err)
	}

	return role.Permissions.Normalize(), nil
}

// ForUser resolves the matrix for u.
func (r *PermissionResolver) ForUser(ctx context.Context, u domain.User) (domain.PermissionMatrix, error) {
	return r.Resolve(ctx, u.IsAdmin, u.RoleID)
}

package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/aussiebroadwan/assettrack/internal/auth/domain"
	"github.com/aussiebroadwan/assettrack/internal/auth/store"
	"github.com/aussiebroadwan/assettrack/pkg/idx"
	"github.com/aussiebroadwan/assettrack/pkg/slogx"
)

type RolesService struct {
	Store store.Store
}

// GetRoleByID fetches a role by its ID.
func (s *RolesService) GetRoleByID(ctx context.Context, roleID string) (domain.Role, error) {
	return s.Store.Roles().GetRoleByID(ctx, roleID)
}

// ListAll returns all roles in the system.
func (s *RolesService) ListAll(ctx context.Context) ([]domain.Role, error) {
	return s.Store.Roles().ListAll(ctx)
}

// Seed makes the stored roles match defs by name: missing roles are created
// and existing ones get the file's description and permissions. Roles not
// named in defs are left alone.
func (s *RolesService) Seed(ctx context.Context, defs []domain.RoleDefinition) error {
	log := slogx.FromContext(ctx)

	return s.Store.WithTx(ctx, func(tx store.Tx) error {
		for _, def := range defs {
			if def.Name == "" {
				return errors.New("role definition without a name")
			}

			existing, err := tx.Roles().GetRoleByName(ctx, def.Name)
			switch {
			case err == nil:
				if err := tx.Roles().UpdateRole(ctx, existing.ID, def.Description, def.Permissions); err != nil {
					return fmt.Errorf("update role %q: %w", def.Name, err)
				}
				log.Debug("role updated from definitions", "role", def.Name)

			case errors.Is(err, store.ErrNotFound):
				role := domain.Role{
					ID:          idx.NewAt(time.Now()).String(),
					Name:        def.Name,
					Description: def.Description,
					Permissions: def.Permissions,
				}
				if err := tx.Roles().CreateRole(ctx, role); err != nil {
					return fmt.Errorf("create role %q: %w", def.Name, err)
				}
				log.Info("role created from definitions", "role", def.Name)

			default:
				return err
			}
		}
		return nil
	})
}

package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/aussiebroadwan/assettrack/internal/auth/domain"
	"github.com/aussiebroadwan/assettrack/internal/auth/store"
	"github.com/aussiebroadwan/assettrack/pkg/idx"
)

type RegisterInput struct {
	Username   string
	Password   string
	FirstName  string
	LastName   string
	Email      string
	Department string
	IsAdmin    bool
	RoleID     *string
}

type ChangePasswordInput struct {
	CurrentPassword string
	NewPassword     string
	ForceChange     bool
}

// Register creates a user. IsAdmin is only honoured when the caller is an
// admin; self-registration always yields a regular user.
func (s *AuthService) Register(ctx context.Context, in RegisterInput, callerIsAdmin bool) (domain.User, error) {
	if len(in.Password) < MinPasswordLength {
		return domain.User{}, ErrWeakPassword
	}

	hash, err := s.Hasher.Hash(ctx, in.Password)
	if err != nil {
		return domain.User{}, fmt.Errorf("hash password: %w", err)
	}

	now := time.Now().UTC()
	u := domain.User{
		ID:           idx.NewAt(now).String(),
		Username:     in.Username,
		PasswordHash: hash,
		FirstName:    in.FirstName,
		LastName:     in.LastName,
		Email:        in.Email,
		Department:   in.Department,
		IsAdmin:      in.IsAdmin && callerIsAdmin,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if callerIsAdmin {
		u.RoleID = in.RoleID
	}

	if err := s.Store.Users().CreateUser(ctx, u); err != nil {
		if errors.Is(err, store.ErrAlreadyExists) {
			return domain.User{}, ErrUsernameTaken
		}
		return domain.User{}, err
	}

	return u, nil
}

// Profile returns the user and their current permission matrix.
func (s *AuthService) Profile(ctx context.Context, userID string) (domain.User, domain.PermissionMatrix, error) {
	u, err := s.Store.Users().GetUserByID(ctx, userID)
	if errors.Is(err, store.ErrNotFound) {
		return domain.User{}, nil, ErrUserNotFound
	}
	if err != nil {
		return domain.User{}, nil, err
	}

	perms, err := s.Permissions.ForUser(ctx, u)
	if err != nil {
		return domain.User{}, nil, err
	}
	return u, perms, nil
}

// ChangePassword sets a new password and clears the force-change flag. The
// current password may only be skipped when the account is flagged for a
// forced change and the caller says so.
func (s *AuthService) ChangePassword(ctx context.Context, userID string, in ChangePasswordInput) error {
	if len(in.NewPassword) < MinPasswordLength {
		return ErrWeakPassword
	}

	u, err := s.Store.Users().GetUserByID(ctx, userID)
	if errors.Is(err, store.ErrNotFound) {
		return ErrUserNotFound
	}
	if err != nil {
		return err
	}

	forced := in.ForceChange && u.ForcePasswordChange
	if !forced {
		if in.CurrentPassword == "" {
			return ErrCurrentPasswordRequired
		}
		ok, err := s.checkPassword(ctx, u, in.CurrentPassword)
		if err != nil {
			return err
		}
		if !ok {
			return ErrCurrentPasswordMismatch
		}
	}

	hash, err := s.Hasher.Hash(ctx, in.NewPassword)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}

	return s.Store.Users().SetPassword(ctx, u.ID, hash, false)
}

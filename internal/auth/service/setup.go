package service

import (
	"context"
	"crypto/subtle"
	"fmt"
	"time"

	"github.com/aussiebroadwan/assettrack/internal/auth/domain"
	"github.com/aussiebroadwan/assettrack/internal/auth/store"
	"github.com/aussiebroadwan/assettrack/pkg/cryptox"
	"github.com/aussiebroadwan/assettrack/pkg/idx"
)

// SessionResetter drops every session. *session.Manager implements it.
type SessionResetter interface {
	Reset(ctx context.Context) error
}

// SetupService runs the first-run wizard: while no user exists, anyone may
// create the first administrator.
type SetupService struct {
	Store    store.Store
	Hasher   *cryptox.Pool
	Sessions SessionResetter

	// ResetToken guards Reset. Empty disables it.
	ResetToken string
}

// Required reports whether no user exists yet.
func (s *SetupService) Required(ctx context.Context) (bool, error) {
	return s.Store.Users().IsEmpty(ctx)
}

// CreateAdmin creates the first administrator. It fails with
// ErrSetupAlreadyDone once any user exists.
func (s *SetupService) CreateAdmin(ctx context.Context, in domain.SetupData) (domain.User, error) {
	if len(in.Password) < MinPasswordLength {
		return domain.User{}, ErrWeakPassword
	}

	empty, err := s.Store.Users().IsEmpty(ctx)
	if err != nil {
		return domain.User{}, err
	}
	if !empty {
		return domain.User{}, ErrSetupAlreadyDone
	}

	// Hashing happens outside the transaction; it holds the only connection
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
		IsAdmin:      true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	err = s.Store.WithTx(ctx, func(tx store.Tx) error {
		empty, err := tx.Users().IsEmpty(ctx)
		if err != nil {
			return err
		}
		if !empty {
			return ErrSetupAlreadyDone
		}
		return tx.Users().CreateUser(ctx, u)
	})
	if err != nil {
		return domain.User{}, err
	}

	return u, nil
}

// Reset deletes every user and session so setup can run again. It needs
// the configured reset token.
func (s *SetupService) Reset(ctx context.Context, token string) error {
	if s.ResetToken == "" {
		return ErrSetupResetDisabled
	}
	if subtle.ConstantTimeCompare([]byte(token), []byte(s.ResetToken)) != 1 {
		return ErrSetupResetUnauthorized
	}

	if err := s.Store.Users().DeleteAllUsers(ctx); err != nil {
		return fmt.Errorf("delete users: %w", err)
	}
	if s.Sessions != nil {
		if err := s.Sessions.Reset(ctx); err != nil {
			return fmt.Errorf("reset sessions: %w", err)
		}
	}
	return nil
}

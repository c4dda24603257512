package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/aussiebroadwan/assettrack/internal/auth/domain"
	"github.com/aussiebroadwan/assettrack/internal/auth/session"
	"github.com/aussiebroadwan/assettrack/internal/auth/store"
	"github.com/aussiebroadwan/assettrack/pkg/slogx"
	"github.com/aussiebroadwan/assettrack/pkg/totpx"
)

// TicketStore holds the pending secret between setup and enable.
// *session.Manager implements it.
type TicketStore interface {
	PutTicket(ctx context.Context, sessionID, userID, secret string) error
	Ticket(ctx context.Context, sessionID string) (domain.EnrollmentTicket, error)
	ConsumeTicket(ctx context.Context, sessionID string) error
}

type MFAService struct {
	Store   store.Store
	Tickets TicketStore
	Issuer  string // shown in authenticator apps, e.g. "AssetTrack"

	TOTPWindow uint
}

// Setup generates a secret for the session's user and parks it in an
// enrollment ticket. Nothing is written to the user until Enable.
func (s *MFAService) Setup(ctx context.Context, sessionID, userID string) (domain.MFASetup, error) {
	u, err := s.user(ctx, userID)
	if err != nil {
		return domain.MFASetup{}, err
	}
	if u.HasMFA() {
		return domain.MFASetup{}, ErrMFAAlreadyEnabled
	}

	secret, err := totpx.GenerateSecret(s.Issuer, u.Username)
	if err != nil {
		return domain.MFASetup{}, err
	}

	qr, err := totpx.RenderQRCode(secret.URL)
	if err != nil {
		return domain.MFASetup{}, err
	}

	if err := s.Tickets.PutTicket(ctx, sessionID, u.ID, secret.Base32); err != nil {
		return domain.MFASetup{}, fmt.Errorf("store enrollment ticket: %w", err)
	}

	return domain.MFASetup{
		Secret:      secret.Base32,
		QRCode:      qr,
		ManualEntry: groupSecret(secret.Base32),
	}, nil
}

// Enable confirms the pending secret with a code and turns MFA on. A wrong
// code leaves the ticket in place so the user can retry.
func (s *MFAService) Enable(ctx context.Context, sessionID, userID, code string) error {
	if !totpx.ValidFormat(code) {
		return ErrInvalidTOTPCode
	}

	ticket, err := s.Tickets.Ticket(ctx, sessionID)
	if errors.Is(err, session.ErrNoTicket) {
		return ErrNoPendingEnrollment
	}
	if err != nil {
		return err
	}
	if ticket.UserID != userID {
		return ErrNoPendingEnrollment
	}

	if !totpx.Verify(ticket.Secret, code, s.window()) {
		return ErrInvalidTOTPCode
	}

	if err := s.Store.Users().EnableMFA(ctx, userID, ticket.Secret); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return ErrUserNotFound
		}
		return fmt.Errorf("enable MFA: %w", err)
	}

	// MFA is on at this point. A leftover ticket expires with its TTL.
	if err := s.Tickets.ConsumeTicket(ctx, sessionID); err != nil {
		slogx.FromContext(ctx).Warn("failed to consume enrollment ticket",
			"user_id", userID,
			"err", err,
		)
	}
	return nil
}

// Disable turns MFA off for the caller after checking a current code.
func (s *MFAService) Disable(ctx context.Context, userID, code string) error {
	u, err := s.user(ctx, userID)
	if err != nil {
		return err
	}
	if !u.HasMFA() {
		return ErrMFANotEnabled
	}
	if !totpx.Verify(*u.MFASecret, code, s.window()) {
		return ErrInvalidTOTPCode
	}

	return s.Store.Users().DisableMFA(ctx, userID)
}

// AdminDisable turns MFA off for another user without a code.
func (s *MFAService) AdminDisable(ctx context.Context, targetUserID string) error {
	u, err := s.user(ctx, targetUserID)
	if err != nil {
		return err
	}
	if !u.MFAEnabled {
		return ErrMFANotEnabled
	}

	return s.Store.Users().DisableMFA(ctx, targetUserID)
}

// Status reports whether the user has MFA enabled.
func (s *MFAService) Status(ctx context.Context, userID string) (bool, error) {
	u, err := s.user(ctx, userID)
	if err != nil {
		return false, err
	}
	return u.HasMFA(), nil
}

func (s *MFAService) user(ctx context.Context, id string) (domain.User, error) {
	u, err := s.Store.Users().GetUserByID(ctx, id)
	if errors.Is(err, store.ErrNotFound) {
		return domain.User{}, ErrUserNotFound
	}
	return u, err
}

func (s *MFAService) window() uint {
	if s.TOTPWindow == 0 {
		return totpx.DefaultWindow
	}
	return s.TOTPWindow
}

// groupSecret splits a base32 secret into blocks of four for typing.
func groupSecret(secret string) string {
	var b strings.Builder
	for i, r := range secret {
		if i > 0 && i%4 == 0 {
			b.WriteByte(' ')
		}
		b.WriteRune(r)
	}
	return b.String()
}

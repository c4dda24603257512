package service

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/aussiebroadwan/assettrack/internal/auth/domain"
	"github.com/aussiebroadwan/assettrack/internal/auth/store"
	"github.com/aussiebroadwan/assettrack/pkg/cryptox"
	"github.com/aussiebroadwan/assettrack/pkg/slogx"
	"github.com/aussiebroadwan/assettrack/pkg/totpx"
)

// LoginOutcome is where a successful password check leaves the caller.
type LoginOutcome int

const (
	// OutcomeMFARequired: enrolled user, no session until /mfa/verify.
	OutcomeMFARequired LoginOutcome = iota + 1
	// OutcomePasswordChangeRequired: session created, must change password.
	OutcomePasswordChangeRequired
	// OutcomeMFASetupRequired: session created, must enroll MFA.
	OutcomeMFASetupRequired
)

func (o LoginOutcome) String() string {
	switch o {
	case OutcomeMFARequired:
		return "mfa_required"
	case OutcomePasswordChangeRequired:
		return "password_change_required"
	case OutcomeMFASetupRequired:
		return "mfa_setup_required"
	default:
		return "unknown"
	}
}

// CreatesSession reports whether the handler must start a session now.
func (o LoginOutcome) CreatesSession() bool {
	return o == OutcomePasswordChangeRequired || o == OutcomeMFASetupRequired
}

type LoginResult struct {
	Outcome LoginOutcome
	User    domain.User

	// Permissions is only set for OutcomeMFASetupRequired.
	Permissions domain.PermissionMatrix
}

// PasswordHasher runs the password KDF. *cryptox.Pool implements it.
type PasswordHasher interface {
	Hash(ctx context.Context, password string) (string, error)
	Verify(ctx context.Context, password, stored string) (bool, error)
}

type AuthService struct {
	Store       store.Store
	Hasher      PasswordHasher
	Permissions *PermissionResolver
	Limiter     *AttemptLimiter

	// TOTPWindow is the accepted clock drift in steps.
	TOTPWindow uint

	dummyOnce sync.Once
	dummyHash string
}

// Authenticate checks username/password and decides the next login step.
// Unknown users, wrong passwords and locked accounts are indistinguishable
// to the caller apart from ErrAccountLocked, which handlers answer exactly
// like ErrInvalidCredentials.
func (s *AuthService) Authenticate(ctx context.Context, username, password string) (LoginResult, error) {
	u, err := s.Store.Users().GetUserByUsername(ctx, username)
	if errors.Is(err, store.ErrNotFound) {
		// Spend the same KDF time as a real check
		_, _ = s.Hasher.Verify(ctx, password, s.dummy())
		return LoginResult{}, ErrInvalidCredentials
	}
	if err != nil {
		return LoginResult{}, fmt.Errorf("lookup user: %w", err)
	}

	if s.Limiter.Blocked(loginKey(u.ID)) {
		// A locked account must cost as much as an unknown one
		_, _ = s.Hasher.Verify(ctx, password, s.dummy())
		return LoginResult{}, ErrAccountLocked
	}

	ok, err := s.checkPassword(ctx, u, password)
	if err != nil {
		return LoginResult{}, err
	}
	if !ok {
		s.Limiter.Fail(loginKey(u.ID))
		return LoginResult{}, ErrInvalidCredentials
	}
	s.Limiter.Succeed(loginKey(u.ID))

	switch {
	case u.HasMFA():
		return LoginResult{Outcome: OutcomeMFARequired, User: u}, nil
	case u.ForcePasswordChange:
		return LoginResult{Outcome: OutcomePasswordChangeRequired, User: u}, nil
	}

	perms, err := s.Permissions.ForUser(ctx, u)
	if err != nil {
		return LoginResult{}, err
	}
	return LoginResult{Outcome: OutcomeMFASetupRequired, User: u, Permissions: perms}, nil
}

// VerifyMFA completes an MFA login. The user is re-read from the store so
// nothing the client sent about the account is trusted.
func (s *AuthService) VerifyMFA(ctx context.Context, userID, code string) (domain.User, domain.PermissionMatrix, error) {
	if s.Limiter.Blocked(mfaKey(userID)) {
		return domain.User{}, nil, ErrTooManyAttempts
	}

	u, err := s.Store.Users().GetUserByID(ctx, userID)
	if errors.Is(err, store.ErrNotFound) {
		return domain.User{}, nil, ErrUserNotFound
	}
	if err != nil {
		return domain.User{}, nil, fmt.Errorf("lookup user: %w", err)
	}

	if !u.HasMFA() {
		return domain.User{}, nil, ErrMFANotEnabled
	}

	if !totpx.Verify(*u.MFASecret, code, s.window()) {
		s.Limiter.Fail(mfaKey(userID))
		return domain.User{}, nil, ErrInvalidTOTPCode
	}
	s.Limiter.Succeed(mfaKey(userID))

	perms, err := s.Permissions.ForUser(ctx, u)
	if err != nil {
		return domain.User{}, nil, err
	}
	return u, perms, nil
}

// checkPassword verifies password against the stored value. A legacy
// plaintext value is compared directly and, on a match, replaced with a hash.
func (s *AuthService) checkPassword(ctx context.Context, u domain.User, password string) (bool, error) {
	if cryptox.IsHashed(u.PasswordHash) {
		return s.Hasher.Verify(ctx, password, u.PasswordHash)
	}

	if !cryptox.ComparePlaintext(password, u.PasswordHash) {
		return false, nil
	}

	log := slogx.FromContext(ctx)
	log.Warn("legacy plaintext password matched, upgrading", "user_id", u.ID)

	hash, err := s.Hasher.Hash(ctx, password)
	if err != nil {
		log.Error("failed to hash legacy password", "user_id", u.ID, "err", err)
		return true, nil
	}
	if err := s.Store.Users().SetPassword(ctx, u.ID, hash, u.ForcePasswordChange); err != nil {
		log.Error("failed to store upgraded password", "user_id", u.ID, "err", err)
	}
	return true, nil
}

func (s *AuthService) dummy() string {
	s.dummyOnce.Do(func() {
		s.dummyHash, _ = cryptox.HashPassword("assettrack-dummy-password")
	})
	return s.dummyHash
}

func (s *AuthService) window() uint {
	if s.TOTPWindow == 0 {
		return totpx.DefaultWindow
	}
	return s.TOTPWindow
}

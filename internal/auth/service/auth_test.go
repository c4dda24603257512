package service

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"

	"github.com/aussiebroadwan/assettrack/internal/auth/domain"
	"github.com/aussiebroadwan/assettrack/internal/auth/store"
	"github.com/aussiebroadwan/assettrack/pkg/cryptox"
	"github.com/stretchr/testify/require"
)

type fakeRoles struct {
	roles map[string]domain.Role
	err   error
}

func (f fakeRoles) GetRoleByID(_ context.Context, id string) (domain.Role, error) {
	if f.err != nil {
		return domain.Role{}, f.err
	}
	r, ok := f.roles[id]
	if !ok {
		return domain.Role{}, store.ErrNotFound
	}
	return r, nil
}

func strPtr(s string) *string { return &s }

// countingHasher records how many times the KDF ran.
type countingHasher struct {
	PasswordHasher
	verifies atomic.Int32
}

func (c *countingHasher) Verify(ctx context.Context, password, stored string) (bool, error) {
	c.verifies.Add(1)
	return c.PasswordHasher.Verify(ctx, password, stored)
}

func TestPermissionResolver_AdminAlwaysFullAccess(t *testing.T) {
	r := &PermissionResolver{Roles: fakeRoles{
		roles: map[string]domain.Role{"viewer": {ID: "viewer", Permissions: domain.NoAccess()}},
	}}

	for _, roleID := range []*string{nil, strPtr(""), strPtr("0"), strPtr("missing"), strPtr("viewer")} {
		m, err := r.Resolve(context.Background(), true, roleID)
		require.NoError(t, err)
		require.Equal(t, domain.FullAccess(), m)
	}

	// Even a broken role store cannot demote an admin
	broken := &PermissionResolver{Roles: fakeRoles{err: errors.New("db down")}}
	m, err := broken.Resolve(context.Background(), true, strPtr("viewer"))
	require.NoError(t, err)
	require.Equal(t, domain.FullAccess(), m)
}

func TestPermissionResolver_Roles(t *testing.T) {
	tech := domain.PermissionMatrix{domain.ResourceAssets: {View: true, Edit: true, Add: true}}
	r := &PermissionResolver{Roles: fakeRoles{
		roles: map[string]domain.Role{"tech": {ID: "tech", Permissions: tech}},
	}}

	tests := []struct {
		name   string
		roleID *string
		want   domain.PermissionMatrix
	}{
		{"no role", nil, domain.DefaultAccess()},
		{"empty role", strPtr(""), domain.DefaultAccess()},
		{"unknown role", strPtr("missing"), domain.DefaultAccess()},
		{"known role", strPtr("tech"), tech.Normalize()},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, err := r.Resolve(context.Background(), false, tt.roleID)
			require.NoError(t, err)
			require.Equal(t, tt.want, m)
			require.Len(t, m, len(domain.AllResources))
		})
	}

	broken := &PermissionResolver{Roles: fakeRoles{err: errors.New("db down")}}
	_, err := broken.Resolve(context.Background(), false, strPtr("tech"))
	require.Error(t, err)
}

func TestAuthenticate_Failures(t *testing.T) {
	env := newTestEnv(t)
	env.createUser(t, "alice", "password123")

	_, err := env.Auth.Authenticate(context.Background(), "nobody", "password123")
	require.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = env.Auth.Authenticate(context.Background(), "alice", "wrong-password")
	require.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = env.Auth.Authenticate(context.Background(), "alice", "")
	require.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestAuthenticate_Outcomes(t *testing.T) {
	env := newTestEnv(t)
	env.createUser(t, "setup", "password123")
	env.createUser(t, "forced", "password123", withForceChange())
	env.createUser(t, "enrolled", "password123", withMFA(testTOTPSecret))
	env.createUser(t, "both", "password123", withMFA(testTOTPSecret), withForceChange())
	env.createUser(t, "admin", "password123", withAdmin())

	tests := []struct {
		username  string
		want      LoginOutcome
		withPerms bool
	}{
		{"setup", OutcomeMFASetupRequired, true},
		{"forced", OutcomePasswordChangeRequired, false},
		{"enrolled", OutcomeMFARequired, false},
		{"both", OutcomeMFARequired, false},
		{"admin", OutcomeMFASetupRequired, true},
	}

	for _, tt := range tests {
		t.Run(tt.username, func(t *testing.T) {
			res, err := env.Auth.Authenticate(context.Background(), tt.username, "password123")
			require.NoError(t, err)
			require.Equal(t, tt.want, res.Outcome, res.Outcome.String())
			require.Equal(t, tt.username, res.User.Username)
			if tt.withPerms {
				require.NotNil(t, res.Permissions)
			} else {
				require.Nil(t, res.Permissions)
			}
		})
	}

	res, err := env.Auth.Authenticate(context.Background(), "admin", "password123")
	require.NoError(t, err)
	require.Equal(t, domain.FullAccess(), res.Permissions)
	require.False(t, OutcomeMFARequired.CreatesSession())
	require.True(t, OutcomeMFASetupRequired.CreatesSession())
}

func TestAuthenticate_NoMFANeverRequiresMFA(t *testing.T) {
	env := newTestEnv(t)

	// A secret without the flag, and the flag without a secret
	secretOnly := env.createUser(t, "secret-only", "password123")
	_, err := env.Store.DB().ExecContext(context.Background(),
		`UPDATE users SET mfa_secret = ? WHERE id = ?`, testTOTPSecret, secretOnly.ID)
	require.NoError(t, err)

	flagOnly := env.createUser(t, "flag-only", "password123")
	_, err = env.Store.DB().ExecContext(context.Background(),
		`UPDATE users SET mfa_enabled = 1 WHERE id = ?`, flagOnly.ID)
	require.NoError(t, err)

	for _, name := range []string{"secret-only", "flag-only"} {
		res, err := env.Auth.Authenticate(context.Background(), name, "password123")
		require.NoError(t, err)
		require.Equal(t, OutcomeMFASetupRequired, res.Outcome)
	}
}

func TestAuthenticate_UpgradesLegacyPlaintext(t *testing.T) {
	env := newTestEnv(t)
	u := env.createUser(t, "legacy", "", withPlaintext("password123"))

	_, err := env.Auth.Authenticate(context.Background(), "legacy", "wrong")
	require.ErrorIs(t, err, ErrInvalidCredentials)

	stored, err := env.Store.Users().GetUserByID(context.Background(), u.ID)
	require.NoError(t, err)
	require.False(t, cryptox.IsHashed(stored.PasswordHash), "a failed login must not rewrite the password")

	res, err := env.Auth.Authenticate(context.Background(), "legacy", "password123")
	require.NoError(t, err)
	require.Equal(t, OutcomeMFASetupRequired, res.Outcome)

	stored, err = env.Store.Users().GetUserByID(context.Background(), u.ID)
	require.NoError(t, err)
	require.True(t, cryptox.IsHashed(stored.PasswordHash))
	require.True(t, cryptox.VerifyPassword("password123", stored.PasswordHash))

	// Still works after the upgrade
	_, err = env.Auth.Authenticate(context.Background(), "legacy", "password123")
	require.NoError(t, err)
}

func TestAuthenticate_LocksAfterRepeatedFailures(t *testing.T) {
	env := newTestEnv(t)
	env.createUser(t, "alice", "password123")

	for range env.Limiter.Burst {
		_, err := env.Auth.Authenticate(context.Background(), "alice", "wrong-password")
		require.ErrorIs(t, err, ErrInvalidCredentials)
	}

	_, err := env.Auth.Authenticate(context.Background(), "alice", "password123")
	require.ErrorIs(t, err, ErrAccountLocked)
}

func TestAuthenticate_RejectionsCostOneHash(t *testing.T) {
	env := newTestEnv(t)
	env.createUser(t, "alice", "password123")

	hasher := &countingHasher{PasswordHasher: env.Auth.Hasher}
	env.Auth.Hasher = hasher

	for range env.Limiter.Burst {
		before := hasher.verifies.Load()
		_, err := env.Auth.Authenticate(context.Background(), "alice", "wrong-password")
		require.ErrorIs(t, err, ErrInvalidCredentials)
		require.Equal(t, int32(1), hasher.verifies.Load()-before)
	}

	tests := []struct {
		name     string
		username string
		wantErr  error
	}{
		{name: "locked account", username: "alice", wantErr: ErrAccountLocked},
		{name: "unknown user", username: "nobody", wantErr: ErrInvalidCredentials},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			before := hasher.verifies.Load()
			_, err := env.Auth.Authenticate(context.Background(), tt.username, "password123")
			require.ErrorIs(t, err, tt.wantErr)
			require.Equal(t, int32(1), hasher.verifies.Load()-before)
		})
	}
}

func TestAuthenticate_SuccessResetsFailures(t *testing.T) {
	env := newTestEnv(t)
	env.createUser(t, "alice", "password123")

	for range env.Limiter.Burst - 1 {
		_, err := env.Auth.Authenticate(context.Background(), "alice", "wrong-password")
		require.ErrorIs(t, err, ErrInvalidCredentials)
	}
	_, err := env.Auth.Authenticate(context.Background(), "alice", "password123")
	require.NoError(t, err)

	_, err = env.Auth.Authenticate(context.Background(), "alice", "wrong-password")
	require.ErrorIs(t, err, ErrInvalidCredentials)
	_, err = env.Auth.Authenticate(context.Background(), "alice", "password123")
	require.NoError(t, err)
}

func TestVerifyMFA(t *testing.T) {
	env := newTestEnv(t)
	plain := env.createUser(t, "plain", "password123")
	enrolled := env.createUser(t, "enrolled", "password123", withMFA(testTOTPSecret), withAdmin())

	_, _, err := env.Auth.VerifyMFA(context.Background(), "missing", "123456")
	require.ErrorIs(t, err, ErrUserNotFound)

	_, _, err = env.Auth.VerifyMFA(context.Background(), plain.ID, "123456")
	require.ErrorIs(t, err, ErrMFANotEnabled)

	_, _, err = env.Auth.VerifyMFA(context.Background(), enrolled.ID, wrongCode(t, testTOTPSecret))
	require.ErrorIs(t, err, ErrInvalidTOTPCode)

	_, _, err = env.Auth.VerifyMFA(context.Background(), enrolled.ID, "12345")
	require.ErrorIs(t, err, ErrInvalidTOTPCode)

	u, perms, err := env.Auth.VerifyMFA(context.Background(), enrolled.ID, currentCode(t, testTOTPSecret))
	require.NoError(t, err)
	require.Equal(t, enrolled.ID, u.ID)
	require.Equal(t, domain.FullAccess(), perms)
}

func TestVerifyMFA_TooManyAttempts(t *testing.T) {
	env := newTestEnv(t)
	u := env.createUser(t, "enrolled", "password123", withMFA(testTOTPSecret))

	bad := wrongCode(t, testTOTPSecret)
	for range env.Limiter.Burst {
		_, _, err := env.Auth.VerifyMFA(context.Background(), u.ID, bad)
		require.ErrorIs(t, err, ErrInvalidTOTPCode)
	}

	_, _, err := env.Auth.VerifyMFA(context.Background(), u.ID, currentCode(t, testTOTPSecret))
	require.ErrorIs(t, err, ErrTooManyAttempts)
}

func TestRegister(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	in := RegisterInput{
		Username:  "bob",
		Password:  "password123",
		FirstName: "Bob",
		LastName:  "Builder",
		Email:     "bob@example.com",
		IsAdmin:   true,
		RoleID:    strPtr("some-role"),
	}

	u, err := env.Auth.Register(ctx, in, false)
	require.NoError(t, err)
	require.False(t, u.IsAdmin, "self-registration cannot grant admin")
	require.Nil(t, u.RoleID)
	require.NotEmpty(t, u.ID)
	require.True(t, cryptox.IsHashed(u.PasswordHash))

	_, err = env.Auth.Register(ctx, in, false)
	require.ErrorIs(t, err, ErrUsernameTaken)

	in.Username = "carol"
	in.RoleID = nil
	u, err = env.Auth.Register(ctx, in, true)
	require.NoError(t, err)
	require.True(t, u.IsAdmin)

	stored, err := env.Store.Users().GetUserByUsername(ctx, "carol")
	require.NoError(t, err)
	require.True(t, stored.IsAdmin)

	in.Username = "dave"
	in.Password = "short"
	_, err = env.Auth.Register(ctx, in, false)
	require.ErrorIs(t, err, ErrWeakPassword)
}

func TestChangePassword(t *testing.T) {
	ctx := context.Background()

	t.Run("forced change skips current password", func(t *testing.T) {
		env := newTestEnv(t)
		u := env.createUser(t, "alice", "password123", withForceChange())

		require.NoError(t, env.Auth.ChangePassword(ctx, u.ID, ChangePasswordInput{
			NewPassword: "new-password-1",
			ForceChange: true,
		}))

		stored, err := env.Store.Users().GetUserByID(ctx, u.ID)
		require.NoError(t, err)
		require.False(t, stored.ForcePasswordChange)
		require.True(t, cryptox.VerifyPassword("new-password-1", stored.PasswordHash))

		// The flag is gone, so the shortcut is too
		err = env.Auth.ChangePassword(ctx, u.ID, ChangePasswordInput{
			NewPassword: "new-password-2",
			ForceChange: true,
		})
		require.ErrorIs(t, err, ErrCurrentPasswordRequired)
	})

	t.Run("voluntary change checks current password", func(t *testing.T) {
		env := newTestEnv(t)
		u := env.createUser(t, "alice", "password123")

		err := env.Auth.ChangePassword(ctx, u.ID, ChangePasswordInput{NewPassword: "new-password-1"})
		require.ErrorIs(t, err, ErrCurrentPasswordRequired)

		err = env.Auth.ChangePassword(ctx, u.ID, ChangePasswordInput{CurrentPassword: "nope", NewPassword: "new-password-1"})
		require.ErrorIs(t, err, ErrCurrentPasswordMismatch)

		err = env.Auth.ChangePassword(ctx, u.ID, ChangePasswordInput{CurrentPassword: "password123", NewPassword: "short"})
		require.ErrorIs(t, err, ErrWeakPassword)

		require.NoError(t, env.Auth.ChangePassword(ctx, u.ID, ChangePasswordInput{
			CurrentPassword: "password123",
			NewPassword:     "new-password-1",
		}))

		_, err = env.Auth.Authenticate(ctx, "alice", "new-password-1")
		require.NoError(t, err)
		_, err = env.Auth.Authenticate(ctx, "alice", "password123")
		require.ErrorIs(t, err, ErrInvalidCredentials)
	})

	t.Run("unknown user", func(t *testing.T) {
		env := newTestEnv(t)
		err := env.Auth.ChangePassword(ctx, "missing", ChangePasswordInput{NewPassword: "new-password-1"})
		require.ErrorIs(t, err, ErrUserNotFound)
	})
}

func TestProfile(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	require.NoError(t, env.Store.Roles().CreateRole(ctx, domain.Role{
		ID:          "tech",
		Name:        "Technician",
		Permissions: domain.PermissionMatrix{domain.ResourceReports: {View: true}},
	}))
	u := env.createUser(t, "alice", "password123", withRole("tech"))

	got, perms, err := env.Auth.Profile(ctx, u.ID)
	require.NoError(t, err)
	require.Equal(t, "alice", got.Username)
	require.True(t, perms[domain.ResourceReports].View)
	require.False(t, perms[domain.ResourceAssets].View)

	_, _, err = env.Auth.Profile(ctx, "missing")
	require.ErrorIs(t, err, ErrUserNotFound)
}

package cli

import (
	"bytes"
	"context"
	"errors"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/aussiebroadwan/assettrack/internal/auth/app"
	"github.com/aussiebroadwan/assettrack/internal/auth/domain"
	"github.com/aussiebroadwan/assettrack/internal/auth/store/drivers/sqlite"
	"github.com/aussiebroadwan/assettrack/pkg/cryptox"
)

// testEnv points the configuration at a scratch database and pepper.
func testEnv(t *testing.T) {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("AUTH_DATABASE_FILE", filepath.Join(dir, "assettrack.db"))
	t.Setenv("AUTH_PEPPER_FILE", filepath.Join(dir, "pepper"))
	cryptox.SetPepperPath(filepath.Join(dir, "pepper"))
}

func openStore(t *testing.T) *sqlite.Store {
	t.Helper()
	db, err := app.OpenStore(app.LoadConfig())
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func seedUser(t *testing.T, username string, withMFA bool) {
	t.Helper()
	db := openStore(t)

	hash, err := cryptox.HashPassword("original-pass")
	require.NoError(t, err)

	u := domain.User{ID: "id-" + username, Username: username, PasswordHash: hash}
	if withMFA {
		secret := "JBSWY3DPEHPK3PXP"
		u.MFAEnabled = true
		u.MFASecret = &secret
	}
	require.NoError(t, db.Users().CreateUser(context.Background(), u))
}

func getUser(t *testing.T, username string) domain.User {
	t.Helper()
	u, err := openStore(t).Users().GetUserByUsername(context.Background(), username)
	require.NoError(t, err)
	return u
}

func run(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	cmd := newRootCmd()
	cmd.SetArgs(args)
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetOut(&out)
	cmd.SetErr(&bytes.Buffer{})
	err := cmd.Execute()
	return out.String(), err
}

func TestVersion(t *testing.T) {
	out, err := run(t, "", "version")
	require.NoError(t, err)
	require.Equal(t, "assettrack "+app.BuildVersion+"\n", out)
}

func TestHashPassword_FromStdin(t *testing.T) {
	testEnv(t)
	old := isTerminal
	t.Cleanup(func() { isTerminal = old })
	isTerminal = func(int) bool { return false }

	out, err := run(t, "hunter22\n", "hash-password")
	require.NoError(t, err)

	hash := strings.TrimSpace(out)
	require.True(t, cryptox.IsHashed(hash))
	require.True(t, cryptox.VerifyPassword("hunter22", hash))
}

func TestHashPassword_Empty(t *testing.T) {
	testEnv(t)
	old := isTerminal
	t.Cleanup(func() { isTerminal = old })
	isTerminal = func(int) bool { return false }

	_, err := run(t, "\n", "hash-password")
	require.ErrorIs(t, err, errEmptyPassword)
}

func TestGetPassword_Terminal(t *testing.T) {
	oldTerm, oldRead := isTerminal, readPassword
	t.Cleanup(func() { isTerminal, readPassword = oldTerm, oldRead })
	isTerminal = func(int) bool { return true }

	readPassword = func(int) ([]byte, error) { return []byte("s3cret-pass"), nil }
	var prompt bytes.Buffer
	pw, err := getPassword(strings.NewReader(""), 0, &prompt)
	require.NoError(t, err)
	require.Equal(t, "s3cret-pass", pw)
	require.Equal(t, "Enter password: \n", prompt.String())

	readPassword = func(int) ([]byte, error) { return nil, errors.New("boom") }
	_, err = getPassword(strings.NewReader(""), 0, &prompt)
	require.EqualError(t, err, "boom")
}

func TestDisableMFA(t *testing.T) {
	testEnv(t)
	seedUser(t, "alice", true)

	out, err := run(t, "", "disable-mfa", "alice")
	require.NoError(t, err)
	require.Equal(t, "MFA disabled for alice\n", out)

	u := getUser(t, "alice")
	require.False(t, u.MFAEnabled)
	require.Nil(t, u.MFASecret)

	_, err = run(t, "", "disable-mfa", "alice")
	require.ErrorContains(t, err, "does not have MFA enabled")
}

func TestDisableMFA_UnknownUser(t *testing.T) {
	testEnv(t)

	_, err := run(t, "", "disable-mfa", "nobody")
	require.EqualError(t, err, `user "nobody" not found`)
}

func TestResetPassword(t *testing.T) {
	testEnv(t)
	seedUser(t, "bob", false)

	out, err := run(t, "", "reset-password", "bob")
	require.NoError(t, err)

	prefix := "Temporary password for bob: "
	require.True(t, strings.HasPrefix(out, prefix), out)
	temp := strings.TrimSpace(strings.TrimPrefix(out, prefix))
	require.Len(t, temp, 12)

	u := getUser(t, "bob")
	require.True(t, u.ForcePasswordChange)
	require.True(t, cryptox.VerifyPassword(temp, u.PasswordHash))
	require.False(t, cryptox.VerifyPassword("original-pass", u.PasswordHash))
}

func TestArgsValidation(t *testing.T) {
	_, err := run(t, "", "disable-mfa")
	require.Error(t, err)

	_, err = run(t, "", "version", "extra")
	require.Error(t, err)
}

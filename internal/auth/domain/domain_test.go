package domain_test

import (
	"testing"
	"time"

	"github.com/aussiebroadwan/assettrack/internal/auth/domain"
	"github.com/stretchr/testify/require"
)

func TestCoerceAdminFlag(t *testing.T) {
	tests := []struct {
		in   any
		want bool
	}{
		{true, true},
		{false, false},
		{int64(1), true},
		{int64(0), false},
		{int64(2), false},
		{1, true},
		{float64(1), true},
		{"true", true},
		{"TRUE", true},
		{" true ", true},
		{"1", true},
		{"false", false},
		{"yes", false},
		{"", false},
		{[]byte("true"), true},
		{[]byte("0"), false},
		{nil, false},
		{struct{}{}, false},
	}

	for _, tt := range tests {
		require.Equal(t, tt.want, domain.CoerceAdminFlag(tt.in), "input %#v", tt.in)
	}
}

func TestFullAccess(t *testing.T) {
	m := domain.FullAccess()
	require.Len(t, m, len(domain.AllResources))
	for _, r := range domain.AllResources {
		require.Equal(t, domain.Capabilities{View: true, Edit: true, Add: true, Delete: true}, m[r], "resource %s", r)
	}

	// Callers get their own copy
	m[domain.ResourceAdmin] = domain.Capabilities{}
	require.True(t, domain.FullAccess()[domain.ResourceAdmin].Delete)
}

func TestDefaultAccess(t *testing.T) {
	m := domain.DefaultAccess()
	require.Len(t, m, len(domain.AllResources))
	require.Equal(t, domain.Capabilities{View: true}, m[domain.ResourceAssets])
	require.Equal(t, domain.Capabilities{View: true}, m[domain.ResourceLicenses])
	require.Equal(t, domain.Capabilities{}, m[domain.ResourceUsers])
	require.Equal(t, domain.Capabilities{}, m[domain.ResourceAdmin])
}

func TestNormalize(t *testing.T) {
	in := domain.PermissionMatrix{
		domain.ResourceReports: {View: true, Add: true},
		"spaceships":           {View: true},
	}

	out := in.Normalize()
	require.Len(t, out, len(domain.AllResources))
	require.Equal(t, domain.Capabilities{View: true, Add: true}, out[domain.ResourceReports])
	require.Equal(t, domain.Capabilities{}, out[domain.ResourceAssets])
	_, ok := out["spaceships"]
	require.False(t, ok)

	require.True(t, out.Can(domain.ResourceReports, func(c domain.Capabilities) bool { return c.Add }))
	require.False(t, out.Can(domain.ResourceReports, func(c domain.Capabilities) bool { return c.Delete }))
}

func TestUserHasMFA(t *testing.T) {
	secret := "JBSWY3DPEHPK3PXP"
	empty := ""

	require.True(t, (&domain.User{MFAEnabled: true, MFASecret: &secret}).HasMFA())
	require.False(t, (&domain.User{MFAEnabled: true}).HasMFA())
	require.False(t, (&domain.User{MFAEnabled: true, MFASecret: &empty}).HasMFA())
	require.False(t, (&domain.User{MFASecret: &secret}).HasMFA())
}

func TestExpiry(t *testing.T) {
	now := time.Now()
	require.True(t, domain.Session{ExpiresAt: now}.Expired(now))
	require.False(t, domain.Session{ExpiresAt: now.Add(time.Second)}.Expired(now))
	require.True(t, domain.EnrollmentTicket{ExpiresAt: now.Add(-time.Second)}.Expired(now))
}

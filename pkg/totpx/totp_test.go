package totpx_test

import (
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/aussiebroadwan/assettrack/pkg/totpx"
	"github.com/stretchr/testify/require"
)

const testSecret = "JBSWY3DPEHPK3PXPJBSWY3DPEHPK3PXP"

// Middle of a 30s step so adding whole steps never lands on a boundary
var base = time.Unix(1700000025, 0).UTC()

func TestGenerateSecret(t *testing.T) {
	s, err := totpx.GenerateSecret("AssetTrack", "alice")
	require.NoError(t, err)
	require.NotEmpty(t, s.Base32)

	u, err := url.Parse(s.URL)
	require.NoError(t, err)
	require.Equal(t, "otpauth", u.Scheme)
	require.Equal(t, "totp", u.Host)
	require.Contains(t, u.Path, "alice")
	require.Equal(t, "AssetTrack", u.Query().Get("issuer"))
	require.Equal(t, s.Base32, u.Query().Get("secret"))

	other, err := totpx.GenerateSecret("AssetTrack", "alice")
	require.NoError(t, err)
	require.NotEqual(t, s.Base32, other.Base32, "secrets must be random")
}

func TestRenderQRCode(t *testing.T) {
	s, err := totpx.GenerateSecret("AssetTrack", "alice")
	require.NoError(t, err)

	img, err := totpx.RenderQRCode(s.URL)
	require.NoError(t, err)
	require.True(t, strings.HasPrefix(img, "data:image/png;base64,"))
	require.Greater(t, len(img), len("data:image/png;base64,"))

	_, err = totpx.RenderQRCode("not a url\x7f")
	require.Error(t, err)
}

func TestVerifyAt_Window(t *testing.T) {
	tests := []struct {
		name   string
		offset time.Duration
		want   bool
	}{
		{"current step", 0, true},
		{"one step behind", -30 * time.Second, true},
		{"one step ahead", 30 * time.Second, true},
		{"two steps behind", -60 * time.Second, true},
		{"two steps ahead", 60 * time.Second, true},
		{"three steps behind", -90 * time.Second, false},
		{"three steps ahead", 90 * time.Second, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			code, err := totpx.CodeAt(testSecret, base.Add(tt.offset))
			require.NoError(t, err)

			got := totpx.VerifyAt(testSecret, code, totpx.DefaultWindow, base)
			require.Equal(t, tt.want, got)
		})
	}
}

func TestVerifyAt_ZeroWindow(t *testing.T) {
	code, err := totpx.CodeAt(testSecret, base.Add(-30*time.Second))
	require.NoError(t, err)

	require.False(t, totpx.VerifyAt(testSecret, code, 0, base))
}

func TestVerify_RejectsMalformedCodes(t *testing.T) {
	for _, code := range []string{
		"",
		"12345",
		"1234567",
		"12345a",
		" 123456",
		"123456 ",
		"12-456",
		"１２３４５６",
	} {
		require.False(t, totpx.ValidFormat(code), "code %q should be malformed", code)
		require.False(t, totpx.Verify(testSecret, code, totpx.DefaultWindow), "code %q should be rejected", code)
	}
}

func TestVerify_EmptySecret(t *testing.T) {
	require.False(t, totpx.Verify("", "123456", totpx.DefaultWindow))
}

func TestVerify_CurrentCode(t *testing.T) {
	s, err := totpx.GenerateSecret("AssetTrack", "bob")
	require.NoError(t, err)

	code, err := totpx.CodeAt(s.Base32, time.Now())
	require.NoError(t, err)
	require.True(t, totpx.ValidFormat(code))
	require.True(t, totpx.Verify(s.Base32, code, totpx.DefaultWindow))
}

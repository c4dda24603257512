package jwtx_test

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/aussiebroadwan/assettrack/pkg/jwtx"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"
)

const exampleIssuer = "assettrack"

var (
	secretA = bytes.Repeat([]byte("a"), 32)
	secretB = bytes.Repeat([]byte("b"), 32)
)

func TestValidateIssuer(t *testing.T) {
	c := &jwtx.Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer: exampleIssuer,
		},
	}

	t.Run("matching issuer", func(t *testing.T) {
		require.NoError(t, c.ValidateIssuer(exampleIssuer))
	})

	t.Run("empty expected issuer", func(t *testing.T) {
		require.NoError(t, c.ValidateIssuer(""))
	})

	t.Run("mismatched issuer", func(t *testing.T) {
		err := c.ValidateIssuer("someone-else")
		require.ErrorIs(t, err, jwtx.ErrIssuer)
	})
}

func TestValidateExpiry(t *testing.T) {
	now := time.Now().UTC()

	t.Run("valid token", func(t *testing.T) {
		claims := jwtx.NewSessionClaims("sid", exampleIssuer, time.Minute, now)
		require.NoError(t, claims.ValidateExpiry())
	})

	t.Run("expired token", func(t *testing.T) {
		claims := jwtx.NewSessionClaims("sid", exampleIssuer, time.Minute, now.Add(-2*time.Minute))
		require.ErrorIs(t, claims.ValidateExpiry(), jwtx.ErrExpired)
	})

	t.Run("not yet valid", func(t *testing.T) {
		claims := jwtx.NewSessionClaims("sid", exampleIssuer, time.Hour, now.Add(time.Minute))
		require.ErrorIs(t, claims.ValidateExpiry(), jwtx.ErrNotYetValid)
	})

	t.Run("leeway covers skew", func(t *testing.T) {
		claims := jwtx.NewSessionClaims("sid", exampleIssuer, time.Hour, now.Add(10*time.Second))
		require.NoError(t, claims.ValidateExpiryWithLeeway(30*time.Second))
	})
}

func TestHS256SignAndVerify(t *testing.T) {
	keys := jwtx.NewKeySet()
	signer, err := jwtx.NewSignerHS256(secretA, keys)
	require.NoError(t, err)
	require.NoError(t, signer.Validate())
	require.Equal(t, "HS256", signer.Alg())
	require.True(t, keys.IsReady())

	token, err := signer.Sign(jwtx.NewSessionClaims("session-abc", exampleIssuer, time.Hour, time.Now()))
	require.NoError(t, err)

	verifier := jwtx.NewVerifierHS256(keys, exampleIssuer)
	claims, err := verifier.Verify(token)
	require.NoError(t, err)
	require.Equal(t, "session-abc", claims.SessionID())
}

func TestHS256Verify_Rejects(t *testing.T) {
	keys := jwtx.NewKeySet()
	signer, err := jwtx.NewSignerHS256(secretA, keys)
	require.NoError(t, err)
	verifier := jwtx.NewVerifierHS256(keys, exampleIssuer)

	t.Run("empty", func(t *testing.T) {
		_, err := verifier.Verify("")
		require.ErrorIs(t, err, jwtx.ErrMalformed)
	})

	t.Run("garbage", func(t *testing.T) {
		_, err := verifier.Verify("not.a.jwt")
		require.Error(t, err)
	})

	t.Run("unknown key", func(t *testing.T) {
		other, err := jwtx.NewSignerHS256(secretB, jwtx.NewKeySet())
		require.NoError(t, err)
		token, err := other.Sign(jwtx.NewSessionClaims("sid", exampleIssuer, time.Hour, time.Now()))
		require.NoError(t, err)

		_, err = verifier.Verify(token)
		require.ErrorIs(t, err, jwtx.ErrUnknownKID)
	})

	t.Run("tampered signature", func(t *testing.T) {
		token, err := signer.Sign(jwtx.NewSessionClaims("sid", exampleIssuer, time.Hour, time.Now()))
		require.NoError(t, err)

		parts := strings.Split(token, ".")
		require.Len(t, parts, 3)
		sig := []byte(parts[2])
		if sig[0] == 'A' {
			sig[0] = 'B'
		} else {
			sig[0] = 'A'
		}
		_, err = verifier.Verify(parts[0] + "." + parts[1] + "." + string(sig))
		require.ErrorIs(t, err, jwtx.ErrInvalidSig)
	})

	t.Run("expired", func(t *testing.T) {
		token, err := signer.Sign(jwtx.NewSessionClaims("sid", exampleIssuer, time.Minute, time.Now().Add(-time.Hour)))
		require.NoError(t, err)

		_, err = verifier.Verify(token)
		require.ErrorIs(t, err, jwtx.ErrExpired)
	})

	t.Run("wrong issuer", func(t *testing.T) {
		token, err := signer.Sign(jwtx.NewSessionClaims("sid", "elsewhere", time.Hour, time.Now()))
		require.NoError(t, err)

		_, err = verifier.Verify(token)
		require.ErrorIs(t, err, jwtx.ErrIssuer)
	})

	t.Run("missing session id", func(t *testing.T) {
		token, err := signer.Sign(jwtx.NewSessionClaims("", exampleIssuer, time.Hour, time.Now()))
		require.NoError(t, err)

		_, err = verifier.Verify(token)
		require.ErrorIs(t, err, jwtx.ErrMissingJTI)
	})

	t.Run("none algorithm", func(t *testing.T) {
		unsigned := jwt.NewWithClaims(jwt.SigningMethodNone, jwtx.NewSessionClaims("sid", exampleIssuer, time.Hour, time.Now()))
		unsigned.Header["kid"] = signer.KID()
		token, err := unsigned.SignedString(jwt.UnsafeAllowNoneSignatureType)
		require.NoError(t, err)

		_, err = verifier.Verify(token)
		require.Error(t, err)
	})
}

func TestKeySet_Rotation(t *testing.T) {
	keys := jwtx.NewKeySet()

	old, err := jwtx.NewSignerHS256(secretA, keys)
	require.NoError(t, err)
	oldToken, err := old.Sign(jwtx.NewSessionClaims("old-session", exampleIssuer, time.Hour, time.Now()))
	require.NoError(t, err)

	current, err := jwtx.NewSignerHS256(secretB, keys)
	require.NoError(t, err)
	require.NotEqual(t, old.KID(), current.KID())

	verifier := jwtx.NewVerifierHS256(keys, exampleIssuer)
	claims, err := verifier.Verify(oldToken)
	require.NoError(t, err, "cookies signed with a retired secret still verify")
	require.Equal(t, "old-session", claims.SessionID())
}

func TestKeySet_WeakSecret(t *testing.T) {
	_, err := jwtx.NewSignerHS256([]byte("short"), jwtx.NewKeySet())
	require.ErrorIs(t, err, jwtx.ErrWeakSecret)
}

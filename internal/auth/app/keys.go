package app

import (
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/aussiebroadwan/assettrack/pkg/cryptox"
	"github.com/aussiebroadwan/assettrack/pkg/jwtx"
)

// sessionSecretSize is the number of random bytes in a generated cookie secret.
const sessionSecretSize = 32

// SessionKeys signs and verifies session cookies.
type SessionKeys struct {
	KeySet   *jwtx.KeySet
	Signer   *jwtx.HS256Signer
	Verifier *jwtx.HS256Verifier
}

// InitSessionKeys loads the cookie signing secret, generating it on first
// start.
//
// Rotation: point SESSION_PREVIOUS_SECRET_FILE at the old secret file and
// SESSION_SECRET_FILE at a new (or missing) one. Cookies signed with the old
// secret keep verifying, and every refreshed cookie is re-signed with the new
// one. Once SESSION_TTL has passed the previous file can be dropped.
func InitSessionKeys(cfg Config, logger *slog.Logger) (*SessionKeys, error) {
	secret, err := cryptox.LoadOrGenerateSecret(cfg.SessionSecretFile, sessionSecretSize)
	if err != nil {
		return nil, fmt.Errorf("failed to load session secret: %w", err)
	}

	keys := jwtx.NewKeySet()
	signer, err := jwtx.NewSignerHS256([]byte(secret), keys)
	if err != nil {
		return nil, fmt.Errorf("invalid session secret in %s: %w", cfg.SessionSecretFile, err)
	}

	if cfg.PreviousSessionSecretFile != "" {
		data, err := os.ReadFile(cfg.PreviousSessionSecretFile)
		if err != nil {
			return nil, fmt.Errorf("failed to read previous session secret: %w", err)
		}
		kid, err := keys.Add([]byte(strings.TrimSpace(string(data))))
		if err != nil {
			return nil, fmt.Errorf("invalid previous session secret: %w", err)
		}
		logger.Info("accepting cookies signed with previous session secret", "kid", kid)
	}

	logger.Info("session signing key loaded", "kid", signer.KID())

	return &SessionKeys{
		KeySet:   keys,
		Signer:   signer,
		Verifier: jwtx.NewVerifierHS256(keys, cfg.Issuer),
	}, nil
}

package jwtx

import (
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"sync"
)

var ErrNoKey = errors.New("jwtx: key not found")

// minSecretLen is the shortest HMAC secret we accept (256 bits).
const minSecretLen = 32

// KeySet holds every HMAC secret a cookie may have been signed with.
// The active secret signs; retired secrets only verify, so rotating the
// session secret file does not log everybody out at once.
type KeySet struct {
	mu   sync.RWMutex
	keys map[string][]byte // kid: secret
}

// NewKeySet returns an empty KeySet.
func NewKeySet() *KeySet {
	return &KeySet{
		keys: make(map[string][]byte),
	}
}

// KeyID derives a stable, non-reversible kid for a secret.
func KeyID(secret []byte) string {
	sum := sha256.Sum256(secret)
	return base64.RawURLEncoding.EncodeToString(sum[:8])
}

// Add registers a secret and returns its kid.
func (k *KeySet) Add(secret []byte) (string, error) {
	if len(secret) < minSecretLen {
		return "", ErrWeakSecret
	}

	kid := KeyID(secret)

	k.mu.Lock()
	defer k.mu.Unlock()
	k.keys[kid] = append([]byte(nil), secret...)
	return kid, nil
}

// Get returns the secret for the given kid.
func (k *KeySet) Get(kid string) ([]byte, error) {
	k.mu.RLock()
	defer k.mu.RUnlock()
	if key, ok := k.keys[kid]; ok {
		return key, nil
	}
	return nil, ErrNoKey
}

// IsReady returns true if the KeySet has at least one key loaded.
func (k *KeySet) IsReady() bool {
	k.mu.RLock()
	defer k.mu.RUnlock()
	return len(k.keys) > 0
}

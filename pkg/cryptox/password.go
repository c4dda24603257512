package cryptox

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/hex"
	"fmt"
	"math/big"
	"strings"

	"golang.org/x/crypto/argon2"
)

// HashSeparator splits the derived key from the salt in a stored credential.
// A stored value without it is a legacy plaintext password.
const HashSeparator = "."

// HashPassword derives an Argon2id key from the password with a fresh random
// salt and returns "hex(key).hex(salt)".
func HashPassword(password string) (string, error) {
	salt := make([]byte, saltLength)
	if _, err := rand.Read(salt); err != nil {
		return "", fmt.Errorf("failed to generate salt: %w", err)
	}

	key := deriveKey(password, salt)
	return hex.EncodeToString(key) + HashSeparator + hex.EncodeToString(salt), nil
}

// VerifyPassword reports whether password matches the stored "key.salt"
// credential. Anything malformed fails closed.
func VerifyPassword(password, stored string) bool {
	keyHex, saltHex, ok := strings.Cut(stored, HashSeparator)
	if !ok || keyHex == "" || saltHex == "" {
		return false
	}

	expected, err := hex.DecodeString(keyHex)
	if err != nil || len(expected) == 0 {
		return false
	}
	salt, err := hex.DecodeString(saltHex)
	if err != nil || len(salt) == 0 {
		return false
	}

	computed := argon2.IDKey(
		[]byte(password+GetPepper()),
		salt,
		iterations,
		memory,
		parallelism,
		uint32(len(expected)), // #nosec G115 - stored keys are 32 bytes
	)

	return subtle.ConstantTimeCompare(computed, expected) == 1
}

// IsHashed reports whether a stored credential is in the hashed format.
func IsHashed(stored string) bool {
	return strings.Contains(stored, HashSeparator)
}

// ComparePlaintext compares a legacy unhashed credential in constant time.
func ComparePlaintext(password, stored string) bool {
	if stored == "" {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(password), []byte(stored)) == 1
}

func deriveKey(password string, salt []byte) []byte {
	return argon2.IDKey(
		[]byte(password+GetPepper()),
		salt,
		iterations,
		memory,
		parallelism,
		keyLength,
	)
}

// GeneratePassword returns a random 12 character alphanumeric password.
func GeneratePassword() (string, error) {
	const charset = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
	const length = 12
	password := make([]byte, length)
	for i := range password {
		n, err := rand.Int(rand.Reader, big.NewInt(int64(len(charset))))
		if err != nil {
			return "", fmt.Errorf("failed to generate random password: %w", err)
		}
		password[i] = charset[n.Int64()]
	}
	return string(password), nil
}

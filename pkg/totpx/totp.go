// Package totpx wraps pquerna/otp with the fixed TOTP parameters used for
// account MFA: SHA1, six digits and a thirty second step.
package totpx

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"image/png"
	"time"

	"github.com/pquerna/otp"
	"github.com/pquerna/otp/totp"
)

const (
	// Period is the TOTP time step in seconds.
	Period = 30

	// DefaultWindow is how many steps either side of now are accepted
	// (±60s at a 30s step) to tolerate clock drift on the authenticator.
	DefaultWindow = 2

	// CodeLength is the number of digits in a code.
	CodeLength = 6

	qrSize = 200
)

// Secret is a freshly generated TOTP secret and its provisioning URI.
type Secret struct {
	Base32 string // base32 encoded shared secret
	URL    string // otpauth://totp/... provisioning URI
}

// GenerateSecret creates a new random secret labelled for issuer/account.
func GenerateSecret(issuer, account string) (Secret, error) {
	key, err := totp.Generate(totp.GenerateOpts{
		Issuer:      issuer,
		AccountName: account,
		Period:      Period,
		Digits:      otp.DigitsSix,
		Algorithm:   otp.AlgorithmSHA1,
	})
	if err != nil {
		return Secret{}, fmt.Errorf("failed to generate TOTP key: %w", err)
	}

	return Secret{Base32: key.Secret(), URL: key.URL()}, nil
}

// RenderQRCode encodes a provisioning URI as a PNG QR code data URI that a
// browser can put straight into an <img src>.
func RenderQRCode(otpauthURL string) (string, error) {
	key, err := otp.NewKeyFromURL(otpauthURL)
	if err != nil {
		return "", fmt.Errorf("invalid otpauth url: %w", err)
	}

	img, err := key.Image(qrSize, qrSize)
	if err != nil {
		return "", fmt.Errorf("failed to render QR code: %w", err)
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return "", fmt.Errorf("failed to encode QR code: %w", err)
	}

	return "data:image/png;base64," + base64.StdEncoding.EncodeToString(buf.Bytes()), nil
}

// ValidFormat reports whether code is exactly six ASCII digits.
func ValidFormat(code string) bool {
	if len(code) != CodeLength {
		return false
	}
	for i := range len(code) {
		if code[i] < '0' || code[i] > '9' {
			return false
		}
	}
	return true
}

// Verify checks code against secret at the current time, accepting window
// steps either side.
func Verify(secret, code string, window uint) bool {
	return VerifyAt(secret, code, window, time.Now())
}

// VerifyAt is Verify against an explicit instant.
func VerifyAt(secret, code string, window uint, at time.Time) bool {
	// Reject malformed input before doing any HMAC work
	if secret == "" || !ValidFormat(code) {
		return false
	}

	ok, err := totp.ValidateCustom(code, secret, at.UTC(), totp.ValidateOpts{
		Period:    Period,
		Skew:      window,
		Digits:    otp.DigitsSix,
		Algorithm: otp.AlgorithmSHA1,
	})
	if err != nil {
		return false
	}
	return ok
}

// CodeAt returns the code for secret at the given instant.
func CodeAt(secret string, at time.Time) (string, error) {
	return totp.GenerateCodeCustom(secret, at.UTC(), totp.ValidateOpts{
		Period:    Period,
		Digits:    otp.DigitsSix,
		Algorithm: otp.AlgorithmSHA1,
	})
}

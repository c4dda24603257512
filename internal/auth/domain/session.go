package domain

import "time"

// Session is a server-side login. ID is the opaque value carried (signed) in
// the cookie; stores persist it only as a fingerprint.
type Session struct {
	ID         string
	UserID     string
	CreatedAt  time.Time
	ExpiresAt  time.Time
	LastSeenAt time.Time
	IPAddress  string
	UserAgent  string
}

// Expired reports whether the session is past its expiry at now.
func (s Session) Expired(now time.Time) bool {
	return !now.Before(s.ExpiresAt)
}

// EnrollmentTicket holds a TOTP secret between /mfa/setup and /mfa/enable.
// It is bound to one session and dies with it or after its own TTL.
type EnrollmentTicket struct {
	SessionID string
	UserID    string
	Secret    string
	CreatedAt time.Time
	ExpiresAt time.Time
}

// Expired reports whether the ticket is past its expiry at now.
func (t EnrollmentTicket) Expired(now time.Time) bool {
	return !now.Before(t.ExpiresAt)
}

// MFASetup is what /mfa/setup hands to the client.
type MFASetup struct {
	Secret      string // base32 secret
	QRCode      string // data:image/png;base64,...
	ManualEntry string // secret grouped for typing
}

package domain

import (
	"strings"
	"time"
)

type User struct {
	ID                  string
	Username            string
	PasswordHash        string // hex(key).hex(salt), or legacy plaintext until first login
	FirstName           string
	LastName            string
	Email               string
	Department          string
	IsAdmin             bool    // canonical; see CoerceAdminFlag
	RoleID              *string // Foreign key to roles table (nullable)
	MFAEnabled          bool
	MFASecret           *string // TOTP secret (nullable, base32 encoded)
	ForcePasswordChange bool
	CreatedAt           time.Time
	UpdatedAt           time.Time
}

// HasMFA reports whether the user has a confirmed TOTP secret. Both the flag
// and the secret must be present; either alone is treated as not enrolled.
func (u *User) HasMFA() bool {
	return u.MFAEnabled && u.MFASecret != nil && *u.MFASecret != ""
}

// CoerceAdminFlag normalises the admin column into a bool. Historic rows
// stored it as a boolean, the integer 1 or the string "true"; anything else
// is not admin.
func CoerceAdminFlag(v any) bool {
	switch t := v.(type) {
	case nil:
		return false
	case bool:
		return t
	case int64:
		return t == 1
	case int:
		return t == 1
	case float64:
		return t == 1
	case string:
		return isTruthy(t)
	case []byte:
		return isTruthy(string(t))
	default:
		return false
	}
}

func isTruthy(s string) bool {
	s = strings.TrimSpace(s)
	return strings.EqualFold(s, "true") || s == "1"
}

package authsdk

import (
	"net/mail"
	"regexp"
	"strings"
)

const (
	requiredReason = "required"
	onlyAlphanum   = "must only contain a-z, A-Z, 0-9, ., _ or -"

	minPasswordLen = 8
	maxPasswordLen = 128
)

var reUsername = regexp.MustCompile(`^[A-Za-z0-9._-]+$`)

// Validate checks the login body. Only presence is checked; anything else
// would leak which usernames are valid.
func (r LoginRequest) Validate() map[string]string {
	errs := make(map[string]string)
	if strings.TrimSpace(r.Username) == "" {
		errs["username"] = requiredReason
	}
	if r.Password == "" {
		errs["password"] = requiredReason
	}
	return nilIfEmpty(errs)
}

// Validate checks if the register request fields are valid.
// Returns a map of field names to error messages, or nil if all fields are valid.
func (r RegisterRequest) Validate() map[string]string {
	errs := make(map[string]string)
	validateUsername(errs, "username", r.Username)
	validatePassword(errs, "password", r.Password)
	validateName(errs, "firstName", r.FirstName)
	validateName(errs, "lastName", r.LastName)
	validateEmail(errs, "email", r.Email)
	return nilIfEmpty(errs)
}

// Validate checks the first-admin request.
func (r SetupAdminRequest) Validate() map[string]string {
	errs := make(map[string]string)
	validateUsername(errs, "username", r.Username)
	validatePassword(errs, "password", r.Password)
	validateName(errs, "firstName", r.FirstName)
	validateName(errs, "lastName", r.LastName)
	validateEmail(errs, "email", r.Email)
	return nilIfEmpty(errs)
}

// Validate checks the new password. Whether the current password is needed
// depends on the account and is decided server side.
func (r ChangePasswordRequest) Validate() map[string]string {
	errs := make(map[string]string)
	validatePassword(errs, "newPassword", r.NewPassword)
	return nilIfEmpty(errs)
}

// Validate checks that a token is present. Its format is checked with the
// code itself so malformed and wrong codes answer alike.
func (r MFATokenRequest) Validate() map[string]string {
	if strings.TrimSpace(r.Token) == "" {
		return map[string]string{"token": requiredReason}
	}
	return nil
}

func (r MFAVerifyRequest) Validate() map[string]string {
	errs := make(map[string]string)
	if strings.TrimSpace(r.UserID) == "" {
		errs["userId"] = requiredReason
	}
	if strings.TrimSpace(r.Token) == "" {
		errs["token"] = requiredReason
	}
	return nilIfEmpty(errs)
}

func validateUsername(errs map[string]string, field, v string) {
	v = strings.TrimSpace(v)
	switch {
	case v == "":
		errs[field] = requiredReason
	case len(v) < 3 || len(v) > 32:
		errs[field] = "must be 3-32 characters"
	case !reUsername.MatchString(v):
		errs[field] = onlyAlphanum
	}
}

func validatePassword(errs map[string]string, field, pw string) {
	switch {
	case pw == "":
		errs[field] = requiredReason
	case len(pw) < minPasswordLen:
		errs[field] = "too short (min 8)"
	case len(pw) > maxPasswordLen:
		errs[field] = "too long (max 128)"
	}
}

func validateName(errs map[string]string, field, v string) {
	v = strings.TrimSpace(v)
	switch {
	case v == "":
		errs[field] = requiredReason
	case len(v) > 64:
		errs[field] = "too long (max 64)"
	}
}

func validateEmail(errs map[string]string, field, v string) {
	v = strings.TrimSpace(v)
	if v == "" {
		errs[field] = requiredReason
		return
	}
	if _, err := mail.ParseAddress(v); err != nil {
		errs[field] = "must be a valid email address"
	}
}

func nilIfEmpty(errs map[string]string) map[string]string {
	if len(errs) == 0 {
		return nil
	}
	return errs
}

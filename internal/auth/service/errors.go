package service

import "errors"

// Outcomes of the auth flows. Handlers map these to status codes; nothing
// in this package knows about HTTP.
var (
	ErrInvalidCredentials = errors.New("invalid username or password")
	ErrAccountLocked      = errors.New("too many failed attempts for this account")
	ErrTooManyAttempts    = errors.New("too many verification attempts")

	ErrInvalidTOTPCode     = errors.New("invalid TOTP code")
	ErrMFANotEnabled       = errors.New("MFA not enabled for this user")
	ErrMFAAlreadyEnabled   = errors.New("MFA already enabled for this user")
	ErrNoPendingEnrollment = errors.New("no MFA setup in progress")

	ErrUserNotFound            = errors.New("user not found")
	ErrUsernameTaken           = errors.New("username already exists")
	ErrWeakPassword            = errors.New("password must be at least 8 characters")
	ErrCurrentPasswordRequired = errors.New("current password is required")
	ErrCurrentPasswordMismatch = errors.New("current password is incorrect")

	ErrSetupAlreadyDone       = errors.New("setup has already been completed")
	ErrSetupResetDisabled     = errors.New("setup reset is disabled")
	ErrSetupResetUnauthorized = errors.New("invalid setup reset token")
)

// MinPasswordLength applies to every new password.
const MinPasswordLength = 8

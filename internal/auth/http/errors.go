package http

import (
	"errors"
	"net/http"

	"github.com/aussiebroadwan/assettrack/internal/auth/service"
	"github.com/aussiebroadwan/assettrack/pkg/authsdk"
	"github.com/aussiebroadwan/assettrack/pkg/httpx"
	"github.com/aussiebroadwan/assettrack/pkg/slogx"
)

var (
	errInvalidCode = authsdk.NewAPIError(http.StatusBadRequest, "Invalid verification code")

	errMFANotEnabled     = authsdk.NewAPIError(http.StatusBadRequest, "MFA is not enabled for this user")
	errMFAAlreadyEnabled = authsdk.NewAPIError(http.StatusBadRequest, "MFA is already enabled")
	errNoPendingSetup    = authsdk.NewAPIError(http.StatusBadRequest, "No MFA setup in progress. Start setup first.")

	errUsernameTaken   = authsdk.NewAPIError(http.StatusBadRequest, "Username already exists")
	errWeakPassword    = authsdk.NewAPIError(http.StatusBadRequest, "Password must be at least 8 characters")
	errCurrentRequired = authsdk.NewAPIError(http.StatusBadRequest, "Current password is required")
	errCurrentMismatch = authsdk.NewAPIError(http.StatusBadRequest, "Current password is incorrect")

	errSetupDone         = authsdk.NewAPIError(http.StatusBadRequest, "Setup has already been completed")
	errSetupResetOff     = authsdk.NewAPIError(http.StatusNotFound, "Not found")
	errSetupResetDenied  = authsdk.NewAPIError(http.StatusForbidden, "Invalid setup reset token")
	errSessionSaveFailed = authsdk.NewAPIError(http.StatusInternalServerError, "Failed to save session")
)

// writeServiceError maps a service error onto its response. Anything
// unrecognised is logged and answered with a generic 500.
func writeServiceError(w http.ResponseWriter, r *http.Request, err error, op string) {
	var apiErr *authsdk.APIError
	switch {
	case errors.Is(err, service.ErrInvalidCredentials), errors.Is(err, service.ErrAccountLocked):
		apiErr = authsdk.ErrInvalidCredentials
	case errors.Is(err, service.ErrInvalidTOTPCode):
		apiErr = errInvalidCode
	case errors.Is(err, service.ErrMFANotEnabled):
		apiErr = errMFANotEnabled
	case errors.Is(err, service.ErrMFAAlreadyEnabled):
		apiErr = errMFAAlreadyEnabled
	case errors.Is(err, service.ErrNoPendingEnrollment):
		apiErr = errNoPendingSetup
	case errors.Is(err, service.ErrUserNotFound):
		apiErr = authsdk.ErrUserNotFound
	case errors.Is(err, service.ErrUsernameTaken):
		apiErr = errUsernameTaken
	case errors.Is(err, service.ErrWeakPassword):
		apiErr = errWeakPassword
	case errors.Is(err, service.ErrCurrentPasswordRequired):
		apiErr = errCurrentRequired
	case errors.Is(err, service.ErrCurrentPasswordMismatch):
		apiErr = errCurrentMismatch
	case errors.Is(err, service.ErrTooManyAttempts):
		apiErr = authsdk.ErrTooManyAttempts
	case errors.Is(err, service.ErrSetupAlreadyDone):
		apiErr = errSetupDone
	case errors.Is(err, service.ErrSetupResetDisabled):
		apiErr = errSetupResetOff
	case errors.Is(err, service.ErrSetupResetUnauthorized):
		apiErr = errSetupResetDenied
	default:
		slogx.FromContext(r.Context()).Error(op+" failed", "err", err)
		apiErr = authsdk.ErrServerError
	}
	apiErr.WriteError(w)
}

// decodeRequest reads the JSON body into req and runs its validation. It
// writes the 400 itself and reports false when the request is unusable.
func decodeRequest[T interface{ Validate() map[string]string }](w http.ResponseWriter, r *http.Request, req *T) bool {
	if err := httpx.DecodeJSON(w, r, req); err != nil {
		slogx.FromContext(r.Context()).Warn("failed to parse request", "err", err)
		authsdk.ErrInvalidBody.WriteError(w)
		return false
	}
	if errs := (*req).Validate(); errs != nil {
		authsdk.NewValidationError(errs).WriteError(w)
		return false
	}
	return true
}

// principal returns the session caller. Routes using it sit behind
// httpx.RequireSession, so a miss is answered as unauthenticated.
func principal(w http.ResponseWriter, r *http.Request) (httpx.Principal, bool) {
	p, ok := httpx.PrincipalFromContext(r.Context())
	if !ok || p.UserID == "" {
		authsdk.ErrNotAuthenticated.WriteError(w)
		return httpx.Principal{}, false
	}
	return p, true
}

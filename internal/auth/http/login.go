package http

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/aussiebroadwan/assettrack/internal/auth/authlog"
	"github.com/aussiebroadwan/assettrack/internal/auth/domain"
	"github.com/aussiebroadwan/assettrack/internal/auth/service"
	"github.com/aussiebroadwan/assettrack/internal/auth/session"
	"github.com/aussiebroadwan/assettrack/pkg/authsdk"
	"github.com/aussiebroadwan/assettrack/pkg/httpx"
	"github.com/aussiebroadwan/assettrack/pkg/slogx"
)

// Reasons written to the auth log on failed_login.
const (
	reasonInvalidCredentials = "invalid_credentials"
	reasonAccountLocked      = "account_locked"
	reasonInvalidMFACode     = "invalid_mfa_code"
	reasonMFALocked          = "mfa_locked"
)

// LoginHandler serves the credential half of authentication: password
// login, logout and MFA verification.
type LoginHandler struct {
	AuthService *service.AuthService
	Sessions    *session.Manager
	AuthLog     authlog.Recorder
}

// HandleLogin handles POST /api/login
//
//	@Summary		Log in with username and password
//	@Description	Checks credentials and answers with the next step. Users with MFA get no session until /api/mfa/verify.
//	@Description	Users without MFA get a session and must either change their password or enrol MFA.
//	@Tags			Auth
//	@Accept			json
//	@Produce		json
//	@Param			request	body		authsdk.LoginRequest	true	"Credentials"
//	@Success		200		{object}	authsdk.LoginResponse	"Next login step"
//	@Failure		400		{object}	authsdk.APIError		"Validation failed"
//	@Failure		401		{object}	authsdk.APIError		"Invalid username or password"
//	@Failure		429		{object}	authsdk.APIError		"Too many requests"
//	@Failure		500		{object}	authsdk.APIError		"Internal server error"
//	@Router			/api/login [post].
func (h *LoginHandler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	var req authsdk.LoginRequest
	if !decodeRequest(w, r, &req) {
		return
	}
	username := strings.TrimSpace(req.Username)

	res, err := h.AuthService.Authenticate(ctx, username, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrAccountLocked):
			log.Warn("login attempt on locked account", "username", username)
			h.record(r, domain.ActionFailedLogin, username, reasonAccountLocked, nil)
		case errors.Is(err, service.ErrInvalidCredentials):
			log.Info("invalid login attempt", "username", username)
			h.record(r, domain.ActionFailedLogin, username, reasonInvalidCredentials, nil)
		}
		writeServiceError(w, r, err, "login")
		return
	}

	// Whatever the caller held before belongs to the previous login
	if err := h.Sessions.Destroy(ctx, w, r); err != nil {
		log.Warn("failed to drop previous session", "err", err)
	}

	u := res.User
	resp := authsdk.LoginResponse{UserID: u.ID, Username: u.Username}

	switch res.Outcome {
	case service.OutcomeMFARequired:
		resp.RequiresMFA = true
		resp.Message = "MFA verification required"
		httpx.WriteJSON(w, http.StatusOK, resp)
		return
	case service.OutcomePasswordChangeRequired:
		resp.RequiresPasswordChange = true
		resp.Message = "Password change required"
	case service.OutcomeMFASetupRequired:
		profile := toUserResponse(u, res.Permissions)
		resp.RequiresMFASetup = true
		resp.Message = "MFA setup required"
		resp.UserResponse = &profile
	}

	if !h.startSession(w, r, u) {
		return
	}
	log.Info("user logged in", "user_id", u.ID, "next", res.Outcome.String())
	httpx.WriteJSON(w, http.StatusOK, resp)
}

// HandleLogout handles POST /api/logout
//
//	@Summary		Log out
//	@Description	Ends the current session if there is one. Always answers 200.
//	@Tags			Auth
//	@Accept			json
//	@Produce		json
//	@Param			request	body		authsdk.LogoutRequest	false	"Optional reason, e.g. timeout"
//	@Success		200		{object}	authsdk.MessageResponse	"Logged out"
//	@Router			/api/logout [post].
func (h *LoginHandler) HandleLogout(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	var req authsdk.LogoutRequest
	if err := httpx.DecodeJSON(w, r, &req); err != nil {
		log.Debug("ignoring malformed logout body", "err", err)
	}

	if err := h.Sessions.Destroy(ctx, w, r); err != nil {
		log.Warn("failed to delete session on logout", "err", err)
	}

	if p, ok := httpx.PrincipalFromContext(ctx); ok {
		reason := strings.TrimSpace(req.Reason)
		if reason == "" {
			reason = "user_initiated"
		}
		loginTime := p.LoginTime
		h.record(r, domain.ActionLogout, p.Username, reason, &loginTime)
	}

	httpx.WriteJSON(w, http.StatusOK, authsdk.MessageResponse{
		Success: true,
		Message: "Logged out successfully",
	})
}

// HandleVerifyMFA handles POST /api/mfa/verify
//
//	@Summary		Complete an MFA login
//	@Description	Checks the TOTP code of a user whose login answered requiresMfa and starts their session.
//	@Tags			Auth
//	@Accept			json
//	@Produce		json
//	@Param			request	body		authsdk.MFAVerifyRequest	true	"User id and TOTP code"
//	@Success		200		{object}	authsdk.MFAVerifyResponse	"Session started"
//	@Failure		400		{object}	authsdk.APIError			"Invalid verification code or MFA not enabled"
//	@Failure		404		{object}	authsdk.APIError			"User not found"
//	@Failure		429		{object}	authsdk.APIError			"Too many attempts"
//	@Failure		500		{object}	authsdk.APIError			"Failed to save session"
//	@Router			/api/mfa/verify [post].
func (h *LoginHandler) HandleVerifyMFA(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	var req authsdk.MFAVerifyRequest
	if !decodeRequest(w, r, &req) {
		return
	}

	u, perms, err := h.AuthService.VerifyMFA(ctx, strings.TrimSpace(req.UserID), strings.TrimSpace(req.Token))
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidTOTPCode):
			log.Info("invalid MFA code", "user_id", req.UserID)
			h.record(r, domain.ActionFailedLogin, h.usernameFor(r, req.UserID), reasonInvalidMFACode, nil)
		case errors.Is(err, service.ErrTooManyAttempts):
			log.Warn("MFA verification locked", "user_id", req.UserID)
			h.record(r, domain.ActionFailedLogin, h.usernameFor(r, req.UserID), reasonMFALocked, nil)
		}
		writeServiceError(w, r, err, "verify mfa")
		return
	}

	if err := h.Sessions.Destroy(ctx, w, r); err != nil {
		log.Warn("failed to drop previous session", "err", err)
	}
	if !h.startSession(w, r, u) {
		return
	}

	log.Info("user logged in", "user_id", u.ID, "mfa", true)
	httpx.WriteJSON(w, http.StatusOK, authsdk.MFAVerifyResponse{
		Success: true,
		User:    toUserResponse(u, perms),
	})
}

// startSession creates the session for u and records the login. On failure
// it writes the 500 and reports false.
func (h *LoginHandler) startSession(w http.ResponseWriter, r *http.Request, u domain.User) bool {
	s, err := h.Sessions.Create(r.Context(), w, r, u.ID)
	if err != nil {
		slogx.FromContext(r.Context()).Error("failed to create session", "user_id", u.ID, "err", err)
		errSessionSaveFailed.WriteError(w)
		return false
	}

	loginTime := s.CreatedAt
	h.record(r, domain.ActionLogin, u.Username, "", &loginTime)
	return true
}

// usernameFor looks up the username for the auth log. The id arrives from
// the client, so an unknown one is logged as given.
func (h *LoginHandler) usernameFor(r *http.Request, userID string) string {
	u, err := h.AuthService.Store.Users().GetUserByID(r.Context(), userID)
	if err != nil {
		return userID
	}
	return u.Username
}

func (h *LoginHandler) record(r *http.Request, action domain.AuthAction, username, reason string, loginTime *time.Time) {
	if h.AuthLog == nil {
		return
	}
	h.AuthLog.Record(r.Context(), domain.AuthEvent{
		Timestamp: time.Now().UTC(),
		Username:  username,
		Action:    action,
		IPAddress: httpx.ClientIP(r),
		UserAgent: r.UserAgent(),
		LoginTime: loginTime,
		Reason:    reason,
	})
}

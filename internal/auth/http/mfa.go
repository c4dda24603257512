package http

import (
	"net/http"
	"strings"

	"github.com/aussiebroadwan/assettrack/internal/auth/service"
	"github.com/aussiebroadwan/assettrack/pkg/authsdk"
	"github.com/aussiebroadwan/assettrack/pkg/httpx"
	"github.com/aussiebroadwan/assettrack/pkg/slogx"
)

// MFAHandler handles enrollment and removal of TOTP for logged in users.
// Completing an MFA login lives on LoginHandler.
type MFAHandler struct {
	MFAService *service.MFAService
}

// HandleSetup handles POST /api/mfa/setup
//
//	@Summary		Start MFA enrollment
//	@Description	Generates a TOTP secret and parks it on the session until /api/mfa/enable confirms it. Calling it again replaces the secret.
//	@Tags			MFA
//	@Produce		json
//	@Success		200	{object}	authsdk.MFASetupResponse	"Secret, QR code and grouped secret"
//	@Failure		400	{object}	authsdk.APIError			"MFA already enabled"
//	@Failure		401	{object}	authsdk.APIError			"Not authenticated"
//	@Failure		500	{object}	authsdk.APIError			"Internal server error"
//	@Router			/api/mfa/setup [post].
func (h *MFAHandler) HandleSetup(w http.ResponseWriter, r *http.Request) {
	p, ok := principal(w, r)
	if !ok {
		return
	}

	setup, err := h.MFAService.Setup(r.Context(), p.SessionID, p.UserID)
	if err != nil {
		writeServiceError(w, r, err, "mfa setup")
		return
	}

	httpx.WriteJSON(w, http.StatusOK, authsdk.MFASetupResponse{
		Secret:      setup.Secret,
		QRCode:      setup.QRCode,
		ManualEntry: setup.ManualEntry,
	})
}

// HandleEnable handles POST /api/mfa/enable
//
//	@Summary		Confirm MFA enrollment
//	@Description	Checks a code against the pending secret from /api/mfa/setup and turns MFA on.
//	@Tags			MFA
//	@Accept			json
//	@Produce		json
//	@Param			request	body		authsdk.MFATokenRequest	true	"Six digit code"
//	@Success		200		{object}	authsdk.MessageResponse	"MFA enabled"
//	@Failure		400		{object}	authsdk.APIError		"Invalid code or no setup in progress"
//	@Failure		401		{object}	authsdk.APIError		"Not authenticated"
//	@Router			/api/mfa/enable [post].
func (h *MFAHandler) HandleEnable(w http.ResponseWriter, r *http.Request) {
	p, ok := principal(w, r)
	if !ok {
		return
	}

	var req authsdk.MFATokenRequest
	if !decodeRequest(w, r, &req) {
		return
	}

	if err := h.MFAService.Enable(r.Context(), p.SessionID, p.UserID, strings.TrimSpace(req.Token)); err != nil {
		writeServiceError(w, r, err, "mfa enable")
		return
	}

	slogx.FromContext(r.Context()).Info("MFA enabled", "user_id", p.UserID)
	httpx.WriteJSON(w, http.StatusOK, authsdk.MessageResponse{
		Success: true,
		Message: "MFA enabled successfully",
	})
}

// HandleDisable handles POST /api/mfa/disable
//
//	@Summary		Turn MFA off
//	@Description	Requires a valid code from the current secret.
//	@Tags			MFA
//	@Accept			json
//	@Produce		json
//	@Param			request	body		authsdk.MFATokenRequest	true	"Six digit code"
//	@Success		200		{object}	authsdk.MessageResponse	"MFA disabled"
//	@Failure		400		{object}	authsdk.APIError		"Invalid code or MFA not enabled"
//	@Failure		401		{object}	authsdk.APIError		"Not authenticated"
//	@Router			/api/mfa/disable [post].
func (h *MFAHandler) HandleDisable(w http.ResponseWriter, r *http.Request) {
	p, ok := principal(w, r)
	if !ok {
		return
	}

	var req authsdk.MFATokenRequest
	if !decodeRequest(w, r, &req) {
		return
	}

	if err := h.MFAService.Disable(r.Context(), p.UserID, strings.TrimSpace(req.Token)); err != nil {
		writeServiceError(w, r, err, "mfa disable")
		return
	}

	slogx.FromContext(r.Context()).Info("MFA disabled", "user_id", p.UserID)
	httpx.WriteJSON(w, http.StatusOK, authsdk.MessageResponse{
		Success: true,
		Message: "MFA disabled successfully",
	})
}

// HandleStatus handles GET /api/mfa/status
//
//	@Summary		MFA status
//	@Tags			MFA
//	@Produce		json
//	@Success		200	{object}	authsdk.MFAStatusResponse	"Whether MFA is on"
//	@Failure		401	{object}	authsdk.APIError			"Not authenticated"
//	@Router			/api/mfa/status [get].
func (h *MFAHandler) HandleStatus(w http.ResponseWriter, r *http.Request) {
	p, ok := principal(w, r)
	if !ok {
		return
	}

	enabled, err := h.MFAService.Status(r.Context(), p.UserID)
	if err != nil {
		writeServiceError(w, r, err, "mfa status")
		return
	}

	httpx.WriteJSON(w, http.StatusOK, authsdk.MFAStatusResponse{Enabled: enabled})
}

// HandleAdminDisable handles POST /api/admin/disable-mfa/{userId}
//
//	@Summary		Turn MFA off for another user
//	@Description	Admin recovery for a user who lost their authenticator. No code needed.
//	@Tags			MFA
//	@Produce		json
//	@Param			userId	path		string					true	"Target user id"
//	@Success		200		{object}	authsdk.MessageResponse	"MFA disabled"
//	@Failure		400		{object}	authsdk.APIError		"MFA not enabled for that user"
//	@Failure		401		{object}	authsdk.APIError		"Not authenticated"
//	@Failure		403		{object}	authsdk.APIError		"Admin access required"
//	@Failure		404		{object}	authsdk.APIError		"User not found"
//	@Router			/api/admin/disable-mfa/{userId} [post].
func (h *MFAHandler) HandleAdminDisable(w http.ResponseWriter, r *http.Request) {
	p, ok := principal(w, r)
	if !ok {
		return
	}

	target := r.PathValue("userId")
	if err := h.MFAService.AdminDisable(r.Context(), target); err != nil {
		writeServiceError(w, r, err, "admin mfa disable")
		return
	}

	slogx.FromContext(r.Context()).Warn("MFA disabled by admin", "user_id", target, "admin_id", p.UserID)
	httpx.WriteJSON(w, http.StatusOK, authsdk.MessageResponse{
		Success: true,
		Message: "MFA disabled for user",
	})
}

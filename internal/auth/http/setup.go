package http

import (
	"net/http"
	"strings"

	"github.com/aussiebroadwan/assettrack/internal/auth/domain"
	"github.com/aussiebroadwan/assettrack/internal/auth/service"
	"github.com/aussiebroadwan/assettrack/pkg/authsdk"
	"github.com/aussiebroadwan/assettrack/pkg/httpx"
	"github.com/aussiebroadwan/assettrack/pkg/slogx"
)

type SetupHandler struct {
	SetupService *service.SetupService
	Permissions  *service.PermissionResolver
}

// HandleStatus handles GET /api/setup
//
//	@Summary		First-run status
//	@Tags			Setup
//	@Produce		json
//	@Success		200	{object}	authsdk.SetupStatusResponse	"Whether an admin still has to be created"
//	@Router			/api/setup [get].
func (h *SetupHandler) HandleStatus(w http.ResponseWriter, r *http.Request) {
	required, err := h.SetupService.Required(r.Context())
	if err != nil {
		writeServiceError(w, r, err, "setup status")
		return
	}
	httpx.WriteJSON(w, http.StatusOK, authsdk.SetupStatusResponse{SetupRequired: required})
}

// HandleCreateAdmin handles POST /api/setup/admin
//
//	@Summary		Create the first administrator
//	@Description	Only works while no user exists.
//	@Tags			Setup
//	@Accept			json
//	@Produce		json
//	@Param			request	body		authsdk.SetupAdminRequest	true	"Administrator"
//	@Success		201		{object}	authsdk.UserResponse		"Created administrator"
//	@Failure		400		{object}	authsdk.APIError			"Validation failed or setup already done"
//	@Router			/api/setup/admin [post].
func (h *SetupHandler) HandleCreateAdmin(w http.ResponseWriter, r *http.Request) {
	var req authsdk.SetupAdminRequest
	if !decodeRequest(w, r, &req) {
		return
	}

	u, err := h.SetupService.CreateAdmin(r.Context(), domain.SetupData{
		Username:   strings.TrimSpace(req.Username),
		Password:   req.Password,
		FirstName:  strings.TrimSpace(req.FirstName),
		LastName:   strings.TrimSpace(req.LastName),
		Email:      strings.TrimSpace(req.Email),
		Department: strings.TrimSpace(req.Department),
	})
	if err != nil {
		writeServiceError(w, r, err, "create admin")
		return
	}

	perms, err := h.Permissions.ForUser(r.Context(), u)
	if err != nil {
		writeServiceError(w, r, err, "resolve permissions")
		return
	}

	slogx.FromContext(r.Context()).Info("first administrator created", "user_id", u.ID)
	httpx.WriteJSON(w, http.StatusCreated, toUserResponse(u, perms))
}

// HandleReset handles POST /api/setup/reset
//
//	@Summary		Reset first-run setup
//	@Description	Deletes every user and session. Disabled unless the server has a reset token configured.
//	@Tags			Setup
//	@Produce		json
//	@Param			X-Setup-Reset-Token	header		string					true	"Configured reset token"
//	@Success		200					{object}	authsdk.MessageResponse	"Setup reset"
//	@Failure		403					{object}	authsdk.APIError		"Wrong token"
//	@Failure		404					{object}	authsdk.APIError		"Reset disabled"
//	@Router			/api/setup/reset [post].
func (h *SetupHandler) HandleReset(w http.ResponseWriter, r *http.Request) {
	token := r.Header.Get(authsdk.SetupResetTokenHeader)
	if err := h.SetupService.Reset(r.Context(), token); err != nil {
		writeServiceError(w, r, err, "setup reset")
		return
	}

	slogx.FromContext(r.Context()).Warn("setup reset, all users and sessions deleted")
	httpx.WriteJSON(w, http.StatusOK, authsdk.MessageResponse{
		Success: true,
		Message: "Setup has been reset",
	})
}

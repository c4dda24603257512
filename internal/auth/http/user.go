package http

import (
	"errors"
	"net/http"
	"strings"

	"github.com/aussiebroadwan/assettrack/internal/auth/service"
	"github.com/aussiebroadwan/assettrack/pkg/authsdk"
	"github.com/aussiebroadwan/assettrack/pkg/httpx"
	"github.com/aussiebroadwan/assettrack/pkg/slogx"
)

type UserHandler struct {
	AuthService *service.AuthService
}

// HandleRegister handles POST /api/register
//
//	@Summary		Register a user
//	@Description	Creates a user. isAdmin and roleId are only honoured when the caller is logged in as an admin.
//	@Tags			Users
//	@Accept			json
//	@Produce		json
//	@Param			request	body		authsdk.RegisterRequest	true	"New user"
//	@Success		201		{object}	authsdk.UserResponse	"Created user"
//	@Failure		400		{object}	authsdk.APIError		"Validation failed or username taken"
//	@Failure		500		{object}	authsdk.APIError		"Internal server error"
//	@Router			/api/register [post].
func (h *UserHandler) HandleRegister(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req authsdk.RegisterRequest
	if !decodeRequest(w, r, &req) {
		return
	}

	caller, _ := httpx.PrincipalFromContext(ctx)
	u, err := h.AuthService.Register(ctx, service.RegisterInput{
		Username:   strings.TrimSpace(req.Username),
		Password:   req.Password,
		FirstName:  strings.TrimSpace(req.FirstName),
		LastName:   strings.TrimSpace(req.LastName),
		Email:      strings.TrimSpace(req.Email),
		Department: strings.TrimSpace(req.Department),
		IsAdmin:    req.IsAdmin,
		RoleID:     req.RoleID,
	}, caller.IsAdmin)
	if err != nil {
		writeServiceError(w, r, err, "register")
		return
	}

	perms, err := h.AuthService.Permissions.ForUser(ctx, u)
	if err != nil {
		writeServiceError(w, r, err, "resolve permissions")
		return
	}

	slogx.FromContext(ctx).Info("user registered", "user_id", u.ID, "by", caller.UserID)
	httpx.WriteJSON(w, http.StatusCreated, toUserResponse(u, perms))
}

// HandleMe handles GET /api/user and GET /api/me
//
//	@Summary		Current user
//	@Description	Returns the logged in user with the permission matrix resolved from their admin flag and role.
//	@Tags			Users
//	@Produce		json
//	@Success		200	{object}	authsdk.UserResponse	"Profile and permissions"
//	@Failure		401	{object}	authsdk.APIError		"Not authenticated"
//	@Failure		500	{object}	authsdk.APIError		"Internal server error"
//	@Router			/api/user [get].
func (h *UserHandler) HandleMe(w http.ResponseWriter, r *http.Request) {
	p, ok := principal(w, r)
	if !ok {
		return
	}

	u, perms, err := h.AuthService.Profile(r.Context(), p.UserID)
	if errors.Is(err, service.ErrUserNotFound) {
		authsdk.ErrNotAuthenticated.WriteError(w)
		return
	}
	if err != nil {
		writeServiceError(w, r, err, "load profile")
		return
	}

	httpx.WriteJSON(w, http.StatusOK, toUserResponse(u, perms))
}

// HandleChangePassword handles POST /api/user/change-password
//
//	@Summary		Change password
//	@Description	Voluntary changes need currentPassword. A forced change after login may omit it by sending forceChange.
//	@Tags			Users
//	@Accept			json
//	@Produce		json
//	@Param			request	body		authsdk.ChangePasswordRequest	true	"Passwords"
//	@Success		200		{object}	authsdk.MessageResponse			"Password changed"
//	@Failure		400		{object}	authsdk.APIError				"Validation failed or wrong current password"
//	@Failure		401		{object}	authsdk.APIError				"Not authenticated"
//	@Failure		500		{object}	authsdk.APIError				"Internal server error"
//	@Router			/api/user/change-password [post].
func (h *UserHandler) HandleChangePassword(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	p, ok := principal(w, r)
	if !ok {
		return
	}

	var req authsdk.ChangePasswordRequest
	if !decodeRequest(w, r, &req) {
		return
	}

	err := h.AuthService.ChangePassword(ctx, p.UserID, service.ChangePasswordInput{
		CurrentPassword: req.CurrentPassword,
		NewPassword:     req.NewPassword,
		ForceChange:     req.ForceChange,
	})
	if errors.Is(err, service.ErrUserNotFound) {
		authsdk.ErrNotAuthenticated.WriteError(w)
		return
	}
	if err != nil {
		writeServiceError(w, r, err, "change password")
		return
	}

	slogx.FromContext(ctx).Info("password changed", "user_id", p.UserID, "forced", req.ForceChange)
	httpx.WriteJSON(w, http.StatusOK, authsdk.MessageResponse{
		Success: true,
		Message: "Password changed successfully",
	})
}

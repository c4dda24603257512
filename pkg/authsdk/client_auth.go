package authsdk

import (
	"context"
	"net/http"
)

// Login submits credentials. A nil error means one of the continuations in
// LoginResponse; wrong credentials come back as an *APIError with status 401.
func (c *SDKClient) Login(ctx context.Context, username, password string) (*LoginResponse, error) {
	var out LoginResponse
	req := LoginRequest{Username: username, Password: password}
	if err := c.call(ctx, http.MethodPost, "/api/login", req, &out, http.StatusOK); err != nil {
		return nil, err
	}
	return &out, nil
}

// Logout ends the current session. The server answers 200 even without one.
func (c *SDKClient) Logout(ctx context.Context, reason string) error {
	return c.call(ctx, http.MethodPost, "/api/logout", LogoutRequest{Reason: reason}, nil, http.StatusOK)
}

// Register creates a user. Run it from an admin session to set IsAdmin.
func (c *SDKClient) Register(ctx context.Context, req RegisterRequest) (*UserResponse, error) {
	var out UserResponse
	if err := c.call(ctx, http.MethodPost, "/api/register", req, &out, http.StatusCreated); err != nil {
		return nil, err
	}
	return &out, nil
}

// Me returns the logged in user and their permissions.
func (c *SDKClient) Me(ctx context.Context) (*UserResponse, error) {
	var out UserResponse
	if err := c.call(ctx, http.MethodGet, "/api/user", nil, &out, http.StatusOK); err != nil {
		return nil, err
	}
	return &out, nil
}

// ChangePassword changes the logged in user's password.
func (c *SDKClient) ChangePassword(ctx context.Context, req ChangePasswordRequest) (*MessageResponse, error) {
	var out MessageResponse
	if err := c.call(ctx, http.MethodPost, "/api/user/change-password", req, &out, http.StatusOK); err != nil {
		return nil, err
	}
	return &out, nil
}

// ListRoles returns every role. Admin only.
func (c *SDKClient) ListRoles(ctx context.Context) (*ListRolesResponse, error) {
	var out ListRolesResponse
	if err := c.call(ctx, http.MethodGet, "/api/roles", nil, &out, http.StatusOK); err != nil {
		return nil, err
	}
	return &out, nil
}

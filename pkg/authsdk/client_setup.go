package authsdk

import (
	"context"
	"net/http"
)

// SetupStatus reports whether the first administrator is still missing.
func (c *SDKClient) SetupStatus(ctx context.Context) (*SetupStatusResponse, error) {
	var out SetupStatusResponse
	if err := c.call(ctx, http.MethodGet, "/api/setup", nil, &out, http.StatusOK); err != nil {
		return nil, err
	}
	return &out, nil
}

// CreateAdmin creates the first administrator. It only works once.
func (c *SDKClient) CreateAdmin(ctx context.Context, req SetupAdminRequest) (*UserResponse, error) {
	var out UserResponse
	if err := c.call(ctx, http.MethodPost, "/api/setup/admin", req, &out, http.StatusCreated); err != nil {
		return nil, err
	}
	return &out, nil
}

// ResetSetup deletes every user so setup can run again. The server must be
// configured with the same token.
func (c *SDKClient) ResetSetup(ctx context.Context, token string) (*MessageResponse, error) {
	resp, err := c.doRequest(ctx, http.MethodPost, "/api/setup/reset", nil, map[string]string{
		SetupResetTokenHeader: token,
	})
	if err != nil {
		return nil, err
	}

	var out MessageResponse
	if err := decodeJSON(resp, &out, http.StatusOK); err != nil {
		return nil, err
	}
	return &out, nil
}

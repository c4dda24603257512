package authsdk

import (
	"context"
	"net/http"
	"net/url"
)

// SetupMFA starts enrollment for the logged in user.
func (c *SDKClient) SetupMFA(ctx context.Context) (*MFASetupResponse, error) {
	var out MFASetupResponse
	if err := c.call(ctx, http.MethodPost, "/api/mfa/setup", nil, &out, http.StatusOK); err != nil {
		return nil, err
	}
	return &out, nil
}

// EnableMFA confirms enrollment with a code from the authenticator.
func (c *SDKClient) EnableMFA(ctx context.Context, code string) (*MessageResponse, error) {
	var out MessageResponse
	if err := c.call(ctx, http.MethodPost, "/api/mfa/enable", MFATokenRequest{Token: code}, &out, http.StatusOK); err != nil {
		return nil, err
	}
	return &out, nil
}

// DisableMFA turns MFA off for the logged in user.
func (c *SDKClient) DisableMFA(ctx context.Context, code string) (*MessageResponse, error) {
	var out MessageResponse
	if err := c.call(ctx, http.MethodPost, "/api/mfa/disable", MFATokenRequest{Token: code}, &out, http.StatusOK); err != nil {
		return nil, err
	}
	return &out, nil
}

// VerifyMFA finishes a login that answered RequiresMFA. On success the
// client holds a session.
func (c *SDKClient) VerifyMFA(ctx context.Context, userID, code string) (*MFAVerifyResponse, error) {
	var out MFAVerifyResponse
	req := MFAVerifyRequest{UserID: userID, Token: code}
	if err := c.call(ctx, http.MethodPost, "/api/mfa/verify", req, &out, http.StatusOK); err != nil {
		return nil, err
	}
	return &out, nil
}

// MFAStatus reports whether MFA is on for the logged in user.
func (c *SDKClient) MFAStatus(ctx context.Context) (*MFAStatusResponse, error) {
	var out MFAStatusResponse
	if err := c.call(ctx, http.MethodGet, "/api/mfa/status", nil, &out, http.StatusOK); err != nil {
		return nil, err
	}
	return &out, nil
}

// AdminDisableMFA turns MFA off for another user. Admin only.
func (c *SDKClient) AdminDisableMFA(ctx context.Context, userID string) (*MessageResponse, error) {
	var out MessageResponse
	path := "/api/admin/disable-mfa/" + url.PathEscape(userID)
	if err := c.call(ctx, http.MethodPost, path, nil, &out, http.StatusOK); err != nil {
		return nil, err
	}
	return &out, nil
}

package authsdk

// ============================================================================
// Permission Types
// ============================================================================

// Capabilities are the actions allowed on one resource.
type Capabilities struct {
	View   bool `json:"view"`
	Edit   bool `json:"edit"`
	Add    bool `json:"add"`
	Delete bool `json:"delete"`
}

// Permissions maps each resource name (assets, licenses, admin, ...) to its
// capabilities.
type Permissions map[string]Capabilities

// ============================================================================
// User Types
// ============================================================================

// UserResponse is the public profile of a user plus their permissions.
// Password hashes and MFA secrets never appear here.
type UserResponse struct {
	ID                  string      `json:"id"`
	Username            string      `json:"username"`
	FirstName           string      `json:"firstName"`
	LastName            string      `json:"lastName"`
	Email               string      `json:"email"`
	Department          string      `json:"department,omitempty"`
	IsAdmin             bool        `json:"isAdmin"`
	RoleID              *string     `json:"roleId"`
	MFAEnabled          bool        `json:"mfaEnabled"`
	ForcePasswordChange bool        `json:"forcePasswordChange"`
	Permissions         Permissions `json:"permissions,omitempty"`
}

// RegisterRequest creates a user. IsAdmin and RoleID only take effect when
// the caller is an admin.
type RegisterRequest struct {
	Username   string  `json:"username" example:"alice"`
	FirstName  string  `json:"firstName" example:"Alice"`
	LastName   string  `json:"lastName" example:"Liddell"`
	Email      string  `json:"email" example:"alice@example.com"`
	Department string  `json:"department,omitempty" example:"IT"`
	Password   string  `json:"password" example:"password123"`
	IsAdmin    bool    `json:"isAdmin,omitempty"`
	RoleID     *string `json:"roleId,omitempty"`
}

// ChangePasswordRequest changes the caller's password. CurrentPassword may
// be omitted only with ForceChange on an account flagged for a forced change.
type ChangePasswordRequest struct {
	CurrentPassword string `json:"currentPassword,omitempty"`
	NewPassword     string `json:"newPassword"`
	ForceChange     bool   `json:"forceChange,omitempty"`
}

// MessageResponse is returned by endpoints with nothing else to say.
type MessageResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// ============================================================================
// Login Types
// ============================================================================

// LoginRequest is the body of POST /api/login.
type LoginRequest struct {
	Username string `json:"username" example:"alice"`
	Password string `json:"password" example:"password123"`
}

// LoginResponse is one of three continuations. Exactly one Requires* flag
// is set. With RequiresMFASetup the full profile is inlined.
type LoginResponse struct {
	RequiresMFA            bool   `json:"requiresMfa,omitempty"`
	RequiresPasswordChange bool   `json:"requiresPasswordChange,omitempty"`
	RequiresMFASetup       bool   `json:"requiresMfaSetup,omitempty"`
	UserID                 string `json:"userId"`
	Username               string `json:"username"`
	Message                string `json:"message"`

	*UserResponse
}

// LogoutRequest optionally says why the user logged out (e.g. "timeout").
type LogoutRequest struct {
	Reason string `json:"reason,omitempty"`
}

// ============================================================================
// MFA Types
// ============================================================================

// MFASetupResponse carries a fresh secret for the authenticator app.
type MFASetupResponse struct {
	Secret      string `json:"secret" example:"JBSWY3DPEHPK3PXP"`
	QRCode      string `json:"qrCode" example:"data:image/png;base64,iVBORw0KGgo="`
	ManualEntry string `json:"manualEntry" example:"JBSW Y3DP EHPK 3PXP"`
}

// MFATokenRequest carries a six digit code for /mfa/enable and /mfa/disable.
type MFATokenRequest struct {
	Token string `json:"token" example:"123456"`
}

// MFAVerifyRequest completes a login that answered RequiresMFA.
type MFAVerifyRequest struct {
	UserID string `json:"userId"`
	Token  string `json:"token" example:"123456"`
}

// MFAVerifyResponse is returned once the session is established.
type MFAVerifyResponse struct {
	Success bool         `json:"success"`
	User    UserResponse `json:"user"`
}

// MFAStatusResponse reports whether MFA is on for the caller.
type MFAStatusResponse struct {
	Enabled bool `json:"enabled"`
}

// ============================================================================
// Setup Types
// ============================================================================

// SetupStatusResponse reports whether the first admin still has to be created.
type SetupStatusResponse struct {
	SetupRequired bool `json:"setupRequired"`
}

// SetupAdminRequest creates the first administrator.
type SetupAdminRequest struct {
	Username   string `json:"username" example:"admin"`
	Password   string `json:"password"`
	FirstName  string `json:"firstName"`
	LastName   string `json:"lastName"`
	Email      string `json:"email"`
	Department string `json:"department,omitempty"`
}

// SetupResetTokenHeader carries the token POST /api/setup/reset requires.
const SetupResetTokenHeader = "X-Setup-Reset-Token"

// ============================================================================
// Role Types
// ============================================================================

// RoleInfo represents a single role in the system.
type RoleInfo struct {
	ID          string      `json:"id"`
	Name        string      `json:"name"`
	Description string      `json:"description,omitempty"`
	Permissions Permissions `json:"permissions"`
}

// ListRolesResponse contains the list of all roles.
type ListRolesResponse struct {
	Roles []RoleInfo `json:"roles"`
}

// ============================================================================
// Health Types
// ============================================================================

// HealthResponse represents the response structure for health check endpoints.
// Used by both /livez and /readyz endpoints (readyz includes additional Checks field).
type HealthResponse struct {
	// Status indicates the overall health status (e.g., "ok")
	Status string `json:"status"`

	// Uptime is the service uptime duration as a string (e.g., "1h23m45s")
	Uptime string `json:"uptime,omitempty"`

	// Version is the service version string
	Version string `json:"version,omitempty"`

	// Checks contains readiness check results for critical dependencies (only for /readyz)
	Checks *HealthChecks `json:"checks,omitempty"`
}

// HealthChecks represents the status of critical service dependencies.
type HealthChecks struct {
	// Database indicates the database connection status
	Database string `json:"database"`

	// Sessions indicates whether session cookies can be signed
	Sessions string `json:"sessions"`
}

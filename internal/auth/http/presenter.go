package http

import (
	"github.com/aussiebroadwan/assettrack/internal/auth/domain"
	"github.com/aussiebroadwan/assettrack/pkg/authsdk"
)

func toPermissions(m domain.PermissionMatrix) authsdk.Permissions {
	if m == nil {
		return nil
	}
	out := make(authsdk.Permissions, len(m))
	for res, c := range m {
		out[string(res)] = authsdk.Capabilities{
			View:   c.View,
			Edit:   c.Edit,
			Add:    c.Add,
			Delete: c.Delete,
		}
	}
	return out
}

// toUserResponse is the only place a domain.User leaves the service. The
// password hash and MFA secret are never copied.
func toUserResponse(u domain.User, perms domain.PermissionMatrix) authsdk.UserResponse {
	return authsdk.UserResponse{
		ID:                  u.ID,
		Username:            u.Username,
		FirstName:           u.FirstName,
		LastName:            u.LastName,
		Email:               u.Email,
		Department:          u.Department,
		IsAdmin:             u.IsAdmin,
		RoleID:              u.RoleID,
		MFAEnabled:          u.HasMFA(),
		ForcePasswordChange: u.ForcePasswordChange,
		Permissions:         toPermissions(perms),
	}
}

func toRoleInfo(r domain.Role) authsdk.RoleInfo {
	return authsdk.RoleInfo{
		ID:          r.ID,
		Name:        r.Name,
		Description: r.Description,
		Permissions: toPermissions(r.Permissions.Normalize()),
	}
}

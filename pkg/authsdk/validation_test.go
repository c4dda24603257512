package authsdk

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRegisterRequest_Validate(t *testing.T) {
	valid := RegisterRequest{
		Username:  "alice",
		FirstName: "Alice",
		LastName:  "Liddell",
		Email:     "alice@example.com",
		Password:  "password123",
	}

	tests := []struct {
		name   string
		mutate func(*RegisterRequest)
		fields []string
	}{
		{"valid", func(*RegisterRequest) {}, nil},
		{"short username", func(r *RegisterRequest) { r.Username = "al" }, []string{"username"}},
		{"long username", func(r *RegisterRequest) { r.Username = strings.Repeat("a", 33) }, []string{"username"}},
		{"bad username chars", func(r *RegisterRequest) { r.Username = "alice smith" }, []string{"username"}},
		{"dotted username", func(r *RegisterRequest) { r.Username = "alice.smith" }, nil},
		{"short password", func(r *RegisterRequest) { r.Password = "1234567" }, []string{"password"}},
		{"long password", func(r *RegisterRequest) { r.Password = strings.Repeat("x", 129) }, []string{"password"}},
		{"bad email", func(r *RegisterRequest) { r.Email = "alice" }, []string{"email"}},
		{"blank names", func(r *RegisterRequest) { r.FirstName, r.LastName = " ", "" }, []string{"firstName", "lastName"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := valid
			tt.mutate(&req)

			errs := req.Validate()
			if tt.fields == nil {
				require.Nil(t, errs)
				return
			}
			require.Len(t, errs, len(tt.fields))
			for _, f := range tt.fields {
				require.Contains(t, errs, f)
			}
		})
	}
}

func TestLoginRequest_Validate(t *testing.T) {
	require.Nil(t, LoginRequest{Username: "x", Password: "y"}.Validate(), "login only checks presence")
	require.Equal(t, map[string]string{
		"username": requiredReason,
		"password": requiredReason,
	}, LoginRequest{Username: "  "}.Validate())
}

func TestMFARequests_Validate(t *testing.T) {
	require.Nil(t, MFATokenRequest{Token: "12ab"}.Validate(), "format is checked with the code")
	require.Contains(t, MFATokenRequest{}.Validate(), "token")

	errs := MFAVerifyRequest{}.Validate()
	require.Contains(t, errs, "userId")
	require.Contains(t, errs, "token")
}

func TestChangePasswordRequest_Validate(t *testing.T) {
	require.Nil(t, ChangePasswordRequest{NewPassword: "password123"}.Validate())
	require.Contains(t, ChangePasswordRequest{CurrentPassword: "x", NewPassword: "short"}.Validate(), "newPassword")
}

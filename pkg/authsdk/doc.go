/*
Package authsdk provides a client SDK for the AssetTrack authentication service,
along with the request and response types the service itself uses.

# Overview

Authentication is cookie based. SDKClient carries a cookie jar, so once a login
completes every later call on the same client is made as that user:

	client := authsdk.NewSDKClient("https://assets.example.com")

	status, err := client.SetupStatus(ctx)
	if status.SetupRequired {
		_, err = client.CreateAdmin(ctx, authsdk.SetupAdminRequest{...})
	}

# Login Continuations

Login answers 200 for every correct password, but only some answers open a
session. Check the flags on LoginResponse:

	res, err := client.Login(ctx, "alice", "Password123!")
	switch {
	case res.RequiresMFA:
		// No session yet. Ask for a code and finish the login.
		_, err = client.VerifyMFA(ctx, res.UserID, code)
	case res.RequiresPasswordChange:
		// Session open, but the user must pick a new password.
		_, err = client.ChangePassword(ctx, authsdk.ChangePasswordRequest{
			NewPassword: "...",
			ForceChange: true,
		})
	case res.RequiresMFASetup:
		// Session open, enrollment pending.
		setup, err := client.SetupMFA(ctx)
		_, err = client.EnableMFA(ctx, codeFrom(setup.Secret))
	}

# Error Handling

Every failed call returns an *APIError carrying the status code and the
server's message:

	if apiErr, ok := err.(*authsdk.APIError); ok {
		if apiErr.StatusCode == http.StatusUnauthorized {
			// log in again
		}
	}

Validation failures are 400 responses whose Details map names the offending
fields. The request types also expose Validate, which applies the same rules
client side.
*/
package authsdk

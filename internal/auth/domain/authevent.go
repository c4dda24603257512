package domain

import "time"

type AuthAction string

const (
	ActionLogin       AuthAction = "login"
	ActionLogout      AuthAction = "logout"
	ActionFailedLogin AuthAction = "failed_login"
)

// AuthEvent is one line of the auth audit log.
type AuthEvent struct {
	Timestamp time.Time  `json:"timestamp"`
	Username  string     `json:"username"`
	Action    AuthAction `json:"action"`
	IPAddress string     `json:"ipAddress"`
	UserAgent string     `json:"userAgent,omitempty"`
	LoginTime *time.Time `json:"loginTime,omitempty"`
	Reason    string     `json:"reason,omitempty"`
}

// SetupData is the first administrator created by the setup wizard.
type SetupData struct {
	Username   string
	Password   string
	FirstName  string
	LastName   string
	Email      string
	Department string
}

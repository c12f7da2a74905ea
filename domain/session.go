package domain

import "strings"

// Storage keys under which the session survives a restart.
const (
	SessionTokenKey = "todo_token"
	SessionUserKey  = "todo_user"
)

// Session represents the authenticated-user context. Both fields are empty when logged out.
type Session struct {
	Token    string `json:"token"`
	Username string `json:"username"`
}

// IsAuthenticated is derived solely from the token being non-empty.
func (s Session) IsAuthenticated() bool {
	return s.Token != ""
}

// Credentials is the body sent to the login and register endpoints.
type Credentials struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

func (c Credentials) Validate() error {
	if strings.TrimSpace(c.Username) == "" {
		return NewError(ErrCodeInvalid, "username is required")
	}
	if c.Password == "" {
		return NewError(ErrCodeInvalid, "password is required")
	}
	return nil
}

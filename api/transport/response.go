package transport

// LoginResponse is returned by POST /api/auth/login.
type LoginResponse struct {
	Username string `json:"username"`
	Token    string `json:"token"`
}

// ErrorBody is the best-effort shape of an API error payload.
type ErrorBody struct {
	Message string `json:"message,omitempty"`
	Error   string `json:"error,omitempty"`
}

// Text returns whichever message field the server filled in.
func (b ErrorBody) Text() string {
	if b.Message != "" {
		return b.Message
	}
	return b.Error
}

package client

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/fastygo/todoclient/api/transport"
	"github.com/fastygo/todoclient/domain"
)

// StatusError describes a non-2xx response. It is wrapped in a *domain.Error
// whose code follows the status.
type StatusError struct {
	StatusCode int
	Method     string
	Path       string
	Body       []byte
}

func (e *StatusError) Error() string {
	msg := e.Message()
	if msg == "" {
		msg = http.StatusText(e.StatusCode)
	}
	return fmt.Sprintf("%s %s: %d %s", e.Method, e.Path, e.StatusCode, msg)
}

// Message extracts a human readable message from the response body.
func (e *StatusError) Message() string {
	if e == nil || len(e.Body) == 0 {
		return ""
	}
	var body transport.ErrorBody
	if err := json.Unmarshal(e.Body, &body); err == nil && body.Text() != "" {
		return body.Text()
	}
	text := strings.TrimSpace(string(e.Body))
	if strings.HasPrefix(text, "{") || strings.HasPrefix(text, "<") {
		return ""
	}
	return text
}

// IsAuthFailure reports whether the response was a 401 or 403.
func (e *StatusError) IsAuthFailure() bool {
	return e != nil && (e.StatusCode == http.StatusUnauthorized || e.StatusCode == http.StatusForbidden)
}

// AsStatusError unwraps err to the underlying StatusError, if any.
func AsStatusError(err error) (*StatusError, bool) {
	var statusErr *StatusError
	if errors.As(err, &statusErr) {
		return statusErr, true
	}
	return nil, false
}

// IsAuthFailure reports whether err carries a 401 or 403 response.
func IsAuthFailure(err error) bool {
	statusErr, ok := AsStatusError(err)
	return ok && statusErr.IsAuthFailure()
}

func wrapStatus(statusErr *StatusError) error {
	msg := statusErr.Message()
	if msg == "" {
		msg = strings.ToLower(http.StatusText(statusErr.StatusCode))
	}
	return domain.WrapError(domain.CodeForStatus(statusErr.StatusCode), msg, statusErr)
}

package client

import (
	"context"

	"github.com/valyala/fasthttp"

	"github.com/fastygo/todoclient/api/transport"
	"github.com/fastygo/todoclient/domain"
)

const (
	loginPath    = "/api/auth/login"
	registerPath = "/api/auth/register"
)

// AuthAPI groups the authentication endpoints.
type AuthAPI struct {
	c *Client
}

func (c *Client) Auth() *AuthAPI {
	return &AuthAPI{c: c}
}

// Login exchanges credentials for a bearer token.
func (a *AuthAPI) Login(ctx context.Context, creds domain.Credentials) (*transport.LoginResponse, error) {
	var out transport.LoginResponse
	body := transport.AuthRequest{Username: creds.Username, Password: creds.Password}
	if err := a.c.Do(ctx, fasthttp.MethodPost, loginPath, body, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Register creates an account. The response body carries nothing the client needs.
func (a *AuthAPI) Register(ctx context.Context, creds domain.Credentials) error {
	body := transport.AuthRequest{Username: creds.Username, Password: creds.Password}
	return a.c.Do(ctx, fasthttp.MethodPost, registerPath, body, nil, nil)
}

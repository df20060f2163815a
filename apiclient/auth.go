package apiclient

import (
	"context"
	"fmt"
	"net/http"

	apperrors "github.com/jrsteele09/baysawarr-web/internal/errors"
	"github.com/jrsteele09/baysawarr-web/users"
)

const (
	pathMe    = "/auth/me"
	pathLogin = "/auth/login"
)

// LoginRequest is the body of POST /auth/login
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginResult is the unwrapped login response
type LoginResult struct {
	Token string      `json:"token"`
	User  *users.User `json:"user"`
}

// Me fetches the identity behind the persisted bearer token
func (c *Client) Me(ctx context.Context) (*users.User, error) {
	user, err := getData[users.User](ctx, c, http.MethodGet, pathMe, nil)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, fmt.Errorf("[apiclient Me] response has no data field: %w", apperrors.ErrMalformedIdentity)
	}
	if err := user.Validate(); err != nil {
		return nil, fmt.Errorf("[apiclient Me] %w", err)
	}
	return user, nil
}

// Login exchanges credentials for a bearer token. A 401 here means bad credentials and
// does not end the current session.
func (c *Client) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	var result LoginResult
	err := c.doJSON(withCredentialExchange(ctx), http.MethodPost, pathLogin, LoginRequest{Email: email, Password: password}, &result)
	if err != nil {
		return nil, err
	}
	if result.Token == "" {
		return nil, fmt.Errorf("[apiclient Login] response has no token: %w", apperrors.ErrMalformedLogin)
	}
	if err := result.User.Validate(); err != nil {
		return nil, fmt.Errorf("[apiclient Login] %w: %w", apperrors.ErrMalformedLogin, err)
	}
	return &result, nil
}

package httpapi

import (
	"context"
	"net/http"

	"github.com/linguahub/client/internal/domain/entities"
)

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type registerRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type refreshRequest struct {
	RefreshToken string `json:"refresh_token"`
}

type refreshResponse struct {
	AccessToken string `json:"access_token"`
}

// Login exchanges credentials for a token pair and the user object.
func (c *Client) Login(ctx context.Context, email, password string) (*entities.AuthResult, error) {
	var res entities.AuthResult
	err := c.do(ctx, http.MethodPost, "/auth/login", requestOptions{}, loginRequest{Email: email, Password: password}, &res)
	if err != nil {
		return nil, err
	}
	return &res, nil
}

// Register creates an account and returns the same payload as Login.
// Duplicate emails are rejected by the backend.
func (c *Client) Register(ctx context.Context, name, email, password string) (*entities.AuthResult, error) {
	var res entities.AuthResult
	err := c.do(ctx, http.MethodPost, "/auth/register", requestOptions{}, registerRequest{Name: name, Email: email, Password: password}, &res)
	if err != nil {
		return nil, err
	}
	return &res, nil
}

// RefreshToken exchanges the refresh token for a new access token. The call
// is deliberately unauthenticated so a rejected renewal cannot recurse into
// another renewal.
func (c *Client) RefreshToken(ctx context.Context, refreshToken string) (string, error) {
	var res refreshResponse
	err := c.do(ctx, http.MethodPost, "/auth/refresh", requestOptions{}, refreshRequest{RefreshToken: refreshToken}, &res)
	if err != nil {
		return "", err
	}
	return res.AccessToken, nil
}

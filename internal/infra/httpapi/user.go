package httpapi

import (
	"context"
	"net/http"

	"github.com/linguahub/client/internal/domain/entities"
)

// Profile re-fetches the current user's profile.
func (c *Client) Profile(ctx context.Context) (*entities.User, error) {
	var user entities.User
	err := c.do(ctx, http.MethodGet, "/user/profile", requestOptions{authenticated: true}, nil, &user)
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// UpdateProfile applies a partial profile update and returns the updated user.
func (c *Client) UpdateProfile(ctx context.Context, patch entities.UserPatch) (*entities.User, error) {
	var user entities.User
	err := c.do(ctx, http.MethodPut, "/user/profile", requestOptions{authenticated: true}, patch, &user)
	if err != nil {
		return nil, err
	}
	return &user, nil
}

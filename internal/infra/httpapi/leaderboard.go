package httpapi

import (
	"context"
	"net/http"

	"github.com/linguahub/client/internal/domain/entities"
)

// Leaderboard returns the points ranking.
func (c *Client) Leaderboard(ctx context.Context) ([]*entities.LeaderboardEntry, error) {
	var entries []*entities.LeaderboardEntry
	err := c.do(ctx, http.MethodGet, "/leaderboard", requestOptions{authenticated: true}, nil, &entries)
	if err != nil {
		return nil, err
	}
	return entries, nil
}

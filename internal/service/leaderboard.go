package service

import (
	"context"
	"fmt"
	"sort"

	"github.com/linguahub/client/internal/domain/entities"
)

// LeaderboardService exposes the points ranking.
type LeaderboardService struct {
	api LeaderboardAPI
}

func NewLeaderboardService(api LeaderboardAPI) *LeaderboardService {
	return &LeaderboardService{api: api}
}

// Top returns the ranking ordered by points. Ranks are recomputed locally
// so rows stay consistent even when the backend omits them.
func (s *LeaderboardService) Top(ctx context.Context) ([]*entities.LeaderboardEntry, error) {
	entries, err := s.api.Leaderboard(ctx)
	if err != nil {
		return nil, fmt.Errorf("fetch leaderboard: %w", err)
	}

	sort.SliceStable(entries, func(i, j int) bool { return entries[i].Points > entries[j].Points })
	for i, e := range entries {
		e.Rank = i + 1
	}
	return entries, nil
}

// Rank locates the given user in the ranking.
func (s *LeaderboardService) Rank(entries []*entities.LeaderboardEntry, userID string) (int, bool) {
	for _, e := range entries {
		if e.UserID == userID {
			return e.Rank, true
		}
	}
	return 0, false
}

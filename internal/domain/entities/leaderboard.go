package entities

// LeaderboardEntry is one row of the points ranking.
type LeaderboardEntry struct {
	Rank   int    `json:"rank"`
	UserID string `json:"user_id"`
	Name   string `json:"name"`
	Level  string `json:"level"`
	Points int    `json:"points"`
	Avatar string `json:"avatar,omitempty"`
}

package entities

import "time"

// TopicRef is the minimal topic descriptor embedded in a progress entry.
type TopicRef struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Title   string `json:"title"`
	LevelID string `json:"level_id"`
}

// ProgressEntry is one user's completion state for one topic. The cache
// holds at most one entry per topic.
type ProgressEntry struct {
	ID          string     `json:"id"`
	UserID      string     `json:"user_id"`
	TopicID     string     `json:"topic_id"`
	Completed   bool       `json:"completed"`
	Score       int        `json:"score"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
	Topic       *TopicRef  `json:"topic,omitempty"`
}

// LevelID returns the level the entry's topic belongs to, or "" if the
// backend omitted the topic descriptor.
func (e *ProgressEntry) LevelID() string {
	if e.Topic == nil {
		return ""
	}
	return e.Topic.LevelID
}

// Percentage computes round(100 * completed / total), returning 0 when
// total is zero.
func Percentage(completed, total int) int {
	if total == 0 {
		return 0
	}
	return int(float64(completed)/float64(total)*100 + 0.5)
}

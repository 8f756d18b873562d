package entities

import "time"

// Level is one CEFR tier of the course catalog.
type Level struct {
	ID          string `json:"id"`
	Name        string `json:"name"` // CEFR code: A0..C2
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
	Order       int    `json:"order"`
	IsActive    bool   `json:"is_active"`

	Topics []Topic `json:"topics,omitempty"`
}

// Topic is a unit of learning content inside a level.
type Topic struct {
	ID          string `json:"id"`
	LevelID     string `json:"level_id"`
	Name        string `json:"name"`
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
	Content     string `json:"content,omitempty"`
	Order       int    `json:"order"`
	IsActive    bool   `json:"is_active"`

	Exercises []Exercise `json:"exercises,omitempty"`
}

// Exercise types as used by the backend.
const (
	ExerciseMultipleChoice = "multiple_choice"
	ExerciseFillBlank      = "fill_blank"
	ExerciseTranslation    = "translation"
)

// Exercise is a single task inside a topic. The correct answer is never
// sent to the client; only the attempt endpoint knows it.
type Exercise struct {
	ID          string   `json:"id"`
	TopicID     string   `json:"topic_id"`
	Type        string   `json:"type"`
	Question    string   `json:"question"`
	Options     []string `json:"options,omitempty"`
	Explanation string   `json:"explanation,omitempty"`
	Points      int      `json:"points"`
	Order       int      `json:"order"`
}

// ExerciseResult is the backend's verdict on a submitted answer.
type ExerciseResult struct {
	ExerciseID  string    `json:"exercise_id"`
	IsCorrect   bool      `json:"is_correct"`
	Score       int       `json:"score"`
	Explanation string    `json:"explanation,omitempty"`
	AttemptedAt time.Time `json:"attempted_at"`
}

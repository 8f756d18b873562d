package service

import (
	"context"

	"github.com/linguahub/client/internal/domain/entities"
)

type AuthAPI interface {
	Login(ctx context.Context, email, password string) (*entities.AuthResult, error)
	Register(ctx context.Context, name, email, password string) (*entities.AuthResult, error)
	RefreshToken(ctx context.Context, refreshToken string) (string, error)
}

type UserAPI interface {
	Profile(ctx context.Context) (*entities.User, error)
	UpdateProfile(ctx context.Context, patch entities.UserPatch) (*entities.User, error)
}

type ProgressAPI interface {
	FetchProgress(ctx context.Context) ([]*entities.ProgressEntry, error)
	CompleteTopic(ctx context.Context, topicID string, score int, idempotencyKey string) error
}

type CourseAPI interface {
	Levels(ctx context.Context) ([]*entities.Level, error)
	Level(ctx context.Context, id string) (*entities.Level, error)
	Topics(ctx context.Context, levelID string) ([]*entities.Topic, error)
	Topic(ctx context.Context, id string) (*entities.Topic, error)
	Exercise(ctx context.Context, id string) (*entities.Exercise, error)
	SubmitExercise(ctx context.Context, id, answer string) (*entities.ExerciseResult, error)
}

type LeaderboardAPI interface {
	Leaderboard(ctx context.Context) ([]*entities.LeaderboardEntry, error)
}

type ChatAPI interface {
	ChatSessions(ctx context.Context) ([]*entities.ChatSession, error)
	CreateChatSession(ctx context.Context, topicID, title string) (*entities.ChatSession, error)
	ChatMessages(ctx context.Context, sessionID string) ([]*entities.ChatMessage, error)
	SendChatMessage(ctx context.Context, sessionID, content string) (*entities.ChatMessage, error)
}

// SessionStore persists the three-field session unit. Save and Clear are
// atomic: a reader never observes a token without its user.
type SessionStore interface {
	Save(ctx context.Context, rec entities.SessionRecord) error
	Load(ctx context.Context) (entities.SessionRecord, bool, error)
	Clear(ctx context.Context) error
}

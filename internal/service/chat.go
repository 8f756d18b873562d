package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/linguahub/client/internal/domain/entities"
)

var (
	ErrEmptyChatTitle   = errors.New("chat title must not be empty")
	ErrEmptyChatMessage = errors.New("chat message must not be empty")
)

// ChatService is the transport surface for the platform assistant. Answer
// generation lives server-side.
type ChatService struct {
	api ChatAPI
}

func NewChatService(api ChatAPI) *ChatService {
	return &ChatService{api: api}
}

func (s *ChatService) Sessions(ctx context.Context) ([]*entities.ChatSession, error) {
	sessions, err := s.api.ChatSessions(ctx)
	if err != nil {
		return nil, fmt.Errorf("fetch chat sessions: %w", err)
	}
	return sessions, nil
}

func (s *ChatService) CreateSession(ctx context.Context, topicID, title string) (*entities.ChatSession, error) {
	if title == "" {
		return nil, ErrEmptyChatTitle
	}

	session, err := s.api.CreateChatSession(ctx, topicID, title)
	if err != nil {
		return nil, fmt.Errorf("create chat session: %w", err)
	}
	return session, nil
}

func (s *ChatService) Messages(ctx context.Context, sessionID string) ([]*entities.ChatMessage, error) {
	messages, err := s.api.ChatMessages(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("fetch chat messages: %w", err)
	}
	return messages, nil
}

// Send posts a user message and returns the assistant's reply.
func (s *ChatService) Send(ctx context.Context, sessionID, content string) (*entities.ChatMessage, error) {
	if content == "" {
		return nil, ErrEmptyChatMessage
	}

	message, err := s.api.SendChatMessage(ctx, sessionID, content)
	if err != nil {
		return nil, fmt.Errorf("send chat message: %w", err)
	}
	return message, nil
}

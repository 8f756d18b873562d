package httpapi

import (
	"context"
	"net/http"
	"net/url"

	"github.com/linguahub/client/internal/domain/entities"
)

type createSessionRequest struct {
	TopicID string `json:"topic_id,omitempty"`
	Title   string `json:"title"`
}

type sendMessageRequest struct {
	Content string `json:"content"`
}

// ChatSessions lists the user's assistant conversations.
func (c *Client) ChatSessions(ctx context.Context) ([]*entities.ChatSession, error) {
	var sessions []*entities.ChatSession
	err := c.do(ctx, http.MethodGet, "/chat/sessions", requestOptions{authenticated: true}, nil, &sessions)
	if err != nil {
		return nil, err
	}
	return sessions, nil
}

// CreateChatSession opens a new assistant conversation.
func (c *Client) CreateChatSession(ctx context.Context, topicID, title string) (*entities.ChatSession, error) {
	var session entities.ChatSession
	err := c.do(ctx, http.MethodPost, "/chat/sessions", requestOptions{authenticated: true}, createSessionRequest{TopicID: topicID, Title: title}, &session)
	if err != nil {
		return nil, err
	}
	return &session, nil
}

// ChatMessages lists the messages of a conversation.
func (c *Client) ChatMessages(ctx context.Context, sessionID string) ([]*entities.ChatMessage, error) {
	var messages []*entities.ChatMessage
	err := c.do(ctx, http.MethodGet, "/chat/sessions/"+url.PathEscape(sessionID)+"/messages", requestOptions{authenticated: true}, nil, &messages)
	if err != nil {
		return nil, err
	}
	return messages, nil
}

// SendChatMessage posts a user message and returns the assistant's reply.
func (c *Client) SendChatMessage(ctx context.Context, sessionID, content string) (*entities.ChatMessage, error) {
	var message entities.ChatMessage
	err := c.do(ctx, http.MethodPost, "/chat/sessions/"+url.PathEscape(sessionID)+"/messages", requestOptions{authenticated: true}, sendMessageRequest{Content: content}, &message)
	if err != nil {
		return nil, err
	}
	return &message, nil
}

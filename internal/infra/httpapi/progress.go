package httpapi

import (
	"context"
	"net/http"

	"github.com/linguahub/client/internal/domain/entities"
)

type completeTopicRequest struct {
	TopicID string `json:"topic_id"`
	Score   int    `json:"score"`
}

// FetchProgress returns the full progress list for the current user.
func (c *Client) FetchProgress(ctx context.Context) ([]*entities.ProgressEntry, error) {
	var entries []*entities.ProgressEntry
	err := c.do(ctx, http.MethodGet, "/progress", requestOptions{authenticated: true}, nil, &entries)
	if err != nil {
		return nil, err
	}
	return entries, nil
}

// CompleteTopic reports a topic completion. The idempotency key lets the
// backend deduplicate a resubmission after an ambiguous network failure.
func (c *Client) CompleteTopic(ctx context.Context, topicID string, score int, idempotencyKey string) error {
	opts := requestOptions{authenticated: true}
	if idempotencyKey != "" {
		opts.headers = map[string]string{"Idempotency-Key": idempotencyKey}
	}
	return c.do(ctx, http.MethodPost, "/progress/complete", opts, completeTopicRequest{TopicID: topicID, Score: score}, nil)
}

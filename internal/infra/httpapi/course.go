package httpapi

import (
	"context"
	"net/http"
	"net/url"

	"github.com/linguahub/client/internal/domain/entities"
)

type attemptRequest struct {
	Answer string `json:"answer"`
}

// Levels returns the course catalog levels.
func (c *Client) Levels(ctx context.Context) ([]*entities.Level, error) {
	var levels []*entities.Level
	err := c.do(ctx, http.MethodGet, "/levels", requestOptions{authenticated: true}, nil, &levels)
	if err != nil {
		return nil, err
	}
	return levels, nil
}

// Level returns a single level by id.
func (c *Client) Level(ctx context.Context, id string) (*entities.Level, error) {
	var level entities.Level
	err := c.do(ctx, http.MethodGet, "/levels/"+url.PathEscape(id), requestOptions{authenticated: true}, nil, &level)
	if err != nil {
		return nil, err
	}
	return &level, nil
}

// Topics returns the topics of a level.
func (c *Client) Topics(ctx context.Context, levelID string) ([]*entities.Topic, error) {
	var topics []*entities.Topic
	err := c.do(ctx, http.MethodGet, "/levels/"+url.PathEscape(levelID)+"/topics", requestOptions{authenticated: true}, nil, &topics)
	if err != nil {
		return nil, err
	}
	return topics, nil
}

// Topic returns a single topic with its exercises.
func (c *Client) Topic(ctx context.Context, id string) (*entities.Topic, error) {
	var topic entities.Topic
	err := c.do(ctx, http.MethodGet, "/topics/"+url.PathEscape(id), requestOptions{authenticated: true}, nil, &topic)
	if err != nil {
		return nil, err
	}
	return &topic, nil
}

// Exercise returns a single exercise by id.
func (c *Client) Exercise(ctx context.Context, id string) (*entities.Exercise, error) {
	var exercise entities.Exercise
	err := c.do(ctx, http.MethodGet, "/exercises/"+url.PathEscape(id), requestOptions{authenticated: true}, nil, &exercise)
	if err != nil {
		return nil, err
	}
	return &exercise, nil
}

// SubmitExercise sends an answer attempt and returns the verdict.
func (c *Client) SubmitExercise(ctx context.Context, id, answer string) (*entities.ExerciseResult, error) {
	var result entities.ExerciseResult
	err := c.do(ctx, http.MethodPost, "/exercises/"+url.PathEscape(id)+"/attempt", requestOptions{authenticated: true}, attemptRequest{Answer: answer}, &result)
	if err != nil {
		return nil, err
	}
	return &result, nil
}

package service

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/linguahub/client/internal/domain/entities"
)

var ErrEmptyAnswer = errors.New("answer must not be empty")

// ProgressView is the read-only slice of the progress cache the course
// service needs for the unlock rule.
type ProgressView interface {
	LevelProgress(levelID string) int
}

// CourseService exposes the course catalog and exercise submission.
type CourseService struct {
	api      CourseAPI
	progress ProgressView
}

func NewCourseService(api CourseAPI, progress ProgressView) *CourseService {
	return &CourseService{api: api, progress: progress}
}

// Levels returns the catalog levels sorted by their configured order.
func (s *CourseService) Levels(ctx context.Context) ([]*entities.Level, error) {
	levels, err := s.api.Levels(ctx)
	if err != nil {
		return nil, fmt.Errorf("fetch levels: %w", err)
	}

	sort.Slice(levels, func(i, j int) bool { return levels[i].Order < levels[j].Order })
	return levels, nil
}

// Catalog returns the levels with their topics populated, ready to feed
// the progress cache denominators.
func (s *CourseService) Catalog(ctx context.Context) ([]*entities.Level, error) {
	levels, err := s.Levels(ctx)
	if err != nil {
		return nil, err
	}

	for _, level := range levels {
		if len(level.Topics) > 0 {
			continue
		}
		topics, err := s.api.Topics(ctx, level.ID)
		if err != nil {
			return nil, fmt.Errorf("fetch topics for level %s: %w", level.Name, err)
		}
		sort.Slice(topics, func(i, j int) bool { return topics[i].Order < topics[j].Order })
		level.Topics = make([]entities.Topic, 0, len(topics))
		for _, t := range topics {
			level.Topics = append(level.Topics, *t)
		}
	}
	return levels, nil
}

// Level returns a single level by id.
func (s *CourseService) Level(ctx context.Context, id string) (*entities.Level, error) {
	level, err := s.api.Level(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("fetch level: %w", err)
	}
	return level, nil
}

// Topic returns a single topic with its exercises.
func (s *CourseService) Topic(ctx context.Context, id string) (*entities.Topic, error) {
	topic, err := s.api.Topic(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("fetch topic: %w", err)
	}
	return topic, nil
}

// Exercise returns a single exercise.
func (s *CourseService) Exercise(ctx context.Context, id string) (*entities.Exercise, error) {
	exercise, err := s.api.Exercise(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("fetch exercise: %w", err)
	}
	return exercise, nil
}

// SubmitExercise sends an answer attempt for grading.
func (s *CourseService) SubmitExercise(ctx context.Context, exerciseID, answer string) (*entities.ExerciseResult, error) {
	if answer == "" {
		return nil, ErrEmptyAnswer
	}

	result, err := s.api.SubmitExercise(ctx, exerciseID, answer)
	if err != nil {
		return nil, fmt.Errorf("submit exercise: %w", err)
	}
	return result, nil
}

// IsUnlocked applies the unlock rule to levels[idx]. levels must be sorted
// by order (as returned by Levels): the lowest-ordered level is always
// unlocked, every other level unlocks once the previous one is fully
// complete.
func (s *CourseService) IsUnlocked(levels []*entities.Level, idx int) bool {
	if idx < 0 || idx >= len(levels) {
		return false
	}
	if idx == 0 {
		return true
	}
	return s.progress.LevelProgress(levels[idx-1].ID) == 100
}

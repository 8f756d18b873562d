package service

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/linguahub/client/internal/domain/entities"
)

// ProgressService is the single source of truth for what the user has
// completed. Reads are pure lookups over an in-memory snapshot; Refresh
// replaces the snapshot atomically, coalesces concurrent callers into one
// network request and discards responses that were superseded by a newer
// refresh, so results always apply in issuance order.
type ProgressService struct {
	api ProgressAPI
	log *zap.Logger

	mu            sync.Mutex
	entries       map[string]*entities.ProgressEntry // keyed by topic id, one entry per topic
	topicsByLevel map[string][]string
	inflight      *refreshFlight
	issued        uint64
	closed        bool
}

type refreshFlight struct {
	seq  uint64
	done chan struct{}
	err  error
}

func NewProgressService(api ProgressAPI, log *zap.Logger) *ProgressService {
	return &ProgressService{
		api:     api,
		log:     log,
		entries: make(map[string]*entities.ProgressEntry),
	}
}

// Refresh fetches the full progress list and replaces the cache contents.
// Callers arriving while a refresh is in flight await that flight's result
// instead of issuing another request. On failure the previous contents are
// kept and a *FetchError is returned; Refresh is safe to retry.
func (s *ProgressService) Refresh(ctx context.Context) error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return ErrCacheClosed
	}
	if f := s.inflight; f != nil {
		s.mu.Unlock()
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-f.done:
			return f.err
		}
	}
	f := s.startFlightLocked()
	s.mu.Unlock()

	return s.run(ctx, f)
}

// reconcile starts a fresh flight even when one is in flight: the new
// flight supersedes it, so a response that predates an optimistic update
// can no longer overwrite it.
func (s *ProgressService) reconcile(ctx context.Context) error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return ErrCacheClosed
	}
	f := s.startFlightLocked()
	s.mu.Unlock()

	return s.run(ctx, f)
}

func (s *ProgressService) startFlightLocked() *refreshFlight {
	s.issued++
	f := &refreshFlight{seq: s.issued, done: make(chan struct{})}
	s.inflight = f
	return f
}

func (s *ProgressService) run(ctx context.Context, f *refreshFlight) error {
	entries, err := s.api.FetchProgress(ctx)

	s.mu.Lock()
	if s.inflight == f {
		s.inflight = nil
	}
	switch {
	case err != nil:
		f.err = &FetchError{Err: err}
	case s.closed || f.seq != s.issued:
		// Superseded by a newer refresh or disposed; drop the stale result.
	default:
		s.replaceLocked(entries)
	}
	s.mu.Unlock()

	close(f.done)
	return f.err
}

func (s *ProgressService) replaceLocked(entries []*entities.ProgressEntry) {
	next := make(map[string]*entities.ProgressEntry, len(entries))
	for _, e := range entries {
		if e == nil || e.TopicID == "" {
			continue
		}
		next[e.TopicID] = e
	}
	s.entries = next
}

// CompleteTopic validates the score, optimistically marks the topic
// completed, submits to the backend and reconciles with a superseding
// refresh. On rejection the optimistic entry is rolled back to its
// pre-call state and a *CompletionError is returned.
func (s *ProgressService) CompleteTopic(ctx context.Context, topicID string, score int) error {
	if score < 0 || score > 100 {
		return ErrInvalidScore
	}

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return ErrCacheClosed
	}

	var rollback *entities.ProgressEntry
	if prev, ok := s.entries[topicID]; ok {
		c := *prev
		rollback = &c
	}

	now := time.Now()
	next := &entities.ProgressEntry{
		TopicID:     topicID,
		Completed:   true,
		Score:       score,
		CompletedAt: &now,
	}
	if rollback != nil {
		next.ID = rollback.ID
		next.UserID = rollback.UserID
		next.Topic = rollback.Topic
	}
	s.entries[topicID] = next
	s.mu.Unlock()

	err := s.api.CompleteTopic(ctx, topicID, score, uuid.NewString())
	if err != nil {
		s.mu.Lock()
		if rollback != nil {
			s.entries[topicID] = rollback
		} else {
			delete(s.entries, topicID)
		}
		s.mu.Unlock()
		return &CompletionError{Message: messageOr(err, "failed to complete topic"), Err: err}
	}

	if rerr := s.reconcile(ctx); rerr != nil {
		// The completion is confirmed; keep the optimistic entry until the
		// next successful refresh.
		s.log.Warn("reconcile after completion failed", zap.Error(rerr))
	}
	return nil
}

// TopicProgress returns the entry for a topic. Absence never implies
// completion.
func (s *ProgressService) TopicProgress(topicID string) (*entities.ProgressEntry, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.entries[topicID]
	if !ok {
		return nil, false
	}
	c := *e
	return &c, true
}

// LevelProgress returns the level's completion percentage. With a catalog
// loaded, topics never attempted count toward the denominator; without
// one, only topics the backend has reported on are counted.
func (s *ProgressService) LevelProgress(levelID string) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	if topics, ok := s.topicsByLevel[levelID]; ok {
		completed := 0
		for _, topicID := range topics {
			if e, ok := s.entries[topicID]; ok && e.Completed {
				completed++
			}
		}
		return entities.Percentage(completed, len(topics))
	}

	total, completed := 0, 0
	for _, e := range s.entries {
		if e.LevelID() != levelID {
			continue
		}
		total++
		if e.Completed {
			completed++
		}
	}
	return entities.Percentage(completed, total)
}

// TotalProgress returns the overall completion percentage.
func (s *ProgressService) TotalProgress() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.topicsByLevel) > 0 {
		total, completed := 0, 0
		for _, topics := range s.topicsByLevel {
			total += len(topics)
			for _, topicID := range topics {
				if e, ok := s.entries[topicID]; ok && e.Completed {
					completed++
				}
			}
		}
		return entities.Percentage(completed, total)
	}

	completed := 0
	for _, e := range s.entries {
		if e.Completed {
			completed++
		}
	}
	return entities.Percentage(completed, len(s.entries))
}

// Entries returns a snapshot of the cache sorted by level and topic.
func (s *ProgressService) Entries() []*entities.ProgressEntry {
	s.mu.Lock()
	out := make([]*entities.ProgressEntry, 0, len(s.entries))
	for _, e := range s.entries {
		c := *e
		out = append(out, &c)
	}
	s.mu.Unlock()

	sort.Slice(out, func(i, j int) bool {
		if out[i].LevelID() != out[j].LevelID() {
			return out[i].LevelID() < out[j].LevelID()
		}
		return out[i].TopicID < out[j].TopicID
	})
	return out
}

// SetCatalog installs the topic catalog used for percentage denominators.
func (s *ProgressService) SetCatalog(levels []*entities.Level) {
	byLevel := make(map[string][]string, len(levels))
	for _, level := range levels {
		if level == nil {
			continue
		}
		ids := make([]string, 0, len(level.Topics))
		for _, t := range level.Topics {
			ids = append(ids, t.ID)
		}
		byLevel[level.ID] = ids
	}

	s.mu.Lock()
	s.topicsByLevel = byLevel
	s.mu.Unlock()
}

// Close disposes the cache. In-flight refresh results are ignored and
// later operations fail with ErrCacheClosed.
func (s *ProgressService) Close() {
	s.mu.Lock()
	s.closed = true
	s.mu.Unlock()
}

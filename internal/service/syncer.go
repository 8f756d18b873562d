package service

import (
	"context"
	"time"

	"github.com/go-co-op/gocron"
	"go.uber.org/zap"
)

const renewCheckInterval = 30 * time.Second

// Syncer keeps the client warm in the background: it refreshes the
// progress cache on an interval and renews the access token shortly
// before it expires, so interactive requests rarely hit a 401.
type Syncer struct {
	scheduler *gocron.Scheduler
	session   *SessionService
	progress  *ProgressService
	log       *zap.Logger

	interval    time.Duration
	renewBefore time.Duration
}

func NewSyncer(session *SessionService, progress *ProgressService, interval, renewBefore time.Duration, log *zap.Logger) *Syncer {
	return &Syncer{
		scheduler:   gocron.NewScheduler(time.UTC),
		session:     session,
		progress:    progress,
		log:         log,
		interval:    interval,
		renewBefore: renewBefore,
	}
}

// Start schedules the jobs and runs them asynchronously.
func (s *Syncer) Start() error {
	if _, err := s.scheduler.Every(s.interval).Do(s.refreshProgress); err != nil {
		return err
	}
	if _, err := s.scheduler.Every(renewCheckInterval).Do(s.renewToken); err != nil {
		return err
	}

	s.scheduler.StartAsync()
	return nil
}

// Stop halts all scheduled jobs.
func (s *Syncer) Stop() {
	s.scheduler.Stop()
}

func (s *Syncer) refreshProgress() {
	if !s.session.Active() {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), s.interval)
	defer cancel()

	if err := s.progress.Refresh(ctx); err != nil {
		s.log.Warn("background progress refresh failed", zap.Error(err))
	}
}

func (s *Syncer) renewToken() {
	if !s.session.Active() {
		return
	}

	expiry, ok := s.session.AccessTokenExpiry()
	if !ok || time.Until(expiry) > s.renewBefore {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), renewCheckInterval)
	defer cancel()

	if _, err := s.session.Renew(ctx); err != nil {
		s.log.Info("proactive token renewal failed", zap.Error(err))
	}
}

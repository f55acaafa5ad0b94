// Package scheduler rebuilds user profiles on a cron schedule.
package scheduler

import (
	"context"
	"fmt"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"haven/internal/profile"
)

// rebuildConcurrency bounds how many users aggregate at once.
const rebuildConcurrency = 4

// UserLister yields the user IDs to rebuild. Satisfied by *store.Store.
type UserLister interface {
	ListUserIDs(ctx context.Context) ([]string, error)
}

// Rebuilder recomputes and persists one user's profile. Satisfied by
// *profile.Aggregator.
type Rebuilder interface {
	BuildAndSave(ctx context.Context, userID string) (*profile.Profile, error)
}

// Scheduler runs periodic profile rebuilds for all users.
type Scheduler struct {
	cron     *cron.Cron
	users    UserLister
	builder  Rebuilder
	logger   *zap.Logger
	cronSpec string
}

// New creates a Scheduler. An empty spec defaults to @hourly.
func New(users UserLister, builder Rebuilder, cronSpec string, logger *zap.Logger) *Scheduler {
	if cronSpec == "" {
		cronSpec = "@hourly"
	}
	return &Scheduler{
		cron:     cron.New(),
		users:    users,
		builder:  builder,
		logger:   logger,
		cronSpec: cronSpec,
	}
}

// Start registers the rebuild entry and starts the cron loop.
func (s *Scheduler) Start(ctx context.Context) error {
	_, err := s.cron.AddFunc(s.cronSpec, func() {
		if err := s.RebuildAll(ctx); err != nil {
			s.logger.Warn("profile rebuild batch failed", zap.Error(err))
		}
	})
	if err != nil {
		return fmt.Errorf("failed to register rebuild schedule %q: %w", s.cronSpec, err)
	}

	s.cron.Start()
	s.logger.Info("scheduler started", zap.String("spec", s.cronSpec))
	return nil
}

// Stop halts the cron loop and waits for a running batch to drain.
func (s *Scheduler) Stop() {
	<-s.cron.Stop().Done()
	s.logger.Info("scheduler stopped")
}

// RebuildAll rebuilds every user's profile with bounded concurrency. A
// failed user logs Warn and does not abort the batch; the returned error
// covers only the listing step.
func (s *Scheduler) RebuildAll(ctx context.Context) error {
	userIDs, err := s.users.ListUserIDs(ctx)
	if err != nil {
		return fmt.Errorf("failed to list users: %w", err)
	}

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(rebuildConcurrency)

	for _, userID := range userIDs {
		userID := userID
		g.Go(func() error {
			if _, err := s.builder.BuildAndSave(ctx, userID); err != nil {
				s.logger.Warn("profile rebuild failed",
					zap.String("user_id", userID), zap.Error(err))
			}
			return nil
		})
	}

	// Workers never return errors, so Wait only synchronizes.
	_ = g.Wait()

	s.logger.Debug("profile rebuild batch complete", zap.Int("users", len(userIDs)))
	return nil
}

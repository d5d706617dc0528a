package scheduler

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"
)

// Renderer produces the avatar image for an instant and returns its path.
type Renderer interface {
	Render(now time.Time) (string, error)
}

// Publisher pushes a rendered image to the account.
type Publisher interface {
	Publish(ctx context.Context, path string) error
}

type Scheduler struct {
	renderer  Renderer
	publisher Publisher
	policy    Policy
	clock     Clock
	logger    *zap.Logger
}

func New(renderer Renderer, publisher Publisher, policy Policy, clock Clock, logger *zap.Logger) *Scheduler {
	if clock == nil {
		clock = SystemClock{}
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Scheduler{
		renderer:  renderer,
		publisher: publisher,
		policy:    policy,
		clock:     clock,
		logger:    logger,
	}
}

// Start runs cycles until ctx is cancelled. A failed cycle is logged and the
// next one is scheduled as usual; cycles never overlap.
func (s *Scheduler) Start(ctx context.Context) error {
	s.logger.Info("Scheduler started", zap.String("policy", s.policy.Name()))

	for {
		if err := s.RunOnce(ctx, s.clock.Now()); err != nil {
			s.logger.Error("Avatar update failed", zap.Error(err))
		}

		now := s.clock.Now()
		next := s.policy.Next(now)
		s.logger.Info("Next update scheduled",
			zap.Time("at", next),
			zap.Duration("in", next.Sub(now)))

		if err := s.clock.SleepUntil(ctx, next); err != nil {
			s.logger.Info("Scheduler stopped", zap.Error(err))
			return err
		}
	}
}

// RunOnce renders the avatar for now and publishes it.
func (s *Scheduler) RunOnce(ctx context.Context, now time.Time) error {
	path, err := s.renderer.Render(now)
	if err != nil {
		return fmt.Errorf("failed to render avatar: %w", err)
	}

	if err := s.publisher.Publish(ctx, path); err != nil {
		return fmt.Errorf("failed to publish avatar: %w", err)
	}

	return nil
}

// Package scheduler wraps gocron for the periodic background jobs.
package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/go-co-op/gocron/v2"
	"github.com/rs/zerolog/log"
)

type Scheduler struct {
	s   gocron.Scheduler
	ctx context.Context
}

func New(ctx context.Context) (*Scheduler, error) {
	s, err := gocron.NewScheduler(
		gocron.WithLocation(time.UTC),
		gocron.WithLogger(NewLogger()),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create scheduler: %w", err)
	}
	return &Scheduler{s: s, ctx: ctx}, nil
}

// Every runs fn on a fixed interval. An overrunning tick is skipped rather than queued.
func (s *Scheduler) Every(name string, interval time.Duration, fn func(ctx context.Context) error) error {
	_, err := s.s.NewJob(
		gocron.DurationJob(interval),
		gocron.NewTask(func() {
			if err := fn(s.ctx); err != nil {
				log.Error().Err(err).Str("job", name).Msg("scheduled job failed")
			}
		}),
		gocron.WithName(name),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
	)
	if err != nil {
		return fmt.Errorf("failed to schedule job %q: %w", name, err)
	}

	log.Info().Str("job", name).Dur("interval", interval).Msg("job scheduled")
	return nil
}

func (s *Scheduler) Start() {
	s.s.Start()
}

func (s *Scheduler) Stop() error {
	if err := s.s.Shutdown(); err != nil {
		return fmt.Errorf("failed to shutdown scheduler: %w", err)
	}
	return nil
}

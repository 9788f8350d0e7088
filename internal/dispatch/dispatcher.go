// Package dispatch sends scheduled messages that have come due.
package dispatch

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/xenn00/chat-delivery/internal/entity"
	"github.com/xenn00/chat-delivery/internal/lock"
)

//go:generate go run go.uber.org/mock/mockgen -source=dispatcher.go -destination=../mocks/mock_dispatch.go -package=mocks

type ScheduledStore interface {
	// DueMessages returns PENDING rows scheduled at or before now, plus DISPATCHING rows
	// claimed before staleBefore whose dispatcher never finished them.
	DueMessages(ctx context.Context, now, staleBefore time.Time, limit int) ([]entity.ScheduledMessage, error)
	// Claim moves a PENDING or stale DISPATCHING row to DISPATCHING at now and reports
	// whether this caller won it.
	Claim(ctx context.Context, id string, now, staleBefore time.Time) (bool, error)
	MarkDispatched(ctx context.Context, id, messageID string) error
	MarkFailed(ctx context.Context, id, reason string) error
}

type Sender interface {
	SendScheduled(ctx context.Context, msg entity.ScheduledMessage) (string, error)
}

type Config struct {
	Interval  time.Duration `mapstructure:"INTERVAL"`
	LockName  string        `mapstructure:"LOCK_NAME"`
	MaxHold   time.Duration `mapstructure:"MAX_HOLD"`
	BatchSize int           `mapstructure:"BATCH_SIZE"`
}

type Dispatcher struct {
	locker lock.Locker
	store  ScheduledStore
	sender Sender
	holder string
	cfg    Config
	now    func() time.Time
}

func NewDispatcher(locker lock.Locker, store ScheduledStore, sender Sender, holder string, cfg Config) *Dispatcher {
	if cfg.LockName == "" {
		cfg.LockName = "scheduled-dispatch"
	}
	if cfg.MaxHold <= 0 {
		cfg.MaxHold = 5 * time.Minute
	}
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = 100
	}
	return &Dispatcher{
		locker: locker,
		store:  store,
		sender: sender,
		holder: holder,
		cfg:    cfg,
		now:    time.Now,
	}
}

// Sweep dispatches due messages if this instance wins the lock. An instance that loses
// the lock does nothing and returns (0, nil).
func (d *Dispatcher) Sweep(ctx context.Context) (int, error) {
	sent := 0
	ran, err := lock.WithLock(ctx, d.locker, d.cfg.LockName, d.holder, d.cfg.MaxHold, func(ctx context.Context) error {
		now := d.now().UTC()
		due, err := d.store.DueMessages(ctx, now, now.Add(-d.cfg.MaxHold), d.cfg.BatchSize)
		if err != nil {
			return err
		}

		for _, msg := range due {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			if d.dispatch(ctx, msg) {
				sent++
			}
		}
		return nil
	})
	if err != nil {
		return sent, err
	}
	if !ran {
		log.Debug().Str("holder", d.holder).Msg("dispatch sweep skipped, lock held elsewhere")
		return 0, nil
	}
	if sent > 0 {
		log.Info().Int("dispatched", sent).Str("holder", d.holder).Msg("dispatch sweep finished")
	}
	return sent, nil
}

// The lock can be stolen mid-sweep, so every row is claimed before it is sent. A claim
// older than MaxHold belongs to a dispatcher that died; resending it is safe because the
// send path dedups on the row's temp id.
func (d *Dispatcher) dispatch(ctx context.Context, msg entity.ScheduledMessage) bool {
	id := msg.ID.String()
	now := d.now().UTC()
	if msg.Status == entity.ScheduledDispatching {
		log.Warn().Str("scheduled_id", id).Msg("reclaiming stale scheduled dispatch")
	}

	claimed, err := d.store.Claim(ctx, id, now, now.Add(-d.cfg.MaxHold))
	if err != nil {
		log.Error().Err(err).Str("scheduled_id", id).Msg("claim failed")
		return false
	}
	if !claimed {
		return false
	}

	messageID, err := d.sender.SendScheduled(ctx, msg)
	if err != nil {
		log.Warn().Err(err).Str("scheduled_id", id).Msg("scheduled send failed")
		if err := d.store.MarkFailed(context.WithoutCancel(ctx), id, err.Error()); err != nil {
			log.Error().Err(err).Str("scheduled_id", id).Msg("failed to mark scheduled message failed")
		}
		return false
	}

	if err := d.store.MarkDispatched(context.WithoutCancel(ctx), id, messageID); err != nil {
		log.Error().Err(err).Str("scheduled_id", id).Msg("failed to mark scheduled message dispatched")
	}
	return true
}

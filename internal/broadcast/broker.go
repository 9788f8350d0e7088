// Package broadcast delivers payloads to live sessions with bounded retry.
package broadcast

import (
	"context"
	"strconv"
	"time"

	"github.com/avast/retry-go/v4"
	"github.com/rs/zerolog/log"
)

const (
	DefaultRetryCount = 3
	DefaultBaseDelay  = 200 * time.Millisecond
)

type Config struct {
	RetryCount int           `mapstructure:"RETRY_COUNT"`
	BaseDelay  time.Duration `mapstructure:"BASE_DELAY"`
	// SendTimeout bounds a single delivery attempt.
	SendTimeout time.Duration `mapstructure:"SEND_TIMEOUT"`
}

type Broker struct {
	transport Transport
	failed    FailedDeliveryStore
	cfg       Config

	timer retry.Timer
	now   func() time.Time
}

type Option func(*Broker)

// WithTimer replaces the backoff wait.
func WithTimer(timer retry.Timer) Option {
	return func(b *Broker) { b.timer = timer }
}

func WithClock(now func() time.Time) Option {
	return func(b *Broker) { b.now = now }
}

func NewBroker(transport Transport, failed FailedDeliveryStore, cfg Config, opts ...Option) *Broker {
	if cfg.RetryCount <= 0 {
		cfg.RetryCount = DefaultRetryCount
	}
	if cfg.BaseDelay <= 0 {
		cfg.BaseDelay = DefaultBaseDelay
	}
	if cfg.SendTimeout <= 0 {
		cfg.SendTimeout = 5 * time.Second
	}
	b := &Broker{
		transport: transport,
		failed:    failed,
		cfg:       cfg,
		timer:     realTimer{},
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Send delivers with the configured retry count.
func (b *Broker) Send(ctx context.Context, destination string, p Payload) Outcome {
	return b.SendWithRetry(ctx, destination, p, b.cfg.RetryCount)
}

// SendWithRetry never returns an error. After retryCount failed attempts the payload is
// written to the failed-delivery store, keyed by its temp id and destination, or by the
// current time when it has no temp id. One send fans out to several destinations under
// the same temp id, so the destination keeps their records apart.
func (b *Broker) SendWithRetry(ctx context.Context, destination string, p Payload, retryCount int) Outcome {
	if retryCount <= 0 {
		retryCount = 1
	}

	attempt := 0
	err := retry.Do(
		func() error {
			attempt++
			sendCtx, cancel := context.WithTimeout(ctx, b.cfg.SendTimeout)
			defer cancel()
			return b.transport.Deliver(sendCtx, destination, p.Data)
		},
		retry.Context(ctx),
		retry.Attempts(uint(retryCount)),
		retry.Delay(b.cfg.BaseDelay),
		retry.DelayType(retry.BackOffDelay),
		retry.LastErrorOnly(true),
		retry.WithTimer(b.timer),
		retry.OnRetry(func(n uint, err error) {
			log.Debug().Err(err).
				Str("destination", destination).
				Str("temp_id", p.TempID).
				Uint("attempt", n+1).
				Int("max", retryCount).
				Msg("broadcast attempt failed")
		}),
	)
	if err == nil {
		return Outcome{Delivered: true, Attempts: attempt}
	}

	key := FailedKey(p.TempID, destination)
	if p.TempID == "" {
		key = strconv.FormatInt(b.now().UnixNano(), 10)
	}
	entry := FailedDelivery{
		Destination: destination,
		TempID:      p.TempID,
		Data:        string(p.Data),
		Attempts:    attempt,
		LastError:   err.Error(),
		FailedAt:    b.now().UTC(),
	}

	// the caller may be shutting down; the record must still land
	storeCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), b.cfg.SendTimeout)
	defer cancel()
	if err := b.failed.SaveFailed(storeCtx, key, entry); err != nil {
		log.Error().Err(err).Str("key", key).Str("destination", destination).Msg("failed to store undelivered broadcast")
	} else {
		log.Warn().Str("key", key).Str("destination", destination).Int("attempts", attempt).Msg("broadcast moved to failed store")
	}

	return Outcome{Attempts: attempt, FailedKey: key}
}

func FailedKey(tempID, destination string) string {
	return tempID + ":" + destination
}

type realTimer struct{}

func (realTimer) After(d time.Duration) <-chan time.Time {
	return time.After(d)
}

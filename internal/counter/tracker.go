// Package counter keeps per-user unread counters in Redis with a durable fallback.
package counter

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
	"github.com/samber/lo"
	"github.com/sony/gobreaker"
	"github.com/xenn00/chat-delivery/internal/queue"
	"github.com/xenn00/chat-delivery/internal/utils/types"
)

type Config struct {
	DedupTTL        time.Duration `mapstructure:"DEDUP_TTL"`
	BreakerFailures uint32        `mapstructure:"BREAKER_FAILURES"`
	BreakerTimeout  time.Duration `mapstructure:"BREAKER_TIMEOUT"`
	// RepopulateInterval drives the background job that refills Redis after an outage.
	RepopulateInterval time.Duration `mapstructure:"REPOPULATE_INTERVAL"`
	ReconcileMarkerTTL time.Duration `mapstructure:"RECONCILE_MARKER_TTL"`
}

func (c Config) withDefaults() Config {
	if c.DedupTTL <= 0 {
		c.DedupTTL = 30 * time.Second
	}
	if c.BreakerFailures == 0 {
		c.BreakerFailures = 5
	}
	if c.BreakerTimeout <= 0 {
		c.BreakerTimeout = 10 * time.Second
	}
	if c.ReconcileMarkerTTL <= 0 {
		c.ReconcileMarkerTTL = 24 * time.Hour
	}
	return c
}

// decrement without going below zero; a missing key stays missing
var decrScript = redis.NewScript(`
local v = redis.call('GET', KEYS[1])
if not v then
	return -1
end
if tonumber(v) > 0 then
	return redis.call('DECR', KEYS[1])
end
return 0
`)

type roomUser struct {
	RoomID string
	UserID string
}

type Tracker struct {
	rdb     *redis.Client
	durable DurableReadStatus
	history UnreadHistory
	jobs    queue.Producer
	breaker *gobreaker.CircuitBreaker
	cfg     Config
	now     func() time.Time

	mu    sync.Mutex
	dirty map[roomUser]struct{}
}

func NewTracker(rdb *redis.Client, durable DurableReadStatus, history UnreadHistory, jobs queue.Producer, cfg Config) *Tracker {
	cfg = cfg.withDefaults()

	t := &Tracker{
		rdb:     rdb,
		durable: durable,
		history: history,
		jobs:    jobs,
		cfg:     cfg,
		now:     time.Now,
		dirty:   make(map[roomUser]struct{}),
	}
	t.breaker = gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "counter-store",
		MaxRequests: 1,
		Timeout:     cfg.BreakerTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= cfg.BreakerFailures
		},
		IsSuccessful: func(err error) bool {
			return err == nil || errors.Is(err, redis.Nil)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			log.Warn().Str("breaker", name).Str("from", from.String()).Str("to", to.String()).Msg("circuit breaker state changed")
		},
	})
	return t
}

func UnreadKey(roomID, userID string) string {
	return fmt.Sprintf("unread:{%s}:%s", roomID, userID)
}

func DedupKey(roomID, userID, requestID string) string {
	return fmt.Sprintf("read:dedup:{%s}:%s:%s", roomID, userID, requestID)
}

func LastReadKey(roomID, userID string) string {
	return fmt.Sprintf("read:last:{%s}:%s", roomID, userID)
}

func reconcileMarkerKey(jobID string) string {
	return "read:reconcile:" + jobID
}

// guard runs fn through the breaker; redis.Nil passes through without counting as a failure.
func (t *Tracker) guard(fn func() (any, error)) (any, error) {
	return t.breaker.Execute(fn)
}

// IncrementUnread never fails because Redis is down: the durable row takes the write instead.
func (t *Tracker) IncrementUnread(ctx context.Context, roomID, userID string) error {
	_, err := t.guard(func() (any, error) {
		return t.rdb.Incr(ctx, UnreadKey(roomID, userID)).Result()
	})
	if err == nil {
		t.reconcile(ctx, queue.JobReadStatusIncrement, types.ReadStatusJobPayload{RoomID: roomID, UserID: userID, Delta: 1})
		return nil
	}

	log.Warn().Err(err).Str("room_id", roomID).Str("user_id", userID).Msg("counter store unavailable, incrementing durable row")
	t.markDirty(roomID, userID)
	return t.durable.AddUnread(ctx, roomID, userID, 1)
}

func (t *Tracker) DecrementUnread(ctx context.Context, roomID, userID string) error {
	_, err := t.guard(func() (any, error) {
		return decrScript.Run(ctx, t.rdb, []string{UnreadKey(roomID, userID)}).Int64()
	})
	if err == nil {
		t.reconcile(ctx, queue.JobReadStatusDecrement, types.ReadStatusJobPayload{RoomID: roomID, UserID: userID, Delta: -1})
		return nil
	}

	log.Warn().Err(err).Str("room_id", roomID).Str("user_id", userID).Msg("counter store unavailable, decrementing durable row")
	t.markDirty(roomID, userID)
	return t.durable.AddUnread(ctx, roomID, userID, -1)
}

// MarkRead resets the counter once per (room, user, requestID) within the dedup TTL.
// It reports whether a reset was applied.
func (t *Tracker) MarkRead(ctx context.Context, roomID, userID, messageID, requestID string) (bool, error) {
	readAt := t.now().UTC()

	res, err := t.guard(func() (any, error) {
		fresh, err := t.rdb.SetNX(ctx, DedupKey(roomID, userID, requestID), 1, t.cfg.DedupTTL).Result()
		if err != nil || !fresh {
			return false, err
		}

		pipe := t.rdb.TxPipeline()
		pipe.Set(ctx, UnreadKey(roomID, userID), 0, 0)
		pipe.HSet(ctx, LastReadKey(roomID, userID), "message_id", messageID, "read_at", readAt.UnixMilli())
		if _, err := pipe.Exec(ctx); err != nil {
			return false, err
		}
		return true, nil
	})
	if err == nil {
		applied := res.(bool)
		if applied {
			t.reconcile(ctx, queue.JobReadStatusReset, types.ReadStatusJobPayload{
				RoomID: roomID, UserID: userID, MessageID: messageID, ReadAt: readAt,
			})
		}
		return applied, nil
	}

	log.Warn().Err(err).Str("room_id", roomID).Str("user_id", userID).Msg("counter store unavailable, resetting durable row")
	t.markDirty(roomID, userID)
	if err := t.durable.ResetUnread(ctx, roomID, userID, messageID, readAt); err != nil {
		return false, err
	}
	return true, nil
}

// UnreadCount reads the fast counter, rebuilding it from durable history when the key is gone.
func (t *Tracker) UnreadCount(ctx context.Context, roomID, userID string) (int64, error) {
	res, err := t.guard(func() (any, error) {
		return t.rdb.Get(ctx, UnreadKey(roomID, userID)).Int64()
	})
	switch {
	case err == nil:
		return res.(int64), nil
	case errors.Is(err, redis.Nil):
		return t.Recover(ctx, roomID, userID)
	default:
		log.Warn().Err(err).Str("room_id", roomID).Str("user_id", userID).Msg("counter store unavailable, reading durable row")
		rs, derr := t.durable.GetReadStatus(ctx, roomID, userID)
		if derr != nil {
			return 0, derr
		}
		if rs == nil {
			return 0, nil
		}
		return rs.UnreadCount, nil
	}
}

// Recover counts messages from others since the last durable read and writes the result
// back with SETNX, so a concurrent increment that recreated the key is not overwritten.
func (t *Tracker) Recover(ctx context.Context, roomID, userID string) (int64, error) {
	rs, err := t.durable.GetReadStatus(ctx, roomID, userID)
	if err != nil {
		return 0, err
	}

	var since *time.Time
	if rs != nil {
		since = rs.LastReadAt
	}
	count, err := t.history.CountUnreadSince(ctx, roomID, userID, since)
	if err != nil {
		return 0, err
	}

	_, err = t.guard(func() (any, error) {
		return t.rdb.SetNX(ctx, UnreadKey(roomID, userID), count, 0).Result()
	})
	if err != nil {
		log.Warn().Err(err).Str("room_id", roomID).Str("user_id", userID).Msg("recovered counter not cached")
	}
	log.Info().Str("room_id", roomID).Str("user_id", userID).Int64("count", count).Msg("unread counter recovered")
	return count, nil
}

// Repopulate copies durable counts back into Redis for pairs written during an outage.
func (t *Tracker) Repopulate(ctx context.Context) (int, error) {
	t.mu.Lock()
	pending := lo.Keys(t.dirty)
	t.mu.Unlock()

	done := 0
	for _, p := range pending {
		rs, err := t.durable.GetReadStatus(ctx, p.RoomID, p.UserID)
		if err != nil {
			return done, err
		}
		var count int64
		if rs != nil {
			count = rs.UnreadCount
		}

		if _, err := t.guard(func() (any, error) {
			return t.rdb.Set(ctx, UnreadKey(p.RoomID, p.UserID), count, 0).Result()
		}); err != nil {
			return done, err
		}

		t.mu.Lock()
		delete(t.dirty, p)
		t.mu.Unlock()
		done++
	}

	if done > 0 {
		log.Info().Int("repopulated", done).Msg("unread counters repopulated")
	}
	return done, nil
}

func (t *Tracker) DirtyCount() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.dirty)
}

func (t *Tracker) markDirty(roomID, userID string) {
	t.mu.Lock()
	t.dirty[roomUser{RoomID: roomID, UserID: userID}] = struct{}{}
	t.mu.Unlock()
}

func (t *Tracker) reconcile(ctx context.Context, jobType string, payload types.ReadStatusJobPayload) {
	if t.jobs == nil {
		return
	}
	if err := t.jobs.Enqueue(ctx, queue.NewJob(jobType, payload, queue.PriorityNormal)); err != nil {
		log.Error().Err(err).Str("job_type", jobType).Str("room_id", payload.RoomID).Msg("failed to enqueue read status reconcile")
	}
}

package worker

import (
	"context"
	"errors"
	"time"

	jsoniter "github.com/json-iterator/go"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
	"github.com/xenn00/chat-delivery/internal/entity"
	"github.com/xenn00/chat-delivery/internal/queue"
)

const dlqRetention = 7 * 24 * time.Hour

// StartDLQWorker moves dead jobs from the Redis DLQ list into the durable DLQ store.
func (wp *WorkerPool) StartDLQWorker(ctx context.Context) {
	wp.wg.Add(1)
	go func() {
		defer wp.wg.Done()

		log.Info().Msg("DLQ worker started")
		for {
			if ctx.Err() != nil {
				log.Info().Msg("DLQ worker stopping")
				return
			}
			if _, err := wp.drainDLQOnce(ctx, 10*time.Second); err != nil && ctx.Err() == nil {
				log.Error().Err(err).Msg("DLQWorker pop failed")
				time.Sleep(time.Second)
			}
		}
	}()
}

// drainDLQOnce handles at most one entry. It reports whether an entry was popped.
func (wp *WorkerPool) drainDLQOnce(ctx context.Context, wait time.Duration) (bool, error) {
	result, err := wp.Redis.BLPop(ctx, wait, queue.DLQKey).Result()
	if errors.Is(err, redis.Nil) {
		return false, nil
	} else if err != nil {
		return false, err
	}

	payload := result[1]
	var job queue.Job
	if err := jsoniter.UnmarshalFromString(payload, &job); err != nil {
		log.Warn().Err(err).Msg("DLQWorker invalid job payload")
		return true, nil
	}

	log.Error().
		Str("job_id", job.ID).
		Str("type", job.Type).
		Str("error", job.ErrorMsg).
		Msg("DLQ job detected")

	now := wp.now().UTC()
	doc := entity.DLQJob{
		JobID:              job.ID,
		Type:               job.Type,
		Payload:            []byte(payload),
		Status:             entity.DLQStatusPending,
		OriginalRetryCount: job.Retry,
		ErrorMsg:           job.ErrorMsg,
		CreatedAt:          now,
		UpdatedAt:          now,
		ExpireAt:           now.Add(dlqRetention),
	}

	if err := wp.DLQ.Insert(ctx, doc); err != nil {
		log.Error().Err(err).Str("job_id", job.ID).Msg("Failed to persist DLQ job")
		// put it back so the next pop retries the insert
		if pushErr := wp.Redis.RPush(ctx, queue.DLQKey, payload).Err(); pushErr != nil {
			return true, errors.Join(err, pushErr)
		}
		return true, err
	}

	log.Info().Str("job_id", job.ID).Msg("DLQ job persisted")
	return true, nil
}

func (wp *WorkerPool) GetDLQStats(ctx context.Context) (map[string]int64, error) {
	stats, err := wp.DLQ.Stats(ctx)
	if err != nil {
		return nil, err
	}

	queued, err := wp.Redis.LLen(ctx, queue.DLQKey).Result()
	if err != nil {
		return nil, err
	}
	stats["queued"] = queued
	return stats, nil
}

package worker

import (
	"context"
	"math"
	"time"

	jsoniter "github.com/json-iterator/go"
	"github.com/rs/zerolog/log"
	"github.com/xenn00/chat-delivery/internal/entity"
	"github.com/xenn00/chat-delivery/internal/queue"
	"github.com/xenn00/chat-delivery/internal/utils/types"
)

func (wp *WorkerPool) StartDLQRetryConsumer(ctx context.Context) {
	wp.wg.Add(1)
	go func() {
		defer wp.wg.Done()

		log.Info().Msg("DLQ retry consumer started")
		interval := wp.DLQConfig.RetryInterval
		if interval <= 0 {
			interval = time.Minute
		}
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				log.Info().Msg("DLQ retry consumer stopping")
				return
			case <-ticker.C:
				wp.processDLQJobs(ctx)
			}
		}
	}()
}

func (wp *WorkerPool) processDLQJobs(ctx context.Context) int {
	jobs, err := wp.DLQ.Due(ctx, wp.now(), wp.DLQConfig.MaxRetryCount, wp.DLQConfig.BatchSize)
	if err != nil {
		log.Error().Err(err).Msg("Failed to query DLQ jobs")
		return 0
	}
	if len(jobs) == 0 {
		log.Debug().Msg("No DLQ jobs to process")
		return 0
	}

	log.Info().Int("count", len(jobs)).Msg("Processing DLQ jobs")

	retried := 0
	for i := range jobs {
		if wp.retryDLQJob(ctx, &jobs[i]) {
			retried++
		}
	}
	return retried
}

// retryDLQJob reports whether the job succeeded this time.
func (wp *WorkerPool) retryDLQJob(ctx context.Context, dlqJob *entity.DLQJob) bool {
	claimed, err := wp.DLQ.MarkProcessing(ctx, dlqJob.ID)
	if err != nil {
		log.Error().Err(err).Str("job_id", dlqJob.JobID).Msg("Failed to update DLQ job status")
		return false
	}
	if !claimed {
		return false
	}

	var originalJob queue.Job
	if err := jsoniter.Unmarshal(dlqJob.Payload, &originalJob); err != nil {
		log.Error().Err(err).Str("job_id", dlqJob.JobID).Msg("Failed to unmarshal job payload")
		if err := wp.DLQ.MarkPermanentlyFailed(ctx, dlqJob.ID, "invalid payload: "+err.Error()); err != nil {
			log.Error().Err(err).Str("job_id", dlqJob.JobID).Msg("Failed to mark DLQ job as failed")
		}
		return false
	}

	originalJob.Retry = 0
	originalJob.ErrorMsg = ""

	if err := wp.HandleJob(ctx, originalJob); err != nil {
		wp.handleDLQRetryFailure(ctx, dlqJob, err.Error())
		return false
	}

	if err := wp.DLQ.MarkCompleted(ctx, dlqJob.ID); err != nil {
		log.Error().Err(err).Str("job_id", dlqJob.JobID).Msg("Failed to mark DLQ job as completed")
	}

	log.Info().Str("job_id", dlqJob.JobID).Str("type", dlqJob.Type).Int("dlq_retry_count", dlqJob.RetryCount).Msg("DLQ job successfully retried")
	return true
}

func (wp *WorkerPool) handleDLQRetryFailure(ctx context.Context, dlqJob *entity.DLQJob, errorMsg string) {
	newRetryCount := dlqJob.RetryCount + 1

	if newRetryCount >= wp.DLQConfig.MaxRetryCount {
		if err := wp.DLQ.MarkPermanentlyFailed(ctx, dlqJob.ID, errorMsg); err != nil {
			log.Error().Err(err).Str("job_id", dlqJob.JobID).Msg("Failed to mark DLQ job as permanently failed")
		}
		log.Error().Str("job_id", dlqJob.JobID).Str("type", dlqJob.Type).Int("dlq_retry_count", newRetryCount).Msg("DLQ job permanently failed after max retries")
		return
	}

	nextRetryAt := wp.now().UTC().Add(DLQBackoff(wp.DLQConfig, newRetryCount))
	if err := wp.DLQ.ScheduleRetry(ctx, dlqJob.ID, newRetryCount, errorMsg, nextRetryAt); err != nil {
		log.Error().Err(err).Str("job_id", dlqJob.JobID).Msg("Failed to update DLQ job retry info")
		return
	}

	log.Warn().
		Str("job_id", dlqJob.JobID).
		Str("type", dlqJob.Type).
		Int("dlq_retry_count", newRetryCount).
		Time("next_retry_at", nextRetryAt).
		Msg("DLQ job scheduled for retry")
}

// DLQBackoff is RetryInterval * BackoffFactor^retry.
func DLQBackoff(cfg types.DLQRetryConfig, retry int) time.Duration {
	return time.Duration(float64(cfg.RetryInterval) * math.Pow(cfg.BackoffFactor, float64(retry)))
}

package worker

import (
	"context"
	"strconv"
	"sync"
	"time"

	jsoniter "github.com/json-iterator/go"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
	"github.com/xenn00/chat-delivery/internal/queue"
	"github.com/xenn00/chat-delivery/internal/utils/types"
)

type WorkerPool struct {
	Redis      *redis.Client
	WorkerNum  int
	JobChannel chan string
	DLQ        DLQStore
	DLQConfig  types.DLQRetryConfig

	handlers     map[string]Handler
	alerts       *AlertThrottle
	pollInterval time.Duration
	now          func() time.Time
	wg           sync.WaitGroup
}

func NewWorkerPool(redis *redis.Client, workerNum int, dlq DLQStore, dlqCfg types.DLQRetryConfig, alerts *AlertThrottle) *WorkerPool {
	if workerNum <= 0 {
		workerNum = 1
	}
	return &WorkerPool{
		Redis:        redis,
		WorkerNum:    workerNum,
		JobChannel:   make(chan string, 100),
		DLQ:          dlq,
		DLQConfig:    dlqCfg,
		handlers:     make(map[string]Handler),
		alerts:       alerts,
		pollInterval: time.Second,
		now:          time.Now,
	}
}

func (wp *WorkerPool) Start(ctx context.Context) {
	log.Info().Msgf("Starting worker pool with %d workers", wp.WorkerNum)

	for i := 0; i < wp.WorkerNum; i++ {
		wp.wg.Add(1)
		go wp.worker(ctx, i)
	}

	wp.wg.Add(1)
	go func() {
		defer wp.wg.Done()
		defer close(wp.JobChannel)
		for {
			payload, err := wp.claimNext(ctx)
			if ctx.Err() != nil {
				log.Info().Msg("Stopping worker pool")
				return
			}
			if err != nil {
				log.Error().Err(err).Msg("Worker: failed to pop job")
			}
			if payload == "" {
				select {
				case <-ctx.Done():
					return
				case <-time.After(wp.pollInterval):
				}
				continue
			}

			select {
			case wp.JobChannel <- payload:
			case <-ctx.Done():
				return
			}
		}
	}()
}

// claimNext takes the most urgent runnable job. Scores carry priority as a fraction of a
// second, so everything below now+1 is due. ZREM decides the winner between instances.
func (wp *WorkerPool) claimNext(ctx context.Context) (string, error) {
	result, err := wp.Redis.ZRangeByScore(ctx, queue.PriorityQueueKey, &redis.ZRangeBy{
		Min:    "-inf",
		Max:    "(" + strconv.FormatInt(wp.now().Unix()+1, 10),
		Offset: 0,
		Count:  1,
	}).Result()
	if err != nil || len(result) == 0 {
		return "", err
	}

	removed, err := wp.Redis.ZRem(ctx, queue.PriorityQueueKey, result[0]).Result()
	if err != nil || removed != 1 {
		return "", err
	}
	return result[0], nil
}

func (wp *WorkerPool) worker(ctx context.Context, id int) {
	defer wp.wg.Done()
	log.Info().Msgf("Worker %d started", id)

	for {
		select {
		case <-ctx.Done():
			log.Info().Msgf("Worker %d stopping", id)
			return
		case payload, ok := <-wp.JobChannel:
			if !ok {
				return
			}
			wp.process(ctx, payload)
		}
	}
}

func (wp *WorkerPool) process(ctx context.Context, payload string) {
	var job queue.Job
	if err := jsoniter.UnmarshalFromString(payload, &job); err != nil {
		log.Warn().Err(err).Msg("Worker: failed to unmarshal job payload")
		return
	}

	err := wp.HandleJob(ctx, job)
	if err == nil {
		return
	}

	job.Retry++
	job.ErrorMsg = err.Error()

	now := wp.now()
	if job.Retry >= job.MaxRetry || now.Unix() > job.ExpireAt {
		log.Error().Str("job_id", job.ID).Str("type", job.Type).Msg("Job moved to DLQ")
		dlqBytes, _ := jsoniter.Marshal(job)
		if err := wp.Redis.RPush(ctx, queue.DLQKey, dlqBytes).Err(); err != nil {
			log.Error().Err(err).Str("job_id", job.ID).Msg("failed to push job to DLQ")
		}
		if wp.alerts != nil {
			wp.alerts.Alert(job)
		}
		return
	}

	delay := RetryDelay(job.Retry)
	jobBytes, _ := jsoniter.Marshal(job)
	if err := wp.Redis.ZAdd(ctx, queue.PriorityQueueKey, redis.Z{
		Score:  queue.Score(job, now.Add(delay).Unix()),
		Member: jobBytes,
	}).Err(); err != nil {
		log.Error().Err(err).Str("job_id", job.ID).Msg("failed to requeue job")
		return
	}
	log.Warn().Str("job_id", job.ID).Msgf("Retrying in %v seconds (%d/%d)", delay.Seconds(), job.Retry, job.MaxRetry)
}

// RetryDelay is 5s doubled per attempt.
func RetryDelay(retry int) time.Duration {
	return time.Duration(5*(1<<retry)) * time.Second
}

func (wp *WorkerPool) Wait() {
	wp.wg.Wait()
	log.Info().Msg("All workers have stopped")
}

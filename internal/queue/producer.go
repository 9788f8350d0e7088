package queue

import (
	"context"

	jsoniter "github.com/json-iterator/go"
	"github.com/redis/go-redis/v9"
)

//go:generate go run go.uber.org/mock/mockgen -source=producer.go -destination=../mocks/mock_producer.go -package=mocks

type Producer interface {
	Enqueue(ctx context.Context, job Job) error
}

type RedisProducer struct {
	Redis *redis.Client
}

func NewProducer(redis *redis.Client) Producer {
	return &RedisProducer{Redis: redis}
}

func (p *RedisProducer) Enqueue(ctx context.Context, job Job) error {
	jobBytes, err := jsoniter.Marshal(job)
	if err != nil {
		return err
	}

	return p.Redis.ZAdd(ctx, PriorityQueueKey, redis.Z{
		Score:  Score(job, job.CreatedAt),
		Member: jobBytes,
	}).Err()
}

// Score is the unix second the job becomes runnable; priority breaks ties inside a second.
func Score(job Job, runAt int64) float64 {
	return float64(runAt) + float64(job.Priority)/100
}

package worker

import (
	"context"
	"time"

	"github.com/xenn00/chat-delivery/internal/broadcast"
	"github.com/xenn00/chat-delivery/internal/entity"
	"go.mongodb.org/mongo-driver/v2/bson"
)

// DLQStore is the durable home of jobs that exhausted their queue retries.
type DLQStore interface {
	Insert(ctx context.Context, job entity.DLQJob) error
	Due(ctx context.Context, now time.Time, maxRetry, limit int) ([]entity.DLQJob, error)
	MarkProcessing(ctx context.Context, id bson.ObjectID) (bool, error)
	MarkCompleted(ctx context.Context, id bson.ObjectID) error
	ScheduleRetry(ctx context.Context, id bson.ObjectID, retryCount int, errorMsg string, next time.Time) error
	MarkPermanentlyFailed(ctx context.Context, id bson.ObjectID, errorMsg string) error
	Stats(ctx context.Context) (map[string]int64, error)
}

// Sender delivers to live sessions. *broadcast.Broker satisfies it.
type Sender interface {
	Send(ctx context.Context, destination string, p broadcast.Payload) broadcast.Outcome
}

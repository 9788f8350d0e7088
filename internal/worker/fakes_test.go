package worker

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/xenn00/chat-delivery/internal/broadcast"
	"github.com/xenn00/chat-delivery/internal/entity"
	"go.mongodb.org/mongo-driver/v2/bson"
)

func newRedis(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	return mr, rdb
}

type recordingSender struct {
	mu   sync.Mutex
	sent []sentPayload
}

type sentPayload struct {
	destination string
	payload     broadcast.Payload
}

func (s *recordingSender) Send(_ context.Context, destination string, p broadcast.Payload) broadcast.Outcome {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sent = append(s.sent, sentPayload{destination: destination, payload: p})
	return broadcast.Outcome{Delivered: true, Attempts: 1}
}

type fakeDLQ struct {
	inserted   []entity.DLQJob
	insertErr  error
	due        []entity.DLQJob
	completed  []bson.ObjectID
	retries    map[bson.ObjectID]int
	permanent  []bson.ObjectID
	notClaimed bool
}

func (f *fakeDLQ) Insert(_ context.Context, job entity.DLQJob) error {
	if f.insertErr != nil {
		return f.insertErr
	}
	f.inserted = append(f.inserted, job)
	return nil
}

func (f *fakeDLQ) Due(context.Context, time.Time, int, int) ([]entity.DLQJob, error) {
	return f.due, nil
}

func (f *fakeDLQ) MarkProcessing(context.Context, bson.ObjectID) (bool, error) {
	return !f.notClaimed, nil
}

func (f *fakeDLQ) MarkCompleted(_ context.Context, id bson.ObjectID) error {
	f.completed = append(f.completed, id)
	return nil
}

func (f *fakeDLQ) ScheduleRetry(_ context.Context, id bson.ObjectID, retryCount int, _ string, _ time.Time) error {
	if f.retries == nil {
		f.retries = map[bson.ObjectID]int{}
	}
	f.retries[id] = retryCount
	return nil
}

func (f *fakeDLQ) MarkPermanentlyFailed(_ context.Context, id bson.ObjectID, _ string) error {
	f.permanent = append(f.permanent, id)
	return nil
}

func (f *fakeDLQ) Stats(context.Context) (map[string]int64, error) {
	return map[string]int64{entity.DLQStatusPending: int64(len(f.inserted))}, nil
}

var errHandler = errors.New("handler failed")


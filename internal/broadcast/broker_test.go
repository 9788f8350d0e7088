package broadcast_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xenn00/chat-delivery/internal/broadcast"
	"github.com/xenn00/chat-delivery/internal/mocks"
	"go.uber.org/mock/gomock"
)

// timerRecorder fires immediately and remembers the waits it was asked for.
type timerRecorder struct {
	delays []time.Duration
}

func (r *timerRecorder) After(d time.Duration) <-chan time.Time {
	r.delays = append(r.delays, d)
	ch := make(chan time.Time, 1)
	ch <- time.Now()
	return ch
}

func newBroker(t *testing.T) (*broadcast.Broker, *mocks.MockTransport, *mocks.MockFailedDeliveryStore, *timerRecorder) {
	ctrl := gomock.NewController(t)
	transport := mocks.NewMockTransport(ctrl)
	failed := mocks.NewMockFailedDeliveryStore(ctrl)
	rec := &timerRecorder{}
	b := broadcast.NewBroker(transport, failed, broadcast.Config{RetryCount: 3, BaseDelay: 100 * time.Millisecond},
		broadcast.WithTimer(rec),
		broadcast.WithClock(func() time.Time { return time.Unix(1_700_000_000, 42) }),
	)
	return b, transport, failed, rec
}

func TestSend_SucceedsOnThirdAttempt(t *testing.T) {
	b, transport, failed, rec := newBroker(t)

	gomock.InOrder(
		transport.EXPECT().Deliver(gomock.Any(), "room:r1", []byte("hi")).Return(errors.New("closed")),
		transport.EXPECT().Deliver(gomock.Any(), "room:r1", []byte("hi")).Return(errors.New("closed")),
		transport.EXPECT().Deliver(gomock.Any(), "room:r1", []byte("hi")).Return(nil),
	)
	failed.EXPECT().SaveFailed(gomock.Any(), gomock.Any(), gomock.Any()).Times(0)

	out := b.Send(context.Background(), "room:r1", broadcast.Payload{TempID: "tmp-1", Data: []byte("hi")})

	assert.True(t, out.Delivered)
	assert.Equal(t, 3, out.Attempts)
	assert.Equal(t, []time.Duration{100 * time.Millisecond, 200 * time.Millisecond}, rec.delays)
}

func TestSend_ExhaustedWritesFailedRecordKeyedByTempID(t *testing.T) {
	b, transport, failed, rec := newBroker(t)

	transport.EXPECT().Deliver(gomock.Any(), "user:u1", gomock.Any()).Return(errors.New("closed")).Times(3)
	failed.EXPECT().SaveFailed(gomock.Any(), "tmp-9:user:u1", gomock.Any()).
		DoAndReturn(func(_ context.Context, _ string, e broadcast.FailedDelivery) error {
			assert.Equal(t, 3, e.Attempts)
			assert.Equal(t, "user:u1", e.Destination)
			assert.Equal(t, "closed", e.LastError)
			return nil
		})

	out := b.Send(context.Background(), "user:u1", broadcast.Payload{TempID: "tmp-9", Data: []byte("x")})

	assert.False(t, out.Delivered)
	assert.Equal(t, "tmp-9:user:u1", out.FailedKey)
	assert.Equal(t, []time.Duration{100 * time.Millisecond, 200 * time.Millisecond}, rec.delays)
}

func TestSend_SameTempIDToTwoDestinationsKeepsBothRecords(t *testing.T) {
	mr := miniredis.RunT(t)
	store := broadcast.NewRedisFailedStore(redis.NewClient(&redis.Options{Addr: mr.Addr()}))
	transport := mocks.NewMockTransport(gomock.NewController(t))
	transport.EXPECT().Deliver(gomock.Any(), gomock.Any(), gomock.Any()).Return(errors.New("closed")).Times(2)
	b := broadcast.NewBroker(transport, store, broadcast.Config{}, broadcast.WithTimer(&timerRecorder{}))
	ctx := context.Background()

	room := b.SendWithRetry(ctx, "room:r1", broadcast.Payload{TempID: "tmp-1", Data: []byte("message")}, 1)
	status := b.SendWithRetry(ctx, "user:alice", broadcast.Payload{TempID: "tmp-1", Data: []byte("status")}, 1)
	require.NotEqual(t, room.FailedKey, status.FailedKey)

	n, err := store.Count(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 2, n)

	got, err := store.Get(ctx, room.FailedKey)
	require.NoError(t, err)
	assert.Equal(t, "message", got.Data)
	got, err = store.Get(ctx, status.FailedKey)
	require.NoError(t, err)
	assert.Equal(t, "status", got.Data)
}

func TestSend_NoTempIDFallsBackToTimestampKey(t *testing.T) {
	b, transport, failed, _ := newBroker(t)

	transport.EXPECT().Deliver(gomock.Any(), gomock.Any(), gomock.Any()).Return(errors.New("x")).Times(3)
	failed.EXPECT().SaveFailed(gomock.Any(), "1700000000000000042", gomock.Any()).Return(nil)

	out := b.Send(context.Background(), "room:r1", broadcast.Payload{Data: []byte("x")})
	assert.Equal(t, "1700000000000000042", out.FailedKey)
}

func TestSend_FailedStoreErrorIsAbsorbed(t *testing.T) {
	b, transport, failed, _ := newBroker(t)

	transport.EXPECT().Deliver(gomock.Any(), gomock.Any(), gomock.Any()).Return(errors.New("x")).Times(1)
	failed.EXPECT().SaveFailed(gomock.Any(), gomock.Any(), gomock.Any()).Return(errors.New("redis down"))

	assert.NotPanics(t, func() {
		out := b.SendWithRetry(context.Background(), "room:r1", broadcast.Payload{TempID: "t"}, 1)
		assert.False(t, out.Delivered)
	})
}

func TestFailedKey(t *testing.T) {
	assert.Equal(t, "tmp-1:room:r1", broadcast.FailedKey("tmp-1", "room:r1"))
	assert.NotEqual(t, broadcast.FailedKey("tmp-1", "room:r1"), broadcast.FailedKey("tmp-1", "user:alice"))
}

func TestRedisFailedStore(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	store := broadcast.NewRedisFailedStore(rdb)
	ctx := context.Background()

	entry := broadcast.FailedDelivery{Destination: "room:r1", TempID: "tmp-1", Data: "{}", Attempts: 3, FailedAt: time.Now()}
	require.NoError(t, store.SaveFailed(ctx, "tmp-1", entry))

	got, err := store.Get(ctx, "tmp-1")
	require.NoError(t, err)
	assert.Equal(t, "room:r1", got.Destination)
	assert.Equal(t, 3, got.Attempts)

	ttl := mr.TTL("broadcast:failed:tmp-1")
	assert.Equal(t, broadcast.FailedTTL, ttl)

	n, err := store.Count(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)
}

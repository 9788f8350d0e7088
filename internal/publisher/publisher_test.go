package publisher

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	jsoniter "github.com/json-iterator/go"
	"github.com/redis/go-redis/v9"
	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xenn00/chat-delivery/internal/utils/types"
)

type stubPath struct {
	name  string
	err   error
	delay time.Duration
	got   []types.MessageEvent
}

func (s *stubPath) Name() string { return s.name }

func (s *stubPath) Publish(_ context.Context, e types.MessageEvent) error {
	time.Sleep(s.delay)
	s.got = append(s.got, e)
	return s.err
}

type memWriter struct {
	msgs []kafka.Message
	err  error
}

func (w *memWriter) WriteMessages(_ context.Context, msgs ...kafka.Message) error {
	if w.err != nil {
		return w.err
	}
	w.msgs = append(w.msgs, msgs...)
	return nil
}

func event() types.MessageEvent {
	return types.MessageEvent{MessageID: "m1", RoomID: "r1", SenderID: "alice", ClientTempID: "t1", Content: "hi", CreatedAt: time.Now()}
}

func TestDualPublisher_OnePathFailingDoesNotStopTheOther(t *testing.T) {
	stream := &stubPath{name: "stream"}
	logp := &stubPath{name: "log", err: errors.New("broker down")}

	err := NewDualPublisher(stream, logp).Publish(context.Background(), event())

	require.Error(t, err)
	assert.Contains(t, err.Error(), "log: broker down")
	assert.NotContains(t, err.Error(), "stream")
	assert.Len(t, stream.got, 1)
	assert.Len(t, logp.got, 1)
}

func TestDualPublisher_BothFail(t *testing.T) {
	a := &stubPath{name: "stream", err: errors.New("a")}
	b := &stubPath{name: "log", err: errors.New("b"), delay: 5 * time.Millisecond}

	err := NewDualPublisher(a, b).Publish(context.Background(), event())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "stream: a")
	assert.Contains(t, err.Error(), "log: b")
}

func TestDualPublisher_AllSucceed(t *testing.T) {
	assert.NoError(t, NewDualPublisher(&stubPath{name: "a"}, &stubPath{name: "b"}).Publish(context.Background(), event()))
}

func TestStreamPath_AppendsToRoomShard(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	sp := NewStreamPath(rdb, StreamConfig{Prefix: "chat:stream", Shards: 4, MaxLen: 1000})

	require.NoError(t, sp.Publish(context.Background(), event()))

	key := StreamKey("chat:stream", 4, "r1")
	entries, err := rdb.XRange(context.Background(), key, "-", "+").Result()
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "t1", entries[0].Values["temp_id"])

	var got types.MessageEvent
	require.NoError(t, jsoniter.UnmarshalFromString(entries[0].Values["event"].(string), &got))
	assert.Equal(t, "m1", got.MessageID)
}

func TestShard_StableAndInRange(t *testing.T) {
	for _, room := range []string{"a", "b", "room-42", ""} {
		s := Shard(room, 8)
		assert.GreaterOrEqual(t, s, 0)
		assert.Less(t, s, 8)
		assert.Equal(t, s, Shard(room, 8))
	}
	assert.Equal(t, 0, Shard("x", 1))
	assert.Len(t, StreamKeys("p", 3), 3)
}

func TestLogPath_KeysByRoom(t *testing.T) {
	w := &memWriter{}
	require.NoError(t, NewLogPath(w).Publish(context.Background(), event()))

	require.Len(t, w.msgs, 1)
	assert.Equal(t, []byte("r1"), w.msgs[0].Key)
	assert.Equal(t, "message_id", w.msgs[0].Headers[0].Key)
}

package publisher

import (
	"context"
	"fmt"
	"hash/fnv"

	jsoniter "github.com/json-iterator/go"
	"github.com/redis/go-redis/v9"
	"github.com/xenn00/chat-delivery/internal/utils/types"
)

type StreamConfig struct {
	Prefix string `mapstructure:"PREFIX"`
	Shards int    `mapstructure:"SHARDS"`
	MaxLen int64  `mapstructure:"MAX_LEN"`
}

// StreamPath appends to a Redis stream chosen by room hash, so one room always lands on
// the same stream and keeps its order.
type StreamPath struct {
	rdb *redis.Client
	cfg StreamConfig
}

func NewStreamPath(rdb *redis.Client, cfg StreamConfig) *StreamPath {
	if cfg.Prefix == "" {
		cfg.Prefix = "chat:stream"
	}
	if cfg.Shards <= 0 {
		cfg.Shards = 1
	}
	return &StreamPath{rdb: rdb, cfg: cfg}
}

func (s *StreamPath) Name() string { return "stream" }

func (s *StreamPath) Publish(ctx context.Context, event types.MessageEvent) error {
	data, err := jsoniter.Marshal(event)
	if err != nil {
		return err
	}

	args := &redis.XAddArgs{
		Stream: StreamKey(s.cfg.Prefix, s.cfg.Shards, event.RoomID),
		Values: map[string]any{
			"room_id":    event.RoomID,
			"message_id": event.MessageID,
			"temp_id":    event.ClientTempID,
			"event":      data,
		},
	}
	if s.cfg.MaxLen > 0 {
		args.MaxLen = s.cfg.MaxLen
		args.Approx = true
	}
	return s.rdb.XAdd(ctx, args).Err()
}

func StreamKey(prefix string, shards int, roomID string) string {
	return fmt.Sprintf("%s:%d", prefix, Shard(roomID, shards))
}

func StreamKeys(prefix string, shards int) []string {
	if shards <= 0 {
		shards = 1
	}
	keys := make([]string, shards)
	for i := range keys {
		keys[i] = fmt.Sprintf("%s:%d", prefix, i)
	}
	return keys
}

func Shard(roomID string, shards int) int {
	if shards <= 1 {
		return 0
	}
	h := fnv.New32a()
	_, _ = h.Write([]byte(roomID))
	return int(h.Sum32() % uint32(shards))
}

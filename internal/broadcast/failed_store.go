package broadcast

import (
	"context"
	"strconv"
	"time"

	jsoniter "github.com/json-iterator/go"
	"github.com/redis/go-redis/v9"
)

const (
	failedKeyPrefix = "broadcast:failed:"
	failedIndexKey  = "broadcast:failed:index"
	FailedTTL       = 7 * 24 * time.Hour
)

type RedisFailedStore struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewRedisFailedStore(rdb *redis.Client) *RedisFailedStore {
	return &RedisFailedStore{rdb: rdb, ttl: FailedTTL}
}

func (s *RedisFailedStore) SaveFailed(ctx context.Context, key string, entry FailedDelivery) error {
	data, err := jsoniter.Marshal(entry)
	if err != nil {
		return err
	}

	pipe := s.rdb.TxPipeline()
	pipe.Set(ctx, failedKeyPrefix+key, data, s.ttl)
	pipe.ZAdd(ctx, failedIndexKey, redis.Z{Score: float64(entry.FailedAt.Unix()), Member: key})
	_, err = pipe.Exec(ctx)
	return err
}

func (s *RedisFailedStore) Get(ctx context.Context, key string) (*FailedDelivery, error) {
	data, err := s.rdb.Get(ctx, failedKeyPrefix+key).Bytes()
	if err != nil {
		return nil, err
	}
	var entry FailedDelivery
	if err := jsoniter.Unmarshal(data, &entry); err != nil {
		return nil, err
	}
	return &entry, nil
}

// Count returns entries still inside the retention window, pruning the index as it goes.
func (s *RedisFailedStore) Count(ctx context.Context) (int64, error) {
	cutoff := time.Now().Add(-s.ttl).Unix()
	if err := s.rdb.ZRemRangeByScore(ctx, failedIndexKey, "-inf", "("+strconv.FormatInt(cutoff, 10)).Err(); err != nil {
		return 0, err
	}
	return s.rdb.ZCard(ctx, failedIndexKey).Result()
}

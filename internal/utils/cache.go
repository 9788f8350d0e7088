package utils

import (
	"context"
	"errors"
	"net/http"
	"time"

	jsoniter "github.com/json-iterator/go"
	"github.com/redis/go-redis/v9"
	app_error "github.com/xenn00/chat-delivery/internal/errors"
)

// GetCacheData returns (nil, nil) on a cache miss.
func GetCacheData[T any](ctx context.Context, rdb *redis.Client, cacheKey string) (*T, error) {
	val, err := rdb.Get(ctx, cacheKey).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	} else if err != nil {
		return nil, app_error.Transient("unexpected error occur when trying to get from redis", "redis", err)
	}

	var data T
	if err := jsoniter.Unmarshal(val, &data); err != nil {
		return nil, app_error.Wrap(http.StatusInternalServerError, "unexpected error occur when unmarshal json", "json", err)
	}

	return &data, nil
}

func SetCacheData[T any](ctx context.Context, rdb *redis.Client, cacheKey string, data *T, expire time.Duration) error {
	bytes, err := jsoniter.Marshal(data)
	if err != nil {
		return app_error.Wrap(http.StatusInternalServerError, "unexpected error occur when marshal json", "json", err)
	}

	return rdb.Set(ctx, cacheKey, bytes, expire).Err()
}

// GetOrLoad serves from cache and falls back to load on a miss or a cache error.
// A failed cache write does not fail the call.
func GetOrLoad[T any](ctx context.Context, rdb *redis.Client, cacheKey string, expire time.Duration, load func(ctx context.Context) (*T, error)) (*T, error) {
	if cached, err := GetCacheData[T](ctx, rdb, cacheKey); err == nil && cached != nil {
		return cached, nil
	}

	data, err := load(ctx)
	if err != nil {
		return nil, err
	}
	_ = SetCacheData(ctx, rdb, cacheKey, data, expire)
	return data, nil
}

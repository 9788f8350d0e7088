package state

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

// RedisOptions carries the subset of redis.Options the service tunes.
type RedisOptions struct {
	Addr       string
	Password   string
	DB         int
	PoolSize   int
	ClientName string
}

func (o RedisOptions) client() *redis.Options {
	poolSize := o.PoolSize
	if poolSize <= 0 {
		poolSize = 50
	}
	return &redis.Options{
		Addr:         o.Addr,
		Password:     o.Password,
		DB:           o.DB,
		ClientName:   o.ClientName,
		PoolSize:     poolSize,
		MinIdleConns: poolSize / 10,
		MaxIdleConns: poolSize / 5,
		DialTimeout:  5 * time.Second,
		ReadTimeout:           5 * time.Second,
		WriteTimeout:          5 * time.Second,
		ContextTimeoutEnabled: true,
	}
}

// InitRedis dials Redis and verifies the connection before handing out the client.
func InitRedis(ctx context.Context, opts RedisOptions) (*redis.Client, error) {
	rdb := redis.NewClient(opts.client())

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := rdb.Ping(pingCtx).Err(); err != nil {
		_ = rdb.Close()
		log.Error().Err(err).Str("addr", opts.Addr).Int("db", opts.DB).Msg("redis: ping failed")
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	log.Info().Str("addr", opts.Addr).Int("db", opts.DB).Str("client", opts.ClientName).Msg("redis: connected")
	return rdb, nil
}

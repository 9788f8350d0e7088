package state

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInitRedis(t *testing.T) {
	mr := miniredis.RunT(t)

	client, err := InitRedis(context.Background(), RedisOptions{Addr: mr.Addr()})
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Close() })

	assert.NoError(t, client.Ping(context.Background()).Err())
}

func TestInitRedis_Auth(t *testing.T) {
	mr := miniredis.RunT(t)
	mr.RequireAuth("s3cret")

	tests := []struct {
		name     string
		password string
		wantErr  bool
	}{
		{name: "correct password", password: "s3cret"},
		{name: "wrong password", password: "nope", wantErr: true},
		{name: "no password", password: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client, err := InitRedis(context.Background(), RedisOptions{Addr: mr.Addr(), Password: tt.password})
			if tt.wantErr {
				require.Error(t, err)
				assert.Nil(t, client)
				assert.Contains(t, err.Error(), "failed to connect to Redis")
				return
			}
			require.NoError(t, err)
			_ = client.Close()
		})
	}
}

func TestInitRedis_Unreachable(t *testing.T) {
	client, err := InitRedis(context.Background(), RedisOptions{Addr: "127.0.0.1:1"})

	assert.Error(t, err)
	assert.Nil(t, client)
}

func TestInitRedis_SelectsDatabase(t *testing.T) {
	mr := miniredis.RunT(t)

	client, err := InitRedis(context.Background(), RedisOptions{Addr: mr.Addr(), DB: 3})
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Close() })

	require.NoError(t, client.Set(context.Background(), "room:meta:r1", "x", time.Minute).Err())

	assert.True(t, mr.DB(3).Exists("room:meta:r1"))
	assert.False(t, mr.DB(0).Exists("room:meta:r1"))
}

func TestRedisOptions_PoolDefaults(t *testing.T) {
	opts := RedisOptions{Addr: "localhost:6379"}.client()
	assert.Equal(t, 50, opts.PoolSize)
	assert.Equal(t, 5, opts.MinIdleConns)

	opts = RedisOptions{PoolSize: 200, ClientName: "chat-1"}.client()
	assert.Equal(t, 200, opts.PoolSize)
	assert.Equal(t, 40, opts.MaxIdleConns)
	assert.Equal(t, "chat-1", opts.ClientName)
}

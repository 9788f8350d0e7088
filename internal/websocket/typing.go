package websocket

import (
	"sync"
	"time"

	"github.com/dgraph-io/ristretto/v2"
	"golang.org/x/time/rate"
)

// TypingLimiter rate limits typing frames per (user, room). Limiters live in a
// bounded TTL cache, so idle pairs are evicted instead of accumulating forever.
type TypingLimiter struct {
	mu    sync.Mutex
	cache *ristretto.Cache[string, *rate.Limiter]
	limit rate.Limit
	burst int
	ttl   time.Duration
}

func NewTypingLimiter(perSecond float64, burst int, ttl time.Duration) (*TypingLimiter, error) {
	cache, err := ristretto.NewCache(&ristretto.Config[string, *rate.Limiter]{
		NumCounters:        100_000,
		MaxCost:            10_000,
		BufferItems:        64,
		IgnoreInternalCost: true,
	})
	if err != nil {
		return nil, err
	}

	if burst <= 0 {
		burst = 1
	}
	if ttl <= 0 {
		ttl = time.Minute
	}

	return &TypingLimiter{
		cache: cache,
		limit: rate.Limit(perSecond),
		burst: burst,
		ttl:   ttl,
	}, nil
}

func typingKey(userID, roomID string) string {
	return userID + ":" + roomID
}

// Allow reports whether a typing frame from userID in roomID may be forwarded.
// Every call pushes the entry's expiry forward.
func (l *TypingLimiter) Allow(userID, roomID string) bool {
	key := typingKey(userID, roomID)

	l.mu.Lock()
	defer l.mu.Unlock()

	lim, ok := l.cache.Get(key)
	if !ok {
		lim = rate.NewLimiter(l.limit, l.burst)
	}
	l.cache.SetWithTTL(key, lim, 1, l.ttl)
	l.cache.Wait()

	return lim.Allow()
}

func (l *TypingLimiter) Close() {
	l.cache.Close()
}

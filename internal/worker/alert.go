package worker

import (
	"sync"
	"time"

	"github.com/dgraph-io/ristretto/v2"
	"github.com/rs/zerolog/log"
	"github.com/xenn00/chat-delivery/internal/queue"
)

// AlertThrottle emits at most one dead-letter alert per job type per window.
type AlertThrottle struct {
	mu     sync.Mutex
	seen   *ristretto.Cache[string, time.Time]
	window time.Duration
}

func NewAlertThrottle(window time.Duration) (*AlertThrottle, error) {
	cache, err := ristretto.NewCache(&ristretto.Config[string, time.Time]{
		NumCounters:        1_000,
		MaxCost:            100,
		BufferItems:        64,
		IgnoreInternalCost: true,
	})
	if err != nil {
		return nil, err
	}
	return &AlertThrottle{seen: cache, window: window}, nil
}

// Alert logs the dead letter unless the same job type alerted inside the window.
func (a *AlertThrottle) Alert(job queue.Job) bool {
	a.mu.Lock()
	defer a.mu.Unlock()

	if _, ok := a.seen.Get(job.Type); ok {
		return false
	}
	a.seen.SetWithTTL(job.Type, time.Now(), 1, a.window)
	a.seen.Wait()

	log.Error().Str("job_id", job.ID).Str("type", job.Type).Str("error", job.ErrorMsg).Msg("dead letter alert: job failed permanently")
	return true
}

func (a *AlertThrottle) Close() {
	a.seen.Close()
}

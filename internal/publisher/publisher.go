// Package publisher fans a saved message out over the low-latency stream and the durable log.
package publisher

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/rs/zerolog/log"
	"github.com/xenn00/chat-delivery/internal/utils/types"
	"golang.org/x/sync/errgroup"
)

//go:generate go run go.uber.org/mock/mockgen -source=publisher.go -destination=../mocks/mock_publisher.go -package=mocks

type Path interface {
	Name() string
	Publish(ctx context.Context, event types.MessageEvent) error
}

// DualPublisher runs every path concurrently. A failing path never cancels the others.
type DualPublisher struct {
	paths []Path
}

func NewDualPublisher(paths ...Path) *DualPublisher {
	return &DualPublisher{paths: paths}
}

// Publish returns the joined errors of the failed paths, nil when all succeeded.
func (p *DualPublisher) Publish(ctx context.Context, event types.MessageEvent) error {
	var (
		g    errgroup.Group
		mu   sync.Mutex
		errs []error
	)

	for _, path := range p.paths {
		g.Go(func() error {
			if err := path.Publish(ctx, event); err != nil {
				log.Warn().Err(err).
					Str("path", path.Name()).
					Str("message_id", event.MessageID).
					Str("room_id", event.RoomID).
					Msg("publish path failed")

				mu.Lock()
				errs = append(errs, fmt.Errorf("%s: %w", path.Name(), err))
				mu.Unlock()
			}
			return nil
		})
	}
	_ = g.Wait()

	return errors.Join(errs...)
}

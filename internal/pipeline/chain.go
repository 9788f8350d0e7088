// Package pipeline implements the ordered enrichment and persistence chain applied to one message.
//
// Each filter receives the current Envelope value and a continuation. It returns the
// envelope it produced together with any error; a filter that does not call next
// short-circuits the rest of the chain. Errors are returned as-is, never rewrapped,
// so the saga running the chain sees the original failure.
package pipeline

import (
	"context"
	"time"

	"github.com/xenn00/chat-delivery/internal/entity"
)

// Envelope is the value threaded through the chain. Filters return modified copies.
type Envelope struct {
	Message entity.Message         `json:"message"`
	Room    entity.ChatRoomSummary `json:"room"`

	// Snapshot is captured by RoomLoad before anything mutates the room.
	Snapshot     entity.RoomSnapshot `json:"snapshot"`
	RoomLoaded   bool                `json:"room_loaded"`
	Recipients   []string            `json:"recipients,omitempty"`
	Incremented  []string            `json:"incremented,omitempty"`
	StatusSeeded bool                `json:"status_seeded"`
	RoomUpdated  bool                `json:"room_updated"`
	Published    bool                `json:"published"`
	Duplicate    bool                `json:"duplicate"`
}

// NewEnvelope starts an envelope for a message that has not been persisted yet.
func NewEnvelope(roomID, senderID, content, clientTempID string) Envelope {
	return Envelope{
		Message: entity.Message{
			RoomID:       roomID,
			SenderID:     senderID,
			Content:      content,
			ClientTempID: clientTempID,
		},
	}
}

// Next continues the chain with the given envelope.
type Next func(ctx context.Context, env Envelope) (Envelope, error)

type Filter interface {
	Name() string
	Apply(ctx context.Context, env Envelope, next Next) (Envelope, error)
}

type Chain struct {
	filters []Filter
}

func NewChain(filters ...Filter) *Chain {
	return &Chain{filters: filters}
}

func (c *Chain) Run(ctx context.Context, env Envelope) (Envelope, error) {
	return c.at(0)(ctx, env)
}

func (c *Chain) at(i int) Next {
	if i >= len(c.filters) {
		return func(_ context.Context, env Envelope) (Envelope, error) {
			return env, nil
		}
	}

	f := c.filters[i]
	return func(ctx context.Context, env Envelope) (Envelope, error) {
		return f.Apply(ctx, env, c.at(i+1))
	}
}

// Dependencies are the outbound ports the canonical filters need.
type Dependencies struct {
	Rooms       RoomStore
	Messages    MessageStore
	Previews    PreviewFetcher
	Counter     UnreadCounter
	ReadStatus  ReadStatusSeeder
	Publisher   EventPublisher
	MaxPreviews int
	Now         func() time.Time
}

// Canonical returns the filters in their required order:
// RoomLoad, UrlPreviewEnrichment, UnreadCountIncrement, Save, ReadStatusInit,
// RoomMetadataUpdate, EventPublish.
func Canonical(deps Dependencies) []Filter {
	now := deps.Now
	if now == nil {
		now = time.Now
	}
	return []Filter{
		&RoomLoad{Rooms: deps.Rooms},
		&UrlPreviewEnrichment{Fetcher: deps.Previews, MaxURLs: deps.MaxPreviews},
		&UnreadCountIncrement{Counter: deps.Counter},
		&Save{Messages: deps.Messages, Now: now},
		&ReadStatusInit{Seeder: deps.ReadStatus},
		&RoomMetadataUpdate{Rooms: deps.Rooms},
		&EventPublish{Publisher: deps.Publisher},
	}
}

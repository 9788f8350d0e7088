package pipeline

import (
	"context"
	"time"

	"github.com/xenn00/chat-delivery/internal/entity"
	"github.com/xenn00/chat-delivery/internal/utils/types"
	"go.mongodb.org/mongo-driver/v2/bson"
)

//go:generate go run go.uber.org/mock/mockgen -source=ports.go -destination=../mocks/mock_pipeline_ports.go -package=mocks

type RoomStore interface {
	LoadSummary(ctx context.Context, roomID string) (*entity.ChatRoomSummary, error)
	UpdateLastMessage(ctx context.Context, roomID, messageID string, at time.Time) error
	// RestoreLastMessage writes the snapshot back only while the room still points at messageID.
	RestoreLastMessage(ctx context.Context, roomID, messageID string, snapshot entity.RoomSnapshot) error
}

type MessageStore interface {
	// Save stores msg as a new document. When a SENT message with the same room, sender and
	// temp id already exists, that message comes back with duplicate set and nothing is written.
	Save(ctx context.Context, msg entity.Message) (saved entity.Message, duplicate bool, err error)
	MarkFailed(ctx context.Context, id bson.ObjectID, reason string) error
}

type PreviewFetcher interface {
	Preview(ctx context.Context, url string) (*entity.UrlPreview, error)
}

type UnreadCounter interface {
	IncrementUnread(ctx context.Context, roomID, userID string) error
	DecrementUnread(ctx context.Context, roomID, userID string) error
}

type ReadStatusSeeder interface {
	SeedReadStatus(ctx context.Context, roomID, senderID, messageID string, at time.Time, recipients []string) error
}

type EventPublisher interface {
	Publish(ctx context.Context, event types.MessageEvent) error
}

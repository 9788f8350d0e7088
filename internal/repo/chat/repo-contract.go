package chat_repo

import (
	"context"
	"time"

	"github.com/xenn00/chat-delivery/internal/entity"
	"go.mongodb.org/mongo-driver/v2/bson"
)

type ChatRepoContract interface {
	LoadSummary(ctx context.Context, roomID string) (*entity.ChatRoomSummary, error)
	UpdateLastMessage(ctx context.Context, roomID, messageID string, at time.Time) error
	RestoreLastMessage(ctx context.Context, roomID, messageID string, snapshot entity.RoomSnapshot) error

	Save(ctx context.Context, msg entity.Message) (entity.Message, bool, error)
	MarkFailed(ctx context.Context, id bson.ObjectID, reason string) error
	CountUnreadSince(ctx context.Context, roomID, userID string, since *time.Time) (int64, error)

	SeedReadStatus(ctx context.Context, roomID, senderID, messageID string, at time.Time, recipients []string) error
	GetReadStatus(ctx context.Context, roomID, userID string) (*entity.ReadStatus, error)
	AddUnread(ctx context.Context, roomID, userID string, delta int64) error
	ResetUnread(ctx context.Context, roomID, userID, messageID string, readAt time.Time) error
	ApplyUnreadJob(ctx context.Context, jobID, roomID, userID string, delta int64) (bool, error)
	ApplyReadJob(ctx context.Context, jobID, roomID, userID, messageID string, readAt time.Time) (bool, error)
}

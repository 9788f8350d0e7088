package chat_repo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/samber/lo"
	"github.com/xenn00/chat-delivery/internal/entity"
	app_error "github.com/xenn00/chat-delivery/internal/errors"
	"gorm.io/gorm"
)

func (r *ChatRepo) LoadSummary(ctx context.Context, roomID string) (*entity.ChatRoomSummary, error) {
	if _, err := uuid.Parse(roomID); err != nil {
		return nil, app_error.NotFound("room not found", "room_id")
	}

	var room entity.Room
	if err := r.AppState.DB.WithContext(ctx).Where("id = ?", roomID).First(&room).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, app_error.NotFound("room not found", "room_id")
		}
		return nil, app_error.Transient("failed to fetch room", "db-error", err)
	}

	var members []entity.RoomMember
	if err := r.AppState.DB.WithContext(ctx).
		Where("room_id = ? AND left_at IS NULL", roomID).
		Find(&members).Error; err != nil {
		return nil, app_error.Transient("failed to fetch room members", "db-error", err)
	}

	return &entity.ChatRoomSummary{
		RoomID: roomID,
		Participants: lo.Map(members, func(m entity.RoomMember, _ int) string {
			return m.UserID
		}),
		LastMessageID: lo.FromPtr(room.LastMessageID),
		LastActiveAt:  lo.FromPtr(room.LastActiveAt),
	}, nil
}

// UpdateLastMessage never moves the room backwards in time, so a slow older send
// cannot overwrite a newer one.
func (r *ChatRepo) UpdateLastMessage(ctx context.Context, roomID, messageID string, at time.Time) error {
	res := r.AppState.DB.WithContext(ctx).
		Model(&entity.Room{}).
		Where("id = ? AND (last_active_at IS NULL OR last_active_at <= ?)", roomID, at).
		Updates(map[string]any{
			"last_message_id": messageID,
			"last_active_at":  at,
		})
	if res.Error != nil {
		return app_error.Transient("failed to update room metadata", "db-error", res.Error)
	}
	return nil
}

// RestoreLastMessage is a no-op once another message has become the room's latest.
func (r *ChatRepo) RestoreLastMessage(ctx context.Context, roomID, messageID string, snapshot entity.RoomSnapshot) error {
	updates := map[string]any{
		"last_message_id": nil,
		"last_active_at":  nil,
	}
	if snapshot.PreviousLastMessageID != "" {
		updates["last_message_id"] = snapshot.PreviousLastMessageID
	}
	if !snapshot.PreviousLastActiveAt.IsZero() {
		updates["last_active_at"] = snapshot.PreviousLastActiveAt
	}

	res := r.AppState.DB.WithContext(ctx).
		Model(&entity.Room{}).
		Where("id = ? AND last_message_id = ?", roomID, messageID).
		Updates(updates)
	if res.Error != nil {
		return fmt.Errorf("restore room %s: %w", roomID, res.Error)
	}
	return nil
}

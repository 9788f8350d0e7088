package chat_repo

import (
	"context"
	"errors"
	"time"

	"github.com/samber/lo"
	"github.com/xenn00/chat-delivery/internal/entity"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var roomUserConflict = []clause.Column{{Name: "room_id"}, {Name: "user_id"}}

// SeedReadStatus marks the sender caught up to messageID and makes sure every recipient has a row.
func (r *ChatRepo) SeedReadStatus(ctx context.Context, roomID, senderID, messageID string, at time.Time, recipients []string) error {
	return r.AppState.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		sender := entity.ReadStatus{
			RoomID:            roomID,
			UserID:            senderID,
			LastReadMessageID: messageID,
			LastReadAt:        &at,
		}
		if err := tx.Clauses(clause.OnConflict{
			Columns: roomUserConflict,
			DoUpdates: clause.Assignments(map[string]any{
				"last_read_message_id": messageID,
				"last_read_at":         at,
				"unread_count":         0,
				"updated_at":           time.Now(),
			}),
		}).Create(&sender).Error; err != nil {
			return err
		}

		if len(recipients) == 0 {
			return nil
		}
		rows := lo.Map(recipients, func(userID string, _ int) entity.ReadStatus {
			return entity.ReadStatus{RoomID: roomID, UserID: userID}
		})
		return tx.Clauses(clause.OnConflict{Columns: roomUserConflict, DoNothing: true}).Create(&rows).Error
	})
}

func (r *ChatRepo) GetReadStatus(ctx context.Context, roomID, userID string) (*entity.ReadStatus, error) {
	var rs entity.ReadStatus
	err := r.AppState.DB.WithContext(ctx).Where("room_id = ? AND user_id = ?", roomID, userID).First(&rs).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &rs, nil
}

// AddUnread applies delta and clamps the result at zero.
func (r *ChatRepo) AddUnread(ctx context.Context, roomID, userID string, delta int64) error {
	return addUnread(r.AppState.DB.WithContext(ctx), roomID, userID, delta)
}

func (r *ChatRepo) ResetUnread(ctx context.Context, roomID, userID, messageID string, readAt time.Time) error {
	return resetUnread(r.AppState.DB.WithContext(ctx), roomID, userID, messageID, readAt)
}

func (r *ChatRepo) ApplyUnreadJob(ctx context.Context, jobID, roomID, userID string, delta int64) (bool, error) {
	return r.applyOnce(ctx, jobID, func(tx *gorm.DB) error {
		return addUnread(tx, roomID, userID, delta)
	})
}

func (r *ChatRepo) ApplyReadJob(ctx context.Context, jobID, roomID, userID, messageID string, readAt time.Time) (bool, error) {
	return r.applyOnce(ctx, jobID, func(tx *gorm.DB) error {
		return resetUnread(tx, roomID, userID, messageID, readAt)
	})
}

// applyOnce claims jobID and runs write in one transaction, so a job id is either
// recorded together with its change or not at all.
func (r *ChatRepo) applyOnce(ctx context.Context, jobID string, write func(tx *gorm.DB) error) (bool, error) {
	applied := false
	err := r.AppState.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		claim := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&entity.AppliedCounterJob{JobID: jobID})
		if claim.Error != nil {
			return claim.Error
		}
		if claim.RowsAffected == 0 {
			return nil
		}
		if err := write(tx); err != nil {
			return err
		}
		applied = true
		return nil
	})
	return applied, err
}

func addUnread(db *gorm.DB, roomID, userID string, delta int64) error {
	row := entity.ReadStatus{RoomID: roomID, UserID: userID, UnreadCount: max(delta, 0)}
	return db.Clauses(clause.OnConflict{
		Columns: roomUserConflict,
		DoUpdates: clause.Assignments(map[string]any{
			"unread_count": gorm.Expr("GREATEST(read_statuses.unread_count + ?, 0)", delta),
			"updated_at":   time.Now(),
		}),
	}).Create(&row).Error
}

func resetUnread(db *gorm.DB, roomID, userID, messageID string, readAt time.Time) error {
	row := entity.ReadStatus{RoomID: roomID, UserID: userID, LastReadMessageID: messageID, LastReadAt: &readAt}
	return db.Clauses(clause.OnConflict{
		Columns: roomUserConflict,
		DoUpdates: clause.Assignments(map[string]any{
			"unread_count":         0,
			"last_read_message_id": messageID,
			"last_read_at":         readAt,
			"updated_at":           time.Now(),
		}),
	}).Create(&row).Error
}

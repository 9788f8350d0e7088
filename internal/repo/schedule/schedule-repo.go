package schedule_repo

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/xenn00/chat-delivery/internal/entity"
	"gorm.io/gorm"
)

type ScheduleRepo struct {
	db *gorm.DB
}

func NewScheduleRepo(db *gorm.DB) *ScheduleRepo {
	return &ScheduleRepo{db: db}
}

func (r *ScheduleRepo) Create(ctx context.Context, msg *entity.ScheduledMessage) error {
	if msg.ID == uuid.Nil {
		msg.ID = uuid.New()
	}
	if msg.Status == "" {
		msg.Status = entity.ScheduledPending
	}
	return r.db.WithContext(ctx).Create(msg).Error
}

func (r *ScheduleRepo) DueMessages(ctx context.Context, now, staleBefore time.Time, limit int) ([]entity.ScheduledMessage, error) {
	var msgs []entity.ScheduledMessage
	err := r.db.WithContext(ctx).
		Where("(status = ? AND scheduled_at <= ?) OR (status = ? AND claimed_at < ?)",
			entity.ScheduledPending, now, entity.ScheduledDispatching, staleBefore).
		Order("scheduled_at ASC").
		Limit(limit).
		Find(&msgs).Error
	return msgs, err
}

// Claim takes a PENDING row, or a DISPATCHING row whose claim went stale.
func (r *ScheduleRepo) Claim(ctx context.Context, id string, now, staleBefore time.Time) (bool, error) {
	res := r.db.WithContext(ctx).
		Model(&entity.ScheduledMessage{}).
		Where("id = ? AND (status = ? OR (status = ? AND claimed_at < ?))",
			id, entity.ScheduledPending, entity.ScheduledDispatching, staleBefore).
		Updates(map[string]any{
			"status":     entity.ScheduledDispatching,
			"claimed_at": now,
			"updated_at": time.Now(),
		})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

func (r *ScheduleRepo) MarkDispatched(ctx context.Context, id, messageID string) error {
	_, err := r.transition(ctx, id, entity.ScheduledDispatching, map[string]any{
		"status":     entity.ScheduledDispatched,
		"message_id": messageID,
	})
	return err
}

func (r *ScheduleRepo) MarkFailed(ctx context.Context, id, reason string) error {
	_, err := r.transition(ctx, id, entity.ScheduledDispatching, map[string]any{
		"status":         entity.ScheduledFailed,
		"failure_reason": reason,
	})
	return err
}

// transition applies updates only while the row is still in the expected status.
func (r *ScheduleRepo) transition(ctx context.Context, id string, from entity.ScheduledStatus, updates map[string]any) (bool, error) {
	updates["updated_at"] = time.Now()
	res := r.db.WithContext(ctx).
		Model(&entity.ScheduledMessage{}).
		Where("id = ? AND status = ?", id, from).
		Updates(updates)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

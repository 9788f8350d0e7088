package entity

import "time"

// ReadStatus is the durable read receipt for one (room, user) pair.
type ReadStatus struct {
	ID                int64      `gorm:"primaryKey"`
	RoomID            string     `gorm:"not null;uniqueIndex:ux_read_status_room_user,priority:1"`
	UserID            string     `gorm:"not null;uniqueIndex:ux_read_status_room_user,priority:2"`
	LastReadMessageID string     `gorm:"column:last_read_message_id"`
	LastReadAt        *time.Time `gorm:"column:last_read_at"`
	UnreadCount       int64      `gorm:"not null;default:0"`
	CreatedAt         time.Time  `gorm:"autoCreateTime"`
	UpdatedAt         time.Time  `gorm:"autoUpdateTime"`
}

// AppliedCounterJob remembers a reconcile job id once its change reached ReadStatus.
type AppliedCounterJob struct {
	JobID     string    `gorm:"primaryKey"`
	AppliedAt time.Time `gorm:"autoCreateTime"`
}

package chat_dto

import "time"

type ScheduleMessageResponse struct {
	ID          string    `json:"id"`
	RoomID      string    `json:"room_id"`
	Status      string    `json:"status"`
	ScheduledAt time.Time `json:"scheduled_at"`
}

type MarkReadResponse struct {
	RoomID  string `json:"room_id"`
	Applied bool   `json:"applied"`
}

type UnreadCountResponse struct {
	RoomID      string `json:"room_id"`
	UnreadCount int64  `json:"unread_count"`
}

package queue

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	jsoniter "github.com/json-iterator/go"
)

const (
	PriorityQueueKey = "priority_queue"
	DLQKey           = "priority_queue_dlq"
)

// Job types handled by the worker pool.
const (
	JobReadStatusIncrement = "read_status.increment"
	JobReadStatusDecrement = "read_status.decrement"
	JobReadStatusReset     = "read_status.reset"
)

// Lower runs first within the same second.
const (
	PriorityHigh   = 1
	PriorityNormal = 5
	PriorityLow    = 9
)

type Job struct {
	ID        string          `json:"id"`
	Type      string          `json:"type"`
	Payload   json.RawMessage `json:"payload"`
	Priority  int             `json:"priority"`
	Retry     int             `json:"retry"`
	MaxRetry  int             `json:"max_retry"`
	ErrorMsg  string          `json:"error_msg,omitempty"`
	CreatedAt int64           `json:"created_at"`
	ExpireAt  int64           `json:"expired_at"`
}

func NewJob(jobType string, payload any, priority int) Job {
	now := time.Now()
	return Job{
		ID:        uuid.NewString(),
		Type:      jobType,
		Payload:   MustMarshal(payload),
		Priority:  priority,
		MaxRetry:  3,
		CreatedAt: now.Unix(),
		ExpireAt:  now.Add(24 * time.Hour).Unix(),
	}
}

func MustMarshal(payload any) json.RawMessage {
	b, err := jsoniter.Marshal(payload)
	if err != nil {
		return nil
	}

	return b
}

package entity

import (
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
)

// DeadLetterRecord is written only when a saga's compensation itself fails.
type DeadLetterRecord struct {
	ID                         bson.ObjectID `bson:"_id,omitempty" json:"id,omitempty"`
	SagaID                     string        `bson:"saga_id" json:"saga_id"`
	SagaType                   string        `bson:"saga_type" json:"saga_type"`
	FailedSteps                []string      `bson:"failed_steps" json:"failed_steps"`
	ErrorDetails               string        `bson:"error_details" json:"error_details"`
	Payload                    string        `bson:"payload" json:"payload"`
	RequiresManualIntervention bool          `bson:"requires_manual_intervention" json:"requires_manual_intervention"`
	Timestamp                  time.Time     `bson:"timestamp" json:"timestamp"`
	RetryCount                 int           `bson:"retry_count" json:"retry_count"`
}

package chat_dto

import (
	"time"

	"github.com/go-playground/validator/v10"
	"go.mongodb.org/mongo-driver/v2/bson"
)

type SendMessageRequest struct {
	Content      string `json:"content" validate:"required,min=1,max=4000"`
	ClientTempID string `json:"client_temp_id" validate:"required,max=64"`
}

type ScheduleMessageRequest struct {
	Content      string    `json:"content" validate:"required,min=1,max=4000"`
	ClientTempID string    `json:"client_temp_id" validate:"required,max=64"`
	ScheduledAt  time.Time `json:"scheduled_at" validate:"required"`
}

// MarkReadRequest carries the client's request id so retries of the same read collapse.
type MarkReadRequest struct {
	MessageID string `json:"message_id" validate:"required,objectID"`
	RequestID string `json:"request_id" validate:"required,max=64"`
}

func ObjectIDValidator(fl validator.FieldLevel) bool {
	id := fl.Field().String()
	_, err := bson.ObjectIDFromHex(id)
	return err == nil
}

// NewValidator returns a validator with the custom tags used by the chat requests.
func NewValidator() *validator.Validate {
	validate := validator.New()
	_ = validate.RegisterValidation("objectID", ObjectIDValidator)
	return validate
}

package chat_service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	jsoniter "github.com/json-iterator/go"
	"github.com/rs/zerolog/log"
	"github.com/xenn00/chat-delivery/internal/broadcast"
	"github.com/xenn00/chat-delivery/internal/dtos/chat_dto"
	"github.com/xenn00/chat-delivery/internal/entity"
	app_error "github.com/xenn00/chat-delivery/internal/errors"
	"github.com/xenn00/chat-delivery/internal/pipeline"
	"github.com/xenn00/chat-delivery/internal/saga"
	"go.mongodb.org/mongo-driver/v2/bson"
)

type Dependencies struct {
	Pipeline    pipeline.Dependencies
	Saga        saga.Config
	Tracker     ReadTracker
	Schedules   ScheduleStore
	Broadcaster Broadcaster
}

var _ ChatServiceContract = (*ChatService)(nil)

type ChatService struct {
	saga        *saga.Orchestrator[*SendContext]
	rooms       pipeline.RoomStore
	tracker     ReadTracker
	schedules   ScheduleStore
	broadcaster Broadcaster
	validate    *validator.Validate
	now         func() time.Time
}

func NewChatService(deps Dependencies) *ChatService {
	now := deps.Pipeline.Now
	if now == nil {
		now = time.Now
	}
	return &ChatService{
		saga:        NewSendSaga(deps.Pipeline, deps.Saga),
		rooms:       deps.Pipeline.Rooms,
		tracker:     deps.Tracker,
		schedules:   deps.Schedules,
		broadcaster: deps.Broadcaster,
		validate:    chat_dto.NewValidator(),
		now:         now,
	}
}

// SendMessage runs the send saga and emits exactly one terminal status for the temp id.
// The returned error is nil only when the status is SENT.
func (c *ChatService) SendMessage(ctx context.Context, cmd SendMessageCommand) (*chat_dto.StatusEvent, error) {
	sc, err := c.send(ctx, cmd)
	ev := statusFor(cmd.ClientTempID, sc, err)
	c.notifySender(ctx, cmd, ev)
	return ev, err
}

func (c *ChatService) send(ctx context.Context, cmd SendMessageCommand) (*SendContext, error) {
	if err := c.validate.Struct(cmd); err != nil {
		return nil, app_error.Validation(fmt.Sprintf("invalid fields: %v", err), "validation")
	}

	sc := NewSendContext(cmd)
	if err := c.saga.Run(ctx, sc); err != nil {
		log.Warn().Err(err).
			Str("saga_id", sc.ID).
			Str("temp_id", cmd.ClientTempID).
			Str("state", string(sc.State)).
			Msg("send failed")
		return sc, err
	}
	return sc, nil
}

func statusFor(tempID string, sc *SendContext, err error) *chat_dto.StatusEvent {
	if err != nil {
		return &chat_dto.StatusEvent{
			TempID: tempID,
			Status: chat_dto.StatusFailed,
			Reason: app_error.From(err).Message,
		}
	}

	ts := sc.Env.Message.CreatedAt
	return &chat_dto.StatusEvent{
		TempID:    tempID,
		Status:    chat_dto.StatusSent,
		MessageID: sc.Env.Message.ID.Hex(),
		Timestamp: &ts,
	}
}

func (c *ChatService) notifySender(ctx context.Context, cmd SendMessageCommand, ev *chat_dto.StatusEvent) {
	if c.broadcaster == nil || cmd.SenderID == "" {
		return
	}

	data, err := jsoniter.Marshal(chat_dto.WSOutgoingMessage{
		Event:     chat_dto.EventMessageStatus,
		RoomID:    cmd.RoomID,
		Data:      ev,
		Timestamp: c.now().Unix(),
	})
	if err != nil {
		log.Error().Err(err).Str("temp_id", ev.TempID).Msg("failed to marshal status event")
		return
	}

	c.broadcaster.Send(context.WithoutCancel(ctx), broadcast.UserDestination(cmd.SenderID), broadcast.Payload{
		TempID: ev.TempID,
		Data:   data,
	})
}

func (c *ChatService) ScheduleMessage(ctx context.Context, cmd SendMessageCommand, scheduledAt time.Time) (*chat_dto.ScheduleMessageResponse, error) {
	if err := c.validate.Struct(cmd); err != nil {
		return nil, app_error.Validation(fmt.Sprintf("invalid fields: %v", err), "validation")
	}
	if !scheduledAt.After(c.now()) {
		return nil, app_error.Validation("scheduled_at must be in the future", "scheduled_at")
	}
	if err := c.requireParticipant(ctx, cmd.RoomID, cmd.SenderID); err != nil {
		return nil, err
	}

	msg := &entity.ScheduledMessage{
		ID:           uuid.New(),
		RoomID:       cmd.RoomID,
		SenderID:     cmd.SenderID,
		Content:      cmd.Content,
		ClientTempID: cmd.ClientTempID,
		ScheduledAt:  scheduledAt.UTC(),
		Status:       entity.ScheduledPending,
	}
	if err := c.schedules.Create(ctx, msg); err != nil {
		return nil, err
	}

	log.Info().Str("schedule_id", msg.ID.String()).Str("room_id", msg.RoomID).Time("scheduled_at", msg.ScheduledAt).Msg("message scheduled")

	return &chat_dto.ScheduleMessageResponse{
		ID:          msg.ID.String(),
		RoomID:      msg.RoomID,
		Status:      string(msg.Status),
		ScheduledAt: msg.ScheduledAt,
	}, nil
}

// SendScheduled is called by the dispatch sweep once it has claimed msg.
func (c *ChatService) SendScheduled(ctx context.Context, msg entity.ScheduledMessage) (string, error) {
	ev, err := c.SendMessage(ctx, SendMessageCommand{
		RoomID:       msg.RoomID,
		SenderID:     msg.SenderID,
		Content:      msg.Content,
		ClientTempID: msg.ClientTempID,
	})
	if err != nil {
		return "", err
	}
	return ev.MessageID, nil
}

func (c *ChatService) MarkRead(ctx context.Context, roomID, userID, messageID, requestID string) (*chat_dto.MarkReadResponse, error) {
	if _, err := bson.ObjectIDFromHex(messageID); err != nil {
		return nil, app_error.Validation("message_id is not a valid object id", "message_id")
	}
	if strings.TrimSpace(requestID) == "" {
		return nil, app_error.Validation("request_id is required", "request_id")
	}
	if err := c.requireParticipant(ctx, roomID, userID); err != nil {
		return nil, err
	}

	applied, err := c.tracker.MarkRead(ctx, roomID, userID, messageID, requestID)
	if err != nil {
		return nil, err
	}

	return &chat_dto.MarkReadResponse{RoomID: roomID, Applied: applied}, nil
}

func (c *ChatService) UnreadCount(ctx context.Context, roomID, userID string) (*chat_dto.UnreadCountResponse, error) {
	if err := c.requireParticipant(ctx, roomID, userID); err != nil {
		return nil, err
	}

	count, err := c.tracker.UnreadCount(ctx, roomID, userID)
	if err != nil {
		return nil, err
	}

	return &chat_dto.UnreadCountResponse{RoomID: roomID, UnreadCount: count}, nil
}

func (c *ChatService) requireParticipant(ctx context.Context, roomID, userID string) error {
	room, err := c.rooms.LoadSummary(ctx, roomID)
	if err != nil {
		return err
	}
	if room == nil {
		return app_error.NotFound("room not found", "room_id")
	}
	if !room.HasParticipant(userID) {
		return app_error.Validation("user is not a participant of this room", "user_id")
	}
	return nil
}

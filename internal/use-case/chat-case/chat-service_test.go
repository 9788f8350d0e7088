package chat_service

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	jsoniter "github.com/json-iterator/go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xenn00/chat-delivery/internal/broadcast"
	"github.com/xenn00/chat-delivery/internal/dtos/chat_dto"
	"github.com/xenn00/chat-delivery/internal/entity"
	app_error "github.com/xenn00/chat-delivery/internal/errors"
	"github.com/xenn00/chat-delivery/internal/mocks"
	"github.com/xenn00/chat-delivery/internal/pipeline"
	"github.com/xenn00/chat-delivery/internal/saga"
	"go.mongodb.org/mongo-driver/v2/bson"
	"go.uber.org/mock/gomock"
)

var fixedNow = time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)

type harness struct {
	roomID    string
	rooms     *fakeRooms
	messages  *fakeMessages
	counter   *fakeCounter
	publisher *fakePublisher
	bcast     *fakeBroadcaster
	tracker   *fakeTracker
	schedules *fakeSchedules
	svc       *ChatService
}

func newHarness(t *testing.T, sagaCfg saga.Config) *harness {
	t.Helper()
	roomID := uuid.NewString()
	h := &harness{
		roomID:    roomID,
		rooms:     newFakeRooms(roomID, "alice", "bob", "carol"),
		messages:  newFakeMessages(),
		counter:   newFakeCounter(),
		publisher: &fakePublisher{},
		bcast:     &fakeBroadcaster{},
		tracker:   &fakeTracker{},
		schedules: &fakeSchedules{},
	}
	h.svc = NewChatService(Dependencies{
		Pipeline: pipeline.Dependencies{
			Rooms:      h.rooms,
			Messages:   h.messages,
			Counter:    h.counter,
			ReadStatus: fakeSeeder{},
			Publisher:  h.publisher,
			Now:        func() time.Time { return fixedNow },
		},
		Saga:        sagaCfg,
		Tracker:     h.tracker,
		Schedules:   h.schedules,
		Broadcaster: h.bcast,
	})
	return h
}

func (h *harness) cmd(content string) SendMessageCommand {
	return SendMessageCommand{RoomID: h.roomID, SenderID: "alice", Content: content, ClientTempID: "tmp-1"}
}

func decodeStatus(t *testing.T, p sentPayload) chat_dto.StatusEvent {
	t.Helper()
	var frame struct {
		Event string                `json:"event"`
		Data  chat_dto.StatusEvent `json:"data"`
	}
	require.NoError(t, jsoniter.Unmarshal(p.payload.Data, &frame))
	assert.Equal(t, chat_dto.EventMessageStatus, frame.Event)
	return frame.Data
}

func TestSendMessage_Success(t *testing.T) {
	h := newHarness(t, saga.Config{})

	ev, err := h.svc.SendMessage(context.Background(), h.cmd("hello"))
	require.NoError(t, err)

	assert.Equal(t, chat_dto.StatusSent, ev.Status)
	assert.Equal(t, "tmp-1", ev.TempID)
	require.NotNil(t, ev.Timestamp)
	assert.Equal(t, fixedNow, *ev.Timestamp)

	sent := h.messages.withStatus(entity.MessageStatusSent)
	require.Len(t, sent, 1)
	assert.Equal(t, sent[0].ID.Hex(), ev.MessageID)
	assert.Equal(t, ev.MessageID, h.rooms.get(h.roomID).LastMessageID)

	assert.Equal(t, 1, h.counter.count(h.roomID, "bob"))
	assert.Equal(t, 1, h.counter.count(h.roomID, "carol"))
	assert.Equal(t, 0, h.counter.count(h.roomID, "alice"))
	require.Len(t, h.publisher.events, 1)

	require.Len(t, h.bcast.sent, 1)
	assert.Equal(t, broadcast.UserDestination("alice"), h.bcast.sent[0].destination)
	assert.Equal(t, "tmp-1", h.bcast.sent[0].payload.TempID)
	assert.Equal(t, chat_dto.StatusSent, decodeStatus(t, h.bcast.sent[0]).Status)
}

func TestSendMessage_KMessagesGiveUnreadK(t *testing.T) {
	h := newHarness(t, saga.Config{})

	for i := 0; i < 4; i++ {
		cmd := h.cmd("msg")
		cmd.ClientTempID = fmt.Sprintf("tmp-%d", i)
		_, err := h.svc.SendMessage(context.Background(), cmd)
		require.NoError(t, err)
	}

	assert.Equal(t, 4, h.counter.count(h.roomID, "bob"))
	assert.Equal(t, 4, h.counter.count(h.roomID, "carol"))
}

func TestSendMessage_ValidationRejectsWithoutSaga(t *testing.T) {
	h := newHarness(t, saga.Config{})

	ev, err := h.svc.SendMessage(context.Background(), h.cmd(""))
	require.Error(t, err)
	assert.True(t, app_error.IsValidation(err))

	assert.Equal(t, chat_dto.StatusFailed, ev.Status)
	assert.NotEmpty(t, ev.Reason)
	assert.Equal(t, 0, h.rooms.loads)
	require.Len(t, h.bcast.sent, 1)
	assert.Equal(t, chat_dto.StatusFailed, decodeStatus(t, h.bcast.sent[0]).Status)
}

func TestSendMessage_MissingRoomFails(t *testing.T) {
	h := newHarness(t, saga.Config{})
	cmd := h.cmd("hello")
	cmd.RoomID = uuid.NewString()

	ev, err := h.svc.SendMessage(context.Background(), cmd)
	require.Error(t, err)
	assert.True(t, app_error.IsNotFound(err))
	assert.Equal(t, chat_dto.StatusFailed, ev.Status)
	assert.Equal(t, "room not found", ev.Reason)
}

func TestSendMessage_SaveFailureRestoresEverything(t *testing.T) {
	h := newHarness(t, saga.Config{})
	h.messages.saveErr = errStoreDown
	before := h.rooms.get(h.roomID)

	ev, err := h.svc.SendMessage(context.Background(), h.cmd("hello"))
	require.ErrorIs(t, err, errStoreDown)
	assert.Equal(t, chat_dto.StatusFailed, ev.Status)

	after := h.rooms.get(h.roomID)
	assert.Equal(t, before.LastMessageID, after.LastMessageID)
	assert.Equal(t, before.LastActiveAt, after.LastActiveAt)
	assert.Equal(t, 0, h.counter.count(h.roomID, "bob"))
	assert.Equal(t, 0, h.counter.count(h.roomID, "carol"))
	assert.Empty(t, h.publisher.events)
}

func TestSendMessage_RoomUpdateFailureMarksMessageFailed(t *testing.T) {
	h := newHarness(t, saga.Config{})
	h.rooms.updateErr = errStoreDown

	ev, err := h.svc.SendMessage(context.Background(), h.cmd("hello"))
	require.ErrorIs(t, err, errStoreDown)
	assert.Equal(t, chat_dto.StatusFailed, ev.Status)

	assert.Empty(t, h.messages.withStatus(entity.MessageStatusSent))
	require.Len(t, h.messages.withStatus(entity.MessageStatusFailed), 1)
	assert.Equal(t, "prev", h.rooms.get(h.roomID).LastMessageID)
	assert.Equal(t, 0, h.counter.count(h.roomID, "bob"))
}

func TestSendMessage_ResendAfterFailureStoresNewMessage(t *testing.T) {
	h := newHarness(t, saga.Config{})
	h.rooms.updateErr = errStoreDown

	ev, err := h.svc.SendMessage(context.Background(), h.cmd("hello"))
	require.Error(t, err)
	assert.Equal(t, chat_dto.StatusFailed, ev.Status)

	h.rooms.updateErr = nil
	ev, err = h.svc.SendMessage(context.Background(), h.cmd("hello"))
	require.NoError(t, err)
	assert.Equal(t, chat_dto.StatusSent, ev.Status)

	sent := h.messages.withStatus(entity.MessageStatusSent)
	require.Len(t, sent, 1)
	assert.Equal(t, sent[0].ID.Hex(), ev.MessageID)
	assert.Equal(t, ev.MessageID, h.rooms.get(h.roomID).LastMessageID)
	require.Len(t, h.messages.withStatus(entity.MessageStatusFailed), 1)
	assert.NotEqual(t, ev.MessageID, h.messages.withStatus(entity.MessageStatusFailed)[0].ID.Hex())

	assert.Equal(t, 1, h.counter.count(h.roomID, "bob"))
	assert.Equal(t, 1, h.counter.count(h.roomID, "carol"))
}

func TestSendMessage_ResendOfDeliveredMessageCountsOnce(t *testing.T) {
	h := newHarness(t, saga.Config{})

	first, err := h.svc.SendMessage(context.Background(), h.cmd("hello"))
	require.NoError(t, err)

	other := h.cmd("newer")
	other.ClientTempID = "tmp-2"
	newer, err := h.svc.SendMessage(context.Background(), other)
	require.NoError(t, err)

	again, err := h.svc.SendMessage(context.Background(), h.cmd("hello"))
	require.NoError(t, err)

	assert.Equal(t, chat_dto.StatusSent, again.Status)
	assert.Equal(t, first.MessageID, again.MessageID)
	assert.Len(t, h.messages.withStatus(entity.MessageStatusSent), 2)

	assert.Equal(t, 2, h.counter.count(h.roomID, "bob"))
	assert.Equal(t, 2, h.counter.count(h.roomID, "carol"))
	assert.Len(t, h.publisher.events, 2)
	assert.Equal(t, newer.MessageID, h.rooms.get(h.roomID).LastMessageID)
}

func TestSendMessage_CompensationFailureIsDeadLettered(t *testing.T) {
	ctrl := gomock.NewController(t)
	sink := mocks.NewMockDeadLetterSink(ctrl)

	h := newHarness(t, saga.Config{DeadLetters: sink})
	h.messages.saveErr = errStoreDown
	h.counter.decErr = errStoreDown

	sink.EXPECT().Record(gomock.Any(), gomock.Any()).DoAndReturn(func(_ context.Context, rec entity.DeadLetterRecord) error {
		assert.Equal(t, SendSagaType, rec.SagaType)
		assert.Equal(t, []string{"unread-increment"}, rec.FailedSteps)
		assert.True(t, rec.RequiresManualIntervention)
		assert.Contains(t, rec.Payload, `"client_temp_id":"tmp-1"`)
		return nil
	})

	ev, err := h.svc.SendMessage(context.Background(), h.cmd("hello"))
	require.Error(t, err)
	assert.Equal(t, app_error.KindCompensation, app_error.KindOf(err))
	assert.Equal(t, chat_dto.StatusFailed, ev.Status)
}

func TestSendSaga_StepOrder(t *testing.T) {
	o := NewSendSaga(pipeline.Dependencies{}, saga.Config{})
	assert.Equal(t, []string{"room-load", "unread-increment", "message-save", "room-metadata", "event-publish"}, o.StepNames())
}

func TestDecrementRecipients_IsIdempotent(t *testing.T) {
	counter := newFakeCounter()
	counter.counts["r:bob"] = 1
	sc := NewSendContext(SendMessageCommand{RoomID: "r"})
	sc.Env.Incremented = []string{"bob"}

	comp := decrementRecipients(counter)
	require.NoError(t, comp(context.Background(), sc))
	require.NoError(t, comp(context.Background(), sc))

	assert.Equal(t, 0, counter.count("r", "bob"))
	assert.Empty(t, sc.Env.Incremented)
}

func TestRestoreRoom_SkipsUnsavedMessage(t *testing.T) {
	rooms := newFakeRooms("r", "alice")
	sc := NewSendContext(SendMessageCommand{RoomID: "r"})

	require.NoError(t, restoreRoom(rooms)(context.Background(), sc))
	assert.Equal(t, "prev", rooms.get("r").LastMessageID)
}

func TestScheduleMessage(t *testing.T) {
	h := newHarness(t, saga.Config{})
	h.svc.now = func() time.Time { return fixedNow }

	_, err := h.svc.ScheduleMessage(context.Background(), h.cmd("later"), fixedNow.Add(-time.Minute))
	assert.True(t, app_error.IsValidation(err))

	resp, err := h.svc.ScheduleMessage(context.Background(), h.cmd("later"), fixedNow.Add(time.Hour))
	require.NoError(t, err)
	assert.Equal(t, string(entity.ScheduledPending), resp.Status)
	require.Len(t, h.schedules.created, 1)
	assert.Equal(t, resp.ID, h.schedules.created[0].ID.String())
	assert.Equal(t, fixedNow.Add(time.Hour), h.schedules.created[0].ScheduledAt)
}

func TestScheduleMessage_NonParticipant(t *testing.T) {
	h := newHarness(t, saga.Config{})
	h.svc.now = func() time.Time { return fixedNow }
	cmd := h.cmd("later")
	cmd.SenderID = "mallory"

	_, err := h.svc.ScheduleMessage(context.Background(), cmd, fixedNow.Add(time.Hour))
	assert.True(t, app_error.IsValidation(err))
	assert.Empty(t, h.schedules.created)
}

func TestSendScheduled_ReturnsMessageID(t *testing.T) {
	h := newHarness(t, saga.Config{})

	id, err := h.svc.SendScheduled(context.Background(), entity.ScheduledMessage{
		ID:           uuid.New(),
		RoomID:       h.roomID,
		SenderID:     "alice",
		Content:      "scheduled",
		ClientTempID: "sched-1",
	})
	require.NoError(t, err)
	_, perr := bson.ObjectIDFromHex(id)
	assert.NoError(t, perr)
	assert.Equal(t, id, h.rooms.get(h.roomID).LastMessageID)
}

func TestMarkRead(t *testing.T) {
	h := newHarness(t, saga.Config{})
	msgID := bson.NewObjectID().Hex()

	first, err := h.svc.MarkRead(context.Background(), h.roomID, "bob", msgID, "req-1")
	require.NoError(t, err)
	assert.True(t, first.Applied)

	again, err := h.svc.MarkRead(context.Background(), h.roomID, "bob", msgID, "req-1")
	require.NoError(t, err)
	assert.False(t, again.Applied)

	_, err = h.svc.MarkRead(context.Background(), h.roomID, "bob", "not-an-id", "req-2")
	assert.True(t, app_error.IsValidation(err))

	_, err = h.svc.MarkRead(context.Background(), h.roomID, "mallory", msgID, "req-3")
	assert.True(t, app_error.IsValidation(err))
}

func TestUnreadCount(t *testing.T) {
	h := newHarness(t, saga.Config{})
	h.tracker.count = 7

	resp, err := h.svc.UnreadCount(context.Background(), h.roomID, "bob")
	require.NoError(t, err)
	assert.Equal(t, int64(7), resp.UnreadCount)

	_, err = h.svc.UnreadCount(context.Background(), uuid.NewString(), "bob")
	assert.True(t, app_error.IsNotFound(err))
}

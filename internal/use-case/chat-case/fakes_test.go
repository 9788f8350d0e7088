package chat_service

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/xenn00/chat-delivery/internal/broadcast"
	"github.com/xenn00/chat-delivery/internal/entity"
	"github.com/xenn00/chat-delivery/internal/utils/types"
	"go.mongodb.org/mongo-driver/v2/bson"
)

type fakeRooms struct {
	mu        sync.Mutex
	summaries map[string]*entity.ChatRoomSummary
	updateErr error
	loads     int
}

func newFakeRooms(roomID string, participants ...string) *fakeRooms {
	return &fakeRooms{summaries: map[string]*entity.ChatRoomSummary{
		roomID: {RoomID: roomID, Participants: participants, LastMessageID: "prev", LastActiveAt: time.Unix(100, 0).UTC()},
	}}
}

func (r *fakeRooms) LoadSummary(_ context.Context, roomID string) (*entity.ChatRoomSummary, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.loads++
	s, ok := r.summaries[roomID]
	if !ok {
		return nil, nil
	}
	cp := *s
	return &cp, nil
}

func (r *fakeRooms) UpdateLastMessage(_ context.Context, roomID, messageID string, at time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.updateErr != nil {
		return r.updateErr
	}
	r.summaries[roomID].LastMessageID = messageID
	r.summaries[roomID].LastActiveAt = at
	return nil
}

func (r *fakeRooms) RestoreLastMessage(_ context.Context, roomID, messageID string, snap entity.RoomSnapshot) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	s := r.summaries[roomID]
	if s.LastMessageID != messageID {
		return nil
	}
	s.LastMessageID = snap.PreviousLastMessageID
	s.LastActiveAt = snap.PreviousLastActiveAt
	return nil
}

func (r *fakeRooms) get(roomID string) entity.ChatRoomSummary {
	r.mu.Lock()
	defer r.mu.Unlock()
	return *r.summaries[roomID]
}

type fakeMessages struct {
	mu      sync.Mutex
	saved   map[bson.ObjectID]entity.Message
	saveErr error
}

func newFakeMessages() *fakeMessages {
	return &fakeMessages{saved: map[bson.ObjectID]entity.Message{}}
}

// Save mirrors the SENT-only unique temp id index of the Mongo repo.
func (m *fakeMessages) Save(_ context.Context, msg entity.Message) (entity.Message, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.saveErr != nil {
		return msg, false, m.saveErr
	}
	for _, existing := range m.saved {
		if msg.ClientTempID != "" && existing.ClientTempID == msg.ClientTempID &&
			existing.RoomID == msg.RoomID && existing.SenderID == msg.SenderID &&
			existing.Status == entity.MessageStatusSent {
			return existing, true, nil
		}
	}
	msg.ID = bson.NewObjectID()
	m.saved[msg.ID] = msg
	return msg, false, nil
}

func (m *fakeMessages) MarkFailed(_ context.Context, id bson.ObjectID, reason string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	msg := m.saved[id]
	msg.Status = entity.MessageStatusFailed
	msg.FailureReason = reason
	m.saved[id] = msg
	return nil
}

func (m *fakeMessages) withStatus(status entity.MessageStatus) []entity.Message {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []entity.Message
	for _, msg := range m.saved {
		if msg.Status == status {
			out = append(out, msg)
		}
	}
	return out
}

type fakeCounter struct {
	mu     sync.Mutex
	counts map[string]int
	decErr error
}

func newFakeCounter() *fakeCounter {
	return &fakeCounter{counts: map[string]int{}}
}

func (c *fakeCounter) IncrementUnread(_ context.Context, roomID, userID string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.counts[roomID+":"+userID]++
	return nil
}

func (c *fakeCounter) DecrementUnread(_ context.Context, roomID, userID string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.decErr != nil {
		return c.decErr
	}
	if c.counts[roomID+":"+userID] > 0 {
		c.counts[roomID+":"+userID]--
	}
	return nil
}

func (c *fakeCounter) count(roomID, userID string) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.counts[roomID+":"+userID]
}

type fakeSeeder struct{}

func (fakeSeeder) SeedReadStatus(context.Context, string, string, string, time.Time, []string) error {
	return nil
}

type fakePublisher struct {
	mu     sync.Mutex
	events []types.MessageEvent
}

func (p *fakePublisher) Publish(_ context.Context, e types.MessageEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, e)
	return nil
}

type sentPayload struct {
	destination string
	payload     broadcast.Payload
}

type fakeBroadcaster struct {
	mu   sync.Mutex
	sent []sentPayload
}

func (b *fakeBroadcaster) Send(_ context.Context, destination string, p broadcast.Payload) broadcast.Outcome {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.sent = append(b.sent, sentPayload{destination: destination, payload: p})
	return broadcast.Outcome{Delivered: true, Attempts: 1}
}

type fakeTracker struct {
	seen  map[string]bool
	count int64
	err   error
}

func (t *fakeTracker) MarkRead(_ context.Context, roomID, userID, _, requestID string) (bool, error) {
	if t.err != nil {
		return false, t.err
	}
	if t.seen == nil {
		t.seen = map[string]bool{}
	}
	key := roomID + ":" + userID + ":" + requestID
	if t.seen[key] {
		return false, nil
	}
	t.seen[key] = true
	return true, nil
}

func (t *fakeTracker) UnreadCount(context.Context, string, string) (int64, error) {
	return t.count, t.err
}

type fakeSchedules struct {
	created []entity.ScheduledMessage
	err     error
}

func (s *fakeSchedules) Create(_ context.Context, msg *entity.ScheduledMessage) error {
	if s.err != nil {
		return s.err
	}
	s.created = append(s.created, *msg)
	return nil
}

var errStoreDown = errors.New("store down")

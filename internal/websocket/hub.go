package websocket

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	jsoniter "github.com/json-iterator/go"
	"github.com/rs/zerolog/log"
	"github.com/samber/lo"
	"github.com/xenn00/chat-delivery/internal/broadcast"
	"github.com/xenn00/chat-delivery/internal/dtos/chat_dto"
)

var (
	ErrUnknownDestination = errors.New("ws: unknown destination")
	ErrNoSessionAccepted  = errors.New("ws: no session accepted the payload")
)

var _ broadcast.Transport = (*Hub)(nil)

type Hub struct {
	// Room management
	rooms map[string]map[*Client]struct{}
	mu    sync.RWMutex

	// User tracking
	userClients map[string]map[*Client]struct{}
	userMu      sync.RWMutex

	typing *TypingLimiter

	ctx    context.Context
	cancel context.CancelFunc

	stats   HubStats
	statsMu sync.Mutex

	inactiveAfter time.Duration
}

type HubStats struct {
	TotalRooms       int       `json:"total_rooms"`
	TotalClients     int       `json:"total_clients"`
	TotalConnections int64     `json:"total_connections"`
	MessageSent      int64     `json:"message_sent"`
	SlowConsumers    int64     `json:"slow_consumers"`
	TypingDropped    int64     `json:"typing_dropped"`
	LastReset        time.Time `json:"last_reset"`
}

// NewHub starts the cleanup routine. typing may be nil to forward every typing frame.
func NewHub(typing *TypingLimiter) *Hub {
	ctx, cancel := context.WithCancel(context.Background())
	hub := &Hub{
		rooms:         make(map[string]map[*Client]struct{}),
		userClients:   make(map[string]map[*Client]struct{}),
		typing:        typing,
		ctx:           ctx,
		cancel:        cancel,
		stats:         HubStats{LastReset: time.Now()},
		inactiveAfter: 2 * pongWait,
	}

	go hub.cleanupRoutine(time.Minute)

	return hub
}

// Register adds a client to its room and starts its pumps.
func (h *Hub) Register(client *Client) {
	wasOnline := h.IsUserOnlineInRoom(client.RoomID, client.UserID)

	h.mu.Lock()
	if h.rooms[client.RoomID] == nil {
		h.rooms[client.RoomID] = make(map[*Client]struct{})
	}
	h.rooms[client.RoomID][client] = struct{}{}
	roomSize := len(h.rooms[client.RoomID])
	h.mu.Unlock()

	h.userMu.Lock()
	if h.userClients[client.UserID] == nil {
		h.userClients[client.UserID] = make(map[*Client]struct{})
	}
	h.userClients[client.UserID][client] = struct{}{}
	h.userMu.Unlock()

	h.updateStats(func(stats *HubStats) {
		stats.TotalConnections++
	})

	client.Start()

	if !wasOnline {
		h.broadcastUserStatus(client.RoomID, client.UserID, true)
	}

	log.Info().Str("room_id", client.RoomID).Str("client_id", client.ID).Str("user_id", client.UserID).Int("room_size", roomSize).Msg("ws: client registered to room")
}

// Unregister removes a client from the hub. Use Client.Close to also stop the session.
func (h *Hub) Unregister(client *Client) {
	h.mu.Lock()
	if clients, ok := h.rooms[client.RoomID]; ok {
		delete(clients, client)
		if len(clients) == 0 {
			delete(h.rooms, client.RoomID)
		}
	}
	h.mu.Unlock()

	h.userMu.Lock()
	if clients, ok := h.userClients[client.UserID]; ok {
		delete(clients, client)
		if len(clients) == 0 {
			delete(h.userClients, client.UserID)
		}
	}
	h.userMu.Unlock()

	if !h.IsUserOnlineInRoom(client.RoomID, client.UserID) {
		h.broadcastUserStatus(client.RoomID, client.UserID, false)
	}

	log.Info().Str("room_id", client.RoomID).Str("client_id", client.ID).Str("user_id", client.UserID).Msg("ws: client unregistered from room")
}

// Deliver implements broadcast.Transport for "room:<id>" and "user:<id>" destinations.
// A destination with no live session is not an error; one whose sessions all refused is.
func (h *Hub) Deliver(ctx context.Context, destination string, payload []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	var targets []*Client
	switch {
	case strings.HasPrefix(destination, "room:"):
		targets = h.GetRoomClients(strings.TrimPrefix(destination, "room:"))
	case strings.HasPrefix(destination, "user:"):
		targets = h.GetUserClients(strings.TrimPrefix(destination, "user:"))
	default:
		return fmt.Errorf("%w: %s", ErrUnknownDestination, destination)
	}

	if len(targets) == 0 {
		return nil
	}
	if h.fanout(targets, payload) == 0 {
		return ErrNoSessionAccepted
	}
	return nil
}

func (h *Hub) broadcastToRoomExceptUser(roomID string, message chat_dto.WSOutgoingMessage, exceptUserID string) {
	targets := lo.Filter(h.GetRoomClients(roomID), func(c *Client, _ int) bool {
		return c.UserID != exceptUserID
	})
	h.broadcast(targets, message)
}

func (h *Hub) broadcast(targets []*Client, message chat_dto.WSOutgoingMessage) {
	if len(targets) == 0 {
		return
	}
	data, err := jsoniter.Marshal(message)
	if err != nil {
		log.Error().Err(err).Str("event", message.Event).Msg("ws: failed to marshal broadcast message")
		return
	}
	h.fanout(targets, data)
}

// fanout hands data to every target without blocking and evicts slow consumers.
func (h *Hub) fanout(targets []*Client, data []byte) int {
	accepted := 0
	var slow int64
	for _, c := range targets {
		if c.enqueue(data) {
			accepted++
			continue
		}
		if c.IsClientActive() {
			slow++
			log.Warn().Str("client_id", c.ID).Str("user_id", c.UserID).Msg("ws: slow consumer, closing session")
			go c.Close()
		}
	}

	h.updateStats(func(stats *HubStats) {
		stats.MessageSent += int64(accepted)
		stats.SlowConsumers += slow
	})
	return accepted
}

func (h *Hub) handleFrame(c *Client, frame chat_dto.WSIncomingMessage) {
	switch frame.Type {
	case chat_dto.WSTypePing:
		c.SendMessage(chat_dto.WSOutgoingMessage{Event: chat_dto.EventPong, Timestamp: time.Now().Unix()})

	case chat_dto.WSTypeTyping:
		if h.typing != nil && !h.typing.Allow(c.UserID, c.RoomID) {
			h.updateStats(func(stats *HubStats) {
				stats.TypingDropped++
			})
			return
		}
		h.broadcastToRoomExceptUser(c.RoomID, chat_dto.WSOutgoingMessage{
			Event:    chat_dto.EventTyping,
			RoomID:   c.RoomID,
			SenderID: c.UserID,
			Data: map[string]any{
				"user_id": c.UserID,
				"typing":  frame.Typing,
			},
			Timestamp: time.Now().Unix(),
		}, c.UserID)

	default:
		log.Debug().Str("client_id", c.ID).Str("type", frame.Type).Msg("ws: unsupported frame type")
	}
}

// GetRoomClients returns all active clients in a room
func (h *Hub) GetRoomClients(roomID string) []*Client {
	h.mu.RLock()
	defer h.mu.RUnlock()

	var clients []*Client
	for client := range h.rooms[roomID] {
		if client.IsClientActive() {
			clients = append(clients, client)
		}
	}
	return clients
}

// GetUserClients returns all active clients for a user
func (h *Hub) GetUserClients(userID string) []*Client {
	h.userMu.RLock()
	defer h.userMu.RUnlock()

	var clients []*Client
	for client := range h.userClients[userID] {
		if client.IsClientActive() {
			clients = append(clients, client)
		}
	}
	return clients
}

func (h *Hub) IsUserOnlineInRoom(roomID, userID string) bool {
	return lo.ContainsBy(h.GetRoomClients(roomID), func(c *Client) bool {
		return c.UserID == userID
	})
}

func (h *Hub) GetRoomStats(roomID string) map[string]any {
	clients := h.GetRoomClients(roomID)
	users := lo.Uniq(lo.Map(clients, func(c *Client, _ int) string { return c.UserID }))

	return map[string]any{
		"room_id":            roomID,
		"exists":             len(clients) > 0,
		"active_connections": len(clients),
		"unique_users":       len(users),
	}
}

func (h *Hub) GetHubStats() HubStats {
	h.mu.RLock()
	totalRooms := len(h.rooms)
	totalClients := 0
	for _, clients := range h.rooms {
		for client := range clients {
			if client.IsClientActive() {
				totalClients++
			}
		}
	}
	h.mu.RUnlock()

	h.statsMu.Lock()
	defer h.statsMu.Unlock()
	h.stats.TotalRooms = totalRooms
	h.stats.TotalClients = totalClients
	return h.stats
}

func (h *Hub) broadcastUserStatus(roomID, userID string, online bool) {
	status := "offline"
	if online {
		status = "online"
	}

	h.broadcastToRoomExceptUser(roomID, chat_dto.WSOutgoingMessage{
		Event:  chat_dto.EventUserStatus,
		RoomID: roomID,
		Data: map[string]any{
			"user_id": userID,
			"status":  status,
		},
		Timestamp: time.Now().Unix(),
	}, userID)
}

func (h *Hub) updateStats(fn func(*HubStats)) {
	h.statsMu.Lock()
	fn(&h.stats)
	h.statsMu.Unlock()
}

func (h *Hub) cleanupRoutine(every time.Duration) {
	ticker := time.NewTicker(every)
	defer ticker.Stop()

	for {
		select {
		case <-h.ctx.Done():
			return
		case <-ticker.C:
			h.performCleanup(time.Now())
		}
	}
}

func (h *Hub) performCleanup(now time.Time) int {
	var toRemove []*Client

	h.mu.RLock()
	for _, clients := range h.rooms {
		for client := range clients {
			if !client.IsClientActive() || now.Sub(client.GetLastSeen()) > h.inactiveAfter {
				toRemove = append(toRemove, client)
			}
		}
	}
	h.mu.RUnlock()

	for _, client := range toRemove {
		log.Info().Str("client_id", client.ID).Str("room_id", client.RoomID).Msg("ws: cleaning up inactive client")
		client.Close()
	}

	log.Debug().Int("cleaned", len(toRemove)).Msg("ws: cleanup routine completed")
	return len(toRemove)
}

// Close gracefully shuts down the hub
func (h *Hub) Close() {
	log.Info().Msg("ws: shutting down hub")

	h.mu.RLock()
	var all []*Client
	for _, clients := range h.rooms {
		for client := range clients {
			all = append(all, client)
		}
	}
	h.mu.RUnlock()

	for _, client := range all {
		client.Close()
	}
	h.cancel()

	if h.typing != nil {
		h.typing.Close()
	}

	log.Info().Int("clients", len(all)).Msg("ws: hub shutdown completed")
}

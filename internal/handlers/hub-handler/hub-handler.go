package hub_handler

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/xenn00/chat-delivery/internal/entity"
	app_error "github.com/xenn00/chat-delivery/internal/errors"
	"github.com/xenn00/chat-delivery/internal/handlers"
	"github.com/xenn00/chat-delivery/internal/middleware"
	"github.com/xenn00/chat-delivery/internal/websocket"
)

// DLQStats reports dead-lettered jobs by status. *worker.WorkerPool satisfies it.
type DLQStats interface {
	GetDLQStats(ctx context.Context) (map[string]int64, error)
}

// DeadLetters lists sagas whose compensation failed and that wait for an operator.
type DeadLetters interface {
	Pending(ctx context.Context, limit int64) ([]entity.DeadLetterRecord, error)
	CountPending(ctx context.Context) (int64, error)
}

type HubHandler struct {
	Hub         *websocket.Hub
	DLQ         DLQStats
	DeadLetters DeadLetters
}

func NewHubHandler(hub *websocket.Hub, dlq DLQStats, deadLetters DeadLetters) *HubHandler {
	return &HubHandler{
		Hub:         hub,
		DLQ:         dlq,
		DeadLetters: deadLetters,
	}
}

func (h *HubHandler) HandleHealth(w http.ResponseWriter, r *http.Request) {
	handlers.WriteJSON(w, http.StatusOK, map[string]any{
		"status":    "healthy",
		"timestamp": time.Now().Unix(),
		"service":   "chat-delivery",
	})
}

func (h *HubHandler) HandleGetStats(w http.ResponseWriter, r *http.Request) *app_error.AppError {
	stats := h.Hub.GetHubStats()
	handlers.WriteJSON(w, http.StatusOK, handlers.CreateResponse("get websocket stats", stats, middleware.RequestIDFrom(r.Context())))
	return nil
}

func (h *HubHandler) HandleDLQStats(w http.ResponseWriter, r *http.Request) *app_error.AppError {
	stats, err := h.DLQ.GetDLQStats(r.Context())
	if err != nil {
		return app_error.Transient("dlq stats unavailable", "dlq", err)
	}
	handlers.WriteJSON(w, http.StatusOK, handlers.CreateResponse("get dlq stats", stats, middleware.RequestIDFrom(r.Context())))
	return nil
}

func (h *HubHandler) HandleDeadLetters(w http.ResponseWriter, r *http.Request) *app_error.AppError {
	limit := int64(50)
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || n <= 0 || n > 500 {
			return app_error.Validation("limit must be between 1 and 500", "limit")
		}
		limit = n
	}

	total, err := h.DeadLetters.CountPending(r.Context())
	if err != nil {
		return app_error.Transient("dead letters unavailable", "dead_letters", err)
	}
	records, err := h.DeadLetters.Pending(r.Context(), limit)
	if err != nil {
		return app_error.Transient("dead letters unavailable", "dead_letters", err)
	}

	handlers.WriteJSON(w, http.StatusOK, handlers.CreateResponse("get saga dead letters", map[string]any{
		"total":   total,
		"records": records,
	}, middleware.RequestIDFrom(r.Context())))
	return nil
}

// Room handlers

func (h *HubHandler) HandleGetRoomStats(w http.ResponseWriter, r *http.Request) *app_error.AppError {
	roomID := chi.URLParam(r, "roomId")
	stats := h.Hub.GetRoomStats(roomID)
	handlers.WriteJSON(w, http.StatusOK, handlers.CreateResponse("get websocket room stats", stats, middleware.RequestIDFrom(r.Context())))
	return nil
}

func (h *HubHandler) HandleGetRoomClients(w http.ResponseWriter, r *http.Request) *app_error.AppError {
	roomID := chi.URLParam(r, "roomId")
	clients := h.Hub.GetRoomClients(roomID)

	type ClientInfo struct {
		ID          string    `json:"id"`
		UserID      string    `json:"user_id"`
		ConnectedAt time.Time `json:"connected_at"`
		LastSeen    time.Time `json:"last_seen"`
	}

	clientList := make([]ClientInfo, 0, len(clients))
	for _, client := range clients {
		clientList = append(clientList, ClientInfo{
			ID:          client.ID,
			UserID:      client.UserID,
			ConnectedAt: client.ConnectedAt,
			LastSeen:    client.GetLastSeen(),
		})
	}

	resp := map[string]any{
		"room_id": roomID,
		"count":   len(clientList),
		"clients": clientList,
	}
	handlers.WriteJSON(w, http.StatusOK, handlers.CreateResponse("successfully get rooms client", resp, middleware.RequestIDFrom(r.Context())))
	return nil
}

// User handlers

func (h *HubHandler) HandleGetUserStatus(w http.ResponseWriter, r *http.Request) *app_error.AppError {
	userID := chi.URLParam(r, "userId")
	roomID := r.URL.Query().Get("roomId")

	activeClients := len(h.Hub.GetUserClients(userID))
	isOnline := activeClients > 0
	if roomID != "" {
		isOnline = h.Hub.IsUserOnlineInRoom(roomID, userID)
	}

	resp := map[string]any{
		"user_id":        userID,
		"online":         isOnline,
		"active_clients": activeClients,
		"room_id":        roomID,
	}
	handlers.WriteJSON(w, http.StatusOK, handlers.CreateResponse("successful get user status", resp, middleware.RequestIDFrom(r.Context())))
	return nil
}

func (h *HubHandler) HandleGetUserConnections(w http.ResponseWriter, r *http.Request) *app_error.AppError {
	userID := chi.URLParam(r, "userId")
	clients := h.Hub.GetUserClients(userID)

	type ConnectionInfo struct {
		ClientID    string    `json:"client_id"`
		RoomID      string    `json:"room_id"`
		ConnectedAt time.Time `json:"connected_at"`
		LastSeen    time.Time `json:"last_seen"`
		IsActive    bool      `json:"is_active"`
	}

	connections := make([]ConnectionInfo, 0, len(clients))
	for _, client := range clients {
		connections = append(connections, ConnectionInfo{
			ClientID:    client.ID,
			RoomID:      client.RoomID,
			ConnectedAt: client.ConnectedAt,
			LastSeen:    client.GetLastSeen(),
			IsActive:    client.IsClientActive(),
		})
	}

	resp := map[string]any{
		"user_id":     userID,
		"count":       len(connections),
		"connections": connections,
	}
	handlers.WriteJSON(w, http.StatusOK, handlers.CreateResponse("successfully get user connection", resp, middleware.RequestIDFrom(r.Context())))
	return nil
}

func (h *HubHandler) HandleDisconnectUser(w http.ResponseWriter, r *http.Request) *app_error.AppError {
	userID := chi.URLParam(r, "userId")

	var payload struct {
		Reason string `json:"reason"`
	}
	if appErr := handlers.DecodeJSON(r, &payload); appErr != nil {
		return appErr
	}

	clients := h.Hub.GetUserClients(userID)
	for _, client := range clients {
		client.Close()
	}

	resp := map[string]any{
		"status":               "success",
		"disconnected_clients": len(clients),
		"user_id":              userID,
		"reason":               payload.Reason,
	}
	handlers.WriteJSON(w, http.StatusOK, handlers.CreateResponse("successfully disconnect user", resp, middleware.RequestIDFrom(r.Context())))
	return nil
}

package websocket

import (
	"context"
	"errors"
	"net/http"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"
	"github.com/samber/lo"
	"github.com/xenn00/chat-delivery/internal/entity"
)

// RoomAccess is used to check that a user may join a room's live session.
type RoomAccess interface {
	LoadSummary(ctx context.Context, roomID string) (*entity.ChatRoomSummary, error)
}

type WebSocketHandler struct {
	hub           *Hub
	authenticator AuthenticatorFunc
	rooms         RoomAccess
	upgrader      websocket.Upgrader
}

// NewWebSocketHandler accepts any origin when allowedOrigins is empty.
func NewWebSocketHandler(hub *Hub, authenticator AuthenticatorFunc, rooms RoomAccess, allowedOrigins []string) *WebSocketHandler {
	return &WebSocketHandler{
		hub:           hub,
		authenticator: authenticator,
		rooms:         rooms,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				if len(allowedOrigins) == 0 {
					return true
				}
				return lo.Contains(allowedOrigins, r.Header.Get("Origin"))
			},
		},
	}
}

func (h *WebSocketHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	userID, err := h.authenticator(r)
	if err != nil {
		var authErr *AuthError
		if errors.As(err, &authErr) {
			http.Error(w, authErr.Message, http.StatusUnauthorized)
			return
		}
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	roomID := roomIDFrom(r)
	if roomID == "" {
		http.Error(w, "room_id is required", http.StatusBadRequest)
		return
	}

	if h.rooms != nil {
		room, err := h.rooms.LoadSummary(r.Context(), roomID)
		if err != nil || room == nil {
			http.Error(w, "room not found", http.StatusNotFound)
			return
		}
		if !room.HasParticipant(userID) {
			http.Error(w, "not a participant of this room", http.StatusForbidden)
			return
		}
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Error().Err(err).Str("ip", clientIP(r)).Msg("ws: upgrade failed")
		return
	}

	h.hub.Register(newClient(h.hub, conn, userID, roomID))
}

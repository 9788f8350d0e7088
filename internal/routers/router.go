package routers

import (
	"crypto/rsa"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	hub_handler "github.com/xenn00/chat-delivery/internal/handlers/hub-handler"
	"github.com/xenn00/chat-delivery/internal/middleware"
	chat_service "github.com/xenn00/chat-delivery/internal/use-case/chat-case"
	"github.com/xenn00/chat-delivery/internal/websocket"
)

type Deps struct {
	PublicKey   *rsa.PublicKey
	Chat        chat_service.ChatServiceContract
	Hub         *websocket.Hub
	WS          http.Handler
	DLQ         hub_handler.DLQStats
	DeadLetters hub_handler.DeadLetters
}

func NewRouter(deps Deps) http.Handler {
	r := chi.NewRouter()
	r.Use(chimw.Recoverer)
	r.Use(middleware.WithRequestId)

	// the upgrade needs the raw ResponseWriter, so /ws stays outside the access log
	r.Handle("/ws", deps.WS)
	r.Handle("/ws/rooms/{roomId}", deps.WS)

	r.Group(func(api chi.Router) {
		api.Use(middleware.AccessLog)
		HubRouter(api, deps.Hub, deps.DLQ, deps.DeadLetters, deps.PublicKey)
		ChatRouter(api, deps.Chat, deps.PublicKey)
	})
	return r
}

package routers

import (
	"crypto/rsa"

	"github.com/go-chi/chi/v5"
	"github.com/xenn00/chat-delivery/internal/handlers"
	chat_handler "github.com/xenn00/chat-delivery/internal/handlers/chat-handler"
	"github.com/xenn00/chat-delivery/internal/middleware"
	chat_service "github.com/xenn00/chat-delivery/internal/use-case/chat-case"
)

func ChatRouter(r chi.Router, service chat_service.ChatServiceContract, publicKey *rsa.PublicKey) {
	chatHandler := chat_handler.NewChatHandler(service)
	r.Group(func(protected chi.Router) {
		protected.Use(middleware.JWTAuth(publicKey))
		protected.Route("/api/v1/rooms/{roomId}", func(r chi.Router) {
			r.Post("/messages", handlers.WrapHandler(chatHandler.SendMessage))
			r.Post("/scheduled-messages", handlers.WrapHandler(chatHandler.ScheduleMessage))
			r.Patch("/read", handlers.WrapHandler(chatHandler.MarkRead))
			r.Get("/unread", handlers.WrapHandler(chatHandler.UnreadCount))
		})
	})
}

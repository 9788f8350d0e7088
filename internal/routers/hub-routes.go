package routers

import (
	"crypto/rsa"

	"github.com/go-chi/chi/v5"
	"github.com/xenn00/chat-delivery/internal/handlers"
	hub_handler "github.com/xenn00/chat-delivery/internal/handlers/hub-handler"
	"github.com/xenn00/chat-delivery/internal/middleware"
	"github.com/xenn00/chat-delivery/internal/websocket"
)

func HubRouter(r chi.Router, wsHub *websocket.Hub, dlq hub_handler.DLQStats, deadLetters hub_handler.DeadLetters, publicKey *rsa.PublicKey) {
	hubHandler := hub_handler.NewHubHandler(wsHub, dlq, deadLetters)
	r.Get("/api/v1/health", hubHandler.HandleHealth)

	r.Group(func(admin chi.Router) {
		admin.Use(middleware.JWTAuth(publicKey))
		admin.Route("/api/v1/hub", func(r chi.Router) {
			r.Get("/stats", handlers.WrapHandler(hubHandler.HandleGetStats))
			r.Get("/dlq/stats", handlers.WrapHandler(hubHandler.HandleDLQStats))
			r.Get("/dead-letters", handlers.WrapHandler(hubHandler.HandleDeadLetters))

			r.Route("/rooms/{roomId}", func(r chi.Router) {
				r.Get("/stats", handlers.WrapHandler(hubHandler.HandleGetRoomStats))
				r.Get("/clients", handlers.WrapHandler(hubHandler.HandleGetRoomClients))
			})

			r.Route("/users/{userId}", func(r chi.Router) {
				r.Get("/status", handlers.WrapHandler(hubHandler.HandleGetUserStatus))
				r.Get("/connections", handlers.WrapHandler(hubHandler.HandleGetUserConnections))
				r.Post("/disconnect", handlers.WrapHandler(hubHandler.HandleDisconnectUser))
			})
		})
	})
}

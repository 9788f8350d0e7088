package chat_handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/xenn00/chat-delivery/internal/dtos/chat_dto"
	app_error "github.com/xenn00/chat-delivery/internal/errors"
	"github.com/xenn00/chat-delivery/internal/handlers"
	"github.com/xenn00/chat-delivery/internal/middleware"
	chat_service "github.com/xenn00/chat-delivery/internal/use-case/chat-case"
)

type ChatHandler struct {
	Validate *validator.Validate
	Service  chat_service.ChatServiceContract
}

func NewChatHandler(service chat_service.ChatServiceContract) *ChatHandler {
	return &ChatHandler{
		Validate: chat_dto.NewValidator(),
		Service:  service,
	}
}

func (h *ChatHandler) userID(r *http.Request) (string, *app_error.AppError) {
	userID := middleware.UserIDFrom(r.Context())
	if userID == "" {
		return "", app_error.NewAppError(http.StatusUnauthorized, "user id is not found in context", "context")
	}
	return userID, nil
}

func (h *ChatHandler) validate(req any) *app_error.AppError {
	if err := h.Validate.Struct(req); err != nil {
		return app_error.Validation("Invalid fields: "+err.Error(), "validation")
	}
	return nil
}

// SendMessage answers with the terminal status of the send. A failed send still carries
// the FAILED status event so the client can settle its temp id.
func (h *ChatHandler) SendMessage(w http.ResponseWriter, r *http.Request) *app_error.AppError {
	userID, appErr := h.userID(r)
	if appErr != nil {
		return appErr
	}

	var req chat_dto.SendMessageRequest
	if appErr := handlers.DecodeJSON(r, &req); appErr != nil {
		return appErr
	}
	if appErr := h.validate(req); appErr != nil {
		return appErr
	}

	ev, err := h.Service.SendMessage(r.Context(), chat_service.SendMessageCommand{
		RoomID:       chi.URLParam(r, "roomId"),
		SenderID:     userID,
		Content:      req.Content,
		ClientTempID: req.ClientTempID,
	})
	if err != nil {
		handlers.WriteError(w, r, app_error.From(err), ev)
		return nil
	}

	handlers.WriteJSON(w, http.StatusCreated, handlers.CreateResponse("message sent successfully", *ev, middleware.RequestIDFrom(r.Context())))
	return nil
}

func (h *ChatHandler) ScheduleMessage(w http.ResponseWriter, r *http.Request) *app_error.AppError {
	userID, appErr := h.userID(r)
	if appErr != nil {
		return appErr
	}

	var req chat_dto.ScheduleMessageRequest
	if appErr := handlers.DecodeJSON(r, &req); appErr != nil {
		return appErr
	}
	if appErr := h.validate(req); appErr != nil {
		return appErr
	}

	resp, err := h.Service.ScheduleMessage(r.Context(), chat_service.SendMessageCommand{
		RoomID:       chi.URLParam(r, "roomId"),
		SenderID:     userID,
		Content:      req.Content,
		ClientTempID: req.ClientTempID,
	}, req.ScheduledAt)
	if err != nil {
		return app_error.From(err)
	}

	handlers.WriteJSON(w, http.StatusAccepted, handlers.CreateResponse("message scheduled", *resp, middleware.RequestIDFrom(r.Context())))
	return nil
}

func (h *ChatHandler) MarkRead(w http.ResponseWriter, r *http.Request) *app_error.AppError {
	userID, appErr := h.userID(r)
	if appErr != nil {
		return appErr
	}

	var req chat_dto.MarkReadRequest
	if appErr := handlers.DecodeJSON(r, &req); appErr != nil {
		return appErr
	}
	if appErr := h.validate(req); appErr != nil {
		return appErr
	}

	resp, err := h.Service.MarkRead(r.Context(), chi.URLParam(r, "roomId"), userID, req.MessageID, req.RequestID)
	if err != nil {
		return app_error.From(err)
	}

	handlers.WriteJSON(w, http.StatusOK, handlers.CreateResponse("message marked as read successfully", *resp, middleware.RequestIDFrom(r.Context())))
	return nil
}

func (h *ChatHandler) UnreadCount(w http.ResponseWriter, r *http.Request) *app_error.AppError {
	userID, appErr := h.userID(r)
	if appErr != nil {
		return appErr
	}

	resp, err := h.Service.UnreadCount(r.Context(), chi.URLParam(r, "roomId"), userID)
	if err != nil {
		return app_error.From(err)
	}

	handlers.WriteJSON(w, http.StatusOK, handlers.CreateResponse("unread count", *resp, middleware.RequestIDFrom(r.Context())))
	return nil
}

package handlers

import (
	"net/http"

	jsoniter "github.com/json-iterator/go"
	"github.com/rs/zerolog/log"
	"github.com/xenn00/chat-delivery/internal/dtos"
	app_error "github.com/xenn00/chat-delivery/internal/errors"
	"github.com/xenn00/chat-delivery/internal/middleware"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

func WriteJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		log.Error().Err(err).Msg("failed to encode response")
	}
}

// DecodeJSON reads the request body into dst and rejects unknown fields.
func DecodeJSON(r *http.Request, dst any) *app_error.AppError {
	defer r.Body.Close()
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		return app_error.NewAppError(http.StatusBadRequest, "Invalid JSON", "body")
	}
	return nil
}

type HandlerFunc func(w http.ResponseWriter, r *http.Request) *app_error.AppError

func WrapHandler(fn HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := fn(w, r); err != nil {
			WriteError[any](w, r, err, nil)
		}
	}
}

// WriteError answers with the error envelope. data carries whatever the caller can still
// report, such as the terminal status of a failed send.
func WriteError[T any](w http.ResponseWriter, r *http.Request, err *app_error.AppError, data T) {
	reqID := middleware.RequestIDFrom(r.Context())
	event := log.Warn()
	if err.Code >= http.StatusInternalServerError {
		event = log.Error()
	}
	event.Err(err).Str("request_id", reqID).Str("kind", string(err.Kind)).Msg("request failed")

	WriteJSON(w, err.Code, dtos.Failure(err, data, reqID))
}

func CreateResponse[T any](message string, data T, requestId string) dtos.Response[T] {
	return dtos.Success(message, data, requestId)
}

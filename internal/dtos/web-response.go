package dtos

import app_error "github.com/xenn00/chat-delivery/internal/errors"

// Response is the envelope of every JSON answer. A failed request may still carry Data,
// e.g. the terminal status of a message the pipeline rejected.
type Response[T any] struct {
	Message   string         `json:"message"`
	Data      T              `json:"data"`
	RequestID string         `json:"request_id,omitempty"`
	Errors    *ErrorResponse `json:"errors,omitempty"`
}

type ErrorResponse struct {
	Code    int    `json:"code"`
	Kind    string `json:"kind,omitempty"`
	Message string `json:"message"`
	Field   string `json:"field,omitempty"`
}

func Success[T any](message string, data T, requestID string) Response[T] {
	return Response[T]{Message: message, Data: data, RequestID: requestID}
}

func Failure[T any](err *app_error.AppError, data T, requestID string) Response[T] {
	return Response[T]{
		Message:   "Error occur",
		Data:      data,
		RequestID: requestID,
		Errors: &ErrorResponse{
			Code:    err.Code,
			Kind:    string(err.Kind),
			Message: err.Message,
			Field:   err.Field,
		},
	}
}

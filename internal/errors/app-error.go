package app_error

import (
	"encoding/json"
	"errors"
	"net/http"
)

// Kind classifies an error for the code that decides between retry, compensation and rejection.
type Kind string

const (
	KindValidation   Kind = "validation"
	KindNotFound     Kind = "not_found"
	KindTransient    Kind = "transient"
	KindCompensation Kind = "compensation"
	KindConflict     Kind = "conflict"
	KindInternal     Kind = "internal"
)

type AppError struct {
	Code    int    `json:"-"`
	Kind    Kind   `json:"-"`
	Message string `json:"message"`
	Field   string `json:"field,omitempty"`
	Err     error  `json:"-"`
}

func (e AppError) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e AppError) Unwrap() error {
	return e.Err
}

func (e AppError) JSON(w http.ResponseWriter) error {
	return json.NewEncoder(w).Encode(e)
}

func NewAppError(code int, msg, field string) *AppError {
	return &AppError{
		Code:    code,
		Kind:    kindFromStatus(code),
		Message: msg,
		Field:   field,
	}
}

func Validation(msg, field string) *AppError {
	return NewAppError(http.StatusBadRequest, msg, field)
}

func NotFound(msg, field string) *AppError {
	return NewAppError(http.StatusNotFound, msg, field)
}

// Transient marks a timeout or unavailability of a store or broker.
func Transient(msg, field string, err error) *AppError {
	appErr := NewAppError(http.StatusServiceUnavailable, msg, field)
	appErr.Err = err
	return appErr
}

// Compensation marks a failed compensating action; such failures end in manual intervention.
func Compensation(msg string, err error) *AppError {
	return &AppError{
		Code:    http.StatusInternalServerError,
		Kind:    KindCompensation,
		Message: msg,
		Field:   "saga",
		Err:     err,
	}
}

func Wrap(code int, msg, field string, err error) *AppError {
	appErr := NewAppError(code, msg, field)
	appErr.Err = err
	return appErr
}

// KindOf returns the kind of the first AppError in err's chain, or KindInternal.
func KindOf(err error) Kind {
	if err == nil {
		return ""
	}
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Kind
	}
	return KindInternal
}

func IsNotFound(err error) bool {
	return KindOf(err) == KindNotFound
}

func IsValidation(err error) bool {
	return KindOf(err) == KindValidation
}

func IsTransient(err error) bool {
	return KindOf(err) == KindTransient
}

// From converts any error into an AppError suitable for an HTTP response.
func From(err error) *AppError {
	if err == nil {
		return nil
	}
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr
	}
	return Wrap(http.StatusInternalServerError, "internal error", "internal", err)
}

func kindFromStatus(code int) Kind {
	switch code {
	case http.StatusBadRequest, http.StatusUnprocessableEntity:
		return KindValidation
	case http.StatusNotFound:
		return KindNotFound
	case http.StatusConflict:
		return KindConflict
	case http.StatusServiceUnavailable, http.StatusGatewayTimeout:
		return KindTransient
	default:
		return KindInternal
	}
}

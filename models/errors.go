package models

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/redis/go-redis/v9"
)

var ErrBadRequest = errors.New("bad request")
var ErrUnauthorized = errors.New("unauthorized")
var ErrServerError = errors.New("server error")
var ErrNotFound = errors.New("not found")
var ErrNotAllowed = errors.New("not acceptable")

// ErrCorruptRecord marks a persisted record that could not be decoded or that
// violates the invariants of the type it encodes.
var ErrCorruptRecord = errors.New("corrupt record")

const (
	RedisErrorMessage = "storage operation failed"
	SQLErrorMessage   = "catalog operation failed"
)

// AppError wraps an underlying error with an HTTP status and a message that is
// safe to show to clients.
type AppError struct {
	Err     error
	Status  int
	Message string
}

func (e *AppError) Error() string {
	if e.Err == nil {
		return e.Message
	}
	return fmt.Sprintf("%s: %v", e.Message, e.Err)
}

func (e *AppError) Unwrap() error {
	return e.Err
}

func New(err error, status int, message string) *AppError {
	return &AppError{
		Err:     err,
		Status:  status,
		Message: message,
	}
}

// WrapRedis maps redis.Nil to ErrNotFound and everything else to a 502.
func WrapRedis(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, redis.Nil) {
		return New(ErrNotFound, http.StatusNotFound, "record not found")
	}
	return New(err, http.StatusBadGateway, RedisErrorMessage)
}

func WrapSQL(err error) error {
	if err == nil {
		return nil
	}
	return New(errors.Join(ErrServerError, err), http.StatusInternalServerError, SQLErrorMessage)
}

// StatusOf reports the HTTP status matching err.
func StatusOf(err error) int {
	var appErr *AppError
	switch {
	case errors.As(err, &appErr) && appErr.Status != 0:
		return appErr.Status
	case errors.Is(err, ErrBadRequest):
		return http.StatusBadRequest
	case errors.Is(err, ErrUnauthorized):
		return http.StatusUnauthorized
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrNotAllowed):
		return http.StatusNotAcceptable
	default:
		return http.StatusInternalServerError
	}
}

// PublicMessage returns the text to show to clients for err.
func PublicMessage(err error) string {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Message
	}
	switch StatusOf(err) {
	case http.StatusInternalServerError:
		return ErrServerError.Error()
	default:
		return err.Error()
	}
}

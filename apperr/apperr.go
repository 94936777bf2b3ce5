// Package apperr carries the error taxonomy every service function returns.
// Handlers translate a kind into an HTTP status; messages go to the client
// verbatim, so they are written for end users, not operators.
package apperr

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
)

type Kind int

const (
	Internal Kind = iota
	NotFound
	AlreadyExists
	Forbidden
	InvalidInput
	InsufficientStock
	InvalidState
	AuthFailed
)

type Error struct {
	Kind    Kind
	Message string
}

func (e *Error) Error() string { return e.Message }

func New(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

func Newf(kind Kind, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// Is makes errors.Is match on kind, so tests can assert taxonomy without
// caring about message wording.
func (e *Error) Is(target error) bool {
	var t *Error
	if !errors.As(target, &t) {
		return false
	}
	return t.Kind == e.Kind && (t.Message == "" || t.Message == e.Message)
}

// KindOf returns the kind of err, or Internal for anything untyped.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return Internal
}

func Status(err error) int {
	switch KindOf(err) {
	case NotFound:
		return http.StatusNotFound
	case AlreadyExists:
		return http.StatusConflict
	case Forbidden:
		return http.StatusForbidden
	case InvalidInput, InsufficientStock:
		return http.StatusBadRequest
	case InvalidState:
		return http.StatusConflict
	case AuthFailed:
		return http.StatusUnauthorized
	default:
		return http.StatusInternalServerError
	}
}

// JSON writes the error payload the API uses everywhere.
func JSON(c *gin.Context, err error) {
	msg := err.Error()
	if KindOf(err) == Internal {
		msg = "internal server error"
	}
	c.JSON(Status(err), gin.H{"error": msg})
}

package apperrors

import (
	"database/sql"
	"errors"
	"fmt"
	"net/http"

	"github.com/lib/pq"
)

type Kind int

const (
	KindInternal Kind = iota
	KindValidation
	KindNotFound
	KindConflict
	KindForbidden
	KindUnauthenticated
	KindBusy
	KindSilentFailure
)

// Postgres SQLSTATE codes the catalog reacts to.
const (
	CodeForeignKeyViolation = "23503"
	CodeUniqueViolation     = "23505"
	CodeInsufficientPrivs   = "42501"
)

// Error is the application error carried from use cases to handlers.
// Message is the English text; MessageID and Data let the transport
// localize it.
type Error struct {
	Kind      Kind
	MessageID string
	Message   string
	Data      map[string]interface{}
	Field     string
	cause     error
}

func (e *Error) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.cause)
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.cause }

func (e *Error) StatusCode() int {
	switch e.Kind {
	case KindValidation:
		return http.StatusBadRequest
	case KindNotFound:
		return http.StatusNotFound
	case KindConflict:
		return http.StatusConflict
	case KindForbidden:
		return http.StatusForbidden
	case KindUnauthenticated:
		return http.StatusUnauthorized
	case KindBusy:
		return http.StatusServiceUnavailable
	case KindSilentFailure:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// WithCause returns a copy of e wrapping err.
func (e *Error) WithCause(err error) *Error {
	c := *e
	c.cause = err
	return &c
}

func New(kind Kind, messageID, message string, data map[string]interface{}) *Error {
	return &Error{Kind: kind, MessageID: messageID, Message: message, Data: data}
}

func Validation(messageID, message string, data map[string]interface{}) *Error {
	return New(KindValidation, messageID, message, data)
}

func NotFound(messageID, id, message string) *Error {
	return New(KindNotFound, messageID, message, map[string]interface{}{"ID": id})
}

func Conflict(messageID, message string, data map[string]interface{}) *Error {
	return New(KindConflict, messageID, message, data)
}

// Generic wraps an unrecognized failure keeping its raw text for the user.
func Generic(err error) *Error {
	return New(KindInternal, "generic_error", "Something went wrong: "+err.Error(),
		map[string]interface{}{"Reason": err.Error()}).WithCause(err)
}

// As returns the *Error inside err, if any.
func As(err error) (*Error, bool) {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}

// PGCode returns the SQLSTATE of a Postgres error, or "".
func PGCode(err error) string {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return string(pqErr.Code)
	}
	return ""
}

// BackendMessages maps SQLSTATE codes to the user-facing error for one
// operation. Codes not present fall back to Generic.
type BackendMessages map[string]*Error

// FromBackend translates a repository error into an application error.
func FromBackend(err error, messages BackendMessages) *Error {
	if err == nil {
		return nil
	}
	if appErr, ok := As(err); ok {
		return appErr
	}
	if errors.Is(err, sql.ErrNoRows) {
		return New(KindNotFound, "generic_error", "record not found",
			map[string]interface{}{"Reason": "record not found"}).WithCause(err)
	}

	code := PGCode(err)
	if tmpl, ok := messages[code]; ok {
		return tmpl.WithCause(err)
	}
	switch code {
	case CodeInsufficientPrivs:
		return New(KindForbidden, "permission_denied", "You do not have permission to perform this action", nil).WithCause(err)
	case CodeUniqueViolation:
		return New(KindConflict, "generic_error", "Duplicate value: "+err.Error(),
			map[string]interface{}{"Reason": err.Error()}).WithCause(err)
	}
	return Generic(err)
}

// IsTransient reports whether err is worth retrying.
func IsTransient(err error) bool {
	if err == nil {
		return false
	}
	if _, ok := As(err); ok {
		return false
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		switch pqErr.Code.Class() {
		case "08", "40", "53", "57":
			return true
		}
		return false
	}
	return !errors.Is(err, sql.ErrNoRows)
}

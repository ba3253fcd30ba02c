package errors

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
)

// Kind classifies a failure so presentation layers can tell invalid input
// apart from missing resources, denied actions, violated invariants, and
// store-level trouble.
type Kind string

const (
	KindValidation Kind = "VALIDATION_ERROR"
	KindNotFound   Kind = "NOT_FOUND"
	KindPermission Kind = "PERMISSION_DENIED"
	KindConflict   Kind = "CONFLICT"
	KindStorage    Kind = "STORAGE_ERROR"
)

// Error is the structured failure returned by every core operation.
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

// Unwrap exposes the underlying cause, if any.
func (e *Error) Unwrap() error {
	return e.Err
}

// Validation reports malformed or out-of-range input.
func Validation(message string) *Error {
	return &Error{Kind: KindValidation, Message: message}
}

// Validationf reports malformed input with a formatted message.
func Validationf(format string, args ...any) *Error {
	return &Error{Kind: KindValidation, Message: fmt.Sprintf(format, args...)}
}

// NotFound reports that a referenced entity does not exist.
func NotFound(resource string) *Error {
	return &Error{Kind: KindNotFound, Message: resource + " not found"}
}

// Permission reports an action the authenticated user may not perform.
func Permission(message string) *Error {
	return &Error{Kind: KindPermission, Message: message}
}

// Conflict reports a violated uniqueness or state invariant.
func Conflict(message string) *Error {
	return &Error{Kind: KindConflict, Message: message}
}

// Storage wraps an unexpected store-level failure.
func Storage(op string, err error) *Error {
	return &Error{Kind: KindStorage, Message: "storage failure during " + op, Err: err}
}

// KindOf returns the kind of err, or KindStorage for errors that did not
// originate in the core (anything unexpected is treated as a store fault).
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindStorage
}

// IsKind reports whether err carries the given kind.
func IsKind(err error, kind Kind) bool {
	return KindOf(err) == kind
}

// APIError is the wire representation of a failure.
type APIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// ErrorResponse wraps an APIError in the response envelope.
type ErrorResponse struct {
	Error APIError `json:"error"`
}

// HTTPStatus maps an error kind to its HTTP status code.
func HTTPStatus(kind Kind) int {
	switch kind {
	case KindValidation:
		return http.StatusBadRequest
	case KindNotFound:
		return http.StatusNotFound
	case KindPermission:
		return http.StatusForbidden
	case KindConflict:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// Respond writes err as a JSON error response with the mapped status code.
func Respond(c *gin.Context, err error) {
	kind := KindOf(err)

	message := "internal server error"
	var e *Error
	if errors.As(err, &e) {
		message = e.Message
	}

	c.JSON(HTTPStatus(kind), ErrorResponse{
		Error: APIError{Code: string(kind), Message: message},
	})
}

// Unauthorized writes a 401 response. Authentication failures sit outside
// the domain error kinds; they belong to the session boundary.
func Unauthorized(c *gin.Context, message string) {
	if message == "" {
		message = "authentication required"
	}
	c.JSON(http.StatusUnauthorized, ErrorResponse{
		Error: APIError{Code: "UNAUTHORIZED", Message: message},
	})
}

// BadRequest writes a 400 response for unparseable requests that never
// reached the core.
func BadRequest(c *gin.Context, message string) {
	if message == "" {
		message = "invalid request body"
	}
	c.JSON(http.StatusBadRequest, ErrorResponse{
		Error: APIError{Code: string(KindValidation), Message: message},
	})
}

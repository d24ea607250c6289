package auth

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/rs/zerolog/log"
)

// Kind classifies a pipeline failure. The set is closed: every gate in the
// pipeline produces exactly one of these, and the response writer maps them
// exhaustively to HTTP status codes.
type Kind int

const (
	KindUnauthenticated Kind = iota // missing/invalid credential or unknown user
	KindForbidden                   // tenant, role, ownership or subscription denial
	KindNotFound                    // gated resource does not exist
	KindServerError                 // unexpected failure during a lookup
)

// HTTPStatus returns the status code for the kind.
func (k Kind) HTTPStatus() int {
	switch k {
	case KindUnauthenticated:
		return http.StatusUnauthorized
	case KindForbidden:
		return http.StatusForbidden
	case KindNotFound:
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

// String returns the kind name for logs and metrics labels.
func (k Kind) String() string {
	switch k {
	case KindUnauthenticated:
		return "unauthenticated"
	case KindForbidden:
		return "forbidden"
	case KindNotFound:
		return "not_found"
	default:
		return "server_error"
	}
}

// Error is a pipeline failure carrying a user-visible message. The wrapped
// cause is logged server-side and never returned to the caller.
type Error struct {
	Kind    Kind
	Message string
	cause   error
}

func (e *Error) Error() string {
	if e.cause != nil {
		return e.Message + ": " + e.cause.Error()
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.cause
}

// Unauthenticated creates a 401 pipeline error.
func Unauthenticated(message string) *Error {
	return &Error{Kind: KindUnauthenticated, Message: message}
}

// Forbidden creates a 403 pipeline error.
func Forbidden(message string) *Error {
	return &Error{Kind: KindForbidden, Message: message}
}

// NotFound creates a 404 pipeline error.
func NotFound(message string) *Error {
	return &Error{Kind: KindNotFound, Message: message}
}

// ServerError creates a 500 pipeline error wrapping the underlying cause.
func ServerError(message string, cause error) *Error {
	return &Error{Kind: KindServerError, Message: message, cause: cause}
}

type errorResponse struct {
	Message string `json:"message"`
}

// WriteError terminates the request with the JSON error body for err.
// Errors that are not pipeline errors are reported as a generic server error;
// internal detail is logged, never written to the response.
func WriteError(w http.ResponseWriter, err error) {
	var perr *Error
	if !errors.As(err, &perr) {
		perr = ServerError("Server error", err)
	}

	if perr.Kind == KindServerError {
		log.Error().Err(perr.Unwrap()).Str("kind", perr.Kind.String()).Msg(perr.Message)
	} else {
		log.Warn().Str("kind", perr.Kind.String()).Msg(perr.Message)
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(perr.Kind.HTTPStatus())
	_ = json.NewEncoder(w).Encode(errorResponse{Message: perr.Message})
}

// Package httperr is the error taxonomy shared by every JSON endpoint.
//
// Handlers return or build an *Error with one of the Kinds below; Write turns
// it into the single response shape used across the API:
//
//	{ "message": "human readable", "error": "optional detail" }
package httperr

import (
	"encoding/json"
	"errors"
	"net/http"

	"go.uber.org/zap"
)

// Kind classifies a failure and fixes its HTTP status.
type Kind int

const (
	Internal        Kind = iota // 500, unexpected
	InvalidArgument             // 400
	Unauthenticated             // 401
	Forbidden                   // 403
	NotFound                    // 404
	TooManyRequests             // 429
	Upstream                    // 500, database or payment provider failed
)

// Status returns the HTTP status code for k.
func (k Kind) Status() int {
	switch k {
	case InvalidArgument:
		return http.StatusBadRequest
	case Unauthenticated:
		return http.StatusUnauthorized
	case Forbidden:
		return http.StatusForbidden
	case NotFound:
		return http.StatusNotFound
	case TooManyRequests:
		return http.StatusTooManyRequests
	default:
		return http.StatusInternalServerError
	}
}

func (k Kind) String() string {
	switch k {
	case InvalidArgument:
		return "invalid_argument"
	case Unauthenticated:
		return "unauthenticated"
	case Forbidden:
		return "forbidden"
	case NotFound:
		return "not_found"
	case TooManyRequests:
		return "too_many_requests"
	case Upstream:
		return "upstream_error"
	default:
		return "internal"
	}
}

// Error is a classified failure with a client-facing message.
// Err, when set, is reported in the "error" field of the response.
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.Err }

// New returns an *Error of the given kind.
func New(kind Kind, msg string) *Error {
	return &Error{Kind: kind, Message: msg}
}

// Wrap returns an *Error of the given kind carrying err as detail.
func Wrap(kind Kind, msg string, err error) *Error {
	return &Error{Kind: kind, Message: msg, Err: err}
}

// KindOf reports the Kind of err, or Internal if err is not an *Error.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return Internal
}

// Response is the JSON body of every error response.
type Response struct {
	Message string `json:"message"`
	Error   string `json:"error,omitempty"`
}

// Write sends err to the client. Unclassified errors become a 500 with
// message "Internal Server Error". Server-side kinds are logged at error level.
func Write(w http.ResponseWriter, log *zap.Logger, err error) {
	var e *Error
	if !errors.As(err, &e) {
		e = Wrap(Internal, "Internal Server Error", err)
	}

	status := e.Kind.Status()
	if status >= http.StatusInternalServerError && log != nil {
		log.Error(e.Message, zap.String("kind", e.Kind.String()), zap.Error(e.Err))
	}

	resp := Response{Message: e.Message}
	if e.Err != nil {
		resp.Error = e.Err.Error()
	}
	writeJSON(w, status, resp)
}

// Respond sends a classified error built in place.
func Respond(w http.ResponseWriter, log *zap.Logger, kind Kind, msg string) {
	Write(w, log, New(kind, msg))
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

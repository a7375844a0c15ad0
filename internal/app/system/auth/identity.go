package auth

import (
	"context"
	"net/http"
	"strings"
)

// Identity is the verified caller bound to a request by the identity stage.
type Identity struct {
	UID     string
	Email   string // lowercased
	Name    string
	Picture string
}

type ctxKey string

const identityKey ctxKey = "identity"

// WithIdentity returns a copy of r carrying id.
func WithIdentity(r *http.Request, id Identity) *http.Request {
	return r.WithContext(context.WithValue(r.Context(), identityKey, id))
}

// CurrentIdentity returns the identity bound by RequireAuth, if any.
func CurrentIdentity(r *http.Request) (Identity, bool) {
	id, ok := r.Context().Value(identityKey).(Identity)
	return id, ok
}

// CurrentEmail returns the verified email of the caller, or "".
func CurrentEmail(r *http.Request) string {
	id, _ := CurrentIdentity(r)
	return id.Email
}

// BearerToken extracts the token from an "Authorization: Bearer <token>" header.
func BearerToken(r *http.Request) (string, bool) {
	h := strings.TrimSpace(r.Header.Get("Authorization"))
	const prefix = "Bearer "
	if len(h) <= len(prefix) || !strings.EqualFold(h[:len(prefix)], prefix) {
		return "", false
	}
	token := strings.TrimSpace(h[len(prefix):])
	if token == "" {
		return "", false
	}
	return token, true
}

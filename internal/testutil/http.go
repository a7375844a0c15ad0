package testutil

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/dalemusser/bookcourier/internal/app/system/auth"
	"github.com/go-chi/chi/v5"
)

// WithChiURLParam adds a chi URL parameter to the request context.
// Use this in handler tests that need to access chi.URLParam values.
func WithChiURLParam(r *http.Request, key, value string) *http.Request {
	rctx, ok := r.Context().Value(chi.RouteCtxKey).(*chi.Context)
	if !ok || rctx == nil {
		rctx = chi.NewRouteContext()
	}
	rctx.URLParams.Add(key, value)
	return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
}

// WithEmail binds a verified identity for email to the request, as RequireAuth would.
func WithEmail(r *http.Request, email string) *http.Request {
	return auth.WithIdentity(r, auth.Identity{UID: "uid-" + email, Email: email})
}

// JSONRequest builds a request with body encoded as JSON. A nil body sends no body.
func JSONRequest(t *testing.T, method, target string, body any) *http.Request {
	t.Helper()
	var rd io.Reader
	if body != nil {
		buf, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal request body: %v", err)
		}
		rd = bytes.NewReader(buf)
	}
	req := httptest.NewRequest(method, target, rd)
	req.Header.Set("Content-Type", "application/json")
	return req
}

// BearerRequest is JSONRequest with an Authorization header for token.
func BearerRequest(t *testing.T, method, target, token string, body any) *http.Request {
	t.Helper()
	req := JSONRequest(t, method, target, body)
	req.Header.Set("Authorization", "Bearer "+token)
	return req
}

// DecodeJSON parses the recorder's body into dst.
func DecodeJSON(t *testing.T, rec *httptest.ResponseRecorder, dst any) {
	t.Helper()
	if err := json.Unmarshal(rec.Body.Bytes(), dst); err != nil {
		t.Fatalf("failed to parse response %q: %v", rec.Body.String(), err)
	}
}

// EmailVerifier treats the bearer token as the caller's email. Tokens in
// Reject are refused. It stands in for the identity provider in route tests.
type EmailVerifier struct {
	Reject map[string]bool
}

// Verify implements auth.Verifier.
func (v EmailVerifier) Verify(ctx context.Context, token string) (auth.Identity, error) {
	if v.Reject[token] || !strings.Contains(token, "@") {
		return auth.Identity{}, auth.ErrInvalidToken
	}
	return auth.Identity{UID: "uid-" + token, Email: strings.ToLower(token)}, nil
}

// AssertStatus checks the response status code.
func AssertStatus(t *testing.T, rec *httptest.ResponseRecorder, want int) {
	t.Helper()
	if rec.Code != want {
		t.Errorf("status code: got %d, want %d (body %s)", rec.Code, want, rec.Body.String())
	}
}

// AssertMessage checks the "message" field of a JSON error body.
func AssertMessage(t *testing.T, rec *httptest.ResponseRecorder, want string) {
	t.Helper()
	var body struct {
		Message string `json:"message"`
	}
	DecodeJSON(t, rec, &body)
	if body.Message != want {
		t.Errorf("message: got %q, want %q", body.Message, want)
	}
}

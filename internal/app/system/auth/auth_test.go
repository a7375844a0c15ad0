package auth

import (
	"context"
	"errors"
	"net/http/httptest"
	"testing"

	fbauth "firebase.google.com/go/v4/auth"
)

func TestBearerToken(t *testing.T) {
	tests := []struct {
		name   string
		header string
		want   string
		ok     bool
	}{
		{"missing", "", "", false},
		{"wrong scheme", "Basic abc", "", false},
		{"prefix only", "Bearer ", "", false},
		{"blank token", "Bearer    ", "", false},
		{"valid", "Bearer abc.def.ghi", "abc.def.ghi", true},
		{"lowercase scheme", "bearer tok", "tok", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := httptest.NewRequest("GET", "/", nil)
			if tt.header != "" {
				r.Header.Set("Authorization", tt.header)
			}
			got, ok := BearerToken(r)
			if got != tt.want || ok != tt.ok {
				t.Errorf("BearerToken = (%q, %v), want (%q, %v)", got, ok, tt.want, tt.ok)
			}
		})
	}
}

func TestWithIdentity(t *testing.T) {
	r := httptest.NewRequest("GET", "/", nil)
	if _, ok := CurrentIdentity(r); ok {
		t.Fatal("expected no identity on fresh request")
	}
	if CurrentEmail(r) != "" {
		t.Error("expected empty email on fresh request")
	}

	r = WithIdentity(r, Identity{UID: "u1", Email: "reader@example.com"})
	id, ok := CurrentIdentity(r)
	if !ok || id.UID != "u1" {
		t.Errorf("CurrentIdentity = %+v, %v", id, ok)
	}
	if CurrentEmail(r) != "reader@example.com" {
		t.Errorf("CurrentEmail = %q", CurrentEmail(r))
	}
}

type stubTokenVerifier struct {
	token *fbauth.Token
	err   error
}

func (s stubTokenVerifier) VerifyIDToken(ctx context.Context, idToken string) (*fbauth.Token, error) {
	return s.token, s.err
}

func TestFirebaseVerifier_Verify(t *testing.T) {
	v := &FirebaseVerifier{client: stubTokenVerifier{token: &fbauth.Token{
		UID:    "uid-1",
		Claims: map[string]interface{}{"email": "  Reader@Example.com ", "name": "Reader"},
	}}}

	id, err := v.Verify(context.Background(), "tok")
	if err != nil {
		t.Fatalf("Verify failed: %v", err)
	}
	if id.Email != "reader@example.com" {
		t.Errorf("Email = %q, want lowercased", id.Email)
	}
	if id.UID != "uid-1" || id.Name != "Reader" {
		t.Errorf("unexpected identity %+v", id)
	}
}

func TestFirebaseVerifier_Rejected(t *testing.T) {
	v := &FirebaseVerifier{client: stubTokenVerifier{err: errors.New("token expired")}}
	_, err := v.Verify(context.Background(), "tok")
	if !errors.Is(err, ErrInvalidToken) {
		t.Errorf("err = %v, want ErrInvalidToken", err)
	}
}

func TestFirebaseVerifier_NoEmail(t *testing.T) {
	v := &FirebaseVerifier{client: stubTokenVerifier{token: &fbauth.Token{UID: "uid-2", Claims: map[string]interface{}{}}}}
	_, err := v.Verify(context.Background(), "tok")
	if !errors.Is(err, ErrNoEmail) {
		t.Errorf("err = %v, want ErrNoEmail", err)
	}
}

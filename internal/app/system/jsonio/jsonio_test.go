package jsonio_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/dalemusser/bookcourier/internal/app/system/httperr"
	"github.com/dalemusser/bookcourier/internal/app/system/jsonio"
)

type payload struct {
	Email string `json:"email" validate:"required,email"`
	Name  string `json:"name" validate:"max=10"`
}

func newRequest(body string) *http.Request {
	return httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))
}

func TestDecode(t *testing.T) {
	var p payload
	if err := jsonio.Decode(newRequest(`{"email":"a@b.com","name":"Ann"}`), &p); err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if p.Email != "a@b.com" || p.Name != "Ann" {
		t.Errorf("decoded %+v", p)
	}
}

func TestDecodeRejects(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"malformed", `{"email":`},
		{"empty body fails required", ``},
		{"bad email", `{"email":"nope"}`},
		{"name too long", `{"email":"a@b.com","name":"abcdefghijkl"}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var p payload
			err := jsonio.Decode(newRequest(tt.body), &p)
			if err == nil {
				t.Fatal("expected error")
			}
			if k := httperr.KindOf(err); k != httperr.InvalidArgument {
				t.Errorf("kind = %v, want InvalidArgument", k)
			}
		})
	}
}

func TestWrite(t *testing.T) {
	rec := httptest.NewRecorder()
	jsonio.Write(rec, http.StatusCreated, map[string]any{"inserted": true})

	if rec.Code != http.StatusCreated {
		t.Errorf("status = %d, want 201", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "application/json" {
		t.Errorf("Content-Type = %q", ct)
	}
	var body map[string]bool
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if !body["inserted"] {
		t.Errorf("body = %v", body)
	}
}

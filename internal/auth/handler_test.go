package auth

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

// Input validation happens before the store is touched, so a nil-backed
// service is enough for these.
func newTestHandler() *Handler {
	return NewHandler(NewService(nil, "test-secret"))
}

func postJSON(t *testing.T, handler http.HandlerFunc, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest("POST", "/auth", strings.NewReader(body))
	rec := httptest.NewRecorder()
	handler(rec, req)
	return rec
}

func TestRegisterValidation(t *testing.T) {
	h := newTestHandler()

	tests := []struct {
		name string
		body string
	}{
		{"malformed json", `{`},
		{"missing email", `{"password":"longenough","displayName":"Ada"}`},
		{"email without at sign", `{"email":"nobody","password":"longenough","displayName":"Ada"}`},
		{"blank display name", `{"email":"ada@example.com","password":"longenough","displayName":"  "}`},
		{"short password", `{"email":"ada@example.com","password":"short","displayName":"Ada"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := postJSON(t, h.Register, tt.body)
			if rec.Code != http.StatusBadRequest {
				t.Fatalf("status = %d, want %d", rec.Code, http.StatusBadRequest)
			}
			var resp errorResponse
			if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil || resp.Error == "" {
				t.Errorf("want an error payload, got %q (%v)", rec.Body.String(), err)
			}
		})
	}
}

func TestLoginValidation(t *testing.T) {
	h := newTestHandler()

	tests := []struct {
		name string
		body string
	}{
		{"malformed json", `not json`},
		{"missing password", `{"email":"ada@example.com"}`},
		{"whitespace email", `{"email":"   ","password":"pw"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := postJSON(t, h.Login, tt.body)
			if rec.Code != http.StatusBadRequest {
				t.Fatalf("status = %d, want %d", rec.Code, http.StatusBadRequest)
			}
		})
	}
}

func TestMeWithoutUser(t *testing.T) {
	h := newTestHandler()

	req := httptest.NewRequest("GET", "/api/auth/me", nil)
	rec := httptest.NewRecorder()
	h.Me(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusUnauthorized)
	}
}

func TestCredentialsNormalize(t *testing.T) {
	c := credentials{Email: "  Ada@Example.COM ", DisplayName: " Ada "}
	c.normalize()
	if c.Email != "ada@example.com" {
		t.Errorf("email = %q", c.Email)
	}
	if c.DisplayName != "Ada" {
		t.Errorf("displayName = %q", c.DisplayName)
	}
}

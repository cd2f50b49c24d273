package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

func signToken(t *testing.T, secret string, claims jwt.MapClaims) string {
	t.Helper()
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}
	return token
}

func TestRequireUser(t *testing.T) {
	svc := NewService(nil, "test-secret")
	protected := svc.RequireUser(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(UserIDFromContext(r.Context())))
	}))

	valid := signToken(t, "test-secret", jwt.MapClaims{
		"sub": "user_abc",
		"exp": time.Now().Add(time.Hour).Unix(),
	})

	tests := []struct {
		name       string
		header     string
		query      string
		wantStatus int
		wantBody   string
	}{
		{"bearer header", "Bearer " + valid, "", http.StatusOK, "user_abc"},
		{"query token for websocket connects", "", valid, http.StatusOK, "user_abc"},
		{"no credentials", "", "", http.StatusUnauthorized, ""},
		{"wrong scheme", "Token " + valid, "", http.StatusUnauthorized, ""},
		{"garbage token", "Bearer not.a.jwt", "", http.StatusUnauthorized, ""},
		{
			"wrong secret",
			"Bearer " + signToken(t, "other-secret", jwt.MapClaims{"sub": "user_abc"}),
			"", http.StatusUnauthorized, "",
		},
		{
			"expired token",
			"Bearer " + signToken(t, "test-secret", jwt.MapClaims{
				"sub": "user_abc",
				"exp": time.Now().Add(-time.Hour).Unix(),
			}),
			"", http.StatusUnauthorized, "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest("GET", "/api/drawings", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			if tt.query != "" {
				q := req.URL.Query()
				q.Set("token", tt.query)
				req.URL.RawQuery = q.Encode()
			}

			rec := httptest.NewRecorder()
			protected.ServeHTTP(rec, req)

			if rec.Code != tt.wantStatus {
				t.Fatalf("status = %d, want %d", rec.Code, tt.wantStatus)
			}
			if tt.wantBody != "" && rec.Body.String() != tt.wantBody {
				t.Errorf("body = %q, want %q", rec.Body.String(), tt.wantBody)
			}
		})
	}
}

func TestRequireUserHeaderWinsOverQuery(t *testing.T) {
	svc := NewService(nil, "test-secret")
	protected := svc.RequireUser(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(UserIDFromContext(r.Context())))
	}))

	valid := signToken(t, "test-secret", jwt.MapClaims{
		"sub": "user_abc",
		"exp": time.Now().Add(time.Hour).Unix(),
	})

	// A malformed header is rejected even when the query token is good.
	req := httptest.NewRequest("GET", "/api/drawings?token="+valid, nil)
	req.Header.Set("Authorization", "Basic dXNlcjpwdw==")
	rec := httptest.NewRecorder()
	protected.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusUnauthorized)
	}
}

func TestUserIDFromContextOutsideMiddleware(t *testing.T) {
	req := httptest.NewRequest("GET", "/", nil)
	if got := UserIDFromContext(req.Context()); got != "" {
		t.Errorf("got %q, want empty", got)
	}
}

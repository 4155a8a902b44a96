package httpapi

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"contacthub/internal/server/auth"
)

func TestGuard_RejectsMissingOrMalformedHeader(t *testing.T) {
	env := newTestEnv(t)

	tests := []struct {
		name   string
		header string
	}{
		{"no header", ""},
		{"wrong scheme", "Basic abc123"},
		{"scheme only", "Bearer"},
		{"garbage token", "Bearer not.a.jwt"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/api/users/current", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rec := httptest.NewRecorder()
			env.handler.ServeHTTP(rec, req)

			if rec.Code != http.StatusUnauthorized {
				t.Fatalf("status = %d, want 401", rec.Code)
			}
			if body := decodeBody[errorResponse](t, rec); body.Message != "Not authorized" {
				t.Errorf("message = %q", body.Message)
			}
		})
	}
}

func TestGuard_RejectsExpiredToken(t *testing.T) {
	env := newTestEnv(t)
	u := env.seedUser(t, "alice@example.com", "secret1")

	expired, err := auth.GenerateToken(u.ID, []byte("k"), -time.Minute)
	if err != nil {
		t.Fatalf("GenerateToken: %v", err)
	}
	u.Token = &expired

	rec := env.do(t, http.MethodGet, "/api/users/current", expired, nil)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", rec.Code)
	}
}

func TestGuard_RejectsValidTokenForDeletedUser(t *testing.T) {
	env := newTestEnv(t)
	u := env.seedUser(t, "alice@example.com", "secret1")
	token := env.login(t, "alice@example.com", "secret1")

	delete(env.users.byID, u.ID)
	delete(env.users.byEmail, u.Email)

	rec := env.do(t, http.MethodGet, "/api/users/current", token, nil)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", rec.Code)
	}
}

func TestGuard_RejectsSupersededToken(t *testing.T) {
	env := newTestEnv(t)
	u := env.seedUser(t, "alice@example.com", "secret1")
	token := env.login(t, "alice@example.com", "secret1")

	// a later login replaces the stored credential, the old one dies with it
	other := "replacement-token"
	u.Token = &other

	rec := env.do(t, http.MethodGet, "/api/users/current", token, nil)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", rec.Code)
	}
}

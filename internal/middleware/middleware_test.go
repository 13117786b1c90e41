package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/AntonioFerrao-hub/gallery-sync-palazzo-23/internal/model"
)

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
}

func requestWithUser(user model.User) *http.Request {
	req := httptest.NewRequest(http.MethodGet, "/api/users", nil)
	ctx := context.WithValue(req.Context(), ContextKeyUser, user)
	return req.WithContext(ctx)
}

func TestRequireAdminNoUser(t *testing.T) {
	handler := RequireAdmin()(okHandler())

	w := httptest.NewRecorder()
	handler.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/users", nil))

	if w.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", w.Code)
	}
}

func TestRequireAdminNonAdmin(t *testing.T) {
	handler := RequireAdmin()(okHandler())

	w := httptest.NewRecorder()
	handler.ServeHTTP(w, requestWithUser(model.User{ID: 2, Username: "viewer", Role: model.RoleUser}))

	if w.Code != http.StatusForbidden {
		t.Errorf("status = %d, want 403", w.Code)
	}
}

func TestRequireAdminAllowsAdmin(t *testing.T) {
	handler := RequireAdmin()(okHandler())

	w := httptest.NewRecorder()
	handler.ServeHTTP(w, requestWithUser(model.User{ID: 1, Username: "admin", Role: model.RoleAdmin}))

	if w.Code != http.StatusOK {
		t.Errorf("status = %d, want 200", w.Code)
	}
}

func TestGetUserMissing(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)

	if user := GetUser(req); user != nil {
		t.Errorf("GetUser = %+v, want nil", user)
	}
	if id := GetUserID(req); id != 0 {
		t.Errorf("GetUserID = %d, want 0", id)
	}
}

func TestRateLimitExhaustsBurst(t *testing.T) {
	handler := RateLimit(1, 3)(okHandler())

	var lastCode int
	for i := 0; i < 4; i++ {
		req := httptest.NewRequest(http.MethodPost, "/api/auth/login", nil)
		req.RemoteAddr = "10.1.2.3:5000"
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, req)
		lastCode = w.Code
	}

	if lastCode != http.StatusTooManyRequests {
		t.Errorf("status after burst = %d, want 429", lastCode)
	}
}

func TestRateLimitPerIP(t *testing.T) {
	handler := RateLimit(1, 1)(okHandler())

	first := httptest.NewRequest(http.MethodPost, "/api/auth/login", nil)
	first.RemoteAddr = "10.0.0.1:1111"
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, first)
	if w.Code != http.StatusOK {
		t.Fatalf("first IP status = %d, want 200", w.Code)
	}

	// A different IP gets its own bucket
	second := httptest.NewRequest(http.MethodPost, "/api/auth/login", nil)
	second.RemoteAddr = "10.0.0.2:2222"
	w = httptest.NewRecorder()
	handler.ServeHTTP(w, second)
	if w.Code != http.StatusOK {
		t.Errorf("second IP status = %d, want 200", w.Code)
	}
}

func TestStaticCacheHeaders(t *testing.T) {
	handler := StaticCache(604800)(okHandler())

	w := httptest.NewRecorder()
	handler.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/uploads/x.jpg", nil))

	if got := w.Header().Get("Cache-Control"); got != "public, max-age=604800" {
		t.Errorf("Cache-Control = %q", got)
	}
}

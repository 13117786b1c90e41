package handler

import (
	"net/http"
	"testing"

	"github.com/AntonioFerrao-hub/gallery-sync-palazzo-23/internal/model"
)

func TestLogin(t *testing.T) {
	env := newTestEnv(t)

	req := newJSONRequest(t, http.MethodPost, "/api/auth/login",
		`{"username": "admin", "password": "admin123"}`, nil)
	w := executeWithSession(t, env, env.auth.Login, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200: %s", w.Code, w.Body.String())
	}

	resp := unmarshalBody[userResponse](t, w)
	if resp.User.Username != "admin" || resp.User.Role != model.RoleAdmin {
		t.Errorf("unexpected user: %+v", resp.User)
	}
	if resp.User.PasswordHash != "" {
		t.Error("password hash leaked in response")
	}

	if len(w.Result().Cookies()) == 0 {
		t.Error("expected a session cookie on successful login")
	}
}

func TestLoginWrongPassword(t *testing.T) {
	env := newTestEnv(t)

	req := newJSONRequest(t, http.MethodPost, "/api/auth/login",
		`{"username": "admin", "password": "nope"}`, nil)
	w := executeWithSession(t, env, env.auth.Login, req)

	if w.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", w.Code)
	}
	if msg := errorMessage(t, w); msg != "Invalid username or password" {
		t.Errorf("error = %q", msg)
	}
}

func TestLoginInvalidBody(t *testing.T) {
	env := newTestEnv(t)

	req := newJSONRequest(t, http.MethodPost, "/api/auth/login", `{not json`, nil)
	w := executeWithSession(t, env, env.auth.Login, req)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", w.Code)
	}
}

func TestRegister(t *testing.T) {
	env := newTestEnv(t)

	req := newJSONRequest(t, http.MethodPost, "/api/auth/register",
		`{"username": "newuser", "name": "New User", "email": "new@example.com", "password": "secret-pass"}`, nil)
	w := executeWithSession(t, env, env.auth.Register, req)

	if w.Code != http.StatusCreated {
		t.Fatalf("status = %d, want 201: %s", w.Code, w.Body.String())
	}

	resp := unmarshalBody[userResponse](t, w)
	if resp.User.Role != model.RoleUser {
		t.Errorf("Role = %q, self-registration must never grant admin", resp.User.Role)
	}
	if resp.User.Email != "new@example.com" {
		t.Errorf("Email = %q", resp.User.Email)
	}
}

func TestRegisterCannotGrantAdmin(t *testing.T) {
	env := newTestEnv(t)

	// A role field in the request body must be ignored
	req := newJSONRequest(t, http.MethodPost, "/api/auth/register",
		`{"username": "sneaky", "password": "secret-pass", "role": "admin"}`, nil)
	w := executeWithSession(t, env, env.auth.Register, req)

	if w.Code != http.StatusCreated {
		t.Fatalf("status = %d, want 201: %s", w.Code, w.Body.String())
	}
	if resp := unmarshalBody[userResponse](t, w); resp.User.Role != model.RoleUser {
		t.Errorf("Role = %q, want user", resp.User.Role)
	}
}

func TestRegisterDuplicateUsername(t *testing.T) {
	env := newTestEnv(t)

	req := newJSONRequest(t, http.MethodPost, "/api/auth/register",
		`{"username": "admin", "password": "secret-pass"}`, nil)
	w := executeWithSession(t, env, env.auth.Register, req)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", w.Code)
	}
}

func TestMeUnauthenticated(t *testing.T) {
	env := newTestEnv(t)

	req := newJSONRequest(t, http.MethodGet, "/api/auth/me", "", nil)
	w := executeHandler(t, env.auth.Me, req)

	if w.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", w.Code)
	}
}

func TestLogout(t *testing.T) {
	env := newTestEnv(t)

	req := newJSONRequest(t, http.MethodPost, "/api/auth/logout", "", nil)
	w := executeWithSession(t, env, env.auth.Logout, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
	if resp := unmarshalBody[map[string]bool](t, w); !resp["success"] {
		t.Errorf("body = %s, want success true", w.Body.String())
	}
}

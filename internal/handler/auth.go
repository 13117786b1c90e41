package handler

import (
	"net/http"

	"github.com/alexedwards/scs/v2"

	"github.com/AntonioFerrao-hub/gallery-sync-palazzo-23/internal/middleware"
	"github.com/AntonioFerrao-hub/gallery-sync-palazzo-23/internal/model"
	"github.com/AntonioFerrao-hub/gallery-sync-palazzo-23/internal/service"
)

// AuthHandler handles login, logout and session introspection.
type AuthHandler struct {
	sessions *scs.SessionManager
	users    *service.UserService
	events   *service.EventService
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(sessions *scs.SessionManager, users *service.UserService, events *service.EventService) *AuthHandler {
	return &AuthHandler{
		sessions: sessions,
		users:    users,
		events:   events,
	}
}

type loginRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type userResponse struct {
	User model.User `json:"user"`
}

// Login handles POST /api/auth/login. The login may be supplied in the
// username or the email field. On success the session token is rotated and
// the user id is bound to the session.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	login := req.Username
	if login == "" {
		login = req.Email
	}

	user, err := h.users.Authenticate(r.Context(), login, req.Password)
	if err != nil {
		h.events.LogAuth(r.Context(), model.EventLevelWarning,
			"Failed login attempt for "+login, nil, r.RemoteAddr, r.UserAgent())
		writeServiceError(w, r, err)
		return
	}

	// Rotate the session token on privilege change
	if err := h.sessions.RenewToken(r.Context()); err != nil {
		writeServiceError(w, r, err)
		return
	}
	h.sessions.Put(r.Context(), middleware.SessionKeyUserID, user.ID)

	h.events.LogAuth(r.Context(), model.EventLevelInfo,
		"User logged in: "+user.Username, &user.ID, r.RemoteAddr, r.UserAgent())

	writeJSON(w, http.StatusOK, userResponse{User: user})
}

// Logout handles POST /api/auth/logout.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	if user := middleware.GetUser(r); user != nil {
		h.events.LogAuth(r.Context(), model.EventLevelInfo,
			"User logged out: "+user.Username, &user.ID, r.RemoteAddr, r.UserAgent())
	}

	if err := h.sessions.Destroy(r.Context()); err != nil {
		writeServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}

type registerRequest struct {
	Username string `json:"username"`
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Register handles POST /api/auth/register. Self-registered accounts always
// get the user role; admins are created through the user management API.
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	user, err := h.users.CreateUser(r.Context(), service.UserInput{
		Username: req.Username,
		Name:     req.Name,
		Email:    req.Email,
		Password: req.Password,
		Role:     model.RoleUser,
	})
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	h.events.LogAuth(r.Context(), model.EventLevelInfo,
		"User registered: "+user.Username, &user.ID, r.RemoteAddr, r.UserAgent())

	writeJSON(w, http.StatusCreated, userResponse{User: user})
}

// Me handles GET /api/auth/me, returning the session's user.
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUser(r)
	if user == nil {
		writeError(w, http.StatusUnauthorized, "Authentication required")
		return
	}

	writeJSON(w, http.StatusOK, userResponse{User: *user})
}

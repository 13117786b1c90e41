package handler

import (
	"net/http"

	"github.com/AntonioFerrao-hub/gallery-sync-palazzo-23/internal/middleware"
	"github.com/AntonioFerrao-hub/gallery-sync-palazzo-23/internal/model"
	"github.com/AntonioFerrao-hub/gallery-sync-palazzo-23/internal/service"
)

// UserHandler handles admin user management.
type UserHandler struct {
	users  *service.UserService
	events *service.EventService
}

// NewUserHandler creates a new UserHandler.
func NewUserHandler(users *service.UserService, events *service.EventService) *UserHandler {
	return &UserHandler{
		users:  users,
		events: events,
	}
}

type userRequest struct {
	Username string `json:"username"`
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Role     string `json:"role"`
}

// List handles GET /api/users.
func (h *UserHandler) List(w http.ResponseWriter, r *http.Request) {
	users, err := h.users.ListUsers(r.Context())
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, users)
}

// Create handles POST /api/users.
func (h *UserHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req userRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	user, err := h.users.CreateUser(r.Context(), service.UserInput{
		Username: req.Username,
		Name:     req.Name,
		Email:    req.Email,
		Password: req.Password,
		Role:     req.Role,
	})
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	h.logMutation(r, "User created: "+user.Username)
	writeJSON(w, http.StatusCreated, user)
}

// Update handles PUT /api/users/{id}. A non-empty password field also
// changes the password.
func (h *UserHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid user ID")
		return
	}

	var req userRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	user, err := h.users.UpdateUser(r.Context(), id, service.UserInput{
		Username: req.Username,
		Name:     req.Name,
		Email:    req.Email,
		Role:     req.Role,
	})
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	if req.Password != "" {
		if err := h.users.ChangePassword(r.Context(), id, req.Password); err != nil {
			writeServiceError(w, r, err)
			return
		}
	}

	h.logMutation(r, "User updated: "+user.Username)
	writeJSON(w, http.StatusOK, user)
}

// Delete handles DELETE /api/users/{id}. The seed admin cannot be deleted.
func (h *UserHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid user ID")
		return
	}

	if err := h.users.DeleteUser(r.Context(), id); err != nil {
		writeServiceError(w, r, err)
		return
	}

	h.logMutation(r, "User deleted")
	writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}

func (h *UserHandler) logMutation(r *http.Request, message string) {
	userID := middleware.GetUserID(r)
	var uid *int64
	if userID != 0 {
		uid = &userID
	}
	h.events.LogUser(r.Context(), model.EventLevelInfo, message, uid, r.RemoteAddr, r.UserAgent())
}

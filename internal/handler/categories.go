package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/AntonioFerrao-hub/gallery-sync-palazzo-23/internal/middleware"
	"github.com/AntonioFerrao-hub/gallery-sync-palazzo-23/internal/model"
	"github.com/AntonioFerrao-hub/gallery-sync-palazzo-23/internal/service"
)

// CategoryHandler handles category CRUD and public category views.
type CategoryHandler struct {
	gallery *service.GalleryService
	photos  *service.PhotoService
	events  *service.EventService
}

// NewCategoryHandler creates a new CategoryHandler.
func NewCategoryHandler(gallery *service.GalleryService, photos *service.PhotoService, events *service.EventService) *CategoryHandler {
	return &CategoryHandler{
		gallery: gallery,
		photos:  photos,
		events:  events,
	}
}

type categoryRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	CoverImage  string `json:"cover_image"`
}

// categoryWithPhotos is the single-category response: the category plus its
// full photo listing.
type categoryWithPhotos struct {
	model.Category
	Photos []model.Photo `json:"photos"`
}

// List handles GET /api/categories.
func (h *CategoryHandler) List(w http.ResponseWriter, r *http.Request) {
	categories, err := h.gallery.ListCategories(r.Context())
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, categories)
}

// Get handles GET /api/categories/{id}, returning the category with its
// photos attached.
func (h *CategoryHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid category ID")
		return
	}

	category, err := h.gallery.GetCategory(r.Context(), id)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	h.writeWithPhotos(w, r, category)
}

// GetBySlug handles GET /api/categories/slug/{slug}.
func (h *CategoryHandler) GetBySlug(w http.ResponseWriter, r *http.Request) {
	category, err := h.gallery.GetCategoryBySlug(r.Context(), chi.URLParam(r, "slug"))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	h.writeWithPhotos(w, r, category)
}

func (h *CategoryHandler) writeWithPhotos(w http.ResponseWriter, r *http.Request, category model.Category) {
	photos, err := h.photos.ListPhotosByCategory(r.Context(), category.ID)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, categoryWithPhotos{Category: category, Photos: photos})
}

// Create handles POST /api/categories.
func (h *CategoryHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req categoryRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	category, err := h.gallery.CreateCategory(r.Context(), service.CategoryInput{
		Name:        req.Name,
		Description: req.Description,
		CoverImage:  req.CoverImage,
	})
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	h.logMutation(r, "Category created: "+category.Name)
	writeJSON(w, http.StatusCreated, category)
}

// Update handles PUT /api/categories/{id}.
func (h *CategoryHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid category ID")
		return
	}

	var req categoryRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	category, err := h.gallery.UpdateCategory(r.Context(), id, service.CategoryInput{
		Name:        req.Name,
		Description: req.Description,
		CoverImage:  req.CoverImage,
	})
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	h.logMutation(r, "Category updated: "+category.Name)
	writeJSON(w, http.StatusOK, category)
}

// Delete handles DELETE /api/categories/{id}. Deleting a category that
// still holds photos fails unless ?cascade=true is passed.
func (h *CategoryHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid category ID")
		return
	}

	cascade := r.URL.Query().Get("cascade") == "true"

	if err := h.gallery.DeleteCategory(r.Context(), id, cascade); err != nil {
		writeServiceError(w, r, err)
		return
	}

	h.logMutation(r, "Category deleted")
	writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}

func (h *CategoryHandler) logMutation(r *http.Request, message string) {
	userID := middleware.GetUserID(r)
	var uid *int64
	if userID != 0 {
		uid = &userID
	}
	h.events.LogCategory(r.Context(), model.EventLevelInfo, message, uid, r.RemoteAddr, r.UserAgent())
}

package handler

import (
	"net/http"
	"strconv"

	"github.com/AntonioFerrao-hub/gallery-sync-palazzo-23/internal/service"
)

// GalleryHandler serves the public gallery payload.
type GalleryHandler struct {
	gallery *service.GalleryService
}

// NewGalleryHandler creates a new GalleryHandler.
func NewGalleryHandler(gallery *service.GalleryService) *GalleryHandler {
	return &GalleryHandler{gallery: gallery}
}

// Get handles GET /api/gallery: an array of {category, photos} items, each
// category paired with its recent-photo preview, served from cache when warm.
func (h *GalleryHandler) Get(w http.ResponseWriter, r *http.Request) {
	items, err := h.gallery.Gallery(r.Context())
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, items)
}

// EventHandler serves the admin audit log.
type EventHandler struct {
	events *service.EventService
}

// NewEventHandler creates a new EventHandler.
func NewEventHandler(events *service.EventService) *EventHandler {
	return &EventHandler{events: events}
}

// List handles GET /api/events with an optional limit query parameter.
func (h *EventHandler) List(w http.ResponseWriter, r *http.Request) {
	var limit int64
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			writeError(w, http.StatusBadRequest, "Invalid limit")
			return
		}
		limit = parsed
	}

	events, err := h.events.List(r.Context(), limit)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, events)
}

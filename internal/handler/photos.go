package handler

import (
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/AntonioFerrao-hub/gallery-sync-palazzo-23/internal/middleware"
	"github.com/AntonioFerrao-hub/gallery-sync-palazzo-23/internal/model"
	"github.com/AntonioFerrao-hub/gallery-sync-palazzo-23/internal/service"
)

// PhotoHandler handles photo CRUD.
type PhotoHandler struct {
	photos *service.PhotoService
	events *service.EventService
}

// NewPhotoHandler creates a new PhotoHandler.
func NewPhotoHandler(photos *service.PhotoService, events *service.EventService) *PhotoHandler {
	return &PhotoHandler{
		photos: photos,
		events: events,
	}
}

type createPhotoRequest struct {
	Title        string `json:"title"`
	Description  string `json:"description"`
	ExternalLink string `json:"external_link"`
	CategoryID   int64  `json:"category_id"`
	// ImageURL carries either an external http(s) URL or a base64 data URI
	ImageURL string `json:"image_url"`
}

type updatePhotoRequest struct {
	Title        string `json:"title"`
	Description  string `json:"description"`
	ExternalLink string `json:"external_link"`
}

// List handles GET /api/photos with an optional categoryId filter.
func (h *PhotoHandler) List(w http.ResponseWriter, r *http.Request) {
	if raw := r.URL.Query().Get("categoryId"); raw != "" {
		categoryID, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			writeError(w, http.StatusBadRequest, "Invalid category ID")
			return
		}

		photos, err := h.photos.ListPhotosByCategory(r.Context(), categoryID)
		if err != nil {
			writeServiceError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, photos)
		return
	}

	photos, err := h.photos.ListPhotos(r.Context())
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, photos)
}

// Get handles GET /api/photos/{id}.
func (h *PhotoHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid photo ID")
		return
	}

	photo, err := h.photos.GetPhoto(r.Context(), id)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, photo)
}

// ListByCategory handles GET /api/photos/category/{categoryId}.
func (h *PhotoHandler) ListByCategory(w http.ResponseWriter, r *http.Request) {
	categoryID, err := parseCategoryIDParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid category ID")
		return
	}

	photos, err := h.photos.ListPhotosByCategory(r.Context(), categoryID)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, photos)
}

// ListRecentByCategory handles GET /api/photos/category/{categoryId}/recent.
// The limit query parameter is clamped server-side.
func (h *PhotoHandler) ListRecentByCategory(w http.ResponseWriter, r *http.Request) {
	categoryID, err := parseCategoryIDParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid category ID")
		return
	}

	var limit int64
	if raw := r.URL.Query().Get("limit"); raw != "" {
		limit, err = strconv.ParseInt(raw, 10, 64)
		if err != nil {
			writeError(w, http.StatusBadRequest, "Invalid limit")
			return
		}
	}

	photos, err := h.photos.ListRecentPhotosByCategory(r.Context(), categoryID, limit)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, photos)
}

// Create handles POST /api/photos. The request is either multipart
// form-data with an image file, or JSON whose image_url field carries an
// external URL or a base64 data URI.
func (h *PhotoHandler) Create(w http.ResponseWriter, r *http.Request) {
	var input service.CreatePhotoInput

	if strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data") {
		parsed, ok := h.parseMultipart(w, r)
		if !ok {
			return
		}
		input = parsed
	} else {
		var req createPhotoRequest
		if !decodeJSON(w, r, &req) {
			return
		}

		input = service.CreatePhotoInput{
			Title:        req.Title,
			Description:  req.Description,
			ExternalLink: req.ExternalLink,
			CategoryID:   req.CategoryID,
		}
		if data, _, ok := service.DecodeDataURI(req.ImageURL); ok {
			input.Image = service.ImageInput{Data: data, Filename: req.Title}
		} else {
			input.Image = service.ImageInput{URL: req.ImageURL}
		}
	}

	if userID := middleware.GetUserID(r); userID != 0 {
		input.UploadedBy = &userID
	}

	photo, err := h.photos.CreatePhoto(r.Context(), input)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	h.logMutation(r, "Photo created: "+photo.Title)
	writeJSON(w, http.StatusCreated, photo)
}

// parseMultipart extracts a CreatePhotoInput from a multipart upload form.
func (h *PhotoHandler) parseMultipart(w http.ResponseWriter, r *http.Request) (service.CreatePhotoInput, bool) {
	// Form overhead on top of the image payload itself
	if err := r.ParseMultipartForm(model.MaxUploadSize + 512*1024); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid multipart form")
		return service.CreatePhotoInput{}, false
	}

	categoryID, err := strconv.ParseInt(r.FormValue("category_id"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid category ID")
		return service.CreatePhotoInput{}, false
	}

	input := service.CreatePhotoInput{
		Title:        r.FormValue("title"),
		Description:  r.FormValue("description"),
		ExternalLink: r.FormValue("external_link"),
		CategoryID:   categoryID,
	}

	file, header, err := r.FormFile("image")
	if err != nil {
		if err == http.ErrMissingFile {
			// Image may still arrive as a URL form field
			input.Image = service.ImageInput{URL: r.FormValue("image_url")}
			return input, true
		}
		writeError(w, http.StatusBadRequest, "Invalid image upload")
		return service.CreatePhotoInput{}, false
	}
	defer file.Close()

	data, err := io.ReadAll(io.LimitReader(file, model.MaxUploadSize+1))
	if err != nil {
		writeError(w, http.StatusBadRequest, "Failed to read image upload")
		return service.CreatePhotoInput{}, false
	}

	input.Image = service.ImageInput{Data: data, Filename: header.Filename}
	return input, true
}

// Update handles PUT /api/photos/{id}.
func (h *PhotoHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid photo ID")
		return
	}

	var req updatePhotoRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	photo, err := h.photos.UpdatePhoto(r.Context(), id, service.UpdatePhotoInput{
		Title:        req.Title,
		Description:  req.Description,
		ExternalLink: req.ExternalLink,
	})
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	h.logMutation(r, "Photo updated: "+photo.Title)
	writeJSON(w, http.StatusOK, photo)
}

// Delete handles DELETE /api/photos/{id}.
func (h *PhotoHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid photo ID")
		return
	}

	if err := h.photos.DeletePhoto(r.Context(), id); err != nil {
		writeServiceError(w, r, err)
		return
	}

	h.logMutation(r, "Photo deleted")
	writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}

func (h *PhotoHandler) logMutation(r *http.Request, message string) {
	userID := middleware.GetUserID(r)
	var uid *int64
	if userID != 0 {
		uid = &userID
	}
	h.events.LogPhoto(r.Context(), model.EventLevelInfo, message, uid, r.RemoteAddr, r.UserAgent())
}

func parseCategoryIDParam(r *http.Request) (int64, error) {
	return strconv.ParseInt(chi.URLParam(r, "categoryId"), 10, 64)
}

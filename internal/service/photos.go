package service

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/base64"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/AntonioFerrao-hub/gallery-sync-palazzo-23/internal/cache"
	"github.com/AntonioFerrao-hub/gallery-sync-palazzo-23/internal/imaging"
	"github.com/AntonioFerrao-hub/gallery-sync-palazzo-23/internal/model"
	"github.com/AntonioFerrao-hub/gallery-sync-palazzo-23/internal/store"
	"github.com/AntonioFerrao-hub/gallery-sync-palazzo-23/internal/util"
)

// PhotoService manages photo uploads and metadata.
type PhotoService struct {
	queries   *store.Queries
	cache     cache.Cacher
	processor *imaging.Processor
}

// NewPhotoService creates a new PhotoService.
func NewPhotoService(db *sql.DB, c cache.Cacher, processor *imaging.Processor) *PhotoService {
	return &PhotoService{
		queries:   store.New(db),
		cache:     c,
		processor: processor,
	}
}

// ImageInput is the normalized image payload of a photo create request.
// Exactly one of Data or URL is set: Data carries uploaded bytes (from a
// multipart file or a decoded data URI), URL references an external image.
type ImageInput struct {
	Data     []byte
	Filename string
	URL      string
}

// CreatePhotoInput holds the fields of a photo create request.
type CreatePhotoInput struct {
	Title        string
	Description  string
	ExternalLink string
	CategoryID   int64
	UploadedBy   *int64
	Image        ImageInput
}

// UpdatePhotoInput holds the editable fields of a photo. Empty fields are
// left unchanged.
type UpdatePhotoInput struct {
	Title        string
	Description  string
	ExternalLink string
}

// DecodeDataURI decodes a data:<mime>;base64,<payload> string into raw
// bytes and the declared MIME type. Returns ok=false if s is not a data URI.
func DecodeDataURI(s string) (data []byte, mimeType string, ok bool) {
	if !strings.HasPrefix(s, "data:") {
		return nil, "", false
	}

	rest := s[len("data:"):]
	sep := strings.Index(rest, ",")
	if sep == -1 {
		return nil, "", false
	}

	meta := rest[:sep]
	payload := rest[sep+1:]
	if !strings.HasSuffix(meta, ";base64") {
		return nil, "", false
	}
	mimeType = strings.TrimSuffix(meta, ";base64")

	decoded, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return nil, "", false
	}
	return decoded, mimeType, true
}

// CreatePhoto validates the request, stores the image, and inserts the
// photo. The per-category cap is enforced atomically at insert time, so a
// full category can never be exceeded by concurrent uploads.
func (s *PhotoService) CreatePhoto(ctx context.Context, input CreatePhotoInput) (model.Photo, error) {
	title := strings.TrimSpace(input.Title)
	if title == "" {
		return model.Photo{}, NewValidationError("title", "title is required")
	}

	if _, err := s.queries.GetCategoryByID(ctx, input.CategoryID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.Photo{}, &NotFoundError{Entity: "category", ID: input.CategoryID}
		}
		return model.Photo{}, fmt.Errorf("loading category: %w", err)
	}

	externalLink := strings.TrimSpace(input.ExternalLink)
	if externalLink != "" && !strings.HasPrefix(externalLink, "http://") && !strings.HasPrefix(externalLink, "https://") {
		return model.Photo{}, NewValidationError("external_link", "external link must use http or https")
	}

	imageURL, storedID, err := s.resolveImage(input.Image)
	if err != nil {
		return model.Photo{}, err
	}

	now := time.Now()
	photo, err := s.queries.CreatePhotoCapped(ctx, store.CreatePhotoParams{
		Title:        title,
		Description:  strings.TrimSpace(input.Description),
		ImageURL:     imageURL,
		ExternalLink: externalLink,
		CategoryID:   input.CategoryID,
		UploadedBy:   input.UploadedBy,
		CreatedAt:    now,
		UpdatedAt:    now,
	})
	if err != nil {
		// The insert failed after the image was stored; remove the files
		if storedID != "" {
			if cleanupErr := s.processor.DeleteFiles(storedID); cleanupErr != nil {
				slog.Error("failed to clean up upload after insert failure",
					"uuid", storedID, "error", cleanupErr)
			}
		}
		if errors.Is(err, store.ErrCategoryFull) {
			return model.Photo{}, &LimitExceededError{
				Message: fmt.Sprintf("Category already holds the maximum of %d photos", model.MaxPhotosPerCategory),
				Limit:   model.MaxPhotosPerCategory,
			}
		}
		return model.Photo{}, fmt.Errorf("creating photo: %w", err)
	}

	s.invalidate(ctx)
	return photo, nil
}

// resolveImage turns an ImageInput into a stored image URL.
// Uploaded bytes are validated, processed, and written under the uploads
// directory; external http(s) URLs are kept as-is.
func (s *PhotoService) resolveImage(image ImageInput) (imageURL, storedID string, err error) {
	switch {
	case len(image.Data) > 0:
		if len(image.Data) > model.MaxUploadSize {
			return "", "", NewValidationError("image",
				fmt.Sprintf("image exceeds the maximum size of %d bytes", model.MaxUploadSize))
		}

		mimeType := s.processor.DetectMimeType(image.Data)
		if !model.IsSupportedImageType(mimeType) {
			return "", "", NewValidationError("image", "file must be an image (JPEG, PNG, GIF or WebP)")
		}

		id := uuid.New().String()
		filename := util.SanitizeFilename(image.Filename)

		result, err := s.processor.Store(bytes.NewReader(image.Data), id, filename)
		if err != nil {
			return "", "", NewValidationError("image", "image could not be processed")
		}
		return result.URLPath, id, nil

	case image.URL != "":
		if !strings.HasPrefix(image.URL, "http://") && !strings.HasPrefix(image.URL, "https://") {
			return "", "", NewValidationError("image", "image URL must use http or https")
		}
		return image.URL, "", nil

	default:
		return "", "", NewValidationError("image", "an image file, data URI, or URL is required")
	}
}

// UpdatePhoto updates a photo's title, description and external link. The
// image and the category assignment are immutable after creation.
func (s *PhotoService) UpdatePhoto(ctx context.Context, id int64, input UpdatePhotoInput) (model.Photo, error) {
	existing, err := s.queries.GetPhotoByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.Photo{}, &NotFoundError{Entity: "photo", ID: id}
		}
		return model.Photo{}, fmt.Errorf("loading photo: %w", err)
	}

	newTitle := strings.TrimSpace(input.Title)
	if newTitle == "" {
		newTitle = existing.Title
	}
	newDescription := existing.Description
	if input.Description != "" {
		newDescription = strings.TrimSpace(input.Description)
	}
	newLink := existing.ExternalLink
	if input.ExternalLink != "" {
		newLink = strings.TrimSpace(input.ExternalLink)
		if !strings.HasPrefix(newLink, "http://") && !strings.HasPrefix(newLink, "https://") {
			return model.Photo{}, NewValidationError("external_link", "external link must use http or https")
		}
	}

	photo, err := s.queries.UpdatePhoto(ctx, store.UpdatePhotoParams{
		ID:           id,
		Title:        newTitle,
		Description:  newDescription,
		ExternalLink: newLink,
		UpdatedAt:    time.Now(),
	})
	if err != nil {
		return model.Photo{}, fmt.Errorf("updating photo: %w", err)
	}

	s.invalidate(ctx)
	return photo, nil
}

// DeletePhoto removes a photo. Stored image files are unlinked best-effort;
// a failed unlink is logged and left for the orphan sweep.
func (s *PhotoService) DeletePhoto(ctx context.Context, id int64) error {
	photo, err := s.queries.GetPhotoByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return &NotFoundError{Entity: "photo", ID: id}
		}
		return fmt.Errorf("loading photo: %w", err)
	}

	if err := s.queries.DeletePhoto(ctx, id); err != nil {
		return fmt.Errorf("deleting photo: %w", err)
	}

	if storedID := UploadID(photo.ImageURL); storedID != "" {
		if err := s.processor.DeleteFiles(storedID); err != nil {
			slog.Warn("failed to remove photo files", "photo_id", id, "uuid", storedID, "error", err)
		}
	}

	s.invalidate(ctx)
	return nil
}

// GetPhoto fetches a photo by id.
func (s *PhotoService) GetPhoto(ctx context.Context, id int64) (model.Photo, error) {
	photo, err := s.queries.GetPhotoByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.Photo{}, &NotFoundError{Entity: "photo", ID: id}
		}
		return model.Photo{}, fmt.Errorf("loading photo: %w", err)
	}
	return photo, nil
}

// ListPhotos returns all photos, newest first.
func (s *PhotoService) ListPhotos(ctx context.Context) ([]model.Photo, error) {
	photos, err := s.queries.ListPhotos(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing photos: %w", err)
	}
	if photos == nil {
		photos = []model.Photo{}
	}
	return photos, nil
}

// ListPhotosByCategory returns a category's photos, newest first.
func (s *PhotoService) ListPhotosByCategory(ctx context.Context, categoryID int64) ([]model.Photo, error) {
	if _, err := s.queries.GetCategoryByID(ctx, categoryID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, &NotFoundError{Entity: "category", ID: categoryID}
		}
		return nil, fmt.Errorf("loading category: %w", err)
	}

	photos, err := s.queries.ListPhotosByCategory(ctx, categoryID)
	if err != nil {
		return nil, fmt.Errorf("listing photos: %w", err)
	}
	if photos == nil {
		photos = []model.Photo{}
	}
	return photos, nil
}

// ListRecentPhotos returns the newest photos across all categories.
func (s *PhotoService) ListRecentPhotos(ctx context.Context, limit int64) ([]model.Photo, error) {
	photos, err := s.queries.ListRecentPhotos(ctx, clampRecentLimit(limit))
	if err != nil {
		return nil, fmt.Errorf("listing recent photos: %w", err)
	}
	if photos == nil {
		photos = []model.Photo{}
	}
	return photos, nil
}

// ListRecentPhotosByCategory returns a category's newest photos, truncated
// to limit. The result is always a recency-prefix of the full listing.
func (s *PhotoService) ListRecentPhotosByCategory(ctx context.Context, categoryID, limit int64) ([]model.Photo, error) {
	if _, err := s.queries.GetCategoryByID(ctx, categoryID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, &NotFoundError{Entity: "category", ID: categoryID}
		}
		return nil, fmt.Errorf("loading category: %w", err)
	}

	photos, err := s.queries.ListRecentPhotosByCategory(ctx, categoryID, clampRecentLimit(limit))
	if err != nil {
		return nil, fmt.Errorf("listing recent photos: %w", err)
	}
	if photos == nil {
		photos = []model.Photo{}
	}
	return photos, nil
}

// clampRecentLimit bounds a recent-photos limit to 1..MaxPhotosPerCategory,
// defaulting to model.DefaultRecentLimit.
func clampRecentLimit(limit int64) int64 {
	if limit <= 0 {
		return model.DefaultRecentLimit
	}
	if limit > model.MaxPhotosPerCategory {
		return model.MaxPhotosPerCategory
	}
	return limit
}

// UploadID extracts the upload uuid from a locally stored image URL
// (/uploads/originals/<uuid>/<file>). Returns "" for external URLs.
func UploadID(imageURL string) string {
	const prefix = "/uploads/originals/"
	if !strings.HasPrefix(imageURL, prefix) {
		return ""
	}

	rest := strings.TrimPrefix(imageURL, prefix)
	if idx := strings.Index(rest, "/"); idx > 0 {
		return rest[:idx]
	}
	return ""
}

func (s *PhotoService) invalidate(ctx context.Context) {
	if s.cache == nil {
		return
	}
	_ = s.cache.Delete(ctx, cache.KeyGallery)
	_ = s.cache.Delete(ctx, cache.KeyCategoryList)
	_ = s.cache.Delete(ctx, cache.KeyRecentPhotos)
}

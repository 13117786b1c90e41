package service

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/microcosm-cc/bluemonday"
	"github.com/yuin/goldmark"

	"github.com/AntonioFerrao-hub/gallery-sync-palazzo-23/internal/cache"
	"github.com/AntonioFerrao-hub/gallery-sync-palazzo-23/internal/model"
	"github.com/AntonioFerrao-hub/gallery-sync-palazzo-23/internal/store"
	"github.com/AntonioFerrao-hub/gallery-sync-palazzo-23/internal/util"
)

// GalleryService manages categories and assembles the public gallery view.
type GalleryService struct {
	db        *sql.DB
	queries   *store.Queries
	cache     cache.Cacher
	markdown  goldmark.Markdown
	sanitizer *bluemonday.Policy
}

// NewGalleryService creates a new GalleryService.
func NewGalleryService(db *sql.DB, c cache.Cacher) *GalleryService {
	return &GalleryService{
		db:        db,
		queries:   store.New(db),
		cache:     c,
		markdown:  goldmark.New(),
		sanitizer: bluemonday.UGCPolicy(),
	}
}

// CategoryInput holds the writable fields of a category.
type CategoryInput struct {
	Name        string
	Description string
	CoverImage  string
}

// GalleryCategory is a category as shown in the public gallery, with its
// description rendered to sanitized HTML.
type GalleryCategory struct {
	model.Category
	DescriptionHTML string `json:"description_html,omitempty"`
}

// GalleryItem pairs a category with its recent-photo preview. The public
// gallery payload is a plain array of these.
type GalleryItem struct {
	Category GalleryCategory `json:"category"`
	Photos   []model.Photo   `json:"photos"`
}

// CreateCategory validates and creates a category. The slug is derived from
// the name; both name and slug must be unique.
func (s *GalleryService) CreateCategory(ctx context.Context, input CategoryInput) (model.Category, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return model.Category{}, NewValidationError("name", "name is required")
	}

	slug := util.Slugify(name)
	if slug == "" {
		return model.Category{}, NewValidationError("name", "name must contain at least one letter or digit")
	}

	if exists, err := s.queries.CategoryNameExists(ctx, name); err != nil {
		return model.Category{}, fmt.Errorf("checking category name: %w", err)
	} else if exists {
		return model.Category{}, &ConflictError{Message: "A category with this name already exists"}
	}

	if exists, err := s.queries.CategorySlugExists(ctx, slug); err != nil {
		return model.Category{}, fmt.Errorf("checking category slug: %w", err)
	} else if exists {
		return model.Category{}, &ConflictError{Message: "A category with this slug already exists"}
	}

	now := time.Now()
	category, err := s.queries.CreateCategory(ctx, store.CreateCategoryParams{
		Name:        name,
		Slug:        slug,
		Description: strings.TrimSpace(input.Description),
		CoverImage:  strings.TrimSpace(input.CoverImage),
		CreatedAt:   now,
		UpdatedAt:   now,
	})
	if err != nil {
		return model.Category{}, fmt.Errorf("creating category: %w", err)
	}

	s.invalidate(ctx)
	return category, nil
}

// UpdateCategory validates and updates a category. Renaming regenerates
// the slug.
func (s *GalleryService) UpdateCategory(ctx context.Context, id int64, input CategoryInput) (model.Category, error) {
	existing, err := s.queries.GetCategoryByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.Category{}, &NotFoundError{Entity: "category", ID: id}
		}
		return model.Category{}, fmt.Errorf("loading category: %w", err)
	}

	name := strings.TrimSpace(input.Name)
	if name == "" {
		name = existing.Name
	}

	slug := util.Slugify(name)
	if slug == "" {
		return model.Category{}, NewValidationError("name", "name must contain at least one letter or digit")
	}

	if exists, err := s.queries.CategoryNameExistsExcluding(ctx, name, id); err != nil {
		return model.Category{}, fmt.Errorf("checking category name: %w", err)
	} else if exists {
		return model.Category{}, &ConflictError{Message: "A category with this name already exists"}
	}

	if exists, err := s.queries.CategorySlugExistsExcluding(ctx, slug, id); err != nil {
		return model.Category{}, fmt.Errorf("checking category slug: %w", err)
	} else if exists {
		return model.Category{}, &ConflictError{Message: "A category with this slug already exists"}
	}

	description := existing.Description
	if input.Description != "" {
		description = strings.TrimSpace(input.Description)
	}
	coverImage := existing.CoverImage
	if input.CoverImage != "" {
		coverImage = strings.TrimSpace(input.CoverImage)
	}

	category, err := s.queries.UpdateCategory(ctx, store.UpdateCategoryParams{
		ID:          id,
		Name:        name,
		Slug:        slug,
		Description: description,
		CoverImage:  coverImage,
		UpdatedAt:   time.Now(),
	})
	if err != nil {
		return model.Category{}, fmt.Errorf("updating category: %w", err)
	}

	s.invalidate(ctx)
	return category, nil
}

// DeleteCategory removes an empty category. Deleting a category that still
// holds photos is rejected with a ConflictError carrying the photo count;
// the photos must be deleted or the request must opt into cascade first.
func (s *GalleryService) DeleteCategory(ctx context.Context, id int64, cascade bool) error {
	if _, err := s.queries.GetCategoryByID(ctx, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return &NotFoundError{Entity: "category", ID: id}
		}
		return fmt.Errorf("loading category: %w", err)
	}

	count, err := s.queries.CountPhotosInCategory(ctx, id)
	if err != nil {
		return fmt.Errorf("counting photos: %w", err)
	}

	if count > 0 && !cascade {
		return &ConflictError{
			Message:    fmt.Sprintf("Category still contains %d photos", count),
			PhotoCount: count,
		}
	}

	// Photos and category go in one transaction so a failed category delete
	// never leaves the photos half-gone
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	qtx := s.queries.WithTx(tx)
	if count > 0 {
		if _, err := qtx.DeletePhotosInCategory(ctx, id); err != nil {
			return fmt.Errorf("deleting category photos: %w", err)
		}
	}
	if err := qtx.DeleteCategory(ctx, id); err != nil {
		return fmt.Errorf("deleting category: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing category delete: %w", err)
	}

	s.invalidate(ctx)
	return nil
}

// GetCategory fetches a category by id.
func (s *GalleryService) GetCategory(ctx context.Context, id int64) (model.Category, error) {
	category, err := s.queries.GetCategoryByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.Category{}, &NotFoundError{Entity: "category", ID: id}
		}
		return model.Category{}, fmt.Errorf("loading category: %w", err)
	}
	return category, nil
}

// GetCategoryBySlug fetches a category by slug.
func (s *GalleryService) GetCategoryBySlug(ctx context.Context, slug string) (model.Category, error) {
	category, err := s.queries.GetCategoryBySlug(ctx, slug)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.Category{}, &NotFoundError{Entity: "category"}
		}
		return model.Category{}, fmt.Errorf("loading category: %w", err)
	}
	return category, nil
}

// ListCategories returns all categories with photo counts, newest first.
func (s *GalleryService) ListCategories(ctx context.Context) ([]model.CategoryWithCount, error) {
	categories, err := s.queries.ListCategories(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing categories: %w", err)
	}
	if categories == nil {
		categories = []model.CategoryWithCount{}
	}
	return categories, nil
}

// Gallery assembles the public gallery: every category paired with a
// recent-photo preview, as an array of {category, photos} items. The
// assembled payload is cached.
func (s *GalleryService) Gallery(ctx context.Context) ([]GalleryItem, error) {
	if s.cache != nil {
		if cached, err := s.cache.Get(ctx, cache.KeyGallery); err == nil {
			var items []GalleryItem
			if err := json.Unmarshal(cached, &items); err == nil && items != nil {
				return items, nil
			}
		}
	}

	categories, err := s.queries.ListCategories(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing categories: %w", err)
	}

	items := make([]GalleryItem, 0, len(categories))
	for _, c := range categories {
		photos, err := s.queries.ListRecentPhotosByCategory(ctx, c.ID, model.DefaultRecentLimit)
		if err != nil {
			return nil, fmt.Errorf("listing photos for category %d: %w", c.ID, err)
		}
		if photos == nil {
			photos = []model.Photo{}
		}

		items = append(items, GalleryItem{
			Category: GalleryCategory{
				Category:        c.Category,
				DescriptionHTML: s.renderDescription(c.Description),
			},
			Photos: photos,
		})
	}

	if s.cache != nil {
		if payload, err := json.Marshal(items); err == nil {
			_ = s.cache.Set(ctx, cache.KeyGallery, payload, 0)
		}
	}

	return items, nil
}

// renderDescription renders a markdown category description to sanitized HTML.
func (s *GalleryService) renderDescription(description string) string {
	if description == "" {
		return ""
	}

	var buf bytes.Buffer
	if err := s.markdown.Convert([]byte(description), &buf); err != nil {
		return ""
	}

	return strings.TrimSpace(s.sanitizer.Sanitize(buf.String()))
}

// invalidate drops cached gallery payloads after a mutation.
func (s *GalleryService) invalidate(ctx context.Context) {
	if s.cache == nil {
		return
	}
	_ = s.cache.Delete(ctx, cache.KeyGallery)
	_ = s.cache.Delete(ctx, cache.KeyCategoryList)
	_ = s.cache.Delete(ctx, cache.KeyRecentPhotos)
}

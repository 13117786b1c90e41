package model

import "time"

// Category represents a gallery category grouping photos.
type Category struct {
	ID          int64     `json:"id"`
	Name        string    `json:"name"`
	Slug        string    `json:"slug"`
	Description string    `json:"description,omitempty"`
	CoverImage  string    `json:"cover_image,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// CategoryWithCount is a category annotated with its photo count,
// as returned by listing endpoints.
type CategoryWithCount struct {
	Category
	PhotoCount int64 `json:"photo_count"`
}

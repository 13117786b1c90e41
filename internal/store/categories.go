package store

import (
	"context"
	"time"

	"github.com/AntonioFerrao-hub/gallery-sync-palazzo-23/internal/model"
)

const createCategory = `
INSERT INTO categories (name, slug, description, cover_image, created_at, updated_at)
VALUES (?, ?, ?, ?, ?, ?)
RETURNING id, name, slug, description, cover_image, created_at, updated_at
`

// CreateCategoryParams holds the fields for creating a category.
type CreateCategoryParams struct {
	Name        string
	Slug        string
	Description string
	CoverImage  string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// CreateCategory inserts a new category and returns the created row.
func (q *Queries) CreateCategory(ctx context.Context, arg CreateCategoryParams) (model.Category, error) {
	row := q.db.QueryRowContext(ctx, createCategory,
		arg.Name, arg.Slug, arg.Description, arg.CoverImage, arg.CreatedAt, arg.UpdatedAt)
	var c model.Category
	err := row.Scan(&c.ID, &c.Name, &c.Slug, &c.Description, &c.CoverImage,
		&c.CreatedAt, &c.UpdatedAt)
	return c, err
}

const getCategoryByID = `
SELECT id, name, slug, description, cover_image, created_at, updated_at
FROM categories WHERE id = ?
`

// GetCategoryByID fetches a category by id. Returns sql.ErrNoRows if not found.
func (q *Queries) GetCategoryByID(ctx context.Context, id int64) (model.Category, error) {
	row := q.db.QueryRowContext(ctx, getCategoryByID, id)
	var c model.Category
	err := row.Scan(&c.ID, &c.Name, &c.Slug, &c.Description, &c.CoverImage,
		&c.CreatedAt, &c.UpdatedAt)
	return c, err
}

const getCategoryBySlug = `
SELECT id, name, slug, description, cover_image, created_at, updated_at
FROM categories WHERE slug = ?
`

// GetCategoryBySlug fetches a category by slug. Returns sql.ErrNoRows if not found.
func (q *Queries) GetCategoryBySlug(ctx context.Context, slug string) (model.Category, error) {
	row := q.db.QueryRowContext(ctx, getCategoryBySlug, slug)
	var c model.Category
	err := row.Scan(&c.ID, &c.Name, &c.Slug, &c.Description, &c.CoverImage,
		&c.CreatedAt, &c.UpdatedAt)
	return c, err
}

const listCategories = `
SELECT c.id, c.name, c.slug, c.description, c.cover_image, c.created_at, c.updated_at,
       COUNT(p.id) AS photo_count
FROM categories c
LEFT JOIN photos p ON p.category_id = c.id
GROUP BY c.id
ORDER BY c.created_at DESC
`

// ListCategories returns all categories with their photo counts, newest first.
func (q *Queries) ListCategories(ctx context.Context) ([]model.CategoryWithCount, error) {
	rows, err := q.db.QueryContext(ctx, listCategories)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var categories []model.CategoryWithCount
	for rows.Next() {
		var c model.CategoryWithCount
		if err := rows.Scan(&c.ID, &c.Name, &c.Slug, &c.Description, &c.CoverImage,
			&c.CreatedAt, &c.UpdatedAt, &c.PhotoCount); err != nil {
			return nil, err
		}
		categories = append(categories, c)
	}
	return categories, rows.Err()
}

const updateCategory = `
UPDATE categories SET name = ?, slug = ?, description = ?, cover_image = ?, updated_at = ?
WHERE id = ?
RETURNING id, name, slug, description, cover_image, created_at, updated_at
`

// UpdateCategoryParams holds the fields for updating a category.
type UpdateCategoryParams struct {
	ID          int64
	Name        string
	Slug        string
	Description string
	CoverImage  string
	UpdatedAt   time.Time
}

// UpdateCategory updates a category and returns the updated row.
func (q *Queries) UpdateCategory(ctx context.Context, arg UpdateCategoryParams) (model.Category, error) {
	row := q.db.QueryRowContext(ctx, updateCategory,
		arg.Name, arg.Slug, arg.Description, arg.CoverImage, arg.UpdatedAt, arg.ID)
	var c model.Category
	err := row.Scan(&c.ID, &c.Name, &c.Slug, &c.Description, &c.CoverImage,
		&c.CreatedAt, &c.UpdatedAt)
	return c, err
}

const deleteCategory = `DELETE FROM categories WHERE id = ?`

// DeleteCategory removes a category by id.
func (q *Queries) DeleteCategory(ctx context.Context, id int64) error {
	_, err := q.db.ExecContext(ctx, deleteCategory, id)
	return err
}

const categoryNameExists = `
SELECT EXISTS(SELECT 1 FROM categories WHERE name = ? COLLATE NOCASE)
`

// CategoryNameExists reports whether a category with this name exists
// (case-insensitive).
func (q *Queries) CategoryNameExists(ctx context.Context, name string) (bool, error) {
	var exists bool
	err := q.db.QueryRowContext(ctx, categoryNameExists, name).Scan(&exists)
	return exists, err
}

const categoryNameExistsExcluding = `
SELECT EXISTS(SELECT 1 FROM categories WHERE name = ? COLLATE NOCASE AND id != ?)
`

// CategoryNameExistsExcluding reports whether another category already uses
// this name, ignoring the category with the given id.
func (q *Queries) CategoryNameExistsExcluding(ctx context.Context, name string, id int64) (bool, error) {
	var exists bool
	err := q.db.QueryRowContext(ctx, categoryNameExistsExcluding, name, id).Scan(&exists)
	return exists, err
}

const categorySlugExists = `
SELECT EXISTS(SELECT 1 FROM categories WHERE slug = ?)
`

// CategorySlugExists reports whether a category with this slug exists.
func (q *Queries) CategorySlugExists(ctx context.Context, slug string) (bool, error) {
	var exists bool
	err := q.db.QueryRowContext(ctx, categorySlugExists, slug).Scan(&exists)
	return exists, err
}

const categorySlugExistsExcluding = `
SELECT EXISTS(SELECT 1 FROM categories WHERE slug = ? AND id != ?)
`

// CategorySlugExistsExcluding reports whether another category already uses
// this slug, ignoring the category with the given id.
func (q *Queries) CategorySlugExistsExcluding(ctx context.Context, slug string, id int64) (bool, error) {
	var exists bool
	err := q.db.QueryRowContext(ctx, categorySlugExistsExcluding, slug, id).Scan(&exists)
	return exists, err
}

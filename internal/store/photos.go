package store

import (
	"context"
	"errors"
	"time"

	"github.com/AntonioFerrao-hub/gallery-sync-palazzo-23/internal/model"
)

// ErrCategoryFull is returned by CreatePhotoCapped when the target category
// already holds the maximum number of photos.
var ErrCategoryFull = errors.New("category photo limit reached")

const photoColumns = `id, title, description, image_url, external_link, category_id, uploaded_by, created_at, updated_at`

const createPhotoCapped = `
INSERT INTO photos (title, description, image_url, external_link, category_id, uploaded_by, created_at, updated_at)
SELECT ?, ?, ?, ?, ?, ?, ?, ?
WHERE (SELECT COUNT(*) FROM photos WHERE category_id = ?) < ?
`

// CreatePhotoParams holds the fields for creating a photo.
type CreatePhotoParams struct {
	Title        string
	Description  string
	ImageURL     string
	ExternalLink string
	CategoryID   int64
	UploadedBy   *int64
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// CreatePhotoCapped inserts a photo only while the category holds fewer than
// model.MaxPhotosPerCategory photos. The count check and the insert run as a
// single statement, so concurrent inserts cannot exceed the cap. Returns
// ErrCategoryFull when the cap is reached.
func (q *Queries) CreatePhotoCapped(ctx context.Context, arg CreatePhotoParams) (model.Photo, error) {
	res, err := q.db.ExecContext(ctx, createPhotoCapped,
		arg.Title, arg.Description, arg.ImageURL, arg.ExternalLink,
		arg.CategoryID, arg.UploadedBy, arg.CreatedAt, arg.UpdatedAt,
		arg.CategoryID, model.MaxPhotosPerCategory)
	if err != nil {
		return model.Photo{}, err
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return model.Photo{}, err
	}
	if affected == 0 {
		return model.Photo{}, ErrCategoryFull
	}

	id, err := res.LastInsertId()
	if err != nil {
		return model.Photo{}, err
	}
	return q.GetPhotoByID(ctx, id)
}

const getPhotoByID = `
SELECT ` + photoColumns + `
FROM photos WHERE id = ?
`

// GetPhotoByID fetches a photo by id. Returns sql.ErrNoRows if not found.
func (q *Queries) GetPhotoByID(ctx context.Context, id int64) (model.Photo, error) {
	row := q.db.QueryRowContext(ctx, getPhotoByID, id)
	var p model.Photo
	err := row.Scan(&p.ID, &p.Title, &p.Description, &p.ImageURL, &p.ExternalLink,
		&p.CategoryID, &p.UploadedBy, &p.CreatedAt, &p.UpdatedAt)
	return p, err
}

const listPhotos = `
SELECT ` + photoColumns + `
FROM photos ORDER BY created_at DESC, id DESC
`

// ListPhotos returns all photos, newest first.
func (q *Queries) ListPhotos(ctx context.Context) ([]model.Photo, error) {
	return q.queryPhotos(ctx, listPhotos)
}

const listPhotosByCategory = `
SELECT ` + photoColumns + `
FROM photos WHERE category_id = ? ORDER BY created_at DESC, id DESC
`

// ListPhotosByCategory returns a category's photos, newest first.
func (q *Queries) ListPhotosByCategory(ctx context.Context, categoryID int64) ([]model.Photo, error) {
	return q.queryPhotos(ctx, listPhotosByCategory, categoryID)
}

const listRecentPhotos = `
SELECT ` + photoColumns + `
FROM photos ORDER BY created_at DESC, id DESC LIMIT ?
`

// ListRecentPhotos returns the newest photos across all categories.
func (q *Queries) ListRecentPhotos(ctx context.Context, limit int64) ([]model.Photo, error) {
	return q.queryPhotos(ctx, listRecentPhotos, limit)
}

const listRecentPhotosByCategory = `
SELECT ` + photoColumns + `
FROM photos WHERE category_id = ? ORDER BY created_at DESC, id DESC LIMIT ?
`

// ListRecentPhotosByCategory returns a category's newest photos, truncated
// to limit.
func (q *Queries) ListRecentPhotosByCategory(ctx context.Context, categoryID, limit int64) ([]model.Photo, error) {
	return q.queryPhotos(ctx, listRecentPhotosByCategory, categoryID, limit)
}

func (q *Queries) queryPhotos(ctx context.Context, query string, args ...any) ([]model.Photo, error) {
	rows, err := q.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var photos []model.Photo
	for rows.Next() {
		var p model.Photo
		if err := rows.Scan(&p.ID, &p.Title, &p.Description, &p.ImageURL, &p.ExternalLink,
			&p.CategoryID, &p.UploadedBy, &p.CreatedAt, &p.UpdatedAt); err != nil {
			return nil, err
		}
		photos = append(photos, p)
	}
	return photos, rows.Err()
}

const updatePhoto = `
UPDATE photos SET title = ?, description = ?, external_link = ?, updated_at = ?
WHERE id = ?
RETURNING ` + photoColumns + `
`

// UpdatePhotoParams holds the editable fields of a photo. The image and the
// category assignment are immutable after creation.
type UpdatePhotoParams struct {
	ID           int64
	Title        string
	Description  string
	ExternalLink string
	UpdatedAt    time.Time
}

// UpdatePhoto updates a photo's title, description and external link.
func (q *Queries) UpdatePhoto(ctx context.Context, arg UpdatePhotoParams) (model.Photo, error) {
	row := q.db.QueryRowContext(ctx, updatePhoto,
		arg.Title, arg.Description, arg.ExternalLink, arg.UpdatedAt, arg.ID)
	var p model.Photo
	err := row.Scan(&p.ID, &p.Title, &p.Description, &p.ImageURL, &p.ExternalLink,
		&p.CategoryID, &p.UploadedBy, &p.CreatedAt, &p.UpdatedAt)
	return p, err
}

const deletePhoto = `DELETE FROM photos WHERE id = ?`

// DeletePhoto removes a photo by id.
func (q *Queries) DeletePhoto(ctx context.Context, id int64) error {
	_, err := q.db.ExecContext(ctx, deletePhoto, id)
	return err
}

const deletePhotosInCategory = `DELETE FROM photos WHERE category_id = ?`

// DeletePhotosInCategory removes every photo in a category. Returns the
// number of photos removed.
func (q *Queries) DeletePhotosInCategory(ctx context.Context, categoryID int64) (int64, error) {
	res, err := q.db.ExecContext(ctx, deletePhotosInCategory, categoryID)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

const countPhotosInCategory = `SELECT COUNT(*) FROM photos WHERE category_id = ?`

// CountPhotosInCategory returns how many photos a category holds.
func (q *Queries) CountPhotosInCategory(ctx context.Context, categoryID int64) (int64, error) {
	var n int64
	err := q.db.QueryRowContext(ctx, countPhotosInCategory, categoryID).Scan(&n)
	return n, err
}

const countPhotos = `SELECT COUNT(*) FROM photos`

// CountPhotos returns the total number of photos.
func (q *Queries) CountPhotos(ctx context.Context) (int64, error) {
	var n int64
	err := q.db.QueryRowContext(ctx, countPhotos).Scan(&n)
	return n, err
}

const listPhotoImageURLs = `SELECT image_url FROM photos`

// ListPhotoImageURLs returns the image_url of every photo. Used by the
// orphan upload sweep to decide which stored files are still referenced.
func (q *Queries) ListPhotoImageURLs(ctx context.Context) ([]string, error) {
	rows, err := q.db.QueryContext(ctx, listPhotoImageURLs)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var urls []string
	for rows.Next() {
		var u string
		if err := rows.Scan(&u); err != nil {
			return nil, err
		}
		urls = append(urls, u)
	}
	return urls, rows.Err()
}

package model

import "time"

// Photo represents a single gallery image belonging to a category.
type Photo struct {
	ID           int64     `json:"id"`
	Title        string    `json:"title"`
	Description  string    `json:"description,omitempty"`
	ImageURL     string    `json:"image_url"`
	ExternalLink string    `json:"external_link,omitempty"`
	CategoryID   int64     `json:"category_id"`
	UploadedBy   *int64    `json:"uploaded_by,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// Photo limits.
const (
	// MaxPhotosPerCategory caps how many photos a single category may hold.
	MaxPhotosPerCategory = 20

	// MaxUploadSize is the maximum accepted image payload in bytes.
	MaxUploadSize = 2 * 1024 * 1024 // 2MB

	// DefaultRecentLimit is how many photos the public gallery previews
	// per category before "view all".
	DefaultRecentLimit = 8
)

// Supported image variant types.
const (
	VariantThumbnail = "thumbnail"
	VariantMedium    = "medium"
)

// Supported image MIME types.
const (
	MimeTypeJPEG = "image/jpeg"
	MimeTypePNG  = "image/png"
	MimeTypeGIF  = "image/gif"
	MimeTypeWebP = "image/webp"
)

// ImageVariantConfig defines settings for generating image variants.
type ImageVariantConfig struct {
	Width   int
	Height  int
	Quality int
	Crop    bool // true = crop to exact size, false = fit within bounds
}

// ImageVariants defines the default image variant configurations.
var ImageVariants = map[string]ImageVariantConfig{
	VariantThumbnail: {Width: 300, Height: 300, Quality: 80, Crop: true},
	VariantMedium:    {Width: 1024, Height: 768, Quality: 85, Crop: false},
}

// SupportedImageTypes returns the image MIME types accepted for upload.
func SupportedImageTypes() []string {
	return []string{MimeTypeJPEG, MimeTypePNG, MimeTypeGIF, MimeTypeWebP}
}

// IsSupportedImageType checks if a MIME type is an accepted image type.
func IsSupportedImageType(mimeType string) bool {
	switch mimeType {
	case MimeTypeJPEG, MimeTypePNG, MimeTypeGIF, MimeTypeWebP:
		return true
	default:
		return false
	}
}

package service

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/AntonioFerrao-hub/gallery-sync-palazzo-23/internal/model"
)

func TestCreatePhotoWithExternalURL(t *testing.T) {
	gs, db := testGalleryService(t)
	ps := testPhotoService(t, db)
	ctx := context.Background()

	catID := mustCreateCategory(t, gs, "Links")

	photo, err := ps.CreatePhoto(ctx, CreatePhotoInput{
		Title:      "Linked",
		CategoryID: catID,
		Image:      ImageInput{URL: "https://example.com/image.jpg"},
	})
	if err != nil {
		t.Fatalf("CreatePhoto: %v", err)
	}

	if photo.ImageURL != "https://example.com/image.jpg" {
		t.Errorf("ImageURL = %q, external URL should be kept as-is", photo.ImageURL)
	}
}

func TestCreatePhotoWithUpload(t *testing.T) {
	gs, db := testGalleryService(t)
	ps := testPhotoService(t, db)
	ctx := context.Background()

	catID := mustCreateCategory(t, gs, "Uploads")

	photo, err := ps.CreatePhoto(ctx, CreatePhotoInput{
		Title:      "Uploaded",
		CategoryID: catID,
		Image: ImageInput{
			Data:     testJPEG(t, 640, 480),
			Filename: "my photo.jpg",
		},
	})
	if err != nil {
		t.Fatalf("CreatePhoto: %v", err)
	}

	if !strings.HasPrefix(photo.ImageURL, "/uploads/originals/") {
		t.Errorf("ImageURL = %q, want local upload path", photo.ImageURL)
	}
	if !strings.HasSuffix(photo.ImageURL, "/my-photo.jpg") {
		t.Errorf("ImageURL = %q, want sanitized filename", photo.ImageURL)
	}
	if UploadID(photo.ImageURL) == "" {
		t.Errorf("ImageURL %q should contain an upload id", photo.ImageURL)
	}
}

func TestCreatePhotoValidation(t *testing.T) {
	gs, db := testGalleryService(t)
	ps := testPhotoService(t, db)
	ctx := context.Background()

	catID := mustCreateCategory(t, gs, "Rules")

	tests := []struct {
		name  string
		input CreatePhotoInput
	}{
		{"missing title", CreatePhotoInput{
			CategoryID: catID,
			Image:      ImageInput{URL: "https://example.com/x.jpg"},
		}},
		{"missing image", CreatePhotoInput{
			Title:      "No Image",
			CategoryID: catID,
		}},
		{"non-http url", CreatePhotoInput{
			Title:      "Bad Scheme",
			CategoryID: catID,
			Image:      ImageInput{URL: "ftp://example.com/x.jpg"},
		}},
		{"non-image data", CreatePhotoInput{
			Title:      "Text File",
			CategoryID: catID,
			Image:      ImageInput{Data: []byte("plain text, not an image"), Filename: "x.jpg"},
		}},
		{"oversized data", CreatePhotoInput{
			Title:      "Huge",
			CategoryID: catID,
			Image:      ImageInput{Data: make([]byte, model.MaxUploadSize+1), Filename: "big.jpg"},
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := ps.CreatePhoto(ctx, tt.input); !IsValidation(err) {
				t.Errorf("expected ValidationError, got %v", err)
			}
		})
	}
}

func TestCreatePhotoMissingCategory(t *testing.T) {
	_, db := testGalleryService(t)
	ps := testPhotoService(t, db)

	_, err := ps.CreatePhoto(context.Background(), CreatePhotoInput{
		Title:      "Orphan",
		CategoryID: 12345,
		Image:      ImageInput{URL: "https://example.com/x.jpg"},
	})
	if !IsNotFound(err) {
		t.Errorf("expected NotFoundError, got %v", err)
	}
}

func TestCreatePhotoCapLimit(t *testing.T) {
	gs, db := testGalleryService(t)
	ps := testPhotoService(t, db)
	ctx := context.Background()

	catID := mustCreateCategory(t, gs, "Busy")

	for i := 0; i < model.MaxPhotosPerCategory; i++ {
		_, err := ps.CreatePhoto(ctx, CreatePhotoInput{
			Title:      fmt.Sprintf("Photo %d", i),
			CategoryID: catID,
			Image:      ImageInput{URL: fmt.Sprintf("https://example.com/%d.jpg", i)},
		})
		if err != nil {
			t.Fatalf("CreatePhoto %d: %v", i, err)
		}
	}

	_, err := ps.CreatePhoto(ctx, CreatePhotoInput{
		Title:      "Over the Top",
		CategoryID: catID,
		Image:      ImageInput{URL: "https://example.com/over.jpg"},
	})

	var le *LimitExceededError
	if !errors.As(err, &le) {
		t.Fatalf("expected LimitExceededError, got %v", err)
	}
	if le.Limit != model.MaxPhotosPerCategory {
		t.Errorf("Limit = %d, want %d", le.Limit, model.MaxPhotosPerCategory)
	}
}

func TestUpdatePhotoImmutableFields(t *testing.T) {
	gs, db := testGalleryService(t)
	ps := testPhotoService(t, db)
	ctx := context.Background()

	catID := mustCreateCategory(t, gs, "Fixed")

	created, err := ps.CreatePhoto(ctx, CreatePhotoInput{
		Title:      "Original",
		CategoryID: catID,
		Image:      ImageInput{URL: "https://example.com/keep.jpg"},
	})
	if err != nil {
		t.Fatalf("CreatePhoto: %v", err)
	}

	updated, err := ps.UpdatePhoto(ctx, created.ID, UpdatePhotoInput{
		Title:        "Renamed",
		Description:  "new description",
		ExternalLink: "https://example.com/portfolio",
	})
	if err != nil {
		t.Fatalf("UpdatePhoto: %v", err)
	}

	if updated.Title != "Renamed" || updated.Description != "new description" {
		t.Errorf("update not applied: %+v", updated)
	}
	if updated.ExternalLink != "https://example.com/portfolio" {
		t.Errorf("ExternalLink = %q, want updated link", updated.ExternalLink)
	}
	if updated.ImageURL != created.ImageURL || updated.CategoryID != created.CategoryID {
		t.Error("image and category must be immutable")
	}
}

func TestRecentPhotosPrefixOfFullListing(t *testing.T) {
	gs, db := testGalleryService(t)
	ps := testPhotoService(t, db)
	ctx := context.Background()

	catID := mustCreateCategory(t, gs, "Timeline")

	for i := 0; i < 12; i++ {
		_, err := ps.CreatePhoto(ctx, CreatePhotoInput{
			Title:      fmt.Sprintf("Photo %d", i),
			CategoryID: catID,
			Image:      ImageInput{URL: fmt.Sprintf("https://example.com/%d.jpg", i)},
		})
		if err != nil {
			t.Fatalf("CreatePhoto %d: %v", i, err)
		}
	}

	recent, err := ps.ListRecentPhotosByCategory(ctx, catID, 8)
	if err != nil {
		t.Fatalf("ListRecentPhotosByCategory: %v", err)
	}
	if len(recent) != 8 {
		t.Fatalf("len(recent) = %d, want 8", len(recent))
	}

	all, err := ps.ListPhotosByCategory(ctx, catID)
	if err != nil {
		t.Fatalf("ListPhotosByCategory: %v", err)
	}
	for i, p := range recent {
		if p.ID != all[i].ID {
			t.Fatalf("recent[%d].ID = %d, want %d (not a recency prefix)", i, p.ID, all[i].ID)
		}
	}

	// Out-of-range limits are clamped
	clamped, err := ps.ListRecentPhotosByCategory(ctx, catID, 500)
	if err != nil {
		t.Fatalf("ListRecentPhotosByCategory: %v", err)
	}
	if len(clamped) != 12 {
		t.Errorf("len(clamped) = %d, want all 12", len(clamped))
	}

	defaulted, err := ps.ListRecentPhotosByCategory(ctx, catID, 0)
	if err != nil {
		t.Fatalf("ListRecentPhotosByCategory: %v", err)
	}
	if len(defaulted) != 8 {
		t.Errorf("len(defaulted) = %d, want default of 8", len(defaulted))
	}
}

func TestDeletePhoto(t *testing.T) {
	gs, db := testGalleryService(t)
	ps := testPhotoService(t, db)
	ctx := context.Background()

	catID := mustCreateCategory(t, gs, "Short Lived")

	created, err := ps.CreatePhoto(ctx, CreatePhotoInput{
		Title:      "Gone Soon",
		CategoryID: catID,
		Image:      ImageInput{Data: testJPEG(t, 320, 240), Filename: "gone.jpg"},
	})
	if err != nil {
		t.Fatalf("CreatePhoto: %v", err)
	}

	if err := ps.DeletePhoto(ctx, created.ID); err != nil {
		t.Fatalf("DeletePhoto: %v", err)
	}

	if _, err := ps.GetPhoto(ctx, created.ID); !IsNotFound(err) {
		t.Errorf("expected NotFoundError after delete, got %v", err)
	}

	if err := ps.DeletePhoto(ctx, created.ID); !IsNotFound(err) {
		t.Errorf("double delete: expected NotFoundError, got %v", err)
	}
}

func TestDecodeDataURI(t *testing.T) {
	payload := []byte{0x01, 0x02, 0x03}
	encoded := "data:image/png;base64," + base64.StdEncoding.EncodeToString(payload)

	data, mimeType, ok := DecodeDataURI(encoded)
	if !ok {
		t.Fatal("expected data URI to decode")
	}
	if mimeType != "image/png" {
		t.Errorf("mimeType = %q, want image/png", mimeType)
	}
	if string(data) != string(payload) {
		t.Errorf("data = %v, want %v", data, payload)
	}

	invalid := []string{
		"https://example.com/x.png",
		"data:image/png,raw-not-base64",
		"data:image/png;base64,!!!not-base64!!!",
		"",
	}
	for _, s := range invalid {
		if _, _, ok := DecodeDataURI(s); ok {
			t.Errorf("DecodeDataURI(%q) should fail", s)
		}
	}
}

func TestUploadID(t *testing.T) {
	tests := []struct {
		url  string
		want string
	}{
		{"/uploads/originals/abc-123/photo.jpg", "abc-123"},
		{"https://example.com/photo.jpg", ""},
		{"/uploads/thumbnail/abc-123/photo.jpg", ""},
		{"/uploads/originals/", ""},
	}

	for _, tt := range tests {
		if got := UploadID(tt.url); got != tt.want {
			t.Errorf("UploadID(%q) = %q, want %q", tt.url, got, tt.want)
		}
	}
}

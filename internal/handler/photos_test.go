package handler

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/jpeg"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"

	"github.com/AntonioFerrao-hub/gallery-sync-palazzo-23/internal/model"
)

func TestCreatePhotoJSONWithURL(t *testing.T) {
	env := newTestEnv(t)
	catID := createTestCategory(t, env, "Links")

	body := fmt.Sprintf(`{"title": "Linked", "category_id": %d, "image_url": "https://example.com/pic.jpg"}`, catID)
	req := newJSONRequest(t, http.MethodPost, "/api/photos", body, nil)
	w := executeHandler(t, env.photosH.Create, req)

	if w.Code != http.StatusCreated {
		t.Fatalf("status = %d, want 201: %s", w.Code, w.Body.String())
	}
	if photo := unmarshalBody[model.Photo](t, w); photo.ImageURL != "https://example.com/pic.jpg" {
		t.Errorf("ImageURL = %q", photo.ImageURL)
	}
}

func TestCreatePhotoJSONWithDataURI(t *testing.T) {
	env := newTestEnv(t)
	catID := createTestCategory(t, env, "Embedded")

	body := fmt.Sprintf(`{"title": "Inline", "category_id": %d, "image_url": %q}`,
		catID, testJPEGDataURI(t))
	req := newJSONRequest(t, http.MethodPost, "/api/photos", body, nil)
	w := executeHandler(t, env.photosH.Create, req)

	if w.Code != http.StatusCreated {
		t.Fatalf("status = %d, want 201: %s", w.Code, w.Body.String())
	}
	photo := unmarshalBody[model.Photo](t, w)
	if !strings.HasPrefix(photo.ImageURL, "/uploads/originals/") {
		t.Errorf("ImageURL = %q, data URI should be stored locally", photo.ImageURL)
	}
}

func TestCreatePhotoMultipart(t *testing.T) {
	env := newTestEnv(t)
	catID := createTestCategory(t, env, "Uploads")

	img := image.NewRGBA(image.Rect(0, 0, 48, 48))
	for y := 0; y < 48; y++ {
		for x := 0; x < 48; x++ {
			img.Set(x, y, color.RGBA{R: 200, G: 30, B: 30, A: 255})
		}
	}
	var jpegBuf bytes.Buffer
	if err := jpeg.Encode(&jpegBuf, img, nil); err != nil {
		t.Fatalf("encoding test jpeg: %v", err)
	}

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	_ = mw.WriteField("title", "Uploaded")
	_ = mw.WriteField("category_id", strconv.FormatInt(catID, 10))
	fw, err := mw.CreateFormFile("image", "shot.jpg")
	if err != nil {
		t.Fatalf("CreateFormFile: %v", err)
	}
	if _, err := fw.Write(jpegBuf.Bytes()); err != nil {
		t.Fatalf("writing form file: %v", err)
	}
	mw.Close()

	req := httptest.NewRequest(http.MethodPost, "/api/photos", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	w := executeHandler(t, env.photosH.Create, req)

	if w.Code != http.StatusCreated {
		t.Fatalf("status = %d, want 201: %s", w.Code, w.Body.String())
	}
	photo := unmarshalBody[model.Photo](t, w)
	if !strings.HasPrefix(photo.ImageURL, "/uploads/originals/") {
		t.Errorf("ImageURL = %q, want local upload path", photo.ImageURL)
	}
	if !strings.HasSuffix(photo.ImageURL, "/shot.jpg") {
		t.Errorf("ImageURL = %q, want original filename preserved", photo.ImageURL)
	}
}

func TestCreatePhotoMissingTitle(t *testing.T) {
	env := newTestEnv(t)
	catID := createTestCategory(t, env, "Rules")

	body := fmt.Sprintf(`{"category_id": %d, "image_url": "https://example.com/x.jpg"}`, catID)
	req := newJSONRequest(t, http.MethodPost, "/api/photos", body, nil)
	w := executeHandler(t, env.photosH.Create, req)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", w.Code)
	}
}

func TestCreatePhotoCapExceeded(t *testing.T) {
	env := newTestEnv(t)
	catID := createTestCategory(t, env, "Full")

	for i := 0; i < model.MaxPhotosPerCategory; i++ {
		createTestPhoto(t, env, catID, fmt.Sprintf("photo-%d", i))
	}

	body := fmt.Sprintf(`{"title": "Too Many", "category_id": %d, "image_url": "https://example.com/x.jpg"}`, catID)
	req := newJSONRequest(t, http.MethodPost, "/api/photos", body, nil)
	w := executeHandler(t, env.photosH.Create, req)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400: %s", w.Code, w.Body.String())
	}
	if msg := errorMessage(t, w); !strings.Contains(msg, "20") {
		t.Errorf("error = %q, should mention the limit", msg)
	}
}

func TestListPhotosByCategoryFilter(t *testing.T) {
	env := newTestEnv(t)

	first := createTestCategory(t, env, "First")
	second := createTestCategory(t, env, "Second")
	createTestPhoto(t, env, first, "a")
	createTestPhoto(t, env, first, "b")
	createTestPhoto(t, env, second, "c")

	req := newJSONRequest(t, http.MethodGet,
		fmt.Sprintf("/api/photos?categoryId=%d", first), "", nil)
	w := executeHandler(t, env.photosH.List, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
	if photos := unmarshalBody[[]model.Photo](t, w); len(photos) != 2 {
		t.Errorf("len = %d, want 2", len(photos))
	}
}

func TestListRecentByCategoryClampsLimit(t *testing.T) {
	env := newTestEnv(t)

	catID := createTestCategory(t, env, "Recent")
	for i := 0; i < 10; i++ {
		createTestPhoto(t, env, catID, fmt.Sprintf("p-%d", i))
	}

	req := newJSONRequest(t, http.MethodGet, "/api/photos/category/1/recent", "",
		map[string]string{"categoryId": strconv.FormatInt(catID, 10)})
	w := executeHandler(t, env.photosH.ListRecentByCategory, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
	if photos := unmarshalBody[[]model.Photo](t, w); len(photos) != model.DefaultRecentLimit {
		t.Errorf("len = %d, want default of %d", len(photos), model.DefaultRecentLimit)
	}
}

func TestUpdatePhotoHandler(t *testing.T) {
	env := newTestEnv(t)

	catID := createTestCategory(t, env, "Editable")
	photoID := createTestPhoto(t, env, catID, "before")

	req := newJSONRequest(t, http.MethodPut, "/api/photos/1",
		`{"title": "After", "external_link": "https://example.com/after"}`,
		map[string]string{"id": strconv.FormatInt(photoID, 10)})
	w := executeHandler(t, env.photosH.Update, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200: %s", w.Code, w.Body.String())
	}

	photo := unmarshalBody[model.Photo](t, w)
	if photo.Title != "After" {
		t.Errorf("Title = %q", photo.Title)
	}
	if photo.ExternalLink != "https://example.com/after" {
		t.Errorf("ExternalLink = %q", photo.ExternalLink)
	}
	if photo.CategoryID != catID {
		t.Error("category must not change on update")
	}
}

func TestDeletePhotoHandler(t *testing.T) {
	env := newTestEnv(t)

	catID := createTestCategory(t, env, "Trash")
	photoID := createTestPhoto(t, env, catID, "gone")
	params := map[string]string{"id": strconv.FormatInt(photoID, 10)}

	req := newJSONRequest(t, http.MethodDelete, "/api/photos/1", "", params)
	if w := executeHandler(t, env.photosH.Delete, req); w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}

	// Second delete must 404, never silently succeed
	req = newJSONRequest(t, http.MethodDelete, "/api/photos/1", "", params)
	if w := executeHandler(t, env.photosH.Delete, req); w.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", w.Code)
	}
}

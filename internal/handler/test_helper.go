package handler

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/base64"
	"encoding/json"
	"image"
	"image/color"
	"image/jpeg"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/alexedwards/scs/v2"
	"github.com/go-chi/chi/v5"

	"github.com/AntonioFerrao-hub/gallery-sync-palazzo-23/internal/cache"
	"github.com/AntonioFerrao-hub/gallery-sync-palazzo-23/internal/imaging"
	"github.com/AntonioFerrao-hub/gallery-sync-palazzo-23/internal/service"
	"github.com/AntonioFerrao-hub/gallery-sync-palazzo-23/internal/session"
	"github.com/AntonioFerrao-hub/gallery-sync-palazzo-23/internal/store"
)

// testEnv bundles the services and handlers under test.
type testEnv struct {
	db         *sql.DB
	sessions   *scs.SessionManager
	users      *service.UserService
	gallery    *service.GalleryService
	photos     *service.PhotoService
	events     *service.EventService
	auth       *AuthHandler
	categories *CategoryHandler
	photosH    *PhotoHandler
	usersH     *UserHandler
	galleryH   *GalleryHandler
	health     *HealthHandler
}

// newTestEnv creates a migrated temp database, seeds the admin, and wires
// every handler with real services.
func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	f, err := os.CreateTemp("", "gallery-handler-*.db")
	if err != nil {
		t.Fatalf("creating temp file: %v", err)
	}
	f.Close()

	db, err := store.NewDB(f.Name())
	if err != nil {
		os.Remove(f.Name())
		t.Fatalf("NewDB: %v", err)
	}
	if err := store.Migrate(db); err != nil {
		db.Close()
		os.Remove(f.Name())
		t.Fatalf("Migrate: %v", err)
	}
	if err := store.Seed(context.Background(), db, "admin123"); err != nil {
		t.Fatalf("Seed: %v", err)
	}

	t.Cleanup(func() {
		db.Close()
		os.Remove(f.Name())
	})

	c := cache.NewMemoryCache(cache.MemoryCacheOptions{DefaultTTL: time.Minute})
	processor := imaging.NewProcessor(t.TempDir())
	sessions := session.New(db, true)

	users := service.NewUserService(db)
	gallery := service.NewGalleryService(db, c)
	photos := service.NewPhotoService(db, c, processor)
	events := service.NewEventService(db, nil)

	return &testEnv{
		db:         db,
		sessions:   sessions,
		users:      users,
		gallery:    gallery,
		photos:     photos,
		events:     events,
		auth:       NewAuthHandler(sessions, users, events),
		categories: NewCategoryHandler(gallery, photos, events),
		photosH:    NewPhotoHandler(photos, events),
		usersH:     NewUserHandler(users, events),
		galleryH:   NewGalleryHandler(gallery),
		health:     NewHealthHandler(db),
	}
}

// requestWithURLParams adds chi URL parameters to a request.
func requestWithURLParams(r *http.Request, params map[string]string) *http.Request {
	rctx := chi.NewRouteContext()
	for key, value := range params {
		rctx.URLParams.Add(key, value)
	}
	return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
}

// newJSONRequest creates an HTTP request with a JSON body and optional URL params.
func newJSONRequest(t *testing.T, method, path, body string, params map[string]string) *http.Request {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	if len(params) > 0 {
		req = requestWithURLParams(req, params)
	}
	return req
}

// executeHandler runs a handler and returns the response recorder.
func executeHandler(t *testing.T, handler func(http.ResponseWriter, *http.Request), req *http.Request) *httptest.ResponseRecorder {
	t.Helper()
	w := httptest.NewRecorder()
	handler(w, req)
	return w
}

// executeWithSession runs a handler wrapped in the session middleware.
// Needed for handlers that read or write session state.
func executeWithSession(t *testing.T, env *testEnv, handler func(http.ResponseWriter, *http.Request), req *http.Request) *httptest.ResponseRecorder {
	t.Helper()
	w := httptest.NewRecorder()
	env.sessions.LoadAndSave(http.HandlerFunc(handler)).ServeHTTP(w, req)
	return w
}

// unmarshalBody decodes a JSON response body into the specified type.
func unmarshalBody[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	if err := json.Unmarshal(w.Body.Bytes(), &v); err != nil {
		t.Fatalf("failed to unmarshal response %q: %v", w.Body.String(), err)
	}
	return v
}

// errorMessage extracts the error field of a JSON error response.
func errorMessage(t *testing.T, w *httptest.ResponseRecorder) string {
	t.Helper()
	return unmarshalBody[errorBody](t, w).Error
}

// createTestCategory creates a category through the service layer.
func createTestCategory(t *testing.T, env *testEnv, name string) int64 {
	t.Helper()
	cat, err := env.gallery.CreateCategory(context.Background(), service.CategoryInput{Name: name})
	if err != nil {
		t.Fatalf("CreateCategory(%q): %v", name, err)
	}
	return cat.ID
}

// createTestPhoto creates a photo with an external image URL.
func createTestPhoto(t *testing.T, env *testEnv, categoryID int64, title string) int64 {
	t.Helper()
	photo, err := env.photos.CreatePhoto(context.Background(), service.CreatePhotoInput{
		Title:      title,
		CategoryID: categoryID,
		Image:      service.ImageInput{URL: "https://example.com/" + title + ".jpg"},
	})
	if err != nil {
		t.Fatalf("CreatePhoto(%q): %v", title, err)
	}
	return photo.ID
}

// testJPEGDataURI returns a small JPEG encoded as a base64 data URI.
func testJPEGDataURI(t *testing.T) string {
	t.Helper()

	img := image.NewRGBA(image.Rect(0, 0, 64, 64))
	for y := 0; y < 64; y++ {
		for x := 0; x < 64; x++ {
			img.Set(x, y, color.RGBA{R: 10, G: 120, B: 230, A: 255})
		}
	}

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, nil); err != nil {
		t.Fatalf("encoding test jpeg: %v", err)
	}

	return "data:image/jpeg;base64," + base64.StdEncoding.EncodeToString(buf.Bytes())
}

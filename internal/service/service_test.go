package service

import (
	"bytes"
	"context"
	"database/sql"
	"image"
	"image/color"
	"image/jpeg"
	"os"
	"testing"
	"time"

	"github.com/AntonioFerrao-hub/gallery-sync-palazzo-23/internal/cache"
	"github.com/AntonioFerrao-hub/gallery-sync-palazzo-23/internal/imaging"
	"github.com/AntonioFerrao-hub/gallery-sync-palazzo-23/internal/store"
)

// testDB creates a temporary migrated test database.
func testDB(t *testing.T) *sql.DB {
	t.Helper()

	f, err := os.CreateTemp("", "gallery-service-*.db")
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

	t.Cleanup(func() {
		db.Close()
		os.Remove(f.Name())
	})

	return db
}

func testCache() cache.Cacher {
	return cache.NewMemoryCache(cache.MemoryCacheOptions{DefaultTTL: time.Minute})
}

func testGalleryService(t *testing.T) (*GalleryService, *sql.DB) {
	t.Helper()
	db := testDB(t)
	return NewGalleryService(db, testCache()), db
}

func testPhotoService(t *testing.T, db *sql.DB) *PhotoService {
	t.Helper()
	return NewPhotoService(db, testCache(), imaging.NewProcessor(t.TempDir()))
}

// testJPEG returns an encoded JPEG of the given size.
func testJPEG(t *testing.T, width, height int) []byte {
	t.Helper()

	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			img.Set(x, y, color.RGBA{R: uint8(x % 256), G: uint8(y % 256), B: 200, A: 255})
		}
	}

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: 85}); err != nil {
		t.Fatalf("encoding test jpeg: %v", err)
	}
	return buf.Bytes()
}

func mustCreateCategory(t *testing.T, gs *GalleryService, name string) int64 {
	t.Helper()

	cat, err := gs.CreateCategory(context.Background(), CategoryInput{Name: name})
	if err != nil {
		t.Fatalf("CreateCategory(%q): %v", name, err)
	}
	return cat.ID
}

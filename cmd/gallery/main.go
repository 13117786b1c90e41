// Command gallery runs the photo gallery server: a JSON REST API for
// managing categories, photos, and users, plus static serving of
// uploaded images.
package main

import (
	"context"
	"database/sql"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/joho/godotenv"

	"github.com/AntonioFerrao-hub/gallery-sync-palazzo-23/internal/cache"
	"github.com/AntonioFerrao-hub/gallery-sync-palazzo-23/internal/config"
	"github.com/AntonioFerrao-hub/gallery-sync-palazzo-23/internal/geoip"
	"github.com/AntonioFerrao-hub/gallery-sync-palazzo-23/internal/handler"
	"github.com/AntonioFerrao-hub/gallery-sync-palazzo-23/internal/imaging"
	"github.com/AntonioFerrao-hub/gallery-sync-palazzo-23/internal/logging"
	"github.com/AntonioFerrao-hub/gallery-sync-palazzo-23/internal/middleware"
	"github.com/AntonioFerrao-hub/gallery-sync-palazzo-23/internal/scheduler"
	"github.com/AntonioFerrao-hub/gallery-sync-palazzo-23/internal/service"
	"github.com/AntonioFerrao-hub/gallery-sync-palazzo-23/internal/session"
	"github.com/AntonioFerrao-hub/gallery-sync-palazzo-23/internal/store"
)

// Build-time injected values (via -ldflags).
var (
	appVersion   = "dev"
	appGitCommit = "unknown"
	appBuildTime = "unknown"
)

func main() {
	showVersion := flag.Bool("version", false, "Show version information")
	flag.BoolVar(showVersion, "v", false, "Show version information (shorthand)")
	showHelp := flag.Bool("help", false, "Show help information")
	flag.BoolVar(showHelp, "h", false, "Show help information (shorthand)")

	flag.Usage = func() {
		_, _ = fmt.Fprintf(os.Stderr, "gallery - Photo Gallery Server\n\n")
		_, _ = fmt.Fprintf(os.Stderr, "Usage: %s [options]\n\n", os.Args[0])
		_, _ = fmt.Fprintf(os.Stderr, "Options:\n")
		flag.PrintDefaults()
		_, _ = fmt.Fprintf(os.Stderr, "\nEnvironment Variables:\n")
		_, _ = fmt.Fprintf(os.Stderr, "  GALLERY_SESSION_SECRET    Session encryption key (required, min 32 bytes)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  GALLERY_DB_PATH           SQLite database path (default: ./data/gallery.db)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  GALLERY_SERVER_PORT       Server port (default: 8080)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  GALLERY_ENV               Environment: development|production (default: development)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  GALLERY_UPLOADS_DIR       Upload storage directory (default: ./uploads)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  GALLERY_ADMIN_PASSWORD    Initial admin password (default: admin123)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  GALLERY_REDIS_URL         Redis URL for distributed caching (optional)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  GALLERY_GEOIP_DB_PATH     GeoLite2-Country.mmdb path for audit geolocation (optional)\n")
	}

	flag.Parse()

	if *showHelp {
		flag.Usage()
		os.Exit(0)
	}

	if *showVersion {
		_, _ = fmt.Printf("gallery %s (commit: %s, built: %s)\n", appVersion, appGitCommit, appBuildTime)
		os.Exit(0)
	}

	if err := run(); err != nil {
		slog.Error("application error", "error", err)
		os.Exit(1)
	}
}

func run() error {
	// Load .env file if present (development)
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	// Setup logger
	logLevel := slog.LevelInfo
	switch cfg.LogLevel {
	case "debug":
		logLevel = slog.LevelDebug
	case "warn":
		logLevel = slog.LevelWarn
	case "error":
		logLevel = slog.LevelError
	}

	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: logLevel,
	}))
	slog.SetDefault(logger)

	// Ensure data and upload directories exist
	if err := os.MkdirAll(filepath.Dir(cfg.DBPath), 0755); err != nil {
		return fmt.Errorf("creating data directory: %w", err)
	}
	if err := os.MkdirAll(cfg.UploadsDir, 0755); err != nil {
		return fmt.Errorf("creating uploads directory: %w", err)
	}

	slog.Info("initializing database", "path", cfg.DBPath)
	db, err := store.NewDB(cfg.DBPath)
	if err != nil {
		return fmt.Errorf("initializing database: %w", err)
	}
	defer func(db *sql.DB) {
		if err := db.Close(); err != nil {
			slog.Error("error closing database connection", "error", err)
		}
	}(db)

	slog.Info("running database migrations")
	if err := store.Migrate(db); err != nil {
		return fmt.Errorf("running migrations: %w", err)
	}
	slog.Info("database ready")

	// Upgrade logger to also write WARN and ERROR logs to the events table
	textHandler := slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: logLevel})
	logger = slog.New(logging.NewEventLogHandler(textHandler, db))
	slog.SetDefault(logger)
	slog.Info("event log integration enabled", "min_level", "warn")

	ctx := context.Background()
	if err := store.Seed(ctx, db, cfg.AdminPassword); err != nil {
		return fmt.Errorf("seeding database: %w", err)
	}

	sessionManager := session.New(db, cfg.IsDevelopment())
	slog.Info("session manager initialized")

	// Cache falls back to memory when Redis is unconfigured or unreachable
	cacher := cache.New(cache.Options{
		RedisURL:   cfg.RedisURL,
		Prefix:     cfg.CachePrefix,
		DefaultTTL: time.Duration(cfg.CacheTTL) * time.Second,
		MaxSize:    cfg.CacheMaxSize,
	})
	defer func() {
		if err := cacher.Close(); err != nil {
			slog.Warn("error closing cache", "error", err)
		}
	}()

	// GeoIP enriches audit events with a country code; missing database
	// files are not fatal, events simply carry no country
	geo := geoip.NewLookup()
	if err := geo.Init(cfg.GeoIPDBPath); err != nil {
		slog.Warn("geoip initialization failed", "error", err, "path", cfg.GeoIPDBPath)
	}
	defer func() {
		if err := geo.Close(); err != nil {
			slog.Warn("error closing geoip database", "error", err)
		}
	}()

	processor := imaging.NewProcessor(cfg.UploadsDir)

	userService := service.NewUserService(db)
	galleryService := service.NewGalleryService(db, cacher)
	photoService := service.NewPhotoService(db, cacher, processor)
	eventService := service.NewEventService(db, geo)

	sched := scheduler.New(store.New(db), eventService, processor, geo, cfg.UploadsDir, logger)
	if err := sched.Start(); err != nil {
		return fmt.Errorf("starting scheduler: %w", err)
	}
	defer sched.Stop()

	authHandler := handler.NewAuthHandler(sessionManager, userService, eventService)
	categoryHandler := handler.NewCategoryHandler(galleryService, photoService, eventService)
	photoHandler := handler.NewPhotoHandler(photoService, eventService)
	userHandler := handler.NewUserHandler(userService, eventService)
	galleryHandler := handler.NewGalleryHandler(galleryService)
	eventHandler := handler.NewEventHandler(eventService)
	healthHandler := handler.NewHealthHandler(db)

	r := chi.NewRouter()

	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(chimw.Logger)
	r.Use(chimw.Recoverer)
	r.Use(chimw.Compress(5))
	r.Use(chimw.GetHead)
	r.Use(chimw.Timeout(30 * time.Second))
	r.Use(sessionManager.LoadAndSave)
	r.Use(middleware.CSRF([]byte(cfg.SessionSecret), cfg.IsDevelopment()))

	// Health check (reports extra detail to authenticated admins)
	r.Group(func(r chi.Router) {
		r.Use(middleware.LoadUser(sessionManager, db))
		r.Get("/health", healthHandler.Health)
	})

	// Auth routes, rate limited per IP against credential stuffing
	r.Route("/api/auth", func(r chi.Router) {
		r.Use(middleware.RateLimit(10, 20))
		r.Post("/login", authHandler.Login)
		r.Post("/logout", authHandler.Logout)
		r.Post("/register", authHandler.Register)
		r.With(middleware.LoadUser(sessionManager, db)).Get("/me", authHandler.Me)
	})

	// Public read-only gallery routes
	r.Group(func(r chi.Router) {
		r.Get("/api/gallery", galleryHandler.Get)
		r.Get("/api/categories", categoryHandler.List)
		r.Get("/api/categories/{id}", categoryHandler.Get)
		r.Get("/api/categories/slug/{slug}", categoryHandler.GetBySlug)
		r.Get("/api/photos", photoHandler.List)
		r.Get("/api/photos/{id}", photoHandler.Get)
		r.Get("/api/photos/category/{categoryId}", photoHandler.ListByCategory)
		r.Get("/api/photos/category/{categoryId}/recent", photoHandler.ListRecentByCategory)
	})

	// Admin routes
	r.Group(func(r chi.Router) {
		r.Use(middleware.RequireAuth(sessionManager))
		r.Use(middleware.LoadUser(sessionManager, db))
		r.Use(middleware.RequireAdmin())

		r.Post("/api/categories", categoryHandler.Create)
		r.Put("/api/categories/{id}", categoryHandler.Update)
		r.Delete("/api/categories/{id}", categoryHandler.Delete)

		r.Post("/api/photos", photoHandler.Create)
		r.Put("/api/photos/{id}", photoHandler.Update)
		r.Delete("/api/photos/{id}", photoHandler.Delete)

		r.Get("/api/users", userHandler.List)
		r.Post("/api/users", userHandler.Create)
		r.Put("/api/users/{id}", userHandler.Update)
		r.Delete("/api/users/{id}", userHandler.Delete)

		r.Get("/api/events", eventHandler.List)
	})

	// Serve uploaded images, cached for 1 week
	uploadsHandler := middleware.StaticCache(604800)(
		http.StripPrefix("/uploads/", http.FileServer(http.Dir(cfg.UploadsDir))))
	r.Handle("/uploads/*", uploadsHandler)

	srv := &http.Server{
		Addr:              cfg.ServerAddr(),
		Handler:           r,
		ReadTimeout:       15 * time.Second,
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      60 * time.Second, // Allow for large uploads on slow connections
		IdleTimeout:       60 * time.Second,
		MaxHeaderBytes:    1 << 20,
	}

	go func() {
		slog.Info("starting server", "addr", cfg.ServerAddr(), "env", cfg.Env)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("server error", "error", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	slog.Info("shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}

	slog.Info("server stopped")
	return nil
}

// Package scheduler runs the periodic maintenance jobs: sweeping orphaned
// upload directories, reloading the GeoIP database, and pruning old events.
package scheduler

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/AntonioFerrao-hub/gallery-sync-palazzo-23/internal/geoip"
	"github.com/AntonioFerrao-hub/gallery-sync-palazzo-23/internal/imaging"
	"github.com/AntonioFerrao-hub/gallery-sync-palazzo-23/internal/model"
	"github.com/AntonioFerrao-hub/gallery-sync-palazzo-23/internal/service"
	"github.com/AntonioFerrao-hub/gallery-sync-palazzo-23/internal/store"
)

// eventRetention is how long audit events are kept before pruning.
const eventRetention = 90 * 24 * time.Hour

// Scheduler handles periodic maintenance tasks.
type Scheduler struct {
	queries   *store.Queries
	events    *service.EventService
	processor *imaging.Processor
	geo       *geoip.Lookup
	uploadDir string
	cron      *cron.Cron
	logger    *slog.Logger
}

// New creates a new scheduler instance. The geo lookup may be nil.
func New(queries *store.Queries, events *service.EventService, processor *imaging.Processor, geo *geoip.Lookup, uploadDir string, logger *slog.Logger) *Scheduler {
	return &Scheduler{
		queries:   queries,
		events:    events,
		processor: processor,
		geo:       geo,
		uploadDir: uploadDir,
		cron:      cron.New(),
		logger:    logger,
	}
}

// Start registers the maintenance jobs and begins the cron loop.
func (s *Scheduler) Start() error {
	// Sweep orphaned uploads nightly
	if _, err := s.cron.AddFunc("30 3 * * *", func() {
		if _, err := s.SweepOrphanedUploads(context.Background()); err != nil {
			s.logger.Error("orphaned upload sweep failed", "error", err)
		}
	}); err != nil {
		return err
	}

	// Prune old events nightly
	if _, err := s.cron.AddFunc("0 4 * * *", func() {
		if err := s.pruneEvents(context.Background()); err != nil {
			s.logger.Error("event pruning failed", "error", err)
		}
	}); err != nil {
		return err
	}

	// Pick up a replaced GeoIP database file hourly
	if s.geo != nil {
		if _, err := s.cron.AddFunc("0 * * * *", func() {
			if err := s.geo.Reload(); err != nil {
				s.logger.Warn("geoip reload failed", "error", err)
			}
		}); err != nil {
			return err
		}
	}

	s.cron.Start()
	s.logger.Info("scheduler started", "jobs", len(s.cron.Entries()))
	return nil
}

// Stop gracefully stops the scheduler, waiting for running jobs.
func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
	s.logger.Info("scheduler stopped")
}

// SweepOrphanedUploads removes upload directories no photo row references.
// Cascade category deletes and failed insert cleanups can leave files behind;
// this reconciles the disk against the database. Returns the number of
// removed upload IDs.
func (s *Scheduler) SweepOrphanedUploads(ctx context.Context) (int, error) {
	urls, err := s.queries.ListPhotoImageURLs(ctx)
	if err != nil {
		return 0, err
	}

	referenced := make(map[string]bool, len(urls))
	for _, url := range urls {
		if id := service.UploadID(url); id != "" {
			referenced[id] = true
		}
	}

	originalsDir := filepath.Join(s.uploadDir, "originals")
	entries, err := os.ReadDir(originalsDir)
	if err != nil {
		if os.IsNotExist(err) {
			return 0, nil
		}
		return 0, err
	}

	removed := 0
	for _, entry := range entries {
		if !entry.IsDir() || referenced[entry.Name()] {
			continue
		}

		if err := s.processor.DeleteFiles(entry.Name()); err != nil {
			s.logger.Warn("failed to remove orphaned upload", "upload_id", entry.Name(), "error", err)
			continue
		}
		removed++
	}

	if removed > 0 {
		s.logger.Info("removed orphaned uploads", "count", removed)
		s.events.LogEvent(ctx, model.EventLevelInfo, model.EventCategorySystem, "Removed orphaned upload files", nil, "", "")
	}

	return removed, nil
}

// pruneEvents deletes audit events older than the retention window.
func (s *Scheduler) pruneEvents(ctx context.Context) error {
	deleted, err := s.events.DeleteOldEvents(ctx, eventRetention)
	if err != nil {
		return err
	}
	if deleted > 0 {
		s.logger.Info("pruned old events", "count", deleted)
	}
	return nil
}

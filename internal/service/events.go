package service

import (
	"context"
	"database/sql"
	"log/slog"
	"time"

	"github.com/mileusna/useragent"

	"github.com/AntonioFerrao-hub/gallery-sync-palazzo-23/internal/geoip"
	"github.com/AntonioFerrao-hub/gallery-sync-palazzo-23/internal/model"
	"github.com/AntonioFerrao-hub/gallery-sync-palazzo-23/internal/store"
)

// EventService records audit events, enriching them with a condensed
// user agent description and a GeoIP country code.
type EventService struct {
	queries *store.Queries
	geo     *geoip.Lookup
}

// NewEventService creates a new EventService. The geo lookup may be nil.
func NewEventService(db *sql.DB, geo *geoip.Lookup) *EventService {
	return &EventService{
		queries: store.New(db),
		geo:     geo,
	}
}

// LogEvent creates a new event log entry. Failures are logged but not
// propagated; audit logging must never break the calling operation.
func (s *EventService) LogEvent(ctx context.Context, level, category, message string, userID *int64, ipAddress, rawUserAgent string) {
	var nullUserID sql.NullInt64
	if userID != nil {
		nullUserID = sql.NullInt64{Int64: *userID, Valid: true}
	}

	var ip sql.NullString
	if ipAddress != "" {
		ip = sql.NullString{String: ipAddress, Valid: true}
	}

	var country sql.NullString
	if s.geo != nil && ipAddress != "" {
		if code := s.geo.LookupCountry(ipAddress); code != "" {
			country = sql.NullString{String: code, Valid: true}
		}
	}

	err := s.queries.CreateEvent(ctx, store.CreateEventParams{
		Level:     level,
		Category:  category,
		Message:   message,
		UserID:    nullUserID,
		IPAddress: ip,
		UserAgent: condenseUserAgent(rawUserAgent),
		Country:   country,
		CreatedAt: time.Now(),
	})
	if err != nil {
		slog.Error("failed to record event", "error", err, "message", message)
	}
}

// LogAuth logs an authentication-related event.
func (s *EventService) LogAuth(ctx context.Context, level, message string, userID *int64, ipAddress, userAgent string) {
	s.LogEvent(ctx, level, model.EventCategoryAuth, message, userID, ipAddress, userAgent)
}

// LogCategory logs a category-related event.
func (s *EventService) LogCategory(ctx context.Context, level, message string, userID *int64, ipAddress, userAgent string) {
	s.LogEvent(ctx, level, model.EventCategoryCategory, message, userID, ipAddress, userAgent)
}

// LogPhoto logs a photo-related event.
func (s *EventService) LogPhoto(ctx context.Context, level, message string, userID *int64, ipAddress, userAgent string) {
	s.LogEvent(ctx, level, model.EventCategoryPhoto, message, userID, ipAddress, userAgent)
}

// LogUser logs a user-management event.
func (s *EventService) LogUser(ctx context.Context, level, message string, userID *int64, ipAddress, userAgent string) {
	s.LogEvent(ctx, level, model.EventCategoryUser, message, userID, ipAddress, userAgent)
}

// List returns the most recent events.
func (s *EventService) List(ctx context.Context, limit int64) ([]model.Event, error) {
	if limit <= 0 || limit > 500 {
		limit = 100
	}
	return s.queries.ListEvents(ctx, limit)
}

// DeleteOldEvents removes events older than the specified duration.
func (s *EventService) DeleteOldEvents(ctx context.Context, olderThan time.Duration) (int64, error) {
	cutoff := time.Now().Add(-olderThan)
	return s.queries.DeleteEventsBefore(ctx, cutoff)
}

// condenseUserAgent reduces a raw User-Agent header to "Browser version (OS)".
// Raw headers are long and mostly noise; the condensed form is what the
// event log displays.
func condenseUserAgent(raw string) sql.NullString {
	if raw == "" {
		return sql.NullString{}
	}

	ua := useragent.Parse(raw)
	if ua.Name == "" {
		return sql.NullString{String: raw, Valid: true}
	}

	condensed := ua.Name
	if ua.Version != "" {
		condensed += " " + ua.Version
	}
	if ua.OS != "" {
		condensed += " (" + ua.OS + ")"
	}
	return sql.NullString{String: condensed, Valid: true}
}

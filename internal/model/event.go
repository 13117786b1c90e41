package model

import (
	"database/sql"
	"time"
)

// Event represents an audit/system log entry.
type Event struct {
	ID        int64          `json:"id"`
	Level     string         `json:"level"`
	Category  string         `json:"category"`
	Message   string         `json:"message"`
	UserID    sql.NullInt64  `json:"user_id,omitempty"`
	IPAddress sql.NullString `json:"ip_address,omitempty"`
	UserAgent sql.NullString `json:"user_agent,omitempty"`
	Country   sql.NullString `json:"country,omitempty"`
	CreatedAt time.Time      `json:"created_at"`
}

// Event log levels.
const (
	EventLevelInfo    = "info"
	EventLevelWarning = "warning"
	EventLevelError   = "error"
)

// Event log categories.
const (
	EventCategoryAuth     = "auth"
	EventCategoryCategory = "category"
	EventCategoryPhoto    = "photo"
	EventCategoryUser     = "user"
	EventCategorySystem   = "system"
)

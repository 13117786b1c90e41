package store

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"github.com/AntonioFerrao-hub/gallery-sync-palazzo-23/internal/auth"
	"github.com/AntonioFerrao-hub/gallery-sync-palazzo-23/internal/model"
)

// DefaultAdminUsername is the username of the seeded administrator.
const DefaultAdminUsername = "admin"

// Seed creates the initial admin user if no users exist yet.
func Seed(ctx context.Context, db *sql.DB, adminPassword string) error {
	queries := New(db)

	count, err := queries.CountUsers(ctx)
	if err != nil {
		return fmt.Errorf("counting users: %w", err)
	}
	if count > 0 {
		slog.Info("users already exist, skipping seed")
		return nil
	}

	passwordHash, err := auth.HashPassword(adminPassword)
	if err != nil {
		return fmt.Errorf("hashing password: %w", err)
	}

	now := time.Now()
	user, err := queries.CreateUser(ctx, CreateUserParams{
		Username:     DefaultAdminUsername,
		PasswordHash: passwordHash,
		Role:         model.RoleAdmin,
		CreatedAt:    now,
		UpdatedAt:    now,
	})
	if err != nil {
		return fmt.Errorf("creating admin user: %w", err)
	}

	slog.Info("created default admin user",
		"id", user.ID,
		"username", user.Username,
	)

	return nil
}

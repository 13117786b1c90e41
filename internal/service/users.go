package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/AntonioFerrao-hub/gallery-sync-palazzo-23/internal/auth"
	"github.com/AntonioFerrao-hub/gallery-sync-palazzo-23/internal/model"
	"github.com/AntonioFerrao-hub/gallery-sync-palazzo-23/internal/store"
)

// ErrInvalidCredentials is returned when authentication fails. Wrong
// username and wrong password are deliberately indistinguishable.
var ErrInvalidCredentials = errors.New("invalid credentials")

const (
	minUsernameLength = 3
	minPasswordLength = 6
)

// UserService manages user accounts and authentication.
type UserService struct {
	queries *store.Queries
}

// NewUserService creates a new UserService.
func NewUserService(db *sql.DB) *UserService {
	return &UserService{queries: store.New(db)}
}

// UserInput holds the fields for creating or updating a user account.
// Empty fields are left unchanged on update.
type UserInput struct {
	Username string
	Name     string
	Email    string
	Password string
	Role     string
}

// Authenticate verifies a login/password pair and returns the user. The
// login may be a username or an email address. On success the last-login
// timestamp is updated and the password hash is transparently upgraded if
// it was created with outdated parameters.
func (s *UserService) Authenticate(ctx context.Context, login, password string) (model.User, error) {
	login = strings.TrimSpace(login)

	user, err := s.queries.GetUserByUsername(ctx, login)
	if errors.Is(err, sql.ErrNoRows) && strings.Contains(login, "@") {
		user, err = s.queries.GetUserByEmail(ctx, login)
	}
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.User{}, ErrInvalidCredentials
		}
		return model.User{}, fmt.Errorf("loading user: %w", err)
	}

	ok, err := auth.CheckPassword(password, user.PasswordHash)
	if err != nil || !ok {
		return model.User{}, ErrInvalidCredentials
	}

	if auth.NeedsRehash(user.PasswordHash) {
		if newHash, err := auth.HashPassword(password); err == nil {
			_ = s.queries.UpdateUserPassword(ctx, store.UpdateUserPasswordParams{
				ID:           user.ID,
				PasswordHash: newHash,
				UpdatedAt:    time.Now(),
			})
		}
	}

	if err := s.queries.UpdateUserLastLogin(ctx, user.ID, time.Now()); err != nil {
		slog.Warn("failed to record last login", "user_id", user.ID, "error", err)
	}

	return user, nil
}

// CreateUser validates and creates a user account.
func (s *UserService) CreateUser(ctx context.Context, input UserInput) (model.User, error) {
	username := strings.TrimSpace(input.Username)
	if len(username) < minUsernameLength {
		return model.User{}, NewValidationError("username",
			fmt.Sprintf("username must be at least %d characters", minUsernameLength))
	}
	if len(input.Password) < minPasswordLength {
		return model.User{}, NewValidationError("password",
			fmt.Sprintf("password must be at least %d characters", minPasswordLength))
	}

	email := strings.TrimSpace(input.Email)
	if email != "" && !strings.Contains(email, "@") {
		return model.User{}, NewValidationError("email", "email address is invalid")
	}

	role := input.Role
	if role == "" {
		role = model.RoleUser
	}
	if !model.IsValidRole(role) {
		return model.User{}, NewValidationError("role", "role must be admin or user")
	}

	if _, err := s.queries.GetUserByUsername(ctx, username); err == nil {
		return model.User{}, &ConflictError{Message: "Username already taken"}
	} else if !errors.Is(err, sql.ErrNoRows) {
		return model.User{}, fmt.Errorf("checking username: %w", err)
	}
	if email != "" {
		if _, err := s.queries.GetUserByEmail(ctx, email); err == nil {
			return model.User{}, &ConflictError{Message: "Email already registered"}
		} else if !errors.Is(err, sql.ErrNoRows) {
			return model.User{}, fmt.Errorf("checking email: %w", err)
		}
	}

	passwordHash, err := auth.HashPassword(input.Password)
	if err != nil {
		return model.User{}, fmt.Errorf("hashing password: %w", err)
	}

	now := time.Now()
	user, err := s.queries.CreateUser(ctx, store.CreateUserParams{
		Username:     username,
		Name:         strings.TrimSpace(input.Name),
		Email:        email,
		PasswordHash: passwordHash,
		Role:         role,
		CreatedAt:    now,
		UpdatedAt:    now,
	})
	if err != nil {
		return model.User{}, fmt.Errorf("creating user: %w", err)
	}

	return user, nil
}

// UpdateUser updates a user's profile fields and role. The seeded admin
// keeps the admin role forever, and the last remaining admin cannot be
// demoted. The password is never changed here; see ChangePassword.
func (s *UserService) UpdateUser(ctx context.Context, id int64, input UserInput) (model.User, error) {
	existing, err := s.queries.GetUserByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.User{}, &NotFoundError{Entity: "user", ID: id}
		}
		return model.User{}, fmt.Errorf("loading user: %w", err)
	}

	username := strings.TrimSpace(input.Username)
	if username == "" {
		username = existing.Username
	} else if len(username) < minUsernameLength {
		return model.User{}, NewValidationError("username",
			fmt.Sprintf("username must be at least %d characters", minUsernameLength))
	}

	name := strings.TrimSpace(input.Name)
	if name == "" {
		name = existing.Name
	}

	email := strings.TrimSpace(input.Email)
	if email == "" {
		email = existing.Email
	} else if !strings.Contains(email, "@") {
		return model.User{}, NewValidationError("email", "email address is invalid")
	}

	role := input.Role
	if role == "" {
		role = existing.Role
	}
	if !model.IsValidRole(role) {
		return model.User{}, NewValidationError("role", "role must be admin or user")
	}

	if id == model.SeedAdminID && role != model.RoleAdmin {
		return model.User{}, &ConflictError{Message: "The primary admin account cannot be demoted"}
	}

	if existing.Role == model.RoleAdmin && role != model.RoleAdmin {
		admins, err := s.queries.CountAdmins(ctx)
		if err != nil {
			return model.User{}, fmt.Errorf("counting admins: %w", err)
		}
		if admins <= 1 {
			return model.User{}, &ConflictError{Message: "Cannot demote the last admin"}
		}
	}

	if username != existing.Username {
		if _, err := s.queries.GetUserByUsername(ctx, username); err == nil {
			return model.User{}, &ConflictError{Message: "Username already taken"}
		} else if !errors.Is(err, sql.ErrNoRows) {
			return model.User{}, fmt.Errorf("checking username: %w", err)
		}
	}
	if email != existing.Email && email != "" {
		if _, err := s.queries.GetUserByEmail(ctx, email); err == nil {
			return model.User{}, &ConflictError{Message: "Email already registered"}
		} else if !errors.Is(err, sql.ErrNoRows) {
			return model.User{}, fmt.Errorf("checking email: %w", err)
		}
	}

	user, err := s.queries.UpdateUser(ctx, store.UpdateUserParams{
		ID:        id,
		Username:  username,
		Name:      name,
		Email:     email,
		Role:      role,
		UpdatedAt: time.Now(),
	})
	if err != nil {
		return model.User{}, fmt.Errorf("updating user: %w", err)
	}

	return user, nil
}

// ChangePassword replaces a user's password.
func (s *UserService) ChangePassword(ctx context.Context, id int64, password string) error {
	if len(password) < minPasswordLength {
		return NewValidationError("password",
			fmt.Sprintf("password must be at least %d characters", minPasswordLength))
	}

	if _, err := s.queries.GetUserByID(ctx, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return &NotFoundError{Entity: "user", ID: id}
		}
		return fmt.Errorf("loading user: %w", err)
	}

	passwordHash, err := auth.HashPassword(password)
	if err != nil {
		return fmt.Errorf("hashing password: %w", err)
	}

	return s.queries.UpdateUserPassword(ctx, store.UpdateUserPasswordParams{
		ID:           id,
		PasswordHash: passwordHash,
		UpdatedAt:    time.Now(),
	})
}

// DeleteUser removes a user account. The seeded admin cannot be deleted.
func (s *UserService) DeleteUser(ctx context.Context, id int64) error {
	if id == model.SeedAdminID {
		return &ConflictError{Message: "The primary admin account cannot be deleted"}
	}

	if _, err := s.queries.GetUserByID(ctx, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return &NotFoundError{Entity: "user", ID: id}
		}
		return fmt.Errorf("loading user: %w", err)
	}

	return s.queries.DeleteUser(ctx, id)
}

// GetUser fetches a user by id.
func (s *UserService) GetUser(ctx context.Context, id int64) (model.User, error) {
	user, err := s.queries.GetUserByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.User{}, &NotFoundError{Entity: "user", ID: id}
		}
		return model.User{}, fmt.Errorf("loading user: %w", err)
	}
	return user, nil
}

// ListUsers returns all users, newest first.
func (s *UserService) ListUsers(ctx context.Context) ([]model.User, error) {
	users, err := s.queries.ListUsers(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing users: %w", err)
	}
	if users == nil {
		users = []model.User{}
	}
	return users, nil
}

// Package model defines domain models and types used throughout the
// application including User, Category, Photo and Event structures.
package model

import (
	"database/sql"
	"time"
)

// User roles.
const (
	RoleAdmin = "admin"
	RoleUser  = "user"
)

// User represents an application user.
type User struct {
	ID           int64        `json:"id"`
	Username     string       `json:"username"`
	Name         string       `json:"name,omitempty"`
	Email        string       `json:"email,omitempty"`
	PasswordHash string       `json:"-"` // Never expose in JSON
	Role         string       `json:"role"`
	CreatedAt    time.Time    `json:"created_at"`
	UpdatedAt    time.Time    `json:"updated_at"`
	LastLoginAt  sql.NullTime `json:"last_login_at,omitempty"`
}

// IsAdmin returns true if the user has admin role.
func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

// SeedAdminID is the id of the first administrative user, created
// automatically on an empty database. It can never be deleted or demoted
// through the API.
const SeedAdminID int64 = 1

// IsValidRole reports whether role is one of the known user roles.
func IsValidRole(role string) bool {
	return role == RoleAdmin || role == RoleUser
}

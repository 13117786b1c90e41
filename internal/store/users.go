package store

import (
	"context"
	"time"

	"github.com/AntonioFerrao-hub/gallery-sync-palazzo-23/internal/model"
)

const createUser = `
INSERT INTO users (username, name, email, password_hash, role, created_at, updated_at)
VALUES (?, ?, ?, ?, ?, ?, ?)
RETURNING id, username, name, email, password_hash, role, created_at, updated_at, last_login_at
`

// CreateUserParams holds the fields for creating a user.
type CreateUserParams struct {
	Username     string
	Name         string
	Email        string
	PasswordHash string
	Role         string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// CreateUser inserts a new user and returns the created row.
func (q *Queries) CreateUser(ctx context.Context, arg CreateUserParams) (model.User, error) {
	row := q.db.QueryRowContext(ctx, createUser,
		arg.Username, arg.Name, arg.Email, arg.PasswordHash, arg.Role,
		arg.CreatedAt, arg.UpdatedAt)
	return scanUser(row)
}

const getUserByID = `
SELECT id, username, name, email, password_hash, role, created_at, updated_at, last_login_at
FROM users WHERE id = ?
`

// GetUserByID fetches a user by id. Returns sql.ErrNoRows if not found.
func (q *Queries) GetUserByID(ctx context.Context, id int64) (model.User, error) {
	return scanUser(q.db.QueryRowContext(ctx, getUserByID, id))
}

const getUserByUsername = `
SELECT id, username, name, email, password_hash, role, created_at, updated_at, last_login_at
FROM users WHERE username = ?
`

// GetUserByUsername fetches a user by username. Returns sql.ErrNoRows if not found.
func (q *Queries) GetUserByUsername(ctx context.Context, username string) (model.User, error) {
	return scanUser(q.db.QueryRowContext(ctx, getUserByUsername, username))
}

const getUserByEmail = `
SELECT id, username, name, email, password_hash, role, created_at, updated_at, last_login_at
FROM users WHERE email = ? AND email != ''
`

// GetUserByEmail fetches a user by email. Returns sql.ErrNoRows if not found.
func (q *Queries) GetUserByEmail(ctx context.Context, email string) (model.User, error) {
	return scanUser(q.db.QueryRowContext(ctx, getUserByEmail, email))
}

const listUsers = `
SELECT id, username, name, email, password_hash, role, created_at, updated_at, last_login_at
FROM users ORDER BY created_at DESC
`

// ListUsers returns all users, newest first.
func (q *Queries) ListUsers(ctx context.Context) ([]model.User, error) {
	rows, err := q.db.QueryContext(ctx, listUsers)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var users []model.User
	for rows.Next() {
		var u model.User
		if err := rows.Scan(&u.ID, &u.Username, &u.Name, &u.Email, &u.PasswordHash,
			&u.Role, &u.CreatedAt, &u.UpdatedAt, &u.LastLoginAt); err != nil {
			return nil, err
		}
		users = append(users, u)
	}
	return users, rows.Err()
}

const updateUser = `
UPDATE users SET username = ?, name = ?, email = ?, role = ?, updated_at = ?
WHERE id = ?
RETURNING id, username, name, email, password_hash, role, created_at, updated_at, last_login_at
`

// UpdateUserParams holds the fields for updating a user.
type UpdateUserParams struct {
	ID        int64
	Username  string
	Name      string
	Email     string
	Role      string
	UpdatedAt time.Time
}

// UpdateUser updates a user's profile fields and role.
func (q *Queries) UpdateUser(ctx context.Context, arg UpdateUserParams) (model.User, error) {
	return scanUser(q.db.QueryRowContext(ctx, updateUser,
		arg.Username, arg.Name, arg.Email, arg.Role, arg.UpdatedAt, arg.ID))
}

const updateUserPassword = `
UPDATE users SET password_hash = ?, updated_at = ? WHERE id = ?
`

// UpdateUserPasswordParams holds the fields for a password change.
type UpdateUserPasswordParams struct {
	ID           int64
	PasswordHash string
	UpdatedAt    time.Time
}

// UpdateUserPassword replaces a user's password hash.
func (q *Queries) UpdateUserPassword(ctx context.Context, arg UpdateUserPasswordParams) error {
	_, err := q.db.ExecContext(ctx, updateUserPassword, arg.PasswordHash, arg.UpdatedAt, arg.ID)
	return err
}

const updateUserLastLogin = `
UPDATE users SET last_login_at = ? WHERE id = ?
`

// UpdateUserLastLogin records a successful login timestamp.
func (q *Queries) UpdateUserLastLogin(ctx context.Context, id int64, at time.Time) error {
	_, err := q.db.ExecContext(ctx, updateUserLastLogin, at, id)
	return err
}

const deleteUser = `DELETE FROM users WHERE id = ?`

// DeleteUser removes a user by id.
func (q *Queries) DeleteUser(ctx context.Context, id int64) error {
	_, err := q.db.ExecContext(ctx, deleteUser, id)
	return err
}

const countUsers = `SELECT COUNT(*) FROM users`

// CountUsers returns the total number of users.
func (q *Queries) CountUsers(ctx context.Context) (int64, error) {
	var n int64
	err := q.db.QueryRowContext(ctx, countUsers).Scan(&n)
	return n, err
}

const countAdmins = `SELECT COUNT(*) FROM users WHERE role = 'admin'`

// CountAdmins returns the number of users with the admin role.
func (q *Queries) CountAdmins(ctx context.Context) (int64, error) {
	var n int64
	err := q.db.QueryRowContext(ctx, countAdmins).Scan(&n)
	return n, err
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanUser(row rowScanner) (model.User, error) {
	var u model.User
	err := row.Scan(&u.ID, &u.Username, &u.Name, &u.Email, &u.PasswordHash,
		&u.Role, &u.CreatedAt, &u.UpdatedAt, &u.LastLoginAt)
	return u, err
}

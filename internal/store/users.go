// ABOUTME: User persistence methods for SQLiteStore
// ABOUTME: Enforces username uniqueness and distinguishes not-found from failure

package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// CreateUser creates a new user. Returns ErrUsernameExists if the username
// is already taken.
func (s *SQLiteStore) CreateUser(ctx context.Context, user *User) error {
	query := `
		INSERT INTO users (id, username, password_hash, created_at)
		VALUES (?, ?, ?, ?)
	`

	_, err := s.db.ExecContext(ctx, query,
		user.ID,
		user.Username,
		user.PasswordHash,
		user.CreatedAt.UTC().Format(time.RFC3339),
	)
	if err != nil {
		if isUniqueConstraintError(err) {
			return ErrUsernameExists
		}
		return fmt.Errorf("inserting user: %w", err)
	}

	s.logger.Info("created user", "id", user.ID, "username", user.Username)
	return nil
}

// GetUserByUsername retrieves a user by username.
// Returns ErrUserNotFound if no user exists.
func (s *SQLiteStore) GetUserByUsername(ctx context.Context, username string) (*User, error) {
	query := `
		SELECT id, username, password_hash, created_at
		FROM users
		WHERE username = ?
	`

	var user User
	var createdAtStr string

	err := s.db.QueryRowContext(ctx, query, username).Scan(
		&user.ID,
		&user.Username,
		&user.PasswordHash,
		&createdAtStr,
	)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("querying user by username: %w", err)
	}

	user.CreatedAt, err = time.Parse(time.RFC3339, createdAtStr)
	if err != nil {
		return nil, fmt.Errorf("parsing created_at: %w", err)
	}

	return &user, nil
}

// UpdateUserPassword replaces a user's password hash.
// Returns ErrUserNotFound if the user doesn't exist.
func (s *SQLiteStore) UpdateUserPassword(ctx context.Context, username, passwordHash string) error {
	query := `UPDATE users SET password_hash = ? WHERE username = ?`

	result, err := s.db.ExecContext(ctx, query, passwordHash, username)
	if err != nil {
		return fmt.Errorf("updating user password: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("getting rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return ErrUserNotFound
	}

	s.logger.Info("updated user password", "username", username)
	return nil
}

// CountUsers returns the number of registered users.
func (s *SQLiteStore) CountUsers(ctx context.Context) (int, error) {
	var count int
	err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM users").Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("counting users: %w", err)
	}
	return count, nil
}

// ABOUTME: Session persistence methods for SQLiteStore
// ABOUTME: Multi-row session model with expiry checks done in SQL against UTC now

package store

import (
	"context"
	"fmt"
	"time"
)

// CreateSession persists a new session row. A user may hold any number of
// concurrent sessions, so no uniqueness is enforced on owner.
func (s *SQLiteStore) CreateSession(ctx context.Context, session *Session) error {
	query := `
		INSERT INTO sessions (id, owner, value, created_at, expires_at)
		VALUES (?, ?, ?, ?, ?)
	`

	_, err := s.db.ExecContext(ctx, query,
		session.ID,
		session.Owner,
		session.Value,
		session.CreatedAt.UTC().Format(time.RFC3339),
		session.ExpiresAt.UTC().Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("inserting session: %w", err)
	}

	s.logger.Debug("created session", "id", session.ID, "owner", session.Owner)
	return nil
}

// SessionExists reports whether a non-expired session row matches the given
// owner and credential value.
func (s *SQLiteStore) SessionExists(ctx context.Context, owner, value string) (bool, error) {
	query := `
		SELECT COUNT(*)
		FROM sessions
		WHERE owner = ? AND value = ? AND expires_at > ?
	`

	var count int
	now := time.Now().UTC().Format(time.RFC3339)
	if err := s.db.QueryRowContext(ctx, query, owner, value, now).Scan(&count); err != nil {
		return false, fmt.Errorf("querying session: %w", err)
	}

	return count > 0, nil
}

// DeleteExpiredSessions removes all sessions past their expiration and
// returns the number of rows purged. Safe to call on any cadence.
func (s *SQLiteStore) DeleteExpiredSessions(ctx context.Context) (int64, error) {
	now := time.Now().UTC().Format(time.RFC3339)
	result, err := s.db.ExecContext(ctx, "DELETE FROM sessions WHERE expires_at <= ?", now)
	if err != nil {
		return 0, fmt.Errorf("deleting expired sessions: %w", err)
	}

	rowsAffected, _ := result.RowsAffected()
	if rowsAffected > 0 {
		s.logger.Debug("deleted expired sessions", "count", rowsAffected)
	}
	return rowsAffected, nil
}

// ABOUTME: API token persistence methods for SQLiteStore
// ABOUTME: Named long-lived credentials, unique per owner, with last-usage tracking

package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

// CreateToken persists a new API token. Returns ErrDuplicateToken if the
// owner already has a token with the same name.
func (s *SQLiteStore) CreateToken(ctx context.Context, token *Token) error {
	query := `
		INSERT INTO tokens (id, owner, name, value, created_at, last_used_at)
		VALUES (?, ?, ?, ?, ?, NULL)
	`

	_, err := s.db.ExecContext(ctx, query,
		token.ID,
		token.Owner,
		token.Name,
		token.Value,
		token.CreatedAt.UTC().Format(time.RFC3339),
	)
	if err != nil {
		if isUniqueConstraintError(err) {
			return ErrDuplicateToken
		}
		return fmt.Errorf("inserting token: %w", err)
	}

	s.logger.Info("created token", "id", token.ID, "owner", token.Owner, "name", token.Name)
	return nil
}

// ListTokens returns all tokens for an owner, oldest first.
func (s *SQLiteStore) ListTokens(ctx context.Context, owner string) ([]*Token, error) {
	query := `
		SELECT id, owner, name, value, created_at, last_used_at
		FROM tokens
		WHERE owner = ?
		ORDER BY created_at ASC
	`

	rows, err := s.db.QueryContext(ctx, query, owner)
	if err != nil {
		return nil, fmt.Errorf("querying tokens: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var tokens []*Token
	for rows.Next() {
		var token Token
		var createdAtStr string
		var lastUsedAtStr sql.NullString

		if err := rows.Scan(&token.ID, &token.Owner, &token.Name, &token.Value, &createdAtStr, &lastUsedAtStr); err != nil {
			return nil, fmt.Errorf("scanning token: %w", err)
		}

		token.CreatedAt, err = time.Parse(time.RFC3339, createdAtStr)
		if err != nil {
			return nil, fmt.Errorf("parsing created_at: %w", err)
		}

		if lastUsedAtStr.Valid {
			lastUsed, err := time.Parse(time.RFC3339, lastUsedAtStr.String)
			if err != nil {
				return nil, fmt.Errorf("parsing last_used_at: %w", err)
			}
			token.LastUsedAt = &lastUsed
		}

		tokens = append(tokens, &token)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating tokens: %w", err)
	}

	return tokens, nil
}

// TokenExists reports whether a token row matches the given owner and
// credential value. Tokens carry no expiry.
func (s *SQLiteStore) TokenExists(ctx context.Context, owner, value string) (bool, error) {
	var count int
	err := s.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM tokens WHERE owner = ? AND value = ?",
		owner, value,
	).Scan(&count)
	if err != nil {
		return false, fmt.Errorf("querying token: %w", err)
	}
	return count > 0, nil
}

// TouchToken records the current time as the token's last usage.
func (s *SQLiteStore) TouchToken(ctx context.Context, owner, value string) error {
	now := time.Now().UTC().Format(time.RFC3339)
	_, err := s.db.ExecContext(ctx,
		"UPDATE tokens SET last_used_at = ? WHERE owner = ? AND value = ?",
		now, owner, value,
	)
	if err != nil {
		return fmt.Errorf("updating token last usage: %w", err)
	}
	return nil
}

// DeleteToken removes a token by name.
// Returns ErrTokenNotFound if the owner has no token with that name.
func (s *SQLiteStore) DeleteToken(ctx context.Context, owner, name string) error {
	result, err := s.db.ExecContext(ctx, "DELETE FROM tokens WHERE owner = ? AND name = ?", owner, name)
	if err != nil {
		return fmt.Errorf("deleting token: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("getting rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return ErrTokenNotFound
	}

	s.logger.Info("deleted token", "owner", owner, "name", name)
	return nil
}

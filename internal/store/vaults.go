// ABOUTME: Vault blob persistence methods for SQLiteStore
// ABOUTME: Enforces (owner, name) uniqueness; update and delete never create

package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// CreateVault stores a new vault blob. Returns ErrDuplicateVault if the
// (owner, name) pair already exists; the original data is left untouched.
func (s *SQLiteStore) CreateVault(ctx context.Context, vault *Vault) error {
	query := `
		INSERT INTO vaults (id, owner, name, grp, data, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`

	var grp any
	if vault.Group != "" {
		grp = vault.Group
	}

	_, err := s.db.ExecContext(ctx, query,
		vault.ID,
		vault.Owner,
		vault.Name,
		grp,
		vault.Data,
		vault.CreatedAt.UTC().Format(time.RFC3339),
		vault.UpdatedAt.UTC().Format(time.RFC3339),
	)
	if err != nil {
		if isUniqueConstraintError(err) {
			return ErrDuplicateVault
		}
		return fmt.Errorf("inserting vault: %w", err)
	}

	s.logger.Debug("created vault", "owner", vault.Owner, "name", vault.Name, "size", len(vault.Data))
	return nil
}

// GetVault retrieves a vault blob by owner and name.
// Returns ErrVaultNotFound if no row matches.
func (s *SQLiteStore) GetVault(ctx context.Context, owner, name string) (*Vault, error) {
	query := `
		SELECT id, owner, name, grp, data, created_at, updated_at
		FROM vaults
		WHERE owner = ? AND name = ?
	`

	var vault Vault
	var grp sql.NullString
	var createdAtStr, updatedAtStr string

	err := s.db.QueryRowContext(ctx, query, owner, name).Scan(
		&vault.ID,
		&vault.Owner,
		&vault.Name,
		&grp,
		&vault.Data,
		&createdAtStr,
		&updatedAtStr,
	)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrVaultNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("querying vault: %w", err)
	}

	vault.Group = grp.String

	vault.CreatedAt, err = time.Parse(time.RFC3339, createdAtStr)
	if err != nil {
		return nil, fmt.Errorf("parsing created_at: %w", err)
	}

	vault.UpdatedAt, err = time.Parse(time.RFC3339, updatedAtStr)
	if err != nil {
		return nil, fmt.Errorf("parsing updated_at: %w", err)
	}

	return &vault, nil
}

// ListVaultNames returns the names of all vaults belonging to an owner.
// Order is stable within a single read (alphabetical).
func (s *SQLiteStore) ListVaultNames(ctx context.Context, owner string) ([]string, error) {
	query := `
		SELECT name
		FROM vaults
		WHERE owner = ?
		ORDER BY name ASC
	`

	rows, err := s.db.QueryContext(ctx, query, owner)
	if err != nil {
		return nil, fmt.Errorf("querying vault names: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("scanning vault name: %w", err)
		}
		names = append(names, name)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating vault names: %w", err)
	}

	return names, nil
}

// UpdateVault replaces the blob of an existing vault.
// Returns ErrVaultNotFound if no row matches; it never creates.
func (s *SQLiteStore) UpdateVault(ctx context.Context, owner, name string, data []byte) error {
	query := `UPDATE vaults SET data = ?, updated_at = ? WHERE owner = ? AND name = ?`

	result, err := s.db.ExecContext(ctx, query,
		data,
		time.Now().UTC().Format(time.RFC3339),
		owner,
		name,
	)
	if err != nil {
		return fmt.Errorf("updating vault: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("getting rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return ErrVaultNotFound
	}

	s.logger.Debug("updated vault", "owner", owner, "name", name, "size", len(data))
	return nil
}

// DeleteVault removes a vault.
// Returns ErrVaultNotFound if no row matches.
func (s *SQLiteStore) DeleteVault(ctx context.Context, owner, name string) error {
	result, err := s.db.ExecContext(ctx, "DELETE FROM vaults WHERE owner = ? AND name = ?", owner, name)
	if err != nil {
		return fmt.Errorf("deleting vault: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("getting rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return ErrVaultNotFound
	}

	s.logger.Debug("deleted vault", "owner", owner, "name", name)
	return nil
}

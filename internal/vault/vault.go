// ABOUTME: Vault service enforcing per-owner uniqueness and existence on blob CRUD
// ABOUTME: Stateless wrapper over the credential store's vault tables

// Package vault stores and retrieves opaque binary blobs scoped to an owner.
package vault

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/2389/vault-gateway/internal/store"
)

// Store is the subset of the credential store the vault service depends on.
type Store interface {
	CreateVault(ctx context.Context, vault *store.Vault) error
	GetVault(ctx context.Context, owner, name string) (*store.Vault, error)
	ListVaultNames(ctx context.Context, owner string) ([]string, error)
	UpdateVault(ctx context.Context, owner, name string, data []byte) error
	DeleteVault(ctx context.Context, owner, name string) error
}

// Service performs vault operations on behalf of an authenticated owner.
type Service struct {
	store  Store
	logger *slog.Logger
}

// NewService creates a vault service over the given store.
func NewService(s Store) *Service {
	return &Service{
		store:  s,
		logger: slog.Default().With("component", "vault"),
	}
}

// List returns the names of all vaults belonging to the owner.
func (s *Service) List(ctx context.Context, owner string) ([]string, error) {
	return s.store.ListVaultNames(ctx, owner)
}

// Get returns the blob stored under (owner, name).
// Returns store.ErrVaultNotFound if no such vault exists.
func (s *Service) Get(ctx context.Context, owner, name string) ([]byte, error) {
	vault, err := s.store.GetVault(ctx, owner, name)
	if err != nil {
		return nil, err
	}
	return vault.Data, nil
}

// Create stores a new blob under (owner, name).
// Returns store.ErrDuplicateVault if the pair already exists; the existing
// blob is never overwritten.
func (s *Service) Create(ctx context.Context, owner, name string, data []byte) error {
	now := time.Now().UTC()
	return s.store.CreateVault(ctx, &store.Vault{
		ID:        uuid.NewString(),
		Owner:     owner,
		Name:      name,
		Data:      data,
		CreatedAt: now,
		UpdatedAt: now,
	})
}

// Update replaces the blob of an existing vault.
// Returns store.ErrVaultNotFound if the vault is absent; it never creates.
func (s *Service) Update(ctx context.Context, owner, name string, data []byte) error {
	return s.store.UpdateVault(ctx, owner, name, data)
}

// Delete removes the vault stored under (owner, name).
// Returns store.ErrVaultNotFound if the vault is absent.
func (s *Service) Delete(ctx context.Context, owner, name string) error {
	return s.store.DeleteVault(ctx, owner, name)
}

// ABOUTME: Tests for vault blob persistence
// ABOUTME: Covers round-trips, conflict on duplicate create, and zero-row updates

package store

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
)

func newTestVault(owner, name string, data []byte) *Vault {
	now := time.Now().UTC().Truncate(time.Second)
	return &Vault{
		ID:        uuid.NewString(),
		Owner:     owner,
		Name:      name,
		Data:      data,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

func TestCreateAndGetVault(t *testing.T) {
	store := newTestStore(t)
	defer store.Close()

	ctx := context.Background()
	data := []byte{0x00, 0x01, 0xff, 0xfe, 'h', 'i'}

	if err := store.CreateVault(ctx, newTestVault("alice", "notes", data)); err != nil {
		t.Fatalf("CreateVault failed: %v", err)
	}

	got, err := store.GetVault(ctx, "alice", "notes")
	if err != nil {
		t.Fatalf("GetVault failed: %v", err)
	}
	if !bytes.Equal(got.Data, data) {
		t.Errorf("data mismatch: got %v, want %v", got.Data, data)
	}
	if got.Owner != "alice" || got.Name != "notes" {
		t.Errorf("ownership mismatch: got %s/%s", got.Owner, got.Name)
	}
}

func TestCreateVault_ConflictPreservesOriginal(t *testing.T) {
	store := newTestStore(t)
	defer store.Close()

	ctx := context.Background()
	original := []byte("original bytes")

	if err := store.CreateVault(ctx, newTestVault("alice", "notes", original)); err != nil {
		t.Fatalf("CreateVault failed: %v", err)
	}

	err := store.CreateVault(ctx, newTestVault("alice", "notes", []byte("replacement")))
	if !errors.Is(err, ErrDuplicateVault) {
		t.Fatalf("expected ErrDuplicateVault, got %v", err)
	}

	got, err := store.GetVault(ctx, "alice", "notes")
	if err != nil {
		t.Fatalf("GetVault failed: %v", err)
	}
	if !bytes.Equal(got.Data, original) {
		t.Errorf("conflicting create must not overwrite: got %q", got.Data)
	}
}

func TestCreateVault_SameNameDifferentOwner(t *testing.T) {
	store := newTestStore(t)
	defer store.Close()

	ctx := context.Background()
	if err := store.CreateVault(ctx, newTestVault("alice", "notes", []byte("a"))); err != nil {
		t.Fatalf("CreateVault failed: %v", err)
	}
	if err := store.CreateVault(ctx, newTestVault("bob", "notes", []byte("b"))); err != nil {
		t.Errorf("CreateVault for different owner failed: %v", err)
	}
}

func TestGetVault_NotFound(t *testing.T) {
	store := newTestStore(t)
	defer store.Close()

	_, err := store.GetVault(context.Background(), "alice", "missing")
	if !errors.Is(err, ErrVaultNotFound) {
		t.Errorf("expected ErrVaultNotFound, got %v", err)
	}
}

func TestListVaultNames(t *testing.T) {
	store := newTestStore(t)
	defer store.Close()

	ctx := context.Background()

	names, err := store.ListVaultNames(ctx, "alice")
	if err != nil {
		t.Fatalf("ListVaultNames failed: %v", err)
	}
	if len(names) != 0 {
		t.Errorf("expected empty listing, got %v", names)
	}

	for _, name := range []string{"zeta", "alpha", "mid"} {
		if err := store.CreateVault(ctx, newTestVault("alice", name, []byte("x"))); err != nil {
			t.Fatalf("CreateVault failed: %v", err)
		}
	}
	if err := store.CreateVault(ctx, newTestVault("bob", "other", []byte("y"))); err != nil {
		t.Fatalf("CreateVault failed: %v", err)
	}

	names, err = store.ListVaultNames(ctx, "alice")
	if err != nil {
		t.Fatalf("ListVaultNames failed: %v", err)
	}
	want := []string{"alpha", "mid", "zeta"}
	if len(names) != len(want) {
		t.Fatalf("expected %d names, got %d", len(want), len(names))
	}
	for i := range want {
		if names[i] != want[i] {
			t.Errorf("names[%d] = %q, want %q", i, names[i], want[i])
		}
	}
}

func TestUpdateVault(t *testing.T) {
	store := newTestStore(t)
	defer store.Close()

	ctx := context.Background()
	if err := store.CreateVault(ctx, newTestVault("alice", "notes", []byte("v1"))); err != nil {
		t.Fatalf("CreateVault failed: %v", err)
	}

	if err := store.UpdateVault(ctx, "alice", "notes", []byte("v2")); err != nil {
		t.Fatalf("UpdateVault failed: %v", err)
	}

	got, err := store.GetVault(ctx, "alice", "notes")
	if err != nil {
		t.Fatalf("GetVault failed: %v", err)
	}
	if !bytes.Equal(got.Data, []byte("v2")) {
		t.Errorf("expected updated data, got %q", got.Data)
	}
}

func TestUpdateVault_NotFoundCreatesNothing(t *testing.T) {
	store := newTestStore(t)
	defer store.Close()

	ctx := context.Background()
	err := store.UpdateVault(ctx, "alice", "missing", []byte("data"))
	if !errors.Is(err, ErrVaultNotFound) {
		t.Fatalf("expected ErrVaultNotFound, got %v", err)
	}

	if _, err := store.GetVault(ctx, "alice", "missing"); !errors.Is(err, ErrVaultNotFound) {
		t.Error("update of a missing vault must not create it")
	}
}

func TestDeleteVault(t *testing.T) {
	store := newTestStore(t)
	defer store.Close()

	ctx := context.Background()
	if err := store.CreateVault(ctx, newTestVault("alice", "notes", []byte("v1"))); err != nil {
		t.Fatalf("CreateVault failed: %v", err)
	}

	if err := store.DeleteVault(ctx, "alice", "notes"); err != nil {
		t.Fatalf("DeleteVault failed: %v", err)
	}

	if _, err := store.GetVault(ctx, "alice", "notes"); !errors.Is(err, ErrVaultNotFound) {
		t.Error("expected vault to be gone after delete")
	}
}

func TestDeleteVault_NotFound(t *testing.T) {
	store := newTestStore(t)
	defer store.Close()

	err := store.DeleteVault(context.Background(), "alice", "missing")
	if !errors.Is(err, ErrVaultNotFound) {
		t.Errorf("expected ErrVaultNotFound, got %v", err)
	}
}

// ABOUTME: Tests for API token persistence
// ABOUTME: Covers per-owner name uniqueness, listing, last-usage, and deletion

package store

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
)

func newTestToken(owner, name, value string) *Token {
	return &Token{
		ID:        uuid.NewString(),
		Owner:     owner,
		Name:      name,
		Value:     value,
		CreatedAt: time.Now().UTC().Truncate(time.Second),
	}
}

func TestCreateAndListTokens(t *testing.T) {
	store := newTestStore(t)
	defer store.Close()

	ctx := context.Background()
	if err := store.CreateToken(ctx, newTestToken("alice", "laptop", "value-1")); err != nil {
		t.Fatalf("CreateToken failed: %v", err)
	}
	if err := store.CreateToken(ctx, newTestToken("alice", "phone", "value-2")); err != nil {
		t.Fatalf("CreateToken failed: %v", err)
	}
	if err := store.CreateToken(ctx, newTestToken("bob", "laptop", "value-3")); err != nil {
		t.Fatalf("CreateToken failed: %v", err)
	}

	tokens, err := store.ListTokens(ctx, "alice")
	if err != nil {
		t.Fatalf("ListTokens failed: %v", err)
	}
	if len(tokens) != 2 {
		t.Fatalf("expected 2 tokens for alice, got %d", len(tokens))
	}
	for _, token := range tokens {
		if token.Owner != "alice" {
			t.Errorf("unexpected owner %q in alice's listing", token.Owner)
		}
		if token.LastUsedAt != nil {
			t.Errorf("expected nil LastUsedAt for fresh token %q", token.Name)
		}
	}
}

func TestCreateToken_DuplicateNameSameOwner(t *testing.T) {
	store := newTestStore(t)
	defer store.Close()

	ctx := context.Background()
	if err := store.CreateToken(ctx, newTestToken("alice", "laptop", "value-1")); err != nil {
		t.Fatalf("CreateToken failed: %v", err)
	}

	err := store.CreateToken(ctx, newTestToken("alice", "laptop", "value-2"))
	if !errors.Is(err, ErrDuplicateToken) {
		t.Errorf("expected ErrDuplicateToken, got %v", err)
	}

	// Same name for a different owner is fine
	if err := store.CreateToken(ctx, newTestToken("bob", "laptop", "value-3")); err != nil {
		t.Errorf("CreateToken for different owner failed: %v", err)
	}
}

func TestTokenExistsAndTouch(t *testing.T) {
	store := newTestStore(t)
	defer store.Close()

	ctx := context.Background()
	if err := store.CreateToken(ctx, newTestToken("alice", "laptop", "value-1")); err != nil {
		t.Fatalf("CreateToken failed: %v", err)
	}

	ok, err := store.TokenExists(ctx, "alice", "value-1")
	if err != nil {
		t.Fatalf("TokenExists failed: %v", err)
	}
	if !ok {
		t.Error("expected token to exist")
	}

	ok, err = store.TokenExists(ctx, "bob", "value-1")
	if err != nil {
		t.Fatalf("TokenExists failed: %v", err)
	}
	if ok {
		t.Error("expected token not to match a different owner")
	}

	if err := store.TouchToken(ctx, "alice", "value-1"); err != nil {
		t.Fatalf("TouchToken failed: %v", err)
	}

	tokens, err := store.ListTokens(ctx, "alice")
	if err != nil {
		t.Fatalf("ListTokens failed: %v", err)
	}
	if len(tokens) != 1 {
		t.Fatalf("expected 1 token, got %d", len(tokens))
	}
	if tokens[0].LastUsedAt == nil {
		t.Error("expected LastUsedAt to be set after touch")
	}
}

func TestDeleteToken(t *testing.T) {
	store := newTestStore(t)
	defer store.Close()

	ctx := context.Background()
	if err := store.CreateToken(ctx, newTestToken("alice", "laptop", "value-1")); err != nil {
		t.Fatalf("CreateToken failed: %v", err)
	}

	if err := store.DeleteToken(ctx, "alice", "laptop"); err != nil {
		t.Fatalf("DeleteToken failed: %v", err)
	}

	tokens, err := store.ListTokens(ctx, "alice")
	if err != nil {
		t.Fatalf("ListTokens failed: %v", err)
	}
	if len(tokens) != 0 {
		t.Errorf("expected 0 tokens after delete, got %d", len(tokens))
	}
}

func TestDeleteToken_NotFound(t *testing.T) {
	store := newTestStore(t)
	defer store.Close()

	err := store.DeleteToken(context.Background(), "alice", "missing")
	if !errors.Is(err, ErrTokenNotFound) {
		t.Errorf("expected ErrTokenNotFound, got %v", err)
	}
}

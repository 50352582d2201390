// ABOUTME: Tests for session persistence
// ABOUTME: Covers validity checks, expiry boundaries, and purging

package store

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
)

func newTestSession(owner, value string, expiresAt time.Time) *Session {
	return &Session{
		ID:        uuid.NewString(),
		Owner:     owner,
		Value:     value,
		CreatedAt: time.Now().UTC(),
		ExpiresAt: expiresAt,
	}
}

func TestSessionExists(t *testing.T) {
	store := newTestStore(t)
	defer store.Close()

	ctx := context.Background()
	session := newTestSession("alice", "credential-1", time.Now().Add(time.Hour))

	if err := store.CreateSession(ctx, session); err != nil {
		t.Fatalf("CreateSession failed: %v", err)
	}

	ok, err := store.SessionExists(ctx, "alice", "credential-1")
	if err != nil {
		t.Fatalf("SessionExists failed: %v", err)
	}
	if !ok {
		t.Error("expected session to exist")
	}

	// Wrong value
	ok, err = store.SessionExists(ctx, "alice", "wrong")
	if err != nil {
		t.Fatalf("SessionExists failed: %v", err)
	}
	if ok {
		t.Error("expected session not to match wrong value")
	}

	// Wrong owner
	ok, err = store.SessionExists(ctx, "bob", "credential-1")
	if err != nil {
		t.Fatalf("SessionExists failed: %v", err)
	}
	if ok {
		t.Error("expected session not to match wrong owner")
	}
}

func TestSessionExists_Expired(t *testing.T) {
	store := newTestStore(t)
	defer store.Close()

	ctx := context.Background()
	expired := newTestSession("alice", "old-credential", time.Now().Add(-time.Minute))

	if err := store.CreateSession(ctx, expired); err != nil {
		t.Fatalf("CreateSession failed: %v", err)
	}

	ok, err := store.SessionExists(ctx, "alice", "old-credential")
	if err != nil {
		t.Fatalf("SessionExists failed: %v", err)
	}
	if ok {
		t.Error("expected expired session to be invalid")
	}
}

func TestSessionExists_MultipleConcurrent(t *testing.T) {
	store := newTestStore(t)
	defer store.Close()

	ctx := context.Background()
	expiry := time.Now().Add(time.Hour)

	// One user may hold several live sessions at once
	for _, value := range []string{"cred-a", "cred-b", "cred-c"} {
		if err := store.CreateSession(ctx, newTestSession("alice", value, expiry)); err != nil {
			t.Fatalf("CreateSession failed: %v", err)
		}
	}

	for _, value := range []string{"cred-a", "cred-b", "cred-c"} {
		ok, err := store.SessionExists(ctx, "alice", value)
		if err != nil {
			t.Fatalf("SessionExists failed: %v", err)
		}
		if !ok {
			t.Errorf("expected session %q to exist", value)
		}
	}
}

func TestDeleteExpiredSessions(t *testing.T) {
	store := newTestStore(t)
	defer store.Close()

	ctx := context.Background()

	if err := store.CreateSession(ctx, newTestSession("alice", "live", time.Now().Add(time.Hour))); err != nil {
		t.Fatalf("CreateSession failed: %v", err)
	}
	if err := store.CreateSession(ctx, newTestSession("alice", "dead-1", time.Now().Add(-time.Minute))); err != nil {
		t.Fatalf("CreateSession failed: %v", err)
	}
	if err := store.CreateSession(ctx, newTestSession("bob", "dead-2", time.Now().Add(-time.Hour))); err != nil {
		t.Fatalf("CreateSession failed: %v", err)
	}

	count, err := store.DeleteExpiredSessions(ctx)
	if err != nil {
		t.Fatalf("DeleteExpiredSessions failed: %v", err)
	}
	if count != 2 {
		t.Errorf("expected 2 purged sessions, got %d", count)
	}

	// Live session survives
	ok, err := store.SessionExists(ctx, "alice", "live")
	if err != nil {
		t.Fatalf("SessionExists failed: %v", err)
	}
	if !ok {
		t.Error("expected live session to survive purge")
	}

	// Purge is idempotent
	count, err = store.DeleteExpiredSessions(ctx)
	if err != nil {
		t.Fatalf("DeleteExpiredSessions failed: %v", err)
	}
	if count != 0 {
		t.Errorf("expected 0 purged sessions on second run, got %d", count)
	}
}

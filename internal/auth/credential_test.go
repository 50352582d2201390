// ABOUTME: Tests for opaque credential generation
// ABOUTME: Covers length, alphabet restrictions, and per-call uniqueness

package auth

import (
	"strings"
	"testing"
)

func TestNewCredential_Length(t *testing.T) {
	cred, err := NewCredential(CredentialLength)
	if err != nil {
		t.Fatalf("NewCredential failed: %v", err)
	}
	if len(cred) != CredentialLength {
		t.Errorf("expected %d characters, got %d", CredentialLength, len(cred))
	}
}

func TestNewCredential_Alphabet(t *testing.T) {
	cred, err := NewCredential(4096)
	if err != nil {
		t.Fatalf("NewCredential failed: %v", err)
	}

	for i := 0; i < len(cred); i++ {
		if !strings.ContainsRune(credentialAlphabet, rune(cred[i])) {
			t.Fatalf("character %q at %d not in alphabet", cred[i], i)
		}
	}

	// Credentials travel in headers and cookies; delimiters must not appear.
	if strings.ContainsAny(cred, ":;, ") {
		t.Error("credential contains delimiter characters")
	}
}

func TestNewCredential_Unique(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		cred, err := NewCredential(CredentialLength)
		if err != nil {
			t.Fatalf("NewCredential failed: %v", err)
		}
		if seen[cred] {
			t.Fatal("generated duplicate credential")
		}
		seen[cred] = true
	}
}

// ABOUTME: Opaque credential generation for sessions and API tokens
// ABOUTME: Fixed-length strings from a restricted alphabet, drawn from crypto/rand

package auth

import (
	"crypto/rand"
	"fmt"
)

// CredentialLength is the length of session and token credentials.
const CredentialLength = 128

// credentialAlphabet is the 64-character set credentials are drawn from.
// It contains no ':' or ';', so credentials survive header and cookie
// delimiting untouched.
const credentialAlphabet = "0123465789ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz=-"

// NewCredential returns a random credential of n characters. Every call
// draws fresh entropy from the operating system; crypto/rand is safe for
// concurrent use, so no generator state is shared between sessions.
func NewCredential(n int) (string, error) {
	buf := make([]byte, n)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("reading random bytes: %w", err)
	}

	out := make([]byte, n)
	for i, b := range buf {
		out[i] = credentialAlphabet[b&0x3f]
	}
	return string(out), nil
}

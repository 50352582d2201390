// ABOUTME: Tests for argon2id password hashing and verification
// ABOUTME: Covers round-trips, salt freshness, and malformed hash handling

package auth

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHashAndVerifyPassword(t *testing.T) {
	encoded, err := HashPassword(DefaultPasswordParams, "secret1")
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(encoded, "$argon2id$v=19$"), "expected PHC prefix, got %q", encoded)
	assert.True(t, VerifyPassword(encoded, "secret1"))
	assert.False(t, VerifyPassword(encoded, "secret2"))
	assert.False(t, VerifyPassword(encoded, ""))
}

func TestHashPassword_FreshSaltPerCall(t *testing.T) {
	first, err := HashPassword(DefaultPasswordParams, "secret1")
	require.NoError(t, err)
	second, err := HashPassword(DefaultPasswordParams, "secret1")
	require.NoError(t, err)

	assert.NotEqual(t, first, second, "two hashes of the same password must differ by salt")
	assert.True(t, VerifyPassword(first, "secret1"))
	assert.True(t, VerifyPassword(second, "secret1"))
}

func TestHashPassword_EmptyPassword(t *testing.T) {
	_, err := HashPassword(DefaultPasswordParams, "")
	assert.Error(t, err)
}

func TestVerifyPassword_MalformedHash(t *testing.T) {
	cases := []struct {
		name    string
		encoded string
	}{
		{"empty", ""},
		{"garbage", "not-a-hash"},
		{"wrong algorithm", "$bcrypt$v=19$m=65536,t=3,p=1$c2FsdA$aGFzaA"},
		{"wrong version", "$argon2id$v=18$m=65536,t=3,p=1$c2FsdA$aGFzaA"},
		{"missing fields", "$argon2id$v=19$m=65536,t=3,p=1$c2FsdA"},
		{"bad base64 salt", "$argon2id$v=19$m=65536,t=3,p=1$!!$aGFzaA"},
		{"zero parameters", "$argon2id$v=19$m=0,t=0,p=0$c2FsdA$aGFzaA"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.False(t, VerifyPassword(tc.encoded, "secret1"))
		})
	}
}

func TestVerifyPassword_OutOfRangeParallelism(t *testing.T) {
	// A lane count that doesn't fit the parameter's width must read as
	// malformed; truncating 257 to 1 would verify against the wrong cost.
	light := PasswordParams{Memory: 16 * 1024, Time: 1, Parallelism: 1, SaltLen: 16, KeyLen: 32}
	encoded, err := HashPassword(light, "secret1")
	require.NoError(t, err)

	tampered := strings.Replace(encoded, ",p=1$", ",p=257$", 1)
	require.NotEqual(t, encoded, tampered)
	assert.False(t, VerifyPassword(tampered, "secret1"))
}

func TestVerifyPassword_ParamsFromEncodedString(t *testing.T) {
	// Verification must honor the parameters embedded in the hash, not the
	// current defaults.
	light := PasswordParams{Memory: 16 * 1024, Time: 1, Parallelism: 1, SaltLen: 16, KeyLen: 32}
	encoded, err := HashPassword(light, "secret1")
	require.NoError(t, err)

	assert.True(t, VerifyPassword(encoded, "secret1"))
	assert.False(t, VerifyPassword(encoded, "secret2"))
}

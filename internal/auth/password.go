// ABOUTME: Argon2id password hashing with PHC-encoded parameter strings
// ABOUTME: Fresh random salt per hash; verification is constant-time

package auth

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"fmt"
	"strconv"
	"strings"

	"golang.org/x/crypto/argon2"
)

// PasswordParams holds the argon2id cost parameters.
type PasswordParams struct {
	Memory      uint32 // KiB
	Time        uint32
	Parallelism uint8
	SaltLen     uint32
	KeyLen      uint32
}

// DefaultPasswordParams matches the deployed cost profile:
// 64 MiB memory, 3 passes, 1 lane.
var DefaultPasswordParams = PasswordParams{
	Memory:      64 * 1024,
	Time:        3,
	Parallelism: 1,
	SaltLen:     16,
	KeyLen:      32,
}

// HashPassword derives an argon2id hash of the password with a fresh random
// salt and returns it as a PHC string:
//
//	$argon2id$v=19$m=65536,t=3,p=1$<saltB64>$<keyB64>
//
// The encoded string carries everything verification needs.
func HashPassword(p PasswordParams, password string) (string, error) {
	if password == "" {
		return "", fmt.Errorf("empty password")
	}

	salt := make([]byte, p.SaltLen)
	if _, err := rand.Read(salt); err != nil {
		return "", fmt.Errorf("generating salt: %w", err)
	}

	key := argon2.IDKey([]byte(password), salt, p.Time, p.Memory, p.Parallelism, p.KeyLen)

	return fmt.Sprintf("$argon2id$v=19$m=%d,t=%d,p=%d$%s$%s",
		p.Memory, p.Time, p.Parallelism,
		base64.RawStdEncoding.EncodeToString(salt),
		base64.RawStdEncoding.EncodeToString(key),
	), nil
}

// VerifyPassword recomputes the hash from the parameters embedded in the
// encoded string and compares in constant time. Malformed input verifies
// as false, never as an error the caller could confuse with a store failure.
func VerifyPassword(encoded, password string) bool {
	params, salt, key, err := decodeHash(encoded)
	if err != nil {
		return false
	}

	candidate := argon2.IDKey([]byte(password), salt, params.Time, params.Memory, params.Parallelism, uint32(len(key)))
	return subtle.ConstantTimeCompare(candidate, key) == 1
}

// decodeHash splits a PHC argon2id string into parameters, salt, and key.
func decodeHash(encoded string) (PasswordParams, []byte, []byte, error) {
	var p PasswordParams

	parts := strings.Split(encoded, "$")
	if len(parts) != 6 || parts[1] != "argon2id" {
		return p, nil, nil, fmt.Errorf("malformed hash")
	}

	var version int
	if _, err := fmt.Sscanf(parts[2], "v=%d", &version); err != nil || version != argon2.Version {
		return p, nil, nil, fmt.Errorf("unsupported argon2 version")
	}

	for _, field := range strings.Split(parts[3], ",") {
		kv := strings.SplitN(field, "=", 2)
		if len(kv) != 2 {
			return p, nil, nil, fmt.Errorf("malformed parameters")
		}
		// Each field is parsed at the width its parameter actually has;
		// a lane count above 255 is malformed, not truncated.
		bits := 32
		if kv[0] == "p" {
			bits = 8
		}
		n, err := strconv.ParseUint(kv[1], 10, bits)
		if err != nil {
			return p, nil, nil, fmt.Errorf("malformed parameter %q: %w", field, err)
		}
		switch kv[0] {
		case "m":
			p.Memory = uint32(n)
		case "t":
			p.Time = uint32(n)
		case "p":
			p.Parallelism = uint8(n)
		}
	}
	if p.Memory == 0 || p.Time == 0 || p.Parallelism == 0 {
		return p, nil, nil, fmt.Errorf("incomplete parameters")
	}

	salt, err := base64.RawStdEncoding.DecodeString(parts[4])
	if err != nil {
		return p, nil, nil, fmt.Errorf("decoding salt: %w", err)
	}
	key, err := base64.RawStdEncoding.DecodeString(parts[5])
	if err != nil {
		return p, nil, nil, fmt.Errorf("decoding key: %w", err)
	}

	p.SaltLen = uint32(len(salt))
	p.KeyLen = uint32(len(key))
	return p, salt, key, nil
}

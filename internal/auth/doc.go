// Package auth provides authentication for vault-gateway.
//
// # Credentials
//
// Two independent credential kinds prove a user's identity:
//
//   - Sessions: 128-character opaque strings issued on login, valid for a
//     fixed TTL (1 hour by default). A user may hold several at once.
//
//   - API Tokens: 128-character opaque strings with a per-user name and no
//     expiry. Each successful token authentication records a last-usage time.
//
// Both are drawn from a 64-character alphabet free of header-delimiting
// characters, with fresh crypto/rand entropy on every generation.
//
// # Passwords
//
// Passwords are hashed with argon2id (64 MiB, 3 passes, 1 lane) and stored
// as PHC strings carrying their own parameters and salt. Verification is
// constant-time, and lookups of unknown usernames burn an equivalent
// verification so login timing stays flat.
//
// # Error Discipline
//
// ErrInvalidCredentials covers every "who are you" failure. Store failures
// propagate unchanged so callers can answer 500 instead of 401.
package auth

// Package store provides persistent storage for the gateway using SQLite.
//
// # Data Models
//
//   - User: Account with a unique username and an argon2id password hash
//   - Session: Short-lived login credential; a user may hold several at once
//   - Token: Long-lived named API credential with last-usage tracking
//   - Vault: Opaque binary blob, unique per (owner, name)
//
// SQLiteStore implements the Store interface in a single struct. The schema
// is created idempotently at construction.
//
// # SQLite Configuration
//
// The store uses SQLite with WAL mode:
//
//	PRAGMA journal_mode=WAL;
//	PRAGMA foreign_keys=ON;
//	PRAGMA busy_timeout=5000;
//
// The connection pool is capped at a single connection so statements from
// concurrent request goroutines never interleave on one handle.
//
// # Error Handling
//
// Constraint violations and zero-row outcomes surface as sentinel errors
// (ErrUsernameExists, ErrDuplicateVault, ErrVaultNotFound, ...). Any other
// error is a store failure; callers must not coerce it into "not found".
//
// All methods accept context.Context for cancellation support.
//
// # Testing
//
// Use NewSQLiteStore(":memory:") for tests with a real in-memory database.
package store

// ABOUTME: Store interface and data types for vault-gateway persistence
// ABOUTME: Defines User, Session, Token, Vault structs and the Store interface

package store

import (
	"context"
	"errors"
	"time"
)

// ErrUserNotFound is returned when a requested user does not exist.
var ErrUserNotFound = errors.New("user not found")

// ErrUsernameExists is returned when trying to register an existing username.
var ErrUsernameExists = errors.New("username already exists")

// ErrVaultNotFound is returned when no vault matches the (owner, name) pair.
var ErrVaultNotFound = errors.New("vault not found")

// ErrDuplicateVault is returned when creating a vault whose (owner, name)
// pair already exists. Creation never overwrites.
var ErrDuplicateVault = errors.New("vault already exists")

// ErrTokenNotFound is returned when a named token does not exist for an owner.
var ErrTokenNotFound = errors.New("token not found")

// ErrDuplicateToken is returned when creating a token whose name is already
// taken for the owner.
var ErrDuplicateToken = errors.New("token name already exists")

// User is an account identified by a unique, immutable username.
type User struct {
	ID           string
	Username     string
	PasswordHash string // PHC-encoded argon2id hash
	CreatedAt    time.Time
}

// Session is a short-lived login credential. A user may hold any number of
// concurrent sessions; a session is invalid once ExpiresAt has passed.
type Session struct {
	ID        string
	Owner     string // username
	Value     string // opaque credential
	CreatedAt time.Time
	ExpiresAt time.Time
}

// Token is a long-lived named API credential with no expiry.
type Token struct {
	ID         string
	Owner      string // username
	Name       string // unique per owner
	Value      string // opaque credential
	CreatedAt  time.Time
	LastUsedAt *time.Time // nil until first successful auth
}

// Vault is an opaque binary blob owned by a user. The (owner, name) pair is
// unique; no application-layer encryption is applied to Data.
type Vault struct {
	ID        string
	Owner     string
	Name      string
	Group     string // classification tag, currently unused by the API
	Data      []byte
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Store defines the persistence contract for users, sessions, tokens and
// vaults. Mutating operations report constraint violations and zero-row
// outcomes through the sentinel errors above; any other error is a genuine
// store failure and must not be folded into "not found".
type Store interface {
	// Users
	CreateUser(ctx context.Context, user *User) error
	GetUserByUsername(ctx context.Context, username string) (*User, error)
	UpdateUserPassword(ctx context.Context, username, passwordHash string) error
	CountUsers(ctx context.Context) (int, error)

	// Sessions
	CreateSession(ctx context.Context, session *Session) error
	SessionExists(ctx context.Context, owner, value string) (bool, error)
	DeleteExpiredSessions(ctx context.Context) (int64, error)

	// Tokens
	CreateToken(ctx context.Context, token *Token) error
	ListTokens(ctx context.Context, owner string) ([]*Token, error)
	TokenExists(ctx context.Context, owner, value string) (bool, error)
	TouchToken(ctx context.Context, owner, value string) error
	DeleteToken(ctx context.Context, owner, name string) error

	// Vaults
	CreateVault(ctx context.Context, vault *Vault) error
	GetVault(ctx context.Context, owner, name string) (*Vault, error)
	ListVaultNames(ctx context.Context, owner string) ([]string, error)
	UpdateVault(ctx context.Context, owner, name string, data []byte) error
	DeleteVault(ctx context.Context, owner, name string) error

	// Close releases any resources held by the store
	Close() error
}

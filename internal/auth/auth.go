// ABOUTME: Authentication service: registration, login, session and token lifecycle
// ABOUTME: Wraps the credential store; holds no mutable state beyond the store handle

package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/2389/vault-gateway/internal/store"
)

// ErrInvalidCredentials is returned when a username/password pair does not
// match. It is deliberately distinct from store failures: "wrong password"
// and "database unavailable" must never be conflated.
var ErrInvalidCredentials = errors.New("invalid credentials")

// DefaultSessionTTL is the session lifetime used when none is configured.
const DefaultSessionTTL = time.Hour

// dummyHash is verified against when the user does not exist, so login
// timing does not reveal whether a username is registered.
const dummyHash = "$argon2id$v=19$m=65536,t=3,p=1$MDEyMzQ1Njc4OWFiY2RlZg$eHh4eHh4eHh4eHh4eHh4eHh4eHh4eHh4eHh4eHh4eHg"

// Store is the subset of the credential store the auth service depends on.
type Store interface {
	CreateUser(ctx context.Context, user *store.User) error
	GetUserByUsername(ctx context.Context, username string) (*store.User, error)
	UpdateUserPassword(ctx context.Context, username, passwordHash string) error

	CreateSession(ctx context.Context, session *store.Session) error
	SessionExists(ctx context.Context, owner, value string) (bool, error)
	DeleteExpiredSessions(ctx context.Context) (int64, error)

	CreateToken(ctx context.Context, token *store.Token) error
	ListTokens(ctx context.Context, owner string) ([]*store.Token, error)
	TokenExists(ctx context.Context, owner, value string) (bool, error)
	TouchToken(ctx context.Context, owner, value string) error
	DeleteToken(ctx context.Context, owner, name string) error
}

// Service performs authentication against the credential store.
type Service struct {
	store      Store
	sessionTTL time.Duration
	params     PasswordParams
	logger     *slog.Logger
}

// NewService creates an auth service. A zero sessionTTL falls back to
// DefaultSessionTTL.
func NewService(s Store, sessionTTL time.Duration) *Service {
	if sessionTTL <= 0 {
		sessionTTL = DefaultSessionTTL
	}
	return &Service{
		store:      s,
		sessionTTL: sessionTTL,
		params:     DefaultPasswordParams,
		logger:     slog.Default().With("component", "auth"),
	}
}

// Register creates a new user with a freshly hashed password.
// Returns store.ErrUsernameExists if the username is taken.
func (s *Service) Register(ctx context.Context, username, password string) error {
	hash, err := HashPassword(s.params, password)
	if err != nil {
		return fmt.Errorf("hashing password: %w", err)
	}

	user := &store.User{
		ID:           uuid.NewString(),
		Username:     username,
		PasswordHash: hash,
		CreatedAt:    time.Now().UTC(),
	}
	if err := s.store.CreateUser(ctx, user); err != nil {
		return err
	}

	s.logger.Info("registered user", "username", username)
	return nil
}

// Login verifies the password and issues a new session, returning the
// session credential. Returns ErrInvalidCredentials on a bad username or
// password; any other error is a store failure.
func (s *Service) Login(ctx context.Context, username, password string) (string, error) {
	user, err := s.store.GetUserByUsername(ctx, username)
	if errors.Is(err, store.ErrUserNotFound) {
		// Burn the same work as a real verification to keep timing flat.
		VerifyPassword(dummyHash, password)
		return "", ErrInvalidCredentials
	}
	if err != nil {
		return "", fmt.Errorf("looking up user: %w", err)
	}

	if !VerifyPassword(user.PasswordHash, password) {
		return "", ErrInvalidCredentials
	}

	return s.IssueSession(ctx, username)
}

// IssueSession creates and persists a new session for the user and returns
// its credential. The session expires sessionTTL from now.
func (s *Service) IssueSession(ctx context.Context, username string) (string, error) {
	value, err := NewCredential(CredentialLength)
	if err != nil {
		return "", fmt.Errorf("generating session credential: %w", err)
	}

	now := time.Now().UTC()
	session := &store.Session{
		ID:        uuid.NewString(),
		Owner:     username,
		Value:     value,
		CreatedAt: now,
		ExpiresAt: now.Add(s.sessionTTL),
	}
	if err := s.store.CreateSession(ctx, session); err != nil {
		return "", fmt.Errorf("storing session: %w", err)
	}

	s.logger.Debug("issued session", "username", username, "expires_at", session.ExpiresAt)
	return value, nil
}

// IssueToken creates a long-lived named token for the user and returns its
// credential. Returns store.ErrDuplicateToken if the name is already taken
// for this owner.
func (s *Service) IssueToken(ctx context.Context, username, name string) (string, error) {
	value, err := NewCredential(CredentialLength)
	if err != nil {
		return "", fmt.Errorf("generating token credential: %w", err)
	}

	token := &store.Token{
		ID:        uuid.NewString(),
		Owner:     username,
		Name:      name,
		Value:     value,
		CreatedAt: time.Now().UTC(),
	}
	if err := s.store.CreateToken(ctx, token); err != nil {
		return "", err
	}

	s.logger.Info("issued token", "username", username, "name", name)
	return value, nil
}

// IsSessionValid reports whether a non-expired session matches the given
// username and credential.
func (s *Service) IsSessionValid(ctx context.Context, username, value string) (bool, error) {
	if username == "" || value == "" {
		return false, nil
	}
	return s.store.SessionExists(ctx, username, value)
}

// IsTokenValid reports whether a token matches the given username and
// credential. On success the token's last usage time is updated.
func (s *Service) IsTokenValid(ctx context.Context, username, value string) (bool, error) {
	if username == "" || value == "" {
		return false, nil
	}

	ok, err := s.store.TokenExists(ctx, username, value)
	if err != nil || !ok {
		return false, err
	}

	if err := s.store.TouchToken(ctx, username, value); err != nil {
		// The credential did match; a failed usage-time update is logged,
		// not surfaced as an auth failure.
		s.logger.Warn("failed to update token last usage", "username", username, "error", err)
	}
	return true, nil
}

// IsAuthenticated reports whether either the session or the token credential
// proves the user's identity. An empty username short-circuits to false
// without touching the store.
func (s *Service) IsAuthenticated(ctx context.Context, username, sessionValue, tokenValue string) (bool, error) {
	if username == "" {
		return false, nil
	}

	ok, err := s.IsSessionValid(ctx, username, sessionValue)
	if err != nil {
		return false, err
	}
	if ok {
		return true, nil
	}

	return s.IsTokenValid(ctx, username, tokenValue)
}

// ListTokens returns the user's tokens for display.
func (s *Service) ListTokens(ctx context.Context, username string) ([]*store.Token, error) {
	return s.store.ListTokens(ctx, username)
}

// DeleteToken removes a token by name.
// Returns store.ErrTokenNotFound if no token with that name exists.
func (s *Service) DeleteToken(ctx context.Context, username, name string) error {
	return s.store.DeleteToken(ctx, username, name)
}

// ChangePassword verifies the old password and stores a hash of the new one.
// Existing sessions and tokens remain valid; they are independent
// credentials.
func (s *Service) ChangePassword(ctx context.Context, username, oldPassword, newPassword string) error {
	user, err := s.store.GetUserByUsername(ctx, username)
	if errors.Is(err, store.ErrUserNotFound) {
		return ErrInvalidCredentials
	}
	if err != nil {
		return fmt.Errorf("looking up user: %w", err)
	}

	if !VerifyPassword(user.PasswordHash, oldPassword) {
		return ErrInvalidCredentials
	}

	hash, err := HashPassword(s.params, newPassword)
	if err != nil {
		return fmt.Errorf("hashing password: %w", err)
	}
	return s.store.UpdateUserPassword(ctx, username, hash)
}

// PurgeExpiredSessions removes all expired sessions and returns the count.
func (s *Service) PurgeExpiredSessions(ctx context.Context) (int64, error) {
	count, err := s.store.DeleteExpiredSessions(ctx)
	if err != nil {
		return 0, fmt.Errorf("purging sessions: %w", err)
	}
	if count > 0 {
		s.logger.Info("purged expired sessions", "count", count)
	}
	return count, nil
}

// ABOUTME: Versioned REST dispatcher for login, register, vault, and token routes
// ABOUTME: Walks path segments, gates protected routes on auth, builds responses

package api

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/2389/vault-gateway/internal/auth"
	"github.com/2389/vault-gateway/internal/store"
	"github.com/2389/vault-gateway/internal/vault"
)

// SessionCookieName is the cookie carrying the session credential.
const SessionCookieName = "Session-Id"

// maxBlobSize bounds vault uploads. Oversized bodies are rejected with
// 413; nothing is ever stored truncated.
const maxBlobSize = 16 << 20 // 16 MiB

// errBlobTooLarge marks a request body that exceeds maxBlobSize.
var errBlobTooLarge = errors.New("blob exceeds size limit")

// readBlob reads the request body up to maxBlobSize. One extra byte is
// requested so an oversized body is detected rather than truncated.
func readBlob(r *http.Request) ([]byte, error) {
	data, err := io.ReadAll(io.LimitReader(r.Body, maxBlobSize+1))
	if err != nil {
		return nil, err
	}
	if len(data) > maxBlobSize {
		return nil, errBlobTooLarge
	}
	return data, nil
}

// Handler dispatches API requests to the auth and vault services.
type Handler struct {
	auth   *auth.Service
	vault  *vault.Service
	logger *slog.Logger
}

// NewHandler creates the API handler.
func NewHandler(authSvc *auth.Service, vaultSvc *vault.Service) *Handler {
	return &Handler{
		auth:   authSvc,
		vault:  vaultSvc,
		logger: slog.Default().With("component", "api"),
	}
}

// ServeHTTP routes a request under the /api prefix.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	target := r.URL.Path

	// Request path must be absolute and not contain "..".
	if target == "" || target[0] != '/' || strings.Contains(target, "..") {
		write(w, badRequest("Illegal request-target"))
		return
	}

	if !shiftEndpoint("api", &target) {
		write(w, notFound(r.URL.Path))
		return
	}
	// The only published version; an explicit v1 segment is accepted and
	// everything else falls through to it, like the first deployment did.
	shiftEndpoint("v1", &target)

	h.serveV1(w, r, target)
}

// serveV1 branches on the first remaining path segment.
func (h *Handler) serveV1(w http.ResponseWriter, r *http.Request, target string) {
	if r.Method == http.MethodOptions {
		writePreflight(w)
		return
	}

	switch {
	case shiftEndpoint("login", &target):
		write(w, h.login(r, target))
	case shiftEndpoint("register", &target):
		write(w, h.register(r, target))
	case shiftEndpoint("vault", &target):
		write(w, h.vaultRoute(r, target))
	case shiftEndpoint("user", &target):
		if shiftEndpoint("token", &target) {
			write(w, h.tokenRoute(r, target))
			return
		}
		write(w, notFound(r.URL.Path))
	default:
		write(w, notFound(r.URL.Path))
	}
}

// sessionCredential extracts the session credential from the Session-Id
// header or cookie.
func sessionCredential(r *http.Request) string {
	if value := r.Header.Get(SessionCookieName); value != "" {
		return value
	}
	if cookie, err := r.Cookie(SessionCookieName); err == nil {
		return cookie.Value
	}
	return ""
}

// authenticate checks the request's Username against its session or token
// credential. A store failure is returned as an error distinct from a plain
// "not authenticated".
func (h *Handler) authenticate(r *http.Request) (username string, ok bool, err error) {
	username = r.Header.Get("Username")
	ok, err = h.auth.IsAuthenticated(r.Context(), username, sessionCredential(r), r.Header.Get("X-Auth-Token"))
	return username, ok, err
}

func (h *Handler) login(r *http.Request, target string) response {
	if r.Method != http.MethodGet {
		return methodNotAllowed(r.URL.Path)
	}
	if target != "" {
		return notFound(r.URL.Path)
	}

	username, authenticated, err := h.authenticate(r)
	if err != nil {
		h.logger.Error("auth check failed", "error", err)
		return serverError("Cannot verify credentials.")
	}
	if authenticated {
		// Login is not idempotent; a live credential must not mint another.
		return badRequest("Already authenticated.")
	}

	password := r.Header.Get("Password")
	if username == "" || password == "" {
		return unauthorized(r.URL.Path)
	}

	credential, err := h.auth.Login(r.Context(), username, password)
	if errors.Is(err, auth.ErrInvalidCredentials) {
		return unauthorized(r.URL.Path)
	}
	if err != nil {
		h.logger.Error("login failed", "username", username, "error", err)
		return serverError("Cannot store session id.")
	}

	res := okBody(credential)
	res.cookie = &http.Cookie{Name: SessionCookieName, Value: credential}
	return res
}

func (h *Handler) register(r *http.Request, target string) response {
	if r.Method != http.MethodPost {
		return methodNotAllowed(r.URL.Path)
	}
	if target != "" {
		return notFound(r.URL.Path)
	}

	username := r.Header.Get("Username")
	password := r.Header.Get("Password")
	if username == "" || password == "" {
		return badRequest("Username and password cannot be empty.")
	}

	err := h.auth.Register(r.Context(), username, password)
	if errors.Is(err, store.ErrUsernameExists) {
		return badRequest(fmt.Sprintf("The username '%s' is already taken.", username))
	}
	if err != nil {
		h.logger.Error("registration failed", "username", username, "error", err)
		return serverError("Cannot register user.")
	}

	return ok()
}

func (h *Handler) vaultRoute(r *http.Request, target string) response {
	username, authenticated, err := h.authenticate(r)
	if err != nil {
		h.logger.Error("auth check failed", "error", err)
		return serverError("Cannot verify credentials.")
	}
	if !authenticated {
		return unauthorized(r.URL.Path)
	}

	switch r.Method {
	case http.MethodGet:
		if target == "" {
			names, err := h.vault.List(r.Context(), username)
			if err != nil {
				h.logger.Error("vault listing failed", "username", username, "error", err)
				return serverError("Cannot load the user vaults.")
			}
			var buffer strings.Builder
			for _, name := range names {
				buffer.WriteString(name)
				buffer.WriteByte('\n')
			}
			return okBody(buffer.String())
		}

		name, _ := splitSegment(target)
		data, err := h.vault.Get(r.Context(), username, name)
		if errors.Is(err, store.ErrVaultNotFound) {
			return notFound(r.URL.Path)
		}
		if err != nil {
			h.logger.Error("vault read failed", "username", username, "vault", name, "error", err)
			return serverError("Cannot load the requested vault.")
		}
		return okBlob(data)

	case http.MethodPost:
		if target != "" {
			return methodNotAllowed(r.URL.Path)
		}
		name := r.Header.Get("Vault-Name")
		if name == "" {
			return badRequest("Vault name cannot be empty.")
		}
		data, err := readBlob(r)
		if errors.Is(err, errBlobTooLarge) {
			return payloadTooLarge()
		}
		if err != nil {
			return badRequest("Cannot read request body.")
		}
		err = h.vault.Create(r.Context(), username, name, data)
		if errors.Is(err, store.ErrDuplicateVault) {
			return badRequest(fmt.Sprintf("The vault '%s' already exists.", name))
		}
		if err != nil {
			h.logger.Error("vault create failed", "username", username, "vault", name, "error", err)
			return serverError("Cannot store vault data.")
		}
		return ok()

	case http.MethodPatch:
		if target == "" {
			return methodNotAllowed(r.URL.Path)
		}
		name, _ := splitSegment(target)
		data, err := readBlob(r)
		if errors.Is(err, errBlobTooLarge) {
			return payloadTooLarge()
		}
		if err != nil {
			return badRequest("Cannot read request body.")
		}
		err = h.vault.Update(r.Context(), username, name, data)
		if errors.Is(err, store.ErrVaultNotFound) {
			return badRequest(fmt.Sprintf("The vault '%s' doesn't exist.", name))
		}
		if err != nil {
			h.logger.Error("vault update failed", "username", username, "vault", name, "error", err)
			return serverError("Cannot update the requested vault.")
		}
		return ok()

	case http.MethodDelete:
		if target == "" {
			return methodNotAllowed(r.URL.Path)
		}
		name, _ := splitSegment(target)
		err := h.vault.Delete(r.Context(), username, name)
		if errors.Is(err, store.ErrVaultNotFound) {
			return badRequest(fmt.Sprintf("The vault '%s' doesn't exist.", name))
		}
		if err != nil {
			h.logger.Error("vault delete failed", "username", username, "vault", name, "error", err)
			return serverError("Cannot delete the requested vault.")
		}
		return ok()

	default:
		return methodNotAllowed(r.URL.Path)
	}
}

func (h *Handler) tokenRoute(r *http.Request, target string) response {
	username, authenticated, err := h.authenticate(r)
	if err != nil {
		h.logger.Error("auth check failed", "error", err)
		return serverError("Cannot verify credentials.")
	}
	if !authenticated {
		return unauthorized(r.URL.Path)
	}

	switch r.Method {
	case http.MethodGet:
		if target != "" {
			return methodNotAllowed(r.URL.Path)
		}
		tokens, err := h.auth.ListTokens(r.Context(), username)
		if err != nil {
			h.logger.Error("token listing failed", "username", username, "error", err)
			return serverError("Cannot load the username tokens.")
		}
		var buffer strings.Builder
		for _, token := range tokens {
			lastUsage := "N/A"
			if token.LastUsedAt != nil {
				lastUsage = token.LastUsedAt.UTC().Format("2006-01-02 15:04:05")
			}
			fmt.Fprintf(&buffer, "Name: %s\nToken: %s\nCreation-Date: %s\nLast-Usage: %s\n\n",
				token.Name,
				token.Value,
				token.CreatedAt.UTC().Format("2006-01-02 15:04:05"),
				lastUsage,
			)
		}
		return okBody(buffer.String())

	case http.MethodPost:
		if target != "" {
			return methodNotAllowed(r.URL.Path)
		}
		name := r.Header.Get("Token-Name")
		if name == "" {
			return badRequest("Token name cannot be empty.")
		}
		credential, err := h.auth.IssueToken(r.Context(), username, name)
		if errors.Is(err, store.ErrDuplicateToken) {
			return badRequest(fmt.Sprintf("The token '%s' already exists.", name))
		}
		if err != nil {
			h.logger.Error("token create failed", "username", username, "token", name, "error", err)
			return serverError("Cannot set a token.")
		}
		return okBody(credential)

	case http.MethodDelete:
		if target == "" {
			return methodNotAllowed(r.URL.Path)
		}
		name, _ := splitSegment(target)
		err := h.auth.DeleteToken(r.Context(), username, name)
		if errors.Is(err, store.ErrTokenNotFound) {
			return badRequest(fmt.Sprintf("The token '%s' doesn't exist.", name))
		}
		if err != nil {
			h.logger.Error("token delete failed", "username", username, "token", name, "error", err)
			return serverError("Cannot delete the token.")
		}
		return ok()

	default:
		return methodNotAllowed(r.URL.Path)
	}
}

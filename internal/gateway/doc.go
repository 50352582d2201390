// Package gateway orchestrates the vault-gateway server components.
//
// # Overview
//
// The gateway package is the central coordinator of the vault-gateway
// server. It owns and manages all major components: the SQLite store, the
// auth and vault services, the versioned API handler, and the HTTPS server.
//
// # Lifecycle
//
// New() builds the component graph from a validated config. Run() loads the
// configured TLS material, starts the listener and the expired-session purge
// loop, and blocks until the context is canceled or the server fails. The
// server only ever speaks TLS; missing or unreadable certificate material
// yields ErrMissingTLSMaterial before the listener is opened.
//
// Shutdown drains in-flight requests through http.Server.Shutdown and then
// closes the store.
//
// # Static Files
//
// When server.docroot is configured, requests outside /api/ are served from
// that directory so a web client can be hosted next to the API.
package gateway

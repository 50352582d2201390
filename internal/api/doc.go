// Package api implements the HTTP dispatcher for the vault REST interface.
//
// Requests are routed by walking the path one segment at a time under the
// /api prefix. The only published version is v1 and an explicit /v1 segment
// is optional. Protected routes authenticate via the Username header
// combined with either a Session-Id credential (header or cookie) or an
// X-Auth-Token credential.
//
// All responses are plain text except vault payloads, which are served as
// opaque octet streams. Every response carries permissive CORS headers and
// OPTIONS requests are answered as preflights before any routing runs.
package api

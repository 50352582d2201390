// ABOUTME: Response builder with a fixed set of status constructors
// ABOUTME: Centralizes the status/body/CORS contract away from routing logic

package api

import (
	"fmt"
	"net/http"
)

// response is a complete API response ready for the write path.
type response struct {
	status      int
	contentType string
	body        []byte
	cookie      *http.Cookie
}

func ok() response {
	return response{status: http.StatusOK}
}

func okBody(body string) response {
	return response{status: http.StatusOK, body: []byte(body)}
}

// okBlob carries raw vault bytes.
func okBlob(data []byte) response {
	return response{status: http.StatusOK, contentType: "application/octet-stream", body: data}
}

func badRequest(why string) response {
	return response{status: http.StatusBadRequest, body: []byte(why)}
}

func unauthorized(target string) response {
	return response{
		status: http.StatusUnauthorized,
		body:   fmt.Appendf(nil, "The resource '%s' requires authorization.", target),
	}
}

func notFound(target string) response {
	return response{
		status: http.StatusNotFound,
		body:   fmt.Appendf(nil, "The resource '%s' was not found.", target),
	}
}

func methodNotAllowed(target string) response {
	return response{
		status: http.StatusMethodNotAllowed,
		body:   fmt.Appendf(nil, "The resource '%s' doesn't support the requested method.", target),
	}
}

func payloadTooLarge() response {
	return response{
		status: http.StatusRequestEntityTooLarge,
		body:   fmt.Appendf(nil, "Vault data cannot exceed %d bytes.", maxBlobSize),
	}
}

func serverError(what string) response {
	return response{
		status: http.StatusInternalServerError,
		body:   fmt.Appendf(nil, "An error occurred: '%s'", what),
	}
}

// write sends the response. Every API response carries permissive CORS
// headers so browser clients on any origin can talk to the vault.
func write(w http.ResponseWriter, res response) {
	w.Header().Set("Access-Control-Allow-Origin", "*")
	contentType := res.contentType
	if contentType == "" {
		contentType = "text/plain; charset=utf-8"
	}
	w.Header().Set("Content-Type", contentType)
	if res.cookie != nil {
		http.SetCookie(w, res.cookie)
	}
	w.WriteHeader(res.status)
	if len(res.body) > 0 {
		_, _ = w.Write(res.body)
	}
}

// writePreflight answers a CORS preflight before any routing logic runs.
func writePreflight(w http.ResponseWriter) {
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PATCH, DELETE")
	w.Header().Set("Access-Control-Allow-Headers", "*")
	w.Header().Set("Access-Control-Max-Age", "86400")
	w.WriteHeader(http.StatusOK)
}

package web

// errors.go provides unified error response handling for the API.
//
// Technical detail is logged server-side with the request ID for
// correlation; clients get a sanitized JSON envelope. Persistence
// failures map to status codes by kind, and the underlying database
// error text never reaches the client.

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/dexapi/pokedex/internal/logging"
	"github.com/dexapi/pokedex/internal/store"
)

// ErrorResponse is the JSON structure for API error responses.
type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

// respondError logs the failure and writes a sanitized JSON envelope.
func respondError(w http.ResponseWriter, r *http.Request, status int, code, message string) {
	logging.FromContext(r.Context()).Error("request error",
		"path", r.URL.Path,
		"method", r.Method,
		"status", status,
		"code", code,
	)

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(ErrorResponse{Error: message, Code: code})
}

// respondPersistError maps a store failure to a status code and logs the
// technical cause.
func respondPersistError(w http.ResponseWriter, r *http.Request, err error) {
	status := http.StatusInternalServerError
	code := "storage_error"

	var pe *store.PersistError
	if errors.As(err, &pe) {
		switch pe.Kind {
		case store.KindTimeout:
			status = http.StatusGatewayTimeout
			code = "storage_timeout"
		case store.KindConnectivity:
			status = http.StatusServiceUnavailable
			code = "storage_unavailable"
		}
	}

	logging.FromContext(r.Context()).Error("lookup failed",
		"path", r.URL.Path,
		"status", status,
		"error", err.Error(),
	)

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(ErrorResponse{Error: "lookup failed", Code: code})
}

// writeJSON encodes v as JSON and writes it to w.
func writeJSON(w http.ResponseWriter, r *http.Request, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logging.FromContext(r.Context()).Error("json encode error", "error", err)
	}
}

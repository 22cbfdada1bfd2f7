package server

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/bobmcallan/networth/internal/models"
)

// ErrorResponse is the standard error format for REST API responses.
type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code,omitempty"`
}

// WriteJSON writes a JSON response with the given status code. The body is
// encoded before the status is sent; a value that cannot be encoded becomes
// a 500.
func WriteJSON(w http.ResponseWriter, statusCode int, data interface{}) {
	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(data); err != nil {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte(`{"error":"Internal server error"}` + "\n"))
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	w.Write(buf.Bytes())
}

// WriteError writes a JSON error response.
func WriteError(w http.ResponseWriter, statusCode int, message string) {
	WriteJSON(w, statusCode, ErrorResponse{Error: message})
}

// WriteErrorWithCode writes a JSON error response with an error code.
func WriteErrorWithCode(w http.ResponseWriter, statusCode int, message, code string) {
	WriteJSON(w, statusCode, ErrorResponse{Error: message, Code: code})
}

// RequireMethod validates the HTTP method and returns true if it matches.
// If it doesn't match, it writes a 405 response and returns false.
func RequireMethod(w http.ResponseWriter, r *http.Request, methods ...string) bool {
	for _, m := range methods {
		if r.Method == m {
			return true
		}
	}
	w.Header().Set("Allow", strings.Join(methods, ", "))
	WriteError(w, http.StatusMethodNotAllowed, "Method not allowed")
	return false
}

// Error codes returned by the pipeline endpoints.
const (
	CodeInvalidConfig     = "invalid_config"
	CodeNoData            = "no_data"
	CodeSourceUnavailable = "source_unavailable"
)

// WriteServiceError maps pipeline errors to status codes:
// configuration 400, no usable data 503, source fetch 502, anything else 500.
func WriteServiceError(w http.ResponseWriter, err error) {
	switch {
	case models.IsConfigError(err):
		WriteErrorWithCode(w, http.StatusBadRequest, err.Error(), CodeInvalidConfig)
	case errors.Is(err, models.ErrNoData):
		WriteErrorWithCode(w, http.StatusServiceUnavailable, err.Error(), CodeNoData)
	case errors.Is(err, models.ErrSourceUnavailable):
		WriteErrorWithCode(w, http.StatusBadGateway, "sheet source unavailable", CodeSourceUnavailable)
	default:
		WriteError(w, http.StatusInternalServerError, "Internal server error")
	}
}

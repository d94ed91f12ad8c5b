package handlers

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/scrypster/kindred/internal/engine"
	"github.com/scrypster/kindred/internal/storage"
)

// Error codes returned in ErrorResponse.Code.
const (
	CodeInvalidDepth     = engine.CodeInvalidDepth
	CodeInvalidInput     = engine.CodeInvalidInput
	CodeNotFound         = "NOT_FOUND"
	CodeStoreUnavailable = "STORE_UNAVAILABLE"
	CodeInternal         = "INTERNAL"
	CodeUnauthorized     = "UNAUTHORIZED"
	CodeRateLimited      = "RATE_LIMITED"
	CodeMethodNotAllowed = "METHOD_NOT_ALLOWED"
)

// respondJSON writes a JSON response with the given status code.
func respondJSON(w http.ResponseWriter, statusCode int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		// Headers already sent; nothing more to write.
		slog.Error("failed to encode JSON response", "error", err)
	}
}

// respondError writes an error response with an explicit status and code.
func respondError(w http.ResponseWriter, statusCode int, code, message string) {
	respondJSON(w, statusCode, ErrorResponse{Error: message, Code: code})
}

// respondEngineError maps an engine or store error to a status and code.
// Internal failures are logged and reported without their detail.
func respondEngineError(w http.ResponseWriter, r *http.Request, logger *slog.Logger, err error) {
	switch {
	case errors.Is(err, engine.ErrInvalidDepth):
		respondError(w, http.StatusBadRequest, CodeInvalidDepth, err.Error())
	case errors.Is(err, storage.ErrInvalidInput):
		respondError(w, http.StatusBadRequest, CodeInvalidInput, err.Error())
	case errors.Is(err, storage.ErrNotFound):
		respondError(w, http.StatusNotFound, CodeNotFound, "not found")
	case errors.Is(err, storage.ErrStoreUnavailable):
		respondError(w, http.StatusServiceUnavailable, CodeStoreUnavailable, "relationship store unavailable")
	default:
		logger.Error("request failed",
			"method", r.Method,
			"path", r.URL.Path,
			"request_id", RequestIDFrom(r.Context()),
			"error", err)
		respondError(w, http.StatusInternalServerError, CodeInternal, "internal error")
	}
}

// parseDepth reads the optional max_depth query parameter. A missing value
// yields nil so the engine applies its default.
func parseDepth(r *http.Request) (*int, bool) {
	raw := r.URL.Query().Get("max_depth")
	if raw == "" {
		return nil, true
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return nil, false
	}
	return &n, true
}

// methodNotAllowed writes a 405 in the API error format.
func methodNotAllowed(w http.ResponseWriter) {
	respondError(w, http.StatusMethodNotAllowed, CodeMethodNotAllowed, "method not allowed")
}

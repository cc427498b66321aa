package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/rishabhd491/savor-rbac-regional-platform/internal/logger"
	"github.com/rishabhd491/savor-rbac-regional-platform/internal/policy"
	"github.com/rishabhd491/savor-rbac-regional-platform/internal/validation"
)

const maxBodyBytes = 1 << 20

// writeJSON writes a successful response
func (h *Handler) writeJSON(w http.ResponseWriter, r *http.Request, statusCode int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)

	if err := json.NewEncoder(w).Encode(body); err != nil {
		h.logger.Error("response_encoding_failed", "Failed to encode response", logger.RequestID(r.Context()), err, nil)
	}
}

// writeErrorResponse writes an error response in JSON format
func (h *Handler) writeErrorResponse(w http.ResponseWriter, statusCode int, message, requestID string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)

	errorResponse := map[string]interface{}{
		"error":      message,
		"timestamp":  time.Now().UTC().Format(time.RFC3339),
		"request_id": requestID,
	}

	json.NewEncoder(w).Encode(errorResponse)
}

// writeError maps a service error to its status code
func (h *Handler) writeError(w http.ResponseWriter, r *http.Request, action string, err error) {
	requestID := logger.RequestID(r.Context())

	var (
		forbidden *policy.ForbiddenError
		notFound  *policy.NotFoundError
		invalid   validation.ValidationError
	)

	switch {
	case errors.Is(err, policy.ErrAuthenticationRequired):
		h.writeErrorResponse(w, http.StatusUnauthorized, "Authentication required", requestID)
	case errors.As(err, &forbidden):
		h.logger.Warn(action, "Request denied by policy", requestID, map[string]interface{}{
			"action": forbidden.Action,
			"reason": forbidden.Reason,
		})
		h.writeErrorResponse(w, http.StatusForbidden, forbidden.Reason, requestID)
	case errors.As(err, &notFound):
		h.writeErrorResponse(w, http.StatusNotFound, notFound.Error(), requestID)
	case errors.As(err, &invalid):
		h.writeErrorResponse(w, http.StatusBadRequest, invalid.Error(), requestID)
	default:
		h.logger.Error(action, "Request failed", requestID, err, map[string]interface{}{
			"method": r.Method,
			"path":   r.URL.Path,
		})
		h.writeErrorResponse(w, http.StatusInternalServerError, "Internal server error", requestID)
	}
}

// decodeJSON reads a JSON body, rejecting unknown fields and trailing data
func decodeJSON(r *http.Request, v interface{}) error {
	decoder := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	decoder.DisallowUnknownFields()

	if err := decoder.Decode(v); err != nil {
		return validation.ValidationError{Field: "body", Message: fmt.Sprintf("invalid JSON format: %v", err)}
	}
	if decoder.More() {
		return validation.ValidationError{Field: "body", Message: "unexpected data after JSON object"}
	}
	return nil
}

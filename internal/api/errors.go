package api

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/hearthside/tourplan/internal/middleware"
)

// Error codes returned in the error envelope.
const (
	ErrCodeValidation      = "validation_error"
	ErrCodeBadRequest      = "bad_request"
	ErrCodeNotFound        = "not_found"
	ErrCodeDuplicateID     = "duplicate_property"
	ErrCodeUnsupportedType = "unsupported_type"
	ErrCodeMapUnavailable  = "map_unavailable"
	ErrCodeInternal        = "internal_error"
)

// ErrorDetail is the inner error payload.
type ErrorDetail struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// ErrorResponse is the JSON envelope for all error responses.
type ErrorResponse struct {
	Error ErrorDetail `json:"error"`
}

// WriteError writes a JSON error response and records the error code in the
// request context so the logging middleware can pick it up.
func WriteError(w http.ResponseWriter, r *http.Request, status int, code, message string) {
	ctx := middleware.SetErrorCode(r.Context(), code)
	middleware.UpdateResponseContext(w, ctx)

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(ErrorResponse{Error: ErrorDetail{Code: code, Message: message}}); err != nil {
		slog.ErrorContext(ctx, "failed to encode error response", "error", err)
	}
}

// WriteJSON writes v as a JSON response with the given status.
func WriteJSON(ctx context.Context, w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.ErrorContext(ctx, "failed to encode response", "error", err)
	}
}

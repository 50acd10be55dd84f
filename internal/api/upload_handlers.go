package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/hearthside/tourplan/internal/upload"
)

// UploadHandlers signs direct-to-storage uploads for property photos.
type UploadHandlers struct {
	service *upload.Service
}

func NewUploadHandlers(service *upload.Service) *UploadHandlers {
	return &UploadHandlers{service: service}
}

type signUploadRequest struct {
	ContentType string  `json:"content_type"`
	SizeBytes   int64   `json:"size_bytes"`
	PropertyID  *string `json:"property_id,omitempty"`
}

// SignUpload handles POST /uploads/sign. The returned URL accepts a
// single PUT of the photo bytes until it expires.
func (h *UploadHandlers) SignUpload(w http.ResponseWriter, r *http.Request) {
	var req signUploadRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, r, http.StatusBadRequest, ErrCodeBadRequest, "invalid JSON body")
		return
	}
	if req.ContentType == "" {
		WriteError(w, r, http.StatusBadRequest, ErrCodeValidation, "content_type is required")
		return
	}
	if req.SizeBytes <= 0 {
		WriteError(w, r, http.StatusBadRequest, ErrCodeValidation, "size_bytes must be positive")
		return
	}

	resp, err := h.service.GenerateSignedURL(r.Context(), upload.SignedURLRequest{
		ContentType: req.ContentType,
		SizeBytes:   req.SizeBytes,
		PropertyID:  req.PropertyID,
	})
	if err != nil {
		switch {
		case errors.Is(err, upload.ErrUnsupportedType):
			WriteError(w, r, http.StatusUnsupportedMediaType, ErrCodeUnsupportedType, "content type must be image/jpeg, image/png, or image/webp")
		case errors.Is(err, upload.ErrFileTooLarge):
			WriteError(w, r, http.StatusRequestEntityTooLarge, ErrCodeValidation, "file is too large")
		case errors.Is(err, upload.ErrInvalidPropertyID):
			WriteError(w, r, http.StatusBadRequest, ErrCodeValidation, "property_id is invalid")
		default:
			slog.ErrorContext(r.Context(), "failed to sign upload", "error", err)
			WriteError(w, r, http.StatusInternalServerError, ErrCodeInternal, "failed to generate signed URL")
		}
		return
	}
	WriteJSON(r.Context(), w, http.StatusOK, resp)
}

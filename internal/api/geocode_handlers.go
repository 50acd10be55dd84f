package api

import (
	"errors"
	"net/http"

	"github.com/hearthside/tourplan/internal/geocode"
)

// GeocodeHandlers serves address search for the add-property flow.
type GeocodeHandlers struct {
	client *geocode.Client
}

func NewGeocodeHandlers(client *geocode.Client) *GeocodeHandlers {
	return &GeocodeHandlers{client: client}
}

type geocodeSearchResponse struct {
	Results []geocode.Result `json:"results"`
}

// Search handles GET /geocode?q=.
func (h *GeocodeHandlers) Search(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query().Get("q")
	if query == "" {
		WriteError(w, r, http.StatusBadRequest, ErrCodeValidation, "query parameter q is required")
		return
	}

	results, err := h.client.Search(r.Context(), query)
	if err != nil {
		if errors.Is(err, geocode.ErrNoAPIKey) {
			WriteError(w, r, http.StatusNotFound, ErrCodeNotFound, "geocoding is not configured")
			return
		}
		WriteError(w, r, http.StatusBadGateway, ErrCodeInternal, "geocoding request failed")
		return
	}
	WriteJSON(r.Context(), w, http.StatusOK, geocodeSearchResponse{Results: results})
}

package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/hearthside/tourplan/internal/maps"
	"github.com/hearthside/tourplan/internal/tour"
)

// MapHandlers serves the map view of the active schedule.
type MapHandlers struct {
	store     *tour.Store
	loader    *maps.Loader
	presenter *maps.Presenter
}

func NewMapHandlers(store *tour.Store, loader *maps.Loader, presenter *maps.Presenter) *MapHandlers {
	return &MapHandlers{store: store, loader: loader, presenter: presenter}
}

// GetMap handles GET /map. The map style is loaded on first use; while it
// is unavailable, whether unconfigured or failed, the view is returned in
// placeholder mode and the next request retries the load.
func (h *MapHandlers) GetMap(w http.ResponseWriter, r *http.Request) {
	if !h.loader.Loaded() {
		if _, err := h.loader.Load(r.Context()); err != nil && !errors.Is(err, maps.ErrNoAPIKey) {
			slog.WarnContext(r.Context(), "map style load failed", "error", err)
		}
	}
	view := h.presenter.BuildView(h.store.Schedule().Properties, h.loader.Loaded())
	WriteJSON(r.Context(), w, http.StatusOK, view)
}

// GetMapStyle handles GET /map/style, returning the raw style document.
func (h *MapHandlers) GetMapStyle(w http.ResponseWriter, r *http.Request) {
	style, err := h.loader.Load(r.Context())
	if err != nil {
		if errors.Is(err, maps.ErrNoAPIKey) {
			WriteError(w, r, http.StatusNotFound, ErrCodeNotFound, "no map style is configured")
			return
		}
		WriteError(w, r, http.StatusServiceUnavailable, ErrCodeMapUnavailable, "map style could not be loaded")
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(style)
}

type selectMarkerRequest struct {
	PropertyID string `json:"propertyId"`
}

// SelectMarker handles POST /map/select, highlighting a property on the
// map view.
func (h *MapHandlers) SelectMarker(w http.ResponseWriter, r *http.Request) {
	var req selectMarkerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, r, http.StatusBadRequest, ErrCodeBadRequest, "invalid JSON body")
		return
	}
	if req.PropertyID == "" {
		WriteError(w, r, http.StatusBadRequest, ErrCodeValidation, "propertyId is required")
		return
	}
	h.presenter.Select(req.PropertyID)
	w.WriteHeader(http.StatusNoContent)
}

// ClearSelection handles DELETE /map/select.
func (h *MapHandlers) ClearSelection(w http.ResponseWriter, r *http.Request) {
	h.presenter.ClearSelection()
	w.WriteHeader(http.StatusNoContent)
}

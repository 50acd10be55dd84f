package api

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/hearthside/tourplan/internal/maps"
	"github.com/hearthside/tourplan/internal/tour"
)

func TestGetMapNoAPIKey(t *testing.T) {
	mux, _ := newTestRouter(t)

	doJSON(t, mux, http.MethodPost, "/schedule/properties", validProperty())

	rec := doJSON(t, mux, http.MethodGet, "/map", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	view := decodeBody[maps.View](t, rec)
	if view.MapReady {
		t.Error("expected map not ready without an API key")
	}
	if len(view.Markers) != 1 {
		t.Errorf("expected 1 marker, got %d", len(view.Markers))
	}
}

func newMapTestRouter(t *testing.T, styleServer *httptest.Server) (*http.ServeMux, *tour.Store) {
	t.Helper()
	store, err := tour.NewStore(context.Background(), tour.NewInMemoryRepository(), fixedNow)
	if err != nil {
		t.Fatalf("failed to create store: %v", err)
	}
	loader := maps.NewLoader("test-key", styleServer.URL+"/style.json", styleServer.Client())
	mux := http.NewServeMux()
	handlers := NewMapHandlers(store, loader, maps.NewPresenter())
	mux.HandleFunc("GET /map", handlers.GetMap)
	mux.HandleFunc("GET /map/style", handlers.GetMapStyle)
	mux.HandleFunc("POST /map/select", handlers.SelectMarker)
	mux.HandleFunc("DELETE /map/select", handlers.ClearSelection)
	return mux, store
}

func TestGetMapWithStyle(t *testing.T) {
	styleServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"version":8}`))
	}))
	defer styleServer.Close()

	mux, store := newMapTestRouter(t, styleServer)
	if err := store.AddProperty(context.Background(), tour.Property{
		ID:          "p1",
		Address:     "12 Oak Lane",
		ViewingTime: "13:30",
		Location:    tour.Point{Lat: 10, Lng: 20},
	}); err != nil {
		t.Fatalf("failed to add property: %v", err)
	}

	rec := doJSON(t, mux, http.MethodGet, "/map", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	view := decodeBody[maps.View](t, rec)
	if !view.MapReady {
		t.Error("expected map ready")
	}
	if view.Center != (tour.Point{Lat: 10, Lng: 20}) {
		t.Errorf("unexpected center %+v", view.Center)
	}
	if view.Markers[0].Label != "1:30 PM" {
		t.Errorf("expected marker label 1:30 PM, got %q", view.Markers[0].Label)
	}
}

func TestGetMapStyleFetchFailurePlaceholder(t *testing.T) {
	styleServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer styleServer.Close()

	mux, store := newMapTestRouter(t, styleServer)
	if err := store.AddProperty(context.Background(), tour.Property{
		ID:          "p1",
		Address:     "12 Oak Lane",
		ViewingTime: "09:00",
		Location:    tour.Point{Lat: 10, Lng: 20},
	}); err != nil {
		t.Fatalf("failed to add property: %v", err)
	}

	// A failed style load degrades to placeholder mode, not an error.
	rec := doJSON(t, mux, http.MethodGet, "/map", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	view := decodeBody[maps.View](t, rec)
	if view.MapReady {
		t.Error("expected map not ready after failed style load")
	}
	if len(view.Markers) != 1 {
		t.Errorf("expected markers despite failed style load, got %d", len(view.Markers))
	}

	// The style endpoint still reports the failure.
	rec = doJSON(t, mux, http.MethodGet, "/map/style", nil)
	if rec.Code != http.StatusServiceUnavailable {
		t.Errorf("expected 503 from style endpoint, got %d", rec.Code)
	}
}

func TestGetMapStyle(t *testing.T) {
	styleServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"version":8}`))
	}))
	defer styleServer.Close()

	mux, _ := newMapTestRouter(t, styleServer)
	rec := doJSON(t, mux, http.MethodGet, "/map/style", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if got := rec.Body.String(); got != `{"version":8}` {
		t.Errorf("unexpected style body %q", got)
	}
}

func TestSelectMarker(t *testing.T) {
	styleServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{}`))
	}))
	defer styleServer.Close()

	mux, store := newMapTestRouter(t, styleServer)
	if err := store.AddProperty(context.Background(), tour.Property{ID: "p1", Address: "a", ViewingTime: "09:00"}); err != nil {
		t.Fatalf("failed to add property: %v", err)
	}

	rec := doJSON(t, mux, http.MethodPost, "/map/select", map[string]string{"propertyId": "p1"})
	if rec.Code != http.StatusNoContent {
		t.Fatalf("expected 204, got %d", rec.Code)
	}

	view := decodeBody[maps.View](t, doJSON(t, mux, http.MethodGet, "/map", nil))
	if view.SelectedID != "p1" {
		t.Errorf("expected selected p1, got %q", view.SelectedID)
	}

	rec = doJSON(t, mux, http.MethodDelete, "/map/select", nil)
	if rec.Code != http.StatusNoContent {
		t.Fatalf("expected 204, got %d", rec.Code)
	}
	view = decodeBody[maps.View](t, doJSON(t, mux, http.MethodGet, "/map", nil))
	if view.SelectedID != "" {
		t.Errorf("expected selection cleared, got %q", view.SelectedID)
	}
}

func TestSelectMarkerRequiresID(t *testing.T) {
	mux, _ := newTestRouter(t)

	rec := doJSON(t, mux, http.MethodPost, "/map/select", map[string]string{})
	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", rec.Code)
	}
}

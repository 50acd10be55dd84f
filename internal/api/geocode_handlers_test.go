package api

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/hearthside/tourplan/internal/geocode"
)

func newGeocodeTestRouter(t *testing.T, upstream *httptest.Server) *http.ServeMux {
	t.Helper()
	client := geocode.NewClient("test-key", upstream.URL, upstream.Client())
	mux := http.NewServeMux()
	mux.HandleFunc("GET /geocode", NewGeocodeHandlers(client).Search)
	return mux
}

func TestGeocodeSearch(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"features":[{"place_name":"12 Oak Lane, Seattle","center":[-122.3,47.6]}]}`))
	}))
	defer upstream.Close()

	mux := newGeocodeTestRouter(t, upstream)
	rec := doJSON(t, mux, http.MethodGet, "/geocode?q=12+Oak+Lane", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	resp := decodeBody[geocodeSearchResponse](t, rec)
	if len(resp.Results) != 1 {
		t.Fatalf("expected 1 result, got %d", len(resp.Results))
	}
	if resp.Results[0].Address != "12 Oak Lane, Seattle" {
		t.Errorf("unexpected address %q", resp.Results[0].Address)
	}
	if resp.Results[0].Location.Lat != 47.6 || resp.Results[0].Location.Lng != -122.3 {
		t.Errorf("unexpected location %+v", resp.Results[0].Location)
	}
}

func TestGeocodeMissingQuery(t *testing.T) {
	upstream := httptest.NewServer(http.NotFoundHandler())
	defer upstream.Close()

	mux := newGeocodeTestRouter(t, upstream)
	rec := doJSON(t, mux, http.MethodGet, "/geocode", nil)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", rec.Code)
	}
}

func TestGeocodeUpstreamError(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}))
	defer upstream.Close()

	mux := newGeocodeTestRouter(t, upstream)
	rec := doJSON(t, mux, http.MethodGet, "/geocode?q=anywhere", nil)
	if rec.Code != http.StatusBadGateway {
		t.Errorf("expected 502, got %d", rec.Code)
	}
}

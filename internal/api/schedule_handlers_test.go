package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/hearthside/tourplan/internal/maps"
	"github.com/hearthside/tourplan/internal/middleware"
	"github.com/hearthside/tourplan/internal/share"
	"github.com/hearthside/tourplan/internal/tour"
)

func fixedNow() time.Time {
	return time.Date(2025, 6, 15, 10, 30, 0, 0, time.UTC)
}

func newTestRouter(t *testing.T) (*http.ServeMux, *tour.Store) {
	t.Helper()
	store, err := tour.NewStore(context.Background(), tour.NewInMemoryRepository(), fixedNow)
	if err != nil {
		t.Fatalf("failed to create store: %v", err)
	}
	metrics := middleware.NewMetrics()
	schedule := NewScheduleHandlers(store, metrics)
	publisher := share.NewPublisher(store, "https://tours.example.com", fixedNow)
	mux := NewRouter(Handlers{
		Schedule: schedule,
		Tours:    NewTourHandlers(publisher, schedule, metrics),
		Maps:     NewMapHandlers(store, maps.NewLoader("", "", nil), maps.NewPresenter()),
		Health:   NewHealthHandlers(nil),
	})
	return mux, store
}

func doJSON(t *testing.T, mux *http.ServeMux, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("failed to encode body: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)
	return rec
}

func decodeBody[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	if err := json.NewDecoder(rec.Body).Decode(&v); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	return v
}

func validProperty() map[string]any {
	return map[string]any{
		"address":       "12 Oak Lane",
		"price":         500000,
		"bedrooms":      3,
		"bathrooms":     2.5,
		"squareFootage": 1800,
		"viewingTime":   "13:30",
		"location":      map[string]float64{"lat": 47.6, "lng": -122.3},
	}
}

func TestGetScheduleEmpty(t *testing.T) {
	mux, _ := newTestRouter(t)

	rec := doJSON(t, mux, http.MethodGet, "/schedule", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	resp := decodeBody[scheduleResponse](t, rec)
	if resp.TourDate != "2025-06-15" {
		t.Errorf("expected tour date 2025-06-15, got %q", resp.TourDate)
	}
	if len(resp.Properties) != 0 {
		t.Errorf("expected no properties, got %d", len(resp.Properties))
	}
}

func TestAddProperty(t *testing.T) {
	mux, store := newTestRouter(t)

	rec := doJSON(t, mux, http.MethodPost, "/schedule/properties", validProperty())
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}
	resp := decodeBody[propertyResponse](t, rec)
	if resp.ID == "" {
		t.Error("expected a generated property id")
	}
	if resp.PriceDisplay != "$500,000" {
		t.Errorf("expected price display $500,000, got %q", resp.PriceDisplay)
	}
	if resp.ViewingTimeDisplay != "1:30 PM" {
		t.Errorf("expected viewing time display 1:30 PM, got %q", resp.ViewingTimeDisplay)
	}
	if got := len(store.Schedule().Properties); got != 1 {
		t.Errorf("expected 1 property in store, got %d", got)
	}
}

func TestAddPropertyValidation(t *testing.T) {
	mux, _ := newTestRouter(t)

	tests := []struct {
		name   string
		mutate func(map[string]any)
	}{
		{"missing address", func(m map[string]any) { m["address"] = "" }},
		{"bad viewing time", func(m map[string]any) { m["viewingTime"] = "25:00" }},
		{"negative price", func(m map[string]any) { m["price"] = -1 }},
		{"negative bedrooms", func(m map[string]any) { m["bedrooms"] = -1 }},
		{"latitude out of range", func(m map[string]any) { m["location"] = map[string]float64{"lat": 91, "lng": 0} }},
		{"bad image url", func(m map[string]any) { m["imageUrl"] = "ftp://photos.example.com/house.jpg" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			body := validProperty()
			tt.mutate(body)
			rec := doJSON(t, mux, http.MethodPost, "/schedule/properties", body)
			if rec.Code != http.StatusBadRequest {
				t.Fatalf("expected 400, got %d", rec.Code)
			}
			resp := decodeBody[ErrorResponse](t, rec)
			if resp.Error.Code != ErrCodeValidation {
				t.Errorf("expected code %s, got %s", ErrCodeValidation, resp.Error.Code)
			}
		})
	}
}

func TestGetScheduleSortedByViewingTime(t *testing.T) {
	mux, _ := newTestRouter(t)

	for _, tm := range []string{"15:00", "09:00", "12:30"} {
		body := validProperty()
		body["viewingTime"] = tm
		if rec := doJSON(t, mux, http.MethodPost, "/schedule/properties", body); rec.Code != http.StatusCreated {
			t.Fatalf("add failed: %d", rec.Code)
		}
	}

	rec := doJSON(t, mux, http.MethodGet, "/schedule", nil)
	resp := decodeBody[scheduleResponse](t, rec)
	want := []string{"09:00", "12:30", "15:00"}
	if len(resp.Properties) != len(want) {
		t.Fatalf("expected %d properties, got %d", len(want), len(resp.Properties))
	}
	for i, w := range want {
		if resp.Properties[i].ViewingTime != w {
			t.Errorf("position %d: expected %s, got %s", i, w, resp.Properties[i].ViewingTime)
		}
	}
}

func TestUpdatePropertyUnknownIDNoop(t *testing.T) {
	mux, _ := newTestRouter(t)

	rec := doJSON(t, mux, http.MethodPatch, "/schedule/properties/no-such-id", map[string]any{"price": 1})
	if rec.Code != http.StatusNoContent {
		t.Errorf("expected 204 for unknown id, got %d", rec.Code)
	}
}

func TestUpdateProperty(t *testing.T) {
	mux, store := newTestRouter(t)

	rec := doJSON(t, mux, http.MethodPost, "/schedule/properties", validProperty())
	created := decodeBody[propertyResponse](t, rec)

	rec = doJSON(t, mux, http.MethodPatch, "/schedule/properties/"+created.ID, map[string]any{
		"price":       600000,
		"viewingTime": "09:15",
	})
	if rec.Code != http.StatusNoContent {
		t.Fatalf("expected 204, got %d: %s", rec.Code, rec.Body.String())
	}

	props := store.Schedule().Properties
	if props[0].Price != 600000 {
		t.Errorf("expected price 600000, got %d", props[0].Price)
	}
	if props[0].ViewingTime != "09:15" {
		t.Errorf("expected viewing time 09:15, got %s", props[0].ViewingTime)
	}
	if props[0].Address != "12 Oak Lane" {
		t.Errorf("untouched field changed: %s", props[0].Address)
	}
}

func TestUpdatePropertyRejectsInvalidValues(t *testing.T) {
	mux, store := newTestRouter(t)

	rec := doJSON(t, mux, http.MethodPost, "/schedule/properties", validProperty())
	created := decodeBody[propertyResponse](t, rec)

	tests := []struct {
		name string
		body map[string]any
	}{
		{"negative bedrooms", map[string]any{"bedrooms": -3}},
		{"negative bathrooms", map[string]any{"bathrooms": -1}},
		{"negative square footage", map[string]any{"squareFootage": -100}},
		{"latitude out of range", map[string]any{"location": map[string]float64{"lat": 91, "lng": 0}}},
		{"longitude out of range", map[string]any{"location": map[string]float64{"lat": 0, "lng": -181}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := doJSON(t, mux, http.MethodPatch, "/schedule/properties/"+created.ID, tt.body)
			if rec.Code != http.StatusBadRequest {
				t.Fatalf("expected 400, got %d", rec.Code)
			}
			resp := decodeBody[ErrorResponse](t, rec)
			if resp.Error.Code != ErrCodeValidation {
				t.Errorf("expected code %s, got %s", ErrCodeValidation, resp.Error.Code)
			}
		})
	}

	// The stored property is untouched by the rejected patches.
	prop := store.Schedule().Properties[0]
	if prop.Bedrooms != 3 || prop.Bathrooms != 2.5 || prop.SquareFootage != 1800 {
		t.Errorf("property changed after rejected patches: %+v", prop)
	}
}

func TestUpdatePropertyRejectsBadViewingTime(t *testing.T) {
	mux, _ := newTestRouter(t)

	rec := doJSON(t, mux, http.MethodPatch, "/schedule/properties/any", map[string]any{"viewingTime": "9:00"})
	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", rec.Code)
	}
}

func TestRemoveProperty(t *testing.T) {
	mux, store := newTestRouter(t)

	rec := doJSON(t, mux, http.MethodPost, "/schedule/properties", validProperty())
	created := decodeBody[propertyResponse](t, rec)

	rec = doJSON(t, mux, http.MethodDelete, "/schedule/properties/"+created.ID, nil)
	if rec.Code != http.StatusNoContent {
		t.Fatalf("expected 204, got %d", rec.Code)
	}
	if got := len(store.Schedule().Properties); got != 0 {
		t.Errorf("expected empty schedule, got %d properties", got)
	}

	// Removing again is a no-op.
	rec = doJSON(t, mux, http.MethodDelete, "/schedule/properties/"+created.ID, nil)
	if rec.Code != http.StatusNoContent {
		t.Errorf("expected 204 for repeat delete, got %d", rec.Code)
	}
}

func TestUpdateSchedule(t *testing.T) {
	mux, _ := newTestRouter(t)

	rec := doJSON(t, mux, http.MethodPatch, "/schedule", map[string]any{
		"tourDate":   "2025-07-01",
		"agentName":  "Dana",
		"clientName": "The Parkers",
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	resp := decodeBody[scheduleResponse](t, rec)
	if resp.TourDate != "2025-07-01" || resp.AgentName != "Dana" || resp.ClientName != "The Parkers" {
		t.Errorf("unexpected schedule: %+v", resp)
	}
}

func TestUpdateScheduleRejectsBadDate(t *testing.T) {
	mux, _ := newTestRouter(t)

	rec := doJSON(t, mux, http.MethodPatch, "/schedule", map[string]any{"tourDate": "June 15"})
	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", rec.Code)
	}
}

func TestClearSchedule(t *testing.T) {
	mux, store := newTestRouter(t)

	doJSON(t, mux, http.MethodPost, "/schedule/properties", validProperty())
	rec := doJSON(t, mux, http.MethodPost, "/schedule/clear", nil)
	if rec.Code != http.StatusNoContent {
		t.Fatalf("expected 204, got %d", rec.Code)
	}
	if got := len(store.Schedule().Properties); got != 0 {
		t.Errorf("expected empty schedule, got %d properties", got)
	}
}

// brokenRepository fails every save, simulating a storage outage.
type brokenRepository struct{}

func (brokenRepository) Load(ctx context.Context) (*tour.State, error) { return nil, nil }
func (brokenRepository) Save(ctx context.Context, state *tour.State) error {
	return errors.New("connection refused")
}

func TestAddPropertySaveFailure(t *testing.T) {
	store, err := tour.NewStore(context.Background(), brokenRepository{}, fixedNow)
	if err != nil {
		t.Fatalf("failed to create store: %v", err)
	}
	mux := http.NewServeMux()
	handlers := NewScheduleHandlers(store, middleware.NewMetrics())
	mux.HandleFunc("POST /schedule/properties", handlers.AddProperty)

	rec := doJSON(t, mux, http.MethodPost, "/schedule/properties", validProperty())
	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d: %s", rec.Code, rec.Body.String())
	}
	resp := decodeBody[ErrorResponse](t, rec)
	if resp.Error.Code != ErrCodeInternal {
		t.Errorf("expected code %s, got %s", ErrCodeInternal, resp.Error.Code)
	}
}

func TestAddPropertyInvalidJSON(t *testing.T) {
	mux, _ := newTestRouter(t)

	req := httptest.NewRequest(http.MethodPost, "/schedule/properties", bytes.NewBufferString("{not json"))
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
	resp := decodeBody[ErrorResponse](t, rec)
	if resp.Error.Code != ErrCodeBadRequest {
		t.Errorf("expected code %s, got %s", ErrCodeBadRequest, resp.Error.Code)
	}
}

package api

import (
	"context"
	"errors"
	"net/http"
	"testing"
)

type stubChecker struct {
	err error
}

func (s *stubChecker) HealthCheck(ctx context.Context) error {
	return s.err
}

func TestHealth(t *testing.T) {
	mux, _ := newTestRouter(t)

	rec := doJSON(t, mux, http.MethodGet, "/health", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	resp := decodeBody[healthResponse](t, rec)
	if resp.Status != "ok" {
		t.Errorf("expected status ok, got %q", resp.Status)
	}
}

func TestReadyNoChecker(t *testing.T) {
	mux, _ := newTestRouter(t)

	rec := doJSON(t, mux, http.MethodGet, "/ready", nil)
	if rec.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", rec.Code)
	}
}

func TestReadyStorageDown(t *testing.T) {
	handlers := NewHealthHandlers(&stubChecker{err: errors.New("connection refused")})
	mux := http.NewServeMux()
	mux.HandleFunc("GET /ready", handlers.Ready)

	rec := doJSON(t, mux, http.MethodGet, "/ready", nil)
	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503, got %d", rec.Code)
	}
	resp := decodeBody[readyResponse](t, rec)
	if resp.Status != "unavailable" {
		t.Errorf("expected status unavailable, got %q", resp.Status)
	}
}

func TestReadyStorageUp(t *testing.T) {
	handlers := NewHealthHandlers(&stubChecker{})
	mux := http.NewServeMux()
	mux.HandleFunc("GET /ready", handlers.Ready)

	rec := doJSON(t, mux, http.MethodGet, "/ready", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	resp := decodeBody[readyResponse](t, rec)
	if resp.Checks["storage"] != "ok" {
		t.Errorf("expected storage ok, got %q", resp.Checks["storage"])
	}
}

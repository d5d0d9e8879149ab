package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
)

func serve(t *testing.T, h echo.HandlerFunc) (*httptest.ResponseRecorder, readinessResponse) {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/health/ready", nil)
	rec := httptest.NewRecorder()
	if err := h(e.NewContext(req, rec)); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	var body readinessResponse
	_ = json.Unmarshal(rec.Body.Bytes(), &body)
	return rec, body
}

func TestLiveness(t *testing.T) {
	h := NewHealthHandler(nil)
	rec, _ := serve(t, h.Liveness)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}

func TestReadiness_AllHealthy(t *testing.T) {
	ok := func(context.Context) error { return nil }
	h := NewHealthHandler(map[string]Check{"postgres": ok, "redis": ok})

	rec, body := serve(t, h.Readiness)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if body.Status != "ok" || body.Dependencies["postgres"].Status != "ok" || body.Dependencies["redis"].Status != "ok" {
		t.Fatalf("unexpected body %+v", body)
	}
}

func TestReadiness_Degraded(t *testing.T) {
	h := NewHealthHandler(map[string]Check{
		"postgres": func(context.Context) error { return nil },
		"redis":    func(context.Context) error { return errors.New("connection refused") },
	})

	rec, body := serve(t, h.Readiness)
	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503, got %d", rec.Code)
	}
	if body.Status != "degraded" {
		t.Fatalf("expected degraded, got %q", body.Status)
	}
	if d := body.Dependencies["redis"]; d.Status != "unhealthy" || d.Error != "connection refused" {
		t.Fatalf("unexpected redis status %+v", d)
	}
	if body.Dependencies["postgres"].Status != "ok" {
		t.Fatalf("postgres should still report ok")
	}
}

func TestReadiness_ChecksGetDeadline(t *testing.T) {
	var hadDeadline bool
	h := NewHealthHandler(map[string]Check{
		"store": func(ctx context.Context) error {
			_, hadDeadline = ctx.Deadline()
			return nil
		},
	})
	serve(t, h.Readiness)
	if !hadDeadline {
		t.Fatalf("expected checks to run under a deadline")
	}
}

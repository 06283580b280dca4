package middleware

import (
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
)

func newContext() (echo.Context, *httptest.ResponseRecorder) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	return e.NewContext(req, rec), rec
}

func TestRequestID_GeneratesWhenMissing(t *testing.T) {
	c, rec := newContext()
	h := RequestID()(func(c echo.Context) error {
		if rid, _ := c.Get("request_id").(string); rid == "" {
			t.Error("expected request_id on context")
		}
		return c.NoContent(http.StatusOK)
	})

	if err := h(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Header().Get("X-Request-ID") == "" {
		t.Error("expected X-Request-ID response header")
	}
}

func TestRequestID_ReusesHeader(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("X-Request-ID", "rid-123")
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	h := RequestID()(func(c echo.Context) error { return c.NoContent(http.StatusOK) })
	if err := h(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Header().Get("X-Request-ID") != "rid-123" {
		t.Errorf("expected rid-123, got %s", rec.Header().Get("X-Request-ID"))
	}
}

func TestRecovery_ConvertsPanic(t *testing.T) {
	logger := zerolog.New(os.Stderr)
	c, _ := newContext()
	h := Recovery(logger)(func(c echo.Context) error {
		panic("boom")
	})

	err := h(c)
	he, ok := err.(*echo.HTTPError)
	if !ok || he.Code != http.StatusInternalServerError {
		t.Errorf("expected 500 HTTPError, got %v", err)
	}
}

func TestRateLimit_ExhaustsBurst(t *testing.T) {
	cfg := RateLimitConfig{RequestsPerSecond: 0.001, BurstSize: 2}
	mw := RateLimit(cfg)
	ok := func(c echo.Context) error { return c.NoContent(http.StatusOK) }

	for i := 0; i < 2; i++ {
		c, _ := newContext()
		if err := mw(ok)(c); err != nil {
			t.Fatalf("request %d unexpectedly limited: %v", i, err)
		}
	}

	c, _ := newContext()
	err := mw(ok)(c)
	he, isHTTP := err.(*echo.HTTPError)
	if !isHTTP || he.Code != http.StatusTooManyRequests {
		t.Errorf("expected 429, got %v", err)
	}
	if c.Response().Header().Get("Retry-After") == "" {
		t.Error("expected Retry-After header")
	}
}

func TestLogger_PassesThrough(t *testing.T) {
	logger := zerolog.New(os.Stderr)
	c, rec := newContext()
	h := Logger(logger)(func(c echo.Context) error { return c.NoContent(http.StatusNoContent) })

	if err := h(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Code != http.StatusNoContent {
		t.Errorf("expected 204, got %d", rec.Code)
	}
}

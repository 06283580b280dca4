package identity

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
)

func newTestHandler() (*Handler, *echo.Echo) {
	h := NewHandler(newTestService())
	e := echo.New()
	return h, e
}

func postJSON(e *echo.Echo, body string) (echo.Context, *httptest.ResponseRecorder) {
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	return e.NewContext(req, rec), rec
}

func TestHandler_Register(t *testing.T) {
	h, e := newTestHandler()
	c, rec := postJSON(e, `{"email":"jane@example.com","name":"Jane","password":"secret123","role":"patient"}`)

	if err := h.Register(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Code != http.StatusCreated {
		t.Errorf("expected 201, got %d", rec.Code)
	}

	var resp authResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.Token == "" {
		t.Error("expected token in response")
	}
	if resp.User.Email != "jane@example.com" {
		t.Errorf("unexpected email: %s", resp.User.Email)
	}
}

func TestHandler_Register_DefaultsToPatient(t *testing.T) {
	h, e := newTestHandler()
	c, rec := postJSON(e, `{"email":"jane@example.com","name":"Jane","password":"secret123"}`)

	if err := h.Register(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	var resp authResponse
	json.Unmarshal(rec.Body.Bytes(), &resp)
	if string(resp.User.Role) != "patient" {
		t.Errorf("expected patient role, got %q", resp.User.Role)
	}
}

func TestHandler_Register_DuplicateEmailConflict(t *testing.T) {
	h, e := newTestHandler()
	c, _ := postJSON(e, `{"email":"jane@example.com","name":"Jane","password":"secret123"}`)
	if err := h.Register(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	c2, _ := postJSON(e, `{"email":"jane@example.com","name":"Jane 2","password":"secret456"}`)
	err := h.Register(c2)
	he, ok := err.(*echo.HTTPError)
	if !ok || he.Code != http.StatusConflict {
		t.Errorf("expected 409, got %v", err)
	}
}

func TestHandler_Login(t *testing.T) {
	h, e := newTestHandler()
	c, _ := postJSON(e, `{"email":"jane@example.com","name":"Jane","password":"secret123"}`)
	if err := h.Register(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	c2, rec := postJSON(e, `{"email":"jane@example.com","password":"secret123"}`)
	if err := h.Login(c2); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", rec.Code)
	}
}

func TestHandler_Login_BadCredentials(t *testing.T) {
	h, e := newTestHandler()
	c, _ := postJSON(e, `{"email":"nobody@example.com","password":"whatever"}`)
	err := h.Login(c)
	he, ok := err.(*echo.HTTPError)
	if !ok || he.Code != http.StatusUnauthorized {
		t.Errorf("expected 401, got %v", err)
	}
}

package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
)

var testCfg = TokenConfig{Secret: []byte("test-secret"), TTL: time.Hour}

func okHandler(c echo.Context) error {
	return c.NoContent(http.StatusOK)
}

func request(token string) (echo.Context, *httptest.ResponseRecorder) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	return e.NewContext(req, rec), rec
}

func TestIssueAndValidateToken(t *testing.T) {
	token, err := IssueToken(testCfg, "user-1", "Patient User", RolePatient)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	c, rec := request(token)
	var gotID string
	var gotRole Role
	h := JWTMiddleware(testCfg)(func(c echo.Context) error {
		gotID = UserIDFromContext(c.Request().Context())
		gotRole = RoleFromContext(c.Request().Context())
		return okHandler(c)
	})

	if err := h(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", rec.Code)
	}
	if gotID != "user-1" {
		t.Errorf("expected user-1, got %s", gotID)
	}
	if gotRole != RolePatient {
		t.Errorf("expected patient role, got %q", gotRole)
	}
}

func TestJWTMiddleware_MissingHeader(t *testing.T) {
	c, _ := request("")
	err := JWTMiddleware(testCfg)(okHandler)(c)
	he, ok := err.(*echo.HTTPError)
	if !ok || he.Code != http.StatusUnauthorized {
		t.Errorf("expected 401, got %v", err)
	}
}

func TestJWTMiddleware_WrongSecret(t *testing.T) {
	token, _ := IssueToken(TokenConfig{Secret: []byte("other"), TTL: time.Hour}, "u", "U", RoleAdmin)
	c, _ := request(token)
	err := JWTMiddleware(testCfg)(okHandler)(c)
	he, ok := err.(*echo.HTTPError)
	if !ok || he.Code != http.StatusUnauthorized {
		t.Errorf("expected 401, got %v", err)
	}
}

func TestJWTMiddleware_ExpiredToken(t *testing.T) {
	token, _ := IssueToken(TokenConfig{Secret: testCfg.Secret, TTL: -time.Minute}, "u", "U", RoleAdmin)
	c, _ := request(token)
	err := JWTMiddleware(testCfg)(okHandler)(c)
	he, ok := err.(*echo.HTTPError)
	if !ok || he.Code != http.StatusUnauthorized {
		t.Errorf("expected 401, got %v", err)
	}
}

func TestOptionalJWTMiddleware_AnonymousPasses(t *testing.T) {
	c, rec := request("")
	err := OptionalJWTMiddleware(testCfg)(okHandler)(c)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", rec.Code)
	}
}

func TestOptionalJWTMiddleware_BadTokenRejected(t *testing.T) {
	c, _ := request("garbage")
	err := OptionalJWTMiddleware(testCfg)(okHandler)(c)
	he, ok := err.(*echo.HTTPError)
	if !ok || he.Code != http.StatusUnauthorized {
		t.Errorf("expected 401, got %v", err)
	}
}

func TestParseRole(t *testing.T) {
	cases := map[string]Role{
		"patient": RolePatient,
		"admin":   RoleAdmin,
		"":        RoleNone,
		"doctor":  RoleNone,
	}
	for in, want := range cases {
		if got := ParseRole(in); got != want {
			t.Errorf("ParseRole(%q) = %q, want %q", in, got, want)
		}
	}

	if !RoleAdmin.IsAdmin() || RoleAdmin.IsPatient() {
		t.Error("admin predicates wrong")
	}
	if !RolePatient.IsPatient() || RolePatient.IsAdmin() {
		t.Error("patient predicates wrong")
	}
	if RoleNone.IsAdmin() || RoleNone.IsPatient() {
		t.Error("none must satisfy neither predicate")
	}
}

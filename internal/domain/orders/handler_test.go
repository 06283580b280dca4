package orders

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/carebook/carebook/internal/platform/auth"
)

func newTestHandler(t *testing.T) (*Handler, *fixture, *echo.Echo) {
	t.Helper()
	f := newFixture(t)
	return NewHandler(f.svc), f, echo.New()
}

func authedJSON(e *echo.Echo, method, body string, userID uuid.UUID, role auth.Role) (echo.Context, *httptest.ResponseRecorder) {
	req := httptest.NewRequest(method, "/", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)

	ctx := context.WithValue(req.Context(), auth.UserIDKey, userID.String())
	ctx = context.WithValue(ctx, auth.UserRoleKey, role)
	req = req.WithContext(ctx)

	rec := httptest.NewRecorder()
	return e.NewContext(req, rec), rec
}

func TestHandler_Checkout(t *testing.T) {
	h, f, e := newTestHandler(t)
	m := f.addMedicine(t, "Paracetamol", "5.00", 10)
	f.cart.AddItem(f.userID.String(), m, 2)

	c, rec := authedJSON(e, http.MethodPost, `{"shipping_address":"1 Main St"}`, f.userID, auth.RolePatient)
	if err := h.Checkout(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Code != http.StatusCreated {
		t.Errorf("expected 201, got %d", rec.Code)
	}
	var o Order
	if err := json.Unmarshal(rec.Body.Bytes(), &o); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if o.UserID != f.userID || len(o.Items) != 1 {
		t.Errorf("unexpected order: %+v", o)
	}
}

func TestHandler_Checkout_BlankAddress(t *testing.T) {
	h, f, e := newTestHandler(t)
	m := f.addMedicine(t, "Paracetamol", "5.00", 10)
	f.cart.AddItem(f.userID.String(), m, 2)

	c, _ := authedJSON(e, http.MethodPost, `{"shipping_address":""}`, f.userID, auth.RolePatient)
	err := h.Checkout(c)
	he, ok := err.(*echo.HTTPError)
	if !ok || he.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %v", err)
	}
	if f.cart.ItemCount(f.userID.String()) != 2 {
		t.Error("cart must stay untouched")
	}
}

func TestHandler_Checkout_EmptyCart(t *testing.T) {
	h, f, e := newTestHandler(t)
	c, _ := authedJSON(e, http.MethodPost, `{"shipping_address":"1 Main St"}`, f.userID, auth.RolePatient)
	err := h.Checkout(c)
	he, ok := err.(*echo.HTTPError)
	if !ok || he.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %v", err)
	}
}

func TestHandler_GetOrder_OwnershipEnforced(t *testing.T) {
	h, f, e := newTestHandler(t)
	m := f.addMedicine(t, "Paracetamol", "5.00", 10)
	f.cart.AddItem(f.userID.String(), m, 1)
	order, err := f.svc.Checkout(context.Background(), f.userID, "1 Main St")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	c, _ := authedJSON(e, http.MethodGet, "", uuid.New(), auth.RolePatient)
	c.SetParamNames("id")
	c.SetParamValues(order.ID.String())
	gotErr := h.GetOrder(c)
	he, ok := gotErr.(*echo.HTTPError)
	if !ok || he.Code != http.StatusForbidden {
		t.Errorf("expected 403 for another patient, got %v", gotErr)
	}

	// Admins see any order.
	c2, rec := authedJSON(e, http.MethodGet, "", uuid.New(), auth.RoleAdmin)
	c2.SetParamNames("id")
	c2.SetParamValues(order.ID.String())
	if err := h.GetOrder(c2); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", rec.Code)
	}
}

func TestHandler_UpdateStatus(t *testing.T) {
	h, f, e := newTestHandler(t)
	m := f.addMedicine(t, "Paracetamol", "5.00", 10)
	f.cart.AddItem(f.userID.String(), m, 1)
	order, err := f.svc.Checkout(context.Background(), f.userID, "1 Main St")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	c, rec := authedJSON(e, http.MethodPut, `{"status":"confirmed"}`, uuid.New(), auth.RoleAdmin)
	c.SetParamNames("id")
	c.SetParamValues(order.ID.String())
	if err := h.UpdateStatus(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Code != http.StatusNoContent {
		t.Errorf("expected 204, got %d", rec.Code)
	}

	c2, _ := authedJSON(e, http.MethodPut, `{"status":"nonsense"}`, uuid.New(), auth.RoleAdmin)
	c2.SetParamNames("id")
	c2.SetParamValues(order.ID.String())
	gotErr := h.UpdateStatus(c2)
	he, ok := gotErr.(*echo.HTTPError)
	if !ok || he.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %v", gotErr)
	}
}

func TestHandler_MyOrders_EmptyIsArray(t *testing.T) {
	h, f, e := newTestHandler(t)
	c, rec := authedJSON(e, http.MethodGet, "", f.userID, auth.RolePatient)
	if err := h.MyOrders(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if body := strings.TrimSpace(rec.Body.String()); body != "[]" {
		t.Errorf("expected empty JSON array, got %s", body)
	}
}

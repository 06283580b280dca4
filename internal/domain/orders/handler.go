package orders

import (
	"errors"
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/carebook/carebook/internal/platform/auth"
	"github.com/carebook/carebook/pkg/pagination"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) RegisterRoutes(authenticated, admin *echo.Group) {
	authenticated.POST("/orders", h.Checkout)
	authenticated.GET("/orders", h.MyOrders)
	authenticated.GET("/orders/:id", h.GetOrder)

	admin.GET("/admin/orders", h.AllOrders)
	admin.PUT("/admin/orders/:id/status", h.UpdateStatus)
}

type checkoutRequest struct {
	ShippingAddress string `json:"shipping_address"`
}

func (h *Handler) Checkout(c echo.Context) error {
	var req checkoutRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	ctx := c.Request().Context()
	userID, err := uuid.Parse(auth.UserIDFromContext(ctx))
	if err != nil {
		return echo.NewHTTPError(http.StatusUnauthorized, "authentication required")
	}

	order, err := h.svc.Checkout(ctx, userID, req.ShippingAddress)
	if err != nil {
		switch {
		case errors.Is(err, ErrBlankAddress), errors.Is(err, ErrEmptyCart):
			return echo.NewHTTPError(http.StatusBadRequest, err.Error())
		default:
			return echo.NewHTTPError(http.StatusConflict, err.Error())
		}
	}
	return c.JSON(http.StatusCreated, order)
}

func (h *Handler) MyOrders(c echo.Context) error {
	ctx := c.Request().Context()
	userID, err := uuid.Parse(auth.UserIDFromContext(ctx))
	if err != nil {
		return echo.NewHTTPError(http.StatusUnauthorized, "authentication required")
	}
	items, err := h.svc.UserOrders(ctx, userID)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to list orders")
	}
	if items == nil {
		items = []*Order{}
	}
	return c.JSON(http.StatusOK, items)
}

func (h *Handler) GetOrder(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid order id")
	}
	ctx := c.Request().Context()
	order, err := h.svc.GetOrder(ctx, id)
	if err != nil {
		if errors.Is(err, ErrOrderNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, err.Error())
		}
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to get order")
	}
	if auth.RoleFromContext(ctx) != auth.RoleAdmin && auth.UserIDFromContext(ctx) != order.UserID.String() {
		return echo.NewHTTPError(http.StatusForbidden, "not your order")
	}
	return c.JSON(http.StatusOK, order)
}

func (h *Handler) AllOrders(c echo.Context) error {
	p := pagination.FromContext(c)
	items, total, err := h.svc.AllOrders(c.Request().Context(), p.Limit, p.Offset)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to list orders")
	}
	if items == nil {
		items = []*Order{}
	}
	return c.JSON(http.StatusOK, pagination.NewResponse(items, total, p.Limit, p.Offset))
}

type updateStatusRequest struct {
	Status string `json:"status"`
}

func (h *Handler) UpdateStatus(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid order id")
	}
	var req updateStatusRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if err := h.svc.UpdateStatus(c.Request().Context(), id, req.Status); err != nil {
		if errors.Is(err, ErrOrderNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, err.Error())
		}
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return c.NoContent(http.StatusNoContent)
}

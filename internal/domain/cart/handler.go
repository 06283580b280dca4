package cart

import (
	"errors"
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"

	"github.com/carebook/carebook/internal/domain/pharmacy"
	"github.com/carebook/carebook/internal/platform/auth"
)

type Handler struct {
	store     *Store
	medicines *pharmacy.Service
}

func NewHandler(store *Store, medicines *pharmacy.Service) *Handler {
	return &Handler{store: store, medicines: medicines}
}

func (h *Handler) RegisterRoutes(authenticated *echo.Group) {
	authenticated.GET("/cart", h.Get)
	authenticated.POST("/cart/items", h.AddItem)
	authenticated.PUT("/cart/items/:medicineID", h.UpdateQuantity)
	authenticated.DELETE("/cart/items/:medicineID", h.RemoveItem)
	authenticated.DELETE("/cart", h.Clear)
}

type cartResponse struct {
	Items     []Item          `json:"items"`
	Total     decimal.Decimal `json:"total"`
	ItemCount int             `json:"item_count"`
	Clamped   bool            `json:"clamped,omitempty"`
}

func (h *Handler) respond(c echo.Context, status int, userID string, clamped bool) error {
	return c.JSON(status, cartResponse{
		Items:     h.store.Items(userID),
		Total:     h.store.Total(userID),
		ItemCount: h.store.ItemCount(userID),
		Clamped:   clamped,
	})
}

func callerID(c echo.Context) (string, error) {
	id := auth.UserIDFromContext(c.Request().Context())
	if id == "" {
		return "", echo.NewHTTPError(http.StatusUnauthorized, "authentication required")
	}
	return id, nil
}

func (h *Handler) Get(c echo.Context) error {
	userID, err := callerID(c)
	if err != nil {
		return err
	}
	return h.respond(c, http.StatusOK, userID, false)
}

type addItemRequest struct {
	MedicineID uuid.UUID `json:"medicine_id"`
	Quantity   int       `json:"quantity"`
}

func (h *Handler) AddItem(c echo.Context) error {
	userID, err := callerID(c)
	if err != nil {
		return err
	}
	var req addItemRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	med, err := h.medicines.GetMedicine(c.Request().Context(), req.MedicineID)
	if err != nil {
		if errors.Is(err, pharmacy.ErrMedicineNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, err.Error())
		}
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to load medicine")
	}

	clamped, err := h.store.AddItem(userID, *med, req.Quantity)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to update cart")
	}
	return h.respond(c, http.StatusOK, userID, clamped)
}

type updateQuantityRequest struct {
	Quantity int `json:"quantity"`
}

func (h *Handler) UpdateQuantity(c echo.Context) error {
	userID, err := callerID(c)
	if err != nil {
		return err
	}
	medicineID, err := uuid.Parse(c.Param("medicineID"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid medicine id")
	}
	var req updateQuantityRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if err := h.store.UpdateQuantity(userID, medicineID, req.Quantity); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to update cart")
	}
	return h.respond(c, http.StatusOK, userID, false)
}

func (h *Handler) RemoveItem(c echo.Context) error {
	userID, err := callerID(c)
	if err != nil {
		return err
	}
	medicineID, err := uuid.Parse(c.Param("medicineID"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid medicine id")
	}
	if err := h.store.RemoveItem(userID, medicineID); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to update cart")
	}
	return h.respond(c, http.StatusOK, userID, false)
}

func (h *Handler) Clear(c echo.Context) error {
	userID, err := callerID(c)
	if err != nil {
		return err
	}
	if err := h.store.Clear(userID); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to clear cart")
	}
	return h.respond(c, http.StatusOK, userID, false)
}

package pharmacy

import (
	"errors"
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) RegisterRoutes(public, admin *echo.Group) {
	public.GET("/medicines", h.List)
	public.GET("/medicines/:id", h.Get)

	admin.POST("/medicines", h.Create)
	admin.PUT("/medicines/:id", h.Update)
	admin.DELETE("/medicines/:id", h.Delete)
}

func (h *Handler) List(c echo.Context) error {
	items, err := h.svc.ListMedicines(c.Request().Context())
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to list medicines")
	}
	if items == nil {
		items = []*Medicine{}
	}
	return c.JSON(http.StatusOK, items)
}

func (h *Handler) Get(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid medicine id")
	}
	m, err := h.svc.GetMedicine(c.Request().Context(), id)
	if err != nil {
		if errors.Is(err, ErrMedicineNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, err.Error())
		}
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to get medicine")
	}
	return c.JSON(http.StatusOK, m)
}

func (h *Handler) Create(c echo.Context) error {
	var m Medicine
	if err := c.Bind(&m); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if err := h.svc.AddMedicine(c.Request().Context(), &m); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return c.JSON(http.StatusCreated, &m)
}

func (h *Handler) Update(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid medicine id")
	}
	var upd MedicineUpdate
	if err := c.Bind(&upd); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	m, err := h.svc.UpdateMedicine(c.Request().Context(), id, upd)
	if err != nil {
		if errors.Is(err, ErrMedicineNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, err.Error())
		}
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return c.JSON(http.StatusOK, m)
}

func (h *Handler) Delete(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid medicine id")
	}
	if err := h.svc.DeleteMedicine(c.Request().Context(), id); err != nil {
		if errors.Is(err, ErrMedicineNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, err.Error())
		}
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to delete medicine")
	}
	return c.NoContent(http.StatusNoContent)
}

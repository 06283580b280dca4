package scheduling

import (
	"context"
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

func (h *Handler) RegisterRoutes(public, authenticated, admin *echo.Group) {
	public.GET("/doctors", h.ListDoctors)
	public.GET("/doctors/:id", h.GetDoctor)
	public.GET("/doctors/:id/slots", h.GetTimeSlots)

	authenticated.POST("/appointments", h.Book)
	authenticated.GET("/appointments", h.MyAppointments)
	authenticated.GET("/appointments/:id", h.GetAppointment)
	authenticated.DELETE("/appointments/:id", h.Cancel)

	admin.POST("/doctors", h.AddDoctor)
	admin.GET("/admin/appointments", h.AllAppointments)
}

func (h *Handler) ListDoctors(c echo.Context) error {
	doctors, err := h.svc.ListDoctors(c.Request().Context())
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to list doctors")
	}
	if doctors == nil {
		doctors = []*Doctor{}
	}
	return c.JSON(http.StatusOK, doctors)
}

func (h *Handler) GetDoctor(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid doctor id")
	}
	doctor, err := h.svc.GetDoctor(c.Request().Context(), id)
	if err != nil {
		if errors.Is(err, ErrDoctorNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, err.Error())
		}
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to get doctor")
	}
	return c.JSON(http.StatusOK, doctor)
}

func (h *Handler) GetTimeSlots(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid doctor id")
	}
	date := c.QueryParam("date")
	if date == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "date query parameter is required")
	}
	slots, err := h.svc.AvailableTimeSlots(c.Request().Context(), id, date)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return c.JSON(http.StatusOK, slots)
}

type addDoctorRequest struct {
	Name         string             `json:"name"`
	Specialty    string             `json:"specialty"`
	Image        string             `json:"image"`
	Bio          string             `json:"bio"`
	Availability WeeklyAvailability `json:"availability"`
}

func (h *Handler) AddDoctor(c echo.Context) error {
	var req addDoctorRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	doctor := &Doctor{
		Name:         req.Name,
		Specialty:    req.Specialty,
		Image:        req.Image,
		Bio:          req.Bio,
		Availability: req.Availability,
	}
	if err := h.svc.AddDoctor(c.Request().Context(), doctor); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return c.JSON(http.StatusCreated, doctor)
}

type bookRequest struct {
	DoctorID uuid.UUID `json:"doctor_id"`
	Date     string    `json:"date"`
	Time     string    `json:"time"`
}

func (h *Handler) Book(c echo.Context) error {
	var req bookRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	ctx := c.Request().Context()
	patientID, err := uuid.Parse(auth.UserIDFromContext(ctx))
	if err != nil {
		return echo.NewHTTPError(http.StatusUnauthorized, "authentication required")
	}

	appt := &Appointment{
		DoctorID:    req.DoctorID,
		PatientID:   patientID,
		PatientName: auth.UserNameFromContext(ctx),
		Date:        req.Date,
		Time:        req.Time,
	}
	if err := h.svc.Book(ctx, appt); err != nil {
		switch {
		case errors.Is(err, ErrSlotTaken):
			return echo.NewHTTPError(http.StatusConflict, err.Error())
		case errors.Is(err, ErrDoctorNotFound):
			return echo.NewHTTPError(http.StatusNotFound, err.Error())
		default:
			return echo.NewHTTPError(http.StatusBadRequest, err.Error())
		}
	}
	return c.JSON(http.StatusCreated, appt)
}

func (h *Handler) MyAppointments(c echo.Context) error {
	ctx := c.Request().Context()
	patientID, err := uuid.Parse(auth.UserIDFromContext(ctx))
	if err != nil {
		return echo.NewHTTPError(http.StatusUnauthorized, "authentication required")
	}
	items, err := h.svc.PatientAppointments(ctx, patientID)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to list appointments")
	}
	if items == nil {
		items = []*Appointment{}
	}
	return c.JSON(http.StatusOK, items)
}

func (h *Handler) GetAppointment(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid appointment id")
	}
	ctx := c.Request().Context()
	appt, err := h.svc.GetAppointment(ctx, id)
	if err != nil {
		if errors.Is(err, ErrAppointmentNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, err.Error())
		}
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to get appointment")
	}
	if !canAccess(ctx, appt) {
		return echo.NewHTTPError(http.StatusForbidden, "not your appointment")
	}
	return c.JSON(http.StatusOK, appt)
}

// Cancel is idempotent: cancelling an already-cancelled or unknown
// appointment succeeds without complaint, matching the booking page's
// fire-and-forget cancel button.
func (h *Handler) Cancel(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid appointment id")
	}
	ctx := c.Request().Context()

	appt, err := h.svc.GetAppointment(ctx, id)
	if err == nil && !canAccess(ctx, appt) {
		return echo.NewHTTPError(http.StatusForbidden, "not your appointment")
	}
	if err != nil && !errors.Is(err, ErrAppointmentNotFound) {
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to cancel appointment")
	}

	if err := h.svc.Cancel(ctx, id); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to cancel appointment")
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *Handler) AllAppointments(c echo.Context) error {
	p := pagination.FromContext(c)
	items, total, err := h.svc.AllAppointments(c.Request().Context(), p.Limit, p.Offset)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to list appointments")
	}
	if items == nil {
		items = []*Appointment{}
	}
	return c.JSON(http.StatusOK, pagination.NewResponse(items, total, p.Limit, p.Offset))
}

// canAccess allows the appointment's own patient, or an admin.
func canAccess(ctx context.Context, appt *Appointment) bool {
	if auth.RoleFromContext(ctx) == auth.RoleAdmin {
		return true
	}
	return auth.UserIDFromContext(ctx) == appt.PatientID.String()
}

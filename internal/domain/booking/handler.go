package booking

import (
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/careq/careq/internal/platform/auth"
	"github.com/careq/careq/pkg/apperr"
	"github.com/careq/careq/pkg/pagination"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) RegisterRoutes(api *echo.Group) {
	api.POST("/opd/book", h.BookOPD)
	api.GET("/opd/slots", h.Slots)
	api.GET("/opd/appointments", h.MyAppointments)
	api.GET("/opd/appointments/:id", h.Get)
	api.PATCH("/opd/cancel/:id", h.Cancel)
	api.POST("/consultations/book", h.BookOnline)
}

// actorPatientID returns the actor's user id when the actor is a patient,
// and uuid.Nil for staff (who may act on any patient).
func actorPatientID(c echo.Context) (uuid.UUID, bool) {
	actor, ok := auth.ActorFromContext(c.Request().Context())
	if !ok {
		return uuid.Nil, false
	}
	if actor.Role == auth.RolePatient {
		return actor.UserID, true
	}
	return uuid.Nil, true
}

func (h *Handler) BookOPD(c echo.Context) error {
	var req BookOPDRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if id, ok := actorPatientID(c); ok && id != uuid.Nil {
		req.Patient.UserID = id
	}
	appt, err := h.svc.BookOPD(c.Request().Context(), req)
	if err != nil {
		return echo.NewHTTPError(apperr.HTTPStatus(err), apperr.Message(err))
	}
	return c.JSON(http.StatusCreated, appt)
}

func (h *Handler) BookOnline(c echo.Context) error {
	var req BookOnlineRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if id, ok := actorPatientID(c); ok && id != uuid.Nil {
		req.Patient.UserID = id
	}
	appt, err := h.svc.BookOnline(c.Request().Context(), req)
	if err != nil {
		return echo.NewHTTPError(apperr.HTTPStatus(err), apperr.Message(err))
	}
	return c.JSON(http.StatusCreated, appt)
}

func (h *Handler) Slots(c echo.Context) error {
	doctorID, err := uuid.Parse(c.QueryParam("doctor_id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid doctor_id")
	}
	date, err := time.Parse("2006-01-02", c.QueryParam("date"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid date, expected YYYY-MM-DD")
	}
	slots, err := h.svc.AvailableSlots(c.Request().Context(), doctorID, date)
	if err != nil {
		return echo.NewHTTPError(apperr.HTTPStatus(err), apperr.Message(err))
	}
	return c.JSON(http.StatusOK, slots)
}

func (h *Handler) MyAppointments(c echo.Context) error {
	actor, ok := auth.ActorFromContext(c.Request().Context())
	if !ok {
		return echo.NewHTTPError(http.StatusUnauthorized, "authentication required")
	}
	p := pagination.FromContext(c)
	items, total, err := h.svc.MyAppointments(c.Request().Context(), actor.UserID, p.Limit, p.Offset)
	if err != nil {
		return echo.NewHTTPError(apperr.HTTPStatus(err), apperr.Message(err))
	}
	return c.JSON(http.StatusOK, pagination.NewResponse(items, total, p.Limit, p.Offset))
}

func (h *Handler) Get(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid appointment id")
	}
	patientID, ok := actorPatientID(c)
	if !ok {
		return echo.NewHTTPError(http.StatusUnauthorized, "authentication required")
	}
	appt, err := h.svc.Get(c.Request().Context(), id, patientID)
	if err != nil {
		return echo.NewHTTPError(apperr.HTTPStatus(err), apperr.Message(err))
	}
	return c.JSON(http.StatusOK, appt)
}

func (h *Handler) Cancel(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid appointment id")
	}
	patientID, ok := actorPatientID(c)
	if !ok {
		return echo.NewHTTPError(http.StatusUnauthorized, "authentication required")
	}

	var req struct {
		Reason string `json:"reason"`
	}
	_ = c.Bind(&req) // Reason is optional; an empty body is fine.

	cancelledBy := CancelledByUser
	if actor, ok := auth.ActorFromContext(c.Request().Context()); ok && actor.Role == auth.RoleDoctor {
		cancelledBy = CancelledByDoctor
	}

	appt, err := h.svc.Cancel(c.Request().Context(), id, patientID, cancelledBy, req.Reason)
	if err != nil {
		return echo.NewHTTPError(apperr.HTTPStatus(err), apperr.Message(err))
	}
	return c.JSON(http.StatusOK, appt)
}

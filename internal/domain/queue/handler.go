package queue

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/careq/careq/internal/platform/auth"
	"github.com/careq/careq/pkg/apperr"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) RegisterRoutes(api *echo.Group) {
	api.GET("/queues/:id", h.Get)
	api.POST("/queues/join", h.Join)

	staff := api.Group("", auth.RequireRole(auth.RoleHospital, auth.RoleDoctor, auth.RoleAdmin))
	staff.POST("/queues/init", h.Init)
	staff.PATCH("/queues/update", h.UpdateToken)
}

func (h *Handler) Init(c echo.Context) error {
	var req struct {
		HospitalID uuid.UUID `json:"hospitalId"`
		DoctorID   uuid.UUID `json:"doctorId"`
	}
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	q, err := h.svc.GetOrCreate(c.Request().Context(), req.HospitalID, req.DoctorID)
	if err != nil {
		return echo.NewHTTPError(apperr.HTTPStatus(err), apperr.Message(err))
	}
	return c.JSON(http.StatusOK, q)
}

func (h *Handler) Join(c echo.Context) error {
	var req struct {
		QueueID   uuid.UUID `json:"queueId"`
		PatientID uuid.UUID `json:"patientId"`
		Urgency   string    `json:"urgency"`
	}
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	// Patients always join as themselves; staff may join on a patient's
	// behalf by naming the patient id.
	if actor, ok := auth.ActorFromContext(c.Request().Context()); ok && actor.Role == auth.RolePatient {
		req.PatientID = actor.UserID
	}

	item, err := h.svc.Join(c.Request().Context(), req.QueueID, req.PatientID, req.Urgency)
	if err != nil {
		return echo.NewHTTPError(apperr.HTTPStatus(err), apperr.Message(err))
	}
	return c.JSON(http.StatusCreated, item)
}

func (h *Handler) UpdateToken(c echo.Context) error {
	var req struct {
		QueueID     uuid.UUID `json:"queueId"`
		TokenNumber int       `json:"tokenNumber"`
		Status      string    `json:"status"`
	}
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if err := h.svc.SetItemStatus(c.Request().Context(), req.QueueID, req.TokenNumber, req.Status); err != nil {
		return echo.NewHTTPError(apperr.HTTPStatus(err), apperr.Message(err))
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *Handler) Get(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid queue id")
	}
	q, err := h.svc.Get(c.Request().Context(), id)
	if err != nil {
		return echo.NewHTTPError(apperr.HTTPStatus(err), apperr.Message(err))
	}
	return c.JSON(http.StatusOK, q)
}

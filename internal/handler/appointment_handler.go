package handler

import (
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"clinicdesk/internal/errors"
	"clinicdesk/internal/service"
)

const (
	dateLayout = "2006-01-02"
	slotLayout = "2006-01-02T15:04:05"
)

// AppointmentHandler handles scheduling endpoints.
type AppointmentHandler struct {
	scheduleService service.ScheduleService
}

// NewAppointmentHandler creates a new appointment handler.
func NewAppointmentHandler(scheduleService service.ScheduleService) *AppointmentHandler {
	return &AppointmentHandler{scheduleService: scheduleService}
}

// CreateAppointmentRequest represents a booking request.
type CreateAppointmentRequest struct {
	ScheduledAt string `json:"data_hora"`
	Type        string `json:"tipo_consulta"`
	Notes       string `json:"observacoes"`
}

// UpdateAppointmentRequest represents an appointment mutation. All fields are
// optional; data_hora is honored only for clinician/admin actors.
type UpdateAppointmentRequest struct {
	Status      *string `json:"status"`
	Notes       *string `json:"observacoes"`
	ScheduledAt *string `json:"data_hora"`
}

// Create godoc
// @Summary Book an appointment
// @Tags agendamentos
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body CreateAppointmentRequest true "Appointment data"
// @Success 201 {object} map[string]interface{}
// @Failure 400 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Failure 409 {object} errors.ErrorResponse
// @Router /agendamentos [post]
func (h *AppointmentHandler) Create(c echo.Context) error {
	actor, err := requireActor(c)
	if err != nil {
		return err
	}

	var req CreateAppointmentRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	appointment, err := h.scheduleService.Create(c.Request().Context(), actor, req.ScheduledAt, req.Type, req.Notes)
	if err != nil {
		return fail(c, err)
	}

	return c.JSON(http.StatusCreated, map[string]interface{}{
		"message":     "appointment created successfully",
		"agendamento": appointment,
	})
}

// List godoc
// @Summary List appointments visible to the actor
// @Tags agendamentos
// @Produce json
// @Security BearerAuth
// @Success 200 {object} map[string]interface{}
// @Failure 401 {object} errors.ErrorResponse
// @Router /agendamentos [get]
func (h *AppointmentHandler) List(c echo.Context) error {
	actor, err := requireActor(c)
	if err != nil {
		return err
	}

	appointments, err := h.scheduleService.List(c.Request().Context(), actor)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, map[string]interface{}{"agendamentos": appointments})
}

// Update godoc
// @Summary Update an appointment
// @Tags agendamentos
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Appointment ID"
// @Param request body UpdateAppointmentRequest true "Fields to change"
// @Success 200 {object} map[string]interface{}
// @Failure 403 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Router /agendamentos/{id} [put]
func (h *AppointmentHandler) Update(c echo.Context) error {
	actor, err := requireActor(c)
	if err != nil {
		return err
	}

	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return fail(c, errors.Validation("invalid appointment id"))
	}

	var req UpdateAppointmentRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	appointment, err := h.scheduleService.Update(c.Request().Context(), actor, uint(id), service.AppointmentUpdate{
		Status:      req.Status,
		Notes:       req.Notes,
		ScheduledAt: req.ScheduledAt,
	})
	if err != nil {
		return fail(c, err)
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"message":     "appointment updated successfully",
		"agendamento": appointment,
	})
}

// Cancel godoc
// @Summary Cancel an appointment (logical delete)
// @Tags agendamentos
// @Produce json
// @Security BearerAuth
// @Param id path int true "Appointment ID"
// @Success 200 {object} map[string]string
// @Failure 403 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Router /agendamentos/{id} [delete]
func (h *AppointmentHandler) Cancel(c echo.Context) error {
	actor, err := requireActor(c)
	if err != nil {
		return err
	}

	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return fail(c, errors.Validation("invalid appointment id"))
	}

	if err := h.scheduleService.Cancel(c.Request().Context(), actor, uint(id)); err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, map[string]string{"message": "appointment cancelled successfully"})
}

// AvailableSlots godoc
// @Summary List open slots for a date
// @Description Public endpoint; returns the clinic's free hourly slots for the given date.
// @Tags agendamentos
// @Produce json
// @Param data query string true "Date (YYYY-MM-DD)"
// @Success 200 {object} map[string]interface{}
// @Failure 400 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Router /horarios-disponiveis [get]
func (h *AppointmentHandler) AvailableSlots(c echo.Context) error {
	rawDate := c.QueryParam("data")
	if rawDate == "" {
		return fail(c, errors.Validation("query parameter data is required (format: YYYY-MM-DD)"))
	}

	date, err := time.ParseInLocation(dateLayout, rawDate, time.Local)
	if err != nil {
		return fail(c, errors.Validation("invalid date format, use YYYY-MM-DD"))
	}

	slots, err := h.scheduleService.AvailableSlots(c.Request().Context(), date)
	if err != nil {
		return fail(c, err)
	}

	formatted := make([]string, 0, len(slots))
	for _, slot := range slots {
		formatted = append(formatted, slot.Format(slotLayout))
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"data":                 rawDate,
		"horarios_disponiveis": formatted,
	})
}

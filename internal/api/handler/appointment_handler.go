package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/psyclinic/clinic-api/internal/api/metrics"
	"github.com/psyclinic/clinic-api/internal/core/ports"
)

// AppointmentHandler handles HTTP requests for appointments.
type AppointmentHandler struct {
	service ports.AppointmentService
}

func NewAppointmentHandler(service ports.AppointmentService) *AppointmentHandler {
	return &AppointmentHandler{service: service}
}

// List handles GET /appointments.
//
// @Summary      List appointments
// @Tags         appointments
// @Produce      json
// @Success      200  {array}   appointmentResponse
// @Failure      500  {object}  errorResponse
// @Router       /appointments [get]
func (h *AppointmentHandler) List(c echo.Context) error {
	appts, err := h.service.List(c.Request().Context(), ctxActor(c))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toAppointmentResponses(appts))
}

// Get handles GET /appointments/:id.
//
// @Summary      Get an appointment
// @Tags         appointments
// @Produce      json
// @Param        id   path      string  true  "Appointment id"
// @Success      200  {object}  appointmentResponse
// @Failure      400  {object}  errorResponse
// @Failure      404  {object}  errorResponse
// @Router       /appointments/{id} [get]
func (h *AppointmentHandler) Get(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	appt, err := h.service.Get(c.Request().Context(), ctxActor(c), id)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toAppointmentResponse(*appt))
}

// ListByPatient handles GET /appointments/patient/:patientId.
//
// @Summary      List a patient's appointments
// @Tags         appointments
// @Produce      json
// @Security     SessionCookie
// @Param        patientId  path      string  true  "Patient id"
// @Success      200        {array}   appointmentResponse
// @Failure      400        {object}  errorResponse
// @Failure      401        {object}  errorResponse
// @Failure      404        {object}  errorResponse
// @Router       /appointments/patient/{patientId} [get]
func (h *AppointmentHandler) ListByPatient(c echo.Context) error {
	patientID, err := pathID(c, "patientId")
	if err != nil {
		return err
	}
	appts, err := h.service.ListByPatient(c.Request().Context(), ctxActor(c), patientID)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toAppointmentResponses(appts))
}

// Create handles POST /appointments.
//
// @Summary      Book an appointment
// @Description  Fails with 409 when the psychologist already has a non-cancelled appointment at the same instant.
// @Tags         appointments
// @Accept       json
// @Produce      json
// @Security     SessionCookie
// @Param        body  body      appointmentRequest  true  "Appointment"
// @Success      201   {object}  appointmentResponse
// @Failure      400   {object}  errorResponse
// @Failure      401   {object}  errorResponse
// @Failure      404   {object}  errorResponse
// @Failure      409   {object}  errorResponse
// @Router       /appointments [post]
func (h *AppointmentHandler) Create(c echo.Context) error {
	var req appointmentRequest
	if err := bindRequest(c, &req); err != nil {
		return err
	}
	appt, err := h.service.Create(c.Request().Context(), ctxActor(c), toAppointmentInput(req))
	if err != nil {
		return err
	}
	metrics.AppointmentsWrittenTotal.WithLabelValues("create").Inc()
	return c.JSON(http.StatusCreated, toAppointmentResponse(*appt))
}

// Update handles PUT /appointments/:id.
//
// @Summary      Update an appointment
// @Tags         appointments
// @Accept       json
// @Produce      json
// @Security     SessionCookie
// @Param        id    path      string              true  "Appointment id"
// @Param        body  body      appointmentRequest  true  "Appointment"
// @Success      200   {object}  appointmentResponse
// @Failure      400   {object}  errorResponse
// @Failure      401   {object}  errorResponse
// @Failure      404   {object}  errorResponse
// @Failure      409   {object}  errorResponse
// @Router       /appointments/{id} [put]
func (h *AppointmentHandler) Update(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	var req appointmentRequest
	if err := bindRequest(c, &req); err != nil {
		return err
	}
	appt, err := h.service.Update(c.Request().Context(), ctxActor(c), id, toAppointmentInput(req))
	if err != nil {
		return err
	}
	metrics.AppointmentsWrittenTotal.WithLabelValues("update").Inc()
	return c.JSON(http.StatusOK, toAppointmentResponse(*appt))
}

// Delete handles DELETE /appointments/:id.
//
// @Summary      Delete an appointment
// @Tags         appointments
// @Produce      json
// @Security     SessionCookie
// @Param        id   path      string  true  "Appointment id"
// @Success      200  {object}  messageResponse
// @Failure      400  {object}  errorResponse
// @Failure      401  {object}  errorResponse
// @Failure      404  {object}  errorResponse
// @Router       /appointments/{id} [delete]
func (h *AppointmentHandler) Delete(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	if err := h.service.Delete(c.Request().Context(), ctxActor(c), id); err != nil {
		return err
	}
	metrics.AppointmentsWrittenTotal.WithLabelValues("delete").Inc()
	return c.JSON(http.StatusOK, messageResponse{Message: "Appointment deleted successfully"})
}

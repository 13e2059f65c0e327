package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/psyclinic/clinic-api/internal/api/metrics"
	"github.com/psyclinic/clinic-api/internal/core/ports"
)

// PatientHandler handles HTTP requests for patient records.
type PatientHandler struct {
	service ports.PatientService
}

func NewPatientHandler(service ports.PatientService) *PatientHandler {
	return &PatientHandler{service: service}
}

// List handles GET /patients.
//
// @Summary      List patients
// @Tags         patients
// @Produce      json
// @Security     SessionCookie
// @Success      200  {array}   patientResponse
// @Failure      401  {object}  errorResponse
// @Failure      500  {object}  errorResponse
// @Router       /patients [get]
func (h *PatientHandler) List(c echo.Context) error {
	patients, err := h.service.List(c.Request().Context(), ctxActor(c))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toPatientResponses(patients))
}

// Get handles GET /patients/:id.
//
// @Summary      Get a patient
// @Tags         patients
// @Produce      json
// @Security     SessionCookie
// @Param        id   path      string  true  "Patient id"
// @Success      200  {object}  patientResponse
// @Failure      400  {object}  errorResponse
// @Failure      401  {object}  errorResponse
// @Failure      403  {object}  errorResponse
// @Failure      404  {object}  errorResponse
// @Router       /patients/{id} [get]
func (h *PatientHandler) Get(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	p, err := h.service.Get(c.Request().Context(), ctxActor(c), id)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toPatientResponse(p))
}

// Create handles POST /patients.
//
// @Summary      Create a patient
// @Tags         patients
// @Accept       json
// @Produce      json
// @Security     SessionCookie
// @Param        body  body      patientRequest  true  "Patient"
// @Success      201   {object}  patientResponse
// @Failure      400   {object}  errorResponse
// @Failure      401   {object}  errorResponse
// @Failure      409   {object}  errorResponse
// @Router       /patients [post]
func (h *PatientHandler) Create(c echo.Context) error {
	var req patientRequest
	if err := bindRequest(c, &req); err != nil {
		return err
	}
	p, err := h.service.Create(c.Request().Context(), ctxActor(c), toPatientInput(req))
	if err != nil {
		return err
	}
	metrics.PatientsWrittenTotal.WithLabelValues("create").Inc()
	return c.JSON(http.StatusCreated, toPatientResponse(p))
}

// Update handles PUT /patients/:id.
//
// @Summary      Update a patient
// @Tags         patients
// @Accept       json
// @Produce      json
// @Security     SessionCookie
// @Param        id    path      string          true  "Patient id"
// @Param        body  body      patientRequest  true  "Patient"
// @Success      200   {object}  patientResponse
// @Failure      400   {object}  errorResponse
// @Failure      401   {object}  errorResponse
// @Failure      403   {object}  errorResponse
// @Failure      404   {object}  errorResponse
// @Failure      409   {object}  errorResponse
// @Router       /patients/{id} [put]
func (h *PatientHandler) Update(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	var req patientRequest
	if err := bindRequest(c, &req); err != nil {
		return err
	}
	p, err := h.service.Update(c.Request().Context(), ctxActor(c), id, toPatientInput(req))
	if err != nil {
		return err
	}
	metrics.PatientsWrittenTotal.WithLabelValues("update").Inc()
	return c.JSON(http.StatusOK, toPatientResponse(p))
}

// Delete handles DELETE /patients/:id.
//
// @Summary      Delete a patient
// @Tags         patients
// @Produce      json
// @Security     SessionCookie
// @Param        id   path      string  true  "Patient id"
// @Success      200  {object}  messageResponse
// @Failure      400  {object}  errorResponse
// @Failure      401  {object}  errorResponse
// @Failure      403  {object}  errorResponse
// @Failure      404  {object}  errorResponse
// @Router       /patients/{id} [delete]
func (h *PatientHandler) Delete(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	if err := h.service.Delete(c.Request().Context(), ctxActor(c), id); err != nil {
		return err
	}
	metrics.PatientsWrittenTotal.WithLabelValues("delete").Inc()
	return c.JSON(http.StatusOK, messageResponse{Message: "Patient deleted successfully"})
}

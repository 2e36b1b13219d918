package handler

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/artschool-api/internal/service"
	appErrors "github.com/noah-isme/artschool-api/pkg/errors"
	"github.com/noah-isme/artschool-api/pkg/response"
)

// EnrollmentHandler exposes enrollment and payment endpoints.
type EnrollmentHandler struct {
	enrollments *service.EnrollmentService
}

// NewEnrollmentHandler constructs EnrollmentHandler.
func NewEnrollmentHandler(enrollments *service.EnrollmentService) *EnrollmentHandler {
	return &EnrollmentHandler{enrollments: enrollments}
}

// List godoc
// @Summary List enrollments
// @Tags Enrollments
// @Produce json
// @Param student_id query int false "Filter by student"
// @Param course_id query int false "Filter by course"
// @Param status query string false "Only 'active' is supported"
// @Success 200 {object} response.Envelope
// @Router /enrollments [get]
func (h *EnrollmentHandler) List(c *gin.Context) {
	ctx := c.Request.Context()
	studentID, hasStudent, err := queryID(c, "student_id")
	if err != nil {
		response.Error(c, err)
		return
	}
	courseID, hasCourse, err := queryID(c, "course_id")
	if err != nil {
		response.Error(c, err)
		return
	}
	switch {
	case hasStudent:
		enrollments, err := h.enrollments.ByStudent(ctx, studentID)
		listResponse(c, enrollments, err)
	case hasCourse:
		enrollments, err := h.enrollments.ByCourse(ctx, courseID)
		listResponse(c, enrollments, err)
	case strings.EqualFold(c.Query("status"), "active"):
		enrollments, err := h.enrollments.Active(ctx)
		listResponse(c, enrollments, err)
	case c.Query("status") != "":
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "unsupported status filter"))
	default:
		enrollments, err := h.enrollments.List(ctx)
		listResponse(c, enrollments, err)
	}
}

// Get godoc
// @Summary Get enrollment
// @Tags Enrollments
// @Produce json
// @Param id path int true "Enrollment ID"
// @Success 200 {object} response.Envelope
// @Router /enrollments/{id} [get]
func (h *EnrollmentHandler) Get(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	enrollment, err := h.enrollments.Get(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, enrollment, nil)
}

// Enroll godoc
// @Summary Enroll a student in a course
// @Description Creates an ACTIVE enrollment and a PENDING payment for the course fee.
// @Tags Enrollments
// @Accept json
// @Produce json
// @Param payload body service.EnrollRequest true "Enrollment payload"
// @Success 201 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Failure 422 {object} response.Envelope
// @Router /enrollments [post]
func (h *EnrollmentHandler) Enroll(c *gin.Context) {
	var req service.EnrollRequest
	if !bindJSON(c, &req) {
		return
	}
	enrollment, err := h.enrollments.Enroll(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, enrollment)
}

// Drop godoc
// @Summary Drop an enrollment
// @Tags Enrollments
// @Param id path int true "Enrollment ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /enrollments/{id}/drop [post]
func (h *EnrollmentHandler) Drop(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	changed, err := h.enrollments.Drop(c.Request.Context(), id)
	h.respondTransition(c, id, changed, err)
}

// Complete godoc
// @Summary Complete an enrollment
// @Tags Enrollments
// @Param id path int true "Enrollment ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /enrollments/{id}/complete [post]
func (h *EnrollmentHandler) Complete(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	changed, err := h.enrollments.Complete(c.Request.Context(), id)
	h.respondTransition(c, id, changed, err)
}

func (h *EnrollmentHandler) respondTransition(c *gin.Context, id int64, changed bool, err error) {
	if err != nil {
		response.Error(c, err)
		return
	}
	if !changed {
		response.Error(c, appErrors.Clone(appErrors.ErrNotFound, "enrollment not found"))
		return
	}
	enrollment, err := h.enrollments.Get(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, enrollment, nil)
}

// Payments godoc
// @Summary Payments of an enrollment
// @Tags Payments
// @Produce json
// @Param id path int true "Enrollment ID"
// @Success 200 {object} response.Envelope
// @Router /enrollments/{id}/payments [get]
func (h *EnrollmentHandler) Payments(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	payments, err := h.enrollments.Payments(c.Request.Context(), id)
	listResponse(c, payments, err)
}

// ProcessPayment godoc
// @Summary Settle the pending payment
// @Description Completes the oldest PENDING payment of the enrollment with the given method.
// @Tags Payments
// @Accept json
// @Produce json
// @Param id path int true "Enrollment ID"
// @Param payload body service.ProcessPaymentRequest true "Payment method"
// @Success 200 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /enrollments/{id}/payments [post]
func (h *EnrollmentHandler) ProcessPayment(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req service.ProcessPaymentRequest
	if !bindJSON(c, &req) {
		return
	}
	payment, err := h.enrollments.ProcessPayment(c.Request.Context(), id, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, payment, nil)
}

// ListPayments godoc
// @Summary List payments
// @Tags Payments
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /payments [get]
func (h *EnrollmentHandler) ListPayments(c *gin.Context) {
	payments, err := h.enrollments.ListPayments(c.Request.Context())
	listResponse(c, payments, err)
}

// PendingPayments godoc
// @Summary List pending payments
// @Tags Payments
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /payments/pending [get]
func (h *EnrollmentHandler) PendingPayments(c *gin.Context) {
	payments, err := h.enrollments.PendingPayments(c.Request.Context())
	listResponse(c, payments, err)
}

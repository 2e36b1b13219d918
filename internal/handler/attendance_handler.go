package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/artschool-api/internal/models"
	"github.com/noah-isme/artschool-api/internal/service"
	"github.com/noah-isme/artschool-api/pkg/response"
)

// AttendanceHandler exposes attendance endpoints.
type AttendanceHandler struct {
	attendance *service.AttendanceService
}

// NewAttendanceHandler constructs AttendanceHandler.
func NewAttendanceHandler(attendance *service.AttendanceService) *AttendanceHandler {
	return &AttendanceHandler{attendance: attendance}
}

type enrollmentAttendance struct {
	EnrollmentID int64               `json:"enrollment_id"`
	Percentage   float64             `json:"percentage"`
	Records      []models.Attendance `json:"records"`
}

// Record godoc
// @Summary Record attendance
// @Description Inserts the (enrollment, session) row or overwrites its status and notes.
// @Tags Attendance
// @Accept json
// @Produce json
// @Param payload body service.RecordAttendanceRequest true "Attendance payload"
// @Success 200 {object} response.Envelope
// @Router /attendance [post]
func (h *AttendanceHandler) Record(c *gin.Context) {
	var req service.RecordAttendanceRequest
	if !bindJSON(c, &req) {
		return
	}
	if req.Status != "" {
		status, ok := models.ParseAttendanceStatus(string(req.Status))
		if ok {
			req.Status = status
		}
	}
	record, err := h.attendance.Record(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, record, nil)
}

// ByEnrollment godoc
// @Summary Attendance of an enrollment
// @Description Returns the rows with the PRESENT or LATE percentage.
// @Tags Attendance
// @Produce json
// @Param id path int true "Enrollment ID"
// @Success 200 {object} response.Envelope
// @Router /enrollments/{id}/attendance [get]
func (h *AttendanceHandler) ByEnrollment(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	ctx := c.Request.Context()
	records, err := h.attendance.ByEnrollment(ctx, id)
	if err != nil {
		response.Error(c, err)
		return
	}
	percentage, err := h.attendance.Percentage(ctx, id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, enrollmentAttendance{EnrollmentID: id, Percentage: percentage, Records: records}, nil)
}

// BySession godoc
// @Summary Attendance of a session
// @Tags Attendance
// @Produce json
// @Param id path int true "Session ID"
// @Success 200 {object} response.Envelope
// @Router /sessions/{id}/attendance [get]
func (h *AttendanceHandler) BySession(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	records, err := h.attendance.BySession(c.Request.Context(), id)
	listResponse(c, records, err)
}

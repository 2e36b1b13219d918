package handler

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/artschool-api/internal/models"
	"github.com/noah-isme/artschool-api/internal/service"
	appErrors "github.com/noah-isme/artschool-api/pkg/errors"
	"github.com/noah-isme/artschool-api/pkg/response"
)

// StudentHandler exposes student endpoints.
type StudentHandler struct {
	students *service.StudentService
}

// NewStudentHandler constructs StudentHandler.
func NewStudentHandler(students *service.StudentService) *StudentHandler {
	return &StudentHandler{students: students}
}

// List godoc
// @Summary List students
// @Tags Students
// @Produce json
// @Param level query string false "Filter by skill level"
// @Param search query string false "Search by first or last name"
// @Param page query int false "Page"
// @Param limit query int false "Page size"
// @Success 200 {object} response.Envelope
// @Router /students [get]
func (h *StudentHandler) List(c *gin.Context) {
	ctx := c.Request.Context()
	if raw := c.Query("level"); raw != "" {
		level, ok := models.ParseSkillLevel(raw)
		if !ok {
			response.Error(c, appErrors.Clone(appErrors.ErrValidation, "unknown skill level"))
			return
		}
		students, err := h.students.ListByLevel(ctx, level)
		listResponse(c, students, err)
		return
	}
	if search := strings.TrimSpace(c.Query("search")); search != "" {
		students, err := h.students.Search(ctx, search)
		listResponse(c, students, err)
		return
	}
	students, err := h.students.List(ctx)
	listResponse(c, students, err)
}

// Unenrolled godoc
// @Summary Students without any enrollment
// @Tags Students
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /students/unenrolled [get]
func (h *StudentHandler) Unenrolled(c *gin.Context) {
	students, err := h.students.Unenrolled(c.Request.Context())
	listResponse(c, students, err)
}

// Get godoc
// @Summary Get student detail
// @Tags Students
// @Produce json
// @Param id path int true "Student ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /students/{id} [get]
func (h *StudentHandler) Get(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	student, err := h.students.Get(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, student, nil)
}

// Create godoc
// @Summary Register student
// @Description New students always start at BEGINNER.
// @Tags Students
// @Accept json
// @Produce json
// @Param payload body service.RegisterStudentRequest true "Student payload"
// @Success 201 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /students [post]
func (h *StudentHandler) Create(c *gin.Context) {
	var req service.RegisterStudentRequest
	if !bindJSON(c, &req) {
		return
	}
	student, err := h.students.Register(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, student)
}

// Update godoc
// @Summary Update student
// @Tags Students
// @Accept json
// @Produce json
// @Param id path int true "Student ID"
// @Param payload body service.UpdateStudentRequest true "Student payload"
// @Success 200 {object} response.Envelope
// @Router /students/{id} [put]
func (h *StudentHandler) Update(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req service.UpdateStudentRequest
	if !bindJSON(c, &req) {
		return
	}
	student, err := h.students.Update(c.Request.Context(), id, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, student, nil)
}

// Delete godoc
// @Summary Delete student
// @Tags Students
// @Param id path int true "Student ID"
// @Success 204
// @Failure 404 {object} response.Envelope
// @Router /students/{id} [delete]
func (h *StudentHandler) Delete(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	removed, err := h.students.Delete(c.Request.Context(), id)
	deleted(c, removed, err, "student")
}

// SkillTests godoc
// @Summary Skill test history
// @Tags Students
// @Produce json
// @Param id path int true "Student ID"
// @Success 200 {object} response.Envelope
// @Router /students/{id}/skill-tests [get]
func (h *StudentHandler) SkillTests(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	tests, err := h.students.SkillTests(c.Request.Context(), id)
	listResponse(c, tests, err)
}

// ConductSkillTest godoc
// @Summary Record a skill test
// @Description Stores the result and overwrites the student's level with the one derived from the score.
// @Tags Students
// @Accept json
// @Produce json
// @Param id path int true "Student ID"
// @Param payload body service.SkillTestRequest true "Test result"
// @Success 201 {object} response.Envelope
// @Router /students/{id}/skill-tests [post]
func (h *StudentHandler) ConductSkillTest(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req service.SkillTestRequest
	if !bindJSON(c, &req) {
		return
	}
	test, err := h.students.ConductSkillTest(c.Request.Context(), id, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, test)
}

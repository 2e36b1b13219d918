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

// CourseHandler exposes course and session endpoints.
type CourseHandler struct {
	courses *service.CourseService
}

// NewCourseHandler constructs CourseHandler.
func NewCourseHandler(courses *service.CourseService) *CourseHandler {
	return &CourseHandler{courses: courses}
}

// List godoc
// @Summary List courses
// @Description At most one filter applies, checked in the order term, level, instructor_id, search.
// @Tags Courses
// @Produce json
// @Param term query string false "SUMMER or WINTER"
// @Param level query string false "Skill level"
// @Param instructor_id query int false "Instructor ID"
// @Param search query string false "Name substring"
// @Success 200 {object} response.Envelope
// @Router /courses [get]
func (h *CourseHandler) List(c *gin.Context) {
	ctx := c.Request.Context()
	if raw := c.Query("term"); raw != "" {
		term, ok := models.ParseTerm(raw)
		if !ok {
			response.Error(c, appErrors.Clone(appErrors.ErrValidation, "unknown term"))
			return
		}
		courses, err := h.courses.ListByTerm(ctx, term)
		listResponse(c, courses, err)
		return
	}
	if raw := c.Query("level"); raw != "" {
		level, ok := models.ParseSkillLevel(raw)
		if !ok {
			response.Error(c, appErrors.Clone(appErrors.ErrValidation, "unknown skill level"))
			return
		}
		courses, err := h.courses.ListBySkillLevel(ctx, level)
		listResponse(c, courses, err)
		return
	}
	instructorID, hasInstructor, err := queryID(c, "instructor_id")
	if err != nil {
		response.Error(c, err)
		return
	}
	if hasInstructor {
		courses, err := h.courses.ListByInstructor(ctx, instructorID)
		listResponse(c, courses, err)
		return
	}
	if search := strings.TrimSpace(c.Query("search")); search != "" {
		courses, err := h.courses.Search(ctx, search)
		listResponse(c, courses, err)
		return
	}
	courses, err := h.courses.List(ctx)
	listResponse(c, courses, err)
}

// Available godoc
// @Summary Courses with free seats
// @Tags Courses
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /courses/available [get]
func (h *CourseHandler) Available(c *gin.Context) {
	courses, err := h.courses.Available(c.Request.Context())
	listResponse(c, courses, err)
}

// Get godoc
// @Summary Get course
// @Tags Courses
// @Produce json
// @Param id path int true "Course ID"
// @Success 200 {object} response.Envelope
// @Router /courses/{id} [get]
func (h *CourseHandler) Get(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	course, err := h.courses.Get(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, course, nil)
}

// Create godoc
// @Summary Create course
// @Tags Courses
// @Accept json
// @Produce json
// @Param payload body service.CourseRequest true "Course payload"
// @Success 201 {object} response.Envelope
// @Router /courses [post]
func (h *CourseHandler) Create(c *gin.Context) {
	var req service.CourseRequest
	if !bindJSON(c, &req) {
		return
	}
	course, err := h.courses.CreateCourse(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, course)
}

// Update godoc
// @Summary Update course
// @Tags Courses
// @Accept json
// @Produce json
// @Param id path int true "Course ID"
// @Param payload body service.CourseRequest true "Course payload"
// @Success 200 {object} response.Envelope
// @Router /courses/{id} [put]
func (h *CourseHandler) Update(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req service.CourseRequest
	if !bindJSON(c, &req) {
		return
	}
	course, err := h.courses.Update(c.Request.Context(), id, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, course, nil)
}

// Delete godoc
// @Summary Delete course
// @Tags Courses
// @Param id path int true "Course ID"
// @Success 204
// @Router /courses/{id} [delete]
func (h *CourseHandler) Delete(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	removed, err := h.courses.Delete(c.Request.Context(), id)
	deleted(c, removed, err, "course")
}

// Sessions godoc
// @Summary List course sessions
// @Tags Sessions
// @Produce json
// @Param id path int true "Course ID"
// @Success 200 {object} response.Envelope
// @Router /courses/{id}/sessions [get]
func (h *CourseHandler) Sessions(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	sessions, err := h.courses.Sessions(c.Request.Context(), id)
	listResponse(c, sessions, err)
}

// CreateSession godoc
// @Summary Schedule a session
// @Tags Sessions
// @Accept json
// @Produce json
// @Param id path int true "Course ID"
// @Param payload body service.SessionRequest true "Session payload"
// @Success 201 {object} response.Envelope
// @Router /courses/{id}/sessions [post]
func (h *CourseHandler) CreateSession(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req service.SessionRequest
	if !bindJSON(c, &req) {
		return
	}
	session, err := h.courses.CreateSession(c.Request.Context(), id, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, session)
}

// GetSession godoc
// @Summary Get session
// @Tags Sessions
// @Produce json
// @Param id path int true "Session ID"
// @Success 200 {object} response.Envelope
// @Router /sessions/{id} [get]
func (h *CourseHandler) GetSession(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	session, err := h.courses.GetSession(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, session, nil)
}

// DeleteSession godoc
// @Summary Delete session
// @Tags Sessions
// @Param id path int true "Session ID"
// @Success 204
// @Router /sessions/{id} [delete]
func (h *CourseHandler) DeleteSession(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	removed, err := h.courses.DeleteSession(c.Request.Context(), id)
	deleted(c, removed, err, "session")
}

package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/noah-isme/artschool-api/internal/repository/memory"
	"github.com/noah-isme/artschool-api/internal/service"
)

type envelope struct {
	Data       json.RawMessage        `json:"data"`
	Error      *struct{ Code string } `json:"error"`
	Pagination *struct {
		Page       int `json:"page"`
		PageSize   int `json:"page_size"`
		TotalCount int `json:"total_count"`
	} `json:"pagination"`
	Meta map[string]interface{} `json:"meta"`
}

type testAPI struct {
	router *gin.Engine
	token  string
}

func newTestAPI(t *testing.T, authEnabled bool, checks map[string]ReadinessCheck) *testAPI {
	t.Helper()
	gin.SetMode(gin.TestMode)

	metrics := service.NewMetricsService()
	logger := zap.NewNop()
	services := service.NewServices(service.Repositories{
		Students:    memory.NewStudentRepository(),
		SkillTests:  memory.NewSkillTestRepository(),
		Instructors: memory.NewInstructorRepository(),
		Courses:     memory.NewCourseRepository(),
		Sessions:    memory.NewSessionRepository(),
		Enrollments: memory.NewEnrollmentRepository(),
		Payments:    memory.NewPaymentRepository(),
		Attendance:  memory.NewAttendanceRepository(),
	}, service.Options{Metrics: metrics, Logger: logger})

	hash, err := bcrypt.GenerateFromPassword([]byte("office-pass"), bcrypt.MinCost)
	require.NoError(t, err)
	auth := service.NewAuthService(nil, logger, service.AuthConfig{
		AdminEmail:        "office@artschool.test",
		AdminPasswordHash: string(hash),
		AccessTokenSecret: "router-test",
		AccessTokenExpiry: time.Hour,
	})

	handlers := Handlers{
		Students:    NewStudentHandler(services.Students),
		Instructors: NewInstructorHandler(services.Instructors),
		Courses:     NewCourseHandler(services.Courses),
		Enrollments: NewEnrollmentHandler(services.Enrollments),
		Attendance:  NewAttendanceHandler(services.Attendance),
		Reports:     NewReportHandler(services.Reports),
		Auth:        NewAuthHandler(auth),
		Metrics:     NewMetricsHandler(metrics, checks),
	}
	router := NewRouter(RouterConfig{AuthEnabled: authEnabled}, handlers, auth, metrics, logger)
	api := &testAPI{router: router}

	if authEnabled {
		w := api.do(t, http.MethodPost, "/api/v1/auth/login", map[string]string{"email": "office@artschool.test", "password": "office-pass"})
		require.Equal(t, http.StatusOK, w.Code)
		var login struct {
			AccessToken string `json:"access_token"`
		}
		decode(t, w, &login)
		api.token = login.AccessToken
	}
	return api
}

func (a *testAPI) do(t *testing.T, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if a.token != "" {
		req.Header.Set("Authorization", "Bearer "+a.token)
	}
	w := httptest.NewRecorder()
	a.router.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder, dest interface{}) *envelope {
	t.Helper()
	var env envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
	if dest != nil {
		require.NoError(t, json.Unmarshal(env.Data, dest))
	}
	return &env
}

func errorCode(t *testing.T, w *httptest.ResponseRecorder) string {
	t.Helper()
	env := decode(t, w, nil)
	require.NotNil(t, env.Error)
	return env.Error.Code
}

func itoa(id int64) string {
	return strconv.FormatInt(id, 10)
}

type idOnly struct {
	ID int64 `json:"id"`
}

func TestRouterEnrollmentFlow(t *testing.T) {
	api := newTestAPI(t, false, nil)

	var instructor idOnly
	w := api.do(t, http.MethodPost, "/api/v1/instructors", map[string]string{"first_name": "Iris", "last_name": "Painter", "email": "iris@school.test"})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	decode(t, w, &instructor)

	var course idOnly
	w = api.do(t, http.MethodPost, "/api/v1/courses", map[string]interface{}{
		"name": "Watercolor", "term": "SUMMER", "skill_level": "INTERMEDIATE",
		"instructor_id": instructor.ID, "max_capacity": 1, "fee": "180.00",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	decode(t, w, &course)

	var student idOnly
	w = api.do(t, http.MethodPost, "/api/v1/students", map[string]string{"first_name": "Ana", "last_name": "Lopez", "email": "ana@school.test"})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	decode(t, w, &student)

	w = api.do(t, http.MethodPost, "/api/v1/students", map[string]string{"first_name": "Ana", "last_name": "Other", "email": "ANA@school.test"})
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, "DUPLICATE_EMAIL", errorCode(t, w))

	enroll := map[string]int64{"student_id": student.ID, "course_id": course.ID}
	w = api.do(t, http.MethodPost, "/api/v1/enrollments", enroll)
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.Equal(t, "SKILL_MISMATCH", errorCode(t, w))

	w = api.do(t, http.MethodPost, "/api/v1/students/"+itoa(student.ID)+"/skill-tests", map[string]interface{}{"score": 65})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var enrollment idOnly
	w = api.do(t, http.MethodPost, "/api/v1/enrollments", enroll)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	decode(t, w, &enrollment)

	w = api.do(t, http.MethodGet, "/api/v1/payments/pending", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var pending []struct {
		Amount string `json:"amount"`
	}
	env := decode(t, w, &pending)
	require.Len(t, pending, 1)
	assert.Equal(t, "180", pending[0].Amount)
	assert.Equal(t, 1, env.Pagination.TotalCount)

	w = api.do(t, http.MethodPost, "/api/v1/enrollments/"+itoa(enrollment.ID)+"/payments", map[string]string{"method": "CARD"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	w = api.do(t, http.MethodPost, "/api/v1/enrollments/"+itoa(enrollment.ID)+"/payments", map[string]string{"method": "CARD"})
	assert.Equal(t, "NO_PENDING_PAYMENT", errorCode(t, w))

	w = api.do(t, http.MethodGet, "/api/v1/courses/available", nil)
	var available []idOnly
	decode(t, w, &available)
	assert.Empty(t, available)

	w = api.do(t, http.MethodPost, "/api/v1/enrollments/"+itoa(enrollment.ID)+"/drop", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var dropped struct {
		Status string `json:"status"`
	}
	decode(t, w, &dropped)
	assert.Equal(t, "DROPPED", dropped.Status)

	w = api.do(t, http.MethodPost, "/api/v1/enrollments/999/complete", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = api.do(t, http.MethodPost, "/api/v1/enrollments", enroll)
	assert.Equal(t, "ALREADY_ENROLLED", errorCode(t, w))
}

func TestRouterAttendance(t *testing.T) {
	api := newTestAPI(t, false, nil)

	var instructor, course, student, session, enrollment idOnly
	decode(t, api.do(t, http.MethodPost, "/api/v1/instructors", map[string]string{"first_name": "Iris", "last_name": "Painter", "email": "iris@school.test"}), &instructor)
	decode(t, api.do(t, http.MethodPost, "/api/v1/courses", map[string]interface{}{"name": "Sketch", "term": "WINTER", "skill_level": "BEGINNER", "instructor_id": instructor.ID, "fee": 40}), &course)
	decode(t, api.do(t, http.MethodPost, "/api/v1/students", map[string]string{"first_name": "Ana", "last_name": "Lopez", "email": "ana@school.test"}), &student)
	decode(t, api.do(t, http.MethodPost, "/api/v1/courses/"+itoa(course.ID)+"/sessions", map[string]string{"date": "2026-12-01", "start_time": "09:00", "end_time": "11:00"}), &session)
	decode(t, api.do(t, http.MethodPost, "/api/v1/enrollments", map[string]int64{"student_id": student.ID, "course_id": course.ID}), &enrollment)

	w := api.do(t, http.MethodPost, "/api/v1/attendance", map[string]interface{}{"enrollment_id": enrollment.ID, "session_id": session.ID, "status": "late"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = api.do(t, http.MethodGet, "/api/v1/enrollments/"+itoa(enrollment.ID)+"/attendance", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var summary enrollmentAttendance
	decode(t, w, &summary)
	assert.Equal(t, 100.0, summary.Percentage)
	require.Len(t, summary.Records, 1)
	assert.Equal(t, "LATE", string(summary.Records[0].Status))
}

func TestRouterValidationAndNotFound(t *testing.T) {
	api := newTestAPI(t, false, nil)

	w := api.do(t, http.MethodGet, "/api/v1/students/abc", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = api.do(t, http.MethodGet, "/api/v1/students/42", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = api.do(t, http.MethodDelete, "/api/v1/courses/42", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = api.do(t, http.MethodGet, "/api/v1/students?level=expert", nil)
	assert.Equal(t, "VALIDATION_ERROR", errorCode(t, w))

	w = api.do(t, http.MethodGet, "/api/v1/enrollments?status=dropped", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = api.do(t, http.MethodPost, "/api/v1/enrollments", map[string]int64{"student_id": -1, "course_id": 1})
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "NOT_FOUND", errorCode(t, w))
}

func TestRouterPagination(t *testing.T) {
	api := newTestAPI(t, false, nil)
	for _, name := range []string{"Ana", "Ben", "Cleo"} {
		w := api.do(t, http.MethodPost, "/api/v1/students", map[string]string{"first_name": name, "last_name": "Lopez", "email": strings.ToLower(name) + "@school.test"})
		require.Equal(t, http.StatusCreated, w.Code)
	}

	w := api.do(t, http.MethodGet, "/api/v1/students?page=2&limit=2", nil)
	var students []struct {
		FirstName string `json:"first_name"`
	}
	env := decode(t, w, &students)
	require.Len(t, students, 1)
	assert.Equal(t, "Cleo", students[0].FirstName)
	assert.Equal(t, 3, env.Pagination.TotalCount)
	assert.Equal(t, 2, env.Pagination.Page)

	w = api.do(t, http.MethodGet, "/api/v1/students?page=9223372036854775807&limit=50", nil)
	require.Equal(t, http.StatusOK, w.Code)
	env = decode(t, w, &students)
	assert.Empty(t, students)
	assert.Equal(t, 3, env.Pagination.TotalCount)

	w = api.do(t, http.MethodGet, "/api/v1/students?page=4611686018427387904&limit=2", nil)
	require.Equal(t, http.StatusOK, w.Code)
	decode(t, w, &students)
	assert.Empty(t, students)
}

func TestRouterAuthRequired(t *testing.T) {
	api := newTestAPI(t, true, nil)
	require.NotEmpty(t, api.token)

	w := api.do(t, http.MethodGet, "/api/v1/auth/me", nil)
	require.Equal(t, http.StatusOK, w.Code)

	api.token = ""
	w = api.do(t, http.MethodGet, "/api/v1/students", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = api.do(t, http.MethodPost, "/api/v1/auth/login", map[string]string{"email": "office@artschool.test", "password": "nope"})
	assert.Equal(t, "INVALID_CREDENTIALS", errorCode(t, w))

	w = api.do(t, http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestRouterDashboardAndExport(t *testing.T) {
	api := newTestAPI(t, false, nil)
	api.do(t, http.MethodPost, "/api/v1/students", map[string]string{"first_name": "Ana", "last_name": "Lopez", "email": "ana@school.test"})

	w := api.do(t, http.MethodGet, "/api/v1/reports/dashboard", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var dashboard struct {
		Students int `json:"students"`
	}
	env := decode(t, w, &dashboard)
	assert.Equal(t, 1, dashboard.Students)
	assert.Equal(t, false, env.Meta["cache_hit"])

	w = api.do(t, http.MethodGet, "/api/v1/reports/export?kind=students", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "text/csv", w.Header().Get("Content-Type"))
	assert.Contains(t, w.Header().Get("Content-Disposition"), "students-")
	assert.Contains(t, w.Body.String(), "ana@school.test")

	w = api.do(t, http.MethodGet, "/api/v1/reports/export?kind=grades", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestRouterReadiness(t *testing.T) {
	api := newTestAPI(t, false, map[string]ReadinessCheck{
		"postgres": func(ctx context.Context) error { return errors.New("connection refused") },
	})

	w := api.do(t, http.MethodGet, "/ready", nil)
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.Contains(t, w.Body.String(), "connection refused")

	api.do(t, http.MethodGet, "/api/v1/students", nil)
	w = api.do(t, http.MethodGet, "/metrics", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `path="/api/v1/students"`)
	assert.NotContains(t, w.Body.String(), `path="/ready"`)
}

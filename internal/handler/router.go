package handler

import (
	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	"github.com/noah-isme/artschool-api/internal/middleware"
	"github.com/noah-isme/artschool-api/internal/models"
	"github.com/noah-isme/artschool-api/internal/service"
	"github.com/noah-isme/artschool-api/pkg/logger"
	corsmiddleware "github.com/noah-isme/artschool-api/pkg/middleware/cors"
	reqidmiddleware "github.com/noah-isme/artschool-api/pkg/middleware/requestid"
)

// RouterConfig controls the HTTP surface.
type RouterConfig struct {
	APIPrefix      string
	AllowedOrigins []string
	AuthEnabled    bool
	EnableDocs     bool
}

// Handlers groups every endpoint handler mounted by NewRouter.
type Handlers struct {
	Students    *StudentHandler
	Instructors *InstructorHandler
	Courses     *CourseHandler
	Enrollments *EnrollmentHandler
	Attendance  *AttendanceHandler
	Reports     *ReportHandler
	Auth        *AuthHandler
	Metrics     *MetricsHandler
}

// NewRouter builds the gin engine. With auth enabled every API route except
// login requires an ADMIN token.
func NewRouter(cfg RouterConfig, h Handlers, tokens middleware.TokenValidator, metrics *service.MetricsService, logr *zap.Logger) *gin.Engine {
	if logr == nil {
		logr = zap.NewNop()
	}
	if cfg.APIPrefix == "" {
		cfg.APIPrefix = "/api/v1"
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr, "/health", "/ready", "/metrics"))
	r.Use(corsmiddleware.New(cfg.AllowedOrigins))
	r.Use(middleware.Metrics(metrics, "/health", "/ready", "/metrics"))

	r.GET("/health", h.Metrics.Health)
	r.GET("/ready", h.Metrics.Ready)
	r.GET("/metrics", h.Metrics.Prometheus)
	if cfg.EnableDocs {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	api := r.Group(cfg.APIPrefix)
	api.Use(middleware.WithResponseMeta())
	api.POST("/auth/login", h.Auth.Login)

	secured := api.Group("")
	if cfg.AuthEnabled {
		secured.Use(middleware.JWT(tokens), middleware.RequireRoles(models.RoleAdmin))
		secured.GET("/auth/me", h.Auth.Me)
	}
	audit := func(action, resource string) gin.HandlerFunc {
		return middleware.Audit(logr, action, resource)
	}

	students := secured.Group("/students")
	students.GET("", h.Students.List)
	students.POST("", audit("create", "student"), h.Students.Create)
	students.GET("/unenrolled", h.Students.Unenrolled)
	students.GET("/:id", h.Students.Get)
	students.PUT("/:id", audit("update", "student"), h.Students.Update)
	students.DELETE("/:id", audit("delete", "student"), h.Students.Delete)
	students.GET("/:id/skill-tests", h.Students.SkillTests)
	students.POST("/:id/skill-tests", audit("skill-test", "student"), h.Students.ConductSkillTest)

	instructors := secured.Group("/instructors")
	instructors.GET("", h.Instructors.List)
	instructors.POST("", audit("create", "instructor"), h.Instructors.Create)
	instructors.GET("/:id", h.Instructors.Get)
	instructors.PUT("/:id", audit("update", "instructor"), h.Instructors.Update)
	instructors.DELETE("/:id", audit("delete", "instructor"), h.Instructors.Delete)

	courses := secured.Group("/courses")
	courses.GET("", h.Courses.List)
	courses.POST("", audit("create", "course"), h.Courses.Create)
	courses.GET("/available", h.Courses.Available)
	courses.GET("/:id", h.Courses.Get)
	courses.PUT("/:id", audit("update", "course"), h.Courses.Update)
	courses.DELETE("/:id", audit("delete", "course"), h.Courses.Delete)
	courses.GET("/:id/sessions", h.Courses.Sessions)
	courses.POST("/:id/sessions", audit("create", "session"), h.Courses.CreateSession)

	sessions := secured.Group("/sessions")
	sessions.GET("/:id", h.Courses.GetSession)
	sessions.DELETE("/:id", audit("delete", "session"), h.Courses.DeleteSession)
	sessions.GET("/:id/attendance", h.Attendance.BySession)

	enrollments := secured.Group("/enrollments")
	enrollments.GET("", h.Enrollments.List)
	enrollments.POST("", audit("enroll", "enrollment"), h.Enrollments.Enroll)
	enrollments.GET("/:id", h.Enrollments.Get)
	enrollments.POST("/:id/drop", audit("drop", "enrollment"), h.Enrollments.Drop)
	enrollments.POST("/:id/complete", audit("complete", "enrollment"), h.Enrollments.Complete)
	enrollments.GET("/:id/payments", h.Enrollments.Payments)
	enrollments.POST("/:id/payments", audit("process", "payment"), h.Enrollments.ProcessPayment)
	enrollments.GET("/:id/attendance", h.Attendance.ByEnrollment)

	payments := secured.Group("/payments")
	payments.GET("", h.Enrollments.ListPayments)
	payments.GET("/pending", h.Enrollments.PendingPayments)

	secured.POST("/attendance", audit("record", "attendance"), h.Attendance.Record)

	reports := secured.Group("/reports")
	reports.GET("/dashboard", h.Reports.Dashboard)
	reports.GET("/export", h.Reports.Export)

	return r
}

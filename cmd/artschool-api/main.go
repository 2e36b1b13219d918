package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	_ "github.com/noah-isme/artschool-api/api/swagger"
	"github.com/noah-isme/artschool-api/internal/handler"
	"github.com/noah-isme/artschool-api/internal/lock"
	"github.com/noah-isme/artschool-api/internal/repository"
	"github.com/noah-isme/artschool-api/internal/repository/memory"
	"github.com/noah-isme/artschool-api/internal/service"
	"github.com/noah-isme/artschool-api/pkg/cache"
	"github.com/noah-isme/artschool-api/pkg/config"
	"github.com/noah-isme/artschool-api/pkg/database"
	"github.com/noah-isme/artschool-api/pkg/logger"
)

// @title Art School API
// @version 1.0.0
// @description Students, courses, enrollments, payments and attendance for an art school
// @BasePath /api/v1
// @schemes http
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization

const (
	shutdownTimeout = 10 * time.Second
	cacheNamespace  = "artschool:"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logr, err := logger.New(cfg)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logr.Sync() //nolint:errcheck

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, logr); err != nil {
		logr.Fatal("server failed", zap.Error(err))
	}
}

func run(ctx context.Context, cfg *config.Config, logr *zap.Logger) error {
	checks := map[string]handler.ReadinessCheck{}
	metrics := service.NewMetricsService()

	var repos service.Repositories
	switch cfg.Store {
	case config.StorePostgres:
		db, err := database.NewPostgres(ctx, cfg.Database)
		if err != nil {
			return err
		}
		defer db.Close()
		if err := repository.NewMigrator(db).Migrate(ctx); err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
		repos = postgresRepositories(db)
		checks["postgres"] = db.PingContext
	default:
		repos = memoryRepositories()
	}

	var (
		cacheSvc *service.CacheService
		locker   lock.Locker = lock.NewLocal()
	)
	if cfg.Redis.Enabled {
		client, err := cache.NewRedis(ctx, cfg.Redis)
		if err != nil {
			return err
		}
		defer client.Close()
		cacheRepo := repository.NewCacheRepository(client, cacheNamespace, logr.Named("cache"))
		cacheSvc = service.NewCacheService(cacheRepo, metrics, cfg.Dashboard.CacheTTL, logr.Named("cache"), true)
		locker = lock.NewRedis(client, cfg.Enrollment.LockTTL, logr.Named("lock"))
		checks["redis"] = cacheRepo.Ping
	}

	services := service.NewServices(repos, service.Options{
		Cache:                 cacheSvc,
		Locker:                locker,
		Metrics:               metrics,
		Logger:                logr,
		DefaultCourseCapacity: cfg.School.DefaultCourseCapacity,
		DashboardCacheTTL:     cfg.Dashboard.CacheTTL,
	})

	auth := service.NewAuthService(nil, logr.Named("auth"), service.AuthConfig{
		AdminEmail:        cfg.Auth.AdminEmail,
		AdminPasswordHash: cfg.Auth.AdminPasswordHash,
		AccessTokenSecret: cfg.JWT.Secret,
		AccessTokenExpiry: cfg.JWT.Expiration,
	})
	if cfg.Auth.Enabled && (cfg.JWT.Secret == "" || cfg.Auth.AdminPasswordHash == "") {
		return errors.New("auth enabled but JWT_SECRET or ADMIN_PASSWORD_HASH is empty")
	}

	router := handler.NewRouter(handler.RouterConfig{
		APIPrefix:      cfg.APIPrefix,
		AllowedOrigins: cfg.CORS.AllowedOrigins,
		AuthEnabled:    cfg.Auth.Enabled,
		EnableDocs:     cfg.Env != config.EnvProduction,
	}, handler.Handlers{
		Students:    handler.NewStudentHandler(services.Students),
		Instructors: handler.NewInstructorHandler(services.Instructors),
		Courses:     handler.NewCourseHandler(services.Courses),
		Enrollments: handler.NewEnrollmentHandler(services.Enrollments),
		Attendance:  handler.NewAttendanceHandler(services.Attendance),
		Reports:     handler.NewReportHandler(services.Reports),
		Auth:        handler.NewAuthHandler(auth),
		Metrics:     handler.NewMetricsHandler(metrics, checks),
	}, auth, metrics, logr.Named("http"))

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logr.Info("server starting",
			zap.String("addr", srv.Addr),
			zap.String("env", cfg.Env),
			zap.String("store", cfg.Store),
			zap.Bool("redis", cfg.Redis.Enabled),
			zap.Bool("auth", cfg.Auth.Enabled),
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logr.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

func memoryRepositories() service.Repositories {
	return service.Repositories{
		Students:    memory.NewStudentRepository(),
		SkillTests:  memory.NewSkillTestRepository(),
		Instructors: memory.NewInstructorRepository(),
		Courses:     memory.NewCourseRepository(),
		Sessions:    memory.NewSessionRepository(),
		Enrollments: memory.NewEnrollmentRepository(),
		Payments:    memory.NewPaymentRepository(),
		Attendance:  memory.NewAttendanceRepository(),
	}
}

func postgresRepositories(db *sqlx.DB) service.Repositories {
	return service.Repositories{
		Students:    repository.NewStudentRepository(db),
		SkillTests:  repository.NewSkillTestRepository(db),
		Instructors: repository.NewInstructorRepository(db),
		Courses:     repository.NewCourseRepository(db),
		Sessions:    repository.NewSessionRepository(db),
		Enrollments: repository.NewEnrollmentRepository(db),
		Payments:    repository.NewPaymentRepository(db),
		Attendance:  repository.NewAttendanceRepository(db),
	}
}

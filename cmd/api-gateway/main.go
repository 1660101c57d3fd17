package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/jmoiron/sqlx"
	"github.com/redis/go-redis/v9"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	_ "github.com/noah-isme/timetable-api/api/swagger"
	"github.com/noah-isme/timetable-api/internal/handler"
	internalmiddleware "github.com/noah-isme/timetable-api/internal/middleware"
	"github.com/noah-isme/timetable-api/internal/models"
	"github.com/noah-isme/timetable-api/internal/repository"
	"github.com/noah-isme/timetable-api/internal/service"
	"github.com/noah-isme/timetable-api/pkg/cache"
	"github.com/noah-isme/timetable-api/pkg/config"
	"github.com/noah-isme/timetable-api/pkg/database"
	"github.com/noah-isme/timetable-api/pkg/events"
	"github.com/noah-isme/timetable-api/pkg/jobs"
	"github.com/noah-isme/timetable-api/pkg/logger"
	corsmiddleware "github.com/noah-isme/timetable-api/pkg/middleware/cors"
	reqidmiddleware "github.com/noah-isme/timetable-api/pkg/middleware/requestid"
	"github.com/noah-isme/timetable-api/pkg/optimizer"
)

// @title Timetable API
// @version 1.0.0
// @description Timetable core: time grids, slot materialization, room and faculty allocation, conflict detection and student registration.
// @BasePath /api/v1
// @schemes http
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization

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

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		logr.Sugar().Fatalw("failed to connect postgres", "error", err)
	}
	defer db.Close()

	if cfg.Database.AutoMigrate {
		if err := database.Migrate(db.DB, logr); err != nil {
			logr.Sugar().Fatalw("failed to run migrations", "error", err)
		}
	}

	redisClient, err := cache.NewRedis(cfg.Redis)
	if err != nil {
		logr.Sugar().Fatalw("failed to connect redis", "error", err)
	}
	defer redisClient.Close()

	publisher, closePublisher := newPublisher(ctx, cfg, logr)
	defer closePublisher()

	metricsSvc := service.NewMetricsService()
	validate := validator.New()

	timetableRepo := repository.NewTimetableRepository(db)
	slotRepo := repository.NewScheduleSlotRepository(db)
	courseRepo := repository.NewCourseRepository(db)
	facultyRepo := repository.NewFacultyRepository(db)
	roomRepo := repository.NewRoomRepository(db)
	studentRepo := repository.NewStudentRepository(db)
	cacheRepo := repository.NewCacheRepository(redisClient, "timetable:")
	sessionRepo := repository.NewSessionRepository(redisClient)

	cacheSvc := service.NewCacheService(cacheRepo, metricsSvc, cfg.Scheduler.ConflictCacheTTL, logr)
	gridSvc := service.NewGridService(cfg.Scheduler.GridCacheSize, validate, metricsSvc, logr)
	conflictSvc := service.NewConflictService(timetableRepo, slotRepo, courseRepo, cacheSvc, metricsSvc, validate, logr, cfg.Scheduler.ConflictCacheTTL)
	timetableSvc := service.NewTimetableService(timetableRepo, slotRepo, gridSvc, conflictSvc, publisher, validate, logr, service.TimetableServiceConfig{
		PublishBlocksOnHighSeverity: cfg.Scheduler.PublishBlocksOnHighSev,
	})
	materializerSvc := service.NewMaterializerService(timetableRepo, slotRepo, courseRepo, gridSvc, conflictSvc, publisher, metricsSvc, validate, logr)
	allocationSvc := service.NewAllocationService(timetableRepo, slotRepo, courseRepo, facultyRepo, roomRepo, studentRepo, materializerSvc, conflictSvc, publisher, metricsSvc, validate, logr, service.AllocationConfig{
		CapacityBuffer: cfg.Scheduler.CapacityBuffer,
		Order:          cfg.Scheduler.AllocationOrder,
	})
	registrationSvc := service.NewRegistrationService(studentRepo, courseRepo, timetableRepo, slotRepo, publisher, metricsSvc, validate, logr, service.RegistrationConfig{
		MinCredits: cfg.Registration.MinCredits,
		MaxCredits: cfg.Registration.MaxCredits,
	})
	facultyScheduleSvc := service.NewFacultyScheduleService(facultyRepo, timetableRepo, slotRepo, courseRepo, validate, logr)
	var optimizationSvc *service.OptimizationService
	if cfg.Optimizer.Enabled {
		optimizationSvc = service.NewOptimizationService(timetableRepo, courseRepo, facultyRepo, roomRepo, studentRepo, gridSvc, materializerSvc, optimizer.NewClient(cfg.Optimizer, logr), validate, logr)
	} else {
		optimizationSvc = service.NewOptimizationService(timetableRepo, courseRepo, facultyRepo, roomRepo, studentRepo, gridSvc, materializerSvc, nil, validate, logr)
	}
	exportSvc := service.NewExportService(timetableRepo, slotRepo, courseRepo, facultyRepo, roomRepo, registrationSvc, service.ExportConfig{
		CalendarWeeks: cfg.Calendar.Weeks,
		Timezone:      cfg.Calendar.Timezone,
	}, logr)
	tokenSvc := service.NewTokenService(sessionRepo, validate, logr, service.TokenConfig{
		Secret:     cfg.JWT.Secret,
		Issuer:     cfg.JWT.Issuer,
		Expiration: cfg.JWT.Expiration,
		SessionTTL: cfg.JWT.SessionTTL,
	})

	timetableHandler := handler.NewTimetableHandler(timetableSvc)
	schedulingHandler := handler.NewSchedulingHandler(materializerSvc, allocationSvc, optimizationSvc)
	conflictHandler := handler.NewConflictHandler(conflictSvc)
	gridHandler := handler.NewGridHandler(gridSvc)
	studentHandler := handler.NewStudentHandler(registrationSvc)
	facultyHandler := handler.NewFacultyHandler(facultyScheduleSvc)
	exportHandler := handler.NewExportHandler(exportSvc)
	authHandler := handler.NewAuthHandler(tokenSvc)
	metricsHandler := handler.NewMetricsHandler(metricsSvc, readinessChecks(db, redisClient))

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS))
	if cfg.Metrics.Enabled {
		r.Use(internalmiddleware.Metrics(metricsSvc))
		r.GET("/metrics", metricsHandler.Prometheus)
	}

	r.GET("/health", metricsHandler.Health)
	r.GET("/ready", metricsHandler.Ready)

	if cfg.Swagger.Enabled {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	api := r.Group(cfg.APIPrefix, internalmiddleware.Timeout(cfg.RequestTimeout), internalmiddleware.JWT(tokenSvc))
	api.POST("/auth/logout", authHandler.Logout)

	planners := internalmiddleware.RequireRoles(models.RoleAdmin, models.RoleScheduler)
	readers := internalmiddleware.RequireRoles(models.RoleAdmin, models.RoleScheduler, models.RoleFaculty)

	api.POST("/grid/preview", readers, gridHandler.Preview)
	api.POST("/conflicts/analyze", readers, conflictHandler.Analyze)

	timetables := api.Group("/timetables")
	timetables.GET("", readers, timetableHandler.List)
	timetables.POST("", planners, timetableHandler.Create)
	timetables.GET("/:id", readers, timetableHandler.Get)
	timetables.DELETE("/:id", planners, timetableHandler.Delete)
	timetables.PUT("/:id/config", planners, timetableHandler.UpdateConfig)
	timetables.PATCH("/:id/status", planners, timetableHandler.UpdateStatus)
	timetables.GET("/:id/slots", readers, timetableHandler.Slots)
	timetables.GET("/:id/grid", readers, timetableHandler.Grid)
	timetables.GET("/:id/conflicts", readers, conflictHandler.Timetable)
	timetables.GET("/:id/export", readers, exportHandler.Timetable)
	timetables.POST("/:id/materialize-slots", planners, schedulingHandler.Materialize)
	timetables.POST("/:id/auto-allocate", planners, schedulingHandler.AutoAllocate)
	timetables.POST("/:id/optimize", planners, schedulingHandler.Optimize)

	students := api.Group("/students/:id", internalmiddleware.RBAC(string(models.RoleAdmin), string(models.RoleScheduler), internalmiddleware.Self))
	students.POST("/register-course", studentHandler.Register)
	students.POST("/select-slot", studentHandler.SelectSlot)
	students.DELETE("/courses/:courseId", studentHandler.Unregister)
	students.GET("/course/:courseId/slots", studentHandler.CourseSlots)
	students.GET("/schedule", studentHandler.Schedule)
	students.GET("/calendar.ics", exportHandler.Calendar)

	// Faculty members may only read their own schedule.
	faculty := api.Group("/faculty/:id", readers, internalmiddleware.RBAC(string(models.RoleAdmin), string(models.RoleScheduler), internalmiddleware.Self))
	faculty.GET("/schedule", facultyHandler.Schedule)

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logr.Sugar().Infow("server starting", "addr", srv.Addr, "env", cfg.Env)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logr.Sugar().Fatalw("server failed", "error", err)
		}
	}()

	<-ctx.Done()
	logr.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logr.Error("graceful shutdown failed", zap.Error(err))
	}
}

// newPublisher connects to the broker when events are enabled and wraps it in
// the async queue. The returned func releases both.
func newPublisher(ctx context.Context, cfg *config.Config, logr *zap.Logger) (events.Publisher, func()) {
	if !cfg.Events.Enabled {
		return events.NopPublisher{}, func() {}
	}
	amqpPublisher, err := events.NewAMQPPublisher(cfg.Events, logr)
	if err != nil {
		logr.Warn("event broker unavailable, events disabled", zap.Error(err))
		return events.NopPublisher{}, func() {}
	}
	async := events.NewAsyncPublisher(amqpPublisher, jobs.QueueConfig{
		Workers:    2,
		BufferSize: 256,
		MaxRetries: 3,
		RetryDelay: 2 * time.Second,
		Logger:     logr,
	})
	async.Start(ctx)
	return async, func() {
		async.Stop()
		if err := amqpPublisher.Close(); err != nil {
			logr.Warn("closing event broker", zap.Error(err))
		}
	}
}

func readinessChecks(db *sqlx.DB, client *redis.Client) map[string]handler.ReadinessCheck {
	return map[string]handler.ReadinessCheck{
		"postgres": db.PingContext,
		"redis": func(ctx context.Context) error {
			return client.Ping(ctx).Err()
		},
	}
}

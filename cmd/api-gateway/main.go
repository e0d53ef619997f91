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
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	_ "github.com/noah-isme/acs-institute-api/api/swagger"
	"github.com/noah-isme/acs-institute-api/internal/handler"
	"github.com/noah-isme/acs-institute-api/internal/middleware"
	"github.com/noah-isme/acs-institute-api/internal/models"
	"github.com/noah-isme/acs-institute-api/internal/repository"
	"github.com/noah-isme/acs-institute-api/internal/service"
	"github.com/noah-isme/acs-institute-api/pkg/breaker"
	"github.com/noah-isme/acs-institute-api/pkg/cache"
	"github.com/noah-isme/acs-institute-api/pkg/config"
	"github.com/noah-isme/acs-institute-api/pkg/database"
	"github.com/noah-isme/acs-institute-api/pkg/events"
	"github.com/noah-isme/acs-institute-api/pkg/jobs"
	"github.com/noah-isme/acs-institute-api/pkg/logger"
	corsmiddleware "github.com/noah-isme/acs-institute-api/pkg/middleware/cors"
	reqidmiddleware "github.com/noah-isme/acs-institute-api/pkg/middleware/requestid"
)

// @title ACS Institute API
// @version 1.0.0
// @description Course catalog, enrollments, dashboards and salon bookings
// @BasePath /
// @schemes http

const (
	startupTimeout  = 5 * time.Second
	shutdownTimeout = 10 * time.Second
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

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	metrics := service.NewMetricsService()
	validate := validator.New()

	backend, salon, closeDB := openBackend(ctx, cfg, logr)
	defer closeDB()

	coordinator := service.NewCoordinator(backend, metrics, logr.Named("coordinator"))

	redisClient, err := cache.NewRedis(ctx, cfg.Redis)
	if err != nil {
		logr.Warn("redis unavailable, dashboard cache disabled", zap.Error(err))
	}
	cacheRepo := repository.NewCacheRepository(redisClient, "acs", logr)
	defer cacheRepo.Close() //nolint:errcheck
	cacheSvc := service.NewCacheService(cacheRepo, metrics, cfg.Dashboard.CacheTTL, logr, cfg.Dashboard.CacheEnabled && redisClient != nil)

	queue := jobs.NewQueue("change-events", jobs.QueueConfig{
		Workers:    cfg.Jobs.Workers,
		BufferSize: cfg.Jobs.BufferSize,
		MaxRetries: cfg.Jobs.MaxRetries,
		RetryDelay: cfg.Jobs.RetryDelay,
		Logger:     logr,
	})
	// A typed nil publisher would register a handler, so pass nil explicitly.
	var dispatcher *service.ChangeDispatcher
	if publisher := openPublisher(cfg, logr); publisher != nil {
		defer publisher.Close() //nolint:errcheck
		dispatcher = service.NewChangeDispatcher(queue, cacheSvc, publisher, metrics, logr)
	} else {
		dispatcher = service.NewChangeDispatcher(queue, cacheSvc, nil, metrics, logr)
	}
	queue.Start(context.Background())
	defer queue.Stop()
	coordinator.Subscribe(dispatcher.Listener())

	if err := coordinator.Refresh(ctx); err != nil {
		logr.Error("initial load failed", zap.Error(err))
	}

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(middleware.Metrics(metrics, "/metrics"))
	r.Use(corsmiddleware.New(corsmiddleware.DefaultOptions(cfg.CORS.AllowedOrigins)))

	handlers := handler.Handlers{
		System:      handler.NewSystemHandler(coordinator, metrics),
		Metrics:     handler.NewMetricsHandler(metrics.Handler()),
		Courses:     handler.NewCourseHandler(coordinator),
		Enrollments: handler.NewEnrollmentHandler(service.NewEnrollmentService(coordinator, validate, logr)),
		Dashboard:   handler.NewDashboardHandler(service.NewDashboardService(coordinator, cacheSvc, cfg.Dashboard.CacheTTL, logr)),
		Exports:     handler.NewExportHandler(service.NewExportService(coordinator, nil, nil, logr)),
	}
	if cfg.Salon.Enabled {
		handlers.Booking = handler.NewBookingHandler(service.NewBookingService(salon, cfg.Salon.BookingDays, validate, logr))
	}
	handler.Register(r, cfg.APIPrefix, handlers)

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		logr.Info("server starting", zap.String("addr", srv.Addr), zap.String("env", cfg.Env), zap.String("mode", coordinator.Mode()))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logr.Fatal("server failed", zap.Error(err))
		}
	}()

	<-ctx.Done()
	logr.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logr.Error("graceful shutdown failed", zap.Error(err))
	}
}

type salonStore interface {
	ListServices(ctx context.Context) ([]models.SalonService, error)
	FindServiceByID(ctx context.Context, id string) (*models.SalonService, error)
	ListAppointments(ctx context.Context) ([]models.Appointment, error)
	InsertAppointment(ctx context.Context, appointment *models.Appointment) error
}

// openBackend selects PostgreSQL when it is configured and reachable and the
// in-memory sample backend otherwise.
func openBackend(ctx context.Context, cfg *config.Config, logr *zap.Logger) (service.Backend, salonStore, func()) {
	if !cfg.Database.Configured() {
		logr.Info("database not configured, serving sample data")
		return repository.NewMemoryBackend(), repository.NewMemorySalon(), func() {}
	}

	db, err := database.NewPostgres(ctx, cfg.Database, startupTimeout)
	if err != nil {
		logr.Warn("database unreachable, falling back to sample data",
			zap.String("host", cfg.Database.Host),
			zap.String("database", cfg.Database.Name),
			zap.Error(err),
		)
		return repository.NewMemoryBackend(), repository.NewMemorySalon(), func() {}
	}

	cb := breaker.New("postgres", cfg.Breaker, logr)
	closeDB := func() {
		if err := db.Close(); err != nil {
			logr.Warn("closing database", zap.Error(err))
		}
	}
	return repository.NewPostgresBackend(db, cb), repository.NewSalonRepository(db), closeDB
}

// openPublisher connects to RabbitMQ when configured. Failures disable event
// publication without stopping the server.
func openPublisher(cfg *config.Config, logr *zap.Logger) *events.RabbitMQPublisher {
	if !cfg.Events.Enabled() {
		return nil
	}
	cb := breaker.New("rabbitmq", cfg.Breaker, logr)
	publisher, err := events.NewRabbitMQPublisher(cfg.Events.RabbitMQURL, cfg.Events.Queue, cb, logr)
	if err != nil {
		logr.Warn("rabbitmq unavailable, change events will not be published", zap.Error(err))
		return nil
	}
	return publisher
}

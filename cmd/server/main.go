package main

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
	appprocurement "github.com/yc6wppwhf9-cmyk/smart-logistic-portal/internal/application/procurement"
	"github.com/yc6wppwhf9-cmyk/smart-logistic-portal/internal/domain/reliability"
	"github.com/yc6wppwhf9-cmyk/smart-logistic-portal/internal/infrastructure/cache"
	"github.com/yc6wppwhf9-cmyk/smart-logistic-portal/internal/infrastructure/calendar"
	"github.com/yc6wppwhf9-cmyk/smart-logistic-portal/internal/infrastructure/config"
	"github.com/yc6wppwhf9-cmyk/smart-logistic-portal/internal/infrastructure/erp"
	"github.com/yc6wppwhf9-cmyk/smart-logistic-portal/internal/infrastructure/event"
	"github.com/yc6wppwhf9-cmyk/smart-logistic-portal/internal/infrastructure/logger"
	"github.com/yc6wppwhf9-cmyk/smart-logistic-portal/internal/infrastructure/migration"
	"github.com/yc6wppwhf9-cmyk/smart-logistic-portal/internal/infrastructure/persistence"
	"github.com/yc6wppwhf9-cmyk/smart-logistic-portal/internal/infrastructure/scheduler"
	"github.com/yc6wppwhf9-cmyk/smart-logistic-portal/internal/infrastructure/telemetry"
	"github.com/yc6wppwhf9-cmyk/smart-logistic-portal/internal/interfaces/http/handler"
	"github.com/yc6wppwhf9-cmyk/smart-logistic-portal/internal/interfaces/http/middleware"
	"github.com/yc6wppwhf9-cmyk/smart-logistic-portal/internal/interfaces/http/router"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// version is overridden at build time with -ldflags "-X main.version=..."
var version = "dev"

func main() {
	// .env is optional; real environment variables win
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	ctx := context.Background()

	// Bootstrap logger for telemetry setup; replaced once the OTLP log bridge exists
	bootLog, err := logger.New(&logger.Config{Level: cfg.Log.Level, Format: cfg.Log.Format, Output: cfg.Log.Output})
	if err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}

	logProvider, err := telemetry.NewLoggerProvider(ctx, telemetry.LogsConfig{
		Enabled:           cfg.Telemetry.Enabled && cfg.Telemetry.LogsEnabled,
		CollectorEndpoint: cfg.Telemetry.CollectorEndpoint,
		ServiceName:       cfg.Telemetry.ServiceName,
		Insecure:          cfg.Telemetry.Insecure,
	}, bootLog)
	if err != nil {
		bootLog.Fatal("Failed to initialize log exporter", zap.Error(err))
	}

	log, err := logger.New(&logger.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		Output: cfg.Log.Output,
		Extra: []zapcore.Core{
			telemetry.NewZapOTELCore(logProvider, cfg.Telemetry.ServiceName, logger.ParseLevel(cfg.Log.Level)),
		},
	})
	if err != nil {
		bootLog.Fatal("Failed to initialize logger", zap.Error(err))
	}
	defer func() {
		_ = log.Sync()
	}()

	log.Info("Starting Smart Logistic Portal",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
		zap.String("version", version),
	)

	tracerProvider, err := telemetry.NewTracerProvider(ctx, telemetry.Config{
		Enabled:           cfg.Telemetry.Enabled,
		CollectorEndpoint: cfg.Telemetry.CollectorEndpoint,
		SamplingRatio:     cfg.Telemetry.SamplingRatio,
		ServiceName:       cfg.Telemetry.ServiceName,
		Insecure:          cfg.Telemetry.Insecure,
	}, log)
	if err != nil {
		log.Fatal("Failed to initialize tracer", zap.Error(err))
	}

	meterProvider, err := telemetry.NewMeterProvider(ctx, telemetry.MetricsConfig{
		Enabled:           cfg.Telemetry.Enabled,
		CollectorEndpoint: cfg.Telemetry.CollectorEndpoint,
		ExportInterval:    cfg.Telemetry.MetricsInterval,
		ServiceName:       cfg.Telemetry.ServiceName,
		Insecure:          cfg.Telemetry.Insecure,
	}, log)
	if err != nil {
		log.Fatal("Failed to initialize meter", zap.Error(err))
	}

	profiler, err := telemetry.NewProfiler(telemetry.ProfilerConfig{
		Enabled:         cfg.Telemetry.ProfilingEnabled,
		ServerAddress:   cfg.Telemetry.PyroscopeEndpoint,
		ApplicationName: cfg.Telemetry.ServiceName,
	}, log)
	if err != nil {
		log.Fatal("Failed to start profiler", zap.Error(err))
	}
	if profiler.IsEnabled() && tracerProvider.IsEnabled() {
		tracerProvider.EnableSpanProfiles()
	}

	// Database
	db, err := openDatabase(cfg, log)
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error("Error closing database", zap.Error(err))
		}
	}()
	log.Info("Database connected", zap.String("driver", db.Driver()))

	orderRepo := persistence.NewGormPurchaseOrderRepository(db.DB)
	shipmentRepo := persistence.NewGormShipmentRepository(db.DB)

	// Domain engines
	dispatchCalendar, err := calendar.New(cfg.Calendar)
	if err != nil {
		log.Fatal("Invalid dispatch calendar", zap.Error(err))
	}
	planner, err := newPlanner(cfg.Planner, dispatchCalendar)
	if err != nil {
		log.Fatal("Invalid planner configuration", zap.Error(err))
	}
	grader := reliability.NewGrader(graderPolicy(cfg.Grading))

	businessMetrics, err := telemetry.NewBusinessMetrics(meterProvider.Meter("portal.business"))
	if err != nil {
		log.Fatal("Failed to create business metrics", zap.Error(err))
	}

	// Supplier scorecard cache and event wiring
	perfCache, closeCache := cache.NewPerformanceCache(cfg.Redis, cfg.Grading.CacheTTL, log)
	defer func() {
		_ = closeCache()
	}()

	eventBus := event.NewInMemoryEventBus(log)
	eventBus.Subscribe(cache.NewInvalidationHandler(perfCache))
	if cfg.ERP.Enabled {
		eventBus.Subscribe(erp.NewNotifier(cfg.ERP.SystemName, log))
	}
	if cfg.Redis.Enabled {
		client, err := cache.Connect(cfg.Redis)
		if err != nil {
			log.Warn("Redis unavailable, domain events stay in-process", zap.Error(err))
		} else {
			defer func() {
				_ = client.Close()
			}()
			eventBus.Subscribe(event.NewRedisForwarder(client, event.DefaultChannelPrefix))
		}
	}
	if err := eventBus.Start(ctx); err != nil {
		log.Fatal("Failed to start event bus", zap.Error(err))
	}

	// Application services
	orderService := appprocurement.NewOrderService(orderRepo, appprocurement.LifecycleSettings{
		MaxRevisions:  cfg.Lifecycle.MaxRevisions,
		UpdateRetries: cfg.Lifecycle.UpdateRetries,
	}, log)
	orderService.SetEventPublisher(eventBus)
	orderService.SetBusinessMetrics(businessMetrics)

	performanceService := appprocurement.NewPerformanceService(orderRepo, grader, perfCache, log)

	planningService := appprocurement.NewPlanningService(orderRepo, shipmentRepo, planner, performanceService, log)
	planningService.SetEventPublisher(eventBus)
	planningService.SetBusinessMetrics(businessMetrics)

	// Background jobs
	var backlogMonitor *scheduler.BacklogMonitor
	if cfg.Scheduler.Enabled {
		backlogMonitor, err = scheduler.NewBacklogMonitor(scheduler.BacklogMonitorConfig{
			Interval:   cfg.Scheduler.BacklogInterval,
			JobTimeout: cfg.Scheduler.JobTimeout,
		}, planningService, businessMetrics, log)
		if err != nil {
			log.Fatal("Invalid scheduler configuration", zap.Error(err))
		}
		if err := backlogMonitor.Start(ctx); err != nil {
			log.Fatal("Failed to start backlog monitor", zap.Error(err))
		}
	}

	stopLimiter := make(chan struct{})
	var limiter *middleware.RateLimiter
	if cfg.HTTP.RateLimitEnabled {
		limiter = middleware.NewRateLimiter(cfg.HTTP.RateLimitRequests, cfg.HTTP.RateLimitWindow)
		go limiter.Run(stopLimiter)
	}

	sqlDB, err := db.DB.DB()
	if err != nil {
		log.Fatal("Failed to access connection pool", zap.Error(err))
	}

	engine, err := router.NewEngine(router.EngineConfig{
		CORS: middleware.CORSConfig{
			AllowOrigins:     cfg.HTTP.CORSAllowOrigins,
			AllowMethods:     cfg.HTTP.CORSAllowMethods,
			AllowHeaders:     cfg.HTTP.CORSAllowHeaders,
			ExposeHeaders:    []string{middleware.RequestIDKey},
			AllowCredentials: false,
			MaxAge:           12 * time.Hour,
		},
		MaxBodySize:    cfg.HTTP.MaxBodySize,
		RequestTimeout: cfg.HTTP.RequestTimeout,
		RateLimiter:    limiter,
		Tracing: middleware.TracingConfig{
			ServiceName: cfg.Telemetry.ServiceName,
			Enabled:     tracerProvider.IsEnabled(),
		},
		Meter:          meterProvider.Meter("portal.http"),
		Profiling:      profiler.IsEnabled(),
		TrustedProxies: cfg.HTTP.TrustedProxies,
	}, router.Handlers{
		Orders:    handler.NewOrderHandler(orderService),
		Shipments: handler.NewShipmentHandler(planningService),
		Suppliers: handler.NewSupplierHandler(performanceService),
		System:    handler.NewSystemHandler(cfg.App.Name, version, sqlDB),
	}, log)
	if err != nil {
		log.Fatal("Failed to build HTTP engine", zap.Error(err))
	}

	srv := &http.Server{
		Addr:           ":" + cfg.App.Port,
		Handler:        engine,
		ReadTimeout:    cfg.HTTP.ReadTimeout,
		WriteTimeout:   cfg.HTTP.WriteTimeout,
		IdleTimeout:    cfg.HTTP.IdleTimeout,
		MaxHeaderBytes: cfg.HTTP.MaxHeaderBytes,
	}

	go func() {
		log.Info("Server starting", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("Server forced to shutdown", zap.Error(err))
	}
	close(stopLimiter)
	if backlogMonitor != nil {
		if err := backlogMonitor.Stop(shutdownCtx); err != nil {
			log.Warn("Backlog monitor did not stop cleanly", zap.Error(err))
		}
	}
	_ = eventBus.Stop(shutdownCtx)
	if err := profiler.Stop(); err != nil {
		log.Warn("Profiler did not stop cleanly", zap.Error(err))
	}
	if err := meterProvider.Shutdown(shutdownCtx); err != nil {
		log.Warn("Meter provider shutdown failed", zap.Error(err))
	}
	if err := tracerProvider.Shutdown(shutdownCtx); err != nil {
		log.Warn("Tracer provider shutdown failed", zap.Error(err))
	}
	if err := logProvider.Shutdown(shutdownCtx); err != nil {
		bootLog.Warn("Log provider shutdown failed", zap.Error(err))
	}

	log.Info("Server exited gracefully")
}

// openDatabase connects, installs tracing and brings the schema up to date.
// Postgres schemas come from the SQL migrations; sqlite uses the GORM models.
func openDatabase(cfg *config.Config, log *zap.Logger) (*persistence.Database, error) {
	gormLog := logger.NewGormLogger(log, logger.MapGormLogLevel(cfg.Log.Level), cfg.Telemetry.DBSlowQueryThresh)

	dbCfg := cfg.Database
	dbCfg.AutoMigrate = false
	db, err := persistence.NewDatabase(&dbCfg, gormLog)
	if err != nil {
		return nil, err
	}

	dbSystem := "postgresql"
	if cfg.Database.Driver == "sqlite" {
		dbSystem = "sqlite"
	}
	tracing := telemetry.NewDBTracingPlugin(telemetry.DBTracingConfig{
		Enabled:         cfg.Telemetry.Enabled && cfg.Telemetry.DBTraceEnabled,
		LogFullSQL:      cfg.Telemetry.DBLogFullSQL,
		SlowQueryThresh: cfg.Telemetry.DBSlowQueryThresh,
		DBSystem:        dbSystem,
	}, log)
	if err := tracing.RegisterOtelGorm(db.DB); err != nil {
		_ = db.Close()
		return nil, err
	}

	if !cfg.Database.AutoMigrate {
		return db, nil
	}
	if cfg.Database.Driver == "sqlite" {
		err = db.AutoMigrate()
	} else {
		err = migrateUp(cfg.Database.DSN(), log)
	}
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	return db, nil
}

// migrateUp applies the embedded migrations on a dedicated connection;
// closing a migrator closes the connection it was given.
func migrateUp(dsn string, log *zap.Logger) error {
	conn, err := sql.Open("postgres", dsn)
	if err != nil {
		return err
	}
	m, err := migration.New(conn, "", log)
	if err != nil {
		_ = conn.Close()
		return err
	}
	defer func() {
		_ = m.Close()
	}()
	return m.Up()
}

package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	captureapp "github.com/chitosepg/cameracapture/internal/application/capture"
	"github.com/chitosepg/cameracapture/internal/bootstrap"
	"github.com/chitosepg/cameracapture/internal/domain/capture"
	"github.com/chitosepg/cameracapture/internal/infrastructure/cache"
	"github.com/chitosepg/cameracapture/internal/infrastructure/config"
	"github.com/chitosepg/cameracapture/internal/infrastructure/event"
	"github.com/chitosepg/cameracapture/internal/infrastructure/logger"
	"github.com/chitosepg/cameracapture/internal/infrastructure/persistence"
	"github.com/chitosepg/cameracapture/internal/infrastructure/telemetry"
	"github.com/chitosepg/cameracapture/internal/interfaces/http/handler"
	"github.com/chitosepg/cameracapture/internal/interfaces/http/middleware"
	"github.com/chitosepg/cameracapture/internal/interfaces/http/router"
)

const shutdownTimeout = 10 * time.Second

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	// Initialize logger
	log, err := logger.New(logger.FromAppConfig(cfg.Log, cfg.App.Env))
	if err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}
	defer logger.Sync(log)

	ctx := context.Background()

	// OpenTelemetry log export; stdout logging continues either way
	logsProvider, err := telemetry.NewLoggerProvider(ctx, telemetry.LogsConfig{
		Enabled:           cfg.Telemetry.LogsEnabled,
		CollectorEndpoint: cfg.Telemetry.CollectorEndpoint,
		ServiceName:       cfg.Telemetry.ServiceName,
		Insecure:          cfg.Telemetry.Insecure,
	}, log)
	if err != nil {
		log.Fatal("Failed to initialize logs provider", zap.Error(err))
	}
	defer shutdown(log, "logs provider", logsProvider.Shutdown)
	if logsProvider.IsEnabled() {
		log = telemetry.NewBridgedLogger(log, telemetry.NewZapOTELCore(telemetry.ZapBridgeConfig{
			ServiceName:    cfg.Telemetry.ServiceName,
			LoggerProvider: logsProvider,
			Level:          logger.ParseLevel(cfg.Log.Level),
		}))
	}

	log.Info("Starting camera capture service",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
	)

	// Tracing, metrics and profiling
	tracerProvider, err := telemetry.NewTracerProvider(ctx, telemetry.Config{
		Enabled:           cfg.Telemetry.Enabled,
		CollectorEndpoint: cfg.Telemetry.CollectorEndpoint,
		SamplingRatio:     cfg.Telemetry.SamplingRatio,
		ServiceName:       cfg.Telemetry.ServiceName,
		Insecure:          cfg.Telemetry.Insecure,
	}, log)
	if err != nil {
		log.Fatal("Failed to initialize tracer provider", zap.Error(err))
	}
	defer shutdown(log, "tracer provider", tracerProvider.Shutdown)

	meterProvider, err := telemetry.NewMeterProvider(ctx, telemetry.MetricsConfig{
		Enabled:           cfg.Telemetry.Enabled,
		CollectorEndpoint: cfg.Telemetry.CollectorEndpoint,
		ExportInterval:    cfg.Telemetry.MetricsInterval,
		ServiceName:       cfg.Telemetry.ServiceName,
		Insecure:          cfg.Telemetry.Insecure,
	}, log)
	if err != nil {
		log.Fatal("Failed to initialize meter provider", zap.Error(err))
	}
	defer shutdown(log, "meter provider", meterProvider.Shutdown)

	profilerCfg := telemetry.DefaultProfilerConfig(cfg.Telemetry.ServiceName, cfg.Telemetry.ProfilingServerAddress)
	profilerCfg.Enabled = cfg.Telemetry.ProfilingEnabled
	profiler, err := telemetry.NewProfiler(profilerCfg, log)
	if err != nil {
		log.Fatal("Failed to start profiler", zap.Error(err))
	}
	defer func() {
		if err := profiler.Stop(); err != nil {
			log.Error("Error stopping profiler", zap.Error(err))
		}
	}()
	if profiler.IsEnabled() && tracerProvider.IsEnabled() {
		if err := tracerProvider.EnableSpanProfiles(); err != nil {
			log.Warn("Failed to enable span profiles", zap.Error(err))
		}
	}

	// Capture history database
	var history capture.CaptureRecordRepository
	var db *persistence.Database
	if cfg.Capture.HistoryEnabled {
		gormLog := logger.NewGormLogger(log, logger.MapGormLogLevel(cfg.Log.Level),
			logger.WithSlowThreshold(cfg.Telemetry.DBSlowQueryThresh))
		db, err = persistence.NewDatabaseWithCustomLogger(&cfg.Database, gormLog)
		if err != nil {
			log.Fatal("Failed to connect to database", zap.Error(err))
		}
		defer func() {
			if err := db.Close(); err != nil {
				log.Error("Error closing database", zap.Error(err))
			}
		}()

		if err := telemetry.RegisterDBTracing(db.DB, telemetry.DBTracingConfig{
			Enabled:         cfg.Telemetry.DBTraceEnabled,
			LogFullSQL:      cfg.Telemetry.DBLogFullSQL,
			SlowQueryThresh: cfg.Telemetry.DBSlowQueryThresh,
			DBSystem:        cfg.Database.Driver,
		}, log); err != nil {
			log.Fatal("Failed to register database tracing", zap.Error(err))
		}
		if err := db.AutoMigrate(); err != nil {
			log.Fatal("Failed to migrate database", zap.Error(err))
		}
		history = persistence.NewGormCaptureRecordRepository(db.DB)
		log.Info("Capture history enabled", zap.String("driver", cfg.Database.Driver))
	}

	// Event bus: metrics and Redis status fan-out listen to capture events
	eventBus := event.NewInMemoryEventBus(log, event.WithAsync(256))
	captureMetrics, err := telemetry.NewCaptureMetrics(meterProvider.Meter("cameracapture/capture"), log)
	if err != nil {
		log.Fatal("Failed to create capture metrics", zap.Error(err))
	}
	eventBus.Subscribe(captureMetrics)

	var redisClient *redis.Client
	if cfg.Redis.Enabled {
		redisClient, err = cache.NewRedisClient(ctx, cfg.Redis)
		if err != nil {
			log.Fatal("Failed to connect to Redis", zap.Error(err))
		}
		defer func() {
			if err := redisClient.Close(); err != nil {
				log.Error("Error closing Redis client", zap.Error(err))
			}
		}()

		serializer := event.NewEventSerializer()
		event.RegisterCaptureEvents(serializer)
		eventBus.Subscribe(cache.NewRedisStatusPublisher(redisClient, serializer,
			cache.WithChannel(cfg.Redis.Channel),
			cache.WithStatusKey(cfg.Redis.StatusKey),
			cache.WithStatusTTL(cfg.Redis.StatusTTL),
			cache.WithLogger(log),
		))
		log.Info("Redis status publisher enabled", zap.String("addr", cfg.Redis.Addr()))
	}

	if err := eventBus.Start(ctx); err != nil {
		log.Fatal("Failed to start event bus", zap.Error(err))
	}
	defer shutdown(log, "event bus", eventBus.Stop)

	// Render target and output storage
	target, err := bootstrap.NewTarget(cfg.Target, log)
	if err != nil {
		log.Fatal("Failed to create render target", zap.Error(err))
	}
	defer func() {
		if err := target.Close(); err != nil {
			log.Error("Error closing render target", zap.Error(err))
		}
	}()

	output, err := bootstrap.NewStorage(ctx, cfg.Storage, log)
	if err != nil {
		log.Fatal("Failed to create output storage", zap.Error(err))
	}

	// Capture session and tick loop
	settings, err := captureapp.NewSettingsStore(bootstrap.CaptureSettings(cfg.Capture))
	if err != nil {
		log.Fatal("Invalid capture settings", zap.Error(err))
	}
	session, err := captureapp.NewSession(captureapp.SessionConfig{
		Target:   telemetry.NewTracedTarget(target, cfg.Target.Kind),
		Storage:  output,
		Settings: settings,
		Options:  bootstrap.CaptureOptions(cfg.Capture),
		Events:   eventBus,
		History:  history,
		Logger:   log.Named("capture"),
	})
	if err != nil {
		log.Fatal("Failed to create capture session", zap.Error(err))
	}

	loop := captureapp.NewLoop(session, cfg.Capture.TickInterval, log.Named("loop"))
	if err := loop.Start(ctx); err != nil {
		log.Fatal("Failed to start capture loop", zap.Error(err))
	}
	defer shutdown(log, "capture loop", loop.Stop)

	captureService := captureapp.NewCaptureService(loop, settings, history, output, target, log)

	// Initialize HTTP handlers
	captureHandler := handler.NewCaptureHandler(captureService)
	settingsHandler := handler.NewSettingsHandler(captureService)
	systemHandler := handler.NewSystemHandler(cfg.App.Name, telemetry.ServiceVersion, healthChecks(db, redisClient))

	// Set Gin mode based on environment
	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	// Setup validation
	middleware.SetupValidator()

	engine := gin.New()
	if len(cfg.HTTP.TrustedProxies) > 0 {
		if err := engine.SetTrustedProxies(cfg.HTTP.TrustedProxies); err != nil {
			log.Warn("Failed to set trusted proxies", zap.Error(err))
		}
	}

	httpMetrics, err := middleware.HTTPMetrics(meterProvider.Meter("cameracapture/http"))
	if err != nil {
		log.Fatal("Failed to create HTTP metrics", zap.Error(err))
	}

	tracingCfg := middleware.DefaultTracingConfig()
	tracingCfg.ServiceName = cfg.Telemetry.ServiceName
	tracingCfg.Enabled = cfg.Telemetry.Enabled

	corsCfg := middleware.DefaultCORSConfig()
	corsCfg.AllowOrigins = cfg.HTTP.CORSAllowOrigins
	corsCfg.AllowMethods = cfg.HTTP.CORSAllowMethods
	corsCfg.AllowHeaders = cfg.HTTP.CORSAllowHeaders

	// Middleware order: request id first so every later layer can log it,
	// tracing before the logger so request logs carry trace ids
	engine.Use(middleware.RequestID())
	engine.Use(middleware.Tracing(tracingCfg))
	engine.Use(middleware.SpanEnricher())
	engine.Use(logger.Recovery(log))
	engine.Use(logger.GinMiddleware(log))
	engine.Use(httpMetrics)
	engine.Use(middleware.Profiling(profiler.IsEnabled()))
	engine.Use(middleware.Secure())
	engine.Use(middleware.CORS(corsCfg))
	engine.Use(middleware.BodyLimit(cfg.HTTP.MaxBodySize))

	var limiter *middleware.RateLimiter
	if cfg.HTTP.CaptureRateLimit > 0 {
		limiter = middleware.NewRateLimiter(cfg.HTTP.CaptureRateLimit, cfg.HTTP.CaptureRateWindow)
	}

	router.NewRouter(engine, router.WithAPIVersion("v1")).
		Register(router.CaptureRoutes(captureHandler, settingsHandler, limiter)).
		Register(router.SystemRoutes(systemHandler)).
		RegisterRoot(router.HealthRoutes(systemHandler)).
		Setup()

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

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("Server forced to shutdown", zap.Error(err))
	}

	log.Info("Server exited")
}

// shutdown runs stop with a bounded context and logs failures
func shutdown(log *zap.Logger, name string, stop func(context.Context) error) {
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := stop(ctx); err != nil {
		log.Error("Error stopping "+name, zap.Error(err))
	}
}

// healthChecks probes the optional backing services
func healthChecks(db *persistence.Database, redisClient *redis.Client) map[string]handler.HealthCheck {
	checks := map[string]handler.HealthCheck{}
	if db != nil {
		checks["database"] = func(ctx context.Context) error { return db.Ping(ctx) }
	}
	if redisClient != nil {
		checks["redis"] = func(ctx context.Context) error { return redisClient.Ping(ctx).Err() }
	}
	return checks
}

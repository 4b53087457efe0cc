package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	appcollections "github.com/motoshop/backend/internal/application/collections"
	"github.com/motoshop/backend/internal/domain/collections"
	"github.com/motoshop/backend/internal/infrastructure/cache"
	"github.com/motoshop/backend/internal/infrastructure/config"
	"github.com/motoshop/backend/internal/infrastructure/event"
	"github.com/motoshop/backend/internal/infrastructure/export"
	"github.com/motoshop/backend/internal/infrastructure/logger"
	"github.com/motoshop/backend/internal/infrastructure/persistence"
	"github.com/motoshop/backend/internal/infrastructure/scheduler"
	"github.com/motoshop/backend/internal/infrastructure/telemetry"
	"github.com/motoshop/backend/internal/interfaces/http/handler"
	"github.com/motoshop/backend/internal/interfaces/http/router"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

//	@title			Motoshop Cobros API
//	@version		1.0
//	@description	Cuotas, alertas de pago y cartera de clientes financiados
//	@BasePath		/

const version = "1.0.0"

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	log, err := logger.New(&logger.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		Output: cfg.Log.Output,
	}, cfg.App.Env)
	if err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}
	defer func() {
		_ = log.Sync()
	}()

	log.Info("Starting Motoshop cobros",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
		zap.String("timezone", cfg.App.Location().String()),
	)

	ctx := context.Background()

	tp, err := telemetry.NewTracerProvider(ctx, telemetry.ConfigFromSettings(cfg.Telemetry), log)
	if err != nil {
		log.Fatal("Failed to initialize tracing", zap.Error(err))
	}
	mp, err := telemetry.NewMeterProvider(ctx, telemetry.MetricsConfigFromSettings(cfg.Telemetry), log)
	if err != nil {
		log.Fatal("Failed to initialize metrics", zap.Error(err))
	}

	db, err := persistence.NewDatabase(&cfg.Database, persistence.Options{
		Logger:   log,
		LogLevel: cfg.Log.Level,
		FullSQL:  cfg.Telemetry.DBLogFullSQL,
	})
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error("Error closing database", zap.Error(err))
		}
	}()
	dbTracing := telemetry.DefaultDBTracingConfig()
	dbTracing.Enabled = cfg.Telemetry.Enabled && cfg.Telemetry.DBTraceEnabled
	dbTracing.LogFullSQL = cfg.Telemetry.DBLogFullSQL
	if err := telemetry.NewDBTracingPlugin(dbTracing, log).Register(db.DB); err != nil {
		log.Fatal("Failed to register database tracing", zap.Error(err))
	}
	log.Info("Database connected successfully")

	backends, err := cache.NewFactory(cfg.Redis, cache.WithLogger(log)).Create(ctx)
	if err != nil {
		log.Fatal("Failed to initialize cache", zap.Error(err))
	}
	defer func() {
		if err := backends.Close(); err != nil {
			log.Error("Error closing cache", zap.Error(err))
		}
	}()

	// Repositories
	installmentRepo := persistence.NewGormInstallmentRepository(db.DB)
	paymentRepo := persistence.NewGormPaymentRepository(db.DB)
	alertRepo := persistence.NewGormAlertRepository(db.DB)
	saleRepo := persistence.NewGormFinancedSaleRepository(db.DB)
	txScope := persistence.NewGormTransactionScope(db.DB)

	// Event bus: cache invalidation and metrics follow every committed change
	eventBus := event.NewInMemoryEventBus(log)
	eventBus.Subscribe(appcollections.NewSummaryInvalidationHandler(backends.Summaries, log))
	metrics, err := telemetry.NewCollectionsMetrics(mp.Meter(telemetry.CollectionsMeterName), log)
	if err != nil {
		log.Fatal("Failed to initialize collections metrics", zap.Error(err))
	}
	eventBus.Subscribe(metrics)
	if err := eventBus.Start(ctx); err != nil {
		log.Fatal("Failed to start event bus", zap.Error(err))
	}

	// Services
	clock := appcollections.SystemClock{Location: cfg.App.Location()}
	settings := collectionsSettings(cfg.Collections)

	installmentService := appcollections.NewInstallmentService(installmentRepo, saleRepo, txScope, clock, settings, log)
	installmentService.SetEventPublisher(eventBus)
	alertService := appcollections.NewAlertService(alertRepo, installmentRepo, txScope, clock, settings, log)
	alertService.SetEventPublisher(eventBus)
	reportService := appcollections.NewReportService(installmentRepo, alertRepo, saleRepo, paymentRepo, clock, settings, log)
	reportService.SetSummaryCache(backends.Summaries)
	reportService.SetExporter(export.NewXLSXStandingsExporter())

	// Background alert scan
	scanTrigger := scheduler.NewAlertScanTrigger(scheduler.ConfigFromSettings(cfg.Scheduler), alertService, backends.Claims, log)
	scanTrigger.SetObserver(metrics)
	if err := scanTrigger.Start(ctx); err != nil {
		log.Fatal("Failed to start alert scan scheduler", zap.Error(err))
	}

	// HTTP
	engine, stopEngine, err := router.NewEngine(router.EngineOptions{
		ServiceName:    cfg.Telemetry.ServiceName,
		HTTP:           cfg.HTTP,
		TracingEnabled: tp.IsEnabled(),
		Meters:         mp,
		Logger:         log,
	})
	if err != nil {
		log.Fatal("Failed to build HTTP engine", zap.Error(err))
	}

	systemHandler := handler.NewSystemHandler(cfg.App.Name, version)
	systemHandler.AddCheck("database", db.Ping)
	engine.GET("/health", systemHandler.Health)

	router.NewRouter(engine).
		Register(router.NewCollectionsGroup(router.CollectionsHandlers{
			Installments: handler.NewInstallmentHandler(installmentService),
			Alerts:       handler.NewAlertHandler(alertService),
			Reports:      handler.NewReportHandler(reportService),
		})).
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
	stopEngine()
	if err := scanTrigger.Stop(shutdownCtx); err != nil {
		log.Error("Alert scan scheduler did not stop cleanly", zap.Error(err))
	}
	if err := eventBus.Stop(shutdownCtx); err != nil {
		log.Error("Error stopping event bus", zap.Error(err))
	}
	if err := mp.Shutdown(shutdownCtx); err != nil {
		log.Error("Error flushing metrics", zap.Error(err))
	}
	if err := tp.Shutdown(shutdownCtx); err != nil {
		log.Error("Error flushing traces", zap.Error(err))
	}

	log.Info("Server exited gracefully")
}

// collectionsSettings maps configured thresholds onto service settings,
// keeping defaults for anything left at zero
func collectionsSettings(cfg config.CollectionsConfig) appcollections.Settings {
	s := appcollections.DefaultSettings()
	if cfg.UpcomingHorizonDays > 0 {
		s.HorizonDays = cfg.UpcomingHorizonDays
	}
	if cfg.HighRiskThreshold > 0 {
		s.HighRiskThreshold = cfg.HighRiskThreshold
	}
	s.HighRiskDaysOverdue = cfg.HighRiskDaysOverdue
	if cfg.SummaryCacheTTL > 0 {
		s.SummaryTTL = cfg.SummaryCacheTTL
	}
	if cfg.TopAtRiskDefault > 0 {
		s.TopAtRiskDefault = cfg.TopAtRiskDefault
	}
	s.LateFee = collections.LateFeePolicy{
		DailyRate: decimal.NewFromFloat(cfg.LateFeeDailyRate),
		GraceDays: cfg.LateFeeGraceDays,
		CapRatio:  decimal.NewFromFloat(cfg.LateFeeCapRatio),
	}
	return s
}

package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	appledger "github.com/medstock/backend/internal/application/ledger"
	appreport "github.com/medstock/backend/internal/application/report"
	"github.com/medstock/backend/internal/domain/ledger"
	"github.com/medstock/backend/internal/infrastructure/config"
	"github.com/medstock/backend/internal/infrastructure/event"
	"github.com/medstock/backend/internal/infrastructure/logger"
	"github.com/medstock/backend/internal/infrastructure/persistence"
	"github.com/medstock/backend/internal/interfaces/http/handler"
	"github.com/medstock/backend/internal/interfaces/http/middleware"
	"github.com/medstock/backend/internal/interfaces/http/router"
	"go.uber.org/zap"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("failed to load configuration: " + err.Error())
	}

	log, err := logger.New(&logger.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		Output: cfg.Log.Output,
	})
	if err != nil {
		panic("failed to initialize logger: " + err.Error())
	}
	defer func() {
		_ = logger.Sync(log)
	}()

	log.Info("Starting MedStock backend",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
	)

	db, err := persistence.NewDatabase(&cfg.Database)
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error("Failed to close database", zap.Error(err))
		}
	}()

	// Repositories and transaction scope
	medicineRepo := persistence.NewGormMedicineRepository(db.DB)
	movementRepo := persistence.NewGormMovementRepository(db.DB)
	scope := persistence.NewGormTransactionScope(db.DB)

	// Application services
	ledgerService := appledger.NewLedgerService(medicineRepo, movementRepo, scope)
	reconciliationService := appreport.NewReconciliationService(medicineRepo, movementRepo)
	analyticsService := appreport.NewAnalyticsService(medicineRepo, movementRepo, appreport.AnalyticsConfig{
		LookbackDays:        cfg.Analytics.LookbackDays,
		MinimumBatch:        cfg.Analytics.MinimumBatch,
		BufferDays:          cfg.Analytics.BufferDays,
		FastMoverThreshold:  cfg.Analytics.FastMoverThreshold,
		DaysOfStockSentinel: cfg.Analytics.DaysOfStockSentinel,
	})

	// Domain event wiring: stock movements that cross the reorder level
	// raise alerts through the in-memory bus.
	eventBus := event.NewInMemoryEventBus(log).
		WithHandlerTimeout(cfg.Event.HandlerTimeout).
		WithAsync(cfg.Event.Async)
	lowStockHandler := appledger.NewLowStockHandler(log).
		WithNotifier(appledger.NewLoggingLowStockNotifier(log))
	eventBus.Subscribe(lowStockHandler, ledger.EventTypeStockBelowReorder)
	ledgerService.SetEventPublisher(eventBus)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := eventBus.Start(ctx); err != nil {
		log.Fatal("Failed to start event bus", zap.Error(err))
	}

	engine := newEngine(cfg, log)

	r := router.New(engine)
	r.Register(
		handler.NewMedicineHandler(ledgerService),
		handler.NewReportHandler(reconciliationService, analyticsService),
		handler.NewSystemHandler(db),
	)

	srv := &http.Server{
		Addr:           ":" + cfg.App.Port,
		Handler:        engine,
		ReadTimeout:    cfg.HTTP.ReadTimeout,
		WriteTimeout:   cfg.HTTP.WriteTimeout,
		IdleTimeout:    cfg.HTTP.IdleTimeout,
		MaxHeaderBytes: cfg.HTTP.MaxHeaderBytes,
	}

	go func() {
		log.Info("HTTP server listening", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("HTTP server failed", zap.Error(err))
		}
	}()

	<-ctx.Done()
	log.Info("Shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("HTTP server shutdown failed", zap.Error(err))
	}
	if err := eventBus.Stop(shutdownCtx); err != nil {
		log.Error("Event bus shutdown failed", zap.Error(err))
	}

	log.Info("Shutdown complete")
}

// newEngine builds the gin engine with the shared middleware stack.
func newEngine(cfg *config.Config, log *zap.Logger) *gin.Engine {
	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	engine := gin.New()
	if len(cfg.HTTP.TrustedProxies) > 0 {
		if err := engine.SetTrustedProxies(cfg.HTTP.TrustedProxies); err != nil {
			log.Warn("Failed to set trusted proxies", zap.Error(err))
		}
	}

	corsConfig := middleware.DefaultCORSConfig()
	corsConfig.AllowOrigins = cfg.HTTP.CORSAllowOrigins
	corsConfig.AllowMethods = cfg.HTTP.CORSAllowMethods
	corsConfig.AllowHeaders = cfg.HTTP.CORSAllowHeaders

	engine.Use(
		middleware.RequestID(),
		logger.GinMiddleware(log),
		logger.Recovery(log),
		middleware.CORSWithConfig(corsConfig),
		middleware.Secure(),
	)
	return engine
}

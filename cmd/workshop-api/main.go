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
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	_ "github.com/atelier-ops/workshop-api/api/swagger"
	"github.com/atelier-ops/workshop-api/internal/handler"
	"github.com/atelier-ops/workshop-api/internal/middleware"
	"github.com/atelier-ops/workshop-api/internal/mirror"
	"github.com/atelier-ops/workshop-api/internal/models"
	"github.com/atelier-ops/workshop-api/internal/notify"
	"github.com/atelier-ops/workshop-api/internal/qr"
	"github.com/atelier-ops/workshop-api/internal/repository"
	"github.com/atelier-ops/workshop-api/internal/schema"
	"github.com/atelier-ops/workshop-api/internal/service"
	"github.com/atelier-ops/workshop-api/pkg/cache"
	"github.com/atelier-ops/workshop-api/pkg/config"
	"github.com/atelier-ops/workshop-api/pkg/database"
	"github.com/atelier-ops/workshop-api/pkg/label"
	"github.com/atelier-ops/workshop-api/pkg/logger"
	corsmiddleware "github.com/atelier-ops/workshop-api/pkg/middleware/cors"
	reqidmiddleware "github.com/atelier-ops/workshop-api/pkg/middleware/requestid"
)

// @title Workshop API
// @version 1.0.0
// @description Garment workshop backend: batch lifecycle, employee registry, spreadsheet sync
// @BasePath /
// @schemes http

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

	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		logr.Fatal("failed to connect to database", zap.Error(err))
	}
	defer db.Close()

	if err := database.RunMigrations(db.DB, logr); err != nil {
		logr.Fatal("failed to run migrations", zap.Error(err))
	}

	redisClient, err := cache.NewRedis(cfg.Redis)
	if err != nil {
		logr.Warn("redis unavailable, alert throttling disabled", zap.Error(err))
		redisClient = nil
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Repositories. The audit repository goes first so every writing
	// repository captures into the shadow queues.
	auditRepo := repository.NewAuditRepository(db, logr)
	employeeRepo := repository.NewEmployeeRepository(db, auditRepo)
	batchRepo := repository.NewBatchRepository(db, auditRepo)
	remakeRepo := repository.NewRemakeRepository(db, auditRepo)
	paymentRepo := repository.NewPaymentRepository(db, auditRepo)
	rowRepo := repository.NewRowRepository(db)

	// Outbound chat notifications run through a buffered dispatcher so a
	// slow gateway never stalls a request.
	gatewayClient := notify.NewGatewayClient(cfg.Notify.GatewayURL, cfg.Notify.Timeout)
	dispatcher := notify.NewDispatcher(gatewayClient, cfg.Notify, logr)
	dispatcher.Start(ctx)
	defer dispatcher.Stop()

	alerter := notify.NewAlerter(dispatcher, redisClient, cfg.Notify.ManagerIDs, cfg.Notify.AlertThrottle, logr)

	metricsSvc := service.NewMetricsService()

	// Spreadsheet mirror.
	sheetsAPI := mirror.NewClient(cfg.Sheets.BaseURL, cfg.Sheets.Token, cfg.Sheets.SpreadsheetID, cfg.Sheets.Timeout)
	projector := mirror.NewProjector(sheetsAPI, metricsSvc, logr)
	pusher := mirror.NewPusher(auditRepo, projector, alerter, metricsSvc, cfg.Sync, logr)
	puller := mirror.NewPuller(rowRepo, projector, alerter, metricsSvc, logr)
	reconciler := mirror.NewReconciler(rowRepo, sheetsAPI, logr)

	if cfg.Sync.Enabled {
		if err := mirror.Bootstrap(ctx, sheetsAPI, logr); err != nil {
			logr.Error("sheet bootstrap failed", zap.Error(err))
		}
		go pusher.Run(ctx)
		go observeQueueDepth(ctx, auditRepo, metricsSvc)
	}

	// Services.
	authSvc := service.NewAuthService(employeeRepo, cfg.Gateway.Key, cfg.JWT, logr)
	employeeSvc := service.NewEmployeeService(employeeRepo, dispatcher, cfg.Notify.ManagerIDs, logr)
	batchSvc := service.NewBatchService(batchRepo, dispatcher,
		qr.NewGatewayEncoder(cfg.Notify.GatewayURL, cfg.Notify.Timeout), label.NewRenderer(), logr)
	remakeSvc := service.NewRemakeService(remakeRepo, dispatcher, cfg.Notify.ManagerIDs, logr)
	paymentSvc := service.NewPaymentService(paymentRepo, logr)
	exportSvc := service.NewExportService(rowRepo, logr)

	// Handlers.
	authHandler := handler.NewAuthHandler(authSvc)
	employeeHandler := handler.NewEmployeeHandler(employeeSvc)
	batchHandler := handler.NewBatchHandler(batchSvc)
	remakeHandler := handler.NewRemakeHandler(remakeSvc)
	paymentHandler := handler.NewPaymentHandler(paymentSvc)
	sheetsHandler := handler.NewSheetsHandler(puller, reconciler)
	exportHandler := handler.NewExportHandler(exportSvc, cfg.Exports.Enabled)
	metricsHandler := handler.NewMetricsHandler(metricsSvc)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS))
	r.Use(middleware.Metrics(metricsSvc))

	r.GET("/health", metricsHandler.Health)
	r.GET("/metrics", metricsHandler.Prometheus)

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	api := r.Group(cfg.APIPrefix)

	// Gateway-only surface: token exchange, registration and the
	// spreadsheet webhook authenticate with the shared key.
	gatewayOnly := api.Group("", middleware.GatewayKey(authSvc))
	gatewayOnly.POST("/auth/token", authHandler.Exchange)
	gatewayOnly.POST("/employees", employeeHandler.Register)
	gatewayOnly.POST("/sheets/edits", sheetsHandler.Edit)

	authed := api.Group("", middleware.JWT(authSvc))

	managers := authed.Group("", middleware.RequireRoles(models.RoleManager))
	managers.POST("/employees/:id/review", employeeHandler.Review)
	managers.GET("/employees", employeeHandler.List)
	managers.POST("/payments", paymentHandler.Create)
	managers.POST("/sheets/resync", sheetsHandler.Resync)
	managers.GET("/exports/:table", exportHandler.Export)

	authed.GET("/employees/:id", middleware.RBAC("MANAGER", "SELF"), employeeHandler.Get)
	authed.GET("/employees/:id/payments", middleware.RBAC("MANAGER", "SELF"), paymentHandler.ListByEmployee)

	authed.POST("/batches", middleware.RequireRoles(models.RoleCutter, models.RoleManager), batchHandler.Create)
	authed.GET("/batches", batchHandler.List)
	authed.GET("/batches/:id", batchHandler.Get)
	authed.GET("/batches/:id/label", batchHandler.Label)
	authed.POST("/batches/scan", batchHandler.Scan)
	authed.POST("/batches/:id/take", middleware.RequireRoles(models.RoleSeamstress), batchHandler.Take)
	authed.POST("/batches/:id/finish", middleware.RequireRoles(models.RoleSeamstress), batchHandler.FinishSewing)
	authed.POST("/batches/:id/review", middleware.RequireRoles(models.RoleController, models.RoleManager), batchHandler.Review)
	authed.POST("/batches/:id/rework/start", middleware.RequireRoles(models.RoleSeamstress), batchHandler.StartRework)
	authed.POST("/batches/:id/rework/finish", middleware.RequireRoles(models.RoleSeamstress), batchHandler.FinishRework)

	authed.POST("/remakes", remakeHandler.Create)
	authed.GET("/remakes", remakeHandler.List)
	authed.GET("/remakes/:id", remakeHandler.Get)
	remakeOps := authed.Group("", middleware.RequireRoles(models.RoleManager))
	remakeOps.POST("/remakes/:id/start", remakeHandler.Start)
	remakeOps.POST("/remakes/:id/finish", remakeHandler.Finish)

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Port),
		Handler: r,
	}

	go func() {
		logr.Info("server starting", zap.String("addr", srv.Addr), zap.String("env", cfg.Env))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logr.Fatal("server failed", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logr.Info("shutting down")
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logr.Error("graceful shutdown failed", zap.Error(err))
	}
}

func observeQueueDepth(ctx context.Context, audit *repository.AuditRepository, metrics *service.MetricsService) {
	ticker := time.NewTicker(30 * time.Second)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			for _, table := range schema.Tables {
				depth, err := audit.QueueDepth(ctx, table.Name)
				if err != nil {
					continue
				}
				metrics.ObserveQueueDepth(table.Name, depth)
			}
		}
	}
}

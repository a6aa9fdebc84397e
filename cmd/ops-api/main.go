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

	"github.com/dimitrije/internal-ops/internal/config"
	"github.com/dimitrije/internal-ops/internal/database"
	"github.com/dimitrije/internal-ops/internal/handlers"
	"github.com/dimitrije/internal-ops/internal/logger"
	authmw "github.com/dimitrije/internal-ops/internal/middleware"
	"github.com/dimitrije/internal-ops/internal/queue"
	"github.com/dimitrije/internal-ops/internal/render"
	"github.com/dimitrije/internal-ops/internal/services"
	"github.com/dimitrije/internal-ops/internal/sse"
	"github.com/dimitrije/internal-ops/internal/storage"
	"github.com/m1z23r/drift/pkg/drift"
	"github.com/m1z23r/drift/pkg/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	zlog, err := logger.New(cfg.IsProduction(), cfg.LogLevel)
	if err != nil {
		log.Fatalf("Failed to create logger: %v", err)
	}
	defer func() { _ = zlog.Sync() }()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	db, err := database.New(ctx, cfg.DatabaseURL)
	if err != nil {
		zlog.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer db.Close()

	if err := db.Migrate(ctx); err != nil {
		zlog.Fatal("Failed to run migrations", zap.Error(err))
	}

	store, err := storage.Open(ctx, cfg.MinIO, zlog)
	if err != nil {
		zlog.Fatal("Failed to connect to document storage", zap.Error(err))
	}

	renderer, err := render.NewHTMLRenderer()
	if err != nil {
		zlog.Fatal("Failed to load invoice templates", zap.Error(err))
	}

	publisher, err := queue.NewPublisher(cfg.AMQP.URL)
	if err != nil {
		zlog.Fatal("Failed to connect to message broker", zap.Error(err))
	}
	defer publisher.Close()

	jwtService := services.NewJWTService(cfg.JWTSecret, cfg.JWTAccessExpiry, cfg.JWTRefreshExpiry)
	userService := services.NewUserService(db)
	projectService := services.NewProjectService(db)
	rateService := services.NewRateService(db)
	featureService := services.NewFeatureService(db)
	functionService := services.NewFunctionService(db)
	workLogService := services.NewWorkLogService(db)
	invoiceService := services.NewInvoiceService(db, store)
	billingService := services.NewBillingService(db, renderer, store, cfg.Billing.CompanyName)
	historyService := services.NewHistoryService(db)

	hub := sse.NewHub()
	go hub.Run(ctx)

	events, err := queue.NewConsumer(cfg.AMQP.URL, queue.QueueOptions{
		RoutingKey: queue.RoutingKeyBillingEvents,
		Exclusive:  true,
	}, zlog)
	if err != nil {
		zlog.Fatal("Failed to create billing event consumer", zap.Error(err))
	}
	defer events.Close()
	events.SetHandler(hub.HandleBillingEvent)

	go func() {
		if err := events.Consume(ctx); err != nil {
			zlog.Error("Billing event consumer stopped", zap.Error(err))
		}
	}()

	authHandler := handlers.NewAuthHandler(userService, jwtService, zlog)
	userHandler := handlers.NewUserHandler(userService, zlog)
	projectHandler := handlers.NewProjectHandler(projectService, zlog)
	rateHandler := handlers.NewRateHandler(rateService, zlog)
	featureHandler := handlers.NewFeatureHandler(featureService, zlog)
	functionHandler := handlers.NewFunctionHandler(functionService, zlog)
	workLogHandler := handlers.NewWorkLogHandler(workLogService, zlog)
	invoiceHandler := handlers.NewInvoiceHandler(invoiceService, billingService, publisher, zlog)
	historyHandler := handlers.NewHistoryHandler(historyService, zlog)
	eventsHandler := handlers.NewEventsHandler(hub)

	app := drift.New()

	if cfg.IsProduction() {
		app.SetMode(drift.ReleaseMode)
	} else {
		app.SetMode(drift.DebugMode)
	}

	app.Use(middleware.Recovery())
	app.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins: []string{"*"},
		AllowMethods: []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders: []string{"Origin", "Content-Type", "Accept", "Authorization"},
		MaxAge:       86400,
	}))
	app.Use(middleware.BodyParser())
	app.Use(authmw.Metrics())

	app.Get("/health", handlers.Health)

	api := app.Group("/api/v1")
	api.Get("/health", handlers.Health)
	api.Post("/auth/refresh", authHandler.RefreshToken)

	protected := api.Group("")
	protected.Use(authmw.Auth(jwtService))

	protected.Get("/users/me", userHandler.GetMe)
	protected.Patch("/users/me", userHandler.UpdateMe)
	protected.Get("/users", userHandler.List)
	protected.Post("/users", userHandler.Create)

	protected.Get("/projects", projectHandler.List)
	protected.Post("/projects", projectHandler.Create)
	protected.Get("/projects/:id", projectHandler.Get)
	protected.Patch("/projects/:id", projectHandler.Update)
	protected.Delete("/projects/:id", projectHandler.Delete)

	protected.Get("/project-rates", rateHandler.List)
	protected.Post("/project-rates", rateHandler.Create)
	protected.Get("/project-rates/:id", rateHandler.Get)
	protected.Patch("/project-rates/:id", rateHandler.Update)
	protected.Delete("/project-rates/:id", rateHandler.Delete)

	protected.Get("/features", featureHandler.List)
	protected.Post("/features", featureHandler.Create)
	protected.Get("/features/:id", featureHandler.Get)
	protected.Patch("/features/:id", featureHandler.Update)
	protected.Delete("/features/:id", featureHandler.Delete)

	protected.Get("/functions", functionHandler.List)
	protected.Post("/functions", functionHandler.Create)
	protected.Get("/functions/:id", functionHandler.Get)
	protected.Patch("/functions/:id", functionHandler.Update)
	protected.Delete("/functions/:id", functionHandler.Delete)

	protected.Get("/worklogs", workLogHandler.List)
	protected.Post("/worklogs", workLogHandler.Create)
	protected.Get("/worklogs/:id", workLogHandler.Get)
	protected.Patch("/worklogs/:id", workLogHandler.Update)
	protected.Delete("/worklogs/:id", workLogHandler.Delete)

	protected.Get("/history/:entity/:id", historyHandler.List)

	protected.Get("/invoices", invoiceHandler.List)
	protected.Get("/invoices/:id", invoiceHandler.Get)
	protected.Get("/invoices/:id/document", invoiceHandler.Document)
	protected.Post("/generate_invoice", invoiceHandler.Generate)

	protected.Get("/events", eventsHandler.Connect)

	metricsServer := &http.Server{
		Addr:              fmt.Sprintf(":%s", cfg.MetricsPort),
		Handler:           promhttp.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		zlog.Info("Metrics server starting", zap.String("addr", metricsServer.Addr))
		if err := metricsServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			zlog.Error("Metrics server failed", zap.Error(err))
		}
	}()

	go func() {
		addr := fmt.Sprintf(":%s", cfg.Port)
		zlog.Info("Server starting", zap.String("addr", addr), zap.String("env", cfg.Env))
		if err := app.Run(addr); err != nil {
			zlog.Fatal("Server failed", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	zlog.Info("Shutting down server...")
	cancel()

	shutdownCtx, done := context.WithTimeout(context.Background(), 5*time.Second)
	defer done()
	_ = metricsServer.Shutdown(shutdownCtx)
}

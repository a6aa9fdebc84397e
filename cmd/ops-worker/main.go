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
	"github.com/dimitrije/internal-ops/internal/jobs"
	"github.com/dimitrije/internal-ops/internal/logger"
	"github.com/dimitrije/internal-ops/internal/queue"
	"github.com/dimitrije/internal-ops/internal/render"
	"github.com/dimitrije/internal-ops/internal/services"
	"github.com/dimitrije/internal-ops/internal/storage"
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
	zlog = zlog.With(zap.String("component", "billing-worker"))

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

	rdb := queue.NewRedisClient(cfg.Redis)
	defer rdb.Close()
	if err := rdb.Ping(ctx).Err(); err != nil {
		zlog.Fatal("Failed to connect to redis", zap.Error(err))
	}

	publisher, err := queue.NewPublisher(cfg.AMQP.URL)
	if err != nil {
		zlog.Fatal("Failed to connect to message broker", zap.Error(err))
	}
	defer publisher.Close()

	consumer, err := queue.NewConsumer(cfg.AMQP.URL, queue.QueueOptions{
		Name:       cfg.Billing.Queue,
		RoutingKey: queue.RoutingKeyGenerateInvoice,
	}, zlog)
	if err != nil {
		zlog.Fatal("Failed to create consumer", zap.Error(err))
	}
	defer consumer.Close()

	userService := services.NewUserService(db)
	billingService := services.NewBillingService(db, renderer, store, cfg.Billing.CompanyName)

	handler := jobs.NewBillingHandler(
		userService,
		billingService,
		queue.NewDeduper(rdb, cfg.Billing.DedupTTL, cfg.Billing.LockTTL, zlog),
		publisher,
		zlog,
	)
	consumer.SetHandler(handler.Handle)
	consumer.SetFailurePolicy(publisher, queue.NewRetryCounter(rdb, cfg.Billing.DedupTTL), cfg.Billing.MaxRetries)

	metricsServer := &http.Server{
		Addr:              fmt.Sprintf(":%s", cfg.MetricsPort),
		Handler:           promhttp.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		if err := metricsServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			zlog.Error("Metrics server failed", zap.Error(err))
		}
	}()

	errCh := make(chan error, 1)
	go func() {
		errCh <- consumer.Consume(ctx)
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case <-quit:
		zlog.Info("Shutting down worker...")
	case err := <-errCh:
		if err != nil {
			zlog.Error("Consumer stopped", zap.Error(err))
		}
	}
	cancel()

	shutdownCtx, done := context.WithTimeout(context.Background(), 5*time.Second)
	defer done()
	_ = metricsServer.Shutdown(shutdownCtx)
}

package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/BarkinBalci/insight-query-service/internal/config"
	"github.com/BarkinBalci/insight-query-service/internal/consumer"
	"github.com/BarkinBalci/insight-query-service/internal/logger"
	"github.com/BarkinBalci/insight-query-service/internal/queue/sqs"
	"github.com/BarkinBalci/insight-query-service/internal/repository"
	"github.com/BarkinBalci/insight-query-service/internal/repository/clickhouse"
)

const shutdownTimeout = 30 * time.Second

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(fmt.Sprintf("Failed to load config: %v", err))
	}

	log, err := logger.New(cfg.Service.Environment, logger.WithService("consumer"))
	if err != nil {
		panic(fmt.Sprintf("Failed to initialize logger: %v", err))
	}
	defer func() { _ = log.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, log); err != nil {
		log.Fatal("Consumer stopped with error", zap.Error(err))
	}
	log.Info("Consumer stopped")
}

// run wires the query definition pipeline and blocks until ctx is cancelled
// and every in-flight batch has been written or scheduled for retry
func run(ctx context.Context, cfg *config.Config, log *zap.Logger) error {
	log.Info("Starting consumer service",
		zap.String("environment", cfg.Service.Environment),
		zap.Int("batch_size_max", cfg.Consumer.BatchSizeMax),
		zap.Int32("retry_delay_sec", cfg.Consumer.RetryDelaySec))

	chClient, err := clickhouse.NewClient(ctx, &cfg.ClickHouse, log)
	if err != nil {
		return fmt.Errorf("failed to create ClickHouse client: %w", err)
	}
	defer func() {
		if err := chClient.Close(); err != nil {
			log.Error("Failed to close ClickHouse client", zap.Error(err))
		}
	}()

	repo := clickhouse.NewRepository(chClient, log)
	if err := repo.InitSchema(ctx); err != nil {
		return fmt.Errorf("failed to initialize schema: %w", err)
	}
	log.Info("Query definition schema initialized")

	sqsClient, err := sqs.NewClient(ctx, cfg.SQS, log)
	if err != nil {
		return fmt.Errorf("failed to create SQS client: %w", err)
	}

	health := &http.Server{
		Addr:              ":" + cfg.Consumer.HealthCheckPort,
		Handler:           healthRouter(repo, log),
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		log.Info("Health check server starting", zap.String("address", health.Addr))
		if err := health.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("Health check server error", zap.Error(err))
		}
	}()

	// Start returns once every stage has drained
	if err := consumer.NewConsumer(cfg, sqsClient, repo, log).Start(ctx); err != nil {
		return err
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return health.Shutdown(shutdownCtx)
}

// healthRouter reports unhealthy while ClickHouse cannot be reached
func healthRouter(repo repository.QueryRepository, log *zap.Logger) http.Handler {
	router := gin.New()
	router.Use(gin.Recovery())
	router.GET("/health", func(c *gin.Context) {
		if err := repo.Ping(c.Request.Context()); err != nil {
			log.Warn("Health check failed", zap.Error(err))
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable", "error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	return router
}

package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/atelabs/atelier/internal/application/runtime"
	"github.com/atelabs/atelier/internal/application/workers"
	"github.com/atelabs/atelier/internal/config"
	"github.com/atelabs/atelier/internal/workflows"
	redisevents "github.com/atelabs/atelier/pkg/adapters/events/redis"
	"github.com/atelabs/atelier/pkg/adapters/fetch"
	"github.com/atelabs/atelier/pkg/adapters/imagegen"
	"github.com/atelabs/atelier/pkg/adapters/llm"
	"github.com/atelabs/atelier/pkg/adapters/metrics/prometheus"
	redisstorage "github.com/atelabs/atelier/pkg/adapters/storage/redis"
	"github.com/atelabs/atelier/pkg/api/grpc"
	"github.com/atelabs/atelier/pkg/api/http"
	"github.com/atelabs/atelier/pkg/api/websocket"

	goredis "github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var (
	// Version is set by build flags
	Version   = "dev"
	BuildTime = "unknown"
)

const shutdownTimeout = 30 * time.Second

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	logger := initLogger(cfg.LogLevel)
	defer logger.Sync()

	logger.Info("starting Atelier",
		zap.String("version", Version),
		zap.String("build_time", BuildTime))

	// Redis backs the artifact store and the event mirror
	redisClient := goredis.NewClient(&goredis.Options{
		Addr:         cfg.Redis.Addr,
		Password:     cfg.Redis.Password,
		DB:           cfg.Redis.DB,
		PoolSize:     cfg.Redis.PoolSize,
		MinIdleConns: cfg.Redis.MinIdleConns,
		MaxRetries:   cfg.Redis.MaxRetries,
		DialTimeout:  cfg.Redis.DialTimeout,
		ReadTimeout:  cfg.Redis.ReadTimeout,
		WriteTimeout: cfg.Redis.WriteTimeout,
	})

	ctx := context.Background()
	if err := redisClient.Ping(ctx).Err(); err != nil {
		logger.Fatal("failed to connect to Redis", zap.Error(err))
	}
	logger.Info("connected to Redis", zap.String("addr", cfg.Redis.Addr))

	// Adapters
	eventSink := redisevents.NewStreamSink(redisClient, logger)

	artifactStore := redisstorage.NewArtifactStore(
		redisClient,
		cfg.Storage.PublicBaseURL,
		cfg.Storage.ArtifactTTL,
		logger,
	)

	fetcher := fetch.NewFetcher()

	chatClient, err := llm.NewClient(&llm.Config{
		Provider: cfg.LLM.Provider,
		APIKey:   cfg.LLM.APIKey,
		Fetcher:  fetcher,
		Logger:   logger,
	})
	if err != nil {
		logger.Fatal("failed to create chat client", zap.Error(err))
	}

	imageGenerator, err := imagegen.NewGenerator(&imagegen.Config{
		APIKey:  cfg.ImageGen.APIKey,
		Model:   cfg.ImageGen.Model,
		Timeout: cfg.ImageGen.RequestTimeout,
		Store:   artifactStore,
		Fetcher: fetcher,
		Logger:  logger,
	})
	if err != nil {
		logger.Fatal("failed to create image generator", zap.Error(err))
	}

	metricsCollector := prometheus.NewCollector()

	// Application components
	registry, err := runtime.NewRegistry(workflows.Definitions())
	if err != nil {
		logger.Fatal("failed to build workflow registry", zap.Error(err))
	}

	workerPool := workers.NewPool(
		cfg.Workers.PoolSize,
		cfg.Workers.QueueSize,
		cfg.Workers.EnqueueTimeout,
		metricsCollector,
		logger,
		cfg.Workers.HealthCheckInterval,
	)
	if err := workerPool.Start(); err != nil {
		logger.Fatal("failed to start worker pool", zap.Error(err))
	}

	service := runtime.NewService(registry, workerPool, runtime.Deps{
		Chat:    chatClient,
		Images:  imageGenerator,
		Store:   artifactStore,
		Fetch:   fetcher,
		Metrics: metricsCollector,
		Sink:    eventSink,
		Logger:  logger,
	}, runtime.ServiceConfig{
		MatcherModel:    cfg.LLM.MatcherModel,
		PlannerModel:    cfg.LLM.PlannerModel,
		AnalysisModel:   cfg.LLM.AnalysisModel,
		SemanticTimeout: cfg.Match.SemanticTimeout,
		PlanTimeout:     cfg.Match.PlanTimeout,
		ChatProvider:    cfg.LLM.Provider,
	})

	// API servers
	httpServer := http.NewServer(&http.Config{
		Port:    cfg.HTTPPort,
		Service: service,
		Store:   artifactStore,
		Logger:  logger,
	})

	wsHandler := websocket.NewHandler(service, logger)
	httpServer.SetupWebSocket(wsHandler)

	grpcServer, err := grpc.NewServer(&grpc.Config{
		Port:   cfg.GRPCPort,
		Logger: logger,
	})
	if err != nil {
		logger.Fatal("failed to create gRPC server", zap.Error(err))
	}

	go func() {
		if err := httpServer.Start(); err != nil {
			logger.Fatal("HTTP server failed", zap.Error(err))
		}
	}()

	go func() {
		if err := grpcServer.Start(); err != nil {
			logger.Fatal("gRPC server failed", zap.Error(err))
		}
	}()

	logger.Info("Atelier started",
		zap.Int("http_port", cfg.HTTPPort),
		zap.Int("grpc_port", cfg.GRPCPort),
		zap.Int("worker_pool_size", cfg.Workers.PoolSize),
		zap.Int("workflows", len(registry.Infos())))

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh

	logger.Info("received shutdown signal")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Error("HTTP server shutdown error", zap.Error(err))
	}

	if err := grpcServer.Shutdown(shutdownCtx); err != nil {
		logger.Error("gRPC server shutdown error", zap.Error(err))
	}

	if err := workerPool.Shutdown(shutdownCtx); err != nil {
		logger.Error("worker pool shutdown error", zap.Error(err))
	}

	if err := eventSink.Close(); err != nil {
		logger.Error("event sink close error", zap.Error(err))
	}

	if err := redisClient.Close(); err != nil {
		logger.Error("Redis close error", zap.Error(err))
	}

	logger.Info("Atelier shut down complete")
}

// initLogger initializes the logger based on log level
func initLogger(level string) *zap.Logger {
	var zapLevel zapcore.Level
	switch level {
	case "debug":
		zapLevel = zapcore.DebugLevel
	case "info":
		zapLevel = zapcore.InfoLevel
	case "warn":
		zapLevel = zapcore.WarnLevel
	case "error":
		zapLevel = zapcore.ErrorLevel
	default:
		zapLevel = zapcore.InfoLevel
	}

	config := zap.NewProductionConfig()
	config.Level = zap.NewAtomicLevelAt(zapLevel)
	config.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	logger, err := config.Build()
	if err != nil {
		panic(fmt.Sprintf("failed to initialize logger: %v", err))
	}

	return logger
}

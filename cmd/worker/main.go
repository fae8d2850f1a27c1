package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/mapahead-service/internal/config"
	"github.com/mapahead-service/internal/domain/repository"
	"github.com/mapahead-service/internal/infrastructure/overpass"
	"github.com/mapahead-service/internal/pkg/logger"
	"github.com/mapahead-service/internal/repository/cache"
	redisRepo "github.com/mapahead-service/internal/repository/redis"
	"github.com/mapahead-service/internal/usecase"
	"github.com/mapahead-service/internal/worker"
	"github.com/mapahead-service/internal/worker/acquisition"
	"go.uber.org/zap"
)

func main() {
	// 1. Load configuration
	cfg, err := config.Load()
	if err != nil {
		panic(fmt.Sprintf("Failed to load config: %v", err))
	}

	if !cfg.Worker.Enabled {
		fmt.Println("Worker is disabled in configuration. Set WORKER_ENABLED=true to enable.")
		os.Exit(0)
	}

	// 2. Initialize logger
	log, err := logger.New(cfg.Log.Level, "mapahead-worker")
	if err != nil {
		panic(fmt.Sprintf("Failed to initialize logger: %v", err))
	}
	defer log.Sync()

	log.Info("Starting Route Acquisition Worker")
	log.Info("Configuration loaded",
		zap.String("consumer_group", cfg.Worker.ConsumerGroup),
		zap.Int("max_retries", cfg.Worker.MaxRetries),
		zap.Float64("max_distance_km", cfg.Acquisition.MaxDistanceKm),
		zap.Float64("dedup_radius_km", cfg.Acquisition.DedupRadiusKm))

	// 3. Connect to Redis Streams
	streamsClient, err := cache.NewRedisStreams(&cfg.Streams, log)
	if err != nil {
		log.Fatal("Failed to connect to Redis Streams", zap.Error(err))
	}
	defer func() {
		if err := streamsClient.Close(); err != nil {
			log.Error("Failed to close Redis Streams connection", zap.Error(err))
		}
	}()

	// 4. Overpass client, cached when the Redis cache is enabled
	var overpassRepo repository.OverpassRepository = overpass.NewClient(&cfg.Overpass, log)
	if cfg.Redis.Enabled {
		redisClient, err := cache.NewRedis(&cfg.Redis, log)
		if err != nil {
			log.Fatal("Failed to connect to Redis", zap.Error(err))
		}
		defer func() {
			if err := redisClient.Close(); err != nil {
				log.Error("Failed to close Redis connection", zap.Error(err))
			}
		}()
		overpassRepo = overpass.NewCachedClient(overpassRepo, cache.NewCacheRepository(redisClient), cfg.Cache.OverpassCacheTTL, log)
	}

	// 5. Initialize repositories and use cases
	streamRepo := redisRepo.NewStreamRepository(streamsClient, log)
	acquisitionUC := usecase.NewAcquisitionUseCase(overpassRepo, &cfg.Acquisition, log)

	// 6. Initialize workers
	acquisitionWorker := acquisition.NewRouteAcquisitionWorker(
		streamRepo,
		acquisitionUC,
		cfg.Worker.ConsumerGroup,
		cfg.Worker.MaxRetries,
		log,
	)

	workerManager := worker.NewWorkerManager(worker.DefaultShutdownTimeout, log)
	workerManager.Register(acquisitionWorker)

	// 7. Start workers
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := workerManager.Start(ctx); err != nil {
		log.Fatal("Failed to start workers", zap.Error(err))
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	<-sigChan
	log.Info("Received shutdown signal")

	// Stop lets the running job finish; cancel only after the manager gives up.
	if err := workerManager.Stop(); err != nil {
		log.Error("Error stopping workers", zap.Error(err))
	}
	cancel()

	log.Info("Worker shutdown complete")
}

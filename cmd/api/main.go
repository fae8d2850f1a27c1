package main

// @title MapAhead Service API
// @version 1.0.0
// @description Finds points of interest along uploaded GPX routes and exports routes with starred POIs.
// @description
// @description Main features:
// @description - GPX upload with elevation profile
// @description - POI search along the route corridor, streamed as Server-Sent Events
// @description - Export to GPX, KML and GeoJSON
// @description - Background acquisitions over Redis Streams

// @contact.name API Support

// @license.name MIT
// @license.url https://opensource.org/licenses/MIT

// @host localhost:8080
// @BasePath /
// @schemes http https

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/mapahead-service/docs"
	"github.com/mapahead-service/internal/config"
	httpDelivery "github.com/mapahead-service/internal/delivery/http"
	"github.com/mapahead-service/internal/delivery/http/handler"
	"github.com/mapahead-service/internal/domain/repository"
	"github.com/mapahead-service/internal/infrastructure/geojson"
	"github.com/mapahead-service/internal/infrastructure/gpx"
	"github.com/mapahead-service/internal/infrastructure/kml"
	"github.com/mapahead-service/internal/infrastructure/overpass"
	"github.com/mapahead-service/internal/pkg/logger"
	"github.com/mapahead-service/internal/repository/cache"
	"github.com/mapahead-service/internal/repository/memory"
	redisRepo "github.com/mapahead-service/internal/repository/redis"
	"github.com/mapahead-service/internal/usecase"
	"go.uber.org/zap"
)

func main() {
	// 1. Load configuration
	cfg, err := config.Load()
	if err != nil {
		panic(fmt.Sprintf("Failed to load config: %v", err))
	}

	// 2. Initialize logger
	log, err := logger.New(cfg.Log.Level, "mapahead-api")
	if err != nil {
		panic(fmt.Sprintf("Failed to initialize logger: %v", err))
	}
	defer log.Sync()

	log.Info("Starting MapAhead Service")
	log.Info("Configuration loaded",
		zap.String("env", cfg.Server.Env),
		zap.String("server_addr", cfg.GetServerAddr()),
		zap.Strings("overpass_urls", cfg.Overpass.URLs),
		zap.Bool("redis_enabled", cfg.Redis.Enabled),
	)

	// 3. Overpass client, cached through Redis when available
	var overpassRepo repository.OverpassRepository = overpass.NewClient(&cfg.Overpass, log)
	var jobHandler *handler.AcquisitionJobHandler
	healthChecks := make(map[string]httpDelivery.HealthCheck)

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
		healthChecks["redis"] = redisClient.Health

		cacheRepo := cache.NewCacheRepository(redisClient)
		overpassRepo = overpass.NewCachedClient(overpassRepo, cacheRepo, cfg.Cache.OverpassCacheTTL, log)
		log.Info("Overpass cache enabled", zap.Duration("ttl", cfg.Cache.OverpassCacheTTL))

		// Background acquisitions need the streams instance; the API runs without it.
		streamsClient, err := cache.NewRedisStreams(&cfg.Streams, log)
		if err != nil {
			log.Warn("Redis Streams unavailable, background acquisitions disabled", zap.Error(err))
		} else {
			defer func() {
				if err := streamsClient.Close(); err != nil {
					log.Error("Failed to close Redis Streams connection", zap.Error(err))
				}
			}()
			streamRepo := redisRepo.NewStreamRepository(streamsClient, log)
			jobHandler = handler.NewAcquisitionJobHandler(streamRepo, log)
			healthChecks["redis_streams"] = func(ctx context.Context) error {
				return streamsClient.Ping(ctx).Err()
			}
		}
	}

	// 4. Initialize Repositories
	routeRepo := memory.NewRouteRepository(log)

	log.Info("Repositories initialized")

	// 5. Initialize Use Cases
	routeUC := usecase.NewRouteUseCase(
		routeRepo,
		gpx.NewDecoder(log),
		&cfg.Upload,
		log,
	)

	acquisitionUC := usecase.NewAcquisitionUseCase(
		overpassRepo,
		&cfg.Acquisition,
		log,
	)

	exportUC := usecase.NewExportUseCase(
		routeRepo,
		[]repository.RouteExporter{
			gpx.NewExporter(log),
			kml.NewExporter(log),
			geojson.NewExporter(log),
		},
		log,
	)

	log.Info("Use cases initialized")

	// 6. Initialize HTTP Handlers
	routeHandler := handler.NewRouteHandler(routeUC, log)
	poiStreamHandler := handler.NewPOIStreamHandler(routeUC, acquisitionUC, log)
	exportHandler := handler.NewExportHandler(exportUC, log)
	categoryHandler := handler.NewCategoryHandler()

	log.Info("HTTP handlers initialized")

	// 7. Initialize HTTP Server
	server := httpDelivery.NewServer(
		cfg,
		log,
		routeHandler,
		poiStreamHandler,
		exportHandler,
		categoryHandler,
		jobHandler,
		healthChecks,
	)

	// 8. Start server in goroutine
	go func() {
		if err := server.Start(); err != nil {
			log.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	log.Info("Server started successfully",
		zap.String("address", cfg.GetServerAddr()),
		zap.Bool("background_acquisitions", jobHandler != nil),
	)

	// 9. Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down server gracefully...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Error("Server shutdown error", zap.Error(err))
	}

	log.Info("Server stopped successfully")
}

package http

import (
	"context"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/compress"
	"github.com/mapahead-service/internal/config"
	"github.com/mapahead-service/internal/delivery/http/handler"
	"github.com/mapahead-service/internal/delivery/http/middleware"
	"github.com/mapahead-service/internal/usecase/dto"
	fiberSwagger "github.com/swaggo/fiber-swagger"
	"go.uber.org/zap"
)

// HealthCheck reports the state of one dependency; nil means healthy.
type HealthCheck func(ctx context.Context) error

// Server - Fiber based HTTP server
type Server struct {
	app    *fiber.App
	config *config.Config
	logger *zap.Logger

	// Handlers
	routeHandler     *handler.RouteHandler
	poiStreamHandler *handler.POIStreamHandler
	exportHandler    *handler.ExportHandler
	categoryHandler  *handler.CategoryHandler
	// nil when Redis Streams are not configured
	jobHandler *handler.AcquisitionJobHandler

	healthChecks map[string]HealthCheck
}

// NewServer - creates the HTTP server
func NewServer(
	cfg *config.Config,
	logger *zap.Logger,
	routeHandler *handler.RouteHandler,
	poiStreamHandler *handler.POIStreamHandler,
	exportHandler *handler.ExportHandler,
	categoryHandler *handler.CategoryHandler,
	jobHandler *handler.AcquisitionJobHandler,
	healthChecks map[string]HealthCheck,
) *Server {
	app := fiber.New(fiber.Config{
		AppName:     "MapAhead Service",
		ReadTimeout: 30 * time.Second,
		// no WriteTimeout: POI streams stay open for the whole acquisition
		IdleTimeout:  60 * time.Second,
		BodyLimit:    bodyLimit(cfg.Upload.MaxFileSizeBytes),
		ErrorHandler: customErrorHandler(logger),
	})

	s := &Server{
		app:              app,
		config:           cfg,
		logger:           logger,
		routeHandler:     routeHandler,
		poiStreamHandler: poiStreamHandler,
		exportHandler:    exportHandler,
		categoryHandler:  categoryHandler,
		jobHandler:       jobHandler,
		healthChecks:     healthChecks,
	}

	s.setupMiddlewares()
	s.setupRoutes()

	return s
}

// App exposes the underlying fiber app, mainly for tests.
func (s *Server) App() *fiber.App {
	return s.app
}

// setupMiddlewares - registers the middleware chain
func (s *Server) setupMiddlewares() {
	s.app.Use(middleware.Recovery(s.logger))
	s.app.Use(middleware.Logger(s.logger))
	s.app.Use(middleware.CORS(s.config.Server.CorsOrigins))
	s.app.Use(compress.New(compress.Config{
		Level: compress.LevelBestSpeed,
		// event streams must reach the client frame by frame
		Next: func(c *fiber.Ctx) bool {
			return strings.HasSuffix(c.Path(), "/pois")
		},
	}))
}

// setupRoutes - registers the routes
func (s *Server) setupRoutes() {
	// Swagger documentation route
	s.app.Get("/swagger/*", fiberSwagger.WrapHandler)

	api := s.app.Group("/api/v1")

	api.Get("/health", s.health)

	api.Get("/categories", s.categoryHandler.ListCategories)

	// Routes
	api.Post("/routes", s.routeHandler.Upload)
	api.Get("/routes/:id", s.routeHandler.GetRoute)
	api.Get("/routes/:id/pois", s.poiStreamHandler.StreamPOIs)
	api.Post("/routes/:id/export/:format", s.exportHandler.Export)

	if s.jobHandler != nil {
		api.Post("/acquisitions", s.jobHandler.Enqueue)
	}
}

// health godoc
// @Summary Service health
// @Tags System
// @Produce json
// @Success 200 {object} dto.HealthResponse
// @Failure 503 {object} dto.HealthResponse
// @Router /api/v1/health [get]
func (s *Server) health(c *fiber.Ctx) error {
	resp := dto.HealthResponse{
		Status: "healthy",
		Time:   time.Now(),
	}

	if len(s.healthChecks) > 0 {
		ctx, cancel := context.WithTimeout(c.Context(), 2*time.Second)
		defer cancel()

		resp.Checks = make(map[string]string, len(s.healthChecks))
		for name, check := range s.healthChecks {
			if err := check(ctx); err != nil {
				resp.Checks[name] = err.Error()
				resp.Status = "degraded"
				continue
			}
			resp.Checks[name] = "ok"
		}
	}

	if resp.Status != "healthy" {
		return c.Status(fiber.StatusServiceUnavailable).JSON(resp)
	}
	return c.JSON(resp)
}

// Start - starts the HTTP server
func (s *Server) Start() error {
	addr := s.config.GetServerAddr()
	s.logger.Info("Starting HTTP server", zap.String("address", addr))
	return s.app.Listen(addr)
}

// Shutdown - graceful shutdown of the HTTP server
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("Shutting down HTTP server")
	return s.app.ShutdownWithContext(ctx)
}

// bodyLimit leaves room for multipart framing around the largest accepted upload.
func bodyLimit(maxUpload int64) int {
	limit := int(maxUpload) + 1024*1024
	if limit < fiber.DefaultBodyLimit {
		return fiber.DefaultBodyLimit
	}
	return limit
}

// customErrorHandler - maps unhandled errors to the JSON error envelope
func customErrorHandler(logger *zap.Logger) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		code := fiber.StatusInternalServerError
		errCode := "INTERNAL_SERVER_ERROR"

		if e, ok := err.(*fiber.Error); ok {
			code = e.Code
			if code == fiber.StatusNotFound {
				errCode = "NOT_FOUND"
			} else if code == fiber.StatusRequestEntityTooLarge {
				errCode = "FILE_TOO_LARGE"
			}
		}

		logger.Error("HTTP Error",
			zap.String("path", c.Path()),
			zap.Int("status", code),
			zap.Error(err),
		)

		return c.Status(code).JSON(fiber.Map{
			"error": fiber.Map{
				"code":    errCode,
				"message": err.Error(),
			},
		})
	}
}

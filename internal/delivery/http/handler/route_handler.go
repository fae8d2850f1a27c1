package handler

import (
	"io"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/mapahead-service/internal/pkg/errors"
	"github.com/mapahead-service/internal/pkg/utils"
	"github.com/mapahead-service/internal/usecase"
	"go.uber.org/zap"
)

// RouteHandler - route upload and lookup
type RouteHandler struct {
	routeUC *usecase.RouteUseCase
	logger  *zap.Logger
}

func NewRouteHandler(routeUC *usecase.RouteUseCase, logger *zap.Logger) *RouteHandler {
	return &RouteHandler{
		routeUC: routeUC,
		logger:  logger,
	}
}

// Upload godoc
// @Summary Upload a GPX track
// @Description Parses the track, registers it as a route and returns its coordinates with the elevation profile.
// @Tags Routes
// @Accept multipart/form-data
// @Produce json
// @Param file formData file true "GPX file"
// @Success 200 {object} utils.SuccessResponse{data=dto.UploadRouteResponse}
// @Failure 400 {object} utils.ErrorResponse
// @Failure 413 {object} utils.ErrorResponse
// @Router /api/v1/routes [post]
func (h *RouteHandler) Upload(c *fiber.Ctx) error {
	start := time.Now()

	header, err := c.FormFile("file")
	if err != nil {
		return utils.SendError(c, errors.ErrInvalidRequest.WithMessage("A GPX file is required in the 'file' field"))
	}

	maxSize := h.routeUC.MaxFileSize()
	if header.Size > maxSize {
		return utils.SendError(c, errors.ErrFileTooLarge)
	}

	file, err := header.Open()
	if err != nil {
		h.logger.Error("Failed to open uploaded file", zap.Error(err))
		return utils.SendError(c, errors.ErrInternalServer)
	}
	defer file.Close()

	// one byte past the limit is enough to detect an oversized body
	data, err := io.ReadAll(io.LimitReader(file, maxSize+1))
	if err != nil {
		h.logger.Error("Failed to read uploaded file", zap.Error(err))
		return utils.SendError(c, errors.ErrInternalServer)
	}

	result, err := h.routeUC.Upload(c.Context(), header.Filename, data)
	if err != nil {
		return utils.SendError(c, err)
	}

	return utils.SendSuccess(c, result, &utils.Meta{
		Total:    len(result.Coordinates),
		TimeMSec: float64(time.Since(start).Microseconds()) / 1000,
	})
}

// GetRoute godoc
// @Summary Get a registered route
// @Tags Routes
// @Produce json
// @Param id path string true "Route ID"
// @Success 200 {object} utils.SuccessResponse{data=dto.RouteResponse}
// @Failure 404 {object} utils.ErrorResponse
// @Router /api/v1/routes/{id} [get]
func (h *RouteHandler) GetRoute(c *fiber.Ctx) error {
	result, err := h.routeUC.Describe(c.Context(), c.Params("id"))
	if err != nil {
		return utils.SendError(c, err)
	}
	return utils.SendSuccess(c, result, nil)
}

package handler

import (
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/mapahead-service/internal/domain"
	"github.com/mapahead-service/internal/domain/repository"
	"github.com/mapahead-service/internal/pkg/errors"
	"github.com/mapahead-service/internal/pkg/utils"
	"github.com/mapahead-service/internal/pkg/validator"
	"github.com/mapahead-service/internal/usecase/dto"
	"go.uber.org/zap"
)

// AcquisitionJobHandler - enqueues background POI acquisition jobs on a Redis Stream
type AcquisitionJobHandler struct {
	streamRepo repository.StreamRepository
	logger     *zap.Logger
}

func NewAcquisitionJobHandler(streamRepo repository.StreamRepository, logger *zap.Logger) *AcquisitionJobHandler {
	return &AcquisitionJobHandler{
		streamRepo: streamRepo,
		logger:     logger,
	}
}

// Enqueue godoc
// @Summary Queue a background POI acquisition
// @Description Publishes the job to the acquisition stream. Results appear on the POI result stream under the returned request id.
// @Tags POI
// @Accept json
// @Produce json
// @Param request body dto.AcquireRouteRequest true "Route points and settings"
// @Success 202 {object} utils.SuccessResponse{data=dto.AcquireRouteResponse}
// @Failure 400 {object} utils.ErrorResponse
// @Router /api/v1/acquisitions [post]
func (h *AcquisitionJobHandler) Enqueue(c *fiber.Ctx) error {
	var req dto.AcquireRouteRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.SendError(c, errors.ErrInvalidRequest.WithMessage("Invalid request body"))
	}

	if err := validator.Validate(&req); err != nil {
		return utils.SendError(c, validationError(err))
	}

	event := domain.RouteAcquireEvent{
		RequestID:     uuid.New(),
		Points:        req.Points,
		Categories:    req.Categories,
		MaxDistanceKm: req.MaxDistanceKm,
		DedupRadiusKm: req.DedupRadiusKm,
		Settings:      req.Settings,
	}

	if err := h.streamRepo.PublishToStream(c.Context(), domain.StreamRouteAcquire, event); err != nil {
		h.logger.Error("Failed to enqueue acquisition",
			zap.String("request_id", event.RequestID.String()),
			zap.Error(err))
		return utils.SendError(c, errors.ErrInternalServer)
	}

	h.logger.Info("Acquisition enqueued",
		zap.String("request_id", event.RequestID.String()),
		zap.Int("points", len(event.Points)))

	return utils.SendAccepted(c, dto.AcquireRouteResponse{
		RequestID: event.RequestID.String(),
		Stream:    domain.StreamRoutePOIs,
	})
}

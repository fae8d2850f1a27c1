package handler

import (
	"github.com/gofiber/fiber/v2"
	"github.com/mapahead-service/internal/pkg/errors"
	"github.com/mapahead-service/internal/pkg/utils"
	"github.com/mapahead-service/internal/pkg/validator"
	"github.com/mapahead-service/internal/usecase"
	"github.com/mapahead-service/internal/usecase/dto"
	"go.uber.org/zap"
)

// ExportHandler - route export with the selected POIs
type ExportHandler struct {
	exportUC *usecase.ExportUseCase
	logger   *zap.Logger
}

func NewExportHandler(exportUC *usecase.ExportUseCase, logger *zap.Logger) *ExportHandler {
	return &ExportHandler{
		exportUC: exportUC,
		logger:   logger,
	}
}

// Export godoc
// @Summary Download the route with starred POIs
// @Description gpx re-emits the uploaded track with waypoints; kml and geojson draw the route with placemarks.
// @Tags Export
// @Accept json
// @Produce application/gpx+xml,application/vnd.google-earth.kml+xml,application/geo+json
// @Param id path string true "Route ID"
// @Param format path string true "Export format" Enums(gpx, kml, geojson)
// @Param request body []dto.StarredPOI true "Starred POIs"
// @Success 200 {file} file
// @Failure 400 {object} utils.ErrorResponse
// @Failure 404 {object} utils.ErrorResponse
// @Router /api/v1/routes/{id}/export/{format} [post]
func (h *ExportHandler) Export(c *fiber.Ctx) error {
	var pois []dto.StarredPOI
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&pois); err != nil {
			return utils.SendError(c, errors.ErrInvalidRequest.WithMessage("Body must be a JSON array of POIs"))
		}
	}

	if err := validator.Validate(dto.ExportRequest{POIs: pois}); err != nil {
		return utils.SendError(c, validationError(err))
	}

	file, err := h.exportUC.Export(c.Context(), c.Params("id"), c.Params("format"), pois)
	if err != nil {
		return utils.SendError(c, err)
	}

	return utils.SendAttachment(c, file.Filename, file.ContentType, file.Data)
}

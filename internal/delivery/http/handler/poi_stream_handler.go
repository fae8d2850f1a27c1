package handler

import (
	"bufio"
	"context"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/mapahead-service/internal/domain"
	"github.com/mapahead-service/internal/infrastructure/overpass"
	"github.com/mapahead-service/internal/pkg/errors"
	"github.com/mapahead-service/internal/pkg/utils"
	"github.com/mapahead-service/internal/pkg/validator"
	"github.com/mapahead-service/internal/usecase"
	"github.com/mapahead-service/internal/usecase/dto"
	"github.com/valyala/fasthttp"
	"go.uber.org/zap"
)

const (
	msgTimeout     = "POI service timed out. The query is taking too long. Please try again or use a shorter route."
	msgUnavailable = "POI service is temporarily unavailable. Please try again in a few moments."
)

// POIStreamHandler - streams POIs along a route as Server-Sent Events
type POIStreamHandler struct {
	routeUC       *usecase.RouteUseCase
	acquisitionUC *usecase.AcquisitionUseCase
	logger        *zap.Logger
}

func NewPOIStreamHandler(
	routeUC *usecase.RouteUseCase,
	acquisitionUC *usecase.AcquisitionUseCase,
	logger *zap.Logger,
) *POIStreamHandler {
	return &POIStreamHandler{
		routeUC:       routeUC,
		acquisitionUC: acquisitionUC,
		logger:        logger,
	}
}

// StreamPOIs godoc
// @Summary Stream POIs along a route
// @Description Queries every requested category in turn and streams progress, per-category batches and the merged result as Server-Sent Events.
// @Tags POI
// @Produce text/event-stream
// @Param id path string true "Route ID"
// @Param max_distance_km query number false "Maximum distance from the route in km" default(1.0)
// @Param deduplication_radius_km query number false "Deduplication radius in km" default(1.0)
// @Param poi_types query []string false "Categories to query, repeated or comma separated" collectionFormat(multi)
// @Param poi_settings_json query string false "Per-category settings as JSON: {\"category\": {\"max_deviation_km\": 2, \"deduplication_radius_km\": 0.5}}"
// @Success 200 {object} dto.CompleteEvent
// @Failure 400 {object} utils.ErrorResponse
// @Router /api/v1/routes/{id}/pois [get]
func (h *POIStreamHandler) StreamPOIs(c *fiber.Ctx) error {
	routeID := c.Params("id")

	req, err := h.parseRequest(c)
	if err != nil {
		return utils.SendError(c, err)
	}

	route, err := h.routeUC.Get(c.Context(), routeID)
	if err != nil {
		if stderrors.Is(err, errors.ErrRouteNotFound) {
			return h.sendSingleFrame(c, dto.ErrorEvent{Error: "Route not found"})
		}
		return utils.SendError(c, err)
	}

	// The request context is recycled once the handler returns, and the
	// acquisition outlives it.
	events, err := h.acquisitionUC.Stream(context.Background(), route, req.ToAcquisitionRequest())
	if err != nil {
		return utils.SendError(c, err)
	}

	h.logger.Info("POI stream started",
		zap.String("route_id", routeID),
		zap.Strings("poi_types", req.POITypes),
		zap.Float64("max_distance_km", req.MaxDistanceKm),
		zap.Float64("dedup_radius_km", req.DedupRadiusKm))

	setEventStreamHeaders(c)
	c.Context().SetBodyStreamWriter(fasthttp.StreamWriter(func(w *bufio.Writer) {
		for event := range events {
			if event.Type == domain.EventError {
				h.logger.Error("POI acquisition failed",
					zap.String("route_id", routeID),
					zap.Error(event.Err))
			}
			if err := writeFrame(w, dto.NewStreamEvent(event, errorMessage(event.Err))); err != nil {
				// the producer finishes into its buffer without a reader
				h.logger.Info("POI stream client disconnected",
					zap.String("route_id", routeID),
					zap.Error(err))
				return
			}
		}
	}))

	return nil
}

func (h *POIStreamHandler) parseRequest(c *fiber.Ctx) (dto.POIStreamRequest, error) {
	maxDistance, dedupRadius := h.acquisitionUC.Defaults()
	req := dto.POIStreamRequest{
		MaxDistanceKm: maxDistance,
		DedupRadiusKm: dedupRadius,
	}

	var err error
	if req.MaxDistanceKm, err = floatQuery(c, "max_distance_km", req.MaxDistanceKm); err != nil {
		return req, err
	}
	if req.DedupRadiusKm, err = floatQuery(c, "deduplication_radius_km", req.DedupRadiusKm); err != nil {
		return req, err
	}

	for _, raw := range c.Context().QueryArgs().PeekMulti("poi_types") {
		for _, code := range strings.Split(string(raw), ",") {
			if code = strings.TrimSpace(code); code != "" {
				req.POITypes = append(req.POITypes, code)
			}
		}
	}

	if raw := c.Query("poi_settings_json"); raw != "" {
		var settings map[string]domain.CategorySettings
		if err := json.Unmarshal([]byte(raw), &settings); err != nil {
			h.logger.Warn("Invalid poi_settings_json, ignoring",
				zap.String("poi_settings_json", raw),
				zap.Error(err))
		} else {
			req.Settings = settings
		}
	}

	if err := validator.Validate(req); err != nil {
		return req, validationError(err)
	}
	return req, nil
}

func (h *POIStreamHandler) sendSingleFrame(c *fiber.Ctx, payload interface{}) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return utils.SendError(c, err)
	}
	setEventStreamHeaders(c)
	return c.SendString(fmt.Sprintf("data: %s\n\n", data))
}

func floatQuery(c *fiber.Ctx, key string, def float64) (float64, error) {
	raw := c.Query(key)
	if raw == "" {
		return def, nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, errors.ErrInvalidRequest.WithDetails(map[string]interface{}{
			key: "must be a number",
		})
	}
	return v, nil
}

func setEventStreamHeaders(c *fiber.Ctx) {
	c.Set(fiber.HeaderContentType, "text/event-stream")
	c.Set(fiber.HeaderCacheControl, "no-cache")
	c.Set(fiber.HeaderConnection, "keep-alive")
	c.Set("X-Accel-Buffering", "no")
}

func writeFrame(w *bufio.Writer, payload interface{}) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w, "data: %s\n\n", data); err != nil {
		return err
	}
	return w.Flush()
}

// errorMessage turns an acquisition failure into the text shown to users.
func errorMessage(err error) string {
	switch {
	case err == nil:
		return ""
	case stderrors.Is(err, overpass.ErrTimeout):
		return msgTimeout
	case stderrors.Is(err, overpass.ErrConnection):
		return msgUnavailable
	default:
		return "Failed to retrieve POIs: " + err.Error()
	}
}

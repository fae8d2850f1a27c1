package usecase

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/mapahead-service/internal/domain"
	"github.com/mapahead-service/internal/domain/repository"
	apperrors "github.com/mapahead-service/internal/pkg/errors"
	"github.com/mapahead-service/internal/usecase/dto"
	"go.uber.org/zap"
)

const (
	formatGPX          = "gpx"
	unnamedPOI         = "Unnamed POI"
	unknownPOICategory = "unknown"
)

// ExportFile is a rendered download.
type ExportFile struct {
	Filename    string
	ContentType string
	Data        []byte
}

type ExportUseCase struct {
	routeRepo repository.RouteRepository
	exporters map[string]repository.RouteExporter
	logger    *zap.Logger
}

func NewExportUseCase(
	routeRepo repository.RouteRepository,
	exporters []repository.RouteExporter,
	logger *zap.Logger,
) *ExportUseCase {
	byFormat := make(map[string]repository.RouteExporter, len(exporters))
	for _, e := range exporters {
		byFormat[e.Format()] = e
	}
	return &ExportUseCase{
		routeRepo: routeRepo,
		exporters: byFormat,
		logger:    logger,
	}
}

// Formats lists the registered export formats.
func (uc *ExportUseCase) Formats() []string {
	out := make([]string, 0, len(uc.exporters))
	for f := range uc.exporters {
		out = append(out, f)
	}
	return out
}

// Export renders the route with the starred POIs in format.
func (uc *ExportUseCase) Export(ctx context.Context, routeID, format string, starred []dto.StarredPOI) (*ExportFile, error) {
	exporter, ok := uc.exporters[format]
	if !ok {
		return nil, apperrors.ErrInvalidRequest.WithMessage(fmt.Sprintf("Unsupported export format: %s", format))
	}

	route, err := uc.routeRepo.Get(ctx, routeID)
	if err != nil {
		if errors.Is(err, repository.ErrRouteNotFound) {
			return nil, apperrors.ErrRouteNotFound
		}
		return nil, err
	}

	if format == formatGPX && !route.HasSource() {
		return nil, apperrors.ErrOriginalTrackUnavailable
	}

	pois := StarredToPOIs(route, starred)

	data, err := exporter.Export(route, pois)
	if err != nil {
		uc.logger.Error("Failed to export route",
			zap.String("route_id", routeID),
			zap.String("format", format),
			zap.Error(err))
		return nil, apperrors.ErrExportFailed.WithDetails(map[string]interface{}{
			"format": format,
			"error":  err.Error(),
		})
	}

	uc.logger.Info("Route exported",
		zap.String("route_id", routeID),
		zap.String("format", format),
		zap.Int("pois", len(pois)),
		zap.Int("bytes", len(data)))

	return &ExportFile{
		Filename:    ExportFilename(route, format),
		ContentType: exporter.ContentType(),
		Data:        data,
	}, nil
}

// StarredToPOIs rebuilds POIs from client data. Distances come from the numeric
// fields, else from the formatted table strings; when either is still zero both
// are recomputed against the route.
func StarredToPOIs(route *domain.Route, starred []dto.StarredPOI) []domain.POI {
	pois := make([]domain.POI, 0, len(starred))
	for _, s := range starred {
		poi := domain.POI{
			Lat:          s.Lat,
			Lon:          s.Lon,
			Name:         s.Name,
			Category:     s.POIType,
			OpeningHours: s.OpeningHours,
			URL:          s.URL,
			MapLink:      s.GoogleMapsLink,
			PriceRange:   s.PriceRange,
			Brand:        s.Brand,
			Operator:     s.Operator,
			Wikipedia:    s.Wikipedia,
			Wikidata:     s.Wikidata,
		}
		if poi.Name == "" {
			poi.Name = unnamedPOI
		}
		if poi.Category == "" {
			poi.Category = unknownPOICategory
		}
		if poi.MapLink == "" {
			poi.MapLink = MapLink(poi.Coordinate())
		}

		if s.DistanceOnRoute != nil {
			poi.DistanceOnRoute = *s.DistanceOnRoute
		} else {
			poi.DistanceOnRoute = parseFormatted(s.Distance, "km", 1)
		}
		if s.DistanceToRoute != nil {
			poi.DistanceToRoute = *s.DistanceToRoute
		} else {
			poi.DistanceToRoute = parseFormatted(s.Deviation, "m", 1.0/1000)
		}

		if poi.DistanceOnRoute == 0 || poi.DistanceToRoute == 0 {
			c := poi.Coordinate()
			poi.DistanceOnRoute = route.DistanceAlong(c)
			poi.DistanceToRoute = route.DistanceTo(c)
		}

		pois = append(pois, poi)
	}
	return pois
}

// parseFormatted reads values like "12.3 km" or "250m"; unparsable input is 0.
func parseFormatted(s, unit string, scale float64) float64 {
	s = strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(s), unit))
	if s == "" {
		return 0
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0
	}
	return v * scale
}

// ExportFilename is "<upload name>_with_pois.<ext>", or
// "route_<id>_with_pois.<ext>" when the route has no filename.
func ExportFilename(route *domain.Route, format string) string {
	if route.Filename() != "" {
		return fmt.Sprintf("%s_with_pois.%s", strings.TrimSuffix(route.Filename(), ".gpx"), format)
	}
	return fmt.Sprintf("route_%s_with_pois.%s", route.ID(), format)
}

package geojson

import (
	"fmt"

	"github.com/mapahead-service/internal/domain"
	"github.com/mapahead-service/internal/domain/repository"
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
	"go.uber.org/zap"
)

type exporter struct {
	logger *zap.Logger
}

// NewExporter encodes the route as a LineString feature followed by one Point
// feature per POI.
func NewExporter(logger *zap.Logger) repository.RouteExporter {
	return &exporter{logger: logger}
}

func (e *exporter) Format() string {
	return "geojson"
}

func (e *exporter) ContentType() string {
	return "application/geo+json"
}

func (e *exporter) Export(route *domain.Route, pois []domain.POI) ([]byte, error) {
	fc := geojson.NewFeatureCollection()

	line := make(orb.LineString, 0, route.Len())
	for _, p := range route.Points() {
		line = append(line, p.Point())
	}
	routeFeature := geojson.NewFeature(line)
	routeFeature.ID = route.ID()
	routeFeature.Properties["kind"] = "route"
	routeFeature.Properties["name"] = route.Filename()
	routeFeature.Properties["total_distance_km"] = route.TotalLength()
	fc.Append(routeFeature)

	for _, poi := range pois {
		fc.Append(poiFeature(poi))
	}

	out, err := fc.MarshalJSON()
	if err != nil {
		return nil, fmt.Errorf("failed to encode GeoJSON: %w", err)
	}

	e.logger.Debug("GeoJSON exported",
		zap.String("route_id", route.ID()),
		zap.Int("features", len(fc.Features)))

	return out, nil
}

func poiFeature(poi domain.POI) *geojson.Feature {
	f := geojson.NewFeature(poi.Coordinate().Point())
	f.Properties["kind"] = "poi"
	f.Properties["name"] = poi.Name
	f.Properties["poi_type"] = poi.Category
	f.Properties["poi_type_display"] = domain.CategoryLabel(poi.Category)
	f.Properties["distance_on_route"] = poi.DistanceOnRoute
	f.Properties["distance_to_route"] = poi.DistanceToRoute
	f.Properties["google_maps_link"] = poi.MapLink

	optional := map[string]*string{
		"opening_hours": poi.OpeningHours,
		"url":           poi.URL,
		"price_range":   poi.PriceRange,
		"brand":         poi.Brand,
		"operator":      poi.Operator,
		"wikipedia":     poi.Wikipedia,
		"wikidata":      poi.Wikidata,
	}
	for key, value := range optional {
		if value != nil && *value != "" {
			f.Properties[key] = *value
		}
	}
	return f
}

package gpx

import (
	"errors"
	"fmt"
	"strings"

	"github.com/mapahead-service/internal/domain"
	"github.com/mapahead-service/internal/domain/repository"
	"github.com/tkrajina/gpxgo/gpx"
	"go.uber.org/zap"
)

// Garmin devices cut waypoint names at 15 characters.
const maxWaypointName = 15

var ErrNoSourceTrack = errors.New("original GPX data not available for this route")

type exporter struct {
	logger *zap.Logger
}

// NewExporter re-emits the uploaded track with one waypoint per POI. Waypoints
// sit on the nearest track point so that devices announce them along the course.
func NewExporter(logger *zap.Logger) repository.RouteExporter {
	return &exporter{logger: logger}
}

func (e *exporter) Format() string {
	return "gpx"
}

func (e *exporter) ContentType() string {
	return "application/gpx+xml"
}

func (e *exporter) Export(route *domain.Route, pois []domain.POI) ([]byte, error) {
	if !route.HasSource() {
		return nil, ErrNoSourceTrack
	}

	doc, err := gpx.ParseBytes(route.Source())
	if err != nil {
		return nil, fmt.Errorf("failed to parse original GPX: %w", err)
	}

	for _, poi := range pois {
		doc.Waypoints = append(doc.Waypoints, waypoint(route, poi))
	}

	out, err := doc.ToXml(gpx.ToXmlParams{Version: "1.1", Indent: true})
	if err != nil {
		return nil, fmt.Errorf("failed to encode GPX: %w", err)
	}

	e.logger.Debug("GPX exported",
		zap.String("route_id", route.ID()),
		zap.Int("waypoints", len(pois)))

	return out, nil
}

func waypoint(route *domain.Route, poi domain.POI) gpx.GPXPoint {
	spec, known := domain.LookupCategory(poi.Category)
	symbol, typeName, short := "Flag", "Waypoint", "POI"
	if known {
		symbol, typeName, short = spec.GPXSymbol, spec.DisplayName, spec.ShortName
	}

	onTrack := route.Point(route.NearestIndex(poi.Coordinate()))

	wpt := gpx.GPXPoint{
		Name:        waypointName(poi.RouteKm(), short, poi.Name),
		Comment:     waypointComment(poi, typeName),
		Description: waypointDescription(poi),
		Symbol:      symbol,
		Type:        typeName,
	}
	wpt.Latitude = onTrack.Lat
	wpt.Longitude = onTrack.Lon
	return wpt
}

// waypointName renders "42 WC Name" within the device limit.
func waypointName(km int, short, name string) string {
	prefix := fmt.Sprintf("%d %s ", km, short)
	remaining := maxWaypointName - len(prefix)
	if remaining <= 0 {
		return truncateRunes(strings.TrimSpace(prefix), maxWaypointName)
	}
	return strings.TrimSpace(prefix + truncateRunes(name, remaining))
}

func waypointComment(poi domain.POI, typeName string) string {
	parts := []string{fmt.Sprintf("km %.1f", poi.DistanceOnRoute), typeName, poi.Name}
	if poi.OpeningHours != nil && *poi.OpeningHours != "" {
		parts = append(parts, *poi.OpeningHours)
	}
	return strings.Join(parts, " | ")
}

func waypointDescription(poi domain.POI) string {
	parts := []string{"Away: " + poi.AwayLabel()}
	switch {
	case poi.Brand != nil && *poi.Brand != "":
		parts = append(parts, "Brand: "+*poi.Brand)
	case poi.Operator != nil && *poi.Operator != "":
		parts = append(parts, "Operator: "+*poi.Operator)
	}
	if poi.PriceRange != nil && *poi.PriceRange != "" {
		parts = append(parts, "Price: "+*poi.PriceRange)
	}
	if poi.URL != nil && *poi.URL != "" {
		parts = append(parts, *poi.URL)
	}
	return strings.Join(parts, " | ")
}

func truncateRunes(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}

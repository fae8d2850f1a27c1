package dto

import (
	"fmt"

	"github.com/mapahead-service/internal/domain"
)

const notAvailable = "Not available"

// Marker - a POI as drawn on the map
type Marker struct {
	Lat             float64 `json:"lat"`
	Lon             float64 `json:"lon"`
	Name            string  `json:"name"`
	POIType         string  `json:"poi_type"`
	OpeningHours    *string `json:"opening_hours"`
	URL             *string `json:"url"`
	GoogleMapsLink  string  `json:"google_maps_link"`
	DistanceOnRoute float64 `json:"distance_on_route"`
	DistanceToRoute float64 `json:"distance_to_route"`
	PriceRange      *string `json:"price_range"`
	Brand           *string `json:"brand"`
	Operator        *string `json:"operator"`
	Wikipedia       *string `json:"wikipedia"`
	Wikidata        *string `json:"wikidata"`
}

// TableRow - a POI as listed in the results table
type TableRow struct {
	Distance       string  `json:"distance"`
	Deviation      string  `json:"deviation"`
	Name           string  `json:"name"`
	POIType        string  `json:"poi_type"`
	OpeningHours   string  `json:"opening_hours"`
	URL            string  `json:"url"`
	GoogleMapsLink string  `json:"google_maps_link"`
	PriceRange     *string `json:"price_range"`
}

// ProgressEvent - a category query is starting
type ProgressEvent struct {
	Type           domain.AcquisitionEventType `json:"type"`
	POIType        string                      `json:"poi_type"`
	POITypeDisplay string                      `json:"poi_type_display"`
	Current        int                         `json:"current"`
	Total          int                         `json:"total"`
}

// BatchEvent - deduplicated results of one category
type BatchEvent struct {
	Type           domain.AcquisitionEventType `json:"type"`
	POIType        string                      `json:"poi_type"`
	POITypeDisplay string                      `json:"poi_type_display"`
	Markers        []Marker                    `json:"markers"`
	Table          []TableRow                  `json:"table"`
}

// CompleteEvent - the merged result sorted along the route
type CompleteEvent struct {
	Type    domain.AcquisitionEventType `json:"type"`
	Markers []Marker                    `json:"markers"`
	Table   []TableRow                  `json:"table"`
}

// ErrorEvent - the acquisition failed
type ErrorEvent struct {
	Type  domain.AcquisitionEventType `json:"type,omitempty"`
	Error string                      `json:"error"`
}

func NewMarker(p domain.POI) Marker {
	return Marker{
		Lat:             p.Lat,
		Lon:             p.Lon,
		Name:            p.Name,
		POIType:         p.Category,
		OpeningHours:    p.OpeningHours,
		URL:             p.URL,
		GoogleMapsLink:  p.MapLink,
		DistanceOnRoute: p.DistanceOnRoute,
		DistanceToRoute: p.DistanceToRoute,
		PriceRange:      p.PriceRange,
		Brand:           p.Brand,
		Operator:        p.Operator,
		Wikipedia:       p.Wikipedia,
		Wikidata:        p.Wikidata,
	}
}

func NewTableRow(p domain.POI) TableRow {
	row := TableRow{
		Distance:       fmt.Sprintf("%.1f km", p.DistanceOnRoute),
		Deviation:      fmt.Sprintf("%.0fm", p.DistanceToRoute*1000),
		Name:           p.Name,
		POIType:        p.Category,
		OpeningHours:   notAvailable,
		GoogleMapsLink: p.MapLink,
		PriceRange:     p.PriceRange,
	}
	if p.OpeningHours != nil && *p.OpeningHours != "" {
		row.OpeningHours = *p.OpeningHours
	}
	if p.URL != nil {
		row.URL = *p.URL
	}
	return row
}

func NewMarkers(pois []domain.POI) []Marker {
	out := make([]Marker, 0, len(pois))
	for _, p := range pois {
		out = append(out, NewMarker(p))
	}
	return out
}

func NewTableRows(pois []domain.POI) []TableRow {
	out := make([]TableRow, 0, len(pois))
	for _, p := range pois {
		out = append(out, NewTableRow(p))
	}
	return out
}

// NewStreamEvent converts an acquisition event into its wire form. Error events
// carry message, which the caller derives from the failure.
func NewStreamEvent(e domain.AcquisitionEvent, message string) interface{} {
	switch e.Type {
	case domain.EventProgress:
		return ProgressEvent{
			Type:           e.Type,
			POIType:        e.Category,
			POITypeDisplay: domain.CategoryLabel(e.Category),
			Current:        e.Current,
			Total:          e.Total,
		}
	case domain.EventBatch:
		return BatchEvent{
			Type:           e.Type,
			POIType:        e.Category,
			POITypeDisplay: domain.CategoryLabel(e.Category),
			Markers:        NewMarkers(e.POIs),
			Table:          NewTableRows(e.POIs),
		}
	case domain.EventComplete:
		return CompleteEvent{
			Type:    e.Type,
			Markers: NewMarkers(e.POIs),
			Table:   NewTableRows(e.POIs),
		}
	default:
		return ErrorEvent{Type: domain.EventError, Error: message}
	}
}

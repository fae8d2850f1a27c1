package domain

import "github.com/google/uuid"

// Stream names
const (
	StreamRouteAcquire = "stream:route:acquire"
	StreamRoutePOIs    = "stream:route:pois"
)

// RouteAcquireEvent is the inbound job: acquire POIs along the given points.
type RouteAcquireEvent struct {
	RequestID     uuid.UUID                   `json:"request_id"`
	Points        []Coordinate                `json:"points"`
	Categories    []string                    `json:"categories,omitempty"`
	MaxDistanceKm *float64                    `json:"max_distance_km,omitempty"`
	DedupRadiusKm *float64                    `json:"dedup_radius_km,omitempty"`
	Settings      map[string]CategorySettings `json:"settings,omitempty"`
}

// HasPoints reports whether the event carries at least one coordinate.
func (e *RouteAcquireEvent) HasPoints() bool {
	return len(e.Points) > 0
}

// ToRequest builds an AcquisitionRequest. Unset values stay unset so that the
// acquisition applies its defaults and rejects out of range values.
func (e *RouteAcquireEvent) ToRequest() AcquisitionRequest {
	req := AcquisitionRequest{
		Categories:    e.Categories,
		DedupRadiusKm: e.DedupRadiusKm,
		Settings:      e.Settings,
	}
	if e.MaxDistanceKm != nil {
		req.MaxDistanceKm = *e.MaxDistanceKm
	}
	return req
}

// RoutePOIsEvent is the outbound result of a RouteAcquireEvent.
type RoutePOIsEvent struct {
	RequestID uuid.UUID `json:"request_id"`
	TotalKm   float64   `json:"total_km"`
	POIs      []POI     `json:"pois"`
	Error     string    `json:"error,omitempty"`
}

// StreamMessage is a message read from a Redis stream; Data is the JSON payload.
type StreamMessage struct {
	ID   string
	Data string
}

package repository

import "github.com/mapahead-service/internal/domain"

// TrackDecoder turns raw track bytes into an ordered point sequence.
type TrackDecoder interface {
	Decode(data []byte) (*domain.Track, error)
}

// RouteExporter encodes a route and its POIs into a downloadable document.
type RouteExporter interface {
	Format() string
	ContentType() string
	Export(route *domain.Route, pois []domain.POI) ([]byte, error)
}

package domain

import (
	"github.com/mapahead-service/internal/pkg/geo"
	"github.com/paulmach/orb"
)

// Coordinate is an immutable WGS84 position in degrees.
type Coordinate struct {
	Lat float64 `json:"lat" validate:"gte=-90,lte=90"`
	Lon float64 `json:"lon" validate:"gte=-180,lte=180"`
}

func (c Coordinate) Valid() bool {
	return geo.ValidCoordinate(c.Lat, c.Lon)
}

// Point converts to orb's lon/lat ordering.
func (c Coordinate) Point() orb.Point {
	return orb.Point{c.Lon, c.Lat}
}

// BoundingBox is the south/west/north/east rectangle sent to the Overpass API.
type BoundingBox struct {
	South float64 `json:"south"`
	West  float64 `json:"west"`
	North float64 `json:"north"`
	East  float64 `json:"east"`
}

// GreatCircleDistance returns the haversine distance between a and b in kilometres.
func GreatCircleDistance(a, b Coordinate) float64 {
	return geo.Haversine(a.Lat, a.Lon, b.Lat, b.Lon)
}

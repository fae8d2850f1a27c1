package domain

// Track is a decoded GPS track: its points in order, plus elevations where the
// source carries them.
type Track struct {
	Name       string
	Points     []Coordinate
	Elevations []*float64
}

// ElevationPoint is one sample of the elevation profile.
type ElevationPoint struct {
	DistanceKm float64 `json:"distance"`
	Elevation  float64 `json:"elevation"`
}

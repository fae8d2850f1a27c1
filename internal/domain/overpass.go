package domain

// OverpassResponse is the subset of the Overpass JSON reply the service reads.
type OverpassResponse struct {
	Version   float64           `json:"version,omitempty"`
	Generator string            `json:"generator,omitempty"`
	Elements  []OverpassElement `json:"elements"`
}

type OverpassElement struct {
	Type   string            `json:"type"`
	ID     int64             `json:"id"`
	Lat    *float64          `json:"lat,omitempty"`
	Lon    *float64          `json:"lon,omitempty"`
	Center *OverpassCenter   `json:"center,omitempty"`
	Tags   map[string]string `json:"tags,omitempty"`
}

type OverpassCenter struct {
	Lat *float64 `json:"lat"`
	Lon *float64 `json:"lon"`
}

// Coordinate resolves the element position. Nodes use lat/lon; ways use their
// center and fall back to lat/lon. Other element types are not resolvable.
func (e OverpassElement) Coordinate() (Coordinate, bool) {
	switch e.Type {
	case "node":
		return latLon(e.Lat, e.Lon)
	case "way":
		if e.Center != nil {
			return latLon(e.Center.Lat, e.Center.Lon)
		}
		return latLon(e.Lat, e.Lon)
	default:
		return Coordinate{}, false
	}
}

// Tag returns the tag value, or nil when the tag is absent or empty.
func (e OverpassElement) Tag(key string) *string {
	v, ok := e.Tags[key]
	if !ok || v == "" {
		return nil
	}
	return &v
}

func latLon(lat, lon *float64) (Coordinate, bool) {
	if lat == nil || lon == nil {
		return Coordinate{}, false
	}
	c := Coordinate{Lat: *lat, Lon: *lon}
	if !c.Valid() {
		return Coordinate{}, false
	}
	return c, true
}

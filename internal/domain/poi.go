package domain

import (
	"fmt"
	"math"
)

// POI is a snapshot of one remote element matched against a route.
// Distances are in kilometres and are computed once at conversion time.
type POI struct {
	Lat             float64 `json:"lat"`
	Lon             float64 `json:"lon"`
	Name            string  `json:"name"`
	DistanceToRoute float64 `json:"distance_to_route"`
	DistanceOnRoute float64 `json:"distance_on_route"`
	Category        string  `json:"poi_type"`
	OpeningHours    *string `json:"opening_hours"`
	URL             *string `json:"url"`
	MapLink         string  `json:"google_maps_link"`
	PriceRange      *string `json:"price_range"`
	Brand           *string `json:"brand"`
	Operator        *string `json:"operator"`
	Wikipedia       *string `json:"wikipedia"`
	Wikidata        *string `json:"wikidata"`
}

func (p POI) Coordinate() Coordinate {
	return Coordinate{Lat: p.Lat, Lon: p.Lon}
}

func (p POI) HasBrandOrOperator() bool {
	return nonEmpty(p.Brand) || nonEmpty(p.Operator)
}

func (p POI) HasExternalReference() bool {
	return nonEmpty(p.Wikipedia) || nonEmpty(p.Wikidata)
}

func (p POI) HasURL() bool {
	return nonEmpty(p.URL)
}

// HasName is false for POIs that fell back to the category default name.
func (p POI) HasName() bool {
	spec, ok := LookupCategory(p.Category)
	if !ok {
		return p.Name != ""
	}
	return p.Name != "" && p.Name != spec.DefaultName
}

func nonEmpty(s *string) bool {
	return s != nil && *s != ""
}

// CategorySettings overrides the global acquisition settings for one category.
// Nil fields fall back to the request defaults.
type CategorySettings struct {
	MaxDeviationKm        *float64 `json:"max_deviation_km,omitempty" validate:"omitempty,gt=0"`
	DeduplicationRadiusKm *float64 `json:"deduplication_radius_km,omitempty" validate:"omitempty,gte=0"`
}

// MaxDistance returns the category override or def.
func (s CategorySettings) MaxDistance(def float64) float64 {
	if s.MaxDeviationKm != nil {
		return *s.MaxDeviationKm
	}
	return def
}

// DedupRadius returns the category override or def.
func (s CategorySettings) DedupRadius(def float64) float64 {
	if s.DeduplicationRadiusKm != nil {
		return *s.DeduplicationRadiusKm
	}
	return def
}

// AwayLabel renders DistanceToRoute for humans: metres up to 1500 m, km above.
func (p POI) AwayLabel() string {
	m := int(p.DistanceToRoute * 1000)
	if m > 1500 {
		return fmt.Sprintf("%.1f km", p.DistanceToRoute)
	}
	return fmt.Sprintf("%d m", m)
}

// RouteKm is DistanceOnRoute rounded to whole kilometres.
func (p POI) RouteKm() int {
	return int(math.Round(p.DistanceOnRoute))
}

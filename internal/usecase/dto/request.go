package dto

import "github.com/mapahead-service/internal/domain"

// POIStreamRequest - query parameters of the POI stream endpoint
type POIStreamRequest struct {
	MaxDistanceKm float64                            `query:"max_distance_km" validate:"omitempty,gt=0,max=50"`
	DedupRadiusKm float64                            `query:"deduplication_radius_km" validate:"omitempty,gte=0,max=50"`
	POITypes      []string                           `validate:"omitempty,dive,poi_category"`
	Settings      map[string]domain.CategorySettings `validate:"omitempty,dive,keys,poi_category,endkeys"`
}

// ToAcquisitionRequest converts the request into the domain form.
func (r POIStreamRequest) ToAcquisitionRequest() domain.AcquisitionRequest {
	dedupRadius := r.DedupRadiusKm
	return domain.AcquisitionRequest{
		Categories:    r.POITypes,
		MaxDistanceKm: r.MaxDistanceKm,
		DedupRadiusKm: &dedupRadius,
		Settings:      r.Settings,
	}
}

// StarredPOI - a POI selected by the user for export.
// Distances may come as numbers or as the formatted table strings.
type StarredPOI struct {
	Lat             float64  `json:"lat" validate:"min=-90,max=90"`
	Lon             float64  `json:"lon" validate:"min=-180,max=180"`
	Name            string   `json:"name"`
	POIType         string   `json:"poi_type"`
	OpeningHours    *string  `json:"opening_hours,omitempty"`
	URL             *string  `json:"url,omitempty"`
	GoogleMapsLink  string   `json:"google_maps_link,omitempty"`
	PriceRange      *string  `json:"price_range,omitempty"`
	Brand           *string  `json:"brand,omitempty"`
	Operator        *string  `json:"operator,omitempty"`
	Wikipedia       *string  `json:"wikipedia,omitempty"`
	Wikidata        *string  `json:"wikidata,omitempty"`
	DistanceOnRoute *float64 `json:"distance_on_route,omitempty"`
	DistanceToRoute *float64 `json:"distance_to_route,omitempty"`
	Distance        string   `json:"distance,omitempty"`
	Deviation       string   `json:"deviation,omitempty"`
}

// ExportRequest - body of the export endpoints
type ExportRequest struct {
	POIs []StarredPOI `validate:"dive"`
}

// AcquireRouteRequest - body of the asynchronous acquisition endpoint
type AcquireRouteRequest struct {
	Points        []domain.Coordinate                `json:"points" validate:"required,min=1,dive"`
	Categories    []string                           `json:"categories,omitempty" validate:"omitempty,dive,poi_category"`
	MaxDistanceKm *float64                           `json:"max_distance_km,omitempty" validate:"omitempty,gt=0,max=50"`
	DedupRadiusKm *float64                           `json:"dedup_radius_km,omitempty" validate:"omitempty,gte=0,max=50"`
	Settings      map[string]domain.CategorySettings `json:"settings,omitempty" validate:"omitempty,dive,keys,poi_category,endkeys"`
}

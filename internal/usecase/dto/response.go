package dto

import (
	"time"

	"github.com/mapahead-service/internal/domain"
)

// UploadRouteResponse - result of a track upload
type UploadRouteResponse struct {
	RouteID          string                  `json:"route_id"`
	Filename         string                  `json:"filename"`
	Coordinates      []domain.Coordinate     `json:"coordinates"`
	ElevationProfile []domain.ElevationPoint `json:"elevation_profile"`
	TotalDistance    float64                 `json:"total_distance"` // km
}

// RouteResponse - a registered route
type RouteResponse struct {
	RouteID       string              `json:"route_id"`
	Filename      string              `json:"filename,omitempty"`
	Coordinates   []domain.Coordinate `json:"coordinates"`
	TotalDistance float64             `json:"total_distance"` // km
	HasTrack      bool                `json:"has_track"`
	CreatedAt     time.Time           `json:"created_at"`
}

// CategoryResponse - one entry of the category catalogue
type CategoryResponse struct {
	Code        string `json:"code"`
	DisplayName string `json:"display_name"`
	Label       string `json:"label"`
	DefaultName string `json:"default_name"`
	Deduplicate bool   `json:"deduplicate"`
}

// AcquireRouteResponse - accepted asynchronous acquisition
type AcquireRouteResponse struct {
	RequestID string `json:"request_id"`
	Stream    string `json:"stream"`
}

// HealthResponse - service health
type HealthResponse struct {
	Status string            `json:"status"`
	Time   time.Time         `json:"time"`
	Checks map[string]string `json:"checks,omitempty"`
}

// NewCategoryResponses lists every category in catalogue order.
func NewCategoryResponses() []CategoryResponse {
	specs := domain.Categories()
	out := make([]CategoryResponse, 0, len(specs))
	for _, spec := range specs {
		out = append(out, CategoryResponse{
			Code:        spec.Code,
			DisplayName: spec.DisplayName,
			Label:       domain.CategoryLabel(spec.Code),
			DefaultName: spec.DefaultName,
			Deduplicate: spec.Deduplicate,
		})
	}
	return out
}

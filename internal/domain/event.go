package domain

// AcquisitionEventType names the events produced while POIs are acquired for a route.
type AcquisitionEventType string

const (
	EventProgress AcquisitionEventType = "progress"
	EventBatch    AcquisitionEventType = "poi_batch"
	EventComplete AcquisitionEventType = "complete"
	EventError    AcquisitionEventType = "error"
)

// AcquisitionEvent is one item of the ordered event stream of an acquisition.
// Progress uses Category/Current/Total, Batch uses Category/POIs,
// Complete carries the merged sorted POIs and Error carries Err.
type AcquisitionEvent struct {
	Type     AcquisitionEventType
	Category string
	Current  int
	Total    int
	POIs     []POI
	Err      error
}

// AcquisitionRequest describes one POI acquisition against a route.
type AcquisitionRequest struct {
	// Categories restricts the query; empty means every category.
	Categories []string
	// MaxDistanceKm of zero means the configured default.
	MaxDistanceKm float64
	// DedupRadiusKm of nil means the configured default. An explicit zero disables merging.
	DedupRadiusKm *float64
	// BufferKm pads the route bounding box. Zero means derive it from the distance settings.
	BufferKm float64
	Settings map[string]CategorySettings
}

// SettingsFor returns the overrides for category, or the zero value.
func (r AcquisitionRequest) SettingsFor(category string) CategorySettings {
	if r.Settings == nil {
		return CategorySettings{}
	}
	return r.Settings[category]
}

// GlobalDedupRadiusKm returns the global dedup radius, or 0 when unset.
func (r AcquisitionRequest) GlobalDedupRadiusKm() float64 {
	if r.DedupRadiusKm == nil {
		return 0
	}
	return *r.DedupRadiusKm
}

// EffectiveBufferKm is BufferKm when set, otherwise the largest max distance
// across the global setting and every per-category override.
func (r AcquisitionRequest) EffectiveBufferKm() float64 {
	if r.BufferKm > 0 {
		return r.BufferKm
	}
	buf := r.MaxDistanceKm
	for _, s := range r.Settings {
		if s.MaxDeviationKm != nil && *s.MaxDeviationKm > buf {
			buf = *s.MaxDeviationKm
		}
	}
	return buf
}

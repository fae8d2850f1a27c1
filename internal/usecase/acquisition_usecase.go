package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/mapahead-service/internal/config"
	"github.com/mapahead-service/internal/domain"
	"github.com/mapahead-service/internal/domain/repository"
	"github.com/mapahead-service/internal/pkg/errors"
	"go.uber.org/zap"
)

// EventSink receives acquisition events in production order.
type EventSink func(domain.AcquisitionEvent)

type AcquisitionUseCase struct {
	overpassRepo         repository.OverpassRepository
	categoryDelay        time.Duration
	defaultMaxDistanceKm float64
	defaultDedupRadiusKm float64
	logger               *zap.Logger
}

func NewAcquisitionUseCase(
	overpassRepo repository.OverpassRepository,
	cfg *config.AcquisitionConfig,
	logger *zap.Logger,
) *AcquisitionUseCase {
	return &AcquisitionUseCase{
		overpassRepo:         overpassRepo,
		categoryDelay:        cfg.CategoryDelay,
		defaultMaxDistanceKm: cfg.MaxDistanceKm,
		defaultDedupRadiusKm: cfg.DedupRadiusKm,
		logger:               logger,
	}
}

// Defaults returns the configured global max distance and dedup radius.
func (uc *AcquisitionUseCase) Defaults() (maxDistanceKm, dedupRadiusKm float64) {
	return uc.defaultMaxDistanceKm, uc.defaultDedupRadiusKm
}

// Acquire queries every requested category along route, one after another,
// and returns the union of the deduplicated results sorted by distance along
// the route. A category whose query fails is logged and skipped. sink may be nil.
func (uc *AcquisitionUseCase) Acquire(
	ctx context.Context,
	route *domain.Route,
	req domain.AcquisitionRequest,
	sink EventSink,
) ([]domain.POI, error) {
	categories, err := uc.prepare(route, &req)
	if err != nil {
		return nil, err
	}
	return uc.run(ctx, route, req, categories, sink)
}

// Stream validates the request and then runs the acquisition in a background
// goroutine. The returned channel yields progress and batch events followed by
// exactly one complete or error event, then closes. The channel is buffered for
// every event of the run, so the producer never waits for the reader and keeps
// running to completion if the reader goes away.
func (uc *AcquisitionUseCase) Stream(
	ctx context.Context,
	route *domain.Route,
	req domain.AcquisitionRequest,
) (<-chan domain.AcquisitionEvent, error) {
	categories, err := uc.prepare(route, &req)
	if err != nil {
		return nil, err
	}

	events := make(chan domain.AcquisitionEvent, 2*len(categories)+1)
	runCtx := context.WithoutCancel(ctx)

	go func() {
		defer close(events)

		pois, err := uc.run(runCtx, route, req, categories, func(e domain.AcquisitionEvent) {
			events <- e
		})
		if err != nil {
			events <- domain.AcquisitionEvent{Type: domain.EventError, Err: err}
			return
		}
		events <- domain.AcquisitionEvent{Type: domain.EventComplete, POIs: pois}
	}()

	return events, nil
}

// prepare validates the request before any network call and fills the
// default max distance and dedup radius.
func (uc *AcquisitionUseCase) prepare(route *domain.Route, req *domain.AcquisitionRequest) ([]domain.CategorySpec, error) {
	if route == nil {
		return nil, errors.ErrRouteNotFound
	}

	if req.MaxDistanceKm == 0 {
		req.MaxDistanceKm = uc.defaultMaxDistanceKm
	}
	if req.DedupRadiusKm == nil {
		dedupRadius := uc.defaultDedupRadiusKm
		req.DedupRadiusKm = &dedupRadius
	}
	if req.MaxDistanceKm < 0 || *req.DedupRadiusKm < 0 || req.BufferKm < 0 {
		return nil, errors.ErrInvalidRequest.WithDetails(map[string]interface{}{
			"max_distance_km": req.MaxDistanceKm,
			"dedup_radius_km": *req.DedupRadiusKm,
			"buffer_km":       req.BufferKm,
		})
	}

	codes := req.Categories
	if len(codes) == 0 {
		codes = domain.CategoryCodes()
	}
	if unknown := domain.UnknownCategories(codes); len(unknown) > 0 {
		return nil, errors.ErrUnknownCategory.WithDetails(map[string]interface{}{
			"unknown":   unknown,
			"supported": domain.CategoryCodes(),
		})
	}
	for code, s := range req.Settings {
		if !domain.IsKnownCategory(code) {
			return nil, errors.ErrUnknownCategory.WithDetails(map[string]interface{}{
				"unknown": []string{code},
			})
		}
		if s.MaxDeviationKm != nil && *s.MaxDeviationKm <= 0 {
			return nil, errors.ErrInvalidRequest.WithDetails(map[string]interface{}{
				"category":         code,
				"max_deviation_km": *s.MaxDeviationKm,
			})
		}
		if s.DeduplicationRadiusKm != nil && *s.DeduplicationRadiusKm < 0 {
			return nil, errors.ErrInvalidRequest.WithDetails(map[string]interface{}{
				"category":                code,
				"deduplication_radius_km": *s.DeduplicationRadiusKm,
			})
		}
	}

	specs := make([]domain.CategorySpec, 0, len(codes))
	for _, code := range codes {
		spec, _ := domain.LookupCategory(code)
		specs = append(specs, spec)
	}
	return specs, nil
}

func (uc *AcquisitionUseCase) run(
	ctx context.Context,
	route *domain.Route,
	req domain.AcquisitionRequest,
	categories []domain.CategorySpec,
	sink EventSink,
) ([]domain.POI, error) {
	if sink == nil {
		sink = func(domain.AcquisitionEvent) {}
	}

	bufferKm := req.EffectiveBufferKm()
	bbox := route.BoundingBox(bufferKm)
	total := len(categories)

	uc.logger.Info("Starting POI acquisition",
		zap.String("route_id", route.ID()),
		zap.Int("categories", total),
		zap.Float64("buffer_km", bufferKm),
		zap.Any("bbox", bbox))

	var all []domain.POI
	failed := 0
	for i, spec := range categories {
		if i > 0 {
			if err := sleep(ctx, uc.categoryDelay); err != nil {
				return nil, fmt.Errorf("acquisition cancelled: %w", err)
			}
		}

		sink(domain.AcquisitionEvent{
			Type:     domain.EventProgress,
			Category: spec.Code,
			Current:  i + 1,
			Total:    total,
		})

		pois, err := uc.acquireCategory(ctx, route, spec, bbox, req)
		if err != nil {
			if ctx.Err() != nil {
				return nil, fmt.Errorf("acquisition cancelled: %w", ctx.Err())
			}
			failed++
			uc.logger.Warn("Failed to query POI category, continuing with other categories",
				zap.String("route_id", route.ID()),
				zap.String("category", spec.Code),
				zap.Error(err))
			continue
		}

		all = append(all, pois...)
		sink(domain.AcquisitionEvent{
			Type:     domain.EventBatch,
			Category: spec.Code,
			POIs:     pois,
		})
	}

	SortByDistanceOnRoute(all)

	uc.logger.Info("POI acquisition finished",
		zap.String("route_id", route.ID()),
		zap.Int("pois", len(all)),
		zap.Int("failed_categories", failed))

	if all == nil {
		all = []domain.POI{}
	}
	return all, nil
}

func (uc *AcquisitionUseCase) acquireCategory(
	ctx context.Context,
	route *domain.Route,
	spec domain.CategorySpec,
	bbox domain.BoundingBox,
	req domain.AcquisitionRequest,
) ([]domain.POI, error) {
	settings := req.SettingsFor(spec.Code)
	maxDistance := settings.MaxDistance(req.MaxDistanceKm)

	resp, err := uc.overpassRepo.Query(ctx, domain.BuildOverpassQuery(spec, bbox))
	if err != nil {
		return nil, err
	}

	filtered := ConvertElements(route, spec, resp.Elements, maxDistance)
	deduplicated := Deduplicate(filtered, req.GlobalDedupRadiusKm(), req.Settings)

	uc.logger.Info("POI category processed",
		zap.String("category", spec.Code),
		zap.Int("raw_elements", len(resp.Elements)),
		zap.Int("within_distance", len(filtered)),
		zap.Int("after_dedup", len(deduplicated)),
		zap.Float64("max_distance_km", maxDistance),
		zap.Float64("dedup_radius_km", settings.DedupRadius(req.GlobalDedupRadiusKm())))

	return deduplicated, nil
}

func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

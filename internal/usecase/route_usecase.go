package usecase

import (
	"context"
	"errors"
	"math"
	"path/filepath"
	"strings"

	"github.com/mapahead-service/internal/config"
	"github.com/mapahead-service/internal/domain"
	"github.com/mapahead-service/internal/domain/repository"
	apperrors "github.com/mapahead-service/internal/pkg/errors"
	"github.com/mapahead-service/internal/usecase/dto"
	"go.uber.org/zap"
)

type RouteUseCase struct {
	routeRepo   repository.RouteRepository
	decoder     repository.TrackDecoder
	maxFileSize int64
	logger      *zap.Logger
}

func NewRouteUseCase(
	routeRepo repository.RouteRepository,
	decoder repository.TrackDecoder,
	cfg *config.UploadConfig,
	logger *zap.Logger,
) *RouteUseCase {
	return &RouteUseCase{
		routeRepo:   routeRepo,
		decoder:     decoder,
		maxFileSize: cfg.MaxFileSizeBytes,
		logger:      logger,
	}
}

// MaxFileSize is the upload limit in bytes.
func (uc *RouteUseCase) MaxFileSize() int64 {
	return uc.maxFileSize
}

// Upload decodes a GPX track and registers it. Nothing is registered when any
// check fails.
func (uc *RouteUseCase) Upload(ctx context.Context, filename string, data []byte) (*dto.UploadRouteResponse, error) {
	if !strings.EqualFold(filepath.Ext(filename), ".gpx") {
		return nil, apperrors.ErrInvalidFileType.WithDetails(map[string]interface{}{
			"filename": filename,
		})
	}
	if len(data) == 0 {
		return nil, apperrors.ErrEmptyFile
	}
	if int64(len(data)) > uc.maxFileSize {
		return nil, apperrors.ErrFileTooLarge.WithDetails(map[string]interface{}{
			"max_size_mb": float64(uc.maxFileSize) / (1024 * 1024),
		})
	}

	track, err := uc.decoder.Decode(data)
	if err != nil {
		uc.logger.Warn("Failed to decode uploaded track",
			zap.String("filename", filename),
			zap.Error(err))
		return nil, apperrors.ErrInvalidGPX.WithMessage("Failed to parse GPX file: " + err.Error())
	}

	route, err := uc.routeRepo.Store(ctx, track.Points, data, filename)
	if err != nil {
		if errors.Is(err, domain.ErrInvalidCoordinate) {
			return nil, apperrors.ErrInvalidCoordinates.WithMessage(err.Error())
		}
		if errors.Is(err, domain.ErrEmptyRoute) {
			return nil, apperrors.ErrEmptyRoute
		}
		uc.logger.Error("Failed to store route", zap.Error(err))
		return nil, err
	}

	uc.logger.Info("Route uploaded",
		zap.String("route_id", route.ID()),
		zap.String("filename", filename),
		zap.Int("points", route.Len()),
		zap.Float64("total_km", route.TotalLength()))

	return &dto.UploadRouteResponse{
		RouteID:          route.ID(),
		Filename:         filename,
		Coordinates:      route.Points(),
		ElevationProfile: ElevationProfile(route, track.Elevations),
		TotalDistance:    round(route.TotalLength(), 2),
	}, nil
}

// Get returns the registered route or ErrRouteNotFound.
func (uc *RouteUseCase) Get(ctx context.Context, id string) (*domain.Route, error) {
	route, err := uc.routeRepo.Get(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrRouteNotFound) {
			return nil, apperrors.ErrRouteNotFound
		}
		return nil, err
	}
	return route, nil
}

func (uc *RouteUseCase) Describe(ctx context.Context, id string) (*dto.RouteResponse, error) {
	route, err := uc.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	return &dto.RouteResponse{
		RouteID:       route.ID(),
		Filename:      route.Filename(),
		Coordinates:   route.Points(),
		TotalDistance: round(route.TotalLength(), 2),
		HasTrack:      route.HasSource(),
		CreatedAt:     route.CreatedAt(),
	}, nil
}

// ElevationProfile pairs each point's cumulative distance (3 dp) with its
// elevation; points without elevation report 0.
func ElevationProfile(route *domain.Route, elevations []*float64) []domain.ElevationPoint {
	profile := make([]domain.ElevationPoint, route.Len())
	for i := range profile {
		profile[i].DistanceKm = round(route.DistanceAt(i), 3)
		if i < len(elevations) && elevations[i] != nil {
			profile[i].Elevation = *elevations[i]
		}
	}
	return profile
}

func round(v float64, places int) float64 {
	p := math.Pow(10, float64(places))
	return math.Round(v*p) / p
}

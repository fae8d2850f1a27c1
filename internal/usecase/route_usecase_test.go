package usecase

import (
	"context"
	"errors"
	"testing"

	"github.com/mapahead-service/internal/config"
	"github.com/mapahead-service/internal/domain"
	"github.com/mapahead-service/internal/domain/repository"
	apperrors "github.com/mapahead-service/internal/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type MockRouteRepository struct {
	mock.Mock
}

func (m *MockRouteRepository) Store(ctx context.Context, points []domain.Coordinate, source []byte, filename string) (*domain.Route, error) {
	args := m.Called(ctx, points, source, filename)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Route), args.Error(1)
}

func (m *MockRouteRepository) Get(ctx context.Context, id string) (*domain.Route, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Route), args.Error(1)
}

func (m *MockRouteRepository) Count(ctx context.Context) int {
	args := m.Called(ctx)
	return args.Int(0)
}

type MockTrackDecoder struct {
	mock.Mock
}

func (m *MockTrackDecoder) Decode(data []byte) (*domain.Track, error) {
	args := m.Called(data)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Track), args.Error(1)
}

func newTestRouteUseCase(repo *MockRouteRepository, decoder *MockTrackDecoder) *RouteUseCase {
	return NewRouteUseCase(repo, decoder, &config.UploadConfig{MaxFileSizeBytes: 64}, zap.NewNop())
}

func TestRouteUseCase_Upload_Success(t *testing.T) {
	data := []byte("<gpx/>")
	points := []domain.Coordinate{{Lat: 41.0, Lon: 2.0}, {Lat: 41.0, Lon: 2.01}, {Lat: 41.0, Lon: 2.02}}
	route, err := domain.NewRoute("route-1", points, data, "ride.gpx")
	require.NoError(t, err)

	decoder := new(MockTrackDecoder)
	decoder.On("Decode", data).Return(&domain.Track{
		Points:     points,
		Elevations: []*float64{floatPtr(100), nil, floatPtr(120.5)},
	}, nil)
	repo := new(MockRouteRepository)
	repo.On("Store", mock.Anything, points, data, "ride.gpx").Return(route, nil)

	uc := newTestRouteUseCase(repo, decoder)

	resp, err := uc.Upload(context.Background(), "ride.gpx", data)

	require.NoError(t, err)
	assert.Equal(t, "route-1", resp.RouteID)
	assert.Equal(t, "ride.gpx", resp.Filename)
	assert.Equal(t, points, resp.Coordinates)
	require.Len(t, resp.ElevationProfile, 3)
	assert.Equal(t, 0.0, resp.ElevationProfile[0].DistanceKm)
	assert.Equal(t, 100.0, resp.ElevationProfile[0].Elevation)
	assert.Equal(t, 0.0, resp.ElevationProfile[1].Elevation)
	assert.InDelta(t, 0.839, resp.ElevationProfile[1].DistanceKm, 0.001)
	assert.InDelta(t, 1.68, resp.TotalDistance, 0.01)
	assert.Equal(t, resp.TotalDistance, round(resp.TotalDistance, 2))

	decoder.AssertExpectations(t)
	repo.AssertExpectations(t)
}

func TestRouteUseCase_Upload_Rejections(t *testing.T) {
	tests := []struct {
		name     string
		filename string
		data     []byte
		decodeOK bool
		wantErr  error
	}{
		{name: "wrong extension", filename: "ride.kml", data: []byte("x"), wantErr: apperrors.ErrInvalidFileType},
		{name: "empty file", filename: "ride.gpx", data: nil, wantErr: apperrors.ErrEmptyFile},
		{name: "too large", filename: "ride.gpx", data: make([]byte, 65), wantErr: apperrors.ErrFileTooLarge},
		{name: "decode failure", filename: "ride.gpx", data: []byte("broken"), decodeOK: true, wantErr: apperrors.ErrInvalidGPX},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			decoder := new(MockTrackDecoder)
			if tt.decodeOK {
				decoder.On("Decode", tt.data).Return(nil, errors.New("no track points"))
			}
			repo := new(MockRouteRepository)

			uc := newTestRouteUseCase(repo, decoder)

			resp, err := uc.Upload(context.Background(), tt.filename, tt.data)

			assert.Nil(t, resp)
			assert.ErrorIs(t, err, tt.wantErr)
			repo.AssertNotCalled(t, "Store", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
		})
	}
}

func TestRouteUseCase_Upload_SizeLimitIsInclusive(t *testing.T) {
	data := make([]byte, 64)
	decoder := new(MockTrackDecoder)
	decoder.On("Decode", data).Return(nil, errors.New("not gpx"))

	uc := newTestRouteUseCase(new(MockRouteRepository), decoder)

	_, err := uc.Upload(context.Background(), "ride.GPX", data)

	assert.ErrorIs(t, err, apperrors.ErrInvalidGPX)
}

func TestRouteUseCase_Get(t *testing.T) {
	route, err := domain.NewRoute("known", []domain.Coordinate{{Lat: 1, Lon: 1}}, nil, "")
	require.NoError(t, err)

	repo := new(MockRouteRepository)
	repo.On("Get", mock.Anything, "known").Return(route, nil)
	repo.On("Get", mock.Anything, "missing").Return(nil, repository.ErrRouteNotFound)

	uc := newTestRouteUseCase(repo, new(MockTrackDecoder))

	got, err := uc.Get(context.Background(), "known")
	require.NoError(t, err)
	assert.Same(t, route, got)

	_, err = uc.Get(context.Background(), "missing")
	assert.ErrorIs(t, err, apperrors.ErrRouteNotFound)

	desc, err := uc.Describe(context.Background(), "known")
	require.NoError(t, err)
	assert.Equal(t, "known", desc.RouteID)
	assert.False(t, desc.HasTrack)
}

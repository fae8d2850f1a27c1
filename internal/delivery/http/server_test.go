package http

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/mapahead-service/internal/config"
	"github.com/mapahead-service/internal/delivery/http/handler"
	"github.com/mapahead-service/internal/domain"
	"github.com/mapahead-service/internal/usecase/dto"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type MockStreamRepository struct {
	mock.Mock
}

func (m *MockStreamRepository) ConsumeStream(ctx context.Context, stream, group, consumer string) (<-chan domain.StreamMessage, error) {
	args := m.Called(ctx, stream, group, consumer)
	return nil, args.Error(1)
}

func (m *MockStreamRepository) ConsumeBatch(ctx context.Context, stream, group, consumer string, count int64, block time.Duration) ([]domain.StreamMessage, error) {
	args := m.Called(ctx, stream, group, consumer, count, block)
	return nil, args.Error(1)
}

func (m *MockStreamRepository) AckMessage(ctx context.Context, stream, group, messageID string) error {
	return m.Called(ctx, stream, group, messageID).Error(0)
}

func (m *MockStreamRepository) AckMessages(ctx context.Context, stream, group string, messageIDs ...string) error {
	return m.Called(ctx, stream, group, messageIDs).Error(0)
}

func (m *MockStreamRepository) CreateConsumerGroup(ctx context.Context, stream, group string) error {
	return m.Called(ctx, stream, group).Error(0)
}

func (m *MockStreamRepository) PublishToStream(ctx context.Context, stream string, data interface{}) error {
	return m.Called(ctx, stream, data).Error(0)
}

func newTestServer(jobHandler *handler.AcquisitionJobHandler, checks map[string]HealthCheck) *Server {
	cfg := &config.Config{
		Server: config.ServerConfig{CorsOrigins: "*"},
		Upload: config.UploadConfig{MaxFileSizeBytes: 1024 * 1024},
	}
	logger := zap.NewNop()

	return NewServer(
		cfg,
		logger,
		handler.NewRouteHandler(nil, logger),
		handler.NewPOIStreamHandler(nil, nil, logger),
		handler.NewExportHandler(nil, logger),
		handler.NewCategoryHandler(),
		jobHandler,
		checks,
	)
}

func TestServer_Health(t *testing.T) {
	tests := []struct {
		name       string
		checks     map[string]HealthCheck
		wantStatus int
		wantState  string
	}{
		{
			name:       "no dependencies",
			wantStatus: fiber.StatusOK,
			wantState:  "healthy",
		},
		{
			name: "redis up",
			checks: map[string]HealthCheck{
				"redis": func(context.Context) error { return nil },
			},
			wantStatus: fiber.StatusOK,
			wantState:  "healthy",
		},
		{
			name: "redis down",
			checks: map[string]HealthCheck{
				"redis": func(context.Context) error { return errors.New("connection refused") },
			},
			wantStatus: fiber.StatusServiceUnavailable,
			wantState:  "degraded",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newTestServer(nil, tt.checks)

			resp, err := s.App().Test(httptest.NewRequest(http.MethodGet, "/api/v1/health", nil))
			require.NoError(t, err)
			assert.Equal(t, tt.wantStatus, resp.StatusCode)

			var body dto.HealthResponse
			require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
			assert.Equal(t, tt.wantState, body.Status)
			assert.Len(t, body.Checks, len(tt.checks))
		})
	}
}

func TestServer_AcquisitionsRouteIsOptional(t *testing.T) {
	s := newTestServer(nil, nil)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/acquisitions", strings.NewReader(`{}`))
	req.Header.Set("Content-Type", "application/json")
	resp, err := s.App().Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)
}

func TestServer_EnqueueAcquisition(t *testing.T) {
	streamRepo := new(MockStreamRepository)
	s := newTestServer(handler.NewAcquisitionJobHandler(streamRepo, zap.NewNop()), nil)

	streamRepo.On("PublishToStream", mock.Anything, domain.StreamRouteAcquire, mock.MatchedBy(func(e domain.RouteAcquireEvent) bool {
		return len(e.Points) == 2 && len(e.Categories) == 1 && e.Categories[0] == domain.CategoryGroceryStores
	})).Return(nil).Once()

	body := `{"points":[{"lat":41.0,"lon":2.0},{"lat":41.0,"lon":2.1}],"categories":["` + domain.CategoryGroceryStores + `"]}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/acquisitions", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.App().Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusAccepted, resp.StatusCode)

	var out struct {
		Data dto.AcquireRouteResponse `json:"data"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	assert.NotEmpty(t, out.Data.RequestID)
	assert.Equal(t, domain.StreamRoutePOIs, out.Data.Stream)
	streamRepo.AssertExpectations(t)
}

func TestServer_EnqueueRejectsUnknownCategory(t *testing.T) {
	streamRepo := new(MockStreamRepository)
	s := newTestServer(handler.NewAcquisitionJobHandler(streamRepo, zap.NewNop()), nil)

	body := `{"points":[{"lat":41.0,"lon":2.0}],"categories":["castles"]}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/acquisitions", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.App().Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)

	raw, _ := io.ReadAll(resp.Body)
	assert.Contains(t, string(raw), "UNKNOWN_CATEGORY")
	streamRepo.AssertNotCalled(t, "PublishToStream", mock.Anything, mock.Anything, mock.Anything)
}

func TestServer_UnknownPath(t *testing.T) {
	s := newTestServer(nil, nil)

	resp, err := s.App().Test(httptest.NewRequest(http.MethodGet, "/api/v1/nowhere", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)

	raw, _ := io.ReadAll(resp.Body)
	assert.Contains(t, string(raw), "NOT_FOUND")
}

func TestServer_CompressesJSONResponses(t *testing.T) {
	s := newTestServer(nil, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/categories", nil)
	req.Header.Set("Accept-Encoding", "gzip")
	resp, err := s.App().Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Equal(t, "gzip", resp.Header.Get("Content-Encoding"))
}

func TestBodyLimit(t *testing.T) {
	assert.Equal(t, fiber.DefaultBodyLimit, bodyLimit(1024))
	assert.Equal(t, 10*1024*1024+1024*1024, bodyLimit(10*1024*1024))
}

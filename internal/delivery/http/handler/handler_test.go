package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/mapahead-service/internal/config"
	"github.com/mapahead-service/internal/domain"
	"github.com/mapahead-service/internal/domain/repository"
	"github.com/mapahead-service/internal/infrastructure/geojson"
	"github.com/mapahead-service/internal/infrastructure/gpx"
	"github.com/mapahead-service/internal/infrastructure/kml"
	"github.com/mapahead-service/internal/infrastructure/overpass"
	"github.com/mapahead-service/internal/repository/memory"
	"github.com/mapahead-service/internal/usecase"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const testGPX = `<?xml version="1.0" encoding="UTF-8"?>
<gpx version="1.1" creator="test" xmlns="http://www.topografix.com/GPX/1/1">
  <trk><name>Test</name><trkseg>
    <trkpt lat="41.0" lon="2.00"><ele>10</ele></trkpt>
    <trkpt lat="41.0" lon="2.01"><ele>20</ele></trkpt>
    <trkpt lat="41.0" lon="2.02"><ele>30</ele></trkpt>
  </trkseg></trk>
</gpx>`

type MockOverpassRepository struct {
	mock.Mock
}

func (m *MockOverpassRepository) Query(ctx context.Context, query string) (*domain.OverpassResponse, error) {
	args := m.Called(ctx, query)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.OverpassResponse), args.Error(1)
}

type testEnv struct {
	app       *fiber.App
	routeRepo repository.RouteRepository
	overpass  *MockOverpassRepository
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	logger := zap.NewNop()

	routeRepo := memory.NewRouteRepository(logger)
	overpassRepo := new(MockOverpassRepository)

	routeUC := usecase.NewRouteUseCase(routeRepo, gpx.NewDecoder(logger), &config.UploadConfig{MaxFileSizeBytes: 1024 * 1024}, logger)
	acquisitionUC := usecase.NewAcquisitionUseCase(overpassRepo, &config.AcquisitionConfig{MaxDistanceKm: 1, DedupRadiusKm: 1}, logger)
	exportUC := usecase.NewExportUseCase(routeRepo, []repository.RouteExporter{
		gpx.NewExporter(logger),
		kml.NewExporter(logger),
		geojson.NewExporter(logger),
	}, logger)

	routes := NewRouteHandler(routeUC, logger)
	stream := NewPOIStreamHandler(routeUC, acquisitionUC, logger)
	export := NewExportHandler(exportUC, logger)

	app := fiber.New()
	app.Get("/categories", NewCategoryHandler().ListCategories)
	app.Post("/routes", routes.Upload)
	app.Get("/routes/:id", routes.GetRoute)
	app.Get("/routes/:id/pois", stream.StreamPOIs)
	app.Post("/routes/:id/export/:format", export.Export)

	return &testEnv{app: app, routeRepo: routeRepo, overpass: overpassRepo}
}

func uploadRequest(t *testing.T, filename, content string) *http.Request {
	t.Helper()
	var body bytes.Buffer
	w := multipart.NewWriter(&body)
	part, err := w.CreateFormFile("file", filename)
	require.NoError(t, err)
	_, err = part.Write([]byte(content))
	require.NoError(t, err)
	require.NoError(t, w.Close())

	req := httptest.NewRequest(http.MethodPost, "/routes", &body)
	req.Header.Set("Content-Type", w.FormDataContentType())
	return req
}

func decodeBody(t *testing.T, resp *http.Response, out interface{}) {
	t.Helper()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal(body, out), string(body))
}

func storeRoute(t *testing.T, env *testEnv) *domain.Route {
	t.Helper()
	route, err := env.routeRepo.Store(context.Background(), []domain.Coordinate{
		{Lat: 41.0, Lon: 2.00},
		{Lat: 41.0, Lon: 2.01},
		{Lat: 41.0, Lon: 2.02},
	}, []byte(testGPX), "test.gpx")
	require.NoError(t, err)
	return route
}

// sseFrames splits an event-stream body into decoded JSON payloads.
func sseFrames(t *testing.T, body string) []map[string]interface{} {
	t.Helper()
	var frames []map[string]interface{}
	for _, chunk := range strings.Split(body, "\n\n") {
		chunk = strings.TrimSpace(chunk)
		if chunk == "" {
			continue
		}
		require.True(t, strings.HasPrefix(chunk, "data: "), chunk)
		var frame map[string]interface{}
		require.NoError(t, json.Unmarshal([]byte(strings.TrimPrefix(chunk, "data: ")), &frame))
		frames = append(frames, frame)
	}
	return frames
}

func TestRouteHandler_UploadAndGet(t *testing.T) {
	env := newTestEnv(t)

	resp, err := env.app.Test(uploadRequest(t, "ride.gpx", testGPX))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	var uploaded struct {
		Data struct {
			RouteID          string              `json:"route_id"`
			Filename         string              `json:"filename"`
			Coordinates      []domain.Coordinate `json:"coordinates"`
			ElevationProfile []struct {
				Distance  float64 `json:"distance"`
				Elevation float64 `json:"elevation"`
			} `json:"elevation_profile"`
			TotalDistance float64 `json:"total_distance"`
		} `json:"data"`
	}
	decodeBody(t, resp, &uploaded)

	assert.NotEmpty(t, uploaded.Data.RouteID)
	assert.Equal(t, "ride.gpx", uploaded.Data.Filename)
	assert.Len(t, uploaded.Data.Coordinates, 3)
	require.Len(t, uploaded.Data.ElevationProfile, 3)
	assert.Equal(t, 30.0, uploaded.Data.ElevationProfile[2].Elevation)
	assert.InDelta(t, 1.68, uploaded.Data.TotalDistance, 0.01)

	resp, err = env.app.Test(httptest.NewRequest(http.MethodGet, "/routes/"+uploaded.Data.RouteID, nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	resp, err = env.app.Test(httptest.NewRequest(http.MethodGet, "/routes/unknown", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)
}

func TestRouteHandler_UploadRejections(t *testing.T) {
	tests := []struct {
		name       string
		filename   string
		content    string
		wantStatus int
		wantCode   string
	}{
		{name: "wrong type", filename: "ride.txt", content: testGPX, wantStatus: 400, wantCode: "INVALID_FILE_TYPE"},
		{name: "empty", filename: "ride.gpx", content: "", wantStatus: 400, wantCode: "EMPTY_FILE"},
		{name: "no track", filename: "ride.gpx", content: `<gpx version="1.1" xmlns="http://www.topografix.com/GPX/1/1"></gpx>`, wantStatus: 400, wantCode: "INVALID_GPX"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newTestEnv(t)

			resp, err := env.app.Test(uploadRequest(t, tt.filename, tt.content))
			require.NoError(t, err)
			assert.Equal(t, tt.wantStatus, resp.StatusCode)

			var body struct {
				Error struct {
					Code string `json:"code"`
				} `json:"error"`
			}
			decodeBody(t, resp, &body)
			assert.Equal(t, tt.wantCode, body.Error.Code)
			assert.Equal(t, 0, env.routeRepo.Count(context.Background()))
		})
	}
}

func TestPOIStreamHandler_StreamsEventsInOrder(t *testing.T) {
	env := newTestEnv(t)
	route := storeRoute(t, env)

	lat, lon := 41.001, 2.01
	env.overpass.On("Query", mock.Anything, mock.Anything).Return(&domain.OverpassResponse{
		Elements: []domain.OverpassElement{{Type: "node", ID: 1, Lat: &lat, Lon: &lon, Tags: map[string]string{"name": "Fuel"}}},
	}, nil).Once()

	req := httptest.NewRequest(http.MethodGet, "/routes/"+route.ID()+"/pois?poi_types=gas_stations&max_distance_km=0.5", nil)
	resp, err := env.app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Equal(t, "text/event-stream", resp.Header.Get("Content-Type"))

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	frames := sseFrames(t, string(body))

	require.Len(t, frames, 3)
	assert.Equal(t, "progress", frames[0]["type"])
	assert.Equal(t, "gas_stations", frames[0]["poi_type"])
	assert.Equal(t, "Gas Stations", frames[0]["poi_type_display"])
	assert.Equal(t, "poi_batch", frames[1]["type"])
	assert.Equal(t, "complete", frames[2]["type"])

	table := frames[2]["table"].([]interface{})
	require.Len(t, table, 1)
	row := table[0].(map[string]interface{})
	assert.Equal(t, "Fuel", row["name"])
	assert.Equal(t, "111m", row["deviation"])
	assert.Equal(t, "Not available", row["opening_hours"])
}

func TestPOIStreamHandler_CommaSeparatedTypesAndSettings(t *testing.T) {
	env := newTestEnv(t)
	route := storeRoute(t, env)

	env.overpass.On("Query", mock.Anything, mock.Anything).Return(&domain.OverpassResponse{}, nil)

	req := httptest.NewRequest(http.MethodGet, "/routes/"+route.ID()+
		"/pois?poi_types=bakeries,public_toilets&poi_types=sport_areas&poi_settings_json=not-json", nil)
	resp, err := env.app.Test(req, -1)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	body, _ := io.ReadAll(resp.Body)
	frames := sseFrames(t, string(body))

	require.Len(t, frames, 7)
	assert.EqualValues(t, 3, frames[0]["total"])
	env.overpass.AssertNumberOfCalls(t, "Query", 3)
}

func TestPOIStreamHandler_RouteNotFound(t *testing.T) {
	env := newTestEnv(t)

	resp, err := env.app.Test(httptest.NewRequest(http.MethodGet, "/routes/nope/pois", nil))
	require.NoError(t, err)

	body, _ := io.ReadAll(resp.Body)
	assert.Equal(t, "data: {\"error\":\"Route not found\"}\n\n", string(body))
	env.overpass.AssertNotCalled(t, "Query", mock.Anything, mock.Anything)
}

func TestPOIStreamHandler_RejectsBadParameters(t *testing.T) {
	tests := []struct {
		name     string
		query    string
		wantCode string
	}{
		{name: "unknown category", query: "poi_types=castles", wantCode: "UNKNOWN_CATEGORY"},
		{name: "unknown settings category", query: "poi_settings_json=" + url.QueryEscape(`{"castles":{"max_deviation_km":2}}`), wantCode: "UNKNOWN_CATEGORY"},
		{name: "negative distance", query: "max_distance_km=-1", wantCode: "INVALID_REQUEST"},
		{name: "not a number", query: "deduplication_radius_km=abc", wantCode: "INVALID_REQUEST"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newTestEnv(t)
			route := storeRoute(t, env)

			req := httptest.NewRequest(http.MethodGet, "/routes/"+route.ID()+"/pois?"+tt.query, nil)
			resp, err := env.app.Test(req)
			require.NoError(t, err)
			assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)

			var body struct {
				Error struct {
					Code string `json:"code"`
				} `json:"error"`
			}
			decodeBody(t, resp, &body)
			assert.Equal(t, tt.wantCode, body.Error.Code)
			env.overpass.AssertNotCalled(t, "Query", mock.Anything, mock.Anything)
		})
	}
}

func TestExportHandler_Export(t *testing.T) {
	tests := []struct {
		format      string
		contentType string
		filename    string
	}{
		{format: "gpx", contentType: "application/gpx+xml", filename: "test_with_pois.gpx"},
		{format: "kml", contentType: "application/vnd.google-earth.kml+xml", filename: "test_with_pois.kml"},
		{format: "geojson", contentType: "application/geo+json", filename: "test_with_pois.geojson"},
	}

	for _, tt := range tests {
		t.Run(tt.format, func(t *testing.T) {
			env := newTestEnv(t)
			route := storeRoute(t, env)

			payload := `[{"lat":41.001,"lon":2.01,"name":"Fuel","poi_type":"gas_stations","distance":"0.8 km","deviation":"111m"}]`
			req := httptest.NewRequest(http.MethodPost, "/routes/"+route.ID()+"/export/"+tt.format, strings.NewReader(payload))
			req.Header.Set("Content-Type", "application/json")

			resp, err := env.app.Test(req)
			require.NoError(t, err)
			require.Equal(t, fiber.StatusOK, resp.StatusCode)
			assert.Equal(t, tt.contentType, resp.Header.Get("Content-Type"))
			assert.Equal(t, `attachment; filename="`+tt.filename+`"`, resp.Header.Get("Content-Disposition"))

			body, _ := io.ReadAll(resp.Body)
			assert.Contains(t, string(body), "Fuel")
		})
	}
}

func TestExportHandler_UnknownFormat(t *testing.T) {
	env := newTestEnv(t)
	route := storeRoute(t, env)

	req := httptest.NewRequest(http.MethodPost, "/routes/"+route.ID()+"/export/shp", strings.NewReader(`[]`))
	req.Header.Set("Content-Type", "application/json")

	resp, err := env.app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
}

func TestCategoryHandler_ListCategories(t *testing.T) {
	env := newTestEnv(t)

	resp, err := env.app.Test(httptest.NewRequest(http.MethodGet, "/categories", nil))
	require.NoError(t, err)

	var body struct {
		Data []struct {
			Code string `json:"code"`
		} `json:"data"`
		Meta struct {
			Total int `json:"total"`
		} `json:"meta"`
	}
	decodeBody(t, resp, &body)
	assert.Len(t, body.Data, len(domain.CategoryCodes()))
	assert.Equal(t, len(domain.CategoryCodes()), body.Meta.Total)
}

func TestErrorMessage(t *testing.T) {
	assert.Equal(t, msgTimeout, errorMessage(overpass.ErrTimeout))
	assert.Equal(t, msgUnavailable, errorMessage(overpass.ErrRateLimited))
	assert.Equal(t, "Failed to retrieve POIs: "+assert.AnError.Error(), errorMessage(assert.AnError))
	assert.Equal(t, "", errorMessage(nil))
}

package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"regexp"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"stressbox/internal/domain"
	"stressbox/internal/middleware"
	"stressbox/internal/service"
	"stressbox/internal/service/mocks"
	"stressbox/internal/store"
	"stressbox/pkg/logger"
)

// statsService returns a mock whose GetStats answers once with stats and err
func statsService(t *testing.T, stats *domain.Stats, err error) *mocks.MockVisitorService {
	svc := &mocks.MockVisitorService{}
	svc.On("GetStats", mock.Anything).Return(stats, err).Once()
	t.Cleanup(func() { svc.AssertExpectations(t) })
	return svc
}

// idleService returns a mock that fails the test if it is called
func idleService(t *testing.T) *mocks.MockVisitorService {
	svc := &mocks.MockVisitorService{}
	t.Cleanup(func() { svc.AssertNotCalled(t, "GetStats", mock.Anything) })
	return svc
}

type errorBody struct {
	Success bool `json:"success"`
	Error   struct {
		Type      string `json:"type"`
		Message   string `json:"message"`
		RequestID string `json:"request_id"`
	} `json:"error"`
}

func newAPIRouter(svc service.VisitorService, rankingLimit int) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID())
	r.Route("/api", NewVisitorHandler(svc, logger.NewNop(), rankingLimit).RegisterRoutes)
	r.NotFound(NotFound(logger.NewNop()))
	return r
}

func serve(h http.Handler, req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func sampleStats() *domain.Stats {
	return &domain.Stats{
		Visitors: 3,
		Visits:   9,
		IPs: []domain.IPStat{
			{IP: "1.1.1.1", Count: 2, Location: "Unknown"},
			{IP: "2.2.2.2", Count: 5, Location: "Osaka, JP"},
			{IP: "3.3.3.3", Count: 2, Location: "TH"},
		},
	}
}

func TestVisitorHandler_GetStats(t *testing.T) {
	r := newAPIRouter(statsService(t, sampleStats(), nil), 10)

	rec := serve(r, httptest.NewRequest(http.MethodGet, "/api/stats", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	assert.Equal(t, "no-store", rec.Header().Get("Cache-Control"))

	var stats domain.Stats
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &stats))
	assert.Equal(t, *sampleStats(), stats)
}

func TestVisitorHandler_GetStats_Empty(t *testing.T) {
	r := newAPIRouter(statsService(t, domain.EmptyStats(), nil), 10)

	rec := serve(r, httptest.NewRequest(http.MethodGet, "/api/stats", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"visitors":0,"visits":0,"ips":[]}`, rec.Body.String())
}

func TestVisitorHandler_GetStats_Error(t *testing.T) {
	r := newAPIRouter(statsService(t, nil, errors.New("redis down")), 10)

	rec := serve(r, httptest.NewRequest(http.MethodGet, "/api/stats", nil))
	require.Equal(t, http.StatusInternalServerError, rec.Code)

	var body errorBody
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.False(t, body.Success)
	assert.Equal(t, "internal", body.Error.Type)
	assert.NotContains(t, rec.Body.String(), "redis down")
	assert.Equal(t, rec.Header().Get(middleware.RequestIDHeader), body.Error.RequestID)
}

func TestVisitorHandler_GetRanking(t *testing.T) {
	r := newAPIRouter(statsService(t, sampleStats(), nil), 2)

	rec := serve(r, httptest.NewRequest(http.MethodGet, "/api/ranking", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var stats domain.Stats
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &stats))
	assert.Equal(t, int64(3), stats.Visitors)
	assert.Equal(t, int64(9), stats.Visits)
	assert.Equal(t, []domain.IPStat{
		{IP: "2.2.2.2", Count: 5, Location: "Osaka, JP"},
		{IP: "1.1.1.1", Count: 2, Location: "Unknown"},
	}, stats.IPs)
}

func TestVisitorHandler_GetRanking_ZeroLimitListsAll(t *testing.T) {
	r := newAPIRouter(statsService(t, sampleStats(), nil), 0)

	rec := serve(r, httptest.NewRequest(http.MethodGet, "/api/ranking", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var stats domain.Stats
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &stats))
	assert.Equal(t, []domain.IPStat{
		{IP: "2.2.2.2", Count: 5, Location: "Osaka, JP"},
		{IP: "1.1.1.1", Count: 2, Location: "Unknown"},
		{IP: "3.3.3.3", Count: 2, Location: "TH"},
	}, stats.IPs)
}

func TestVisitorHandler_GetRanking_Error(t *testing.T) {
	r := newAPIRouter(statsService(t, nil, errors.New("boom")), 2)

	rec := serve(r, httptest.NewRequest(http.MethodGet, "/api/ranking", nil))
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestVisitorHandler_GetCurrentVisitor(t *testing.T) {
	r := newAPIRouter(idleService(t), 10)

	req := httptest.NewRequest(http.MethodGet, "/api/visitor", nil)
	req.Header.Set("CF-Connecting-IP", "1.2.3.4")
	req.Header.Set("User-Agent", "Mozilla/5.0")
	req.Header.Set("CF-IPCountry", "TH")
	req.Header.Set("CF-IPCity", "Bangkok")

	rec := serve(r, req)
	require.Equal(t, http.StatusOK, rec.Code)

	var info domain.CurrentVisitor
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &info))
	assert.Equal(t, "1.2.3.4", info.IP)
	assert.Equal(t, service.ComputeFingerprint("1.2.3.4", "Mozilla/5.0"), info.Fingerprint)
	assert.Equal(t, "Bangkok, TH", info.Location)
	require.NotNil(t, info.GeoDetails)
	assert.Equal(t, "TH", info.GeoDetails.Country)
}

func TestVisitorHandler_GetCurrentVisitor_NoGeo(t *testing.T) {
	r := newAPIRouter(idleService(t), 10)

	req := httptest.NewRequest(http.MethodGet, "/api/visitor", nil)
	req.RemoteAddr = "192.0.2.1:5555"
	rec := serve(r, req)
	require.Equal(t, http.StatusOK, rec.Code)

	assert.NotContains(t, rec.Body.String(), "geoDetails")
	var info domain.CurrentVisitor
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &info))
	assert.Equal(t, "192.0.2.1", info.IP)
	assert.Equal(t, domain.UnknownLocation, info.Location)
}

func TestNotFound(t *testing.T) {
	r := newAPIRouter(idleService(t), 10)

	rec := serve(r, httptest.NewRequest(http.MethodGet, "/nope", nil))
	require.Equal(t, http.StatusNotFound, rec.Code)

	var body errorBody
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.False(t, body.Success)
	assert.Equal(t, "not_found", body.Error.Type)
	assert.Equal(t, "Endpoint not found", body.Error.Message)
}

type pingFunc func(ctx context.Context) error

func (f pingFunc) Ping(ctx context.Context) error { return f(ctx) }

func TestHealthHandler_Check(t *testing.T) {
	tests := []struct {
		name           string
		pinger         Pinger
		expectedStatus int
		expectedHealth string
	}{
		{
			name:           "store reachable",
			pinger:         store.NewMemoryStore(),
			expectedStatus: http.StatusOK,
			expectedHealth: "healthy",
		},
		{
			name:           "store unreachable",
			pinger:         pingFunc(func(context.Context) error { return errors.New("connection refused") }),
			expectedStatus: http.StatusServiceUnavailable,
			expectedHealth: "unhealthy",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := NewHealthHandler(tt.pinger, "memory", "1.2.3", logger.NewNop())

			rec := serve(http.HandlerFunc(h.Check), httptest.NewRequest(http.MethodGet, "/health", nil))
			require.Equal(t, tt.expectedStatus, rec.Code)

			var resp HealthResponse
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
			assert.Equal(t, tt.expectedHealth, resp.Status)
			assert.Equal(t, "stressbox", resp.Service)
			assert.Equal(t, "memory", resp.Store)
			assert.Equal(t, "1.2.3", resp.Version)
			assert.False(t, resp.Timestamp.IsZero())
			assert.NotContains(t, rec.Body.String(), "connection refused")
		})
	}
}

func TestPageHandler_ServesEveryPage(t *testing.T) {
	h, err := NewPageHandler(logger.NewNop())
	require.NoError(t, err)

	r := chi.NewRouter()
	h.RegisterRoutes(r)

	for _, p := range Pages {
		t.Run(p.Name, func(t *testing.T) {
			rec := serve(r, httptest.NewRequest(http.MethodGet, p.Path, nil))
			require.Equal(t, http.StatusOK, rec.Code)
			assert.Equal(t, "text/html;charset=UTF-8", rec.Header().Get("Content-Type"))
			assert.Contains(t, rec.Body.String(), "<title>"+p.Title+"</title>")
		})
	}
}

func TestPageHandler_Routes(t *testing.T) {
	paths := make([]string, 0, len(Pages))
	for _, p := range Pages {
		paths = append(paths, p.Path)
	}
	assert.Equal(t, []string{
		"/", "/slime", "/bounce", "/fountain", "/kaleidoscope",
		"/breathing", "/cube3", "/cube4", "/cube5", "/ranking",
	}, paths)
}

func TestPageHandler_CubeSize(t *testing.T) {
	h, err := NewPageHandler(logger.NewNop())
	require.NoError(t, err)

	for name, size := range map[string]string{"cube3": "3", "cube4": "4", "cube5": "5"} {
		rec := serve(h.Serve(name), httptest.NewRequest(http.MethodGet, "/"+name, nil))
		assert.Regexp(t, regexp.MustCompile(`var N = \s*`+size+`\s*;`), rec.Body.String(), name)
	}
}

func TestPageHandler_HomeListsToys(t *testing.T) {
	h, err := NewPageHandler(logger.NewNop())
	require.NoError(t, err)

	rec := serve(h.Serve("index"), httptest.NewRequest(http.MethodGet, "/", nil))
	body := rec.Body.String()
	for _, p := range Pages {
		if p.Card {
			assert.Contains(t, body, `href="`+p.Path+`"`, p.Name)
		}
	}
}

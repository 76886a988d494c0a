package httpapi

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/territory_assign/backend/internal/config"
	"github.com/territory_assign/backend/internal/http/handlers"
	"github.com/territory_assign/backend/internal/http/middleware"
	"github.com/territory_assign/backend/internal/memstore"
	"github.com/territory_assign/backend/internal/service"
)

func newRouter(t *testing.T, adminKey string) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	store := memstore.New()
	logger := zerolog.Nop()
	validate := validator.New()
	ruleSvc := service.NewRuleService(store, logger)
	h := &handlers.Handler{
		Store:       store,
		Territories: service.NewTerritoryService(store, validate, logger),
		Rules:       ruleSvc,
		Engine:      service.NewEngine(store, ruleSvc, logger),
		Stats:       service.NewStatsService(store, ruleSvc, store, nil, logger),
		Logs:        service.NewLogService(store, 50, 500, logger),
		Validator:   validate,
		Logger:      logger,
	}
	cfg := config.Config{AdminKey: adminKey, CORSAllowed: "*", RequestTimeout: time.Second}
	return Router(cfg, h, logger)
}

func TestAdminRoutesRequireKey(t *testing.T) {
	r := newRouter(t, "secret")
	body := `{"name":"Metro","type":"regional"}`

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/territories", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)
	require.Equal(t, http.StatusUnauthorized, w.Code)

	w = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodPost, "/api/territories", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(middleware.AdminKeyHeader, "secret")
	r.ServeHTTP(w, req)
	require.Equal(t, http.StatusCreated, w.Code)

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/territories", nil))
	require.Equal(t, http.StatusOK, w.Code)
}

func TestRequestIDIsEchoed(t *testing.T) {
	r := newRouter(t, "")

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	req.Header.Set(middleware.RequestIDHeader, "req-123")
	r.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, "req-123", w.Header().Get(middleware.RequestIDHeader))

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	require.NotEmpty(t, w.Header().Get(middleware.RequestIDHeader))
}

func TestMetricsEndpoint(t *testing.T) {
	r := newRouter(t, "")

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/rules", nil))
	require.Equal(t, http.StatusOK, w.Code)

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, w.Code)
	require.Contains(t, w.Body.String(), "http_requests_total")
}

func TestAssignRouteRequiresKey(t *testing.T) {
	r := newRouter(t, "secret")
	body := `{"client_id":"c1","client_name":"Client One"}`

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/assignments", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)
	require.Equal(t, http.StatusUnauthorized, w.Code)

	w = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodPost, "/api/assignments", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(middleware.AdminKeyHeader, "secret")
	r.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/assignment-logs", nil))
	require.Equal(t, http.StatusOK, w.Code)
	require.Contains(t, w.Body.String(), `"client_id":"c1"`)
}

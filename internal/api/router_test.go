package api

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/magicstocks/calendar/internal/api/handlers"
	"github.com/magicstocks/calendar/internal/artifact"
	"github.com/magicstocks/calendar/internal/pipeline"
	"github.com/magicstocks/calendar/internal/seasonal"
	"github.com/magicstocks/calendar/pkg/config"
	"github.com/magicstocks/calendar/pkg/logger"
)

type noopTrainer struct{}

func (noopTrainer) Train(ctx context.Context, _ []string) (*seasonal.TrainResult, error) {
	return &seasonal.TrainResult{Pooled: map[int]seasonal.DayStats{}}, nil
}

type noopUniverse struct{}

func (noopUniverse) EquitySymbols(_ context.Context, _ int) []string { return nil }
func (noopUniverse) CommoditySymbols() []string                      { return nil }

func newTestRouter(t *testing.T, metricsEnabled bool) http.Handler {
	t.Helper()

	log := logger.New(&config.Config{Env: "development", LogLevel: "error", LogFormat: "json"})
	store := artifact.NewStore(t.TempDir(), "magic_calendar.json")
	cal := seasonal.Synthesize(seasonal.NewHeuristicAverager(nil), nil, time.Now().UTC())
	require.NoError(t, store.Save(cal))

	runner := pipeline.NewRunner(noopUniverse{}, noopTrainer{}, store, nil, nil, log, time.Minute, 10)
	return NewRouter(handlers.NewCalendarHandler(store, log), handlers.NewOpsHandler(runner, log), metricsEnabled, log)
}

func TestRouterHealth(t *testing.T) {
	router := newTestRouter(t, false)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "ok")
}

func TestRouterCalendarRoutes(t *testing.T) {
	router := newTestRouter(t, false)

	for _, path := range []string{"/api/calendar/historical", "/api/signals/today"} {
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
		assert.Equal(t, http.StatusOK, rec.Code, path)
	}
}

func TestRouterMetricsToggle(t *testing.T) {
	withMetrics := newTestRouter(t, true)
	rec := httptest.NewRecorder()
	withMetrics.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusOK, rec.Code)

	withoutMetrics := newTestRouter(t, false)
	rec = httptest.NewRecorder()
	withoutMetrics.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestRouterMethodNotAllowed(t *testing.T) {
	router := newTestRouter(t, false)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/ops/retrain", nil))
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

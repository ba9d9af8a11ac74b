package metrics_test

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/central-university-dev/go-hhh-bot/internal/common/metrics"
)

func TestMetricsServer_Health(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	healthy := metrics.NewMetricsServer(0, logger, map[string]metrics.HealthCheck{
		"state": func(context.Context) error { return nil },
	})

	rec := httptest.NewRecorder()
	healthy.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "OK", rec.Body.String())

	broken := metrics.NewMetricsServer(0, logger, map[string]metrics.HealthCheck{
		"state": func(context.Context) error { return assert.AnError },
	})

	rec = httptest.NewRecorder()
	broken.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Contains(t, rec.Body.String(), "state")
}

func TestMetricsServer_ExposesMetrics(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	server := metrics.NewMetricsServer(0, logger, nil)

	metrics.RecordEvent("test_kind")

	rec := httptest.NewRecorder()
	server.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "hhh_bot_events_total")
}

package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apierrors "egxcli/internal/errors"
	"egxcli/internal/services"
)

type failingPinger struct{}

func (failingPinger) Get(context.Context, string) (*services.Snapshot, bool, error) {
	return nil, false, nil
}
func (failingPinger) Set(context.Context, string, *services.Snapshot) error { return nil }
func (failingPinger) Ping(context.Context) error                          { return errors.New("connection refused") }
func (failingPinger) Name() string                                        { return "redis" }
func (failingPinger) Close() error                                        { return nil }

func TestHealthHandler(t *testing.T) {
	svc := services.NewHealthService("1.0.0", "", nil, nil, testLogger())
	r := chi.NewRouter()
	r.Mount("/health", NewHealthHandler(svc, testLogger()).Routes())

	tests := []struct {
		path   string
		status string
	}{
		{"/health", services.StatusOK},
		{"/health/ready", services.StatusReady},
		{"/health/live", services.StatusAlive},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			w := httptest.NewRecorder()
			r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, tt.path, nil))
			require.Equal(t, http.StatusOK, w.Code)

			var status services.HealthStatus
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &status))
			assert.Equal(t, tt.status, status.Status)
			assert.Equal(t, "1.0.0", status.Version)
		})
	}
}

func TestHealthHandler_NotReady(t *testing.T) {
	svc := services.NewHealthService("1.0.0", "", nil, failingPinger{}, testLogger())
	h := NewHealthHandler(svc, testLogger())

	w := httptest.NewRecorder()
	h.ReadinessCheck(w, httptest.NewRequest(http.MethodGet, "/health/ready", nil))
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.Contains(t, w.Body.String(), "connection refused")
}

func TestMetricsHandler(t *testing.T) {
	errorHandler := apierrors.NewErrorHandler(testLogger(), false)

	w := httptest.NewRecorder()
	NewMetricsHandler(nil, errorHandler).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)

	exporter := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("# HELP up\n"))
	})
	w = httptest.NewRecorder()
	NewMetricsHandler(exporter, errorHandler).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "# HELP up")
}

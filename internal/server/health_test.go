package server

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func serve(t *testing.T, handler http.Handler, path string) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
	return rec
}

func TestLivenessHandler(t *testing.T) {
	sc := newTestServerContext(t, WithVersion("1.0.0"))
	h := NewHealthChecker(sc)

	rec := serve(t, h.LivenessHandler(), "/healthz")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	var resp HealthResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "ok", resp.Status)
	assert.Equal(t, "1.0.0", resp.Version)
}

func TestReadinessHandler(t *testing.T) {
	tests := []struct {
		name           string
		setup          func(t *testing.T) *HealthChecker
		expectedStatus int
		expectedChecks map[string]string
	}{
		{
			name: "ready with clusters",
			setup: func(t *testing.T) *HealthChecker {
				return NewHealthChecker(newTestServerContext(t))
			},
			expectedStatus: http.StatusOK,
			expectedChecks: map[string]string{"ready": "ok", "shutdown": "ok", "clusters": "2"},
		},
		{
			name: "marked not ready",
			setup: func(t *testing.T) *HealthChecker {
				h := NewHealthChecker(newTestServerContext(t))
				h.SetReady(false)
				return h
			},
			expectedStatus: http.StatusServiceUnavailable,
			expectedChecks: map[string]string{"ready": "not ready", "shutdown": "ok", "clusters": "2"},
		},
		{
			name: "shutting down",
			setup: func(t *testing.T) *HealthChecker {
				sc := newTestServerContext(t)
				require.NoError(t, sc.Shutdown())
				return NewHealthChecker(sc)
			},
			expectedStatus: http.StatusServiceUnavailable,
			expectedChecks: map[string]string{"ready": "ok", "shutdown": "shutting down", "clusters": "2"},
		},
		{
			name: "locator failing",
			setup: func(t *testing.T) *HealthChecker {
				return NewHealthChecker(newTestServerContext(t, WithLocator(failingLocator{})))
			},
			expectedStatus: http.StatusServiceUnavailable,
			expectedChecks: map[string]string{"ready": "ok", "shutdown": "ok", "clusters": "unavailable"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := tt.setup(t)
			rec := serve(t, h.ReadinessHandler(), "/readyz")
			assert.Equal(t, tt.expectedStatus, rec.Code)

			var resp HealthResponse
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
			assert.Equal(t, tt.expectedChecks, resp.Checks)
		})
	}
}

func TestDetailedHealthHandler(t *testing.T) {
	sc := newTestServerContext(t, WithInstrumentationProvider(createTestProvider(t)))
	h := NewHealthChecker(sc)

	rec := serve(t, h.DetailedHealthHandler(), "/healthz/detailed")
	assert.Equal(t, http.StatusOK, rec.Code)

	var resp DetailedHealthResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "ok", resp.Status)
	require.NotNil(t, resp.Clusters)
	assert.Equal(t, 2, resp.Clusters.Configured)
	assert.Equal(t, []string{"prod", "dev"}, resp.Clusters.Names)
	require.NotNil(t, resp.Instrumentation)
	assert.True(t, resp.Instrumentation.Enabled)
}

func TestRegisterHealthEndpoints(t *testing.T) {
	mux := http.NewServeMux()
	NewHealthChecker(newTestServerContext(t)).RegisterHealthEndpoints(mux)

	for _, path := range []string{"/healthz", "/readyz", "/healthz/detailed"} {
		t.Run(path, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, path, nil).WithContext(context.Background())
			rec := httptest.NewRecorder()
			mux.ServeHTTP(rec, req)
			assert.Equal(t, http.StatusOK, rec.Code)
		})
	}
}

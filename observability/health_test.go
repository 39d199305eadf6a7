package observability

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func staticCheck(name string, status HealthStatus) HealthCheck {
	return HealthCheck{
		Name: name,
		Check: func(context.Context) HealthCheckResult {
			return HealthCheckResult{Status: status}
		},
	}
}

func TestHealthChecker_Check(t *testing.T) {
	hc := NewHealthChecker()
	hc.Register(staticCheck("imports", HealthStatusHealthy))
	hc.Register(staticCheck("watcher", HealthStatusDegraded))

	results := hc.Check(context.Background())
	require.Len(t, results, 2)
	assert.Equal(t, HealthStatusDegraded, results["watcher"].Status)
	assert.Equal(t, HealthStatusDegraded, OverallStatus(results))

	hc.Register(staticCheck("watcher", HealthStatusUnhealthy))
	assert.Equal(t, HealthStatusUnhealthy, OverallStatus(hc.Check(context.Background())))

	hc.Unregister("watcher")
	assert.Equal(t, HealthStatusHealthy, OverallStatus(hc.Check(context.Background())))
}

func TestHealthChecker_Handler(t *testing.T) {
	hc := NewHealthChecker()
	hc.Register(HealthCheck{
		Name: "imports",
		Check: func(context.Context) HealthCheckResult {
			return HealthCheckResult{Status: HealthStatusUnhealthy, Message: "import cycle"}
		},
	})

	w := httptest.NewRecorder()
	hc.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.Equal(t, "application/json", w.Header().Get("Content-Type"))

	var body struct {
		Status HealthStatus                 `json:"status"`
		Checks map[string]HealthCheckResult `json:"checks"`
	}
	require.NoError(t, json.NewDecoder(w.Body).Decode(&body))
	assert.Equal(t, HealthStatusUnhealthy, body.Status)
	assert.Equal(t, "import cycle", body.Checks["imports"].Message)
}

func TestHealthChecker_Empty(t *testing.T) {
	w := httptest.NewRecorder()
	NewHealthChecker().Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, w.Code)
}

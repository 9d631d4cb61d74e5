package httpapi

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cascade-ridge/skytrack/internal/host/mirror"
	"github.com/cascade-ridge/skytrack/internal/host/tracker"
	"github.com/cascade-ridge/skytrack/internal/metrics"
	"github.com/cascade-ridge/skytrack/pkg/telescope"
)

type fakeTracking struct{ info tracker.Info }

func (f fakeTracking) GetTrackingInfo() tracker.Info { return f.info }

func TestHealthzReturnsOK(t *testing.T) {
	metrics.Init(false)
	r := NewRouter(mirror.New(), nil)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok", rec.Body.String())
}

func TestStatusReportsSnapshotAndTrackingInfo(t *testing.T) {
	metrics.Init(false)
	state := mirror.New()
	state.UpdateFromController(telescope.Snapshot{CurrentAltDeg: 10, CurrentAzDeg: 20})

	tracking := fakeTracking{info: tracker.Info{Tracking: true, Target: "vega"}}
	r := NewRouter(state, tracking)

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/status", nil))
	assert.Equal(t, http.StatusOK, rec.Code)

	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.NotNil(t, body["snapshot"])
	assert.Equal(t, "vega", body["tracking"].(map[string]any)["target"])
}

func TestStatusOmitsSnapshotBeforeFirstUpdate(t *testing.T) {
	metrics.Init(false)
	r := NewRouter(mirror.New(), nil)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/status", nil))

	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Nil(t, body["snapshot"])
	assert.Nil(t, body["tracking"])
}

func TestMetricsEndpointServesPrometheusFormat(t *testing.T) {
	metrics.Init(true)
	r := NewRouter(mirror.New(), nil)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
}

// Package httpapi serves the host's debug HTTP endpoints: a liveness
// probe, the Prometheus metrics page, and a JSON status snapshot.
package httpapi

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/cascade-ridge/skytrack/internal/host/mirror"
	"github.com/cascade-ridge/skytrack/internal/host/tracker"
	"github.com/cascade-ridge/skytrack/internal/logger"
	"github.com/cascade-ridge/skytrack/internal/metrics"
	"github.com/cascade-ridge/skytrack/pkg/telescope"
)

// TrackingInfoProvider supplies the current tracking status for /status.
type TrackingInfoProvider interface {
	GetTrackingInfo() tracker.Info
}

// NewRouter builds the chi router serving /healthz, /metrics, and /status.
func NewRouter(state *mirror.State, tracking TrackingInfoProvider) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(requestLogger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(10 * time.Second))

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	r.Handle("/metrics", metrics.Handler())

	r.Get("/status", func(w http.ResponseWriter, r *http.Request) {
		snap := state.Latest()
		resp := statusResponse{}
		if snap != nil {
			resp.Snapshot = snap
			// SecondsSinceUpdate is +Inf before the first snapshot, which
			// encoding/json cannot encode, so it is only filled in here.
			resp.SecondsSinceUpdate = state.SecondsSinceUpdate()
		}
		if tracking != nil {
			info := tracking.GetTrackingInfo()
			resp.Tracking = &info
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(resp)
	})

	return r
}

type statusResponse struct {
	Snapshot           *telescope.Snapshot `json:"snapshot,omitempty"`
	SecondsSinceUpdate float64             `json:"seconds_since_update"`
	Tracking           *tracker.Info       `json:"tracking,omitempty"`
}

func requestLogger(next http.Handler) http.Handler {
	log := logger.Named("httpapi")
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		requestID := middleware.GetReqID(r.Context())

		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		log.Debug("request completed",
			"request_id", requestID,
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"duration", time.Since(start).String(),
		)
	})
}

package handlers

import (
	"net/http"
	"time"

	"github.com/soundlink/conductor/internal/httpserver/deps"
)

type healthzResponse struct {
	Status        string  `json:"status"`
	UptimeSeconds float64 `json:"uptime_seconds"`
	Version       string  `json:"version,omitempty"`
	Commit        string  `json:"commit,omitempty"`
	BuildDate     string  `json:"build_date,omitempty"`
	GoVersion     string  `json:"go_version,omitempty"`
}

func Healthz(d deps.Deps) http.HandlerFunc {
	start := d.StartTime
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Cache-Control", "no-store")
		writeJSON(w, http.StatusOK, healthzResponse{
			Status:        "ok",
			Version:       d.Version,
			Commit:        d.Commit,
			BuildDate:     d.BuildDate,
			GoVersion:     d.GoVersion,
			UptimeSeconds: time.Since(start).Seconds(),
		})
	}
}

type readyzResponse struct {
	Status string `json:"status"`
}

// Readyz reports ready once at least one node link is CONNECTED.
func Readyz(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Cache-Control", "no-store")
		if d.Pool.AnyConnected() {
			writeJSON(w, http.StatusOK, readyzResponse{Status: "ready"})
			return
		}
		writeJSON(w, http.StatusServiceUnavailable, readyzResponse{Status: "no_connected_node"})
	}
}

// Nodes lists a stats snapshot of every pool member.
func Nodes(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, d.Pool.Stats())
	}
}

// SweepNodes triggers a manual health sweep.
func SweepNodes(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if d.HealthSweep == nil {
			writeJSON(w, http.StatusServiceUnavailable, errorResponse{Error: "health watcher disabled"})
			return
		}
		select {
		case d.HealthSweep <- struct{}{}:
		default:
			// a sweep is already pending
		}
		w.WriteHeader(http.StatusAccepted)
	}
}

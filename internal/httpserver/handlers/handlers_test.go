package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/soundlink/conductor/internal/catalog"
	"github.com/soundlink/conductor/internal/httpserver/deps"
	"github.com/soundlink/conductor/internal/logger"
	"github.com/soundlink/conductor/internal/node"
	"github.com/soundlink/conductor/internal/orchestrator"
	"github.com/soundlink/conductor/internal/track"
	"github.com/soundlink/conductor/internal/voice"
)

// newTestDeps wires a full dependency graph around one fake node. connected
// controls whether the link is brought up before the tests run.
func newTestDeps(t *testing.T, connected bool) deps.Deps {
	t.Helper()

	mux := http.NewServeMux()
	mux.HandleFunc("/version", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`"1.0"`))
	})
	mux.HandleFunc("/loadtracks", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"loadType": "SEARCH_RESULT", "playlistInfo": {}, "tracks": [
			{"track": "enc1", "info": {"identifier": "id1", "title": "one", "length": 1000}}
		]}`))
	})
	mux.HandleFunc("/decodetrack", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(track.Info{Identifier: "id1", Title: "decoded"})
	})
	mux.HandleFunc("/play", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})
	mux.HandleFunc("/stop", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)

	link := node.NewLink(
		node.Config{ID: "n1", Address: srv.URL},
		node.Options{ConnectAttempts: 1, RetryInterval: time.Millisecond, RequestTimeout: time.Second},
		logger.Nop(),
	)
	if connected {
		if err := link.Connect(context.Background()); err != nil {
			t.Fatalf("Connect() error = %v", err)
		}
	}

	pool, err := node.NewPool([]*node.Link{link}, 0)
	if err != nil {
		t.Fatalf("NewPool() error = %v", err)
	}
	sessions := voice.NewRegistry(pool, nil, logger.Nop())
	orch := orchestrator.New(pool, sessions, catalog.NewRegistry(), nil, logger.Nop())

	return deps.Deps{
		Logger:       logger.Nop(),
		StartTime:    time.Now(),
		Version:      "test",
		Orchestrator: orch,
		Pool:         pool,
	}
}

func TestHealthz(t *testing.T) {
	d := newTestDeps(t, false)

	rec := httptest.NewRecorder()
	Healthz(d)(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	var body struct {
		Status  string `json:"status"`
		Version string `json:"version"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if body.Status != "ok" || body.Version != "test" {
		t.Errorf("body = %+v", body)
	}
}

func TestReadyz(t *testing.T) {
	tests := []struct {
		name       string
		connected  bool
		wantStatus int
	}{
		{"node connected", true, http.StatusOK},
		{"no connected node", false, http.StatusServiceUnavailable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := newTestDeps(t, tt.connected)

			rec := httptest.NewRecorder()
			Readyz(d)(rec, httptest.NewRequest(http.MethodGet, "/readyz", nil))

			if rec.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d", rec.Code, tt.wantStatus)
			}
		})
	}
}

func TestSearchValidation(t *testing.T) {
	d := newTestDeps(t, true)

	tests := []struct {
		name       string
		body       string
		wantStatus int
	}{
		{"missing query", `{"source": "ytsearch"}`, http.StatusBadRequest},
		{"blank query", `{"query": "   "}`, http.StatusBadRequest},
		{"invalid json", `{`, http.StatusBadRequest},
		{"valid", `{"query": "hello"}`, http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodPost, "/search", strings.NewReader(tt.body))
			Search(d)(rec, req)

			if rec.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d", rec.Code, tt.wantStatus)
			}
		})
	}
}

func TestSearchNoAvailableNode(t *testing.T) {
	d := newTestDeps(t, false)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/search", strings.NewReader(`{"query": "hello"}`))
	Search(d)(rec, req)

	if rec.Code != http.StatusServiceUnavailable {
		t.Errorf("status = %d, want 503", rec.Code)
	}
}

func TestDecodeTrackRequiresToken(t *testing.T) {
	d := newTestDeps(t, true)

	rec := httptest.NewRecorder()
	DecodeTrack(d)(rec, httptest.NewRequest(http.MethodGet, "/decodetrack", nil))

	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
}

func TestDecodeTrack(t *testing.T) {
	d := newTestDeps(t, true)

	rec := httptest.NewRecorder()
	DecodeTrack(d)(rec, httptest.NewRequest(http.MethodGet, "/decodetrack?track=tok", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	var body struct {
		Track string `json:"track"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if body.Track != "tok" {
		t.Errorf("track = %q, want the original token", body.Track)
	}
}

func TestPlayViaRouter(t *testing.T) {
	d := newTestDeps(t, true)

	r := chi.NewRouter()
	r.Post("/sessions/{guildID}/play", Play(d))

	tests := []struct {
		name       string
		body       string
		wantStatus int
	}{
		{"missing track", `{}`, http.StatusBadRequest},
		{"valid", `{"track": "enc1", "channel_id": "c1"}`, http.StatusNoContent},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodPost, "/sessions/g1/play", strings.NewReader(tt.body))
			r.ServeHTTP(rec, req)

			if rec.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d", rec.Code, tt.wantStatus)
			}
		})
	}
}

func TestSessionLifecycleViaRouter(t *testing.T) {
	d := newTestDeps(t, true)

	r := chi.NewRouter()
	r.Post("/sessions/{guildID}/play", Play(d))
	r.Get("/sessions/{guildID}", GetSession(d))
	r.Delete("/sessions/{guildID}", LeaveSession(d))

	// No session yet.
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/sessions/g1", nil))
	if rec.Code != http.StatusNotFound {
		t.Fatalf("GET before play: status = %d, want 404", rec.Code)
	}

	// Playback creates one.
	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/sessions/g1/play",
		strings.NewReader(`{"track": "enc1"}`)))
	if rec.Code != http.StatusNoContent {
		t.Fatalf("play: status = %d, want 204", rec.Code)
	}

	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/sessions/g1", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("GET after play: status = %d, want 200", rec.Code)
	}
	var snap voice.Snapshot
	if err := json.NewDecoder(rec.Body).Decode(&snap); err != nil {
		t.Fatalf("decode snapshot: %v", err)
	}
	if snap.GuildID != "g1" || snap.Node != "n1" {
		t.Errorf("snapshot = %+v", snap)
	}

	// Leave destroys it.
	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodDelete, "/sessions/g1", nil))
	if rec.Code != http.StatusNoContent {
		t.Fatalf("DELETE: status = %d, want 204", rec.Code)
	}
	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/sessions/g1", nil))
	if rec.Code != http.StatusNotFound {
		t.Errorf("GET after delete: status = %d, want 404", rec.Code)
	}
}

func TestSignalEndpoint(t *testing.T) {
	d := newTestDeps(t, true)

	tests := []struct {
		name       string
		body       string
		wantStatus int
	}{
		{"unknown event type", `{"t": "MESSAGE_CREATE", "d": {}}`, http.StatusNoContent},
		{"malformed envelope", `{not json`, http.StatusInternalServerError},
		{"voice state for unknown guild", `{"t": "VOICE_STATE_UPDATE", "d": {"guild_id": "ghost", "session_id": "s"}}`, http.StatusNoContent},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodPost, "/signal", strings.NewReader(tt.body))
			Signal(d)(rec, req)

			if rec.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d", rec.Code, tt.wantStatus)
			}
		})
	}
}

func TestSweepNodes(t *testing.T) {
	d := newTestDeps(t, false)

	// Watcher disabled: no trigger channel wired.
	rec := httptest.NewRecorder()
	SweepNodes(d)(rec, httptest.NewRequest(http.MethodPost, "/nodes/sweep", nil))
	if rec.Code != http.StatusServiceUnavailable {
		t.Errorf("status = %d, want 503 when watcher is disabled", rec.Code)
	}

	d.HealthSweep = make(chan struct{}, 1)
	rec = httptest.NewRecorder()
	SweepNodes(d)(rec, httptest.NewRequest(http.MethodPost, "/nodes/sweep", nil))
	if rec.Code != http.StatusAccepted {
		t.Errorf("status = %d, want 202", rec.Code)
	}
	select {
	case <-d.HealthSweep:
	default:
		t.Error("no sweep request queued")
	}

	// A second request with a pending sweep does not block.
	d.HealthSweep <- struct{}{}
	rec = httptest.NewRecorder()
	SweepNodes(d)(rec, httptest.NewRequest(http.MethodPost, "/nodes/sweep", nil))
	if rec.Code != http.StatusAccepted {
		t.Errorf("status = %d, want 202", rec.Code)
	}
}

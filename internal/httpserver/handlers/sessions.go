package handlers

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/soundlink/conductor/internal/httpserver/deps"
	"github.com/soundlink/conductor/internal/logger"
)

type playRequest struct {
	Track     string `json:"track"`
	ChannelID string `json:"channel_id,omitempty"`
}

// Play submits a playback request for a guild, creating its voice session on
// first use.
func Play(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		guildID := chi.URLParam(r, "guildID")

		var req playRequest
		if !decodeBody(w, r, &req) {
			return
		}
		if strings.TrimSpace(req.Track) == "" {
			writeJSON(w, http.StatusBadRequest, errorResponse{Error: "track is required"})
			return
		}

		d.Logger.Info("play request", logger.String("guild", guildID))

		if err := d.Orchestrator.Play(r.Context(), guildID, req.ChannelID, req.Track); err != nil {
			writeError(w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

// GetSession returns the current snapshot of a guild's voice session.
func GetSession(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		guildID := chi.URLParam(r, "guildID")

		snap, ok := d.Orchestrator.SessionSnapshot(guildID)
		if !ok {
			writeJSON(w, http.StatusNotFound, errorResponse{Error: "no session for guild"})
			return
		}
		writeJSON(w, http.StatusOK, snap)
	}
}

// LeaveSession stops playback and destroys a guild's session.
func LeaveSession(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		guildID := chi.URLParam(r, "guildID")
		d.Orchestrator.Leave(r.Context(), guildID)
		w.WriteHeader(http.StatusNoContent)
	}
}

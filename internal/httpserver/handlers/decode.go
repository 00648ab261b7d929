package handlers

import (
	"net/http"
	"strings"

	"github.com/soundlink/conductor/internal/httpserver/deps"
)

// DecodeTrack expands one opaque track token via the best node.
func DecodeTrack(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		encoded := strings.TrimSpace(r.URL.Query().Get("track"))
		if encoded == "" {
			writeJSON(w, http.StatusBadRequest, errorResponse{Error: "track is required"})
			return
		}

		resolved, err := d.Orchestrator.DecodeTrack(r.Context(), encoded)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, resolved)
	}
}

type decodeTracksRequest struct {
	Tracks []string `json:"tracks"`
}

// DecodeTracks expands many track tokens in one call.
func DecodeTracks(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req decodeTracksRequest
		if !decodeBody(w, r, &req) {
			return
		}
		if len(req.Tracks) == 0 {
			writeJSON(w, http.StatusBadRequest, errorResponse{Error: "tracks is required"})
			return
		}

		resolved, err := d.Orchestrator.DecodeTracks(r.Context(), req.Tracks)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, resolved)
	}
}

package handlers

import (
	"io"
	"net/http"

	"github.com/soundlink/conductor/internal/httpserver/deps"
)

// Signal ingests one raw signaling envelope from the gateway bridge.
func Signal(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		raw, err := io.ReadAll(io.LimitReader(r.Body, 1<<20))
		if err != nil {
			writeJSON(w, http.StatusBadRequest, errorResponse{Error: "failed to read body"})
			return
		}

		if err := d.Orchestrator.HandleSignal(r.Context(), raw); err != nil {
			writeError(w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

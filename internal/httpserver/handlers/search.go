package handlers

import (
	"net/http"
	"strings"

	"github.com/soundlink/conductor/internal/httpserver/deps"
	"github.com/soundlink/conductor/internal/logger"
)

type searchRequest struct {
	Query  string `json:"query"`
	Source string `json:"source,omitempty"`
}

// Search resolves a query through the orchestrator: catalog collaborators
// first, then caches, then the generic load on the best node.
func Search(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req searchRequest
		if !decodeBody(w, r, &req) {
			return
		}

		req.Query = strings.TrimSpace(req.Query)
		if req.Query == "" {
			writeJSON(w, http.StatusBadRequest, errorResponse{Error: "query is required"})
			return
		}

		d.Logger.Info("search request",
			logger.String("query", req.Query),
			logger.String("source", req.Source))

		result, err := d.Orchestrator.Search(r.Context(), req.Query, req.Source)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, result)
	}
}

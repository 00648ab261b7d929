package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/soundlink/conductor/internal/node"
	"github.com/soundlink/conductor/internal/voice"
)

type errorResponse struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeError maps domain errors onto HTTP statuses: no connected node means
// the caller should retry later (503), an upstream node failure is a bad
// gateway (502), a violated session invariant is internal (500).
func writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError

	var remote *node.RemoteError
	var assertion *voice.AssertionError
	switch {
	case errors.Is(err, node.ErrNoAvailableNode):
		status = http.StatusServiceUnavailable
	case errors.Is(err, node.ErrNodeUnavailable):
		status = http.StatusServiceUnavailable
	case errors.As(err, &remote):
		status = http.StatusBadGateway
	case errors.As(err, &assertion):
		status = http.StatusInternalServerError
	}

	writeJSON(w, status, errorResponse{Error: err.Error()})
}

func decodeBody(w http.ResponseWriter, r *http.Request, v interface{}) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body"})
		return false
	}
	return true
}

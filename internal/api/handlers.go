package api

import (
	"encoding/json"
	"net/http"
)

// Handler methods for routerHandlers. Used by both the standalone router
// (for testing) and the full Server.

func (h *routerHandlers) handleGetStats(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, h.stats.Stats())
}

func writeJSON(w http.ResponseWriter, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(data)
}

package api

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"searoute/pkg/tracker"
)

// StatsHandler exposes usage counters.
type StatsHandler struct {
	tracker *tracker.Tracker
}

// NewStatsHandler creates a StatsHandler.
func NewStatsHandler(t *tracker.Tracker) *StatsHandler {
	return &StatsHandler{tracker: t}
}

func (h *StatsHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(h.tracker.Snapshot()); err != nil {
		slog.Error("Failed to encode stats response", "error", err)
	}
}

package api

import (
	"net/http"

	"github.com/alexivanou/weather-widget/internal/stats"
	"go.uber.org/zap"
)

// StatsHandler handles statistics requests
type StatsHandler struct {
	collector *stats.Collector
	logger    *zap.Logger
}

// NewStatsHandler creates a new stats handler
func NewStatsHandler(collector *stats.Collector, logger *zap.Logger) *StatsHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &StatsHandler{collector: collector, logger: logger}
}

// GetStats handles GET /api/v1/stats
func (h *StatsHandler) GetStats(w http.ResponseWriter, r *http.Request) {
	if h.collector == nil {
		writeError(w, "statistics are not available", http.StatusServiceUnavailable)
		return
	}

	s, err := h.collector.Collect(r.Context())
	if err != nil {
		h.logger.Error("Error collecting statistics", zap.Error(err))
		writeError(w, "failed to collect statistics", http.StatusInternalServerError)
		return
	}

	writeJSON(w, h.logger, s, http.StatusOK)
}

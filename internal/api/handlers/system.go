package handlers

import (
	"net/http"

	"github.com/ramonehamilton/commander-forge/internal/api/response"
	"github.com/ramonehamilton/commander-forge/internal/metrics"
)

// StatsSource provides the in-process metrics summary.
type StatsSource interface {
	Stats() *metrics.Stats
}

// SystemHandler handles system-related API requests.
type SystemHandler struct {
	stats   StatsSource
	version string
}

// NewSystemHandler creates a new SystemHandler.
func NewSystemHandler(stats StatsSource, version string) *SystemHandler {
	return &SystemHandler{stats: stats, version: version}
}

// GetStats returns recent generation and provider latencies.
func (h *SystemHandler) GetStats(w http.ResponseWriter, _ *http.Request) {
	response.Success(w, h.stats.Stats())
}

// GetVersion returns the application version.
func (h *SystemHandler) GetVersion(w http.ResponseWriter, _ *http.Request) {
	response.Success(w, map[string]string{
		"version": h.version,
		"service": "commander-forge-api",
	})
}

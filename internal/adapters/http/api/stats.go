package api

import (
	"context"
	"net/http"

	"github.com/pakafest/dashboard/internal/domain/aggregate"
	"github.com/pakafest/dashboard/internal/domain/derive"
)

// StatsDependencies defines the interface for aggregate reads.
type StatsDependencies interface {
	Stats(ctx context.Context) aggregate.View
	AgeRanges() derive.Ranges
	GetStats() map[string]interface{}
}

// StatsHandler handles aggregate statistics requests.
type StatsHandler struct {
	deps StatsDependencies
}

// NewStatsHandler creates a stats handler.
func NewStatsHandler(deps StatsDependencies) *StatsHandler {
	return &StatsHandler{deps: deps}
}

// statsResponse bundles the aggregate view with what the dropdowns and the
// footer need.
type statsResponse struct {
	aggregate.View
	AgeRanges derive.Ranges          `json:"age_ranges"`
	Service   map[string]interface{} `json:"service"`
}

// HandleGetStats handles GET /api/stats requests.
func (h *StatsHandler) HandleGetStats(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	writeJSON(w, http.StatusOK, statsResponse{
		View:      h.deps.Stats(r.Context()),
		AgeRanges: h.deps.AgeRanges(),
		Service:   h.deps.GetStats(),
	})
}

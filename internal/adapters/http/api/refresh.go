package api

import (
	"context"
	"fmt"
	"net/http"
)

// RefreshDependencies defines the interface for manual refresh triggers.
type RefreshDependencies interface {
	Refresh(ctx context.Context) error
}

// RefreshHandler handles manual refresh requests.
type RefreshHandler struct {
	deps RefreshDependencies
}

// NewRefreshHandler creates a refresh handler.
func NewRefreshHandler(deps RefreshDependencies) *RefreshHandler {
	return &RefreshHandler{deps: deps}
}

// refreshResponse acknowledges a completed refresh.
type refreshResponse struct {
	Status string `json:"status"`
}

// HandlePostRefresh handles POST /api/refresh requests. The refresh runs
// synchronously and is serialized with the scheduler; a failure leaves the
// previously served data in place, so the dashboard keeps rendering the last
// good view alongside the error message.
func (h *RefreshHandler) HandlePostRefresh(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.NotFound(w, r)
		return
	}
	if err := h.deps.Refresh(r.Context()); err != nil {
		writeError(w, http.StatusBadGateway, "refresh_failed", fmt.Errorf("%w: %w", ErrRefreshFailed, err))
		return
	}
	writeJSON(w, http.StatusOK, refreshResponse{Status: "ok"})
}

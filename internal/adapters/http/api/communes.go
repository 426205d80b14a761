package api

import (
	"context"
	"net/http"

	"github.com/pakafest/dashboard/internal/adapters/geo"
)

// CommunesDependencies defines the interface for map marker reads.
type CommunesDependencies interface {
	Communes(ctx context.Context) []geo.Commune
}

// CommunesHandler handles map marker requests.
type CommunesHandler struct {
	deps CommunesDependencies
}

// NewCommunesHandler creates a communes handler.
func NewCommunesHandler(deps CommunesDependencies) *CommunesHandler {
	return &CommunesHandler{deps: deps}
}

// communesResponse wraps the markers.
type communesResponse struct {
	Communes []geo.Commune `json:"communes"`
}

// HandleGetCommunes handles GET /api/communes requests. Unresolvable postal
// codes are simply absent from the result.
func (h *CommunesHandler) HandleGetCommunes(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	communes := h.deps.Communes(r.Context())
	if communes == nil {
		communes = []geo.Commune{}
	}
	writeJSON(w, http.StatusOK, communesResponse{Communes: communes})
}

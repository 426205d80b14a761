package api

import (
	"context"
	"net/http"

	service "github.com/pakafest/dashboard/internal/app"
	"github.com/pakafest/dashboard/internal/domain/query"
)

// ParticipantsDependencies defines the interface for table reads.
type ParticipantsDependencies interface {
	Participants(ctx context.Context, q service.ParticipantsQuery) []Row
	Sentinel() string
}

// ParticipantsHandler handles participant table requests.
type ParticipantsHandler struct {
	deps ParticipantsDependencies
}

// NewParticipantsHandler creates a participants handler.
func NewParticipantsHandler(deps ParticipantsDependencies) *ParticipantsHandler {
	return &ParticipantsHandler{deps: deps}
}

// participantsResponse wraps the rows so the payload can grow without
// breaking the dashboard.
type participantsResponse struct {
	Participants []Row `json:"participants"`
	Count        int   `json:"count"`
}

// HandleGetParticipants handles
// GET /api/participants?search=&age_range=&postal_code=&sort=&order=.
// Empty or sentinel-valued filters are inactive; an unknown sort key is a
// client error rather than a silent default.
func (h *ParticipantsHandler) HandleGetParticipants(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}

	params := r.URL.Query()
	sentinel := h.deps.Sentinel()

	q := service.ParticipantsQuery{
		Search:     params.Get("search"),
		AgeRange:   query.ParseSelection(params.Get("age_range"), sentinel),
		PostalCode: query.ParseSelection(params.Get("postal_code"), sentinel),
	}

	if raw := params.Get("sort"); raw != "" {
		key, ok := query.ParseKey(raw)
		if !ok {
			writeError(w, http.StatusBadRequest, "bad_request", ErrUnknownSortKey)
			return
		}
		q.SortKey = key
		q.SortOrder = query.ParseOrder(params.Get("order"))
	}

	rows := h.deps.Participants(r.Context(), q)
	writeJSON(w, http.StatusOK, participantsResponse{
		Participants: rows,
		Count:        len(rows),
	})
}

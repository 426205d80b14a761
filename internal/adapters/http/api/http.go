// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"encoding/json"
	"net/http"

	service "github.com/pakafest/dashboard/internal/app"
)

// Dependencies bundles everything the handler layer needs from the
// application service. Using an interface bundle keeps the handlers loosely
// coupled to the implementation in internal/app.
type Dependencies interface {
	ParticipantsDependencies
	StatsDependencies
	CommunesDependencies
	RefreshDependencies

	// Sentinel is the dropdown label that disables a filter.
	Sentinel() string
}

// Row mirrors the read shape returned by participant queries.
type Row = service.Row

// Server wires HTTP routes for the dashboard API.
type Server struct {
	loginHandler        *LoginHandler
	participantsHandler *ParticipantsHandler
	statsHandler        *StatsHandler
	communesHandler     *CommunesHandler
	refreshHandler      *RefreshHandler
	healthHandler       *HealthHandler
	dashboardHandler    *dashboardHandler
	tokens              *TokenManager
}

// NewServer creates an API server with all handlers. tokens may be nil, in
// which case the API is served without authentication (local development).
func NewServer(deps Dependencies, creds Credentials, tokens *TokenManager) *Server {
	return &Server{
		loginHandler:        NewLoginHandler(creds, tokens),
		participantsHandler: NewParticipantsHandler(deps),
		statsHandler:        NewStatsHandler(deps),
		communesHandler:     NewCommunesHandler(deps),
		refreshHandler:      NewRefreshHandler(deps),
		healthHandler:       NewHealthHandler(),
		dashboardHandler:    newDashboardHandler(),
		tokens:              tokens,
	}
}

// Register attaches all HTTP routes to mux.
func (s *Server) Register(_ context.Context, mux *http.ServeMux) {
	auth := func(h http.HandlerFunc) http.HandlerFunc {
		return RequireAuth(s.tokens, h)
	}

	mux.HandleFunc("/healthz", MetricsMiddleware(s.healthHandler.HandleHealth, "healthz"))
	mux.HandleFunc("/api/login", MetricsMiddleware(s.loginHandler.HandleLogin, "login"))
	mux.HandleFunc("/api/participants", MetricsMiddleware(auth(s.participantsHandler.HandleGetParticipants), "participants"))
	mux.HandleFunc("/api/stats", MetricsMiddleware(auth(s.statsHandler.HandleGetStats), "stats"))
	mux.HandleFunc("/api/communes", MetricsMiddleware(auth(s.communesHandler.HandleGetCommunes), "communes"))
	mux.HandleFunc("/api/refresh", MetricsMiddleware(auth(s.refreshHandler.HandlePostRefresh), "refresh"))
	mux.HandleFunc("/dashboard", s.dashboardHandler.HandleDashboard)
	mux.HandleFunc("/", s.dashboardHandler.HandleDashboard)
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code string, err error) {
	msg := http.StatusText(status)
	if err != nil {
		msg = err.Error()
	}
	writeJSON(w, status, errorResponse{Code: code, Message: msg})
}

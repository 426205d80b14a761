package api

import (
	"encoding/json"
	"net/http"
	"strings"
)

// loginRequest is the POST /api/login body.
type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

func (l loginRequest) validate() error {
	if strings.TrimSpace(l.Username) == "" || l.Password == "" {
		return ErrBadRequest
	}
	return nil
}

// loginResponse carries the session token back to the dashboard.
type loginResponse struct {
	Token string `json:"token"`
}

// LoginHandler exchanges the shared credential pair for a session token.
type LoginHandler struct {
	creds  Credentials
	tokens *TokenManager
}

// NewLoginHandler creates a login handler.
func NewLoginHandler(creds Credentials, tokens *TokenManager) *LoginHandler {
	return &LoginHandler{creds: creds, tokens: tokens}
}

// HandleLogin handles POST /api/login requests.
func (h *LoginHandler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.NotFound(w, r)
		return
	}
	if h.tokens == nil {
		// Auth disabled; the dashboard never calls login in that mode.
		http.NotFound(w, r)
		return
	}

	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", ErrBadRequest)
		return
	}
	if err := req.validate(); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", err)
		return
	}

	if !h.creds.Matches(req.Username, req.Password) {
		writeError(w, http.StatusUnauthorized, "unauthorized", ErrUnauthorized)
		return
	}

	token, err := h.tokens.Generate(req.Username)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "internal_error", err)
		return
	}
	writeJSON(w, http.StatusOK, loginResponse{Token: token})
}

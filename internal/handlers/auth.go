package handlers

import (
	"net/http"

	"github.com/zedm/louage-backend/internal/session"
)

// AuthHandler handles login and logout requests.
type AuthHandler struct {
	gate *session.Gate
}

// NewAuthHandler creates a new authentication handler.
func NewAuthHandler(gate *session.Gate) *AuthHandler {
	return &AuthHandler{gate: gate}
}

type loginResponse struct {
	Token string `json:"token"`
	Role  string `json:"role"`
}

// OwnerLogin handles owner login against the settings password.
func (h *AuthHandler) OwnerLogin(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Password string `json:"password"`
	}
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, err)
		return
	}

	token, err := h.gate.LoginAsOwner(r.Context(), req.Password)
	if err != nil {
		respondError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, loginResponse{Token: token, Role: string(session.RoleOwner)})
}

// DriverLogin handles driver login by exact name and password match.
func (h *AuthHandler) DriverLogin(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name     string `json:"name"`
		Password string `json:"password"`
	}
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, err)
		return
	}

	token, err := h.gate.LoginAsDriver(r.Context(), req.Name, req.Password)
	if err != nil {
		respondError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, loginResponse{Token: token, Role: string(session.RoleDriver)})
}

// Logout ends the session. Tokens are not tracked server-side; the client
// discards its stored token and returns to anonymous.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusNoContent)
}

// Package handlers exposes the core components over HTTP. Handlers are thin:
// decode, check session scope, delegate, encode.
package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	log "github.com/sirupsen/logrus"
	"github.com/zedm/louage-backend/internal/db"
	"github.com/zedm/louage-backend/internal/ledger"
	"github.com/zedm/louage-backend/internal/models"
	"github.com/zedm/louage-backend/internal/registry"
	"github.com/zedm/louage-backend/internal/session"
	"github.com/zedm/louage-backend/internal/settlement"
)

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if v != nil {
		json.NewEncoder(w).Encode(v)
	}
}

type errorResponse struct {
	Error     string `json:"error"`
	Field     string `json:"field,omitempty"`
	Remaining *int   `json:"remaining_seats,omitempty"`
}

// respondError maps the component error taxonomy onto HTTP statuses.
func respondError(w http.ResponseWriter, err error) {
	var verr *models.ValidationError
	var capErr *ledger.CapacityExceededError

	switch {
	case errors.As(err, &verr):
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: verr.Error(), Field: verr.Field})
	case errors.As(err, &capErr):
		writeJSON(w, http.StatusConflict, errorResponse{Error: capErr.Error(), Remaining: &capErr.Remaining})
	case errors.Is(err, session.ErrInvalidCredentials):
		writeJSON(w, http.StatusUnauthorized, errorResponse{Error: "invalid credentials"})
	case errors.Is(err, session.ErrInvalidToken), errors.Is(err, session.ErrExpiredToken):
		writeJSON(w, http.StatusUnauthorized, errorResponse{Error: "invalid session"})
	case errors.Is(err, registry.ErrVehicleInUse):
		writeJSON(w, http.StatusConflict, errorResponse{Error: err.Error()})
	case errors.Is(err, settlement.ErrUnknownVehicle), errors.Is(err, registry.ErrUnknownVehicle):
		writeJSON(w, http.StatusNotFound, errorResponse{Error: "unknown vehicle"})
	case errors.Is(err, db.ErrNotFound):
		writeJSON(w, http.StatusNotFound, errorResponse{Error: "not found"})
	default:
		// Store failures mean the data layer is unavailable; surface that
		// loudly instead of pretending a mutation went through.
		log.WithError(err).Error("request failed")
		writeJSON(w, http.StatusServiceUnavailable, errorResponse{Error: "data unavailable"})
	}
}

func decodeJSON(r *http.Request, v interface{}) error {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return &models.ValidationError{Field: "body", Reason: "invalid JSON"}
	}
	return nil
}

package handlers

import (
	"net/http"

	"github.com/zedm/louage-backend/internal/db"
	"github.com/zedm/louage-backend/internal/middleware"
	"github.com/zedm/louage-backend/internal/models"
	"github.com/zedm/louage-backend/internal/settings"
	"github.com/zedm/louage-backend/internal/settlement"
)

// TripHandler handles trip settlement and listing requests.
type TripHandler struct {
	engine   *settlement.Engine
	settings *settings.Store
	trips    db.TripCollection
}

// NewTripHandler creates a new trip handler.
func NewTripHandler(engine *settlement.Engine, settingsStore *settings.Store, trips db.TripCollection) *TripHandler {
	return &TripHandler{engine: engine, settings: settingsStore, trips: trips}
}

// Record settles and persists a trip. A driver session always records
// against its assigned vehicle.
func (h *TripHandler) Record(w http.ResponseWriter, r *http.Request) {
	sess, ok := middleware.GetSessionFromContext(r.Context())
	if !ok {
		http.Error(w, "Session context not found", http.StatusUnauthorized)
		return
	}

	var input settlement.TripInput
	if err := decodeJSON(r, &input); err != nil {
		respondError(w, err)
		return
	}
	if !sess.IsOwner() {
		input.VehicleID = sess.VehicleID
	}

	current, err := h.settings.Get(r.Context())
	if err != nil {
		respondError(w, err)
		return
	}

	trip, err := h.engine.Record(r.Context(), input, *current)
	if err != nil {
		respondError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, trip)
}

// List returns trips most recent first. Drivers get only their own vehicle's
// driver-visible records.
func (h *TripHandler) List(w http.ResponseWriter, r *http.Request) {
	sess, ok := middleware.GetSessionFromContext(r.Context())
	if !ok {
		http.Error(w, "Session context not found", http.StatusUnauthorized)
		return
	}

	var (
		trips []models.Trip
		err   error
	)
	if sess.IsOwner() {
		trips, err = h.trips.FindTrips(r.Context())
	} else {
		trips, err = h.trips.FindTripsByVehicle(r.Context(), sess.VehicleID, true)
	}
	if err != nil {
		respondError(w, err)
		return
	}
	if trips == nil {
		trips = []models.Trip{}
	}
	writeJSON(w, http.StatusOK, trips)
}

// SetVisibility flips the driver-visibility flag on a trip. Owner only,
// enforced by routing.
func (h *TripHandler) SetVisibility(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Visible bool `json:"visible"`
	}
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, err)
		return
	}

	if err := h.engine.SetVisibility(r.Context(), r.PathValue("id"), req.Visible); err != nil {
		respondError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Stats returns the dashboard aggregates over all trips. Owner only,
// enforced by routing.
func (h *TripHandler) Stats(w http.ResponseWriter, r *http.Request) {
	totals, err := h.engine.Totals(r.Context())
	if err != nil {
		respondError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, totals)
}

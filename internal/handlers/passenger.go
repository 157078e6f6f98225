package handlers

import (
	"net/http"
	"time"

	"github.com/zedm/louage-backend/internal/db"
	"github.com/zedm/louage-backend/internal/ledger"
	"github.com/zedm/louage-backend/internal/middleware"
	"github.com/zedm/louage-backend/internal/models"
)

// PassengerHandler handles seat reservation requests.
type PassengerHandler struct {
	ledger     *ledger.Ledger
	passengers db.PassengerCollection
}

// NewPassengerHandler creates a new passenger handler.
func NewPassengerHandler(l *ledger.Ledger, passengers db.PassengerCollection) *PassengerHandler {
	return &PassengerHandler{ledger: l, passengers: passengers}
}

// List returns reservations for a calendar day (default today). Drivers see
// only their own vehicle's reservations.
func (h *PassengerHandler) List(w http.ResponseWriter, r *http.Request) {
	sess, ok := middleware.GetSessionFromContext(r.Context())
	if !ok {
		http.Error(w, "Session context not found", http.StatusUnauthorized)
		return
	}

	date := r.URL.Query().Get("date")
	if date == "" {
		date = time.Now().Format(models.DateLayout)
	}

	var (
		passengers []models.Passenger
		err        error
	)
	if sess.IsOwner() {
		if vehicleID := r.URL.Query().Get("vehicle_id"); vehicleID != "" {
			passengers, err = h.passengers.FindPassengersByVehicleDate(r.Context(), vehicleID, date)
		} else {
			passengers, err = h.passengers.FindPassengersByDate(r.Context(), date)
		}
	} else {
		passengers, err = h.passengers.FindPassengersByVehicleDate(r.Context(), sess.VehicleID, date)
	}
	if err != nil {
		respondError(w, err)
		return
	}
	if passengers == nil {
		passengers = []models.Passenger{}
	}
	writeJSON(w, http.StatusOK, passengers)
}

// Reserve creates a new reservation. A driver session always books on its
// assigned vehicle.
func (h *PassengerHandler) Reserve(w http.ResponseWriter, r *http.Request) {
	sess, ok := middleware.GetSessionFromContext(r.Context())
	if !ok {
		http.Error(w, "Session context not found", http.StatusUnauthorized)
		return
	}

	var passenger models.Passenger
	if err := decodeJSON(r, &passenger); err != nil {
		respondError(w, err)
		return
	}
	passenger.ID = ""
	if !sess.IsOwner() {
		passenger.VehicleID = sess.VehicleID
	}

	id, err := h.ledger.Reserve(r.Context(), passenger)
	if err != nil {
		respondError(w, err)
		return
	}
	passenger.ID = id
	writeJSON(w, http.StatusCreated, passenger)
}

// Update re-validates and overwrites an existing reservation, excluding its
// own seats from the capacity check.
func (h *PassengerHandler) Update(w http.ResponseWriter, r *http.Request) {
	sess, ok := middleware.GetSessionFromContext(r.Context())
	if !ok {
		http.Error(w, "Session context not found", http.StatusUnauthorized)
		return
	}

	id := r.PathValue("id")
	existing, err := h.passengers.FindPassengerByID(r.Context(), id)
	if err != nil {
		respondError(w, err)
		return
	}
	if !sess.CanAccessVehicle(existing.VehicleID) {
		http.Error(w, "Reservation belongs to another vehicle", http.StatusForbidden)
		return
	}

	var passenger models.Passenger
	if err := decodeJSON(r, &passenger); err != nil {
		respondError(w, err)
		return
	}
	passenger.ID = id
	passenger.CreatedAt = existing.CreatedAt
	if !sess.IsOwner() {
		passenger.VehicleID = sess.VehicleID
	}

	if _, err := h.ledger.Reserve(r.Context(), passenger); err != nil {
		respondError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, passenger)
}

// Cancel deletes a reservation.
func (h *PassengerHandler) Cancel(w http.ResponseWriter, r *http.Request) {
	sess, ok := middleware.GetSessionFromContext(r.Context())
	if !ok {
		http.Error(w, "Session context not found", http.StatusUnauthorized)
		return
	}

	id := r.PathValue("id")
	existing, err := h.passengers.FindPassengerByID(r.Context(), id)
	if err != nil {
		respondError(w, err)
		return
	}
	if !sess.CanAccessVehicle(existing.VehicleID) {
		http.Error(w, "Reservation belongs to another vehicle", http.StatusForbidden)
		return
	}

	if err := h.ledger.Cancel(r.Context(), id); err != nil {
		respondError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Occupancy reports both legs of a vehicle-day.
func (h *PassengerHandler) Occupancy(w http.ResponseWriter, r *http.Request) {
	sess, ok := middleware.GetSessionFromContext(r.Context())
	if !ok {
		http.Error(w, "Session context not found", http.StatusUnauthorized)
		return
	}

	vehicleID := r.URL.Query().Get("vehicle_id")
	if !sess.IsOwner() {
		vehicleID = sess.VehicleID
	}
	if vehicleID == "" {
		respondError(w, &models.ValidationError{Field: "vehicle_id", Reason: "required"})
		return
	}
	date := r.URL.Query().Get("date")
	if date == "" {
		date = time.Now().Format(models.DateLayout)
	}

	legs, err := h.ledger.DayOccupancy(r.Context(), vehicleID, date)
	if err != nil {
		respondError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, legs)
}

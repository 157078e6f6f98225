package handlers

import (
	"net/http"

	"github.com/zedm/louage-backend/internal/middleware"
	"github.com/zedm/louage-backend/internal/models"
	"github.com/zedm/louage-backend/internal/registry"
	"github.com/zedm/louage-backend/internal/settings"
	"github.com/zedm/louage-backend/internal/settlement"
)

// VehicleHandler handles fleet vehicle requests.
type VehicleHandler struct {
	registry *registry.Registry
	engine   *settlement.Engine
	settings *settings.Store
}

// NewVehicleHandler creates a new vehicle handler.
func NewVehicleHandler(reg *registry.Registry, engine *settlement.Engine, settingsStore *settings.Store) *VehicleHandler {
	return &VehicleHandler{registry: reg, engine: engine, settings: settingsStore}
}

// List returns the fleet. A driver session sees only its assigned vehicle.
func (h *VehicleHandler) List(w http.ResponseWriter, r *http.Request) {
	sess, ok := middleware.GetSessionFromContext(r.Context())
	if !ok {
		http.Error(w, "Session context not found", http.StatusUnauthorized)
		return
	}

	if !sess.IsOwner() {
		vehicle, err := h.registry.GetVehicle(r.Context(), sess.VehicleID)
		if err != nil {
			respondError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, []models.Vehicle{*vehicle})
		return
	}

	vehicles, err := h.registry.ListVehicles(r.Context())
	if err != nil {
		respondError(w, err)
		return
	}
	if vehicles == nil {
		vehicles = []models.Vehicle{}
	}
	writeJSON(w, http.StatusOK, vehicles)
}

// Create adds a vehicle to the fleet. Owner only, enforced by routing.
func (h *VehicleHandler) Create(w http.ResponseWriter, r *http.Request) {
	var vehicle models.Vehicle
	if err := decodeJSON(r, &vehicle); err != nil {
		respondError(w, err)
		return
	}
	vehicle.ID = ""

	id, err := h.registry.CreateVehicle(r.Context(), vehicle)
	if err != nil {
		respondError(w, err)
		return
	}
	vehicle.ID = id
	writeJSON(w, http.StatusCreated, vehicle)
}

// Update edits a vehicle's plate and model. Owner only, enforced by routing.
func (h *VehicleHandler) Update(w http.ResponseWriter, r *http.Request) {
	var vehicle models.Vehicle
	if err := decodeJSON(r, &vehicle); err != nil {
		respondError(w, err)
		return
	}

	updated, err := h.registry.UpdateVehicle(r.Context(), r.PathValue("id"), vehicle)
	if err != nil {
		respondError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

// Delete removes a vehicle unless driver accounts still reference it. Owner
// only, enforced by routing.
func (h *VehicleHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.registry.DeleteVehicle(r.Context(), r.PathValue("id")); err != nil {
		respondError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// MaintenanceDue lists vehicles past the oil-change interval. Owner only,
// enforced by routing.
func (h *VehicleHandler) MaintenanceDue(w http.ResponseWriter, r *http.Request) {
	current, err := h.settings.Get(r.Context())
	if err != nil {
		respondError(w, err)
		return
	}
	due, err := h.engine.MaintenanceDue(r.Context(), *current)
	if err != nil {
		respondError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, due)
}

// MaintenanceAck resets a vehicle's oil-change watermark. Owner only,
// enforced by routing.
func (h *VehicleHandler) MaintenanceAck(w http.ResponseWriter, r *http.Request) {
	vehicle, err := h.engine.AcknowledgeMaintenance(r.Context(), r.PathValue("id"))
	if err != nil {
		respondError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, vehicle)
}

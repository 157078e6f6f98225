package handlers

import (
	"net/http"

	"github.com/zedm/louage-backend/internal/models"
	"github.com/zedm/louage-backend/internal/registry"
)

// DriverHandler handles driver account management. Every route is owner
// only, enforced by routing.
type DriverHandler struct {
	registry *registry.Registry
}

// NewDriverHandler creates a new driver account handler.
func NewDriverHandler(reg *registry.Registry) *DriverHandler {
	return &DriverHandler{registry: reg}
}

// List returns all driver accounts.
func (h *DriverHandler) List(w http.ResponseWriter, r *http.Request) {
	drivers, err := h.registry.ListDrivers(r.Context())
	if err != nil {
		respondError(w, err)
		return
	}
	if drivers == nil {
		drivers = []models.DriverAccount{}
	}
	writeJSON(w, http.StatusOK, drivers)
}

// Create adds a driver account bound to an existing vehicle.
func (h *DriverHandler) Create(w http.ResponseWriter, r *http.Request) {
	var driver models.DriverAccount
	if err := decodeJSON(r, &driver); err != nil {
		respondError(w, err)
		return
	}
	driver.ID = ""

	id, err := h.registry.CreateDriver(r.Context(), driver)
	if err != nil {
		respondError(w, err)
		return
	}
	driver.ID = id
	writeJSON(w, http.StatusCreated, driver)
}

// Update replaces a driver account, re-checking the vehicle reference.
func (h *DriverHandler) Update(w http.ResponseWriter, r *http.Request) {
	var driver models.DriverAccount
	if err := decodeJSON(r, &driver); err != nil {
		respondError(w, err)
		return
	}

	id := r.PathValue("id")
	if err := h.registry.UpdateDriver(r.Context(), id, driver); err != nil {
		respondError(w, err)
		return
	}
	driver.ID = id
	writeJSON(w, http.StatusOK, driver)
}

// Delete removes a driver account.
func (h *DriverHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.registry.DeleteDriver(r.Context(), r.PathValue("id")); err != nil {
		respondError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

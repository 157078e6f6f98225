package handlers

import (
	"net/http"

	"github.com/zedm/louage-backend/internal/models"
	"github.com/zedm/louage-backend/internal/settings"
)

// SettingsHandler handles the application settings singleton. Both routes
// are owner only, enforced by routing.
type SettingsHandler struct {
	settings *settings.Store
}

// NewSettingsHandler creates a new settings handler.
func NewSettingsHandler(store *settings.Store) *SettingsHandler {
	return &SettingsHandler{settings: store}
}

// Get returns the settings document, seeding defaults on first read.
func (h *SettingsHandler) Get(w http.ResponseWriter, r *http.Request) {
	current, err := h.settings.Get(r.Context())
	if err != nil {
		respondError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, current)
}

// Update replaces the settings document after validation.
func (h *SettingsHandler) Update(w http.ResponseWriter, r *http.Request) {
	var next models.Settings
	if err := decodeJSON(r, &next); err != nil {
		respondError(w, err)
		return
	}

	if err := h.settings.Update(r.Context(), next); err != nil {
		respondError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, next)
}

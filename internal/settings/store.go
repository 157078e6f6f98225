// Package settings owns the global configuration singleton. Every other
// component reads it; only the owner writes it.
package settings

import (
	"context"
	"fmt"

	log "github.com/sirupsen/logrus"
	"github.com/zedm/louage-backend/internal/db"
	"github.com/zedm/louage-backend/internal/models"
)

// Store exposes the settings singleton with create-on-first-access defaults.
type Store struct {
	collection db.SettingsCollection
}

// NewStore creates a settings store over its collection.
func NewStore(collection db.SettingsCollection) *Store {
	return &Store{collection: collection}
}

// Get returns the current settings, initializing the singleton from the
// defaults if it does not exist yet.
func (s *Store) Get(ctx context.Context) (*models.Settings, error) {
	settings, err := s.collection.GetOrInitSettings(ctx, models.DefaultSettings())
	if err != nil {
		return nil, fmt.Errorf("load settings: %w", err)
	}
	return settings, nil
}

// Update validates and replaces the singleton in place.
func (s *Store) Update(ctx context.Context, settings models.Settings) error {
	if err := settings.Validate(); err != nil {
		return err
	}
	if err := s.collection.UpdateSettings(ctx, settings); err != nil {
		return fmt.Errorf("update settings: %w", err)
	}
	log.WithFields(log.Fields{
		"driver_percentage":      settings.DriverPercentage,
		"oil_change_interval_km": settings.OilChangeIntervalKm,
	}).Info("settings updated")
	return nil
}

package models

import (
	"time"

	"github.com/zedm/louage-backend/internal/money"
)

// SettingsID is the fixed document id of the settings singleton.
const SettingsID = "global"

// Settings is the global configuration singleton. Language and theme are
// opaque presentation values persisted for the clients.
type Settings struct {
	ID                  string       `bson:"_id" json:"id"`
	FuelPriceReference  money.Amount `bson:"fuel_price_reference" json:"fuel_price_reference"`
	DriverPercentage    int64        `bson:"driver_percentage" json:"driver_percentage"`
	OilChangeIntervalKm int64        `bson:"oil_change_interval_km" json:"oil_change_interval_km"`
	OwnerPassword       string       `bson:"owner_password" json:"owner_password"`
	Language            string       `bson:"language" json:"language"`
	Theme               string       `bson:"theme" json:"theme"`
	UpdatedAt           time.Time    `bson:"updated_at" json:"updated_at"`
}

// DefaultSettings returns the values used when the singleton does not exist
// yet on first access.
func DefaultSettings() Settings {
	return Settings{
		ID:                  SettingsID,
		FuelPriceReference:  money.FromMillimes(2500),
		DriverPercentage:    20,
		OilChangeIntervalKm: 8000,
		OwnerPassword:       "admin",
		Language:            "ar",
		Theme:               "light",
	}
}

// Validate checks the settings fields that must hold at write time.
func (s *Settings) Validate() error {
	if s.DriverPercentage < 0 || s.DriverPercentage > 100 {
		return &ValidationError{Field: "driver_percentage", Reason: "must be between 0 and 100"}
	}
	if s.OilChangeIntervalKm <= 0 {
		return &ValidationError{Field: "oil_change_interval_km", Reason: "must be positive"}
	}
	if s.OwnerPassword == "" {
		return &ValidationError{Field: "owner_password", Reason: "required"}
	}
	if s.FuelPriceReference.IsNegative() {
		return &ValidationError{Field: "fuel_price_reference", Reason: "must not be negative"}
	}
	return nil
}

package models

import (
	"time"
)

// Vehicle represents a louage in the fleet. Plate numbers are a display key
// and are not required to be unique.
type Vehicle struct {
	ID                string    `bson:"_id,omitempty" json:"id"`
	PlateNumber       string    `bson:"plate_number" json:"plate_number"`
	Model             string    `bson:"model" json:"model"`
	CurrentOdometerKm int64     `bson:"current_odometer_km" json:"current_odometer_km"`
	LastOilChangeKm   int64     `bson:"last_oil_change_km" json:"last_oil_change_km"`
	CreatedAt         time.Time `bson:"created_at" json:"created_at"`
}

// Validate checks the vehicle fields that must hold at write time.
func (v *Vehicle) Validate() error {
	if v.PlateNumber == "" {
		return &ValidationError{Field: "plate_number", Reason: "required"}
	}
	if v.Model == "" {
		return &ValidationError{Field: "model", Reason: "required"}
	}
	if v.CurrentOdometerKm < 0 {
		return &ValidationError{Field: "current_odometer_km", Reason: "must not be negative"}
	}
	if v.LastOilChangeKm < 0 || v.LastOilChangeKm > v.CurrentOdometerKm {
		return &ValidationError{Field: "last_oil_change_km", Reason: "must be between 0 and the current odometer"}
	}
	return nil
}

package models

import "time"

// DriverAccount is a login account for a driver, tied to exactly one vehicle.
// The password is stored in cleartext: login is a gate, not a security
// boundary, and the owner reads it back when editing the account.
type DriverAccount struct {
	ID        string    `bson:"_id,omitempty" json:"id"`
	Name      string    `bson:"name" json:"name"`
	Password  string    `bson:"password" json:"password"`
	VehicleID string    `bson:"vehicle_id" json:"vehicle_id"`
	CreatedAt time.Time `bson:"created_at" json:"created_at"`
}

// Validate checks the account fields that must hold at write time. Vehicle
// existence is checked by the registry, not here.
func (d *DriverAccount) Validate() error {
	if d.Name == "" {
		return &ValidationError{Field: "name", Reason: "required"}
	}
	if d.Password == "" {
		return &ValidationError{Field: "password", Reason: "required"}
	}
	if d.VehicleID == "" {
		return &ValidationError{Field: "vehicle_id", Reason: "required"}
	}
	return nil
}

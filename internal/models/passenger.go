package models

import "time"

// Direction identifies one leg of the fixed route. The two legs of a
// vehicle-day have independent seat budgets.
type Direction string

const (
	DirectionOutbound Direction = "outbound"
	DirectionInbound  Direction = "inbound"
)

// IsValidDirection checks if a direction is one of the two route legs.
func IsValidDirection(d Direction) bool {
	return d == DirectionOutbound || d == DirectionInbound
}

// DateLayout is the ISO calendar-day form used for reservation and trip dates.
const DateLayout = "2006-01-02"

// Passenger is a seat reservation on one leg of a vehicle-day.
type Passenger struct {
	ID         string    `bson:"_id,omitempty" json:"id"`
	Name       string    `bson:"name" json:"name"`
	Phone      string    `bson:"phone" json:"phone"`
	Direction  Direction `bson:"direction" json:"direction"`
	Date       string    `bson:"date" json:"date"`
	VehicleID  string    `bson:"vehicle_id" json:"vehicle_id"`
	SeatsCount int       `bson:"seats_count" json:"seats_count"`
	CreatedAt  time.Time `bson:"created_at" json:"created_at"`
}

// Validate checks the reservation fields against the given seat capacity.
func (p *Passenger) Validate(capacity int) error {
	if p.Name == "" {
		return &ValidationError{Field: "name", Reason: "required"}
	}
	if p.Phone == "" {
		return &ValidationError{Field: "phone", Reason: "required"}
	}
	if !IsValidDirection(p.Direction) {
		return &ValidationError{Field: "direction", Reason: "must be outbound or inbound"}
	}
	if p.VehicleID == "" {
		return &ValidationError{Field: "vehicle_id", Reason: "required"}
	}
	if _, err := time.Parse(DateLayout, p.Date); err != nil {
		return &ValidationError{Field: "date", Reason: "must be an ISO calendar day"}
	}
	if p.SeatsCount < 1 || p.SeatsCount > capacity {
		return &ValidationError{Field: "seats_count", Reason: "out of range"}
	}
	return nil
}

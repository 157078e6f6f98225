package models

import (
	"time"

	"github.com/zedm/louage-backend/internal/money"
)

// Trip is one settled financial record for a vehicle-day. Trips are written
// once and never edited; only the owner-controlled visibility flag changes.
type Trip struct {
	ID              string       `bson:"_id,omitempty" json:"id"`
	VehicleID       string       `bson:"vehicle_id" json:"vehicle_id"`
	Date            string       `bson:"date" json:"date"`
	Revenue         money.Amount `bson:"revenue" json:"revenue"`
	KmTraveled      int64        `bson:"km_traveled" json:"km_traveled"`
	FuelCost        money.Amount `bson:"fuel_cost" json:"fuel_cost"`
	Expenses        money.Amount `bson:"expenses" json:"expenses"`
	ExpenseNote     string       `bson:"expense_note,omitempty" json:"expense_note,omitempty"`
	DriverShare     money.Amount `bson:"driver_share" json:"driver_share"`
	NetProfit       money.Amount `bson:"net_profit" json:"net_profit"`
	VisibleToDriver bool         `bson:"visible_to_driver" json:"visible_to_driver"`
	CreatedAt       time.Time    `bson:"created_at" json:"created_at"`
	UpdatedAt       time.Time    `bson:"updated_at" json:"updated_at"`
}

// Package settlement turns raw trip inputs into driver payout and net profit
// and applies the resulting odometer delta to the vehicle.
package settlement

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
	"github.com/zedm/louage-backend/internal/db"
	"github.com/zedm/louage-backend/internal/models"
	"github.com/zedm/louage-backend/internal/money"
)

// ErrUnknownVehicle is returned when a settlement references a vehicle id
// that does not resolve. Nothing is persisted in that case.
var ErrUnknownVehicle = errors.New("unknown vehicle")

// TripInput is the raw financial record of one trip before settlement.
type TripInput struct {
	ID          string       `json:"id,omitempty"`
	VehicleID   string       `json:"vehicle_id"`
	Date        string       `json:"date"`
	Revenue     money.Amount `json:"revenue"`
	KmTraveled  int64        `json:"km_traveled"`
	FuelCost    money.Amount `json:"fuel_cost"`
	Expenses    money.Amount `json:"expenses"`
	ExpenseNote string       `json:"expense_note,omitempty"`
}

func (in *TripInput) validate() error {
	if in.VehicleID == "" {
		return &models.ValidationError{Field: "vehicle_id", Reason: "required"}
	}
	if _, err := time.Parse(models.DateLayout, in.Date); err != nil {
		return &models.ValidationError{Field: "date", Reason: "must be an ISO calendar day"}
	}
	if in.Revenue.IsNegative() {
		return &models.ValidationError{Field: "revenue", Reason: "must not be negative"}
	}
	if in.FuelCost.IsNegative() {
		return &models.ValidationError{Field: "fuel_cost", Reason: "must not be negative"}
	}
	if in.Expenses.IsNegative() {
		return &models.ValidationError{Field: "expenses", Reason: "must not be negative"}
	}
	if in.KmTraveled < 0 {
		return &models.ValidationError{Field: "km_traveled", Reason: "must not be negative"}
	}
	return nil
}

// Settle derives the payout split from the trip input and current settings.
// The driver share is the only place a rounding rule applies; net profit may
// be negative, which is a valid loss-making trip rather than an error.
func Settle(in TripInput, settings models.Settings) models.Trip {
	driverShare := in.Revenue.Percent(settings.DriverPercentage)
	netProfit := in.Revenue.Sub(driverShare).Sub(in.FuelCost).Sub(in.Expenses)
	return models.Trip{
		ID:              in.ID,
		VehicleID:       in.VehicleID,
		Date:            in.Date,
		Revenue:         in.Revenue,
		KmTraveled:      in.KmTraveled,
		FuelCost:        in.FuelCost,
		Expenses:        in.Expenses,
		ExpenseNote:     in.ExpenseNote,
		DriverShare:     driverShare,
		NetProfit:       netProfit,
		VisibleToDriver: true,
	}
}

// Engine records settled trips against the store and owns the trip records
// and the odometer field it mutates.
type Engine struct {
	trips    db.TripCollection
	vehicles db.VehicleCollection
}

// NewEngine creates a settlement engine over the trip and vehicle collections.
func NewEngine(trips db.TripCollection, vehicles db.VehicleCollection) *Engine {
	return &Engine{trips: trips, vehicles: vehicles}
}

// Record settles and persists a trip, then applies the odometer delta as an
// atomic increment. Trip ids are caller-suppliable so retries after a
// confirmed success find the stored trip instead of bumping the odometer a
// second time.
func (e *Engine) Record(ctx context.Context, in TripInput, settings models.Settings) (*models.Trip, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}
	if _, err := e.vehicles.FindVehicleByID(ctx, in.VehicleID); err != nil {
		if errors.Is(err, db.ErrNotFound) {
			return nil, ErrUnknownVehicle
		}
		return nil, fmt.Errorf("resolve vehicle: %w", err)
	}
	if in.ID == "" {
		in.ID = uuid.NewString()
	}

	trip := Settle(in, settings)
	if err := e.trips.InsertTrip(ctx, trip); err != nil {
		if errors.Is(err, db.ErrDuplicateID) {
			// Retried settlement: the trip and its odometer delta were
			// already applied.
			return e.trips.FindTripByID(ctx, trip.ID)
		}
		return nil, fmt.Errorf("insert trip: %w", err)
	}
	if err := e.vehicles.IncrementOdometer(ctx, in.VehicleID, in.KmTraveled); err != nil {
		return nil, fmt.Errorf("apply odometer delta: %w", err)
	}

	log.WithFields(log.Fields{
		"trip":         trip.ID,
		"vehicle":      trip.VehicleID,
		"date":         trip.Date,
		"revenue":      trip.Revenue,
		"driver_share": trip.DriverShare,
		"net_profit":   trip.NetProfit,
	}).Info("trip settled")
	return &trip, nil
}

// SetVisibility flips the owner-controlled visibility flag on a trip.
func (e *Engine) SetVisibility(ctx context.Context, tripID string, visible bool) error {
	return e.trips.SetTripVisibility(ctx, tripID, visible)
}

// DueForMaintenance reports whether a vehicle has covered at least the oil
// change interval since its last acknowledged change.
func DueForMaintenance(vehicle models.Vehicle, settings models.Settings) bool {
	return vehicle.CurrentOdometerKm-vehicle.LastOilChangeKm >= settings.OilChangeIntervalKm
}

// AcknowledgeMaintenance resets the oil-change watermark to the current
// odometer and returns the updated vehicle.
func (e *Engine) AcknowledgeMaintenance(ctx context.Context, vehicleID string) (*models.Vehicle, error) {
	if err := e.vehicles.AcknowledgeMaintenance(ctx, vehicleID); err != nil {
		if errors.Is(err, db.ErrNotFound) {
			return nil, ErrUnknownVehicle
		}
		return nil, err
	}
	return e.vehicles.FindVehicleByID(ctx, vehicleID)
}

// MaintenanceDue lists the vehicles currently over the oil-change interval.
func (e *Engine) MaintenanceDue(ctx context.Context, settings models.Settings) ([]models.Vehicle, error) {
	vehicles, err := e.vehicles.FindVehicles(ctx)
	if err != nil {
		return nil, err
	}
	due := make([]models.Vehicle, 0)
	for _, v := range vehicles {
		if DueForMaintenance(v, settings) {
			due = append(due, v)
		}
	}
	return due, nil
}

// Totals are the dashboard aggregates over a set of trips.
type Totals struct {
	Trips       int          `json:"trips"`
	Revenue     money.Amount `json:"revenue"`
	DriverShare money.Amount `json:"driver_share"`
	FuelCost    money.Amount `json:"fuel_cost"`
	Expenses    money.Amount `json:"expenses"`
	NetProfit   money.Amount `json:"net_profit"`
}

// Totals aggregates all trips with exact minor-unit addition.
func (e *Engine) Totals(ctx context.Context) (*Totals, error) {
	trips, err := e.trips.FindTrips(ctx)
	if err != nil {
		return nil, err
	}
	totals := &Totals{Trips: len(trips)}
	for _, t := range trips {
		totals.Revenue = totals.Revenue.Add(t.Revenue)
		totals.DriverShare = totals.DriverShare.Add(t.DriverShare)
		totals.FuelCost = totals.FuelCost.Add(t.FuelCost)
		totals.Expenses = totals.Expenses.Add(t.Expenses)
		totals.NetProfit = totals.NetProfit.Add(t.NetProfit)
	}
	return totals, nil
}

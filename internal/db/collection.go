// Package db is the persistence collaborator: typed collection access over
// the document store, plus change subscriptions. Core components program
// against these interfaces and never touch raw store documents.
package db

import (
	"context"
	"errors"

	"github.com/zedm/louage-backend/internal/models"
)

var (
	// ErrNotFound is returned when a record id does not resolve.
	ErrNotFound = errors.New("record not found")
	// ErrDuplicateID is returned when inserting a record whose id already
	// exists. Callers use it to make retried writes idempotent.
	ErrDuplicateID = errors.New("record id already exists")
	// ErrNoCapacity is returned by Reserve when the requested seats do not
	// fit in the leg's remaining budget. No write happens.
	ErrNoCapacity = errors.New("not enough seats remaining")
)

// ChangeEvent is one push from a collection subscription.
type ChangeEvent struct {
	Collection string `json:"collection"`
	Op         string `json:"op"` // "insert", "update", "replace", "delete"
	DocumentID string `json:"document_id,omitempty"`
}

// Collection names in the document store.
const (
	CollectionVehicles   = "vehicles"
	CollectionDrivers    = "drivers"
	CollectionPassengers = "passengers"
	CollectionTrips      = "trips"
	CollectionSettings   = "settings"
)

// VehicleCollection defines the interface for vehicle data operations.
type VehicleCollection interface {
	InsertVehicle(ctx context.Context, vehicle models.Vehicle) (string, error)
	FindVehicleByID(ctx context.Context, id string) (*models.Vehicle, error)
	FindVehicles(ctx context.Context) ([]models.Vehicle, error)
	// UpdateVehicle rewrites the plate and model only. Odometer fields
	// move exclusively through IncrementOdometer and AcknowledgeMaintenance.
	UpdateVehicle(ctx context.Context, id string, vehicle models.Vehicle) error
	DeleteVehicle(ctx context.Context, id string) error
	// IncrementOdometer applies a trip's distance as an atomic increment so
	// concurrent settlements for the same vehicle never lose an update.
	IncrementOdometer(ctx context.Context, id string, km int64) error
	// AcknowledgeMaintenance sets the oil-change watermark to the current
	// odometer reading in a single store-side write.
	AcknowledgeMaintenance(ctx context.Context, id string) error
	WatchVehicles(ctx context.Context) (<-chan ChangeEvent, error)
}

// DriverCollection defines the interface for driver account operations.
type DriverCollection interface {
	InsertDriver(ctx context.Context, driver models.DriverAccount) (string, error)
	FindDriverByID(ctx context.Context, id string) (*models.DriverAccount, error)
	// FindDriverByCredentials matches on the exact (name, password) pair,
	// since display names are not unique across accounts.
	FindDriverByCredentials(ctx context.Context, name, password string) (*models.DriverAccount, error)
	FindDrivers(ctx context.Context) ([]models.DriverAccount, error)
	FindDriversByVehicle(ctx context.Context, vehicleID string) ([]models.DriverAccount, error)
	UpdateDriver(ctx context.Context, id string, driver models.DriverAccount) error
	DeleteDriver(ctx context.Context, id string) error
	WatchDrivers(ctx context.Context) (<-chan ChangeEvent, error)
}

// PassengerCollection defines the interface for seat reservation operations.
type PassengerCollection interface {
	// OccupiedSeats sums seats_count over reservations matching the leg,
	// optionally excluding one reservation id (exclude-self on update).
	OccupiedSeats(ctx context.Context, vehicleID, date string, direction models.Direction, excludeID string) (int, error)
	// Reserve checks the capacity and persists the reservation (create or
	// overwrite-by-id) as one atomic unit. It returns the reservation id and
	// the seats remaining after the write; on ErrNoCapacity it returns the
	// remaining seats before the rejected write and changes nothing.
	Reserve(ctx context.Context, passenger models.Passenger, capacity int) (string, int, error)
	FindPassengerByID(ctx context.Context, id string) (*models.Passenger, error)
	FindPassengersByDate(ctx context.Context, date string) ([]models.Passenger, error)
	FindPassengersByVehicleDate(ctx context.Context, vehicleID, date string) ([]models.Passenger, error)
	DeletePassenger(ctx context.Context, id string) error
	WatchPassengers(ctx context.Context) (<-chan ChangeEvent, error)
}

// TripCollection defines the interface for settled trip records.
type TripCollection interface {
	// InsertTrip persists a settled trip. ErrDuplicateID signals that this
	// trip id was already recorded.
	InsertTrip(ctx context.Context, trip models.Trip) error
	FindTripByID(ctx context.Context, id string) (*models.Trip, error)
	// FindTrips returns all trips ordered by date descending.
	FindTrips(ctx context.Context) ([]models.Trip, error)
	// FindTripsByVehicle returns a vehicle's trips ordered by date
	// descending, restricted to driver-visible ones when onlyVisible is set.
	FindTripsByVehicle(ctx context.Context, vehicleID string, onlyVisible bool) ([]models.Trip, error)
	SetTripVisibility(ctx context.Context, id string, visible bool) error
	WatchTrips(ctx context.Context) (<-chan ChangeEvent, error)
}

// SettingsCollection defines the interface for the settings singleton.
type SettingsCollection interface {
	// GetOrInitSettings returns the singleton, creating it from defaults if
	// it does not exist yet.
	GetOrInitSettings(ctx context.Context, defaults models.Settings) (*models.Settings, error)
	UpdateSettings(ctx context.Context, settings models.Settings) error
	WatchSettings(ctx context.Context) (<-chan ChangeEvent, error)
}

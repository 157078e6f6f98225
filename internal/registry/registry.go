// Package registry owns the vehicle and driver account records and their
// referential constraints: every account points at an existing vehicle, and
// a vehicle cannot be deleted while accounts reference it.
package registry

import (
	"context"
	"errors"
	"fmt"

	log "github.com/sirupsen/logrus"
	"github.com/zedm/louage-backend/internal/db"
	"github.com/zedm/louage-backend/internal/models"
)

var (
	// ErrUnknownVehicle is returned when a driver account references a
	// vehicle id that does not resolve.
	ErrUnknownVehicle = errors.New("unknown vehicle")
	// ErrVehicleInUse blocks vehicle deletion while driver accounts still
	// reference it.
	ErrVehicleInUse = errors.New("vehicle has driver accounts assigned")
)

// Registry is the CRUD container for vehicles and driver accounts.
type Registry struct {
	vehicles db.VehicleCollection
	drivers  db.DriverCollection
}

// New creates a registry over the vehicle and driver collections.
func New(vehicles db.VehicleCollection, drivers db.DriverCollection) *Registry {
	return &Registry{vehicles: vehicles, drivers: drivers}
}

// CreateVehicle validates and persists a new vehicle.
func (r *Registry) CreateVehicle(ctx context.Context, vehicle models.Vehicle) (string, error) {
	if err := vehicle.Validate(); err != nil {
		return "", err
	}
	id, err := r.vehicles.InsertVehicle(ctx, vehicle)
	if err != nil {
		return "", fmt.Errorf("insert vehicle: %w", err)
	}
	log.WithFields(log.Fields{"vehicle": id, "plate": vehicle.PlateNumber}).Info("vehicle created")
	return id, nil
}

// GetVehicle resolves a vehicle by id.
func (r *Registry) GetVehicle(ctx context.Context, id string) (*models.Vehicle, error) {
	vehicle, err := r.vehicles.FindVehicleByID(ctx, id)
	if err != nil {
		if errors.Is(err, db.ErrNotFound) {
			return nil, ErrUnknownVehicle
		}
		return nil, err
	}
	return vehicle, nil
}

// ListVehicles returns all vehicles.
func (r *Registry) ListVehicles(ctx context.Context) ([]models.Vehicle, error) {
	return r.vehicles.FindVehicles(ctx)
}

// UpdateVehicle edits a vehicle's plate and model and returns the record as
// stored. Odometer fields in the input are ignored; they only advance through
// trip settlement and maintenance acknowledgement.
func (r *Registry) UpdateVehicle(ctx context.Context, id string, vehicle models.Vehicle) (*models.Vehicle, error) {
	if vehicle.PlateNumber == "" {
		return nil, &models.ValidationError{Field: "plate_number", Reason: "required"}
	}
	if vehicle.Model == "" {
		return nil, &models.ValidationError{Field: "model", Reason: "required"}
	}
	if err := r.vehicles.UpdateVehicle(ctx, id, vehicle); err != nil {
		if errors.Is(err, db.ErrNotFound) {
			return nil, ErrUnknownVehicle
		}
		return nil, err
	}
	return r.GetVehicle(ctx, id)
}

// DeleteVehicle removes a vehicle unless driver accounts still reference it.
func (r *Registry) DeleteVehicle(ctx context.Context, id string) error {
	drivers, err := r.drivers.FindDriversByVehicle(ctx, id)
	if err != nil {
		return fmt.Errorf("check vehicle references: %w", err)
	}
	if len(drivers) > 0 {
		return ErrVehicleInUse
	}
	if err := r.vehicles.DeleteVehicle(ctx, id); err != nil {
		if errors.Is(err, db.ErrNotFound) {
			return ErrUnknownVehicle
		}
		return err
	}
	log.WithField("vehicle", id).Info("vehicle deleted")
	return nil
}

// CreateDriver validates the account, checks its vehicle reference and
// persists it.
func (r *Registry) CreateDriver(ctx context.Context, driver models.DriverAccount) (string, error) {
	if err := driver.Validate(); err != nil {
		return "", err
	}
	if _, err := r.vehicles.FindVehicleByID(ctx, driver.VehicleID); err != nil {
		if errors.Is(err, db.ErrNotFound) {
			return "", ErrUnknownVehicle
		}
		return "", err
	}
	id, err := r.drivers.InsertDriver(ctx, driver)
	if err != nil {
		return "", fmt.Errorf("insert driver: %w", err)
	}
	log.WithFields(log.Fields{"driver": id, "vehicle": driver.VehicleID}).Info("driver account created")
	return id, nil
}

// GetDriver resolves a driver account by id.
func (r *Registry) GetDriver(ctx context.Context, id string) (*models.DriverAccount, error) {
	return r.drivers.FindDriverByID(ctx, id)
}

// ListDrivers returns all driver accounts.
func (r *Registry) ListDrivers(ctx context.Context) ([]models.DriverAccount, error) {
	return r.drivers.FindDrivers(ctx)
}

// UpdateDriver validates and replaces a driver account, re-checking the
// vehicle reference.
func (r *Registry) UpdateDriver(ctx context.Context, id string, driver models.DriverAccount) error {
	if err := driver.Validate(); err != nil {
		return err
	}
	if _, err := r.vehicles.FindVehicleByID(ctx, driver.VehicleID); err != nil {
		if errors.Is(err, db.ErrNotFound) {
			return ErrUnknownVehicle
		}
		return err
	}
	return r.drivers.UpdateDriver(ctx, id, driver)
}

// DeleteDriver removes a driver account.
func (r *Registry) DeleteDriver(ctx context.Context, id string) error {
	return r.drivers.DeleteDriver(ctx, id)
}

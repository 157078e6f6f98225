// Package ledger enforces the per-leg seat capacity invariant: the sum of
// reserved seats for one (vehicle, date, direction) tuple never exceeds the
// configured capacity.
package ledger

import (
	"context"
	"errors"
	"fmt"

	log "github.com/sirupsen/logrus"
	"github.com/zedm/louage-backend/internal/db"
	"github.com/zedm/louage-backend/internal/models"
)

// DefaultCapacity is the seat budget of one leg unless configured otherwise.
const DefaultCapacity = 8

// CapacityExceededError rejects a reservation that would overbook a leg. It
// carries the seats still available so the caller can offer a smaller count.
type CapacityExceededError struct {
	Remaining int
}

func (e *CapacityExceededError) Error() string {
	return fmt.Sprintf("capacity exceeded: %d seats remaining", e.Remaining)
}

// Ledger tracks reservations and guards the capacity invariant. The
// check-and-write is delegated to the collection as one atomic unit, so
// concurrent clients cannot both take the last seat.
type Ledger struct {
	passengers db.PassengerCollection
	capacity   int
}

// New creates a ledger over a passenger collection. A non-positive capacity
// falls back to DefaultCapacity.
func New(passengers db.PassengerCollection, capacity int) *Ledger {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	return &Ledger{passengers: passengers, capacity: capacity}
}

// Capacity returns the per-leg seat budget.
func (l *Ledger) Capacity() int {
	return l.capacity
}

// OccupiedSeats sums reserved seats on a leg, optionally excluding one
// reservation id when re-validating an edit.
func (l *Ledger) OccupiedSeats(ctx context.Context, vehicleID, date string, direction models.Direction, excludeID string) (int, error) {
	return l.passengers.OccupiedSeats(ctx, vehicleID, date, direction, excludeID)
}

// RemainingSeats returns the seats still available on a leg. It can be
// negative only if an external writer violated the invariant.
func (l *Ledger) RemainingSeats(ctx context.Context, vehicleID, date string, direction models.Direction, excludeID string) (int, error) {
	occupied, err := l.OccupiedSeats(ctx, vehicleID, date, direction, excludeID)
	if err != nil {
		return 0, err
	}
	return l.capacity - occupied, nil
}

// Reserve validates the reservation and persists it (create, or overwrite by
// id when editing). The capacity check excludes the reservation's own id so
// an existing booking can be resized upward into its own seats. On a full
// leg it returns CapacityExceededError and writes nothing.
func (l *Ledger) Reserve(ctx context.Context, passenger models.Passenger) (string, error) {
	if err := passenger.Validate(l.capacity); err != nil {
		return "", err
	}

	id, remaining, err := l.passengers.Reserve(ctx, passenger, l.capacity)
	if err != nil {
		if errors.Is(err, db.ErrNoCapacity) {
			return "", &CapacityExceededError{Remaining: remaining}
		}
		return "", fmt.Errorf("reserve seats: %w", err)
	}

	log.WithFields(log.Fields{
		"reservation": id,
		"vehicle":     passenger.VehicleID,
		"date":        passenger.Date,
		"direction":   passenger.Direction,
		"seats":       passenger.SeatsCount,
		"remaining":   remaining,
	}).Info("seats reserved")
	return id, nil
}

// Cancel deletes a reservation unconditionally. Confirmation is the caller's
// concern.
func (l *Ledger) Cancel(ctx context.Context, id string) error {
	return l.passengers.DeletePassenger(ctx, id)
}

// LegOccupancy is the occupancy summary of one leg of a vehicle-day.
type LegOccupancy struct {
	Direction models.Direction `json:"direction"`
	Occupied  int              `json:"occupied"`
	Remaining int              `json:"remaining"`
}

// DayOccupancy reports both legs of a vehicle-day.
func (l *Ledger) DayOccupancy(ctx context.Context, vehicleID, date string) ([]LegOccupancy, error) {
	legs := make([]LegOccupancy, 0, 2)
	for _, direction := range []models.Direction{models.DirectionOutbound, models.DirectionInbound} {
		occupied, err := l.OccupiedSeats(ctx, vehicleID, date, direction, "")
		if err != nil {
			return nil, err
		}
		legs = append(legs, LegOccupancy{
			Direction: direction,
			Occupied:  occupied,
			Remaining: l.capacity - occupied,
		})
	}
	return legs, nil
}

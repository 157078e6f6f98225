package db

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zedm/louage-backend/internal/models"
)

func testPassenger(vehicleID string, seats int) models.Passenger {
	return models.Passenger{
		Name:       "Moufida",
		Phone:      "21612345",
		Direction:  models.DirectionOutbound,
		Date:       "2026-08-28",
		VehicleID:  vehicleID,
		SeatsCount: seats,
	}
}

func TestReserveEnforcesCapacity(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	_, remaining, err := store.Reserve(ctx, testPassenger("v1", 6), 8)
	require.NoError(t, err)
	assert.Equal(t, 2, remaining)

	_, remaining, err = store.Reserve(ctx, testPassenger("v1", 3), 8)
	assert.ErrorIs(t, err, ErrNoCapacity)
	assert.Equal(t, 2, remaining)
}

func TestReserveConcurrentNeverOverbooks(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	// Many clients race for the same leg; exactly capacity seats may win.
	const attempts = 32
	var wg sync.WaitGroup
	var successes int64
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _, err := store.Reserve(ctx, testPassenger("v1", 1), 8)
			switch {
			case err == nil:
				atomic.AddInt64(&successes, 1)
			case !errors.Is(err, ErrNoCapacity):
				t.Errorf("unexpected reserve error: %v", err)
			}
		}()
	}
	wg.Wait()

	assert.EqualValues(t, 8, successes)
	occupied, err := store.OccupiedSeats(ctx, "v1", "2026-08-28", models.DirectionOutbound, "")
	require.NoError(t, err)
	assert.Equal(t, 8, occupied)
}

func TestReserveOverwriteExcludesOwnSeats(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	id, _, err := store.Reserve(ctx, testPassenger("v1", 8), 8)
	require.NoError(t, err)

	resized := testPassenger("v1", 8)
	resized.ID = id
	_, remaining, err := store.Reserve(ctx, resized, 8)
	require.NoError(t, err)
	assert.Equal(t, 0, remaining)
}

func TestReservePreservesCreatedAtOnOverwrite(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	id, _, err := store.Reserve(ctx, testPassenger("v1", 2), 8)
	require.NoError(t, err)
	first, err := store.FindPassengerByID(ctx, id)
	require.NoError(t, err)

	update := *first
	update.SeatsCount = 4
	_, _, err = store.Reserve(ctx, update, 8)
	require.NoError(t, err)

	second, err := store.FindPassengerByID(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, first.CreatedAt, second.CreatedAt)
	assert.Equal(t, 4, second.SeatsCount)
}

func TestInsertTripRejectsDuplicateID(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	trip := models.Trip{ID: "trip-1", VehicleID: "v1", Date: "2026-08-28"}
	require.NoError(t, store.InsertTrip(ctx, trip))
	assert.ErrorIs(t, store.InsertTrip(ctx, trip), ErrDuplicateID)
}

func TestFindTripsMostRecentFirst(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	require.NoError(t, store.InsertTrip(ctx, models.Trip{ID: "old", VehicleID: "v1", Date: "2026-08-26"}))
	require.NoError(t, store.InsertTrip(ctx, models.Trip{ID: "new", VehicleID: "v1", Date: "2026-08-28"}))

	trips, err := store.FindTrips(ctx)
	require.NoError(t, err)
	require.Len(t, trips, 2)
	assert.Equal(t, "new", trips[0].ID)
}

func TestIncrementOdometer(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	id, err := store.InsertVehicle(ctx, models.Vehicle{PlateNumber: "127 TN 4821", Model: "Renault Trafic", CurrentOdometerKm: 1000})
	require.NoError(t, err)

	require.NoError(t, store.IncrementOdometer(ctx, id, 50))
	vehicle, err := store.FindVehicleByID(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, int64(1050), vehicle.CurrentOdometerKm)

	assert.ErrorIs(t, store.IncrementOdometer(ctx, "missing", 50), ErrNotFound)
}

func TestGetOrInitSettingsSeedsOnce(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	first, err := store.GetOrInitSettings(ctx, models.DefaultSettings())
	require.NoError(t, err)
	assert.Equal(t, models.SettingsID, first.ID)
	assert.Equal(t, "admin", first.OwnerPassword)

	changed := *first
	changed.OwnerPassword = "rotated"
	require.NoError(t, store.UpdateSettings(ctx, changed))

	// Defaults must not clobber the stored document on later reads.
	again, err := store.GetOrInitSettings(ctx, models.DefaultSettings())
	require.NoError(t, err)
	assert.Equal(t, "rotated", again.OwnerPassword)
}

func TestWatchDeliversChangeEvents(t *testing.T) {
	store := NewMemoryStore()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	events, err := store.WatchPassengers(ctx)
	require.NoError(t, err)

	id, _, err := store.Reserve(ctx, testPassenger("v1", 2), 8)
	require.NoError(t, err)

	select {
	case ev := <-events:
		assert.Equal(t, CollectionPassengers, ev.Collection)
		assert.Equal(t, "insert", ev.Op)
		assert.Equal(t, id, ev.DocumentID)
	case <-time.After(time.Second):
		t.Fatal("no change event delivered")
	}
}

func TestWatchUnsubscribesOnCancel(t *testing.T) {
	store := NewMemoryStore()
	ctx, cancel := context.WithCancel(context.Background())

	events, err := store.WatchPassengers(ctx)
	require.NoError(t, err)
	cancel()

	assert.Eventually(t, func() bool {
		select {
		case _, open := <-events:
			return !open
		default:
			return false
		}
	}, time.Second, 10*time.Millisecond)
}

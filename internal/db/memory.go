package db

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/zedm/louage-backend/internal/models"
)

// MemoryStore is an in-process implementation of every collection interface.
// It keeps the same atomicity guarantees as the Mongo store (a single mutex
// covers each check-and-write) and is used by component tests.
type MemoryStore struct {
	mu         sync.RWMutex
	vehicles   map[string]models.Vehicle
	drivers    map[string]models.DriverAccount
	passengers map[string]models.Passenger
	trips      map[string]models.Trip
	settings   *models.Settings

	watchers map[string][]chan ChangeEvent
}

var (
	_ VehicleCollection   = (*MemoryStore)(nil)
	_ DriverCollection    = (*MemoryStore)(nil)
	_ PassengerCollection = (*MemoryStore)(nil)
	_ TripCollection      = (*MemoryStore)(nil)
	_ SettingsCollection  = (*MemoryStore)(nil)
)

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		vehicles:   make(map[string]models.Vehicle),
		drivers:    make(map[string]models.DriverAccount),
		passengers: make(map[string]models.Passenger),
		trips:      make(map[string]models.Trip),
		watchers:   make(map[string][]chan ChangeEvent),
	}
}

// notify must be called with the write lock held.
func (s *MemoryStore) notify(collection, op, id string) {
	ev := ChangeEvent{Collection: collection, Op: op, DocumentID: id}
	for _, ch := range s.watchers[collection] {
		select {
		case ch <- ev:
		default: // slow subscriber, drop
		}
	}
}

func (s *MemoryStore) watch(ctx context.Context, collection string) (<-chan ChangeEvent, error) {
	ch := make(chan ChangeEvent, 16)
	s.mu.Lock()
	s.watchers[collection] = append(s.watchers[collection], ch)
	s.mu.Unlock()

	go func() {
		<-ctx.Done()
		s.mu.Lock()
		defer s.mu.Unlock()
		subs := s.watchers[collection]
		for i, sub := range subs {
			if sub == ch {
				s.watchers[collection] = append(subs[:i], subs[i+1:]...)
				close(ch)
				break
			}
		}
	}()
	return ch, nil
}

// --- VehicleCollection ---

func (s *MemoryStore) InsertVehicle(_ context.Context, vehicle models.Vehicle) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if vehicle.ID == "" {
		vehicle.ID = uuid.NewString()
	} else if _, exists := s.vehicles[vehicle.ID]; exists {
		return "", ErrDuplicateID
	}
	vehicle.CreatedAt = time.Now()
	s.vehicles[vehicle.ID] = vehicle
	s.notify(CollectionVehicles, "insert", vehicle.ID)
	return vehicle.ID, nil
}

func (s *MemoryStore) FindVehicleByID(_ context.Context, id string) (*models.Vehicle, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	vehicle, ok := s.vehicles[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &vehicle, nil
}

func (s *MemoryStore) FindVehicles(_ context.Context) ([]models.Vehicle, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	vehicles := make([]models.Vehicle, 0, len(s.vehicles))
	for _, v := range s.vehicles {
		vehicles = append(vehicles, v)
	}
	sort.Slice(vehicles, func(i, j int) bool { return vehicles[i].ID < vehicles[j].ID })
	return vehicles, nil
}

func (s *MemoryStore) UpdateVehicle(_ context.Context, id string, vehicle models.Vehicle) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	stored, ok := s.vehicles[id]
	if !ok {
		return ErrNotFound
	}
	stored.PlateNumber = vehicle.PlateNumber
	stored.Model = vehicle.Model
	s.vehicles[id] = stored
	s.notify(CollectionVehicles, "update", id)
	return nil
}

func (s *MemoryStore) DeleteVehicle(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.vehicles[id]; !ok {
		return ErrNotFound
	}
	delete(s.vehicles, id)
	s.notify(CollectionVehicles, "delete", id)
	return nil
}

func (s *MemoryStore) IncrementOdometer(_ context.Context, id string, km int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	vehicle, ok := s.vehicles[id]
	if !ok {
		return ErrNotFound
	}
	vehicle.CurrentOdometerKm += km
	s.vehicles[id] = vehicle
	s.notify(CollectionVehicles, "update", id)
	return nil
}

func (s *MemoryStore) AcknowledgeMaintenance(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	vehicle, ok := s.vehicles[id]
	if !ok {
		return ErrNotFound
	}
	vehicle.LastOilChangeKm = vehicle.CurrentOdometerKm
	s.vehicles[id] = vehicle
	s.notify(CollectionVehicles, "update", id)
	return nil
}

func (s *MemoryStore) WatchVehicles(ctx context.Context) (<-chan ChangeEvent, error) {
	return s.watch(ctx, CollectionVehicles)
}

// --- DriverCollection ---

func (s *MemoryStore) InsertDriver(_ context.Context, driver models.DriverAccount) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if driver.ID == "" {
		driver.ID = uuid.NewString()
	} else if _, exists := s.drivers[driver.ID]; exists {
		return "", ErrDuplicateID
	}
	driver.CreatedAt = time.Now()
	s.drivers[driver.ID] = driver
	s.notify(CollectionDrivers, "insert", driver.ID)
	return driver.ID, nil
}

func (s *MemoryStore) FindDriverByID(_ context.Context, id string) (*models.DriverAccount, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	driver, ok := s.drivers[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &driver, nil
}

func (s *MemoryStore) FindDriverByCredentials(_ context.Context, name, password string) (*models.DriverAccount, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, driver := range s.drivers {
		if driver.Name == name && driver.Password == password {
			d := driver
			return &d, nil
		}
	}
	return nil, ErrNotFound
}

func (s *MemoryStore) FindDrivers(_ context.Context) ([]models.DriverAccount, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	drivers := make([]models.DriverAccount, 0, len(s.drivers))
	for _, d := range s.drivers {
		drivers = append(drivers, d)
	}
	sort.Slice(drivers, func(i, j int) bool { return drivers[i].ID < drivers[j].ID })
	return drivers, nil
}

func (s *MemoryStore) FindDriversByVehicle(_ context.Context, vehicleID string) ([]models.DriverAccount, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var drivers []models.DriverAccount
	for _, d := range s.drivers {
		if d.VehicleID == vehicleID {
			drivers = append(drivers, d)
		}
	}
	return drivers, nil
}

func (s *MemoryStore) UpdateDriver(_ context.Context, id string, driver models.DriverAccount) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.drivers[id]; !ok {
		return ErrNotFound
	}
	driver.ID = id
	s.drivers[id] = driver
	s.notify(CollectionDrivers, "replace", id)
	return nil
}

func (s *MemoryStore) DeleteDriver(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.drivers[id]; !ok {
		return ErrNotFound
	}
	delete(s.drivers, id)
	s.notify(CollectionDrivers, "delete", id)
	return nil
}

func (s *MemoryStore) WatchDrivers(ctx context.Context) (<-chan ChangeEvent, error) {
	return s.watch(ctx, CollectionDrivers)
}

// --- PassengerCollection ---

func (s *MemoryStore) occupiedLocked(vehicleID, date string, direction models.Direction, excludeID string) int {
	total := 0
	for _, p := range s.passengers {
		if p.VehicleID == vehicleID && p.Date == date && p.Direction == direction && p.ID != excludeID {
			total += p.SeatsCount
		}
	}
	return total
}

func (s *MemoryStore) OccupiedSeats(_ context.Context, vehicleID, date string, direction models.Direction, excludeID string) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.occupiedLocked(vehicleID, date, direction, excludeID), nil
}

func (s *MemoryStore) Reserve(_ context.Context, passenger models.Passenger, capacity int) (string, int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if passenger.ID == "" {
		passenger.ID = uuid.NewString()
	}
	if passenger.CreatedAt.IsZero() {
		passenger.CreatedAt = time.Now()
	}
	remaining := capacity - s.occupiedLocked(passenger.VehicleID, passenger.Date, passenger.Direction, passenger.ID)
	if passenger.SeatsCount > remaining {
		return "", remaining, ErrNoCapacity
	}
	op := "insert"
	if _, exists := s.passengers[passenger.ID]; exists {
		op = "replace"
	}
	s.passengers[passenger.ID] = passenger
	s.notify(CollectionPassengers, op, passenger.ID)
	return passenger.ID, remaining - passenger.SeatsCount, nil
}

func (s *MemoryStore) FindPassengerByID(_ context.Context, id string) (*models.Passenger, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	passenger, ok := s.passengers[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &passenger, nil
}

func (s *MemoryStore) FindPassengersByDate(_ context.Context, date string) ([]models.Passenger, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var passengers []models.Passenger
	for _, p := range s.passengers {
		if p.Date == date {
			passengers = append(passengers, p)
		}
	}
	sort.Slice(passengers, func(i, j int) bool { return passengers[i].ID < passengers[j].ID })
	return passengers, nil
}

func (s *MemoryStore) FindPassengersByVehicleDate(_ context.Context, vehicleID, date string) ([]models.Passenger, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var passengers []models.Passenger
	for _, p := range s.passengers {
		if p.VehicleID == vehicleID && p.Date == date {
			passengers = append(passengers, p)
		}
	}
	sort.Slice(passengers, func(i, j int) bool { return passengers[i].ID < passengers[j].ID })
	return passengers, nil
}

func (s *MemoryStore) DeletePassenger(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.passengers[id]; !ok {
		return ErrNotFound
	}
	delete(s.passengers, id)
	s.notify(CollectionPassengers, "delete", id)
	return nil
}

func (s *MemoryStore) WatchPassengers(ctx context.Context) (<-chan ChangeEvent, error) {
	return s.watch(ctx, CollectionPassengers)
}

// --- TripCollection ---

func (s *MemoryStore) InsertTrip(_ context.Context, trip models.Trip) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.trips[trip.ID]; exists {
		return ErrDuplicateID
	}
	trip.CreatedAt = time.Now()
	trip.UpdatedAt = trip.CreatedAt
	s.trips[trip.ID] = trip
	s.notify(CollectionTrips, "insert", trip.ID)
	return nil
}

func (s *MemoryStore) FindTripByID(_ context.Context, id string) (*models.Trip, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	trip, ok := s.trips[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &trip, nil
}

func sortTrips(trips []models.Trip) {
	sort.Slice(trips, func(i, j int) bool {
		if trips[i].Date != trips[j].Date {
			return trips[i].Date > trips[j].Date
		}
		return trips[i].CreatedAt.After(trips[j].CreatedAt)
	})
}

func (s *MemoryStore) FindTrips(_ context.Context) ([]models.Trip, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	trips := make([]models.Trip, 0, len(s.trips))
	for _, t := range s.trips {
		trips = append(trips, t)
	}
	sortTrips(trips)
	return trips, nil
}

func (s *MemoryStore) FindTripsByVehicle(_ context.Context, vehicleID string, onlyVisible bool) ([]models.Trip, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var trips []models.Trip
	for _, t := range s.trips {
		if t.VehicleID != vehicleID {
			continue
		}
		if onlyVisible && !t.VisibleToDriver {
			continue
		}
		trips = append(trips, t)
	}
	sortTrips(trips)
	return trips, nil
}

func (s *MemoryStore) SetTripVisibility(_ context.Context, id string, visible bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	trip, ok := s.trips[id]
	if !ok {
		return ErrNotFound
	}
	trip.VisibleToDriver = visible
	trip.UpdatedAt = time.Now()
	s.trips[id] = trip
	s.notify(CollectionTrips, "update", id)
	return nil
}

func (s *MemoryStore) WatchTrips(ctx context.Context) (<-chan ChangeEvent, error) {
	return s.watch(ctx, CollectionTrips)
}

// --- SettingsCollection ---

func (s *MemoryStore) GetOrInitSettings(_ context.Context, defaults models.Settings) (*models.Settings, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.settings == nil {
		defaults.ID = models.SettingsID
		defaults.UpdatedAt = time.Now()
		s.settings = &defaults
		s.notify(CollectionSettings, "insert", models.SettingsID)
	}
	settings := *s.settings
	return &settings, nil
}

func (s *MemoryStore) UpdateSettings(_ context.Context, settings models.Settings) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	settings.ID = models.SettingsID
	settings.UpdatedAt = time.Now()
	s.settings = &settings
	s.notify(CollectionSettings, "replace", models.SettingsID)
	return nil
}

func (s *MemoryStore) WatchSettings(ctx context.Context) (<-chan ChangeEvent, error) {
	return s.watch(ctx, CollectionSettings)
}

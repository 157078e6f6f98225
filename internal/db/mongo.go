package db

import (
	"context"
	"fmt"
	"time"

	log "github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// ConnectMongo connects to MongoDB and verifies the connection with a ping.
func ConnectMongo(uri string) (*mongo.Client, error) {
	client, err := mongo.Connect(context.Background(), options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("mongo.Connect error: %w", err)
	}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	// Ping to verify connection
	if err := client.Ping(ctx, nil); err != nil {
		return nil, fmt.Errorf("mongo.Ping error: %w", err)
	}
	return client, nil
}

var (
	_ VehicleCollection   = (*MongoVehicleCollection)(nil)
	_ DriverCollection    = (*MongoDriverCollection)(nil)
	_ PassengerCollection = (*MongoPassengerCollection)(nil)
	_ TripCollection      = (*MongoTripCollection)(nil)
	_ SettingsCollection  = (*MongoSettingsCollection)(nil)
)

// MongoStore bundles the typed collections of one database.
type MongoStore struct {
	Vehicles   *MongoVehicleCollection
	Drivers    *MongoDriverCollection
	Passengers *MongoPassengerCollection
	Trips      *MongoTripCollection
	Settings   *MongoSettingsCollection
}

// NewMongoStore wires the typed collections over a database handle.
func NewMongoStore(database *mongo.Database) *MongoStore {
	return &MongoStore{
		Vehicles:   &MongoVehicleCollection{Collection: database.Collection(CollectionVehicles)},
		Drivers:    &MongoDriverCollection{Collection: database.Collection(CollectionDrivers)},
		Passengers: &MongoPassengerCollection{Collection: database.Collection(CollectionPassengers)},
		Trips:      &MongoTripCollection{Collection: database.Collection(CollectionTrips)},
		Settings:   &MongoSettingsCollection{Collection: database.Collection(CollectionSettings)},
	}
}

// Watch delegation so the store bundle can serve as a single change source.

func (s *MongoStore) WatchVehicles(ctx context.Context) (<-chan ChangeEvent, error) {
	return s.Vehicles.WatchVehicles(ctx)
}

func (s *MongoStore) WatchDrivers(ctx context.Context) (<-chan ChangeEvent, error) {
	return s.Drivers.WatchDrivers(ctx)
}

func (s *MongoStore) WatchPassengers(ctx context.Context) (<-chan ChangeEvent, error) {
	return s.Passengers.WatchPassengers(ctx)
}

func (s *MongoStore) WatchTrips(ctx context.Context) (<-chan ChangeEvent, error) {
	return s.Trips.WatchTrips(ctx)
}

func (s *MongoStore) WatchSettings(ctx context.Context) (<-chan ChangeEvent, error) {
	return s.Settings.WatchSettings(ctx)
}

// watchCollection opens a change stream and forwards its events until the
// context is cancelled or the stream ends.
func watchCollection(ctx context.Context, coll *mongo.Collection, name string) (<-chan ChangeEvent, error) {
	stream, err := coll.Watch(ctx, mongo.Pipeline{})
	if err != nil {
		return nil, fmt.Errorf("watch %s: %w", name, err)
	}

	events := make(chan ChangeEvent)
	go func() {
		defer close(events)
		defer stream.Close(context.Background())
		for stream.Next(ctx) {
			var doc struct {
				OperationType string `bson:"operationType"`
				DocumentKey   struct {
					ID interface{} `bson:"_id"`
				} `bson:"documentKey"`
			}
			if err := stream.Decode(&doc); err != nil {
				log.WithError(err).WithField("collection", name).Warn("failed to decode change event")
				continue
			}
			id, _ := doc.DocumentKey.ID.(string)
			select {
			case events <- ChangeEvent{Collection: name, Op: doc.OperationType, DocumentID: id}:
			case <-ctx.Done():
				return
			}
		}
		if err := stream.Err(); err != nil && ctx.Err() == nil {
			log.WithError(err).WithField("collection", name).Error("change stream ended")
		}
	}()
	return events, nil
}

package db

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/zedm/louage-backend/internal/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MongoPassengerCollection implements PassengerCollection for MongoDB.
type MongoPassengerCollection struct {
	Collection *mongo.Collection
}

// OccupiedSeats sums seats_count over the reservations of one leg.
func (c *MongoPassengerCollection) OccupiedSeats(ctx context.Context, vehicleID, date string, direction models.Direction, excludeID string) (int, error) {
	match := bson.M{
		"vehicle_id": vehicleID,
		"date":       date,
		"direction":  direction,
	}
	if excludeID != "" {
		match["_id"] = bson.M{"$ne": excludeID}
	}
	cursor, err := c.Collection.Aggregate(ctx, mongo.Pipeline{
		bson.D{{Key: "$match", Value: match}},
		bson.D{{Key: "$group", Value: bson.M{
			"_id":   nil,
			"total": bson.M{"$sum": "$seats_count"},
		}}},
	})
	if err != nil {
		return 0, err
	}
	var results []struct {
		Total int `bson:"total"`
	}
	if err := cursor.All(ctx, &results); err != nil {
		return 0, err
	}
	if len(results) == 0 {
		return 0, nil
	}
	return results[0].Total, nil
}

// Reserve runs the capacity check and the upsert inside one server-side
// transaction, so two clients racing for the last seat cannot both succeed.
func (c *MongoPassengerCollection) Reserve(ctx context.Context, passenger models.Passenger, capacity int) (string, int, error) {
	if passenger.ID == "" {
		passenger.ID = uuid.NewString()
	}
	if passenger.CreatedAt.IsZero() {
		passenger.CreatedAt = time.Now()
	}

	session, err := c.Collection.Database().Client().StartSession()
	if err != nil {
		return "", 0, err
	}
	defer session.EndSession(ctx)

	remaining := 0
	_, err = session.WithTransaction(ctx, func(sc mongo.SessionContext) (interface{}, error) {
		occupied, err := c.OccupiedSeats(sc, passenger.VehicleID, passenger.Date, passenger.Direction, passenger.ID)
		if err != nil {
			return nil, err
		}
		remaining = capacity - occupied
		if passenger.SeatsCount > remaining {
			return nil, ErrNoCapacity
		}
		opts := options.Replace().SetUpsert(true)
		if _, err := c.Collection.ReplaceOne(sc, bson.M{"_id": passenger.ID}, passenger, opts); err != nil {
			return nil, err
		}
		remaining -= passenger.SeatsCount
		return nil, nil
	})
	if err != nil {
		if errors.Is(err, ErrNoCapacity) {
			return "", remaining, ErrNoCapacity
		}
		return "", 0, err
	}
	return passenger.ID, remaining, nil
}

// FindPassengerByID finds a reservation by its id.
func (c *MongoPassengerCollection) FindPassengerByID(ctx context.Context, id string) (*models.Passenger, error) {
	var passenger models.Passenger
	err := c.Collection.FindOne(ctx, bson.M{"_id": id}).Decode(&passenger)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &passenger, nil
}

// FindPassengersByDate returns all reservations for a calendar day.
func (c *MongoPassengerCollection) FindPassengersByDate(ctx context.Context, date string) ([]models.Passenger, error) {
	return c.findPassengers(ctx, bson.M{"date": date})
}

// FindPassengersByVehicleDate returns a vehicle's reservations for a day.
func (c *MongoPassengerCollection) FindPassengersByVehicleDate(ctx context.Context, vehicleID, date string) ([]models.Passenger, error) {
	return c.findPassengers(ctx, bson.M{"vehicle_id": vehicleID, "date": date})
}

func (c *MongoPassengerCollection) findPassengers(ctx context.Context, filter bson.M) ([]models.Passenger, error) {
	cursor, err := c.Collection.Find(ctx, filter)
	if err != nil {
		return nil, err
	}
	var passengers []models.Passenger
	if err := cursor.All(ctx, &passengers); err != nil {
		return nil, err
	}
	return passengers, nil
}

// DeletePassenger deletes a reservation unconditionally.
func (c *MongoPassengerCollection) DeletePassenger(ctx context.Context, id string) error {
	result, err := c.Collection.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if result.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// WatchPassengers subscribes to reservation collection changes.
func (c *MongoPassengerCollection) WatchPassengers(ctx context.Context) (<-chan ChangeEvent, error) {
	return watchCollection(ctx, c.Collection, CollectionPassengers)
}

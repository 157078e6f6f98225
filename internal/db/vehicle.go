package db

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/zedm/louage-backend/internal/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

// MongoVehicleCollection implements VehicleCollection for MongoDB.
type MongoVehicleCollection struct {
	Collection *mongo.Collection
}

// InsertVehicle inserts a vehicle record and returns its id.
func (c *MongoVehicleCollection) InsertVehicle(ctx context.Context, vehicle models.Vehicle) (string, error) {
	if vehicle.ID == "" {
		vehicle.ID = uuid.NewString()
	}
	vehicle.CreatedAt = time.Now()
	if _, err := c.Collection.InsertOne(ctx, vehicle); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return "", ErrDuplicateID
		}
		return "", err
	}
	return vehicle.ID, nil
}

// FindVehicleByID finds a vehicle by its id.
func (c *MongoVehicleCollection) FindVehicleByID(ctx context.Context, id string) (*models.Vehicle, error) {
	var vehicle models.Vehicle
	err := c.Collection.FindOne(ctx, bson.M{"_id": id}).Decode(&vehicle)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &vehicle, nil
}

// FindVehicles returns all vehicles.
func (c *MongoVehicleCollection) FindVehicles(ctx context.Context) ([]models.Vehicle, error) {
	cursor, err := c.Collection.Find(ctx, bson.M{})
	if err != nil {
		return nil, err
	}
	var vehicles []models.Vehicle
	if err := cursor.All(ctx, &vehicles); err != nil {
		return nil, err
	}
	return vehicles, nil
}

// UpdateVehicle rewrites the plate and model of a vehicle. The odometer
// fields only move through IncrementOdometer and AcknowledgeMaintenance, so
// an edit cannot clobber a settlement increment landing at the same time.
func (c *MongoVehicleCollection) UpdateVehicle(ctx context.Context, id string, vehicle models.Vehicle) error {
	result, err := c.Collection.UpdateOne(ctx,
		bson.M{"_id": id},
		bson.M{"$set": bson.M{
			"plate_number": vehicle.PlateNumber,
			"model":        vehicle.Model,
		}},
	)
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// DeleteVehicle deletes a vehicle by its id.
func (c *MongoVehicleCollection) DeleteVehicle(ctx context.Context, id string) error {
	result, err := c.Collection.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if result.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// IncrementOdometer bumps the odometer with a server-side $inc so concurrent
// settlements never read-modify-write over each other.
func (c *MongoVehicleCollection) IncrementOdometer(ctx context.Context, id string, km int64) error {
	result, err := c.Collection.UpdateOne(ctx,
		bson.M{"_id": id},
		bson.M{"$inc": bson.M{"current_odometer_km": km}},
	)
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// AcknowledgeMaintenance copies the current odometer into the oil-change
// watermark with an update pipeline, so the reset is a single document write.
func (c *MongoVehicleCollection) AcknowledgeMaintenance(ctx context.Context, id string) error {
	result, err := c.Collection.UpdateOne(ctx,
		bson.M{"_id": id},
		mongo.Pipeline{
			bson.D{{Key: "$set", Value: bson.M{"last_oil_change_km": "$current_odometer_km"}}},
		},
	)
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// WatchVehicles subscribes to vehicle collection changes.
func (c *MongoVehicleCollection) WatchVehicles(ctx context.Context) (<-chan ChangeEvent, error) {
	return watchCollection(ctx, c.Collection, CollectionVehicles)
}

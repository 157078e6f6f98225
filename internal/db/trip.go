package db

import (
	"context"
	"errors"
	"time"

	"github.com/zedm/louage-backend/internal/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MongoTripCollection implements TripCollection for MongoDB.
type MongoTripCollection struct {
	Collection *mongo.Collection
}

// InsertTrip inserts a settled trip record. The id must already be set by the
// settlement engine; a duplicate id means the trip was recorded before.
func (c *MongoTripCollection) InsertTrip(ctx context.Context, trip models.Trip) error {
	trip.CreatedAt = time.Now()
	trip.UpdatedAt = trip.CreatedAt
	if _, err := c.Collection.InsertOne(ctx, trip); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return ErrDuplicateID
		}
		return err
	}
	return nil
}

// FindTripByID finds a trip by its id.
func (c *MongoTripCollection) FindTripByID(ctx context.Context, id string) (*models.Trip, error) {
	var trip models.Trip
	err := c.Collection.FindOne(ctx, bson.M{"_id": id}).Decode(&trip)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &trip, nil
}

// FindTrips returns all trips, most recent date first.
func (c *MongoTripCollection) FindTrips(ctx context.Context) ([]models.Trip, error) {
	return c.findTrips(ctx, bson.M{})
}

// FindTripsByVehicle returns a vehicle's trips, most recent date first.
func (c *MongoTripCollection) FindTripsByVehicle(ctx context.Context, vehicleID string, onlyVisible bool) ([]models.Trip, error) {
	filter := bson.M{"vehicle_id": vehicleID}
	if onlyVisible {
		filter["visible_to_driver"] = true
	}
	return c.findTrips(ctx, filter)
}

func (c *MongoTripCollection) findTrips(ctx context.Context, filter bson.M) ([]models.Trip, error) {
	opts := options.Find().SetSort(bson.D{{Key: "date", Value: -1}, {Key: "created_at", Value: -1}})
	cursor, err := c.Collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	var trips []models.Trip
	if err := cursor.All(ctx, &trips); err != nil {
		return nil, err
	}
	return trips, nil
}

// SetTripVisibility flips the owner-controlled visibility flag.
func (c *MongoTripCollection) SetTripVisibility(ctx context.Context, id string, visible bool) error {
	result, err := c.Collection.UpdateOne(ctx,
		bson.M{"_id": id},
		bson.M{"$set": bson.M{"visible_to_driver": visible, "updated_at": time.Now()}},
	)
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// WatchTrips subscribes to trip collection changes.
func (c *MongoTripCollection) WatchTrips(ctx context.Context) (<-chan ChangeEvent, error) {
	return watchCollection(ctx, c.Collection, CollectionTrips)
}

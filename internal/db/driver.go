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

// MongoDriverCollection implements DriverCollection for MongoDB.
type MongoDriverCollection struct {
	Collection *mongo.Collection
}

// InsertDriver inserts a driver account and returns its id.
func (c *MongoDriverCollection) InsertDriver(ctx context.Context, driver models.DriverAccount) (string, error) {
	if driver.ID == "" {
		driver.ID = uuid.NewString()
	}
	driver.CreatedAt = time.Now()
	if _, err := c.Collection.InsertOne(ctx, driver); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return "", ErrDuplicateID
		}
		return "", err
	}
	return driver.ID, nil
}

// FindDriverByID finds a driver account by its id.
func (c *MongoDriverCollection) FindDriverByID(ctx context.Context, id string) (*models.DriverAccount, error) {
	var driver models.DriverAccount
	err := c.Collection.FindOne(ctx, bson.M{"_id": id}).Decode(&driver)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &driver, nil
}

// FindDriverByCredentials finds the account matching both the display name
// and the password. Names are not unique, so the pair is the lookup key.
func (c *MongoDriverCollection) FindDriverByCredentials(ctx context.Context, name, password string) (*models.DriverAccount, error) {
	var driver models.DriverAccount
	err := c.Collection.FindOne(ctx, bson.M{"name": name, "password": password}).Decode(&driver)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &driver, nil
}

// FindDrivers returns all driver accounts.
func (c *MongoDriverCollection) FindDrivers(ctx context.Context) ([]models.DriverAccount, error) {
	return c.findDrivers(ctx, bson.M{})
}

// FindDriversByVehicle returns the accounts assigned to a vehicle.
func (c *MongoDriverCollection) FindDriversByVehicle(ctx context.Context, vehicleID string) ([]models.DriverAccount, error) {
	return c.findDrivers(ctx, bson.M{"vehicle_id": vehicleID})
}

func (c *MongoDriverCollection) findDrivers(ctx context.Context, filter bson.M) ([]models.DriverAccount, error) {
	cursor, err := c.Collection.Find(ctx, filter)
	if err != nil {
		return nil, err
	}
	var drivers []models.DriverAccount
	if err := cursor.All(ctx, &drivers); err != nil {
		return nil, err
	}
	return drivers, nil
}

// UpdateDriver updates a driver account by its id.
func (c *MongoDriverCollection) UpdateDriver(ctx context.Context, id string, driver models.DriverAccount) error {
	driver.ID = id
	result, err := c.Collection.ReplaceOne(ctx, bson.M{"_id": id}, driver)
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// DeleteDriver deletes a driver account by its id.
func (c *MongoDriverCollection) DeleteDriver(ctx context.Context, id string) error {
	result, err := c.Collection.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if result.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// WatchDrivers subscribes to driver collection changes.
func (c *MongoDriverCollection) WatchDrivers(ctx context.Context) (<-chan ChangeEvent, error) {
	return watchCollection(ctx, c.Collection, CollectionDrivers)
}

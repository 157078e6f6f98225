package db

import (
	"context"
	"time"

	"github.com/zedm/louage-backend/internal/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MongoSettingsCollection implements SettingsCollection for MongoDB.
type MongoSettingsCollection struct {
	Collection *mongo.Collection
}

// GetOrInitSettings returns the singleton, upserting the defaults in the same
// round trip when it does not exist yet.
func (c *MongoSettingsCollection) GetOrInitSettings(ctx context.Context, defaults models.Settings) (*models.Settings, error) {
	opts := options.FindOneAndUpdate().SetUpsert(true).SetReturnDocument(options.After)
	update := bson.M{"$setOnInsert": bson.M{
		"fuel_price_reference":   defaults.FuelPriceReference,
		"driver_percentage":      defaults.DriverPercentage,
		"oil_change_interval_km": defaults.OilChangeIntervalKm,
		"owner_password":         defaults.OwnerPassword,
		"language":               defaults.Language,
		"theme":                  defaults.Theme,
		"updated_at":             time.Now(),
	}}

	var settings models.Settings
	err := c.Collection.FindOneAndUpdate(ctx, bson.M{"_id": models.SettingsID}, update, opts).Decode(&settings)
	if err != nil {
		return nil, err
	}
	return &settings, nil
}

// UpdateSettings replaces the singleton in place.
func (c *MongoSettingsCollection) UpdateSettings(ctx context.Context, settings models.Settings) error {
	settings.ID = models.SettingsID
	settings.UpdatedAt = time.Now()
	opts := options.Replace().SetUpsert(true)
	_, err := c.Collection.ReplaceOne(ctx, bson.M{"_id": models.SettingsID}, settings, opts)
	return err
}

// WatchSettings subscribes to settings changes.
func (c *MongoSettingsCollection) WatchSettings(ctx context.Context) (<-chan ChangeEvent, error) {
	return watchCollection(ctx, c.Collection, CollectionSettings)
}

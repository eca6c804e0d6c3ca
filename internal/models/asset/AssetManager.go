// This file contains the AssetManager implementation, which is responsible for interacting with the MongoDB assets collection.
// Asset records only describe uploaded files; the files themselves live in object storage.

package asset

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/adhvyk/ar-studio/webserver/internal/log"
)

var (
	// ErrAssetNotFound is returned when no asset matches the requested ID or key.
	ErrAssetNotFound = errors.New("asset not found")
	// ErrInvalidAssetType is returned when creating an asset with a type outside of ValidTypes.
	ErrInvalidAssetType = errors.New("invalid asset type")
)

type AssetManager struct {
	collection *mongo.Collection
	logger     *log.Logger
}

// NewAssetManager creates a new AssetManager with the given MongoDB client and logger.
func NewAssetManager(client *mongo.Client, database string, logger *log.Logger) *AssetManager {
	return &AssetManager{
		collection: client.Database(database).Collection("assets"),
		logger:     logger,
	}
}

// CreateAsset inserts a pending asset record. ID, status and creation time are assigned here.
func (am *AssetManager) CreateAsset(ctx context.Context, a *Asset) error {
	if !IsValidType(a.Type) {
		return ErrInvalidAssetType
	}

	a.ID = primitive.NewObjectID()
	a.Status = StatusPending
	a.CreatedAt = time.Now().UTC()

	if _, err := am.collection.InsertOne(ctx, a); err != nil {
		return err
	}
	am.logger.Infof("Created asset %s (%s)", a.ID.Hex(), a.Key)
	return nil
}

// GetAsset retrieves an asset by ID.
func (am *AssetManager) GetAsset(ctx context.Context, id primitive.ObjectID) (*Asset, error) {
	var a Asset
	err := am.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&a)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrAssetNotFound
		}
		return nil, err
	}
	return &a, nil
}

// ListByUser returns the assets owned by userID, newest first.
func (am *AssetManager) ListByUser(ctx context.Context, userID primitive.ObjectID) ([]Asset, error) {
	cursor, err := am.collection.Find(
		ctx,
		bson.M{"user_id": userID},
		options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}}),
	)
	if err != nil {
		return nil, err
	}

	assets := make([]Asset, 0)
	if err := cursor.All(ctx, &assets); err != nil {
		return nil, err
	}
	return assets, nil
}

// DeleteAsset removes an asset record by ID.
func (am *AssetManager) DeleteAsset(ctx context.Context, id primitive.ObjectID) error {
	result, err := am.collection.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if result.DeletedCount == 0 {
		return ErrAssetNotFound
	}
	return nil
}

// SetStatusByKey updates the status of the asset stored under key.
func (am *AssetManager) SetStatusByKey(ctx context.Context, key, status string) error {
	result, err := am.collection.UpdateOne(
		ctx,
		bson.M{"key": key},
		bson.M{"$set": bson.M{"status": status}},
	)
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return ErrAssetNotFound
	}
	return nil
}

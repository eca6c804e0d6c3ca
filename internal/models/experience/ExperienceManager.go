// This file contains the ExperienceManager implementation, which is responsible for interacting with the MongoDB
// experiences collection. Writes are last-write-wins: saving a config replaces the stored document whole.

package experience

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/adhvyk/ar-studio/webserver/internal/log"
	"github.com/adhvyk/ar-studio/webserver/internal/models/scene"
)

var (
	// ErrExperienceNotFound is returned when no experience has the requested ID.
	ErrExperienceNotFound = errors.New("experience not found")
	// ErrTitleRequired is returned when creating an experience without a title.
	ErrTitleRequired = errors.New("title is required")
)

type ExperienceManager struct {
	collection *mongo.Collection
	logger     *log.Logger
	now        func() time.Time
}

// NewExperienceManager creates a new ExperienceManager with the given MongoDB client and logger.
func NewExperienceManager(client *mongo.Client, database string, logger *log.Logger) *ExperienceManager {
	return &ExperienceManager{
		collection: client.Database(database).Collection("experiences"),
		logger:     logger,
		now:        func() time.Time { return time.Now().UTC() },
	}
}

// CreateExperience inserts a new, unpublished experience owned by userID with an empty configuration.
func (em *ExperienceManager) CreateExperience(ctx context.Context, userID primitive.ObjectID, title, description string) (*Experience, error) {
	if title == "" {
		return nil, ErrTitleRequired
	}

	now := em.now()
	exp := &Experience{
		ID:          primitive.NewObjectID(),
		Title:       title,
		Description: description,
		UserID:      userID,
		Config:      scene.NewDocument(),
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if _, err := em.collection.InsertOne(ctx, exp); err != nil {
		return nil, err
	}

	em.logger.Infof("Created experience %s for user %s", exp.ID.Hex(), userID.Hex())
	return exp, nil
}

// GetExperience retrieves an experience by ID.
func (em *ExperienceManager) GetExperience(ctx context.Context, id primitive.ObjectID) (*Experience, error) {
	var exp Experience
	err := em.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&exp)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrExperienceNotFound
		}
		return nil, err
	}
	if exp.Config.Objects == nil {
		exp.Config = scene.NewDocument()
	}
	return &exp, nil
}

// ListByUser returns the experiences owned by userID, most recently updated first.
func (em *ExperienceManager) ListByUser(ctx context.Context, userID primitive.ObjectID) ([]Experience, error) {
	cursor, err := em.collection.Find(
		ctx,
		bson.M{"user_id": userID},
		options.Find().SetSort(bson.D{{Key: "updated_at", Value: -1}}),
	)
	if err != nil {
		return nil, err
	}

	experiences := make([]Experience, 0)
	if err := cursor.All(ctx, &experiences); err != nil {
		return nil, err
	}
	return experiences, nil
}

// UpdateExperience applies a partial update and returns the stored result.
// Returns ErrExperienceNotFound if no experience matches id.
func (em *ExperienceManager) UpdateExperience(ctx context.Context, id primitive.ObjectID, update Update) (*Experience, error) {
	set := bson.M{"updated_at": em.now()}
	if update.Title != nil && *update.Title != "" {
		set["title"] = *update.Title
	}
	if update.Description != nil && *update.Description != "" {
		set["description"] = *update.Description
	}
	if update.Config != nil {
		set["config"] = *update.Config
	}

	return em.findAndSet(ctx, id, set)
}

// SetPublished sets the publish state of an experience and returns the stored result.
func (em *ExperienceManager) SetPublished(ctx context.Context, id primitive.ObjectID, published bool) (*Experience, error) {
	return em.findAndSet(ctx, id, bson.M{"is_published": published, "updated_at": em.now()})
}

func (em *ExperienceManager) findAndSet(ctx context.Context, id primitive.ObjectID, set bson.M) (*Experience, error) {
	var exp Experience
	err := em.collection.FindOneAndUpdate(
		ctx,
		bson.M{"_id": id},
		bson.M{"$set": set},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&exp)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrExperienceNotFound
		}
		return nil, err
	}
	return &exp, nil
}

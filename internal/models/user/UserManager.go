// This file contains the UserManager implementation, which is responsible for interacting with the MongoDB users collection.
// The UserManager struct contains a pointer to the users MongoDB collection and a logger. It provides methods to create
// and look up users. Lookups are by ID, or by email at login; emails are unique.

package user

import (
	"context"
	"errors"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/adhvyk/ar-studio/webserver/internal/log"
)

var (
	// ErrUserNotFound is returned when a requested user is not found in the database.
	ErrUserNotFound = errors.New("user not found")
	// ErrEmailTaken is returned when registering an email that already has an account.
	ErrEmailTaken = errors.New("user already exists")
)

type UserManager struct {
	collection *mongo.Collection
	logger     *log.Logger
}

// NewUserManager creates a new instance of UserManager.
func NewUserManager(client *mongo.Client, database string, logger *log.Logger) *UserManager {
	return &UserManager{
		collection: client.Database(database).Collection("users"),
		logger:     logger,
	}
}

// SetUser updates or inserts a user document in the database.
func (um *UserManager) SetUser(ctx context.Context, user *User) error {
	_, err := um.collection.UpdateOne(
		ctx,
		bson.M{"_id": user.ID},
		bson.M{"$set": user},
		options.Update().SetUpsert(true),
	)
	return err
}

// GenerateUser creates a user with the given name, email and password and inserts it into the database.
// Returns ErrEmailTaken if the email is already registered.
func (um *UserManager) GenerateUser(ctx context.Context, name, email, password string) (*User, error) {
	email = normalizeEmail(email)

	// Check if email is already taken
	_, err := um.GetUserByEmail(ctx, email)
	if err != nil {
		if !errors.Is(err, ErrUserNotFound) {
			return nil, err
		}
	} else {
		return nil, ErrEmailTaken
	}

	user := &User{
		ID:        primitive.NewObjectID(),
		Name:      name,
		Email:     email,
		Role:      RoleUser,
		CreatedAt: time.Now().UTC(),
	}

	if err := user.SetPassword(password); err != nil {
		return nil, err
	}

	if err := um.SetUser(ctx, user); err != nil {
		return nil, err
	}

	um.logger.Infof("Created user %s", user.ID.Hex())
	return user, nil
}

// GetUserByID retrieves a user from the database based on the given ID.
func (um *UserManager) GetUserByID(ctx context.Context, userID primitive.ObjectID) (*User, error) {
	var user User
	err := um.collection.FindOne(ctx, bson.M{"_id": userID}).Decode(&user)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return &user, nil
}

// GetUserByEmail retrieves a user from the database based on the given email.
func (um *UserManager) GetUserByEmail(ctx context.Context, email string) (*User, error) {
	var user User
	err := um.collection.FindOne(ctx, bson.M{"email": normalizeEmail(email)}).Decode(&user)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return &user, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

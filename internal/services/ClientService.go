// This file contains the ClientService, the handler behind every dispatched http request. It checks ownership,
// validates configuration documents before they are written and coordinates the stores with object storage
// and the event publisher.
//
// Storage and events are optional. Without storage, asset endpoints fail with ErrStorageDisabled; without an
// event publisher, publish-state changes are only logged.

package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/adhvyk/ar-studio/webserver/internal/common"
	"github.com/adhvyk/ar-studio/webserver/internal/log"
	"github.com/adhvyk/ar-studio/webserver/internal/models/asset"
	"github.com/adhvyk/ar-studio/webserver/internal/models/experience"
	"github.com/adhvyk/ar-studio/webserver/internal/models/user"
)

var (
	// ErrNotAuthorized is returned when the caller neither owns the resource nor is an admin.
	ErrNotAuthorized = errors.New("not authorized")
	// ErrNotPublished is returned when the viewer asks for an unpublished experience.
	ErrNotPublished = errors.New("experience is not published")
	// ErrInvalidCredentials is returned for an unknown email or a wrong password alike.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrStorageDisabled is returned by asset operations when no object storage is configured.
	ErrStorageDisabled = errors.New("asset storage is not configured")
)

type ClientService struct {
	experiences ExperienceStore
	users       UserStore
	assets      AssetStore
	storage     ObjectStorage
	events      EventPublisher
	logger      *log.Logger
}

// NewClientService creates a ClientService. storage and events may be nil.
func NewClientService(experiences ExperienceStore, users UserStore, assets AssetStore, storage ObjectStorage, events EventPublisher, logger *log.Logger) *ClientService {
	return &ClientService{
		experiences: experiences,
		users:       users,
		assets:      assets,
		storage:     storage,
		events:      events,
		logger:      logger,
	}
}

// RegisterUser creates a new account. Returns user.ErrEmailTaken if the email is already registered.
func (s *ClientService) RegisterUser(ctx context.Context, req *common.RegisterRequest) (*user.User, error) {
	return s.users.GenerateUser(ctx, req.Name, req.Email, req.Password)
}

// LoginUser returns the user matching email and password.
// Returns ErrInvalidCredentials without telling which of the two was wrong.
func (s *ClientService) LoginUser(ctx context.Context, email, password string) (*user.User, error) {
	u, err := s.users.GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, user.ErrUserNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	if err := u.CheckPassword(password); err != nil {
		return nil, ErrInvalidCredentials
	}
	return u, nil
}

func (s *ClientService) GetUser(ctx context.Context, userID primitive.ObjectID) (*user.User, error) {
	return s.users.GetUserByID(ctx, userID)
}

func (s *ClientService) CreateExperience(ctx context.Context, userID primitive.ObjectID, title, description string) (*experience.Experience, error) {
	return s.experiences.CreateExperience(ctx, userID, title, description)
}

func (s *ClientService) ListExperiences(ctx context.Context, userID primitive.ObjectID) ([]experience.Experience, error) {
	return s.experiences.ListByUser(ctx, userID)
}

// GetExperience returns an experience the caller owns, or any experience for an admin.
func (s *ClientService) GetExperience(ctx context.Context, caller *user.User, id primitive.ObjectID) (*experience.Experience, error) {
	exp, err := s.experiences.GetExperience(ctx, id)
	if err != nil {
		return nil, err
	}
	if !caller.CanAccess(exp.UserID) {
		s.logger.Infof("User %s denied access to experience %s", caller.ID.Hex(), id.Hex())
		return nil, ErrNotAuthorized
	}
	return exp, nil
}

// SaveExperience applies a partial update. A config, when given, must pass scene.Document.Validate and replaces the
// stored one whole. Concurrent saves are last-write-wins.
func (s *ClientService) SaveExperience(ctx context.Context, caller *user.User, id primitive.ObjectID, update experience.Update) (*experience.Experience, error) {
	if update.Config != nil {
		if err := update.Config.Validate(); err != nil {
			return nil, err
		}
	}

	if _, err := s.GetExperience(ctx, caller, id); err != nil {
		return nil, err
	}

	exp, err := s.experiences.UpdateExperience(ctx, id, update)
	if err != nil {
		return nil, err
	}
	s.logger.Debugf("Saved experience %s (%d objects)", id.Hex(), len(exp.Config.Objects))
	return exp, nil
}

// PublishExperience sets the publish state and announces the change. A failed announcement is logged and does
// not undo the change.
func (s *ClientService) PublishExperience(ctx context.Context, caller *user.User, id primitive.ObjectID, published bool) (*experience.Experience, error) {
	if _, err := s.GetExperience(ctx, caller, id); err != nil {
		return nil, err
	}

	exp, err := s.experiences.SetPublished(ctx, id, published)
	if err != nil {
		return nil, err
	}

	if s.events == nil {
		s.logger.Infof("Experience %s published=%t (events disabled)", id.Hex(), published)
		return exp, nil
	}
	if err := s.events.PublishExperienceEvent(ctx, id, published); err != nil {
		s.logger.Errorf("Failed to publish event for experience %s: %v", id.Hex(), err)
	}
	return exp, nil
}

// GetPublicExperience returns the viewer data of a published experience.
func (s *ClientService) GetPublicExperience(ctx context.Context, id primitive.ObjectID) (*experience.PublicView, error) {
	exp, err := s.experiences.GetExperience(ctx, id)
	if err != nil {
		return nil, err
	}
	if !exp.IsPublished {
		return nil, ErrNotPublished
	}
	view := exp.Public()
	return &view, nil
}

// UploadTicket is what a client needs to upload a file straight to storage.
type UploadTicket struct {
	UploadURL string       `json:"uploadUrl"`
	Key       string       `json:"key"`
	Asset     *asset.Asset `json:"asset"`
}

// RequestUploadURL reserves a storage key, signs an upload URL for it and records a pending asset.
func (s *ClientService) RequestUploadURL(ctx context.Context, userID primitive.ObjectID, req *common.UploadURLRequest) (*UploadTicket, error) {
	if s.storage == nil {
		return nil, ErrStorageDisabled
	}

	key := s.storage.NewKey(strings.TrimPrefix(req.Extension, "."))
	uploadURL, err := s.storage.PresignUpload(ctx, key, req.ContentType)
	if err != nil {
		s.logger.Errorf("Failed to sign upload for %s: %v", key, err)
		return nil, fmt.Errorf("failed to generate upload url: %w", err)
	}

	a := &asset.Asset{
		Name:     req.Name,
		Type:     req.Type,
		URL:      s.storage.PublicURL(key),
		Key:      key,
		MimeType: req.ContentType,
		UserID:   userID,
	}
	if err := s.assets.CreateAsset(ctx, a); err != nil {
		return nil, err
	}

	return &UploadTicket{UploadURL: uploadURL, Key: key, Asset: a}, nil
}

func (s *ClientService) ListAssets(ctx context.Context, userID primitive.ObjectID) ([]asset.Asset, error) {
	return s.assets.ListByUser(ctx, userID)
}

// DeleteAsset removes the stored file and then the asset record. Records created before keys were stored have
// their key recovered from the URL.
func (s *ClientService) DeleteAsset(ctx context.Context, caller *user.User, id primitive.ObjectID) error {
	a, err := s.assets.GetAsset(ctx, id)
	if err != nil {
		return err
	}
	if !caller.CanAccess(a.UserID) {
		return ErrNotAuthorized
	}

	key := a.Key
	if key == "" {
		key = KeyFromURL(a.URL)
	}
	if key != "" {
		if s.storage == nil {
			return ErrStorageDisabled
		}
		if err := s.storage.DeleteObject(ctx, key); err != nil {
			return fmt.Errorf("failed to delete %s from storage: %w", key, err)
		}
	}

	if err := s.assets.DeleteAsset(ctx, id); err != nil {
		return err
	}
	s.logger.Infof("Deleted asset %s", id.Hex())
	return nil
}

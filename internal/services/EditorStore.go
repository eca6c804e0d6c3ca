package services

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/adhvyk/ar-studio/webserver/internal/editor"
	"github.com/adhvyk/ar-studio/webserver/internal/models/experience"
	"github.com/adhvyk/ar-studio/webserver/internal/models/scene"
	"github.com/adhvyk/ar-studio/webserver/internal/models/user"
)

// experienceConfigStore loads and saves experience configurations on behalf of one caller, going through the same
// ownership checks and validation as the http API.
type experienceConfigStore struct {
	service *ClientService
	caller  *user.User
}

// EditorStore returns an editor.Store acting as caller.
func (s *ClientService) EditorStore(caller *user.User) editor.Store {
	return &experienceConfigStore{service: s, caller: caller}
}

// OpenEditor starts an editing session on an experience the caller may access.
func (s *ClientService) OpenEditor(ctx context.Context, caller *user.User, experienceID string) (*editor.Session, scene.DecodeReport, error) {
	return editor.Open(ctx, s.EditorStore(caller), experienceID, s.logger)
}

func (e *experienceConfigStore) LoadConfig(ctx context.Context, experienceID string) (*scene.Document, error) {
	id, err := parseExperienceID(experienceID)
	if err != nil {
		return nil, err
	}
	exp, err := e.service.GetExperience(ctx, e.caller, id)
	if err != nil {
		return nil, err
	}
	return &exp.Config, nil
}

func (e *experienceConfigStore) SaveConfig(ctx context.Context, experienceID string, doc scene.Document) error {
	id, err := parseExperienceID(experienceID)
	if err != nil {
		return err
	}
	_, err = e.service.SaveExperience(ctx, e.caller, id, experience.Update{Config: &doc})
	return err
}

func parseExperienceID(experienceID string) (primitive.ObjectID, error) {
	id, err := primitive.ObjectIDFromHex(experienceID)
	if err != nil {
		return primitive.NilObjectID, fmt.Errorf("%w: invalid id %q", experience.ErrExperienceNotFound, experienceID)
	}
	return id, nil
}

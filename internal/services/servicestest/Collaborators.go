package servicestest

import (
	"context"
	"fmt"
	"sync"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Storage records signed uploads and deletions instead of talking to S3.
type Storage struct {
	mu      sync.Mutex
	next    int
	Deleted []string
	// DeleteErr, when set, fails every DeleteObject call
	DeleteErr error
}

func (s *Storage) NewKey(extension string) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.next++
	return fmt.Sprintf("assets/test-%d.%s", s.next, extension)
}

func (s *Storage) PresignUpload(ctx context.Context, key, contentType string) (string, error) {
	return "https://upload.example/" + key + "?signature=test", nil
}

func (s *Storage) PublicURL(key string) string {
	return "https://bucket.s3.us-east-1.amazonaws.com/" + key
}

func (s *Storage) DeleteObject(ctx context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.DeleteErr != nil {
		return s.DeleteErr
	}
	s.Deleted = append(s.Deleted, key)
	return nil
}

// PublishedEvent is one call to Events.PublishExperienceEvent.
type PublishedEvent struct {
	ExperienceID primitive.ObjectID
	Published    bool
}

// Events records experience events instead of sending them to a broker.
type Events struct {
	mu     sync.Mutex
	events []PublishedEvent
	// Err, when set, fails every publish
	Err error
}

func (e *Events) PublishExperienceEvent(ctx context.Context, experienceID primitive.ObjectID, published bool) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.Err != nil {
		return e.Err
	}
	e.events = append(e.events, PublishedEvent{ExperienceID: experienceID, Published: published})
	return nil
}

// Published returns the events recorded so far.
func (e *Events) Published() []PublishedEvent {
	e.mu.Lock()
	defer e.mu.Unlock()
	return append([]PublishedEvent(nil), e.events...)
}

// This file contains the implementation of AMPQService. This service is responsible for handling the communication
// between the web server and an AMPQ message broker, and thus the rest of the asset and viewer pipeline.
//
// This service expects a rabbitMQ AMPQ 0.9.1 broker reachable at the configured URL. The service connects to the broker
// and declares the queues it uses:
//   - 'experience-events': the service publishes an event whenever an experience is published or unpublished.
//   - 'asset-uploaded': storage notifications; each message marks the matching asset as ready.
//
// A go channel and waitgroup are used to manage the consumer, and the service can be gracefully shutdown with Shutdown.
// The consumer is tolerant to connection failures, and will attempt to reconnect every 5 seconds if the connection
// is lost.

package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/adhvyk/ar-studio/webserver/internal/log"
	"github.com/adhvyk/ar-studio/webserver/internal/models/asset"
)

const (
	ExperienceEventsQueue = "experience-events"
	AssetUploadedQueue    = "asset-uploaded"
)

// Experience event names.
const (
	EventPublished   = "published"
	EventUnpublished = "unpublished"
)

// ExperienceEvent is the body of a message on ExperienceEventsQueue.
type ExperienceEvent struct {
	ID        string    `json:"id"`
	Event     string    `json:"event"`
	Timestamp time.Time `json:"timestamp"`
}

// AssetUploaded is the body of a message on AssetUploadedQueue.
type AssetUploaded struct {
	Key string `json:"key"`
}

type AMPQService struct {
	url    string
	assets AssetStatusUpdater
	logger *log.Logger
	now    func() time.Time

	// guards connection and channel across reconnects
	mu         sync.Mutex
	connection *amqp.Connection
	channel    *amqp.Channel

	// used for reconnection and graceful shutdown
	stopChan chan struct{}
	wg       sync.WaitGroup
}

// NewAMPQService connects to the broker at url and starts the asset-uploaded consumer as a goroutine.
func NewAMPQService(url string, assets AssetStatusUpdater, logger *log.Logger) (*AMPQService, error) {
	service := &AMPQService{
		url:      url,
		assets:   assets,
		logger:   logger,
		now:      func() time.Time { return time.Now().UTC() },
		stopChan: make(chan struct{}),
	}

	if err := service.connect(); err != nil {
		return nil, err
	}

	service.wg.Add(1)
	go service.runConsumer(AssetUploadedQueue, service.processAssetUploaded)

	return service, nil
}

// connect establishes a connection to the AMPQ message broker and declares the queues
func (s *AMPQService) connect() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	timeout := time.Now().Add(time.Minute / 4)
	var (
		conn *amqp.Connection
		err  error
	)
	for time.Now().Before(timeout) {
		conn, err = amqp.Dial(s.url)
		if err == nil {
			break
		}
		time.Sleep(time.Second)
	}
	if err != nil {
		return fmt.Errorf("failed to connect to RabbitMQ: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return fmt.Errorf("failed to open a channel: %w", err)
	}

	for _, queue := range []string{ExperienceEventsQueue, AssetUploadedQueue} {
		if _, err := ch.QueueDeclare(queue, true, false, false, false, nil); err != nil {
			conn.Close()
			return fmt.Errorf("failed to declare queue %s: %w", queue, err)
		}
	}

	s.connection = conn
	s.channel = ch
	s.logger.Info("Connected to RabbitMQ")
	return nil
}

// runConsumer runs a consumer for the specified queue and consumption handler until Shutdown
func (s *AMPQService) runConsumer(queueName string, processFunc func(amqp.Delivery) error) {
	defer s.wg.Done()

	for {
		select {
		case <-s.stopChan:
			s.logger.Infof("Stopping %s consumer", queueName)
			return
		default:
		}

		if err := s.consume(queueName, processFunc); err != nil {
			s.logger.Errorf("Error in %s consumer: %v. Reconnecting in 5 seconds...", queueName, err)
			select {
			case <-s.stopChan:
			case <-time.After(5 * time.Second):
			}
		}
	}
}

// consume consumes messages from the specified queue and processes them using the provided function.
// Messages that fail processing are requeued.
func (s *AMPQService) consume(queueName string, processFunc func(amqp.Delivery) error) error {
	if err := s.ensureConnection(); err != nil {
		return fmt.Errorf("failed to ensure connection: %w", err)
	}

	s.mu.Lock()
	ch, err := s.connection.Channel()
	s.mu.Unlock()
	if err != nil {
		return fmt.Errorf("failed to open a channel: %w", err)
	}
	defer ch.Close()

	messages, err := ch.Consume(queueName, "", false, false, false, false, nil)
	if err != nil {
		return fmt.Errorf("failed to register a consumer: %w", err)
	}

	s.logger.Infof("Started consuming from %s", queueName)

	for {
		select {
		case <-s.stopChan:
			return nil
		case msg, ok := <-messages:
			if !ok {
				return errors.New("consumer channel closed")
			}
			if err := processFunc(msg); err != nil {
				s.logger.Errorf("Error processing message from %s: %v", queueName, err)
				msg.Nack(false, true)
			} else {
				msg.Ack(false)
			}
		}
	}
}

// ensureConnection ensures that the AMPQ connection is established
func (s *AMPQService) ensureConnection() error {
	s.mu.Lock()
	connected := s.connection != nil && !s.connection.IsClosed()
	s.mu.Unlock()
	if connected {
		return nil
	}

	s.logger.Info("Reconnecting to RabbitMQ...")
	return s.connect()
}

// Shutdown stops the consumer and closes the connection
func (s *AMPQService) Shutdown() {
	s.logger.Info("Shutting down AMQP service...")
	close(s.stopChan)
	s.wg.Wait()

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.connection != nil {
		s.connection.Close()
	}
	s.logger.Info("AMQP service shut down")
}

// PublishExperienceEvent publishes a published/unpublished event for an experience to the 'experience-events' queue.
func (s *AMPQService) PublishExperienceEvent(ctx context.Context, experienceID primitive.ObjectID, published bool) error {
	body, err := json.Marshal(s.newExperienceEvent(experienceID, published))
	if err != nil {
		return fmt.Errorf("failed to marshal experience event: %w", err)
	}

	if err := s.ensureConnection(); err != nil {
		return err
	}

	s.mu.Lock()
	ch := s.channel
	s.mu.Unlock()

	err = ch.PublishWithContext(ctx, "", ExperienceEventsQueue, false, false, amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Body:         body,
	})
	if err != nil {
		return fmt.Errorf("failed to publish experience event: %w", err)
	}

	s.logger.Debugf("Experience event published for %s", experienceID.Hex())
	return nil
}

func (s *AMPQService) newExperienceEvent(experienceID primitive.ObjectID, published bool) ExperienceEvent {
	event := EventUnpublished
	if published {
		event = EventPublished
	}
	return ExperienceEvent{ID: experienceID.Hex(), Event: event, Timestamp: s.now()}
}

// processAssetUploaded processes a message from the 'asset-uploaded' queue.
//
// The expected message format is:
//
//	{
//	    "key": string (storage key, assets/<uuid>.<ext>)
//	}
func (s *AMPQService) processAssetUploaded(d amqp.Delivery) error {
	return s.handleAssetUploaded(context.Background(), d.Body)
}

func (s *AMPQService) handleAssetUploaded(ctx context.Context, body []byte) error {
	var data AssetUploaded
	if err := json.Unmarshal(body, &data); err != nil {
		// a message that never decodes would be requeued forever
		s.logger.Errorf("Dropping undecodable asset-uploaded message: %v", err)
		return nil
	}
	if data.Key == "" {
		s.logger.Errorf("Dropping asset-uploaded message without key")
		return nil
	}

	err := s.assets.SetStatusByKey(ctx, data.Key, asset.StatusReady)
	if errors.Is(err, asset.ErrAssetNotFound) {
		s.logger.Infof("Upload of %s has no asset record, ignoring", data.Key)
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to mark %s ready: %w", data.Key, err)
	}

	s.logger.Infof("Asset %s is ready", data.Key)
	return nil
}

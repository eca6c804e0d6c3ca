package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/adhvyk/ar-studio/webserver/internal/config"
	"github.com/adhvyk/ar-studio/webserver/internal/log"
	"github.com/adhvyk/ar-studio/webserver/internal/models/asset"
	"github.com/adhvyk/ar-studio/webserver/internal/models/experience"
	"github.com/adhvyk/ar-studio/webserver/internal/models/user"
	"github.com/adhvyk/ar-studio/webserver/internal/services"
	"github.com/adhvyk/ar-studio/webserver/internal/web"
)

func main() {
	// Load configuration, seeded from the .env file when present
	cfg, err := config.Load("secrets/.env")
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	// Create webserver logger
	logger, err := log.NewLogger(cfg.Development, cfg.Debug, cfg.LogFile)
	if err != nil {
		panic(err)
	}
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Create a MongoDB client
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.MongoURI))
	if err != nil {
		logger.Fatal("Error creating MongoDB client: ", err)
	}
	defer client.Disconnect(context.Background())

	// Create separate managers with the MongoDB client
	experienceManager := experience.NewExperienceManager(client, cfg.MongoDatabase, logger)
	userManager := user.NewUserManager(client, cfg.MongoDatabase, logger)
	assetManager := asset.NewAssetManager(client, cfg.MongoDatabase, logger)

	// Initialize optional services
	var storage services.ObjectStorage
	if cfg.StorageEnabled() {
		storageService, err := services.NewStorageService(ctx, cfg.AWSRegion, cfg.AWSBucketName, cfg.UploadURLTTL, logger)
		if err != nil {
			logger.Fatal("Error initializing storage service: ", err)
		}
		storage = storageService
	} else {
		logger.Info("AWS_REGION or AWS_BUCKET_NAME not set, asset uploads disabled")
	}

	var events services.EventPublisher
	if cfg.RabbitMQURL != "" {
		mqService, err := services.NewAMPQService(cfg.RabbitMQURL, assetManager, logger)
		if err != nil {
			logger.Fatal("Error initializing AMPQ service: ", err)
		}
		defer mqService.Shutdown()
		events = mqService
	} else {
		logger.Info("RABBITMQ_URL not set, experience events disabled")
	}

	clientService := services.NewClientService(experienceManager, userManager, assetManager, storage, events, logger)

	// Initialize web server
	server := web.NewWebServer(cfg, clientService, logger)

	go func() {
		<-ctx.Done()
		logger.Info("Shutting down web server...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error("Error shutting down web server: ", err)
		}
	}()

	// Start the web server
	if err := server.Run(cfg.Address()); err != nil {
		logger.Error("Error starting web server: ", err)
	}
}

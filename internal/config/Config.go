// This file contains the Config struct and its loader. Values come from the process environment, optionally seeded
// from a .env file with godotenv; variables already set in the environment take precedence over the file.

package config

import (
	"errors"
	"fmt"
	"io/fs"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

type Config struct {
	WebserverIP   string `env:"WEBSERVER_IP" envDefault:"0.0.0.0"`
	WebserverPort int    `env:"WEBSERVER_PORT" envDefault:"5000"`

	MongoURI      string `env:"MONGO_URI" envDefault:"mongodb://localhost:27017"`
	MongoDatabase string `env:"MONGO_DATABASE" envDefault:"arstudio"`

	JWTSecret        string        `env:"JWT_SECRET,required,notEmpty"`
	JWTRefreshSecret string        `env:"JWT_REFRESH_SECRET,required,notEmpty"`
	AccessTokenTTL   time.Duration `env:"ACCESS_TOKEN_TTL" envDefault:"15m"`
	RefreshTokenTTL  time.Duration `env:"REFRESH_TOKEN_TTL" envDefault:"168h"`

	FrontendURL     string        `env:"FRONTEND_URL" envDefault:"http://localhost:5173"`
	RateLimitMax    int           `env:"RATE_LIMIT_MAX" envDefault:"100"`
	RateLimitWindow time.Duration `env:"RATE_LIMIT_WINDOW" envDefault:"15m"`

	AWSRegion     string        `env:"AWS_REGION"`
	AWSBucketName string        `env:"AWS_BUCKET_NAME"`
	UploadURLTTL  time.Duration `env:"UPLOAD_URL_TTL" envDefault:"5m"`

	// RabbitMQURL is optional; events are disabled when it is empty.
	RabbitMQURL string `env:"RABBITMQ_URL"`

	Development bool   `env:"DEVELOPMENT" envDefault:"false"`
	Debug       bool   `env:"DEBUG" envDefault:"false"`
	LogFile     string `env:"LOG_FILE" envDefault:"web-server.log"`
}

// Load reads envFile (if it exists) into the environment and parses the configuration.
func Load(envFile string) (*Config, error) {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("error loading %s: %w", envFile, err)
		}
	}

	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("error parsing configuration: %w", err)
	}
	return &cfg, nil
}

// Address returns the host:port the web server listens on.
func (c *Config) Address() string {
	return fmt.Sprintf("%s:%d", c.WebserverIP, c.WebserverPort)
}

// StorageEnabled reports whether S3 asset storage is configured.
func (c *Config) StorageEnabled() bool {
	return c.AWSRegion != "" && c.AWSBucketName != ""
}

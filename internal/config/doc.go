// Package config loads the web server configuration from the environment (and an optional .env file).
package config

// Package web contains the http surface of the server: a fiber app serving the auth, asset and experience
// endpoints under /api, plus /health.
//
// Handlers validate input with go-playground/validator, authenticate with JWTs and delegate all work to
// services.ClientService.
package web

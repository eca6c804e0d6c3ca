// Package services contains the implementation of all services used by the web server.
//
// The services are responsible for interacting with the stores and performing anything that is not strictly HTTP-related.
// The services are injected into the web server, and are used to handle requests dispatched by it.
//
// Current services include:
//   - ClientService:
//     Is the main handler for dispatched http requests. It registers and logs in users, manages experiences and
//     their configurations, and issues asset uploads. It can also hand out editor sessions bound to a caller.
//   - StorageService:
//     Keeps asset files in an S3 bucket and signs direct-upload URLs.
//   - AMPQService:
//     Is a ampq 0.9.1 handler that publishes experience events and consumes upload notifications.
package services

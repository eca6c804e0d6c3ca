// Package servicestest provides in-memory implementations of the stores and collaborators the services depend on,
// for tests of the services and of the web server.
package servicestest

// Package common holds the request types shared by the web server and the services.
package common

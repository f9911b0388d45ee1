// Package api contains the HTTP handlers of the /api/v1 surface. Handlers
// decode and validate requests, call the services and translate their
// errors into status codes and client-safe messages.
package api

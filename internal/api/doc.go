// Package api handles incoming HTTP requests, request validation and
// response formatting. It acts as an adapter between external clients and
// the internal application services, translating service errors into status
// codes and client-safe messages.
package api

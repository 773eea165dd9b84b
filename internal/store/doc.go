// Package store defines the persistence interfaces used by the services,
// together with the shared store errors and transaction helper. The
// PostgreSQL implementations live in internal/platform/postgres.
package store

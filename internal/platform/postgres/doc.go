// Package postgres implements the internal/store interfaces on PostgreSQL
// through database/sql and the pgx stdlib driver. Schema migrations are
// embedded in the binary and applied with goose.
package postgres

package postgres_test

import (
	"database/sql"
	"errors"
	"fmt"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"

	"github.com/phrazzld/postcraft-api/internal/platform/postgres"
	"github.com/phrazzld/postcraft-api/internal/store"
)

func newPgError(code string) *pgconn.PgError {
	return &pgconn.PgError{
		Code:           code,
		Message:        "error message",
		TableName:      "post_drafts",
		ColumnName:     "content",
		ConstraintName: "post_drafts_kind_check",
	}
}

func TestMapError(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		err     error
		wantIs  error
		wantMsg string
	}{
		{"no rows", sql.ErrNoRows, store.ErrNotFound, ""},
		{"unique violation", newPgError("23505"), store.ErrDuplicate, ""},
		{"foreign key violation", newPgError("23503"), store.ErrInvalidEntity, "foreign key violation"},
		{"check violation", newPgError("23514"), store.ErrInvalidEntity, "post_drafts_kind_check"},
		{"not null violation", newPgError("23502"), store.ErrInvalidEntity, "content"},
		{"wrapped pg error", fmt.Errorf("exec: %w", newPgError("23505")), store.ErrDuplicate, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			err := postgres.MapError(tt.err)

			assert.ErrorIs(t, err, tt.wantIs)
			if tt.wantMsg != "" {
				assert.Contains(t, err.Error(), tt.wantMsg)
			}
		})
	}

	assert.NoError(t, postgres.MapError(nil))
	other := errors.New("connection refused")
	assert.Same(t, other, postgres.MapError(other))
}

func TestViolationHelpers(t *testing.T) {
	t.Parallel()

	assert.True(t, postgres.IsUniqueViolation(newPgError("23505")))
	assert.False(t, postgres.IsUniqueViolation(newPgError("23503")))
	assert.False(t, postgres.IsUniqueViolation(nil))
	assert.True(t, postgres.IsForeignKeyViolation(fmt.Errorf("wrapped: %w", newPgError("23503"))))
	assert.False(t, postgres.IsForeignKeyViolation(errors.New("generic")))
}

func TestCheckRowsAffected(t *testing.T) {
	t.Parallel()

	assert.NoError(t, postgres.CheckRowsAffected(sqlmock.NewResult(0, 1), "draft"))

	err := postgres.CheckRowsAffected(sqlmock.NewResult(0, 0), "draft")
	assert.ErrorIs(t, err, store.ErrNotFound)
	assert.Contains(t, err.Error(), "draft not found")

	assert.Equal(t, store.ErrNotFound, postgres.CheckRowsAffected(sqlmock.NewResult(0, 0), ""))

	resultErr := errors.New("driver does not support RowsAffected")
	assert.ErrorIs(t, postgres.CheckRowsAffected(sqlmock.NewErrorResult(resultErr), "draft"), resultErr)

	assert.Error(t, postgres.CheckRowsAffected(nil, "draft"))
}
